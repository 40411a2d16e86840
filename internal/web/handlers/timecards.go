package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/WilliamWachholz/CameraTimeCard/internal/database"
	"github.com/WilliamWachholz/CameraTimeCard/internal/timecard"
)

// TimecardsHandler handles attendance record endpoints
type TimecardsHandler struct {
	store *database.Store
}

// NewTimecardsHandler creates a new timecards handler
func NewTimecardsHandler(store *database.Store) *TimecardsHandler {
	return &TimecardsHandler{store: store}
}

// Report handles POST /api/timecard. It auto-creates unknown employees and
// classifies the entry type by flipping the employee's last recorded entry.
func (h *TimecardsHandler) Report(w http.ResponseWriter, r *http.Request) {
	var event timecard.Event
	if err := decodeJSON(r, &event); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if event.EmployeeID == "" {
		respondError(w, http.StatusBadRequest, "employee_id is required")
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Method == "" {
		event.Method = timecard.MethodFacial
	}

	ctx := r.Context()

	emp, err := h.store.Employees.Get(ctx, event.EmployeeID)
	if err != nil {
		log.Printf("get employee %s: %v", sanitizeForLog(event.EmployeeID), err)
		respondError(w, http.StatusInternalServerError, "failed to load employee")
		return
	}
	if emp == nil {
		name := event.EmployeeName
		if name == "" {
			name = event.EmployeeID
		}
		if err := h.store.Employees.Create(ctx, database.Employee{
			ID:   event.EmployeeID,
			Name: name,
		}); err != nil {
			log.Printf("create employee %s: %v", sanitizeForLog(event.EmployeeID), err)
			respondError(w, http.StatusInternalServerError, "failed to create employee")
			return
		}
	} else if event.EmployeeName == "" {
		event.EmployeeName = emp.Name
	}

	entryType, err := h.nextEntryType(r, event.EmployeeID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to classify entry")
		return
	}

	tc := database.Timecard{
		ID:                uuid.NewString(),
		EmployeeID:        event.EmployeeID,
		EmployeeName:      event.EmployeeName,
		Timestamp:         event.Timestamp,
		RecognitionMethod: event.Method,
		EntryType:         entryType,
		CreatedAt:         time.Now(),
	}
	if err := h.store.Timecards.Insert(ctx, tc); err != nil {
		log.Printf("insert timecard for %s: %v", sanitizeForLog(event.EmployeeID), err)
		respondError(w, http.StatusInternalServerError, "failed to store timecard")
		return
	}

	respondJSON(w, http.StatusCreated, timecard.ReportResponse{
		Success: true,
		Message: "clock " + entryType + " recorded",
		Data:    toRecord(tc),
	})
}

// nextEntryType flips the employee's most recent entry; the first ever
// record is always an "in".
func (h *TimecardsHandler) nextEntryType(r *http.Request, employeeID string) (string, error) {
	last, err := h.store.Timecards.LastForEmployee(r.Context(), employeeID)
	if err != nil {
		log.Printf("last timecard for %s: %v", sanitizeForLog(employeeID), err)
		return "", err
	}
	if last == nil || last.EntryType == timecard.EntryOut {
		return timecard.EntryIn, nil
	}
	return timecard.EntryOut, nil
}

// List handles GET /api/timecards with start_date/end_date/limit filters.
func (h *TimecardsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseTimecardFilter(w, r)
	if !ok {
		return
	}

	cards, err := h.store.Timecards.List(r.Context(), filter)
	if err != nil {
		log.Printf("list timecards: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list timecards")
		return
	}
	respondTimecards(w, cards)
}

// ListForEmployee handles GET /api/employee/{id}/timecards.
func (h *TimecardsHandler) ListForEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	filter, ok := parseTimecardFilter(w, r)
	if !ok {
		return
	}

	cards, err := h.store.Timecards.ListForEmployee(r.Context(), employeeID, filter)
	if err != nil {
		log.Printf("list timecards for %s: %v", sanitizeForLog(employeeID), err)
		respondError(w, http.StatusInternalServerError, "failed to list timecards")
		return
	}
	respondTimecards(w, cards)
}

// parseTimecardFilter reads start_date/end_date/limit query parameters.
// Reports the error response itself and returns ok=false on bad input.
func parseTimecardFilter(w http.ResponseWriter, r *http.Request) (database.TimecardFilter, bool) {
	var filter database.TimecardFilter

	start, err := parseDateParam(r.URL.Query().Get("start_date"), false)
	if err != nil {
		respondError(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		return filter, false
	}
	end, err := parseDateParam(r.URL.Query().Get("end_date"), true)
	if err != nil {
		respondError(w, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
		return filter, false
	}
	filter.Start = start
	filter.End = end

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return filter, false
		}
		filter.Limit = limit
	}
	return filter, true
}

func respondTimecards(w http.ResponseWriter, cards []database.Timecard) {
	records := make([]timecard.Record, 0, len(cards))
	for _, tc := range cards {
		records = append(records, *toRecord(tc))
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"timecards": records,
		"count":     len(records),
	})
}

func toRecord(tc database.Timecard) *timecard.Record {
	return &timecard.Record{
		ID:                tc.ID,
		EmployeeID:        tc.EmployeeID,
		EmployeeName:      tc.EmployeeName,
		Timestamp:         tc.Timestamp,
		RecognitionMethod: tc.RecognitionMethod,
		EntryType:         tc.EntryType,
		CreatedAt:         tc.CreatedAt,
	}
}
