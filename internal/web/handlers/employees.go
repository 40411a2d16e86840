package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/WilliamWachholz/CameraTimeCard/internal/database"
	"github.com/WilliamWachholz/CameraTimeCard/internal/timecard"
)

// embeddingDim is the only accepted face embedding length.
const embeddingDim = 128

// EmployeesHandler handles roster and face registration endpoints
type EmployeesHandler struct {
	store *database.Store
}

// NewEmployeesHandler creates a new employees handler
func NewEmployeesHandler(store *database.Store) *EmployeesHandler {
	return &EmployeesHandler{store: store}
}

// List handles GET /api/employees.
func (h *EmployeesHandler) List(w http.ResponseWriter, r *http.Request) {
	employees, err := h.store.Employees.List(r.Context())
	if err != nil {
		log.Printf("list employees: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list employees")
		return
	}

	out := make([]timecard.Employee, 0, len(employees))
	for _, emp := range employees {
		out = append(out, timecard.Employee{
			ID:        emp.ID,
			Name:      emp.Name,
			CreatedAt: emp.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"employees": out,
		"count":     len(out),
	})
}

// Create handles POST /api/employees. Creating an existing id is not an
// error; the original record is kept so kiosks can sync blindly.
func (h *EmployeesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.ID == "" || req.Name == "" {
		respondError(w, http.StatusBadRequest, "id and name are required")
		return
	}

	ctx := r.Context()
	existing, err := h.store.Employees.Get(ctx, req.ID)
	if err != nil {
		log.Printf("get employee %s: %v", sanitizeForLog(req.ID), err)
		respondError(w, http.StatusInternalServerError, "failed to load employee")
		return
	}
	if existing != nil {
		respondJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "employee already registered",
		})
		return
	}

	if err := h.store.Employees.Create(ctx, database.Employee{ID: req.ID, Name: req.Name}); err != nil {
		log.Printf("create employee %s: %v", sanitizeForLog(req.ID), err)
		respondError(w, http.StatusInternalServerError, "failed to create employee")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "employee created",
	})
}

// Status handles GET /api/employee/{id}/status.
func (h *EmployeesHandler) Status(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	last, err := h.store.Timecards.LastForEmployee(r.Context(), employeeID)
	if err != nil {
		log.Printf("last timecard for %s: %v", sanitizeForLog(employeeID), err)
		respondError(w, http.StatusInternalServerError, "failed to load status")
		return
	}

	resp := timecard.StatusResponse{
		EmployeeID: employeeID,
		Status:     "never",
	}
	if last != nil {
		resp.Status = last.EntryType
		resp.LastEntry = toRecord(*last)
	}
	respondJSON(w, http.StatusOK, resp)
}

// AddFace handles POST /api/employee/{id}/faces.
func (h *EmployeesHandler) AddFace(w http.ResponseWriter, r *http.Request) {
	if h.store.Faces == nil {
		respondError(w, http.StatusNotImplemented, "face storage not supported by this backend")
		return
	}
	employeeID := chi.URLParam(r, "id")

	var req struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if len(req.Embedding) != embeddingDim {
		respondError(w, http.StatusBadRequest, "embedding must have 128 dimensions")
		return
	}

	ctx := r.Context()
	emp, err := h.store.Employees.Get(ctx, employeeID)
	if err != nil {
		log.Printf("get employee %s: %v", sanitizeForLog(employeeID), err)
		respondError(w, http.StatusInternalServerError, "failed to load employee")
		return
	}
	if emp == nil {
		respondError(w, http.StatusNotFound, "employee not found")
		return
	}

	if err := h.store.Faces.Append(ctx, employeeID, req.Embedding); err != nil {
		log.Printf("append face for %s: %v", sanitizeForLog(employeeID), err)
		respondError(w, http.StatusInternalServerError, "failed to store face")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "face stored",
	})
}

// identifyLimit bounds how many stored embeddings the nearest-neighbor
// lookup considers before collapsing to one result per employee.
const identifyLimit = 10

// Identify handles POST /api/faces/identify. It classifies a probe
// embedding against the stored faces and returns candidate employees
// nearest first, one entry per employee with its best distance. Match
// policy (tolerance) stays with the caller.
func (h *EmployeesHandler) Identify(w http.ResponseWriter, r *http.Request) {
	if h.store.Faces == nil {
		respondError(w, http.StatusNotImplemented, "face storage not supported by this backend")
		return
	}

	var req struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if len(req.Embedding) != embeddingDim {
		respondError(w, http.StatusBadRequest, "embedding must have 128 dimensions")
		return
	}

	ctx := r.Context()
	matches, err := h.store.Faces.Nearest(ctx, req.Embedding, identifyLimit)
	if err != nil {
		log.Printf("nearest faces: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to search faces")
		return
	}

	type candidate struct {
		EmployeeID   string  `json:"employee_id"`
		EmployeeName string  `json:"employee_name"`
		Distance     float64 `json:"distance"`
	}
	seen := make(map[string]bool)
	candidates := make([]candidate, 0, len(matches))
	for _, m := range matches {
		if seen[m.Face.EmployeeID] {
			continue
		}
		seen[m.Face.EmployeeID] = true

		name := ""
		if emp, err := h.store.Employees.Get(ctx, m.Face.EmployeeID); err == nil && emp != nil {
			name = emp.Name
		}
		candidates = append(candidates, candidate{
			EmployeeID:   m.Face.EmployeeID,
			EmployeeName: name,
			Distance:     m.Distance,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"matches": candidates,
		"count":   len(candidates),
	})
}

// FaceCount handles GET /api/employee/{id}/faces/count.
func (h *EmployeesHandler) FaceCount(w http.ResponseWriter, r *http.Request) {
	if h.store.Faces == nil {
		respondError(w, http.StatusNotImplemented, "face storage not supported by this backend")
		return
	}
	employeeID := chi.URLParam(r, "id")

	count, err := h.store.Faces.Count(r.Context(), employeeID)
	if err != nil {
		log.Printf("count faces for %s: %v", sanitizeForLog(employeeID), err)
		respondError(w, http.StatusInternalServerError, "failed to count faces")
		return
	}
	respondJSON(w, http.StatusOK, timecard.FaceCountResponse{
		IsRegistered: count > 0,
		FaceCount:    count,
	})
}
