package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/WilliamWachholz/CameraTimeCard/internal/database"
	"github.com/WilliamWachholz/CameraTimeCard/internal/timecard"
)

func TestTimecardsHandler_Report_FirstEntryIsIn(t *testing.T) {
	store, employees, _, _ := setupStore()
	employees.AddEmployee(database.Employee{ID: "emp001", Name: "Alice Smith"})
	handler := NewTimecardsHandler(store)

	req := jsonRequest(t, "POST", "/api/timecard", timecard.Event{
		EmployeeID:   "emp001",
		EmployeeName: "Alice Smith",
		Timestamp:    time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
		Method:       "facial",
	})
	recorder := httptest.NewRecorder()

	handler.Report(recorder, req)

	assertStatusCode(t, recorder, http.StatusCreated)

	var resp timecard.ReportResponse
	parseJSONResponse(t, recorder, &resp)
	if !resp.Success {
		t.Error("expected success=true")
	}
	if resp.Data == nil {
		t.Fatal("expected data, got nil")
	}
	if resp.Data.EntryType != timecard.EntryIn {
		t.Errorf("expected entry_type 'in', got '%s'", resp.Data.EntryType)
	}
	if _, err := uuid.Parse(resp.Data.ID); err != nil {
		t.Errorf("expected uuid record id, got '%s'", resp.Data.ID)
	}
}

func TestTimecardsHandler_Report_FlipsEntryType(t *testing.T) {
	store, employees, timecards, _ := setupStore()
	employees.AddEmployee(database.Employee{ID: "emp001", Name: "Alice Smith"})
	handler := NewTimecardsHandler(store)

	report := func(t *testing.T, at time.Time) string {
		t.Helper()
		req := jsonRequest(t, "POST", "/api/timecard", timecard.Event{
			EmployeeID: "emp001",
			Timestamp:  at,
		})
		recorder := httptest.NewRecorder()
		handler.Report(recorder, req)
		assertStatusCode(t, recorder, http.StatusCreated)
		var resp timecard.ReportResponse
		parseJSONResponse(t, recorder, &resp)
		return resp.Data.EntryType
	}

	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	if got := report(t, base); got != timecard.EntryIn {
		t.Errorf("first report: expected 'in', got '%s'", got)
	}
	if got := report(t, base.Add(8*time.Hour)); got != timecard.EntryOut {
		t.Errorf("second report: expected 'out', got '%s'", got)
	}
	if got := report(t, base.Add(24*time.Hour)); got != timecard.EntryIn {
		t.Errorf("third report: expected 'in', got '%s'", got)
	}

	stored, err := timecards.List(context.Background(), database.TimecardFilter{})
	if err != nil {
		t.Fatalf("failed to list stored timecards: %v", err)
	}
	if len(stored) != 3 {
		t.Errorf("expected 3 stored timecards, got %d", len(stored))
	}
}

func TestTimecardsHandler_Report_AutoCreatesEmployee(t *testing.T) {
	store, employees, _, _ := setupStore()
	handler := NewTimecardsHandler(store)

	req := jsonRequest(t, "POST", "/api/timecard", timecard.Event{
		EmployeeID:   "emp042",
		EmployeeName: "Carol White",
	})
	recorder := httptest.NewRecorder()

	handler.Report(recorder, req)

	assertStatusCode(t, recorder, http.StatusCreated)

	emp, err := employees.Get(context.Background(), "emp042")
	if err != nil {
		t.Fatalf("failed to get employee: %v", err)
	}
	if emp == nil {
		t.Fatal("expected auto-created employee, got nil")
	}
	if emp.Name != "Carol White" {
		t.Errorf("expected name 'Carol White', got '%s'", emp.Name)
	}
}

func TestTimecardsHandler_Report_MissingEmployeeID(t *testing.T) {
	store, _, _, _ := setupStore()
	handler := NewTimecardsHandler(store)

	req := jsonRequest(t, "POST", "/api/timecard", timecard.Event{EmployeeName: "Nobody"})
	recorder := httptest.NewRecorder()

	handler.Report(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "employee_id is required")
}

func TestTimecardsHandler_Report_InvalidBody(t *testing.T) {
	store, _, _, _ := setupStore()
	handler := NewTimecardsHandler(store)

	req := httptest.NewRequest("POST", "/api/timecard", strings.NewReader("{not json"))
	recorder := httptest.NewRecorder()

	handler.Report(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, errInvalidRequestBody)
}

func TestTimecardsHandler_Report_StoreError(t *testing.T) {
	store, employees, timecards, _ := setupStore()
	employees.AddEmployee(database.Employee{ID: "emp001", Name: "Alice Smith"})
	timecards.InsertError = errors.New("connection reset")
	handler := NewTimecardsHandler(store)

	req := jsonRequest(t, "POST", "/api/timecard", timecard.Event{EmployeeID: "emp001"})
	recorder := httptest.NewRecorder()

	handler.Report(recorder, req)

	assertStatusCode(t, recorder, http.StatusInternalServerError)
}

func TestTimecardsHandler_List_FiltersByDate(t *testing.T) {
	store, _, timecards, _ := setupStore()
	handler := NewTimecardsHandler(store)

	seed := func(day int) {
		timecards.Insert(context.Background(), database.Timecard{
			ID:         uuid.NewString(),
			EmployeeID: "emp001",
			Timestamp:  time.Date(2024, 3, day, 9, 0, 0, 0, time.UTC),
			EntryType:  timecard.EntryIn,
		})
	}
	seed(1)
	seed(5)
	seed(10)

	req := httptest.NewRequest("GET", "/api/timecards?start_date=2024-03-02&end_date=2024-03-09", nil)
	recorder := httptest.NewRecorder()

	handler.List(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var resp struct {
		Timecards []timecard.Record `json:"timecards"`
		Count     int               `json:"count"`
	}
	parseJSONResponse(t, recorder, &resp)
	if resp.Count != 1 {
		t.Fatalf("expected 1 timecard, got %d", resp.Count)
	}
	if resp.Timecards[0].Timestamp.Day() != 5 {
		t.Errorf("expected the March 5 record, got %v", resp.Timecards[0].Timestamp)
	}
}

func TestTimecardsHandler_List_BadDate(t *testing.T) {
	store, _, _, _ := setupStore()
	handler := NewTimecardsHandler(store)

	req := httptest.NewRequest("GET", "/api/timecards?start_date=yesterday", nil)
	recorder := httptest.NewRecorder()

	handler.List(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
}

func TestTimecardsHandler_ListForEmployee(t *testing.T) {
	store, _, timecards, _ := setupStore()
	handler := NewTimecardsHandler(store)

	for i, empID := range []string{"emp001", "emp002", "emp001"} {
		timecards.Insert(context.Background(), database.Timecard{
			ID:         uuid.NewString(),
			EmployeeID: empID,
			Timestamp:  time.Date(2024, 3, 1, 8+i, 0, 0, 0, time.UTC),
			EntryType:  timecard.EntryIn,
		})
	}

	req := httptest.NewRequest("GET", "/api/employee/emp001/timecards", nil)
	req = requestWithChiParams(req, map[string]string{"id": "emp001"})
	recorder := httptest.NewRecorder()

	handler.ListForEmployee(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var resp struct {
		Timecards []timecard.Record `json:"timecards"`
	}
	parseJSONResponse(t, recorder, &resp)
	if len(resp.Timecards) != 2 {
		t.Fatalf("expected 2 timecards, got %d", len(resp.Timecards))
	}
	// Newest first.
	if !resp.Timecards[0].Timestamp.After(resp.Timecards[1].Timestamp) {
		t.Error("timecards not sorted newest first")
	}
}
