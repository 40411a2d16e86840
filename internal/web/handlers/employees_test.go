package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/WilliamWachholz/CameraTimeCard/internal/database"
	"github.com/WilliamWachholz/CameraTimeCard/internal/timecard"
)

func testEmbedding() []float32 {
	embedding := make([]float32, 128)
	for i := range embedding {
		embedding[i] = float32(i) / 128.0
	}
	return embedding
}

func TestEmployeesHandler_List(t *testing.T) {
	store, employees, _, _ := setupStore()
	employees.AddEmployee(database.Employee{ID: "emp002", Name: "Bob Jones"})
	employees.AddEmployee(database.Employee{ID: "emp001", Name: "Alice Smith"})
	handler := NewEmployeesHandler(store)

	req := httptest.NewRequest("GET", "/api/employees", nil)
	recorder := httptest.NewRecorder()

	handler.List(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var resp struct {
		Employees []timecard.Employee `json:"employees"`
		Count     int                 `json:"count"`
	}
	parseJSONResponse(t, recorder, &resp)
	if resp.Count != 2 {
		t.Fatalf("expected 2 employees, got %d", resp.Count)
	}
	// Ordered by name.
	if resp.Employees[0].Name != "Alice Smith" {
		t.Errorf("expected 'Alice Smith' first, got '%s'", resp.Employees[0].Name)
	}
}

func TestEmployeesHandler_Create(t *testing.T) {
	store, employees, _, _ := setupStore()
	handler := NewEmployeesHandler(store)

	req := jsonRequest(t, "POST", "/api/employees", map[string]string{
		"id":   "emp001",
		"name": "Alice Smith",
	})
	recorder := httptest.NewRecorder()

	handler.Create(recorder, req)

	assertStatusCode(t, recorder, http.StatusCreated)

	emp, err := employees.Get(context.Background(), "emp001")
	if err != nil {
		t.Fatalf("failed to get employee: %v", err)
	}
	if emp == nil || emp.Name != "Alice Smith" {
		t.Errorf("employee not stored: %+v", emp)
	}
}

func TestEmployeesHandler_Create_ExistingKeepsOriginal(t *testing.T) {
	store, employees, _, _ := setupStore()
	employees.AddEmployee(database.Employee{ID: "emp001", Name: "Alice Smith"})
	handler := NewEmployeesHandler(store)

	req := jsonRequest(t, "POST", "/api/employees", map[string]string{
		"id":   "emp001",
		"name": "Impostor",
	})
	recorder := httptest.NewRecorder()

	handler.Create(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	emp, _ := employees.Get(context.Background(), "emp001")
	if emp.Name != "Alice Smith" {
		t.Errorf("expected original name kept, got '%s'", emp.Name)
	}
}

func TestEmployeesHandler_Create_MissingFields(t *testing.T) {
	store, _, _, _ := setupStore()
	handler := NewEmployeesHandler(store)

	req := jsonRequest(t, "POST", "/api/employees", map[string]string{"id": "emp001"})
	recorder := httptest.NewRecorder()

	handler.Create(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
}

func TestEmployeesHandler_Status(t *testing.T) {
	store, _, timecards, _ := setupStore()
	handler := NewEmployeesHandler(store)

	status := func(t *testing.T, employeeID string) timecard.StatusResponse {
		t.Helper()
		req := httptest.NewRequest("GET", "/api/employee/"+employeeID+"/status", nil)
		req = requestWithChiParams(req, map[string]string{"id": employeeID})
		recorder := httptest.NewRecorder()
		handler.Status(recorder, req)
		assertStatusCode(t, recorder, http.StatusOK)
		var resp timecard.StatusResponse
		parseJSONResponse(t, recorder, &resp)
		return resp
	}

	if got := status(t, "emp001"); got.Status != "never" {
		t.Errorf("expected status 'never', got '%s'", got.Status)
	}

	timecards.Insert(context.Background(), database.Timecard{
		ID:         uuid.NewString(),
		EmployeeID: "emp001",
		Timestamp:  time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
		EntryType:  timecard.EntryIn,
	})

	got := status(t, "emp001")
	if got.Status != timecard.EntryIn {
		t.Errorf("expected status 'in', got '%s'", got.Status)
	}
	if got.LastEntry == nil {
		t.Error("expected last_entry, got nil")
	}
}

func TestEmployeesHandler_AddFace(t *testing.T) {
	store, employees, _, faces := setupStore()
	employees.AddEmployee(database.Employee{ID: "emp001", Name: "Alice Smith"})
	handler := NewEmployeesHandler(store)

	req := jsonRequest(t, "POST", "/api/employee/emp001/faces", map[string]any{
		"embedding": testEmbedding(),
	})
	req = requestWithChiParams(req, map[string]string{"id": "emp001"})
	recorder := httptest.NewRecorder()

	handler.AddFace(recorder, req)

	assertStatusCode(t, recorder, http.StatusCreated)

	count, _ := faces.Count(context.Background(), "emp001")
	if count != 1 {
		t.Errorf("expected 1 stored face, got %d", count)
	}
}

func TestEmployeesHandler_AddFace_WrongDimension(t *testing.T) {
	store, employees, _, _ := setupStore()
	employees.AddEmployee(database.Employee{ID: "emp001", Name: "Alice Smith"})
	handler := NewEmployeesHandler(store)

	req := jsonRequest(t, "POST", "/api/employee/emp001/faces", map[string]any{
		"embedding": []float32{1, 2, 3},
	})
	req = requestWithChiParams(req, map[string]string{"id": "emp001"})
	recorder := httptest.NewRecorder()

	handler.AddFace(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "embedding must have 128 dimensions")
}

func TestEmployeesHandler_AddFace_UnknownEmployee(t *testing.T) {
	store, _, _, _ := setupStore()
	handler := NewEmployeesHandler(store)

	req := jsonRequest(t, "POST", "/api/employee/ghost/faces", map[string]any{
		"embedding": testEmbedding(),
	})
	req = requestWithChiParams(req, map[string]string{"id": "ghost"})
	recorder := httptest.NewRecorder()

	handler.AddFace(recorder, req)

	assertStatusCode(t, recorder, http.StatusNotFound)
}

func TestEmployeesHandler_AddFace_NoFaceStore(t *testing.T) {
	store, employees, _, _ := setupStore()
	store.Faces = nil
	employees.AddEmployee(database.Employee{ID: "emp001", Name: "Alice Smith"})
	handler := NewEmployeesHandler(store)

	req := jsonRequest(t, "POST", "/api/employee/emp001/faces", map[string]any{
		"embedding": testEmbedding(),
	})
	req = requestWithChiParams(req, map[string]string{"id": "emp001"})
	recorder := httptest.NewRecorder()

	handler.AddFace(recorder, req)

	assertStatusCode(t, recorder, http.StatusNotImplemented)
}

func TestEmployeesHandler_FaceCount(t *testing.T) {
	store, employees, _, faces := setupStore()
	employees.AddEmployee(database.Employee{ID: "emp001", Name: "Alice Smith"})
	faces.Append(context.Background(), "emp001", testEmbedding())
	faces.Append(context.Background(), "emp001", testEmbedding())
	handler := NewEmployeesHandler(store)

	req := httptest.NewRequest("GET", "/api/employee/emp001/faces/count", nil)
	req = requestWithChiParams(req, map[string]string{"id": "emp001"})
	recorder := httptest.NewRecorder()

	handler.FaceCount(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var resp timecard.FaceCountResponse
	parseJSONResponse(t, recorder, &resp)
	if !resp.IsRegistered {
		t.Error("expected is_registered=true")
	}
	if resp.FaceCount != 2 {
		t.Errorf("expected 2 faces, got %d", resp.FaceCount)
	}
}

func TestEmployeesHandler_List_StoreError(t *testing.T) {
	store, employees, _, _ := setupStore()
	employees.ListError = errors.New("connection reset")
	handler := NewEmployeesHandler(store)

	req := httptest.NewRequest("GET", "/api/employees", nil)
	recorder := httptest.NewRecorder()

	handler.List(recorder, req)

	assertStatusCode(t, recorder, http.StatusInternalServerError)
}

func shiftedEmbedding(offset float32) []float32 {
	embedding := testEmbedding()
	for i := range embedding {
		embedding[i] += offset
	}
	return embedding
}

func TestEmployeesHandler_Identify(t *testing.T) {
	store, employees, _, faces := setupStore()
	employees.AddEmployee(database.Employee{ID: "emp001", Name: "Alice Smith"})
	employees.AddEmployee(database.Employee{ID: "emp002", Name: "Bob Jones"})
	faces.Append(context.Background(), "emp001", testEmbedding())
	faces.Append(context.Background(), "emp001", shiftedEmbedding(0.01))
	faces.Append(context.Background(), "emp002", shiftedEmbedding(0.5))
	handler := NewEmployeesHandler(store)

	req := jsonRequest(t, "POST", "/api/faces/identify", map[string]any{
		"embedding": testEmbedding(),
	})
	recorder := httptest.NewRecorder()

	handler.Identify(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var resp struct {
		Matches []struct {
			EmployeeID   string  `json:"employee_id"`
			EmployeeName string  `json:"employee_name"`
			Distance     float64 `json:"distance"`
		} `json:"matches"`
		Count int `json:"count"`
	}
	parseJSONResponse(t, recorder, &resp)

	// One entry per employee, nearest first.
	if resp.Count != 2 {
		t.Fatalf("expected 2 candidates, got %d", resp.Count)
	}
	if resp.Matches[0].EmployeeID != "emp001" {
		t.Errorf("expected emp001 nearest, got '%s'", resp.Matches[0].EmployeeID)
	}
	if resp.Matches[0].Distance > 0.001 {
		t.Errorf("expected near-zero distance for exact probe, got %f", resp.Matches[0].Distance)
	}
	if resp.Matches[1].EmployeeName != "Bob Jones" {
		t.Errorf("expected 'Bob Jones' second, got '%s'", resp.Matches[1].EmployeeName)
	}
}

func TestEmployeesHandler_Identify_WrongDimension(t *testing.T) {
	store, _, _, _ := setupStore()
	handler := NewEmployeesHandler(store)

	req := jsonRequest(t, "POST", "/api/faces/identify", map[string]any{
		"embedding": []float32{0.1, 0.2},
	})
	recorder := httptest.NewRecorder()

	handler.Identify(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder)
}

func TestEmployeesHandler_Identify_NoFaceStore(t *testing.T) {
	store, _, _, _ := setupStore()
	store.Faces = nil
	handler := NewEmployeesHandler(store)

	req := jsonRequest(t, "POST", "/api/faces/identify", map[string]any{
		"embedding": testEmbedding(),
	})
	recorder := httptest.NewRecorder()

	handler.Identify(recorder, req)

	assertStatusCode(t, recorder, http.StatusNotImplemented)
}

func TestEmployeesHandler_Identify_StoreError(t *testing.T) {
	store, _, _, faces := setupStore()
	faces.NearestError = errors.New("index offline")
	handler := NewEmployeesHandler(store)

	req := jsonRequest(t, "POST", "/api/faces/identify", map[string]any{
		"embedding": testEmbedding(),
	})
	recorder := httptest.NewRecorder()

	handler.Identify(recorder, req)

	assertStatusCode(t, recorder, http.StatusInternalServerError)
	assertJSONError(t, recorder)
}
