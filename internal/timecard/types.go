package timecard

import "time"

// Entry types assigned by the backend when a timecard is recorded.
const (
	EntryIn  = "in"
	EntryOut = "out"
)

// Event is one attendance event produced by the recognition pipeline.
type Event struct {
	EmployeeID   string    `json:"employee_id"`
	EmployeeName string    `json:"employee_name"`
	Timestamp    time.Time `json:"timestamp"`
	Method       string    `json:"recognition_method"`
}

// Record is a stored timecard as returned by the backend.
type Record struct {
	ID                string    `json:"id"`
	EmployeeID        string    `json:"employee_id"`
	EmployeeName      string    `json:"employee_name"`
	Timestamp         time.Time `json:"timestamp"`
	RecognitionMethod string    `json:"recognition_method"`
	EntryType         string    `json:"entry_type"`
	CreatedAt         time.Time `json:"created_at"`
}

// Employee is a roster entry as returned by the backend.
type Employee struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ReportResponse is the backend's answer to a timecard POST.
type ReportResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Data    *Record `json:"data"`
}

// StatusResponse describes whether an employee is currently clocked in.
type StatusResponse struct {
	EmployeeID string  `json:"employee_id"`
	Status     string  `json:"status"` // "in", "out" or "never"
	LastEntry  *Record `json:"last_entry"`
}

// FaceCountResponse reports how many face samples an employee has stored.
type FaceCountResponse struct {
	IsRegistered bool `json:"is_registered"`
	FaceCount    int  `json:"face_count"`
}
