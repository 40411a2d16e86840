package database

import "time"

// Employee is a roster entry in the backend store.
type Employee struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Timecard is one immutable attendance record.
type Timecard struct {
	ID                string // uuid
	EmployeeID        string
	EmployeeName      string
	Timestamp         time.Time
	RecognitionMethod string
	EntryType         string // "in" or "out"
	CreatedAt         time.Time
}

// StoredFace is a face embedding mirrored to the backend so kiosks can
// resync their local encoding stores.
type StoredFace struct {
	ID         int64
	EmployeeID string
	Embedding  []float32
	Dim        int
	CreatedAt  time.Time
}

// FaceMatch pairs a stored embedding with its distance to a probe.
type FaceMatch struct {
	Face     StoredFace
	Distance float64
}

// TimecardFilter narrows timecard listings.
type TimecardFilter struct {
	Start *time.Time
	End   *time.Time
	Limit int // 0 means the store's default
}
