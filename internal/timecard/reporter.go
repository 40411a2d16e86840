package timecard

import (
	"context"
	"log"
	"time"
)

// MethodFacial marks events produced by the recognition pipeline.
const MethodFacial = "facial"

// Reporter adapts Client to the capture loop's EventReporter interface.
// Delivery failures are logged and reported as false; the loop treats
// attendance as best-effort.
type Reporter struct {
	client *Client
}

// NewReporter wraps a backend client.
func NewReporter(client *Client) *Reporter {
	return &Reporter{client: client}
}

// Report delivers one attendance event. It returns the entry type the
// backend assigned and whether delivery succeeded.
func (r *Reporter) Report(ctx context.Context, employeeID, employeeName string, at time.Time) (string, bool) {
	record, err := r.client.ReportTimecard(ctx, Event{
		EmployeeID:   employeeID,
		EmployeeName: employeeName,
		Timestamp:    at,
		Method:       MethodFacial,
	})
	if err != nil {
		log.Printf("dropping attendance event for %s: %v", employeeID, err)
		return "", false
	}
	return record.EntryType, true
}
