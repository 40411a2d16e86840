package timecard

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"
)

func TestReporterDeliversEvent(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(ReportResponse{Success: true, Data: &Record{EntryType: EntryIn}})
	}))
	reporter := NewReporter(client)

	entryType, ok := reporter.Report(context.Background(), "emp-1", "Ana Souza", time.Now())
	if !ok {
		t.Fatal("Report() should succeed")
	}
	if entryType != EntryIn {
		t.Errorf("entry type %q, want %q", entryType, EntryIn)
	}
}

func TestReporterUnreachableBackend(t *testing.T) {
	client, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()
	reporter := NewReporter(client)

	// Must report failure, never panic.
	if _, ok := reporter.Report(context.Background(), "emp-1", "Ana Souza", time.Now()); ok {
		t.Error("Report() against an unreachable backend should fail")
	}
}
