package timecard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/WilliamWachholz/CameraTimeCard/internal/config"
)

type webhookPayload struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data"`
}

func collectWebhook(t *testing.T) (*httptest.Server, *[]webhookPayload) {
	t.Helper()
	var received []webhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p webhookPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Errorf("decoding webhook payload: %v", err)
		}
		received = append(received, p)
	}))
	t.Cleanup(server.Close)
	return server, &received
}

func webhookConfig(url string) config.WebhookConfig {
	return config.WebhookConfig{
		URL:                  url,
		NotifyFirstEntry:     true,
		NotifyLateArrival:    true,
		NotifyEarlyDeparture: true,
		NotifyUnknownFace:    true,
		LateArrivalAfter:     "09:00",
		EarlyDepartureBefore: "17:00",
	}
}

func TestNotifierAttendanceEvents(t *testing.T) {
	tests := []struct {
		name      string
		entryType string
		hour      int
		minute    int
		expected  []string
	}{
		{"on-time entry", EntryIn, 8, 30, []string{EventFirstEntry}},
		{"late entry", EntryIn, 9, 30, []string{EventFirstEntry, EventLateArrival}},
		{"entry exactly at threshold", EntryIn, 9, 0, []string{EventFirstEntry}},
		{"normal departure", EntryOut, 18, 0, nil},
		{"early departure", EntryOut, 15, 0, []string{EventEarlyDeparture}},
		{"departure exactly at threshold", EntryOut, 17, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, received := collectWebhook(t)
			n := NewNotifier(webhookConfig(server.URL))

			at := time.Date(2025, 3, 10, tt.hour, tt.minute, 0, 0, time.UTC)
			n.NotifyAttendance("emp-1", "Ana Souza", tt.entryType, at)

			if len(*received) != len(tt.expected) {
				t.Fatalf("got %d notifications, want %d: %+v", len(*received), len(tt.expected), *received)
			}
			for i, want := range tt.expected {
				if (*received)[i].Event != want {
					t.Errorf("notification %d = %q, want %q", i, (*received)[i].Event, want)
				}
			}
		})
	}
}

func TestNotifierAttendancePayload(t *testing.T) {
	server, received := collectWebhook(t)
	n := NewNotifier(webhookConfig(server.URL))

	n.NotifyAttendance("emp-1", "Ana Souza", EntryIn, time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))

	if len(*received) != 1 {
		t.Fatalf("got %d notifications, want 1", len(*received))
	}
	data := (*received)[0].Data
	if data["employee_id"] != "emp-1" || data["entry_type"] != EntryIn {
		t.Errorf("payload data = %+v", data)
	}
}

func TestNotifierUnknownFace(t *testing.T) {
	server, received := collectWebhook(t)
	n := NewNotifier(webhookConfig(server.URL))

	n.NotifyUnknownFace(time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))

	if len(*received) != 1 || (*received)[0].Event != EventUnknownFace {
		t.Fatalf("got %+v, want one unknown_face notification", *received)
	}
}

func TestNotifierDisabledEvents(t *testing.T) {
	server, received := collectWebhook(t)
	cfg := webhookConfig(server.URL)
	cfg.NotifyFirstEntry = false
	cfg.NotifyUnknownFace = false
	n := NewNotifier(cfg)

	n.NotifyAttendance("emp-1", "Ana Souza", EntryIn, time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))
	n.NotifyUnknownFace(time.Now())

	if len(*received) != 0 {
		t.Errorf("disabled events still produced %d notifications", len(*received))
	}
}

func TestNotifierNilSafe(t *testing.T) {
	n := NewNotifier(config.WebhookConfig{})
	if n != nil {
		t.Fatal("empty webhook URL should yield a nil notifier")
	}

	// Must not panic.
	n.NotifyAttendance("emp-1", "Ana Souza", EntryIn, time.Now())
	n.NotifyUnknownFace(time.Now())
}

func TestNotifierSwallowsServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	n := NewNotifier(webhookConfig(server.URL))
	// Must not panic or block.
	n.NotifyAttendance("emp-1", "Ana Souza", EntryIn, time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))
}
