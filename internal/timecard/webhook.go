package timecard

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/WilliamWachholz/CameraTimeCard/internal/config"
)

// Webhook event names.
const (
	EventFirstEntry     = "first_entry"
	EventLateArrival    = "late_arrival"
	EventEarlyDeparture = "early_departure"
	EventUnknownFace    = "unknown_face"
)

const webhookTimeout = 5 * time.Second

// Notifier posts attendance notifications to an operator webhook.
// Every failure is logged and swallowed; notifications never affect the
// capture loop.
type Notifier struct {
	url        string
	httpClient *http.Client

	notifyFirstEntry     bool
	notifyLateArrival    bool
	notifyEarlyDeparture bool
	notifyUnknownFace    bool
	lateAfterMin         int
	earlyBeforeMin       int
}

// NewNotifier builds a notifier from webhook config. Returns nil when no
// webhook URL is configured; a nil Notifier is safe to call.
func NewNotifier(cfg config.WebhookConfig) *Notifier {
	if cfg.URL == "" {
		return nil
	}

	n := &Notifier{
		url:                  cfg.URL,
		httpClient:           &http.Client{Timeout: webhookTimeout},
		notifyFirstEntry:     cfg.NotifyFirstEntry,
		notifyLateArrival:    cfg.NotifyLateArrival,
		notifyEarlyDeparture: cfg.NotifyEarlyDeparture,
		notifyUnknownFace:    cfg.NotifyUnknownFace,
		lateAfterMin:         -1,
		earlyBeforeMin:       -1,
	}
	if mins, err := config.ParseClock(cfg.LateArrivalAfter); err == nil {
		n.lateAfterMin = mins
	}
	if mins, err := config.ParseClock(cfg.EarlyDepartureBefore); err == nil {
		n.earlyBeforeMin = mins
	}
	return n
}

// NotifyAttendance emits first-entry, late-arrival and early-departure
// notifications for a recorded timecard.
func (n *Notifier) NotifyAttendance(employeeID, employeeName, entryType string, at time.Time) {
	if n == nil {
		return
	}

	data := map[string]any{
		"employee_id":   employeeID,
		"employee_name": employeeName,
		"entry_type":    entryType,
	}
	mins := at.Hour()*60 + at.Minute()

	switch entryType {
	case EntryIn:
		if n.notifyFirstEntry {
			n.send(EventFirstEntry, data)
		}
		if n.notifyLateArrival && n.lateAfterMin >= 0 && mins > n.lateAfterMin {
			n.send(EventLateArrival, data)
		}
	case EntryOut:
		if n.notifyEarlyDeparture && n.earlyBeforeMin >= 0 && mins < n.earlyBeforeMin {
			n.send(EventEarlyDeparture, data)
		}
	}
}

// NotifyUnknownFace emits an unknown-face notification.
func (n *Notifier) NotifyUnknownFace(at time.Time) {
	if n == nil || !n.notifyUnknownFace {
		return
	}
	n.send(EventUnknownFace, map[string]any{"seen_at": at.Format(time.RFC3339)})
}

func (n *Notifier) send(event string, data map[string]any) {
	payload, err := json.Marshal(map[string]any{
		"event":     event,
		"timestamp": time.Now().Format(time.RFC3339),
		"data":      data,
	})
	if err != nil {
		log.Printf("webhook payload for %s: %v", event, err)
		return
	}

	resp, err := n.httpClient.Post(n.url, "application/json", bytes.NewReader(payload))
	if err != nil {
		log.Printf("webhook %s failed: %v", event, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Printf("webhook %s returned status %d", event, resp.StatusCode)
	}
}
