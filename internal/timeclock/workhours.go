package timeclock

import (
	"time"

	"github.com/WilliamWachholz/CameraTimeCard/internal/config"
)

// WorkHours gates attendance events to a daily clock window.
type WorkHours struct {
	startMin        int
	endMin          int
	allowAfterHours bool
}

// NewWorkHours parses "HH:MM" bounds into a gate. Empty bounds disable the
// gate entirely (nil receiver is handled by Allowed).
func NewWorkHours(start, end string, allowAfterHours bool) (*WorkHours, error) {
	if start == "" || end == "" {
		return nil, nil
	}
	startMin, err := config.ParseClock(start)
	if err != nil {
		return nil, err
	}
	endMin, err := config.ParseClock(end)
	if err != nil {
		return nil, err
	}
	return &WorkHours{
		startMin:        startMin,
		endMin:          endMin,
		allowAfterHours: allowAfterHours,
	}, nil
}

// Allowed reports whether an event at now may be recorded. Outside the
// window it is only allowed when after-hours registration is enabled.
func (w *WorkHours) Allowed(now time.Time) bool {
	if w == nil || w.allowAfterHours {
		return true
	}
	mins := now.Hour()*60 + now.Minute()
	return mins >= w.startMin && mins <= w.endMin
}
