package timeclock

import "time"

// Cooldown suppresses repeat attendance events for the same employee within
// a fixed window. It is owned by a single capture loop and is deliberately
// not safe for concurrent use.
type Cooldown struct {
	window   time.Duration
	lastSeen map[string]time.Time
}

// NewCooldown creates a cooldown gate with the given window.
// A zero window disables suppression.
func NewCooldown(window time.Duration) *Cooldown {
	return &Cooldown{
		window:   window,
		lastSeen: make(map[string]time.Time),
	}
}

// Allow reports whether an event for employeeID may fire at now.
// It returns true and records now iff no prior timestamp exists or the
// window has fully elapsed since the last allowed event.
func (c *Cooldown) Allow(employeeID string, now time.Time) bool {
	if last, ok := c.lastSeen[employeeID]; ok && now.Sub(last) < c.window {
		return false
	}
	c.lastSeen[employeeID] = now
	return true
}

// Reset clears the stamp for employeeID, letting the next sighting pass.
// The loop calls this when reporting failed so the event is not lost to the
// cooldown window.
func (c *Cooldown) Reset(employeeID string) {
	delete(c.lastSeen, employeeID)
}
