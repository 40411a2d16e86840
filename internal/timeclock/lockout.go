package timeclock

import "time"

// failureWindow is how far back unknown-face sightings count toward lockout.
const failureWindow = time.Hour

// Lockout suppresses all reporting after too many unknown-face sightings in
// a short period. Like Cooldown it is single-owner state of the capture loop.
type Lockout struct {
	maxAttempts int
	duration    time.Duration
	failures    []time.Time
	until       time.Time
}

// NewLockout creates a lockout tracker. maxAttempts <= 0 disables it.
func NewLockout(maxAttempts int, duration time.Duration) *Lockout {
	return &Lockout{
		maxAttempts: maxAttempts,
		duration:    duration,
	}
}

// RecordFailure registers an unknown-face sighting at now. When the number
// of sightings within the last hour reaches the limit, the lockout engages.
func (l *Lockout) RecordFailure(now time.Time) {
	if l.maxAttempts <= 0 {
		return
	}

	cutoff := now.Add(-failureWindow)
	kept := l.failures[:0]
	for _, t := range l.failures {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.failures = append(kept, now)

	if len(l.failures) >= l.maxAttempts {
		l.until = now.Add(l.duration)
	}
}

// Locked reports whether reporting is currently suppressed. An expired
// lockout clears the failure history.
func (l *Lockout) Locked(now time.Time) bool {
	if l.until.IsZero() {
		return false
	}
	if now.After(l.until) {
		l.until = time.Time{}
		l.failures = l.failures[:0]
		return false
	}
	return true
}
