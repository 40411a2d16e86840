package timeclock

import (
	"context"
	"fmt"
	"log"
	"time"
)

// State is the capture loop's observable state.
type State string

const (
	StateIdle        State = "idle"
	StateCapturing   State = "capturing"
	StateRecognizing State = "recognizing"
	StateReporting   State = "reporting"
	StateStopped     State = "stopped"
)

// FrameSource produces JPEG frames. Read blocks until a frame is available
// and returns an error on device failure, which is fatal to the loop.
type FrameSource interface {
	Read() ([]byte, error)
	Close() error
}

// EventReporter delivers one attendance event to the backend. It returns
// the entry type assigned by the backend ("in"/"out") and whether delivery
// succeeded. Delivery is best-effort; the loop never retries a failure
// beyond clearing the cooldown stamp.
type EventReporter interface {
	Report(ctx context.Context, employeeID, employeeName string, at time.Time) (entryType string, ok bool)
}

// AttendanceNotifier receives side-channel notifications. Implementations
// must never fail the loop; errors stay internal.
type AttendanceNotifier interface {
	NotifyAttendance(employeeID, employeeName, entryType string, at time.Time)
	NotifyUnknownFace(at time.Time)
}

// Loop is the single-threaded capture pipeline: read a frame, recognize,
// gate, report. All state (cooldown map, lockout, store) is private to the
// loop; nothing is shared across goroutines.
type Loop struct {
	source     FrameSource
	recognizer *Recognizer
	cooldown   *Cooldown
	lockout    *Lockout
	hours      *WorkHours
	reporter   EventReporter
	notifier   AttendanceNotifier

	processEvery int
	now          func() time.Time
	state        State
}

// LoopOptions wires the loop's collaborators.
type LoopOptions struct {
	Source       FrameSource
	Recognizer   *Recognizer
	Cooldown     *Cooldown
	Lockout      *Lockout
	WorkHours    *WorkHours
	Reporter     EventReporter
	Notifier     AttendanceNotifier // optional
	ProcessEvery int                // <1 means every frame
	Now          func() time.Time   // optional, defaults to time.Now
}

// NewLoop assembles a capture loop in the idle state.
func NewLoop(opts LoopOptions) *Loop {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	processEvery := opts.ProcessEvery
	if processEvery < 1 {
		processEvery = 1
	}
	return &Loop{
		source:       opts.Source,
		recognizer:   opts.Recognizer,
		cooldown:     opts.Cooldown,
		lockout:      opts.Lockout,
		hours:        opts.WorkHours,
		reporter:     opts.Reporter,
		notifier:     opts.Notifier,
		processEvery: processEvery,
		now:          now,
		state:        StateIdle,
	}
}

// State returns the loop's current state.
func (l *Loop) State() State {
	return l.state
}

// Run drives the pipeline until ctx is cancelled or the camera fails.
// The frame source is always released on exit.
func (l *Loop) Run(ctx context.Context) error {
	defer func() {
		if err := l.source.Close(); err != nil {
			log.Printf("closing frame source: %v", err)
		}
		l.state = StateStopped
	}()

	l.state = StateCapturing
	frameCount := 0

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		frame, err := l.source.Read()
		if err != nil {
			// Device errors are fatal; everything downstream is recoverable.
			return fmt.Errorf("reading frame: %w", err)
		}

		frameCount++
		if frameCount%l.processEvery != 0 {
			continue
		}

		l.state = StateRecognizing
		matches, err := l.recognizer.Recognize(frame)
		if err != nil {
			log.Printf("skipping frame: %v", err)
			l.state = StateCapturing
			continue
		}

		for _, m := range matches {
			l.handleMatch(ctx, m)
		}
		l.state = StateCapturing
	}
}

func (l *Loop) handleMatch(ctx context.Context, m Match) {
	now := l.now()

	if !m.Known() {
		l.lockout.RecordFailure(now)
		if l.notifier != nil {
			l.notifier.NotifyUnknownFace(now)
		}
		return
	}

	if l.lockout.Locked(now) {
		log.Printf("lockout active, ignoring %s", m.EmployeeID)
		return
	}
	if !l.hours.Allowed(now) {
		log.Printf("outside work hours, ignoring %s", m.EmployeeID)
		return
	}
	if !l.cooldown.Allow(m.EmployeeID, now) {
		return
	}

	l.state = StateReporting
	entryType, ok := l.reporter.Report(ctx, m.EmployeeID, m.Name, now)
	if !ok {
		// Failed delivery must not burn the cooldown window.
		l.cooldown.Reset(m.EmployeeID)
		return
	}

	log.Printf("attendance recorded: %s (%s) %s distance=%.3f", m.Name, m.EmployeeID, entryType, m.Distance)
	if l.notifier != nil {
		l.notifier.NotifyAttendance(m.EmployeeID, m.Name, entryType, now)
	}
}
