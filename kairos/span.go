package kairos

import (
	"fmt"
	"time"
)

// # Span
//
// Represents a running measurement. Its zero value has no meaning. A Span
// should always be instantiated by calling [Tracker.Start] (or the
// package-level [Start]).
//
// A Span belongs to the goroutine that started it; Stop must not be
// called concurrently with itself.
type Span struct {
	tracker *Tracker
	task    string
	level   Level
	start   time.Time
	done    bool
}

// SpanOption customizes a single measurement.
type SpanOption func(*Span) error

// WithLevel sets the severity attached to the span's emitted line,
// overriding the tracker's default level.
func WithLevel(l Level) SpanOption {
	return func(s *Span) error {
		if !l.valid() {
			return &InvalidLevelError{Level: fmt.Sprintf("%d", int(l))}
		}
		s.level = l
		return nil
	}
}

// WithLevelName is [WithLevel] for a level given by name, as when the
// severity comes from user input.
func WithLevelName(name string) SpanOption {
	return func(s *Span) error {
		l, err := ParseLevel(name)
		if err != nil {
			return err
		}
		s.level = l
		return nil
	}
}

// Stop ends the measurement: the elapsed time since [Tracker.Start] is
// computed from the monotonic clock and recorded, and, when emit-each is
// enabled, one formatted line is pushed through every sink. Calling Stop
// more than once records nothing further.
func (s *Span) Stop() {
	s.stopWith(nil)
}

func (s *Span) stopWith(err error) {
	if s.done {
		return
	}
	s.done = true
	s.tracker.record(s.task, time.Since(s.start), s.level, err)
}

// Task returns the task name the span was started with.
func (s *Span) Task() string {
	return s.task
}
