package kairos

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/exp/slog"
)

// Sink is a registered output destination for formatted lines. Emission
// is best-effort: a returned error is reported on the kairos diagnostic
// logger and never reaches the timed workload.
//
// Emit may be called concurrently from multiple goroutines; the built-in
// sinks serialize their own writes.
type Sink interface {
	Emit(level Level, message string) error
}

// LevelLogger is the narrow capability an external structured logging
// backend must provide to be bound with [Tracker.UseLogger]. The tracker
// forwards every emitted line together with its severity; it never owns
// or closes the backend.
type LevelLogger interface {
	Log(level Level, msg string)
}

const (
	sinkKindStream = "stream"
	sinkKindFile   = "file"
	sinkKindCustom = "custom"
)

type sinkEntry struct {
	id   int
	kind string
	// target identifies the destination for duplicate detection: the
	// normalized absolute path for files, the caller's value otherwise.
	target any
	sink   Sink
}

func (e *sinkEntry) close() {
	c, ok := e.sink.(io.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		logger.Warn("closing sink failed",
			slog.String("sink", e.describe()),
			slog.String("error", err.Error()))
	}
}

func (e *sinkEntry) describe() string {
	if p, ok := e.target.(string); ok {
		return p
	}
	return e.kind
}

type streamSink struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *streamSink) Emit(_ Level, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !strings.HasSuffix(message, "\n") {
		message += "\n"
	}
	_, err := io.WriteString(s.w, message)
	return err
}

// fileSink appends lines to a file, opening it on first write and
// keeping it open until closed by sink removal or tracker shutdown.
type fileSink struct {
	mu   sync.Mutex
	path string
	f    *os.File
}

func (s *fileSink) Emit(_ Level, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		s.f = f
	}
	if !strings.HasSuffix(message, "\n") {
		message += "\n"
	}
	_, err := s.f.WriteString(message)
	return err
}

func (s *fileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}

func autonameLogFile(now time.Time) string {
	return "time_tracker_" + now.Format("20060102") + ".log"
}
