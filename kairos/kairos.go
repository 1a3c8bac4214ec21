// Package kairos measures the wall-clock cost of named tasks.
//
// A [Tracker] accumulates per-task statistics (count, total, average,
// min, max, last) across repeated measurements and renders them in a
// tabular manner, either on demand via [Tracker.Summary] or, in emit-each
// mode, as one line per completed measurement. Output destinations are
// pluggable sinks: any io.Writer, a file or directory path, a custom
// [Sink], or an external structured logger bound with [Tracker.UseLogger].
//
// A process-wide default tracker is available through [Default] and the
// package-level wrappers:
//
//	kairos.Configure(kairos.Options{EmitEach: kairos.Bool(true)})
//	kairos.Add("logs/")
//
//	span, _ := kairos.Start("LOAD_DATA")
//	loadData()
//	span.Stop()
//
//	kairos.Summary()
package kairos

import (
	"os"

	"golang.org/x/exp/slog"
)

var (
	logger   *slog.Logger
	logLevel *slog.LevelVar

	defaultTracker *Tracker
)

func init() {
	logLevel = new(slog.LevelVar)
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(h)

	defaultTracker = New()
}

// SetLogger sets the logger used for kairos' own diagnostics, such as
// swallowed sink write failures.
// [SetLogLevel] will not be enforced if a custom logger is used.
func SetLogger(newlogger *slog.Logger) {
	logger = newlogger
}

// SetLogLevel sets the level for kairos messages unless [SetLogger] has
// been called. The default log level is the zero value of [slog.LevelVar].
func SetLogLevel(level slog.Level) {
	logLevel.Set(level)
}

// Default returns the process-wide tracker used by the package-level
// functions. Code that needs isolation (tests in particular) should
// construct its own tracker with [New].
func Default() *Tracker {
	return defaultTracker
}

// Bool returns a pointer to b, for use in [Options].
func Bool(b bool) *bool { return &b }

// String returns a pointer to s, for use in [Options].
func String(s string) *string { return &s }

// Add registers a sink on the default tracker. See [Tracker.Add].
func Add(target any) (int, error) {
	return defaultTracker.Add(target)
}

// Remove removes the sink with the given id from the default tracker.
func Remove(id int) {
	defaultTracker.Remove(id)
}

// RemoveAll removes every sink from the default tracker.
func RemoveAll() {
	defaultTracker.RemoveAll()
}

// Configure applies opts to the default tracker. See [Tracker.Configure].
func Configure(opts Options) error {
	return defaultTracker.Configure(opts)
}

// ConfigureMap applies dynamically keyed options to the default tracker.
// See [Tracker.ConfigureMap].
func ConfigureMap(opts map[string]any) error {
	return defaultTracker.ConfigureMap(opts)
}

// UseLogger binds an external structured logger to the default tracker.
func UseLogger(l LevelLogger) {
	defaultTracker.UseLogger(l)
}

// Start begins a measurement on the default tracker. See [Tracker.Start].
func Start(task string, opts ...SpanOption) (*Span, error) {
	return defaultTracker.Start(task, opts...)
}

// Measure times fn on the default tracker. See [Tracker.Measure].
func Measure(task string, fn func() error, opts ...SpanOption) error {
	return defaultTracker.Measure(task, fn, opts...)
}

// Summary renders and emits the default tracker's statistics.
func Summary(opts ...SummaryOption) (string, error) {
	return defaultTracker.Summary(opts...)
}

// Snapshot returns the default tracker's statistics in first-seen order.
func Snapshot() []TaskStats {
	return defaultTracker.Snapshot()
}

// Reset clears the default tracker's recorded statistics.
func Reset() {
	defaultTracker.Reset()
}

// Close closes and removes the default tracker's sinks.
func Close() error {
	return defaultTracker.Close()
}
