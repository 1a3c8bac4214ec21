package kairos

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/exp/slog"
)

// DefaultSummaryTitle heads the summary block unless [WithTitle] is used.
const DefaultSummaryTitle = "Time Consumption Summary"

// Options is the closed set of tracker settings accepted by
// [Tracker.Configure]. Nil fields leave the current value unchanged.
type Options struct {
	// EmitEach toggles one formatted line per completed measurement.
	EmitEach *bool
	// DefaultLevel is the severity used when a span does not set one.
	// Recognized values: "debug", "info", "warn", "error".
	DefaultLevel *string
	// TimeUnit selects duration formatting: [UnitSeconds] or [UnitMillis].
	TimeUnit *string
	// IncludeTimestamp prefixes emitted lines with the wall-clock time.
	IncludeTimestamp *bool
	// AutonameFileIfDir makes Add accept directory paths by appending a
	// dated default file name inside them.
	AutonameFileIfDir *bool
}

// # Tracker
//
// Accumulates per-task wall-clock statistics and broadcasts formatted
// output to its registered sinks. It is designed to be thread safe: one
// coarse lock guards the statistics table, the sink registry and the
// settings, and is never held across sink I/O.
// Its zero value has no meaning; a Tracker should always be instantiated
// by calling [New].
type Tracker struct {
	mu     sync.Mutex
	stats  *statsTable
	sinks  []*sinkEntry
	nextID int
	bound  LevelLogger

	emitEach          bool
	defaultLevel      Level
	timeUnit          string
	includeTimestamp  bool
	autonameFileIfDir bool
}

// New returns a tracker with emit-each off, level INFO, durations in
// seconds, timestamp prefixes on, directory autonaming on, and stdout
// registered as the initial sink.
func New() *Tracker {
	t := &Tracker{
		stats:             newStatsTable(),
		nextID:            1,
		defaultLevel:      LevelInfo,
		timeUnit:          UnitSeconds,
		includeTimestamp:  true,
		autonameFileIfDir: true,
	}

	// Default sink, like a logger.
	if _, err := t.Add(os.Stdout); err != nil {
		logger.Error("registering default stdout sink failed",
			slog.String("error", err.Error()))
	}
	return t
}

// Configure merges opts into the tracker's settings. Values are validated
// eagerly: a bad level fails with [InvalidLevelError], a bad time unit
// with a descriptive error; in either case nothing is changed.
func (t *Tracker) Configure(opts Options) error {
	var (
		level    Level
		haveLvl  bool
		unit     string
		haveUnit bool
	)
	if opts.DefaultLevel != nil {
		l, err := ParseLevel(*opts.DefaultLevel)
		if err != nil {
			return err
		}
		level, haveLvl = l, true
	}
	if opts.TimeUnit != nil {
		u := strings.TrimSpace(*opts.TimeUnit)
		if u != UnitSeconds && u != UnitMillis {
			return fmt.Errorf("kairos: time unit must be %q or %q, got %q", UnitSeconds, UnitMillis, *opts.TimeUnit)
		}
		unit, haveUnit = u, true
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if opts.EmitEach != nil {
		t.emitEach = *opts.EmitEach
	}
	if haveLvl {
		t.defaultLevel = level
	}
	if haveUnit {
		t.timeUnit = unit
	}
	if opts.IncludeTimestamp != nil {
		t.includeTimestamp = *opts.IncludeTimestamp
	}
	if opts.AutonameFileIfDir != nil {
		t.autonameFileIfDir = *opts.AutonameFileIfDir
	}
	return nil
}

// ConfigureMap is [Tracker.Configure] for dynamically sourced options
// (flag parsing, deserialized settings). Recognized keys: "emit_each",
// "default_level", "time_unit", "include_timestamp",
// "autoname_file_if_dir". Unknown keys fail with [UnknownOptionError];
// wrongly typed values fail fast as well. Nothing is applied unless the
// whole map validates.
func (t *Tracker) ConfigureMap(opts map[string]any) error {
	var merged Options
	for key, val := range opts {
		switch key {
		case "emit_each":
			b, err := optionBool(key, val)
			if err != nil {
				return err
			}
			merged.EmitEach = &b
		case "default_level":
			s, err := optionString(key, val)
			if err != nil {
				return err
			}
			merged.DefaultLevel = &s
		case "time_unit":
			s, err := optionString(key, val)
			if err != nil {
				return err
			}
			merged.TimeUnit = &s
		case "include_timestamp":
			b, err := optionBool(key, val)
			if err != nil {
				return err
			}
			merged.IncludeTimestamp = &b
		case "autoname_file_if_dir":
			b, err := optionBool(key, val)
			if err != nil {
				return err
			}
			merged.AutonameFileIfDir = &b
		default:
			return &UnknownOptionError{Key: key}
		}
	}
	return t.Configure(merged)
}

func optionBool(key string, val any) (bool, error) {
	b, ok := val.(bool)
	if !ok {
		return false, fmt.Errorf("kairos: option %q wants a bool, got %T", key, val)
	}
	return b, nil
}

func optionString(key string, val any) (string, error) {
	s, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("kairos: option %q wants a string, got %T", key, val)
	}
	return s, nil
}

// UseLogger binds a single external structured logger. All subsequent
// emission (per-event lines and summaries) is additionally routed to it
// with the line's severity. The tracker never closes the backend; passing
// nil unbinds it.
func (t *Tracker) UseLogger(l LevelLogger) {
	t.mu.Lock()
	t.bound = l
	t.mu.Unlock()
}

// Add registers a sink and returns its id. target may be:
//   - an io.Writer (console stream or any open writer)
//   - a filesystem path string; an existing directory, or a suffix-less
//     path while autonaming is enabled, gets a dated default file name
//     appended. The file is opened lazily in append mode and kept open
//     until the sink is removed or the tracker closed.
//   - a [Sink] implementation.
//
// Registering the same normalized destination again is a no-op returning
// the existing id. A file destination whose parent directory cannot be
// created fails with [SinkUnavailableError].
func (t *Tracker) Add(target any) (int, error) {
	switch v := target.(type) {
	case nil:
		return 0, errors.New("kairos: nil sink target")
	case Sink:
		return t.addEntry(sinkKindCustom, v, v)
	case string:
		path, err := t.resolveFilePath(v)
		if err != nil {
			return 0, err
		}
		return t.addEntry(sinkKindFile, path, &fileSink{path: path})
	case io.Writer:
		return t.addEntry(sinkKindStream, v, &streamSink{w: v})
	}
	return 0, fmt.Errorf("kairos: unsupported sink target %T", target)
}

func (t *Tracker) addEntry(kind string, target any, sink Sink) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, e := range t.sinks {
		if e.kind == kind && sameTarget(e.target, target) {
			return e.id, nil
		}
	}

	id := t.nextID
	t.nextID++
	t.sinks = append(t.sinks, &sinkEntry{id: id, kind: kind, target: target, sink: sink})
	return id, nil
}

// sameTarget tells whether two sink destinations are the same, guarding
// against uncomparable dynamic types.
func sameTarget(a, b any) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || ta == nil || !ta.Comparable() {
		return false
	}
	return a == b
}

// resolveFilePath normalizes a path target and prepares its directory.
func (t *Tracker) resolveFilePath(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", &SinkUnavailableError{Path: p, Err: errors.New("empty path")}
	}

	t.mu.Lock()
	autoname := t.autonameFileIfDir
	t.mu.Unlock()

	abs, err := filepath.Abs(p)
	if err != nil {
		return "", &SinkUnavailableError{Path: p, Err: err}
	}

	trailingSep := os.IsPathSeparator(p[len(p)-1])
	if info, statErr := os.Stat(abs); statErr == nil && info.IsDir() {
		if !autoname {
			return "", &SinkUnavailableError{Path: abs, Err: errors.New("target is a directory")}
		}
		abs = filepath.Join(abs, autonameLogFile(time.Now()))
	} else if trailingSep || (filepath.Ext(abs) == "" && autoname) {
		// Directory-ish path that does not exist yet.
		if err := os.MkdirAll(abs, 0o755); err != nil {
			return "", &SinkUnavailableError{Path: abs, Err: err}
		}
		abs = filepath.Join(abs, autonameLogFile(time.Now()))
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", &SinkUnavailableError{Path: abs, Err: err}
	}
	return abs, nil
}

// Remove removes the sink with the given id, closing it if it holds a
// file. Unknown ids are ignored.
func (t *Tracker) Remove(id int) {
	t.mu.Lock()
	var removed *sinkEntry
	for i, e := range t.sinks {
		if e.id == id {
			removed = e
			t.sinks = append(t.sinks[:i], t.sinks[i+1:]...)
			break
		}
	}
	t.mu.Unlock()

	if removed != nil {
		removed.close()
	}
}

// RemoveAll removes every registered sink, closing file sinks.
func (t *Tracker) RemoveAll() {
	t.mu.Lock()
	removed := t.sinks
	t.sinks = nil
	t.mu.Unlock()

	for _, e := range removed {
		e.close()
	}
}

// Close removes and closes all sinks. Recorded statistics are kept; use
// [Tracker.Reset] to clear them.
func (t *Tracker) Close() error {
	t.RemoveAll()
	return nil
}

// Start begins measuring a task. The task name must be non-empty after
// trimming; options are validated before the start timestamp is taken,
// so a bad level never costs a sample.
func (t *Tracker) Start(task string, opts ...SpanOption) (*Span, error) {
	task = strings.TrimSpace(task)
	if task == "" {
		return nil, errors.New("kairos: task name must be a non-empty string")
	}

	t.mu.Lock()
	level := t.defaultLevel
	t.mu.Unlock()

	s := &Span{tracker: t, task: task, level: level}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.start = time.Now()
	return s, nil
}

// Measure times fn as one sample of task. The sample is recorded even
// when fn returns an error or panics; the error (or panic) then reaches
// the caller unchanged, with the emitted line carrying an ERR tag.
func (t *Tracker) Measure(task string, fn func() error, opts ...SpanOption) error {
	s, err := t.Start(task, opts...)
	if err != nil {
		return err
	}

	var fnErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				s.stopWith(fmt.Errorf("panic: %v", r))
				panic(r)
			}
		}()
		fnErr = fn()
	}()

	s.stopWith(fnErr)
	return fnErr
}

// record feeds one completed sample into the statistics table and, in
// emit-each mode, broadcasts the formatted event line. The lock is
// released before any sink I/O happens.
func (t *Tracker) record(task string, elapsed time.Duration, level Level, workErr error) {
	t.mu.Lock()
	t.stats.record(task, elapsed)
	emit := t.emitEach
	unit := t.timeUnit
	includeTS := t.includeTimestamp
	sinks, bound := t.copySinksLocked()
	t.mu.Unlock()

	if !emit {
		return
	}
	line := renderEvent(time.Now(), includeTS, level, task, elapsed, unit, workErr)
	broadcast(sinks, bound, level, line)
}

func (t *Tracker) copySinksLocked() ([]*sinkEntry, LevelLogger) {
	sinks := make([]*sinkEntry, len(t.sinks))
	copy(sinks, t.sinks)
	return sinks, t.bound
}

// broadcast writes line to every sink and the bound logger. A failing
// sink never aborts the fan-out; its error goes to the diagnostic logger.
func broadcast(sinks []*sinkEntry, bound LevelLogger, level Level, line string) {
	for _, e := range sinks {
		if err := e.sink.Emit(level, line); err != nil {
			logger.Error("sink write failed",
				slog.String("sink", e.describe()),
				slog.String("error", err.Error()))
		}
	}
	if bound != nil {
		bound.Log(level, line)
	}
}

// Snapshot returns a copy of the accumulated statistics in first-seen
// order. Mutating the result does not affect the tracker.
func (t *Tracker) Snapshot() []TaskStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats.snapshot()
}

// Reset clears all recorded statistics. Sinks and settings are kept.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.stats.reset()
	t.mu.Unlock()
}

type summaryConfig struct {
	sortBy     string
	descending bool
	limit      int
	reset      bool
	title      string
}

// SummaryOption customizes one [Tracker.Summary] call.
type SummaryOption func(*summaryConfig) error

// SortBy orders the summary rows by "total", "avg", "count", "max",
// "min" or "task" instead of the default first-seen order.
func SortBy(key string) SummaryOption {
	return func(c *summaryConfig) error {
		switch key {
		case "total", "avg", "count", "max", "min", "task":
			c.sortBy = key
			return nil
		}
		return fmt.Errorf("kairos: sort key must be one of total, avg, count, max, min, task; got %q", key)
	}
}

// Descending sets the direction used with [SortBy]. The default is
// descending (largest first).
func Descending(desc bool) SummaryOption {
	return func(c *summaryConfig) error {
		c.descending = desc
		return nil
	}
}

// Limit keeps only the first n rows after ordering. Negative n keeps all.
func Limit(n int) SummaryOption {
	return func(c *summaryConfig) error {
		c.limit = n
		return nil
	}
}

// WithReset clears the statistics after the summary has been rendered.
func WithReset() SummaryOption {
	return func(c *summaryConfig) error {
		c.reset = true
		return nil
	}
}

// WithTitle replaces [DefaultSummaryTitle] on the rendered block.
func WithTitle(title string) SummaryOption {
	return func(c *summaryConfig) error {
		c.title = title
		return nil
	}
}

// Summary renders the aggregation snapshot as a table, broadcasts it to
// every sink and the bound logger, and returns the rendered text. Rows
// appear in first-seen order unless [SortBy] is given.
func (t *Tracker) Summary(opts ...SummaryOption) (string, error) {
	cfg := summaryConfig{
		descending: true,
		limit:      -1,
		title:      DefaultSummaryTitle,
	}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return "", err
		}
	}

	t.mu.Lock()
	stats := t.stats.snapshot()
	unit := t.timeUnit
	includeTS := t.includeTimestamp
	level := t.defaultLevel
	sinks, bound := t.copySinksLocked()
	t.mu.Unlock()

	sortStats(stats, cfg.sortBy, cfg.descending)
	if cfg.limit >= 0 && cfg.limit < len(stats) {
		stats = stats[:cfg.limit]
	}

	rendered := renderSummary(stats, cfg.title, unit, time.Now(), includeTS)
	broadcast(sinks, bound, level, rendered)

	if cfg.reset {
		t.Reset()
	}
	return rendered, nil
}

func sortStats(stats []TaskStats, key string, descending bool) {
	if key == "" {
		return
	}

	less := func(a, b TaskStats) bool {
		switch key {
		case "total":
			return a.Total < b.Total
		case "avg":
			return a.Avg < b.Avg
		case "count":
			return a.Count < b.Count
		case "max":
			return a.Max < b.Max
		case "min":
			return a.Min < b.Min
		}
		return strings.ToLower(a.Task) < strings.ToLower(b.Task)
	}

	sort.SliceStable(stats, func(i, j int) bool {
		if descending {
			return less(stats[j], stats[i])
		}
		return less(stats[i], stats[j])
	})
}
