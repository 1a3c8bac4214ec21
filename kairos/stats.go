package kairos

import "time"

// TaskStats holds the accumulated timing figures for one task name.
// Values returned by [Tracker.Snapshot] are copies; mutating them has no
// effect on the tracker.
type TaskStats struct {
	Task  string
	Count uint64
	Total time.Duration
	Avg   time.Duration
	Min   time.Duration
	Max   time.Duration
	Last  time.Duration
}

type taskEntry struct {
	count uint64
	total time.Duration
	min   time.Duration
	max   time.Duration
	last  time.Duration
}

func (e *taskEntry) observe(d time.Duration) {
	if e.count == 0 || d < e.min {
		e.min = d
	}
	if e.count == 0 || d > e.max {
		e.max = d
	}
	e.count++
	e.total += d
	e.last = d
}

// statsTable maps task name to its accumulated entry, remembering
// first-seen order so summaries are stable.
type statsTable struct {
	entries map[string]*taskEntry
	order   []string
}

func newStatsTable() *statsTable {
	return &statsTable{
		entries: make(map[string]*taskEntry),
	}
}

func (t *statsTable) record(task string, d time.Duration) {
	e, ok := t.entries[task]
	if !ok {
		e = &taskEntry{}
		t.entries[task] = e
		t.order = append(t.order, task)
	}
	e.observe(d)
}

func (t *statsTable) snapshot() []TaskStats {
	out := make([]TaskStats, 0, len(t.order))
	for _, task := range t.order {
		e := t.entries[task]
		out = append(out, TaskStats{
			Task:  task,
			Count: e.count,
			Total: e.total,
			Avg:   e.total / time.Duration(e.count),
			Min:   e.min,
			Max:   e.max,
			Last:  e.last,
		})
	}
	return out
}

func (t *statsTable) reset() {
	t.entries = make(map[string]*taskEntry)
	t.order = nil
}
