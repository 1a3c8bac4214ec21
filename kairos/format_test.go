package kairos

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestFmtDuration(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		unit string
		want string
	}{
		{"ten millis in seconds", 10 * time.Millisecond, UnitSeconds, "0.010 s"},
		{"six millis in seconds", 6 * time.Millisecond, UnitSeconds, "0.006 s"},
		{"two millis in millis", 2 * time.Millisecond, UnitMillis, "2.000 ms"},
		{"sub-milli in millis", 1500 * time.Microsecond, UnitMillis, "1.500 ms"},
		{"zero", 0, UnitSeconds, "0.000 s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fmtDuration(tt.d, tt.unit))
		})
	}
}

func TestRenderEvent(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 32, 1, 0, time.UTC)

	t.Run("ok without timestamp", func(t *testing.T) {
		line := renderEvent(now, false, LevelInfo, "LOAD_DATA", 10*time.Millisecond, UnitSeconds, nil)
		assert.Equal(t, "INFO | OK | task=LOAD_DATA | elapsed=0.010 s", line)
	})

	t.Run("error status", func(t *testing.T) {
		line := renderEvent(now, false, LevelError, "LOAD_DATA", time.Millisecond, UnitSeconds, errors.New("boom"))
		assert.Contains(t, line, " | ERR | ")
	})

	t.Run("timestamp prefix", func(t *testing.T) {
		line := renderEvent(now, true, LevelInfo, "T", time.Millisecond, UnitSeconds, nil)
		assert.True(t, strings.HasPrefix(line, "2026-08-30 10:32:01 | "), line)
	})
}

func TestRenderSummary(t *testing.T) {
	// Disable colors for consistent testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	now := time.Date(2026, 8, 30, 10, 32, 1, 0, time.UTC)

	t.Run("no data", func(t *testing.T) {
		out := renderSummary(nil, DefaultSummaryTitle, UnitSeconds, now, false)
		assert.Contains(t, out, DefaultSummaryTitle)
		assert.Contains(t, out, "(no data)")
	})

	t.Run("rows and grand total", func(t *testing.T) {
		stats := []TaskStats{
			{
				Task:  "PARSE",
				Count: 2,
				Total: 6 * time.Millisecond,
				Avg:   3 * time.Millisecond,
				Min:   2 * time.Millisecond,
				Max:   4 * time.Millisecond,
				Last:  4 * time.Millisecond,
			},
			{
				Task:  "LOAD_DATA",
				Count: 1,
				Total: 10 * time.Millisecond,
				Avg:   10 * time.Millisecond,
				Min:   10 * time.Millisecond,
				Max:   10 * time.Millisecond,
				Last:  10 * time.Millisecond,
			},
		}
		out := renderSummary(stats, "costs", UnitSeconds, now, true)

		assert.True(t, strings.HasPrefix(out, "2026-08-30 10:32:01 | costs\n"), out)
		assert.Contains(t, out, "PARSE")
		assert.Contains(t, out, "0.006 s")
		assert.Contains(t, out, "0.003 s")
		assert.Contains(t, out, "0.002 s")
		assert.Contains(t, out, "0.004 s")
		assert.Contains(t, out, "LOAD_DATA")
		assert.Contains(t, out, "TOTAL (all tasks): 0.016 s")

		// First-seen order is preserved by the renderer.
		assert.Less(t, strings.Index(out, "PARSE"), strings.Index(out, "LOAD_DATA"))
	})
}
