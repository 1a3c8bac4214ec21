package kairos

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rodaine/table"
)

// Recognized values for the time_unit option.
const (
	UnitSeconds = "s"
	UnitMillis  = "ms"
)

const timestampLayout = "2006-01-02 15:04:05"

func fmtDuration(d time.Duration, unit string) string {
	if unit == UnitMillis {
		return fmt.Sprintf("%.3f ms", float64(d)/float64(time.Millisecond))
	}
	return fmt.Sprintf("%.3f s", d.Seconds())
}

func tsPrefix(now time.Time, includeTimestamp bool) string {
	if !includeTimestamp {
		return ""
	}
	return now.Format(timestampLayout) + " | "
}

// renderEvent produces the single line emitted after each completed
// measurement in emit-each mode, e.g.:
//
//	2026-08-30 10:32:01 | INFO | OK | task=LOAD_DATA | elapsed=0.010 s
func renderEvent(now time.Time, includeTimestamp bool, level Level, task string, d time.Duration, unit string, err error) string {
	status := "OK"
	if err != nil {
		status = "ERR"
	}
	return fmt.Sprintf("%s%s | %s | task=%s | elapsed=%s",
		tsPrefix(now, includeTimestamp), level, status, task, fmtDuration(d, unit))
}

// renderSummary produces the tabular summary block: a title line, one row
// per task and a grand-total footer.
func renderSummary(stats []TaskStats, title string, unit string, now time.Time, includeTimestamp bool) string {
	var b bytes.Buffer

	b.WriteString(tsPrefix(now, includeTimestamp) + title + "\n")
	width := len(title)
	if width < 24 {
		width = 24
	}
	b.WriteString(strings.Repeat("-", width) + "\n")

	if len(stats) == 0 {
		b.WriteString("(no data)\n")
		return b.String()
	}

	headerFmt := color.New(color.FgCyan, color.Underline).SprintfFunc()

	tbl := table.New("TASK", "COUNT", "TOTAL", "AVG", "MIN", "MAX", "LAST")
	tbl.WithWriter(&b)
	tbl.WithHeaderFormatter(headerFmt)

	var grand time.Duration
	for _, s := range stats {
		grand += s.Total
		tbl.AddRow(
			s.Task,
			s.Count,
			fmtDuration(s.Total, unit),
			fmtDuration(s.Avg, unit),
			fmtDuration(s.Min, unit),
			fmtDuration(s.Max, unit),
			fmtDuration(s.Last, unit),
		)
	}
	tbl.Print()

	b.WriteString(strings.Repeat("-", width) + "\n")
	b.WriteString(fmt.Sprintf("TOTAL (all tasks): %s\n", fmtDuration(grand, unit)))
	return b.String()
}
