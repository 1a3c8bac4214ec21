package kairos

import "strings"

// Level is the severity attached to emitted lines. It maps onto the
// levels of a bound external logger (see [LevelLogger]).
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return "INFO"
}

func (l Level) valid() bool {
	return l >= LevelDebug && l <= LevelError
}

// ParseLevel converts a case-insensitive level name ("debug", "info",
// "warn", "error") into a [Level]. Unrecognized names fail with an
// [InvalidLevelError].
func ParseLevel(name string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	}
	return LevelInfo, &InvalidLevelError{Level: name}
}
