package kairos

import "github.com/sirupsen/logrus"

type logrusLogger struct {
	l *logrus.Logger
}

// NewLogrusLogger adapts a logrus logger to the [LevelLogger] capability
// so it can be bound with [Tracker.UseLogger].
func NewLogrusLogger(l *logrus.Logger) LevelLogger {
	return logrusLogger{l: l}
}

func (a logrusLogger) Log(level Level, msg string) {
	switch level {
	case LevelDebug:
		a.l.Debug(msg)
	case LevelWarn:
		a.l.Warn(msg)
	case LevelError:
		a.l.Error(msg)
	default:
		a.l.Info(msg)
	}
}
