package kairos

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogrusAdapterLevels(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	adapter := NewLogrusLogger(log)

	tests := []struct {
		level Level
		want  logrus.Level
	}{
		{LevelDebug, logrus.DebugLevel},
		{LevelInfo, logrus.InfoLevel},
		{LevelWarn, logrus.WarnLevel},
		{LevelError, logrus.ErrorLevel},
	}
	for _, tt := range tests {
		hook.Reset()
		adapter.Log(tt.level, "elapsed line")

		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, tt.want, entry.Level)
		assert.Equal(t, "elapsed line", entry.Message)
	}
}

func TestLogrusAdapterBoundToTracker(t *testing.T) {
	log, hook := test.NewNullLogger()

	tr := New()
	tr.RemoveAll()
	tr.UseLogger(NewLogrusLogger(log))

	require.NoError(t, tr.Configure(Options{EmitEach: Bool(true), IncludeTimestamp: Bool(false)}))
	require.NoError(t, tr.Measure("LOAD_DATA", func() error { return nil }))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Contains(t, entry.Message, "task=LOAD_DATA")
}
