package kairos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTracker(t *testing.T) {
	require.NotNil(t, Default())
	assert.Same(t, Default(), Default())
}

func TestOptionHelpers(t *testing.T) {
	b := Bool(true)
	require.NotNil(t, b)
	assert.True(t, *b)

	s := String("ms")
	require.NotNil(t, s)
	assert.Equal(t, "ms", *s)
}
