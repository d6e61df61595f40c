package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		verbose bool
		debug   bool
	}{
		{verbose: false, debug: false},
		{verbose: true, debug: true},
	}

	for _, tt := range tests {
		l, err := New(tt.verbose)
		require.NoError(t, err)
		assert.Equal(t, tt.debug, l.Core().Enabled(zapcore.DebugLevel))
		assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	}
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))

	l, err := New(false)
	require.NoError(t, err)
	assert.Same(t, l, OrNop(l))
}
