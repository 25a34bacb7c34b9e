package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"development", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
		{"staging", zapcore.InfoLevel},
		{"WARN", zapcore.WarnLevel},
		{"production", zapcore.ErrorLevel},
		{"bogus", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestGet_BeforeInit(t *testing.T) {
	l := Get()
	require.NotNil(t, l)
	l.Info("discarded")
}

func TestInit_SetsGlobal(t *testing.T) {
	err := Init(&Config{Level: "debug", ServiceName: "test"})
	require.NoError(t, err)

	l := Get()
	require.NotNil(t, l)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	Sync()
}

func TestLogger_With(t *testing.T) {
	l := NewNop().With().Named("child")
	assert.NotNil(t, l.Logger)
}
