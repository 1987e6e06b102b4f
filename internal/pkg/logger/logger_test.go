package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_Level(t *testing.T) {
	tests := []struct {
		level    string
		expected zapcore.Level
	}{
		{level: "debug", expected: zapcore.DebugLevel},
		{level: "warn", expected: zapcore.WarnLevel},
		{level: "error", expected: zapcore.ErrorLevel},
		{level: "nonsense", expected: zapcore.InfoLevel},
		{level: "", expected: zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			log, err := New(tt.level, "", zap.String("service", "test"))
			require.NoError(t, err)
			assert.True(t, log.Core().Enabled(tt.expected))
			if tt.expected > zapcore.DebugLevel {
				assert.False(t, log.Core().Enabled(tt.expected-1))
			}
		})
	}
}

func TestNew_Format(t *testing.T) {
	for _, format := range []string{"json", "Console", "xml", ""} {
		t.Run(format, func(t *testing.T) {
			log, err := New("info", format)
			require.NoError(t, err)
			assert.NotNil(t, log)
			assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
		})
	}
}
