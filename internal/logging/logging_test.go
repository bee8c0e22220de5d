package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/plus3/ecsframe/internal/config"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name   string
		cfg    config.LoggingConfig
		level  zapcore.Level
		debugs bool
	}{
		{"console debug", config.LoggingConfig{Level: "debug", Format: "console"}, zapcore.DebugLevel, true},
		{"json warn", config.LoggingConfig{Level: "warn", Format: "json"}, zapcore.WarnLevel, false},
		{"unknown level falls back to info", config.LoggingConfig{Level: "loud"}, zapcore.InfoLevel, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.cfg)
			require.NoError(t, err)
			defer log.Sync()

			assert.True(t, log.Core().Enabled(tt.level))
			assert.Equal(t, tt.debugs, log.Core().Enabled(zapcore.DebugLevel))
		})
	}
}
