package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/warehouse/backend/internal/infrastructure/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"INFO", zapcore.InfoLevel},
		{"unknown", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

func TestFromLogConfig(t *testing.T) {
	t.Run("empty fields keep defaults", func(t *testing.T) {
		cfg := FromLogConfig(config.LogConfig{})

		assert.Equal(t, "info", cfg.Level)
		assert.Equal(t, "console", cfg.Format)
		assert.Equal(t, "stdout", cfg.Output)
	})

	t.Run("set fields override defaults", func(t *testing.T) {
		cfg := FromLogConfig(config.LogConfig{Level: "debug", Format: "json", Output: "stderr"})

		assert.Equal(t, "debug", cfg.Level)
		assert.Equal(t, "json", cfg.Format)
		assert.Equal(t, "stderr", cfg.Output)
	})
}

func TestNew(t *testing.T) {
	t.Run("console logger", func(t *testing.T) {
		log, err := New(DefaultConfig())
		require.NoError(t, err)
		require.NotNil(t, log)
		log.Info("console message")
	})

	t.Run("json logger writes to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		cfg := DefaultConfig()
		cfg.Format = "json"
		cfg.Output = path

		log, err := New(cfg)
		require.NoError(t, err)
		log.Info("file message")
		require.NoError(t, log.Sync())

		assert.FileExists(t, path)
	})
}
