package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/matthieukhl/buildright/internal/config"
)

func TestNewConsoleLogger(t *testing.T) {
	logger, err := New(config.LoggerConfig{Mode: "development", Level: "warn"})
	require.NoError(t, err)

	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(config.LoggerConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestNewWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "buildright.log")
	logger, err := New(config.LoggerConfig{
		Mode:       "production",
		Level:      "info",
		FileEnable: true,
		Filename:   path,
	})
	require.NoError(t, err)

	logger.Info("cart cleared")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"cart cleared"`)
}
