package Logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"SmartRoute/Config"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	logger, err := New(Config.LogConfig{Level: "debug", Format: "json", File: path})
	require.NoError(t, err)

	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
	logger.Info("route optimized")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"route optimized"`)
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestNewConsoleDefaultsToInfo(t *testing.T) {
	logger, err := New(Config.LogConfig{Format: "console"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}
