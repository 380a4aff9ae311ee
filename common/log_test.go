package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LEVEL_DEBUG, ParseLogLevel("debug"))
	assert.Equal(t, LEVEL_WARN, ParseLogLevel(" WARN "))
	assert.Equal(t, LEVEL_INFO, ParseLogLevel("chatty"))
}

func TestAdjustLogConfig(t *testing.T) {
	lc := &LogConfig{
		LogLevel:           LEVEL_INFO,
		ModuleSpecialLevel: map[string]LOG_LEVEL{MODULE_PERCEPTRON: LEVEL_DEBUG},
		LogInConsole:       true,
	}
	assert.Equal(t, LEVEL_DEBUG, adjustLogConfig(MODULE_PERCEPTRON, lc).LogLevel)
	assert.Equal(t, LEVEL_INFO, adjustLogConfig(MODULE_LOADER, lc).LogLevel)
	assert.True(t, adjustLogConfig(MODULE_LOADER, lc).LogInConsole)

	lc.BriefMode = "prod"
	assert.Equal(t, DefaultLogConfig(false), adjustLogConfig(MODULE_LOADER, lc))
	lc.BriefMode = LOG_MODE_DEV
	assert.Equal(t, DefaultLogConfig(true), adjustLogConfig(MODULE_LOADER, lc))
}

func TestNewSugaredLoggerWritesRotatedFile(t *testing.T) {
	dir := t.TempDir()
	lc := &LogConfig{
		LogPath:        filepath.Join(dir, "lpc.log"),
		LogLevel:       LEVEL_INFO,
		RotationMaxAge: 1,
		RotationTime:   1,
		RotationSize:   1,
	}
	logger := NewSugaredLogger(MODULE_EVAL, lc)
	logger.Debug("hidden")
	logger.Info("trained")
	require.NoError(t, logger.Sync())

	files, err := filepath.Glob(filepath.Join(dir, "lpc.log.*"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	content, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(content), "trained")
	assert.Contains(t, string(content), "[INFO]")
	assert.NotContains(t, string(content), "hidden")
}

func TestGetLoggerRegistry(t *testing.T) {
	a := GetLogger(MODULE_SESSION)
	b := GetLogger(MODULE_SESSION)
	assert.Same(t, a, b)

	before := a.Logger()
	SetLogConfig(&LogConfig{LogLevel: LEVEL_ERROR})
	defer SetLogConfig(DefaultLogConfig(true))
	assert.NotSame(t, before, a.Logger())
	assert.NotNil(t, a.Logger())
}
