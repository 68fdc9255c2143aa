package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewFileLogger_WritesTaggedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "remotail.log")

	logger, err := NewFileLogger(path, false)
	require.NoError(t, err)

	logger.For(ComponentWorker).Info("connected", zap.String("alias", "web"))
	logger.For(ComponentWorker).Debug("hidden at info level")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, "[WORKER]")
	assert.Contains(t, out, "connected")
	assert.Contains(t, out, `"alias": "web"`)
	assert.NotContains(t, out, "hidden at info level")
}

func TestNewFileLogger_DebugLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "remotail.log")

	logger, err := NewFileLogger(path, true)
	require.NoError(t, err)
	logger.For(ComponentSSH).Debug("component line")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "component line")
}

func TestNewNop(t *testing.T) {
	logger := NewNop()
	logger.For(ComponentUI).Error("nothing happens")
	assert.NoError(t, logger.Close())
}
