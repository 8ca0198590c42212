package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "cli.log")

	l, err := Init(path, "debug")
	require.NoError(t, err)
	assert.Equal(t, path, Path())

	l.Debug("polling started", zap.String("job_id", "job-1"))
	Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"job_id":"job-1"`))
	assert.Contains(t, string(data), `"msg":"polling started"`)
	assert.Empty(t, Path())
}

func TestInitRespectsLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.log")

	l, err := Init(path, "warn")
	require.NoError(t, err)
	l.Info("hidden")
	l.Warn("shown")
	Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestInitRejectsBadLevel(t *testing.T) {
	_, err := Init(filepath.Join(t.TempDir(), "cli.log"), "loud")
	assert.Error(t, err)
}

func TestLIsUsableBeforeInit(t *testing.T) {
	Close()
	assert.NotPanics(t, func() { L().Info("dropped") })
}

func TestDefaultPath(t *testing.T) {
	p := DefaultPath()
	assert.Equal(t, "tmp", filepath.Dir(p))
	assert.True(t, strings.HasPrefix(filepath.Base(p), "cli-"))
	assert.True(t, strings.HasSuffix(p, ".log"))
}
