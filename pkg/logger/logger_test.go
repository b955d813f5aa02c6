package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestHelpers_WriteThroughPackageLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))

	Infof("loaded %d posts", 3)
	Warnw("retrying task", "task", "extract", "attempt", 1)
	Errorf("task %s failed", "load")
	Debugf("debug %s", "line")

	entries := logs.All()
	require.Len(t, entries, 4)

	assert.Equal(t, "loaded 3 posts", entries[0].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)

	assert.Equal(t, "retrying task", entries[1].Message)
	assert.Equal(t, "extract", entries[1].ContextMap()["task"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)

	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, zapcore.DebugLevel, entries[3].Level)
}

func TestInitLogger_InvalidLevel(t *testing.T) {
	err := InitLogger("", "loud")
	assert.Error(t, err)
}

func TestInitLogger_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etl.log")
	require.NoError(t, InitLogger(path, "info"))

	Infof("hello %s", "file")
	Debugf("filtered out")
	Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file")
	assert.NotContains(t, string(data), "filtered out")
}
