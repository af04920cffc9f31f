package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codecomp-go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	logger, err := New(config.LoggingConfig{Level: "warn", Outputs: []string{path}, Encoding: "json"})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("Skipping corpus line", zap.Int("line", 3))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "Skipping corpus line", entry["msg"])
	assert.Equal(t, float64(3), entry["line"])
}

func TestNew_Level(t *testing.T) {
	logger, err := New(config.LoggingConfig{Level: "debug", Outputs: []string{filepath.Join(t.TempDir(), "x.log")}})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	_, err = New(config.LoggingConfig{Level: "chatty"})
	assert.Error(t, err)
}
