package app

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, parseLevel("info"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("loud"))
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("info", "json", &buf)

	logger.Debug("hidden")
	logger.Info("shown", "blocks", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, 3.0, entry["blocks"])
	assert.Equal(t, "gbtgo", entry["app"])
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	newLogger("debug", "text", &buf).Debug("visible")

	assert.Contains(t, buf.String(), "msg=visible")
}
