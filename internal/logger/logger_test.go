package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithOutput_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitWithOutput("warn", "json", &buf)

	Debug("hidden %d", 1)
	Info("hidden %d", 2)
	Warn("shown %d", 3)
	Error("shown %d", 4)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "shown 3", entry["message"])
}

func TestInitWithOutput_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	InitWithOutput("debug", "text", &buf)

	Debug("refresh %s", "started")

	out := buf.String()
	assert.Contains(t, out, "refresh started")
	assert.False(t, strings.HasPrefix(strings.TrimSpace(out), "{"), "text format must not emit JSON")
}

func TestParseLevel_UnknownDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	InitWithOutput("verbose", "json", &buf)

	Debug("dropped")
	Info("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestWith_AddsField(t *testing.T) {
	var buf bytes.Buffer
	InitWithOutput("info", "json", &buf)

	l := With("cycle", "abc")
	l.Info().Msg("tick")

	assert.Contains(t, buf.String(), `"cycle":"abc"`)
}
