package util

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(level string, format LogFormat) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := &Logger{level: ParseLogLevel(level), fields: map[string]interface{}{}}
	l.AddOutput(NewConsoleOutput(&buf, format))
	return l, &buf
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  LogLevel
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLogLevel(tt.input))
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	l, buf := newBufferLogger("warn", FormatText)

	l.Debug("hidden debug")
	l.Info("hidden info")
	l.Warn("shown warn")
	l.Errorf("shown %s", "error")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] shown warn")
	assert.Contains(t, out, "[ERROR] shown error")

	l.SetLevel(LevelDebug)
	l.Debug("now visible")
	assert.Contains(t, buf.String(), "[DEBUG] now visible")
}

func TestTextFieldsSorted(t *testing.T) {
	l, buf := newBufferLogger("info", FormatText)

	l.Info("Source fetch failed", F("source", "snode2"), F("error", "refused"), F("attempt", 1))

	line := strings.TrimSpace(buf.String())
	assert.True(t, strings.HasSuffix(line, "Source fetch failed attempt=1 error=refused source=snode2"), line)
}

func TestJSONOutput(t *testing.T) {
	l, buf := newBufferLogger("info", FormatJSON)

	l.With(F("component", "fetcher")).Info("Source fetched", F("targets", 3))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "Source fetched", entry["message"])

	fields, ok := entry["fields"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "fetcher", fields["component"])
	assert.Equal(t, float64(3), fields["targets"])
}

func TestNewLoggerRequiresDestination(t *testing.T) {
	_, err := NewLogger(LoggerOptions{Level: "info"})
	assert.Error(t, err)

	l, err := NewLogger(LoggerOptions{Level: "info", DebugToConsole: true})
	require.NoError(t, err)
	assert.NoError(t, l.Close())
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "logs", "app.log")

	l, err := NewLogger(LoggerOptions{Level: "debug", File: path})
	require.NoError(t, err)
	l.Debug("written to file", F("cycle", 7))
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[DEBUG] written to file cycle=7")
}

func TestGlobalLogger(t *testing.T) {
	LogInfo("dropped without a logger")

	l, buf := newBufferLogger("debug", FormatText)
	SetLogger(l)
	defer CloseLogger()

	LogDebugf("cycle %d", 3)
	LogWarn("slow source", F("source", "anode1"))

	out := buf.String()
	assert.Contains(t, out, "[DEBUG] cycle 3")
	assert.Contains(t, out, "[WARN] slow source source=anode1")

	require.NoError(t, CloseLogger())
	LogError("after close")
	assert.NotContains(t, buf.String(), "after close")
}

func TestDisplayHelpers(t *testing.T) {
	assert.Equal(t, "ab   ", PadRight("ab", 5))
	assert.Equal(t, "abcdef", PadRight("abcdef", 3))
	assert.Equal(t, 4, GetDisplayWidth("节点"))
	assert.LessOrEqual(t, GetDisplayWidth(Truncate("http://long-target", 8)), 8)
	assert.Equal(t, "", Truncate("abc", 0))
}
