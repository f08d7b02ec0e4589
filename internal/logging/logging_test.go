package logging

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"src/lib.rs", "src_lib.rs"},
		{`path\to my\file.rs`, "path_to_my_file.rs"},
		{"README.md", "README.md"},
		{"", "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitize(tt.in))
	}
}

func TestLoggerWritesEventsAndSummary(t *testing.T) {
	dir := t.TempDir()
	eventPath := filepath.Join(dir, "events.jsonl")
	summaryPath := filepath.Join(dir, "summary.jsonl")

	f, err := os.Create(eventPath)
	require.NoError(t, err)
	logger := &MergeLogger{eventFile: f, summaryPath: summaryPath}

	logger.Event(`{"type":"assistant","message":{}}`)
	resultLine := `{"type":"result","subtype":"success","total_cost_usd":0.01}`
	logger.Event(resultLine)
	logger.Summary(resultLine)
	logger.Close()

	events, err := os.ReadFile(eventPath)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(events)), "\n"), 2)

	summary, err := os.ReadFile(summaryPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(summary)), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"type":"result"`)
}

func TestLoggerSummaryAppends(t *testing.T) {
	dir := t.TempDir()
	logger := &MergeLogger{summaryPath: filepath.Join(dir, "summary.jsonl")}

	logger.Summary("one")
	logger.Summary("two")

	summary, err := os.ReadFile(logger.summaryPath)
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", string(summary))
}

func TestDisabledLoggerIsSilent(t *testing.T) {
	logger := &MergeLogger{}
	logger.Event("line")
	logger.Summary("line")
	logger.Close()
}

func TestNewNeverFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", "")

	logger := New("src/main.go")
	logger.Event("line")
	logger.Summary("line")
	logger.Close()
}

func TestDirRespectsXDGStateHome(t *testing.T) {
	if runtime.GOOS == "darwin" {
		t.Skip("macOS uses ~/Library/Logs")
	}
	state := t.TempDir()
	t.Setenv("XDG_STATE_HOME", state)

	dir, err := Dir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(state, "claude-mergetool", "logs"), dir)
	assert.DirExists(t, dir)
}
