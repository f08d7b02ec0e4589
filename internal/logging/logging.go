// Package logging persists merge transcripts so past resolutions can be
// inspected after the fact. Everything here is best-effort: a logging failure
// must never fail the merge.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const timestampLayout = "2006-01-02T15-04-05"

// Dir returns the platform log directory, creating it if needed.
func Dir() (string, error) {
	var dir string
	if runtime.GOOS == "darwin" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, "Library", "Logs", "claude-mergetool")
	} else {
		state := os.Getenv("XDG_STATE_HOME")
		if state == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			state = filepath.Join(home, ".local", "state")
		}
		dir = filepath.Join(state, "claude-mergetool", "logs")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// MergeLogger appends raw resolver events to a per-merge transcript and
// mirrors result events into a shared summary file.
type MergeLogger struct {
	eventFile   *os.File
	summaryPath string
}

// New opens a transcript named after the merge's display path. It never
// fails: when the log directory or file is unavailable the returned logger is
// disabled.
func New(displayPath string) *MergeLogger {
	dir, err := Dir()
	if err != nil {
		log.Warn("merge transcript logging disabled", "error", err)
		return &MergeLogger{}
	}

	name := fmt.Sprintf("%s_%s.jsonl", time.Now().Format(timestampLayout), sanitize(displayPath))
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		log.Warn("failed to create merge transcript", "file", name, "error", err)
		f = nil
	}

	return &MergeLogger{
		eventFile:   f,
		summaryPath: filepath.Join(dir, "summary.jsonl"),
	}
}

// Event appends one raw stream line to the transcript.
func (l *MergeLogger) Event(line string) {
	if l.eventFile == nil {
		return
	}
	if _, err := fmt.Fprintln(l.eventFile, line); err != nil {
		log.Warn("transcript write failed, disabling", "error", err)
		l.eventFile.Close()
		l.eventFile = nil
	}
}

// Summary appends one line to the shared summary log.
func (l *MergeLogger) Summary(line string) {
	if l.summaryPath == "" {
		return
	}
	f, err := os.OpenFile(l.summaryPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Warn("failed to open summary log", "error", err)
		return
	}
	defer f.Close()
	if _, err := fmt.Fprintln(f, line); err != nil {
		log.Warn("summary write failed", "error", err)
	}
}

// Close releases the transcript file.
func (l *MergeLogger) Close() {
	if l.eventFile != nil {
		l.eventFile.Close()
		l.eventFile = nil
	}
}

// sanitize makes a display path safe to use as a file name.
func sanitize(s string) string {
	if s == "" {
		return "unknown"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ' ':
			return '_'
		default:
			return r
		}
	}, s)
}
