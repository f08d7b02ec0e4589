package claude

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubResolver writes a shell script standing in for the claude binary.
func stubResolver(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "claude-stub")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755))
	return path
}

type fakeTranscript struct {
	events    []string
	summaries []string
}

func (f *fakeTranscript) Event(line string)   { f.events = append(f.events, line) }
func (f *fakeTranscript) Summary(line string) { f.summaries = append(f.summaries, line) }

func TestCommandArgumentOrder(t *testing.T) {
	r := &Runner{Binary: "claude", Stderr: io.Discard}
	cmd := r.command(context.Background(), Invocation{
		SystemPrompt:   "sys",
		Prompt:         "task",
		PermissionMode: "acceptEdits",
		ExtraArgs:      []string{"--model", "opus"},
		AccessDirs:     []string{"/tmp/a", "/tmp/b"},
	})

	assert.Equal(t, []string{
		"claude",
		"--print",
		"--verbose",
		"--output-format=stream-json",
		"--permission-mode=acceptEdits",
		"--append-system-prompt", "sys",
		"--model", "opus",
		"task",
		"--add-dir", "/tmp/a",
		"--add-dir", "/tmp/b",
	}, cmd.Args)
}

func TestCommandDefaultPermissionMode(t *testing.T) {
	r := &Runner{Binary: "claude", Stderr: io.Discard}
	cmd := r.command(context.Background(), Invocation{SystemPrompt: "s", Prompt: "p"})
	assert.Contains(t, cmd.Args, "--permission-mode=acceptEdits")
}

func TestResolveSuccess(t *testing.T) {
	r := &Runner{Binary: stubResolver(t, "exit 0"), Stderr: io.Discard, Events: &EventRenderer{}}
	err := r.Resolve(context.Background(), Invocation{SystemPrompt: "s", Prompt: "p"})
	require.NoError(t, err)
}

func TestResolveNonZeroExit(t *testing.T) {
	r := &Runner{Binary: stubResolver(t, "exit 3"), Stderr: io.Discard, Events: &EventRenderer{}}
	err := r.Resolve(context.Background(), Invocation{SystemPrompt: "s", Prompt: "p"})

	var exit *ExitError
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 3, exit.Code)
}

func TestResolveLaunchFailure(t *testing.T) {
	r := &Runner{Binary: filepath.Join(t.TempDir(), "missing"), Stderr: io.Discard, Events: &EventRenderer{}}
	err := r.Resolve(context.Background(), Invocation{SystemPrompt: "s", Prompt: "p"})

	var launch *LaunchError
	require.ErrorAs(t, err, &launch)
	var exit *ExitError
	assert.NotErrorAs(t, err, &exit)
}

// syncBuffer guards a bytes.Buffer with a mutex. Resolve's relay goroutine
// and the stderr copier exec spawns for a non-file writer both write the
// Stderr writer concurrently; a bare bytes.Buffer races (its ReadFrom can
// truncate away concurrent writes).
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestResolveRelaysStream(t *testing.T) {
	line := `{"type":"assistant","message":{"content":[{"type":"tool_use","name":"Read","input":{"file_path":"/work/file.txt"}}]}}`
	var buf syncBuffer
	r := &Runner{
		Binary: stubResolver(t, "echo '"+line+"'"),
		Stderr: &buf,
		Events: &EventRenderer{},
	}

	require.NoError(t, r.Resolve(context.Background(), Invocation{SystemPrompt: "s", Prompt: "p"}))
	assert.Contains(t, buf.String(), "> Read /work/file.txt")
}

func TestResolveFeedsTranscript(t *testing.T) {
	script := `echo '{"type":"assistant","message":{"content":[]}}'
echo '{"type":"result","subtype":"success","duration_ms":10,"duration_api_ms":5,"total_cost_usd":0.01}'`
	transcript := &fakeTranscript{}
	r := &Runner{Binary: stubResolver(t, script), Stderr: io.Discard, Events: &EventRenderer{}, Log: transcript}

	require.NoError(t, r.Resolve(context.Background(), Invocation{SystemPrompt: "s", Prompt: "p"}))

	assert.Len(t, transcript.events, 2)
	require.Len(t, transcript.summaries, 1)
	assert.Contains(t, transcript.summaries[0], `"type":"result"`)
}

func TestResolveStreamFailureDoesNotMaskExitZero(t *testing.T) {
	// Non-JSON noise on stdout is relayed best-effort and never affects the
	// outcome; only the exit code decides.
	r := &Runner{Binary: stubResolver(t, "echo 'not json at all'"), Stderr: io.Discard, Events: &EventRenderer{}}
	require.NoError(t, r.Resolve(context.Background(), Invocation{SystemPrompt: "s", Prompt: "p"}))
}
