// Package claude invokes the claude CLI as an opaque, non-interactive merge
// resolver. The binary is reached only through os/exec so any compliant
// assistant CLI can be substituted.
package claude

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// DefaultBinary is the resolver executable looked up on PATH.
const DefaultBinary = "claude"

// DefaultPermissionMode auto-approves the resolver's file edits so no human
// confirmation is needed mid-merge.
const DefaultPermissionMode = "acceptEdits"

// Invocation is the contract handed to the resolver: the composed prompts,
// the non-interactive flags, and the directories it may read and write.
type Invocation struct {
	SystemPrompt   string
	Prompt         string
	PermissionMode string
	ExtraArgs      []string
	AccessDirs     []string
}

// Resolver runs an external AI assistant to completion against a composed
// prompt. Exit status is the only success signal; the stream is advisory.
type Resolver interface {
	Resolve(ctx context.Context, inv Invocation) error
}

// TranscriptLog receives every raw stream line for later inspection.
type TranscriptLog interface {
	Event(line string)
	Summary(line string)
}

// LaunchError means the resolver process could not be started at all.
type LaunchError struct {
	Err error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launching resolver: %v", e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// ExitError means the resolver ran but exited non-zero.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("resolver exited with code %d", e.Code)
}

// Runner invokes the claude CLI in print mode and relays its stream-json
// output to Stderr as it arrives. The zero value is usable.
type Runner struct {
	Binary string         // defaults to DefaultBinary
	Stderr io.Writer      // defaults to os.Stderr
	Events *EventRenderer // defaults to a fresh renderer
	Log    TranscriptLog  // optional
}

func (r *Runner) binary() string {
	if r.Binary != "" {
		return r.Binary
	}
	return DefaultBinary
}

func (r *Runner) stderr() io.Writer {
	if r.Stderr != nil {
		return r.Stderr
	}
	return os.Stderr
}

// command builds the resolver invocation. Argument order is fixed so the same
// invocation always produces the same command line.
func (r *Runner) command(ctx context.Context, inv Invocation) *exec.Cmd {
	mode := inv.PermissionMode
	if mode == "" {
		mode = DefaultPermissionMode
	}

	args := []string{
		"--print",
		"--verbose",
		"--output-format=stream-json",
		"--permission-mode=" + mode,
		"--append-system-prompt", inv.SystemPrompt,
	}
	args = append(args, inv.ExtraArgs...)
	args = append(args, inv.Prompt)
	for _, dir := range inv.AccessDirs {
		args = append(args, "--add-dir", dir)
	}

	cmd := exec.CommandContext(ctx, r.binary(), args...)
	cmd.Stderr = r.stderr()
	return cmd
}

// Resolve launches the resolver and blocks until it exits, draining its
// stdout concurrently so progress is visible as it happens. A process that
// could not start is a LaunchError; one that ran and exited non-zero is an
// ExitError. Exit 0 is trusted as attempted completion; the destination file
// is not re-validated. No retries.
func (r *Runner) Resolve(ctx context.Context, inv Invocation) error {
	cmd := r.command(ctx, inv)
	log.Debug("resolver command", "args", cmd.Args)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &LaunchError{Err: err}
	}
	if err := cmd.Start(); err != nil {
		return &LaunchError{Err: err}
	}

	events := r.Events
	if events == nil {
		events = NewEventRenderer()
	}

	var g errgroup.Group
	g.Go(func() error {
		scanner := bufio.NewScanner(stdout)
		// Tool-result events can be large.
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if r.Log != nil {
				r.Log.Event(line)
				if IsResult(line) {
					r.Log.Summary(line)
				}
			}
			if out := events.Render(line); out != "" {
				fmt.Fprint(r.stderr(), out)
			}
		}
		return scanner.Err()
	})
	if err := g.Wait(); err != nil {
		log.Debug("resolver stream closed", "error", err)
	}

	if err := cmd.Wait(); err != nil {
		var exit *exec.ExitError
		if errors.As(err, &exit) {
			return &ExitError{Code: exit.ExitCode()}
		}
		return &LaunchError{Err: err}
	}
	return nil
}
