// Package conflict models one three-way merge conflict handed to the driver:
// the base/left/right versions, their display labels, and the path the
// resolved result must be written to.
package conflict

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

const (
	DefaultLeftLabel   = "ours"
	DefaultRightLabel  = "theirs"
	DefaultDisplayPath = "unknown file"
)

// Mode selects where the resolved file is written.
type Mode int

const (
	// GitDriver writes the result back to the left path, per the git
	// merge-driver convention (%A is both input and output).
	GitDriver Mode = iota
	// JjOutput writes the result to an explicitly supplied output path.
	JjOutput
)

func (m Mode) String() string {
	if m == GitDriver {
		return "git-driver"
	}
	return "jj-output"
}

// Labels are the display names for the three sides of a conflict. Base may be
// empty, meaning no ancestor label is shown.
type Labels struct {
	Base  string
	Left  string
	Right string
}

// Context is the unit of work for one invocation. It is built once by Build
// and never mutated afterwards.
type Context struct {
	BasePath  string
	LeftPath  string
	RightPath string

	BaseContent  []byte
	LeftContent  []byte
	RightContent []byte

	Labels      Labels
	DisplayPath string
	MarkerSize  int // 0 means unset

	Mode       Mode
	OutputPath string
}

// Params carries the raw merge-subcommand arguments into Build.
type Params struct {
	Base  string
	Left  string
	Right string

	Output         string
	GitMergeDriver bool

	BaseLabel  string
	LeftLabel  string
	RightLabel string

	DisplayPath string
	MarkerSize  int
}

// ErrAmbiguousMode means neither mode flag was supplied.
var ErrAmbiguousMode = errors.New("either --git-merge-driver or -o <path> is required")

// NotFoundError means an input path does not reference an existing file.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("input file not found: %s", e.Path)
}

// ReadError means an input path exists but could not be read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading input file %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Build resolves the execution mode, reads the three input versions, and
// assembles the context. Mode is resolved before any file is touched, so an
// ambiguous invocation fails without I/O. An explicit output path takes
// precedence over --git-merge-driver when both are given.
func Build(p Params) (*Context, error) {
	var (
		mode   Mode
		output string
	)
	switch {
	case p.Output != "":
		mode, output = JjOutput, p.Output
	case p.GitMergeDriver:
		mode, output = GitDriver, p.Left
	default:
		return nil, ErrAmbiguousMode
	}

	base, err := readInput(p.Base)
	if err != nil {
		return nil, err
	}
	left, err := readInput(p.Left)
	if err != nil {
		return nil, err
	}
	right, err := readInput(p.Right)
	if err != nil {
		return nil, err
	}

	c := &Context{
		BasePath:     p.Base,
		LeftPath:     p.Left,
		RightPath:    p.Right,
		BaseContent:  base,
		LeftContent:  left,
		RightContent: right,
		Labels: Labels{
			Base:  p.BaseLabel,
			Left:  p.LeftLabel,
			Right: p.RightLabel,
		},
		DisplayPath: p.DisplayPath,
		MarkerSize:  p.MarkerSize,
		Mode:        mode,
		OutputPath:  output,
	}

	if c.Labels.Left == "" {
		c.Labels.Left = DefaultLeftLabel
	}
	if c.Labels.Right == "" {
		c.Labels.Right = DefaultRightLabel
	}
	if c.DisplayPath == "" {
		c.DisplayPath = DefaultDisplayPath
	}

	return c, nil
}

// readInput loads one version verbatim. Inputs are opaque bytes: no decoding,
// no normalization, no conflict-marker parsing.
func readInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, &NotFoundError{Path: path}
	case err != nil:
		return nil, &ReadError{Path: path, Err: err}
	}
	return data, nil
}

// AccessDirs returns the unique parent directories of every path involved in
// the merge, sorted. The resolver is granted read/write access to each so its
// file tools run without permission prompts.
func (c *Context) AccessDirs() []string {
	seen := make(map[string]struct{})
	var dirs []string
	for _, p := range []string{c.BasePath, c.LeftPath, c.RightPath, c.OutputPath} {
		dir := filepath.Dir(p)
		if dir == "." || dir == "" {
			continue
		}
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}
