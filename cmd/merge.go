package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/corpeningc/claude-mergetool/internal/claude"
	"github.com/corpeningc/claude-mergetool/internal/config"
	"github.com/corpeningc/claude-mergetool/internal/conflict"
	"github.com/corpeningc/claude-mergetool/internal/logging"
)

// Exit codes reported to the invoking VCS. Zero means the conflict was
// resolved; everything else identifies the failing stage.
const (
	exitResolved       = 0
	exitAmbiguousMode  = 2
	exitInputNotFound  = 3
	exitInputReadError = 4
	exitLaunchFailed   = 5
	exitResolverFailed = 6
)

var (
	bannerStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	bannerPathStyle = bannerStyle.Underline(true)
)

var (
	mergeOutput    string
	gitMergeDriver bool
	gitDriverAlias bool
	ancestorLabel  string
	leftLabel      string
	rightLabel     string
	displayPath    string
	markerSize     int
)

// resolverBinary overrides the claude binary, for tests.
var resolverBinary string

var mergeCmd = &cobra.Command{
	Use:   "merge <base> <left> <right>",
	Short: "Resolve a merge conflict using Claude",
	Long: "Resolves a three-way merge conflict by handing the base, left, and right\n" +
		"versions to the claude CLI. With --git-merge-driver the result is written back\n" +
		"to <left> (git merge-driver convention); otherwise -o <path> is required.",
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runMerge(args))
	},
}

func init() {
	flags := mergeCmd.Flags()
	flags.BoolVar(&gitMergeDriver, "git-merge-driver", false, "git merge driver mode (writes result to <left>)")
	flags.BoolVar(&gitDriverAlias, "git", false, "alias for --git-merge-driver")
	flags.StringVarP(&mergeOutput, "output", "o", "", "output file path (jj mode)")
	flags.StringVarP(&ancestorLabel, "ancestor-label", "s", "", "ancestor conflict label")
	flags.StringVarP(&leftLabel, "left-label", "x", conflict.DefaultLeftLabel, "left/ours conflict label")
	flags.StringVarP(&rightLabel, "right-label", "y", conflict.DefaultRightLabel, "right/theirs conflict label")
	flags.StringVarP(&displayPath, "path", "p", "", "original file path, shown in prompts only")
	flags.IntVarP(&markerSize, "marker-size", "l", 0, "conflict marker size, passed through to the prompt")
}

func runMerge(args []string) int {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	c, err := conflict.Build(conflict.Params{
		Base:           args[0],
		Left:           args[1],
		Right:          args[2],
		Output:         mergeOutput,
		GitMergeDriver: gitMergeDriver || gitDriverAlias,
		BaseLabel:      ancestorLabel,
		LeftLabel:      leftLabel,
		RightLabel:     rightLabel,
		DisplayPath:    displayPath,
		MarkerSize:     markerSize,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCode(err)
	}

	if displayPath != "" {
		fmt.Fprintln(os.Stderr,
			bannerStyle.Render("Resolving merge conflict in ")+bannerPathStyle.Render(displayPath))
	}

	mergeLog := logging.New(c.DisplayPath)
	defer mergeLog.Close()

	runner := &claude.Runner{Binary: resolverBinary, Log: mergeLog}
	err = runner.Resolve(context.Background(), claude.Invocation{
		SystemPrompt:   conflict.SystemPrompt(c, cfg.ExtraSystemPrompt),
		Prompt:         conflict.UserPrompt(c),
		PermissionMode: cfg.PermissionMode,
		ExtraArgs:      cfg.ExtraArgs,
		AccessDirs:     c.AccessDirs(),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCode(err)
	}
	return exitResolved
}

// exitCode maps the error taxonomy onto the exit codes above. Unclassified
// errors map to 1.
func exitCode(err error) int {
	var (
		notFound *conflict.NotFoundError
		readErr  *conflict.ReadError
		launch   *claude.LaunchError
		exit     *claude.ExitError
	)
	switch {
	case err == nil:
		return exitResolved
	case errors.Is(err, conflict.ErrAmbiguousMode):
		return exitAmbiguousMode
	case errors.As(err, &notFound):
		return exitInputNotFound
	case errors.As(err, &readErr):
		return exitInputReadError
	case errors.As(err, &launch):
		return exitLaunchFailed
	case errors.As(err, &exit):
		return exitResolverFailed
	}
	return 1
}
