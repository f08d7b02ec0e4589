package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	configPath string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   "claude-mergetool",
	Short: "AI-powered merge conflict resolution",
	Long: "Resolves three-way merge conflicts by delegating them to the claude CLI.\n" +
		"Run `claude-mergetool install` to register it as a merge tool for git and jj,\n" +
		"then resolve conflicts with `git mergetool -t claude` or `jj resolve --tool claude`.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debug {
			log.SetLevel(log.DebugLevel)
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(generateConfigCmd)
}
