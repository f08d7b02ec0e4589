package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/corpeningc/claude-mergetool/internal/config"
)

var (
	generateConfigOutput string
	generateConfigForce  bool
)

var generateConfigCmd = &cobra.Command{
	Use:   "generate-config",
	Short: "Write a default config file",
	Long:  "Writes a commented default config file to the user config directory.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := generateConfigOutput
		if path == "" {
			var err error
			path, err = config.DefaultPath()
			if err != nil {
				return fmt.Errorf("could not determine default config directory: %w", err)
			}
		}

		if _, err := os.Stat(path); err == nil && !generateConfigForce {
			return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
		}

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, config.Template, 0o644); err != nil {
			return fmt.Errorf("writing config file %s: %w", path, err)
		}

		fmt.Fprintln(os.Stderr, "Wrote default config to", path)
		return nil
	},
}

func init() {
	generateConfigCmd.Flags().StringVar(&generateConfigOutput, "output", "", "write to this path instead of the default config location")
	generateConfigCmd.Flags().BoolVar(&generateConfigForce, "force", false, "overwrite an existing config file")
}
