package cmd

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/corpeningc/claude-mergetool/internal/vcs"
)

var installCmd = &cobra.Command{
	Use:   "install [git|jj...]",
	Short: "Install claude-mergetool as a merge tool for git or jj",
	Long: "Registers claude-mergetool in the global git and jj configuration.\n" +
		"With no arguments, prompts for the programs to configure, defaulting to\n" +
		"whichever of git and jj are available.",
	RunE: func(cmd *cobra.Command, args []string) error {
		programs, err := selectPrograms(args)
		if err != nil {
			return err
		}
		for _, p := range programs {
			log.Info("configuring claude-mergetool", "program", p.String())
			if err := p.Install(); err != nil {
				return fmt.Errorf("configuring claude-mergetool for %s: %w", p, err)
			}
		}
		return nil
	},
}

func selectPrograms(args []string) ([]vcs.Program, error) {
	if len(args) > 0 {
		programs := make([]vcs.Program, 0, len(args))
		for _, arg := range args {
			p, err := vcs.Parse(arg)
			if err != nil {
				return nil, err
			}
			programs = append(programs, p)
		}
		return programs, nil
	}

	available := vcs.Available()
	if len(available) == 0 {
		return nil, fmt.Errorf("neither git nor jj is available")
	}

	selected := available
	form := huh.NewForm(huh.NewGroup(
		huh.NewMultiSelect[vcs.Program]().
			Title("Configure claude-mergetool for").
			Options(programOptions(available)...).
			Value(&selected),
	))
	if err := form.Run(); err != nil {
		// No usable terminal: fall back to everything available.
		log.Debug("install prompt unavailable", "error", err)
		return available, nil
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("no programs selected")
	}
	return selected, nil
}

func programOptions(programs []vcs.Program) []huh.Option[vcs.Program] {
	opts := make([]huh.Option[vcs.Program], len(programs))
	for i, p := range programs {
		opts[i] = huh.NewOption(p.String(), p).Selected(true)
	}
	return opts
}
