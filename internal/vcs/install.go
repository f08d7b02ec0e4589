// Package vcs registers claude-mergetool with the version control tools that
// will invoke it.
package vcs

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
)

// Program is a version control tool that can delegate merges to this driver.
type Program int

const (
	Git Program = iota
	Jj
)

// All lists every supported program.
func All() []Program {
	return []Program{Git, Jj}
}

func (p Program) String() string {
	if p == Git {
		return "git"
	}
	return "jj"
}

// Parse maps a command-line argument to a Program.
func Parse(name string) (Program, error) {
	switch strings.ToLower(name) {
	case "git":
		return Git, nil
	case "jj":
		return Jj, nil
	}
	return 0, fmt.Errorf("unknown program %q (expected git or jj)", name)
}

// Available returns the supported programs present on this system.
func Available() []Program {
	var found []Program
	for _, p := range All() {
		if p.Installed() {
			found = append(found, p)
		}
	}
	return found
}

// Installed reports whether the program runs on this system.
func (p Program) Installed() bool {
	return exec.Command(p.String(), "--version").Run() == nil
}

// Install writes every config key registering the driver for the program.
func (p Program) Install() error {
	for _, kv := range p.settings() {
		if err := p.configSet(kv[0], kv[1]); err != nil {
			return err
		}
	}
	return nil
}

// settings returns the key/value pairs each program needs. Git gets both the
// mergetool registration and a merge-driver entry (usable from
// .gitattributes); jj gets a merge-tools table entry.
func (p Program) settings() [][2]string {
	switch p {
	case Git:
		return [][2]string{
			{"mergetool.claude.cmd", `claude-mergetool merge "$BASE" "$LOCAL" "$REMOTE" -o "$MERGED" -p "$MERGED"`},
			{"mergetool.claude.trustExitCode", "true"},
			{"merge.claude.name", "Claude merge driver"},
			{"merge.claude.driver", "claude-mergetool merge %O %A %B --git-merge-driver -p %P -l %L"},
		}
	default:
		return [][2]string{
			{"merge-tools.claude.program", "claude-mergetool"},
			{"merge-tools.claude.merge-args", `["merge", "$base", "$left", "$right", "-o", "$output", "-p", "$path"]`},
		}
	}
}

// configSetArgs builds the program-specific `config set` argument list. Git
// writes to the global scope, jj to the user scope.
func (p Program) configSetArgs(name, value string) []string {
	scope := "--global"
	if p == Jj {
		scope = "--user"
	}
	return []string{"config", "set", scope, name, value}
}

func (p Program) configSet(name, value string) error {
	args := p.configSetArgs(name, value)
	log.Debug("running", "command", p.String()+" "+strings.Join(args, " "))

	out, err := exec.Command(p.String(), args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s config set %s: %v: %s", p, name, err, strings.TrimSpace(string(out)))
	}
	return nil
}
