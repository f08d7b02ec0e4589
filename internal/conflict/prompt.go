package conflict

import (
	"fmt"
	"strings"
)

// SystemPrompt renders the instruction preamble for the resolver. extra, when
// non-empty, is appended after a blank line.
func SystemPrompt(c *Context, extra string) string {
	var b strings.Builder
	fmt.Fprintf(&b,
		"You are resolving a merge conflict in `%s`. "+
			"Your working directory is the root of the repository, so you can browse and edit "+
			"other files if needed (e.g. if code moved between files).\n\n"+
			"Three versions of the file are provided as temporary files: "+
			"the base (common ancestor), left (%s), and right (%s). "+
			"Read all three, understand what each side changed relative to the base, "+
			"and write a resolved version to the output path. "+
			"If changes are compatible, merge them cleanly. "+
			"If they genuinely conflict, use your best judgment and explain your reasoning.",
		c.DisplayPath, c.Labels.Left, c.Labels.Right)
	if extra != "" {
		b.WriteString("\n\n")
		b.WriteString(extra)
	}
	return b.String()
}

// UserPrompt renders the task description for the resolver. Every field of
// the context that affects resolution is encoded here, so identical contexts
// always produce byte-identical prompts.
func UserPrompt(c *Context) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Resolve the merge conflict in `%s`.\n\n", c.DisplayPath)
	b.WriteString("Read these three versions of the file:\n")
	if c.Labels.Base != "" {
		fmt.Fprintf(&b, "- Base (%s): %s\n", c.Labels.Base, c.BasePath)
	} else {
		fmt.Fprintf(&b, "- Base (common ancestor): %s\n", c.BasePath)
	}
	fmt.Fprintf(&b, "- Left (%s): %s\n", c.Labels.Left, c.LeftPath)
	fmt.Fprintf(&b, "- Right (%s): %s\n\n", c.Labels.Right, c.RightPath)
	fmt.Fprintf(&b, "Write the resolved file to: %s", c.OutputPath)
	if c.MarkerSize > 0 {
		fmt.Fprintf(&b, "\n\nConflict markers in these files are %d characters wide.", c.MarkerSize)
	}
	return b.String()
}
