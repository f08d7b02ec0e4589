package claude

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
)

var (
	dimStyle     = lipgloss.NewStyle().Faint(true)
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
)

// EventRenderer turns raw stream-json lines from the resolver into terminal
// output. Lines that do not parse as a known event render as the empty
// string. Not safe for concurrent use; the runner feeds it from a single
// goroutine.
type EventRenderer struct {
	// Temp dir prefixes to replace with $TMPDIR in output, longest first.
	tempDirs []string
	markdown *glamour.TermRenderer
	// Whether anything has been rendered yet, for stripping the leading
	// newlines the model likes to start its first message with.
	hasOutput bool
}

func NewEventRenderer() *EventRenderer {
	r := &EventRenderer{tempDirs: tempDirPrefixes()}
	md, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(0))
	if err != nil {
		log.Debug("markdown renderer unavailable, falling back to plain text", "error", err)
	} else {
		r.markdown = md
	}
	return r
}

// tempDirPrefixes returns the temp dir path and its symlink-resolved form
// (e.g. /private/tmp on macOS), longest first so a longer prefix is never
// partially replaced.
func tempDirPrefixes() []string {
	raw := os.TempDir()
	dirs := []string{raw}
	if resolved, err := filepath.EvalSymlinks(raw); err == nil && resolved != raw {
		dirs = append(dirs, resolved)
	}
	sort.Slice(dirs, func(i, j int) bool { return len(dirs[i]) > len(dirs[j]) })
	return dirs
}

type assistantEvent struct {
	Message struct {
		Content []contentBlock `json:"content"`
	} `json:"message"`
}

type contentBlock struct {
	Type  string    `json:"type"`
	Text  string    `json:"text"`
	Name  string    `json:"name"`
	Input toolInput `json:"input"`
}

type toolInput struct {
	FilePath string `json:"file_path"`
}

type resultEvent struct {
	Subtype       string                `json:"subtype"`
	IsError       bool                  `json:"is_error"`
	DurationMS    int64                 `json:"duration_ms"`
	APIDurationMS int64                 `json:"duration_api_ms"`
	NumTurns      int                   `json:"num_turns"`
	TotalCostUSD  float64               `json:"total_cost_usd"`
	ModelUsage    map[string]modelUsage `json:"modelUsage"`
}

type modelUsage struct {
	InputTokens              int64   `json:"inputTokens"`
	OutputTokens             int64   `json:"outputTokens"`
	CacheReadInputTokens     int64   `json:"cacheReadInputTokens"`
	CacheCreationInputTokens int64   `json:"cacheCreationInputTokens"`
	CostUSD                  float64 `json:"costUSD"`
}

func (u modelUsage) String() string {
	return fmt.Sprintf("%s input, %s output, %s cache read, %s cache write (%s)",
		formatTokens(u.InputTokens), formatTokens(u.OutputTokens),
		formatTokens(u.CacheReadInputTokens), formatTokens(u.CacheCreationInputTokens),
		formatDollars(u.CostUSD))
}

// Render formats one raw event line. Unknown or malformed lines produce "".
func (r *EventRenderer) Render(line string) string {
	var env struct {
		Type    string `json:"type"`
		Subtype string `json:"subtype"`
	}
	if err := json.Unmarshal([]byte(line), &env); err != nil {
		log.Debug("skipping resolver event", "error", err)
		return ""
	}

	var out string
	switch {
	case env.Type == "assistant":
		out = r.renderAssistant(line)
	case env.Type == "result" && env.Subtype == "success":
		out = r.renderResult(line)
	default:
		return ""
	}

	for _, dir := range r.tempDirs {
		out = strings.ReplaceAll(out, dir, "$TMPDIR")
	}
	return out
}

// IsResult reports whether a raw line is a terminal result event. Result
// lines are mirrored into the summary log.
func IsResult(line string) bool {
	var env struct {
		Type string `json:"type"`
	}
	return json.Unmarshal([]byte(line), &env) == nil && env.Type == "result"
}

func (r *EventRenderer) renderAssistant(line string) string {
	var ev assistantEvent
	if err := json.Unmarshal([]byte(line), &ev); err != nil {
		log.Debug("skipping assistant event", "error", err)
		return ""
	}

	var b strings.Builder
	for _, block := range ev.Message.Content {
		switch block.Type {
		case "text":
			text := block.Text
			if !r.hasOutput {
				text = strings.TrimLeft(text, "\n")
			}
			if text == "" {
				continue
			}
			b.WriteString(r.renderMarkdown(text))
			r.hasOutput = true
		case "tool_use":
			switch block.Name {
			case "Read", "Write", "Edit":
				path := block.Input.FilePath
				if path == "" {
					path = "?"
				}
				b.WriteString(dimStyle.Render(fmt.Sprintf("> %s %s", block.Name, path)) + "\n")
			default:
				fmt.Fprintf(&b, "> %s\n", block.Name)
			}
			r.hasOutput = true
		}
	}
	return b.String()
}

func (r *EventRenderer) renderMarkdown(text string) string {
	if r.markdown != nil {
		if out, err := r.markdown.Render(text); err == nil {
			return out
		}
	}
	return text
}

func (r *EventRenderer) renderResult(line string) string {
	var res resultEvent
	if err := json.Unmarshal([]byte(line), &res); err != nil {
		log.Debug("skipping result event", "error", err)
		return ""
	}

	var b strings.Builder
	b.WriteString(successStyle.Render(fmt.Sprintf("Finished in %s (%s API time). Total cost: %s",
		formatDuration(time.Duration(res.DurationMS)*time.Millisecond),
		formatDuration(time.Duration(res.APIDurationMS)*time.Millisecond),
		formatDollars(res.TotalCostUSD))))
	b.WriteString("\n")
	r.hasOutput = true

	if len(res.ModelUsage) == 0 {
		return b.String()
	}

	models := make([]string, 0, len(res.ModelUsage))
	for name := range res.ModelUsage {
		models = append(models, name)
	}
	sort.Strings(models)

	b.WriteString(dimStyle.Render("Usage by model:") + "\n")
	for _, name := range models {
		b.WriteString(dimStyle.Render(fmt.Sprintf("    %s: %s", name, res.ModelUsage[name])) + "\n")
	}
	return b.String()
}

func formatTokens(n int64) string {
	return humanize.Comma(n)
}

func formatDollars(usd float64) string {
	if usd < 1000 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.1fk", usd/1000)
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.2fs", d.Seconds())
	default:
		return d.Round(time.Second).String()
	}
}
