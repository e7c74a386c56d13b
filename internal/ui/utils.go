package ui

import (
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// IsInteractive reports whether both stdin and stdout are terminals, so
// prompts and the browser stay out of piped or redirected output.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// RenderPageHeader returns the banner printed at the top of command output:
// a bold title over a rule, with an optional dim subtitle below.
func RenderPageHeader(title, subtitle string) string {
	var sb strings.Builder
	sb.WriteString(StyleHeader.Render(title))
	sb.WriteString("\n ")
	sb.WriteString(StyleSubtle.Render(strings.Repeat("─", lipgloss.Width(title)+2)))
	if subtitle != "" {
		sb.WriteString("\n ")
		sb.WriteString(StyleSubtle.Render(subtitle))
	}
	return sb.String()
}

// panel boxes content in a rounded border. The title line, when present,
// takes the border color so severity reads at a glance.
func panel(title, content string, border lipgloss.Color) string {
	body := content
	if title != "" {
		body = lipgloss.NewStyle().Bold(true).Foreground(border).Render(title) + "\n" + content
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Render(body)
}

// RenderPanel draws a neutral panel.
func RenderPanel(title, content string) string {
	return panel(title, content, ColorSecondary)
}

// RenderSuccessPanel draws a green panel for completed operations.
func RenderSuccessPanel(title, content string) string {
	return panel(title, content, ColorSuccess)
}

// RenderErrorPanel draws a red panel for failures and policy denials.
func RenderErrorPanel(title, content string) string {
	return panel(title, content, ColorError)
}

// RenderWarningPanel draws a yellow panel for advisories.
func RenderWarningPanel(title, content string) string {
	return panel(title, content, ColorWarning)
}

// Truncate cuts s to at most max runes, ending in an ellipsis when cut.
// Non-positive max leaves s untouched.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string([]rune(s)[:max-1]) + "…"
}

// WrapText greedily wraps each line of text at width columns. Words longer
// than the width get a line of their own rather than being split mid-word.
func WrapText(text string, width int) string {
	if width <= 0 {
		return text
	}

	out := make([]string, 0, strings.Count(text, "\n")+1)
	for _, line := range strings.Split(text, "\n") {
		if utf8.RuneCountInString(line) <= width {
			out = append(out, line)
			continue
		}

		var cur string
		for _, word := range strings.Fields(line) {
			switch {
			case cur == "":
				cur = word
			case utf8.RuneCountInString(cur)+1+utf8.RuneCountInString(word) <= width:
				cur += " " + word
			default:
				out = append(out, cur)
				cur = word
			}
		}
		out = append(out, cur)
	}

	return strings.Join(out, "\n")
}
