package ui

import (
	"strings"
	"testing"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"empty", "", 10, ""},
		{"fits", "triage", 10, "triage"},
		{"exact", "ready", 5, "ready"},
		{"cut", "Fix login redirect loop", 10, "Fix login…"},
		{"multibyte runes", "héllo wörld", 6, "héllo…"},
		{"single cell", "blocked", 1, "…"},
		{"non-positive max passes through", "blocked", 0, "blocked"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.max); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

func TestWrapText(t *testing.T) {
	t.Run("greedy wrap", func(t *testing.T) {
		got := WrapText("rank open work items by score", 10)
		want := "rank open\nwork items\nby score"
		if got != want {
			t.Errorf("WrapText = %q, want %q", got, want)
		}
	})

	t.Run("short lines pass through", func(t *testing.T) {
		if got := WrapText("ready", 20); got != "ready" {
			t.Errorf("WrapText = %q, want %q", got, "ready")
		}
	})

	t.Run("blank lines survive", func(t *testing.T) {
		if got := WrapText("deploy\n\nverify", 10); got != "deploy\n\nverify" {
			t.Errorf("WrapText = %q, blank line lost", got)
		}
	})

	t.Run("oversized word kept whole", func(t *testing.T) {
		if got := WrapText("supercalifragilistic", 5); got != "supercalifragilistic" {
			t.Errorf("WrapText = %q, long word should not be split", got)
		}
	})

	t.Run("zero width disables wrapping", func(t *testing.T) {
		in := "anything at all"
		if got := WrapText(in, 0); got != in {
			t.Errorf("WrapText = %q, want input unchanged", got)
		}
	})
}

func TestPanels(t *testing.T) {
	tests := []struct {
		name    string
		render  func(string, string) string
		title   string
		content string
	}{
		{"neutral", RenderPanel, "Next up", "#12 Fix login redirect loop"},
		{"success", RenderSuccessPanel, "Snapshot imported", "12 item(s) loaded"},
		{"error", RenderErrorPanel, "Apply blocked by policy", "2 violation(s)"},
		{"warning", RenderWarningPanel, "Advisory", "Consider a smaller breakdown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.render(tt.title, tt.content)
			if !strings.Contains(out, tt.title) {
				t.Errorf("panel missing title %q:\n%s", tt.title, out)
			}
			if !strings.Contains(out, tt.content) {
				t.Errorf("panel missing content %q:\n%s", tt.content, out)
			}
			if !strings.Contains(out, "╭") {
				t.Error("panel should draw a rounded border")
			}
		})
	}

	t.Run("untitled panel is body only", func(t *testing.T) {
		out := RenderPanel("", "just the body")
		if !strings.Contains(out, "just the body") {
			t.Errorf("panel missing body:\n%s", out)
		}
	})
}

func TestRenderPageHeader(t *testing.T) {
	out := RenderPageHeader("Team workload", "4 member(s)")

	if !strings.Contains(out, "Team workload") {
		t.Error("header missing title")
	}
	if !strings.Contains(out, "4 member(s)") {
		t.Error("header missing subtitle")
	}
	if !strings.Contains(out, "─") {
		t.Error("header missing rule under the title")
	}

	bare := RenderPageHeader("Recommendations", "")
	if strings.Count(bare, "\n") != 1 {
		t.Errorf("header without subtitle should be two lines, got %q", bare)
	}
}
