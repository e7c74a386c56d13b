package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestTableWidthsFollowContent(t *testing.T) {
	table := NewTable(
		Column{Title: "ID"},
		Column{Title: "Title"},
		Column{Title: "Assignees"},
	)
	table.AddRow("#412", "Fix login redirect loop", "mei")
	table.AddRow("#7", "Upgrade payment SDK", "torres, mei")

	w := table.widths()

	if w[0] != 4 {
		t.Errorf("ID width = %d, want 4 (widest cell %q)", w[0], "#412")
	}
	if w[1] != len("Fix login redirect loop") {
		t.Errorf("Title width = %d, want %d", w[1], len("Fix login redirect loop"))
	}
	if w[2] != len("torres, mei") {
		t.Errorf("Assignees width = %d, want %d", w[2], len("torres, mei"))
	}
}

func TestTableWidthsUseDisplayCells(t *testing.T) {
	// An em dash is three bytes but one display cell; byte-length sizing
	// would report 3 here.
	table := NewTable(Column{Title: "S"})
	table.AddRow("—")

	if w := table.widths(); w[0] != 1 {
		t.Errorf("width = %d, want 1 display cell", w[0])
	}
}

func TestTableColumnMaxCapsWidth(t *testing.T) {
	table := NewTable(Column{Title: "Title", Max: 12})
	table.AddRow("Investigate flaky checkout integration test")

	if w := table.widths(); w[0] != 12 {
		t.Errorf("width = %d, want capped 12", w[0])
	}
}

func TestTableRenderClipsOverwideCells(t *testing.T) {
	table := NewTable(Column{Title: "Title", Max: 10})
	table.AddRow("Refactor session token rotation")

	out := table.Render()

	if !strings.Contains(out, "…") {
		t.Error("over-wide cells should end in an ellipsis")
	}
	if strings.Contains(out, "rotation") {
		t.Error("clipped cell should not carry its tail")
	}
}

func TestTableRenderRightAlignsNumericColumns(t *testing.T) {
	table := NewTable(
		Column{Title: "ID"},
		Column{Title: "Score", Numeric: true},
	)
	table.AddRow("#7", "0.9")

	// "0.9" sits at the right edge of the 5-wide Score column.
	if out := table.Render(); !strings.Contains(out, "#7    0.9") {
		t.Errorf("numeric cell not right-aligned:\n%s", out)
	}
}

func TestTableRenderShortRow(t *testing.T) {
	table := NewTable(
		Column{Title: "ID"},
		Column{Title: "Member"},
		Column{Title: "Load"},
	)
	table.AddRow("#3", "mei")

	out := table.Render()

	if !strings.Contains(out, "mei") {
		t.Errorf("short row should still render, got %q", out)
	}
	// Header, rule, one data row.
	if lines := strings.Split(strings.TrimRight(out, "\n"), "\n"); len(lines) != 3 {
		t.Errorf("expected 3 lines, got %d", len(lines))
	}
}

func TestTableRenderNoColumns(t *testing.T) {
	if out := NewTable().Render(); out != "" {
		t.Errorf("table without columns should render empty, got %q", out)
	}
}

func TestClip(t *testing.T) {
	got := clip("Refactor payment retries", 10)

	if lipgloss.Width(got) != 10 {
		t.Errorf("clip width = %d, want 10", lipgloss.Width(got))
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("clip(%q) = %q, want ellipsis suffix", "Refactor payment retries", got)
	}
	if short := clip("done", 10); short != "done" {
		t.Errorf("clip should pass short cells through, got %q", short)
	}
}

func TestPad(t *testing.T) {
	tests := []struct {
		in    string
		width int
		right bool
		want  string
	}{
		{"0.91", 6, true, "  0.91"},
		{"mei", 6, false, "mei   "},
		{"overflow", 3, false, "overflow"},
		{"", 2, true, "  "},
	}

	for _, tc := range tests {
		if got := pad(tc.in, tc.width, tc.right); got != tc.want {
			t.Errorf("pad(%q, %d, %v) = %q, want %q", tc.in, tc.width, tc.right, got, tc.want)
		}
	}
}
