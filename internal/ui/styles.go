package ui

import "github.com/charmbracelet/lipgloss"

// Palette. ANSI-256 values picked to stay readable on dark and light
// terminals; the blue accent marks headers and selections.
var (
	ColorPrimary   = lipgloss.Color("39")  // accent blue
	ColorSecondary = lipgloss.Color("243") // muted gray
	ColorSuccess   = lipgloss.Color("78")
	ColorError     = lipgloss.Color("203")
	ColorWarning   = lipgloss.Color("215")

	StyleSubtle  = lipgloss.NewStyle().Foreground(ColorSecondary)
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)

	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true).
			Padding(0, 1)

	StyleSectionTitle = lipgloss.NewStyle().
				Foreground(ColorPrimary).
				Bold(true).
				Underline(true)

	// Browser list styles. Unselected rows keep the terminal's default
	// foreground so the active row stands out.
	StyleSelectActive = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	StyleSelectNormal = lipgloss.NewStyle()
	StyleSelectDim    = lipgloss.NewStyle().Foreground(ColorSecondary)
)

// ScoreStyle maps a score in [0,1] onto a severity color: green for strong,
// orange for middling, red for weak.
func ScoreStyle(score float64) lipgloss.Style {
	switch {
	case score >= 0.7:
		return StyleSuccess
	case score >= 0.4:
		return StyleWarning
	default:
		return StyleError
	}
}
