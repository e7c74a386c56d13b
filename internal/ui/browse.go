package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/taskscout/taskscout/internal/recommend"
)

// Browser layout constants
const (
	defaultBrowserWidth  = 80
	defaultBrowserHeight = 20
	browserChromeHeight  = 7 // header, footer, borders
)

// BrowseRecommendations opens the interactive recommendation browser and
// blocks until the user quits.
func BrowseRecommendations(recs []recommend.Recommendation) error {
	if len(recs) == 0 {
		fmt.Println("Nothing to browse.")
		return nil
	}

	m := browseModel{
		recs:     recs,
		viewport: viewport.New(defaultBrowserWidth, defaultBrowserHeight),
		width:    defaultBrowserWidth,
		height:   defaultBrowserHeight + browserChromeHeight,
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	if err != nil {
		return fmt.Errorf("error running recommendation browser: %w", err)
	}
	return nil
}

type browseModel struct {
	recs       []recommend.Recommendation
	cursor     int
	showDetail bool
	viewport   viewport.Model
	width      int
	height     int
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - browserChromeHeight
		if m.viewport.Height < 5 {
			m.viewport.Height = 5
		}
		if m.showDetail {
			m.viewport.SetContent(m.detailContent())
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "esc", "backspace":
			if m.showDetail {
				m.showDetail = false
				return m, nil
			}
			return m, tea.Quit

		case "up", "k":
			if m.showDetail {
				m.viewport.ScrollUp(1)
			} else if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.showDetail {
				m.viewport.ScrollDown(1)
			} else if m.cursor < len(m.recs)-1 {
				m.cursor++
			}

		case "enter":
			if !m.showDetail {
				m.showDetail = true
				m.viewport.SetContent(m.detailContent())
				m.viewport.GotoTop()
			}
		}
	}
	return m, nil
}

func (m browseModel) View() string {
	if m.showDetail {
		return m.detailView()
	}
	return m.listView()
}

func (m browseModel) listView() string {
	var sb strings.Builder

	sb.WriteString("\n" + StyleHeader.Render(fmt.Sprintf("Recommendations (%d)", len(m.recs))) + "\n\n")

	for i, rec := range m.recs {
		cursor := "  "
		style := StyleSelectNormal
		if m.cursor == i {
			cursor = "▶ "
			style = StyleSelectActive
		}

		score := ScoreStyle(rec.Score.Total).Render(fmt.Sprintf("%.2f", rec.Score.Total))
		title := Truncate(rec.Item.Title, m.width-24)
		line := fmt.Sprintf("%s%s  %s  %s", cursor, score, style.Render(fmt.Sprintf("#%-5d", rec.Item.ID)), style.Render(title))
		if len(rec.Score.Blockers) > 0 {
			line += StyleError.Render("  [blocked]")
		}
		sb.WriteString(line + "\n")
	}

	sb.WriteString("\n" + StyleSelectDim.Render("↑/↓ navigate • enter details • q quit") + "\n")
	return sb.String()
}

func (m browseModel) detailView() string {
	rec := m.recs[m.cursor]
	header := StyleHeader.Render(fmt.Sprintf("#%d %s", rec.Item.ID, Truncate(rec.Item.Title, m.width-12)))
	footer := StyleSelectDim.Render("↑/↓ scroll • esc back • q quit")
	return "\n" + header + "\n\n" + m.viewport.View() + "\n\n" + footer + "\n"
}

func (m browseModel) detailContent() string {
	rec := m.recs[m.cursor]
	width := m.viewport.Width
	if width <= 0 {
		width = defaultBrowserWidth
	}

	var sb strings.Builder
	total := ScoreStyle(rec.Score.Total).Render(fmt.Sprintf("%.2f", rec.Score.Total))
	sb.WriteString(fmt.Sprintf("Total score: %s\n", total))
	sb.WriteString(fmt.Sprintf(
		"  priority %.2f · urgency %.2f · availability %.2f · skill %.2f · readiness %.2f\n\n",
		rec.Score.Priority, rec.Score.Urgency, rec.Score.Availability,
		rec.Score.SkillMatch, rec.Score.Readiness))

	sb.WriteString(StyleSectionTitle.Render("Reasoning") + "\n")
	sb.WriteString(WrapText(rec.Reasoning, width) + "\n\n")

	if len(rec.Item.Labels) > 0 {
		sb.WriteString("Labels:    " + strings.Join(rec.Item.Labels, ", ") + "\n")
	}
	if len(rec.Item.Assignees) > 0 {
		sb.WriteString("Assignees: " + strings.Join(rec.Item.Assignees, ", ") + "\n")
	}
	if rec.Item.Milestone != nil {
		line := "Milestone: " + rec.Item.Milestone.Title
		if rec.Item.Milestone.DueDate != nil {
			line += " (due " + rec.Item.Milestone.DueDate.Format("2006-01-02") + ")"
		}
		sb.WriteString(line + "\n")
	}

	if len(rec.Score.Blockers) > 0 {
		sb.WriteString("\n" + StyleError.Render("Blockers") + "\n")
		for _, b := range rec.Score.Blockers {
			sb.WriteString("  • " + b + "\n")
		}
	}

	if body := strings.TrimSpace(rec.Item.Body); body != "" {
		sb.WriteString("\n" + StyleSectionTitle.Render("Description") + "\n")
		sb.WriteString(WrapText(body, width) + "\n")
	}

	return sb.String()
}
