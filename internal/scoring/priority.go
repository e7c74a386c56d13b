package scoring

import (
	"strings"

	"github.com/taskscout/taskscout/models"
)

// basePriority applies when no priority label matches.
const basePriority = 0.5

// Priority scores an item's priority in [0,1] from its labels. Severity
// keywords match by substring, so "priority:critical" scores as critical.
// Bug and fix labels add a boost; epic labels suppress the score since epics
// are split before being worked directly.
func Priority(item models.WorkItem) float64 {
	score := basePriority
	for _, label := range item.Labels {
		lower := strings.ToLower(label)
		for keyword, labelScore := range priorityLabelScores {
			if strings.Contains(lower, keyword) && labelScore > score {
				score = labelScore
			}
		}
	}

	if item.HasLabelContaining("bug") || item.HasLabelContaining("fix") {
		score += 0.2
		if score > 1.0 {
			score = 1.0
		}
	}

	if item.HasLabelContaining("epic") {
		score *= 0.3
	}

	return score
}
