package scoring

import (
	"time"

	"github.com/taskscout/taskscout/models"
)

// baseUrgency applies when the item has no milestone due date.
const baseUrgency = 0.3

// Urgency scores an item's time pressure in [0,1]. A milestone due date
// replaces the base via coarse day buckets; recent activity and an active
// comment thread each add a clamped boost. The reference time is a parameter
// so repeated runs over a snapshot stay reproducible.
func Urgency(item models.WorkItem, now time.Time) float64 {
	score := baseUrgency

	if item.Milestone != nil && item.Milestone.DueDate != nil {
		daysUntilDue := int(item.Milestone.DueDate.Sub(now).Hours() / 24)
		switch {
		case daysUntilDue < 0:
			score = 1.0
		case daysUntilDue <= 3:
			score = 0.9
		case daysUntilDue <= 7:
			score = 0.7
		case daysUntilDue <= 14:
			score = 0.5
		default:
			score = 0.3
		}
	}

	if now.Sub(item.UpdatedAt) <= 48*time.Hour {
		score += 0.2
		if score > 1.0 {
			score = 1.0
		}
	}

	if item.Comments > 5 {
		score += 0.1
		if score > 1.0 {
			score = 1.0
		}
	}

	return score
}
