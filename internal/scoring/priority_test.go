package scoring

import (
	"math"
	"testing"

	"github.com/taskscout/taskscout/models"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestPriority_LabelScores(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
		want   float64
	}{
		{"no labels", nil, 0.5},
		{"critical", []string{"critical"}, 1.0},
		{"high", []string{"high"}, 0.8},
		{"medium", []string{"medium"}, 0.6},
		{"prefixed label", []string{"priority:high"}, 0.8},
		// "lowest" also matches "low"; the highest match wins, and neither
		// beats the base score.
		{"lowest stays at base", []string{"lowest"}, 0.5},
		{"low stays at base", []string{"low"}, 0.5},
		{"highest match wins", []string{"low", "critical"}, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := models.WorkItem{ID: 1, Title: "t", Labels: tt.labels}
			if got := Priority(item); !approxEqual(got, tt.want) {
				t.Errorf("Priority(%v) = %v, want %v", tt.labels, got, tt.want)
			}
		})
	}
}

func TestPriority_BugBoostClamped(t *testing.T) {
	// critical already at 1.0; the bug boost must not push past it.
	item := models.WorkItem{ID: 1, Title: "t", Labels: []string{"critical", "bug"}}
	if got := Priority(item); !approxEqual(got, 1.0) {
		t.Errorf("Priority(critical+bug) = %v, want 1.0", got)
	}

	item = models.WorkItem{ID: 2, Title: "t", Labels: []string{"high", "fix"}}
	if got := Priority(item); !approxEqual(got, 1.0) {
		t.Errorf("Priority(high+fix) = %v, want 1.0", got)
	}
}

func TestPriority_EpicMultiplier(t *testing.T) {
	// Epics defer to their subtasks: the final score is scaled down after
	// every other adjustment.
	item := models.WorkItem{ID: 1, Title: "t", Labels: []string{"epic"}}
	if got := Priority(item); !approxEqual(got, 0.15) {
		t.Errorf("Priority(epic) = %v, want 0.15", got)
	}

	item = models.WorkItem{ID: 2, Title: "t", Labels: []string{"epic", "critical"}}
	if got := Priority(item); !approxEqual(got, 0.3) {
		t.Errorf("Priority(epic+critical) = %v, want 0.3", got)
	}
}

func TestPriority_Monotonic(t *testing.T) {
	critical := Priority(models.WorkItem{ID: 1, Title: "t", Labels: []string{"critical"}})
	low := Priority(models.WorkItem{ID: 2, Title: "t", Labels: []string{"low"}})
	if critical < low {
		t.Errorf("critical item scored %v below low item %v", critical, low)
	}
}
