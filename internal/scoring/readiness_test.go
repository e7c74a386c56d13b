package scoring

import (
	"strings"
	"testing"

	"github.com/taskscout/taskscout/models"
)

func TestEvaluateReadiness_CleanItem(t *testing.T) {
	item := models.WorkItem{
		ID:    1,
		Title: "Add export button",
		Body:  strings.Repeat("The export button writes the current view as CSV. ", 3),
	}

	r := EvaluateReadiness(classifyForTest(t, item))
	if !r.Ready {
		t.Errorf("clean item should be ready, got %+v", r)
	}
	if !approxEqual(r.Score, 1.0) {
		t.Errorf("Score = %v, want 1.0", r.Score)
	}
	if len(r.Blockers) != 0 {
		t.Errorf("Blockers = %v, want none", r.Blockers)
	}
}

func TestEvaluateReadiness_EmptyBody(t *testing.T) {
	// No labels, empty body: only the description penalty applies, and the
	// recorded blocker keeps the item out of the ready set even though the
	// score clears the threshold.
	item := models.WorkItem{ID: 1, Title: "Vague idea"}

	r := EvaluateReadiness(classifyForTest(t, item))
	if !approxEqual(r.Score, 0.7) {
		t.Errorf("Score = %v, want 0.7", r.Score)
	}
	if r.Ready {
		t.Error("item with a blocker must not be ready")
	}
	if len(r.Blockers) != 1 || r.Blockers[0] != "Insufficient description" {
		t.Errorf("Blockers = %v, want [Insufficient description]", r.Blockers)
	}
}

func TestEvaluateReadiness_BlockingLabel(t *testing.T) {
	item := models.WorkItem{
		ID:     1,
		Title:  "t",
		Body:   strings.Repeat("Enough description to clear the length check. ", 3),
		Labels: []string{"status:blocked"},
	}

	r := EvaluateReadiness(classifyForTest(t, item))
	if !approxEqual(r.Score, 0.5) {
		t.Errorf("Score = %v, want 0.5", r.Score)
	}
	if r.Ready {
		t.Error("blocked item must not be ready")
	}
	if len(r.Blockers) != 1 || !strings.Contains(r.Blockers[0], "status:blocked") {
		t.Errorf("Blockers = %v, want the original label named", r.Blockers)
	}
}

func TestEvaluateReadiness_DependencyPhrase(t *testing.T) {
	item := models.WorkItem{
		ID:    1,
		Title: "t",
		Body:  "This depends on #42 landing first, but the rest of the work is scoped.",
	}

	r := EvaluateReadiness(classifyForTest(t, item))
	if !approxEqual(r.Score, 0.8) {
		t.Errorf("Score = %v, want 0.8", r.Score)
	}
	if r.Ready {
		t.Error("item with a dependency reference must not be ready")
	}
	if len(r.Blockers) != 1 || !strings.Contains(r.Blockers[0], "depends on #42") {
		t.Errorf("Blockers = %v, want the matched phrase", r.Blockers)
	}
}

func TestEvaluateReadiness_FirstPhraseOnly(t *testing.T) {
	// Multiple dependency phrases in one body still cost a single penalty.
	item := models.WorkItem{
		ID:    1,
		Title: "t",
		Body:  "Work depends on #7 and is also waiting for the design review to finish up.",
	}

	r := EvaluateReadiness(classifyForTest(t, item))
	if !approxEqual(r.Score, 0.8) {
		t.Errorf("Score = %v, want 0.8 (single penalty)", r.Score)
	}
	if len(r.Blockers) != 1 {
		t.Errorf("Blockers = %v, want exactly one", r.Blockers)
	}
}

func TestEvaluateReadiness_ScoreFloorsAtZero(t *testing.T) {
	item := models.WorkItem{
		ID:     1,
		Title:  "t",
		Body:   "waiting for #3",
		Labels: []string{"on-hold"},
	}

	r := EvaluateReadiness(classifyForTest(t, item))
	if r.Score < 0 {
		t.Errorf("Score = %v, must not go negative", r.Score)
	}
	if len(r.Blockers) != 3 {
		t.Errorf("Blockers = %v, want all three recorded", r.Blockers)
	}
}
