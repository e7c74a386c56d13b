package breakdown

import (
	"reflect"
	"strings"
	"testing"

	"github.com/taskscout/taskscout/models"
	"github.com/taskscout/taskscout/types"
)

// bugItem scores complexity 3: medium body, one technical keyword.
func bugItem() models.WorkItem {
	return models.WorkItem{
		ID:     41,
		Title:  "Fix crash when saving empty profile",
		Labels: []string{"bug"},
		Body: strings.Repeat("The crash happens on every save of an empty profile form. ", 10) +
			"Stack trace points into the api layer.",
	}
}

// featureItem scores complexity 4 and trips none of the context extras.
func featureItem() models.WorkItem {
	return models.WorkItem{
		ID:    7,
		Title: "Add CSV export for reports",
		Body: strings.Repeat("Users want to pull their numbers into spreadsheets without manual copying. ", 8) +
			"Watch performance and concurrency on large workspaces.",
	}
}

// wideItem scores complexity 7 and trips all four context extras, so the
// instantiated step list exceeds the subtask cap.
func wideItem() models.WorkItem {
	return models.WorkItem{
		ID:    88,
		Title: "Build the new account settings page for every team and org plan",
		Body: strings.Repeat("The settings page consolidates scattered preferences into one place. ", 15) +
			"Needs a new database schema, a rest api integration, a security review of permissions, and ui work.",
	}
}

func TestGenerate_LowValueAdvisory(t *testing.T) {
	item := models.WorkItem{ID: 3, Title: "Fix typo in docs"}

	result, err := Generate(item, Options{})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if result.OriginalComplexity != 1 {
		t.Errorf("OriginalComplexity = %d, want 1", result.OriginalComplexity)
	}
	if result.Advisory == "" {
		t.Error("low-value item should carry an advisory")
	}
	if len(result.Subtasks) != 0 {
		t.Errorf("got %d subtasks, want none without force", len(result.Subtasks))
	}
}

func TestGenerate_ForceOverridesAdvisory(t *testing.T) {
	item := models.WorkItem{ID: 3, Title: "Fix typo in docs"}

	result, err := Generate(item, Options{Force: true})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if result.Advisory != "" {
		t.Errorf("Advisory = %q, want none when forced", result.Advisory)
	}
	// "Fix" in the title selects the four step bugfix template.
	if len(result.Subtasks) != 4 {
		t.Errorf("got %d subtasks, want 4", len(result.Subtasks))
	}
}

func TestGenerate_BugTemplatePhases(t *testing.T) {
	result, err := Generate(bugItem(), Options{})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	wantTitles := []string{
		"Bug Investigation and Reproduction",
		"Root Cause Analysis",
		"Implement Fix",
		"Regression Testing",
	}
	if len(result.Subtasks) != len(wantTitles) {
		t.Fatalf("got %d subtasks, want %d", len(result.Subtasks), len(wantTitles))
	}
	for i, want := range wantTitles {
		if result.Subtasks[i].Title != want {
			t.Errorf("subtask[%d] = %q, want %q", i, result.Subtasks[i].Title, want)
		}
	}

	if len(result.Phases) != 3 {
		t.Fatalf("got %d phases, want 3: %v", len(result.Phases), result.Phases)
	}
	if !reflect.DeepEqual(result.Phases[0], []string{"Bug Investigation and Reproduction"}) {
		t.Errorf("phase 1 = %v, want exactly the investigation step", result.Phases[0])
	}
	if !reflect.DeepEqual(result.Phases[1], []string{"Root Cause Analysis"}) {
		t.Errorf("phase 2 = %v, want the root cause step", result.Phases[1])
	}

	// Linear four step chain.
	if result.CriticalPathDepth != 3 {
		t.Errorf("CriticalPathDepth = %d, want 3", result.CriticalPathDepth)
	}
}

func TestGenerate_FeatureTemplate(t *testing.T) {
	result, err := Generate(featureItem(), Options{})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if len(result.Subtasks) != 5 {
		t.Fatalf("got %d subtasks, want the 5 base feature steps", len(result.Subtasks))
	}

	deps, ok := result.Dependencies["Technical Design"]
	if !ok {
		t.Fatal("Technical Design missing from the dependency map")
	}
	if !reflect.DeepEqual(deps, []string{"Research and Requirements Analysis"}) {
		t.Errorf("Technical Design deps = %v", deps)
	}
	if _, ok := result.Dependencies["Research and Requirements Analysis"]; ok {
		t.Error("dependency-free step must be omitted from the map")
	}

	if result.Timeline == "" {
		t.Error("Timeline must not be empty")
	}
	if result.RecommendedApproach == "" {
		t.Error("RecommendedApproach must not be empty")
	}
}

func TestGenerate_TruncatesToMaxSubtasks(t *testing.T) {
	result, err := Generate(wideItem(), Options{})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if len(result.Subtasks) != DefaultMaxSubtasks {
		t.Fatalf("got %d subtasks, want cap %d", len(result.Subtasks), DefaultMaxSubtasks)
	}

	titles := make(map[string]bool)
	for _, st := range result.Subtasks {
		titles[st.Title] = true
	}
	// The last appended extra falls off the end.
	if titles["UI Polish and Accessibility Pass"] {
		t.Error("truncation should drop the last extra step")
	}
	for _, st := range result.Subtasks {
		for _, dep := range st.Dependencies {
			if !titles[dep] {
				t.Errorf("subtask %q depends on missing %q", st.Title, dep)
			}
		}
	}
}

func TestGenerate_ComplexityCapHonored(t *testing.T) {
	// Items whose complexity leaves room above the one-point floor.
	for _, item := range []models.WorkItem{featureItem(), wideItem()} {
		result, err := Generate(item, Options{})
		if err != nil {
			t.Fatalf("Generate(%d) error: %v", item.ID, err)
		}
		bound := 1.3 * float64(result.OriginalComplexity)
		if float64(result.TotalComplexity) > bound {
			t.Errorf("item %d: TotalComplexity = %d exceeds %.1f", item.ID, result.TotalComplexity, bound)
		}
	}
}

func TestGenerate_SubtaskComplexityBounds(t *testing.T) {
	for _, item := range []models.WorkItem{bugItem(), featureItem(), wideItem()} {
		result, err := Generate(item, Options{})
		if err != nil {
			t.Fatalf("Generate(%d) error: %v", item.ID, err)
		}
		for _, st := range result.Subtasks {
			if st.Complexity < 1 || st.Complexity > 8 {
				t.Errorf("item %d: subtask %q complexity %d outside [1,8]", item.ID, st.Title, st.Complexity)
			}
			if st.EstimatedHours != float64(st.Complexity)*hoursPerPoint {
				t.Errorf("item %d: subtask %q hours %v, want %v", item.ID, st.Title, st.EstimatedHours, float64(st.Complexity)*hoursPerPoint)
			}
		}
	}
}

func TestGenerate_MinComplexityFilter(t *testing.T) {
	result, err := Generate(featureItem(), Options{MinComplexity: 3})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	// Research (2) and Documentation (1) fall below the floor.
	if len(result.Subtasks) != 3 {
		t.Fatalf("got %d subtasks, want 3 above the floor", len(result.Subtasks))
	}
	// The design step's dependency on the removed research step is pruned.
	if len(result.Subtasks[0].Dependencies) != 0 {
		t.Errorf("first surviving step deps = %v, want pruned empty", result.Subtasks[0].Dependencies)
	}
}

func TestGenerate_EmptyAfterFilter(t *testing.T) {
	result, err := Generate(featureItem(), Options{MinComplexity: 9})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if len(result.Subtasks) != 0 {
		t.Errorf("got %d subtasks, want none", len(result.Subtasks))
	}
	if result.Advisory == "" {
		t.Error("empty decomposition should carry an advisory")
	}
}

func TestGenerate_MissingIdentifier(t *testing.T) {
	_, err := Generate(models.WorkItem{Title: "no id"}, Options{})
	if err == nil {
		t.Fatal("expected error for missing identifier")
	}
	if !types.HasCode(err, types.ErrCodeInvalidArgument) {
		t.Errorf("error = %v, want INVALID_ARGUMENT", err)
	}
}

func TestGenerate_RiskAssessment(t *testing.T) {
	result, err := Generate(wideItem(), Options{})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	joined := strings.Join(result.RiskAssessment, " | ")
	for _, want := range []string{"security", "migration", "complexity"} {
		if !strings.Contains(strings.ToLower(joined), want) {
			t.Errorf("risks %q missing %q", joined, want)
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	first, err := Generate(wideItem(), Options{})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	second, err := Generate(wideItem(), Options{})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Generate not deterministic:\n first %+v\nsecond %+v", first, second)
	}
}
