package breakdown

import (
	"fmt"
	"math"

	"github.com/taskscout/taskscout/internal/scoring"
	"github.com/taskscout/taskscout/models"
	"github.com/taskscout/taskscout/types"
)

// DefaultMaxSubtasks bounds a single decomposition.
const DefaultMaxSubtasks = 8

// DefaultMinComplexity is the floor below which generated steps are dropped.
const DefaultMinComplexity = 1

// lowValueThreshold is the original complexity below which decomposition
// costs more than it saves.
const lowValueThreshold = 3

// inflationCap bounds the summed subtask complexity relative to the original
// item. rescaleTarget is what the rescaled sum aims for, leaving headroom
// under the cap after integer rounding.
const (
	inflationCap  = 1.3
	rescaleTarget = 1.1
)

// hoursPerPoint converts complexity points into estimated hours.
const hoursPerPoint = 4

// Options control one decomposition pass. The zero value applies the
// default limits.
type Options struct {
	// Force decomposes even when the item scores below the low-value
	// threshold.
	Force bool

	MaxSubtasks   int
	MinComplexity int
}

// Generate decomposes a single work item into a TaskBreakdown. Low-value
// items produce an advisory result with no subtasks instead of an error, as
// does a filter configuration that leaves nothing behind.
func Generate(item models.WorkItem, opts Options) (models.TaskBreakdown, error) {
	if item.ID <= 0 {
		return models.TaskBreakdown{}, types.NewInvalidArgument("work item identifier is required")
	}

	maxSubtasks := opts.MaxSubtasks
	if maxSubtasks <= 0 {
		maxSubtasks = DefaultMaxSubtasks
	}
	minComplexity := opts.MinComplexity
	if minComplexity <= 0 {
		minComplexity = DefaultMinComplexity
	}

	ctx := scoring.Classify(item, scoring.GetKeywordConfig())
	original := scoring.Complexity(ctx)

	result := models.TaskBreakdown{
		ItemID:             item.ID,
		ItemTitle:          item.Title,
		OriginalComplexity: original,
	}

	if original < lowValueThreshold && !opts.Force {
		result.Advisory = fmt.Sprintf(
			"Complexity %d is below the decomposition threshold of %d. Work the item directly, or force the breakdown.",
			original, lowValueThreshold)
		return result, nil
	}

	tmpl := Select(ctx)
	subtasks := instantiate(tmpl, ctx, item)

	if len(subtasks) > maxSubtasks {
		subtasks = subtasks[:maxSubtasks]
	}
	subtasks = filterBelow(subtasks, minComplexity)
	pruneRemovedDeps(subtasks)

	if len(subtasks) == 0 {
		result.Advisory = fmt.Sprintf(
			"No subtasks survive the complexity floor of %d. Nothing to decompose.", minComplexity)
		return result, nil
	}

	rescale(subtasks, original)
	for i := range subtasks {
		subtasks[i].EstimatedHours = float64(subtasks[i].Complexity) * hoursPerPoint
	}

	graph := BuildGraph(subtasks)
	if err := VerifyAcyclic(subtasks, graph); err != nil {
		return models.TaskBreakdown{}, err
	}

	result.Subtasks = subtasks
	result.TotalComplexity = sumComplexity(subtasks)
	result.Dependencies = graph
	result.CriticalPathDepth = CriticalPathDepth(subtasks, graph)
	result.Timeline = Timeline(subtasks, result.CriticalPathDepth)
	result.Phases = PhaseSchedule(subtasks, graph)
	result.RecommendedApproach = buildApproach(tmpl, ctx)
	result.RiskAssessment = assessRisks(original, ctx, subtasks)
	return result, nil
}

// instantiate turns the template blueprints into concrete subtasks for the
// item. Feature decompositions grow context-dependent extra steps.
func instantiate(tmpl Template, ctx scoring.ItemContext, item models.WorkItem) []models.SubTask {
	steps := tmpl.Steps
	if tmpl.Kind == TemplateFeature {
		steps = append(append([]Blueprint{}, steps...), featureExtras(ctx)...)
	}

	subtasks := make([]models.SubTask, 0, len(steps))
	for _, bp := range steps {
		subtasks = append(subtasks, models.SubTask{
			Title:              bp.Title,
			Description:        fmt.Sprintf(bp.Description, item.Title),
			Complexity:         bp.Complexity,
			Priority:           bp.Priority,
			Category:           bp.Category,
			Dependencies:       append([]string{}, bp.DependsOn...),
			Labels:             append([]string{}, bp.Labels...),
			AcceptanceCriteria: append([]string{}, bp.AcceptanceCriteria...),
		})
	}
	return subtasks
}

func filterBelow(subtasks []models.SubTask, minComplexity int) []models.SubTask {
	kept := subtasks[:0]
	for _, st := range subtasks {
		if st.Complexity >= minComplexity {
			kept = append(kept, st)
		}
	}
	return kept
}

// pruneRemovedDeps drops dependency references to subtasks that truncation
// or the complexity floor removed. References into the surviving set are
// untouched.
func pruneRemovedDeps(subtasks []models.SubTask) {
	surviving := make(map[string]bool, len(subtasks))
	for _, st := range subtasks {
		surviving[st.Title] = true
	}
	for i := range subtasks {
		kept := subtasks[i].Dependencies[:0]
		for _, dep := range subtasks[i].Dependencies {
			if surviving[dep] {
				kept = append(kept, dep)
			}
		}
		subtasks[i].Dependencies = kept
	}
}

// rescale shrinks subtask complexities until their sum no longer inflates
// the original estimate past the cap. Integer rounding can leave the first
// pass above the cap, so passes repeat until the sum fits or nothing shrinks
// anymore. Every step keeps at least one point, so a very small original
// with many steps can still sit above the cap; that corner is accepted
// rather than dropping steps.
func rescale(subtasks []models.SubTask, original int) {
	bound := inflationCap * float64(original)
	for {
		sum := sumComplexity(subtasks)
		if float64(sum) <= bound {
			return
		}

		factor := rescaleTarget * float64(original) / float64(sum)
		changed := false
		for i := range subtasks {
			scaled := int(math.Round(float64(subtasks[i].Complexity) * factor))
			if scaled < 1 {
				scaled = 1
			}
			if scaled != subtasks[i].Complexity {
				changed = true
				subtasks[i].Complexity = scaled
			}
		}
		if !changed {
			return
		}
	}
}

func sumComplexity(subtasks []models.SubTask) int {
	sum := 0
	for _, st := range subtasks {
		sum += st.Complexity
	}
	return sum
}

func buildApproach(tmpl Template, ctx scoring.ItemContext) string {
	approach := tmpl.Approach
	if ctx.HasSecurity {
		approach += " Schedule the security review before release, not after."
	}
	if ctx.HasDatabase {
		approach += " Land schema changes behind a migration with a rollback path."
	}
	return approach
}

func assessRisks(original int, ctx scoring.ItemContext, subtasks []models.SubTask) []string {
	var risks []string
	if original >= 7 {
		risks = append(risks, "High original complexity; estimates carry wide error bars.")
	}
	if ctx.HasSecurity {
		risks = append(risks, "Touches security-sensitive surface; release requires review sign-off.")
	}
	if ctx.HasDatabase {
		risks = append(risks, "Schema migration involved; verify the rollback path before deploy.")
	}
	if len(subtasks) >= 7 {
		risks = append(risks, "Wide decomposition; consider splitting delivery across milestones.")
	}
	return risks
}
