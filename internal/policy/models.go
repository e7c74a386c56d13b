// Package policy provides policy-as-code guardrails using OPA (Open Policy Agent).
// Teams define Rego rules that are evaluated before TaskScout writes a
// breakdown back to the tracker, so automation stays inside agreed limits.
package policy

import (
	"sort"
	"time"

	"github.com/taskscout/taskscout/models"
)

// PolicyDecision represents the outcome of evaluating policies against some input.
type PolicyDecision struct {
	DecisionID    string    `json:"decisionId"`           // UUID for referencing
	PolicyPackage string    `json:"policyPackage"`        // Rego package queried (e.g. "taskscout.policy")
	Result        string    `json:"result"`               // "allow" or "deny"
	Violations    []string  `json:"violations,omitempty"` // Deny messages from OPA
	Warnings      []string  `json:"warnings,omitempty"`   // Warn messages; reported but never blocking
	Input         any       `json:"input"`                // The input that was evaluated
	ItemID        int       `json:"itemId,omitempty"`     // Work item the decision gated, if any
	EvaluatedAt   time.Time `json:"evaluatedAt"`
}

// PolicyResult constants.
const (
	PolicyResultAllow = "allow"
	PolicyResultDeny  = "deny"
)

// IsAllowed returns true if the policy decision was "allow".
func (d *PolicyDecision) IsAllowed() bool {
	return d.Result == PolicyResultAllow
}

// IsDenied returns true if the policy decision was "deny".
func (d *PolicyDecision) IsDenied() bool {
	return d.Result == PolicyResultDeny
}

// ApplyInput is the structured input policies receive when a breakdown is
// about to be applied. Rego rules see it as the `input` variable.
type ApplyInput struct {
	Item      ItemInput      `json:"item"`
	Breakdown BreakdownInput `json:"breakdown"`
	Roster    []string       `json:"roster,omitempty"`
}

// ItemInput carries the parent work item's fields relevant to policy rules.
type ItemInput struct {
	ID        int      `json:"id"`
	Title     string   `json:"title"`
	Labels    []string `json:"labels,omitempty"`
	Assignees []string `json:"assignees,omitempty"`
}

// BreakdownInput summarizes the decomposition that would be written back.
type BreakdownInput struct {
	SubtaskCount         int      `json:"subtask_count"`
	TotalComplexity      int      `json:"total_complexity"`
	OriginalComplexity   int      `json:"original_complexity"`
	MaxSubtaskComplexity int      `json:"max_subtask_complexity"`
	Categories           []string `json:"categories,omitempty"`
	Timeline             string   `json:"timeline,omitempty"`
}

// NewApplyInput builds the policy input for applying a breakdown to an item.
// Categories are deduplicated and sorted so rules see a stable shape.
func NewApplyInput(item models.WorkItem, breakdown *models.TaskBreakdown, roster []string) *ApplyInput {
	in := &ApplyInput{
		Item: ItemInput{
			ID:        item.ID,
			Title:     item.Title,
			Labels:    item.Labels,
			Assignees: item.Assignees,
		},
		Roster: roster,
	}
	if breakdown == nil {
		return in
	}

	seen := make(map[string]bool)
	maxComplexity := 0
	for _, st := range breakdown.Subtasks {
		seen[string(st.Category)] = true
		if st.Complexity > maxComplexity {
			maxComplexity = st.Complexity
		}
	}
	categories := make([]string, 0, len(seen))
	for c := range seen {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	in.Breakdown = BreakdownInput{
		SubtaskCount:         len(breakdown.Subtasks),
		TotalComplexity:      breakdown.TotalComplexity,
		OriginalComplexity:   breakdown.OriginalComplexity,
		MaxSubtaskComplexity: maxComplexity,
		Categories:           categories,
		Timeline:             breakdown.Timeline,
	}
	return in
}
