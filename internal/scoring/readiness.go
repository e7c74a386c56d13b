package scoring

import (
	"fmt"
)

// minBodyLength is the shortest description considered workable.
const minBodyLength = 50

// readyThreshold is the minimum readiness score for a blocker-free item.
const readyThreshold = 0.6

// Readiness is the blocker evaluation result for one item. Any recorded
// blocker forces Ready to false regardless of the numeric score.
type Readiness struct {
	Ready    bool     `json:"ready"`
	Score    float64  `json:"score"`
	Blockers []string `json:"blockers,omitempty"`
}

// EvaluateReadiness checks whether an item can be started now. Blocking
// labels, a missing or too-short description, and dependency phrases in the
// body each lower the score and record a blocker.
func EvaluateReadiness(ctx ItemContext) Readiness {
	score := 1.0
	var blockers []string

	if ctx.BlockingLabel != "" {
		score -= 0.5
		blockers = append(blockers, fmt.Sprintf("Blocking label: %s", ctx.BlockingLabel))
	}

	if ctx.BodyLength < minBodyLength {
		score -= 0.3
		blockers = append(blockers, "Insufficient description")
	}

	if ctx.DependencyPhrase != "" {
		score -= 0.2
		blockers = append(blockers, fmt.Sprintf("Dependency reference: %s", ctx.DependencyPhrase))
	}

	if score < 0 {
		score = 0
	}

	return Readiness{
		Ready:    score > readyThreshold && len(blockers) == 0,
		Score:    score,
		Blockers: blockers,
	}
}
