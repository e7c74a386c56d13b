// Package recommend ranks a snapshot of work items by a weighted blend of
// priority, urgency, team availability, skill match, and readiness. The
// ranking is a pure pass over the snapshot: two calls with the same input
// and clock produce identical output.
package recommend

import (
	"sort"
	"strings"
	"time"

	"github.com/taskscout/taskscout/internal/scoring"
	"github.com/taskscout/taskscout/internal/workload"
	"github.com/taskscout/taskscout/models"
	"github.com/taskscout/taskscout/types"
)

// DefaultMaxResults bounds the recommendation list.
const DefaultMaxResults = 5

// DefaultWeights is the standard blend of the component scores.
var DefaultWeights = types.ScoreWeights{
	Priority:     0.4,
	Urgency:      0.25,
	Availability: 0.2,
	SkillMatch:   0.15,
	Readiness:    0.1,
}

// priorityFloors maps a minimum priority class name to the score an item
// must reach to pass the filter.
var priorityFloors = map[string]float64{
	"critical": 1.0,
	"high":     0.8,
	"medium":   0.6,
	"low":      0.4,
	"lowest":   0.2,
}

// Options control one ranking pass. The zero value ranks everything with
// default weights and limits.
type Options struct {
	// Assignee restricts candidates to items assigned to this user.
	Assignee string

	// MinPriority names the lowest priority class to keep
	// (critical, high, medium, low, lowest). Empty keeps everything.
	MinPriority string

	// IncludeBlocked keeps not-ready items in the output instead of
	// dropping them.
	IncludeBlocked bool

	// ContextPenalty is subtracted from the total of any item that already
	// has an assignee.
	ContextPenalty float64

	MaxResults  int
	Roster      []string
	MaxCapacity int

	// Weights replaces the default score blend when non-zero.
	Weights types.ScoreWeights

	// Now anchors the urgency clock. Zero means the current time.
	Now time.Time
}

// Recommendation is one ranked entry.
type Recommendation struct {
	Item      models.WorkItem  `json:"item"`
	Score     models.TaskScore `json:"score"`
	Reasoning string           `json:"reasoning"`
}

// Result is the ranked list plus an explanatory message when it is empty.
// An empty list is a valid outcome, not an error.
type Result struct {
	Recommendations []Recommendation `json:"recommendations"`
	Message         string           `json:"message,omitempty"`
}

// Rank scores and orders the snapshot. The only error condition is an
// unknown MinPriority class; every other degenerate input yields an empty
// result with a message.
func Rank(items []models.WorkItem, opts Options) (Result, error) {
	floor := 0.0
	if opts.MinPriority != "" {
		f, ok := priorityFloors[strings.ToLower(opts.MinPriority)]
		if !ok {
			return Result{}, types.NewInvalidArgument("unknown priority class: " + opts.MinPriority)
		}
		floor = f
	}

	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	weights := opts.Weights
	if weights == (types.ScoreWeights{}) {
		weights = DefaultWeights
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	// The workload model covers the whole snapshot, not just the
	// candidates: load comes from everything a person is assigned.
	workloads := workload.Build(items, opts.Roster, opts.MaxCapacity)
	cfg := scoring.GetKeywordConfig()

	var recommendations []Recommendation
	for _, item := range items {
		if opts.Assignee != "" && !hasAssignee(item, opts.Assignee) {
			continue
		}

		ctx := scoring.Classify(item, cfg)
		priority := scoring.Priority(item)
		if priority < floor {
			continue
		}

		readiness := scoring.EvaluateReadiness(ctx)
		if !readiness.Ready && !opts.IncludeBlocked {
			continue
		}

		urgency := scoring.Urgency(item, now)
		availability := workload.Availability(item, workloads)
		skillMatch := workload.SkillMatch(item, ctx.RequiredSkills, workloads)

		total := priority*weights.Priority +
			urgency*weights.Urgency +
			availability*weights.Availability +
			skillMatch*weights.SkillMatch +
			readiness.Score*weights.Readiness
		if item.Assigned() {
			total -= opts.ContextPenalty
		}
		if total < 0 {
			total = 0
		}

		score := models.TaskScore{
			Priority:     priority,
			Urgency:      urgency,
			Availability: availability,
			SkillMatch:   skillMatch,
			Readiness:    readiness.Score,
			Blockers:     readiness.Blockers,
			Total:        total,
		}

		recommendations = append(recommendations, Recommendation{
			Item:      item,
			Score:     score,
			Reasoning: buildReasoning(score, readiness.Ready),
		})
	}

	// Descending by total, item ID ascending on ties so reruns are stable.
	sort.Slice(recommendations, func(i, j int) bool {
		if recommendations[i].Score.Total != recommendations[j].Score.Total {
			return recommendations[i].Score.Total > recommendations[j].Score.Total
		}
		return recommendations[i].Item.ID < recommendations[j].Item.ID
	})

	if len(recommendations) > maxResults {
		recommendations = recommendations[:maxResults]
	}

	result := Result{Recommendations: recommendations}
	if len(recommendations) == 0 {
		result.Message = "No items match the current filters."
	}
	return result, nil
}

// buildReasoning turns the component scores into a short human explanation.
func buildReasoning(score models.TaskScore, ready bool) string {
	var reasons []string
	if score.Priority > 0.8 {
		reasons = append(reasons, "High priority based on labels")
	}
	if score.Urgency > 0.7 {
		reasons = append(reasons, "Time-sensitive due to deadline or recent activity")
	}
	if score.Availability > 0.7 {
		reasons = append(reasons, "Team has capacity for this work")
	}
	if score.SkillMatch > 0.8 {
		reasons = append(reasons, "Good skill coverage on the team")
	}
	if ready {
		reasons = append(reasons, "No blockers detected")
	} else {
		reasons = append(reasons, "Carries blockers: "+strings.Join(score.Blockers, ", "))
	}
	return strings.Join(reasons, "; ")
}

func hasAssignee(item models.WorkItem, username string) bool {
	for _, assignee := range item.Assignees {
		if assignee == username {
			return true
		}
	}
	return false
}
