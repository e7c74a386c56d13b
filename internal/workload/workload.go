// Package workload builds the per-person load model the availability and
// skill match scorers consume. The model is derived from the snapshot on
// every call; nothing is cached between invocations.
package workload

import (
	"sort"

	"github.com/taskscout/taskscout/internal/scoring"
	"github.com/taskscout/taskscout/models"
)

// DefaultMaxCapacity is the story point budget assumed per person.
const DefaultMaxCapacity = 15

// Build derives one workload record per team member. When the roster is
// empty, the distinct assignees observed across the items stand in for it,
// in order of first appearance. Velocity is a stand-in estimate derived from
// current load, not a measured figure.
func Build(items []models.WorkItem, roster []string, maxCapacity int) []models.TeamMemberWorkload {
	if maxCapacity <= 0 {
		maxCapacity = DefaultMaxCapacity
	}

	members := roster
	if len(members) == 0 {
		members = distinctAssignees(items)
	}

	cfg := scoring.GetKeywordConfig()
	workloads := make([]models.TeamMemberWorkload, 0, len(members))
	for _, username := range members {
		load := 0
		skillSet := make(map[string]bool)
		for _, item := range items {
			if !assignedTo(item, username) {
				continue
			}
			ctx := scoring.Classify(item, cfg)
			load += scoring.Complexity(ctx)
			for _, skill := range ctx.RequiredSkills {
				skillSet[skill] = true
			}
		}

		skills := make([]string, 0, len(skillSet))
		for skill := range skillSet {
			skills = append(skills, skill)
		}
		sort.Strings(skills)

		velocity := load + 2
		if velocity > maxCapacity {
			velocity = maxCapacity
		}

		availability := 1 - float64(load)/float64(maxCapacity)
		if availability < 0 {
			availability = 0
		}

		workloads = append(workloads, models.TeamMemberWorkload{
			Username:          username,
			CurrentWorkload:   load,
			MaxCapacity:       maxCapacity,
			AvailabilityScore: availability,
			SkillAreas:        skills,
			RecentVelocity:    velocity,
		})
	}

	return workloads
}

func distinctAssignees(items []models.WorkItem) []string {
	seen := make(map[string]bool)
	var members []string
	for _, item := range items {
		for _, username := range item.Assignees {
			if !seen[username] {
				seen[username] = true
				members = append(members, username)
			}
		}
	}
	return members
}

func assignedTo(item models.WorkItem, username string) bool {
	for _, assignee := range item.Assignees {
		if assignee == username {
			return true
		}
	}
	return false
}
