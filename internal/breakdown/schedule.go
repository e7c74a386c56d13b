package breakdown

import (
	"github.com/taskscout/taskscout/models"
)

// productiveHoursPerDay converts estimated hours into working days.
const productiveHoursPerDay = 6

// minParallelEfficiency floors the parallelism discount: even a fully serial
// chain never stretches the naive estimate by more than this factor.
const minParallelEfficiency = 0.6

// CriticalPathDepth returns the longest dependency chain in the breakdown.
// Leaves have depth zero; every dependency edge adds one. Depths are
// memoized per title, so the traversal is linear in the edge count.
// The graph must already be verified acyclic.
func CriticalPathDepth(subtasks []models.SubTask, graph map[string][]string) int {
	memo := make(map[string]int, len(subtasks))

	var depth func(title string) int
	depth = func(title string) int {
		if d, ok := memo[title]; ok {
			return d
		}
		longest := 0
		for _, dep := range graph[title] {
			if d := depth(dep) + 1; d > longest {
				longest = d
			}
		}
		memo[title] = longest
		return longest
	}

	longest := 0
	for _, st := range subtasks {
		if d := depth(st.Title); d > longest {
			longest = d
		}
	}
	return longest
}

// Timeline buckets the estimated effort into a coarse duration band. Naive
// days come from total hours over productive hours per day; the critical
// path then discounts for work that can run in parallel.
func Timeline(subtasks []models.SubTask, criticalPathDepth int) string {
	if len(subtasks) == 0 {
		return ""
	}

	totalHours := 0.0
	for _, st := range subtasks {
		totalHours += st.EstimatedHours
	}

	days := totalHours / productiveHoursPerDay
	efficiency := 1 - float64(criticalPathDepth)/float64(len(subtasks))
	if efficiency < minParallelEfficiency {
		efficiency = minParallelEfficiency
	}
	adjusted := days * efficiency

	switch {
	case adjusted <= 5:
		return "3-5 days"
	case adjusted <= 10:
		return "1-2 weeks"
	case adjusted <= 15:
		return "2-3 weeks"
	default:
		return "3-4 weeks"
	}
}

// PhaseSchedule buckets subtasks into up to three execution phases. Phase 1
// takes dependency-free steps and up-front Planning/Analysis work; phase 2
// takes steps whose dependencies all sit in phase 1; phase 3 takes the rest.
// The fixed-depth templates never need more hops than that.
func PhaseSchedule(subtasks []models.SubTask, graph map[string][]string) [][]string {
	inPhase1 := make(map[string]bool)
	var phase1, phase2, phase3 []string

	for _, st := range subtasks {
		if len(graph[st.Title]) == 0 || st.Category == models.CategoryPlanning || st.Category == models.CategoryAnalysis {
			phase1 = append(phase1, st.Title)
			inPhase1[st.Title] = true
		}
	}

	for _, st := range subtasks {
		if inPhase1[st.Title] {
			continue
		}
		satisfied := true
		for _, dep := range graph[st.Title] {
			if !inPhase1[dep] {
				satisfied = false
				break
			}
		}
		if satisfied {
			phase2 = append(phase2, st.Title)
		} else {
			phase3 = append(phase3, st.Title)
		}
	}

	var phases [][]string
	for _, phase := range [][]string{phase1, phase2, phase3} {
		if len(phase) > 0 {
			phases = append(phases, phase)
		}
	}
	return phases
}
