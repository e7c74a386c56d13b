package breakdown

import (
	"fmt"

	"github.com/taskscout/taskscout/models"
	"github.com/taskscout/taskscout/types"
)

// BuildGraph collects the declared dependencies into an adjacency map keyed
// by subtask title. Subtasks without dependencies are omitted from the map
// rather than mapped to an empty list.
func BuildGraph(subtasks []models.SubTask) map[string][]string {
	graph := make(map[string][]string)
	for _, st := range subtasks {
		if len(st.Dependencies) == 0 {
			continue
		}
		graph[st.Title] = append([]string{}, st.Dependencies...)
	}
	return graph
}

// VerifyAcyclic checks the structural invariants before any traversal runs:
// every dependency must name a sibling subtask, and the dependency relation
// must be cycle free. Kahn's algorithm drains nodes whose dependencies are
// all satisfied; anything left over sits on a cycle.
func VerifyAcyclic(subtasks []models.SubTask, graph map[string][]string) error {
	titles := make(map[string]bool, len(subtasks))
	for _, st := range subtasks {
		titles[st.Title] = true
	}

	indegree := make(map[string]int, len(subtasks))
	dependents := make(map[string][]string)
	for title, deps := range graph {
		for _, dep := range deps {
			if !titles[dep] {
				return types.NewStructural(fmt.Sprintf("subtask %q depends on unknown subtask %q", title, dep))
			}
			indegree[title]++
			dependents[dep] = append(dependents[dep], title)
		}
	}

	// Seed with subtasks whose dependencies are already satisfied,
	// in declaration order so failures are reproducible.
	var queue []string
	for _, st := range subtasks {
		if indegree[st.Title] == 0 {
			queue = append(queue, st.Title)
		}
	}

	processed := 0
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		processed++
		for _, next := range dependents[current] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if processed != len(subtasks) {
		return types.NewStructural("subtask dependencies contain a cycle")
	}
	return nil
}
