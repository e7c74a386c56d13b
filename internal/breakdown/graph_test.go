package breakdown

import (
	"reflect"
	"testing"

	"github.com/taskscout/taskscout/models"
	"github.com/taskscout/taskscout/types"
)

func subtask(title string, deps ...string) models.SubTask {
	return models.SubTask{
		Title:        title,
		Description:  "d",
		Complexity:   1,
		Priority:     models.SubtaskPriorityMedium,
		Category:     models.CategoryDevelopment,
		Dependencies: deps,
	}
}

func TestBuildGraph(t *testing.T) {
	subtasks := []models.SubTask{
		subtask("A"),
		subtask("B", "A"),
		subtask("C", "A", "B"),
	}

	graph := BuildGraph(subtasks)
	want := map[string][]string{
		"B": {"A"},
		"C": {"A", "B"},
	}
	if !reflect.DeepEqual(graph, want) {
		t.Errorf("BuildGraph() = %v, want %v", graph, want)
	}
	if _, ok := graph["A"]; ok {
		t.Error("dependency-free subtask must not appear in the map")
	}
}

func TestVerifyAcyclic_NoCycle(t *testing.T) {
	// A -> B -> C (linear, no cycle)
	subtasks := []models.SubTask{
		subtask("A"),
		subtask("B", "A"),
		subtask("C", "B"),
	}

	if err := VerifyAcyclic(subtasks, BuildGraph(subtasks)); err != nil {
		t.Errorf("expected no error for linear chain, got: %v", err)
	}
}

func TestVerifyAcyclic_Diamond(t *testing.T) {
	// B and C both depend on A; D depends on both. Shared dependencies are
	// not cycles.
	subtasks := []models.SubTask{
		subtask("A"),
		subtask("B", "A"),
		subtask("C", "A"),
		subtask("D", "B", "C"),
	}

	if err := VerifyAcyclic(subtasks, BuildGraph(subtasks)); err != nil {
		t.Errorf("expected no error for diamond, got: %v", err)
	}
}

func TestVerifyAcyclic_Cycle(t *testing.T) {
	// A -> B -> C -> A (cycle)
	subtasks := []models.SubTask{
		subtask("A", "C"),
		subtask("B", "A"),
		subtask("C", "B"),
	}

	err := VerifyAcyclic(subtasks, BuildGraph(subtasks))
	if err == nil {
		t.Fatal("expected cycle error")
	}
	if !types.HasCode(err, types.ErrCodeStructural) {
		t.Errorf("error = %v, want STRUCTURAL", err)
	}
}

func TestVerifyAcyclic_SelfDependency(t *testing.T) {
	subtasks := []models.SubTask{subtask("A", "A")}

	if err := VerifyAcyclic(subtasks, BuildGraph(subtasks)); err == nil {
		t.Fatal("expected error for self dependency")
	}
}

func TestVerifyAcyclic_DanglingReference(t *testing.T) {
	subtasks := []models.SubTask{
		subtask("A"),
		subtask("B", "Missing Step"),
	}

	err := VerifyAcyclic(subtasks, BuildGraph(subtasks))
	if err == nil {
		t.Fatal("expected error for dangling reference")
	}
	if !types.HasCode(err, types.ErrCodeStructural) {
		t.Errorf("error = %v, want STRUCTURAL", err)
	}
}
