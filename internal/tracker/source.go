// Package tracker supplies work item snapshots to the engines and writes
// generated subtasks back. Implementations wrap the issue store; the engines
// themselves never perform I/O.
package tracker

import (
	"context"
	"fmt"
	"strings"

	"github.com/taskscout/taskscout/models"
	"github.com/taskscout/taskscout/types"
)

// Source reads one immutable snapshot of open work items and, when the
// backend knows it, the team roster.
type Source interface {
	FetchItems(ctx context.Context) ([]models.WorkItem, error)
	FetchRoster(ctx context.Context) ([]string, error)
}

// ItemWriter creates tracker items from generated subtasks and links them
// back to the decomposed parent.
type ItemWriter interface {
	CreateItem(ctx context.Context, item NewItem) (ItemRef, error)
	AddChecklist(ctx context.Context, parentID int, refs []ItemRef) error
}

// Tracker combines read and write access to one backend. Both the file
// source and the local store satisfy it.
type Tracker interface {
	Source
	ItemWriter
}

// NewItem is the creation payload for one tracker item.
type NewItem struct {
	Title     string
	Body      string
	Labels    []string
	Assignee  string
	Milestone string
}

// ItemRef identifies a created tracker item.
type ItemRef struct {
	ID    string
	Title string
}

// FindItem locates an item in a snapshot by identifier. Absence is a
// NOT_FOUND error, never an empty result.
func FindItem(items []models.WorkItem, id int) (models.WorkItem, error) {
	for _, item := range items {
		if item.ID == id {
			return item, nil
		}
	}
	return models.WorkItem{}, types.NewNotFound(id)
}

// checklistMarkdown renders the created subtask references as a markdown
// checklist appended to the parent item body.
func checklistMarkdown(refs []ItemRef) string {
	var b strings.Builder
	b.WriteString("\n\n## Subtasks\n")
	for _, ref := range refs {
		fmt.Fprintf(&b, "- [ ] #%s %s\n", ref.ID, ref.Title)
	}
	return b.String()
}
