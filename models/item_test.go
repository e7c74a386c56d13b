package models

import (
	"testing"
	"time"
)

func TestValidateStructWorkItem(t *testing.T) {
	now := time.Now()

	valid := WorkItem{
		ID:        42,
		Title:     "Add OAuth login",
		Body:      "Support OAuth2 login via the identity provider.",
		Labels:    []string{"feature", "priority:high"},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := ValidateStruct(valid); err != nil {
		t.Fatalf("expected valid item, got error: %v", err)
	}

	missingTitle := valid
	missingTitle.Title = ""
	if err := ValidateStruct(missingTitle); err == nil {
		t.Error("expected validation error for empty title")
	}

	badID := valid
	badID.ID = 0
	if err := ValidateStruct(badID); err == nil {
		t.Error("expected validation error for zero ID")
	}
}

func TestHasLabelContaining(t *testing.T) {
	item := WorkItem{
		ID:     1,
		Title:  "x",
		Labels: []string{"Priority:High", "type/bug"},
	}

	if !item.HasLabelContaining("high") {
		t.Error("expected substring match on 'high' to be case-insensitive")
	}
	if !item.HasLabelContaining("bug") {
		t.Error("expected substring match on 'bug'")
	}
	if item.HasLabelContaining("epic") {
		t.Error("did not expect match on 'epic'")
	}
}

func TestAssigned(t *testing.T) {
	if (WorkItem{ID: 1, Title: "x"}).Assigned() {
		t.Error("item without assignees should not be assigned")
	}
	if !(WorkItem{ID: 1, Title: "x", Assignees: []string{"alice"}}).Assigned() {
		t.Error("item with assignees should be assigned")
	}
}
