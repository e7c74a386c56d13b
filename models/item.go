package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Milestone is the optional milestone attached to a work item.
// DueDate is nil when the milestone has no deadline.
type Milestone struct {
	Title   string     `json:"title" yaml:"title" validate:"required,min=1"`
	DueDate *time.Time `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
}

// WorkItem is an immutable snapshot of a tracker issue for one scoring or
// decomposition pass. The engines never mutate it.
type WorkItem struct {
	ID        int        `json:"id" yaml:"id" validate:"required,min=1"`
	Title     string     `json:"title" yaml:"title" validate:"required,min=1,max=500"`
	Body      string     `json:"body,omitempty" yaml:"body,omitempty"`
	Labels    []string   `json:"labels,omitempty" yaml:"labels,omitempty"`
	Assignees []string   `json:"assignees,omitempty" yaml:"assignees,omitempty"`
	Milestone *Milestone `json:"milestone,omitempty" yaml:"milestone,omitempty"`
	CreatedAt time.Time  `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt" yaml:"updatedAt"`
	Comments  int        `json:"comments,omitempty" yaml:"comments,omitempty" validate:"min=0"`
}

// Assigned reports whether the item has at least one assignee.
func (w WorkItem) Assigned() bool {
	return len(w.Assignees) > 0
}

// HasLabelContaining reports whether any label contains the given keyword,
// case-insensitively. Label severity and blocker checks all use substring
// matching so "priority:high" matches "high".
func (w WorkItem) HasLabelContaining(keyword string) bool {
	kw := strings.ToLower(keyword)
	for _, l := range w.Labels {
		if strings.Contains(strings.ToLower(l), kw) {
			return true
		}
	}
	return false
}

// global validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ValidateStruct performs validation on any struct that has validation tags.
func ValidateStruct(s interface{}) error {
	if validate == nil {
		validate = validator.New()
	}
	err := validate.Struct(s)
	if err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMessages []string
		for _, e := range validationErrors {
			errorMessages = append(errorMessages, fmt.Sprintf("Validation failed on field '%s': rule '%s' (value: '%v')", e.StructNamespace(), e.Tag(), e.Value()))
		}
		return fmt.Errorf("%s", strings.Join(errorMessages, "; "))
	}
	return nil
}
