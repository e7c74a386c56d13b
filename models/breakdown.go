package models

// SubtaskPriority represents the priority levels of a generated subtask.
type SubtaskPriority string

const (
	SubtaskPriorityHigh   SubtaskPriority = "high"
	SubtaskPriorityMedium SubtaskPriority = "medium"
	SubtaskPriorityLow    SubtaskPriority = "low"
)

// SubtaskCategory classifies the kind of work a subtask represents.
type SubtaskCategory string

const (
	CategoryPlanning      SubtaskCategory = "Planning"
	CategoryDesign        SubtaskCategory = "Design"
	CategoryDevelopment   SubtaskCategory = "Development"
	CategoryQA            SubtaskCategory = "QA"
	CategoryDocumentation SubtaskCategory = "Documentation"
	CategoryAnalysis      SubtaskCategory = "Analysis"
)

// SubTask is one generated unit of work within a breakdown. Dependencies
// reference sibling subtasks by title; every referenced title must exist in
// the same breakdown.
type SubTask struct {
	Title              string          `json:"title" validate:"required,min=1"`
	Description        string          `json:"description,omitempty"`
	Complexity         int             `json:"complexity" validate:"required,min=1,max=8"`
	Priority           SubtaskPriority `json:"priority" validate:"required,oneof=high medium low"`
	Dependencies       []string        `json:"dependencies,omitempty"`
	Labels             []string        `json:"labels,omitempty"`
	Assignee           string          `json:"assignee,omitempty"`
	Category           SubtaskCategory `json:"category" validate:"required"`
	EstimatedHours     float64         `json:"estimatedHours" validate:"min=0"`
	AcceptanceCriteria []string        `json:"acceptanceCriteria,omitempty"`
}

// TaskBreakdown is the full decomposition result for one work item.
// Dependencies maps subtask titles to the titles they depend on; subtasks
// without dependencies do not appear as keys.
type TaskBreakdown struct {
	ItemID              int                 `json:"itemId"`
	ItemTitle           string              `json:"itemTitle"`
	OriginalComplexity  int                 `json:"originalComplexity"`
	Subtasks            []SubTask           `json:"subtasks"`
	TotalComplexity     int                 `json:"totalComplexity"`
	RecommendedApproach string              `json:"recommendedApproach,omitempty"`
	RiskAssessment      []string            `json:"riskAssessment,omitempty"`
	Timeline            string              `json:"timeline,omitempty"`
	Dependencies        map[string][]string `json:"dependencies,omitempty"`
	Phases              [][]string          `json:"phases,omitempty"`
	CriticalPathDepth   int                 `json:"criticalPathDepth"`
	Advisory            string              `json:"advisory,omitempty"`
}
