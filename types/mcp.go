/*
Copyright © 2025 TaskScout Authors
*/
package types

// MCP Tool Parameter Types

// RecommendTasksParams for ranking the snapshot and returning top candidates
type RecommendTasksParams struct {
	Assignee       string   `json:"assignee,omitempty" mcp:"Only consider items assigned to this username"`
	MinPriority    string   `json:"minPriority,omitempty" mcp:"Minimum priority class: critical, high, medium, low"`
	IncludeBlocked bool     `json:"includeBlocked,omitempty" mcp:"Include items with blockers in the result"`
	MaxResults     int      `json:"maxResults,omitempty" mcp:"Maximum number of recommendations (default 5)"`
	ContextPenalty float64  `json:"contextPenalty,omitempty" mcp:"Flat score deduction for already-assigned items (default 0)"`
	Roster         []string `json:"roster,omitempty" mcp:"Team roster usernames; inferred from assignees when empty"`
}

// BreakdownTaskParams for decomposing one work item into subtasks
type BreakdownTaskParams struct {
	ID    int  `json:"id" mcp:"Work item ID to decompose (required)"`
	Force bool `json:"force,omitempty" mcp:"Decompose even when complexity is below the low-value threshold"`
	Apply bool `json:"apply,omitempty" mcp:"Create one tracker item per subtask in the local store"`
}

// TeamWorkloadParams for computing the per-member workload model
type TeamWorkloadParams struct {
	Roster []string `json:"roster,omitempty" mcp:"Team roster usernames; inferred from assignees when empty"`
}

// MCP Response Types

// ScoreBreakdown carries the component scores of one recommendation
type ScoreBreakdown struct {
	Priority     float64 `json:"priority"`
	Urgency      float64 `json:"urgency"`
	Availability float64 `json:"availability"`
	SkillMatch   float64 `json:"skill_match"`
	Readiness    float64 `json:"readiness"`
	Total        float64 `json:"total"`
}

// RecommendationEntry represents one ranked work item in MCP responses
type RecommendationEntry struct {
	ItemID    int            `json:"item_id"`
	Title     string         `json:"title"`
	Assignees []string       `json:"assignees,omitempty"`
	Labels    []string       `json:"labels,omitempty"`
	Score     ScoreBreakdown `json:"score"`
	Blockers  []string       `json:"blockers,omitempty"`
	Reasoning string         `json:"reasoning"`
}

// RecommendTasksResponse for the recommend-tasks tool
type RecommendTasksResponse struct {
	Recommendations []RecommendationEntry `json:"recommendations"`
	Count           int                   `json:"count"`
	Message         string                `json:"message,omitempty"`
}

// SubtaskPayload represents one generated subtask in MCP responses
type SubtaskPayload struct {
	Title              string   `json:"title"`
	Description        string   `json:"description,omitempty"`
	Complexity         int      `json:"complexity"`
	Priority           string   `json:"priority"`
	Category           string   `json:"category"`
	Dependencies       []string `json:"dependencies,omitempty"`
	Labels             []string `json:"labels,omitempty"`
	EstimatedHours     float64  `json:"estimated_hours"`
	AcceptanceCriteria []string `json:"acceptance_criteria,omitempty"`
}

// BreakdownTaskResponse for the breakdown-task tool
type BreakdownTaskResponse struct {
	ItemID              int                 `json:"item_id"`
	ItemTitle           string              `json:"item_title"`
	OriginalComplexity  int                 `json:"original_complexity"`
	TotalComplexity     int                 `json:"total_complexity"`
	Subtasks            []SubtaskPayload    `json:"subtasks"`
	Dependencies        map[string][]string `json:"dependencies,omitempty"`
	Phases              [][]string          `json:"phases,omitempty"`
	CriticalPathDepth   int                 `json:"critical_path_depth"`
	Timeline            string              `json:"timeline,omitempty"`
	RecommendedApproach string              `json:"recommended_approach,omitempty"`
	RiskAssessment      []string            `json:"risk_assessment,omitempty"`
	Advisory            string              `json:"advisory,omitempty"`
	CreatedItemIDs      []string            `json:"created_item_ids,omitempty"`
}

// MemberWorkloadEntry represents one team member in workload responses
type MemberWorkloadEntry struct {
	Username          string   `json:"username"`
	CurrentWorkload   int      `json:"current_workload"`
	MaxCapacity       int      `json:"max_capacity"`
	AvailabilityScore float64  `json:"availability_score"`
	SkillAreas        []string `json:"skill_areas,omitempty"`
	RecentVelocity    int      `json:"recent_velocity"`
}

// TeamWorkloadResponse for the team-workload tool
type TeamWorkloadResponse struct {
	Members []MemberWorkloadEntry `json:"members"`
	Count   int                   `json:"count"`
}
