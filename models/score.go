package models

// TaskScore holds the per-item component scores produced during one ranking
// pass. All components are normalized to [0,1]; Total is the weighted sum
// clamped to be non-negative after the context-switch penalty.
type TaskScore struct {
	Priority     float64  `json:"priority"`
	Urgency      float64  `json:"urgency"`
	Availability float64  `json:"availability"`
	SkillMatch   float64  `json:"skillMatch"`
	Readiness    float64  `json:"readiness"`
	Blockers     []string `json:"blockers,omitempty"`
	Total        float64  `json:"total"`
}

// TeamMemberWorkload is the per-person load model rebuilt fresh on every
// invocation. CurrentWorkload is the sum of complexity points of items
// assigned to the member; RecentVelocity is a heuristic stand-in, not a
// measured value.
type TeamMemberWorkload struct {
	Username          string   `json:"username"`
	CurrentWorkload   int      `json:"currentWorkload"`
	MaxCapacity       int      `json:"maxCapacity"`
	AvailabilityScore float64  `json:"availabilityScore"`
	SkillAreas        []string `json:"skillAreas,omitempty"`
	RecentVelocity    int      `json:"recentVelocity"`
}
