package types

// ItemComplexity contains the complexity analysis for a single work item
type ItemComplexity struct {
	ItemID           int    `json:"item_id"`
	Title            string `json:"title"`
	Score            int    `json:"score"` // 1-8
	Reason           string `json:"reason,omitempty"`
	BreakdownCommand string `json:"breakdown_command,omitempty"`
}

// ComplexityReport is the persisted JSON payload
type ComplexityReport struct {
	GeneratedAtISO string           `json:"generated_at_iso"`
	Items          []ItemComplexity `json:"items"`
	Stats          ComplexityStats  `json:"stats"`
}

type ComplexityStats struct {
	Total  int `json:"total"`
	Low    int `json:"low"`    // score 1-2
	Medium int `json:"medium"` // 3-5
	High   int `json:"high"`   // 6-8
}
