package entity

// Insight is the narrative commentary attached to a FinancialRecord.
type Insight struct {
	Narrative  string   `json:"insights"`
	Highlights []string `json:"highlights"`
	RedFlags   []string `json:"red_flags"`
}

const (
	MinHighlights = 2
	MaxHighlights = 4
	MinRedFlags   = 1
	MaxRedFlags   = 3
)
