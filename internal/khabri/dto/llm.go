package dto

import "market-khabri/internal/entity"

// CompletionRequest is one call to a language model.
type CompletionRequest struct {
	// Model overrides the provider's default model when set.
	Model        string
	SystemPrompt string
	Messages     []entity.ChatTurn
	Temperature  float32
	MaxTokens    int
	JSONMode     bool
}

// ExtractionResult is the JSON shape requested from the model when reading a filing.
type ExtractionResult struct {
	CompanyName     string   `json:"company_name"`
	Quarter         string   `json:"quarter"`
	FinancialYear   string   `json:"financial_year"`
	Revenue         *float64 `json:"revenue"`
	ProfitAfterTax  *float64 `json:"profit_after_tax"`
	EPS             *float64 `json:"eps"`
	OperatingMargin *float64 `json:"operating_margin"`
	YoYGrowth       *float64 `json:"yoy_growth"`
	QoQGrowth       *float64 `json:"qoq_growth"`
}

// InsightResult is the JSON shape requested from the model for commentary.
type InsightResult struct {
	Insights   string   `json:"insights"`
	Highlights []string `json:"highlights"`
	RedFlags   []string `json:"red_flags"`
}

// TriageResult is the JSON shape requested from the triage model.
type TriageResult struct {
	QueryType string `json:"query_type"`
	Symbol    string `json:"symbol"`
}
