package entity

import "time"

// Metrics is the numeric block of a persisted analysis.
type Metrics struct {
	Revenue         *float64 `json:"revenue"`
	ProfitAfterTax  *float64 `json:"profit_after_tax"`
	EPS             *float64 `json:"eps"`
	OperatingMargin *float64 `json:"operating_margin"`
	YoYGrowth       *float64 `json:"yoy_growth"`
	QoQGrowth       *float64 `json:"qoq_growth"`
}

// AnalysisRecord is one completed pipeline run. Records are append-only.
type AnalysisRecord struct {
	CompanySymbol string           `json:"company_symbol"`
	CompanyName   string           `json:"company_name"`
	Quarter       Quarter          `json:"quarter"`
	FinancialYear string           `json:"financial_year"`
	Metrics       Metrics          `json:"metrics"`
	Insights      string           `json:"insights"`
	RedFlags      []string         `json:"red_flags"`
	Highlights    []string         `json:"highlights"`
	Source        ExtractionSource `json:"source,omitempty"`
	AnalyzedAt    time.Time        `json:"analyzed_at"`
}

// NewAnalysisRecord assembles a record from the pipeline outputs.
func NewAnalysisRecord(symbol string, rec *FinancialRecord, ins Insight, at time.Time) *AnalysisRecord {
	return &AnalysisRecord{
		CompanySymbol: symbol,
		CompanyName:   rec.CompanyName,
		Quarter:       rec.Quarter,
		FinancialYear: rec.FinancialYear,
		Metrics: Metrics{
			Revenue:         rec.Revenue,
			ProfitAfterTax:  rec.ProfitAfterTax,
			EPS:             rec.EPS,
			OperatingMargin: rec.OperatingMargin,
			YoYGrowth:       rec.YoYGrowth,
			QoQGrowth:       rec.QoQGrowth,
		},
		Insights:   ins.Narrative,
		RedFlags:   ins.RedFlags,
		Highlights: ins.Highlights,
		Source:     rec.Source,
		AnalyzedAt: at,
	}
}
