package entity

// ExtractionSource names the single strategy that produced a FinancialRecord.
type ExtractionSource string

const (
	ExtractionSourceLLM       ExtractionSource = "llm"
	ExtractionSourceRegex     ExtractionSource = "regex"
	ExtractionSourceSynthetic ExtractionSource = "synthetic"
)

// FinancialRecord holds the headline figures of one quarterly result.
// A nil figure means unknown; it is never reported as zero.
// Amounts are in crore rupees, margins and growth rates in percent.
type FinancialRecord struct {
	CompanyName     string           `json:"company_name"`
	Quarter         Quarter          `json:"quarter"`
	FinancialYear   string           `json:"financial_year"`
	Revenue         *float64         `json:"revenue"`
	ProfitAfterTax  *float64         `json:"profit_after_tax"`
	EPS             *float64         `json:"eps"`
	OperatingMargin *float64         `json:"operating_margin"`
	YoYGrowth       *float64         `json:"yoy_growth"`
	QoQGrowth       *float64         `json:"qoq_growth"`
	Source          ExtractionSource `json:"source,omitempty"`
}

// HasRevenue reports whether the mandatory revenue figure is present.
func (r *FinancialRecord) HasRevenue() bool {
	return r != nil && r.Revenue != nil
}

// ValueOr returns *p, or def when p is nil.
func ValueOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
