package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

// Quarter is a fiscal quarter label, Q1 through Q4.
type Quarter string

const (
	QuarterQ1 Quarter = "Q1"
	QuarterQ2 Quarter = "Q2"
	QuarterQ3 Quarter = "Q3"
	QuarterQ4 Quarter = "Q4"
)

// Quarters lists the fiscal quarters in order, starting with April–June.
var Quarters = []Quarter{QuarterQ1, QuarterQ2, QuarterQ3, QuarterQ4}

// DateLayout is the wire format for result dates.
const DateLayout = "2006-01-02"

// ResultEvent is a scheduled financial-results disclosure for one company.
type ResultEvent struct {
	CompanySymbol string    `json:"company_symbol"`
	CompanyName   string    `json:"company_name"`
	ResultDate    time.Time `json:"-"`
	Quarter       Quarter   `json:"quarter"`
	FinancialYear string    `json:"financial_year"`
}

// Date returns the result date in DateLayout.
func (e ResultEvent) Date() string {
	return e.ResultDate.Format(DateLayout)
}

type resultEventJSON struct {
	CompanySymbol string  `json:"company_symbol"`
	CompanyName   string  `json:"company_name"`
	ResultDate    string  `json:"result_date"`
	Quarter       Quarter `json:"quarter"`
	FinancialYear string  `json:"financial_year"`
}

// MarshalJSON writes the result date as a plain calendar date.
func (e ResultEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultEventJSON{
		CompanySymbol: e.CompanySymbol,
		CompanyName:   e.CompanyName,
		ResultDate:    e.Date(),
		Quarter:       e.Quarter,
		FinancialYear: e.FinancialYear,
	})
}

// UnmarshalJSON reads the format written by MarshalJSON.
func (e *ResultEvent) UnmarshalJSON(data []byte) error {
	var raw resultEventJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	date, err := time.Parse(DateLayout, raw.ResultDate)
	if err != nil {
		return fmt.Errorf("invalid result_date %q: %w", raw.ResultDate, err)
	}
	*e = ResultEvent{
		CompanySymbol: raw.CompanySymbol,
		CompanyName:   raw.CompanyName,
		ResultDate:    date,
		Quarter:       raw.Quarter,
		FinancialYear: raw.FinancialYear,
	}
	return nil
}

// IsValid reports whether q is one of Q1..Q4.
func (q Quarter) IsValid() bool {
	switch q {
	case QuarterQ1, QuarterQ2, QuarterQ3, QuarterQ4:
		return true
	}
	return false
}

// QuarterOf maps a date to its fiscal quarter with the year starting in April:
// Apr–Jun Q1, Jul–Sep Q2, Oct–Dec Q3, Jan–Mar Q4.
func QuarterOf(t time.Time) Quarter {
	switch m := t.Month(); {
	case m >= time.April && m <= time.June:
		return QuarterQ1
	case m >= time.July && m <= time.September:
		return QuarterQ2
	case m >= time.October:
		return QuarterQ3
	default:
		return QuarterQ4
	}
}

// FinancialYearOf returns the FYxx label for t. January to March belong to the
// fiscal year that started the previous April.
func FinancialYearOf(t time.Time) string {
	year := t.Year()
	if t.Month() < time.April {
		year--
	}
	return fmt.Sprintf("FY%02d", year%100)
}

// CalendarQuarterIndex returns 0..3 for Jan–Mar, Apr–Jun, Jul–Sep, Oct–Dec.
func CalendarQuarterIndex(t time.Time) int {
	return (int(t.Month()) - 1) / 3
}

// Period is a fiscal quarter together with its financial-year label.
type Period struct {
	Quarter       Quarter
	FinancialYear string
}

// LastReportedPeriod returns the most recently completed fiscal quarter as of t.
func LastReportedPeriod(t time.Time) Period {
	prev := time.Date(t.Year(), t.Month()-3, 1, 0, 0, 0, 0, t.Location())
	return Period{Quarter: QuarterOf(prev), FinancialYear: FinancialYearOf(prev)}
}
