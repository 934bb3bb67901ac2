package strategy

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"market-khabri/internal/entity"
)

// Patterns are tried in order per field; the first match wins.
var (
	revenuePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Total Income.*?(?:Rs\.|₹)\s*([\d,]+\.?\d*)\s*(?:crore|Cr)`),
		regexp.MustCompile(`(?i)Revenue.*?(?:Rs\.|₹)\s*([\d,]+\.?\d*)\s*(?:crore|Cr)`),
	}
	profitPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:Net Profit|Profit After Tax|\bPAT\b).*?(?:Rs\.|₹)\s*([\d,]+\.?\d*)\s*(?:crore|Cr)`),
	}
	epsPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:\bEPS\b|Earnings Per Share).*?(?:Rs\.|₹)\s*([\d,]+\.?\d*)`),
	}
	marginPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:Operating|EBIT|EBITDA) Margin\D{0,40}?(-?\d+(?:\.\d+)?)\s*%`),
	}
	yoyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(-?\d+(?:\.\d+)?)\s*%\s*(?:YoY|Y-o-Y|year[- ]on[- ]year)`),
	}
	qoqPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(-?\d+(?:\.\d+)?)\s*%\s*(?:QoQ|Q-o-Q|quarter[- ]on[- ]quarter|sequential)`),
	}
)

// RegexExtractionStrategy reads rupee-crore figures straight from the text.
type RegexExtractionStrategy struct {
	period func() entity.Period
}

// NewRegexExtractionStrategy creates a new instance of RegexExtractionStrategy.
func NewRegexExtractionStrategy(period func() entity.Period) *RegexExtractionStrategy {
	return &RegexExtractionStrategy{period: period}
}

func (s *RegexExtractionStrategy) Name() string {
	return "regex"
}

// Attempt fails unless a revenue figure is found.
func (s *RegexExtractionStrategy) Attempt(_ context.Context, symbol, text string) (*entity.FinancialRecord, error) {
	revenue := firstNumber(text, revenuePatterns)
	if revenue == nil {
		return nil, fmt.Errorf("no revenue figure in text: %w", entity.ErrExtractionAmbiguous)
	}

	def := s.period()
	quarter := def.Quarter
	if m := quarterPattern.FindStringSubmatch(text); m != nil {
		quarter = entity.Quarter("Q" + m[1])
	}

	return &entity.FinancialRecord{
		CompanyName:     entity.CompanyName(symbol),
		Quarter:         quarter,
		FinancialYear:   normalizeFinancialYear(text, def.FinancialYear),
		Revenue:         revenue,
		ProfitAfterTax:  firstNumber(text, profitPatterns),
		EPS:             firstNumber(text, epsPatterns),
		OperatingMargin: firstNumber(text, marginPatterns),
		YoYGrowth:       firstNumber(text, yoyPatterns),
		QoQGrowth:       firstNumber(text, qoqPatterns),
		Source:          entity.ExtractionSourceRegex,
	}, nil
}

func firstNumber(text string, patterns []*regexp.Regexp) *float64 {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			continue
		}
		return &v
	}
	return nil
}
