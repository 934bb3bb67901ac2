package service

import (
	"fmt"

	"market-khabri/internal/entity"
	"market-khabri/pkg/utils"
)

var fillerHighlights = []string{
	"Company delivering on expectations this quarter",
	"Business fundamentals steady with no major surprises",
}

const noRedFlags = "Nothing major to worry about, but keep an eye on market trends"

// RuleBasedInsight derives commentary from fixed thresholds. Missing figures
// are treated as zero.
func RuleBasedInsight(rec *entity.FinancialRecord, symbol string) entity.Insight {
	revenue := entity.ValueOr(rec.Revenue, 0)
	profit := entity.ValueOr(rec.ProfitAfterTax, 0)
	eps := entity.ValueOr(rec.EPS, 0)
	yoy := entity.ValueOr(rec.YoYGrowth, 0)
	margin := entity.ValueOr(rec.OperatingMargin, 0)

	return entity.Insight{
		Narrative:  ruleNarrative(symbol, revenue, yoy, margin),
		Highlights: ruleHighlights(revenue, eps, yoy, margin),
		RedFlags:   ruleRedFlags(profit, yoy, margin),
	}
}

func ruleNarrative(symbol string, revenue, yoy, margin float64) string {
	var performance string
	switch {
	case yoy > 15:
		performance = "absolutely crushing it"
	case yoy > 8:
		performance = "performing solidly"
	case yoy > 3:
		performance = "showing steady growth"
	case yoy > 0:
		performance = "growing but at a slower pace"
	default:
		performance = "facing headwinds"
	}

	efficiency := "tight"
	switch {
	case margin > 18:
		efficiency = "strong"
	case margin > 12:
		efficiency = "decent"
	}

	closing := "Bears might be lurking. 🐻"
	switch {
	case yoy > 10:
		closing = "Bulls are happy! 🚀"
	case yoy > 3:
		closing = "Not bad, but room for improvement."
	}

	return fmt.Sprintf("%s is %s this quarter with ₹%s Cr in revenue (%+.1f%% YoY). Operating margins at %.1f%% show %s operational efficiency. %s",
		symbol, performance, utils.FormatGrouped(revenue, 0), yoy, margin, efficiency, closing)
}

func ruleHighlights(revenue, eps, yoy, margin float64) []string {
	var out []string

	switch {
	case yoy > 10:
		out = append(out, fmt.Sprintf("Strong double-digit YoY growth of %.1f%% - momentum is real!", yoy))
	case yoy > 5:
		out = append(out, fmt.Sprintf("Healthy growth trajectory with %.1f%% YoY increase", yoy))
	case yoy > 0:
		out = append(out, fmt.Sprintf("Maintaining positive growth at %.1f%% YoY despite market conditions", yoy))
	}

	switch {
	case margin > 20:
		out = append(out, fmt.Sprintf("Excellent operating margins at %.1f%% - pricing power on display", margin))
	case margin > 15:
		out = append(out, fmt.Sprintf("Solid margins of %.1f%% showing operational discipline", margin))
	}

	switch {
	case eps > 25:
		out = append(out, fmt.Sprintf("Impressive EPS of ₹%.2f - shareholders eating good!", eps))
	case eps > 15:
		out = append(out, fmt.Sprintf("Decent EPS of ₹%.2f maintaining shareholder value", eps))
	}

	switch {
	case revenue > 50000:
		out = append(out, "Massive scale with revenue crossing ₹50,000 Cr - market leader vibes")
	case revenue > 20000:
		out = append(out, "Strong revenue base showing market presence")
	}

	// One qualifying ladder takes a single filler. The second filler is only
	// reached when no ladder qualified.
	for _, f := range fillerHighlights {
		if len(out) >= entity.MinHighlights {
			break
		}
		out = append(out, f)
	}
	return out
}

func ruleRedFlags(profit, yoy, margin float64) []string {
	var out []string

	switch {
	case yoy < 0:
		out = append(out, fmt.Sprintf("Negative YoY growth of %.1f%% - revenues declining, not good fam", yoy))
	case yoy < 3:
		out = append(out, fmt.Sprintf("Sluggish growth at %.1f%% - needs to pick up pace", yoy))
	}

	switch {
	case margin < 10:
		out = append(out, fmt.Sprintf("Low margins at %.1f%% - profitability under pressure", margin))
	case margin < 15:
		out = append(out, fmt.Sprintf("Margins at %.1f%% could be better - watch operational costs", margin))
	}

	if profit < 1000 {
		out = append(out, "Profit levels are concerning - needs stronger bottom line")
	}

	if len(out) == 0 {
		out = append(out, noRedFlags)
	}
	return out
}
