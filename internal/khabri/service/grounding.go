package service

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"market-khabri/internal/entity"
	"market-khabri/internal/khabri/repository"
)

var (
	figurePattern    = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)
	timestampPattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}(?:[T ]\d{2}:\d{2}(?::\d{2}(?:\.\d+)?)?(?:Z|[+-]\d{2}:\d{2})?)?`)
)

// figures returns every number in s with thousands separators removed.
func figures(s string) []float64 {
	var out []float64
	for _, m := range figurePattern.FindAllString(s, -1) {
		v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimRight(m, ","), ",", ""), 64)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// hasUnverifiedFigures reports whether answer quotes a number that does not
// appear in grounding, allowing for rounding to 0-2 decimals. Timestamps in
// grounding are not figures. Whole numbers below 10 are skipped only when
// they carry no currency or percent marker, and unmarked digits glued to a
// word (Q2, FY26) are period labels.
func hasUnverifiedFigures(answer, grounding string) bool {
	known := figures(timestampPattern.ReplaceAllString(grounding, " "))
	for _, loc := range figurePattern.FindAllStringIndex(answer, -1) {
		raw := strings.TrimRight(answer[loc[0]:loc[1]], ",")
		v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err != nil {
			continue
		}
		before, after := answer[:loc[0]], answer[loc[0]+len(raw):]
		marked := hasCurrencyMarker(before) || hasPercentMarker(after)
		if !marked && endsWithLetter(before) {
			continue
		}
		if !marked && v < 10 && v == math.Trunc(v) {
			continue
		}
		if !matchesAny(v, known) {
			return true
		}
	}
	return false
}

func hasCurrencyMarker(before string) bool {
	b := strings.ToLower(strings.TrimRightFunc(before, unicode.IsSpace))
	for _, m := range []string{"₹", "rs", "rs.", "inr", "$"} {
		if strings.HasSuffix(b, m) {
			return true
		}
	}
	return false
}

func hasPercentMarker(after string) bool {
	a := strings.ToLower(strings.TrimLeftFunc(after, unicode.IsSpace))
	return strings.HasPrefix(a, "%") || strings.HasPrefix(a, "percent") || strings.HasPrefix(a, "per cent")
}

func endsWithLetter(s string) bool {
	if s == "" {
		return false
	}
	r := []rune(s)
	return unicode.IsLetter(r[len(r)-1])
}

// mentionsCompany reports whether answer names any company in the knowledge
// base JSON, by symbol or by full name.
func mentionsCompany(answer, knowledgeBase string) bool {
	var entries []struct {
		CompanySymbol string `json:"company_symbol"`
		CompanyName   string `json:"company_name"`
	}
	if err := json.Unmarshal([]byte(knowledgeBase), &entries); err != nil {
		return false
	}
	for _, e := range entries {
		if e.CompanySymbol != "" && containsTerm(strings.ToUpper(answer), strings.ToUpper(e.CompanySymbol)) {
			return true
		}
		if e.CompanyName != "" && containsTerm(strings.ToLower(answer), strings.ToLower(e.CompanyName)) {
			return true
		}
	}
	return false
}

// containsTerm matches term only where it is not part of a longer word.
func containsTerm(text, term string) bool {
	isWord := func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }
	for offset := 0; offset < len(text); {
		i := strings.Index(text[offset:], term)
		if i < 0 {
			return false
		}
		start, end := offset+i, offset+i+len(term)
		prev, _ := utf8.DecodeLastRuneInString(text[:start])
		next, _ := utf8.DecodeRuneInString(text[end:])
		if (start == 0 || !isWord(prev)) && (end == len(text) || !isWord(next)) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return false
}

func matchesAny(v float64, known []float64) bool {
	for _, k := range known {
		if math.Abs(k-v) < 1e-9 {
			return true
		}
		for _, places := range []float64{0, 1, 2} {
			p := math.Pow(10, places)
			if math.Abs(math.Round(k*p)/p-v) < 1e-9 {
				return true
			}
		}
	}
	return false
}

// stripGeneralKnowledgePrefix removes a leading general-knowledge disclaimer.
func stripGeneralKnowledgePrefix(answer string) string {
	if !strings.HasPrefix(answer, repository.GeneralKnowledgePrefix) {
		return answer
	}
	rest := strings.TrimLeftFunc(answer[len(repository.GeneralKnowledgePrefix):], func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(".,:;…-", r)
	})
	if rest == "" {
		return ""
	}
	r := []rune(rest)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// VerifiedSummary describes a record using only its own figures.
func VerifiedSummary(r *entity.AnalysisRecord) string {
	m := r.Metrics
	var sb strings.Builder
	fmt.Fprintf(&sb, "Here is what the latest analysis of %s (%s) for %s %s shows: ", r.CompanyName, r.CompanySymbol, r.Quarter, r.FinancialYear)
	fmt.Fprintf(&sb, "revenue %s, profit after tax %s, EPS %s, operating margin %s, YoY growth %s, QoQ growth %s.",
		summaryFigure(m.Revenue, "₹", " Cr"),
		summaryFigure(m.ProfitAfterTax, "₹", " Cr"),
		summaryFigure(m.EPS, "₹", ""),
		summaryFigure(m.OperatingMargin, "", "%"),
		summaryFigure(m.YoYGrowth, "", "%"),
		summaryFigure(m.QoQGrowth, "", "%"),
	)
	if r.Source == entity.ExtractionSourceSynthetic {
		sb.WriteString(" These are demo figures, not a filed result.")
	}
	return sb.String()
}

func summaryFigure(v *float64, prefix, suffix string) string {
	if v == nil {
		return "not reported"
	}
	return prefix + strconv.FormatFloat(*v, 'f', -1, 64) + suffix
}
