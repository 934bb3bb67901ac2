package strategy

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"market-khabri/internal/entity"
)

var (
	quarterPattern = regexp.MustCompile(`(?i)\bQ([1-4])\b`)
	fyPattern      = regexp.MustCompile(`(?i)\bFY\s*'?(\d{2}|\d{4})\b`)
)

// normalizeQuarter accepts labels such as "q2" or "Q2 FY25" and falls back to def.
func normalizeQuarter(raw string, def entity.Quarter) entity.Quarter {
	if m := quarterPattern.FindStringSubmatch(raw); m != nil {
		return entity.Quarter("Q" + m[1])
	}
	return def
}

// normalizeFinancialYear accepts "FY24", "fy 2024" or "FY'24" and falls back to def.
func normalizeFinancialYear(raw, def string) string {
	m := fyPattern.FindStringSubmatch(raw)
	if m == nil {
		return def
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return def
	}
	return fmt.Sprintf("FY%02d", n%100)
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
