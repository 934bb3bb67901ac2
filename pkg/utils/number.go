package utils

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var numberPrinter = message.NewPrinter(language.English)

// FormatGrouped renders v with thousands separators and the given number of decimals,
// e.g. FormatGrouped(62600, 0) == "62,600".
func FormatGrouped(v float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	if decimals == 0 {
		v = math.Round(v)
	}
	return numberPrinter.Sprint(number.Decimal(v, number.MaxFractionDigits(decimals), number.MinFractionDigits(decimals)))
}
