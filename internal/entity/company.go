package entity

import "strings"

// Company is an entry of the static company roster.
type Company struct {
	Symbol string
	Name   string
}

// CompanyRoster is the fixed list used for synthetic calendars and name lookup.
var CompanyRoster = []Company{
	{"TCS", "Tata Consultancy Services"},
	{"INFY", "Infosys Limited"},
	{"RELIANCE", "Reliance Industries"},
	{"HDFCBANK", "HDFC Bank"},
	{"ICICIBANK", "ICICI Bank"},
	{"WIPRO", "Wipro Limited"},
	{"SBIN", "State Bank of India"},
	{"BHARTIARTL", "Bharti Airtel"},
	{"ITC", "ITC Limited"},
	{"KOTAKBANK", "Kotak Mahindra Bank"},
	{"LT", "Larsen & Toubro"},
	{"AXISBANK", "Axis Bank"},
	{"ASIANPAINT", "Asian Paints"},
	{"MARUTI", "Maruti Suzuki"},
	{"TITAN", "Titan Company"},
	{"HINDUNILVR", "Hindustan Unilever"},
	{"BAJFINANCE", "Bajaj Finance"},
	{"TECHM", "Tech Mahindra"},
	{"SUNPHARMA", "Sun Pharmaceutical"},
	{"ULTRACEMCO", "UltraTech Cement"},
}

var companyNames = func() map[string]string {
	m := make(map[string]string, len(CompanyRoster))
	for _, c := range CompanyRoster {
		m[c.Symbol] = c.Name
	}
	return m
}()

// CompanyName returns the display name for symbol, or the symbol itself when unknown.
func CompanyName(symbol string) string {
	if name, ok := companyNames[symbol]; ok {
		return name
	}
	return symbol
}

// NormalizeSymbol upper-cases a ticker and drops characters that cannot appear
// in an exchange symbol, so it is safe to embed in store keys.
func NormalizeSymbol(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(raw)) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '&', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}
