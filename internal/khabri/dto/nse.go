package dto

// NSECorporateAction is one row of the NSE corporate-actions API.
type NSECorporateAction struct {
	Symbol  string `json:"symbol"`
	Company string `json:"comp"`
	Subject string `json:"subject"`
	ExDate  string `json:"exDate"`
	Series  string `json:"series"`
}
