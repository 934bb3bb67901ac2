package entity

// DocumentKind tells FieldExtraction how to read a SourceDocument.
type DocumentKind string

const (
	DocumentKindPDF       DocumentKind = "pdf"
	DocumentKindHTML      DocumentKind = "html"
	DocumentKindSynthetic DocumentKind = "synthetic"
)

// SourceDocument is what DocumentAcquisition found for a symbol. A synthetic
// document carries no content and tells extraction to generate figures.
type SourceDocument struct {
	Kind      DocumentKind `json:"kind"`
	Symbol    string       `json:"symbol"`
	Location  string       `json:"location,omitempty"`
	SourceURL string       `json:"source_url,omitempty"`
}

// IsSynthetic reports whether d is the "no real document" sentinel.
func (d *SourceDocument) IsSynthetic() bool {
	return d == nil || d.Kind == DocumentKindSynthetic
}

// SyntheticDocument returns the sentinel document for symbol.
func SyntheticDocument(symbol string) *SourceDocument {
	return &SourceDocument{Kind: DocumentKindSynthetic, Symbol: symbol, Location: "DEMO:" + symbol}
}
