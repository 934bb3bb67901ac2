package strategy

import (
	"context"

	"market-khabri/internal/entity"
)

// SyntheticDocumentStrategy always succeeds with the "no real document" sentinel.
type SyntheticDocumentStrategy struct{}

// NewSyntheticDocumentStrategy creates a new instance of SyntheticDocumentStrategy.
func NewSyntheticDocumentStrategy() *SyntheticDocumentStrategy {
	return &SyntheticDocumentStrategy{}
}

func (s *SyntheticDocumentStrategy) Name() string {
	return "synthetic"
}

func (s *SyntheticDocumentStrategy) Attempt(_ context.Context, symbol string) (*entity.SourceDocument, error) {
	return entity.SyntheticDocument(symbol), nil
}
