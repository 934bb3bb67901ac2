package strategy

import (
	"context"
	"errors"

	"market-khabri/internal/entity"
)

// AcquisitionStrategy locates a results document for a symbol. A strategy that
// does not apply returns an error wrapping entity.ErrStrategyDeclined.
type AcquisitionStrategy interface {
	Name() string
	Attempt(ctx context.Context, symbol string) (*entity.SourceDocument, error)
}

// ExtractionStrategy turns document text into a complete FinancialRecord or
// fails; partial records are never returned.
type ExtractionStrategy interface {
	Name() string
	Attempt(ctx context.Context, symbol, text string) (*entity.FinancialRecord, error)
}

// CalendarSource lists upcoming result announcements from a live source.
type CalendarSource interface {
	Name() string
	Fetch(ctx context.Context) ([]entity.ResultEvent, error)
}

// IsDeclined reports whether err means the strategy did not apply.
func IsDeclined(err error) bool {
	return errors.Is(err, entity.ErrStrategyDeclined)
}
