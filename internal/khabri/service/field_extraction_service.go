package service

import (
	"context"
	"fmt"
	"strings"

	"market-khabri/internal/entity"
	"market-khabri/internal/khabri/repository"
	"market-khabri/internal/khabri/strategy"
	"market-khabri/pkg/logger"
)

// FieldExtractionService turns an acquired document into a FinancialRecord.
type FieldExtractionService interface {
	// Extract always yields a record with revenue for a non-nil document; any
	// failure along the strategy chain ends in synthetic figures.
	Extract(ctx context.Context, doc *entity.SourceDocument, symbol string) (*entity.FinancialRecord, error)
}

// NewFieldExtractionService creates a new FieldExtractionService.
func NewFieldExtractionService(
	texts repository.DocumentTextRepository,
	strategies []strategy.ExtractionStrategy,
	synthetic *SyntheticFinancials,
	maxPages int,
	log *logger.Logger,
) FieldExtractionService {
	return &fieldExtractionService{
		texts:      texts,
		strategies: strategies,
		synthetic:  synthetic,
		maxPages:   maxPages,
		logger:     log,
	}
}

type fieldExtractionService struct {
	texts      repository.DocumentTextRepository
	strategies []strategy.ExtractionStrategy
	synthetic  *SyntheticFinancials
	maxPages   int
	logger     *logger.Logger
}

func (s *fieldExtractionService) Extract(ctx context.Context, doc *entity.SourceDocument, symbol string) (*entity.FinancialRecord, error) {
	if doc == nil {
		return nil, fmt.Errorf("no document for %s: %w", symbol, entity.ErrNotFound)
	}
	if doc.IsSynthetic() {
		return s.synthetic.Generate(symbol), nil
	}

	text, err := s.texts.ExtractText(ctx, doc, s.maxPages)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to read document text, using demo figures",
			logger.StringField("symbol", symbol),
			logger.StringField("location", doc.Location),
			logger.ErrorField(err),
		)
		return s.synthetic.Generate(symbol), nil
	}
	if strings.TrimSpace(text) == "" {
		s.logger.WarnContext(ctx, "Document has no text, using demo figures", logger.StringField("symbol", symbol))
		return s.synthetic.Generate(symbol), nil
	}

	for _, st := range s.strategies {
		rec, err := st.Attempt(ctx, symbol, text)
		if err != nil {
			s.logger.DebugContext(ctx, "Extraction strategy failed",
				logger.StringField("strategy", st.Name()),
				logger.StringField("symbol", symbol),
				logger.ErrorField(err),
			)
			continue
		}
		if !rec.HasRevenue() {
			continue
		}
		s.logger.InfoContext(ctx, "Extracted financial figures",
			logger.StringField("strategy", st.Name()),
			logger.StringField("symbol", symbol),
		)
		return rec, nil
	}

	s.logger.WarnContext(ctx, "No strategy could read the document, using demo figures", logger.StringField("symbol", symbol))
	return s.synthetic.Generate(symbol), nil
}
