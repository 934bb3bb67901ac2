package service

import (
	"context"
	"fmt"

	"market-khabri/internal/entity"
	"market-khabri/internal/khabri/strategy"
	"market-khabri/pkg/logger"
)

// DocumentAcquisitionService locates the latest results document for a company.
type DocumentAcquisitionService interface {
	Acquire(ctx context.Context, symbol string) (*entity.SourceDocument, error)
}

// NewDocumentAcquisitionService creates a service that tries strategies in order.
// The chain normally ends with a SyntheticDocumentStrategy, so Acquire only fails
// when every strategy declines or errors.
func NewDocumentAcquisitionService(strategies []strategy.AcquisitionStrategy, log *logger.Logger) DocumentAcquisitionService {
	return &documentAcquisitionService{
		strategies: strategies,
		logger:     log,
	}
}

type documentAcquisitionService struct {
	strategies []strategy.AcquisitionStrategy
	logger     *logger.Logger
}

func (s *documentAcquisitionService) Acquire(ctx context.Context, symbol string) (*entity.SourceDocument, error) {
	for _, st := range s.strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc, err := st.Attempt(ctx, symbol)
		if err != nil {
			if strategy.IsDeclined(err) {
				s.logger.DebugContext(ctx, "Acquisition strategy declined",
					logger.StringField("strategy", st.Name()),
					logger.StringField("symbol", symbol),
				)
			} else {
				s.logger.WarnContext(ctx, "Acquisition strategy failed",
					logger.StringField("strategy", st.Name()),
					logger.StringField("symbol", symbol),
					logger.ErrorField(err),
				)
			}
			continue
		}
		if doc == nil {
			continue
		}

		s.logger.InfoContext(ctx, "Acquired results document",
			logger.StringField("strategy", st.Name()),
			logger.StringField("symbol", symbol),
			logger.StringField("kind", string(doc.Kind)),
			logger.StringField("location", doc.Location),
		)
		return doc, nil
	}
	return nil, fmt.Errorf("no results document for %s: %w", symbol, entity.ErrNotFound)
}
