package strategy

import (
	"context"
	"fmt"

	"market-khabri/internal/entity"
	"market-khabri/pkg/logger"
)

// ExchangeAnnouncementStrategy is the slot for fetching filings from the
// exchange announcement archive. The archive needs a browser session, so the
// strategy always declines and acquisition moves on.
type ExchangeAnnouncementStrategy struct {
	logger *logger.Logger
}

// NewExchangeAnnouncementStrategy creates a new instance of ExchangeAnnouncementStrategy.
func NewExchangeAnnouncementStrategy(log *logger.Logger) *ExchangeAnnouncementStrategy {
	return &ExchangeAnnouncementStrategy{logger: log}
}

func (s *ExchangeAnnouncementStrategy) Name() string {
	return "exchange_announcement"
}

func (s *ExchangeAnnouncementStrategy) Attempt(ctx context.Context, symbol string) (*entity.SourceDocument, error) {
	// TODO: implement a cookie-aware session against the BSE corporate filings API.
	s.logger.DebugContext(ctx, "Exchange announcements not supported", logger.StringField("symbol", symbol))
	return nil, fmt.Errorf("exchange announcements for %s: %w", symbol, entity.ErrStrategyDeclined)
}
