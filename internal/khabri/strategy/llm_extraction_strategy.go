package strategy

import (
	"context"
	"fmt"
	"strings"

	"market-khabri/internal/entity"
	"market-khabri/internal/khabri/dto"
	"market-khabri/internal/khabri/repository"
	"market-khabri/pkg/logger"
	"market-khabri/pkg/utils"
)

// LLMExtractionStrategy asks a language model for the headline figures.
type LLMExtractionStrategy struct {
	ai           repository.AIRepository
	logger       *logger.Logger
	excerptChars int
	period       func() entity.Period
}

// NewLLMExtractionStrategy creates a new instance of LLMExtractionStrategy.
// period supplies the label used when the model does not report one.
func NewLLMExtractionStrategy(ai repository.AIRepository, log *logger.Logger, excerptChars int, period func() entity.Period) *LLMExtractionStrategy {
	return &LLMExtractionStrategy{ai: ai, logger: log, excerptChars: excerptChars, period: period}
}

func (s *LLMExtractionStrategy) Name() string {
	return "llm"
}

// Attempt makes a single model call; unparseable output or a missing revenue
// figure discards the whole answer.
func (s *LLMExtractionStrategy) Attempt(ctx context.Context, symbol, text string) (*entity.FinancialRecord, error) {
	excerpt := utils.Truncate(strings.TrimSpace(text), s.excerptChars)
	if excerpt == "" {
		return nil, fmt.Errorf("empty document text: %w", entity.ErrExtractionAmbiguous)
	}

	raw, err := s.ai.Complete(ctx, dto.CompletionRequest{
		SystemPrompt: repository.ExtractionSystemPrompt,
		Messages:     []entity.ChatTurn{{Role: entity.ChatRoleUser, Content: repository.BuildExtractionPrompt(excerpt)}},
		Temperature:  0.1,
		MaxTokens:    500,
	})
	if err != nil {
		return nil, fmt.Errorf("extraction call via %s: %w: %v", s.ai.Name(), entity.ErrSourceUnavailable, err)
	}

	var res dto.ExtractionResult
	if err := utils.DecodeModelJSON(raw, &res); err != nil {
		s.logger.DebugContext(ctx, "Unparseable extraction response", logger.StringField("symbol", symbol), logger.StringField("response", utils.Truncate(raw, 500)))
		return nil, fmt.Errorf("%w: %v", entity.ErrExtractionAmbiguous, err)
	}
	if res.Revenue == nil || *res.Revenue <= 0 {
		return nil, fmt.Errorf("model reported no revenue: %w", entity.ErrExtractionAmbiguous)
	}

	def := s.period()
	return &entity.FinancialRecord{
		CompanyName:     entity.CompanyName(symbol),
		Quarter:         normalizeQuarter(res.Quarter, def.Quarter),
		FinancialYear:   normalizeFinancialYear(res.FinancialYear, def.FinancialYear),
		Revenue:         res.Revenue,
		ProfitAfterTax:  res.ProfitAfterTax,
		EPS:             res.EPS,
		OperatingMargin: res.OperatingMargin,
		YoYGrowth:       res.YoYGrowth,
		QoQGrowth:       res.QoQGrowth,
		Source:          entity.ExtractionSourceLLM,
	}, nil
}
