package service

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

const (
	InsightModeGenerative = "generative"
	InsightModeRules      = "rules"
)

// InsightService writes commentary for a FinancialRecord.
type InsightService interface {
	// Generate never fails: a rejected model answer falls back to the rule ladder.
	Generate(ctx context.Context, rec *entity.FinancialRecord, symbol string) entity.Insight
	Mode() string
}

// NewInsightService creates a new InsightService. A nil ai selects rule-based mode.
func NewInsightService(ai repository.AIRepository, log *logger.Logger) InsightService {
	return &insightService{ai: ai, logger: log}
}

type insightService struct {
	ai     repository.AIRepository
	logger *logger.Logger
}

func (s *insightService) Mode() string {
	if s.ai == nil {
		return InsightModeRules
	}
	return InsightModeGenerative
}

func (s *insightService) Generate(ctx context.Context, rec *entity.FinancialRecord, symbol string) entity.Insight {
	if s.ai != nil {
		ins, err := s.generate(ctx, rec, symbol)
		if err == nil {
			return ins
		}
		s.logger.WarnContext(ctx, "Generative insight rejected, using rules",
			logger.StringField("symbol", symbol),
			logger.StringField("model", s.ai.Name()),
			logger.ErrorField(err),
		)
	}
	return RuleBasedInsight(rec, symbol)
}

func (s *insightService) generate(ctx context.Context, rec *entity.FinancialRecord, symbol string) (entity.Insight, error) {
	raw, err := s.ai.Complete(ctx, dto.CompletionRequest{
		SystemPrompt: repository.InsightSystemPrompt,
		Messages: []entity.ChatTurn{
			{Role: entity.ChatRoleUser, Content: repository.BuildInsightPrompt(symbol, rec)},
		},
		Temperature: 0.7,
		MaxTokens:   800,
		JSONMode:    true,
	})
	if err != nil {
		return entity.Insight{}, err
	}

	var res dto.InsightResult
	if err := utils.DecodeModelJSON(raw, &res); err != nil {
		return entity.Insight{}, fmt.Errorf("%w: %v", entity.ErrExtractionAmbiguous, err)
	}

	ins := entity.Insight{
		Narrative:  strings.TrimSpace(res.Insights),
		Highlights: cleanList(res.Highlights, entity.MaxHighlights),
		RedFlags:   cleanList(res.RedFlags, entity.MaxRedFlags),
	}
	switch {
	case ins.Narrative == "":
		return entity.Insight{}, fmt.Errorf("%w: empty narrative", entity.ErrExtractionAmbiguous)
	case len(ins.Highlights) < entity.MinHighlights:
		return entity.Insight{}, fmt.Errorf("%w: %d highlights", entity.ErrExtractionAmbiguous, len(ins.Highlights))
	case len(ins.RedFlags) < entity.MinRedFlags:
		return entity.Insight{}, fmt.Errorf("%w: no red flags", entity.ErrExtractionAmbiguous)
	}
	return ins, nil
}

// cleanList trims entries, drops blanks and keeps at most max items.
func cleanList(items []string, max int) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		out = append(out, it)
		if len(out) == max {
			break
		}
	}
	return out
}
