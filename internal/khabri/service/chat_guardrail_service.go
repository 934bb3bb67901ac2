package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"market-khabri/internal/entity"
	"market-khabri/internal/khabri/dto"
	"market-khabri/internal/khabri/repository"
	"market-khabri/pkg/logger"
	"market-khabri/pkg/utils"
)

const (
	FakeStockRefusal       = "I'm sorry, but that doesn't seem to be a real stock or company. I can only provide information on publicly listed entities."
	OffTopicRefusal        = "I am a financial analysis assistant and can only answer questions related to stocks and companies."
	AskForCompanyMessage   = "Could you please specify which company you're asking about?"
	ChatUnavailableMessage = "Chat is unavailable because no language model is configured. Set an AI provider API key to enable it."
	EmptyQuestionMessage   = "Please ask a question about a stock or company."
	UnverifiedFigures      = "I can only quote figures from analysed results, and I could not verify the numbers in that answer. Try asking about a company from the latest results."
)

// AnalysisReader is the read side of the pipeline used to ground chat answers.
type AnalysisReader interface {
	LatestForSymbol(ctx context.Context, symbol string) (*entity.AnalysisRecord, error)
	KnowledgeBase(ctx context.Context, maxChars int) (string, error)
}

// ChatGuardrailService answers questions without letting the model invent figures.
type ChatGuardrailService interface {
	// Triage classifies a question. It fails closed to OFF_TOPIC.
	Triage(ctx context.Context, question string) entity.TriageResult
	// Respond answers the last user turn of transcript, grounded on the latest
	// analysis of the symbol the question is about.
	Respond(ctx context.Context, transcript []entity.ChatTurn, symbolHint string) (string, error)
	// RespondWithKnowledgeBase answers with every stored analysis as context.
	RespondWithKnowledgeBase(ctx context.Context, transcript []entity.ChatTurn) (string, error)
}

// ChatGuardrailConfig bounds the context injected into answering calls.
type ChatGuardrailConfig struct {
	MaxContextChars   int
	MaxKnowledgeChars int
}

// NewChatGuardrailService creates a new ChatGuardrailService. When triage is nil
// the answering model is used for classification too.
func NewChatGuardrailService(
	triage, answer repository.AIRepository,
	analyses AnalysisReader,
	cfg ChatGuardrailConfig,
	log *logger.Logger,
) ChatGuardrailService {
	if triage == nil {
		triage = answer
	}
	return &chatGuardrailService{
		triageAI: triage,
		answerAI: answer,
		analyses: analyses,
		cfg:      cfg,
		logger:   log,
	}
}

type chatGuardrailService struct {
	triageAI repository.AIRepository
	answerAI repository.AIRepository
	analyses AnalysisReader
	cfg      ChatGuardrailConfig
	logger   *logger.Logger
}

func (s *chatGuardrailService) Triage(ctx context.Context, question string) entity.TriageResult {
	closed := entity.TriageResult{QueryType: entity.QueryTypeOffTopic}
	if s.triageAI == nil {
		return closed
	}

	raw, err := s.triageAI.Complete(ctx, dto.CompletionRequest{
		Messages:    []entity.ChatTurn{{Role: entity.ChatRoleUser, Content: repository.BuildTriagePrompt(question)}},
		Temperature: 0.1,
		MaxTokens:   100,
		JSONMode:    true,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Query triage failed", logger.ErrorField(err))
		return closed
	}

	var res dto.TriageResult
	if err := utils.DecodeModelJSON(raw, &res); err != nil {
		s.logger.WarnContext(ctx, "Query triage returned invalid JSON", logger.ErrorField(err))
		return closed
	}

	out := entity.TriageResult{
		QueryType: entity.ParseQueryType(strings.ToUpper(strings.TrimSpace(res.QueryType))),
		Symbol:    triageSymbol(res.Symbol),
	}
	s.logger.DebugContext(ctx, "Query triaged",
		logger.StringField("query_type", string(out.QueryType)),
		logger.StringField("symbol", out.Symbol),
	)
	return out
}

func triageSymbol(raw string) string {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "", "NULL", "NONE", "N/A", "EXTRACTED_SYMBOL_OR_NULL":
		return ""
	}
	return entity.NormalizeSymbol(raw)
}

func (s *chatGuardrailService) Respond(ctx context.Context, transcript []entity.ChatTurn, symbolHint string) (string, error) {
	question := lastUserQuestion(transcript)
	if question == "" {
		return EmptyQuestionMessage, nil
	}
	if s.answerAI == nil {
		return ChatUnavailableMessage, nil
	}

	tri := s.Triage(ctx, question)
	switch tri.QueryType {
	case entity.QueryTypeFakeStock:
		return FakeStockRefusal, nil
	case entity.QueryTypeOffTopic:
		return OffTopicRefusal, nil
	}

	symbol := tri.Symbol
	if symbol == "" {
		symbol = entity.NormalizeSymbol(symbolHint)
	}
	if symbol == "" {
		return AskForCompanyMessage, nil
	}

	record, grounding := s.symbolContext(ctx, symbol)

	answer, err := s.answerAI.Complete(ctx, dto.CompletionRequest{
		SystemPrompt: repository.BuildChatSystemPrompt(grounding),
		Messages:     transcript,
		Temperature:  0.2,
		MaxTokens:    300,
	})
	if err != nil {
		return "", fmt.Errorf("failed to answer question: %w", err)
	}
	answer = strings.TrimSpace(answer)

	if record == nil {
		return answer, nil
	}
	answer = stripGeneralKnowledgePrefix(answer)
	if answer == "" || hasUnverifiedFigures(answer, grounding) {
		s.logger.WarnContext(ctx, "Answer quoted unverified figures, replacing with summary", logger.StringField("symbol", symbol))
		return VerifiedSummary(record), nil
	}
	return answer, nil
}

// symbolContext loads the latest record for symbol and renders it as bounded
// context. It returns a nil record when none exists.
func (s *chatGuardrailService) symbolContext(ctx context.Context, symbol string) (*entity.AnalysisRecord, string) {
	if s.analyses == nil {
		return nil, ""
	}
	record, err := s.analyses.LatestForSymbol(ctx, symbol)
	if err != nil {
		if !errors.Is(err, entity.ErrNotFound) {
			s.logger.WarnContext(ctx, "Failed to load analysis for chat", logger.StringField("symbol", symbol), logger.ErrorField(err))
		}
		return nil, ""
	}

	data, err := json.Marshal(record)
	if err != nil {
		return nil, ""
	}
	return record, utils.Truncate(fmt.Sprintf("Latest analysis for %s: %s", symbol, data), s.cfg.MaxContextChars)
}

func (s *chatGuardrailService) RespondWithKnowledgeBase(ctx context.Context, transcript []entity.ChatTurn) (string, error) {
	if lastUserQuestion(transcript) == "" {
		return EmptyQuestionMessage, nil
	}
	if s.answerAI == nil {
		return ChatUnavailableMessage, nil
	}

	kb := "[]"
	if s.analyses != nil {
		loaded, err := s.analyses.KnowledgeBase(ctx, s.cfg.MaxKnowledgeChars)
		if err != nil {
			s.logger.WarnContext(ctx, "Failed to build knowledge base", logger.ErrorField(err))
		} else {
			kb = loaded
		}
	}

	answer, err := s.answerAI.Complete(ctx, dto.CompletionRequest{
		SystemPrompt: repository.BuildChatSystemPrompt(kb),
		Messages:     transcript,
		Temperature:  0.2,
		MaxTokens:    300,
	})
	if err != nil {
		return "", fmt.Errorf("failed to answer question: %w", err)
	}
	answer = strings.TrimSpace(answer)

	disclaimed := strings.HasPrefix(answer, repository.GeneralKnowledgePrefix)
	if (!disclaimed || mentionsCompany(answer, kb)) && hasUnverifiedFigures(answer, kb) {
		s.logger.WarnContext(ctx, "Answer quoted figures outside the knowledge base")
		return UnverifiedFigures, nil
	}
	return answer, nil
}

// lastUserQuestion returns the content of the final turn when it is from the user.
func lastUserQuestion(transcript []entity.ChatTurn) string {
	if len(transcript) == 0 {
		return ""
	}
	last := transcript[len(transcript)-1]
	if last.Role != entity.ChatRoleUser {
		return ""
	}
	return strings.TrimSpace(last.Content)
}
