package repository

import (
	"context"
	"fmt"
	"strings"

	"market-khabri/internal/entity"
	"market-khabri/internal/khabri/dto"
	"market-khabri/pkg/logger"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// geminiAIRepository is an implementation of AIRepository that uses the Google Gemini API.
type geminiAIRepository struct {
	genAiClient    *genai.Client
	model          string
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

// NewGeminiAIRepository creates a new instance of geminiAIRepository.
func NewGeminiAIRepository(genAiClient *genai.Client, model string, maxRequestPerMinute int, log *logger.Logger) AIRepository {
	return &geminiAIRepository{
		genAiClient:    genAiClient,
		model:          model,
		logger:         log,
		requestLimiter: newRequestLimiter(maxRequestPerMinute),
	}
}

func (r *geminiAIRepository) Name() string {
	return "gemini/" + r.model
}

// Complete sends the transcript to Gemini. Assistant turns map to the model role.
func (r *geminiAIRepository) Complete(ctx context.Context, req dto.CompletionRequest) (string, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("failed to wait for request limit: %w", err)
	}

	model := r.model
	if req.Model != "" {
		model = req.Model
	}

	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := genai.RoleUser
		if m.Role == entity.ChatRoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, genai.Role(role)))
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(req.Temperature),
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.SystemPrompt != "" {
		genCfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.SystemPrompt}}}
	}
	if req.JSONMode {
		genCfg.ResponseMIMEType = "application/json"
	}

	result, err := r.genAiClient.Models.GenerateContent(ctx, model, contents, genCfg)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to generate content", logger.ErrorField(err), logger.StringField("model", model))
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("empty gemini response")
	}
	return text, nil
}
