package repository

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"market-khabri/internal/entity"
	"market-khabri/internal/khabri/dto"
	"market-khabri/pkg/logger"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// OpenAICompatibleConfig configures a provider that speaks the OpenAI chat API (Groq, OpenAI, OpenRouter).
type OpenAICompatibleConfig struct {
	Provider            string
	APIKey              string
	BaseURL             string
	Model               string
	MaxRequestPerMinute int
	Timeout             time.Duration
}

// openAICompatibleRepository is an implementation of AIRepository backed by go-openai.
type openAICompatibleRepository struct {
	client         *openai.Client
	provider       string
	model          string
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

// NewOpenAICompatibleRepository creates a new instance of openAICompatibleRepository.
func NewOpenAICompatibleRepository(cfg OpenAICompatibleConfig, log *logger.Logger) AIRepository {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	return &openAICompatibleRepository{
		client:         openai.NewClientWithConfig(clientCfg),
		provider:       cfg.Provider,
		model:          cfg.Model,
		logger:         log,
		requestLimiter: newRequestLimiter(cfg.MaxRequestPerMinute),
	}
}

func (r *openAICompatibleRepository) Name() string {
	return r.provider + "/" + r.model
}

// Complete performs a chat completion request.
func (r *openAICompatibleRepository) Complete(ctx context.Context, req dto.CompletionRequest) (string, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("failed to wait for request limit: %w", err)
	}

	model := r.model
	if req.Model != "" {
		model = req.Model
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == entity.ChatRoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSONMode {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	r.logger.DebugContext(ctx, "Request chat completion",
		logger.StringField("provider", r.provider),
		logger.StringField("model", model),
		logger.IntField("messages", len(messages)),
	)

	resp, err := r.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in %s response", r.provider)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func newRequestLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}
