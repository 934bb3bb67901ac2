package repository

import (
	"context"
	"fmt"

	"market-khabri/internal/khabri/config"
	"market-khabri/pkg/logger"

	"google.golang.org/genai"
)

// AIRepositories bundles the two models the service uses. Both are nil when
// no provider is configured, which disables every generative strategy.
type AIRepositories struct {
	// Main handles extraction, insight generation and answering.
	Main AIRepository
	// Fast handles query triage.
	Fast AIRepository
}

// Enabled reports whether a language model is configured.
func (a AIRepositories) Enabled() bool {
	return a.Main != nil
}

// NewAIRepositories builds the configured provider. Missing credentials are not an error.
func NewAIRepositories(ctx context.Context, cfg *config.Config, log *logger.Logger) (AIRepositories, error) {
	var compat config.OpenAICompatible
	switch cfg.AI.Provider {
	case "":
		log.Warn("No AI provider configured, generative strategies disabled")
		return AIRepositories{}, nil
	case "groq":
		compat = cfg.Groq
	case "openai":
		compat = cfg.OpenAI
	case "openrouter":
		compat = cfg.OpenRouter
	case "gemini":
		return newGeminiRepositories(ctx, cfg, log)
	default:
		return AIRepositories{}, fmt.Errorf("invalid AI provider %q", cfg.AI.Provider)
	}

	if compat.APIKey == "" {
		log.Warn("AI provider has no API key, generative strategies disabled", logger.StringField("provider", cfg.AI.Provider))
		return AIRepositories{}, nil
	}

	fastModel := compat.FastModel
	if fastModel == "" {
		fastModel = compat.Model
	}

	build := func(model string) AIRepository {
		return NewOpenAICompatibleRepository(OpenAICompatibleConfig{
			Provider:            cfg.AI.Provider,
			APIKey:              compat.APIKey,
			BaseURL:             compat.BaseURL,
			Model:               model,
			MaxRequestPerMinute: compat.MaxRequestPerMinute,
			Timeout:             cfg.AI.Timeout,
		}, log)
	}

	return AIRepositories{Main: build(compat.Model), Fast: build(fastModel)}, nil
}

func newGeminiRepositories(ctx context.Context, cfg *config.Config, log *logger.Logger) (AIRepositories, error) {
	if cfg.Gemini.APIKey == "" {
		log.Warn("Gemini has no API key, generative strategies disabled")
		return AIRepositories{}, nil
	}

	genAiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return AIRepositories{}, fmt.Errorf("failed to initialize Gemini AI client: %w", err)
	}

	fastModel := cfg.Gemini.FastModel
	if fastModel == "" {
		fastModel = cfg.Gemini.Model
	}

	return AIRepositories{
		Main: NewGeminiAIRepository(genAiClient, cfg.Gemini.Model, cfg.Gemini.MaxRequestPerMinute, log),
		Fast: NewGeminiAIRepository(genAiClient, fastModel, cfg.Gemini.MaxRequestPerMinute, log),
	}, nil
}
