package repository

import (
	"context"

	"market-khabri/internal/khabri/dto"
)

// AIRepository defines the interface for a chat-completion language model.
type AIRepository interface {
	// Complete sends one request and returns the trimmed text of the first choice.
	Complete(ctx context.Context, req dto.CompletionRequest) (string, error)
	// Name identifies the provider and model in logs.
	Name() string
}
