package repository

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"market-khabri/internal/entity"
	"market-khabri/pkg/logger"
)

const maxWebBodyBytes = 32 << 20

// WebResponse is the result of a single page or file fetch.
type WebResponse struct {
	StatusCode  int
	ContentType string
	FinalURL    string
	Body        []byte
}

// WebRepository defines the interface for fetching remote pages and documents.
type WebRepository interface {
	Get(ctx context.Context, rawURL string, timeout time.Duration) (*WebResponse, error)
}

// NewWebRepository creates a new instance of WebRepository.
func NewWebRepository(log *logger.Logger) WebRepository {
	return &webRepository{
		client: &http.Client{},
		logger: log,
	}
}

type webRepository struct {
	client *http.Client
	logger *logger.Logger
}

// Get fetches rawURL with browser-like headers. Non-2xx responses are returned
// together with an error wrapping entity.ErrSourceUnavailable.
func (r *webRepository) Get(ctx context.Context, rawURL string, timeout time.Duration) (*WebResponse, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,application/pdf,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w: %v", rawURL, entity.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxWebBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w: %v", rawURL, entity.ErrSourceUnavailable, err)
	}

	out := &WebResponse{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
		Body:        body,
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		r.logger.DebugContext(ctx, "Non-success status", logger.StringField("url", rawURL), logger.IntField("status", resp.StatusCode))
		return out, fmt.Errorf("unexpected status %d from %s: %w", resp.StatusCode, rawURL, entity.ErrSourceUnavailable)
	}

	return out, nil
}
