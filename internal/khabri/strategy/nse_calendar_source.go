package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"market-khabri/internal/entity"
	"market-khabri/internal/khabri/dto"
	"market-khabri/pkg/logger"
	"market-khabri/pkg/utils"

	"github.com/go-resty/resty/v2"
)

var nseDateLayouts = []string{"02-Jan-2006", "2-Jan-2006", "2006-01-02", "02-01-2006"}

// NSECalendarSource reads result announcements from the NSE corporate-actions API.
// The API rejects requests without session cookies, so the home page is loaded first.
type NSECalendarSource struct {
	client *resty.Client
	logger *logger.Logger
	now    func() time.Time
}

// NewNSECalendarSource creates a new instance of NSECalendarSource.
func NewNSECalendarSource(baseURL string, timeout time.Duration, log *logger.Logger) *NSECalendarSource {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeaders(map[string]string{
			"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
			"Accept":          "application/json, text/plain, */*",
			"Accept-Language": "en-US,en;q=0.9",
			"Referer":         strings.TrimRight(baseURL, "/") + "/",
		})

	return &NSECalendarSource{client: client, logger: log, now: utils.TimeNowIST}
}

func (s *NSECalendarSource) Name() string {
	return "nse_corporate_actions"
}

// Fetch returns today's and future result announcements, unsorted.
func (s *NSECalendarSource) Fetch(ctx context.Context) ([]entity.ResultEvent, error) {
	if _, err := s.client.R().SetContext(ctx).Get("/"); err != nil {
		return nil, fmt.Errorf("failed to prime NSE session: %w: %v", entity.ErrSourceUnavailable, err)
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("index", "equities").
		Get("/api/corporates-corporateActions")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch corporate actions: %w: %v", entity.ErrSourceUnavailable, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("corporate actions returned status %d: %w", resp.StatusCode(), entity.ErrSourceUnavailable)
	}

	var rows []dto.NSECorporateAction
	if err := json.Unmarshal(resp.Body(), &rows); err != nil {
		return nil, fmt.Errorf("malformed corporate actions payload: %w: %v", entity.ErrSourceUnavailable, err)
	}

	today := utils.StartOfDay(s.now())
	events := make([]entity.ResultEvent, 0, len(rows))
	for _, row := range rows {
		if !strings.Contains(strings.ToLower(row.Subject), "result") {
			continue
		}
		date, ok := parseNSEDate(row.ExDate, today.Location())
		if !ok || date.Before(today) {
			continue
		}

		symbol := strings.ToUpper(strings.TrimSpace(row.Symbol))
		name := strings.TrimSpace(row.Company)
		if name == "" {
			name = entity.CompanyName(symbol)
		}
		events = append(events, entity.ResultEvent{
			CompanySymbol: symbol,
			CompanyName:   name,
			ResultDate:    date,
			Quarter:       entity.QuarterOf(date),
			FinancialYear: entity.FinancialYearOf(date),
		})
	}

	if len(events) == 0 {
		return nil, fmt.Errorf("no upcoming result announcements: %w", entity.ErrSourceUnavailable)
	}

	s.logger.DebugContext(ctx, "Fetched NSE result announcements", logger.IntField("count", len(events)))
	return events, nil
}

func parseNSEDate(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range nseDateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
