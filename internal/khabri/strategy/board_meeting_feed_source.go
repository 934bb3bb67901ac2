package strategy

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"market-khabri/internal/entity"
	"market-khabri/pkg/logger"
	"market-khabri/pkg/utils"

	"github.com/mmcdole/gofeed"
)

var (
	feedMeetingDatePattern = regexp.MustCompile(`(?i)meeting date\D{0,5}(\d{1,2}-[A-Za-z]{3}-\d{4})`)
	feedDatePattern        = regexp.MustCompile(`\b(\d{1,2}-[A-Za-z]{3}-\d{4})\b`)
	feedSymbolPattern      = regexp.MustCompile(`^[A-Z0-9&\-]+`)
)

// BoardMeetingFeedSource reads the exchange board-meetings RSS feed and keeps
// meetings convened to approve financial results.
type BoardMeetingFeedSource struct {
	feedURL string
	parser  *gofeed.Parser
	logger  *logger.Logger
	now     func() time.Time
}

// NewBoardMeetingFeedSource creates a new instance of BoardMeetingFeedSource.
func NewBoardMeetingFeedSource(feedURL string, timeout time.Duration, log *logger.Logger) *BoardMeetingFeedSource {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	parser.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

	return &BoardMeetingFeedSource{feedURL: feedURL, parser: parser, logger: log, now: utils.TimeNowIST}
}

func (s *BoardMeetingFeedSource) Name() string {
	return "board_meetings_rss"
}

// Fetch parses the feed. Item titles start with the symbol; the meeting date is
// the "Meeting Date" in the description, any dd-Mon-yyyy date, or the publish date.
func (s *BoardMeetingFeedSource) Fetch(ctx context.Context) ([]entity.ResultEvent, error) {
	if s.feedURL == "" {
		return nil, fmt.Errorf("no board meetings feed configured: %w", entity.ErrStrategyDeclined)
	}

	feed, err := s.parser.ParseURLWithContext(s.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse board meetings feed: %w: %v", entity.ErrSourceUnavailable, err)
	}

	today := utils.StartOfDay(s.now())
	seen := make(map[string]bool)
	var events []entity.ResultEvent
	for _, item := range feed.Items {
		text := strings.ToLower(item.Title + " " + item.Description)
		if !strings.Contains(text, "result") {
			continue
		}

		symbol := feedSymbolPattern.FindString(strings.ToUpper(strings.TrimSpace(item.Title)))
		if symbol == "" || seen[symbol] {
			continue
		}

		date, ok := feedItemDate(item, today.Location())
		if !ok || date.Before(today) {
			continue
		}

		seen[symbol] = true
		events = append(events, entity.ResultEvent{
			CompanySymbol: symbol,
			CompanyName:   entity.CompanyName(symbol),
			ResultDate:    date,
			Quarter:       entity.QuarterOf(date),
			FinancialYear: entity.FinancialYearOf(date),
		})
	}

	if len(events) == 0 {
		return nil, fmt.Errorf("no result meetings in feed: %w", entity.ErrSourceUnavailable)
	}
	return events, nil
}

func feedItemDate(item *gofeed.Item, loc *time.Location) (time.Time, bool) {
	for _, re := range []*regexp.Regexp{feedMeetingDatePattern, feedDatePattern} {
		if m := re.FindStringSubmatch(item.Description); m != nil {
			if t, ok := parseNSEDate(m[1], loc); ok {
				return t, true
			}
		}
	}
	if item.PublishedParsed != nil {
		return utils.StartOfDay(item.PublishedParsed.In(loc)), true
	}
	return time.Time{}, false
}
