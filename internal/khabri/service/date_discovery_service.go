package service

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"market-khabri/internal/entity"
	"market-khabri/internal/khabri/repository"
	"market-khabri/internal/khabri/strategy"
	"market-khabri/pkg/common"
	"market-khabri/pkg/logger"
	"market-khabri/pkg/utils"

	"github.com/patrickmn/go-cache"
)

const (
	DefaultUpcomingLimit = 20
	upcomingCacheKey     = "upcoming"
	syntheticHorizonDays = 30
)

// DateDiscoveryService lists upcoming result announcements.
type DateDiscoveryService interface {
	// ListUpcoming returns at most limit events sorted by date, serving from cache when warm.
	ListUpcoming(ctx context.Context, limit int) []entity.ResultEvent
	// Refresh bypasses the cache and re-queries the calendar sources.
	Refresh(ctx context.Context) []entity.ResultEvent
}

// NewDateDiscoveryService creates a new DateDiscoveryService. store may be nil,
// in which case calendar snapshots are not persisted.
func NewDateDiscoveryService(sources []strategy.CalendarSource, store repository.AnalysisStore, cacheTTL time.Duration, rnd Random, log *logger.Logger) DateDiscoveryService {
	if rnd == nil {
		rnd = DefaultRandom
	}
	return &dateDiscoveryService{
		sources: sources,
		store:   store,
		cache:   cache.New(cacheTTL, 2*cacheTTL),
		rnd:     rnd,
		logger:  log,
		now:     utils.TimeNowIST,
	}
}

type dateDiscoveryService struct {
	sources []strategy.CalendarSource
	store   repository.AnalysisStore
	cache   *cache.Cache
	rnd     Random
	logger  *logger.Logger
	now     func() time.Time
}

func (s *dateDiscoveryService) ListUpcoming(ctx context.Context, limit int) []entity.ResultEvent {
	if cached, ok := s.cache.Get(upcomingCacheKey); ok {
		return limitEvents(cached.([]entity.ResultEvent), limit)
	}
	return limitEvents(s.Refresh(ctx), limit)
}

func (s *dateDiscoveryService) Refresh(ctx context.Context) []entity.ResultEvent {
	events := s.fetchLive(ctx)
	if len(events) == 0 {
		s.logger.InfoContext(ctx, "No live result dates, generating demo calendar")
		events = s.synthetic()
	}
	sortEvents(events)

	s.cache.SetDefault(upcomingCacheKey, events)
	s.persist(ctx, events)
	return events
}

// fetchLive returns the events of the first source that yields any.
func (s *dateDiscoveryService) fetchLive(ctx context.Context) []entity.ResultEvent {
	for _, src := range s.sources {
		events, err := src.Fetch(ctx)
		if err != nil {
			if strategy.IsDeclined(err) {
				s.logger.DebugContext(ctx, "Calendar source declined", logger.StringField("source", src.Name()))
			} else {
				s.logger.WarnContext(ctx, "Calendar source failed", logger.StringField("source", src.Name()), logger.ErrorField(err))
			}
			continue
		}
		if len(events) > 0 {
			s.logger.InfoContext(ctx, "Fetched result dates",
				logger.StringField("source", src.Name()),
				logger.IntField("count", len(events)),
			)
			return events
		}
	}
	return nil
}

// synthetic builds one event per roster company within the next month. Quarters
// rotate starting from the current calendar quarter.
func (s *dateDiscoveryService) synthetic() []entity.ResultEvent {
	now := s.now()
	today := utils.StartOfDay(now)
	base := entity.CalendarQuarterIndex(now)

	events := make([]entity.ResultEvent, 0, len(entity.CompanyRoster))
	for i, c := range entity.CompanyRoster {
		date := today.AddDate(0, 0, 1+s.rnd.IntN(syntheticHorizonDays))
		events = append(events, entity.ResultEvent{
			CompanySymbol: c.Symbol,
			CompanyName:   c.Name,
			ResultDate:    date,
			Quarter:       entity.Quarters[(base+i%4)%4],
			FinancialYear: entity.FinancialYearOf(date),
		})
	}
	return events
}

func (s *dateDiscoveryService) persist(ctx context.Context, events []entity.ResultEvent) {
	if s.store == nil {
		return
	}
	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to encode calendar snapshot", logger.ErrorField(err))
		return
	}
	if err := s.store.Write(ctx, common.UpcomingDatesKey, data); err != nil {
		s.logger.WarnContext(ctx, "Failed to persist calendar snapshot", logger.ErrorField(err))
	}
}

func sortEvents(events []entity.ResultEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].ResultDate.Before(events[j].ResultDate)
	})
}

func limitEvents(events []entity.ResultEvent, limit int) []entity.ResultEvent {
	if limit <= 0 {
		limit = DefaultUpcomingLimit
	}
	if len(events) > limit {
		events = events[:limit]
	}
	out := make([]entity.ResultEvent, len(events))
	copy(out, events)
	return out
}
