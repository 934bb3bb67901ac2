package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"market-khabri/pkg/logger"
	"market-khabri/pkg/utils"

	"github.com/robfig/cron/v3"
)

// CalendarRefreshService periodically refreshes the upcoming-results calendar
// and can analyse companies whose results are due today.
type CalendarRefreshService struct {
	dates       DateDiscoveryService
	pipeline    PipelineService
	schedule    string
	autoAnalyze bool
	logger      *logger.Logger
	now         func() time.Time

	cron *cron.Cron

	mu       sync.Mutex
	analyzed map[string]string
}

// NewCalendarRefreshService creates a refresher running on the given cron schedule.
func NewCalendarRefreshService(dates DateDiscoveryService, pipeline PipelineService, schedule string, autoAnalyze bool, log *logger.Logger) *CalendarRefreshService {
	return &CalendarRefreshService{
		dates:       dates,
		pipeline:    pipeline,
		schedule:    schedule,
		autoAnalyze: autoAnalyze,
		logger:      log,
		now:         utils.TimeNowIST,
		cron:        cron.New(),
		analyzed:    make(map[string]string),
	}
}

// Start registers the refresh job and starts the cron scheduler. The scheduler
// stops when ctx is done.
func (s *CalendarRefreshService) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.schedule, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid calendar refresh schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()
	s.logger.Info("Calendar refresher started", logger.StringField("schedule", s.schedule))

	go func() {
		<-ctx.Done()
		<-s.cron.Stop().Done()
		s.logger.Info("Calendar refresher stopped")
	}()
	return nil
}

// RunOnce refreshes the calendar and, when enabled, analyses events dated today.
// It returns the symbols analysed in this run.
func (s *CalendarRefreshService) RunOnce(ctx context.Context) []string {
	events := s.dates.Refresh(ctx)
	s.logger.InfoContext(ctx, "Calendar refreshed", logger.IntField("events", len(events)))
	if !s.autoAnalyze || s.pipeline == nil {
		return nil
	}

	today := s.now().Format("2006-01-02")
	var done []string
	for _, e := range events {
		if e.Date() != today || !s.claim(e.CompanySymbol, today) {
			continue
		}
		if _, err := s.pipeline.Run(ctx, e.CompanySymbol); err != nil {
			s.release(e.CompanySymbol)
			s.logger.WarnContext(ctx, "Scheduled analysis failed",
				logger.StringField("symbol", e.CompanySymbol),
				logger.ErrorField(err),
			)
			continue
		}
		done = append(done, e.CompanySymbol)
	}
	return done
}

// claim marks symbol as analysed for day and reports whether it was not already.
func (s *CalendarRefreshService) claim(symbol, day string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.analyzed[symbol] == day {
		return false
	}
	s.analyzed[symbol] = day
	return true
}

func (s *CalendarRefreshService) release(symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.analyzed, symbol)
}
