package app

import (
	"context"
	"fmt"

	"market-khabri/internal/entity"
	"market-khabri/internal/khabri/config"
	"market-khabri/internal/khabri/repository"
	"market-khabri/internal/khabri/service"
	"market-khabri/internal/khabri/strategy"
	"market-khabri/pkg/logger"
	"market-khabri/pkg/telegram"
	"market-khabri/pkg/utils"
)

// App holds the wired services shared by the API server and the CLI.
type App struct {
	Config    *config.Config
	Store     repository.AnalysisStore
	AI        repository.AIRepositories
	Dates     service.DateDiscoveryService
	Pipeline  service.PipelineService
	Insights  service.InsightService
	Chat      service.ChatService
	Refresher *service.CalendarRefreshService
}

// New wires every component from cfg. The returned closer releases the store.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, func(), error) {
	store, closeStore, err := repository.NewAnalysisStoreFromConfig(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	ai, err := repository.NewAIRepositories(ctx, cfg, log)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	notifier, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if err != nil {
		log.Warn("Telegram notifications disabled", logger.ErrorField(err))
		notifier = nil
	}

	period := reportingPeriod(cfg)

	sources := []strategy.CalendarSource{
		strategy.NewNSECalendarSource(cfg.Calendar.NSEBaseURL, cfg.Calendar.Timeout, log),
		strategy.NewBoardMeetingFeedSource(cfg.Calendar.BoardMeetingsRSS, cfg.Calendar.Timeout, log),
	}
	dates := service.NewDateDiscoveryService(sources, store, cfg.Calendar.CacheTTL, nil, log)

	web := repository.NewWebRepository(log)
	acquisition := service.NewDocumentAcquisitionService([]strategy.AcquisitionStrategy{
		strategy.NewOfficialSiteStrategy(web, log, cfg.Pipeline.InvestorRelations, cfg.Storage.DownloadDir, cfg.Pipeline.PageTimeout, cfg.Pipeline.DownloadTimeout),
		strategy.NewExchangeAnnouncementStrategy(log),
		strategy.NewSyntheticDocumentStrategy(),
	}, log)

	var extractors []strategy.ExtractionStrategy
	if ai.Enabled() {
		extractors = append(extractors, strategy.NewLLMExtractionStrategy(ai.Main, log, cfg.Pipeline.ExcerptChars, period))
	}
	extractors = append(extractors, strategy.NewRegexExtractionStrategy(period))
	extraction := service.NewFieldExtractionService(
		repository.NewDocumentTextRepository(log),
		extractors,
		service.NewSyntheticFinancials(nil, period),
		cfg.Pipeline.MaxPDFPages,
		log,
	)

	insights := service.NewInsightService(ai.Main, log)
	pipeline := service.NewPipelineService(acquisition, extraction, insights, store, notifier, log)

	guardrail := service.NewChatGuardrailService(ai.Fast, ai.Main, pipeline, service.ChatGuardrailConfig{
		MaxContextChars:   cfg.Chat.MaxContextChars,
		MaxKnowledgeChars: cfg.Chat.MaxKnowledgeChars,
	}, log)
	chat := service.NewChatService(guardrail, service.NewSessionStore(cfg.Chat.SessionTTL), log)

	refresher := service.NewCalendarRefreshService(dates, pipeline, cfg.Scheduler.CalendarRefreshCron, cfg.Scheduler.AutoAnalyzeDue, log)

	log.Info("Components wired",
		logger.StringField("storage", cfg.Storage.Driver),
		logger.StringField("insight_mode", insights.Mode()),
		logger.Field("ai_enabled", ai.Enabled()),
		logger.Field("telegram_enabled", notifier != nil),
	)

	return &App{
		Config:    cfg,
		Store:     store,
		AI:        ai,
		Dates:     dates,
		Pipeline:  pipeline,
		Insights:  insights,
		Chat:      chat,
		Refresher: refresher,
	}, closeStore, nil
}

// Agents reports the state of each pipeline stage for the health endpoint.
func (a *App) Agents() map[string]string {
	parser := "regex"
	chat := "disabled"
	if a.AI.Enabled() {
		parser = "llm+regex"
		chat = "active"
	}
	return map[string]string{
		"scraper":  "active",
		"fetcher":  "active",
		"parser":   parser,
		"analyzer": a.Insights.Mode(),
		"chat":     chat,
	}
}

// reportingPeriod returns the configured period label, or the most recently
// reported quarter when none is configured.
func reportingPeriod(cfg *config.Config) func() entity.Period {
	q := entity.Quarter(cfg.Pipeline.DefaultQuarter)
	fy := cfg.Pipeline.DefaultFinancialYear
	if q.IsValid() && fy != "" {
		fixed := entity.Period{Quarter: q, FinancialYear: fy}
		return func() entity.Period { return fixed }
	}
	return func() entity.Period { return entity.LastReportedPeriod(utils.TimeNowIST()) }
}

// String describes the wiring for CLI output.
func (a *App) String() string {
	return fmt.Sprintf("storage=%s insights=%s ai=%t", a.Config.Storage.Driver, a.Insights.Mode(), a.AI.Enabled())
}
