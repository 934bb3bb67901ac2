package config

import (
	"time"

	"market-khabri/pkg/config"
)

// Storage selects and configures the analysis store.
type Storage struct {
	Driver      string `mapstructure:"driver"` // file, redis or postgres
	DataDir     string `mapstructure:"data_dir"`
	DownloadDir string `mapstructure:"download_dir"`
}

// OpenAICompatible holds settings for providers that speak the OpenAI chat API.
type OpenAICompatible struct {
	APIKey              string `mapstructure:"api_key"`
	BaseURL             string `mapstructure:"base_url"`
	Model               string `mapstructure:"model"`
	FastModel           string `mapstructure:"fast_model"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// Gemini holds the configuration for the Gemini API.
type Gemini struct {
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	FastModel           string `mapstructure:"fast_model"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// AI selects the language model provider. An empty provider or API key
// disables every generative strategy.
type AI struct {
	Provider string        `mapstructure:"provider"` // groq, openai, openrouter or gemini
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Pipeline holds the tuning of the acquisition and extraction stages.
type Pipeline struct {
	MaxPDFPages          int               `mapstructure:"max_pdf_pages"`
	ExcerptChars         int               `mapstructure:"excerpt_chars"`
	DefaultQuarter       string            `mapstructure:"default_quarter"`
	DefaultFinancialYear string            `mapstructure:"default_financial_year"`
	PageTimeout          time.Duration     `mapstructure:"page_timeout"`
	DownloadTimeout      time.Duration     `mapstructure:"download_timeout"`
	InvestorRelations    map[string]string `mapstructure:"investor_relations"`
}

// Calendar configures upcoming-result discovery.
type Calendar struct {
	NSEBaseURL       string        `mapstructure:"nse_base_url"`
	BoardMeetingsRSS string        `mapstructure:"board_meetings_rss"`
	Timeout          time.Duration `mapstructure:"timeout"`
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`
}

// Chat configures the chat guardrail.
type Chat struct {
	SessionTTL        time.Duration `mapstructure:"session_ttl"`
	MaxContextChars   int           `mapstructure:"max_context_chars"`
	MaxKnowledgeChars int           `mapstructure:"max_knowledge_chars"`
}

// Scheduler configures the periodic calendar refresh.
type Scheduler struct {
	Enabled             bool   `mapstructure:"enabled"`
	CalendarRefreshCron string `mapstructure:"calendar_refresh_cron"`
	AutoAnalyzeDue      bool   `mapstructure:"auto_analyze_due"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Config holds the full configuration for the khabri service.
type Config struct {
	App        config.App       `mapstructure:"app"`
	Logger     config.Logger    `mapstructure:"logger"`
	API        config.API       `mapstructure:"api"`
	Database   config.Database  `mapstructure:"database"`
	Redis      config.Redis     `mapstructure:"redis"`
	Storage    Storage          `mapstructure:"storage"`
	AI         AI               `mapstructure:"ai"`
	Groq       OpenAICompatible `mapstructure:"groq"`
	OpenAI     OpenAICompatible `mapstructure:"openai"`
	OpenRouter OpenAICompatible `mapstructure:"openrouter"`
	Gemini     Gemini           `mapstructure:"gemini"`
	Pipeline   Pipeline         `mapstructure:"pipeline"`
	Calendar   Calendar         `mapstructure:"calendar"`
	Chat       Chat             `mapstructure:"chat"`
	Scheduler  Scheduler        `mapstructure:"scheduler"`
	Telegram   Telegram         `mapstructure:"telegram"`
}

// Load loads the khabri configuration from the given path and fills unset values with defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// DefaultInvestorRelations maps symbols to their investor-relations pages.
var DefaultInvestorRelations = map[string]string{
	"TCS":      "https://www.tcs.com/investor-relations",
	"INFY":     "https://www.infosys.com/investors/reports-filings.html",
	"RELIANCE": "https://www.ril.com/InvestorRelations/FinancialReporting.aspx",
	"WIPRO":    "https://www.wipro.com/investors/quarterly-results/",
}

// ApplyDefaults fills zero values. It is safe to call on a zero Config.
func (c *Config) ApplyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "market-khabri"
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.API.Port == 0 {
		c.API.Port = 8000
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "file"
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "data"
	}
	if c.Storage.DownloadDir == "" {
		c.Storage.DownloadDir = "data/pdfs"
	}
	if c.AI.Timeout == 0 {
		c.AI.Timeout = 60 * time.Second
	}
	if c.Groq.BaseURL == "" {
		c.Groq.BaseURL = "https://api.groq.com/openai/v1"
	}
	if c.Groq.Model == "" {
		c.Groq.Model = "llama-3.3-70b-versatile"
	}
	if c.Groq.FastModel == "" {
		c.Groq.FastModel = "llama-3.1-8b-instant"
	}
	if c.OpenRouter.BaseURL == "" {
		c.OpenRouter.BaseURL = "https://openrouter.ai/api/v1"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.0-flash"
	}
	if c.Pipeline.MaxPDFPages == 0 {
		c.Pipeline.MaxPDFPages = 5
	}
	if c.Pipeline.ExcerptChars == 0 {
		c.Pipeline.ExcerptChars = 3000
	}
	if c.Pipeline.PageTimeout == 0 {
		c.Pipeline.PageTimeout = 10 * time.Second
	}
	if c.Pipeline.DownloadTimeout == 0 {
		c.Pipeline.DownloadTimeout = 30 * time.Second
	}
	if len(c.Pipeline.InvestorRelations) == 0 {
		c.Pipeline.InvestorRelations = DefaultInvestorRelations
	}
	if c.Calendar.NSEBaseURL == "" {
		c.Calendar.NSEBaseURL = "https://www.nseindia.com"
	}
	if c.Calendar.Timeout == 0 {
		c.Calendar.Timeout = 10 * time.Second
	}
	if c.Calendar.CacheTTL == 0 {
		c.Calendar.CacheTTL = 30 * time.Minute
	}
	if c.Chat.SessionTTL == 0 {
		c.Chat.SessionTTL = 24 * time.Hour
	}
	if c.Chat.MaxContextChars == 0 {
		c.Chat.MaxContextChars = 4000
	}
	if c.Chat.MaxKnowledgeChars == 0 {
		c.Chat.MaxKnowledgeChars = 12000
	}
	if c.Scheduler.CalendarRefreshCron == "" {
		c.Scheduler.CalendarRefreshCron = "*/30 * * * *"
	}
}
