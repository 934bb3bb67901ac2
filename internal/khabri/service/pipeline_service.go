package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"market-khabri/internal/entity"
	"market-khabri/internal/khabri/repository"
	"market-khabri/pkg/common"
	"market-khabri/pkg/logger"
	"market-khabri/pkg/telegram"
	"market-khabri/pkg/utils"
)

const DefaultLatestLimit = 10

// PipelineService runs acquisition, extraction and insight generation for a
// company and reads back persisted analyses.
type PipelineService interface {
	Run(ctx context.Context, symbol string) (*entity.AnalysisRecord, error)
	// Latest returns up to limit records, most recently modified first.
	Latest(ctx context.Context, limit int) ([]entity.AnalysisRecord, error)
	// LatestForSymbol returns entity.ErrNotFound when the symbol was never analysed.
	LatestForSymbol(ctx context.Context, symbol string) (*entity.AnalysisRecord, error)
	// KnowledgeBase renders every stored record, newest first, as a JSON array of at most maxChars.
	KnowledgeBase(ctx context.Context, maxChars int) (string, error)
}

// NewPipelineService creates a new PipelineService. notifier may be nil.
func NewPipelineService(
	acquisition DocumentAcquisitionService,
	extraction FieldExtractionService,
	insights InsightService,
	store repository.AnalysisStore,
	notifier telegram.Notifier,
	log *logger.Logger,
) PipelineService {
	return &pipelineService{
		acquisition: acquisition,
		extraction:  extraction,
		insights:    insights,
		store:       store,
		notifier:    notifier,
		logger:      log,
		now:         time.Now,
	}
}

type pipelineService struct {
	acquisition DocumentAcquisitionService
	extraction  FieldExtractionService
	insights    InsightService
	store       repository.AnalysisStore
	notifier    telegram.Notifier
	logger      *logger.Logger
	now         func() time.Time
}

// AnalysisKey is the store key of a record for symbol completed at t.
func AnalysisKey(symbol string, t time.Time) string {
	return common.AnalysisKeyPrefix + symbol + "_" + t.UTC().Format(common.AnalysisKeyTimeLayout) + ".json"
}

func (s *pipelineService) Run(ctx context.Context, symbol string) (*entity.AnalysisRecord, error) {
	symbol = entity.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("empty symbol: %w", entity.ErrNotFound)
	}

	start := s.now()
	s.logger.InfoContext(ctx, "Starting analysis", logger.StringField("symbol", symbol))

	doc, err := s.acquisition.Acquire(ctx, symbol)
	if err != nil {
		return nil, err
	}

	rec, err := s.extraction.Extract(ctx, doc, symbol)
	if err != nil {
		return nil, err
	}
	if !rec.HasRevenue() {
		return nil, fmt.Errorf("no figures extracted for %s: %w", symbol, entity.ErrNotFound)
	}

	ins := s.insights.Generate(ctx, rec, symbol)

	completedAt := s.now().UTC()
	record := entity.NewAnalysisRecord(symbol, rec, ins, completedAt)

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis for %s: %w: %v", symbol, entity.ErrPipelineExhausted, err)
	}
	if err := s.store.Write(ctx, AnalysisKey(symbol, completedAt), data); err != nil {
		return nil, fmt.Errorf("failed to persist analysis for %s: %w: %v", symbol, entity.ErrPipelineExhausted, err)
	}

	s.logger.InfoContext(ctx, "Analysis complete",
		logger.StringField("symbol", symbol),
		logger.StringField("source", string(record.Source)),
		logger.DurationField("elapsed", completedAt.Sub(start)),
	)
	s.notify(record)
	return record, nil
}

func (s *pipelineService) notify(record *entity.AnalysisRecord) {
	if s.notifier == nil {
		return
	}
	text := telegram.FormatAnalysisForTelegram(record)
	utils.GoSafe(s.logger, func() {
		if err := s.notifier.SendMessage(text); err != nil {
			s.logger.Warn("Failed to send telegram notification",
				logger.StringField("symbol", record.CompanySymbol),
				logger.ErrorField(err),
			)
		}
	})
}

func (s *pipelineService) Latest(ctx context.Context, limit int) ([]entity.AnalysisRecord, error) {
	if limit <= 0 {
		limit = DefaultLatestLimit
	}
	keys, err := s.keysByRecency(ctx)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, keys, limit), nil
}

// keysByRecency lists analysis keys ordered by modification time, newest first.
func (s *pipelineService) keysByRecency(ctx context.Context) ([]string, error) {
	keys, err := s.store.List(ctx, common.AnalysisKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}

	type keyed struct {
		key string
		mod time.Time
	}
	items := make([]keyed, 0, len(keys))
	for _, k := range keys {
		if !strings.HasSuffix(k, ".json") {
			continue
		}
		mod, err := s.store.ModTime(ctx, k)
		if err != nil {
			s.logger.WarnContext(ctx, "Failed to stat analysis", logger.StringField("key", k), logger.ErrorField(err))
			continue
		}
		items = append(items, keyed{key: k, mod: mod})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].mod.Equal(items[j].mod) {
			return items[i].key > items[j].key
		}
		return items[i].mod.After(items[j].mod)
	})

	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.key
	}
	return out, nil
}

// load decodes up to limit records from keys in order, skipping unreadable ones.
func (s *pipelineService) load(ctx context.Context, keys []string, limit int) []entity.AnalysisRecord {
	records := make([]entity.AnalysisRecord, 0, limit)
	for _, k := range keys {
		if len(records) == limit {
			break
		}
		rec, err := s.read(ctx, k)
		if err != nil {
			s.logger.WarnContext(ctx, "Skipping unreadable analysis", logger.StringField("key", k), logger.ErrorField(err))
			continue
		}
		records = append(records, *rec)
	}
	return records
}

func (s *pipelineService) read(ctx context.Context, key string) (*entity.AnalysisRecord, error) {
	data, err := s.store.Read(ctx, key)
	if err != nil {
		return nil, err
	}
	var rec entity.AnalysisRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return &rec, nil
}

func (s *pipelineService) LatestForSymbol(ctx context.Context, symbol string) (*entity.AnalysisRecord, error) {
	symbol = entity.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("empty symbol: %w", entity.ErrNotFound)
	}

	keys, err := s.store.List(ctx, common.AnalysisKeyPrefix+symbol+"_")
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses for %s: %w", symbol, err)
	}
	// Fixed-width UTC timestamps make lexicographic order chronological.
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	for _, k := range keys {
		rec, err := s.read(ctx, k)
		if err != nil {
			if errors.Is(err, entity.ErrNotFound) {
				continue
			}
			s.logger.WarnContext(ctx, "Skipping unreadable analysis", logger.StringField("key", k), logger.ErrorField(err))
			continue
		}
		return rec, nil
	}
	return nil, fmt.Errorf("no analysis for %s: %w", symbol, entity.ErrNotFound)
}

func (s *pipelineService) KnowledgeBase(ctx context.Context, maxChars int) (string, error) {
	keys, err := s.keysByRecency(ctx)
	if err != nil {
		return "", err
	}
	records := s.load(ctx, keys, len(keys))

	var sb strings.Builder
	sb.WriteString("[")
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			continue
		}
		sep := 0
		if sb.Len() > 1 {
			sep = 1
		}
		if maxChars > 0 && sb.Len()+sep+len(data)+1 > maxChars {
			break
		}
		if sep == 1 {
			sb.WriteString(",")
		}
		sb.Write(data)
	}
	sb.WriteString("]")
	return sb.String(), nil
}
