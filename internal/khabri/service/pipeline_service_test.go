package service

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"market-khabri/internal/entity"
	"market-khabri/internal/khabri/repository"
	"market-khabri/internal/khabri/strategy"
	"market-khabri/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newOfflinePipeline wires the real cascade with no network or model access.
func newOfflinePipeline(store repository.AnalysisStore) *pipelineService {
	log := logger.NewNop()
	acquisition := NewDocumentAcquisitionService([]strategy.AcquisitionStrategy{
		strategy.NewExchangeAnnouncementStrategy(log),
		strategy.NewSyntheticDocumentStrategy(),
	}, log)
	extraction := NewFieldExtractionService(
		repository.NewDocumentTextRepository(log),
		[]strategy.ExtractionStrategy{strategy.NewRegexExtractionStrategy(fixedPeriod)},
		NewSyntheticFinancials(rand.New(rand.NewPCG(5, 8)), fixedPeriod),
		3,
		log,
	)
	svc := NewPipelineService(acquisition, extraction, NewInsightService(nil, log), store, nil, log).(*pipelineService)
	clock := fixedNow
	svc.now = func() time.Time {
		clock = clock.Add(time.Millisecond)
		return clock
	}
	return svc
}

func TestPipeline_RunOffline(t *testing.T) {
	store := newMemStore()
	svc := newOfflinePipeline(store)

	rec, err := svc.Run(context.Background(), " tcs ")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "TCS", rec.CompanySymbol)
	assert.Equal(t, "Tata Consultancy Services", rec.CompanyName)
	assert.InDelta(t, 62600, *rec.Metrics.Revenue, 62600*0.05+0.01)
	assert.Equal(t, entity.ExtractionSourceSynthetic, rec.Source)
	assert.NotEmpty(t, rec.Insights)
	assert.GreaterOrEqual(t, len(rec.Highlights), 2)
	assert.GreaterOrEqual(t, len(rec.RedFlags), 1)

	keys, err := store.List(context.Background(), "analyses/TCS_")
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, "analyses/TCS_20251010_093000.002000000.json", keys[0])

	var stored entity.AnalysisRecord
	require.NoError(t, json.Unmarshal(store.data[keys[0]], &stored))
	assert.Equal(t, *rec.Metrics.Revenue, *stored.Metrics.Revenue)
}

func TestPipeline_RunNotFound(t *testing.T) {
	log := logger.NewNop()
	acquisition := NewDocumentAcquisitionService([]strategy.AcquisitionStrategy{
		&fakeAcquisition{name: "broken", err: errors.New("timeout")},
	}, log)
	svc := NewPipelineService(acquisition, nil, nil, newMemStore(), nil, log)

	_, err := svc.Run(context.Background(), "TCS")
	assert.ErrorIs(t, err, entity.ErrNotFound)

	_, err = svc.Run(context.Background(), "  ")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestPipeline_RunStorageFault(t *testing.T) {
	store := newMemStore()
	store.writeErr = errors.New("disk full")
	svc := newOfflinePipeline(store)

	_, err := svc.Run(context.Background(), "INFY")
	assert.ErrorIs(t, err, entity.ErrPipelineExhausted)
}

func TestPipeline_LatestForSymbolDoesNotMatchLongerSymbols(t *testing.T) {
	store := newMemStore()
	svc := newOfflinePipeline(store)

	_, err := svc.Run(context.Background(), "LT")
	require.NoError(t, err)
	second, err := svc.Run(context.Background(), "LT")
	require.NoError(t, err)
	ltim, err := svc.Run(context.Background(), "LTIM")
	require.NoError(t, err)

	got, err := svc.LatestForSymbol(context.Background(), "lt")
	require.NoError(t, err)
	assert.Equal(t, "LT", got.CompanySymbol)
	assert.Equal(t, *second.Metrics.Revenue, *got.Metrics.Revenue)
	assert.True(t, second.AnalyzedAt.Equal(got.AnalyzedAt))

	got, err = svc.LatestForSymbol(context.Background(), "LTIM")
	require.NoError(t, err)
	assert.Equal(t, *ltim.Metrics.Revenue, *got.Metrics.Revenue)

	_, err = svc.LatestForSymbol(context.Background(), "WIPRO")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestPipeline_LatestByModificationTime(t *testing.T) {
	store := newMemStore()
	svc := newOfflinePipeline(store)

	for _, sym := range []string{"TCS", "INFY", "WIPRO"} {
		_, err := svc.Run(context.Background(), sym)
		require.NoError(t, err)
	}
	require.NoError(t, store.Write(context.Background(), "analyses/broken_1.json", []byte("{")))

	latest, err := svc.Latest(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "WIPRO", latest[0].CompanySymbol)
	assert.Equal(t, "INFY", latest[1].CompanySymbol)

	all, err := svc.Latest(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestPipeline_KnowledgeBase(t *testing.T) {
	store := newMemStore()
	svc := newOfflinePipeline(store)

	kb, err := svc.KnowledgeBase(context.Background(), 1000)
	require.NoError(t, err)
	assert.Equal(t, "[]", kb)

	for _, sym := range []string{"TCS", "INFY", "WIPRO"} {
		_, err := svc.Run(context.Background(), sym)
		require.NoError(t, err)
	}

	kb, err = svc.KnowledgeBase(context.Background(), 0)
	require.NoError(t, err)
	var records []entity.AnalysisRecord
	require.NoError(t, json.Unmarshal([]byte(kb), &records))
	require.Len(t, records, 3)
	assert.Equal(t, "WIPRO", records[0].CompanySymbol)

	one, err := json.Marshal(records[0])
	require.NoError(t, err)
	kb, err = svc.KnowledgeBase(context.Background(), len(one)+2)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(kb), len(one)+2)
	require.NoError(t, json.Unmarshal([]byte(kb), &records))
	assert.Len(t, records, 1)
}

type recordingNotifier struct {
	sent chan string
}

func (n *recordingNotifier) SendMessage(text string) error {
	n.sent <- text
	return nil
}

func TestPipeline_NotifiesTelegram(t *testing.T) {
	svc := newOfflinePipeline(newMemStore())
	n := &recordingNotifier{sent: make(chan string, 1)}
	svc.notifier = n

	_, err := svc.Run(context.Background(), "TCS")
	require.NoError(t, err)

	select {
	case text := <-n.sent:
		assert.True(t, strings.Contains(text, "TCS"))
	case <-time.After(2 * time.Second):
		t.Fatal("notification not sent")
	}
}

func TestAnalysisKeyIsFixedWidth(t *testing.T) {
	a := AnalysisKey("TCS", time.Date(2025, 1, 2, 3, 4, 5, 6, time.UTC))
	b := AnalysisKey("TCS", time.Date(2025, 1, 2, 3, 4, 5, 60000000, time.UTC))
	assert.Equal(t, "analyses/TCS_20250102_030405.000000006.json", a)
	assert.Equal(t, len(a), len(b))
	assert.Less(t, a, b)
}
