package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"market-khabri/internal/entity"
	"market-khabri/internal/khabri/strategy"
	"market-khabri/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const filingText = `Tata Consultancy Services Q2 FY26 results.
Revenue from operations of ₹65,799 crore, up 2.4% YoY.
Net profit of ₹12,075 crore. EPS of ₹33.37. Operating margin of 25.2%.`

var pdfDoc = &entity.SourceDocument{Kind: entity.DocumentKindPDF, Symbol: "TCS", Location: "/tmp/TCS.pdf"}

func newTestExtraction(texts *fakeTexts, strategies ...strategy.ExtractionStrategy) FieldExtractionService {
	gen := NewSyntheticFinancials(rand.New(rand.NewPCG(1, 1)), fixedPeriod)
	return NewFieldExtractionService(texts, strategies, gen, 3, logger.NewNop())
}

func TestFieldExtraction_SyntheticSentinel(t *testing.T) {
	svc := newTestExtraction(&fakeTexts{err: errors.New("must not be read")})

	rec, err := svc.Extract(context.Background(), entity.SyntheticDocument("TCS"), "TCS")
	require.NoError(t, err)
	assert.Equal(t, entity.ExtractionSourceSynthetic, rec.Source)
	assert.True(t, rec.HasRevenue())
}

func TestFieldExtraction_LLMFailureFallsToRegex(t *testing.T) {
	ai := newScriptedAI("this is not json at all")
	svc := newTestExtraction(&fakeTexts{text: filingText},
		strategy.NewLLMExtractionStrategy(ai, logger.NewNop(), 4000, fixedPeriod),
		strategy.NewRegexExtractionStrategy(fixedPeriod),
	)

	rec, err := svc.Extract(context.Background(), pdfDoc, "TCS")
	require.NoError(t, err)
	assert.Equal(t, entity.ExtractionSourceRegex, rec.Source)
	assert.InDelta(t, 65799, *rec.Revenue, 0.001)
	assert.Equal(t, 1, ai.calls(), "the model is not retried")
}

func TestFieldExtraction_NoRevenueFallsToSynthetic(t *testing.T) {
	svc := newTestExtraction(&fakeTexts{text: "Board meeting notice. No figures here."},
		strategy.NewRegexExtractionStrategy(fixedPeriod),
	)

	rec, err := svc.Extract(context.Background(), pdfDoc, "TCS")
	require.NoError(t, err)
	assert.Equal(t, entity.ExtractionSourceSynthetic, rec.Source)
	assert.True(t, rec.HasRevenue())
}

func TestFieldExtraction_UnreadableDocument(t *testing.T) {
	for _, texts := range []*fakeTexts{{err: errors.New("corrupt pdf")}, {text: "   "}} {
		svc := newTestExtraction(texts, strategy.NewRegexExtractionStrategy(fixedPeriod))
		rec, err := svc.Extract(context.Background(), pdfDoc, "TCS")
		require.NoError(t, err)
		assert.Equal(t, entity.ExtractionSourceSynthetic, rec.Source)
	}
}

func TestFieldExtraction_NilDocument(t *testing.T) {
	svc := newTestExtraction(&fakeTexts{})
	_, err := svc.Extract(context.Background(), nil, "TCS")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}
