package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"market-khabri/internal/entity"
	"market-khabri/internal/khabri/strategy"
	"market-khabri/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentAcquisition_FirstSuccessWins(t *testing.T) {
	pdf := &entity.SourceDocument{Kind: entity.DocumentKindPDF, Symbol: "TCS", Location: "/tmp/TCS.pdf"}
	svc := NewDocumentAcquisitionService([]strategy.AcquisitionStrategy{
		&fakeAcquisition{name: "declines", err: fmt.Errorf("no page: %w", entity.ErrStrategyDeclined)},
		&fakeAcquisition{name: "broken", err: errors.New("timeout")},
		&fakeAcquisition{name: "works", doc: pdf},
		strategy.NewSyntheticDocumentStrategy(),
	}, logger.NewNop())

	doc, err := svc.Acquire(context.Background(), "TCS")
	require.NoError(t, err)
	assert.Equal(t, pdf, doc)
}

func TestDocumentAcquisition_SyntheticLast(t *testing.T) {
	svc := NewDocumentAcquisitionService([]strategy.AcquisitionStrategy{
		strategy.NewExchangeAnnouncementStrategy(logger.NewNop()),
		strategy.NewSyntheticDocumentStrategy(),
	}, logger.NewNop())

	doc, err := svc.Acquire(context.Background(), "INFY")
	require.NoError(t, err)
	assert.True(t, doc.IsSynthetic())
}

func TestDocumentAcquisition_Exhausted(t *testing.T) {
	svc := NewDocumentAcquisitionService([]strategy.AcquisitionStrategy{
		&fakeAcquisition{name: "broken", err: errors.New("timeout")},
	}, logger.NewNop())

	_, err := svc.Acquire(context.Background(), "TCS")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}
