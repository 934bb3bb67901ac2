package telegram

import (
	"errors"
	"strings"
	"testing"
	"time"

	"market-khabri/internal/entity"
	"market-khabri/pkg/utils"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	texts []string
	err   error
}

func (s *recordingSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if s.err != nil {
		return tgbotapi.Message{}, s.err
	}
	msg := c.(tgbotapi.MessageConfig)
	s.texts = append(s.texts, msg.Text)
	return tgbotapi.Message{}, nil
}

func TestFormatAnalysisForTelegram(t *testing.T) {
	r := &entity.AnalysisRecord{
		CompanySymbol: "TCS",
		CompanyName:   "Tata Consultancy Services",
		Quarter:       entity.QuarterQ2,
		FinancialYear: "FY25",
		Metrics: entity.Metrics{
			Revenue:   utils.ToPointer(62600.5),
			YoYGrowth: utils.ToPointer(6.8),
		},
		Insights:   "TCS is showing steady growth",
		Highlights: []string{"Strong revenue base showing market presence"},
		RedFlags:   []string{"Margins_tight"},
		Source:     entity.ExtractionSourceSynthetic,
		AnalyzedAt: time.Date(2025, 10, 10, 0, 0, 0, 0, time.UTC),
	}

	out := FormatAnalysisForTelegram(r)
	assert.Contains(t, out, "*Tata Consultancy Services* (TCS)")
	assert.Contains(t, out, "Q2 FY25 _(demo figures)_")
	assert.Contains(t, out, "₹62,600.50 Cr")
	assert.Contains(t, out, "*PAT:* N/A")
	assert.Contains(t, out, "+6.8%")
	assert.Contains(t, out, "Margins\\_tight")
}

func TestSplitMessage(t *testing.T) {
	text := strings.Repeat("line\n", 10)
	parts := splitMessage(text, 12)
	for _, p := range parts {
		assert.LessOrEqual(t, len(p), 12)
	}
	assert.Equal(t, strings.Repeat("line", 10), strings.ReplaceAll(strings.Join(parts, ""), "\n", ""))

	assert.Equal(t, []string{"short"}, splitMessage("short", 12))
}

func TestClientSendMessage(t *testing.T) {
	sender := &recordingSender{}
	n := NewClientWithSender(sender, 42)

	require.NoError(t, n.SendMessage("hello"))
	assert.Equal(t, []string{"hello"}, sender.texts)

	n = NewClientWithSender(&recordingSender{err: errors.New("boom")}, 42)
	assert.Error(t, n.SendMessage("hello"))
}

func TestNewClientWithoutToken(t *testing.T) {
	n, err := NewClient("", 0)
	require.NoError(t, err)
	assert.Nil(t, n)
}
