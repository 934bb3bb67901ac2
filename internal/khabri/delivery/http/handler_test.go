package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"market-khabri/internal/entity"
	"market-khabri/internal/khabri/dto"
	"market-khabri/pkg/logger"
	"market-khabri/pkg/utils"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDates struct {
	limits []int
}

func (f *fakeDates) ListUpcoming(_ context.Context, limit int) []entity.ResultEvent {
	f.limits = append(f.limits, limit)
	return []entity.ResultEvent{{
		CompanySymbol: "TCS",
		CompanyName:   "Tata Consultancy Services",
		ResultDate:    time.Date(2025, 10, 18, 0, 0, 0, 0, time.UTC),
		Quarter:       entity.QuarterQ2,
		FinancialYear: "FY26",
	}}
}

func (f *fakeDates) Refresh(ctx context.Context) []entity.ResultEvent {
	return f.ListUpcoming(ctx, 0)
}

type fakePipeline struct {
	runErr error
}

func (f *fakePipeline) Run(_ context.Context, symbol string) (*entity.AnalysisRecord, error) {
	if f.runErr != nil {
		return nil, f.runErr
	}
	return &entity.AnalysisRecord{
		CompanySymbol: symbol,
		Metrics:       entity.Metrics{Revenue: utils.ToPointer(100.0)},
		Highlights:    []string{"a", "b"},
		RedFlags:      []string{"c"},
	}, nil
}

func (f *fakePipeline) Latest(_ context.Context, limit int) ([]entity.AnalysisRecord, error) {
	out := make([]entity.AnalysisRecord, limit)
	for i := range out {
		out[i].CompanySymbol = fmt.Sprintf("S%d", i)
	}
	return out, nil
}

func (f *fakePipeline) LatestForSymbol(context.Context, string) (*entity.AnalysisRecord, error) {
	return nil, entity.ErrNotFound
}

func (f *fakePipeline) KnowledgeBase(context.Context, int) (string, error) {
	return "[]", nil
}

type fakeChat struct {
	asked     []string
	conversed [][]entity.ChatTurn
}

func (f *fakeChat) Ask(_ context.Context, sessionID, question, symbol string) (string, string) {
	f.asked = append(f.asked, question+"|"+symbol)
	if sessionID == "" {
		sessionID = "default"
	}
	return "reply", sessionID
}

func (f *fakeChat) Converse(_ context.Context, messages []entity.ChatTurn) string {
	f.conversed = append(f.conversed, messages)
	return "kb reply"
}

func (f *fakeChat) NewSession(sessionID string) string {
	if sessionID == "" {
		return "fresh-id"
	}
	return sessionID
}

func newTestServer(pipeline *fakePipeline, chat *fakeChat, dates *fakeDates) *echo.Echo {
	log := logger.NewNop()
	return NewServer(
		NewAnalysisHandler(dates, pipeline, log),
		NewChatHandler(chat, log),
		NewHealthHandler(map[string]string{"analyzer": "rules"}),
		nil,
		log,
	)
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestUpcomingResults(t *testing.T) {
	dates := &fakeDates{}
	e := newTestServer(&fakePipeline{}, &fakeChat{}, dates)

	rec := do(e, http.MethodGet, "/api/upcoming-results?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"result_date":"2025-10-18"`)

	do(e, http.MethodGet, "/api/upcoming-results", "")
	assert.Equal(t, []int{5, 20}, dates.limits)

	rec = do(e, http.MethodGet, "/api/upcoming-results?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeCompany(t *testing.T) {
	e := newTestServer(&fakePipeline{}, &fakeChat{}, &fakeDates{})

	rec := do(e, http.MethodPost, "/api/analyze/tcs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var record entity.AnalysisRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, "TCS", record.CompanySymbol)
}

func TestAnalyzeCompanyErrors(t *testing.T) {
	e := newTestServer(&fakePipeline{runErr: fmt.Errorf("nothing: %w", entity.ErrNotFound)}, &fakeChat{}, &fakeDates{})
	rec := do(e, http.MethodPost, "/api/analyze/XYZ", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"No results found for XYZ"}`, rec.Body.String())

	e = newTestServer(&fakePipeline{runErr: errors.New("disk full")}, &fakeChat{}, &fakeDates{})
	rec = do(e, http.MethodPost, "/api/analyze/XYZ", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Analysis failed: disk full"}`, rec.Body.String())
}

func TestLatestResults(t *testing.T) {
	e := newTestServer(&fakePipeline{}, &fakeChat{}, &fakeDates{})

	rec := do(e, http.MethodGet, "/api/latest-results", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var records []entity.AnalysisRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	assert.Len(t, records, 10)
}

func TestChat(t *testing.T) {
	chat := &fakeChat{}
	e := newTestServer(&fakePipeline{}, chat, &fakeDates{})

	rec := do(e, http.MethodPost, "/api/chat", `{"question": "How is TCS doing?", "company_symbol": "TCS"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, dto.ChatResponse{Response: "reply", SessionID: "default"}, resp)
	assert.Equal(t, []string{"How is TCS doing?|TCS"}, chat.asked)

	rec = do(e, http.MethodPost, "/api/chat", `{"messages": [{"role": "user", "content": "hi"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"response":"kb reply"}`, rec.Body.String())
	require.Len(t, chat.conversed, 1)

	rec = do(e, http.MethodPost, "/api/chat", `{"question": "  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPost, "/api/chat", `{bad json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNewChat(t *testing.T) {
	e := newTestServer(&fakePipeline{}, &fakeChat{}, &fakeDates{})

	rec := do(e, http.MethodPost, "/api/chat/new", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"session_id":"fresh-id"`)

	rec = do(e, http.MethodPost, "/api/chat/new", `{"session_id": "abc"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"session_id":"abc"`)
}

func TestHealthAndRoot(t *testing.T) {
	e := newTestServer(&fakePipeline{}, &fakeChat{}, &fakeDates{})

	rec := do(e, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var health dto.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "rules", health.Agents["analyzer"])

	rec = do(e, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Market Khabri API")
}

func TestCORS(t *testing.T) {
	e := newTestServer(&fakePipeline{}, &fakeChat{}, &fakeDates{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}
