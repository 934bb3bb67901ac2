package strategy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"market-khabri/internal/entity"
	"market-khabri/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var calendarNow = time.Date(2025, time.October, 10, 9, 0, 0, 0, time.UTC)

func TestNSECalendarSource_Fetch(t *testing.T) {
	primed := false
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		primed = true
		http.SetCookie(w, &http.Cookie{Name: "nsit", Value: "abc", Path: "/"})
		_, _ = w.Write([]byte("<html></html>"))
	})
	mux.HandleFunc("/api/corporates-corporateActions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "equities", r.URL.Query().Get("index"))
		cookie, err := r.Cookie("nsit")
		if assert.NoError(t, err) {
			assert.Equal(t, "abc", cookie.Value)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"symbol":"TCS","comp":"Tata Consultancy Services Limited","subject":"Financial Results","exDate":"16-Oct-2025"},
			{"symbol":"ITC","comp":"ITC Limited","subject":"Dividend - Rs 6 Per Share","exDate":"12-Oct-2025"},
			{"symbol":"INFY","comp":"Infosys Limited","subject":"Quarterly Results","exDate":"01-Oct-2025"},
			{"symbol":"WIPRO","comp":"","subject":"results","exDate":"2026-01-20"},
			{"symbol":"BAD","comp":"Bad","subject":"Results","exDate":"soon"}
		]`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	src := NewNSECalendarSource(server.URL, 2*time.Second, logger.NewNop())
	src.now = func() time.Time { return calendarNow }

	events, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, primed)
	require.Len(t, events, 2)

	assert.Equal(t, "TCS", events[0].CompanySymbol)
	assert.Equal(t, "Tata Consultancy Services Limited", events[0].CompanyName)
	assert.Equal(t, "2025-10-16", events[0].Date())
	assert.Equal(t, entity.QuarterQ3, events[0].Quarter)
	assert.Equal(t, "FY25", events[0].FinancialYear)

	assert.Equal(t, "WIPRO", events[1].CompanySymbol)
	assert.Equal(t, "Wipro Limited", events[1].CompanyName)
	assert.Equal(t, entity.QuarterQ4, events[1].Quarter)
	assert.Equal(t, "FY25", events[1].FinancialYear)
}

func TestNSECalendarSource_Failures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"forbidden": func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/" {
				return
			}
			w.WriteHeader(http.StatusForbidden)
		},
		"malformed": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"not":"a list"`))
		},
		"empty": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		},
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(handler)
			defer server.Close()

			src := NewNSECalendarSource(server.URL, time.Second, logger.NewNop())
			src.now = func() time.Time { return calendarNow }

			_, err := src.Fetch(context.Background())
			assert.ErrorIs(t, err, entity.ErrSourceUnavailable)
		})
	}
}

const boardMeetingsRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Board Meetings</title>
<item><title>HDFCBANK - HDFC Bank Limited</title><description>To consider and approve the Financial Results. Meeting Date: 18-Oct-2025</description></item>
<item><title>SBIN - State Bank of India</title><description>Fund raising. Meeting Date: 20-Oct-2025</description></item>
<item><title>LT - Larsen &amp; Toubro Limited</title><description>Quarterly results for the period ended 30-Sep-2025. Meeting Date: 25-Oct-2025</description></item>
<item><title>ICICIBANK - ICICI Bank Limited</title><description>Financial results. Meeting Date: 01-Oct-2025</description></item>
</channel></rss>`

func TestBoardMeetingFeedSource_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(boardMeetingsRSS))
	}))
	defer server.Close()

	src := NewBoardMeetingFeedSource(server.URL, time.Second, logger.NewNop())
	src.now = func() time.Time { return calendarNow }

	events, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "HDFCBANK", events[0].CompanySymbol)
	assert.Equal(t, "HDFC Bank", events[0].CompanyName)
	assert.Equal(t, "2025-10-18", events[0].Date())
	assert.Equal(t, "LT", events[1].CompanySymbol)
	assert.Equal(t, "2025-10-25", events[1].Date())
}

func TestBoardMeetingFeedSource_DeclinesWithoutURL(t *testing.T) {
	_, err := NewBoardMeetingFeedSource("", time.Second, logger.NewNop()).Fetch(context.Background())
	assert.ErrorIs(t, err, entity.ErrStrategyDeclined)
}
