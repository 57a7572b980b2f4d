package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"MarketLens/internal/analysis"
	"MarketLens/internal/cache"
	"MarketLens/internal/collector"
	"MarketLens/internal/model"
	"MarketLens/internal/report"
	"MarketLens/internal/scoring"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *collector.MockFetcher) {
	t.Helper()
	m := &collector.MockFetcher{
		Anchor:  time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC),
		Unknown: map[string]bool{"NOPE": true},
	}
	svc := cache.NewService(cache.NewMemoryStore(), m)
	a := analysis.NewAnalyzer(svc, scoring.NewScorer(scoring.ProfileBasic, scoring.DefaultMissing))
	srv := httptest.NewServer(NewRouter(NewHandlers(a, svc, zerolog.Nop())))
	t.Cleanup(srv.Close)
	return srv, m
}

func get(t *testing.T, url string, header map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := get(t, srv.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
}

func TestAnalysisEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := get(t, srv.URL+"/api/analysis/aapl?period=6mo", map[string]string{RequestIDHeader: "abc-123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body struct {
		RunID  string          `json:"run_id"`
		Symbol string          `json:"symbol"`
		Query  string          `json:"query"`
		Series model.BarSeries `json:"series"`
		Scores model.ScoreSet  `json:"scores"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "abc-123", body.RunID)
	assert.Equal(t, "AAPL", body.Symbol)
	assert.Equal(t, "6mo", body.Query)
	assert.Len(t, body.Series.Bars, 126)
	assert.Len(t, body.Scores.Categories, 5)
}

func TestAnalysisEndpointErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"unknown symbol", "/api/analysis/NOPE", http.StatusBadGateway},
		{"bad period", "/api/analysis/AAPL?period=7y", http.StatusBadRequest},
		{"period and range", "/api/analysis/AAPL?period=1y&from=2024-01-02&to=2024-02-01", http.StatusBadRequest},
		{"inverted range", "/api/bars/AAPL?from=2024-03-01&to=2024-02-01", http.StatusBadRequest},
		{"unknown bars", "/api/bars/NOPE", http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := get(t, srv.URL+tt.path, nil)
			assert.Equal(t, tt.status, resp.StatusCode)
			var body errorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.NotEmpty(t, body.Error)
			assert.Equal(t, report.ErrorHint, body.Hint)
		})
	}
}

func TestBarsEndpoint(t *testing.T) {
	srv, m := newTestServer(t)

	resp := get(t, srv.URL+"/api/bars/MSFT?from=2024-06-24&to=2024-06-28", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var series model.BarSeries
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&series))
	assert.Equal(t, "MSFT", series.Symbol)
	assert.Len(t, series.Bars, 5)

	get(t, srv.URL+"/api/bars/MSFT", nil)
	assert.Equal(t, int64(1), m.BarCalls(), "second request served from cache")
}

func TestUnknownRoute(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := get(t, srv.URL+"/api/nothing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
