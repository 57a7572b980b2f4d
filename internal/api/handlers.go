// Package api exposes analysis results as JSON over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"MarketLens/internal/analysis"
	"MarketLens/internal/cache"
	"MarketLens/internal/collector"
	"MarketLens/internal/model"
	"MarketLens/internal/report"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handlers serves the analysis API.
type Handlers struct {
	analyzer *analysis.Analyzer
	cache    *cache.Service
	log      zerolog.Logger
}

// NewHandlers creates the API handlers.
func NewHandlers(analyzer *analysis.Analyzer, svc *cache.Service, log zerolog.Logger) *Handlers {
	return &Handlers{
		analyzer: analyzer,
		cache:    svc,
		log:      log.With().Str("module", "api").Logger(),
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Hint  string `json:"hint"`
}

// badRequest marks caller input errors.
type badRequest struct{ err error }

func (e badRequest) Error() string { return e.err.Error() }
func (e badRequest) Unwrap() error { return e.err }

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) // response already committed
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var br badRequest
	switch {
	case errors.As(err, &br):
		status = http.StatusBadRequest
	case collector.IsProviderError(err):
		status = http.StatusBadGateway
	}
	h.log.Warn().Err(err).
		Str("request_id", RequestIDFrom(r.Context())).
		Int("status", status).
		Msg("request failed")
	writeJSON(w, status, errorResponse{Error: err.Error(), Hint: report.ErrorHint})
}

func parseQuery(r *http.Request) (model.Query, error) {
	v := r.URL.Query()
	q, err := model.ParseQuery(v.Get("period"), v.Get("from"), v.Get("to"))
	if err != nil {
		return model.Query{}, badRequest{err}
	}
	return q, nil
}

// HandleHealth reports liveness.
// GET /health
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleAnalysis runs the full pipeline for a symbol.
// GET /api/analysis/{symbol}?period=&from=&to=
func (h *Handlers) HandleAnalysis(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ctx := analysis.WithRunID(r.Context(), RequestIDFrom(r.Context()))
	rep, err := h.analyzer.Analyze(ctx, chi.URLParam(r, "symbol"), q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// HandleBars returns the cached (or freshly fetched) bar series.
// GET /api/bars/{symbol}?period=&from=&to=
func (h *Handlers) HandleBars(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	series, err := h.cache.GetOrFetch(r.Context(), chi.URLParam(r, "symbol"), q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}
