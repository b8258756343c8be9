package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/gemscreener/internal/brain"
	"github.com/wonny/gemscreener/internal/contracts"
	"github.com/wonny/gemscreener/internal/selection"
	"github.com/wonny/gemscreener/pkg/logger"
)

// ResultsHandler serves the latest in-memory screening runs
// ⭐ SSOT: 스크리닝 결과 API 핸들러는 이 구조체에서만
type ResultsHandler struct {
	store  *brain.ResultStore
	logger *logger.Logger
}

// NewResultsHandler creates a new results handler
func NewResultsHandler(store *brain.ResultStore, log *logger.Logger) *ResultsHandler {
	return &ResultsHandler{
		store:  store,
		logger: log,
	}
}

// MarketSummary is one entry of the results index
type MarketSummary struct {
	Market       contracts.Market         `json:"market"`
	RunID        string                   `json:"run_id"`
	StartedAt    string                   `json:"started_at"`
	UniverseSize int                      `json:"universe_size"`
	Passed       int                      `json:"passed"`
	Scored       int                      `json:"scored"`
	TopPicks     int                      `json:"top_picks"`
	HiddenGems   int                      `json:"hidden_gems"`
	ActionCounts map[contracts.Action]int `json:"action_counts"`
	Diagnostic   string                   `json:"diagnostic,omitempty"`
}

// ListResults returns a summary of the latest run per market
// GET /api/results
func (h *ResultsHandler) ListResults(w http.ResponseWriter, r *http.Request) {
	markets := h.store.Markets()
	summaries := make([]MarketSummary, 0, len(markets))

	for _, m := range markets {
		result, ok := h.store.Latest(m)
		if !ok {
			continue
		}
		summaries = append(summaries, MarketSummary{
			Market:       m,
			RunID:        result.RunID,
			StartedAt:    result.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
			UniverseSize: result.UniverseSize,
			Passed:       len(result.Filter.Passed),
			Scored:       len(result.Scored),
			TopPicks:     len(result.TopPicks),
			HiddenGems:   len(result.HiddenGems),
			ActionCounts: result.ActionCounts,
			Diagnostic:   result.Diagnostic,
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"markets": summaries,
		"count":   len(summaries),
	})
}

// GetResult returns the full latest run for a market
// GET /api/results/{market}
func (h *ResultsHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	result, ok := h.latest(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetPicks returns ranked stocks of the latest run
// GET /api/results/{market}/picks?action=BUY&limit=10
//
// Without action the selected top picks are returned. With action the scored
// stocks are filtered by that tier, keeping rank order.
func (h *ResultsHandler) GetPicks(w http.ResponseWriter, r *http.Request) {
	result, ok := h.latest(w, r)
	if !ok {
		return
	}

	stocks := result.TopPicks
	if action := r.URL.Query().Get("action"); action != "" {
		a := contracts.Action(strings.ToUpper(action))
		if !a.Valid() {
			respondError(w, http.StatusBadRequest, "unknown action: "+action)
			return
		}
		stocks = selection.FilterByAction(selection.RankStocks(result.Scored, selection.RankByComposite), a)
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		if limit < len(stocks) {
			stocks = stocks[:limit]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"market": result.Market,
		"run_id": result.RunID,
		"stocks": stocks,
		"count":  len(stocks),
	})
}

// GetHiddenGems returns the hidden gems of the latest run
// GET /api/results/{market}/gems
func (h *ResultsHandler) GetHiddenGems(w http.ResponseWriter, r *http.Request) {
	result, ok := h.latest(w, r)
	if !ok {
		return
	}

	gems := result.HiddenGems
	if gems == nil {
		gems = []contracts.HiddenGem{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"market": result.Market,
		"run_id": result.RunID,
		"gems":   gems,
		"count":  len(gems),
	})
}

// GetRejections returns the rejection histogram, most frequent first
// GET /api/results/{market}/rejections
func (h *ResultsHandler) GetRejections(w http.ResponseWriter, r *http.Request) {
	result, ok := h.latest(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"market":  result.Market,
		"run_id":  result.RunID,
		"reasons": result.Filter.Histogram.Sorted(),
		"summary": result.Filter.Summary,
	})
}

// GetDaily returns the last daily multi-market run
// GET /api/daily
func (h *ResultsHandler) GetDaily(w http.ResponseWriter, r *http.Request) {
	daily, ok := h.store.LatestDaily()
	if !ok {
		respondError(w, http.StatusNotFound, "no daily run yet")
		return
	}
	respondJSON(w, http.StatusOK, daily)
}

func (h *ResultsHandler) latest(w http.ResponseWriter, r *http.Request) (*brain.RunResult, bool) {
	market, ok := parseMarket(w, mux.Vars(r)["market"])
	if !ok {
		return nil, false
	}

	result, ok := h.store.Latest(market)
	if !ok {
		respondError(w, http.StatusNotFound, "no results for market "+market.String())
		return nil, false
	}
	return result, true
}
