package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/gemscreener/internal/contracts"
	"github.com/wonny/gemscreener/pkg/logger"
)

// TickerScorer scores a single ticker on demand
type TickerScorer interface {
	ScoreTicker(ctx context.Context, market contracts.Market, ticker string) (*contracts.ScoredStock, error)
}

// ScoreHandler scores individual tickers outside a full run
type ScoreHandler struct {
	scorer TickerScorer
	logger *logger.Logger
}

// NewScoreHandler creates a new score handler
func NewScoreHandler(scorer TickerScorer, log *logger.Logger) *ScoreHandler {
	return &ScoreHandler{
		scorer: scorer,
		logger: log,
	}
}

// ScoreTicker fetches and scores one ticker
// GET /api/score/{market}/{ticker}
func (h *ScoreHandler) ScoreTicker(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	market, ok := parseMarket(w, vars["market"])
	if !ok {
		return
	}
	ticker := strings.ToUpper(strings.TrimSpace(vars["ticker"]))

	stock, err := h.scorer.ScoreTicker(r.Context(), market, ticker)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, stock)
	case errors.Is(err, contracts.ErrNotFound):
		respondError(w, http.StatusNotFound, "ticker not found: "+ticker)
	case errors.Is(err, contracts.ErrInsufficientHistory), errors.Is(err, contracts.ErrNoData):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.WithError(err).WithField("ticker", ticker).Warn("Ticker scoring failed")
		respondError(w, http.StatusBadGateway, "scoring failed: "+err.Error())
	}
}
