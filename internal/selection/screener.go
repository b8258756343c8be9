package selection

import (
	"github.com/wonny/gemscreener/internal/contracts"
	"github.com/wonny/gemscreener/pkg/logger"
)

// DefaultActions are used when FilterByAction receives no actions
var DefaultActions = []contracts.Action{contracts.ActionStrongBuy, contracts.ActionBuy}

// FilterByAction keeps stocks whose action is listed, preserving input order
func FilterByAction(stocks []contracts.ScoredStock, actions ...contracts.Action) []contracts.ScoredStock {
	if len(actions) == 0 {
		actions = DefaultActions
	}
	want := make(map[contracts.Action]bool, len(actions))
	for _, a := range actions {
		want[a] = true
	}

	out := make([]contracts.ScoredStock, 0, len(stocks))
	for _, s := range stocks {
		if want[s.Action] {
			out = append(out, s)
		}
	}
	return out
}

// SelectRecommendations unions the STRONG_BUY, BUY and SPECULATIVE groups in that
// order, re-ranks by composite and keeps topN (topN <= 0 keeps all)
func SelectRecommendations(stocks []contracts.ScoredStock, topN int) []contracts.ScoredStock {
	picks := make([]contracts.ScoredStock, 0)
	for _, a := range contracts.RecommendationActions {
		picks = append(picks, RankStocks(FilterByAction(stocks, a), RankByComposite)...)
	}

	picks = RankStocks(picks, RankByComposite)
	if topN > 0 && len(picks) > topN {
		picks = picks[:topN]
	}
	return picks
}

// ActionCounts counts stocks per action
func ActionCounts(stocks []contracts.ScoredStock) map[contracts.Action]int {
	counts := make(map[contracts.Action]int)
	for _, s := range stocks {
		counts[s.Action]++
	}
	return counts
}

// Selector runs S4 with logging
type Selector struct {
	rankBy RankField
	logger *logger.Logger
}

// NewSelector creates a new selector ranking picks by rankBy
func NewSelector(rankBy RankField, log *logger.Logger) *Selector {
	if rankBy == "" {
		rankBy = RankByComposite
	}
	return &Selector{
		rankBy: rankBy,
		logger: log.Module("selection"),
	}
}

// Select returns the top recommendations ordered by the configured field
func (s *Selector) Select(stocks []contracts.ScoredStock, topN int) []contracts.ScoredStock {
	picks := SelectRecommendations(stocks, topN)
	if s.rankBy != RankByComposite {
		picks = RankStocks(picks, s.rankBy)
	}

	counts := ActionCounts(stocks)
	fields := map[string]interface{}{
		"analyzed": len(stocks),
		"selected": len(picks),
		"rank_by":  string(s.rankBy),
	}
	for action, n := range counts {
		fields[string(action)] = n
	}
	if len(picks) > 0 {
		fields["top_ticker"] = picks[0].Ticker
		fields["top_score"] = s.rankBy.Value(&picks[0])
	}
	s.logger.WithFields(fields).Info("Selection completed")

	return picks
}
