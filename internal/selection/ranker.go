package selection

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wonny/gemscreener/internal/contracts"
)

// RankField selects the score used for ranking
type RankField string

const (
	RankByComposite   RankField = "composite_score"
	RankByValuation   RankField = "valuation_score"
	RankByFundamental RankField = "fundamental_score"
	RankByTechnical   RankField = "technical_score"
)

// RankFields lists accepted rank fields
var RankFields = []RankField{RankByComposite, RankByValuation, RankByFundamental, RankByTechnical}

// ParseRankField parses a rank field name
func ParseRankField(s string) (RankField, error) {
	f := RankField(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range RankFields {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown rank field %q", s)
}

// Value returns the field's score for s
func (f RankField) Value(s *contracts.ScoredStock) float64 {
	switch f {
	case RankByValuation:
		return s.ValuationScore
	case RankByFundamental:
		return s.FundamentalScore
	case RankByTechnical:
		return s.TechnicalScore
	default:
		return s.CompositeScore
	}
}

// RankStocks returns a new slice sorted descending by field.
// Ties keep input order.
// ⭐ SSOT: S4 랭킹 로직은 여기서만
func RankStocks(stocks []contracts.ScoredStock, by RankField) []contracts.ScoredStock {
	ranked := make([]contracts.ScoredStock, len(stocks))
	copy(ranked, stocks)

	sort.SliceStable(ranked, func(i, j int) bool {
		return by.Value(&ranked[i]) > by.Value(&ranked[j])
	})
	return ranked
}
