package contracts

import (
	"fmt"
	"strings"
)

// Market identifies a screening market
// ⭐ SSOT: 시장 식별자
type Market string

const (
	MarketUS    Market = "US"
	MarketIndia Market = "INDIA"
)

// MarketBoth is accepted on the command line only; it is never a screening target itself
const MarketBoth = "BOTH"

// AllMarkets lists supported markets in run order
var AllMarkets = []Market{MarketUS, MarketIndia}

// ParseMarket parses a single market identifier (case-insensitive)
func ParseMarket(s string) (Market, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(MarketUS):
		return MarketUS, nil
	case string(MarketIndia):
		return MarketIndia, nil
	default:
		return "", fmt.Errorf("unknown market %q (expected US or INDIA)", s)
	}
}

// ExpandMarkets parses US, INDIA or BOTH into an ordered list of single markets
func ExpandMarkets(s string) ([]Market, error) {
	if strings.EqualFold(strings.TrimSpace(s), MarketBoth) {
		out := make([]Market, len(AllMarkets))
		copy(out, AllMarkets)
		return out, nil
	}

	m, err := ParseMarket(s)
	if err != nil {
		return nil, err
	}
	return []Market{m}, nil
}

// Key returns the lower-case form used for config keys and file names
func (m Market) Key() string {
	return strings.ToLower(string(m))
}

func (m Market) String() string {
	return string(m)
}
