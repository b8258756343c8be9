package s0_universe

import (
	"context"
	"fmt"
	"strings"

	"github.com/wonny/gemscreener/internal/contracts"
	"github.com/wonny/gemscreener/internal/external/nse"
	"github.com/wonny/gemscreener/internal/strategyconfig"
	"github.com/wonny/gemscreener/pkg/logger"
)

// IndexFetcher fetches one index's constituents
type IndexFetcher interface {
	FetchIndex(ctx context.Context, index string) ([]string, error)
}

// IndiaScreener screens NSE indices
type IndiaScreener struct {
	indices IndexFetcher
	cfg     strategyconfig.UniverseConfig
	cache   contracts.TickerCache
	logger  *logger.Logger
}

// NewIndiaScreener creates an India screener
func NewIndiaScreener(indices IndexFetcher, cfg strategyconfig.UniverseConfig, cache contracts.TickerCache, log *logger.Logger) *IndiaScreener {
	return &IndiaScreener{
		indices: indices,
		cfg:     cfg,
		cache:   cache,
		logger:  log.Module("universe"),
	}
}

// MarketName returns INDIA
func (s *IndiaScreener) MarketName() contracts.Market {
	return contracts.MarketIndia
}

// Screen runs the shared template with the exchange suffix post-filter
func (s *IndiaScreener) Screen(ctx context.Context, opts Options) ([]string, error) {
	if opts.MaxTickers == 0 {
		opts.MaxTickers = s.cfg.MaxTickers
	}
	return Run(ctx, s, s.cache, opts, s.applySuffix, s.logger)
}

// FetchPrimary unions the configured NSE indices.
// Unknown or failing indices are logged and skipped.
func (s *IndiaScreener) FetchPrimary(ctx context.Context) ([]string, error) {
	indices := s.cfg.Indices
	if len(indices) == 0 {
		indices = []string{nse.DefaultIndex}
	}

	var all []string
	for _, index := range indices {
		if !nse.KnownIndex(index) {
			s.logger.WithField("index", index).Warn("Unknown NSE index skipped")
			continue
		}

		tickers, err := s.indices.FetchIndex(ctx, index)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.WithError(err).WithField("index", index).Warn("NSE index fetch failed")
			continue
		}
		all = append(all, tickers...)
	}

	if len(all) == 0 {
		return nil, fmt.Errorf("no NSE index returned tickers")
	}
	return Dedupe(all), nil
}

// FetchSecondary returns the curated list of major Indian stocks
func (s *IndiaScreener) FetchSecondary(ctx context.Context) ([]string, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return CuratedIndia(), nil
}

// applySuffix ensures every ticker carries an exchange suffix.
// BSE-only configurations use .BO, everything else .NS.
func (s *IndiaScreener) applySuffix(tickers []string) []string {
	suffix := ".NS"
	if bseOnly(s.cfg.Exchanges) {
		suffix = ".BO"
	}

	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		base := strings.TrimSuffix(strings.TrimSuffix(t, ".NS"), ".BO")
		if base == "" {
			continue
		}
		out = append(out, base+suffix)
	}
	return out
}

func bseOnly(exchanges []string) bool {
	hasBSE := false
	for _, e := range exchanges {
		switch strings.ToUpper(strings.TrimSpace(e)) {
		case "BSE":
			hasBSE = true
		case "NSE":
			return false
		}
	}
	return hasBSE
}
