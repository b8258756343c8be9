package s0_universe

import (
	"context"
	"fmt"

	"github.com/wonny/gemscreener/internal/contracts"
	"github.com/wonny/gemscreener/internal/strategyconfig"
	"github.com/wonny/gemscreener/pkg/logger"
)

// USScreener screens the S&P 500
type USScreener struct {
	primary   contracts.UniverseSource
	secondary contracts.UniverseSource
	cfg       strategyconfig.UniverseConfig
	cache     contracts.TickerCache
	logger    *logger.Logger
}

// NewUSScreener creates a US screener.
// primary is the Wikipedia table, secondary the constituents CSV.
func NewUSScreener(primary, secondary contracts.UniverseSource, cfg strategyconfig.UniverseConfig, cache contracts.TickerCache, log *logger.Logger) *USScreener {
	return &USScreener{
		primary:   primary,
		secondary: secondary,
		cfg:       cfg,
		cache:     cache,
		logger:    log.Module("universe"),
	}
}

// MarketName returns US
func (s *USScreener) MarketName() contracts.Market {
	return contracts.MarketUS
}

// Screen runs the shared template
func (s *USScreener) Screen(ctx context.Context, opts Options) ([]string, error) {
	if opts.MaxTickers == 0 {
		opts.MaxTickers = s.cfg.MaxTickers
	}
	return Run(ctx, s, s.cache, opts, nil, s.logger)
}

// FetchPrimary fetches S&P 500 constituents from Wikipedia
func (s *USScreener) FetchPrimary(ctx context.Context) ([]string, error) {
	if s.primary == nil {
		return nil, fmt.Errorf("no primary source")
	}
	return s.primary(ctx)
}

// FetchSecondary fetches the constituents CSV, then falls back to the curated list
func (s *USScreener) FetchSecondary(ctx context.Context) ([]string, error) {
	if s.secondary != nil {
		tickers, err := s.secondary(ctx)
		if err == nil && len(tickers) > 0 {
			return tickers, nil
		}
		if err != nil {
			s.logger.WithError(err).Warn("Constituents CSV failed, using curated list")
		}
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return CuratedUS(), nil
}
