package s0_universe

import (
	"context"
	"fmt"

	"github.com/wonny/gemscreener/internal/contracts"
	"github.com/wonny/gemscreener/internal/external/nse"
	"github.com/wonny/gemscreener/internal/external/sp500"
	"github.com/wonny/gemscreener/internal/strategyconfig"
	"github.com/wonny/gemscreener/pkg/logger"
)

// Options controls one universe screen
type Options struct {
	UseCache   bool
	MaxTickers int // 0 = unlimited
}

// Screener produces the ticker universe for one market
type Screener interface {
	MarketName() contracts.Market
	Screen(ctx context.Context, opts Options) ([]string, error)
	FetchPrimary(ctx context.Context) ([]string, error)
	FetchSecondary(ctx context.Context) ([]string, error)
}

// PostFilter transforms the fetched list before truncation
type PostFilter func(tickers []string) []string

// Run is the shared screening template.
// cache may be nil.
// ⭐ SSOT: S0 유니버스 흐름 (캐시 → 1차 → 2차 → 후처리 → 저장)
func Run(ctx context.Context, s Screener, cache contracts.TickerCache, opts Options, postFilter PostFilter, log *logger.Logger) ([]string, error) {
	market := s.MarketName()
	log = log.WithField("market", market.String())

	// 1. 캐시
	if opts.UseCache && cache != nil {
		cached, fresh, err := cache.Load(ctx, market)
		if err != nil {
			log.WithError(err).Warn("Ticker cache load failed")
		} else if fresh && len(cached) > 0 {
			log.WithField("tickers", len(cached)).Info("Universe loaded from cache")
			return cached, nil
		}
	}

	// 2. 1차 소스 → 실패 시 2차 소스
	tickers, err := s.FetchPrimary(ctx)
	if err != nil || len(tickers) == 0 {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		entry := log.WithField("tickers", len(tickers))
		if err != nil {
			entry = entry.WithError(err)
		}
		entry.Warn("Primary universe source failed, trying secondary")

		tickers, err = s.FetchSecondary(ctx)
		if err != nil {
			log.WithError(err).Error("Secondary universe source failed")
		}
	}

	// 3. 후처리
	tickers = Dedupe(tickers)
	if postFilter != nil {
		tickers = Dedupe(postFilter(tickers))
	}

	if len(tickers) == 0 {
		return nil, fmt.Errorf("%s: %w", market, contracts.ErrNoTickers)
	}

	// 4. 최대 종목 수
	if opts.MaxTickers > 0 && len(tickers) > opts.MaxTickers {
		tickers = tickers[:opts.MaxTickers]
	}

	// 5. 캐시 저장 (실패해도 계속)
	if cache != nil {
		if err := cache.Save(ctx, market, tickers); err != nil {
			log.WithError(err).Warn("Ticker cache save failed")
		}
	}

	log.WithField("tickers", len(tickers)).Info("Universe screened")
	return tickers, nil
}

// Dedupe removes duplicates and blanks, keeping first-seen order
func Dedupe(tickers []string) []string {
	seen := make(map[string]bool, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// Sources bundles the external list providers
type Sources struct {
	SP500 *sp500.Client
	NSE   *nse.Client
}

// NewScreener returns the screener for a single market
func NewScreener(market contracts.Market, cfg *strategyconfig.Config, src Sources, cache contracts.TickerCache, log *logger.Logger) (Screener, error) {
	mc, err := cfg.Market(market)
	if err != nil {
		return nil, err
	}

	switch market {
	case contracts.MarketUS:
		if src.SP500 == nil {
			return nil, fmt.Errorf("US screener requires an S&P 500 client")
		}
		return NewUSScreener(src.SP500.FetchWikipedia, src.SP500.FetchGitHub, mc.Universe, cache, log), nil
	case contracts.MarketIndia:
		if src.NSE == nil {
			return nil, fmt.Errorf("INDIA screener requires an NSE client")
		}
		return NewIndiaScreener(src.NSE, mc.Universe, cache, log), nil
	default:
		return nil, fmt.Errorf("no screener for market %q", market)
	}
}
