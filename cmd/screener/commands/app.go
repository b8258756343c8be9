package commands

import (
	"fmt"

	"github.com/wonny/gemscreener/internal/brain"
	"github.com/wonny/gemscreener/internal/contracts"
	"github.com/wonny/gemscreener/internal/external/nse"
	"github.com/wonny/gemscreener/internal/external/sp500"
	"github.com/wonny/gemscreener/internal/external/yahoo"
	"github.com/wonny/gemscreener/internal/s0_universe"
	"github.com/wonny/gemscreener/internal/strategyconfig"
	"github.com/wonny/gemscreener/pkg/config"
	"github.com/wonny/gemscreener/pkg/httputil"
	"github.com/wonny/gemscreener/pkg/logger"
	"github.com/wonny/gemscreener/pkg/redis"
)

// redisPrefix namespaces every key this process writes
const redisPrefix = "gemscreener"

// app holds the wired dependencies shared by all commands
type app struct {
	cfg       *config.Config
	strategy  *strategyconfig.Config
	snapshot  *strategyconfig.Snapshot
	log       *logger.Logger
	redis     *redis.Client
	cache     contracts.TickerCache
	screeners map[contracts.Market]s0_universe.Screener
	store     *brain.ResultStore
	orch      *brain.Orchestrator
}

// loadStrategy resolves --strategy, then STRATEGY_CONFIG, then the embedded defaults
func loadStrategy(cfg *config.Config) (*strategyconfig.Config, *strategyconfig.Snapshot, error) {
	path := strategyFile
	if path == "" {
		path = cfg.Screening.StrategyConfig
	}
	return strategyconfig.LoadOrDefault(path)
}

// newApp wires config → logger → redis → http clients → providers → screeners → orchestrator
func newApp() (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Strategy tables (validated before any fetch)
	strategy, snapshot, err := loadStrategy(cfg)
	if err != nil {
		return nil, fmt.Errorf("load strategy config: %w", err)
	}

	// 4. Redis (optional)
	rdb, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis (set REDIS_ENABLED=false to run without it): %w", err)
	}

	// 5. HTTP clients
	var limiter *redis.RateLimiter
	if rdb.Enabled() {
		limiter = redis.NewRateLimiter(rdb, redisPrefix)
	}
	yahooHTTP := yahoo.NewHTTPClient(cfg, limiter, log)
	listHTTP := httputil.New(cfg, log)
	nseHTTP := nse.NewHTTPClient(cfg, limiter, log)

	// 6. Providers
	yahooClient := yahoo.NewClient(yahooHTTP, cfg.Yahoo, redis.NewCache(rdb, redisPrefix), log)
	sources := s0_universe.Sources{
		SP500: sp500.NewClient(listHTTP, log),
		NSE:   nse.NewClient(nseHTTP, log),
	}

	// 7. Universe screeners
	tickerCache := s0_universe.NewTickerCache(rdb, cfg.Cache.Dir, cfg.Cache.Duration, log)
	screeners := make(map[contracts.Market]s0_universe.Screener, len(contracts.AllMarkets))
	for _, m := range contracts.AllMarkets {
		s, err := s0_universe.NewScreener(m, strategy, sources, tickerCache, log)
		if err != nil {
			rdb.Close()
			return nil, err
		}
		screeners[m] = s
	}

	// 8. Orchestrator
	store := brain.NewResultStore()
	orch := brain.NewOrchestrator(strategy, snapshot, brain.Deps{
		Screeners:    screeners,
		Fundamentals: yahooClient,
		Prices:       yahooClient,
		Store:        store,
	}, log)

	log.WithFields(map[string]interface{}{
		"strategy":    snapshot.StrategyID,
		"version":     snapshot.Version,
		"config_hash": snapshot.ConfigHash[:12],
		"source":      snapshot.Source,
		"redis":       rdb.Enabled(),
	}).Debug("Screener initialized")

	return &app{
		cfg:       cfg,
		strategy:  strategy,
		snapshot:  snapshot,
		log:       log,
		redis:     rdb,
		cache:     tickerCache,
		screeners: screeners,
		store:     store,
		orch:      orch,
	}, nil
}

// Close releases the redis connection
func (a *app) Close() {
	if err := a.redis.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close redis")
	}
}
