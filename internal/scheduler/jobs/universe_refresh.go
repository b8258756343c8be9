package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/gemscreener/internal/s0_universe"
	"github.com/wonny/gemscreener/pkg/logger"
)

// UniverseRefreshJob rebuilds the ticker universe caches ahead of the daily screen
type UniverseRefreshJob struct {
	screeners []s0_universe.Screener
	logger    *logger.Logger
}

// NewUniverseRefreshJob creates a new universe refresh job
func NewUniverseRefreshJob(screeners []s0_universe.Screener, log *logger.Logger) *UniverseRefreshJob {
	return &UniverseRefreshJob{
		screeners: screeners,
		logger:    log,
	}
}

// Name returns the job name
func (j *UniverseRefreshJob) Name() string {
	return "universe_refresh"
}

// Schedule returns the cron schedule (every day at 06:30)
func (j *UniverseRefreshJob) Schedule() string {
	return "0 30 6 * * *"
}

// Run refetches every market's universe, bypassing the cache
func (j *UniverseRefreshJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled universe refresh")

	var failed []string
	for _, s := range j.screeners {
		tickers, err := s.Screen(ctx, s0_universe.Options{UseCache: false})
		if err != nil {
			j.logger.WithError(err).WithField("market", s.MarketName().String()).Error("Universe refresh failed")
			failed = append(failed, s.MarketName().String())
			continue
		}
		j.logger.WithFields(map[string]interface{}{
			"market":  s.MarketName().String(),
			"tickers": len(tickers),
		}).Info("Universe refreshed")
	}

	if len(failed) > 0 {
		return fmt.Errorf("universe refresh failed for %v", failed)
	}
	return nil
}
