package jobs

import (
	"context"

	"github.com/wonny/gemscreener/internal/contracts"
	"github.com/wonny/gemscreener/pkg/logger"
)

// CacheCleanupJob removes expired universe cache entries
type CacheCleanupJob struct {
	cache  contracts.TickerCache
	logger *logger.Logger
}

// NewCacheCleanupJob creates a new cache cleanup job
func NewCacheCleanupJob(cache contracts.TickerCache, log *logger.Logger) *CacheCleanupJob {
	return &CacheCleanupJob{
		cache:  cache,
		logger: log,
	}
}

// Name returns the job name
func (j *CacheCleanupJob) Name() string {
	return "cache_cleanup"
}

// Schedule returns the cron schedule (every hour)
func (j *CacheCleanupJob) Schedule() string {
	return "0 0 * * * *"
}

// Run clears entries that exist but are past expiry
func (j *CacheCleanupJob) Run(ctx context.Context) error {
	j.logger.Debug("Starting scheduled cache cleanup")

	removed := 0
	for _, market := range contracts.AllMarkets {
		info, err := j.cache.Info(ctx, market)
		if err != nil {
			j.logger.WithError(err).WithField("market", market.String()).Warn("Cache info failed")
			continue
		}
		if !info.Exists || info.Valid {
			continue
		}
		if err := j.cache.Clear(ctx, market); err != nil {
			return err
		}
		removed++
	}

	if removed > 0 {
		j.logger.WithField("removed", removed).Info("Cache cleanup completed")
	}
	return nil
}
