package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/gemscreener/internal/brain"
	"github.com/wonny/gemscreener/internal/contracts"
	"github.com/wonny/gemscreener/internal/report"
	"github.com/wonny/gemscreener/pkg/logger"
)

// DailyRunner runs the daily multi-market screen
type DailyRunner interface {
	RunDaily(ctx context.Context, config brain.DailyConfig) (*brain.DailyResult, error)
}

// DailyScreenJob runs the daily screen and writes one CSV per market
// ⭐ SSOT: 일일 스크리닝 스케줄은 이 작업에서만
type DailyScreenJob struct {
	runner    DailyRunner
	markets   []contracts.Market
	outputDir string
	schedule  string
	logger    *logger.Logger
	now       func() time.Time
}

// NewDailyScreenJob creates a new daily screen job
func NewDailyScreenJob(runner DailyRunner, markets []contracts.Market, outputDir, schedule string, log *logger.Logger) *DailyScreenJob {
	if schedule == "" {
		schedule = "0 0 7 * * *"
	}
	return &DailyScreenJob{
		runner:    runner,
		markets:   markets,
		outputDir: outputDir,
		schedule:  schedule,
		logger:    log,
		now:       time.Now,
	}
}

// Name returns the job name
func (j *DailyScreenJob) Name() string {
	return "daily_screen"
}

// Schedule returns the cron schedule (default: every day at 07:00)
func (j *DailyScreenJob) Schedule() string {
	return j.schedule
}

// Run executes the daily screen.
// Fails only when every market failed.
func (j *DailyScreenJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled daily screen")

	daily, err := j.runner.RunDaily(ctx, brain.DailyConfig{
		Markets:  j.markets,
		UseCache: true,
	})
	if err != nil {
		return fmt.Errorf("daily screen: %w", err)
	}

	at := j.now()
	for market, result := range daily.Results {
		if len(result.TopPicks) == 0 {
			continue
		}
		path, err := report.SaveStocks(j.outputDir, report.DailyFileName(market, at), result.TopPicks)
		if err != nil {
			j.logger.WithError(err).WithField("market", market.String()).Error("Failed to save daily picks")
			continue
		}
		j.logger.WithFields(map[string]interface{}{
			"market": market.String(),
			"picks":  len(result.TopPicks),
			"path":   path,
		}).Info("Daily picks saved")
	}

	if len(daily.Results) == 0 && len(daily.Errors) > 0 {
		return fmt.Errorf("daily screen: all %d markets failed", len(daily.Errors))
	}
	return nil
}
