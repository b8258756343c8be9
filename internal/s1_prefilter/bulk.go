package s1_prefilter

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/gemscreener/internal/contracts"
	"github.com/wonny/gemscreener/pkg/logger"
)

// FetchStats summarizes a bulk fetch
type FetchStats struct {
	Requested int           `json:"requested"`
	Batches   int           `json:"batches"`
	Fetched   int           `json:"fetched"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration"`
}

// BulkOptions controls batching and parallelism
type BulkOptions struct {
	Workers    int
	BatchSize  int
	BatchPause time.Duration
}

// BulkFetcher fetches fundamentals for many tickers with bounded parallelism
type BulkFetcher struct {
	provider contracts.FundamentalsProvider
	opts     BulkOptions
	logger   *logger.Logger
}

// NewBulkFetcher creates a new bulk fetcher
func NewBulkFetcher(provider contracts.FundamentalsProvider, opts BulkOptions, log *logger.Logger) *BulkFetcher {
	if opts.Workers <= 0 {
		opts.Workers = 10
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	return &BulkFetcher{
		provider: provider,
		opts:     opts,
		logger:   log.Module("bulk_fetch"),
	}
}

// Fetch returns normalized fundamentals keyed by ticker.
// A failing or near-empty ticker is left out of the result and counted.
func (b *BulkFetcher) Fetch(ctx context.Context, tickers []string) (map[string]contracts.Fundamentals, FetchStats) {
	start := time.Now()
	stats := FetchStats{Requested: len(tickers)}
	results := make(map[string]contracts.Fundamentals, len(tickers))

	totalBatches := (len(tickers) + b.opts.BatchSize - 1) / b.opts.BatchSize
	for i := 0; i < len(tickers); i += b.opts.BatchSize {
		if ctx.Err() != nil {
			b.logger.WithError(ctx.Err()).Warn("Bulk fetch cancelled")
			break
		}

		end := i + b.opts.BatchSize
		if end > len(tickers) {
			end = len(tickers)
		}
		batch := tickers[i:end]
		stats.Batches++

		slots := b.fetchBatch(ctx, batch)
		ok := 0
		for j, f := range slots {
			if f == nil {
				continue
			}
			results[batch[j]] = *f
			ok++
		}
		stats.Fetched += ok

		b.logger.WithFields(map[string]interface{}{
			"batch":  stats.Batches,
			"total":  totalBatches,
			"ok":     ok,
			"failed": len(batch) - ok,
		}).Info("Batch fetched")

		// 배치 간 휴식 (마지막 배치 제외)
		if end < len(tickers) && b.opts.BatchPause > 0 {
			if err := sleep(ctx, b.opts.BatchPause); err != nil {
				break
			}
		}
	}

	// includes tickers never attempted after cancellation
	stats.Failed = stats.Requested - stats.Fetched
	stats.Duration = time.Since(start)

	b.logger.WithFields(map[string]interface{}{
		"requested": stats.Requested,
		"fetched":   stats.Fetched,
		"failed":    stats.Failed,
		"duration":  stats.Duration.String(),
	}).Info("Bulk fetch completed")

	return results, stats
}

// fetchBatch fills one slot per ticker; nil marks a failure
func (b *BulkFetcher) fetchBatch(ctx context.Context, batch []string) []*contracts.Fundamentals {
	slots := make([]*contracts.Fundamentals, len(batch))

	g := new(errgroup.Group)
	g.SetLimit(b.opts.Workers)
	for i, ticker := range batch {
		i, ticker := i, ticker
		g.Go(func() error {
			f, err := b.fetchOne(ctx, ticker)
			if err != nil {
				b.logger.WithError(err).WithField("ticker", ticker).Debug("Fetch failed")
				return nil
			}
			slots[i] = f
			return nil
		})
	}
	_ = g.Wait()

	return slots
}

func (b *BulkFetcher) fetchOne(ctx context.Context, ticker string) (f *contracts.Fundamentals, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic fetching %s: %v", ticker, r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := b.provider.FetchFundamentals(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if raw.IsNearEmpty() {
		return nil, fmt.Errorf("%s: %w", ticker, contracts.ErrNoData)
	}

	norm := raw.Normalize()
	if norm.Ticker == "" {
		norm.Ticker = ticker
	}
	return &norm, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
