package brain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/gemscreener/internal/contracts"
	"github.com/wonny/gemscreener/internal/s0_universe"
	"github.com/wonny/gemscreener/internal/s1_prefilter"
	"github.com/wonny/gemscreener/internal/s2_analysis"
	"github.com/wonny/gemscreener/internal/s3_scoring"
	"github.com/wonny/gemscreener/internal/selection"
	"github.com/wonny/gemscreener/internal/strategyconfig"
	"github.com/wonny/gemscreener/pkg/logger"
)

// Stage names recorded in RunResult.CompletedStages
const (
	StageUniverse  = "S0:Universe"
	StagePrefilter = "S1:Prefilter"
	StageScoring   = "S2-S3:Scoring"
	StageSelection = "S4:Selection"
	StageGems      = "HiddenGems"
)

// Deps are the external capabilities a run needs
type Deps struct {
	Screeners    map[contracts.Market]s0_universe.Screener
	Fundamentals contracts.FundamentalsProvider
	Prices       contracts.PriceHistoryProvider
	Store        *ResultStore // optional
}

// Orchestrator coordinates the screening funnel for one or more markets
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Orchestrator struct {
	cfg      *strategyconfig.Config
	snapshot *strategyconfig.Snapshot

	screeners map[contracts.Market]s0_universe.Screener
	fetcher   *s1_prefilter.BulkFetcher
	filter    *s1_prefilter.Filter
	technical *s2_analysis.TechnicalEvaluator
	scorer    *s3_scoring.Scorer
	selector  *selection.Selector
	store     *ResultStore

	logger *logger.Logger
	now    func() time.Time
}

// RunConfig holds configuration for one market pass
type RunConfig struct {
	Market       contracts.Market
	TopN         int  // 0 = pipeline.top_n
	AnalyzeAll   bool // deep-score every survivor
	AnalyzeLimit int  // 0 = TopN × analyze_multiplier
	UseCache     bool
	RankBy       selection.RankField
}

// RunResult holds the results of one market pass
type RunResult struct {
	RunID      string           `json:"run_id"`
	Market     contracts.Market `json:"market"`
	ConfigHash string           `json:"config_hash"`
	StartedAt  time.Time        `json:"started_at"`
	Duration   time.Duration    `json:"duration"`

	StageDurations  map[string]time.Duration `json:"stage_durations"`
	CompletedStages []string                 `json:"completed_stages"`

	UniverseSize int                     `json:"universe_size"`
	FetchStats   s1_prefilter.FetchStats `json:"fetch_stats"`
	Filter       contracts.FilterResult  `json:"filter"`

	Analyzed int `json:"analyzed"`
	Failed   int `json:"failed"`

	Scored       []contracts.ScoredStock  `json:"scored"`
	TopPicks     []contracts.ScoredStock  `json:"top_picks"`
	ActionCounts map[contracts.Action]int `json:"action_counts"`
	HiddenGems   []contracts.HiddenGem    `json:"hidden_gems,omitempty"`

	// Diagnostic names the stage that produced zero survivors
	Diagnostic string `json:"diagnostic,omitempty"`
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(cfg *strategyconfig.Config, snapshot *strategyconfig.Snapshot, deps Deps, log *logger.Logger) *Orchestrator {
	p := cfg.Pipeline
	log = log.Module("brain")

	fundamental := s2_analysis.NewFundamentalEvaluator(deps.Fundamentals, log)
	technical := s2_analysis.NewTechnicalEvaluator(deps.Prices, p.Lookback(), log)

	return &Orchestrator{
		cfg:       cfg,
		snapshot:  snapshot,
		screeners: deps.Screeners,
		fetcher: s1_prefilter.NewBulkFetcher(deps.Fundamentals, s1_prefilter.BulkOptions{
			Workers:    p.FetchWorkers,
			BatchSize:  p.BatchSize,
			BatchPause: p.BatchPause,
		}, log),
		filter:    s1_prefilter.NewFilter(log),
		technical: technical,
		scorer:    s3_scoring.NewScorer(cfg, fundamental, technical, log),
		selector:  selection.NewSelector(selection.RankByComposite, log),
		store:     deps.Store,
		logger:    log,
		now:       time.Now,
	}
}

// Scorer exposes the configured scorer for single-ticker scoring
func (o *Orchestrator) Scorer() *s3_scoring.Scorer {
	return o.scorer
}

// RunMarket executes S0 → S4 (+ hidden gems) for one market.
// A run where a stage yields nothing returns a result with Diagnostic set, not an error.
func (o *Orchestrator) RunMarket(ctx context.Context, config RunConfig) (*RunResult, error) {
	mcfg, err := o.cfg.Market(config.Market)
	if err != nil {
		return nil, err
	}
	screener, ok := o.screeners[config.Market]
	if !ok {
		return nil, fmt.Errorf("no universe screener for market %s", config.Market)
	}

	p := o.cfg.Pipeline
	if config.TopN <= 0 {
		config.TopN = p.TopN
	}
	if config.AnalyzeLimit <= 0 {
		config.AnalyzeLimit = config.TopN * p.AnalyzeMultiplier
	}

	start := o.now()
	result := &RunResult{
		RunID:           uuid.New().String(),
		Market:          config.Market,
		StartedAt:       start,
		StageDurations:  make(map[string]time.Duration),
		CompletedStages: make([]string, 0),
		ActionCounts:    make(map[contracts.Action]int),
	}
	if o.snapshot != nil {
		result.ConfigHash = o.snapshot.ConfigHash
	}

	log := o.logger.WithFields(map[string]interface{}{
		"run_id": result.RunID,
		"market": config.Market.String(),
	})
	log.WithFields(map[string]interface{}{
		"top_n":         config.TopN,
		"analyze_all":   config.AnalyzeAll,
		"analyze_limit": config.AnalyzeLimit,
		"use_cache":     config.UseCache,
	}).Info("Starting screening run")

	// S0: Universe
	stageStart := time.Now()
	tickers, err := screener.Screen(ctx, s0_universe.Options{
		UseCache:   config.UseCache,
		MaxTickers: mcfg.Universe.MaxTickers,
	})
	if err != nil && !errors.Is(err, contracts.ErrNoTickers) {
		return nil, fmt.Errorf("S0 failed: %w", err)
	}
	result.UniverseSize = len(tickers)
	o.completeStage(result, StageUniverse, stageStart)

	if len(tickers) == 0 {
		result.Diagnostic = fmt.Sprintf("S0: empty universe for %s", config.Market)
		return o.finish(result, log), nil
	}

	// S1: Bulk fetch + filter
	stageStart = time.Now()
	data, stats := o.fetcher.Fetch(ctx, tickers)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("S1 cancelled: %w", err)
	}
	result.FetchStats = stats
	result.Filter = o.filter.Apply(tickers, data, mcfg.Filters)
	o.completeStage(result, StagePrefilter, stageStart)

	if stats.Fetched == 0 {
		result.Diagnostic = fmt.Sprintf("S1: no fundamentals fetched for %d tickers", stats.Requested)
		return o.finish(result, log), nil
	}
	if len(result.Filter.Passed) == 0 {
		result.Diagnostic = "S1: no ticker passed the pre-filter (" + topReasons(result.Filter.Histogram, 3) + ")"
		return o.finish(result, log), nil
	}

	// S2/S3: deep scoring
	stageStart = time.Now()
	toAnalyze := result.Filter.Passed
	if !config.AnalyzeAll && len(toAnalyze) > config.AnalyzeLimit {
		toAnalyze = toAnalyze[:config.AnalyzeLimit]
	}
	result.Analyzed = len(toAnalyze)
	result.Scored = o.scoreAll(ctx, config.Market, toAnalyze, data)
	result.Failed = result.Analyzed - len(result.Scored)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("S2-S3 cancelled: %w", err)
	}
	o.completeStage(result, StageScoring, stageStart)

	// S4: Selection
	stageStart = time.Now()
	selector := o.selector
	if config.RankBy != "" {
		selector = selection.NewSelector(config.RankBy, o.logger)
	}
	result.TopPicks = selector.Select(result.Scored, config.TopN)
	result.ActionCounts = selection.ActionCounts(result.Scored)
	o.completeStage(result, StageSelection, stageStart)

	switch {
	case len(result.Scored) == 0:
		result.Diagnostic = fmt.Sprintf("S2-S3: none of %d analyzed tickers could be scored", result.Analyzed)
	case len(result.TopPicks) == 0:
		result.Diagnostic = "S4: no ticker reached a recommendation tier"
	}

	// 추천 종목이 부족하면 분석하지 않은 생존 종목에서 히든 젬 탐색
	gems := p.HiddenGems
	if recommendations(result.Scored) < gems.TriggerBelow {
		stageStart = time.Now()
		result.HiddenGems = s1_prefilter.FindGems(notAnalyzed(result.Filter.Passed, toAnalyze), data, gems.ScanLimit, gems.MaxResults)
		o.completeStage(result, StageGems, stageStart)
	}

	return o.finish(result, log), nil
}

// scoreAll deep-scores tickers on a bounded group. Each task writes only its own
// slot; failures and panics are logged and leave the slot empty.
func (o *Orchestrator) scoreAll(ctx context.Context, market contracts.Market, tickers []string, data map[string]contracts.Fundamentals) []contracts.ScoredStock {
	slots := make([]*contracts.ScoredStock, len(tickers))

	workers := o.cfg.Pipeline.ScoringWorkers
	if workers <= 0 {
		workers = 5
	}

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i, ticker := range tickers {
		i, ticker := i, ticker
		g.Go(func() error {
			stock, err := o.scoreOne(ctx, market, ticker, data[ticker])
			if err != nil {
				o.logger.WithError(err).WithField("ticker", ticker).Warn("Scoring failed")
				return nil
			}
			slots[i] = stock
			return nil
		})
	}
	_ = g.Wait()

	scored := make([]contracts.ScoredStock, 0, len(tickers))
	for _, s := range slots {
		if s != nil {
			scored = append(scored, *s)
		}
	}
	return scored
}

func (o *Orchestrator) scoreOne(ctx context.Context, market contracts.Market, ticker string, f contracts.Fundamentals) (stock *contracts.ScoredStock, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic scoring %s: %v", ticker, r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t, err := o.technical.Analyze(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("technical analysis: %w", err)
	}
	return o.scorer.Score(market, f, *t)
}

// DailyConfig holds configuration for the daily multi-market run
type DailyConfig struct {
	Markets  []contracts.Market
	UseCache bool
}

// DailyResult holds per-market results of a daily run
type DailyResult struct {
	StartedAt time.Time                       `json:"started_at"`
	Duration  time.Duration                   `json:"duration"`
	Results   map[contracts.Market]*RunResult `json:"results"`
	Errors    map[contracts.Market]string     `json:"errors,omitempty"`
}

// RunDaily runs every requested market with the daily limits.
// A failing market is recorded and does not stop the others.
func (o *Orchestrator) RunDaily(ctx context.Context, config DailyConfig) (*DailyResult, error) {
	markets := config.Markets
	if len(markets) == 0 {
		markets = contracts.AllMarkets
	}

	start := o.now()
	daily := &DailyResult{
		StartedAt: start,
		Results:   make(map[contracts.Market]*RunResult),
		Errors:    make(map[contracts.Market]string),
	}

	for _, market := range markets {
		if err := ctx.Err(); err != nil {
			return daily, err
		}

		result, err := o.RunMarket(ctx, RunConfig{
			Market:       market,
			TopN:         o.cfg.Pipeline.DailyTopN,
			AnalyzeLimit: o.cfg.Pipeline.DailyAnalyzeLimit,
			UseCache:     config.UseCache,
		})
		if err != nil {
			o.logger.WithError(err).WithField("market", market.String()).Error("Daily market run failed")
			daily.Errors[market] = err.Error()
			continue
		}
		daily.Results[market] = result
	}

	daily.Duration = o.now().Sub(start)
	if o.store != nil {
		o.store.PutDaily(daily)
	}

	o.logger.WithFields(map[string]interface{}{
		"markets":  len(markets),
		"failed":   len(daily.Errors),
		"duration": daily.Duration.String(),
	}).Info("Daily run completed")

	return daily, nil
}

func (o *Orchestrator) completeStage(result *RunResult, stage string, start time.Time) {
	result.CompletedStages = append(result.CompletedStages, stage)
	result.StageDurations[stage] = time.Since(start)
}

func (o *Orchestrator) finish(result *RunResult, log *logger.Logger) *RunResult {
	result.Duration = o.now().Sub(result.StartedAt)
	if o.store != nil {
		o.store.Put(result)
	}

	fields := map[string]interface{}{
		"universe":  result.UniverseSize,
		"fetched":   result.FetchStats.Fetched,
		"passed":    len(result.Filter.Passed),
		"analyzed":  result.Analyzed,
		"scored":    len(result.Scored),
		"picks":     len(result.TopPicks),
		"gems":      len(result.HiddenGems),
		"stages":    len(result.CompletedStages),
		"duration":  result.Duration.String(),
		"pass_rate": result.Filter.Summary.PassRate,
	}
	if result.Diagnostic != "" {
		fields["diagnostic"] = result.Diagnostic
		log.WithFields(fields).Warn("Screening run completed with no survivors")
		return result
	}
	log.WithFields(fields).Info("Screening run completed")
	return result
}

func recommendations(stocks []contracts.ScoredStock) int {
	n := 0
	for _, s := range stocks {
		if s.Action.IsRecommendation() {
			n++
		}
	}
	return n
}

// notAnalyzed returns survivors outside analyzed, preserving order
func notAnalyzed(passed, analyzed []string) []string {
	done := make(map[string]bool, len(analyzed))
	for _, t := range analyzed {
		done[t] = true
	}
	out := make([]string, 0, len(passed))
	for _, t := range passed {
		if !done[t] {
			out = append(out, t)
		}
	}
	return out
}

func topReasons(h contracts.RejectionHistogram, n int) string {
	sorted := h.Sorted()
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	parts := make([]string, len(sorted))
	for i, rc := range sorted {
		parts[i] = fmt.Sprintf("%s=%d", rc.Reason, rc.Count)
	}
	return strings.Join(parts, ", ")
}
