package contracts

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by providers when a ticker is unknown
	ErrNotFound = errors.New("ticker not found")
	// ErrNoData marks a record that exists but is empty or near-empty
	ErrNoData = errors.New("no data")
	// ErrInsufficientHistory marks a price history shorter than MinTechnicalBars
	ErrInsufficientHistory = errors.New("insufficient price history")
	// ErrNoTickers is returned when no universe source yields any ticker
	ErrNoTickers = errors.New("no tickers available")
)

// FundamentalsProvider fetches one ticker's fundamentals
// ⭐ SSOT: 펀더멘털 데이터 소스 인터페이스
type FundamentalsProvider interface {
	FetchFundamentals(ctx context.Context, ticker string) (*RawFundamentals, error)
}

// PriceHistoryProvider fetches daily bars covering the lookback window
// ⭐ SSOT: 가격 이력 데이터 소스 인터페이스
type PriceHistoryProvider interface {
	FetchPriceHistory(ctx context.Context, ticker string, lookback time.Duration) ([]Bar, error)
}

// UniverseSource returns a list of tickers
type UniverseSource func(ctx context.Context) ([]string, error)

// CacheInfo describes a cached ticker list
type CacheInfo struct {
	Market    Market        `json:"market"`
	Exists    bool          `json:"exists"`
	Valid     bool          `json:"valid"`
	Count     int           `json:"count"`
	Timestamp time.Time     `json:"timestamp"`
	Age       time.Duration `json:"age"`
	Location  string        `json:"location"`
}

// TickerCache persists screened universes between runs
type TickerCache interface {
	Load(ctx context.Context, market Market) ([]string, bool, error)
	Save(ctx context.Context, market Market, tickers []string) error
	Clear(ctx context.Context, market Market) error
	Info(ctx context.Context, market Market) (*CacheInfo, error)
}
