package nse

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/wonny/gemscreener/pkg/config"
	"github.com/wonny/gemscreener/pkg/httputil"
	"github.com/wonny/gemscreener/pkg/logger"
	"github.com/wonny/gemscreener/pkg/redis"
)

// DefaultBaseURL is the NSE archives host serving index constituent CSVs
const DefaultBaseURL = "https://nsearchives.nseindia.com"

// DefaultIndex is scanned when no index is configured
const DefaultIndex = "NIFTY500"

// Referer is sent with every archive request; the archives host rejects bare clients
const Referer = "https://www.nseindia.com/"

// indexPaths maps index names to constituent CSV paths
var indexPaths = map[string]string{
	"NIFTY50":               "/content/indices/ind_nifty50list.csv",
	"NIFTY500":              "/content/indices/ind_nifty500list.csv",
	"NIFTY_MIDCAP_100":      "/content/indices/ind_niftymidcap100list.csv",
	"NIFTY_SMALLCAP_100":    "/content/indices/ind_niftysmallcap100list.csv",
	"NIFTY_MIDSMALLCAP_400": "/content/indices/ind_niftymidsmallcap400list.csv",
}

// Client fetches NSE index constituents
// ⭐ SSOT: NSE 지수 구성종목 조회는 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new NSE client
func NewClient(httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.Module("nse"),
		baseURL:    DefaultBaseURL,
	}
}

// NewHTTPClient builds the HTTP client for NSE archive downloads.
// NSE throttles harder than Yahoo, so retries back off from 2s.
func NewHTTPClient(cfg *config.Config, limiter *redis.RateLimiter, log *logger.Logger) *httputil.Client {
	maxRetries := 3
	if cfg != nil {
		maxRetries = cfg.HTTP.MaxRetries
	}

	client := httputil.New(cfg, log).
		WithHeader("Referer", Referer).
		WithHeader("Accept", "text/csv,text/plain;q=0.9,*/*;q=0.8").
		WithRetry(maxRetries, 2*time.Second)

	if limiter != nil {
		return client.WithRateLimiter(limiter, redis.NSERateLimit)
	}
	return client.WithLocalRateLimit(float64(redis.NSERateLimit.Limit), 1)
}

// KnownIndex reports whether name maps to a constituent CSV
func KnownIndex(name string) bool {
	_, ok := indexPaths[strings.ToUpper(strings.TrimSpace(name))]
	return ok
}

// Indices lists the supported index names
func Indices() []string {
	names := make([]string, 0, len(indexPaths))
	for name := range indexPaths {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FetchIndex returns the index constituents as Yahoo tickers (SYMBOL.NS)
func (c *Client) FetchIndex(ctx context.Context, index string) ([]string, error) {
	name := strings.ToUpper(strings.TrimSpace(index))
	path, ok := indexPaths[name]
	if !ok {
		return nil, fmt.Errorf("unknown NSE index %q", index)
	}

	body, err := c.httpClient.GetBody(ctx, c.baseURL+path)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", name, err)
	}

	symbols, err := ParseSymbols(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	tickers := make([]string, len(symbols))
	for i, s := range symbols {
		tickers[i] = s + ".NS"
	}

	c.logger.WithFields(map[string]interface{}{
		"index":   name,
		"tickers": len(tickers),
	}).Info("NSE index fetched")

	return tickers, nil
}

// ParseSymbols reads the Symbol column of an NSE constituents CSV
func ParseSymbols(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := -1
	for i, h := range header {
		// 첫 컬럼에 BOM이 붙어 오는 경우가 있음
		if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), "Symbol") {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("missing Symbol column")
	}

	var symbols []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if col >= len(record) {
			continue
		}
		if s := strings.TrimSpace(record[col]); s != "" {
			symbols = append(symbols, s)
		}
	}

	return symbols, nil
}
