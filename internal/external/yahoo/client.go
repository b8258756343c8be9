package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/wonny/gemscreener/pkg/config"
	"github.com/wonny/gemscreener/pkg/httputil"
	"github.com/wonny/gemscreener/pkg/logger"
	"github.com/wonny/gemscreener/pkg/redis"
)

// Client handles communication with Yahoo Finance
// ⭐ SSOT: Yahoo Finance 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	cache      *redis.Cache

	quoteBaseURL string
	chartBaseURL string
	cookieURL    string

	now func() time.Time

	mu    sync.Mutex
	crumb string
}

// NewClient creates a new Yahoo Finance client.
// cache may be nil; a disabled redis cache always falls through to the API.
func NewClient(httpClient *httputil.Client, cfg config.YahooConfig, cache *redis.Cache, log *logger.Logger) *Client {
	return &Client{
		httpClient:   httpClient,
		logger:       log.Module("yahoo"),
		cache:        cache,
		quoteBaseURL: strings.TrimRight(cfg.QuoteBaseURL, "/"),
		chartBaseURL: strings.TrimRight(cfg.ChartBaseURL, "/"),
		cookieURL:    cfg.CookieURL,
		now:          time.Now,
	}
}

// NewHTTPClient builds the shared HTTP client for Yahoo calls.
// With redis enabled the sliding-window limiter is shared across processes,
// otherwise an in-process token bucket is used.
func NewHTTPClient(cfg *config.Config, limiter *redis.RateLimiter, log *logger.Logger) *httputil.Client {
	client := httputil.New(cfg, log)
	if limiter != nil && cfg.Redis.Enabled {
		return client.WithRateLimiter(limiter, redis.YahooRateLimit)
	}
	return client.WithLocalRateLimit(cfg.Yahoo.RateLimit, cfg.Yahoo.Burst)
}

// getCrumb returns the session crumb, fetching it on first use
func (c *Client) getCrumb(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.crumb != "" {
		return c.crumb, nil
	}

	// 쿠키 부트스트랩: 응답 코드는 무시 (404여도 세션 쿠키는 설정됨)
	if c.cookieURL != "" {
		resp, err := c.httpClient.Get(ctx, c.cookieURL)
		if err != nil {
			c.logger.WithError(err).Debug("Cookie bootstrap failed")
		} else {
			resp.Body.Close()
		}
	}

	body, err := c.httpClient.GetBody(ctx, c.chartBaseURL+"/v1/test/getcrumb")
	if err != nil {
		return "", fmt.Errorf("fetch crumb: %w", err)
	}

	crumb := strings.TrimSpace(string(body))
	if crumb == "" || strings.Contains(crumb, "<") {
		return "", fmt.Errorf("fetch crumb: invalid crumb response")
	}

	c.crumb = crumb
	c.logger.Debug("Yahoo crumb acquired")
	return crumb, nil
}

// resetCrumb drops the cached crumb after an auth failure
func (c *Client) resetCrumb() {
	c.mu.Lock()
	c.crumb = ""
	c.mu.Unlock()
}

// isAuthError reports whether err is a 401/403 from Yahoo
func isAuthError(err error) bool {
	var statusErr *httputil.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden
	}
	return false
}

// isNotFound reports whether err is a 404 from Yahoo
func isNotFound(err error) bool {
	var statusErr *httputil.StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}
