package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/wonny/gemscreener/internal/contracts"
)

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"chart"`
}

// FetchPriceHistory fetches daily bars covering lookback, oldest first.
// Rows with a null close are skipped.
func (c *Client) FetchPriceHistory(ctx context.Context, ticker string, lookback time.Duration) ([]contracts.Bar, error) {
	now := c.now()

	params := url.Values{}
	params.Set("period1", fmt.Sprintf("%d", now.Add(-lookback).Unix()))
	params.Set("period2", fmt.Sprintf("%d", now.Unix()))
	params.Set("interval", "1d")
	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.chartBaseURL, url.PathEscape(ticker), params.Encode())

	var resp chartResponse
	if err := c.httpClient.GetJSON(ctx, fullURL, &resp); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%s: %w", ticker, contracts.ErrNotFound)
		}
		return nil, fmt.Errorf("chart %s: %w", ticker, err)
	}

	if e := resp.Chart.Error; e != nil {
		return nil, fmt.Errorf("chart %s: %s", ticker, e.Description)
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%s: %w", ticker, contracts.ErrNoData)
	}

	result := resp.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	bars := make([]contracts.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		closePx := at(quote.Close, i)
		if closePx == nil {
			continue
		}
		bars = append(bars, contracts.Bar{
			Date:   time.Unix(ts, 0).UTC(),
			Open:   orDefault(at(quote.Open, i), *closePx),
			High:   orDefault(at(quote.High, i), *closePx),
			Low:    orDefault(at(quote.Low, i), *closePx),
			Close:  *closePx,
			Volume: orDefault(at(quote.Volume, i), 0),
		})
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"bars":   len(bars),
	}).Debug("Price history fetched")

	return bars, nil
}

func at(values []*float64, i int) *float64 {
	if i < len(values) {
		return values[i]
	}
	return nil
}

func orDefault(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
