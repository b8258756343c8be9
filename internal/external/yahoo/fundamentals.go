package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/wonny/gemscreener/internal/contracts"
	"github.com/wonny/gemscreener/pkg/redis"
)

// quoteSummaryModules are the modules requested for one fundamentals record
const quoteSummaryModules = "price,summaryDetail,defaultKeyStatistics,financialData,assetProfile,earningsHistory"

// rawValue is Yahoo's {"raw": x, "fmt": "..."} number wrapper
type rawValue struct {
	Raw *float64 `json:"raw"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []quoteSummaryResult `json:"result"`
		Error  *apiError            `json:"error"`
	} `json:"quoteSummary"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type quoteSummaryResult struct {
	Price struct {
		LongName           string   `json:"longName"`
		ShortName          string   `json:"shortName"`
		RegularMarketPrice rawValue `json:"regularMarketPrice"`
		MarketCap          rawValue `json:"marketCap"`
	} `json:"price"`

	SummaryDetail struct {
		TrailingPE    rawValue `json:"trailingPE"`
		ForwardPE     rawValue `json:"forwardPE"`
		DividendYield rawValue `json:"dividendYield"`
		PayoutRatio   rawValue `json:"payoutRatio"`
		Volume        rawValue `json:"volume"`
		AverageVolume rawValue `json:"averageVolume"`
		Beta          rawValue `json:"beta"`
		PriceToSales  rawValue `json:"priceToSalesTrailing12Months"`
	} `json:"summaryDetail"`

	DefaultKeyStatistics struct {
		PEGRatio                rawValue `json:"pegRatio"`
		PriceToBook             rawValue `json:"priceToBook"`
		TrailingEPS             rawValue `json:"trailingEps"`
		ForwardEPS              rawValue `json:"forwardEps"`
		EarningsQuarterlyGrowth rawValue `json:"earningsQuarterlyGrowth"`
	} `json:"defaultKeyStatistics"`

	FinancialData struct {
		CurrentPrice      rawValue `json:"currentPrice"`
		FreeCashflow      rawValue `json:"freeCashflow"`
		OperatingCashflow rawValue `json:"operatingCashflow"`
		DebtToEquity      rawValue `json:"debtToEquity"`
		CurrentRatio      rawValue `json:"currentRatio"`
		QuickRatio        rawValue `json:"quickRatio"`
		ReturnOnEquity    rawValue `json:"returnOnEquity"`
		ReturnOnAssets    rawValue `json:"returnOnAssets"`
		ProfitMargins     rawValue `json:"profitMargins"`
		OperatingMargins  rawValue `json:"operatingMargins"`
		RevenueGrowth     rawValue `json:"revenueGrowth"`
		EarningsGrowth    rawValue `json:"earningsGrowth"`
	} `json:"financialData"`

	AssetProfile struct {
		Sector   string `json:"sector"`
		Industry string `json:"industry"`
	} `json:"assetProfile"`

	EarningsHistory struct {
		History []struct {
			EPSActual rawValue `json:"epsActual"`
		} `json:"history"`
	} `json:"earningsHistory"`
}

// FetchFundamentals fetches one ticker's fundamentals in provider units
// ⭐ SSOT: quoteSummary → RawFundamentals 매핑은 여기서만
func (c *Client) FetchFundamentals(ctx context.Context, ticker string) (*contracts.RawFundamentals, error) {
	if c.cache == nil {
		return c.fetchFundamentals(ctx, ticker)
	}

	var raw contracts.RawFundamentals
	err := c.cache.GetOrSet(ctx, redis.FundamentalsKey(ticker), &raw, redis.TTLFundamentals, func() (interface{}, error) {
		return c.fetchFundamentals(ctx, ticker)
	})
	if err != nil {
		return nil, err
	}
	return &raw, nil
}

func (c *Client) fetchFundamentals(ctx context.Context, ticker string) (*contracts.RawFundamentals, error) {
	resp, err := c.quoteSummary(ctx, ticker)
	if err != nil && isAuthError(err) {
		// 크럼 만료: 한 번만 재시도
		c.resetCrumb()
		resp, err = c.quoteSummary(ctx, ticker)
	}
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%s: %w", ticker, contracts.ErrNotFound)
		}
		return nil, fmt.Errorf("quoteSummary %s: %w", ticker, err)
	}

	if e := resp.QuoteSummary.Error; e != nil {
		if strings.EqualFold(e.Code, "Not Found") {
			return nil, fmt.Errorf("%s: %w", ticker, contracts.ErrNotFound)
		}
		return nil, fmt.Errorf("quoteSummary %s: %s", ticker, e.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("%s: %w", ticker, contracts.ErrNotFound)
	}

	return toRawFundamentals(ticker, &resp.QuoteSummary.Result[0]), nil
}

func (c *Client) quoteSummary(ctx context.Context, ticker string) (*quoteSummaryResponse, error) {
	crumb, err := c.getCrumb(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("modules", quoteSummaryModules)
	params.Set("crumb", crumb)
	fullURL := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?%s", c.quoteBaseURL, url.PathEscape(ticker), params.Encode())

	var resp quoteSummaryResponse
	if err := c.httpClient.GetJSON(ctx, fullURL, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// toRawFundamentals maps one quoteSummary result.
// Yahoo reports debtToEquity in percent; RawFundamentals carries the ratio.
func toRawFundamentals(ticker string, r *quoteSummaryResult) *contracts.RawFundamentals {
	name := r.Price.LongName
	if name == "" {
		name = r.Price.ShortName
	}

	price := r.FinancialData.CurrentPrice.Raw
	if price == nil {
		price = r.Price.RegularMarketPrice.Raw
	}

	var debtToEquity *float64
	if de := r.FinancialData.DebtToEquity.Raw; de != nil {
		debtToEquity = contracts.F64(*de / 100)
	}

	var epsHistory []float64
	for _, h := range r.EarningsHistory.History {
		if h.EPSActual.Raw != nil {
			epsHistory = append(epsHistory, *h.EPSActual.Raw)
		}
	}

	return &contracts.RawFundamentals{
		Ticker:      ticker,
		CompanyName: name,
		Sector:      r.AssetProfile.Sector,
		Industry:    r.AssetProfile.Industry,

		MarketCap:    r.Price.MarketCap.Raw,
		CurrentPrice: price,
		Volume:       r.SummaryDetail.Volume.Raw,
		AvgVolume:    r.SummaryDetail.AverageVolume.Raw,
		Beta:         r.SummaryDetail.Beta.Raw,

		PERatio:        r.SummaryDetail.TrailingPE.Raw,
		ForwardPE:      r.SummaryDetail.ForwardPE.Raw,
		PEGRatio:       r.DefaultKeyStatistics.PEGRatio.Raw,
		PriceToBook:    r.DefaultKeyStatistics.PriceToBook.Raw,
		PriceToSales:   r.SummaryDetail.PriceToSales.Raw,
		TrailingEPS:    r.DefaultKeyStatistics.TrailingEPS.Raw,
		ForwardEPS:     r.DefaultKeyStatistics.ForwardEPS.Raw,
		DividendYield:  r.SummaryDetail.DividendYield.Raw,
		PayoutRatio:    r.SummaryDetail.PayoutRatio.Raw,
		FreeCashFlow:   r.FinancialData.FreeCashflow.Raw,
		OperatingCash:  r.FinancialData.OperatingCashflow.Raw,
		DebtToEquity:   debtToEquity,
		CurrentRatio:   r.FinancialData.CurrentRatio.Raw,
		QuickRatio:     r.FinancialData.QuickRatio.Raw,
		ROE:            r.FinancialData.ReturnOnEquity.Raw,
		ROA:            r.FinancialData.ReturnOnAssets.Raw,
		ProfitMargin:   r.FinancialData.ProfitMargins.Raw,
		OperatingMgn:   r.FinancialData.OperatingMargins.Raw,
		RevenueGrowth:  r.FinancialData.RevenueGrowth.Raw,
		EarningsGrowth: r.FinancialData.EarningsGrowth.Raw,
		EarningsQtrGr:  r.DefaultKeyStatistics.EarningsQuarterlyGrowth.Raw,

		EPSHistory: epsHistory,
	}
}
