package sp500

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/gemscreener/pkg/httputil"
	"github.com/wonny/gemscreener/pkg/logger"
)

const (
	// WikipediaURL lists the S&P 500 constituents in table#constituents
	WikipediaURL = "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"
	// GitHubCSVURL is the datasets mirror of the constituents list
	GitHubCSVURL = "https://raw.githubusercontent.com/datasets/s-and-p-500-companies/master/data/constituents.csv"
)

// Client fetches S&P 500 constituents
// ⭐ SSOT: S&P 500 구성종목 조회는 이 클라이언트에서만
type Client struct {
	httpClient   *httputil.Client
	logger       *logger.Logger
	wikipediaURL string
	csvURL       string
}

// NewClient creates a new S&P 500 client
func NewClient(httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient:   httpClient,
		logger:       log.Module("sp500"),
		wikipediaURL: WikipediaURL,
		csvURL:       GitHubCSVURL,
	}
}

// FetchWikipedia scrapes the constituents table
func (c *Client) FetchWikipedia(ctx context.Context) ([]string, error) {
	body, err := c.httpClient.GetBody(ctx, c.wikipediaURL)
	if err != nil {
		return nil, fmt.Errorf("fetch wikipedia: %w", err)
	}

	tickers, err := ParseConstituentsHTML(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	c.logger.WithField("tickers", len(tickers)).Info("S&P 500 fetched from Wikipedia")
	return tickers, nil
}

// FetchGitHub downloads the constituents CSV
func (c *Client) FetchGitHub(ctx context.Context) ([]string, error) {
	body, err := c.httpClient.GetBody(ctx, c.csvURL)
	if err != nil {
		return nil, fmt.Errorf("fetch constituents csv: %w", err)
	}

	tickers, err := ParseConstituentsCSV(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	c.logger.WithField("tickers", len(tickers)).Info("S&P 500 fetched from GitHub")
	return tickers, nil
}

// ParseConstituentsHTML reads the first column of table#constituents
func ParseConstituentsHTML(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	table := doc.Find("table#constituents")
	if table.Length() == 0 {
		return nil, fmt.Errorf("constituents table not found")
	}

	var tickers []string
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		// 헤더 행은 td가 없음
		cell := row.Find("td").First()
		if cell.Length() == 0 {
			return
		}
		if t := NormalizeTicker(cell.Text()); t != "" {
			tickers = append(tickers, t)
		}
	})

	if len(tickers) == 0 {
		return nil, fmt.Errorf("constituents table is empty")
	}
	return tickers, nil
}

// ParseConstituentsCSV reads the Symbol column of the constituents CSV
func ParseConstituentsCSV(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), "Symbol") {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("missing Symbol column")
	}

	var tickers []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if col < len(record) {
			if t := NormalizeTicker(record[col]); t != "" {
				tickers = append(tickers, t)
			}
		}
	}

	if len(tickers) == 0 {
		return nil, fmt.Errorf("constituents csv is empty")
	}
	return tickers, nil
}

// NormalizeTicker converts share-class dots to Yahoo dashes (BRK.B → BRK-B)
func NormalizeTicker(s string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), ".", "-")
}
