package sp500

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/gemscreener/pkg/httputil"
	"github.com/wonny/gemscreener/pkg/logger"
)

const wikipediaHTML = `<html><body>
<table class="wikitable"><tr><td>NOT</td></tr></table>
<table class="wikitable sortable" id="constituents">
<tbody>
<tr><th>Symbol</th><th>Security</th><th>GICS Sector</th></tr>
<tr><td><a href="#">MMM</a>
</td><td>3M</td><td>Industrials</td></tr>
<tr><td><a href="#">BRK.B</a></td><td>Berkshire Hathaway</td><td>Financials</td></tr>
<tr><td>AAPL</td><td>Apple Inc.</td><td>Information Technology</td></tr>
</tbody>
</table>
</body></html>`

const constituentsCSV = `Symbol,Security,GICS Sector
MMM,3M,Industrials
BF.B,Brown-Forman,Consumer Staples
MSFT,Microsoft,Information Technology
`

func TestParseConstituentsHTML(t *testing.T) {
	tickers, err := ParseConstituentsHTML(strings.NewReader(wikipediaHTML))
	require.NoError(t, err)
	assert.Equal(t, []string{"MMM", "BRK-B", "AAPL"}, tickers)

	_, err = ParseConstituentsHTML(strings.NewReader(`<table class="wikitable"></table>`))
	assert.ErrorContains(t, err, "not found")
}

func TestParseConstituentsCSV(t *testing.T) {
	tickers, err := ParseConstituentsCSV(strings.NewReader(constituentsCSV))
	require.NoError(t, err)
	assert.Equal(t, []string{"MMM", "BF-B", "MSFT"}, tickers)

	_, err = ParseConstituentsCSV(strings.NewReader("Security\n3M\n"))
	assert.Error(t, err)
}

func TestNormalizeTicker(t *testing.T) {
	tests := map[string]string{
		"BRK.B":  "BRK-B",
		" aapl ": "AAPL",
		"":       "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeTicker(in), in)
	}
}

func TestClientFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/wiki":
			fmt.Fprint(w, wikipediaHTML)
		case "/csv":
			fmt.Fprint(w, constituentsCSV)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	client := NewClient(httputil.New(nil, logger.NewNop()).WithRetry(0, 0), logger.NewNop())
	client.wikipediaURL = server.URL + "/wiki"
	client.csvURL = server.URL + "/csv"

	wiki, err := client.FetchWikipedia(context.Background())
	require.NoError(t, err)
	assert.Len(t, wiki, 3)

	gh, err := client.FetchGitHub(context.Background())
	require.NoError(t, err)
	assert.Len(t, gh, 3)

	client.wikipediaURL = server.URL + "/broken"
	_, err = client.FetchWikipedia(context.Background())
	assert.Error(t, err)
}
