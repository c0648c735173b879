package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hedgineer/eqindex/pkg/config"
	"github.com/hedgineer/eqindex/pkg/httputil"
	"github.com/hedgineer/eqindex/pkg/logger"
)

type staticUniverse struct {
	symbols []string
}

func (u staticUniverse) Symbols(ctx context.Context) []string {
	return u.symbols
}

func newTestClient(baseURL string, symbols ...string) *Client {
	cfg := &config.Config{LogLevel: "error"}
	httpClient := httputil.New(cfg, logger.NewNop()).DisableRetry()
	return NewClient(httpClient, staticUniverse{symbols: symbols}, logger.NewNop(), baseURL, 2)
}

func quotePayload(symbols []string) string {
	results := make([]string, 0, len(symbols))
	for i, s := range symbols {
		results = append(results, fmt.Sprintf(`{
			"symbol": %q,
			"longName": "%s Incorporated",
			"regularMarketPrice": %d,
			"regularMarketChangePercent": 0.5,
			"marketCap": %d
		}`, s, s, 100+i, (len(symbols)-i)*1000000))
	}
	return fmt.Sprintf(`{"quoteResponse":{"result":[%s],"error":null}}`, strings.Join(results, ","))
}

func TestTopStocks_RanksByMarketCap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v7/finance/quote", r.URL.Path)
		symbols := strings.Split(r.URL.Query().Get("symbols"), ",")
		fmt.Fprint(w, quotePayload(symbols))
	}))
	defer server.Close()

	client := newTestClient(server.URL, "AAA", "BBB", "CCC", "DDD")

	obs, err := client.TopStocks(context.Background(), time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC), 2)
	require.NoError(t, err)

	require.Len(t, obs, 2)
	assert.Equal(t, "AAA", obs[0].Symbol, "largest market cap first")
	assert.Equal(t, "BBB", obs[1].Symbol)
	assert.Equal(t, "yahoo_finance", obs[0].DataSource)
	assert.Equal(t, "AAA Incorporated", obs[0].CompanyName)
}

func TestTopStocks_FiltersInvalidQuotes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteResponse":{"result":[
			{"symbol":"GOOD","longName":"Good Co","regularMarketPrice":10,"regularMarketChangePercent":1.0,"marketCap":1000},
			{"symbol":"NOPRICE","longName":"No Price","regularMarketPrice":0,"regularMarketChangePercent":0,"marketCap":1000},
			{"symbol":"NOCAP","longName":"No Cap","regularMarketPrice":10,"regularMarketChangePercent":0,"marketCap":0}
		],"error":null}}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, "GOOD", "NOPRICE", "NOCAP")

	obs, err := client.TopStocks(context.Background(), time.Now(), 10)
	require.NoError(t, err)

	require.Len(t, obs, 1)
	assert.Equal(t, "GOOD", obs[0].Symbol)
}

func TestTopStocks_AllBatchesFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(server.URL, "AAA", "BBB")

	_, err := client.TopStocks(context.Background(), time.Now(), 10)

	require.Error(t, err)
}

func TestTopStocks_EmptyUniverse(t *testing.T) {
	client := newTestClient("http://unused")

	_, err := client.TopStocks(context.Background(), time.Now(), 10)

	require.Error(t, err)
}

func TestTopStocks_NameFallsBackToShortName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteResponse":{"result":[
			{"symbol":"SHRT","shortName":"Short Co","regularMarketPrice":10,"regularMarketChangePercent":0,"marketCap":1000}
		],"error":null}}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, "SHRT")

	obs, err := client.TopStocks(context.Background(), time.Now(), 10)
	require.NoError(t, err)

	require.Len(t, obs, 1)
	assert.Equal(t, "Short Co", obs[0].CompanyName)
}
