// Package alphavantage fetches per-symbol fundamentals and quotes from
// the Alpha Vantage API. It is the slow secondary source: two requests
// per symbol, throttled by the shared HTTP client.
package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hedgineer/eqindex/internal/contracts"
	"github.com/hedgineer/eqindex/internal/index"
	"github.com/hedgineer/eqindex/pkg/httputil"
	"github.com/hedgineer/eqindex/pkg/logger"
)

// UniverseProvider resolves the candidate symbols to quote.
type UniverseProvider interface {
	Symbols(ctx context.Context) []string
}

// Client fetches company overview and quote data from Alpha Vantage.
type Client struct {
	httpClient *httputil.Client
	universe   UniverseProvider
	logger     *logger.Logger
	baseURL    string
	apiKey     string
	workers    int
}

// NewClient creates a new Alpha Vantage client.
func NewClient(httpClient *httputil.Client, universe UniverseProvider, log *logger.Logger, baseURL, apiKey string, workers int) *Client {
	if workers <= 0 {
		workers = 1
	}
	return &Client{
		httpClient: httpClient,
		universe:   universe,
		logger:     log.WithField("provider", "alpha_vantage"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		workers:    workers,
	}
}

// Name identifies the provider in observation rows.
func (c *Client) Name() string {
	return "alpha_vantage"
}

// TopStocks fetches overview+quote per universe symbol and returns the
// top limit by market capitalization. Without an API key the provider is
// unavailable and returns an error immediately.
func (c *Client) TopStocks(ctx context.Context, date time.Time, limit int) ([]contracts.StockObservation, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("alpha vantage API key not configured")
	}

	symbols := c.universe.Symbols(ctx)
	if len(symbols) == 0 {
		return nil, fmt.Errorf("empty symbol universe")
	}

	symbolCh := make(chan string, len(symbols))
	for _, s := range symbols {
		symbolCh <- s
	}
	close(symbolCh)

	var (
		mu  sync.Mutex
		all []contracts.StockObservation
		wg  sync.WaitGroup
	)

	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range symbolCh {
				obs, err := c.fetchSymbol(ctx, date, symbol)
				if err != nil {
					c.logger.WithError(err).WithField("symbol", symbol).Debug("Symbol fetch failed")
					continue
				}
				mu.Lock()
				all = append(all, *obs)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(all) == 0 {
		return nil, fmt.Errorf("no data returned for %d symbols", len(symbols))
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].MarketCap > all[j].MarketCap
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// fetchSymbol combines the OVERVIEW and GLOBAL_QUOTE endpoints into one
// observation.
func (c *Client) fetchSymbol(ctx context.Context, date time.Time, symbol string) (*contracts.StockObservation, error) {
	overview, err := c.fetchOverview(ctx, symbol)
	if err != nil {
		return nil, err
	}

	quote, err := c.fetchQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if overview.marketCap <= 0 || quote.price <= 0 {
		return nil, fmt.Errorf("incomplete data for %s", symbol)
	}

	name := overview.name
	if len(name) > 100 {
		name = name[:97] + "..."
	}

	return &contracts.StockObservation{
		Symbol:              symbol,
		CompanyName:         name,
		Date:                index.Day(date),
		LastPrice:           quote.price,
		MarketCap:           overview.marketCap,
		OneDayReturnPercent: quote.changePercent,
		DataSource:          c.Name(),
	}, nil
}

type overviewData struct {
	name      string
	marketCap float64
}

func (c *Client) fetchOverview(ctx context.Context, symbol string) (*overviewData, error) {
	body, err := c.query(ctx, url.Values{
		"function": {"OVERVIEW"},
		"symbol":   {symbol},
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Name                 string `json:"Name"`
		MarketCapitalization string `json:"MarketCapitalization"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode overview: %w", err)
	}
	if payload.MarketCapitalization == "" {
		return nil, fmt.Errorf("no overview data for %s", symbol)
	}

	marketCap, err := strconv.ParseFloat(payload.MarketCapitalization, 64)
	if err != nil {
		return nil, fmt.Errorf("parse market cap: %w", err)
	}

	name := payload.Name
	if name == "" {
		name = symbol
	}
	return &overviewData{name: name, marketCap: marketCap}, nil
}

type quoteData struct {
	price         float64
	changePercent float64
}

func (c *Client) fetchQuote(ctx context.Context, symbol string) (*quoteData, error) {
	body, err := c.query(ctx, url.Values{
		"function": {"GLOBAL_QUOTE"},
		"symbol":   {symbol},
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		GlobalQuote struct {
			Price         string `json:"05. price"`
			ChangePercent string `json:"10. change percent"`
		} `json:"Global Quote"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode quote: %w", err)
	}
	if payload.GlobalQuote.Price == "" {
		return nil, fmt.Errorf("no quote data for %s", symbol)
	}

	price, err := strconv.ParseFloat(payload.GlobalQuote.Price, 64)
	if err != nil {
		return nil, fmt.Errorf("parse price: %w", err)
	}

	changeStr := strings.TrimSuffix(payload.GlobalQuote.ChangePercent, "%")
	change, err := strconv.ParseFloat(changeStr, 64)
	if err != nil {
		change = 0
	}

	return &quoteData{price: price, changePercent: change}, nil
}

// query performs one API request and returns the raw body.
func (c *Client) query(ctx context.Context, params url.Values) ([]byte, error) {
	params.Set("apikey", c.apiKey)
	fullURL := fmt.Sprintf("%s/query?%s", c.baseURL, params.Encode())

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}
