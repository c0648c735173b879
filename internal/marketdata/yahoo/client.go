// Package yahoo fetches batched quote data from the Yahoo Finance API.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hedgineer/eqindex/internal/contracts"
	"github.com/hedgineer/eqindex/internal/index"
	"github.com/hedgineer/eqindex/pkg/httputil"
	"github.com/hedgineer/eqindex/pkg/logger"
)

// batchSize is the number of symbols sent per quote request.
const batchSize = 50

// UniverseProvider resolves the candidate symbols to quote.
type UniverseProvider interface {
	Symbols(ctx context.Context) []string
}

// Client fetches quotes from Yahoo Finance and ranks them by market cap.
type Client struct {
	httpClient *httputil.Client
	universe   UniverseProvider
	logger     *logger.Logger
	baseURL    string
	workers    int
}

// NewClient creates a new Yahoo Finance client.
func NewClient(httpClient *httputil.Client, universe UniverseProvider, log *logger.Logger, baseURL string, workers int) *Client {
	if workers <= 0 {
		workers = 1
	}
	return &Client{
		httpClient: httpClient,
		universe:   universe,
		logger:     log.WithField("provider", "yahoo"),
		baseURL:    baseURL,
		workers:    workers,
	}
}

// Name identifies the provider in observation rows.
func (c *Client) Name() string {
	return "yahoo_finance"
}

// quoteResponse mirrors the relevant part of the quote API payload.
type quoteResponse struct {
	QuoteResponse struct {
		Result []quoteResult `json:"result"`
		Error  *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteResponse"`
}

type quoteResult struct {
	Symbol                     string  `json:"symbol"`
	LongName                   string  `json:"longName"`
	ShortName                  string  `json:"shortName"`
	RegularMarketPrice         float64 `json:"regularMarketPrice"`
	RegularMarketChangePercent float64 `json:"regularMarketChangePercent"`
	MarketCap                  float64 `json:"marketCap"`
}

// TopStocks quotes the universe in parallel batches and returns the top
// limit symbols by market capitalization, descending.
func (c *Client) TopStocks(ctx context.Context, date time.Time, limit int) ([]contracts.StockObservation, error) {
	symbols := c.universe.Symbols(ctx)
	if len(symbols) == 0 {
		return nil, fmt.Errorf("empty symbol universe")
	}

	batches := make(chan []string, (len(symbols)+batchSize-1)/batchSize)
	for i := 0; i < len(symbols); i += batchSize {
		end := i + batchSize
		if end > len(symbols) {
			end = len(symbols)
		}
		batches <- symbols[i:end]
	}
	close(batches)

	var (
		mu  sync.Mutex
		all []contracts.StockObservation
		wg  sync.WaitGroup
	)

	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range batches {
				obs, err := c.quoteBatch(ctx, date, batch)
				if err != nil {
					c.logger.WithError(err).WithField("batch_size", len(batch)).Warn("Quote batch failed")
					continue
				}
				mu.Lock()
				all = append(all, obs...)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(all) == 0 {
		return nil, fmt.Errorf("no quotes returned for %d symbols", len(symbols))
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].MarketCap > all[j].MarketCap
	})
	if len(all) > limit {
		all = all[:limit]
	}

	c.logger.WithFields(map[string]interface{}{
		"date":  date.Format("2006-01-02"),
		"count": len(all),
	}).Debug("Fetched top stocks")

	return all, nil
}

// quoteBatch fetches one batch of symbols from the quote endpoint.
func (c *Client) quoteBatch(ctx context.Context, date time.Time, symbols []string) ([]contracts.StockObservation, error) {
	params := url.Values{}
	params.Set("symbols", strings.Join(symbols, ","))
	params.Set("fields", "longName,shortName,regularMarketPrice,regularMarketChangePercent,marketCap")

	fullURL := fmt.Sprintf("%s/v7/finance/quote?%s", c.baseURL, params.Encode())

	resp, err := c.httpClient.GetWithHeaders(ctx, fullURL, map[string]string{
		"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
	})
	if err != nil {
		return nil, fmt.Errorf("quote request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var payload quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode quote response: %w", err)
	}
	if payload.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("quote API error: %s", payload.QuoteResponse.Error.Description)
	}

	obs := make([]contracts.StockObservation, 0, len(payload.QuoteResponse.Result))
	for _, q := range payload.QuoteResponse.Result {
		if q.RegularMarketPrice <= 0 || q.MarketCap <= 0 {
			continue
		}

		name := q.LongName
		if name == "" {
			name = q.ShortName
		}
		if name == "" {
			name = q.Symbol
		}
		if len(name) > 100 {
			name = name[:97] + "..."
		}

		obs = append(obs, contracts.StockObservation{
			Symbol:              q.Symbol,
			CompanyName:         name,
			Date:                index.Day(date),
			LastPrice:           q.RegularMarketPrice,
			MarketCap:           q.MarketCap,
			OneDayReturnPercent: q.RegularMarketChangePercent,
			DataSource:          c.Name(),
		})
	}
	return obs, nil
}
