// Package universe resolves the candidate symbol list that providers rank
// by market capitalization.
package universe

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hedgineer/eqindex/pkg/httputil"
	"github.com/hedgineer/eqindex/pkg/logger"
)

// SP500 resolves the S&P 500 constituent list by scraping the public
// constituents table, falling back to an embedded snapshot when the
// scrape fails.
type SP500 struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	listURL    string
}

// NewSP500 creates a new S&P 500 universe provider.
func NewSP500(httpClient *httputil.Client, log *logger.Logger, listURL string) *SP500 {
	return &SP500{
		httpClient: httpClient,
		logger:     log.WithField("module", "universe"),
		listURL:    listURL,
	}
}

// Symbols returns the constituent symbols. Dots in tickers are normalized
// to dashes to match quote API conventions (BRK.B -> BRK-B).
func (u *SP500) Symbols(ctx context.Context) []string {
	symbols, err := u.scrape(ctx)
	if err != nil {
		u.logger.WithError(err).Warn("Constituent scrape failed, using embedded snapshot")
		return fallbackSymbols()
	}
	if len(symbols) < 400 {
		u.logger.WithField("count", len(symbols)).Warn("Constituent scrape looks truncated, using embedded snapshot")
		return fallbackSymbols()
	}
	return symbols
}

// scrape parses the first column of the constituents table.
func (u *SP500) scrape(ctx context.Context) ([]string, error) {
	resp, err := u.httpClient.Get(ctx, u.listURL)
	if err != nil {
		return nil, fmt.Errorf("fetch constituent list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse constituent page: %w", err)
	}

	symbols := make([]string, 0, 510)
	doc.Find("table#constituents tbody tr td:first-child").Each(func(_ int, cell *goquery.Selection) {
		symbol := strings.TrimSpace(cell.Text())
		if symbol == "" {
			return
		}
		symbols = append(symbols, strings.ReplaceAll(symbol, ".", "-"))
	})

	if len(symbols) == 0 {
		return nil, fmt.Errorf("no symbols found in constituent table")
	}
	return symbols, nil
}

// fallbackSymbols is a static snapshot of large-cap constituents, enough
// to fill a top-100 selection when the live list is unreachable.
func fallbackSymbols() []string {
	return []string{
		"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA", "META", "TSLA", "BRK-B",
		"UNH", "JNJ", "JPM", "V", "PG", "XOM", "HD", "CVX", "MA", "PFE",
		"ABBV", "BAC", "COST", "KO", "AVGO", "WMT", "DIS", "TMO", "PEP",
		"MRK", "ABT", "CSCO", "ACN", "LIN", "DHR", "VZ", "ADBE", "CRM",
		"NFLX", "CMCSA", "NKE", "INTC", "TXN", "AMD", "QCOM", "PM", "WFC",
		"UPS", "RTX", "LOW", "HON", "SPGI", "NEE", "IBM", "AMGN", "CAT",
		"BA", "SBUX", "BLK", "GE", "AXP", "MDT", "DE", "ELV", "BKNG",
		"GILD", "MCD", "MMM", "CVS", "ADP", "TJX", "VRTX", "SYK", "MDLZ",
		"ZTS", "LRCX", "CB", "ISRG", "C", "SO", "TMUS", "MO", "ADI",
		"DUK", "PLD", "CI", "SCHW", "FIS", "EMR", "SHW", "BSX", "ICE",
		"ITW", "BDX", "NSC", "COP", "MMC", "AON", "USB", "EQIX", "WM",
		"NOW", "CL", "FCX", "GS", "MCO", "TGT", "F", "GM", "SPG", "APD",
	}
}
