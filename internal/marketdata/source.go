// Package marketdata selects between external market data providers with
// a coverage-based fallback chain.
package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/hedgineer/eqindex/internal/contracts"
	"github.com/hedgineer/eqindex/pkg/logger"
)

// Coverage thresholds per chain position. The primary provider must cover
// most of the requested limit before its result is accepted; later
// providers are held to a looser bar since they only run after a failure.
const (
	primaryCoverage   = 0.8
	secondaryCoverage = 0.5
)

// Provider is a ranked quote source.
type Provider interface {
	Name() string
	TopStocks(ctx context.Context, date time.Time, limit int) ([]contracts.StockObservation, error)
}

// Source tries each provider in order and returns the first result with
// acceptable coverage. It implements contracts.StockFetcher.
type Source struct {
	providers []Provider
	logger    *logger.Logger
}

// NewSource creates a fallback chain over the given providers. Order
// matters: the first provider is the primary.
func NewSource(log *logger.Logger, providers ...Provider) *Source {
	return &Source{
		providers: providers,
		logger:    log.WithField("module", "marketdata"),
	}
}

// FetchTopStocks returns the top limit stocks by market cap for the date.
// Each observation carries the name of the provider that produced it.
func (s *Source) FetchTopStocks(ctx context.Context, date time.Time, limit int) ([]contracts.StockObservation, error) {
	if len(s.providers) == 0 {
		return nil, fmt.Errorf("no data providers configured")
	}

	for i, provider := range s.providers {
		threshold := primaryCoverage
		if i > 0 {
			threshold = secondaryCoverage
		}
		minCount := int(float64(limit) * threshold)

		obs, err := provider.TopStocks(ctx, date, limit)
		if err != nil {
			s.logger.WithError(err).WithFields(map[string]interface{}{
				"provider": provider.Name(),
				"date":     date.Format("2006-01-02"),
			}).Warn("Provider fetch failed, trying next")
			continue
		}
		if len(obs) < minCount {
			s.logger.WithFields(map[string]interface{}{
				"provider": provider.Name(),
				"count":    len(obs),
				"required": minCount,
			}).Warn("Provider coverage below threshold, trying next")
			continue
		}

		s.logger.WithFields(map[string]interface{}{
			"provider": provider.Name(),
			"count":    len(obs),
			"date":     date.Format("2006-01-02"),
		}).Info("Fetched top stocks")
		return obs, nil
	}

	return nil, fmt.Errorf("all data sources unavailable for %s", date.Format("2006-01-02"))
}
