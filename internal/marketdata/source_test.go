package marketdata

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hedgineer/eqindex/internal/contracts"
	"github.com/hedgineer/eqindex/pkg/logger"
)

// fakeProvider returns a fixed number of observations or a fixed error.
type fakeProvider struct {
	name  string
	count int
	err   error
	calls int
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) TopStocks(ctx context.Context, date time.Time, limit int) ([]contracts.StockObservation, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	obs := make([]contracts.StockObservation, p.count)
	for i := range obs {
		obs[i] = contracts.StockObservation{
			Symbol:     p.name,
			DataSource: p.name,
			MarketCap:  float64(p.count - i),
		}
	}
	return obs, nil
}

func TestSource_PrimarySucceeds(t *testing.T) {
	primary := &fakeProvider{name: "primary", count: 90}
	secondary := &fakeProvider{name: "secondary", count: 100}
	source := NewSource(logger.NewNop(), primary, secondary)

	obs, err := source.FetchTopStocks(context.Background(), time.Now(), 100)
	require.NoError(t, err)

	assert.Len(t, obs, 90)
	assert.Equal(t, "primary", obs[0].DataSource)
	assert.Zero(t, secondary.calls, "secondary must not be consulted")
}

func TestSource_FallsBackOnError(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: errors.New("rate limited")}
	secondary := &fakeProvider{name: "secondary", count: 60}
	source := NewSource(logger.NewNop(), primary, secondary)

	obs, err := source.FetchTopStocks(context.Background(), time.Now(), 100)
	require.NoError(t, err)

	assert.Len(t, obs, 60)
	assert.Equal(t, "secondary", obs[0].DataSource)
}

func TestSource_FallsBackOnLowCoverage(t *testing.T) {
	// 70 of 100 is below the 80% primary threshold
	primary := &fakeProvider{name: "primary", count: 70}
	secondary := &fakeProvider{name: "secondary", count: 60}
	source := NewSource(logger.NewNop(), primary, secondary)

	obs, err := source.FetchTopStocks(context.Background(), time.Now(), 100)
	require.NoError(t, err)

	assert.Equal(t, "secondary", obs[0].DataSource)
}

func TestSource_SecondaryHeldToLooserBar(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: errors.New("down")}
	// 40 of 100 is below even the 50% secondary threshold
	secondary := &fakeProvider{name: "secondary", count: 40}
	source := NewSource(logger.NewNop(), primary, secondary)

	_, err := source.FetchTopStocks(context.Background(), time.Now(), 100)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "all data sources unavailable")
}

func TestSource_AllProvidersDown(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: errors.New("down")}
	secondary := &fakeProvider{name: "secondary", err: errors.New("down too")}
	source := NewSource(logger.NewNop(), primary, secondary)

	_, err := source.FetchTopStocks(context.Background(), time.Now(), 100)

	require.Error(t, err)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestSource_NoProviders(t *testing.T) {
	source := NewSource(logger.NewNop())

	_, err := source.FetchTopStocks(context.Background(), time.Now(), 100)

	require.Error(t, err)
}
