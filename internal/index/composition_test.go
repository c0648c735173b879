package index

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hedgineer/eqindex/internal/contracts"
)

func obs(symbol string, marketCap, price, ret float64) contracts.StockObservation {
	return contracts.StockObservation{
		Symbol:              symbol,
		CompanyName:         symbol + " Inc.",
		Date:                date(2025, 9, 10),
		LastPrice:           price,
		MarketCap:           marketCap,
		OneDayReturnPercent: ret,
	}
}

func TestCompositionBuilder_RanksByMarketCap(t *testing.T) {
	b := NewCompositionBuilder(3)

	rows := b.Build([]contracts.StockObservation{
		obs("SMALL", 100, 10, 1.0),
		obs("BIG", 1000, 50, 2.0),
		obs("MID", 500, 20, -1.0),
		obs("TINY", 10, 5, 0.5),
	})

	require.Len(t, rows, 3)
	assert.Equal(t, "BIG", rows[0].Symbol)
	assert.Equal(t, "MID", rows[1].Symbol)
	assert.Equal(t, "SMALL", rows[2].Symbol)
}

func TestCompositionBuilder_EqualWeights(t *testing.T) {
	b := NewCompositionBuilder(100)

	observations := make([]contracts.StockObservation, 100)
	for i := range observations {
		observations[i] = obs(fmt.Sprintf("S%03d", i), float64(1000-i), 10, 0)
	}

	rows := b.Build(observations)
	require.Len(t, rows, 100)

	var sum float64
	for _, row := range rows {
		assert.InDelta(t, 1.0, row.WeightPercent, 1e-9)
		sum += row.WeightPercent
	}
	assert.InDelta(t, 100.0, sum, 1e-6)
}

func TestCompositionBuilder_FewerThanTopN(t *testing.T) {
	b := NewCompositionBuilder(100)

	rows := b.Build([]contracts.StockObservation{
		obs("A", 300, 10, 0),
		obs("B", 200, 10, 0),
		obs("C", 100, 10, 0),
	})

	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.InDelta(t, 100.0/3.0, row.WeightPercent, 1e-9)
	}
}

func TestCompositionBuilder_EmptyInput(t *testing.T) {
	b := NewCompositionBuilder(100)

	rows := b.Build(nil)

	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestCompositionBuilder_DoesNotMutateInput(t *testing.T) {
	b := NewCompositionBuilder(2)

	input := []contracts.StockObservation{
		obs("A", 100, 10, 0),
		obs("B", 200, 10, 0),
	}
	b.Build(input)

	assert.Equal(t, "A", input[0].Symbol)
	assert.Equal(t, "B", input[1].Symbol)
}
