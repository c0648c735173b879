package index

import (
	"sort"

	"github.com/hedgineer/eqindex/internal/contracts"
)

// CompositionBuilder derives equal-weight index compositions from raw
// observations.
type CompositionBuilder struct {
	topN int
}

// NewCompositionBuilder creates a builder selecting the top topN companies
// by market capitalization.
func NewCompositionBuilder(topN int) *CompositionBuilder {
	return &CompositionBuilder{topN: topN}
}

// TopN returns the constituent count the builder selects per day.
func (b *CompositionBuilder) TopN() int {
	return b.topN
}

// Build ranks observations by market cap descending, truncates to topN and
// assigns every selected row the same weight. An empty input is a valid
// no-data day and yields an empty composition, not an error.
func (b *CompositionBuilder) Build(observations []contracts.StockObservation) []contracts.IndexComposition {
	if len(observations) == 0 {
		return []contracts.IndexComposition{}
	}

	ranked := make([]contracts.StockObservation, len(observations))
	copy(ranked, observations)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].MarketCap > ranked[j].MarketCap
	})

	if len(ranked) > b.topN {
		ranked = ranked[:b.topN]
	}

	weight := 100.0 / float64(len(ranked))

	rows := make([]contracts.IndexComposition, 0, len(ranked))
	for _, obs := range ranked {
		rows = append(rows, contracts.IndexComposition{
			Date:          Day(obs.Date),
			Symbol:        obs.Symbol,
			CompanyName:   obs.CompanyName,
			WeightPercent: weight,
			MarketCap:     obs.MarketCap,
			Price:         obs.LastPrice,
			ReturnPercent: obs.OneDayReturnPercent,
		})
	}

	return rows
}
