package index

import (
	"sort"
	"time"

	"github.com/hedgineer/eqindex/internal/contracts"
)

// Differ computes constituent changes between two temporally adjacent
// compositions.
type Differ struct {
	topN int
}

// NewDiffer creates a differ. topN is used to infer the weight an exited
// symbol carried: the true historical weight is not re-queried, only the
// equal-weight fraction implied by the constituent count. A known
// imprecision when a day held fewer than topN constituents.
func NewDiffer(topN int) *Differ {
	return &Differ{topN: topN}
}

// Diff returns entered and exited changes for date given the previous
// day's symbol set and the current composition. A nil or empty previous
// set means there is nothing to diff against and yields no changes.
func (d *Differ) Diff(date time.Time, previousSymbols map[string]bool, current []contracts.IndexComposition) []contracts.CompositionChange {
	if len(previousSymbols) == 0 {
		return nil
	}

	date = Day(date)
	currentBySymbol := make(map[string]contracts.IndexComposition, len(current))
	for _, row := range current {
		currentBySymbol[row.Symbol] = row
	}

	changes := make([]contracts.CompositionChange, 0)

	for _, row := range current {
		if previousSymbols[row.Symbol] {
			continue
		}
		changes = append(changes, contracts.CompositionChange{
			Date:                  date,
			Symbol:                row.Symbol,
			CompanyName:           row.CompanyName,
			ChangeType:            contracts.ChangeEntered,
			PreviousWeightPercent: 0,
			NewWeightPercent:      row.WeightPercent,
		})
	}

	exited := make([]string, 0)
	for symbol := range previousSymbols {
		if _, ok := currentBySymbol[symbol]; !ok {
			exited = append(exited, symbol)
		}
	}
	sort.Strings(exited)

	for _, symbol := range exited {
		changes = append(changes, contracts.CompositionChange{
			Date:                  date,
			Symbol:                symbol,
			CompanyName:           "Unknown",
			ChangeType:            contracts.ChangeExited,
			PreviousWeightPercent: 100.0 / float64(d.topN),
			NewWeightPercent:      0,
		})
	}

	return changes
}

// SymbolSet extracts the symbol set of a composition.
func SymbolSet(composition []contracts.IndexComposition) map[string]bool {
	set := make(map[string]bool, len(composition))
	for _, row := range composition {
		set[row.Symbol] = true
	}
	return set
}
