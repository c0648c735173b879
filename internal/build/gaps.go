package build

import (
	"context"
	"fmt"
	"time"

	"github.com/hedgineer/eqindex/internal/contracts"
)

// GapDetector determines which trading days lack persisted state. It only
// reads; each of the three checks is independent, since a date may hold
// observations but no composition yet.
type GapDetector struct {
	store contracts.ObservationStore
}

// NewGapDetector creates a gap detector over the given store.
func NewGapDetector(store contracts.ObservationStore) *GapDetector {
	return &GapDetector{store: store}
}

// MissingObservations returns the subsequence of days lacking any stock
// observation.
func (g *GapDetector) MissingObservations(ctx context.Context, days []time.Time) ([]time.Time, error) {
	present, err := g.store.DatesWithObservations(ctx, days)
	if err != nil {
		return nil, fmt.Errorf("check observation dates: %w", err)
	}
	return missing(days, present), nil
}

// MissingCompositions returns the subsequence of days lacking a persisted
// composition.
func (g *GapDetector) MissingCompositions(ctx context.Context, days []time.Time) ([]time.Time, error) {
	present, err := g.store.DatesWithCompositions(ctx, days)
	if err != nil {
		return nil, fmt.Errorf("check composition dates: %w", err)
	}
	return missing(days, present), nil
}

// MissingPerformance returns the subsequence of days lacking a persisted
// performance record.
func (g *GapDetector) MissingPerformance(ctx context.Context, days []time.Time) ([]time.Time, error) {
	present, err := g.store.DatesWithPerformance(ctx, days)
	if err != nil {
		return nil, fmt.Errorf("check performance dates: %w", err)
	}
	return missing(days, present), nil
}

// missing preserves the input order, so an ascending input stays ascending.
func missing(days []time.Time, present map[time.Time]bool) []time.Time {
	out := make([]time.Time, 0)
	for _, d := range days {
		if !present[d] {
			out = append(out, d)
		}
	}
	return out
}
