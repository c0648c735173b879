package index

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCalendar_IsTradingDay(t *testing.T) {
	c := NewCalendar()

	assert.True(t, c.IsTradingDay(date(2025, 9, 8)), "Monday")
	assert.True(t, c.IsTradingDay(date(2025, 9, 12)), "Friday")
	assert.False(t, c.IsTradingDay(date(2025, 9, 13)), "Saturday")
	assert.False(t, c.IsTradingDay(date(2025, 9, 14)), "Sunday")
}

func TestCalendar_TradingDaysInRange(t *testing.T) {
	c := NewCalendar()

	// Tue 2025-09-09 through Mon 2025-09-15 spans a weekend
	days := c.TradingDaysInRange(date(2025, 9, 9), date(2025, 9, 15))

	assert.Len(t, days, 5)
	assert.Equal(t, date(2025, 9, 9), days[0])
	assert.Equal(t, date(2025, 9, 12), days[3])
	assert.Equal(t, date(2025, 9, 15), days[4])
}

func TestCalendar_TradingDaysInRange_SingleDay(t *testing.T) {
	c := NewCalendar()

	days := c.TradingDaysInRange(date(2025, 9, 10), date(2025, 9, 10))
	assert.Equal(t, []time.Time{date(2025, 9, 10)}, days)

	// A weekend-only range has no trading days
	days = c.TradingDaysInRange(date(2025, 9, 13), date(2025, 9, 14))
	assert.Empty(t, days)
}

func TestCalendar_TradingDaysInRange_Inverted(t *testing.T) {
	c := NewCalendar()

	days := c.TradingDaysInRange(date(2025, 9, 15), date(2025, 9, 9))
	assert.Empty(t, days)
}

func TestCalendar_PreviousTradingDay(t *testing.T) {
	c := NewCalendar()

	// Monday reaches back across the weekend to Friday
	assert.Equal(t, date(2025, 9, 12), c.PreviousTradingDay(date(2025, 9, 15)))
	// Mid-week is just the prior day
	assert.Equal(t, date(2025, 9, 9), c.PreviousTradingDay(date(2025, 9, 10)))
	// Sunday reaches back to Friday
	assert.Equal(t, date(2025, 9, 12), c.PreviousTradingDay(date(2025, 9, 14)))
}

func TestDay_NormalizesToMidnightUTC(t *testing.T) {
	loc := time.FixedZone("KST", 9*3600)
	noisy := time.Date(2025, 9, 10, 15, 42, 7, 123, loc)

	normalized := Day(noisy)

	assert.Equal(t, date(2025, 9, 10), normalized)
	assert.Equal(t, time.UTC, normalized.Location())
}
