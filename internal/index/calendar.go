package index

import "time"

// Calendar classifies trading days. The policy is Monday through Friday
// with no holiday calendar.
type Calendar struct{}

// NewCalendar creates a new trading calendar.
func NewCalendar() *Calendar {
	return &Calendar{}
}

// IsTradingDay reports whether t falls on a weekday.
func (c *Calendar) IsTradingDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// TradingDaysInRange returns the trading days between start and end,
// inclusive and ascending. Empty when start is after end.
func (c *Calendar) TradingDaysInRange(start, end time.Time) []time.Time {
	start = Day(start)
	end = Day(end)

	days := make([]time.Time, 0)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if c.IsTradingDay(d) {
			days = append(days, d)
		}
	}
	return days
}

// PreviousTradingDay returns the closest trading day strictly before t.
func (c *Calendar) PreviousTradingDay(t time.Time) time.Time {
	d := Day(t).AddDate(0, 0, -1)
	for !c.IsTradingDay(d) {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// Day normalizes t to midnight UTC. All date-keyed state uses this form so
// that map lookups and store keys compare equal regardless of the wall
// clock the caller carried in.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
