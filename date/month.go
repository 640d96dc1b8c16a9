package date

import (
	"fmt"
	"time"
)

// MonthFormat is the wire format for months (yyyy-MM).
const MonthFormat = "2006-01"

// Month represents a calendar month.
type Month struct {
	y int
	m time.Month
}

// NewMonth returns the Month for the given year and month.
func NewMonth(year int, month time.Month) Month {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Month{y: first.Year(), m: first.Month()}
}

// ParseMonth parses a Month in strict yyyy-MM form.
func ParseMonth(str string) (Month, error) {
	on, err := time.Parse(MonthFormat, str)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q want format %q: %w", str, MonthFormat, err)
	}
	return NewMonth(on.Year(), on.Month()), nil
}

// First returns the first day of the month. Budgets are keyed by this date.
func (m Month) First() Date { return New(m.y, m.m, 1) }

// Next returns the following month.
func (m Month) Next() Month { return NewMonth(m.y, m.m+1) }

// Last returns the last day of the month.
func (m Month) Last() Date { return m.Next().First().Add(-1) }

// String formats the month in its standard format.
func (m Month) String() string {
	return time.Date(m.y, m.m, 1, 0, 0, 0, 0, time.UTC).Format(MonthFormat)
}
