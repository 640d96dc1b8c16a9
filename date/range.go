package date

import "iter"

// Range represents an inclusive range of dates.
type Range struct{ From, To Date }

// NewRange creates a new date range. If 'from' is after 'to', they are swapped.
func NewRange(from, to Date) Range {
	if from.After(to) {
		from, to = to, from
	}
	return Range{From: from, To: to}
}

// Contains reports whether the date is inside the range, boundaries included.
func (r Range) Contains(d Date) bool { return !d.Before(r.From) && !d.After(r.To) }

// Days returns an iterator that yields each date within the range, inclusive.
func (r Range) Days() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for d := r.From; !d.After(r.To); d = d.Add(1) {
			if !yield(d) {
				return
			}
		}
	}
}

// BillingPeriod returns the billing window containing 'today' for a period
// anchored at the given day of month.
//
// When today's day-of-month is on or past the anchor the window runs from
// this month's anchor to the day before next month's anchor; otherwise from
// last month's anchor to the day before this month's anchor.
func BillingPeriod(today Date, startDay int) Range {
	if startDay < 1 {
		startDay = 1
	}
	if today.Day() >= startDay {
		from := New(today.Year(), today.Month(), startDay)
		to := New(today.Year(), today.Month()+1, startDay).Add(-1)
		return Range{From: from, To: to}
	}
	from := New(today.Year(), today.Month()-1, startDay)
	to := New(today.Year(), today.Month(), startDay).Add(-1)
	return Range{From: from, To: to}
}
