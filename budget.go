package zenassist

import (
	"github.com/budgera/zenassist/date"
	"github.com/shopspring/decimal"
)

// Budget is a planned income/outcome for a category in a month. Budgets have
// no server-assigned id: they are identified by the (category-or-null,
// month-start date) pair, so the store indexes them by BudgetKey.
type Budget struct {
	User        int             `json:"user"`
	Tag         *string         `json:"tag"`
	Date        date.Date       `json:"date"`
	Income      decimal.Decimal `json:"income"`
	IncomeLock  bool            `json:"incomeLock"`
	Outcome     decimal.Decimal `json:"outcome"`
	OutcomeLock bool            `json:"outcomeLock"`
	Changed     int64           `json:"changed"`
}

// Key returns the composite store key "<categoryId|'null'>:<yyyy-mm-01>".
// It exists on disk and in lookups only, never on the wire.
func (b Budget) Key() string { return BudgetKey(b.Tag, b.Date) }

// BudgetKey builds the composite budget key for a category (nil for the
// monthly aggregate) and a month-start date.
func BudgetKey(tag *string, monthStart date.Date) string {
	category := "null"
	if tag != nil {
		category = *tag
	}
	return category + ":" + monthStart.String()
}
