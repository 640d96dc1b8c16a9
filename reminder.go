package zenassist

import (
	"github.com/budgera/zenassist/date"
	"github.com/shopspring/decimal"
)

// Recurrence intervals accepted by the server.
const (
	IntervalDay   = "day"
	IntervalWeek  = "week"
	IntervalMonth = "month"
	IntervalYear  = "year"
)

// Reminder is a recurring payment plan. Concrete dated occurrences are
// materialized by the server as ReminderMarkers.
type Reminder struct {
	ID                string          `json:"id"`
	User              int             `json:"user"`
	Income            decimal.Decimal `json:"income"`
	IncomeAccount     string          `json:"incomeAccount"`
	IncomeInstrument  int             `json:"incomeInstrument"`
	Outcome           decimal.Decimal `json:"outcome"`
	OutcomeAccount    string          `json:"outcomeAccount"`
	OutcomeInstrument int             `json:"outcomeInstrument"`
	Tag               []string        `json:"tag"`
	Merchant          *string         `json:"merchant"`
	Payee             string          `json:"payee,omitempty"`
	Comment           string          `json:"comment,omitempty"`
	Interval          *string         `json:"interval"`
	Step              *int            `json:"step"`
	Points            []int           `json:"points"`
	StartDate         date.Date       `json:"startDate"`
	EndDate           *date.Date      `json:"endDate"`
	Notify            bool            `json:"notify"`
	Changed           int64           `json:"changed"`
}

// Kind derives the reminder kind with the same rule as Transaction.Kind.
func (r Reminder) Kind() Kind {
	return deriveKind(r.Income, r.Outcome, r.IncomeAccount, r.OutcomeAccount)
}

// FirstTag returns the first category id, or "" when uncategorized.
func (r Reminder) FirstTag() string {
	if len(r.Tag) == 0 {
		return ""
	}
	return r.Tag[0]
}

// Active reports whether the reminder is still in effect on the given day.
func (r Reminder) Active(today date.Date) bool {
	return r.EndDate == nil || !r.EndDate.Before(today)
}

// Marker states.
const (
	MarkerPlanned   = "planned"
	MarkerProcessed = "processed"
)

// ReminderMarker is one dated occurrence of a Reminder. A processed marker
// has been turned into a real Transaction by the server.
type ReminderMarker struct {
	ID                string          `json:"id"`
	User              int             `json:"user"`
	Date              date.Date       `json:"date"`
	Income            decimal.Decimal `json:"income"`
	IncomeAccount     string          `json:"incomeAccount"`
	IncomeInstrument  int             `json:"incomeInstrument"`
	Outcome           decimal.Decimal `json:"outcome"`
	OutcomeAccount    string          `json:"outcomeAccount"`
	OutcomeInstrument int             `json:"outcomeInstrument"`
	Tag               []string        `json:"tag"`
	Merchant          *string         `json:"merchant"`
	Payee             string          `json:"payee,omitempty"`
	Comment           string          `json:"comment,omitempty"`
	Reminder          string          `json:"reminder"`
	State             string          `json:"state"`
	Notify            bool            `json:"notify"`
	Changed           int64           `json:"changed"`
}

// Processed reports whether the marker was materialized into a transaction.
func (m ReminderMarker) Processed() bool { return m.State == MarkerProcessed }
