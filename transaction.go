package zenassist

import (
	"github.com/budgera/zenassist/date"
	"github.com/shopspring/decimal"
)

// Kind is the derived nature of a transaction or reminder. It is never
// stored; it is always recomputed from the four amount/account fields so an
// amount edit can never leave a stale kind behind.
type Kind string

const (
	KindExpense  Kind = "expense"
	KindIncome   Kind = "income"
	KindTransfer Kind = "transfer"
	KindUnknown  Kind = "unknown"
)

// deriveKind computes the kind from the amount/account fields shared by
// transactions, reminders and markers.
func deriveKind(income, outcome decimal.Decimal, incomeAccount, outcomeAccount string) Kind {
	switch {
	case outcomeAccount != incomeAccount && outcome.IsPositive() && income.IsPositive():
		return KindTransfer
	case outcome.IsPositive() && income.IsZero():
		return KindExpense
	case income.IsPositive() && outcome.IsZero():
		return KindIncome
	default:
		return KindUnknown
	}
}

// Transaction is one ledger movement. A transaction always carries both an
// income and an outcome side; which sides are nonzero (and whether the
// accounts differ) determines its Kind.
type Transaction struct {
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
	OriginalPayee     string          `json:"originalPayee,omitempty"`
	Comment           string          `json:"comment,omitempty"`
	MCC               *int            `json:"mcc"`
	ReminderMarker    *string         `json:"reminderMarker"`
	Hold              bool            `json:"hold,omitempty"`
	Deleted           bool            `json:"deleted"`
	Created           int64           `json:"created"`
	Changed           int64           `json:"changed"`
}

// Kind derives the transaction kind from its amounts and accounts.
func (t Transaction) Kind() Kind {
	return deriveKind(t.Income, t.Outcome, t.IncomeAccount, t.OutcomeAccount)
}

// FirstTag returns the first category id, or "" when uncategorized.
func (t Transaction) FirstTag() string {
	if len(t.Tag) == 0 {
		return ""
	}
	return t.Tag[0]
}
