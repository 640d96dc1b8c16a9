// Package zenassist mirrors a server-authoritative personal-finance ledger
// (accounts, transactions, categories, budgets, scheduled reminders) into a
// local incremental cache and derives budget and cash-flow analytics from it.
//
// The mirror is filled by applying server diffs to a Store, persisted as a
// flat JSON snapshot between invocations. All read and write operations are
// exposed by Service and can be dispatched by name, which is how the agent
// bridge and the CLI drive them.
package zenassist

import "github.com/shopspring/decimal"

// Instrument is a currency known to the server.
type Instrument struct {
	ID         int             `json:"id"`
	Title      string          `json:"title"`
	ShortTitle string          `json:"shortTitle"`
	Symbol     string          `json:"symbol"`
	Rate       decimal.Decimal `json:"rate"`
	Changed    int64           `json:"changed"`
}

// Account types and subtypes as reported by the server and the reference index.
const (
	AccountCash     = "cash"
	AccountCard     = "ccard"
	AccountChecking = "checking"
	AccountLoan     = "loan"
	AccountDebt     = "debt"

	SubtypeCredit   = "credit"
	SubtypeDebit    = "debit"
	SubtypeSavings  = "savings"
	SubtypeChecking = "checking"
	SubtypeCash     = "cash"
	SubtypeDebt     = "debt"
)

// Account is a money account owned by a user.
type Account struct {
	ID           string          `json:"id"`
	User         int             `json:"user"`
	Instrument   int             `json:"instrument"`
	Type         string          `json:"type"`
	Title        string          `json:"title"`
	Company      *int            `json:"company"`
	Balance      decimal.Decimal `json:"balance"`
	StartBalance decimal.Decimal `json:"startBalance"`
	CreditLimit  decimal.Decimal `json:"creditLimit"`
	InBalance    bool            `json:"inBalance"`
	Savings      bool            `json:"savings"`
	Archive      bool            `json:"archive"`
	Private      bool            `json:"private"`
	SyncID       []string        `json:"syncID"`
	Changed      int64           `json:"changed"`
}

// Subtype derives the account subtype from its type and attributes, the same
// derivation the reference index records.
func (a Account) Subtype() string {
	switch {
	case a.Type == AccountCard && a.CreditLimit.IsPositive():
		return SubtypeCredit
	case a.Type == AccountCard:
		return SubtypeDebit
	case a.Type == AccountChecking && a.Savings:
		return SubtypeSavings
	case a.Type == AccountChecking:
		return SubtypeChecking
	default:
		return a.Type
	}
}

// Tag is a transaction category. Categories form a two-level tree: root
// categories and their children, deeper nesting is not modeled.
type Tag struct {
	ID          string  `json:"id"`
	User        int     `json:"user"`
	Title       string  `json:"title"`
	Parent      *string `json:"parent"`
	Icon        string  `json:"icon,omitempty"`
	ShowIncome  bool    `json:"showIncome"`
	ShowOutcome bool    `json:"showOutcome"`
	Changed     int64   `json:"changed"`
}

// Merchant is a named payee.
type Merchant struct {
	ID      string `json:"id"`
	User    int    `json:"user"`
	Title   string `json:"title"`
	Changed int64  `json:"changed"`
}

// User is the owner of the mirrored data. The mirror holds whichever users
// the server sent; writes are attributed to an arbitrary one (FirstUser).
type User struct {
	ID       int    `json:"id"`
	Login    string `json:"login,omitempty"`
	Currency int    `json:"currency"`
	Changed  int64  `json:"changed"`
}

// Company is a bank or financial institution an account belongs to.
type Company struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Changed int64  `json:"changed"`
}

// Country is a reference country record.
type Country struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Currency int    `json:"currency"`
}
