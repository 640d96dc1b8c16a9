package zenassist

import "github.com/shopspring/decimal"

// ModeToggles is one side of a budget mode: which transfer sources or
// destinations count toward the budget.
type ModeToggles struct {
	FromSavings         bool `json:"from_savings" mapstructure:"from_savings"`
	FromCredit          bool `json:"from_credit" mapstructure:"from_credit"`
	FromDebt            bool `json:"from_debt" mapstructure:"from_debt"`
	FromOtherOffBalance bool `json:"from_other_off_balance" mapstructure:"from_other_off_balance"`

	ToSavings         bool `json:"to_savings" mapstructure:"to_savings"`
	ToCredit          bool `json:"to_credit" mapstructure:"to_credit"`
	ToDebt            bool `json:"to_debt" mapstructure:"to_debt"`
	ToOtherOffBalance bool `json:"to_other_off_balance" mapstructure:"to_other_off_balance"`
}

// Mode is a named configuration of boolean toggles controlling which
// transfers count as budget-relevant income or expense. Modes are data, not
// code: a deployment may define additional named modes in its config.
type Mode struct {
	Label             string      `json:"label" mapstructure:"label"`
	Description       string      `json:"description" mapstructure:"description"`
	CountAllMovements bool        `json:"count_all_movements" mapstructure:"count_all_movements"`
	Income            ModeToggles `json:"income" mapstructure:"income"`
	Expense           ModeToggles `json:"expense" mapstructure:"expense"`
}

// Built-in mode names.
const (
	ModeBalanceVsExpense = "balance_vs_expense"
	ModeIncomeVsExpense  = "income_vs_expense"
	DefaultModeName      = ModeIncomeVsExpense
)

// BuiltinModes returns the two modes that ship as defaults.
func BuiltinModes() map[string]Mode {
	return map[string]Mode{
		ModeBalanceVsExpense: {
			Label:             "Balance vs Expenses",
			Description:       "Counts every movement of money between accounts, including off-balance ones",
			CountAllMovements: true,
			Income:            ModeToggles{FromSavings: true, FromCredit: true, FromDebt: true, FromOtherOffBalance: true},
			Expense:           ModeToggles{ToSavings: true, ToCredit: true, ToDebt: true, ToOtherOffBalance: true},
		},
		ModeIncomeVsExpense: {
			Label:             "Income vs Expenses",
			Description:       "Excludes internal transfers from the totals",
			CountAllMovements: false,
			Income:            ModeToggles{FromSavings: true},
			Expense:           ModeToggles{ToCredit: true},
		},
	}
}

// TransferSide describes one endpoint of a transfer: the account attributes
// the classifier needs, resolved from the reference index.
type TransferSide struct {
	Type      string `json:"type,omitempty"`
	Subtype   string `json:"subtype,omitempty"`
	Savings   bool   `json:"savings,omitempty"`
	InBalance bool   `json:"in_balance"`
}

// TransferImpact is the classifier's verdict for one transfer.
type TransferImpact int

const (
	// NoImpact means the transfer contributes nothing to the budget total.
	NoImpact TransferImpact = iota
	// ExpenseImpact means the transfer counts as an expense.
	ExpenseImpact
	// IncomeImpact means the transfer counts as an income.
	IncomeImpact
)

func (t TransferImpact) String() string {
	switch t {
	case ExpenseImpact:
		return "expense"
	case IncomeImpact:
		return "income"
	default:
		return "none"
	}
}

// transferRule is one (predicate, outcome) pair. Rules are evaluated in
// order and the first match wins; they are not commutative because the
// category flags overlap (a savings ccard is both savings and credit).
type transferRule struct {
	enabled func(Mode) bool
	matches func(from, to TransferSide) bool
	// gate is the in-balance condition that applies unless the mode counts
	// all movements.
	gate   func(from, to TransferSide) bool
	impact TransferImpact
}

// transferRules is the ordered rule list. Rules 1-3 classify outflows to
// credit/debt/savings destinations, 4-6 inflows from savings/credit/debt
// sources, 7-8 the generic off-balance cases.
var transferRules = []transferRule{
	{
		enabled: func(m Mode) bool { return m.Expense.ToCredit },
		matches: func(_, to TransferSide) bool { return to.Subtype == SubtypeCredit },
		gate:    func(from, _ TransferSide) bool { return from.InBalance },
		impact:  ExpenseImpact,
	},
	{
		enabled: func(m Mode) bool { return m.Expense.ToDebt },
		matches: func(_, to TransferSide) bool { return to.Type == AccountLoan || to.Type == AccountDebt },
		gate:    func(from, _ TransferSide) bool { return from.InBalance },
		impact:  ExpenseImpact,
	},
	{
		enabled: func(m Mode) bool { return m.Expense.ToSavings },
		matches: func(_, to TransferSide) bool { return to.Subtype == SubtypeSavings || to.Savings },
		gate:    func(from, _ TransferSide) bool { return from.InBalance },
		impact:  ExpenseImpact,
	},
	{
		enabled: func(m Mode) bool { return m.Income.FromSavings },
		matches: func(from, _ TransferSide) bool { return from.Subtype == SubtypeSavings || from.Savings },
		gate:    func(_, to TransferSide) bool { return to.InBalance },
		impact:  IncomeImpact,
	},
	{
		enabled: func(m Mode) bool { return m.Income.FromCredit },
		matches: func(from, _ TransferSide) bool { return from.Subtype == SubtypeCredit },
		gate:    func(_, to TransferSide) bool { return to.InBalance },
		impact:  IncomeImpact,
	},
	{
		enabled: func(m Mode) bool { return m.Income.FromDebt },
		matches: func(from, _ TransferSide) bool { return from.Type == AccountLoan || from.Type == AccountDebt },
		gate:    func(_, to TransferSide) bool { return to.InBalance },
		impact:  IncomeImpact,
	},
	{
		enabled: func(m Mode) bool { return m.Expense.ToOtherOffBalance },
		matches: func(_, _ TransferSide) bool { return true },
		gate:    func(from, to TransferSide) bool { return from.InBalance && !to.InBalance },
		impact:  ExpenseImpact,
	},
	{
		enabled: func(m Mode) bool { return m.Income.FromOtherOffBalance },
		matches: func(_, _ TransferSide) bool { return true },
		gate:    func(from, to TransferSide) bool { return !from.InBalance && to.InBalance },
		impact:  IncomeImpact,
	},
}

// ClassifyTransfer decides whether one transfer counts as an expense, an
// income, or has no budget impact under the given mode. It is deterministic
// and total: exactly one impact is returned for any input. A transfer
// between two in-balance accounts (or two off-balance ones) that no rule
// claims contributes nothing.
func ClassifyTransfer(from, to TransferSide, amount decimal.Decimal, mode Mode) (TransferImpact, decimal.Decimal) {
	for _, rule := range transferRules {
		if !rule.enabled(mode) || !rule.matches(from, to) {
			continue
		}
		if mode.CountAllMovements || rule.gate(from, to) {
			return rule.impact, amount
		}
	}
	return NoImpact, decimal.Zero
}
