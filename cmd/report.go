package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/budgera/zenassist"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type reportCmd struct {
	start      string
	end        string
	month      string
	mode       string
	offBalance bool
	calendar   bool
	forecast   bool
}

func (*reportCmd) Name() string { return "report" }
func (*reportCmd) Synopsis() string {
	return "display the budget report for a billing period"
}
func (*reportCmd) Usage() string {
	return `zen report [-s <start> -e <end> | -month <yyyy-MM>] [-mode <mode>] [-off-balance] [-calendar] [-forecast]

  Renders the detailed budget report: income and expenses by category,
  transfer impacts and the headline balance. Defaults to the billing period
  containing today and the configured budget mode.

Usage Examples:
# current billing period, default mode
$ zen report

# march, counting every movement
$ zen report -month 2026-03 -mode balance_vs_expense

# with the daily balance forecast
$ zen report -forecast
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "s", "", "Period start (yyyy-MM-dd), requires -e.")
	f.StringVar(&c.end, "e", "", "Period end (yyyy-MM-dd), requires -s.")
	f.StringVar(&c.month, "month", "", "Report on a calendar month (yyyy-MM) instead.")
	f.StringVar(&c.mode, "mode", "", "Budget mode name. Defaults to the configured one.")
	f.BoolVar(&c.offBalance, "off-balance", false, "Count off-balance accounts too.")
	f.BoolVar(&c.calendar, "calendar", false, "Append the chronological operations list.")
	f.BoolVar(&c.forecast, "forecast", false, "Append the daily balance forecast.")
}

func (c *reportCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := NewService()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	period, err := s.Period(c.start, c.end, c.month)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	report, err := s.AnalyzeBudget(zenassist.AnalyzeOptions{
		Period:            period,
		ModeName:          c.mode,
		IncludeOffBalance: c.offBalance,
		ShowCalendar:      c.calendar,
		ShowForecast:      c.forecast,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderBudget(s, report))
	return subcommands.ExitSuccess
}

// mainCurrency is the user's display currency, the one all report amounts are
// denominated in.
func mainCurrency(s *zenassist.Service) string {
	if u, ok := s.Store.FirstUser(); ok {
		if in, ok := s.Store.Instrument(u.Currency); ok {
			return in.ShortTitle
		}
	}
	return "USD"
}

func renderBudget(s *zenassist.Service, r *zenassist.BudgetReport) string {
	code := mainCurrency(s)
	money := func(d decimal.Decimal) string { return zenassist.FormatAmount(d, code) }

	var b strings.Builder
	sum := r.Summary
	fmt.Fprintf(&b, "# Budget %s to %s\n\n", sum.Period.From, sum.Period.To)
	fmt.Fprintf(&b, "Mode: %s\n\n", sum.BudgetModeLabel)
	fmt.Fprintf(&b, "* Income: %s (%s actual, %s planned)\n", money(sum.Income.Total), money(sum.Income.Actual), money(sum.Income.Planned))
	fmt.Fprintf(&b, "* Expected expenses: %s\n", money(sum.Expense.Expected))
	if !sum.Transfers.Out.IsZero() || !sum.Transfers.In.IsZero() {
		fmt.Fprintf(&b, "* Transfers: %s out, %s in (net %s)\n", money(sum.Transfers.Out), money(sum.Transfers.In), money(sum.Transfers.Net))
	}
	fmt.Fprintf(&b, "* **Balance: %s**\n", money(sum.Balance))

	if len(r.Income) > 0 {
		b.WriteString("\n## Income\n\n| Category | Actual | Planned | Total |\n|---|---:|---:|---:|\n")
		for _, row := range r.Income {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", row.CategoryName, money(row.Actual), money(row.Planned), money(row.Total()))
		}
	}
	if len(r.Expenses) > 0 {
		b.WriteString("\n## Expenses\n\n| Category | Spent | Planned | Budget | Expected |\n|---|---:|---:|---:|---:|\n")
		for _, row := range r.Expenses {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				row.CategoryName, money(row.Actual), money(row.Planned), money(row.Budget), money(row.Expected()))
		}
	}
	if len(r.Transfers) > 0 {
		b.WriteString("\n## Transfers\n\n| Date | From | To | Amount |\n|---|---|---|---:|\n")
		for _, t := range r.Transfers {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", t.Date, t.FromAccount, t.ToAccount, money(t.Amount))
		}
	}
	if len(r.Calendar) > 0 {
		b.WriteString("\n## Calendar\n\n| Date | Type | Details | Amount | Status |\n|---|---|---|---:|---|\n")
		for _, e := range r.Calendar {
			details := e.Category
			if e.Type == zenassist.KindTransfer {
				details = e.FromAccount + " to " + e.ToAccount
			} else if e.Payee != "" {
				details += " (" + e.Payee + ")"
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", e.Date, e.Type, details, money(e.Amount), e.Status)
		}
	}
	if len(r.Forecast) > 0 {
		b.WriteString("\n## Forecast\n\n| Date | Operations | Balance |\n|---|---:|---:|\n")
		for _, f := range r.Forecast {
			fmt.Fprintf(&b, "| %s | %d | %s |\n", f.Date, f.OperationsCount, money(f.Balance))
		}
	}
	return b.String()
}
