package zenassist

import (
	"sort"

	"github.com/budgera/zenassist/date"
	"github.com/shopspring/decimal"
)

// AnalyzeOptions parameterize one budget analysis run.
type AnalyzeOptions struct {
	// Period is the reporting window, inclusive on both ends.
	Period date.Range
	// ModeName selects the budget mode; empty means the configured default.
	ModeName string
	// IncludeOffBalance lifts the in-balance filter on income and expense
	// accumulation and widens the forecast's starting balance to all accounts.
	IncludeOffBalance bool
	// ShowCalendar and ShowForecast control the optional report sections.
	ShowCalendar bool
	ShowForecast bool
}

// CategoryMeta is the enriched category identity attached to a report row.
type CategoryMeta struct {
	CategoryID   string  `json:"category_id"`
	CategoryName string  `json:"category_name"`
	ParentID     *string `json:"parent_id"`
	ParentName   *string `json:"parent_name"`
	IsParent     bool    `json:"is_parent"`
}

// ReportItem is one dated operation inside a category row.
type ReportItem struct {
	Date    date.Date       `json:"date"`
	Payee   string          `json:"payee,omitempty"`
	Amount  decimal.Decimal `json:"amount"`
	Comment string          `json:"comment,omitempty"`
	Status  string          `json:"status"`
}

// IncomeRow aggregates one category's income: actual from transactions,
// planned from unprocessed reminder markers.
type IncomeRow struct {
	CategoryMeta
	Actual  decimal.Decimal `json:"actual"`
	Planned decimal.Decimal `json:"planned"`
	Items   []ReportItem    `json:"items"`
}

// Total is the row's sorting weight.
func (r IncomeRow) Total() decimal.Decimal { return r.Actual.Add(r.Planned) }

// ExpenseRow aggregates one category's expenses plus its budget line.
type ExpenseRow struct {
	CategoryMeta
	Actual  decimal.Decimal `json:"actual"`
	Planned decimal.Decimal `json:"planned_from_reminders"`
	Budget  decimal.Decimal `json:"budget"`
	Items   []ReportItem    `json:"items"`
}

// Expected is the category's contribution to the expense total:
// max(actual+planned, budget), so a budget line and the spending it covers
// are never both counted.
func (r ExpenseRow) Expected() decimal.Decimal {
	spent := r.Actual.Add(r.Planned)
	if spent.GreaterThan(r.Budget) {
		return spent
	}
	return r.Budget
}

// TransferItem is one transfer operation with both endpoints' attributes, the
// inputs the classifier needs.
type TransferItem struct {
	Date        date.Date       `json:"date"`
	FromAccount string          `json:"from_account"`
	ToAccount   string          `json:"to_account"`
	Amount      decimal.Decimal `json:"amount"`
	Comment     string          `json:"comment,omitempty"`
	Status      string          `json:"status"`
	From        TransferSide    `json:"from"`
	To          TransferSide    `json:"to"`
}

// CalendarEntry is one row of the chronological operations view.
type CalendarEntry struct {
	Date        date.Date       `json:"date"`
	Type        Kind            `json:"type"`
	Category    string          `json:"category,omitempty"`
	Payee       string          `json:"payee,omitempty"`
	FromAccount string          `json:"from_account,omitempty"`
	ToAccount   string          `json:"to_account,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Comment     string          `json:"comment,omitempty"`
	Status      string          `json:"status"`

	fromInBalance bool
	toInBalance   bool
}

// ForecastRow is the running tracked balance after one day's operations.
type ForecastRow struct {
	Date            date.Date       `json:"date"`
	Balance         decimal.Decimal `json:"balance"`
	OperationsCount int             `json:"operations_count"`
}

// Summary is the report's headline totals.
type Summary struct {
	BudgetMode      string     `json:"budget_mode"`
	BudgetModeLabel string     `json:"budget_mode_label"`
	Period          date.Range `json:"period"`
	Income          struct {
		Actual  decimal.Decimal `json:"actual"`
		Planned decimal.Decimal `json:"planned"`
		Total   decimal.Decimal `json:"total"`
	} `json:"income"`
	Expense struct {
		Expected decimal.Decimal `json:"expected"`
	} `json:"expense"`
	Transfers struct {
		Out decimal.Decimal `json:"out"`
		In  decimal.Decimal `json:"in"`
		Net decimal.Decimal `json:"net"`
	} `json:"transfers"`
	Balance decimal.Decimal `json:"balance"`
}

// BudgetReport is the full analysis output. The analyzer is a pure function
// of (mirror, reference indexes, config, options); it never mutates the
// mirror, and it either returns the whole report or an error, never a
// partial one.
type BudgetReport struct {
	Summary   Summary         `json:"summary"`
	Income    []IncomeRow     `json:"income"`
	Expenses  []ExpenseRow    `json:"expenses"`
	Transfers []TransferItem  `json:"transfers"`
	Calendar  []CalendarEntry `json:"calendar,omitempty"`
	Forecast  []ForecastRow   `json:"forecast,omitempty"`
}

// AnalyzeBudget builds the detailed budget report for the period.
func (s *Service) AnalyzeBudget(opts AnalyzeOptions) (*BudgetReport, error) {
	modeName, mode, err := s.Mode(opts.ModeName)
	if err != nil {
		return nil, err
	}

	txs := s.periodTransactions(opts.Period)
	income, expense := s.accumulateCategories(txs, opts)
	expense = s.applyBudgets(expense, opts.Period.From.StartOfMonth())
	transfers := s.accumulateTransfers(txs, opts)

	report := &BudgetReport{}
	report.Summary.BudgetMode = modeName
	report.Summary.BudgetModeLabel = mode.Label
	if report.Summary.BudgetModeLabel == "" {
		report.Summary.BudgetModeLabel = modeName
	}
	report.Summary.Period = opts.Period

	for _, row := range income {
		report.Summary.Income.Actual = report.Summary.Income.Actual.Add(row.Actual)
		report.Summary.Income.Planned = report.Summary.Income.Planned.Add(row.Planned)
		report.Income = append(report.Income, *row)
	}
	report.Summary.Income.Total = report.Summary.Income.Actual.Add(report.Summary.Income.Planned)

	for _, row := range expense {
		report.Summary.Expense.Expected = report.Summary.Expense.Expected.Add(row.Expected())
		report.Expenses = append(report.Expenses, *row)
	}

	for _, item := range transfers {
		impact, amount := ClassifyTransfer(item.From, item.To, item.Amount, mode)
		switch impact {
		case ExpenseImpact:
			report.Summary.Transfers.Out = report.Summary.Transfers.Out.Add(amount)
		case IncomeImpact:
			report.Summary.Transfers.In = report.Summary.Transfers.In.Add(amount)
		}
	}
	report.Summary.Transfers.Net = report.Summary.Transfers.Out.Sub(report.Summary.Transfers.In)
	report.Summary.Balance = report.Summary.Income.Total.
		Sub(report.Summary.Expense.Expected).
		Sub(report.Summary.Transfers.Net)

	sort.SliceStable(report.Income, func(i, j int) bool {
		a, b := report.Income[i].Total(), report.Income[j].Total()
		if !a.Equal(b) {
			return a.GreaterThan(b)
		}
		return report.Income[i].CategoryName < report.Income[j].CategoryName
	})
	sort.SliceStable(report.Expenses, func(i, j int) bool {
		a, b := report.Expenses[i].Expected(), report.Expenses[j].Expected()
		if !a.Equal(b) {
			return a.GreaterThan(b)
		}
		return report.Expenses[i].CategoryName < report.Expenses[j].CategoryName
	})
	sort.SliceStable(transfers, func(i, j int) bool {
		return transfers[i].Date.Before(transfers[j].Date)
	})
	report.Transfers = transfers

	// The calendar is always assembled because the forecast replays it; it is
	// emitted only when requested.
	calendar := buildCalendar(report.Income, report.Expenses, transfers)
	if opts.ShowCalendar {
		report.Calendar = calendar
	}
	if opts.ShowForecast {
		report.Forecast = s.forecast(opts, calendar)
	}
	return report, nil
}

// periodTransactions selects non-deleted transactions in range, oldest first,
// ties broken by creation stamp.
func (s *Service) periodTransactions(period date.Range) []Transaction {
	var txs []Transaction
	for _, t := range s.Store.Transactions() {
		if t.Deleted || !period.Contains(t.Date) {
			continue
		}
		txs = append(txs, t)
	}
	sort.SliceStable(txs, func(i, j int) bool {
		if txs[i].Date != txs[j].Date {
			return txs[i].Date.Before(txs[j].Date)
		}
		return txs[i].Created < txs[j].Created
	})
	return txs
}

// periodMarkers returns each reminder's in-range markers, date ascending.
func (s *Service) periodMarkers(period date.Range) map[string][]ReminderMarker {
	out := make(map[string][]ReminderMarker)
	for _, m := range s.Store.ReminderMarkers() {
		if !period.Contains(m.Date) {
			continue
		}
		out[m.Reminder] = append(out[m.Reminder], m)
	}
	for _, markers := range out {
		sort.SliceStable(markers, func(i, j int) bool { return markers[i].Date.Before(markers[j].Date) })
	}
	return out
}

// sortedReminders returns reminders in a stable order so aggregation output
// does not depend on map iteration.
func (s *Service) sortedReminders() []Reminder {
	reminders := s.Store.Reminders()
	sort.SliceStable(reminders, func(i, j int) bool { return reminders[i].ID < reminders[j].ID })
	return reminders
}

// enrichCategory resolves a category id to display metadata, degrading to
// "uncategorized" for the empty id and to a bare "unknown" title when the
// reference index does not know the id.
func (s *Service) enrichCategory(catID string) CategoryMeta {
	if catID == "" {
		return CategoryMeta{CategoryID: "uncategorized", CategoryName: "uncategorized"}
	}
	ref, ok := s.Refs.Categories[catID]
	if !ok {
		return CategoryMeta{CategoryID: catID, CategoryName: "unknown"}
	}
	return CategoryMeta{
		CategoryID:   catID,
		CategoryName: ref.Title,
		ParentID:     ref.ParentID,
		ParentName:   ref.ParentTitle,
		IsParent:     ref.IsParent,
	}
}

// inBalance reports whether the account passes the in-balance filter.
func (s *Service) inBalance(accountID string) bool {
	return s.AccountSide(accountID).InBalance
}

// accumulateCategories builds the income and expense rows: actuals from the
// transactions first, then planned amounts from unprocessed reminder markers.
// Rows keep first-seen order; the caller sorts them by weight.
func (s *Service) accumulateCategories(txs []Transaction, opts AnalyzeOptions) (income []*IncomeRow, expense []*ExpenseRow) {
	incomeRows := make(map[string]*IncomeRow)
	expenseRows := make(map[string]*ExpenseRow)

	incomeRow := func(catID string) *IncomeRow {
		meta := s.enrichCategory(catID)
		if row, ok := incomeRows[meta.CategoryID]; ok {
			return row
		}
		row := &IncomeRow{CategoryMeta: meta}
		incomeRows[meta.CategoryID] = row
		income = append(income, row)
		return row
	}
	expenseRow := func(catID string) *ExpenseRow {
		meta := s.enrichCategory(catID)
		if row, ok := expenseRows[meta.CategoryID]; ok {
			return row
		}
		row := &ExpenseRow{CategoryMeta: meta}
		expenseRows[meta.CategoryID] = row
		expense = append(expense, row)
		return row
	}

	for _, tx := range txs {
		switch tx.Kind() {
		case KindIncome:
			if !opts.IncludeOffBalance && !s.inBalance(tx.IncomeAccount) {
				continue
			}
			row := incomeRow(tx.FirstTag())
			row.Actual = row.Actual.Add(tx.Income)
			row.Items = append(row.Items, ReportItem{
				Date: tx.Date, Payee: tx.Payee, Amount: tx.Income,
				Comment: tx.Comment, Status: "completed",
			})
		case KindExpense:
			if !opts.IncludeOffBalance && !s.inBalance(tx.OutcomeAccount) {
				continue
			}
			row := expenseRow(tx.FirstTag())
			row.Actual = row.Actual.Add(tx.Outcome)
			row.Items = append(row.Items, ReportItem{
				Date: tx.Date, Payee: tx.Payee, Amount: tx.Outcome,
				Comment: tx.Comment, Status: "completed",
			})
		}
	}

	markersByReminder := s.periodMarkers(opts.Period)
	for _, rem := range s.sortedReminders() {
		markers := markersByReminder[rem.ID]
		if len(markers) == 0 {
			continue
		}
		switch rem.Kind() {
		case KindIncome:
			if !opts.IncludeOffBalance && !s.inBalance(rem.IncomeAccount) {
				continue
			}
			row := incomeRow(rem.FirstTag())
			for _, m := range markers {
				if m.Processed() {
					continue
				}
				row.Planned = row.Planned.Add(m.Income)
				row.Items = append(row.Items, ReportItem{
					Date: m.Date, Payee: rem.Payee, Amount: m.Income,
					Comment: rem.Comment, Status: m.State,
				})
			}
		case KindExpense:
			if !opts.IncludeOffBalance && !s.inBalance(rem.OutcomeAccount) {
				continue
			}
			row := expenseRow(rem.FirstTag())
			for _, m := range markers {
				if m.Processed() {
					continue
				}
				row.Planned = row.Planned.Add(m.Outcome)
				row.Items = append(row.Items, ReportItem{
					Date: m.Date, Payee: rem.Payee, Amount: m.Outcome,
					Comment: rem.Comment, Status: m.State,
				})
			}
		}
	}
	return income, expense
}

// applyBudgets attaches the month's planned budget outcome to each expense
// row by category title, and materializes zero-activity rows for categories
// that carry a budget but had no spending, so the budget stays visible.
func (s *Service) applyBudgets(expense []*ExpenseRow, month date.Month) []*ExpenseRow {
	byTitle := make(map[string]decimal.Decimal)
	for _, b := range s.Store.Budgets() {
		if b.Date != month.First() || b.Tag == nil {
			continue
		}
		byTitle[s.CategoryTitle(b.Tag)] = b.Outcome
	}

	seen := make(map[string]bool)
	for _, row := range expense {
		if budget, ok := byTitle[row.CategoryName]; ok {
			row.Budget = budget
			seen[row.CategoryName] = true
		}
	}

	var titles []string
	for title, budget := range byTitle {
		if !seen[title] && !budget.IsZero() {
			titles = append(titles, title)
		}
	}
	sort.Strings(titles)
	for _, title := range titles {
		for _, t := range s.Store.Tags() {
			if t.Title != title {
				continue
			}
			expense = append(expense, &ExpenseRow{
				CategoryMeta: s.enrichCategory(t.ID),
				Budget:       byTitle[title],
			})
			break
		}
	}
	return expense
}

// accumulateTransfers builds the transfer items from transactions and
// unprocessed reminder markers. A transfer with both endpoints off-balance is
// dropped unless off-balance inclusion is requested.
func (s *Service) accumulateTransfers(txs []Transaction, opts AnalyzeOptions) []TransferItem {
	items := make([]TransferItem, 0)

	add := func(day date.Date, fromID, toID string, amount decimal.Decimal, comment, status string) {
		from, to := s.AccountSide(fromID), s.AccountSide(toID)
		if !opts.IncludeOffBalance && !from.InBalance && !to.InBalance {
			return
		}
		items = append(items, TransferItem{
			Date:        day,
			FromAccount: s.AccountTitle(fromID),
			ToAccount:   s.AccountTitle(toID),
			Amount:      amount,
			Comment:     comment,
			Status:      status,
			From:        from,
			To:          to,
		})
	}

	for _, tx := range txs {
		if tx.Kind() != KindTransfer {
			continue
		}
		add(tx.Date, tx.OutcomeAccount, tx.IncomeAccount, tx.Outcome, tx.Comment, "completed")
	}

	markersByReminder := s.periodMarkers(opts.Period)
	for _, rem := range s.sortedReminders() {
		markers := markersByReminder[rem.ID]
		if len(markers) == 0 || rem.Kind() != KindTransfer {
			continue
		}
		for _, m := range markers {
			if m.Processed() {
				continue
			}
			add(m.Date, rem.OutcomeAccount, rem.IncomeAccount, m.Outcome, rem.Comment, m.State)
		}
	}
	return items
}

// buildCalendar flattens the category rows and transfer items into one
// chronological operations list.
func buildCalendar(income []IncomeRow, expenses []ExpenseRow, transfers []TransferItem) []CalendarEntry {
	var calendar []CalendarEntry
	for _, cat := range income {
		for _, item := range cat.Items {
			calendar = append(calendar, CalendarEntry{
				Date: item.Date, Type: KindIncome, Category: cat.CategoryName,
				Payee: item.Payee, Amount: item.Amount, Status: item.Status,
			})
		}
	}
	for _, cat := range expenses {
		for _, item := range cat.Items {
			calendar = append(calendar, CalendarEntry{
				Date: item.Date, Type: KindExpense, Category: cat.CategoryName,
				Payee: item.Payee, Amount: item.Amount, Status: item.Status,
			})
		}
	}
	for _, item := range transfers {
		calendar = append(calendar, CalendarEntry{
			Date: item.Date, Type: KindTransfer,
			FromAccount: item.FromAccount, ToAccount: item.ToAccount,
			Amount: item.Amount, Comment: item.Comment, Status: item.Status,
			fromInBalance: item.From.InBalance, toInBalance: item.To.InBalance,
		})
	}
	sort.SliceStable(calendar, func(i, j int) bool { return calendar[i].Date.Before(calendar[j].Date) })
	return calendar
}

// forecast walks the period day by day replaying the calendar against the
// tracked balance. Income adds, expense subtracts, and a transfer moves the
// balance only when exactly one endpoint is in-balance. Days with no
// operations emit no row.
func (s *Service) forecast(opts AnalyzeOptions, calendar []CalendarEntry) []ForecastRow {
	balance := decimal.Zero
	for _, a := range s.Refs.Accounts {
		if opts.IncludeOffBalance || a.InBalance {
			balance = balance.Add(a.Balance)
		}
	}

	byDay := make(map[date.Date][]CalendarEntry)
	for _, op := range calendar {
		byDay[op.Date] = append(byDay[op.Date], op)
	}

	rows := make([]ForecastRow, 0)
	for day := range opts.Period.Days() {
		ops := byDay[day]
		if len(ops) == 0 {
			continue
		}
		for _, op := range ops {
			switch op.Type {
			case KindIncome:
				balance = balance.Add(op.Amount)
			case KindExpense:
				balance = balance.Sub(op.Amount)
			case KindTransfer:
				switch {
				case op.fromInBalance && !op.toInBalance:
					balance = balance.Sub(op.Amount)
				case !op.fromInBalance && op.toInBalance:
					balance = balance.Add(op.Amount)
				}
			}
		}
		rows = append(rows, ForecastRow{Date: day, Balance: RoundAmount(balance), OperationsCount: len(ops)})
	}
	return rows
}
