package zenassist

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/budgera/zenassist/date"
	"github.com/shopspring/decimal"
)

// Paging limits shared by the list operations.
const (
	defaultPageLimit = 100
	maxPageLimit     = 500
	maxListLimit     = 200
)

// Page carries the truncation info appended to paged results.
type Page struct {
	Truncated bool `json:"truncated,omitempty"`
	Total     int  `json:"total,omitempty"`
	Showing   int  `json:"showing,omitempty"`
	Offset    int  `json:"offset,omitempty"`
}

func pageOf(total, offset, showing int) Page {
	if total <= offset+showing {
		return Page{}
	}
	return Page{Truncated: true, Total: total, Showing: showing, Offset: offset}
}

// AccountSummary is the account view returned by list and create operations.
type AccountSummary struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Type        string          `json:"type"`
	Balance     decimal.Decimal `json:"balance"`
	Currency    string          `json:"currency"`
	InBalance   bool            `json:"inBalance"`
	CreditLimit decimal.Decimal `json:"creditLimit,omitempty"`
	Archived    bool            `json:"archived,omitempty"`
}

func (s *Service) formatAccount(a Account) AccountSummary {
	out := AccountSummary{
		ID:        a.ID,
		Title:     a.Title,
		Type:      a.Type,
		Balance:   a.Balance,
		Currency:  "Unknown",
		InBalance: a.InBalance,
		Archived:  a.Archive,
	}
	if instr, ok := s.Store.Instrument(a.Instrument); ok {
		out.Currency = instr.ShortTitle
	}
	if a.CreditLimit.IsPositive() {
		out.CreditLimit = a.CreditLimit
	}
	return out
}

// ListAccounts returns the accounts, archived ones only on request, sorted by
// title.
func (s *Service) ListAccounts(includeArchived bool) []AccountSummary {
	var out []AccountSummary
	for _, a := range s.Store.Accounts() {
		if a.Archive && !includeArchived {
			continue
		}
		out = append(out, s.formatAccount(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out
}

// TransactionQuery filters and pages ListTransactions.
type TransactionQuery struct {
	Period     date.Range
	AccountID  string
	CategoryID string
	Kind       Kind
	Limit      int
	Offset     int
}

// TransactionSummary is the type-dependent transaction view: expense and
// income rows carry one amount/account pair, transfers both sides.
type TransactionSummary struct {
	ID   string    `json:"id"`
	Date date.Date `json:"date"`
	Type Kind      `json:"type"`

	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Currency string           `json:"currency,omitempty"`
	Account  string           `json:"account,omitempty"`

	OutcomeAmount   *decimal.Decimal `json:"outcomeAmount,omitempty"`
	OutcomeCurrency string           `json:"outcomeCurrency,omitempty"`
	FromAccount     string           `json:"fromAccount,omitempty"`
	IncomeAmount    *decimal.Decimal `json:"incomeAmount,omitempty"`
	IncomeCurrency  string           `json:"incomeCurrency,omitempty"`
	ToAccount       string           `json:"toAccount,omitempty"`

	Categories []string `json:"categories,omitempty"`
	Payee      string   `json:"payee,omitempty"`
	Comment    string   `json:"comment,omitempty"`
	Hold       bool     `json:"hold,omitempty"`
	Merchant   string   `json:"merchant,omitempty"`
}

func (s *Service) currencyOf(instrument int) string {
	if instr, ok := s.Store.Instrument(instrument); ok {
		return instr.ShortTitle
	}
	return "RUB"
}

func (s *Service) formatTransaction(t Transaction) TransactionSummary {
	out := TransactionSummary{ID: t.ID, Date: t.Date, Type: t.Kind()}
	switch out.Type {
	case KindExpense:
		out.Amount = &t.Outcome
		out.Currency = s.currencyOf(t.OutcomeInstrument)
		out.Account = s.AccountTitle(t.OutcomeAccount)
	case KindIncome:
		out.Amount = &t.Income
		out.Currency = s.currencyOf(t.IncomeInstrument)
		out.Account = s.AccountTitle(t.IncomeAccount)
	default:
		out.OutcomeAmount = &t.Outcome
		out.OutcomeCurrency = s.currencyOf(t.OutcomeInstrument)
		out.FromAccount = s.AccountTitle(t.OutcomeAccount)
		out.IncomeAmount = &t.Income
		out.IncomeCurrency = s.currencyOf(t.IncomeInstrument)
		out.ToAccount = s.AccountTitle(t.IncomeAccount)
	}
	for _, tagID := range t.Tag {
		if tag, ok := s.Store.Tag(tagID); ok {
			out.Categories = append(out.Categories, tag.Title)
		}
	}
	out.Payee = t.Payee
	out.Comment = t.Comment
	out.Hold = t.Hold
	if t.Merchant != nil {
		if m, ok := s.Store.Merchant(*t.Merchant); ok {
			out.Merchant = m.Title
		}
	}
	return out
}

// TransactionsResult is one page of matching transactions, newest first.
type TransactionsResult struct {
	Transactions []TransactionSummary `json:"transactions"`
	Page
}

// ListTransactions returns the non-deleted transactions matching the query,
// newest first.
func (s *Service) ListTransactions(q TransactionQuery) TransactionsResult {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	var txs []Transaction
	for _, t := range s.Store.Transactions() {
		if t.Deleted || !q.Period.Contains(t.Date) {
			continue
		}
		if q.AccountID != "" && t.IncomeAccount != q.AccountID && t.OutcomeAccount != q.AccountID {
			continue
		}
		if q.CategoryID != "" && !containsString(t.Tag, q.CategoryID) {
			continue
		}
		if q.Kind != "" && t.Kind() != q.Kind {
			continue
		}
		txs = append(txs, t)
	}
	sort.SliceStable(txs, func(i, j int) bool {
		if txs[i].Date != txs[j].Date {
			return txs[i].Date.After(txs[j].Date)
		}
		return txs[i].Created > txs[j].Created
	})

	total := len(txs)
	txs = slicePage(txs, q.Offset, limit)
	result := TransactionsResult{Transactions: make([]TransactionSummary, 0, len(txs))}
	for _, t := range txs {
		result.Transactions = append(result.Transactions, s.formatTransaction(t))
	}
	result.Page = pageOf(total, q.Offset, len(txs))
	return result
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func slicePage[T any](list []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return nil
	}
	end := offset + limit
	if end > len(list) {
		end = len(list)
	}
	return list[offset:end]
}

// CategoryTree returns the two-level category tree straight from the mirror.
func (s *Service) CategoryTree() []CategoryNode {
	return buildCategoriesIndex(s.Store.Tags(), s.Today()).Categories
}

// InstrumentSummary is the currency view.
type InstrumentSummary struct {
	ID     int             `json:"id"`
	Code   string          `json:"code"`
	Title  string          `json:"title"`
	Symbol string          `json:"symbol"`
	Rate   decimal.Decimal `json:"rate"`
}

// ListInstruments returns the currencies, restricted to the ones some
// account actually uses unless includeAll is set.
func (s *Service) ListInstruments(includeAll bool) []InstrumentSummary {
	used := make(map[int]bool)
	for _, a := range s.Store.Accounts() {
		used[a.Instrument] = true
	}
	var out []InstrumentSummary
	for _, i := range s.Store.Instruments() {
		if !includeAll && !used[i.ID] {
			continue
		}
		out = append(out, InstrumentSummary{ID: i.ID, Code: i.ShortTitle, Title: i.Title, Symbol: i.Symbol, Rate: i.Rate})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// BudgetSummary is the budget view, keyed by resolved category title.
type BudgetSummary struct {
	Category    string          `json:"category"`
	Month       date.Date       `json:"month"`
	Income      decimal.Decimal `json:"income"`
	IncomeLock  bool            `json:"incomeLock"`
	Outcome     decimal.Decimal `json:"outcome"`
	OutcomeLock bool            `json:"outcomeLock"`
}

// ListBudgets returns the month's budget entries. The nil-category aggregate
// is labeled "Total".
func (s *Service) ListBudgets(month date.Month) []BudgetSummary {
	first := month.First()
	var out []BudgetSummary
	for _, b := range s.Store.Budgets() {
		if b.Date != first {
			continue
		}
		category := "Total"
		if b.Tag != nil {
			category = *b.Tag
			if tag, ok := s.Store.Tag(*b.Tag); ok {
				category = tag.Title
			}
		}
		out = append(out, BudgetSummary{
			Category:    category,
			Month:       b.Date,
			Income:      b.Income,
			IncomeLock:  b.IncomeLock,
			Outcome:     b.Outcome,
			OutcomeLock: b.OutcomeLock,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// ReminderQuery filters ListReminders. A MarkerFrom/MarkerTo pair switches
// the result to marker-range mode: only reminders with markers inside the
// window, sorted by their earliest marker.
type ReminderQuery struct {
	IncludeProcessed bool
	ActiveOnly       bool
	Limit            int
	MarkersLimit     int
	Offset           int
	MarkerFrom       date.Date
	MarkerTo         date.Date
	Category         string
	Kind             Kind
}

// MarkerSummary is the marker view nested in a reminder row.
type MarkerSummary struct {
	ID      string          `json:"id"`
	Date    date.Date       `json:"date"`
	State   string          `json:"state"`
	Income  decimal.Decimal `json:"income"`
	Outcome decimal.Decimal `json:"outcome"`
}

// ReminderSummary is the reminder view with its upcoming markers.
type ReminderSummary struct {
	ID           string           `json:"id"`
	Payee        string           `json:"payee,omitempty"`
	Comment      string           `json:"comment,omitempty"`
	Income       *decimal.Decimal `json:"income,omitempty"`
	Outcome      *decimal.Decimal `json:"outcome,omitempty"`
	FromAccount  string           `json:"fromAccount"`
	ToAccount    string           `json:"toAccount"`
	Categories   []string         `json:"categories,omitempty"`
	Interval     *string          `json:"interval"`
	Step         *int             `json:"step,omitempty"`
	Points       []int            `json:"points,omitempty"`
	StartDate    date.Date        `json:"startDate"`
	EndDate      *date.Date       `json:"endDate"`
	Type         Kind             `json:"type"`
	Markers      []MarkerSummary  `json:"markers,omitempty"`
	TotalIncome  *decimal.Decimal `json:"markers_total_income,omitempty"`
	TotalOutcome *decimal.Decimal `json:"markers_total_outcome,omitempty"`
}

// RemindersResult is one page of reminders.
type RemindersResult struct {
	Reminders  []ReminderSummary `json:"reminders"`
	Mode       string            `json:"mode,omitempty"`
	MarkerFrom *date.Date        `json:"marker_from,omitempty"`
	MarkerTo   *date.Date        `json:"marker_to,omitempty"`
	Page
}

func (s *Service) formatReminder(r Reminder) ReminderSummary {
	out := ReminderSummary{
		ID:          r.ID,
		Payee:       r.Payee,
		Comment:     r.Comment,
		FromAccount: s.AccountTitle(r.OutcomeAccount),
		ToAccount:   s.AccountTitle(r.IncomeAccount),
		Interval:    r.Interval,
		Step:        r.Step,
		Points:      r.Points,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		Type:        r.Kind(),
	}
	if !r.Income.IsZero() {
		out.Income = &r.Income
	}
	if !r.Outcome.IsZero() {
		out.Outcome = &r.Outcome
	}
	for _, tagID := range r.Tag {
		if tag, ok := s.Store.Tag(tagID); ok {
			out.Categories = append(out.Categories, tag.Title)
		}
	}
	return out
}

// ListReminders returns the reminders matching the query, in one of two
// shapes: marker-range mode when a marker window is given, otherwise the
// legacy list sorted by start date descending with up to MarkersLimit
// upcoming markers attached.
func (s *Service) ListReminders(q ReminderQuery) RemindersResult {
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	markersLimit := q.MarkersLimit
	if markersLimit <= 0 {
		markersLimit = 5
	}

	today := s.Today()
	var reminders []Reminder
	for _, r := range s.sortedReminders() {
		if q.ActiveOnly && !r.Active(today) {
			continue
		}
		if q.Category != "" && !s.reminderHasCategory(r, q.Category) {
			continue
		}
		if q.Kind != "" && r.Kind() != q.Kind {
			continue
		}
		reminders = append(reminders, r)
	}

	markersOf := func(reminderID string) []MarkerSummary {
		var out []MarkerSummary
		for _, m := range s.Store.ReminderMarkers() {
			if m.Reminder != reminderID {
				continue
			}
			if !q.IncludeProcessed && m.Processed() {
				continue
			}
			out = append(out, MarkerSummary{ID: m.ID, Date: m.Date, State: m.State, Income: m.Income, Outcome: m.Outcome})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
		return out
	}

	if !q.MarkerFrom.IsZero() && !q.MarkerTo.IsZero() {
		window := date.NewRange(q.MarkerFrom, q.MarkerTo)
		type keyed struct {
			row   ReminderSummary
			first date.Date
		}
		var rows []keyed
		for _, r := range reminders {
			var markers []MarkerSummary
			for _, m := range markersOf(r.ID) {
				if window.Contains(m.Date) {
					markers = append(markers, m)
				}
			}
			if len(markers) == 0 {
				continue
			}
			row := s.formatReminder(r)
			row.Markers = markers
			totalIncome, totalOutcome := decimal.Zero, decimal.Zero
			for _, m := range markers {
				totalIncome = totalIncome.Add(m.Income)
				totalOutcome = totalOutcome.Add(m.Outcome)
			}
			row.TotalIncome = &totalIncome
			row.TotalOutcome = &totalOutcome
			rows = append(rows, keyed{row: row, first: markers[0].Date})
		}
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].first.Before(rows[j].first) })

		total := len(rows)
		rows = slicePage(rows, q.Offset, limit)
		result := RemindersResult{
			Reminders:  make([]ReminderSummary, 0, len(rows)),
			Mode:       "marker_range",
			MarkerFrom: &window.From,
			MarkerTo:   &window.To,
		}
		for _, r := range rows {
			result.Reminders = append(result.Reminders, r.row)
		}
		result.Page = Page{Total: total, Showing: len(result.Reminders), Offset: q.Offset}
		result.Page.Truncated = total > q.Offset+len(result.Reminders)
		return result
	}

	sort.SliceStable(reminders, func(i, j int) bool { return reminders[i].StartDate.After(reminders[j].StartDate) })
	total := len(reminders)
	reminders = slicePage(reminders, q.Offset, limit)

	result := RemindersResult{Reminders: make([]ReminderSummary, 0, len(reminders))}
	for _, r := range reminders {
		row := s.formatReminder(r)
		markers := markersOf(r.ID)
		if len(markers) > markersLimit {
			markers = markers[:markersLimit]
		}
		row.Markers = markers
		result.Reminders = append(result.Reminders, row)
	}
	result.Page = pageOf(total, q.Offset, len(result.Reminders))
	return result
}

func (s *Service) reminderHasCategory(r Reminder, category string) bool {
	for _, tagID := range r.Tag {
		if tag, ok := s.Store.Tag(tagID); ok && tag.Title == category {
			return true
		}
	}
	return false
}

// MerchantsResult is one page of merchants.
type MerchantsResult struct {
	Merchants []Merchant `json:"merchants"`
	Page
}

// ListMerchants returns the merchants, optionally filtered by a
// case-insensitive substring.
func (s *Service) ListMerchants(search string, limit, offset int) MerchantsResult {
	if limit <= 0 {
		limit = 50
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	q := strings.ToLower(search)
	var merchants []Merchant
	for _, m := range s.Store.Merchants() {
		if q != "" && !strings.Contains(strings.ToLower(m.Title), q) {
			continue
		}
		merchants = append(merchants, m)
	}
	sort.Slice(merchants, func(i, j int) bool { return merchants[i].Title < merchants[j].Title })

	total := len(merchants)
	merchants = slicePage(merchants, offset, limit)
	result := MerchantsResult{Merchants: merchants}
	result.Page = pageOf(total, offset, len(merchants))
	return result
}

// AnalyticsQuery parameterizes the grouped totals report.
type AnalyticsQuery struct {
	Period  date.Range
	GroupBy string // category, account, merchant
	Kind    string // expense, income, all
}

// AnalyticsGroup is one row of the grouped totals.
type AnalyticsGroup struct {
	Name     string           `json:"name"`
	Total    decimal.Decimal  `json:"total"`
	Count    int              `json:"count"`
	Currency string           `json:"currency"`
	Income   *decimal.Decimal `json:"income,omitempty"`
	Outcome  *decimal.Decimal `json:"outcome,omitempty"`
}

// AnalyticsResult is the grouped totals report.
type AnalyticsResult struct {
	Period           date.Range       `json:"period"`
	Kind             string           `json:"type"`
	GroupBy          string           `json:"groupBy"`
	GrandTotal       decimal.Decimal  `json:"grandTotal"`
	TransactionCount int              `json:"transactionCount"`
	Groups           []AnalyticsGroup `json:"groups"`
}

// Analytics groups period income/expense transactions by category, account
// or merchant and totals them.
func (s *Service) Analytics(q AnalyticsQuery) AnalyticsResult {
	if q.GroupBy == "" {
		q.GroupBy = "category"
	}
	if q.Kind == "" {
		q.Kind = "expense"
	}

	var txs []Transaction
	for _, t := range s.periodTransactions(q.Period) {
		kind := t.Kind()
		switch q.Kind {
		case "expense":
			if kind != KindExpense {
				continue
			}
		case "income":
			if kind != KindIncome {
				continue
			}
		default:
			if kind != KindExpense && kind != KindIncome {
				continue
			}
		}
		txs = append(txs, t)
	}

	type bucket struct {
		income, outcome decimal.Decimal
		count           int
		currency        string
	}
	buckets := make(map[string]*bucket)
	var order []string

	currencyOfAccount := func(id string) string {
		if a, ok := s.Store.Account(id); ok {
			return s.currencyOf(a.Instrument)
		}
		return "RUB"
	}

	for _, t := range txs {
		name := "Uncategorized"
		currency := "RUB"
		spendingAccount := t.OutcomeAccount
		if !t.Outcome.IsPositive() {
			spendingAccount = t.IncomeAccount
		}

		switch q.GroupBy {
		case "account":
			accountID := t.OutcomeAccount
			if q.Kind == "income" {
				accountID = t.IncomeAccount
			}
			name = "Unknown Account"
			if a, ok := s.Store.Account(accountID); ok {
				name = a.Title
			}
			currency = currencyOfAccount(accountID)
		case "merchant":
			switch {
			case t.Merchant != nil:
				if m, ok := s.Store.Merchant(*t.Merchant); ok {
					name = m.Title
				} else if t.Payee != "" {
					name = t.Payee
				} else {
					name = "Unknown Merchant"
				}
			case t.Payee != "":
				name = t.Payee
			}
			currency = currencyOfAccount(spendingAccount)
		default:
			if tagID := t.FirstTag(); tagID != "" {
				if tag, ok := s.Store.Tag(tagID); ok {
					name = tag.Title
				}
			}
			currency = currencyOfAccount(spendingAccount)
		}

		b, ok := buckets[name]
		if !ok {
			b = &bucket{currency: currency}
			buckets[name] = b
			order = append(order, name)
		}
		b.income = b.income.Add(t.Income)
		b.outcome = b.outcome.Add(t.Outcome)
		b.count++
	}

	result := AnalyticsResult{Period: q.Period, Kind: q.Kind, GroupBy: q.GroupBy, TransactionCount: len(txs)}
	for _, name := range order {
		b := buckets[name]
		group := AnalyticsGroup{Name: name, Count: b.count, Currency: b.currency}
		switch q.Kind {
		case "expense":
			group.Total = b.outcome
		case "income":
			group.Total = b.income
		default:
			group.Total = b.income.Add(b.outcome)
			income, outcome := b.income, b.outcome
			group.Income = &income
			group.Outcome = &outcome
		}
		result.GrandTotal = result.GrandTotal.Add(group.Total)
		result.Groups = append(result.Groups, group)
	}
	sort.SliceStable(result.Groups, func(i, j int) bool {
		if !result.Groups[i].Total.Equal(result.Groups[j].Total) {
			return result.Groups[i].Total.GreaterThan(result.Groups[j].Total)
		}
		return result.Groups[i].Name < result.Groups[j].Name
	})
	return result
}

// AuthStatus is the CheckAuth verdict.
type AuthStatus struct {
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
	Solution string `json:"solution,omitempty"`
}

// CheckAuth probes the server with a sync call and reports whether the token
// still works. A rejected token gets a concrete re-auth pointer.
func (s *Service) CheckAuth(ctx context.Context) AuthStatus {
	if err := s.SyncStore(ctx); err != nil {
		status := AuthStatus{Status: "error", Error: err.Error()}
		if errors.Is(err, ErrTokenExpired) {
			status.Solution = "Token expired. Get a new token from https://budgera.com/settings/export"
		} else {
			status.Solution = "Check your credentials or network connection"
		}
		return status
	}
	return AuthStatus{Status: "authenticated", Message: "Token is valid and working"}
}

// SyncStore pulls the delta since the mirror's cursor, merges it and persists
// the snapshot. The mirror is untouched when the call fails.
func (s *Service) SyncStore(ctx context.Context) error {
	diff, err := s.Client.Sync(ctx, s.Store.ServerTimestamp)
	if err != nil {
		return err
	}
	s.Store.ApplyDiff(diff)
	if s.StorePath == "" {
		return nil
	}
	return SaveStore(s.StorePath, s.Store)
}

// Rebuild regenerates the reference indexes from the mirror and reloads them.
func (s *Service) Rebuild() (*RebuildSummary, error) {
	summary, err := RebuildReferences(s.RefsDir, s.Store, s.Today())
	if err != nil {
		return nil, err
	}
	s.Refs = LoadReferences(s.RefsDir)
	return summary, nil
}
