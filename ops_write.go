package zenassist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/budgera/zenassist/date"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func nowStamp() int64 { return time.Now().Unix() }

func newID() string { return uuid.NewString() }

// writeThrough pushes local changes to the server and merges the echoed diff,
// which carries the entities as the server now holds them. The mirror and its
// snapshot stay untouched when the call fails, so a write is all-or-nothing.
func (s *Service) writeThrough(ctx context.Context, changes *Diff) error {
	echo, err := s.Client.WriteDiff(ctx, s.Store.ServerTimestamp, changes)
	if err != nil {
		return err
	}
	s.Store.ApplyDiff(echo)
	if s.StorePath == "" {
		return nil
	}
	return SaveStore(s.StorePath, s.Store)
}

func (s *Service) writeUser() (int, error) {
	if u, ok := s.Store.FirstUser(); ok {
		return u.ID, nil
	}
	// Degraded mirror: fall back to any account's owner.
	for _, a := range s.Store.Accounts() {
		return a.User, nil
	}
	return 0, fmt.Errorf("no user in the mirror, run a sync first")
}

// txSides is the resolved four-field amount/account shape shared by
// transactions, reminders and markers.
type txSides struct {
	Income            decimal.Decimal
	IncomeAccount     string
	IncomeInstrument  int
	Outcome           decimal.Decimal
	OutcomeAccount    string
	OutcomeInstrument int
}

// buildTxSides derives the amount/account fields from the operation kind.
// Expense and income use one account for both sides with the unused amount
// zero; a transfer spans two accounts, and a cross-currency transfer needs an
// explicit receiving amount.
func (s *Service) buildTxSides(kind Kind, amount decimal.Decimal, accountID, toAccountID string, currencyID *int, incomeAmount *decimal.Decimal) (txSides, error) {
	account, ok := s.Store.Account(accountID)
	if !ok {
		return txSides{}, fmt.Errorf("account not found: %s", accountID)
	}
	instrument := account.Instrument
	if currencyID != nil {
		instrument = *currencyID
	}

	sides := txSides{
		IncomeAccount:     accountID,
		IncomeInstrument:  instrument,
		OutcomeAccount:    accountID,
		OutcomeInstrument: instrument,
	}
	switch kind {
	case KindExpense:
		sides.Outcome = amount
	case KindIncome:
		sides.Income = amount
	case KindTransfer:
		if toAccountID == "" {
			return txSides{}, fmt.Errorf("to_account_id is required for transfer type")
		}
		toAccount, ok := s.Store.Account(toAccountID)
		if !ok {
			return txSides{}, fmt.Errorf("destination account not found: %s", toAccountID)
		}
		sides.Outcome = amount
		sides.OutcomeInstrument = account.Instrument
		sides.IncomeAccount = toAccountID
		sides.IncomeInstrument = toAccount.Instrument
		if account.Instrument != toAccount.Instrument {
			if incomeAmount == nil {
				return txSides{}, fmt.Errorf("income_amount is required for cross-currency transfers")
			}
			sides.Income = *incomeAmount
		} else {
			sides.Income = amount
		}
	default:
		return txSides{}, fmt.Errorf("unknown operation type %q", kind)
	}
	return sides, nil
}

func (s *Service) checkCategories(ids []string) error {
	for _, id := range ids {
		if !ValidUUID(id) {
			return fmt.Errorf("invalid category id %q", id)
		}
		if _, ok := s.Store.Tag(id); !ok {
			return fmt.Errorf("category not found: %s", id)
		}
	}
	return nil
}

// CreateTransactionSpec is the input of CreateTransaction.
type CreateTransactionSpec struct {
	Kind         Kind
	Amount       decimal.Decimal
	AccountID    string
	ToAccountID  string
	CategoryIDs  []string
	Date         date.Date // zero means today
	Payee        string
	Comment      string
	CurrencyID   *int
	IncomeAmount *decimal.Decimal
}

// CreateTransaction writes a new transaction through to the server and
// returns it as the server recorded it.
func (s *Service) CreateTransaction(ctx context.Context, spec CreateTransactionSpec) (*TransactionSummary, error) {
	if !ValidUUID(spec.AccountID) {
		return nil, fmt.Errorf("invalid account id %q", spec.AccountID)
	}
	if spec.ToAccountID != "" && !ValidUUID(spec.ToAccountID) {
		return nil, fmt.Errorf("invalid destination account id %q", spec.ToAccountID)
	}
	if err := s.checkCategories(spec.CategoryIDs); err != nil {
		return nil, err
	}
	if !spec.Amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive, got %s", spec.Amount)
	}
	sides, err := s.buildTxSides(spec.Kind, spec.Amount, spec.AccountID, spec.ToAccountID, spec.CurrencyID, spec.IncomeAmount)
	if err != nil {
		return nil, err
	}
	user, err := s.writeUser()
	if err != nil {
		return nil, err
	}
	day := spec.Date
	if day.IsZero() {
		day = s.Today()
	}

	now := nowStamp()
	tx := Transaction{
		ID:                newID(),
		User:              user,
		Date:              day,
		Income:            sides.Income,
		IncomeAccount:     sides.IncomeAccount,
		IncomeInstrument:  sides.IncomeInstrument,
		Outcome:           sides.Outcome,
		OutcomeAccount:    sides.OutcomeAccount,
		OutcomeInstrument: sides.OutcomeInstrument,
		Tag:               spec.CategoryIDs,
		Payee:             spec.Payee,
		Comment:           spec.Comment,
		Created:           now,
		Changed:           now,
	}
	if err := s.writeThrough(ctx, &Diff{Transaction: []Transaction{tx}}); err != nil {
		return nil, err
	}
	created, ok := s.Store.Transaction(tx.ID)
	if !ok {
		created = tx
	}
	summary := s.formatTransaction(created)
	return &summary, nil
}

// TransactionPatch is the partial update for UpdateTransaction; nil fields
// are left untouched.
type TransactionPatch struct {
	ID          string
	Amount      *decimal.Decimal
	CategoryIDs *[]string
	Date        *date.Date
	Payee       *string
	Comment     *string
}

// UpdateTransaction applies a partial update. An amount change on a transfer
// updates both sides, and is refused on cross-currency transfers where the
// two sides are not equal by construction.
func (s *Service) UpdateTransaction(ctx context.Context, patch TransactionPatch) (*TransactionSummary, error) {
	if !ValidUUID(patch.ID) {
		return nil, fmt.Errorf("invalid transaction id %q", patch.ID)
	}
	tx, ok := s.Store.Transaction(patch.ID)
	if !ok {
		return nil, fmt.Errorf("transaction not found: %s", patch.ID)
	}

	if patch.Amount != nil {
		if !patch.Amount.IsPositive() {
			return nil, fmt.Errorf("amount must be positive, got %s", patch.Amount)
		}
		switch {
		case tx.Kind() == KindTransfer:
			if tx.OutcomeInstrument != tx.IncomeInstrument {
				return nil, fmt.Errorf("cannot update amount on cross-currency transfers, delete and recreate")
			}
			tx.Outcome = *patch.Amount
			tx.Income = *patch.Amount
		case tx.Outcome.IsPositive():
			tx.Outcome = *patch.Amount
		default:
			tx.Income = *patch.Amount
		}
	}
	if patch.CategoryIDs != nil {
		if err := s.checkCategories(*patch.CategoryIDs); err != nil {
			return nil, err
		}
		tx.Tag = *patch.CategoryIDs
	}
	if patch.Date != nil {
		tx.Date = *patch.Date
	}
	if patch.Payee != nil {
		tx.Payee = *patch.Payee
	}
	if patch.Comment != nil {
		tx.Comment = *patch.Comment
	}
	tx.Changed = nowStamp()

	if err := s.writeThrough(ctx, &Diff{Transaction: []Transaction{tx}}); err != nil {
		return nil, err
	}
	updated, ok := s.Store.Transaction(tx.ID)
	if !ok {
		updated = tx
	}
	summary := s.formatTransaction(updated)
	return &summary, nil
}

// DeletedTransaction reports what DeleteTransaction removed.
type DeletedTransaction struct {
	Deleted bool            `json:"deleted"`
	ID      string          `json:"id"`
	Date    date.Date       `json:"date"`
	Amount  decimal.Decimal `json:"amount"`
}

// DeleteTransaction soft-deletes a transaction by writing it back with the
// deleted flag set, which is how the server expects transactions removed.
func (s *Service) DeleteTransaction(ctx context.Context, id string) (*DeletedTransaction, error) {
	if !ValidUUID(id) {
		return nil, fmt.Errorf("invalid transaction id %q", id)
	}
	tx, ok := s.Store.Transaction(id)
	if !ok {
		return nil, fmt.Errorf("transaction not found: %s", id)
	}
	amount := tx.Outcome
	if amount.IsZero() {
		amount = tx.Income
	}
	tx.Deleted = true
	tx.Changed = nowStamp()
	if err := s.writeThrough(ctx, &Diff{Transaction: []Transaction{tx}}); err != nil {
		return nil, err
	}
	return &DeletedTransaction{Deleted: true, ID: id, Date: tx.Date, Amount: amount}, nil
}

// CreateAccountSpec is the input of CreateAccount.
type CreateAccountSpec struct {
	Title       string
	Type        string
	CurrencyID  int
	Balance     decimal.Decimal
	CreditLimit decimal.Decimal
}

// CreateAccount creates a new in-balance account.
func (s *Service) CreateAccount(ctx context.Context, spec CreateAccountSpec) (*AccountSummary, error) {
	if _, ok := s.Store.Instrument(spec.CurrencyID); !ok {
		return nil, fmt.Errorf("unknown currency id %d, list instruments to see available currencies", spec.CurrencyID)
	}
	user, err := s.writeUser()
	if err != nil {
		return nil, err
	}
	account := Account{
		ID:           newID(),
		User:         user,
		Instrument:   spec.CurrencyID,
		Type:         spec.Type,
		Title:        spec.Title,
		Balance:      spec.Balance,
		StartBalance: spec.Balance,
		CreditLimit:  spec.CreditLimit,
		InBalance:    true,
		Changed:      nowStamp(),
	}
	if err := s.writeThrough(ctx, &Diff{Account: []Account{account}}); err != nil {
		return nil, err
	}
	created, ok := s.Store.Account(account.ID)
	if !ok {
		created = account
	}
	summary := s.formatAccount(created)
	return &summary, nil
}

// ResolveBudgetCategory turns a budget category reference into the budget's
// tag pointer: "ALL" (or the all-zero sentinel) means the monthly aggregate
// and maps to nil; otherwise a UUID or a case-insensitive title must resolve
// to an existing category.
func (s *Service) ResolveBudgetCategory(ref string) (tag *string, name string, err error) {
	trimmed := strings.TrimSpace(ref)
	if strings.EqualFold(trimmed, "ALL") || trimmed == AllCategories {
		return nil, "ALL (aggregate)", nil
	}
	id, err := s.ResolveCategory(trimmed)
	if err != nil {
		return nil, "", err
	}
	if id == "" {
		return nil, "ALL (aggregate)", nil
	}
	return &id, s.CategoryTitle(&id), nil
}

// BudgetResult reports the budget write operations.
type BudgetResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Budget  struct {
		Month       string          `json:"month"`
		Category    string          `json:"category"`
		Income      decimal.Decimal `json:"income"`
		Outcome     decimal.Decimal `json:"outcome"`
		IncomeLock  bool            `json:"income_lock"`
		OutcomeLock bool            `json:"outcome_lock"`
	} `json:"budget"`
}

// BudgetSpec is the input of CreateBudget.
type BudgetSpec struct {
	Month       date.Month
	Category    string // name, UUID, or "ALL"
	Income      decimal.Decimal
	Outcome     decimal.Decimal
	IncomeLock  bool
	OutcomeLock bool
}

// CreateBudget writes a budget entry for one category (or the aggregate) and
// month. The server keys budgets by (category, month), so re-creating an
// existing pair overwrites it.
func (s *Service) CreateBudget(ctx context.Context, spec BudgetSpec) (*BudgetResult, error) {
	if spec.Income.IsNegative() || spec.Outcome.IsNegative() {
		return nil, fmt.Errorf("budget amounts must not be negative")
	}
	tag, name, err := s.ResolveBudgetCategory(spec.Category)
	if err != nil {
		return nil, err
	}
	user, err := s.writeUser()
	if err != nil {
		return nil, err
	}
	budget := Budget{
		User:        user,
		Tag:         tag,
		Date:        spec.Month.First(),
		Income:      spec.Income,
		IncomeLock:  spec.IncomeLock,
		Outcome:     spec.Outcome,
		OutcomeLock: spec.OutcomeLock,
		Changed:     nowStamp(),
	}
	if err := s.writeThrough(ctx, &Diff{Budget: []Budget{budget}}); err != nil {
		return nil, err
	}
	result := &BudgetResult{Success: true}
	result.Budget.Month = spec.Month.String()
	result.Budget.Category = name
	result.Budget.Income = budget.Income
	result.Budget.Outcome = budget.Outcome
	result.Budget.IncomeLock = budget.IncomeLock
	result.Budget.OutcomeLock = budget.OutcomeLock
	return result, nil
}

// BudgetPatch is the partial update for UpdateBudget.
type BudgetPatch struct {
	Month       date.Month
	Category    string
	Income      *decimal.Decimal
	Outcome     *decimal.Decimal
	IncomeLock  *bool
	OutcomeLock *bool
}

// UpdateBudget patches an existing budget entry.
func (s *Service) UpdateBudget(ctx context.Context, patch BudgetPatch) (*BudgetResult, error) {
	tag, name, err := s.ResolveBudgetCategory(patch.Category)
	if err != nil {
		return nil, err
	}
	budget, ok := s.Store.Budget(BudgetKey(tag, patch.Month.First()))
	if !ok {
		return nil, fmt.Errorf("budget not found for category %q in %s, create it first", patch.Category, patch.Month)
	}
	if patch.Income != nil {
		if patch.Income.IsNegative() {
			return nil, fmt.Errorf("income must not be negative")
		}
		budget.Income = *patch.Income
	}
	if patch.Outcome != nil {
		if patch.Outcome.IsNegative() {
			return nil, fmt.Errorf("outcome must not be negative")
		}
		budget.Outcome = *patch.Outcome
	}
	if patch.IncomeLock != nil {
		budget.IncomeLock = *patch.IncomeLock
	}
	if patch.OutcomeLock != nil {
		budget.OutcomeLock = *patch.OutcomeLock
	}
	budget.Changed = nowStamp()
	if err := s.writeThrough(ctx, &Diff{Budget: []Budget{budget}}); err != nil {
		return nil, err
	}
	result := &BudgetResult{Success: true, Message: "Budget updated"}
	result.Budget.Month = patch.Month.String()
	result.Budget.Category = name
	result.Budget.Income = budget.Income
	result.Budget.Outcome = budget.Outcome
	result.Budget.IncomeLock = budget.IncomeLock
	result.Budget.OutcomeLock = budget.OutcomeLock
	return result, nil
}

// DeleteBudget clears a budget entry. Budgets cannot be tombstoned, so
// deletion writes the entry back with both amounts zeroed.
func (s *Service) DeleteBudget(ctx context.Context, month date.Month, category string) (*BudgetResult, error) {
	tag, name, err := s.ResolveBudgetCategory(category)
	if err != nil {
		return nil, err
	}
	budget, ok := s.Store.Budget(BudgetKey(tag, month.First()))
	if !ok {
		return nil, fmt.Errorf("budget not found for category %q in %s", category, month)
	}
	budget.Income = decimal.Zero
	budget.Outcome = decimal.Zero
	budget.Changed = nowStamp()
	if err := s.writeThrough(ctx, &Diff{Budget: []Budget{budget}}); err != nil {
		return nil, err
	}
	result := &BudgetResult{Success: true, Message: "Budget deleted"}
	result.Budget.Month = month.String()
	result.Budget.Category = name
	return result, nil
}

// ReminderSpec is the input of CreateReminder.
type ReminderSpec struct {
	Kind        Kind
	Amount      decimal.Decimal
	AccountID   string
	ToAccountID string
	CategoryIDs []string
	Payee       string
	Comment     string
	Interval    string
	Step        int
	Points      []int
	StartDate   date.Date // zero means today
	EndDate     *date.Date
	Notify      bool
}

// ReminderResult reports the reminder write operations.
type ReminderResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	ID       string `json:"id"`
	Reminder any    `json:"reminder,omitempty"`
}

// CreateReminder creates a recurring payment plan.
func (s *Service) CreateReminder(ctx context.Context, spec ReminderSpec) (*ReminderResult, error) {
	if !ValidUUID(spec.AccountID) {
		return nil, fmt.Errorf("invalid account id %q", spec.AccountID)
	}
	if spec.ToAccountID != "" && !ValidUUID(spec.ToAccountID) {
		return nil, fmt.Errorf("invalid destination account id %q", spec.ToAccountID)
	}
	if err := s.checkCategories(spec.CategoryIDs); err != nil {
		return nil, err
	}
	if !spec.Amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive, got %s", spec.Amount)
	}
	sides, err := s.buildTxSides(spec.Kind, spec.Amount, spec.AccountID, spec.ToAccountID, nil, nil)
	if err != nil {
		return nil, err
	}
	account, _ := s.Store.Account(spec.AccountID)

	step := spec.Step
	if step <= 0 {
		step = 1
	}
	start := spec.StartDate
	if start.IsZero() {
		start = s.Today()
	}
	interval := spec.Interval
	points := spec.Points
	if points == nil {
		points = []int{}
	}

	reminder := Reminder{
		ID:                newID(),
		User:              account.User,
		Income:            sides.Income,
		IncomeAccount:     sides.IncomeAccount,
		IncomeInstrument:  sides.IncomeInstrument,
		Outcome:           sides.Outcome,
		OutcomeAccount:    sides.OutcomeAccount,
		OutcomeInstrument: sides.OutcomeInstrument,
		Tag:               spec.CategoryIDs,
		Payee:             spec.Payee,
		Comment:           spec.Comment,
		Interval:          &interval,
		Step:              &step,
		Points:            points,
		StartDate:         start,
		EndDate:           spec.EndDate,
		Notify:            spec.Notify,
		Changed:           nowStamp(),
	}
	if err := s.writeThrough(ctx, &Diff{Reminder: []Reminder{reminder}}); err != nil {
		return nil, err
	}
	created, ok := s.Store.Reminder(reminder.ID)
	if !ok {
		created = reminder
	}
	return &ReminderResult{Success: true, ID: reminder.ID, Reminder: s.formatReminder(created)}, nil
}

// ReminderPatch is the partial update for UpdateReminder.
type ReminderPatch struct {
	ID          string
	Amount      *decimal.Decimal
	CategoryIDs *[]string
	Payee       *string
	Comment     *string
	Interval    *string
	Step        *int
	Points      *[]int
	EndDate     *date.Date
	Notify      *bool
}

// UpdateReminder applies a partial update. An amount change on a transfer
// reminder updates both sides so the derived kind cannot flip.
func (s *Service) UpdateReminder(ctx context.Context, patch ReminderPatch) (*ReminderResult, error) {
	if !ValidUUID(patch.ID) {
		return nil, fmt.Errorf("invalid reminder id %q", patch.ID)
	}
	reminder, ok := s.Store.Reminder(patch.ID)
	if !ok {
		return nil, fmt.Errorf("reminder not found: %s", patch.ID)
	}

	if patch.Amount != nil {
		if !patch.Amount.IsPositive() {
			return nil, fmt.Errorf("amount must be positive, got %s", patch.Amount)
		}
		switch reminder.Kind() {
		case KindIncome:
			reminder.Income = *patch.Amount
		case KindExpense:
			reminder.Outcome = *patch.Amount
		default:
			reminder.Income = *patch.Amount
			reminder.Outcome = *patch.Amount
		}
	}
	if patch.CategoryIDs != nil {
		if err := s.checkCategories(*patch.CategoryIDs); err != nil {
			return nil, err
		}
		reminder.Tag = *patch.CategoryIDs
	}
	if patch.Payee != nil {
		reminder.Payee = *patch.Payee
	}
	if patch.Comment != nil {
		reminder.Comment = *patch.Comment
	}
	if patch.Interval != nil {
		reminder.Interval = patch.Interval
	}
	if patch.Step != nil {
		reminder.Step = patch.Step
	}
	if patch.Points != nil {
		reminder.Points = *patch.Points
	}
	if patch.EndDate != nil {
		reminder.EndDate = patch.EndDate
	}
	if patch.Notify != nil {
		reminder.Notify = *patch.Notify
	}
	reminder.Changed = nowStamp()

	if err := s.writeThrough(ctx, &Diff{Reminder: []Reminder{reminder}}); err != nil {
		return nil, err
	}
	return &ReminderResult{Success: true, Message: "Reminder updated", ID: patch.ID}, nil
}

// DeleteReminder tombstones a reminder and every marker materialized from
// it, in one diff.
func (s *Service) DeleteReminder(ctx context.Context, id string) (*ReminderResult, error) {
	if !ValidUUID(id) {
		return nil, fmt.Errorf("invalid reminder id %q", id)
	}
	reminder, ok := s.Store.Reminder(id)
	if !ok {
		return nil, fmt.Errorf("reminder not found: %s", id)
	}

	now := nowStamp()
	deletions := []Deletion{{ID: EntityID(id), Object: KindReminder, Stamp: now, User: reminder.User}}
	for _, m := range s.Store.ReminderMarkers() {
		if m.Reminder == id {
			deletions = append(deletions, Deletion{ID: EntityID(m.ID), Object: KindReminderMarker, Stamp: now, User: m.User})
		}
	}
	if err := s.writeThrough(ctx, &Diff{Deletion: deletions}); err != nil {
		return nil, err
	}
	return &ReminderResult{
		Success: true,
		Message: fmt.Sprintf("Reminder deleted with %d associated markers", len(deletions)-1),
		ID:      id,
	}, nil
}

// MarkerSpec is the input of CreateReminderMarker.
type MarkerSpec struct {
	Kind        Kind
	Amount      decimal.Decimal
	AccountID   string
	ToAccountID string
	CategoryIDs []string
	Payee       string
	Comment     string
	Date        date.Date
	ReminderID  string // empty auto-creates a one-time reminder
	Notify      bool
}

// MarkerResult reports CreateReminderMarker.
type MarkerResult struct {
	Success bool `json:"success"`
	Marker  struct {
		ID                  string          `json:"id"`
		Type                Kind            `json:"type"`
		Amount              decimal.Decimal `json:"amount"`
		Account             string          `json:"account"`
		ToAccount           string          `json:"to_account,omitempty"`
		Date                date.Date       `json:"date"`
		State               string          `json:"state"`
		ReminderID          string          `json:"reminder_id"`
		AutoCreatedReminder bool            `json:"auto_created_reminder"`
	} `json:"reminder_marker"`
}

// CreateReminderMarker schedules one dated planned operation. Markers must
// belong to a reminder, so when none is given a one-time reminder spanning
// exactly the marker's date is created first.
func (s *Service) CreateReminderMarker(ctx context.Context, spec MarkerSpec) (*MarkerResult, error) {
	if !ValidUUID(spec.AccountID) {
		return nil, fmt.Errorf("invalid account id %q", spec.AccountID)
	}
	if spec.ToAccountID != "" && !ValidUUID(spec.ToAccountID) {
		return nil, fmt.Errorf("invalid destination account id %q", spec.ToAccountID)
	}
	if spec.ReminderID != "" && !ValidUUID(spec.ReminderID) {
		return nil, fmt.Errorf("invalid reminder id %q", spec.ReminderID)
	}
	if err := s.checkCategories(spec.CategoryIDs); err != nil {
		return nil, err
	}
	if !spec.Amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive, got %s", spec.Amount)
	}
	if spec.Date.IsZero() {
		return nil, fmt.Errorf("date is required")
	}
	sides, err := s.buildTxSides(spec.Kind, spec.Amount, spec.AccountID, spec.ToAccountID, nil, nil)
	if err != nil {
		return nil, err
	}
	account, _ := s.Store.Account(spec.AccountID)

	reminderID := spec.ReminderID
	autoCreated := false
	if reminderID == "" {
		day := spec.Date
		oneTime := Reminder{
			ID:                newID(),
			User:              account.User,
			Income:            sides.Income,
			IncomeAccount:     sides.IncomeAccount,
			IncomeInstrument:  sides.IncomeInstrument,
			Outcome:           sides.Outcome,
			OutcomeAccount:    sides.OutcomeAccount,
			OutcomeInstrument: sides.OutcomeInstrument,
			Tag:               spec.CategoryIDs,
			Payee:             spec.Payee,
			Comment:           spec.Comment,
			StartDate:         day,
			EndDate:           &day,
			Notify:            spec.Notify,
			Changed:           nowStamp(),
		}
		if err := s.writeThrough(ctx, &Diff{Reminder: []Reminder{oneTime}}); err != nil {
			return nil, err
		}
		reminderID = oneTime.ID
		autoCreated = true
	} else if _, ok := s.Store.Reminder(reminderID); !ok {
		return nil, fmt.Errorf("reminder not found: %s", reminderID)
	}

	marker := ReminderMarker{
		ID:                newID(),
		User:              account.User,
		Date:              spec.Date,
		Income:            sides.Income,
		IncomeAccount:     sides.IncomeAccount,
		IncomeInstrument:  sides.IncomeInstrument,
		Outcome:           sides.Outcome,
		OutcomeAccount:    sides.OutcomeAccount,
		OutcomeInstrument: sides.OutcomeInstrument,
		Tag:               spec.CategoryIDs,
		Payee:             spec.Payee,
		Comment:           spec.Comment,
		Reminder:          reminderID,
		State:             MarkerPlanned,
		Notify:            spec.Notify,
		Changed:           nowStamp(),
	}
	if err := s.writeThrough(ctx, &Diff{ReminderMarker: []ReminderMarker{marker}}); err != nil {
		return nil, err
	}

	result := &MarkerResult{Success: true}
	result.Marker.ID = marker.ID
	result.Marker.Type = spec.Kind
	result.Marker.Amount = spec.Amount
	result.Marker.Account = s.AccountTitle(spec.AccountID)
	if spec.ToAccountID != "" {
		result.Marker.ToAccount = s.AccountTitle(spec.ToAccountID)
	}
	result.Marker.Date = spec.Date
	result.Marker.State = MarkerPlanned
	result.Marker.ReminderID = reminderID
	result.Marker.AutoCreatedReminder = autoCreated
	return result, nil
}

// DeleteReminderMarker tombstones a single marker, leaving its reminder and
// sibling markers alone.
func (s *Service) DeleteReminderMarker(ctx context.Context, id string) (*ReminderResult, error) {
	if !ValidUUID(id) {
		return nil, fmt.Errorf("invalid marker id %q", id)
	}
	marker, ok := s.Store.ReminderMarker(id)
	if !ok {
		return nil, fmt.Errorf("reminder marker not found: %s", id)
	}
	deletion := Deletion{ID: EntityID(id), Object: KindReminderMarker, Stamp: nowStamp(), User: marker.User}
	if err := s.writeThrough(ctx, &Diff{Deletion: []Deletion{deletion}}); err != nil {
		return nil, err
	}
	return &ReminderResult{Success: true, Message: "ReminderMarker deleted", ID: id}, nil
}
