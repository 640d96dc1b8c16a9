package zenassist

import (
	"context"
	"testing"

	"github.com/budgera/zenassist/date"
	"github.com/shopspring/decimal"
)

// Fixture ids, one per account/category the tests share.
const (
	accChecking = "11111111-1111-1111-1111-111111111111"
	accCash     = "22222222-2222-2222-2222-222222222222"
	accSavings  = "33333333-3333-3333-3333-333333333333"
	accCredit   = "44444444-4444-4444-4444-444444444444"
	accLoan     = "55555555-5555-5555-5555-555555555555"

	tagFood   = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	tagCafe   = "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"
	tagSalary = "cccccccc-cccc-cccc-cccc-cccccccccccc"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// fixtureStore builds a mirror with one user, one currency, five accounts of
// distinct transfer behavior and a small category tree.
func fixtureStore() *Store {
	s := NewStore()
	food := tagFood
	s.ApplyDiff(&Diff{
		ServerTimestamp: 100,
		Instrument:      []Instrument{{ID: 2, Title: "US Dollar", ShortTitle: "USD", Symbol: "$"}},
		User:            []User{{ID: 1, Currency: 2}},
		Account: []Account{
			{ID: accChecking, User: 1, Instrument: 2, Type: AccountChecking, Title: "Checking", Balance: dec("1000"), InBalance: true},
			{ID: accCash, User: 1, Instrument: 2, Type: AccountCash, Title: "Wallet", InBalance: true},
			{ID: accSavings, User: 1, Instrument: 2, Type: AccountChecking, Title: "Savings", Balance: dec("500"), Savings: true},
			{ID: accCredit, User: 1, Instrument: 2, Type: AccountCard, Title: "Credit Card", CreditLimit: dec("1000")},
			{ID: accLoan, User: 1, Instrument: 2, Type: AccountLoan, Title: "Mortgage"},
		},
		Tag: []Tag{
			{ID: tagFood, User: 1, Title: "Food"},
			{ID: tagCafe, User: 1, Title: "Cafe", Parent: &food},
			{ID: tagSalary, User: 1, Title: "Salary"},
		},
	})
	return s
}

// newTestService assembles a service over the fixture store with rebuilt
// reference indexes and an echoing fake client. The clock is pinned.
func newTestService(t *testing.T) (*Service, *fakeClient) {
	t.Helper()
	store := fixtureStore()
	today := date.MustParse("2026-03-15")

	dir := t.TempDir()
	if _, err := RebuildReferences(dir, store, today); err != nil {
		t.Fatalf("RebuildReferences: %v", err)
	}

	client := &fakeClient{}
	return &Service{
		Store:   store,
		Refs:    LoadReferences(dir),
		Config:  &Config{BillingPeriodStartDay: 1, BudgetModes: BuiltinModes()},
		Client:  client,
		RefsDir: dir,
		Now:     today,
	}, client
}

// fakeClient echoes every write back as the server confirmation and records
// the last diff it was given.
type fakeClient struct {
	syncDiff  *Diff
	lastWrite *Diff
	err       error
}

func (f *fakeClient) Sync(_ context.Context, _ int64) (*Diff, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.syncDiff == nil {
		return &Diff{}, nil
	}
	return f.syncDiff, nil
}

func (f *fakeClient) WriteDiff(_ context.Context, serverTimestamp int64, changes *Diff) (*Diff, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastWrite = changes
	echo := *changes
	echo.ServerTimestamp = serverTimestamp + 1
	return &echo, nil
}

func (f *fakeClient) Suggest(_ context.Context, _ map[string]any) (*Suggestion, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &Suggestion{Payee: "Acme"}, nil
}
