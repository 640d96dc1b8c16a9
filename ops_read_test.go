package zenassist

import (
	"context"
	"testing"

	"github.com/budgera/zenassist/date"
)

func TestListAccounts(t *testing.T) {
	s, _ := newTestService(t)
	s.Store.ApplyDiff(&Diff{Account: []Account{
		{ID: "66666666-6666-6666-6666-666666666666", User: 1, Instrument: 2, Type: AccountChecking, Title: "Old", Archive: true},
	}})

	accounts := s.ListAccounts(false)
	if len(accounts) != 5 {
		t.Fatalf("accounts = %d, want 5 with the archived one hidden", len(accounts))
	}
	for i := 1; i < len(accounts); i++ {
		if accounts[i-1].Title > accounts[i].Title {
			t.Fatalf("accounts not sorted by title: %q before %q", accounts[i-1].Title, accounts[i].Title)
		}
	}
	if accounts[0].Currency != "USD" {
		t.Errorf("currency = %q", accounts[0].Currency)
	}

	all := s.ListAccounts(true)
	if len(all) != 6 {
		t.Fatalf("with archived: %d accounts, want 6", len(all))
	}
}

func TestListTransactionsFiltersAndOrder(t *testing.T) {
	s, _ := newTestService(t)
	early := expenseTx("dddddddd-dddd-dddd-dddd-dddddddddd21", "2026-03-02", "10", accChecking, tagFood)
	late := incomeTx("dddddddd-dddd-dddd-dddd-dddddddddd22", "2026-03-10", "500", accChecking, tagSalary)
	sameDayA := expenseTx("dddddddd-dddd-dddd-dddd-dddddddddd23", "2026-03-05", "20", accCash, tagCafe)
	sameDayA.Created = 10
	sameDayB := expenseTx("dddddddd-dddd-dddd-dddd-dddddddddd24", "2026-03-05", "30", accCash, tagCafe)
	sameDayB.Created = 20
	deleted := expenseTx("dddddddd-dddd-dddd-dddd-dddddddddd25", "2026-03-06", "40", accChecking, tagFood)
	deleted.Deleted = true
	s.Store.ApplyDiff(&Diff{Transaction: []Transaction{early, late, sameDayA, sameDayB, deleted}})

	result := s.ListTransactions(TransactionQuery{Period: march()})
	if len(result.Transactions) != 4 {
		t.Fatalf("transactions = %d, want 4 with the deleted one hidden", len(result.Transactions))
	}
	// Newest first, most recently created wins within a day.
	wantOrder := []string{late.ID, sameDayB.ID, sameDayA.ID, early.ID}
	for i, want := range wantOrder {
		if result.Transactions[i].ID != want {
			t.Errorf("position %d = %s, want %s", i, result.Transactions[i].ID, want)
		}
	}
	if result.Truncated {
		t.Error("small result marked truncated")
	}

	byAccount := s.ListTransactions(TransactionQuery{Period: march(), AccountID: accCash})
	if len(byAccount.Transactions) != 2 {
		t.Errorf("account filter: %d rows, want 2", len(byAccount.Transactions))
	}
	byCategory := s.ListTransactions(TransactionQuery{Period: march(), CategoryID: tagSalary})
	if len(byCategory.Transactions) != 1 || byCategory.Transactions[0].ID != late.ID {
		t.Errorf("category filter: %+v", byCategory.Transactions)
	}
	byKind := s.ListTransactions(TransactionQuery{Period: march(), Kind: KindIncome})
	if len(byKind.Transactions) != 1 || byKind.Transactions[0].Type != KindIncome {
		t.Errorf("kind filter: %+v", byKind.Transactions)
	}
}

func TestListTransactionsPaging(t *testing.T) {
	s, _ := newTestService(t)
	txs := []Transaction{
		expenseTx("dddddddd-dddd-dddd-dddd-dddddddddd31", "2026-03-01", "1", accChecking),
		expenseTx("dddddddd-dddd-dddd-dddd-dddddddddd32", "2026-03-02", "2", accChecking),
		expenseTx("dddddddd-dddd-dddd-dddd-dddddddddd33", "2026-03-03", "3", accChecking),
	}
	s.Store.ApplyDiff(&Diff{Transaction: txs})

	result := s.ListTransactions(TransactionQuery{Period: march(), Limit: 2})
	if len(result.Transactions) != 2 {
		t.Fatalf("page = %d rows, want 2", len(result.Transactions))
	}
	if !result.Truncated || result.Total != 3 || result.Showing != 2 || result.Offset != 0 {
		t.Errorf("page info = %+v", result.Page)
	}

	rest := s.ListTransactions(TransactionQuery{Period: march(), Limit: 2, Offset: 2})
	if len(rest.Transactions) != 1 || rest.Truncated {
		t.Errorf("last page: %d rows, truncated=%v", len(rest.Transactions), rest.Truncated)
	}
}

func TestListTransactionsTransferShape(t *testing.T) {
	s, _ := newTestService(t)
	s.Store.ApplyDiff(&Diff{Transaction: []Transaction{
		transferTx("dddddddd-dddd-dddd-dddd-dddddddddd41", "2026-03-07", "100", accChecking, accSavings),
	}})
	result := s.ListTransactions(TransactionQuery{Period: march()})
	if len(result.Transactions) != 1 {
		t.Fatal("want one row")
	}
	row := result.Transactions[0]
	if row.Type != KindTransfer || row.Amount != nil {
		t.Errorf("transfer must not carry the single-amount shape: %+v", row)
	}
	if row.FromAccount != "Checking" || row.ToAccount != "Savings" {
		t.Errorf("from/to = %q/%q", row.FromAccount, row.ToAccount)
	}
	if row.OutcomeAmount == nil || !row.OutcomeAmount.Equal(dec("100")) {
		t.Errorf("outcome amount = %v", row.OutcomeAmount)
	}
}

func TestListInstruments(t *testing.T) {
	s, _ := newTestService(t)
	s.Store.ApplyDiff(&Diff{Instrument: []Instrument{
		{ID: 3, Title: "Euro", ShortTitle: "EUR", Symbol: "€"},
	}})

	// No account uses EUR, so it only shows up on request.
	used := s.ListInstruments(false)
	if len(used) != 1 || used[0].Code != "USD" {
		t.Errorf("used instruments = %+v", used)
	}
	all := s.ListInstruments(true)
	if len(all) != 2 || all[0].ID != 2 || all[1].ID != 3 {
		t.Errorf("all instruments = %+v", all)
	}
}

func TestListBudgets(t *testing.T) {
	s, _ := newTestService(t)
	food := tagFood
	s.Store.ApplyDiff(&Diff{Budget: []Budget{
		{User: 1, Tag: &food, Date: date.MustParse("2026-03-01"), Outcome: dec("150")},
		{User: 1, Tag: nil, Date: date.MustParse("2026-03-01"), Outcome: dec("2000")},
		{User: 1, Tag: &food, Date: date.MustParse("2026-04-01"), Outcome: dec("999")},
	}})

	month, _ := date.ParseMonth("2026-03")
	budgets := s.ListBudgets(month)
	if len(budgets) != 2 {
		t.Fatalf("budgets = %d, want 2 for the month", len(budgets))
	}
	// Sorted by category, so Food before Total.
	if budgets[0].Category != "Food" || !budgets[0].Outcome.Equal(dec("150")) {
		t.Errorf("row 0 = %+v", budgets[0])
	}
	if budgets[1].Category != "Total" || !budgets[1].Outcome.Equal(dec("2000")) {
		t.Errorf("aggregate row = %+v", budgets[1])
	}
}

func remindersFixture(s *Service) {
	rent := "eeeeeeee-eeee-eeee-eeee-eeeeeeeeee01"
	gym := "eeeeeeee-eeee-eeee-eeee-eeeeeeeeee02"
	month := IntervalMonth
	one := 1
	s.Store.ApplyDiff(&Diff{
		Reminder: []Reminder{
			{
				ID: rent, User: 1, Payee: "Landlord",
				Outcome: dec("800"), OutcomeAccount: accChecking, OutcomeInstrument: 2,
				IncomeAccount: accChecking, IncomeInstrument: 2,
				Interval: &month, Step: &one, StartDate: date.MustParse("2026-01-01"),
			},
			{
				ID: gym, User: 1, Payee: "Gym",
				Outcome: dec("30"), OutcomeAccount: accChecking, OutcomeInstrument: 2,
				IncomeAccount: accChecking, IncomeInstrument: 2,
				Interval: &month, Step: &one, StartDate: date.MustParse("2026-02-01"),
			},
		},
		ReminderMarker: []ReminderMarker{
			{
				ID: "ffffffff-ffff-ffff-ffff-ffffffffff21", User: 1, Reminder: rent, Date: date.MustParse("2026-04-01"),
				Outcome: dec("800"), OutcomeAccount: accChecking, OutcomeInstrument: 2,
				IncomeAccount: accChecking, IncomeInstrument: 2, State: MarkerPlanned,
			},
			{
				ID: "ffffffff-ffff-ffff-ffff-ffffffffff22", User: 1, Reminder: rent, Date: date.MustParse("2026-03-01"),
				Outcome: dec("800"), OutcomeAccount: accChecking, OutcomeInstrument: 2,
				IncomeAccount: accChecking, IncomeInstrument: 2, State: MarkerProcessed,
			},
			{
				ID: "ffffffff-ffff-ffff-ffff-ffffffffff23", User: 1, Reminder: gym, Date: date.MustParse("2026-03-20"),
				Outcome: dec("30"), OutcomeAccount: accChecking, OutcomeInstrument: 2,
				IncomeAccount: accChecking, IncomeInstrument: 2, State: MarkerPlanned,
			},
		},
	})
}

func TestListRemindersLegacy(t *testing.T) {
	s, _ := newTestService(t)
	remindersFixture(s)

	result := s.ListReminders(ReminderQuery{})
	if result.Mode != "" {
		t.Errorf("mode = %q, want legacy shape", result.Mode)
	}
	if len(result.Reminders) != 2 {
		t.Fatalf("reminders = %d, want 2", len(result.Reminders))
	}
	// Start date descending puts the gym first.
	if result.Reminders[0].Payee != "Gym" || result.Reminders[1].Payee != "Landlord" {
		t.Errorf("order = %q, %q", result.Reminders[0].Payee, result.Reminders[1].Payee)
	}
	// Processed markers are hidden unless asked for.
	rent := result.Reminders[1]
	if len(rent.Markers) != 1 || rent.Markers[0].State != MarkerPlanned {
		t.Errorf("rent markers = %+v", rent.Markers)
	}
	withProcessed := s.ListReminders(ReminderQuery{IncludeProcessed: true})
	if len(withProcessed.Reminders[1].Markers) != 2 {
		t.Errorf("with processed: %+v", withProcessed.Reminders[1].Markers)
	}
}

func TestListRemindersMarkerRange(t *testing.T) {
	s, _ := newTestService(t)
	remindersFixture(s)

	result := s.ListReminders(ReminderQuery{
		MarkerFrom:       date.MustParse("2026-03-01"),
		MarkerTo:         date.MustParse("2026-04-30"),
		IncludeProcessed: true,
	})
	if result.Mode != "marker_range" {
		t.Fatalf("mode = %q", result.Mode)
	}
	if len(result.Reminders) != 2 {
		t.Fatalf("reminders = %d, want 2", len(result.Reminders))
	}
	// Sorted by earliest in-window marker: rent's processed 03-01 precedes
	// gym's 03-20.
	if result.Reminders[0].Payee != "Landlord" || result.Reminders[1].Payee != "Gym" {
		t.Errorf("order = %q, %q", result.Reminders[0].Payee, result.Reminders[1].Payee)
	}
	rent := result.Reminders[0]
	if len(rent.Markers) != 2 {
		t.Fatalf("rent markers = %d, want both in window", len(rent.Markers))
	}
	if rent.TotalOutcome == nil || !rent.TotalOutcome.Equal(dec("1600")) {
		t.Errorf("rent total outcome = %v, want 1600", rent.TotalOutcome)
	}

	// A window past every marker matches nothing.
	empty := s.ListReminders(ReminderQuery{
		MarkerFrom: date.MustParse("2027-01-01"),
		MarkerTo:   date.MustParse("2027-12-31"),
	})
	if len(empty.Reminders) != 0 {
		t.Errorf("out-of-window query returned %d reminders", len(empty.Reminders))
	}
}

func TestListMerchants(t *testing.T) {
	s, _ := newTestService(t)
	s.Store.ApplyDiff(&Diff{Merchant: []Merchant{
		{ID: "99999999-9999-9999-9999-999999999901", User: 1, Title: "Corner Bakery"},
		{ID: "99999999-9999-9999-9999-999999999902", User: 1, Title: "Hardware Store"},
		{ID: "99999999-9999-9999-9999-999999999903", User: 1, Title: "Bakery Lane"},
	}})

	all := s.ListMerchants("", 0, 0)
	if len(all.Merchants) != 3 || all.Merchants[0].Title != "Bakery Lane" {
		t.Errorf("merchants = %+v", all.Merchants)
	}
	filtered := s.ListMerchants("BAKERY", 0, 0)
	if len(filtered.Merchants) != 2 {
		t.Errorf("filter matched %d merchants, want 2", len(filtered.Merchants))
	}
}

func TestAnalyticsByCategory(t *testing.T) {
	s, _ := newTestService(t)
	s.Store.ApplyDiff(&Diff{Transaction: []Transaction{
		expenseTx("dddddddd-dddd-dddd-dddd-dddddddddd51", "2026-03-02", "60", accChecking, tagFood),
		expenseTx("dddddddd-dddd-dddd-dddd-dddddddddd52", "2026-03-03", "40", accChecking, tagFood),
		expenseTx("dddddddd-dddd-dddd-dddd-dddddddddd53", "2026-03-04", "120", accChecking, tagCafe),
		expenseTx("dddddddd-dddd-dddd-dddd-dddddddddd54", "2026-03-05", "15", accChecking),
		// Income and transfers stay out of an expense report.
		incomeTx("dddddddd-dddd-dddd-dddd-dddddddddd55", "2026-03-06", "1000", accChecking, tagSalary),
		transferTx("dddddddd-dddd-dddd-dddd-dddddddddd56", "2026-03-07", "50", accChecking, accSavings),
	}})

	result := s.Analytics(AnalyticsQuery{Period: march()})
	if result.GroupBy != "category" || result.Kind != "expense" {
		t.Errorf("defaults = %q/%q", result.GroupBy, result.Kind)
	}
	if result.TransactionCount != 4 {
		t.Errorf("transaction count = %d, want 4", result.TransactionCount)
	}
	if !result.GrandTotal.Equal(dec("235")) {
		t.Errorf("grand total = %s, want 235", result.GrandTotal)
	}
	if len(result.Groups) != 3 {
		t.Fatalf("groups = %d, want Cafe, Food, Uncategorized", len(result.Groups))
	}
	// Biggest spender first.
	if result.Groups[0].Name != "Cafe" || !result.Groups[0].Total.Equal(dec("120")) {
		t.Errorf("group 0 = %+v", result.Groups[0])
	}
	if result.Groups[1].Name != "Food" || result.Groups[1].Count != 2 {
		t.Errorf("group 1 = %+v", result.Groups[1])
	}
	if result.Groups[2].Name != "Uncategorized" {
		t.Errorf("group 2 = %+v", result.Groups[2])
	}
}

func TestAnalyticsByAccountAllKinds(t *testing.T) {
	s, _ := newTestService(t)
	s.Store.ApplyDiff(&Diff{Transaction: []Transaction{
		expenseTx("dddddddd-dddd-dddd-dddd-dddddddddd61", "2026-03-02", "100", accChecking, tagFood),
		incomeTx("dddddddd-dddd-dddd-dddd-dddddddddd62", "2026-03-03", "400", accChecking, tagSalary),
	}})

	result := s.Analytics(AnalyticsQuery{Period: march(), GroupBy: "account", Kind: "all"})
	if len(result.Groups) != 1 {
		t.Fatalf("groups = %+v", result.Groups)
	}
	g := result.Groups[0]
	if g.Name != "Checking" || g.Count != 2 {
		t.Errorf("group = %+v", g)
	}
	if g.Income == nil || !g.Income.Equal(dec("400")) || g.Outcome == nil || !g.Outcome.Equal(dec("100")) {
		t.Errorf("income/outcome = %v/%v", g.Income, g.Outcome)
	}
	if !g.Total.Equal(dec("500")) {
		t.Errorf("total = %s", g.Total)
	}
}

func TestAnalyticsByMerchantFallsBackToPayee(t *testing.T) {
	s, _ := newTestService(t)
	tx := expenseTx("dddddddd-dddd-dddd-dddd-dddddddddd71", "2026-03-02", "12", accChecking, tagFood)
	tx.Payee = "Corner Shop"
	s.Store.ApplyDiff(&Diff{Transaction: []Transaction{tx}})

	result := s.Analytics(AnalyticsQuery{Period: march(), GroupBy: "merchant"})
	if len(result.Groups) != 1 || result.Groups[0].Name != "Corner Shop" {
		t.Errorf("groups = %+v", result.Groups)
	}
}

func TestCheckAuth(t *testing.T) {
	s, client := newTestService(t)

	status := s.CheckAuth(context.Background())
	if status.Status != "authenticated" {
		t.Errorf("status = %+v", status)
	}

	client.err = ErrTokenExpired
	status = s.CheckAuth(context.Background())
	if status.Status != "error" {
		t.Fatalf("status = %+v", status)
	}
	if status.Solution != "Token expired. Get a new token from https://budgera.com/settings/export" {
		t.Errorf("solution = %q", status.Solution)
	}
}

func TestSyncStoreAppliesDelta(t *testing.T) {
	s, client := newTestService(t)
	client.syncDiff = &Diff{
		ServerTimestamp: 200,
		Transaction: []Transaction{
			expenseTx("dddddddd-dddd-dddd-dddd-dddddddddd81", "2026-03-12", "10", accChecking, tagFood),
		},
	}
	if err := s.SyncStore(context.Background()); err != nil {
		t.Fatalf("SyncStore: %v", err)
	}
	if s.Store.ServerTimestamp != 200 {
		t.Errorf("cursor = %d, want 200", s.Store.ServerTimestamp)
	}
	if _, ok := s.Store.Transaction("dddddddd-dddd-dddd-dddd-dddddddddd81"); !ok {
		t.Error("synced transaction missing from the mirror")
	}

	client.err = ErrTokenExpired
	if err := s.SyncStore(context.Background()); err == nil {
		t.Error("failed sync reported success")
	}
	if s.Store.ServerTimestamp != 200 {
		t.Error("failed sync moved the cursor")
	}
}

func TestCategoryTree(t *testing.T) {
	s, _ := newTestService(t)
	tree := s.CategoryTree()
	if len(tree) != 2 {
		t.Fatalf("roots = %d, want 2", len(tree))
	}
	if tree[0].Title != "Food" || len(tree[0].Children) != 1 {
		t.Errorf("tree = %+v", tree)
	}
}

func TestServiceRebuild(t *testing.T) {
	s, _ := newTestService(t)
	s.Store.ApplyDiff(&Diff{Tag: []Tag{{ID: "cccccccc-cccc-cccc-cccc-ccccccccccc2", User: 1, Title: "Bonus"}}})

	summary, err := s.Rebuild()
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if summary.Categories != "4 categories (3 parent, 1 child)" {
		t.Errorf("summary = %q", summary.Categories)
	}
	if _, ok := s.Refs.Categories["cccccccc-cccc-cccc-cccc-ccccccccccc2"]; !ok {
		t.Error("rebuilt references missing the new category")
	}
}
