package zenassist

import (
	"testing"

	"github.com/budgera/zenassist/date"
	"github.com/shopspring/decimal"
)

func expenseTx(id, day, amount, account string, tags ...string) Transaction {
	return Transaction{
		ID: id, User: 1, Date: date.MustParse(day),
		Outcome: dec(amount), OutcomeAccount: account, OutcomeInstrument: 2,
		IncomeAccount: account, IncomeInstrument: 2,
		Tag: tags,
	}
}

func incomeTx(id, day, amount, account string, tags ...string) Transaction {
	return Transaction{
		ID: id, User: 1, Date: date.MustParse(day),
		Income: dec(amount), IncomeAccount: account, IncomeInstrument: 2,
		OutcomeAccount: account, OutcomeInstrument: 2,
		Tag: tags,
	}
}

func transferTx(id, day, amount, from, to string) Transaction {
	return Transaction{
		ID: id, User: 1, Date: date.MustParse(day),
		Outcome: dec(amount), OutcomeAccount: from, OutcomeInstrument: 2,
		Income: dec(amount), IncomeAccount: to, IncomeInstrument: 2,
	}
}

func march() date.Range {
	return date.Range{From: date.MustParse("2026-03-01"), To: date.MustParse("2026-03-31")}
}

func TestAnalyzeBudgetExpectedIsMaxOfSpentAndBudget(t *testing.T) {
	food := tagFood
	tests := []struct {
		name     string
		spent    string
		budget   string
		expected string
	}{
		{"budget covers spending", "100", "150", "150"},
		{"spending exceeds budget", "200", "150", "200"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, _ := newTestService(t)
			s.Store.ApplyDiff(&Diff{
				Transaction: []Transaction{expenseTx("dddddddd-dddd-dddd-dddd-dddddddddd01", "2026-03-02", tc.spent, accChecking, tagFood)},
				Budget:      []Budget{{User: 1, Tag: &food, Date: date.MustParse("2026-03-01"), Outcome: dec(tc.budget)}},
			})

			report, err := s.AnalyzeBudget(AnalyzeOptions{Period: march()})
			if err != nil {
				t.Fatalf("AnalyzeBudget: %v", err)
			}
			if len(report.Expenses) != 1 {
				t.Fatalf("expense rows = %d, want 1", len(report.Expenses))
			}
			row := report.Expenses[0]
			if row.CategoryName != "Food" {
				t.Errorf("category = %q", row.CategoryName)
			}
			if !row.Expected().Equal(dec(tc.expected)) {
				t.Errorf("Expected() = %s, want %s", row.Expected(), tc.expected)
			}
			if !report.Summary.Expense.Expected.Equal(dec(tc.expected)) {
				t.Errorf("summary expected = %s, want %s", report.Summary.Expense.Expected, tc.expected)
			}
		})
	}
}

func TestAnalyzeBudgetMaterializesBudgetOnlyCategories(t *testing.T) {
	s, _ := newTestService(t)
	cafe := tagCafe
	s.Store.ApplyDiff(&Diff{
		Budget: []Budget{{User: 1, Tag: &cafe, Date: date.MustParse("2026-03-01"), Outcome: dec("50")}},
	})

	report, err := s.AnalyzeBudget(AnalyzeOptions{Period: march()})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Expenses) != 1 {
		t.Fatalf("expense rows = %d, want the zero-activity budget row", len(report.Expenses))
	}
	row := report.Expenses[0]
	if row.CategoryName != "Cafe" || !row.Actual.IsZero() || !row.Budget.Equal(dec("50")) {
		t.Errorf("row = %+v", row)
	}
	if !report.Summary.Expense.Expected.Equal(dec("50")) {
		t.Errorf("summary expected = %s, want 50", report.Summary.Expense.Expected)
	}
}

func TestAnalyzeBudgetIncomeWithPlannedMarkers(t *testing.T) {
	s, _ := newTestService(t)
	reminderID := "eeeeeeee-eeee-eeee-eeee-eeeeeeeeeeee"
	s.Store.ApplyDiff(&Diff{
		Transaction: []Transaction{incomeTx("dddddddd-dddd-dddd-dddd-dddddddddd02", "2026-03-05", "1000", accChecking, tagSalary)},
		Reminder: []Reminder{{
			ID: reminderID, User: 1,
			Income: dec("500"), IncomeAccount: accChecking, IncomeInstrument: 2,
			OutcomeAccount: accChecking, OutcomeInstrument: 2,
			Tag: []string{tagSalary}, StartDate: date.MustParse("2026-01-20"),
		}},
		ReminderMarker: []ReminderMarker{
			{
				ID: "ffffffff-ffff-ffff-ffff-ffffffffff01", User: 1, Date: date.MustParse("2026-03-20"),
				Income: dec("500"), IncomeAccount: accChecking, IncomeInstrument: 2,
				OutcomeAccount: accChecking, OutcomeInstrument: 2,
				Reminder: reminderID, State: MarkerPlanned,
			},
			// Already processed: its amount is in some transaction, counting
			// it again would double it.
			{
				ID: "ffffffff-ffff-ffff-ffff-ffffffffff02", User: 1, Date: date.MustParse("2026-03-01"),
				Income: dec("500"), IncomeAccount: accChecking, IncomeInstrument: 2,
				OutcomeAccount: accChecking, OutcomeInstrument: 2,
				Reminder: reminderID, State: MarkerProcessed,
			},
		},
	})

	report, err := s.AnalyzeBudget(AnalyzeOptions{Period: march()})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Income) != 1 {
		t.Fatalf("income rows = %d, want 1", len(report.Income))
	}
	row := report.Income[0]
	if !row.Actual.Equal(dec("1000")) || !row.Planned.Equal(dec("500")) {
		t.Errorf("actual/planned = %s/%s, want 1000/500", row.Actual, row.Planned)
	}
	if !report.Summary.Income.Total.Equal(dec("1500")) {
		t.Errorf("income total = %s, want 1500", report.Summary.Income.Total)
	}
	if !report.Summary.Balance.Equal(dec("1500")) {
		t.Errorf("balance = %s, want 1500 with no expenses or transfers", report.Summary.Balance)
	}
}

func TestAnalyzeBudgetTransferImpactByMode(t *testing.T) {
	newService := func(t *testing.T) *Service {
		s, _ := newTestService(t)
		s.Store.ApplyDiff(&Diff{
			Transaction: []Transaction{transferTx("dddddddd-dddd-dddd-dddd-dddddddddd03", "2026-03-10", "100", accChecking, accSavings)},
		})
		return s
	}

	// Checking to savings is internal money under the default mode.
	report, err := newService(t).AnalyzeBudget(AnalyzeOptions{Period: march()})
	if err != nil {
		t.Fatal(err)
	}
	if !report.Summary.Transfers.Net.IsZero() {
		t.Errorf("net = %s under income_vs_expense, want 0", report.Summary.Transfers.Net)
	}
	if !report.Summary.Balance.IsZero() {
		t.Errorf("balance = %s, want 0", report.Summary.Balance)
	}

	// Under balance_vs_expense the same transfer is an outflow.
	report, err = newService(t).AnalyzeBudget(AnalyzeOptions{Period: march(), ModeName: ModeBalanceVsExpense})
	if err != nil {
		t.Fatal(err)
	}
	if !report.Summary.Transfers.Out.Equal(dec("100")) || !report.Summary.Transfers.Net.Equal(dec("100")) {
		t.Errorf("out/net = %s/%s, want 100/100", report.Summary.Transfers.Out, report.Summary.Transfers.Net)
	}
	if !report.Summary.Balance.Equal(dec("-100")) {
		t.Errorf("balance = %s, want -100", report.Summary.Balance)
	}
	if len(report.Transfers) != 1 || report.Transfers[0].FromAccount != "Checking" || report.Transfers[0].ToAccount != "Savings" {
		t.Errorf("transfers = %+v", report.Transfers)
	}
}

func TestAnalyzeBudgetOffBalanceFilter(t *testing.T) {
	s, _ := newTestService(t)
	// An expense paid from the off-balance credit card.
	s.Store.ApplyDiff(&Diff{
		Transaction: []Transaction{expenseTx("dddddddd-dddd-dddd-dddd-dddddddddd04", "2026-03-03", "40", accCredit, tagFood)},
	})

	report, err := s.AnalyzeBudget(AnalyzeOptions{Period: march()})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Expenses) != 0 {
		t.Fatalf("off-balance expense leaked into the report: %+v", report.Expenses)
	}

	report, err = s.AnalyzeBudget(AnalyzeOptions{Period: march(), IncludeOffBalance: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Expenses) != 1 || !report.Expenses[0].Actual.Equal(dec("40")) {
		t.Errorf("with include_off_balance: %+v", report.Expenses)
	}
}

func TestAnalyzeBudgetRowsSortedByWeight(t *testing.T) {
	s, _ := newTestService(t)
	s.Store.ApplyDiff(&Diff{
		Transaction: []Transaction{
			expenseTx("dddddddd-dddd-dddd-dddd-dddddddddd05", "2026-03-02", "10", accChecking, tagFood),
			expenseTx("dddddddd-dddd-dddd-dddd-dddddddddd06", "2026-03-03", "90", accChecking, tagCafe),
		},
	})
	report, err := s.AnalyzeBudget(AnalyzeOptions{Period: march()})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Expenses) != 2 {
		t.Fatalf("expense rows = %d, want 2", len(report.Expenses))
	}
	if report.Expenses[0].CategoryName != "Cafe" || report.Expenses[1].CategoryName != "Food" {
		t.Errorf("rows = %q, %q, want heaviest first", report.Expenses[0].CategoryName, report.Expenses[1].CategoryName)
	}
}

func TestForecast(t *testing.T) {
	s, _ := newTestService(t)
	s.Store.ApplyDiff(&Diff{
		Transaction: []Transaction{
			expenseTx("dddddddd-dddd-dddd-dddd-dddddddddd07", "2026-03-02", "50", accChecking, tagFood),
			incomeTx("dddddddd-dddd-dddd-dddd-dddddddddd08", "2026-03-05", "30", accChecking, tagSalary),
			// Moves money out of the tracked balance: savings is off balance.
			transferTx("dddddddd-dddd-dddd-dddd-dddddddddd09", "2026-03-10", "100", accChecking, accSavings),
		},
	})

	// The forecast must work without the calendar section being requested.
	report, err := s.AnalyzeBudget(AnalyzeOptions{Period: march(), ShowForecast: true})
	if err != nil {
		t.Fatal(err)
	}
	if report.Calendar != nil {
		t.Error("calendar emitted without being requested")
	}

	// Start balance is the in-balance accounts only: checking 1000, wallet 0.
	want := []ForecastRow{
		{Date: date.MustParse("2026-03-02"), Balance: dec("950"), OperationsCount: 1},
		{Date: date.MustParse("2026-03-05"), Balance: dec("980"), OperationsCount: 1},
		{Date: date.MustParse("2026-03-10"), Balance: dec("880"), OperationsCount: 1},
	}
	if len(report.Forecast) != len(want) {
		t.Fatalf("forecast rows = %d, want %d (days without operations emit no row)", len(report.Forecast), len(want))
	}
	for i, row := range report.Forecast {
		if row.Date != want[i].Date || !row.Balance.Equal(want[i].Balance) || row.OperationsCount != want[i].OperationsCount {
			t.Errorf("row %d = %s %s (%d ops), want %s %s (%d ops)",
				i, row.Date, row.Balance, row.OperationsCount, want[i].Date, want[i].Balance, want[i].OperationsCount)
		}
	}
}

func TestForecastRoundsBalance(t *testing.T) {
	s, _ := newTestService(t)
	s.Store.ApplyDiff(&Diff{
		Transaction: []Transaction{expenseTx("dddddddd-dddd-dddd-dddd-dddddddddd10", "2026-03-02", "0.333", accChecking, tagFood)},
	})
	report, err := s.AnalyzeBudget(AnalyzeOptions{Period: march(), ShowForecast: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Forecast) != 1 {
		t.Fatal("want one forecast row")
	}
	if got := report.Forecast[0].Balance; !got.Equal(decimal.RequireFromString("999.67")) {
		t.Errorf("balance = %s, want 999.67", got)
	}
}

func TestAnalyzeBudgetCalendarChronological(t *testing.T) {
	s, _ := newTestService(t)
	s.Store.ApplyDiff(&Diff{
		Transaction: []Transaction{
			expenseTx("dddddddd-dddd-dddd-dddd-dddddddddd11", "2026-03-20", "10", accChecking, tagFood),
			incomeTx("dddddddd-dddd-dddd-dddd-dddddddddd12", "2026-03-05", "30", accChecking, tagSalary),
		},
	})
	report, err := s.AnalyzeBudget(AnalyzeOptions{Period: march(), ShowCalendar: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Calendar) != 2 {
		t.Fatalf("calendar = %d entries, want 2", len(report.Calendar))
	}
	if report.Calendar[0].Date != date.MustParse("2026-03-05") || report.Calendar[1].Date != date.MustParse("2026-03-20") {
		t.Errorf("calendar order: %s then %s, want date ascending", report.Calendar[0].Date, report.Calendar[1].Date)
	}
}

func TestAnalyzeBudgetUnknownMode(t *testing.T) {
	s, _ := newTestService(t)
	if _, err := s.AnalyzeBudget(AnalyzeOptions{Period: march(), ModeName: "bogus"}); err == nil {
		t.Fatal("unknown mode accepted")
	}
}
