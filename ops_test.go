package zenassist

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"testing"
)

func TestOperationNames(t *testing.T) {
	names := OperationNames()
	if len(names) != len(Operations()) {
		t.Fatalf("names = %d, operations = %d", len(names), len(Operations()))
	}
	if !sort.StringsAreSorted(names) {
		t.Errorf("names not sorted: %v", names)
	}
	seen := make(map[string]bool)
	for _, n := range names {
		if seen[n] {
			t.Errorf("duplicate operation name %q", n)
		}
		seen[n] = true
	}
	for _, required := range []string{"get_accounts", "analyze_budget_detailed", "create_transaction", "delete_reminder_marker"} {
		if !seen[required] {
			t.Errorf("operation %q missing from the registry", required)
		}
	}
}

func TestFindOp(t *testing.T) {
	op, ok := FindOp("create_budget")
	if !ok || op.Name != "create_budget" {
		t.Fatalf("FindOp = %+v, %v", op, ok)
	}
	if _, ok := FindOp("make_coffee"); ok {
		t.Error("FindOp found a nonexistent operation")
	}
}

func TestCallUnknownOperation(t *testing.T) {
	s, _ := newTestService(t)
	_, err := s.Call(context.Background(), "make_coffee", nil)
	if err == nil || !strings.Contains(err.Error(), `unknown operation "make_coffee"`) {
		t.Errorf("err = %v", err)
	}
}

func TestCallDispatchesReads(t *testing.T) {
	s, _ := newTestService(t)
	result, err := s.Call(context.Background(), "get_accounts", Args{})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	accounts, ok := result.([]AccountSummary)
	if !ok || len(accounts) != 5 {
		t.Errorf("result = %T %v", result, result)
	}
}

// jsonArgs decodes the way the CLI and the agent hand arguments over, so the
// accessors see float64 numbers and []any arrays.
func jsonArgs(t *testing.T, raw string) Args {
	t.Helper()
	var args Args
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		t.Fatalf("jsonArgs: %v", err)
	}
	return args
}

func TestCallCreateTransactionFromJSON(t *testing.T) {
	s, client := newTestService(t)
	result, err := s.Call(context.Background(), "create_transaction", jsonArgs(t, `{
		"type": "expense",
		"amount": 19.99,
		"account_id": "`+accChecking+`",
		"category_ids": ["`+tagFood+`"],
		"payee": "Grocer"
	}`))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	wrapped, ok := result.(map[string]any)
	if !ok {
		t.Fatalf("result = %T", result)
	}
	created, ok := wrapped["created"].(*TransactionSummary)
	if !ok || created.Type != KindExpense {
		t.Fatalf("created = %#v", wrapped["created"])
	}
	if len(client.lastWrite.Transaction) != 1 || !client.lastWrite.Transaction[0].Outcome.Equal(dec("19.99")) {
		t.Errorf("pushed = %+v", client.lastWrite)
	}
}

func TestCallMissingRequiredArgument(t *testing.T) {
	s, _ := newTestService(t)
	_, err := s.Call(context.Background(), "create_transaction", jsonArgs(t, `{"amount": 5}`))
	if err == nil || !strings.Contains(err.Error(), `argument "type" is required`) {
		t.Errorf("err = %v", err)
	}
}

func TestCallRejectsWrongArgumentType(t *testing.T) {
	s, _ := newTestService(t)
	_, err := s.Call(context.Background(), "get_accounts", jsonArgs(t, `{"include_archived": "yes"}`))
	if err == nil {
		t.Error("string passed where a boolean is expected")
	}
	_, err = s.Call(context.Background(), "get_transactions", jsonArgs(t, `{"start_date": "2026-03-01", "limit": "many"}`))
	if err == nil {
		t.Error("string passed where a number is expected")
	}
}

func TestCallBudgetRoundTrip(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	if _, err := s.Call(ctx, "create_budget", jsonArgs(t, `{"month": "2026-03", "category": "Food", "outcome": 250}`)); err != nil {
		t.Fatalf("create_budget: %v", err)
	}
	result, err := s.Call(ctx, "get_budgets", jsonArgs(t, `{"month": "2026-03"}`))
	if err != nil {
		t.Fatalf("get_budgets: %v", err)
	}
	budgets, ok := result.([]BudgetSummary)
	if !ok || len(budgets) != 1 {
		t.Fatalf("result = %#v", result)
	}
	if budgets[0].Category != "Food" || !budgets[0].Outcome.Equal(dec("250")) {
		t.Errorf("budget = %+v", budgets[0])
	}
}

func TestOperationParamsDeclareRequired(t *testing.T) {
	// Every operation with a date-range start declares it required, the agent
	// relies on these declarations to build its function schemas.
	for _, name := range []string{"get_transactions", "get_analytics"} {
		op, ok := FindOp(name)
		if !ok {
			t.Fatalf("operation %q missing", name)
		}
		var found bool
		for _, p := range op.Params {
			if p.Name == "start_date" {
				found = true
				if !p.Required {
					t.Errorf("%s: start_date not marked required", name)
				}
			}
		}
		if !found {
			t.Errorf("%s: no start_date parameter", name)
		}
	}
}
