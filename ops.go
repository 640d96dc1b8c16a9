package zenassist

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/budgera/zenassist/date"
	"github.com/shopspring/decimal"
)

// Args is the loosely-typed argument bag an operation receives, decoded from
// JSON. Accessors tolerate the types JSON actually produces (float64 for
// numbers, []any for arrays).
type Args map[string]any

func (a Args) has(key string) bool { _, ok := a[key]; return ok }

func (a Args) str(key string) (string, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string, got %T", key, v)
	}
	return s, nil
}

func (a Args) mustStr(key string) (string, error) {
	s, err := a.str(key)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", fmt.Errorf("argument %q is required", key)
	}
	return s, nil
}

func (a Args) boolOr(key string, def bool) (bool, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return def, fmt.Errorf("argument %q must be a boolean, got %T", key, v)
	}
	return b, nil
}

func (a Args) intOr(key string, def int) (int, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case int:
		return n, nil
	case json.Number:
		i, err := n.Int64()
		return int(i), err
	default:
		return def, fmt.Errorf("argument %q must be a number, got %T", key, v)
	}
}

func (a Args) decimal(key string) (decimal.Decimal, bool, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return decimal.Zero, false, nil
	}
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), true, nil
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			return decimal.Zero, false, fmt.Errorf("argument %q: %w", key, err)
		}
		return d, true, nil
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil, err
	default:
		return decimal.Zero, false, fmt.Errorf("argument %q must be a number, got %T", key, v)
	}
}

func (a Args) mustDecimal(key string) (decimal.Decimal, error) {
	d, ok, err := a.decimal(key)
	if err != nil {
		return decimal.Zero, err
	}
	if !ok {
		return decimal.Zero, fmt.Errorf("argument %q is required", key)
	}
	return d, nil
}

func (a Args) strings(key string) ([]string, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("argument %q must be an array of strings, got %T", key, v)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("argument %q must contain strings, got %T", key, item)
		}
		out = append(out, s)
	}
	return out, nil
}

func (a Args) ints(key string) ([]int, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("argument %q must be an array of numbers, got %T", key, v)
	}
	out := make([]int, 0, len(items))
	for _, item := range items {
		n, ok := item.(float64)
		if !ok {
			return nil, fmt.Errorf("argument %q must contain numbers, got %T", key, item)
		}
		out = append(out, int(n))
	}
	return out, nil
}

func (a Args) date(key string) (date.Date, bool, error) {
	s, err := a.str(key)
	if err != nil || s == "" {
		return date.Date{}, false, err
	}
	d, err := date.Parse(s)
	if err != nil {
		return date.Date{}, false, fmt.Errorf("argument %q: %w", key, err)
	}
	return d, true, nil
}

func (a Args) month(key string) (date.Month, error) {
	s, err := a.mustStr(key)
	if err != nil {
		return date.Month{}, err
	}
	m, err := date.ParseMonth(s)
	if err != nil {
		return date.Month{}, fmt.Errorf("argument %q: %w", key, err)
	}
	return m, nil
}

// Param describes one operation argument for discovery and for the agent's
// function declarations.
type Param struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // string, number, integer, boolean, string[], integer[]
	Description string `json:"description"`
	Required    bool   `json:"required,omitempty"`
}

// Op is one named operation: the unit the CLI dispatches by name and the
// agent exposes as a callable function.
type Op struct {
	Name        string
	Description string
	Params      []Param
	Handler     func(ctx context.Context, s *Service, args Args) (any, error)
}

// Call dispatches one operation by name.
func (s *Service) Call(ctx context.Context, name string, args Args) (any, error) {
	for _, op := range Operations() {
		if op.Name == name {
			return op.Handler(ctx, s, args)
		}
	}
	return nil, fmt.Errorf("unknown operation %q, list operations to see what is available", name)
}

// FindOp returns the named operation.
func FindOp(name string) (Op, bool) {
	for _, op := range Operations() {
		if op.Name == name {
			return op, true
		}
	}
	return Op{}, false
}

// period resolves the common start_date/end_date argument pair, end defaulting
// to today.
func argPeriod(s *Service, args Args) (date.Range, error) {
	from, ok, err := args.date("start_date")
	if err != nil {
		return date.Range{}, err
	}
	if !ok {
		return date.Range{}, fmt.Errorf("argument %q is required", "start_date")
	}
	to, ok, err := args.date("end_date")
	if err != nil {
		return date.Range{}, err
	}
	if !ok {
		to = s.Today()
	}
	return date.NewRange(from, to), nil
}

// Operations returns the full operation registry, read operations first.
func Operations() []Op {
	return operations
}

// OperationNames returns the registered operation names, sorted.
func OperationNames() []string {
	names := make([]string, 0, len(operations))
	for _, op := range operations {
		names = append(names, op.Name)
	}
	sort.Strings(names)
	return names
}

var operations = []Op{
	{
		Name:        "get_accounts",
		Description: "List accounts with balance, currency and in-balance flag.",
		Params: []Param{
			{Name: "include_archived", Type: "boolean", Description: "Include archived accounts."},
		},
		Handler: func(_ context.Context, s *Service, args Args) (any, error) {
			includeArchived, err := args.boolOr("include_archived", false)
			if err != nil {
				return nil, err
			}
			return s.ListAccounts(includeArchived), nil
		},
	},
	{
		Name:        "get_transactions",
		Description: "List transactions in a date range, newest first, with optional account/category/type filters.",
		Params: []Param{
			{Name: "start_date", Type: "string", Description: "Range start (yyyy-MM-dd).", Required: true},
			{Name: "end_date", Type: "string", Description: "Range end (yyyy-MM-dd), defaults to today."},
			{Name: "account_id", Type: "string", Description: "Only transactions touching this account."},
			{Name: "category_id", Type: "string", Description: "Only transactions carrying this category."},
			{Name: "type", Type: "string", Description: "expense, income or transfer."},
			{Name: "limit", Type: "integer", Description: "Page size, max 500."},
			{Name: "offset", Type: "integer", Description: "Page offset."},
		},
		Handler: func(_ context.Context, s *Service, args Args) (any, error) {
			period, err := argPeriod(s, args)
			if err != nil {
				return nil, err
			}
			q := TransactionQuery{Period: period}
			if q.AccountID, err = args.str("account_id"); err != nil {
				return nil, err
			}
			if q.AccountID != "" && !ValidUUID(q.AccountID) {
				return nil, fmt.Errorf("invalid account id %q", q.AccountID)
			}
			if q.CategoryID, err = args.str("category_id"); err != nil {
				return nil, err
			}
			if q.CategoryID != "" && !ValidUUID(q.CategoryID) {
				return nil, fmt.Errorf("invalid category id %q", q.CategoryID)
			}
			kind, err := args.str("type")
			if err != nil {
				return nil, err
			}
			q.Kind = Kind(kind)
			if q.Limit, err = args.intOr("limit", defaultPageLimit); err != nil {
				return nil, err
			}
			if q.Offset, err = args.intOr("offset", 0); err != nil {
				return nil, err
			}
			return s.ListTransactions(q), nil
		},
	},
	{
		Name:        "get_categories",
		Description: "Return the two-level category tree.",
		Handler: func(_ context.Context, s *Service, _ Args) (any, error) {
			return s.CategoryTree(), nil
		},
	},
	{
		Name:        "get_instruments",
		Description: "List currencies; by default only the ones used by some account.",
		Params: []Param{
			{Name: "include_all", Type: "boolean", Description: "Include currencies no account uses."},
		},
		Handler: func(_ context.Context, s *Service, args Args) (any, error) {
			includeAll, err := args.boolOr("include_all", false)
			if err != nil {
				return nil, err
			}
			return s.ListInstruments(includeAll), nil
		},
	},
	{
		Name:        "get_budgets",
		Description: "List the budget entries of a month.",
		Params: []Param{
			{Name: "month", Type: "string", Description: "Month (yyyy-MM).", Required: true},
		},
		Handler: func(_ context.Context, s *Service, args Args) (any, error) {
			month, err := args.month("month")
			if err != nil {
				return nil, err
			}
			return s.ListBudgets(month), nil
		},
	},
	{
		Name:        "get_reminders",
		Description: "List recurring payment plans with their upcoming markers; a marker_from/marker_to window switches to marker-range mode.",
		Params: []Param{
			{Name: "include_processed", Type: "boolean", Description: "Include already-processed markers."},
			{Name: "active_only", Type: "boolean", Description: "Only reminders not yet ended (default true)."},
			{Name: "limit", Type: "integer", Description: "Page size, max 200."},
			{Name: "markers_limit", Type: "integer", Description: "Markers attached per reminder in legacy mode."},
			{Name: "offset", Type: "integer", Description: "Page offset."},
			{Name: "marker_from", Type: "string", Description: "Marker window start (yyyy-MM-dd)."},
			{Name: "marker_to", Type: "string", Description: "Marker window end (yyyy-MM-dd)."},
			{Name: "category", Type: "string", Description: "Only reminders carrying this category title."},
			{Name: "type", Type: "string", Description: "expense, income or transfer."},
		},
		Handler: func(_ context.Context, s *Service, args Args) (any, error) {
			var q ReminderQuery
			var err error
			if q.IncludeProcessed, err = args.boolOr("include_processed", false); err != nil {
				return nil, err
			}
			if q.ActiveOnly, err = args.boolOr("active_only", true); err != nil {
				return nil, err
			}
			if q.Limit, err = args.intOr("limit", 50); err != nil {
				return nil, err
			}
			if q.MarkersLimit, err = args.intOr("markers_limit", 5); err != nil {
				return nil, err
			}
			if q.Offset, err = args.intOr("offset", 0); err != nil {
				return nil, err
			}
			if q.MarkerFrom, _, err = args.date("marker_from"); err != nil {
				return nil, err
			}
			if q.MarkerTo, _, err = args.date("marker_to"); err != nil {
				return nil, err
			}
			if q.Category, err = args.str("category"); err != nil {
				return nil, err
			}
			kind, err := args.str("type")
			if err != nil {
				return nil, err
			}
			if kind != "" && kind != "all" {
				q.Kind = Kind(kind)
			}
			return s.ListReminders(q), nil
		},
	},
	{
		Name:        "rebuild_references",
		Description: "Regenerate the accounts and categories reference indexes from the mirror.",
		Handler: func(_ context.Context, s *Service, _ Args) (any, error) {
			return s.Rebuild()
		},
	},
	{
		Name:        "analyze_budget_detailed",
		Description: "Detailed budget report: income and expenses by category, transfer impacts, calendar and balance forecast for a billing period.",
		Params: []Param{
			{Name: "start_date", Type: "string", Description: "Period start (yyyy-MM-dd); omitted means the current billing period."},
			{Name: "end_date", Type: "string", Description: "Period end (yyyy-MM-dd), defaults to today when start_date is given."},
			{Name: "budget_mode", Type: "string", Description: "Budget mode name; omitted means the configured default."},
			{Name: "include_off_balance", Type: "boolean", Description: "Count off-balance accounts too."},
			{Name: "show_calendar", Type: "boolean", Description: "Include the chronological operations list (default true)."},
			{Name: "show_forecast", Type: "boolean", Description: "Include the daily balance forecast (default true)."},
		},
		Handler: func(_ context.Context, s *Service, args Args) (any, error) {
			var opts AnalyzeOptions
			var err error
			if start, ok, err := args.date("start_date"); err != nil {
				return nil, err
			} else if ok {
				end, okEnd, err := args.date("end_date")
				if err != nil {
					return nil, err
				}
				if !okEnd {
					end = s.Today()
				}
				opts.Period = date.NewRange(start, end)
			} else {
				opts.Period = date.BillingPeriod(s.Today(), s.Config.BillingPeriodStartDay)
			}
			if opts.ModeName, err = args.str("budget_mode"); err != nil {
				return nil, err
			}
			if opts.IncludeOffBalance, err = args.boolOr("include_off_balance", false); err != nil {
				return nil, err
			}
			if opts.ShowCalendar, err = args.boolOr("show_calendar", true); err != nil {
				return nil, err
			}
			if opts.ShowForecast, err = args.boolOr("show_forecast", true); err != nil {
				return nil, err
			}
			return s.AnalyzeBudget(opts)
		},
	},
	{
		Name:        "get_analytics",
		Description: "Total income/expense grouped by category, account or merchant over a date range.",
		Params: []Param{
			{Name: "start_date", Type: "string", Description: "Range start (yyyy-MM-dd).", Required: true},
			{Name: "end_date", Type: "string", Description: "Range end (yyyy-MM-dd), defaults to today."},
			{Name: "group_by", Type: "string", Description: "category (default), account or merchant."},
			{Name: "type", Type: "string", Description: "expense (default), income or all."},
		},
		Handler: func(_ context.Context, s *Service, args Args) (any, error) {
			period, err := argPeriod(s, args)
			if err != nil {
				return nil, err
			}
			groupBy, err := args.str("group_by")
			if err != nil {
				return nil, err
			}
			kind, err := args.str("type")
			if err != nil {
				return nil, err
			}
			return s.Analytics(AnalyticsQuery{Period: period, GroupBy: groupBy, Kind: kind}), nil
		},
	},
	{
		Name:        "suggest",
		Description: "Ask the server for category and merchant suggestions for a payee.",
		Params: []Param{
			{Name: "payee", Type: "string", Description: "The payee to get suggestions for.", Required: true},
		},
		Handler: func(ctx context.Context, s *Service, args Args) (any, error) {
			payee, err := args.mustStr("payee")
			if err != nil {
				return nil, err
			}
			return s.Client.Suggest(ctx, map[string]any{"payee": payee})
		},
	},
	{
		Name:        "get_merchants",
		Description: "List known merchants, optionally filtered by a substring.",
		Params: []Param{
			{Name: "search", Type: "string", Description: "Case-insensitive substring filter."},
			{Name: "limit", Type: "integer", Description: "Page size, max 200."},
			{Name: "offset", Type: "integer", Description: "Page offset."},
		},
		Handler: func(_ context.Context, s *Service, args Args) (any, error) {
			search, err := args.str("search")
			if err != nil {
				return nil, err
			}
			limit, err := args.intOr("limit", 50)
			if err != nil {
				return nil, err
			}
			offset, err := args.intOr("offset", 0)
			if err != nil {
				return nil, err
			}
			return s.ListMerchants(search, limit, offset), nil
		},
	},
	{
		Name:        "check_auth_status",
		Description: "Probe the server and report whether the access token still works.",
		Handler: func(ctx context.Context, s *Service, _ Args) (any, error) {
			return s.CheckAuth(ctx), nil
		},
	},
	{
		Name:        "create_transaction",
		Description: "Create an expense, income or transfer transaction.",
		Params: []Param{
			{Name: "type", Type: "string", Description: "expense, income or transfer.", Required: true},
			{Name: "amount", Type: "number", Description: "Positive amount.", Required: true},
			{Name: "account_id", Type: "string", Description: "Source account id.", Required: true},
			{Name: "to_account_id", Type: "string", Description: "Destination account id, transfers only."},
			{Name: "category_ids", Type: "string[]", Description: "Category ids."},
			{Name: "date", Type: "string", Description: "Operation date (yyyy-MM-dd), defaults to today."},
			{Name: "payee", Type: "string", Description: "Payee."},
			{Name: "comment", Type: "string", Description: "Free-form comment."},
			{Name: "currency_id", Type: "integer", Description: "Override the account currency."},
			{Name: "income_amount", Type: "number", Description: "Receiving amount for cross-currency transfers."},
		},
		Handler: func(ctx context.Context, s *Service, args Args) (any, error) {
			spec, err := txSpecFromArgs(args)
			if err != nil {
				return nil, err
			}
			created, err := s.CreateTransaction(ctx, spec)
			if err != nil {
				return nil, err
			}
			return map[string]any{"created": created}, nil
		},
	},
	{
		Name:        "update_transaction",
		Description: "Patch an existing transaction; only the given fields change.",
		Params: []Param{
			{Name: "id", Type: "string", Description: "Transaction id.", Required: true},
			{Name: "amount", Type: "number", Description: "New amount."},
			{Name: "category_ids", Type: "string[]", Description: "Replacement category ids."},
			{Name: "date", Type: "string", Description: "New date (yyyy-MM-dd)."},
			{Name: "payee", Type: "string", Description: "New payee."},
			{Name: "comment", Type: "string", Description: "New comment."},
		},
		Handler: func(ctx context.Context, s *Service, args Args) (any, error) {
			patch := TransactionPatch{}
			var err error
			if patch.ID, err = args.mustStr("id"); err != nil {
				return nil, err
			}
			if amount, ok, err := args.decimal("amount"); err != nil {
				return nil, err
			} else if ok {
				patch.Amount = &amount
			}
			if args.has("category_ids") {
				ids, err := args.strings("category_ids")
				if err != nil {
					return nil, err
				}
				patch.CategoryIDs = &ids
			}
			if day, ok, err := args.date("date"); err != nil {
				return nil, err
			} else if ok {
				patch.Date = &day
			}
			if args.has("payee") {
				payee, err := args.str("payee")
				if err != nil {
					return nil, err
				}
				patch.Payee = &payee
			}
			if args.has("comment") {
				comment, err := args.str("comment")
				if err != nil {
					return nil, err
				}
				patch.Comment = &comment
			}
			updated, err := s.UpdateTransaction(ctx, patch)
			if err != nil {
				return nil, err
			}
			return map[string]any{"updated": updated}, nil
		},
	},
	{
		Name:        "delete_transaction",
		Description: "Soft-delete a transaction.",
		Params: []Param{
			{Name: "id", Type: "string", Description: "Transaction id.", Required: true},
		},
		Handler: func(ctx context.Context, s *Service, args Args) (any, error) {
			id, err := args.mustStr("id")
			if err != nil {
				return nil, err
			}
			return s.DeleteTransaction(ctx, id)
		},
	},
	{
		Name:        "create_account",
		Description: "Create a new in-balance account.",
		Params: []Param{
			{Name: "title", Type: "string", Description: "Account title.", Required: true},
			{Name: "type", Type: "string", Description: "cash, ccard, checking, loan or debt.", Required: true},
			{Name: "currency_id", Type: "integer", Description: "Currency id, see get_instruments.", Required: true},
			{Name: "balance", Type: "number", Description: "Opening balance, default 0."},
			{Name: "credit_limit", Type: "number", Description: "Credit limit, default 0."},
		},
		Handler: func(ctx context.Context, s *Service, args Args) (any, error) {
			spec := CreateAccountSpec{}
			var err error
			if spec.Title, err = args.mustStr("title"); err != nil {
				return nil, err
			}
			if spec.Type, err = args.mustStr("type"); err != nil {
				return nil, err
			}
			if spec.CurrencyID, err = args.intOr("currency_id", 0); err != nil {
				return nil, err
			}
			if !args.has("currency_id") {
				return nil, fmt.Errorf("argument %q is required", "currency_id")
			}
			if spec.Balance, _, err = args.decimal("balance"); err != nil {
				return nil, err
			}
			if spec.CreditLimit, _, err = args.decimal("credit_limit"); err != nil {
				return nil, err
			}
			created, err := s.CreateAccount(ctx, spec)
			if err != nil {
				return nil, err
			}
			return map[string]any{"created": created}, nil
		},
	},
	{
		Name:        "create_budget",
		Description: "Create (or overwrite) a budget entry for a category and month.",
		Params: []Param{
			{Name: "month", Type: "string", Description: "Month (yyyy-MM).", Required: true},
			{Name: "category", Type: "string", Description: "Category name, id, or ALL for the monthly aggregate.", Required: true},
			{Name: "income", Type: "number", Description: "Planned income, default 0."},
			{Name: "outcome", Type: "number", Description: "Planned outcome, default 0."},
			{Name: "income_lock", Type: "boolean", Description: "Lock the income side."},
			{Name: "outcome_lock", Type: "boolean", Description: "Lock the outcome side."},
		},
		Handler: func(ctx context.Context, s *Service, args Args) (any, error) {
			spec := BudgetSpec{}
			var err error
			if spec.Month, err = args.month("month"); err != nil {
				return nil, err
			}
			if spec.Category, err = args.mustStr("category"); err != nil {
				return nil, err
			}
			if spec.Income, _, err = args.decimal("income"); err != nil {
				return nil, err
			}
			if spec.Outcome, _, err = args.decimal("outcome"); err != nil {
				return nil, err
			}
			if spec.IncomeLock, err = args.boolOr("income_lock", false); err != nil {
				return nil, err
			}
			if spec.OutcomeLock, err = args.boolOr("outcome_lock", false); err != nil {
				return nil, err
			}
			return s.CreateBudget(ctx, spec)
		},
	},
	{
		Name:        "update_budget",
		Description: "Patch an existing budget entry.",
		Params: []Param{
			{Name: "month", Type: "string", Description: "Month (yyyy-MM).", Required: true},
			{Name: "category", Type: "string", Description: "Category name, id, or ALL.", Required: true},
			{Name: "income", Type: "number", Description: "New planned income."},
			{Name: "outcome", Type: "number", Description: "New planned outcome."},
			{Name: "income_lock", Type: "boolean", Description: "New income lock."},
			{Name: "outcome_lock", Type: "boolean", Description: "New outcome lock."},
		},
		Handler: func(ctx context.Context, s *Service, args Args) (any, error) {
			patch := BudgetPatch{}
			var err error
			if patch.Month, err = args.month("month"); err != nil {
				return nil, err
			}
			if patch.Category, err = args.mustStr("category"); err != nil {
				return nil, err
			}
			if income, ok, err := args.decimal("income"); err != nil {
				return nil, err
			} else if ok {
				patch.Income = &income
			}
			if outcome, ok, err := args.decimal("outcome"); err != nil {
				return nil, err
			} else if ok {
				patch.Outcome = &outcome
			}
			if args.has("income_lock") {
				lock, err := args.boolOr("income_lock", false)
				if err != nil {
					return nil, err
				}
				patch.IncomeLock = &lock
			}
			if args.has("outcome_lock") {
				lock, err := args.boolOr("outcome_lock", false)
				if err != nil {
					return nil, err
				}
				patch.OutcomeLock = &lock
			}
			return s.UpdateBudget(ctx, patch)
		},
	},
	{
		Name:        "delete_budget",
		Description: "Clear a budget entry (budgets cannot be tombstoned, both amounts are zeroed).",
		Params: []Param{
			{Name: "month", Type: "string", Description: "Month (yyyy-MM).", Required: true},
			{Name: "category", Type: "string", Description: "Category name, id, or ALL.", Required: true},
		},
		Handler: func(ctx context.Context, s *Service, args Args) (any, error) {
			month, err := args.month("month")
			if err != nil {
				return nil, err
			}
			category, err := args.mustStr("category")
			if err != nil {
				return nil, err
			}
			return s.DeleteBudget(ctx, month, category)
		},
	},
	{
		Name:        "create_reminder",
		Description: "Create a recurring payment plan.",
		Params: []Param{
			{Name: "type", Type: "string", Description: "expense, income or transfer.", Required: true},
			{Name: "amount", Type: "number", Description: "Positive amount.", Required: true},
			{Name: "account_id", Type: "string", Description: "Source account id.", Required: true},
			{Name: "interval", Type: "string", Description: "day, week, month or year.", Required: true},
			{Name: "to_account_id", Type: "string", Description: "Destination account id, transfers only."},
			{Name: "category_ids", Type: "string[]", Description: "Category ids."},
			{Name: "payee", Type: "string", Description: "Payee."},
			{Name: "comment", Type: "string", Description: "Free-form comment."},
			{Name: "step", Type: "integer", Description: "Recurrence step, default 1."},
			{Name: "points", Type: "integer[]", Description: "Recurrence points inside the interval."},
			{Name: "start_date", Type: "string", Description: "First occurrence (yyyy-MM-dd), defaults to today."},
			{Name: "end_date", Type: "string", Description: "Last occurrence (yyyy-MM-dd)."},
			{Name: "notify", Type: "boolean", Description: "Notify before each occurrence (default true)."},
		},
		Handler: func(ctx context.Context, s *Service, args Args) (any, error) {
			spec := ReminderSpec{}
			kind, err := args.mustStr("type")
			if err != nil {
				return nil, err
			}
			spec.Kind = Kind(kind)
			if spec.Amount, err = args.mustDecimal("amount"); err != nil {
				return nil, err
			}
			if spec.AccountID, err = args.mustStr("account_id"); err != nil {
				return nil, err
			}
			if spec.Interval, err = args.mustStr("interval"); err != nil {
				return nil, err
			}
			if spec.ToAccountID, err = args.str("to_account_id"); err != nil {
				return nil, err
			}
			if spec.CategoryIDs, err = args.strings("category_ids"); err != nil {
				return nil, err
			}
			if spec.Payee, err = args.str("payee"); err != nil {
				return nil, err
			}
			if spec.Comment, err = args.str("comment"); err != nil {
				return nil, err
			}
			if spec.Step, err = args.intOr("step", 1); err != nil {
				return nil, err
			}
			if spec.Points, err = args.ints("points"); err != nil {
				return nil, err
			}
			if spec.StartDate, _, err = args.date("start_date"); err != nil {
				return nil, err
			}
			if end, ok, err := args.date("end_date"); err != nil {
				return nil, err
			} else if ok {
				spec.EndDate = &end
			}
			if spec.Notify, err = args.boolOr("notify", true); err != nil {
				return nil, err
			}
			return s.CreateReminder(ctx, spec)
		},
	},
	{
		Name:        "update_reminder",
		Description: "Patch an existing reminder; only the given fields change.",
		Params: []Param{
			{Name: "id", Type: "string", Description: "Reminder id.", Required: true},
			{Name: "amount", Type: "number", Description: "New amount."},
			{Name: "category_ids", Type: "string[]", Description: "Replacement category ids."},
			{Name: "payee", Type: "string", Description: "New payee."},
			{Name: "comment", Type: "string", Description: "New comment."},
			{Name: "interval", Type: "string", Description: "New interval."},
			{Name: "step", Type: "integer", Description: "New step."},
			{Name: "points", Type: "integer[]", Description: "New recurrence points."},
			{Name: "end_date", Type: "string", Description: "New end date (yyyy-MM-dd)."},
			{Name: "notify", Type: "boolean", Description: "New notify flag."},
		},
		Handler: func(ctx context.Context, s *Service, args Args) (any, error) {
			patch := ReminderPatch{}
			var err error
			if patch.ID, err = args.mustStr("id"); err != nil {
				return nil, err
			}
			if amount, ok, err := args.decimal("amount"); err != nil {
				return nil, err
			} else if ok {
				patch.Amount = &amount
			}
			if args.has("category_ids") {
				ids, err := args.strings("category_ids")
				if err != nil {
					return nil, err
				}
				patch.CategoryIDs = &ids
			}
			if args.has("payee") {
				payee, err := args.str("payee")
				if err != nil {
					return nil, err
				}
				patch.Payee = &payee
			}
			if args.has("comment") {
				comment, err := args.str("comment")
				if err != nil {
					return nil, err
				}
				patch.Comment = &comment
			}
			if args.has("interval") {
				interval, err := args.str("interval")
				if err != nil {
					return nil, err
				}
				patch.Interval = &interval
			}
			if args.has("step") {
				step, err := args.intOr("step", 1)
				if err != nil {
					return nil, err
				}
				patch.Step = &step
			}
			if args.has("points") {
				points, err := args.ints("points")
				if err != nil {
					return nil, err
				}
				patch.Points = &points
			}
			if end, ok, err := args.date("end_date"); err != nil {
				return nil, err
			} else if ok {
				patch.EndDate = &end
			}
			if args.has("notify") {
				notify, err := args.boolOr("notify", true)
				if err != nil {
					return nil, err
				}
				patch.Notify = &notify
			}
			return s.UpdateReminder(ctx, patch)
		},
	},
	{
		Name:        "delete_reminder",
		Description: "Delete a reminder and all markers materialized from it.",
		Params: []Param{
			{Name: "id", Type: "string", Description: "Reminder id.", Required: true},
		},
		Handler: func(ctx context.Context, s *Service, args Args) (any, error) {
			id, err := args.mustStr("id")
			if err != nil {
				return nil, err
			}
			return s.DeleteReminder(ctx, id)
		},
	},
	{
		Name:        "create_reminder_marker",
		Description: "Schedule one dated planned operation; a one-time reminder is auto-created when none is given.",
		Params: []Param{
			{Name: "type", Type: "string", Description: "expense, income or transfer.", Required: true},
			{Name: "amount", Type: "number", Description: "Positive amount.", Required: true},
			{Name: "account_id", Type: "string", Description: "Source account id.", Required: true},
			{Name: "date", Type: "string", Description: "Planned date (yyyy-MM-dd).", Required: true},
			{Name: "to_account_id", Type: "string", Description: "Destination account id, transfers only."},
			{Name: "category_ids", Type: "string[]", Description: "Category ids."},
			{Name: "payee", Type: "string", Description: "Payee."},
			{Name: "comment", Type: "string", Description: "Free-form comment."},
			{Name: "reminder_id", Type: "string", Description: "Attach to an existing reminder."},
			{Name: "notify", Type: "boolean", Description: "Notify on the planned date (default true)."},
		},
		Handler: func(ctx context.Context, s *Service, args Args) (any, error) {
			spec := MarkerSpec{}
			kind, err := args.mustStr("type")
			if err != nil {
				return nil, err
			}
			spec.Kind = Kind(kind)
			if spec.Amount, err = args.mustDecimal("amount"); err != nil {
				return nil, err
			}
			if spec.AccountID, err = args.mustStr("account_id"); err != nil {
				return nil, err
			}
			day, ok, err := args.date("date")
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, fmt.Errorf("argument %q is required", "date")
			}
			spec.Date = day
			if spec.ToAccountID, err = args.str("to_account_id"); err != nil {
				return nil, err
			}
			if spec.CategoryIDs, err = args.strings("category_ids"); err != nil {
				return nil, err
			}
			if spec.Payee, err = args.str("payee"); err != nil {
				return nil, err
			}
			if spec.Comment, err = args.str("comment"); err != nil {
				return nil, err
			}
			if spec.ReminderID, err = args.str("reminder_id"); err != nil {
				return nil, err
			}
			if spec.Notify, err = args.boolOr("notify", true); err != nil {
				return nil, err
			}
			return s.CreateReminderMarker(ctx, spec)
		},
	},
	{
		Name:        "delete_reminder_marker",
		Description: "Delete a single planned marker, leaving its reminder alone.",
		Params: []Param{
			{Name: "id", Type: "string", Description: "Marker id.", Required: true},
		},
		Handler: func(ctx context.Context, s *Service, args Args) (any, error) {
			id, err := args.mustStr("id")
			if err != nil {
				return nil, err
			}
			return s.DeleteReminderMarker(ctx, id)
		},
	},
}

// txSpecFromArgs decodes the create_transaction argument bag.
func txSpecFromArgs(args Args) (CreateTransactionSpec, error) {
	spec := CreateTransactionSpec{}
	kind, err := args.mustStr("type")
	if err != nil {
		return spec, err
	}
	spec.Kind = Kind(kind)
	if spec.Amount, err = args.mustDecimal("amount"); err != nil {
		return spec, err
	}
	if spec.AccountID, err = args.mustStr("account_id"); err != nil {
		return spec, err
	}
	if spec.ToAccountID, err = args.str("to_account_id"); err != nil {
		return spec, err
	}
	if spec.CategoryIDs, err = args.strings("category_ids"); err != nil {
		return spec, err
	}
	if spec.Date, _, err = args.date("date"); err != nil {
		return spec, err
	}
	if spec.Payee, err = args.str("payee"); err != nil {
		return spec, err
	}
	if spec.Comment, err = args.str("comment"); err != nil {
		return spec, err
	}
	if args.has("currency_id") {
		currency, err := args.intOr("currency_id", 0)
		if err != nil {
			return spec, err
		}
		spec.CurrencyID = &currency
	}
	if income, ok, err := args.decimal("income_amount"); err != nil {
		return spec, err
	} else if ok {
		spec.IncomeAmount = &income
	}
	return spec, nil
}
