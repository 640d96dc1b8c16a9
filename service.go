package zenassist

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/budgera/zenassist/date"
	"github.com/shopspring/decimal"
)

// AllCategories is the sentinel category id meaning "no category filter".
const AllCategories = "00000000-0000-0000-0000-000000000000"

// Service binds the mirror, the reference indexes, the configuration and the
// server client into one object the operations hang off. It is built once per
// invocation.
type Service struct {
	Store  *Store
	Refs   *References
	Config *Config
	Client DiffClient

	// StorePath is where SaveStore persists the mirror after a sync or a
	// write-through.
	StorePath string
	// RefsDir holds the rebuilt reference indexes.
	RefsDir string

	// Now is the report clock, overridable in tests. Zero means today.
	Now date.Date
}

// Today returns the report clock.
func (s *Service) Today() date.Date {
	if s.Now.IsZero() {
		return date.Today()
	}
	return s.Now
}

// Period resolves the reporting window: an explicit from/to pair wins, then
// an explicit month, then the billing period containing today.
func (s *Service) Period(from, to, month string) (date.Range, error) {
	switch {
	case from != "" || to != "":
		if from == "" || to == "" {
			return date.Range{}, fmt.Errorf("from and to must be given together")
		}
		f, err := date.Parse(from)
		if err != nil {
			return date.Range{}, fmt.Errorf("invalid from: %w", err)
		}
		t, err := date.Parse(to)
		if err != nil {
			return date.Range{}, fmt.Errorf("invalid to: %w", err)
		}
		if t.Before(f) {
			return date.Range{}, fmt.Errorf("to %s precedes from %s", to, from)
		}
		return date.Range{From: f, To: t}, nil
	case month != "":
		m, err := date.ParseMonth(month)
		if err != nil {
			return date.Range{}, fmt.Errorf("invalid month: %w", err)
		}
		return date.Range{From: m.First(), To: m.Next().First().Add(-1)}, nil
	default:
		return date.BillingPeriod(s.Today(), s.Config.BillingPeriodStartDay), nil
	}
}

// Mode resolves the budget mode: the argument wins, then the configured
// default.
func (s *Service) Mode(name string) (string, Mode, error) {
	return s.Config.ResolveMode(name)
}

// AccountSide resolves the transfer endpoint attributes for an account,
// preferring the rebuilt index and degrading to the raw mirror entity.
func (s *Service) AccountSide(id string) TransferSide {
	if ref, ok := s.Refs.Accounts[id]; ok {
		return ref.TransferSide()
	}
	if a, ok := s.Store.Account(id); ok {
		return TransferSide{Type: a.Type, Subtype: a.Subtype(), Savings: a.Savings, InBalance: a.InBalance}
	}
	return TransferSide{}
}

// AccountTitle resolves a display title, "unknown" when the account is
// neither indexed nor mirrored.
func (s *Service) AccountTitle(id string) string {
	if ref, ok := s.Refs.Accounts[id]; ok {
		return ref.Title
	}
	if a, ok := s.Store.Account(id); ok {
		return a.Title
	}
	return "unknown"
}

// CategoryTitle resolves a display title, "uncategorized" for the nil
// category and "unknown" for an unindexed one.
func (s *Service) CategoryTitle(id *string) string {
	if id == nil {
		return "uncategorized"
	}
	if ref, ok := s.Refs.Categories[*id]; ok {
		return ref.Title
	}
	if t, ok := s.Store.Tag(*id); ok {
		return t.Title
	}
	return "unknown"
}

// ResolveCategory turns a user-supplied category reference (a UUID or a
// case-insensitive title) into the category id. The AllCategories sentinel
// and the empty string pass through as "no filter" (empty id, no error).
func (s *Service) ResolveCategory(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || ref == AllCategories {
		return "", nil
	}
	if uuidRe.MatchString(ref) {
		if _, ok := s.Store.Tag(ref); !ok {
			return "", fmt.Errorf("unknown category id %q", ref)
		}
		return ref, nil
	}
	lower := strings.ToLower(ref)
	var matches []Tag
	for _, t := range s.Store.Tags() {
		if strings.ToLower(t.Title) == lower {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no category named %q", ref)
	case 1:
		return matches[0].ID, nil
	default:
		var ids []string
		for _, m := range matches {
			ids = append(ids, m.ID)
		}
		return "", fmt.Errorf("category name %q is ambiguous, use an id: %s", ref, strings.Join(ids, ", "))
	}
}

// ResolveAccount accepts an account UUID or a case-insensitive title.
func (s *Service) ResolveAccount(ref string) (Account, error) {
	ref = strings.TrimSpace(ref)
	if uuidRe.MatchString(ref) {
		if a, ok := s.Store.Account(ref); ok {
			return a, nil
		}
		return Account{}, fmt.Errorf("unknown account id %q", ref)
	}
	lower := strings.ToLower(ref)
	var matches []Account
	for _, a := range s.Store.Accounts() {
		if strings.ToLower(a.Title) == lower {
			matches = append(matches, a)
		}
	}
	switch len(matches) {
	case 0:
		return Account{}, fmt.Errorf("no account named %q", ref)
	case 1:
		return matches[0], nil
	default:
		return Account{}, fmt.Errorf("account name %q is ambiguous, use an id", ref)
	}
}

var uuidRe = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// ValidUUID reports whether s looks like an entity id.
func ValidUUID(s string) bool { return uuidRe.MatchString(s) }

// ParseAmount parses a strictly positive decimal amount.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be positive, got %s", d)
	}
	return d, nil
}
