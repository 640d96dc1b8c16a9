package zenassist

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/budgera/zenassist/date"
	"github.com/shopspring/decimal"
)

// Reference index file names inside the references directory.
const (
	accountsRefFile    = "accounts.json"
	categoriesRefFile  = "categories.json"
	accountMetaRefFile = "account_meta.json"
)

// AccountRef is one row of the rebuilt accounts index: the static account
// attributes the analyzer and the classifier need, resolved once.
type AccountRef struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Bank        string          `json:"bank,omitempty"`
	Type        string          `json:"type"`
	Subtype     string          `json:"subtype"`
	InBalance   bool            `json:"inBalance"`
	Balance     decimal.Decimal `json:"balance"`
	CreditLimit decimal.Decimal `json:"creditLimit"`
	Currency    string          `json:"currency"`
	Savings     bool            `json:"savings"`
	Archived    bool            `json:"archived"`
	Description string          `json:"description,omitempty"`
}

// TransferSide converts the account attributes into a classifier endpoint.
func (a AccountRef) TransferSide() TransferSide {
	return TransferSide{Type: a.Type, Subtype: a.Subtype, Savings: a.Savings, InBalance: a.InBalance}
}

// accountsIndex is the on-disk shape of accounts.json.
type accountsIndex struct {
	Generated date.Date    `json:"generated"`
	Total     int          `json:"total"`
	Active    int          `json:"active"`
	InBalance int          `json:"in_balance"`
	Accounts  []AccountRef `json:"accounts"`
}

// CategoryRef is one entry of the flat category index.
type CategoryRef struct {
	Title         string  `json:"title"`
	ParentID      *string `json:"parent_id"`
	ParentTitle   *string `json:"parent_title"`
	IsParent      bool    `json:"is_parent"`
	ChildrenCount int     `json:"children_count"`
}

// CategoryChild is one child entry in the category tree.
type CategoryChild struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ParentID string `json:"parent_id"`
}

// CategoryNode is one root of the two-level category tree. A child never
// appears as a root.
type CategoryNode struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Children []CategoryChild `json:"children"`
}

// categoriesIndex is the on-disk shape of categories.json.
type categoriesIndex struct {
	Generated  date.Date              `json:"generated"`
	Total      int                    `json:"total"`
	Parents    int                    `json:"parents"`
	Categories []CategoryNode         `json:"categories"`
	Index      map[string]CategoryRef `json:"index"`
}

// References are the static lookup tables produced by RebuildReferences and
// consumed read-only by the analyzer. A missing or stale index degrades to
// "uncategorized"/"unknown" labels, it never fails a request.
type References struct {
	Accounts   map[string]AccountRef
	Categories map[string]CategoryRef
	Tree       []CategoryNode
}

// LoadReferences reads the reference indexes from the directory, falling
// back to empty tables on any error.
func LoadReferences(dir string) *References {
	refs := &References{
		Accounts:   make(map[string]AccountRef),
		Categories: make(map[string]CategoryRef),
	}

	var accounts accountsIndex
	if err := readJSONFile(filepath.Join(dir, accountsRefFile), &accounts); err == nil {
		for _, a := range accounts.Accounts {
			refs.Accounts[a.ID] = a
		}
	}

	var categories categoriesIndex
	if err := readJSONFile(filepath.Join(dir, categoriesRefFile), &categories); err == nil {
		refs.Categories = categories.Index
		refs.Tree = categories.Categories
	}
	if refs.Categories == nil {
		refs.Categories = make(map[string]CategoryRef)
	}
	return refs
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// RebuildSummary reports what a rebuild produced.
type RebuildSummary struct {
	Generated  date.Date `json:"generated"`
	Accounts   string    `json:"accounts"`
	Categories string    `json:"categories"`
	Files      []string  `json:"files"`
}

// RebuildReferences regenerates accounts.json and categories.json from the
// mirror. It is the only producer of the lookup tables the analyzer reads;
// run it after account or category changes.
func RebuildReferences(dir string, s *Store, today date.Date) (*RebuildSummary, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create references dir: %w", err)
	}

	// Manual account metadata (descriptions) survives rebuilds.
	meta := make(map[string]struct {
		Description string `json:"description"`
	})
	if err := readJSONFile(filepath.Join(dir, accountMetaRefFile), &meta); err != nil {
		meta = nil
	}

	accounts := accountsIndex{Generated: today}
	for _, a := range s.Accounts() {
		ref := AccountRef{
			ID:          a.ID,
			Title:       a.Title,
			Type:        a.Type,
			Subtype:     a.Subtype(),
			InBalance:   a.InBalance,
			Balance:     a.Balance,
			CreditLimit: a.CreditLimit,
			Currency:    "?",
			Savings:     a.Savings,
			Archived:    a.Archive,
		}
		if instr, ok := s.Instrument(a.Instrument); ok {
			ref.Currency = instr.ShortTitle
		}
		if a.Company != nil {
			if company, ok := s.Company(*a.Company); ok {
				ref.Bank = company.Title
			}
		}
		if m, ok := meta[a.ID]; ok {
			ref.Description = m.Description
		}
		accounts.Accounts = append(accounts.Accounts, ref)
		accounts.Total++
		if !ref.Archived {
			accounts.Active++
			if ref.InBalance {
				accounts.InBalance++
			}
		}
	}
	sort.Slice(accounts.Accounts, func(i, j int) bool {
		a, b := accounts.Accounts[i], accounts.Accounts[j]
		if a.Archived != b.Archived {
			return !a.Archived
		}
		if a.InBalance != b.InBalance {
			return a.InBalance
		}
		return a.Title < b.Title
	})
	if err := writeJSONFile(filepath.Join(dir, accountsRefFile), &accounts); err != nil {
		return nil, err
	}

	categories := buildCategoriesIndex(s.Tags(), today)
	if err := writeJSONFile(filepath.Join(dir, categoriesRefFile), categories); err != nil {
		return nil, err
	}

	return &RebuildSummary{
		Generated: today,
		Accounts: fmt.Sprintf("%d accounts (%d active, %d in balance)",
			accounts.Total, accounts.Active, accounts.InBalance),
		Categories: fmt.Sprintf("%d categories (%d parent, %d child)",
			categories.Total, categories.Parents, categories.Total-categories.Parents),
		Files: []string{accountsRefFile, categoriesRefFile},
	}, nil
}

// buildCategoriesIndex turns the flat tag list into the two-level tree plus
// the flat lookup index.
func buildCategoriesIndex(tags []Tag, today date.Date) *categoriesIndex {
	out := &categoriesIndex{
		Generated: today,
		Total:     len(tags),
		Index:     make(map[string]CategoryRef, len(tags)),
	}

	byID := make(map[string]Tag, len(tags))
	children := make(map[string][]Tag)
	var parents []Tag
	for _, t := range tags {
		byID[t.ID] = t
		if t.Parent == nil {
			parents = append(parents, t)
		} else {
			children[*t.Parent] = append(children[*t.Parent], t)
		}
	}
	out.Parents = len(parents)
	sort.Slice(parents, func(i, j int) bool { return parents[i].Title < parents[j].Title })

	for _, p := range parents {
		kids := children[p.ID]
		sort.Slice(kids, func(i, j int) bool { return kids[i].Title < kids[j].Title })
		node := CategoryNode{ID: p.ID, Title: p.Title}
		for _, c := range kids {
			node.Children = append(node.Children, CategoryChild{ID: c.ID, Title: c.Title, ParentID: p.ID})
		}
		out.Categories = append(out.Categories, node)
		out.Index[p.ID] = CategoryRef{Title: p.Title, IsParent: true, ChildrenCount: len(kids)}
	}
	for _, t := range tags {
		if t.Parent == nil {
			continue
		}
		ref := CategoryRef{Title: t.Title, ParentID: t.Parent}
		if parent, ok := byID[*t.Parent]; ok {
			title := parent.Title
			ref.ParentTitle = &title
		}
		out.Index[t.ID] = ref
	}
	return out
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write %s: %w", filepath.Base(path), err)
	}
	log.Printf("wrote %s", path)
	return nil
}
