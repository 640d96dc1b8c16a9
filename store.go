package zenassist

import "strconv"

// Store is the in-memory mirror of the server's entities, one explicit map
// per entity kind, plus the monotonic cursor marking how current the mirror
// is. Iteration order of the list methods is unspecified; aggregations sort
// their inputs before use.
//
// A Store is built once per invocation and threaded explicitly through the
// components that need it; there is no shared global cache.
type Store struct {
	ServerTimestamp int64

	instruments  map[int]Instrument
	countries    map[int]Country
	companies    map[int]Company
	users        map[int]User
	accounts     map[string]Account
	tags         map[string]Tag
	merchants    map[string]Merchant
	budgets      map[string]Budget // keyed by Budget.Key(), not a server id
	reminders    map[string]Reminder
	markers      map[string]ReminderMarker
	transactions map[string]Transaction
}

// NewStore creates an empty mirror with a zero cursor.
func NewStore() *Store {
	return &Store{
		instruments:  make(map[int]Instrument),
		countries:    make(map[int]Country),
		companies:    make(map[int]Company),
		users:        make(map[int]User),
		accounts:     make(map[string]Account),
		tags:         make(map[string]Tag),
		merchants:    make(map[string]Merchant),
		budgets:      make(map[string]Budget),
		reminders:    make(map[string]Reminder),
		markers:      make(map[string]ReminderMarker),
		transactions: make(map[string]Transaction),
	}
}

// ApplyDiff merges a server diff into the mirror. The cursor is adopted
// unconditionally, every entity upserts by key with a full replace, and
// deletions are applied strictly after the diff's own upserts so that a
// delete rescinds an upsert of the same key within one diff. Deleting an
// absent key is a no-op.
func (s *Store) ApplyDiff(d *Diff) {
	if d.ServerTimestamp != 0 {
		s.ServerTimestamp = d.ServerTimestamp
	}
	for _, v := range d.Instrument {
		s.instruments[v.ID] = v
	}
	for _, v := range d.Country {
		s.countries[v.ID] = v
	}
	for _, v := range d.Company {
		s.companies[v.ID] = v
	}
	for _, v := range d.User {
		s.users[v.ID] = v
	}
	for _, v := range d.Account {
		s.accounts[v.ID] = v
	}
	for _, v := range d.Tag {
		s.tags[v.ID] = v
	}
	for _, v := range d.Merchant {
		s.merchants[v.ID] = v
	}
	for _, v := range d.Budget {
		s.budgets[v.Key()] = v
	}
	for _, v := range d.Reminder {
		s.reminders[v.ID] = v
	}
	for _, v := range d.ReminderMarker {
		s.markers[v.ID] = v
	}
	for _, v := range d.Transaction {
		s.transactions[v.ID] = v
	}
	for _, del := range d.Deletion {
		s.delete(del.Object, string(del.ID))
	}
}

// delete removes the entity of the named kind, ignoring unknown kinds and
// absent keys. Budget is absent on purpose: budgets are never tombstoned.
func (s *Store) delete(kind, id string) {
	switch kind {
	case KindInstrument:
		if n, err := strconv.Atoi(id); err == nil {
			delete(s.instruments, n)
		}
	case KindCountry:
		if n, err := strconv.Atoi(id); err == nil {
			delete(s.countries, n)
		}
	case KindCompany:
		if n, err := strconv.Atoi(id); err == nil {
			delete(s.companies, n)
		}
	case KindUser:
		if n, err := strconv.Atoi(id); err == nil {
			delete(s.users, n)
		}
	case KindAccount:
		delete(s.accounts, id)
	case KindTag:
		delete(s.tags, id)
	case KindMerchant:
		delete(s.merchants, id)
	case KindReminder:
		delete(s.reminders, id)
	case KindReminderMarker:
		delete(s.markers, id)
	case KindTransaction:
		delete(s.transactions, id)
	}
}

// Getters never fail for missing keys, they report presence instead.

func (s *Store) Instrument(id int) (Instrument, bool) { v, ok := s.instruments[id]; return v, ok }
func (s *Store) Company(id int) (Company, bool)       { v, ok := s.companies[id]; return v, ok }
func (s *Store) Account(id string) (Account, bool)    { v, ok := s.accounts[id]; return v, ok }
func (s *Store) Tag(id string) (Tag, bool)            { v, ok := s.tags[id]; return v, ok }
func (s *Store) Merchant(id string) (Merchant, bool)  { v, ok := s.merchants[id]; return v, ok }
func (s *Store) Reminder(id string) (Reminder, bool)  { v, ok := s.reminders[id]; return v, ok }

func (s *Store) Transaction(id string) (Transaction, bool) {
	v, ok := s.transactions[id]
	return v, ok
}

func (s *Store) ReminderMarker(id string) (ReminderMarker, bool) {
	v, ok := s.markers[id]
	return v, ok
}

// Budget looks a budget up by its composite key.
func (s *Store) Budget(key string) (Budget, bool) { v, ok := s.budgets[key]; return v, ok }

// List methods return the current entities of one kind in unspecified order.

func (s *Store) Instruments() []Instrument        { return collect(s.instruments) }
func (s *Store) Accounts() []Account              { return collect(s.accounts) }
func (s *Store) Tags() []Tag                      { return collect(s.tags) }
func (s *Store) Merchants() []Merchant            { return collect(s.merchants) }
func (s *Store) Budgets() []Budget                { return collect(s.budgets) }
func (s *Store) Reminders() []Reminder            { return collect(s.reminders) }
func (s *Store) ReminderMarkers() []ReminderMarker { return collect(s.markers) }
func (s *Store) Transactions() []Transaction      { return collect(s.transactions) }
func (s *Store) Users() []User                    { return collect(s.users) }
func (s *Store) Countries() []Country             { return collect(s.countries) }
func (s *Store) Companies() []Company             { return collect(s.companies) }

// FirstUser returns an arbitrary user record. Writes are attributed to it
// when no explicit current-user concept exists.
func (s *Store) FirstUser() (User, bool) {
	for _, u := range s.users {
		return u, true
	}
	return User{}, false
}

func collect[K comparable, V any](m map[K]V) []V {
	out := make([]V, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}
