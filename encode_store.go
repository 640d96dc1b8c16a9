package zenassist

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log"
	"os"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// snapshot is the on-disk form of the Store: the cursor plus one array per
// entity kind. Budgets are flattened back into an array, the composite key
// never leaves the process.
type snapshot struct {
	ServerTimestamp int64            `json:"serverTimestamp"`
	Instrument      []Instrument     `json:"instrument"`
	Country         []Country        `json:"country"`
	Company         []Company        `json:"company"`
	User            []User           `json:"user"`
	Account         []Account        `json:"account"`
	Tag             []Tag            `json:"tag"`
	Merchant        []Merchant       `json:"merchant"`
	Budget          []Budget         `json:"budget"`
	Reminder        []Reminder       `json:"reminder"`
	ReminderMarker  []ReminderMarker `json:"reminderMarker"`
	Transaction     []Transaction    `json:"transaction"`
}

// EncodeStore serializes the full store for durability between invocations.
// DecodeStore(EncodeStore(s)) restores an equivalent store for any reachable
// state.
func EncodeStore(w io.Writer, s *Store) error {
	snap := snapshot{
		ServerTimestamp: s.ServerTimestamp,
		Instrument:      s.Instruments(),
		Country:         s.Countries(),
		Company:         s.Companies(),
		User:            s.Users(),
		Account:         s.Accounts(),
		Tag:             s.Tags(),
		Merchant:        s.Merchants(),
		Budget:          s.Budgets(),
		Reminder:        s.Reminders(),
		ReminderMarker:  s.ReminderMarkers(),
		Transaction:     s.Transactions(),
	}
	return json.NewEncoder(w).Encode(&snap)
}

// DecodeStore restores a store from a snapshot. A malformed snapshot is
// treated as a cache miss: the empty store is returned and the next sync
// rebuilds the mirror from zero.
func DecodeStore(r io.Reader) *Store {
	s := NewStore()
	var snap snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		log.Printf("snapshot unreadable, starting from an empty mirror: %v", err)
		return NewStore()
	}
	s.ServerTimestamp = snap.ServerTimestamp
	s.ApplyDiff(&Diff{
		Instrument:     snap.Instrument,
		Country:        snap.Country,
		Company:        snap.Company,
		User:           snap.User,
		Account:        snap.Account,
		Tag:            snap.Tag,
		Merchant:       snap.Merchant,
		Budget:         snap.Budget,
		Reminder:       snap.Reminder,
		ReminderMarker: snap.ReminderMarker,
		Transaction:    snap.Transaction,
	})
	return s
}

// LoadStore reads the snapshot file. A missing or unreadable file yields the
// empty store; the caller is expected to re-sync.
func LoadStore(path string) *Store {
	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("cannot open snapshot %q, starting empty: %v", path, err)
		}
		return NewStore()
	}
	defer f.Close()
	return DecodeStore(f)
}

// SaveStore writes the snapshot file. The file is not locked, concurrent
// writers are last-writer-wins.
func SaveStore(path string, s *Store) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeStore(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
