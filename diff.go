package zenassist

import (
	"encoding/json"
	"fmt"
)

// Entity kind names as they appear on the wire (diff keys and deletion
// records). Budgets never appear in deletions: the server clears them by
// zeroing both sides.
const (
	KindInstrument     = "instrument"
	KindCountry        = "country"
	KindCompany        = "company"
	KindUser           = "user"
	KindAccount        = "account"
	KindTag            = "tag"
	KindMerchant       = "merchant"
	KindBudget         = "budget"
	KindReminder       = "reminder"
	KindReminderMarker = "reminderMarker"
	KindTransaction    = "transaction"
)

// EntityID is an entity identifier in a deletion record. Kinds with numeric
// ids (instrument, user, country, company) put a JSON number on the wire,
// the rest a UUID string; both decode to the string form.
type EntityID string

// UnmarshalJSON accepts either a JSON string or a JSON number.
func (e *EntityID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*e = EntityID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid entity id %s: %w", string(data), err)
	}
	*e = EntityID(n.String())
	return nil
}

// Deletion is a tombstone for one entity, consumed once when the diff is
// applied and not retained.
type Deletion struct {
	ID     EntityID `json:"id"`
	Object string   `json:"object"`
	Stamp  int64    `json:"stamp"`
	User   int      `json:"user"`
}

// Diff is a server-issued delta of entity upserts and deletions plus a new
// cursor, relative to a previously held cursor. The same shape carries
// client-side changes on a write-through request.
type Diff struct {
	ServerTimestamp int64            `json:"serverTimestamp,omitempty"`
	Instrument      []Instrument     `json:"instrument,omitempty"`
	Country         []Country        `json:"country,omitempty"`
	Company         []Company        `json:"company,omitempty"`
	User            []User           `json:"user,omitempty"`
	Account         []Account        `json:"account,omitempty"`
	Tag             []Tag            `json:"tag,omitempty"`
	Merchant        []Merchant       `json:"merchant,omitempty"`
	Budget          []Budget         `json:"budget,omitempty"`
	Reminder        []Reminder       `json:"reminder,omitempty"`
	ReminderMarker  []ReminderMarker `json:"reminderMarker,omitempty"`
	Transaction     []Transaction    `json:"transaction,omitempty"`
	Deletion        []Deletion       `json:"deletion,omitempty"`
}

// Empty reports whether the diff carries no entities and no deletions.
func (d *Diff) Empty() bool {
	return len(d.Instrument) == 0 && len(d.Country) == 0 && len(d.Company) == 0 &&
		len(d.User) == 0 && len(d.Account) == 0 && len(d.Tag) == 0 &&
		len(d.Merchant) == 0 && len(d.Budget) == 0 && len(d.Reminder) == 0 &&
		len(d.ReminderMarker) == 0 && len(d.Transaction) == 0 && len(d.Deletion) == 0
}
