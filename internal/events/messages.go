package events

import (
	"encoding/json"
	"time"
)

// Entities and actions carried by ledger events.
const (
	EntityTransaction = "transaction"
	EntityCategory    = "category"

	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// LedgerEvent is a lightweight notification that a user's ledger
// changed. Consumers fetch full rows themselves; the event only carries
// identifiers.
type LedgerEvent struct {
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerEvent creates an event stamped with the current time.
func NewLedgerEvent(entity, action string, id, userID int64) LedgerEvent {
	return LedgerEvent{
		Entity:    entity,
		Action:    action,
		ID:        id,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON parses an event from JSON bytes.
func LedgerEventFromJSON(data []byte) (LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return LedgerEvent{}, err
	}
	return e, nil
}
