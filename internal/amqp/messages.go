package amqp

import (
	"encoding/json"
	"time"
)

// Event actions carried on the transaction feed.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// TransactionEvent is a lightweight notification that a transaction changed.
// It carries only the ID and action; the export worker fetches the current
// row from the database, so a stale event is harmless.
type TransactionEvent struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionEvent(id, action string) *TransactionEvent {
	return &TransactionEvent{
		ID:        id,
		Action:    action,
		Timestamp: time.Now(),
	}
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
