package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types published after a successful ledger write.
const (
	EventTransactionCreated = "transaction.created"
	EventTransactionDeleted = "transaction.deleted"
	EventBudgetUpdated      = "budget.updated"
)

// LedgerEvent is a lightweight notification. It carries ids only; consumers
// read the full record back from the database.
type LedgerEvent struct {
	Type          string    `json:"type"`
	OwnerID       string    `json:"owner_id"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewTransactionCreated(ownerID, txID string) *LedgerEvent {
	return &LedgerEvent{Type: EventTransactionCreated, OwnerID: ownerID, TransactionID: txID, Timestamp: time.Now()}
}

func NewTransactionDeleted(ownerID, txID string) *LedgerEvent {
	return &LedgerEvent{Type: EventTransactionDeleted, OwnerID: ownerID, TransactionID: txID, Timestamp: time.Now()}
}

func NewBudgetUpdated(ownerID string) *LedgerEvent {
	return &LedgerEvent{Type: EventBudgetUpdated, OwnerID: ownerID, Timestamp: time.Now()}
}

func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventFromJSON decodes and validates an event body.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Type {
	case EventTransactionCreated, EventTransactionDeleted:
		if msg.TransactionID == "" {
			return nil, fmt.Errorf("%s event without transaction id", msg.Type)
		}
	case EventBudgetUpdated:
	default:
		return nil, fmt.Errorf("unknown event type %q", msg.Type)
	}
	if msg.OwnerID == "" {
		return nil, fmt.Errorf("%s event without owner id", msg.Type)
	}
	return &msg, nil
}
