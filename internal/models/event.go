package models

import "time"

// Event types published when a user's transactions change.
const (
	EventTransactionAdded   = "transaction.added"
	EventTransactionDeleted = "transaction.deleted"
)

// TransactionEvent is the message body sent to external consumers.
type TransactionEvent struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	UserID         uint      `json:"user_id"`
	TransactionIDs []uint    `json:"transaction_ids,omitempty"`
	Count          int64     `json:"count"`
	OccurredAt     time.Time `json:"occurred_at"`
}
