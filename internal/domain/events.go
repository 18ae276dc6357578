package domain

import "time"

// Event types
const (
	EventTypeTransactionCreated = "transaction.created"
	EventTypeTransactionUpdated = "transaction.updated"
	EventTypeTransactionDeleted = "transaction.deleted"
	EventTypeAccountCreated     = "account.created"
	EventTypeAccountUpdated     = "account.updated"
	EventTypeAccountDeleted     = "account.deleted"
	EventTypeCategoryCreated    = "category.created"
	EventTypeCategoryUpdated    = "category.updated"
	EventTypeCategoryDeleted    = "category.deleted"
	EventTypePlanningCreated    = "planning.created"
	EventTypePlanningUpdated    = "planning.updated"
	EventTypePlanningDeleted    = "planning.deleted"
)

// Aggregate types
const (
	AggregateTypeTransaction = "transaction"
	AggregateTypeAccount     = "account"
	AggregateTypeCategory    = "category"
	AggregateTypePlanning    = "planning"
)

// SyncEvent is a queued mutation awaiting best-effort upload to the backend.
// EntityUpdatedAt carries the timestamp used for last-write-wins resolution
// on the remote side.
type SyncEvent struct {
	ID              string
	AggregateID     string
	AggregateType   string
	EventType       string
	Payload         map[string]any
	EntityUpdatedAt time.Time
	CreatedAt       time.Time
	SyncedAt        *time.Time
	Synced          bool
}
