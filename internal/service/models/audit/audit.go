package audit

import "time"

// EventType classifies order lifecycle events published for audit.
type EventType string

const (
	EventOrderCreated EventType = "order_created"
	// EventForgeryAlert is emitted when a gateway signature does not match
	// and the order is persisted as failed.
	EventForgeryAlert EventType = "forgery_alert"
	// EventStockWarning is emitted when an inventory decrement could not be
	// applied after order creation; stock needs manual reconciliation.
	EventStockWarning EventType = "stock_warning"
	// EventOrderCancelled is emitted when an order is cancelled by its owner.
	EventOrderCancelled EventType = "order_cancelled"
)

// Event is one audit log entry for order operations.
type Event struct {
	Type      EventType `json:"type"`
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	Status    string    `json:"status"`
	ProductID int64     `json:"product_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
