package order

import (
	"database/sql/driver"
	"errors"
)

// Status is the single canonical state of an order.
type Status string

const (
	// StatusCreated is transient: an order passes through it during checkout
	// and is never persisted in it.
	StatusCreated      Status = "created"
	StatusPaid         Status = "paid"
	StatusCODConfirmed Status = "cod-confirmed"
	StatusProcessing   Status = "processing"
	StatusShipped      Status = "shipped"
	StatusDelivered    Status = "delivered"
	StatusCancelled    Status = "cancelled"
	// StatusFailed marks a rejected payment kept for audit. Terminal, no
	// inventory impact.
	StatusFailed Status = "failed"
)

var ErrInvalidStatus = errors.New("invalid order status")

var transitions = map[Status][]Status{
	StatusCreated:      {StatusPaid, StatusCODConfirmed, StatusFailed},
	StatusPaid:         {StatusProcessing, StatusCancelled},
	StatusCODConfirmed: {StatusProcessing, StatusCancelled},
	StatusProcessing:   {StatusShipped, StatusCancelled},
	StatusShipped:      {StatusDelivered},
}

func (s Status) String() string {
	return string(s)
}

func (s Status) Value() (driver.Value, error) {
	return s.String(), nil
}

// CanTransition reports whether the state machine permits moving to next.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions exist.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// CancellableFrom lists the states an order may be cancelled from.
func CancellableFrom() []Status {
	return []Status{StatusPaid, StatusCODConfirmed, StatusProcessing}
}

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusCreated, StatusPaid, StatusCODConfirmed, StatusProcessing,
		StatusShipped, StatusDelivered, StatusCancelled, StatusFailed:
		return Status(s), nil
	default:
		return "", ErrInvalidStatus
	}
}
