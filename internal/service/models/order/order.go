package order

import (
	"fmt"
	"math"
	"time"

	"github.com/1241007/shop-spark-45/internal/service/errs"
	"github.com/1241007/shop-spark-45/internal/service/models/currency"
	"github.com/1241007/shop-spark-45/internal/service/models/orderline"
	"github.com/1241007/shop-spark-45/internal/service/models/payment"
	"github.com/1241007/shop-spark-45/internal/service/models/shipping"
)

// Order is the durable record of a completed or attempted purchase.
type Order struct {
	ID                string                `json:"id"`
	UserID            string                `json:"userId"`
	PaymentMethod     payment.Method        `json:"paymentMethod"`
	Status            Status                `json:"status"`
	ExternalPaymentID string                `json:"externalPaymentId,omitempty"`
	Shipping          shipping.Details      `json:"shipping"`
	AmountMinor       int64                 `json:"amountMinor"`
	DisplayAmount     float64               `json:"displayAmount"`
	Currency          currency.Currency     `json:"currency"`
	ProductIDs        []int64               `json:"productIds"`
	CreatedAt         time.Time             `json:"createdAt"`
	UpdatedAt         time.Time             `json:"updatedAt"`
	Lines             []orderline.OrderLine `json:"lines"`
}

// MinorFromDisplay converts a display amount (rupees) to minor units (paise).
func MinorFromDisplay(display float64) int64 {
	return int64(math.Round(display * 100))
}

// Validate enforces the creation invariants: at least one line, a positive
// amount whose minor and display representations agree, a complete shipping
// snapshot and a persistable status.
func (o *Order) Validate() error {
	if o.UserID == "" {
		return fmt.Errorf("owner is mandatory: %w", errs.ErrValidation)
	}
	if len(o.Lines) == 0 {
		return fmt.Errorf("order has no lines: %w", errs.ErrValidation)
	}
	if o.AmountMinor <= 0 {
		return fmt.Errorf("order amount must be positive: %w", errs.ErrValidation)
	}
	if o.AmountMinor != MinorFromDisplay(o.DisplayAmount) {
		return fmt.Errorf("minor amount %d disagrees with display amount %.2f: %w",
			o.AmountMinor, o.DisplayAmount, errs.ErrValidation)
	}
	for i, line := range o.Lines {
		if line.Quantity < 1 {
			return fmt.Errorf("line %d: quantity must be at least 1: %w", i, errs.ErrValidation)
		}
	}
	if err := o.Shipping.Validate(); err != nil {
		return fmt.Errorf("shipping details: %v: %w", err, errs.ErrValidation)
	}
	if o.Status == StatusCreated {
		return fmt.Errorf("transient status %q cannot be persisted: %w", o.Status, errs.ErrValidation)
	}
	if _, err := ParseStatus(o.Status.String()); err != nil {
		return fmt.Errorf("status %q: %w", o.Status, errs.ErrValidation)
	}
	return nil
}
