package inventory

import (
	"errors"
	"time"
)

// Record is the per-product stock row. Available is never negative and is
// only changed through the conditional adjustment cycle, never by a blind
// overwrite. Name, price and image are the catalog's current values, read
// at checkout for server-side re-pricing and line snapshots.
type Record struct {
	ProductID      int64     `json:"productId"`
	ProductName    string    `json:"productName"`
	UnitPriceMinor int64     `json:"unitPriceMinor"`
	ImageURL       string    `json:"imageUrl"`
	Available      int64     `json:"available"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// OversellPolicy decides what happens when a decrement exceeds availability.
type OversellPolicy string

const (
	// PolicyClamp applies max(0, available-quantity), mirroring the
	// best-effort behavior the storefront always had.
	PolicyClamp OversellPolicy = "clamp"
	// PolicyReject refuses the decrement outright when stock is short.
	PolicyReject OversellPolicy = "reject"
)

var ErrInvalidPolicy = errors.New("invalid oversell policy")

func ParseOversellPolicy(s string) (OversellPolicy, error) {
	switch OversellPolicy(s) {
	case PolicyClamp, PolicyReject:
		return OversellPolicy(s), nil
	default:
		return "", ErrInvalidPolicy
	}
}
