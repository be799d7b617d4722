package iinventoryrepo

import (
	"context"

	"github.com/1241007/shop-spark-45/internal/service/models/inventory"
)

// IInventoryRepository is the narrow boundary to the catalog's stock
// storage: a read for current price and availability, plus a conditional
// write used by the reserve/decrement cycle.
type IInventoryRepository interface {
	// Get returns the record for a product. Returns (nil, nil) when the
	// product is unknown.
	Get(ctx context.Context, productID int64) (*inventory.Record, error)

	// CompareAndSetAvailable writes newAvailable only if the row still holds
	// oldAvailable. Returns false when a concurrent writer won the race.
	CompareAndSetAvailable(
		ctx context.Context,
		productID int64,
		oldAvailable int64,
		newAvailable int64,
	) (bool, error)
}
