package icartrepo

import (
	"context"

	"github.com/1241007/shop-spark-45/internal/service/models/cartitem"
)

// ICartRepository is an interface for the cart postgres repository.
type ICartRepository interface {
	// Upsert sets the exact quantity for a (user, product) pair, replacing
	// any prior value.
	Upsert(ctx context.Context, item cartitem.CartItem) (cartitem.CartItem, error)
	Delete(ctx context.Context, userID string, productID int64) error
	List(ctx context.Context, userID string) ([]cartitem.CartItem, error)
	Clear(ctx context.Context, userID string) error
}
