package cartsvc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/1241007/shop-spark-45/internal/dal/interfaces/icartrepo"
	"github.com/1241007/shop-spark-45/internal/service/errs"
	"github.com/1241007/shop-spark-45/internal/service/models/cartitem"
)

// CartService reconciles a client-local cart with the server copy. The
// server copy is authoritative while the user is authenticated; mutations
// are quantity overwrites, not additions, so replaying a sync is harmless.
type CartService struct {
	repo icartrepo.ICartRepository
}

// option is a function that configures the CartService.
type option func(*CartService)

// MustNewCartService creates a new CartService.
func MustNewCartService(opts ...option) *CartService {
	s := &CartService{}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithRepository sets the cart repository.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithRepository(repo icartrepo.ICartRepository) option {
	return func(s *CartService) {
		s.repo = repo
	}
}

// SetQuantity sets the exact quantity for a (user, product) pair. A
// quantity of zero or less deletes the row; zero is never stored.
func (s *CartService) SetQuantity(
	ctx context.Context,
	userID string,
	productID int64,
	quantity int,
) error {
	if userID == "" {
		return fmt.Errorf("user is required: %w", errs.ErrValidation)
	}

	if quantity <= 0 {
		if err := s.repo.Delete(ctx, userID, productID); err != nil {
			return fmt.Errorf("delete cart item: %w: %w", err, errs.ErrDependency)
		}

		return nil
	}

	if _, err := s.repo.Upsert(ctx, cartitem.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	}); err != nil {
		return fmt.Errorf("upsert cart item: %w: %w", err, errs.ErrDependency)
	}

	return nil
}

// Merge reconciles a client-local cart into the server cart at login time
// by per-product quantity overwrite.
func (s *CartService) Merge(ctx context.Context, userID string, items []cartitem.CartItem) error {
	for _, item := range items {
		if err := s.SetQuantity(ctx, userID, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}

	slog.Info("Cart merged", "user_id", userID, "items", len(items))

	return nil
}

// List returns the user's server cart.
func (s *CartService) List(ctx context.Context, userID string) ([]cartitem.CartItem, error) {
	items, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w: %w", err, errs.ErrDependency)
	}
	if items == nil {
		items = []cartitem.CartItem{}
	}

	return items, nil
}

// Clear empties the user's server cart. Called after a successful checkout.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	if err := s.repo.Clear(ctx, userID); err != nil {
		return fmt.Errorf("clear cart: %w: %w", err, errs.ErrDependency)
	}

	return nil
}
