package iorderrepo

import (
	"context"

	"github.com/1241007/shop-spark-45/internal/service/models/order"
	"github.com/1241007/shop-spark-45/internal/service/models/payment"
)

// IOrderRepository is an interface for the order postgres repository.
type IOrderRepository interface {
	// Insert persists a new order row.
	Insert(ctx context.Context, o order.Order) (order.Order, error)

	// GetByPaymentRef looks an order up by its idempotency key. Returns
	// (nil, nil) when no such order exists.
	GetByPaymentRef(
		ctx context.Context,
		method payment.Method,
		externalPaymentID string,
	) (*order.Order, error)

	// GetByID fetches an order scoped to its owner. Returns (nil, nil) when
	// the order does not exist or belongs to another user.
	GetByID(ctx context.Context, userID, orderID string) (*order.Order, error)

	// Query retrieves orders based on filter criteria, newest first.
	Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)

	// UpdateStatus conditionally moves an order to a new status when its
	// current status is one of from. An empty userID skips owner scoping.
	// Returns the number of rows changed.
	UpdateStatus(
		ctx context.Context,
		orderID string,
		userID string,
		from []order.Status,
		to order.Status,
	) (int64, error)
}
