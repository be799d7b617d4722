package inventorysvc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"

	"github.com/1241007/shop-spark-45/internal/dal/interfaces/iauditrepo"
	"github.com/1241007/shop-spark-45/internal/dal/interfaces/iinventoryrepo"
	"github.com/1241007/shop-spark-45/internal/service/errs"
	auditmodel "github.com/1241007/shop-spark-45/internal/service/models/audit"
	"github.com/1241007/shop-spark-45/internal/service/models/inventory"
)

// InventoryService applies stock adjustments through a bounded
// read-compute-write cycle over the repository's conditional update. All
// cross-instance coordination lives in the write predicate; the service
// holds no locks.
type InventoryService struct {
	repo       iinventoryrepo.IInventoryRepository
	auditRepo  iauditrepo.IAuditRepository
	maxRetries int
	policy     inventory.OversellPolicy
}

// option is a function that configures the InventoryService.
type option func(*InventoryService)

// MustNewInventoryService creates a new InventoryService. Retry bound and
// oversell policy default from config when not set explicitly.
func MustNewInventoryService(opts ...option) *InventoryService {
	s := &InventoryService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.maxRetries == 0 {
		s.maxRetries = viper.GetInt("inventory.max_retries")
		if s.maxRetries == 0 {
			s.maxRetries = 3
		}
	}
	if s.policy == "" {
		policy, err := inventory.ParseOversellPolicy(viper.GetString("inventory.oversell_policy"))
		if err != nil {
			policy = inventory.PolicyClamp
		}
		s.policy = policy
	}

	return s
}

// WithRepository sets the inventory repository.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithRepository(repo iinventoryrepo.IInventoryRepository) option {
	return func(s *InventoryService) {
		s.repo = repo
	}
}

// WithAuditRepository sets the audit publisher for stock warnings.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithAuditRepository(auditRepo iauditrepo.IAuditRepository) option {
	return func(s *InventoryService) {
		s.auditRepo = auditRepo
	}
}

// WithMaxRetries bounds the read-compute-write cycle.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithMaxRetries(n int) option {
	return func(s *InventoryService) {
		s.maxRetries = n
	}
}

// WithOversellPolicy sets the clamp-or-reject policy.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithOversellPolicy(policy inventory.OversellPolicy) option {
	return func(s *InventoryService) {
		s.policy = policy
	}
}

// Get returns the current price and availability for a product.
func (s *InventoryService) Get(ctx context.Context, productID int64) (*inventory.Record, error) {
	record, err := s.repo.Get(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("read inventory: %w: %w", err, errs.ErrDependency)
	}

	return record, nil
}

// Decrement reduces availability for a product, never below zero. Under the
// clamp policy a shortfall is applied as max(0, available-quantity); under
// reject it is refused. When a concurrent writer keeps winning the
// conditional update past the retry bound, the caller gets a conflict and
// may retry.
func (s *InventoryService) Decrement(
	ctx context.Context,
	productID int64,
	quantity int64,
) (int64, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "InventoryService.Decrement")
	defer span.End()

	if quantity < 1 {
		return 0, fmt.Errorf("decrement quantity must be at least 1: %w", errs.ErrValidation)
	}

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		record, err := s.repo.Get(ctx, productID)
		if err != nil {
			return 0, fmt.Errorf("read inventory: %w: %w", err, errs.ErrDependency)
		}
		if record == nil {
			return 0, fmt.Errorf("product %d has no inventory record: %w", productID, errs.ErrNotFound)
		}

		if record.Available < quantity && s.policy == inventory.PolicyReject {
			return 0, fmt.Errorf("product %d: requested %d, available %d: %w",
				productID, quantity, record.Available, errs.ErrConflict)
		}

		newAvailable := record.Available - quantity
		if newAvailable < 0 {
			newAvailable = 0
		}

		applied, err := s.repo.CompareAndSetAvailable(ctx, productID, record.Available, newAvailable)
		if err != nil {
			return 0, fmt.Errorf("write inventory: %w: %w", err, errs.ErrDependency)
		}
		if applied {
			return newAvailable, nil
		}
	}

	return 0, fmt.Errorf("product %d: decrement lost the race %d times: %w",
		productID, s.maxRetries, errs.ErrConflict)
}

// Restock adds quantity back, using the same conditional cycle. Used by
// catalog reconciliation and by manual stock correction.
func (s *InventoryService) Restock(
	ctx context.Context,
	productID int64,
	quantity int64,
) (int64, error) {
	if quantity < 1 {
		return 0, fmt.Errorf("restock quantity must be at least 1: %w", errs.ErrValidation)
	}

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		record, err := s.repo.Get(ctx, productID)
		if err != nil {
			return 0, fmt.Errorf("read inventory: %w: %w", err, errs.ErrDependency)
		}
		if record == nil {
			return 0, fmt.Errorf("product %d has no inventory record: %w", productID, errs.ErrNotFound)
		}

		newAvailable := record.Available + quantity

		applied, err := s.repo.CompareAndSetAvailable(ctx, productID, record.Available, newAvailable)
		if err != nil {
			return 0, fmt.Errorf("write inventory: %w: %w", err, errs.ErrDependency)
		}
		if applied {
			return newAvailable, nil
		}
	}

	return 0, fmt.Errorf("product %d: restock lost the race %d times: %w",
		productID, s.maxRetries, errs.ErrConflict)
}

// WarnStockFailure records a decrement that could not be applied after the
// order was already durable. Best effort: the warning is logged and
// published, never surfaced as a checkout failure.
func (s *InventoryService) WarnStockFailure(
	ctx context.Context,
	orderID, userID string,
	productID int64,
	cause error,
) {
	slog.Warn("Stock update could not complete, needs reconciliation",
		"order_id", orderID,
		"product_id", productID,
		"error", cause,
	)

	if s.auditRepo == nil {
		return
	}

	event := auditmodel.Event{
		Type:      auditmodel.EventStockWarning,
		OrderID:   orderID,
		UserID:    userID,
		ProductID: productID,
		Detail:    cause.Error(),
		CreatedAt: time.Now(),
	}
	if err := s.auditRepo.Publish(ctx, []auditmodel.Event{event}); err != nil {
		slog.Error("Failed to publish stock warning", "order_id", orderID, "error", err)
	}
}
