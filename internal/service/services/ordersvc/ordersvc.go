package ordersvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"

	"github.com/1241007/shop-spark-45/internal/dal/interfaces/iorderlinerepo"
	"github.com/1241007/shop-spark-45/internal/dal/interfaces/iorderrepo"
	"github.com/1241007/shop-spark-45/internal/dal/interfaces/ioutboxrepo"
	"github.com/1241007/shop-spark-45/internal/dal/postgres"
	"github.com/1241007/shop-spark-45/internal/dal/repositories/audit"
	"github.com/1241007/shop-spark-45/internal/dal/uow"
	"github.com/1241007/shop-spark-45/internal/service/errs"
	auditmodel "github.com/1241007/shop-spark-45/internal/service/models/audit"
	"github.com/1241007/shop-spark-45/internal/service/models/currency"
	"github.com/1241007/shop-spark-45/internal/service/models/order"
	"github.com/1241007/shop-spark-45/internal/service/models/orderline"
	"github.com/1241007/shop-spark-45/internal/service/models/outbox"
)

const uniqueViolationCode = "23505"

// OrderService is the authoritative state machine for orders: creation,
// transition and query. It owns the mapping from external payment
// identifiers to order identifiers, which is what makes creation idempotent.
type OrderService struct {
	pgClient   *postgres.Client
	uowFactory func() unitOfWork
}

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() iorderrepo.IOrderRepository
	OrderLineRepository() iorderlinerepo.IOrderLineRepository
	OutboxRepository() ioutboxrepo.IOutboxRepository
}

func (s *OrderService) newUOW() unitOfWork {
	if s.uowFactory != nil {
		return s.uowFactory()
	}

	return uow.NewUnitOfWork(s.pgClient)
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithPostgresClient sets the Postgres client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		s.pgClient = pgClient
	}
}

// WithUnitOfWorkFactory overrides how transactions are obtained.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *OrderService) {
		s.uowFactory = factory
	}
}

// Create persists an order with its lines in one transaction. When the
// order carries an external payment identifier, creation is idempotent:
// a second call with the same (payment_method, external_payment_id) returns
// the order stored by the first call.
func (s *OrderService) Create(ctx context.Context, o order.Order) (order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "OrderService.Create")
	defer span.End()

	return s.create(ctx, o, auditmodel.EventOrderCreated)
}

// CreateFailed persists an order rejected by payment verification so the
// forgery attempt stays on record. It never touches inventory.
func (s *OrderService) CreateFailed(ctx context.Context, o order.Order) (order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "OrderService.CreateFailed")
	defer span.End()

	o.Status = order.StatusFailed

	return s.create(ctx, o, auditmodel.EventForgeryAlert)
}

func (s *OrderService) create(
	ctx context.Context,
	o order.Order,
	eventType auditmodel.EventType,
) (order.Order, error) {
	if o.Currency == "" {
		o.Currency = currency.CurrencyINR
	}
	if err := o.Validate(); err != nil {
		return order.Order{}, err
	}
	if !order.StatusCreated.CanTransition(o.Status) {
		return order.Order{}, fmt.Errorf("order cannot be created in status %q: %w",
			o.Status, errs.ErrValidation)
	}

	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if len(o.ProductIDs) == 0 {
		for _, line := range o.Lines {
			o.ProductIDs = append(o.ProductIDs, line.ProductID)
		}
	}

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return order.Order{}, fmt.Errorf("begin transaction: %w: %w", err, errs.ErrDependency)
	}
	defer func() { _ = work.Rollback(ctx) }()

	if o.ExternalPaymentID != "" {
		existing, err := work.OrderRepository().GetByPaymentRef(ctx, o.PaymentMethod, o.ExternalPaymentID)
		if err != nil {
			return order.Order{}, fmt.Errorf("idempotency lookup: %w: %w", err, errs.ErrDependency)
		}
		if existing != nil {
			return s.returnExisting(ctx, work, *existing, eventType)
		}
	}

	inserted, err := work.OrderRepository().Insert(ctx, o)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			// Lost the race to a concurrent create with the same payment id.
			return s.lookupExisting(ctx, o, eventType)
		}

		return order.Order{}, fmt.Errorf("insert order: %w: %w", err, errs.ErrDependency)
	}

	lines := make([]orderline.OrderLine, len(o.Lines))
	for i, line := range o.Lines {
		line.OrderID = inserted.ID
		line.CreatedAt = now
		lines[i] = line
	}
	lines, err = work.OrderLineRepository().BulkInsert(ctx, lines)
	if err != nil {
		return order.Order{}, fmt.Errorf("insert order lines: %w: %w", err, errs.ErrDependency)
	}
	inserted.Lines = lines

	if err := s.enqueueAuditEvent(ctx, work.OutboxRepository(), inserted, eventType); err != nil {
		return order.Order{}, fmt.Errorf("enqueue audit event: %w: %w", err, errs.ErrDependency)
	}

	if err := work.Commit(ctx); err != nil {
		return order.Order{}, fmt.Errorf("commit order: %w: %w", err, errs.ErrDependency)
	}

	slog.Info("Order persisted",
		"order_id", inserted.ID,
		"user_id", inserted.UserID,
		"status", inserted.Status,
		"amount_minor", inserted.AmountMinor,
	)

	return inserted, nil
}

func (s *OrderService) lookupExisting(
	ctx context.Context,
	o order.Order,
	eventType auditmodel.EventType,
) (order.Order, error) {
	work := s.newUOW()

	existing, err := work.OrderRepository().GetByPaymentRef(ctx, o.PaymentMethod, o.ExternalPaymentID)
	if err != nil {
		return order.Order{}, fmt.Errorf("idempotency re-lookup: %w: %w", err, errs.ErrDependency)
	}
	if existing == nil {
		return order.Order{}, fmt.Errorf("order vanished after unique violation: %w", errs.ErrConflict)
	}

	return s.returnExisting(ctx, work, *existing, eventType)
}

// returnExisting resolves an idempotent create against an already stored
// order. A rejected signature replaying a known payment reference still
// leaves a forgery_alert event on record even though no new row is written.
func (s *OrderService) returnExisting(
	ctx context.Context,
	work unitOfWork,
	existing order.Order,
	eventType auditmodel.EventType,
) (order.Order, error) {
	if eventType == auditmodel.EventForgeryAlert {
		if err := s.enqueueAuditEvent(ctx, work.OutboxRepository(), existing, eventType); err != nil {
			return order.Order{}, fmt.Errorf("enqueue audit event: %w: %w", err, errs.ErrDependency)
		}
	}

	full, err := s.withLines(ctx, work, existing)
	if err != nil {
		return order.Order{}, err
	}

	if err := work.Commit(ctx); err != nil {
		return order.Order{}, fmt.Errorf("commit idempotent lookup: %w: %w", err, errs.ErrDependency)
	}

	return full, nil
}

func (s *OrderService) withLines(
	ctx context.Context,
	work unitOfWork,
	o order.Order,
) (order.Order, error) {
	lines, err := work.OrderLineRepository().Query(ctx, &orderline.QueryOrderLinesModel{
		OrderIds: []string{o.ID},
	})
	if err != nil {
		return order.Order{}, fmt.Errorf("query order lines: %w: %w", err, errs.ErrDependency)
	}
	o.Lines = lines

	return o, nil
}

func (s *OrderService) enqueueAuditEvent(
	ctx context.Context,
	repo ioutboxrepo.IOutboxRepository,
	o order.Order,
	eventType auditmodel.EventType,
) error {
	payload, err := json.Marshal(auditmodel.Event{
		Type:      eventType,
		OrderID:   o.ID,
		UserID:    o.UserID,
		Status:    o.Status.String(),
		CreatedAt: time.Now(),
	})
	if err != nil {
		return err
	}

	maxRetries := viper.GetInt("rabbitmq.outbox.max_retries")
	if maxRetries == 0 {
		maxRetries = 5
	}

	now := time.Now()

	return repo.Insert(ctx, outbox.Message{
		QueueName:   audit.QueueName,
		RoutingKey:  audit.QueueName,
		Payload:     payload,
		ContentType: "application/json",
		MaxRetries:  maxRetries,
		CreatedAt:   now,
		UpdatedAt:   now,
		NextRetryAt: now,
	})
}

// GetByID fetches an order scoped to its owner. A cross-user read fails
// with the same not-found error as a miss, so order ids do not leak.
func (s *OrderService) GetByID(ctx context.Context, userID, orderID string) (order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "OrderService.GetByID")
	defer span.End()

	work := s.newUOW()

	o, err := work.OrderRepository().GetByID(ctx, userID, orderID)
	if err != nil {
		return order.Order{}, fmt.Errorf("get order: %w: %w", err, errs.ErrDependency)
	}
	if o == nil {
		return order.Order{}, fmt.Errorf("order %s: %w", orderID, errs.ErrNotFound)
	}

	return s.withLines(ctx, work, *o)
}

// ListByUser retrieves a user's orders with their lines, newest first.
func (s *OrderService) ListByUser(
	ctx context.Context,
	userID string,
	limit, offset int,
) ([]order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "OrderService.ListByUser")
	defer span.End()

	work := s.newUOW()

	orders, err := work.OrderRepository().Query(ctx, &order.QueryOrdersModel{
		UserIds: []string{userID},
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return nil, fmt.Errorf("query orders: %w: %w", err, errs.ErrDependency)
	}

	if len(orders) == 0 {
		return []order.Order{}, nil
	}

	lineQuery := &orderline.QueryOrderLinesModel{}
	for _, o := range orders {
		lineQuery.OrderIds = append(lineQuery.OrderIds, o.ID)
	}
	lines, err := work.OrderLineRepository().Query(ctx, lineQuery)
	if err != nil {
		return nil, fmt.Errorf("query order lines: %w: %w", err, errs.ErrDependency)
	}

	for i := range orders {
		for _, line := range lines {
			if line.OrderID == orders[i].ID {
				orders[i].Lines = append(orders[i].Lines, line)
			}
		}
	}

	return orders, nil
}

// Cancel moves an order to cancelled if its current state permits it.
// Delivered and failed orders cannot be cancelled.
func (s *OrderService) Cancel(ctx context.Context, userID, orderID string) error {
	ctx, span := otel.Tracer("service").Start(ctx, "OrderService.Cancel")
	defer span.End()

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return fmt.Errorf("begin transaction: %w: %w", err, errs.ErrDependency)
	}
	defer func() { _ = work.Rollback(ctx) }()

	rows, err := work.OrderRepository().UpdateStatus(
		ctx, orderID, userID, order.CancellableFrom(), order.StatusCancelled,
	)
	if err != nil {
		return fmt.Errorf("cancel order: %w: %w", err, errs.ErrDependency)
	}
	if rows == 1 {
		cancelled := order.Order{ID: orderID, UserID: userID, Status: order.StatusCancelled}
		if err := s.enqueueAuditEvent(
			ctx, work.OutboxRepository(), cancelled, auditmodel.EventOrderCancelled,
		); err != nil {
			return fmt.Errorf("enqueue audit event: %w: %w", err, errs.ErrDependency)
		}
		if err := work.Commit(ctx); err != nil {
			return fmt.Errorf("commit cancel: %w: %w", err, errs.ErrDependency)
		}

		slog.Info("Order cancelled", "order_id", orderID, "user_id", userID)

		return nil
	}

	existing, err := work.OrderRepository().GetByID(ctx, userID, orderID)
	if err != nil {
		return fmt.Errorf("cancel lookup: %w: %w", err, errs.ErrDependency)
	}
	if existing == nil {
		return fmt.Errorf("order %s: %w", orderID, errs.ErrNotFound)
	}

	return fmt.Errorf("order %s cannot be cancelled from %q: %w",
		orderID, existing.Status, errs.ErrConflict)
}

// SetStatus applies a fulfilment transition (processing, shipped,
// delivered), guarded by the state machine.
func (s *OrderService) SetStatus(
	ctx context.Context,
	orderID string,
	from, to order.Status,
) error {
	ctx, span := otel.Tracer("service").Start(ctx, "OrderService.SetStatus")
	defer span.End()

	if !from.CanTransition(to) {
		return fmt.Errorf("transition %q -> %q is not allowed: %w", from, to, errs.ErrConflict)
	}

	work := s.newUOW()

	rows, err := work.OrderRepository().UpdateStatus(ctx, orderID, "", []order.Status{from}, to)
	if err != nil {
		return fmt.Errorf("update status: %w: %w", err, errs.ErrDependency)
	}
	if rows == 0 {
		return fmt.Errorf("order %s is no longer in %q: %w", orderID, from, errs.ErrConflict)
	}

	return nil
}
