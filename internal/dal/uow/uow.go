package uow

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/1241007/shop-spark-45/internal/dal/interfaces/iorderlinerepo"
	"github.com/1241007/shop-spark-45/internal/dal/interfaces/iorderrepo"
	"github.com/1241007/shop-spark-45/internal/dal/interfaces/ioutboxrepo"
	"github.com/1241007/shop-spark-45/internal/dal/postgres"
	orderlinerepo "github.com/1241007/shop-spark-45/internal/dal/repositories/orderline/postgres"
	orderrepo "github.com/1241007/shop-spark-45/internal/dal/repositories/order/postgres"
	outboxrepo "github.com/1241007/shop-spark-45/internal/dal/repositories/outbox/postgres"
)

// unitOfWork scopes the order, order line and outbox repositories to one
// transaction so an order, its lines and its audit event commit together.
type unitOfWork struct {
	client        *postgres.Client
	tx            pgx.Tx
	orderRepo     iorderrepo.IOrderRepository
	orderLineRepo iorderlinerepo.IOrderLineRepository
	outboxRepo    ioutboxrepo.IOutboxRepository
}

func NewUnitOfWork(client *postgres.Client) *unitOfWork {
	return &unitOfWork{
		client:        client,
		orderRepo:     orderrepo.NewPostgresOrderRepository(client.Pool()),
		orderLineRepo: orderlinerepo.NewPostgresOrderLineRepository(client.Pool()),
		outboxRepo:    outboxrepo.NewOutboxRepository(client.Pool()),
	}
}

func (u *unitOfWork) OrderRepository() iorderrepo.IOrderRepository {
	return u.orderRepo
}

func (u *unitOfWork) OrderLineRepository() iorderlinerepo.IOrderLineRepository {
	return u.orderLineRepo
}

func (u *unitOfWork) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return u.outboxRepo
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	tx, err := u.client.Pool().Begin(ctx)
	if err != nil {
		return err
	}

	u.tx = tx
	u.orderRepo = orderrepo.NewPostgresOrderRepository(tx)
	u.orderLineRepo = orderlinerepo.NewPostgresOrderLineRepository(tx)
	u.outboxRepo = outboxrepo.NewOutboxRepository(tx)

	return nil
}

func (u *unitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	return u.tx.Commit(ctx)
}

func (u *unitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	return u.tx.Rollback(ctx)
}
