package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/1241007/shop-spark-45/internal/dal/postgres"
	"github.com/1241007/shop-spark-45/internal/service/models/currency"
	"github.com/1241007/shop-spark-45/internal/service/models/order"
	"github.com/1241007/shop-spark-45/internal/service/models/orderline"
	"github.com/1241007/shop-spark-45/internal/service/models/payment"
	"github.com/1241007/shop-spark-45/internal/service/models/shipping"
)

var orderColumns = []string{
	"id",
	"user_id",
	"payment_method",
	"status",
	"external_payment_id",
	"ship_name",
	"ship_address",
	"ship_phone",
	"ship_pincode",
	"amount_minor",
	"display_amount",
	"currency",
	"product_ids",
	"created_at",
	"updated_at",
}

// OrderDal represents the order data access layer model.
type OrderDal struct {
	Id                string      `db:"id"`
	UserId            string      `db:"user_id"`
	PaymentMethod     string      `db:"payment_method"`
	Status            string      `db:"status"`
	ExternalPaymentId pgtype.Text `db:"external_payment_id"`
	ShipName          string      `db:"ship_name"`
	ShipAddress       string      `db:"ship_address"`
	ShipPhone         string      `db:"ship_phone"`
	ShipPincode       pgtype.Text `db:"ship_pincode"`
	AmountMinor       int64       `db:"amount_minor"`
	DisplayAmount     float64     `db:"display_amount"`
	Currency          string      `db:"currency"`
	ProductIds        []int64     `db:"product_ids"`
	CreatedAt         time.Time   `db:"created_at"`
	UpdatedAt         time.Time   `db:"updated_at"`
}

// ToModel converts OrderDal to the service layer Order model.
func (o *OrderDal) ToModel() (*order.Order, error) {
	cur, err := currency.ParseCurrency(o.Currency)
	if err != nil {
		return nil, err
	}
	method, err := payment.ParseMethod(o.PaymentMethod)
	if err != nil {
		return nil, err
	}
	status, err := order.ParseStatus(o.Status)
	if err != nil {
		return nil, err
	}

	return &order.Order{
		ID:                o.Id,
		UserID:            o.UserId,
		PaymentMethod:     method,
		Status:            status,
		ExternalPaymentID: o.ExternalPaymentId.String,
		Shipping: shipping.Details{
			Name:    o.ShipName,
			Address: o.ShipAddress,
			Phone:   o.ShipPhone,
			Pincode: o.ShipPincode.String,
		},
		AmountMinor:   o.AmountMinor,
		DisplayAmount: o.DisplayAmount,
		Currency:      cur,
		ProductIDs:    o.ProductIds,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
		Lines:         []orderline.OrderLine{}, // populated separately
	}, nil
}

// OrderDalFromModel converts the service layer Order model to OrderDal.
func OrderDalFromModel(o *order.Order) *OrderDal {
	return &OrderDal{
		Id:                o.ID,
		UserId:            o.UserID,
		PaymentMethod:     o.PaymentMethod.String(),
		Status:            o.Status.String(),
		ExternalPaymentId: pgtype.Text{String: o.ExternalPaymentID, Valid: o.ExternalPaymentID != ""},
		ShipName:          o.Shipping.Name,
		ShipAddress:       o.Shipping.Address,
		ShipPhone:         o.Shipping.Phone,
		ShipPincode:       pgtype.Text{String: o.Shipping.Pincode, Valid: o.Shipping.Pincode != ""},
		AmountMinor:       o.AmountMinor,
		DisplayAmount:     o.DisplayAmount,
		Currency:          o.Currency.String(),
		ProductIds:        o.ProductIDs,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}

func (o *OrderDal) scan(row pgx.Row) error {
	return row.Scan(
		&o.Id,
		&o.UserId,
		&o.PaymentMethod,
		&o.Status,
		&o.ExternalPaymentId,
		&o.ShipName,
		&o.ShipAddress,
		&o.ShipPhone,
		&o.ShipPincode,
		&o.AmountMinor,
		&o.DisplayAmount,
		&o.Currency,
		&o.ProductIds,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
}

// PostgresOrderRepository represents a Postgres order repository.
type PostgresOrderRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderRepository creates a new Postgres order repository.
func NewPostgresOrderRepository(conn postgres.Conn) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Insert persists a new order row and returns the stored order.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o order.Order) (order.Order, error) {
	dal := OrderDalFromModel(&o)

	query, args, err := r.sb.Insert("orders").
		Columns(orderColumns...).
		Values(
			dal.Id,
			dal.UserId,
			dal.PaymentMethod,
			dal.Status,
			dal.ExternalPaymentId,
			dal.ShipName,
			dal.ShipAddress,
			dal.ShipPhone,
			dal.ShipPincode,
			dal.AmountMinor,
			dal.DisplayAmount,
			dal.Currency,
			dal.ProductIds,
			dal.CreatedAt,
			dal.UpdatedAt,
		).
		Suffix("RETURNING " + columnList()).
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	var stored OrderDal
	if err := stored.scan(r.conn.QueryRow(ctx, query, args...)); err != nil {
		return order.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}

	model, err := stored.ToModel()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to convert order dal to model: %w", err)
	}
	model.Lines = append(model.Lines, o.Lines...)

	return *model, nil
}

// GetByPaymentRef looks an order up by (payment_method, external_payment_id).
func (r *PostgresOrderRepository) GetByPaymentRef(
	ctx context.Context,
	method payment.Method,
	externalPaymentID string,
) (*order.Order, error) {
	query, args, err := r.sb.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"payment_method": method.String()}).
		Where(sq.Eq{"external_payment_id": externalPaymentID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	return r.getOne(ctx, query, args)
}

// GetByID fetches an order scoped to its owner.
func (r *PostgresOrderRepository) GetByID(
	ctx context.Context,
	userID, orderID string,
) (*order.Order, error) {
	query, args, err := r.sb.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": orderID}).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	return r.getOne(ctx, query, args)
}

func (r *PostgresOrderRepository) getOne(
	ctx context.Context,
	query string,
	args []interface{},
) (*order.Order, error) {
	var dal OrderDal
	if err := dal.scan(r.conn.QueryRow(ctx, query, args...)); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan order: %w", err)
	}

	model, err := dal.ToModel()
	if err != nil {
		return nil, fmt.Errorf("failed to convert order dal to model: %w", err)
	}

	return model, nil
}

// Query retrieves orders based on filter criteria, newest first.
func (r *PostgresOrderRepository) Query(
	ctx context.Context,
	filter *order.QueryOrdersModel,
) ([]order.Order, error) {
	query := r.sb.Select(orderColumns...).
		From("orders").
		OrderBy("created_at DESC")

	if len(filter.Ids) > 0 {
		query = query.Where(sq.Eq{"id": filter.Ids})
	}
	if len(filter.UserIds) > 0 {
		query = query.Where(sq.Eq{"user_id": filter.UserIds})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var result []order.Order
	for rows.Next() {
		var dal OrderDal
		if err := dal.scan(rows); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// UpdateStatus conditionally moves an order to a new status when its current
// status is one of from. An empty userID skips owner scoping.
func (r *PostgresOrderRepository) UpdateStatus(
	ctx context.Context,
	orderID string,
	userID string,
	from []order.Status,
	to order.Status,
) (int64, error) {
	fromStrings := make([]string, len(from))
	for i, s := range from {
		fromStrings[i] = s.String()
	}

	query := r.sb.Update("orders").
		Set("status", to.String()).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": orderID}).
		Where(sq.Eq{"status": fromStrings})

	if userID != "" {
		query = query.Where(sq.Eq{"user_id": userID})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to update order status: %w", err)
	}

	return tag.RowsAffected(), nil
}

func columnList() string {
	list := orderColumns[0]
	for _, c := range orderColumns[1:] {
		list += ", " + c
	}

	return list
}
