package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/1241007/shop-spark-45/internal/dal/postgres"
	"github.com/1241007/shop-spark-45/internal/service/models/orderline"
)

// OrderLineDal represents the order line data access layer model.
type OrderLineDal struct {
	Id             int64     `db:"id"`
	OrderId        string    `db:"order_id"`
	ProductId      int64     `db:"product_id"`
	ProductName    string    `db:"product_name"`
	UnitPriceMinor int64     `db:"unit_price_minor"`
	ImageUrl       string    `db:"image_url"`
	Quantity       int       `db:"quantity"`
	CreatedAt      time.Time `db:"created_at"`
}

// ToModel converts OrderLineDal to the service layer OrderLine model.
func (l *OrderLineDal) ToModel() *orderline.OrderLine {
	return &orderline.OrderLine{
		ID:             l.Id,
		OrderID:        l.OrderId,
		ProductID:      l.ProductId,
		ProductName:    l.ProductName,
		UnitPriceMinor: l.UnitPriceMinor,
		ImageURL:       l.ImageUrl,
		Quantity:       l.Quantity,
		CreatedAt:      l.CreatedAt,
	}
}

// PostgresOrderLineRepository represents a Postgres order line repository.
type PostgresOrderLineRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderLineRepository creates a new Postgres order line repository.
func NewPostgresOrderLineRepository(conn postgres.Conn) *PostgresOrderLineRepository {
	return &PostgresOrderLineRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// BulkInsert inserts the lines of an order and returns them with IDs. Lines
// are historical record: there is no update or delete.
func (r *PostgresOrderLineRepository) BulkInsert(
	ctx context.Context,
	lines []orderline.OrderLine,
) ([]orderline.OrderLine, error) {
	if len(lines) == 0 {
		return []orderline.OrderLine{}, nil
	}

	query := r.sb.Insert("order_lines").
		Columns(
			"order_id",
			"product_id",
			"product_name",
			"unit_price_minor",
			"image_url",
			"quantity",
			"created_at",
		)

	for _, line := range lines {
		query = query.Values(
			line.OrderID,
			line.ProductID,
			line.ProductName,
			line.UnitPriceMinor,
			line.ImageURL,
			line.Quantity,
			line.CreatedAt,
		)
	}

	sql, args, err := query.
		Suffix("RETURNING id, order_id, product_id, product_name, unit_price_minor, image_url, quantity, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to bulk insert order lines: %w", err)
	}
	defer rows.Close()

	var result []orderline.OrderLine
	for rows.Next() {
		var dal OrderLineDal
		err := rows.Scan(
			&dal.Id,
			&dal.OrderId,
			&dal.ProductId,
			&dal.ProductName,
			&dal.UnitPriceMinor,
			&dal.ImageUrl,
			&dal.Quantity,
			&dal.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		result = append(result, *dal.ToModel())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// Query retrieves order lines based on filter criteria.
func (r *PostgresOrderLineRepository) Query(
	ctx context.Context,
	filter *orderline.QueryOrderLinesModel,
) ([]orderline.OrderLine, error) {
	query := r.sb.Select(
		"id",
		"order_id",
		"product_id",
		"product_name",
		"unit_price_minor",
		"image_url",
		"quantity",
		"created_at",
	).From("order_lines")

	if len(filter.Ids) > 0 {
		query = query.Where(sq.Eq{"id": filter.Ids})
	}
	if len(filter.OrderIds) > 0 {
		query = query.Where(sq.Eq{"order_id": filter.OrderIds})
	}
	if len(filter.ProductIds) > 0 {
		query = query.Where(sq.Eq{"product_id": filter.ProductIds})
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
		return nil, fmt.Errorf("failed to query order lines: %w", err)
	}
	defer rows.Close()

	var result []orderline.OrderLine
	for rows.Next() {
		var dal OrderLineDal
		err := rows.Scan(
			&dal.Id,
			&dal.OrderId,
			&dal.ProductId,
			&dal.ProductName,
			&dal.UnitPriceMinor,
			&dal.ImageUrl,
			&dal.Quantity,
			&dal.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		result = append(result, *dal.ToModel())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
