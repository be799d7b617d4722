package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/1241007/shop-spark-45/internal/dal/postgres"
	"github.com/1241007/shop-spark-45/internal/service/models/inventory"
)

// InventoryDal represents the inventory data access layer model.
type InventoryDal struct {
	ProductId      int64     `db:"product_id"`
	ProductName    string    `db:"product_name"`
	UnitPriceMinor int64     `db:"unit_price_minor"`
	ImageUrl       string    `db:"image_url"`
	Available      int64     `db:"available"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// ToModel converts InventoryDal to the service layer Record model.
func (d *InventoryDal) ToModel() *inventory.Record {
	return &inventory.Record{
		ProductID:      d.ProductId,
		ProductName:    d.ProductName,
		UnitPriceMinor: d.UnitPriceMinor,
		ImageURL:       d.ImageUrl,
		Available:      d.Available,
		UpdatedAt:      d.UpdatedAt,
	}
}

// PostgresInventoryRepository represents a Postgres inventory repository.
type PostgresInventoryRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewPostgresInventoryRepository creates a new Postgres inventory repository.
func NewPostgresInventoryRepository(conn postgres.Conn) *PostgresInventoryRepository {
	return &PostgresInventoryRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Get returns the record for a product, or (nil, nil) when unknown.
func (r *PostgresInventoryRepository) Get(
	ctx context.Context,
	productID int64,
) (*inventory.Record, error) {
	query, args, err := r.sb.Select(
		"product_id",
		"product_name",
		"unit_price_minor",
		"image_url",
		"available",
		"updated_at",
	).
		From("inventory").
		Where(sq.Eq{"product_id": productID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var dal InventoryDal
	err = r.conn.QueryRow(ctx, query, args...).Scan(
		&dal.ProductId,
		&dal.ProductName,
		&dal.UnitPriceMinor,
		&dal.ImageUrl,
		&dal.Available,
		&dal.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to get inventory record: %w", err)
	}

	return dal.ToModel(), nil
}

// CompareAndSetAvailable writes newAvailable only if the row still holds
// oldAvailable. The write predicate carries the concurrency check, so two
// racing decrements can never both apply against the same read.
func (r *PostgresInventoryRepository) CompareAndSetAvailable(
	ctx context.Context,
	productID int64,
	oldAvailable int64,
	newAvailable int64,
) (bool, error) {
	query, args, err := r.sb.Update("inventory").
		Set("available", newAvailable).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"product_id": productID}).
		Where(sq.Eq{"available": oldAvailable}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update inventory: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}
