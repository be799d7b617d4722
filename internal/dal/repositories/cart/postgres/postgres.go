package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/1241007/shop-spark-45/internal/dal/postgres"
	"github.com/1241007/shop-spark-45/internal/service/models/cartitem"
)

// CartItemDal represents the cart item data access layer model.
type CartItemDal struct {
	UserId    string    `db:"user_id"`
	ProductId int64     `db:"product_id"`
	Quantity  int       `db:"quantity"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// ToModel converts CartItemDal to the service layer CartItem model.
func (d *CartItemDal) ToModel() *cartitem.CartItem {
	return &cartitem.CartItem{
		UserID:    d.UserId,
		ProductID: d.ProductId,
		Quantity:  d.Quantity,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// PostgresCartRepository represents a Postgres cart repository.
type PostgresCartRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewPostgresCartRepository creates a new Postgres cart repository.
func NewPostgresCartRepository(conn postgres.Conn) *PostgresCartRepository {
	return &PostgresCartRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Upsert sets the exact quantity for a (user, product) pair. The overwrite
// semantics are what makes login-time cart reconciliation idempotent.
func (r *PostgresCartRepository) Upsert(
	ctx context.Context,
	item cartitem.CartItem,
) (cartitem.CartItem, error) {
	now := time.Now()

	query, args, err := r.sb.Insert("cart_items").
		Columns("user_id", "product_id", "quantity", "created_at", "updated_at").
		Values(item.UserID, item.ProductID, item.Quantity, now, now).
		Suffix(`ON CONFLICT (user_id, product_id)
			DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at
			RETURNING user_id, product_id, quantity, created_at, updated_at`).
		ToSql()
	if err != nil {
		return cartitem.CartItem{}, fmt.Errorf("failed to build upsert query: %w", err)
	}

	var dal CartItemDal
	err = r.conn.QueryRow(ctx, query, args...).Scan(
		&dal.UserId,
		&dal.ProductId,
		&dal.Quantity,
		&dal.CreatedAt,
		&dal.UpdatedAt,
	)
	if err != nil {
		return cartitem.CartItem{}, fmt.Errorf("failed to upsert cart item: %w", err)
	}

	return *dal.ToModel(), nil
}

// Delete removes a (user, product) row.
func (r *PostgresCartRepository) Delete(
	ctx context.Context,
	userID string,
	productID int64,
) error {
	query, args, err := r.sb.Delete("cart_items").
		Where(sq.Eq{"user_id": userID}).
		Where(sq.Eq{"product_id": productID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}

	return nil
}

// List returns the user's cart, most recently touched first.
func (r *PostgresCartRepository) List(
	ctx context.Context,
	userID string,
) ([]cartitem.CartItem, error) {
	query, args, err := r.sb.Select("user_id", "product_id", "quantity", "created_at", "updated_at").
		From("cart_items").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("updated_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	var result []cartitem.CartItem
	for rows.Next() {
		var dal CartItemDal
		err := rows.Scan(&dal.UserId, &dal.ProductId, &dal.Quantity, &dal.CreatedAt, &dal.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		result = append(result, *dal.ToModel())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// Clear removes all rows of a user's cart.
func (r *PostgresCartRepository) Clear(ctx context.Context, userID string) error {
	query, args, err := r.sb.Delete("cart_items").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	return nil
}
