package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/apperr"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/db"
)

var ErrNoItems = errors.New("order has no items")

type Repository interface {
	// GetByID returns the order only if it belongs to userID.
	GetByID(ctx context.Context, userID, orderID string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	SetPaid(ctx context.Context, orderID string, paid bool) (*Order, error)
}

type TransactionalRepository interface {
	Repository
	CreateWithTx(ctx context.Context, tx pgx.Tx, o *Order) error
}

type PostgresRepository struct {
	pool db.Querier
}

func NewPostgresRepository(pool db.Querier) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// CreateWithTx inserts the order and its items inside tx. It assigns o.ID and
// o.CreatedAt and recalculates totals.
func (r *PostgresRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, o *Order) error {
	if len(o.Items) == 0 {
		return ErrNoItems
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	o.Recalculate()

	err := tx.QueryRow(ctx, `
		INSERT INTO orders (id, user_id, is_paid, total)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, o.ID, o.UserID, o.IsPaid, o.Total).Scan(&o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i, it := range o.Items {
		_, err := tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, product_name, unit_price, quantity, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, uuid.NewString(), o.ID, it.ProductID, it.ProductName, it.UnitPrice, it.Quantity, i)
		if err != nil {
			if db.IsForeignKeyViolation(err) {
				return apperr.Wrap(apperr.NotFound("product %s not found", deref(it.ProductID)), err)
			}
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

const orderColumns = `id, user_id, is_paid, total, created_at`

func (r *PostgresRepository) GetByID(ctx context.Context, userID, orderID string) (*Order, error) {
	var o Order
	err := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 AND user_id = $2`, orderID, userID).
		Scan(&o.ID, &o.UserID, &o.IsPaid, &o.Total, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("order %s not found", orderID)
		}
		return nil, fmt.Errorf("select order: %w", err)
	}

	orders := []Order{o}
	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.IsPaid, &o.Total, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	rows.Close()

	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// SetPaid flips the paid flag, the only mutable field of an order.
func (r *PostgresRepository) SetPaid(ctx context.Context, orderID string, paid bool) (*Order, error) {
	var o Order
	err := r.pool.QueryRow(ctx, `
		UPDATE orders SET is_paid = $2
		WHERE id = $1
		RETURNING `+orderColumns,
		orderID, paid).Scan(&o.ID, &o.UserID, &o.IsPaid, &o.Total, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("order %s not found", orderID)
		}
		return nil, fmt.Errorf("update order paid: %w", err)
	}

	orders := []Order{o}
	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *PostgresRepository) loadItems(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	index := make(map[string]int, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		index[orders[i].ID] = i
		orders[i].Items = []Item{}
	}

	rows, err := r.pool.Query(ctx, `
		SELECT order_id, product_id, product_name, unit_price, quantity
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position
	`, ids)
	if err != nil {
		return fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID string
			it      Item
		)
		if err := rows.Scan(&orderID, &it.ProductID, &it.ProductName, &it.UnitPrice, &it.Quantity); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		it.LineTotal = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	return rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
