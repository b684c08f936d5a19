package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/apperr"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/db"
)

type Repository interface {
	// AddOrIncrement creates the (user, product) line or adds quantity to it,
	// returning the line id and its new quantity.
	AddOrIncrement(ctx context.Context, userID, productID string, quantity int) (Item, error)
	Remove(ctx context.Context, userID, productID string) error
	List(ctx context.Context, userID string) (*Cart, error)
}

// TransactionalRepository exposes the tx-scoped operations checkout composes.
type TransactionalRepository interface {
	Repository
	LockLinesWithTx(ctx context.Context, tx pgx.Tx, userID string) ([]Line, error)
	DeleteLinesWithTx(ctx context.Context, tx pgx.Tx, userID string, productIDs []string) (int64, error)
}

type PostgresRepository struct {
	pool db.Querier
}

func NewPostgresRepository(pool db.Querier) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) AddOrIncrement(ctx context.Context, userID, productID string, quantity int) (Item, error) {
	if quantity < 1 {
		return Item{}, apperr.Invalid("quantity", "must be at least 1")
	}
	if quantity > MaxQuantity {
		return Item{}, apperr.Invalid("quantity", fmt.Sprintf("must be at most %d", MaxQuantity))
	}

	item := Item{ProductID: productID}
	// The SELECT yields no row for an unknown product, so nothing is inserted.
	err := r.pool.QueryRow(ctx, `
		INSERT INTO cart_items (id, user_id, product_id, quantity)
		SELECT $1::uuid, $2::uuid, p.id, $4::integer
		FROM products p
		WHERE p.id = $3
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = now()
		RETURNING id, quantity
	`, uuid.NewString(), userID, productID, quantity).Scan(&item.ID, &item.Quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, apperr.NotFound("product %s not found", productID)
		}
		if db.IsCheckViolation(err) {
			return Item{}, apperr.Invalid("quantity", fmt.Sprintf("cart line would exceed %d units", MaxQuantity))
		}
		if verr := db.InvalidInput(err, "quantity"); verr != nil {
			return Item{}, verr
		}
		return Item{}, fmt.Errorf("upsert cart item: %w", err)
	}
	return item, nil
}

func (r *PostgresRepository) Remove(ctx context.Context, userID, productID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("product %s is not in the cart", productID)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string) (*Cart, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ci.id, ci.product_id, ci.quantity, p.name, p.price, p.main_image
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1
		ORDER BY ci.created_at, ci.id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Quantity, &it.Product.Name, &it.Product.Price, &it.Product.MainImage); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart items: %w", err)
	}
	return newCart(userID, items), nil
}

// LockLinesWithTx reads the user's cart lines FOR UPDATE together with the
// product name and price to snapshot.
func (r *PostgresRepository) LockLinesWithTx(ctx context.Context, tx pgx.Tx, userID string) ([]Line, error) {
	rows, err := tx.Query(ctx, `
		SELECT ci.product_id, p.name, p.price, ci.quantity
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1
		ORDER BY ci.created_at, ci.id
		FOR UPDATE OF ci
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("lock cart lines: %w", err)
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ProductID, &l.ProductName, &l.UnitPrice, &l.Quantity); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart lines: %w", err)
	}
	return lines, nil
}

// DeleteLinesWithTx removes only the given products from the user's cart.
func (r *PostgresRepository) DeleteLinesWithTx(ctx context.Context, tx pgx.Tx, userID string, productIDs []string) (int64, error) {
	tag, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND product_id = ANY($2)`, userID, productIDs)
	if err != nil {
		return 0, fmt.Errorf("clear cart lines: %w", err)
	}
	return tag.RowsAffected(), nil
}
