package profile

import (
	"context"
	"fmt"

	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/apperr"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/db"
)

type Repository interface {
	// Get returns the user's profile, creating an empty one on first access.
	Get(ctx context.Context, user auth.User) (*Profile, error)
	UpdateBio(ctx context.Context, user auth.User, bio string) (*Profile, error)

	// AddToWishlist is idempotent. An unknown product is NotFound.
	AddToWishlist(ctx context.Context, userID, productID string) error
	// RemoveFromWishlist is a no-op when the product is not wishlisted.
	RemoveFromWishlist(ctx context.Context, userID, productID string) error
	Wishlist(ctx context.Context, userID string) ([]WishlistItem, error)
}

type PostgresRepository struct {
	pool db.Querier
}

func NewPostgresRepository(pool db.Querier) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Get(ctx context.Context, user auth.User) (*Profile, error) {
	p := &Profile{User: user}
	// DO UPDATE rather than DO NOTHING so RETURNING yields the existing row.
	err := r.pool.QueryRow(ctx, `
		INSERT INTO user_profiles (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING bio, updated_at
	`, user.ID).Scan(&p.Bio, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return r.withWishlist(ctx, p)
}

func (r *PostgresRepository) UpdateBio(ctx context.Context, user auth.User, bio string) (*Profile, error) {
	p := &Profile{User: user}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO user_profiles (user_id, bio)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET bio = EXCLUDED.bio, updated_at = now()
		RETURNING bio, updated_at
	`, user.ID, bio).Scan(&p.Bio, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return r.withWishlist(ctx, p)
}

func (r *PostgresRepository) withWishlist(ctx context.Context, p *Profile) (*Profile, error) {
	items, err := r.Wishlist(ctx, p.User.ID)
	if err != nil {
		return nil, err
	}
	p.Wishlist = items
	return p, nil
}

func (r *PostgresRepository) AddToWishlist(ctx context.Context, userID, productID string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO wishlist_items (user_id, product_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, product_id) DO NOTHING
	`, userID, productID)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return apperr.Wrap(apperr.NotFound("product %s not found", productID), err)
		}
		return fmt.Errorf("add wishlist item: %w", err)
	}
	return nil
}

func (r *PostgresRepository) RemoveFromWishlist(ctx context.Context, userID, productID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`, userID, productID); err != nil {
		return fmt.Errorf("remove wishlist item: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Wishlist(ctx context.Context, userID string) ([]WishlistItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.name, p.slug, p.price, p.main_image, w.created_at
		FROM wishlist_items w
		JOIN products p ON p.id = w.product_id
		WHERE w.user_id = $1
		ORDER BY w.created_at, p.id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	defer rows.Close()

	items := []WishlistItem{}
	for rows.Next() {
		var it WishlistItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Slug, &it.Price, &it.MainImage, &it.AddedAt); err != nil {
			return nil, fmt.Errorf("scan wishlist item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
