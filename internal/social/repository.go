package social

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/apperr"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/db"
)

type Repository interface {
	AddComment(ctx context.Context, userID, productID, text string) (Comment, error)
	ListComments(ctx context.Context, productID string) ([]Comment, error)
	AddLike(ctx context.Context, userID, productID string) (Like, error)
	AddRating(ctx context.Context, userID, productID string, stars int) (Rating, error)
	// Stats returns aggregates for each requested product. Unknown ids map to zero Stats.
	Stats(ctx context.Context, productIDs []string) (map[string]Stats, error)
}

type PostgresRepository struct {
	pool db.Querier
}

func NewPostgresRepository(pool db.Querier) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) AddComment(ctx context.Context, userID, productID, text string) (Comment, error) {
	var c Comment
	err := r.pool.QueryRow(ctx, `
		WITH ins AS (
			INSERT INTO comments (id, user_id, product_id, text)
			VALUES ($1, $2, $3, $4)
			RETURNING id, user_id, product_id, text, created_at
		)
		SELECT ins.id, ins.product_id, ins.text, ins.created_at, u.id, u.username, u.email
		FROM ins JOIN users u ON u.id = ins.user_id
	`, uuid.NewString(), userID, productID, text).
		Scan(&c.ID, &c.ProductID, &c.Text, &c.CreatedAt, &c.User.ID, &c.User.Username, &c.User.Email)
	if err != nil {
		return Comment{}, translate(err, "comment", productID)
	}
	return c, nil
}

func (r *PostgresRepository) ListComments(ctx context.Context, productID string) ([]Comment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.product_id, c.text, c.created_at, u.id, u.username, u.email
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.product_id = $1
		ORDER BY c.created_at, c.id
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.ProductID, &c.Text, &c.CreatedAt, &c.User.ID, &c.User.Username, &c.User.Email); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *PostgresRepository) AddLike(ctx context.Context, userID, productID string) (Like, error) {
	var l Like
	err := r.pool.QueryRow(ctx, `
		WITH ins AS (
			INSERT INTO likes (id, user_id, product_id)
			VALUES ($1, $2, $3)
			RETURNING id, user_id, product_id, created_at
		)
		SELECT ins.id, ins.product_id, ins.created_at, u.id, u.username, u.email
		FROM ins JOIN users u ON u.id = ins.user_id
	`, uuid.NewString(), userID, productID).
		Scan(&l.ID, &l.ProductID, &l.CreatedAt, &l.User.ID, &l.User.Username, &l.User.Email)
	if err != nil {
		return Like{}, translate(err, "like", productID)
	}
	return l, nil
}

func (r *PostgresRepository) AddRating(ctx context.Context, userID, productID string, stars int) (Rating, error) {
	if stars < MinStars || stars > MaxStars {
		return Rating{}, apperr.Invalid("stars", fmt.Sprintf("must be between %d and %d", MinStars, MaxStars))
	}

	var rt Rating
	err := r.pool.QueryRow(ctx, `
		WITH ins AS (
			INSERT INTO ratings (id, user_id, product_id, stars)
			VALUES ($1, $2, $3, $4)
			RETURNING id, user_id, product_id, stars, created_at
		)
		SELECT ins.id, ins.product_id, ins.stars, ins.created_at, u.id, u.username, u.email
		FROM ins JOIN users u ON u.id = ins.user_id
	`, uuid.NewString(), userID, productID, stars).
		Scan(&rt.ID, &rt.ProductID, &rt.Stars, &rt.CreatedAt, &rt.User.ID, &rt.User.Username, &rt.User.Email)
	if err != nil {
		return Rating{}, translate(err, "rating", productID)
	}
	return rt, nil
}

func (r *PostgresRepository) Stats(ctx context.Context, productIDs []string) (map[string]Stats, error) {
	out := make(map[string]Stats, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT p.id,
		       (SELECT COUNT(*) FROM likes l WHERE l.product_id = p.id),
		       (SELECT COUNT(*) FROM comments c WHERE c.product_id = p.id),
		       (SELECT COUNT(*) FROM ratings r WHERE r.product_id = p.id),
		       (SELECT COALESCE(SUM(r.stars), 0) FROM ratings r WHERE r.product_id = p.id)
		FROM products p
		WHERE p.id = ANY($1)
	`, productIDs)
	if err != nil {
		return nil, fmt.Errorf("product stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id                  string
			likes, comments     int64
			ratings, starsTotal int64
		)
		if err := rows.Scan(&id, &likes, &comments, &ratings, &starsTotal); err != nil {
			return nil, fmt.Errorf("scan product stats: %w", err)
		}
		out[id] = Stats{
			LikesCount:    likes,
			CommentsCount: comments,
			AverageRating: averageFromSum(starsTotal, ratings),
		}
	}
	return out, rows.Err()
}

// translate maps constraint failures of a social insert onto domain kinds.
func translate(err error, what, productID string) error {
	switch {
	case db.IsForeignKeyViolation(err):
		return apperr.Wrap(apperr.NotFound("product %s not found", productID), err)
	case db.IsUniqueViolation(err):
		return apperr.Wrap(apperr.Conflict("%s for product %s already exists", what, productID), err)
	default:
		return fmt.Errorf("insert %s: %w", what, err)
	}
}
