//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/testutil"
)

type fixture struct {
	pool    *pgxpool.Pool
	tokens  *auth.TokenStore
	catalog *catalog.PostgresRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	pool, _ := testutil.StartPostgres(t)
	return &fixture{
		pool:    pool,
		tokens:  auth.NewTokenStore(pool).WithHashCost(bcrypt.MinCost),
		catalog: catalog.NewPostgresRepository(pool),
	}
}

func (f *fixture) user(ctx context.Context, t *testing.T) (*auth.User, string) {
	t.Helper()
	u, token, err := f.tokens.Register(ctx, auth.Registration{
		Username: "user-" + uuid.NewString()[:8],
		Email:    "shopper@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	return u, token
}

func (f *fixture) product(ctx context.Context, t *testing.T, name, price string) catalog.Product {
	t.Helper()
	cat, err := f.catalog.CreateCategory(ctx, catalog.CategoryInput{Name: "Category " + name})
	require.NoError(t, err)

	p, err := f.catalog.CreateProduct(ctx, catalog.ProductInput{
		CategoryID: cat.ID,
		Name:       name,
		Price:      decimal.RequireFromString(price),
		Stock:      10,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) count(ctx context.Context, t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, f.pool.QueryRow(ctx, query, args...).Scan(&n))
	return n
}
