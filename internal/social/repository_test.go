package social

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/apperr"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestAddLike(t *testing.T) {
	ctx := context.Background()

	t.Run("returns like with author", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery("INSERT INTO likes").
			WithArgs(pgxmock.AnyArg(), "u-1", "p-1").
			WillReturnRows(pgxmock.NewRows([]string{"id", "product_id", "created_at", "u_id", "username", "email"}).
				AddRow("l-1", "p-1", time.Now(), "u-1", "alice", "alice@example.com"))

		like, err := NewPostgresRepository(mock).AddLike(ctx, "u-1", "p-1")
		require.NoError(t, err)
		assert.Equal(t, "alice", like.User.Username)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("double like is a conflict", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery("INSERT INTO likes").
			WithArgs(pgxmock.AnyArg(), "u-1", "p-1").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "likes_user_id_product_id_key"})

		_, err := NewPostgresRepository(mock).AddLike(ctx, "u-1", "p-1")
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	})

	t.Run("unknown product", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery("INSERT INTO likes").
			WithArgs(pgxmock.AnyArg(), "u-1", "p-404").
			WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "likes_product_id_fkey"})

		_, err := NewPostgresRepository(mock).AddLike(ctx, "u-1", "p-404")
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})
}

func TestAddRatingRejectsOutOfRangeStars(t *testing.T) {
	mock := newMock(t)
	repo := NewPostgresRepository(mock)

	for _, stars := range []int{0, 6, -1} {
		_, err := repo.AddRating(context.Background(), "u-1", "p-1", stars)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation), "stars=%d", stars)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStats(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery("FROM products p").
		WithArgs([]string{"p-1", "p-2"}).
		WillReturnRows(pgxmock.NewRows([]string{"id", "likes", "comments", "ratings", "stars"}).
			AddRow("p-1", int64(2), int64(5), int64(3), int64(12)).
			AddRow("p-2", int64(0), int64(0), int64(0), int64(0)))

	stats, err := NewPostgresRepository(mock).Stats(context.Background(), []string{"p-1", "p-2"})
	require.NoError(t, err)

	assert.Equal(t, Stats{LikesCount: 2, CommentsCount: 5, AverageRating: 4}, stats["p-1"])
	assert.Equal(t, Stats{}, stats["p-2"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsEmptyInputSkipsQuery(t *testing.T) {
	mock := newMock(t)

	stats, err := NewPostgresRepository(mock).Stats(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, stats)
	require.NoError(t, mock.ExpectationsWereMet())
}
