package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/apperr"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/order"
)

var lineCols = []string{"product_id", "name", "price", "quantity"}

type fakePublisher struct {
	calls   []*order.Order
	publish func(ctx context.Context, o *order.Order, correlationID string) error
}

func (f *fakePublisher) PublishOrderPlaced(ctx context.Context, o *order.Order, correlationID string) error {
	f.calls = append(f.calls, o)
	if f.publish != nil {
		return f.publish(ctx, o, correlationID)
	}
	return nil
}

type fakeRecorder struct {
	results  []string
	failures []string
}

func (f *fakeRecorder) ObserveCheckout(result string)      { f.results = append(f.results, result) }
func (f *fakeRecorder) ObservePublishFailure(event string) { f.failures = append(f.failures, event) }

type fixture struct {
	mock      pgxmock.PgxPoolIface
	engine    *Engine
	publisher *fakePublisher
	recorder  *fakeRecorder
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	pub := &fakePublisher{}
	rec := &fakeRecorder{}
	engine := NewEngine(mock, cart.NewPostgresRepository(mock), order.NewPostgresRepository(mock), pub, rec, zerolog.Nop())
	return fixture{mock: mock, engine: engine, publisher: pub, recorder: rec}
}

func (f fixture) expectLockedLines(rows *pgxmock.Rows) {
	f.mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	f.mock.ExpectQuery("FOR UPDATE OF ci").WithArgs("u-1").WillReturnRows(rows)
}

func (f fixture) expectOrderInsert() {
	f.mock.ExpectQuery("INSERT INTO orders").
		WithArgs(pgxmock.AnyArg(), "u-1", false, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(fixedTime))
}

// expectItemInsert matches one order_items row. Ids and the price snapshot are
// generated or decoded, so only product, name, quantity and position are pinned.
func (f fixture) expectItemInsert(productID, name string, quantity, position int) *pgxmock.ExpectedExec {
	return f.mock.ExpectExec("INSERT INTO order_items").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), &productID, name, pgxmock.AnyArg(), quantity, position)
}

func (f fixture) expectClear(removed int64, productIDs ...string) {
	f.mock.ExpectExec("DELETE FROM cart_items").
		WithArgs("u-1", productIDs).
		WillReturnResult(pgxmock.NewResult("DELETE", removed))
}

func twoLines() *pgxmock.Rows {
	return pgxmock.NewRows(lineCols).
		AddRow("p-1", "Mug", decimal.RequireFromString("9.95"), 2).
		AddRow("p-2", "Tea", decimal.RequireFromString("4.10"), 3)
}

func TestCheckoutPlacesOrderAndClearsCart(t *testing.T) {
	f := newFixture(t)
	f.expectLockedLines(twoLines())
	f.expectOrderInsert()
	f.expectItemInsert("p-1", "Mug", 2, 0).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	f.expectItemInsert("p-2", "Tea", 3, 1).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	f.expectClear(2, "p-1", "p-2")
	f.mock.ExpectCommit()

	o, err := f.engine.Checkout(context.Background(), "u-1", "corr-1")
	require.NoError(t, err)

	require.Len(t, o.Items, 2)
	assert.Equal(t, "p-1", *o.Items[0].ProductID)
	assert.Equal(t, "Mug", o.Items[0].ProductName)
	assert.True(t, decimal.RequireFromString("9.95").Equal(o.Items[0].UnitPrice))
	assert.Equal(t, 3, o.Items[1].Quantity)
	// 9.95*2 + 4.10*3
	assert.Equal(t, "32.20", o.Total.StringFixed(2))
	assert.False(t, o.IsPaid)

	require.Len(t, f.publisher.calls, 1)
	assert.Equal(t, o.ID, f.publisher.calls[0].ID)
	assert.Equal(t, []string{ResultOK}, f.recorder.results)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture(t)
	f.expectLockedLines(pgxmock.NewRows(lineCols))
	f.mock.ExpectRollback()

	o, err := f.engine.Checkout(context.Background(), "u-1", "")
	assert.Nil(t, o)
	assert.True(t, apperr.IsKind(err, apperr.KindEmptyCart))
	assert.Empty(t, f.publisher.calls)
	assert.Equal(t, []string{ResultEmptyCart}, f.recorder.results)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCheckoutRollsBackWhenAnItemFails(t *testing.T) {
	f := newFixture(t)
	f.expectLockedLines(twoLines())
	f.expectOrderInsert()
	f.expectItemInsert("p-1", "Mug", 2, 0).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	f.expectItemInsert("p-2", "Tea", 3, 1).WillReturnError(errors.New("injected failure"))
	f.mock.ExpectRollback()

	o, err := f.engine.Checkout(context.Background(), "u-1", "")
	require.Error(t, err)
	assert.Nil(t, o)
	assert.Contains(t, err.Error(), "injected failure")
	assert.Equal(t, apperr.Kind(""), apperr.KindOf(err))
	assert.Empty(t, f.publisher.calls)
	assert.Equal(t, []string{ResultError}, f.recorder.results)
	// No DELETE and no COMMIT were issued.
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCheckoutCommitFailure(t *testing.T) {
	f := newFixture(t)
	f.expectLockedLines(pgxmock.NewRows(lineCols).AddRow("p-1", "Mug", decimal.RequireFromString("1.00"), 1))
	f.expectOrderInsert()
	f.expectItemInsert("p-1", "Mug", 1, 0).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	f.expectClear(1, "p-1")
	f.mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))
	f.mock.ExpectRollback()

	_, err := f.engine.Checkout(context.Background(), "u-1", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commit checkout")
	assert.Empty(t, f.publisher.calls)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCheckoutLockFailure(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	f.mock.ExpectQuery("FOR UPDATE OF ci").WithArgs("u-1").WillReturnError(errors.New("lock timeout"))
	f.mock.ExpectRollback()

	_, err := f.engine.Checkout(context.Background(), "u-1", "")
	require.Error(t, err)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCheckoutSurvivesPublishFailure(t *testing.T) {
	f := newFixture(t)
	f.publisher.publish = func(context.Context, *order.Order, string) error { return errors.New("broker down") }

	f.expectLockedLines(pgxmock.NewRows(lineCols).AddRow("p-1", "Mug", decimal.RequireFromString("1.00"), 1))
	f.expectOrderInsert()
	f.expectItemInsert("p-1", "Mug", 1, 0).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	f.expectClear(1, "p-1")
	f.mock.ExpectCommit()

	o, err := f.engine.Checkout(context.Background(), "u-1", "corr-1")
	require.NoError(t, err)
	assert.NotEmpty(t, o.ID)
	assert.Equal(t, []string{ResultOK}, f.recorder.results)
	assert.Equal(t, []string{"OrderPlaced"}, f.recorder.failures)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestNewEngineToleratesNilCollaborators(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	engine := NewEngine(mock, cart.NewPostgresRepository(mock), order.NewPostgresRepository(mock), nil, nil, zerolog.Nop())
	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	mock.ExpectQuery("FOR UPDATE OF ci").WithArgs("u-1").WillReturnRows(pgxmock.NewRows(lineCols))
	mock.ExpectRollback()

	_, err = engine.Checkout(context.Background(), "u-1", "")
	assert.True(t, apperr.IsKind(err, apperr.KindEmptyCart))
}

var fixedTime = mustTime("2024-03-01T10:00:00Z")

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}
