// Package checkout turns a user's cart into an order in a single transaction.
package checkout

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/apperr"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/order"
)

const (
	ResultOK        = "ok"
	ResultEmptyCart = "empty_cart"
	ResultError     = "error"
)

type TxStarter interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type CartLines interface {
	LockLinesWithTx(ctx context.Context, tx pgx.Tx, userID string) ([]cart.Line, error)
	DeleteLinesWithTx(ctx context.Context, tx pgx.Tx, userID string, productIDs []string) (int64, error)
}

type OrderWriter interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, o *order.Order) error
}

// Publisher announces a committed order. Failures never affect the checkout.
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, o *order.Order, correlationID string) error
}

type Recorder interface {
	ObserveCheckout(result string)
	ObservePublishFailure(event string)
}

type Engine struct {
	pool      TxStarter
	carts     CartLines
	orders    OrderWriter
	publisher Publisher
	metrics   Recorder
	logger    zerolog.Logger
}

// NewEngine wires the engine. publisher and metrics may be nil.
func NewEngine(pool TxStarter, carts CartLines, orders OrderWriter, publisher Publisher, metrics Recorder, logger zerolog.Logger) *Engine {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &Engine{
		pool:      pool,
		carts:     carts,
		orders:    orders,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.With().Str("component", "checkout").Logger(),
	}
}

// Checkout places an order from every line in the user's cart and empties it.
// Either the order, all its items and the cart removal commit together or
// nothing changes.
func (e *Engine) Checkout(ctx context.Context, userID, correlationID string) (*order.Order, error) {
	o, err := e.placeOrder(ctx, userID)
	switch {
	case err == nil:
		e.metrics.ObserveCheckout(ResultOK)
	case apperr.IsKind(err, apperr.KindEmptyCart):
		e.metrics.ObserveCheckout(ResultEmptyCart)
		return nil, err
	default:
		e.metrics.ObserveCheckout(ResultError)
		e.logger.Error().Err(err).Str("user_id", userID).Str("correlation_id", correlationID).Msg("checkout failed")
		return nil, err
	}

	e.logger.Info().
		Str("order_id", o.ID).
		Str("user_id", userID).
		Int("items", len(o.Items)).
		Str("total", o.Total.StringFixed(2)).
		Msg("order placed")

	// The order is committed, so the publish must not be cut short by the caller going away.
	if perr := e.publisher.PublishOrderPlaced(context.WithoutCancel(ctx), o, correlationID); perr != nil {
		e.metrics.ObservePublishFailure("OrderPlaced")
		e.logger.Warn().Err(perr).Str("order_id", o.ID).Msg("publish OrderPlaced failed")
	}
	return o, nil
}

func (e *Engine) placeOrder(ctx context.Context, userID string) (o *order.Order, err error) {
	tx, err := e.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("begin checkout: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	lines, err := e.carts.LockLinesWithTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		err = apperr.EmptyCart()
		return nil, err
	}

	o = &order.Order{UserID: userID, Items: make([]order.Item, 0, len(lines))}
	productIDs := make([]string, 0, len(lines))
	for _, l := range lines {
		pid := l.ProductID
		o.Items = append(o.Items, order.Item{
			ProductID:   &pid,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		})
		productIDs = append(productIDs, l.ProductID)
	}

	if err = e.orders.CreateWithTx(ctx, tx, o); err != nil {
		return nil, err
	}

	removed, err := e.carts.DeleteLinesWithTx(ctx, tx, userID, productIDs)
	if err != nil {
		return nil, err
	}
	if removed != int64(len(lines)) {
		err = fmt.Errorf("cart changed during checkout: locked %d lines, removed %d", len(lines), removed)
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit checkout: %w", err)
	}
	return o, nil
}

type nopPublisher struct{}

func (nopPublisher) PublishOrderPlaced(context.Context, *order.Order, string) error { return nil }

type nopRecorder struct{}

func (nopRecorder) ObserveCheckout(string)       {}
func (nopRecorder) ObservePublishFailure(string) {}
