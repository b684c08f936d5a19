package sequence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ErrNoStream is returned for an empty stream key.
var ErrNoStream = errors.New("sequence: stream key required")

type Store interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// OrderStream is the stream key for events about one order.
func OrderStream(orderID string) string {
	if orderID == "" {
		return ""
	}
	return "order:" + orderID
}

// Repository numbers the events of each stream 1, 2, 3, ... without gaps.
// Stream keys are stored in event_sequence.partition_key.
type Repository struct {
	store Store
}

func NewRepository(store Store) *Repository {
	return &Repository{store: store}
}

const nextSQL = `
	INSERT INTO event_sequence AS s (partition_key, last_sequence)
	VALUES ($1, 1)
	ON CONFLICT (partition_key)
	DO UPDATE SET last_sequence = s.last_sequence + 1, updated_at = now()
	RETURNING last_sequence`

func (r *Repository) Next(ctx context.Context, stream string) (int64, error) {
	if stream == "" {
		return 0, ErrNoStream
	}
	var n int64
	if err := r.store.QueryRow(ctx, nextSQL, stream).Scan(&n); err != nil {
		return 0, fmt.Errorf("sequence: advance stream %q: %w", stream, err)
	}
	return n, nil
}
