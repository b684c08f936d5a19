package sequence

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStream(t *testing.T) {
	assert.Equal(t, "order:o-1", OrderStream("o-1"))
	assert.Empty(t, OrderStream(""))
}

func TestRepositoryNext(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		stream  string
		setup   func(pgxmock.PgxPoolIface)
		want    int64
		wantErr string
	}{
		{
			name:   "advances the stream",
			stream: "order:o-1",
			setup: func(m pgxmock.PgxPoolIface) {
				m.ExpectQuery("INSERT INTO event_sequence").
					WithArgs("order:o-1").
					WillReturnRows(pgxmock.NewRows([]string{"last_sequence"}).AddRow(int64(3)))
			},
			want: 3,
		},
		{
			name:   "storage error names the stream",
			stream: "order:o-2",
			setup: func(m pgxmock.PgxPoolIface) {
				m.ExpectQuery("INSERT INTO event_sequence").
					WithArgs("order:o-2").
					WillReturnError(errors.New("connection refused"))
			},
			wantErr: `advance stream "order:o-2"`,
		},
		{
			name:    "empty stream never reaches storage",
			stream:  OrderStream(""),
			setup:   func(pgxmock.PgxPoolIface) {},
			wantErr: ErrNoStream.Error(),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()
			tc.setup(mock)

			got, err := NewRepository(mock).Next(ctx, tc.stream)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
