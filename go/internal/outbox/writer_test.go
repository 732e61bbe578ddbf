package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/auctionhouse/go/internal/db"
	"github.com/mcdev12/auctionhouse/go/internal/db/dbtest"
	"github.com/mcdev12/auctionhouse/go/internal/sqlutil"
)

func TestWriteEventInsertsPendingRow(t *testing.T) {
	conn := dbtest.Open(t)
	q := db.New(conn)
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	id, err := WriteEvent(context.Background(), q, pingType, pingPayload{N: 3}, now)
	require.NoError(t, err)

	row, err := q.GetOutboxMessage(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, pingType, row.Type)
	assert.JSONEq(t, `{"n":3}`, string(row.Content))
	assert.True(t, now.Equal(row.CreatedAt))
	assert.False(t, row.ProcessedAt.Valid)
	assert.False(t, row.Error.Valid)
}

func TestWriteEventRollsBackWithTransaction(t *testing.T) {
	conn := dbtest.Open(t)
	boom := errors.New("business mutation failed")

	err := sqlutil.Run(context.Background(), conn, db.New(conn).WithTx, func(q *db.Queries) error {
		if _, err := WriteEvent(context.Background(), q, pingType, pingPayload{}, time.Now()); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, dbtest.Count(t, conn, "outbox_messages"))
}

func TestWriteEventRejectsUnmarshalablePayload(t *testing.T) {
	conn := dbtest.Open(t)
	_, err := WriteEvent(context.Background(), db.New(conn), pingType, map[string]any{"ch": make(chan int)}, time.Now())
	var unsupported *json.UnsupportedTypeError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, 0, dbtest.Count(t, conn, "outbox_messages"))
}

var _ Writer = (*db.Queries)(nil)
