package db

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const outboxColumns = `id, type, content, created_at, processed_at, error, attempts`

func scanOutboxMessage(row interface{ Scan(...interface{}) error }) (OutboxMessage, error) {
	var i OutboxMessage
	err := row.Scan(
		&i.ID,
		&i.Type,
		&i.Content,
		&i.CreatedAt,
		&i.ProcessedAt,
		&i.Error,
		&i.Attempts,
	)
	return i, err
}

const insertOutboxMessage = `-- name: InsertOutboxMessage :exec
INSERT INTO outbox_messages (id, type, content, created_at)
VALUES ($1, $2, $3, $4)
`

type InsertOutboxMessageParams struct {
	ID        uuid.UUID
	Type      string
	Content   []byte
	CreatedAt time.Time
}

func (q *Queries) InsertOutboxMessage(ctx context.Context, arg InsertOutboxMessageParams) error {
	_, err := q.db.ExecContext(ctx, insertOutboxMessage,
		arg.ID,
		arg.Type,
		arg.Content,
		arg.CreatedAt,
	)
	return err
}

const getOutboxMessage = `-- name: GetOutboxMessage :one
SELECT ` + outboxColumns + ` FROM outbox_messages WHERE id = $1
`

func (q *Queries) GetOutboxMessage(ctx context.Context, id uuid.UUID) (OutboxMessage, error) {
	return scanOutboxMessage(q.db.QueryRowContext(ctx, getOutboxMessage, id))
}

const fetchPendingOutbox = `-- name: FetchPendingOutbox :many
SELECT ` + outboxColumns + ` FROM outbox_messages
WHERE processed_at IS NULL AND ($2 = 0 OR attempts < $2)
ORDER BY created_at, id
LIMIT $1
`

type FetchPendingOutboxParams struct {
	Limit int32
	// MaxAttempts excludes rows that already failed this many times. Zero
	// disables the cap.
	MaxAttempts int32
}

func (q *Queries) FetchPendingOutbox(ctx context.Context, arg FetchPendingOutboxParams) ([]OutboxMessage, error) {
	rows, err := q.db.QueryContext(ctx, fetchPendingOutbox, arg.Limit, arg.MaxAttempts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OutboxMessage
	for rows.Next() {
		i, err := scanOutboxMessage(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const markOutboxProcessed = `-- name: MarkOutboxProcessed :execrows
UPDATE outbox_messages SET processed_at = $2, error = NULL
WHERE id = $1 AND processed_at IS NULL
`

type MarkOutboxProcessedParams struct {
	ID          uuid.UUID
	ProcessedAt time.Time
}

func (q *Queries) MarkOutboxProcessed(ctx context.Context, arg MarkOutboxProcessedParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, markOutboxProcessed, arg.ID, arg.ProcessedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const markOutboxFailed = `-- name: MarkOutboxFailed :exec
UPDATE outbox_messages SET error = $2, attempts = attempts + 1
WHERE id = $1 AND processed_at IS NULL
`

type MarkOutboxFailedParams struct {
	ID    uuid.UUID
	Error string
}

func (q *Queries) MarkOutboxFailed(ctx context.Context, arg MarkOutboxFailedParams) error {
	_, err := q.db.ExecContext(ctx, markOutboxFailed, arg.ID, arg.Error)
	return err
}

const countPendingOutbox = `-- name: CountPendingOutbox :one
SELECT COUNT(*) FROM outbox_messages
WHERE processed_at IS NULL AND ($1 = 0 OR attempts < $1)
`

func (q *Queries) CountPendingOutbox(ctx context.Context, maxAttempts int32) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countPendingOutbox, maxAttempts).Scan(&count)
	return count, err
}
