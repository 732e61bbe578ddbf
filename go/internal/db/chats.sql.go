package db

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const insertChat = `-- name: InsertChat :exec
INSERT INTO chats (id, auction_id, first_user_id, second_user_id, created_at)
VALUES ($1, $2, $3, $4, $5)
`

type InsertChatParams struct {
	ID           uuid.UUID
	AuctionID    uuid.NullUUID
	FirstUserID  uuid.UUID
	SecondUserID uuid.UUID
	CreatedAt    time.Time
}

func (q *Queries) InsertChat(ctx context.Context, arg InsertChatParams) error {
	_, err := q.db.ExecContext(ctx, insertChat,
		arg.ID,
		arg.AuctionID,
		arg.FirstUserID,
		arg.SecondUserID,
		arg.CreatedAt,
	)
	return err
}

const getChat = `-- name: GetChat :one
SELECT id, auction_id, first_user_id, second_user_id, created_at FROM chats WHERE id = $1
`

func (q *Queries) GetChat(ctx context.Context, id uuid.UUID) (Chat, error) {
	var i Chat
	err := q.db.QueryRowContext(ctx, getChat, id).Scan(
		&i.ID,
		&i.AuctionID,
		&i.FirstUserID,
		&i.SecondUserID,
		&i.CreatedAt,
	)
	return i, err
}

const insertMessage = `-- name: InsertMessage :exec
INSERT INTO messages (id, chat_id, sender_id, text, sent_at)
VALUES ($1, $2, $3, $4, $5)
`

type InsertMessageParams struct {
	ID       uuid.UUID
	ChatID   uuid.UUID
	SenderID uuid.UUID
	Text     string
	SentAt   time.Time
}

func (q *Queries) InsertMessage(ctx context.Context, arg InsertMessageParams) error {
	_, err := q.db.ExecContext(ctx, insertMessage,
		arg.ID,
		arg.ChatID,
		arg.SenderID,
		arg.Text,
		arg.SentAt,
	)
	return err
}

const listMessages = `-- name: ListMessages :many
SELECT id, chat_id, sender_id, text, sent_at FROM messages
WHERE chat_id = $1
ORDER BY sent_at, id
LIMIT $2
`

type ListMessagesParams struct {
	ChatID uuid.UUID
	Limit  int32
}

func (q *Queries) ListMessages(ctx context.Context, arg ListMessagesParams) ([]Message, error) {
	rows, err := q.db.QueryContext(ctx, listMessages, arg.ChatID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Message
	for rows.Next() {
		var i Message
		if err := rows.Scan(
			&i.ID,
			&i.ChatID,
			&i.SenderID,
			&i.Text,
			&i.SentAt,
		); err != nil {
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
