package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mcdev12/auctionhouse/go/internal/auctionerrors"
	"github.com/mcdev12/auctionhouse/go/internal/db"
	"github.com/mcdev12/auctionhouse/go/internal/events"
	"github.com/mcdev12/auctionhouse/go/internal/models"
	"github.com/mcdev12/auctionhouse/go/internal/outbox"
	"github.com/mcdev12/auctionhouse/go/internal/sqlutil"
)

type Repository struct {
	queries *db.Queries
	db      *sql.DB
}

func NewRepository(conn *sql.DB) *Repository {
	return &Repository{
		queries: db.New(conn),
		db:      conn,
	}
}

func (r *Repository) GetChat(ctx context.Context, chatID uuid.UUID) (*models.Chat, error) {
	row, err := r.queries.GetChat(ctx, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auctionerrors.ErrChatNotFound
	}
	if err != nil {
		return nil, auctionerrors.Transient("get chat", err)
	}
	return dbChatToModel(row), nil
}

func (r *Repository) CreateChat(ctx context.Context, chat models.Chat) (*models.Chat, error) {
	err := r.queries.InsertChat(ctx, db.InsertChatParams{
		ID:           chat.ID,
		AuctionID:    sqlutil.ToNullUUID(chat.AuctionID),
		FirstUserID:  chat.FirstUserID,
		SecondUserID: chat.SecondUserID,
		CreatedAt:    chat.CreatedAt.UTC(),
	})
	if err != nil {
		return nil, auctionerrors.Transient("create chat", err)
	}
	return &chat, nil
}

// SendMessage inserts msg and its MessageSent event atomically. The event
// names the other participant so fanout needs no lookup.
func (r *Repository) SendMessage(ctx context.Context, chat models.Chat, msg models.Message) (*models.Message, error) {
	msg.SentAt = msg.SentAt.UTC()

	err := sqlutil.Run(ctx, r.db, r.queries.WithTx, func(q *db.Queries) error {
		if err := q.InsertMessage(ctx, db.InsertMessageParams{
			ID:       msg.ID,
			ChatID:   msg.ChatID,
			SenderID: msg.SenderID,
			Text:     msg.Text,
			SentAt:   msg.SentAt,
		}); err != nil {
			return fmt.Errorf("insert message: %w", err)
		}

		_, err := outbox.WriteEvent(ctx, q, events.TypeMessageSent, events.MessageSentPayload{
			MessageID:   msg.ID,
			ChatID:      chat.ID,
			AuctionID:   chat.AuctionID,
			SenderID:    msg.SenderID,
			RecipientID: chat.Other(msg.SenderID),
			Text:        msg.Text,
			SentAt:      msg.SentAt,
		}, msg.SentAt)
		return err
	})
	if err != nil {
		return nil, auctionerrors.Transient("send message", err)
	}
	return &msg, nil
}

func (r *Repository) ListMessages(ctx context.Context, chatID uuid.UUID, limit int32) ([]models.Message, error) {
	rows, err := r.queries.ListMessages(ctx, db.ListMessagesParams{ChatID: chatID, Limit: limit})
	if err != nil {
		return nil, auctionerrors.Transient("list messages", err)
	}
	messages := make([]models.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, models.Message{
			ID:       row.ID,
			ChatID:   row.ChatID,
			SenderID: row.SenderID,
			Text:     row.Text,
			SentAt:   row.SentAt,
		})
	}
	return messages, nil
}

func dbChatToModel(row db.Chat) *models.Chat {
	return &models.Chat{
		ID:           row.ID,
		AuctionID:    sqlutil.FromNullUUID(row.AuctionID),
		FirstUserID:  row.FirstUserID,
		SecondUserID: row.SecondUserID,
		CreatedAt:    row.CreatedAt,
	}
}
