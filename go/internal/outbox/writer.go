package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/auctionhouse/go/internal/db"
)

// Writer is the transaction-bound query set an event is appended through.
// Pass the *db.Queries returned by WithTx so the event commits or rolls back
// together with the business mutation.
type Writer interface {
	InsertOutboxMessage(ctx context.Context, arg db.InsertOutboxMessageParams) error
}

// WriteEvent serializes payload and appends it as an undelivered outbox row.
func WriteEvent(ctx context.Context, w Writer, eventType string, payload any, createdAt time.Time) (uuid.UUID, error) {
	content, err := json.Marshal(payload)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	// v7 ids sort by creation time, which keeps the created_at, id order stable.
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("generate outbox id: %w", err)
	}

	if err := w.InsertOutboxMessage(ctx, db.InsertOutboxMessageParams{
		ID:        id,
		Type:      eventType,
		Content:   content,
		CreatedAt: createdAt.UTC(),
	}); err != nil {
		return uuid.Nil, fmt.Errorf("insert outbox %s: %w", eventType, err)
	}
	return id, nil
}
