package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is a decoded outbox row handed to handlers.
type Event struct {
	ID        uuid.UUID
	Type      string
	CreatedAt time.Time
	// Attempts counts earlier failed deliveries of this row.
	Attempts int32
	Payload  any
}

// Handler consumes dispatched events. Delivery is at-least-once so Handle
// must be idempotent.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}
