package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/auctionhouse/go/internal/models"
	"github.com/mcdev12/auctionhouse/go/internal/outbox"
)

//go:generate mockgen -source=app.go -destination=mock_app_test.go -package=notification

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// NotificationRepository defines what the app layer needs from the repository
type NotificationRepository interface {
	Persist(ctx context.Context, f Fanout) error
	UnreadCounts(ctx context.Context, recipientIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	MarkAsRead(ctx context.Context, recipientID, notificationID uuid.UUID, readAt time.Time) (bool, error)
	List(ctx context.Context, recipientID uuid.UUID, limit int32) ([]models.InboxItem, error)
}

// CountPublisher pushes fresh unread counts to connected users.
type CountPublisher interface {
	PublishUnreadCounts(ctx context.Context, counts map[uuid.UUID]int64) error
}

// App fans dispatched events out to per-recipient notification rows and
// keeps online users' unread badges current.
type App struct {
	repo      NotificationRepository
	publisher CountPublisher
	clock     clockwork.Clock
}

func NewApp(repo NotificationRepository, publisher CountPublisher, clock clockwork.Clock) *App {
	return &App{
		repo:      repo,
		publisher: publisher,
		clock:     clock,
	}
}

// Handle implements outbox.Handler.
func (a *App) Handle(ctx context.Context, event outbox.Event) error {
	fanout, ok := Compose(event)
	if !ok {
		return nil
	}

	if err := a.repo.Persist(ctx, fanout); err != nil {
		return fmt.Errorf("persist notification for %s: %w", event.Type, err)
	}

	counts, err := a.repo.UnreadCounts(ctx, fanout.Recipients)
	if err != nil {
		return fmt.Errorf("count unread for %s: %w", event.Type, err)
	}
	if err := a.publisher.PublishUnreadCounts(ctx, counts); err != nil {
		return fmt.Errorf("publish unread counts: %w", err)
	}

	log.Debug().
		Str("event_id", event.ID.String()).
		Str("event_type", event.Type).
		Str("notification_id", fanout.Notification.ID.String()).
		Int("recipients", len(fanout.Recipients)).
		Msg("notification fanned out")
	return nil
}

// MarkAsRead marks one notification read for recipientID. Repeating the
// call has no further effect.
func (a *App) MarkAsRead(ctx context.Context, recipientID, notificationID uuid.UUID) (int64, error) {
	changed, err := a.repo.MarkAsRead(ctx, recipientID, notificationID, a.clock.Now())
	if err != nil {
		return 0, err
	}

	count, err := a.UnreadCount(ctx, recipientID)
	if err != nil {
		return 0, err
	}
	if !changed {
		return count, nil
	}

	if err := a.publisher.PublishUnreadCounts(ctx, map[uuid.UUID]int64{recipientID: count}); err != nil {
		// The read is committed; the badge catches up on the next change.
		log.Warn().Err(err).Str("user_id", recipientID.String()).Msg("failed to publish unread count")
	}
	return count, nil
}

func (a *App) UnreadCount(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	counts, err := a.repo.UnreadCounts(ctx, []uuid.UUID{recipientID})
	if err != nil {
		return 0, err
	}
	return counts[recipientID], nil
}

// List returns recipientID's notifications, newest first.
func (a *App) List(ctx context.Context, recipientID uuid.UUID, limit int) ([]models.InboxItem, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return a.repo.List(ctx, recipientID, int32(limit))
}
