package notification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"

	"github.com/mcdev12/auctionhouse/go/internal/auctionerrors"
	"github.com/mcdev12/auctionhouse/go/internal/db"
	"github.com/mcdev12/auctionhouse/go/internal/models"
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

// Persist writes the notification and all recipient rows in one transaction.
// Rows that already exist are kept as they are, so persisting the same
// fanout twice is a no-op.
func (r *Repository) Persist(ctx context.Context, f Fanout) error {
	n := f.Notification
	err := sqlutil.Run(ctx, r.db, r.queries.WithTx, func(q *db.Queries) error {
		if _, err := q.InsertNotification(ctx, db.InsertNotificationParams{
			ID:             n.ID,
			Message:        n.Message,
			TemplateArgs:   pqtype.NullRawMessage{RawMessage: n.TemplateArgs, Valid: len(n.TemplateArgs) > 0},
			RedirectTarget: string(n.RedirectTarget),
			RedirectID:     sqlutil.ToNullUUID(n.RedirectID),
			IssuerID:       sqlutil.ToNullUUID(n.IssuerID),
			CreatedAt:      n.CreatedAt.UTC(),
		}); err != nil {
			return fmt.Errorf("insert notification: %w", err)
		}
		if _, err := q.InsertNotificationRecipients(ctx, n.ID, f.Recipients); err != nil {
			return fmt.Errorf("insert notification recipients: %w", err)
		}
		return nil
	})
	return auctionerrors.Transient("persist notification", err)
}

// UnreadCounts returns the unread count of every given recipient from a
// single grouped query. Recipients with nothing unread map to 0.
func (r *Repository) UnreadCounts(ctx context.Context, recipientIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	rows, err := r.queries.CountUnreadByRecipients(ctx, recipientIDs)
	if err != nil {
		return nil, auctionerrors.Transient("count unread notifications", err)
	}

	counts := make(map[uuid.UUID]int64, len(recipientIDs))
	for _, id := range recipientIDs {
		counts[id] = 0
	}
	for _, row := range rows {
		counts[row.RecipientID] = row.Count
	}
	return counts, nil
}

// MarkAsRead flags one recipient row read. It reports whether the row
// changed; marking an already read row succeeds without effect.
func (r *Repository) MarkAsRead(ctx context.Context, recipientID, notificationID uuid.UUID, readAt time.Time) (bool, error) {
	n, err := r.queries.MarkNotificationRead(ctx, db.MarkNotificationReadParams{
		NotificationID: notificationID,
		RecipientID:    recipientID,
		ReadAt:         readAt.UTC(),
	})
	if err != nil {
		return false, auctionerrors.Transient("mark notification read", err)
	}
	if n > 0 {
		return true, nil
	}

	_, err = r.queries.GetNotificationRecipient(ctx, db.GetNotificationRecipientParams{
		NotificationID: notificationID,
		RecipientID:    recipientID,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return false, auctionerrors.ErrNotificationNotFound
	}
	if err != nil {
		return false, auctionerrors.Transient("get notification recipient", err)
	}
	return false, nil
}

// List returns the recipient's newest notifications first.
func (r *Repository) List(ctx context.Context, recipientID uuid.UUID, limit int32) ([]models.InboxItem, error) {
	rows, err := r.queries.ListNotificationsForRecipient(ctx, db.ListNotificationsForRecipientParams{
		RecipientID: recipientID,
		Limit:       limit,
	})
	if err != nil {
		return nil, auctionerrors.Transient("list notifications", err)
	}

	items := make([]models.InboxItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, models.InboxItem{
			Notification: dbNotificationToModel(row.Notification),
			IsRead:       row.IsRead,
		})
	}
	return items, nil
}

func dbNotificationToModel(row db.Notification) models.Notification {
	n := models.Notification{
		ID:             row.ID,
		Message:        row.Message,
		RedirectTarget: models.RedirectTarget(row.RedirectTarget),
		RedirectID:     sqlutil.FromNullUUID(row.RedirectID),
		IssuerID:       sqlutil.FromNullUUID(row.IssuerID),
		CreatedAt:      row.CreatedAt.UTC(),
	}
	if row.TemplateArgs.Valid {
		n.TemplateArgs = row.TemplateArgs.RawMessage
	}
	return n
}
