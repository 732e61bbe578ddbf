package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

const insertNotification = `-- name: InsertNotification :execrows
INSERT INTO notifications (id, message, template_args, redirect_target, redirect_id, issuer_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO NOTHING
`

type InsertNotificationParams struct {
	ID             uuid.UUID
	Message        string
	TemplateArgs   pqtype.NullRawMessage
	RedirectTarget string
	RedirectID     uuid.NullUUID
	IssuerID       uuid.NullUUID
	CreatedAt      time.Time
}

// InsertNotification returns 0 when a notification with the same id exists.
func (q *Queries) InsertNotification(ctx context.Context, arg InsertNotificationParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, insertNotification,
		arg.ID,
		arg.Message,
		arg.TemplateArgs,
		arg.RedirectTarget,
		arg.RedirectID,
		arg.IssuerID,
		arg.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// InsertNotificationRecipients writes every recipient row in one statement.
// Rows that already exist are left untouched.
func (q *Queries) InsertNotificationRecipients(ctx context.Context, notificationID uuid.UUID, recipientIDs []uuid.UUID) (int64, error) {
	if len(recipientIDs) == 0 {
		return 0, nil
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO notification_recipients (notification_id, recipient_id, is_read) VALUES ")
	args := make([]interface{}, 0, len(recipientIDs)+1)
	args = append(args, notificationID)
	for i, id := range recipientIDs {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "($1, $%d, FALSE)", i+2)
		args = append(args, id)
	}
	sb.WriteString(" ON CONFLICT (notification_id, recipient_id) DO NOTHING")

	result, err := q.db.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type UnreadCountRow struct {
	RecipientID uuid.UUID
	Count       int64
}

// CountUnreadByRecipients runs a single grouped aggregate over all given
// recipients. Recipients without unread rows are absent from the result.
func (q *Queries) CountUnreadByRecipients(ctx context.Context, recipientIDs []uuid.UUID) ([]UnreadCountRow, error) {
	if len(recipientIDs) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(recipientIDs))
	args := make([]interface{}, len(recipientIDs))
	for i, id := range recipientIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := `SELECT recipient_id, COUNT(*) FROM notification_recipients
WHERE is_read = FALSE AND recipient_id IN (` + strings.Join(placeholders, ", ") + `)
GROUP BY recipient_id`

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []UnreadCountRow
	for rows.Next() {
		var i UnreadCountRow
		if err := rows.Scan(&i.RecipientID, &i.Count); err != nil {
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

const markNotificationRead = `-- name: MarkNotificationRead :execrows
UPDATE notification_recipients SET is_read = TRUE, read_at = $3
WHERE notification_id = $1 AND recipient_id = $2 AND is_read = FALSE
`

type MarkNotificationReadParams struct {
	NotificationID uuid.UUID
	RecipientID    uuid.UUID
	ReadAt         time.Time
}

func (q *Queries) MarkNotificationRead(ctx context.Context, arg MarkNotificationReadParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, markNotificationRead, arg.NotificationID, arg.RecipientID, arg.ReadAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getNotificationRecipient = `-- name: GetNotificationRecipient :one
SELECT notification_id, recipient_id, is_read, read_at FROM notification_recipients
WHERE notification_id = $1 AND recipient_id = $2
`

type GetNotificationRecipientParams struct {
	NotificationID uuid.UUID
	RecipientID    uuid.UUID
}

func (q *Queries) GetNotificationRecipient(ctx context.Context, arg GetNotificationRecipientParams) (NotificationRecipient, error) {
	var i NotificationRecipient
	err := q.db.QueryRowContext(ctx, getNotificationRecipient, arg.NotificationID, arg.RecipientID).Scan(
		&i.NotificationID,
		&i.RecipientID,
		&i.IsRead,
		&i.ReadAt,
	)
	return i, err
}

const listNotificationsForRecipient = `-- name: ListNotificationsForRecipient :many
SELECT n.id, n.message, n.template_args, n.redirect_target, n.redirect_id, n.issuer_id, n.created_at, r.is_read
FROM notification_recipients r
JOIN notifications n ON n.id = r.notification_id
WHERE r.recipient_id = $1
ORDER BY n.created_at DESC, n.id
LIMIT $2
`

type ListNotificationsForRecipientParams struct {
	RecipientID uuid.UUID
	Limit       int32
}

type ListNotificationsForRecipientRow struct {
	Notification
	IsRead bool
}

func (q *Queries) ListNotificationsForRecipient(ctx context.Context, arg ListNotificationsForRecipientParams) ([]ListNotificationsForRecipientRow, error) {
	rows, err := q.db.QueryContext(ctx, listNotificationsForRecipient, arg.RecipientID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListNotificationsForRecipientRow
	for rows.Next() {
		var i ListNotificationsForRecipientRow
		if err := rows.Scan(
			&i.ID,
			&i.Message,
			&i.TemplateArgs,
			&i.RedirectTarget,
			&i.RedirectID,
			&i.IssuerID,
			&i.CreatedAt,
			&i.IsRead,
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
