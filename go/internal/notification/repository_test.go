package notification

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/auctionhouse/go/internal/auctionerrors"
	"github.com/mcdev12/auctionhouse/go/internal/db/dbtest"
	"github.com/mcdev12/auctionhouse/go/internal/events"
	"github.com/mcdev12/auctionhouse/go/internal/outbox"
)

func messageEvent(recipient uuid.UUID, at time.Time) outbox.Event {
	e := event(events.TypeMessageSent, events.MessageSentPayload{
		MessageID: uuid.New(), ChatID: chatID, SenderID: uuid.New(), RecipientID: recipient, Text: "hello", SentAt: at,
	})
	e.CreatedAt = at
	return e
}

func persist(t *testing.T, repo *Repository, e outbox.Event) Fanout {
	t.Helper()
	fanout, ok := Compose(e)
	require.True(t, ok)
	require.NoError(t, repo.Persist(context.Background(), fanout))
	return fanout
}

func TestPersistIsIdempotent(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)

	e := event(events.TypeAuctionEnded, events.AuctionEndedPayload{AuctionID: auctionID, AuctioneerID: auctioneer, WinnerID: &bidder})
	persist(t, repo, e)
	persist(t, repo, e)

	assert.Equal(t, 1, dbtest.Count(t, conn, "notifications"))
	assert.Equal(t, 2, dbtest.Count(t, conn, "notification_recipients"))
}

func TestPersistFailureWritesNothing(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	dbtest.FailInserts(t, conn, "notification_recipients")

	fanout, ok := Compose(messageEvent(bidder, testNow))
	require.True(t, ok)
	err := repo.Persist(context.Background(), fanout)
	require.ErrorIs(t, err, auctionerrors.ErrTransient)
	assert.Equal(t, 0, dbtest.Count(t, conn, "notifications"))
}

func TestUnreadCountsAfterReads(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	const n, m = 5, 2
	var ids []uuid.UUID
	for i := 0; i < n; i++ {
		fanout := persist(t, repo, messageEvent(bidder, testNow.Add(time.Duration(i)*time.Minute)))
		ids = append(ids, fanout.Notification.ID)
	}
	persist(t, repo, messageEvent(previous, testNow))

	for _, id := range ids[:m] {
		changed, err := repo.MarkAsRead(ctx, bidder, id, testNow)
		require.NoError(t, err)
		assert.True(t, changed)
	}
	// marking again changes nothing
	changed, err := repo.MarkAsRead(ctx, bidder, ids[0], testNow)
	require.NoError(t, err)
	assert.False(t, changed)

	nobody := uuid.New()
	counts, err := repo.UnreadCounts(ctx, []uuid.UUID{bidder, previous, nobody})
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]int64{bidder: n - m, previous: 1, nobody: 0}, counts)
}

func TestMarkAsReadUnknownNotification(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)

	fanout := persist(t, repo, messageEvent(bidder, testNow))

	_, err := repo.MarkAsRead(context.Background(), uuid.New(), fanout.Notification.ID, testNow)
	require.ErrorIs(t, err, auctionerrors.ErrNotificationNotFound)

	_, err = repo.MarkAsRead(context.Background(), bidder, uuid.New(), testNow)
	require.ErrorIs(t, err, auctionerrors.ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	older := persist(t, repo, messageEvent(bidder, testNow))
	newer := persist(t, repo, messageEvent(bidder, testNow.Add(time.Hour)))
	_, err := repo.MarkAsRead(ctx, bidder, older.Notification.ID, testNow)
	require.NoError(t, err)

	items, err := repo.List(ctx, bidder, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, newer.Notification.ID, items[0].ID)
	assert.False(t, items[0].IsRead)
	assert.Equal(t, older.Notification.ID, items[1].ID)
	assert.True(t, items[1].IsRead)
	assert.JSONEq(t, string(older.Notification.TemplateArgs), string(items[1].TemplateArgs))
	require.NotNil(t, items[1].RedirectID)
	assert.Equal(t, chatID, *items[1].RedirectID)

	items, err = repo.List(ctx, bidder, 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
