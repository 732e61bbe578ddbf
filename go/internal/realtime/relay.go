package realtime

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/auctionhouse/go/internal/events"
	"github.com/mcdev12/auctionhouse/go/internal/models"
	"github.com/mcdev12/auctionhouse/go/internal/outbox"
)

//go:generate mockgen -source=relay.go -destination=mock_relay_test.go -package=realtime

// PriceReader recomputes an auction's derived price.
type PriceReader interface {
	GetAuctionSnapshot(ctx context.Context, auctionID uuid.UUID) (*models.AuctionSnapshot, error)
}

// EventRelay pushes dispatched outbox events to the rooms interested in
// them. It is the only producer of room broadcasts for domain events.
type EventRelay struct {
	hub    *Hub
	prices PriceReader
}

func NewEventRelay(hub *Hub, prices PriceReader) *EventRelay {
	return &EventRelay{
		hub:    hub,
		prices: prices,
	}
}

type push struct {
	room      string
	eventType string
	data      any
}

// Handle implements outbox.Handler.
func (r *EventRelay) Handle(ctx context.Context, event outbox.Event) error {
	pushes, err := r.route(ctx, event)
	if err != nil {
		return err
	}

	for _, p := range pushes {
		frame, err := Encode(p.eventType, "", p.data)
		if err != nil {
			return err
		}
		n := r.hub.Broadcast(p.room, frame)
		log.Debug().
			Str("event_id", event.ID.String()).
			Str("event_type", p.eventType).
			Str("room", p.room).
			Int("connections", n).
			Msg("event broadcasted")
	}
	return nil
}

func (r *EventRelay) route(ctx context.Context, event outbox.Event) ([]push, error) {
	switch p := event.Payload.(type) {
	case events.BidPlacedPayload:
		// The new bid is not necessarily the highest, so the feed gets the
		// recomputed price rather than the bid amount.
		snapshot, err := r.prices.GetAuctionSnapshot(ctx, p.AuctionID)
		if err != nil {
			return nil, fmt.Errorf("read price of auction %s: %w", p.AuctionID, err)
		}
		return []push{
			{AuctionRoom(p.AuctionID), EventBidPlaced, p},
			{FeedRoom, EventAuctionPriceUpdated, AuctionPriceUpdatedPayload{
				AuctionID:    p.AuctionID,
				CurrentPrice: snapshot.CurrentPrice,
				BidCount:     snapshot.BidCount,
			}},
		}, nil

	case events.BidAcceptedPayload:
		return []push{{AuctionRoom(p.AuctionID), EventBidAccepted, p}}, nil

	case events.AuctionCreatedPayload:
		return []push{{FeedRoom, EventAuctionCreated, p}}, nil

	case events.AuctionDeletedPayload:
		return []push{
			{FeedRoom, EventAuctionDeleted, p},
			{AuctionRoom(p.AuctionID), EventAuctionDeleted, p},
		}, nil

	case events.AuctionEndedPayload:
		return []push{
			{AuctionRoom(p.AuctionID), EventAuctionEnded, p},
			{FeedRoom, EventAuctionEnded, p},
		}, nil

	case events.MessageSentPayload:
		return []push{{ChatRoom(p.ChatID), EventMessageReceived, p}}, nil

	default:
		return nil, nil
	}
}

// PublishUnreadCounts sends each user their unread count on the private
// user channel.
func (r *EventRelay) PublishUnreadCounts(_ context.Context, counts map[uuid.UUID]int64) error {
	for userID, count := range counts {
		frame, err := Encode(EventUnreadNotificationsCountChanged, "", UnreadCountPayload{Count: count})
		if err != nil {
			return err
		}
		r.hub.Broadcast(UserRoom(userID), frame)
	}
	return nil
}

// PresenceChanged announces a user going online or offline to the feed. It
// is installed as the hub's presence hook.
func (r *EventRelay) PresenceChanged(userID uuid.UUID, online bool) {
	frame, err := Encode(EventUserStatusChanged, "", UserStatusChangedPayload{UserID: userID, IsOnline: online})
	if err != nil {
		log.Error().Err(err).Msg("failed to encode presence change")
		return
	}
	r.hub.Broadcast(FeedRoom, frame)
}
