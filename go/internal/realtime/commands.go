package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/mcdev12/auctionhouse/go/internal/auctionerrors"
	"github.com/mcdev12/auctionhouse/go/internal/models"
)

//go:generate mockgen -source=commands.go -destination=mock_commands_test.go -package=realtime

// BidService is the bid engine as seen by connected clients.
type BidService interface {
	PlaceBid(ctx context.Context, bidderID, auctionID uuid.UUID, amount decimal.Decimal) (*models.Bid, error)
	AcceptBid(ctx context.Context, callerID, bidID uuid.UUID) (*models.Bid, error)
}

type ChatService interface {
	SendMessage(ctx context.Context, senderID, chatID uuid.UUID, text string) (*models.Message, error)
	CanJoin(ctx context.Context, userID, chatID uuid.UUID) error
}

type NotificationService interface {
	MarkAsRead(ctx context.Context, recipientID, notificationID uuid.UUID) (int64, error)
}

// Router executes client commands on behalf of a subscriber. Failures are
// reported to that subscriber alone with ErrorOccurred. Successful state
// changes reach rooms only through the outbox, never from here.
type Router struct {
	hub           *Hub
	bids          BidService
	chats         ChatService
	notifications NotificationService
}

func NewRouter(hub *Hub, bids BidService, chats ChatService, notifications NotificationService) *Router {
	return &Router{
		hub:           hub,
		bids:          bids,
		chats:         chats,
		notifications: notifications,
	}
}

// Dispatch decodes one frame from sub and runs the command it names.
func (r *Router) Dispatch(ctx context.Context, sub Subscriber, frame []byte) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		r.reply(sub, EventErrorOccurred, "", errorPayload("", auctionerrors.Invalid("malformed_frame", "malformed frame")))
		return
	}

	result, err := r.execute(ctx, sub, env)
	if err != nil {
		log.Debug().
			Err(err).
			Str("connection_id", sub.ID()).
			Str("user_id", sub.UserID().String()).
			Str("command", env.Type).
			Msg("command rejected")
		r.reply(sub, EventErrorOccurred, env.RequestID, errorPayload(env.Type, err))
		return
	}
	r.reply(sub, EventAck, env.RequestID, result)
}

func (r *Router) execute(ctx context.Context, sub Subscriber, env Envelope) (any, error) {
	userID := sub.UserID()

	switch env.Type {
	case CommandPlaceBid:
		var cmd PlaceBidCommand
		if err := decode(env, &cmd); err != nil {
			return nil, err
		}
		return r.bids.PlaceBid(ctx, userID, cmd.AuctionID, cmd.Amount)

	case CommandAcceptBid:
		var cmd AcceptBidCommand
		if err := decode(env, &cmd); err != nil {
			return nil, err
		}
		return r.bids.AcceptBid(ctx, userID, cmd.BidID)

	case CommandJoinAuctionRoom, CommandLeaveAuctionRoom:
		var cmd AuctionRoomCommand
		if err := decode(env, &cmd); err != nil {
			return nil, err
		}
		if cmd.AuctionID == uuid.Nil {
			return nil, auctionerrors.Invalid("invalid_command", "auctionId is required")
		}
		return r.membership(sub, env.Type == CommandJoinAuctionRoom, AuctionRoom(cmd.AuctionID))

	case CommandJoinFeedRoom, CommandLeaveFeedRoom:
		return r.membership(sub, env.Type == CommandJoinFeedRoom, FeedRoom)

	case CommandJoinChatRoom:
		var cmd ChatRoomCommand
		if err := decode(env, &cmd); err != nil {
			return nil, err
		}
		if err := r.chats.CanJoin(ctx, userID, cmd.ChatID); err != nil {
			return nil, err
		}
		return r.membership(sub, true, ChatRoom(cmd.ChatID))

	case CommandSendMessage:
		var cmd SendMessageCommand
		if err := decode(env, &cmd); err != nil {
			return nil, err
		}
		return r.chats.SendMessage(ctx, userID, cmd.ChatID, cmd.Text)

	case CommandMarkNotificationAsRead:
		var cmd MarkNotificationAsReadCommand
		if err := decode(env, &cmd); err != nil {
			return nil, err
		}
		count, err := r.notifications.MarkAsRead(ctx, userID, cmd.NotificationID)
		if err != nil {
			return nil, err
		}
		return UnreadCountPayload{Count: count}, nil

	default:
		return nil, auctionerrors.Invalid("unknown_command", "unknown command %q", env.Type)
	}
}

type membershipResult struct {
	Room   string `json:"room"`
	Joined bool   `json:"joined"`
}

func (r *Router) membership(sub Subscriber, join bool, room string) (any, error) {
	if !join {
		r.hub.Leave(sub, room)
		return membershipResult{Room: room}, nil
	}
	if err := r.hub.Join(sub, room); err != nil {
		return nil, fmt.Errorf("join %s: %w", room, err)
	}
	return membershipResult{Room: room, Joined: true}, nil
}

func (r *Router) reply(sub Subscriber, eventType, requestID string, data any) {
	frame, err := Encode(eventType, requestID, data)
	if err != nil {
		log.Error().Err(err).Str("connection_id", sub.ID()).Msg("failed to encode reply")
		return
	}
	if !sub.Deliver(frame) {
		log.Warn().Str("connection_id", sub.ID()).Str("type", eventType).Msg("dropped reply to slow connection")
	}
}

func decode(env Envelope, v any) error {
	if len(env.Data) == 0 {
		return auctionerrors.Invalid("invalid_command", "%s requires data", env.Type)
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return auctionerrors.Invalid("invalid_command", "invalid %s data: %v", env.Type, err)
	}
	return nil
}
