package realtime

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mcdev12/auctionhouse/go/internal/auctionerrors"
)

// Envelope is the frame exchanged in both directions over the websocket.
// Clients set RequestID on commands; replies to a command echo it.
type Envelope struct {
	Type      string          `json:"type"`
	RequestID string          `json:"requestId,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Client commands.
const (
	CommandPlaceBid               = "PlaceBid"
	CommandAcceptBid              = "AcceptBid"
	CommandJoinAuctionRoom        = "JoinAuctionRoom"
	CommandLeaveAuctionRoom       = "LeaveAuctionRoom"
	CommandJoinFeedRoom           = "JoinFeedRoom"
	CommandLeaveFeedRoom          = "LeaveFeedRoom"
	CommandSendMessage            = "SendMessage"
	CommandJoinChatRoom           = "JoinChatRoom"
	CommandMarkNotificationAsRead = "MarkNotificationAsRead"
)

// Server pushed events.
const (
	EventBidPlaced                       = "BidPlaced"
	EventBidAccepted                     = "BidAccepted"
	EventAuctionCreated                  = "AuctionCreated"
	EventAuctionDeleted                  = "AuctionDeleted"
	EventAuctionEnded                    = "AuctionEnded"
	EventAuctionPriceUpdated             = "AuctionPriceUpdated"
	EventMessageReceived                 = "MessageReceived"
	EventUserStatusChanged               = "UserStatusChanged"
	EventUnreadNotificationsCountChanged = "UnreadNotificationsCountChanged"
	EventErrorOccurred                   = "ErrorOccurred"
	// EventAck answers a command that succeeded. Only the caller gets it.
	EventAck = "Ack"
)

type PlaceBidCommand struct {
	AuctionID uuid.UUID       `json:"auctionId"`
	Amount    decimal.Decimal `json:"amount"`
}

type AcceptBidCommand struct {
	BidID uuid.UUID `json:"bidId"`
}

type AuctionRoomCommand struct {
	AuctionID uuid.UUID `json:"auctionId"`
}

type SendMessageCommand struct {
	ChatID uuid.UUID `json:"chatId"`
	Text   string    `json:"text"`
}

type ChatRoomCommand struct {
	ChatID uuid.UUID `json:"chatId"`
}

type MarkNotificationAsReadCommand struct {
	NotificationID uuid.UUID `json:"notificationId"`
}

type AuctionPriceUpdatedPayload struct {
	AuctionID    uuid.UUID       `json:"auctionId"`
	CurrentPrice decimal.Decimal `json:"currentPrice"`
	BidCount     int64           `json:"bidCount"`
}

type UserStatusChangedPayload struct {
	UserID   uuid.UUID `json:"userId"`
	IsOnline bool      `json:"isOnline"`
}

type UnreadCountPayload struct {
	Count int64 `json:"count"`
}

type ErrorPayload struct {
	Operation string `json:"operation"`
	Kind      string `json:"kind"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// Encode builds a frame of the given type around data.
func Encode(eventType, requestID string, data any) ([]byte, error) {
	env := Envelope{Type: eventType, RequestID: requestID}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", eventType, err)
		}
		env.Data = raw
	}
	return json.Marshal(env)
}

// errorPayload describes err for the caller. Infrastructure details are not
// exposed.
func errorPayload(operation string, err error) ErrorPayload {
	p := ErrorPayload{
		Operation: operation,
		Kind:      auctionerrors.KindName(err),
		Code:      auctionerrors.Code(err),
		Message:   err.Error(),
	}
	switch auctionerrors.KindOf(err) {
	case auctionerrors.ErrTransient:
		p.Message = "temporary failure, please retry"
	case nil:
		p.Message = "internal error"
	}
	return p
}
