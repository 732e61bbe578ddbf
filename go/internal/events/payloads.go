package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event payload types shared by the producers writing outbox rows and the
// handlers consuming them.

// BidPlacedPayload is the payload for a BidPlaced event
type BidPlacedPayload struct {
	BidID                   uuid.UUID       `json:"bidId"`
	AuctionID               uuid.UUID       `json:"auctionId"`
	AuctioneerID            uuid.UUID       `json:"auctioneerId"`
	BidderID                uuid.UUID       `json:"bidderId"`
	Amount                  decimal.Decimal `json:"amount"`
	PreviousHighestBidderID *uuid.UUID      `json:"previousHighestBidderId,omitempty"`
	PlacedAt                time.Time       `json:"placedAt"`
}

// BidAcceptedPayload is the payload for a BidAccepted event
type BidAcceptedPayload struct {
	BidID        uuid.UUID       `json:"bidId"`
	AuctionID    uuid.UUID       `json:"auctionId"`
	AuctioneerID uuid.UUID       `json:"auctioneerId"`
	WinnerID     uuid.UUID       `json:"winnerId"`
	Amount       decimal.Decimal `json:"amount"`
	AcceptedAt   time.Time       `json:"acceptedAt"`
}

// AuctionCreatedPayload is the payload for an AuctionCreated event
type AuctionCreatedPayload struct {
	AuctionID       uuid.UUID       `json:"auctionId"`
	AuctioneerID    uuid.UUID       `json:"auctioneerId"`
	Title           string          `json:"title"`
	StartingPrice   decimal.Decimal `json:"startingPrice"`
	MinBidIncrement decimal.Decimal `json:"minBidIncrement"`
	StartTime       time.Time       `json:"startTime"`
	EndTime         time.Time       `json:"endTime"`
}

// AuctionDeletedPayload is the payload for an AuctionDeleted event
type AuctionDeletedPayload struct {
	AuctionID    uuid.UUID `json:"auctionId"`
	AuctioneerID uuid.UUID `json:"auctioneerId"`
	DeletedAt    time.Time `json:"deletedAt"`
}

// AuctionEndedPayload is the payload for an AuctionEnded event. FinalPrice
// is the highest committed bid, or the starting price without bids.
type AuctionEndedPayload struct {
	AuctionID    uuid.UUID       `json:"auctionId"`
	AuctioneerID uuid.UUID       `json:"auctioneerId"`
	WinnerID     *uuid.UUID      `json:"winnerId,omitempty"`
	FinalPrice   decimal.Decimal `json:"finalPrice"`
	EndedAt      time.Time       `json:"endedAt"`
}

// MessageSentPayload is the payload for a MessageSent event
type MessageSentPayload struct {
	MessageID   uuid.UUID  `json:"messageId"`
	ChatID      uuid.UUID  `json:"chatId"`
	AuctionID   *uuid.UUID `json:"auctionId,omitempty"`
	SenderID    uuid.UUID  `json:"senderId"`
	RecipientID uuid.UUID  `json:"recipientId"`
	Text        string     `json:"text"`
	SentAt      time.Time  `json:"sentAt"`
}
