package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Auction is a timed listing. Its current price is never stored: it is
// derived from the highest committed bid, falling back to StartingPrice.
type Auction struct {
	ID              uuid.UUID       `json:"id"`
	AuctioneerID    uuid.UUID       `json:"auctioneerId"`
	Title           string          `json:"title"`
	StartingPrice   decimal.Decimal `json:"startingPrice"`
	MinBidIncrement decimal.Decimal `json:"minBidIncrement"`
	StartTime       time.Time       `json:"startTime"`
	EndTime         time.Time       `json:"endTime"`
	WinnerID        *uuid.UUID      `json:"winnerId,omitempty"`
	ClosedAt        *time.Time      `json:"closedAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// IsActive reports whether bids may still be placed or accepted at now.
func (a *Auction) IsActive(now time.Time) bool {
	return a.WinnerID == nil && now.Before(a.EndTime)
}

// AuctionSnapshot is the auction state PlaceBid validates against.
type AuctionSnapshot struct {
	Auction         Auction
	CurrentPrice    decimal.Decimal
	HighestBidderID *uuid.UUID
	BidCount        int64
}
