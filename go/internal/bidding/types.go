package bidding

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mcdev12/auctionhouse/go/internal/models"
)

// PlaceBidRequest is a validated bid ready to be committed.
type PlaceBidRequest struct {
	AuctionID               uuid.UUID
	AuctioneerID            uuid.UUID
	BidderID                uuid.UUID
	Amount                  decimal.Decimal
	PreviousHighestBidderID *uuid.UUID
	PlacedAt                time.Time
}

// AcceptBidRequest ends Bid's auction with the bid's author as winner.
type AcceptBidRequest struct {
	Bid          models.Bid
	AuctioneerID uuid.UUID
	AcceptedAt   time.Time
}

type CreateAuctionRequest struct {
	Title           string          `json:"title"`
	StartingPrice   decimal.Decimal `json:"startingPrice"`
	MinBidIncrement decimal.Decimal `json:"minBidIncrement"`
	StartTime       time.Time       `json:"startTime"`
	EndTime         time.Time       `json:"endTime"`
}
