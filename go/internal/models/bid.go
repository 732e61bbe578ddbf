package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bid is an offer on an auction. At most one bid per auction is accepted.
type Bid struct {
	ID         uuid.UUID       `json:"id"`
	AuctionID  uuid.UUID       `json:"auctionId"`
	BidderID   uuid.UUID       `json:"bidderId"`
	Amount     decimal.Decimal `json:"amount"`
	PlacedAt   time.Time       `json:"placedAt"`
	IsAccepted bool            `json:"isAccepted"`
}
