package events

import (
	"fmt"

	"github.com/mcdev12/auctionhouse/go/internal/outbox"
)

// Outbox event type tags.
const (
	TypeBidPlaced      = "BidPlaced"
	TypeBidAccepted    = "BidAccepted"
	TypeAuctionCreated = "AuctionCreated"
	TypeAuctionDeleted = "AuctionDeleted"
	TypeAuctionEnded   = "AuctionEnded"
	TypeMessageSent    = "MessageSent"
)

// All lists every tag the domain writes.
var All = []string{
	TypeBidPlaced,
	TypeBidAccepted,
	TypeAuctionCreated,
	TypeAuctionDeleted,
	TypeAuctionEnded,
	TypeMessageSent,
}

// RegisterDecoders binds every tag to its payload type.
func RegisterDecoders(r *outbox.Registry) error {
	regs := []func() error{
		func() error { return outbox.RegisterJSON[BidPlacedPayload](r, TypeBidPlaced) },
		func() error { return outbox.RegisterJSON[BidAcceptedPayload](r, TypeBidAccepted) },
		func() error { return outbox.RegisterJSON[AuctionCreatedPayload](r, TypeAuctionCreated) },
		func() error { return outbox.RegisterJSON[AuctionDeletedPayload](r, TypeAuctionDeleted) },
		func() error { return outbox.RegisterJSON[AuctionEndedPayload](r, TypeAuctionEnded) },
		func() error { return outbox.RegisterJSON[MessageSentPayload](r, TypeMessageSent) },
	}
	for _, reg := range regs {
		if err := reg(); err != nil {
			return fmt.Errorf("register event decoders: %w", err)
		}
	}
	return nil
}
