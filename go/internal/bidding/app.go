package bidding

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/mcdev12/auctionhouse/go/internal/auctionerrors"
	"github.com/mcdev12/auctionhouse/go/internal/models"
)

//go:generate mockgen -source=app.go -destination=mock_repository_test.go -package=bidding

// AuctionRepository defines what the app layer needs from the repository
type AuctionRepository interface {
	GetAuctionSnapshot(ctx context.Context, auctionID uuid.UUID) (*models.AuctionSnapshot, error)
	GetBid(ctx context.Context, bidID uuid.UUID) (*models.Bid, error)
	PlaceBid(ctx context.Context, req PlaceBidRequest) (*models.Bid, error)
	AcceptBid(ctx context.Context, req AcceptBidRequest) (*models.Bid, error)
	CreateAuction(ctx context.Context, auction models.Auction) (*models.Auction, error)
	DeleteAuction(ctx context.Context, auction models.Auction, deletedAt time.Time) error
}

// App validates bids against auction state and commits them. It never talks
// to connected clients; every accepted mutation is announced through the
// outbox rows the repository writes.
type App struct {
	repo  AuctionRepository
	clock clockwork.Clock
}

func NewApp(repo AuctionRepository, clock clockwork.Clock) *App {
	return &App{
		repo:  repo,
		clock: clock,
	}
}

// PlaceBid records a bid if it beats the current price by at least the
// auction's minimum increment.
//
// Validation reads a snapshot outside the insert transaction. Two bidders can
// both pass against the same stale price and both commit. The derived price
// stays correct because it is always the maximum committed amount, but the
// bid that passed its own threshold check is not guaranteed to end up highest.
// The race covers price only: the insert itself requires the auction to still
// be unassigned and open, so a bid losing to an accept or the end time gets
// ErrAuctionInactive.
func (a *App) PlaceBid(ctx context.Context, bidderID, auctionID uuid.UUID, amount decimal.Decimal) (*models.Bid, error) {
	if !amount.IsPositive() {
		return nil, auctionerrors.ErrInvalidAmount
	}

	snapshot, err := a.repo.GetAuctionSnapshot(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	auction := snapshot.Auction

	if bidderID == auction.AuctioneerID {
		return nil, auctionerrors.ErrSelfBid
	}

	now := a.clock.Now().UTC()
	if !auction.IsActive(now) {
		return nil, auctionerrors.ErrAuctionInactive
	}
	if !amount.GreaterThan(snapshot.CurrentPrice) {
		return nil, auctionerrors.ErrBidTooLow
	}
	if amount.Sub(snapshot.CurrentPrice).LessThan(auction.MinBidIncrement) {
		return nil, auctionerrors.ErrIncrementTooSmall
	}

	bid, err := a.repo.PlaceBid(ctx, PlaceBidRequest{
		AuctionID:               auction.ID,
		AuctioneerID:            auction.AuctioneerID,
		BidderID:                bidderID,
		Amount:                  amount,
		PreviousHighestBidderID: snapshot.HighestBidderID,
		PlacedAt:                now,
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("auction_id", auctionID.String()).
		Str("bid_id", bid.ID.String()).
		Str("user_id", bidderID.String()).
		Str("amount", amount.String()).
		Msg("bid placed")
	return bid, nil
}

// AcceptBid ends the auction early with bidID's author as the winner. Any bid
// on the auction may be accepted, not only the highest.
func (a *App) AcceptBid(ctx context.Context, callerID, bidID uuid.UUID) (*models.Bid, error) {
	bid, err := a.repo.GetBid(ctx, bidID)
	if err != nil {
		return nil, err
	}

	snapshot, err := a.repo.GetAuctionSnapshot(ctx, bid.AuctionID)
	if err != nil {
		return nil, err
	}
	auction := snapshot.Auction

	if callerID != auction.AuctioneerID {
		return nil, auctionerrors.ErrNotAuctioneer
	}
	if auction.WinnerID != nil {
		return nil, auctionerrors.ErrAuctionAlreadyWon
	}

	now := a.clock.Now().UTC()
	if !auction.IsActive(now) {
		return nil, auctionerrors.ErrAuctionInactive
	}

	// The repository re-checks both conditions in a single conditional
	// update, so a concurrent accept loses with a conflict here.
	accepted, err := a.repo.AcceptBid(ctx, AcceptBidRequest{
		Bid:          *bid,
		AuctioneerID: auction.AuctioneerID,
		AcceptedAt:   now,
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("auction_id", bid.AuctionID.String()).
		Str("bid_id", bid.ID.String()).
		Str("user_id", bid.BidderID.String()).
		Msg("bid accepted")
	return accepted, nil
}

// CreateAuction opens a new auction owned by auctioneerID.
func (a *App) CreateAuction(ctx context.Context, auctioneerID uuid.UUID, req CreateAuctionRequest) (*models.Auction, error) {
	now := a.clock.Now().UTC()
	if err := validateCreateAuctionRequest(req, now); err != nil {
		return nil, err
	}

	auction, err := a.repo.CreateAuction(ctx, models.Auction{
		ID:              uuid.New(),
		AuctioneerID:    auctioneerID,
		Title:           strings.TrimSpace(req.Title),
		StartingPrice:   req.StartingPrice,
		MinBidIncrement: req.MinBidIncrement,
		StartTime:       req.StartTime.UTC(),
		EndTime:         req.EndTime.UTC(),
		CreatedAt:       now,
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("auction_id", auction.ID.String()).
		Str("user_id", auctioneerID.String()).
		Time("end_time", auction.EndTime).
		Msg("auction created")
	return auction, nil
}

// DeleteAuction removes an auction that has not received any bid.
func (a *App) DeleteAuction(ctx context.Context, callerID, auctionID uuid.UUID) error {
	snapshot, err := a.repo.GetAuctionSnapshot(ctx, auctionID)
	if err != nil {
		return err
	}
	if callerID != snapshot.Auction.AuctioneerID {
		return auctionerrors.ErrNotAuctioneer
	}
	if snapshot.BidCount > 0 {
		return auctionerrors.ErrAuctionHasBids
	}

	if err := a.repo.DeleteAuction(ctx, snapshot.Auction, a.clock.Now().UTC()); err != nil {
		return err
	}

	log.Info().Str("auction_id", auctionID.String()).Msg("auction deleted")
	return nil
}

func validateCreateAuctionRequest(req CreateAuctionRequest, now time.Time) error {
	if strings.TrimSpace(req.Title) == "" {
		return auctionerrors.Detail(auctionerrors.ErrInvalidAuction, "title is required")
	}
	if !req.StartingPrice.IsPositive() {
		return auctionerrors.Detail(auctionerrors.ErrInvalidAuction, "starting price must be positive")
	}
	if !req.MinBidIncrement.IsPositive() {
		return auctionerrors.Detail(auctionerrors.ErrInvalidAuction, "minimum bid increment must be positive")
	}
	if !req.EndTime.After(req.StartTime) {
		return auctionerrors.Detail(auctionerrors.ErrInvalidAuction, "end time must be after start time")
	}
	if !req.EndTime.After(now) {
		return auctionerrors.Detail(auctionerrors.ErrInvalidAuction, "end time must be in the future")
	}
	return nil
}
