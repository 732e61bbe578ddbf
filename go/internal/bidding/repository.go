package bidding

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/auctionhouse/go/internal/auctionerrors"
	"github.com/mcdev12/auctionhouse/go/internal/db"
	"github.com/mcdev12/auctionhouse/go/internal/events"
	"github.com/mcdev12/auctionhouse/go/internal/models"
	"github.com/mcdev12/auctionhouse/go/internal/outbox"
	"github.com/mcdev12/auctionhouse/go/internal/sqlutil"
)

// Repository persists auctions and bids. Every mutation appends its outbox
// event inside the same transaction.
type Repository struct {
	queries *db.Queries
	db      *sql.DB
}

func NewRepository(conn *sql.DB) *Repository {
	return &Repository{
		queries: db.New(conn),
		db:      conn,
	}
}

func (r *Repository) GetAuction(ctx context.Context, id uuid.UUID) (*models.Auction, error) {
	row, err := r.queries.GetAuction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auctionerrors.ErrAuctionNotFound
	}
	if err != nil {
		return nil, auctionerrors.Transient("get auction", err)
	}
	return dbAuctionToModel(row), nil
}

// GetAuctionSnapshot reads the auction together with its derived price.
func (r *Repository) GetAuctionSnapshot(ctx context.Context, auctionID uuid.UUID) (*models.AuctionSnapshot, error) {
	auction, err := r.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	return snapshotOf(ctx, r.queries, *auction)
}

func snapshotOf(ctx context.Context, q *db.Queries, auction models.Auction) (*models.AuctionSnapshot, error) {
	price, err := q.GetAuctionPrice(ctx, auction.ID)
	if err != nil {
		return nil, auctionerrors.Transient("get auction price", err)
	}

	snapshot := &models.AuctionSnapshot{
		Auction:      auction,
		CurrentPrice: auction.StartingPrice,
		BidCount:     price.BidCount,
	}
	if !price.MaxAmount.Valid {
		return snapshot, nil
	}
	snapshot.CurrentPrice = price.MaxAmount.Decimal

	highest, err := q.GetHighestBid(ctx, auction.ID)
	if errors.Is(err, sql.ErrNoRows) {
		// bids were deleted in between; the price read above still stands
		return snapshot, nil
	}
	if err != nil {
		return nil, auctionerrors.Transient("get highest bid", err)
	}
	snapshot.HighestBidderID = &highest.BidderID
	return snapshot, nil
}

func (r *Repository) GetBid(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	row, err := r.queries.GetBid(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auctionerrors.ErrBidNotFound
	}
	if err != nil {
		return nil, auctionerrors.Transient("get bid", err)
	}
	return dbBidToModel(row), nil
}

func (r *Repository) ListBids(ctx context.Context, auctionID uuid.UUID) ([]models.Bid, error) {
	rows, err := r.queries.ListBidsByAuction(ctx, auctionID)
	if err != nil {
		return nil, auctionerrors.Transient("list bids", err)
	}
	bids := make([]models.Bid, 0, len(rows))
	for _, row := range rows {
		bids = append(bids, *dbBidToModel(row))
	}
	return bids, nil
}

// PlaceBid inserts the bid and its BidPlaced event atomically. The insert only
// matches an auction that is still unassigned and open at PlacedAt, so a bid
// racing an accept or the end time returns ErrAuctionInactive.
func (r *Repository) PlaceBid(ctx context.Context, req PlaceBidRequest) (*models.Bid, error) {
	bid := models.Bid{
		ID:        uuid.New(),
		AuctionID: req.AuctionID,
		BidderID:  req.BidderID,
		Amount:    req.Amount,
		PlacedAt:  req.PlacedAt.UTC(),
	}

	err := sqlutil.Run(ctx, r.db, r.queries.WithTx, func(q *db.Queries) error {
		n, err := q.InsertBid(ctx, db.InsertBidParams{
			ID:        bid.ID,
			AuctionID: bid.AuctionID,
			BidderID:  bid.BidderID,
			Amount:    bid.Amount,
			PlacedAt:  bid.PlacedAt,
		})
		if err != nil {
			return fmt.Errorf("insert bid: %w", err)
		}
		if n == 0 {
			return auctionerrors.ErrAuctionInactive
		}

		_, err = outbox.WriteEvent(ctx, q, events.TypeBidPlaced, events.BidPlacedPayload{
			BidID:                   bid.ID,
			AuctionID:               bid.AuctionID,
			AuctioneerID:            req.AuctioneerID,
			BidderID:                bid.BidderID,
			Amount:                  bid.Amount,
			PreviousHighestBidderID: req.PreviousHighestBidderID,
			PlacedAt:                bid.PlacedAt,
		}, bid.PlacedAt)
		return err
	})
	if err != nil {
		return nil, auctionerrors.Transient("place bid", err)
	}
	return &bid, nil
}

// AcceptBid assigns the winner with a conditional update that only matches
// an auction still active and unassigned, marks the bid and writes
// BidAccepted in one transaction. A lost race returns a conflict.
func (r *Repository) AcceptBid(ctx context.Context, req AcceptBidRequest) (*models.Bid, error) {
	bid := req.Bid
	acceptedAt := req.AcceptedAt.UTC()

	err := sqlutil.Run(ctx, r.db, r.queries.WithTx, func(q *db.Queries) error {
		n, err := q.SetAuctionWinner(ctx, db.SetAuctionWinnerParams{
			ID:       bid.AuctionID,
			WinnerID: bid.BidderID,
			Now:      acceptedAt,
		})
		if err != nil {
			return fmt.Errorf("set auction winner: %w", err)
		}
		if n == 0 {
			return auctionerrors.ErrAuctionAlreadyWon
		}

		n, err = q.MarkBidAccepted(ctx, db.MarkBidAcceptedParams{ID: bid.ID, AuctionID: bid.AuctionID})
		if db.IsUniqueViolation(err) {
			return auctionerrors.ErrAuctionAlreadyWon
		}
		if err != nil {
			return fmt.Errorf("mark bid accepted: %w", err)
		}
		if n == 0 {
			return auctionerrors.ErrAuctionAlreadyWon
		}

		_, err = outbox.WriteEvent(ctx, q, events.TypeBidAccepted, events.BidAcceptedPayload{
			BidID:        bid.ID,
			AuctionID:    bid.AuctionID,
			AuctioneerID: req.AuctioneerID,
			WinnerID:     bid.BidderID,
			Amount:       bid.Amount,
			AcceptedAt:   acceptedAt,
		}, acceptedAt)
		return err
	})
	if err != nil {
		return nil, auctionerrors.Transient("accept bid", err)
	}

	bid.IsAccepted = true
	return &bid, nil
}

func (r *Repository) CreateAuction(ctx context.Context, auction models.Auction) (*models.Auction, error) {
	err := sqlutil.Run(ctx, r.db, r.queries.WithTx, func(q *db.Queries) error {
		if err := q.CreateAuction(ctx, db.CreateAuctionParams{
			ID:              auction.ID,
			AuctioneerID:    auction.AuctioneerID,
			Title:           auction.Title,
			StartingPrice:   auction.StartingPrice,
			MinBidIncrement: auction.MinBidIncrement,
			StartTime:       auction.StartTime.UTC(),
			EndTime:         auction.EndTime.UTC(),
			CreatedAt:       auction.CreatedAt.UTC(),
		}); err != nil {
			return fmt.Errorf("insert auction: %w", err)
		}

		_, err := outbox.WriteEvent(ctx, q, events.TypeAuctionCreated, events.AuctionCreatedPayload{
			AuctionID:       auction.ID,
			AuctioneerID:    auction.AuctioneerID,
			Title:           auction.Title,
			StartingPrice:   auction.StartingPrice,
			MinBidIncrement: auction.MinBidIncrement,
			StartTime:       auction.StartTime,
			EndTime:         auction.EndTime,
		}, auction.CreatedAt)
		return err
	})
	if err != nil {
		return nil, auctionerrors.Transient("create auction", err)
	}
	return &auction, nil
}

// DeleteAuction removes the auction only while it has no bids.
func (r *Repository) DeleteAuction(ctx context.Context, auction models.Auction, deletedAt time.Time) error {
	err := sqlutil.Run(ctx, r.db, r.queries.WithTx, func(q *db.Queries) error {
		n, err := q.DeleteAuctionWithoutBids(ctx, auction.ID)
		if err != nil {
			return fmt.Errorf("delete auction: %w", err)
		}
		if n == 0 {
			if _, err := q.GetAuction(ctx, auction.ID); errors.Is(err, sql.ErrNoRows) {
				return auctionerrors.ErrAuctionNotFound
			}
			return auctionerrors.ErrAuctionHasBids
		}

		_, err = outbox.WriteEvent(ctx, q, events.TypeAuctionDeleted, events.AuctionDeletedPayload{
			AuctionID:    auction.ID,
			AuctioneerID: auction.AuctioneerID,
			DeletedAt:    deletedAt.UTC(),
		}, deletedAt)
		return err
	})
	return auctionerrors.Transient("delete auction", err)
}

// ListEndedAuctions returns auctions past their end time whose AuctionEnded
// event has not been written yet.
func (r *Repository) ListEndedAuctions(ctx context.Context, now time.Time, limit int32) ([]models.Auction, error) {
	rows, err := r.queries.ListEndedOpenAuctions(ctx, db.ListEndedOpenAuctionsParams{
		Now:   now.UTC(),
		Limit: limit,
	})
	if err != nil {
		return nil, auctionerrors.Transient("list ended auctions", err)
	}
	auctions := make([]models.Auction, 0, len(rows))
	for _, row := range rows {
		auctions = append(auctions, *dbAuctionToModel(row))
	}
	return auctions, nil
}

// CloseAuction marks an ended auction closed and writes AuctionEnded with
// its final price. It reports false when the auction was already closed.
func (r *Repository) CloseAuction(ctx context.Context, auctionID uuid.UUID, now time.Time) (bool, error) {
	now = now.UTC()
	closed := false

	err := sqlutil.Run(ctx, r.db, r.queries.WithTx, func(q *db.Queries) error {
		n, err := q.CloseAuction(ctx, db.CloseAuctionParams{ID: auctionID, Now: now})
		if err != nil {
			return fmt.Errorf("close auction: %w", err)
		}
		if n == 0 {
			return nil
		}

		row, err := q.GetAuction(ctx, auctionID)
		if err != nil {
			return fmt.Errorf("reload auction: %w", err)
		}
		snapshot, err := snapshotOf(ctx, q, *dbAuctionToModel(row))
		if err != nil {
			return err
		}

		_, err = outbox.WriteEvent(ctx, q, events.TypeAuctionEnded, events.AuctionEndedPayload{
			AuctionID:    auctionID,
			AuctioneerID: snapshot.Auction.AuctioneerID,
			WinnerID:     snapshot.Auction.WinnerID,
			FinalPrice:   snapshot.CurrentPrice,
			EndedAt:      snapshot.Auction.EndTime,
		}, now)
		if err != nil {
			return err
		}
		closed = true
		return nil
	})
	if err != nil {
		return false, auctionerrors.Transient("close auction", err)
	}
	return closed, nil
}

func dbAuctionToModel(row db.Auction) *models.Auction {
	return &models.Auction{
		ID:              row.ID,
		AuctioneerID:    row.AuctioneerID,
		Title:           row.Title,
		StartingPrice:   row.StartingPrice,
		MinBidIncrement: row.MinBidIncrement,
		StartTime:       row.StartTime.UTC(),
		EndTime:         row.EndTime.UTC(),
		WinnerID:        sqlutil.FromNullUUID(row.WinnerID),
		ClosedAt:        sqlutil.FromSqlTime(row.ClosedAt),
		CreatedAt:       row.CreatedAt.UTC(),
	}
}

func dbBidToModel(row db.Bid) *models.Bid {
	return &models.Bid{
		ID:         row.ID,
		AuctionID:  row.AuctionID,
		BidderID:   row.BidderID,
		Amount:     row.Amount,
		PlacedAt:   row.PlacedAt.UTC(),
		IsAccepted: row.IsAccepted,
	}
}
