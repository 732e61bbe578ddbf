package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const bidColumns = `id, auction_id, bidder_id, amount, placed_at, is_accepted`

func scanBid(row interface{ Scan(...interface{}) error }) (Bid, error) {
	var i Bid
	err := row.Scan(
		&i.ID,
		&i.AuctionID,
		&i.BidderID,
		&i.Amount,
		&i.PlacedAt,
		&i.IsAccepted,
	)
	return i, err
}

const insertBid = `-- name: InsertBid :execrows
INSERT INTO bids (id, auction_id, bidder_id, amount, placed_at, is_accepted)
SELECT $1, $2, $3, $4, $5, FALSE
WHERE EXISTS (
    SELECT 1 FROM auctions
    WHERE id = $2 AND winner_id IS NULL AND end_time > $5
)
`

type InsertBidParams struct {
	ID        uuid.UUID
	AuctionID uuid.UUID
	BidderID  uuid.UUID
	Amount    decimal.Decimal
	PlacedAt  time.Time
}

// InsertBid returns 0 when the auction already has a winner or has ended
// at PlacedAt.
func (q *Queries) InsertBid(ctx context.Context, arg InsertBidParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, insertBid,
		arg.ID,
		arg.AuctionID,
		arg.BidderID,
		arg.Amount,
		arg.PlacedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getBid = `-- name: GetBid :one
SELECT ` + bidColumns + ` FROM bids WHERE id = $1
`

func (q *Queries) GetBid(ctx context.Context, id uuid.UUID) (Bid, error) {
	return scanBid(q.db.QueryRowContext(ctx, getBid, id))
}

const getHighestBid = `-- name: GetHighestBid :one
SELECT ` + bidColumns + ` FROM bids
WHERE auction_id = $1
ORDER BY amount DESC, placed_at ASC
LIMIT 1
`

func (q *Queries) GetHighestBid(ctx context.Context, auctionID uuid.UUID) (Bid, error) {
	return scanBid(q.db.QueryRowContext(ctx, getHighestBid, auctionID))
}

const listBidsByAuction = `-- name: ListBidsByAuction :many
SELECT ` + bidColumns + ` FROM bids
WHERE auction_id = $1
ORDER BY placed_at, id
`

func (q *Queries) ListBidsByAuction(ctx context.Context, auctionID uuid.UUID) ([]Bid, error) {
	rows, err := q.db.QueryContext(ctx, listBidsByAuction, auctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Bid
	for rows.Next() {
		i, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const markBidAccepted = `-- name: MarkBidAccepted :execrows
UPDATE bids SET is_accepted = TRUE
WHERE id = $1 AND auction_id = $2 AND is_accepted = FALSE
`

type MarkBidAcceptedParams struct {
	ID        uuid.UUID
	AuctionID uuid.UUID
}

func (q *Queries) MarkBidAccepted(ctx context.Context, arg MarkBidAcceptedParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, markBidAccepted, arg.ID, arg.AuctionID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
