package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const auctionColumns = `id, auctioneer_id, title, starting_price, min_bid_increment, start_time, end_time, winner_id, closed_at, created_at`

func scanAuction(row interface{ Scan(...interface{}) error }) (Auction, error) {
	var i Auction
	err := row.Scan(
		&i.ID,
		&i.AuctioneerID,
		&i.Title,
		&i.StartingPrice,
		&i.MinBidIncrement,
		&i.StartTime,
		&i.EndTime,
		&i.WinnerID,
		&i.ClosedAt,
		&i.CreatedAt,
	)
	return i, err
}

const createAuction = `-- name: CreateAuction :exec
INSERT INTO auctions (id, auctioneer_id, title, starting_price, min_bid_increment, start_time, end_time, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

type CreateAuctionParams struct {
	ID              uuid.UUID
	AuctioneerID    uuid.UUID
	Title           string
	StartingPrice   decimal.Decimal
	MinBidIncrement decimal.Decimal
	StartTime       time.Time
	EndTime         time.Time
	CreatedAt       time.Time
}

func (q *Queries) CreateAuction(ctx context.Context, arg CreateAuctionParams) error {
	_, err := q.db.ExecContext(ctx, createAuction,
		arg.ID,
		arg.AuctioneerID,
		arg.Title,
		arg.StartingPrice,
		arg.MinBidIncrement,
		arg.StartTime,
		arg.EndTime,
		arg.CreatedAt,
	)
	return err
}

const getAuction = `-- name: GetAuction :one
SELECT ` + auctionColumns + ` FROM auctions WHERE id = $1
`

func (q *Queries) GetAuction(ctx context.Context, id uuid.UUID) (Auction, error) {
	return scanAuction(q.db.QueryRowContext(ctx, getAuction, id))
}

const getAuctionPrice = `-- name: GetAuctionPrice :one
SELECT MAX(amount), COUNT(*) FROM bids WHERE auction_id = $1
`

type GetAuctionPriceRow struct {
	MaxAmount decimal.NullDecimal
	BidCount  int64
}

// GetAuctionPrice aggregates the committed bids of an auction. MaxAmount is
// invalid when there are no bids.
func (q *Queries) GetAuctionPrice(ctx context.Context, auctionID uuid.UUID) (GetAuctionPriceRow, error) {
	var i GetAuctionPriceRow
	err := q.db.QueryRowContext(ctx, getAuctionPrice, auctionID).Scan(&i.MaxAmount, &i.BidCount)
	return i, err
}

const setAuctionWinner = `-- name: SetAuctionWinner :execrows
UPDATE auctions
SET winner_id = $2, end_time = $3
WHERE id = $1 AND winner_id IS NULL AND end_time > $3
`

type SetAuctionWinnerParams struct {
	ID       uuid.UUID
	WinnerID uuid.UUID
	Now      time.Time
}

// SetAuctionWinner is the test-and-set that ends an auction early. It only
// matches an auction that is still active and unassigned.
func (q *Queries) SetAuctionWinner(ctx context.Context, arg SetAuctionWinnerParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, setAuctionWinner, arg.ID, arg.WinnerID, arg.Now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteAuctionWithoutBids = `-- name: DeleteAuctionWithoutBids :execrows
DELETE FROM auctions
WHERE id = $1 AND NOT EXISTS (SELECT 1 FROM bids WHERE bids.auction_id = auctions.id)
`

func (q *Queries) DeleteAuctionWithoutBids(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteAuctionWithoutBids, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listEndedOpenAuctions = `-- name: ListEndedOpenAuctions :many
SELECT ` + auctionColumns + ` FROM auctions
WHERE end_time <= $1 AND closed_at IS NULL
ORDER BY end_time
LIMIT $2
`

type ListEndedOpenAuctionsParams struct {
	Now   time.Time
	Limit int32
}

func (q *Queries) ListEndedOpenAuctions(ctx context.Context, arg ListEndedOpenAuctionsParams) ([]Auction, error) {
	rows, err := q.db.QueryContext(ctx, listEndedOpenAuctions, arg.Now, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Auction
	for rows.Next() {
		i, err := scanAuction(rows)
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

const closeAuction = `-- name: CloseAuction :execrows
UPDATE auctions SET closed_at = $2
WHERE id = $1 AND closed_at IS NULL AND end_time <= $2
`

type CloseAuctionParams struct {
	ID  uuid.UUID
	Now time.Time
}

func (q *Queries) CloseAuction(ctx context.Context, arg CloseAuctionParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, closeAuction, arg.ID, arg.Now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
