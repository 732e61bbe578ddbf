package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mcdev12/auctionhouse/go/internal/dbconfig"
	"github.com/mcdev12/auctionhouse/go/internal/events"
)

// Auction mirrors the JSON snapshot
type Auction struct {
	ID              uuid.UUID       `json:"id"`
	Title           string          `json:"title"`
	StartingPrice   decimal.Decimal `json:"starting_price"`
	MinBidIncrement decimal.Decimal `json:"min_bid_increment"`
	DurationHours   int             `json:"duration_hours"`
}

func main() {
	path := flag.String("file", "go/internal/assets/auctions.json", "auction snapshot to load")
	auctioneer := flag.String("auctioneer", "", "auctioneer user id (random when empty)")
	flag.Parse()

	auctioneerID := uuid.New()
	if *auctioneer != "" {
		id, err := uuid.Parse(*auctioneer)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid auctioneer id: %v\n", err)
			os.Exit(1)
		}
		auctioneerID = id
	}

	// 1) Load the JSON snapshot
	data, err := os.ReadFile(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read JSON: %v\n", err)
		os.Exit(1)
	}
	var auctions []Auction
	if err := json.Unmarshal(data, &auctions); err != nil {
		fmt.Fprintf(os.Stderr, "unmarshal JSON: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect using shared dbconfig
	ctx := context.Background()
	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(ctx, cfg.PostgresURL())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 3) Insert and count
	var (
		total    = len(auctions)
		inserted int
		skipped  int
		errs     int
	)

	now := time.Now().UTC()
	for _, a := range auctions {
		ok, err := insertAuction(ctx, pool, a, auctioneerID, now)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error inserting auction %s: %v\n", a.ID, err)
			errs++
			continue
		}
		if ok {
			inserted++
		} else {
			skipped++
		}
	}

	// 4) Report
	fmt.Printf("Total auctions in JSON: %d\n", total)
	fmt.Printf("Inserted:               %d\n", inserted)
	fmt.Printf("Skipped (existing):     %d\n", skipped)
	fmt.Printf("Errors:                 %d\n", errs)
	fmt.Printf("Auctioneer:             %s\n", auctioneerID)
}

// insertAuction writes the auction and its AuctionCreated outbox row in one
// transaction so seeded auctions reach live clients like created ones.
func insertAuction(ctx context.Context, pool *pgxpool.Pool, a Auction, auctioneerID uuid.UUID, now time.Time) (bool, error) {
	end := now.Add(time.Duration(a.DurationHours) * time.Hour)

	inserted := false
	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
            INSERT INTO auctions (
              id, auctioneer_id, title, starting_price, min_bid_increment,
              start_time, end_time, created_at
            ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
            ON CONFLICT (id) DO NOTHING
        `,
			a.ID, auctioneerID, a.Title, a.StartingPrice, a.MinBidIncrement,
			now, end, now,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		inserted = true

		content, err := json.Marshal(events.AuctionCreatedPayload{
			AuctionID:       a.ID,
			AuctioneerID:    auctioneerID,
			Title:           a.Title,
			StartingPrice:   a.StartingPrice,
			MinBidIncrement: a.MinBidIncrement,
			StartTime:       now,
			EndTime:         end,
		})
		if err != nil {
			return err
		}
		outboxID, err := uuid.NewV7()
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
            INSERT INTO outbox_messages (id, type, content, created_at)
            VALUES ($1,$2,$3,$4)
        `, outboxID, events.TypeAuctionCreated, content, now)
		return err
	})
	return inserted, err
}
