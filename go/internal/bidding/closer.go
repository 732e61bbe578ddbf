package bidding

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/auctionhouse/go/internal/models"
)

// CloseStore is what the closer needs from the repository.
type CloseStore interface {
	ListEndedAuctions(ctx context.Context, now time.Time, limit int32) ([]models.Auction, error)
	CloseAuction(ctx context.Context, auctionID uuid.UUID, now time.Time) (bool, error)
}

type CloserConfig struct {
	Interval  time.Duration
	BatchSize int32
}

func DefaultCloserConfig() CloserConfig {
	return CloserConfig{
		Interval:  time.Second,
		BatchSize: 100,
	}
}

// Closer writes one AuctionEnded event per auction once its end time has
// passed. Accepting a bid moves the end time to the acceptance instant, so
// both early and natural endings go through here exactly once.
type Closer struct {
	store  CloseStore
	clock  clockwork.Clock
	config CloserConfig
}

func NewCloser(store CloseStore, clock clockwork.Clock, cfg CloserConfig) *Closer {
	defaults := DefaultCloserConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = defaults.Interval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaults.BatchSize
	}
	return &Closer{
		store:  store,
		clock:  clock,
		config: cfg,
	}
}

// Run closes ended auctions on every tick until ctx is done.
func (c *Closer) Run(ctx context.Context) {
	ticker := c.clock.NewTicker(c.config.Interval)
	defer ticker.Stop()

	log.Info().Dur("interval", c.config.Interval).Msg("auction closer started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("auction closer stopped")
			return
		case <-ticker.Chan():
			if _, err := c.RunOnce(ctx); err != nil {
				log.Error().Err(err).Msg("auction closer run failed")
			}
		}
	}
}

// RunOnce closes up to one batch of ended auctions and returns how many it
// closed.
func (c *Closer) RunOnce(ctx context.Context) (int, error) {
	now := c.clock.Now().UTC()
	auctions, err := c.store.ListEndedAuctions(ctx, now, c.config.BatchSize)
	if err != nil {
		return 0, err
	}

	closed := 0
	for _, auction := range auctions {
		if ctx.Err() != nil {
			break
		}
		ok, err := c.store.CloseAuction(ctx, auction.ID, now)
		if err != nil {
			log.Error().Err(err).Str("auction_id", auction.ID.String()).Msg("failed to close auction")
			continue
		}
		if ok {
			closed++
			log.Info().Str("auction_id", auction.ID.String()).Msg("auction ended")
		}
	}
	return closed, nil
}
