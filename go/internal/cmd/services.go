package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/metric"

	"github.com/mcdev12/auctionhouse/go/internal/bidding"
	"github.com/mcdev12/auctionhouse/go/internal/bus"
	"github.com/mcdev12/auctionhouse/go/internal/chat"
	"github.com/mcdev12/auctionhouse/go/internal/db"
	"github.com/mcdev12/auctionhouse/go/internal/events"
	"github.com/mcdev12/auctionhouse/go/internal/identity"
	"github.com/mcdev12/auctionhouse/go/internal/notification"
	"github.com/mcdev12/auctionhouse/go/internal/outbox"
	"github.com/mcdev12/auctionhouse/go/internal/realtime"
)

const outboxHealthThreshold = 5 * time.Minute

type Services struct {
	Auth          *identity.JWTResolver
	Bids          *bidding.App
	Chats         *chat.App
	Notifications *notification.App
	Hub           *realtime.Hub
	Websocket     *realtime.Server
	Worker        *outbox.Worker
	Closer        *bidding.Closer
	Health        *outbox.HealthChecker
	Publisher     *bus.JetStreamPublisher
}

func setupServices(ctx context.Context, config *Config, database *sql.DB, meter metric.Meter) (*Services, error) {
	// Wire up dependency injection chain
	// Database layer → Repository layer → App layer → realtime / outbox handlers
	clock := clockwork.NewRealClock()

	auth, err := identity.NewJWTResolver(config.Auth.JWTSecret, clock)
	if err != nil {
		return nil, err
	}

	// Bidding
	biddingRepo := bidding.NewRepository(database)
	biddingApp := bidding.NewApp(biddingRepo, clock)
	closer := bidding.NewCloser(biddingRepo, clock, config.closerConfig())

	// Chat
	chatRepo := chat.NewRepository(database)
	chatApp := chat.NewApp(chatRepo, clock)

	// Realtime
	hub := realtime.NewHub()
	relay := realtime.NewEventRelay(hub, biddingRepo)
	hub.OnPresenceChange(relay.PresenceChanged)

	// Notifications push unread counts through the relay
	notificationRepo := notification.NewRepository(database)
	notificationApp := notification.NewApp(notificationRepo, relay, clock)

	commands := realtime.NewRouter(hub, biddingApp, chatApp, notificationApp)
	websocket := realtime.NewServer(hub, commands, config.connectionConfig())

	// Outbox
	registry := outbox.NewRegistry()
	if err := events.RegisterDecoders(registry); err != nil {
		return nil, err
	}
	// Notifications are persisted before the realtime push for the same event.
	registry.Subscribe("notifications", notificationApp,
		events.TypeBidPlaced,
		events.TypeBidAccepted,
		events.TypeAuctionEnded,
		events.TypeMessageSent,
	)
	registry.SubscribeAll("realtime", relay)

	var publisher *bus.JetStreamPublisher
	if config.NATS.URL != "" {
		publisher, err = bus.Connect(ctx, config.jetStreamConfig())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to event bus: %w", err)
		}
		registry.SubscribeAll("jetstream", publisher)
	}

	metrics, err := outbox.NewOTelMetrics(meter)
	if err != nil {
		return nil, err
	}
	queries := db.New(database)
	worker := outbox.NewWorker(queries, registry, config.outboxConfig(),
		outbox.WithClock(clock),
		outbox.WithMetrics(metrics),
	)

	health := outbox.NewHealthChecker(worker, database, queries, outboxHealthThreshold)
	if publisher != nil {
		health = health.WithBroker(publisher)
	}

	log.Info().Strs("event_types", registry.Types()).Msg("outbox handlers registered")

	return &Services{
		Auth:          auth,
		Bids:          biddingApp,
		Chats:         chatApp,
		Notifications: notificationApp,
		Hub:           hub,
		Websocket:     websocket,
		Worker:        worker,
		Closer:        closer,
		Health:        health,
		Publisher:     publisher,
	}, nil
}
