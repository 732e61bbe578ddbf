package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/mcdev12/auctionhouse/go/internal/db"
	"github.com/mcdev12/auctionhouse/go/internal/dbconfig"
	"github.com/mcdev12/auctionhouse/go/internal/outbox"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	config, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogging(config)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbCfg := dbconfig.NewConfigFromEnv()
	database, dialect, err := setupDatabase(ctx, dbCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up database")
	}
	defer database.Close()

	meterProvider, err := setupMeterProvider(ctx, config.Metrics.OTLPEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up metrics")
	}

	services, err := setupServices(ctx, config, database, meterProvider.Meter(serviceName))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up services")
	}
	if services.Publisher != nil {
		defer services.Publisher.Close()
	}

	if err := services.Worker.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start outbox worker")
	}

	g, gctx := errgroup.WithContext(ctx)

	if dialect == db.Postgres {
		listener, err := outbox.NewListener(services.Worker, config.listenerConfig(dbCfg.PostgresURL()))
		if err != nil {
			// Polling still delivers everything, only later.
			log.Error().Err(err).Msg("outbox listener unavailable, relying on polling")
		} else {
			g.Go(func() error { return listener.Start(gctx) })
		}
	}

	g.Go(func() error {
		services.Closer.Run(gctx)
		return nil
	})

	server := setupServer(config, services)
	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.shutdownTimeout())
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
		}
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("meter provider shutdown failed")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
	}

	if err := services.Worker.Stop(); err != nil {
		log.Error().Err(err).Msg("failed to stop outbox worker")
	}
	log.Info().Msg("shutdown complete")
}

func setupLogging(config *Config) {
	level, err := zerolog.ParseLevel(config.Log.Level)
	if err != nil {
		log.Warn().Str("level", config.Log.Level).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if config.Log.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
