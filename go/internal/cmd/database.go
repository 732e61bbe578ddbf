package main

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/mcdev12/auctionhouse/go/internal/db"
	"github.com/mcdev12/auctionhouse/go/internal/dbconfig"
)

func setupDatabase(ctx context.Context, cfg dbconfig.Config) (*sql.DB, db.Dialect, error) {
	dialect := db.Postgres
	if cfg.Driver == dbconfig.DriverSQLite {
		dialect = db.SQLite
	}

	database, err := sql.Open(cfg.Driver, cfg.DSN())
	if err != nil {
		return nil, "", fmt.Errorf("failed to create database connection: %w", err)
	}
	if dialect == db.SQLite {
		// writers serialize on one connection
		database.SetMaxOpenConns(1)
	}

	if err := database.PingContext(ctx); err != nil {
		_ = database.Close()
		return nil, "", fmt.Errorf("failed to ping database: %w", err)
	}

	if err := db.ApplySchema(ctx, database, dialect); err != nil {
		_ = database.Close()
		return nil, "", err
	}

	if dialect == db.SQLite {
		log.Info().Str("path", cfg.SQLitePath).Msg("connected to sqlite database")
	} else {
		log.Info().
			Str("host", cfg.Host).
			Int("port", cfg.Port).
			Str("database", cfg.Database).
			Msg("connected to database")
	}
	return database, dialect, nil
}
