package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	"settlement-core/config"
	"settlement-core/migrations"
	"settlement-core/pkg/logger"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/pressly/goose/v3"
)

func main() {
	command := flag.String("command", "up", "goose command: up, down, status, version")
	flag.Parse()

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	db, err := sql.Open("pgx", cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal().Err(err).Msg("Goose: failed to set dialect")
	}

	log.Info().Str("command", *command).Msg("Running database migrations")
	if err := goose.Run(*command, db, "."); err != nil {
		log.Fatal().Err(err).Msg("Goose migration failed")
	}

	log.Info().Msg("Migrations completed successfully")
}
