package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"wallet-ledger-service/config"
	"wallet-ledger-service/pkg/logger"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Applies pending SQL migrations from the configured migrations directory.
// Run with "down" as the first argument to roll back one step.
func main() {
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

	driver, err := postgres.WithInstance(db, &postgres.Config{
		DatabaseName: cfg.Database.DBName,
		SchemaName:   "public",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create migration driver")
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+cfg.Database.MigrationsDir, cfg.Database.DBName, driver)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create migration instance")
	}

	if len(os.Args) > 1 && os.Args[1] == "down" {
		if err := m.Steps(-1); err != nil {
			log.Fatal().Err(err).Msg("Rollback failed")
		}
		log.Info().Msg("Rolled back one migration")
		return
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info().Msg("No new migrations to apply")
			return
		}
		var dirty migrate.ErrDirty
		if errors.As(err, &dirty) {
			log.Fatal().Int("version", dirty.Version).Msg("Migration failed: database is dirty")
		}
		log.Fatal().Err(err).Msg("Migration failed")
	}

	version, _, err := m.Version()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read migration version")
	}
	log.Info().Uint("version", uint(version)).Msg("Migrations applied")
}
