package main

import (
	"fmt"
	"os"
	"time"

	"github.com/kaistout4/ImageGallerySPA/shared/config"
	"github.com/kaistout4/ImageGallerySPA/shared/db"
	"github.com/kaistout4/ImageGallerySPA/shared/db/sqlite"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// loadConfig reads the config and sets up the global logger from it
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if err := setupLogging(cfg.Log); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setupLogging(cfg config.LogConfig) error {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	return nil
}

// openDatabase connects and brings the schema up to date
func openDatabase(cfg config.DatabaseConfig) (db.Database, error) {
	database := sqlite.NewSQLiteDB(&sqlite.SQLiteConfig{Path: cfg.Path})
	if err := database.Connect(); err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.Path, err)
	}
	return database, nil
}
