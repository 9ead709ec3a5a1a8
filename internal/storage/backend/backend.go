// Package backend opens the configured storage.Store implementation.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmynk/myfestival/internal/config"
	"github.com/mmynk/myfestival/internal/storage"
	"github.com/mmynk/myfestival/internal/storage/postgres"
	"github.com/mmynk/myfestival/internal/storage/sqlite"
)

// Open returns the store selected by cfg.Driver. PostgreSQL migrations are
// applied before the pool is opened.
func Open(ctx context.Context, cfg config.Storage) (storage.Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		store, err := sqlite.New(cfg.Path)
		if err != nil {
			return nil, err
		}
		slog.Info("Storage initialized", "driver", cfg.Driver, "database", cfg.Path)
		return store, nil

	case config.DriverPostgres:
		if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
			return nil, err
		}
		store, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		slog.Info("Storage initialized", "driver", cfg.Driver)
		return store, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
