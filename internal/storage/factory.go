// internal/storage/factory.go
package storage

import (
	"fmt"
	"log/slog"

	"github.com/rs/zerolog"

	"github.com/genietools/genie-dat/internal/config"
	"github.com/genietools/genie-dat/internal/storage/memory"
	pebblestorage "github.com/genietools/genie-dat/internal/storage/pebble"
	"github.com/genietools/genie-dat/internal/storage/postgres"
	sqlitestorage "github.com/genietools/genie-dat/internal/storage/sqlite"
)

// Dependencies are shared by all backends. A nil Logger means slog.Default.
type Dependencies struct {
	Logger   *slog.Logger
	DBLogger zerolog.Logger
	DB       config.DBConfig
}

// NewBackend creates a storage backend based on configuration
func NewBackend(cfg config.StorageConfig, deps Dependencies) (Backend, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	switch cfg.Type {
	case "postgres":
		return postgres.New(postgres.Config{
			DB:           deps.DB,
			FallbackPath: cfg.SQLite.DumpPath,
		}, deps.DBLogger, deps.Logger), nil
	case "sqlite":
		return sqlitestorage.New(cfg.SQLite, deps.Logger)
	case "pebble":
		return pebblestorage.New(cfg.Pebble, deps.Logger), nil
	case "memory", "":
		return memory.New(cfg.Memory, deps.Logger), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Type)
	}
}
