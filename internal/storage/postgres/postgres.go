// Package postgres implements the storage.Backend interface using GORM/PostgreSQL.
// When the server cannot be reached it keeps rows in an in-memory SQLite
// database and dumps them to FallbackPath on Close.
package postgres

import (
	"fmt"
	"log/slog"

	"github.com/rs/zerolog"

	"github.com/genietools/genie-dat/internal/config"
	"github.com/genietools/genie-dat/internal/database"
	gormstorage "github.com/genietools/genie-dat/internal/storage/gorm"
)

// Config holds configuration for the postgres storage backend.
type Config struct {
	DB           config.DBConfig
	FallbackPath string // Path for the SQLite dump when postgres is unreachable
}

// Backend implements storage.Backend using GORM/PostgreSQL.
type Backend struct {
	*gormstorage.Backend
	cfg     Config
	manager *database.Manager
	log     *slog.Logger
}

// New creates a postgres backend. The connection is opened in Init.
func New(cfg Config, dbLogger zerolog.Logger, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		cfg:     cfg,
		manager: database.NewManager(dbLogger),
		log:     logger,
	}
}

// Init connects, runs schema migration and prepares the GORM backend.
func (b *Backend) Init() error {
	if err := b.manager.Connect(b.cfg.DB); err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if b.manager.ShouldSaveLocal {
		b.log.Warn("postgres unreachable, keeping archives in memory",
			"host", b.cfg.DB.Host,
			"fallback", b.cfg.FallbackPath,
		)
		b.manager.SqliteFilePath = b.cfg.FallbackPath
	}

	b.Backend = gormstorage.New(gormstorage.Dependencies{
		DB:     b.manager.DB,
		Logger: b.log,
	})
	return b.Backend.Init()
}

// Local reports whether rows are going to the SQLite fallback.
func (b *Backend) Local() bool {
	return b.manager.ShouldSaveLocal
}

// Close dumps the fallback database when one is in use and releases the
// connection.
func (b *Backend) Close() error {
	if b.manager.ShouldSaveLocal && b.manager.SqliteFilePath != "" {
		if err := b.manager.DumpMemoryToDisk(); err != nil {
			b.log.Error("failed to dump fallback database", "error", err)
		}
	}
	return b.manager.Close()
}
