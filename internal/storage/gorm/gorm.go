// Package gormstorage stores decoded archives as relational rows through
// GORM. The sqlite and postgres backends embed it and only differ in how
// they open the database.
package gormstorage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/genietools/genie-dat/internal/database"
	"github.com/genietools/genie-dat/internal/model"
	"github.com/genietools/genie-dat/internal/model/convert"
	"github.com/genietools/genie-dat/pkg/core"
	"github.com/genietools/genie-dat/pkg/genie"
)

// ErrNoDatabase is returned when the backend is used without a connection.
var ErrNoDatabase = errors.New("no database connection")

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB     *gorm.DB
	Logger *slog.Logger
}

// Backend implements storage.Backend on top of a GORM connection.
type Backend struct {
	deps    Dependencies
	dbReady bool
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Backend{
		deps: deps,
	}
}

// Init runs schema migration.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return ErrNoDatabase
	}
	b.deps.Logger.Info("migrating schema", "dialect", b.deps.DB.Dialector.Name())
	if err := database.Migrate(b.deps.DB); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}
	b.dbReady = true
	return nil
}

// Close is a no-op; the connection belongs to whoever opened it.
func (b *Backend) Close() error {
	return nil
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// StoreArchive inserts the archive and all its child rows in one
// transaction. An archive whose fingerprint is already stored is skipped.
func (b *Backend) StoreArchive(ctx context.Context, meta core.ArchiveMeta, a *genie.Archive) error {
	if !b.dbReady {
		return ErrNoDatabase
	}

	fp := meta.FingerprintHex()
	exists, err := b.Exists(ctx, fp)
	if err != nil {
		return err
	}
	if exists {
		b.deps.Logger.Info("archive already stored", "fingerprint", fp, "path", meta.SourcePath)
		return nil
	}

	rec, err := convert.ToArchiveRecord(meta, a)
	if err != nil {
		return fmt.Errorf("converting archive %s: %w", fp, err)
	}
	err = b.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rec).Error
	})
	if err != nil {
		return fmt.Errorf("failed to store archive %s: %w", fp, err)
	}

	b.deps.Logger.Debug("stored archive",
		"fingerprint", fp,
		"archiveId", rec.ID,
		"civs", len(rec.Civs),
		"units", len(rec.Units),
	)
	return nil
}

// Exists reports whether an archive with the given hex fingerprint is stored.
func (b *Backend) Exists(ctx context.Context, fingerprint string) (bool, error) {
	var n int64
	err := b.deps.DB.WithContext(ctx).
		Model(&model.ArchiveRecord{}).
		Where("fingerprint = ?", fingerprint).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to look up archive %s: %w", fingerprint, err)
	}
	return n > 0, nil
}
