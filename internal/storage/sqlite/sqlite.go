// Package sqlitestorage keeps archive rows in a private in-memory SQLite
// database and snapshots it to DumpPath, on a timer and once more on Close.
package sqlitestorage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"github.com/genietools/genie-dat/internal/config"
	"github.com/genietools/genie-dat/internal/database"
	gormstorage "github.com/genietools/genie-dat/internal/storage/gorm"
)

type Backend struct {
	*gormstorage.Backend
	db  *gorm.DB
	cfg config.SQLiteConfig
	log *slog.Logger

	mu    sync.Mutex // serializes snapshots
	dumps atomic.Int64

	stop      context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

func New(cfg config.SQLiteConfig, logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := database.GetSqliteDB("")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory sqlite: %w", err)
	}
	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{DB: db, Logger: logger}),
		db:      db,
		cfg:     cfg,
		log:     logger.With("backend", "sqlite"),
	}, nil
}

// Init migrates the schema. The snapshot timer only runs when both a path
// and an interval are configured.
func (b *Backend) Init() error {
	if err := b.Backend.Init(); err != nil {
		return err
	}
	if b.cfg.DumpPath == "" || b.cfg.DumpInterval <= 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	b.stop = cancel
	b.done = make(chan struct{})
	go b.snapshotEvery(ctx, b.cfg.DumpInterval)
	return nil
}

// Close stops the timer and writes the final snapshot. Later calls are
// no-ops.
func (b *Backend) Close() error {
	var err error
	b.closeOnce.Do(func() {
		if b.stop != nil {
			b.stop()
			<-b.done
		}
		if b.cfg.DumpPath != "" {
			err = b.Dump()
		}
		if cerr := b.Backend.Close(); err == nil {
			err = cerr
		}
	})
	return err
}

// Dump snapshots the database to DumpPath now.
func (b *Backend) Dump() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := time.Now()
	if err := database.DumpMemoryDBToDisk(b.db, b.cfg.DumpPath); err != nil {
		return err
	}
	n := b.dumps.Add(1)
	b.log.Debug("sqlite snapshot written", "path", b.cfg.DumpPath, "n", n, "took", time.Since(start))
	return nil
}

// Dumps reports how many snapshots have been written.
func (b *Backend) Dumps() int64 {
	return b.dumps.Load()
}

func (b *Backend) snapshotEvery(ctx context.Context, every time.Duration) {
	defer close(b.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := b.Dump(); err != nil {
				b.log.Error("sqlite snapshot failed", "path", b.cfg.DumpPath, "error", err)
			}
		}
	}
}
