// internal/storage/memory/memory.go
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/genietools/genie-dat/internal/config"
	"github.com/genietools/genie-dat/pkg/core"
	"github.com/genietools/genie-dat/pkg/genie"
)

// Backend keeps the summaries of stored archives in memory and writes one
// export document per archive.
type Backend struct {
	cfg config.MemoryConfig
	log *slog.Logger

	summaries      map[string]genie.Summary // keyed by fingerprint
	lastExportPath string
	lastMeta       core.UploadMetadata

	mu sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		cfg:       cfg,
		log:       logger,
		summaries: make(map[string]genie.Summary),
	}
}

// Init ensures the output directory exists.
func (b *Backend) Init() error {
	if b.cfg.OutputDir == "" {
		return nil
	}
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StoreArchive writes the export document for a and records its summary.
func (b *Backend) StoreArchive(ctx context.Context, meta core.ArchiveMeta, a *genie.Archive) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	export := BuildExport(meta, a)
	outputPath := filepath.Join(b.cfg.OutputDir, b.exportName(meta))

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.Init(); err != nil {
		return err
	}
	if err := b.writeExport(outputPath, export); err != nil {
		return fmt.Errorf("failed to write export %s: %w", outputPath, err)
	}

	b.summaries[export.Fingerprint] = export.Summary
	b.lastExportPath = outputPath
	b.lastMeta = core.UploadMetadata{
		FileName:    filepath.Base(outputPath),
		Version:     a.Version,
		Fingerprint: export.Fingerprint,
		Complete:    export.Complete,
		Civs:        export.Summary.Civs,
		Units:       export.Summary.Units,
	}

	b.log.Info("archive exported", "path", outputPath, "version", a.Version, "complete", export.Complete)
	return nil
}

// Summary returns the summary of a stored archive by hex fingerprint.
func (b *Backend) Summary(fingerprint string) (genie.Summary, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.summaries[fingerprint]
	return s, ok
}

// Len returns the number of distinct archives stored.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.summaries)
}

// ExportedFilePath returns the path of the most recent export, or "" if
// nothing was exported yet.
func (b *Backend) ExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

// ExportMetadata returns upload metadata for the most recent export.
func (b *Backend) ExportMetadata() core.UploadMetadata {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastMeta
}
