// internal/storage/storage.go
package storage

import (
	"context"
	"errors"

	"github.com/genietools/genie-dat/pkg/core"
	"github.com/genietools/genie-dat/pkg/genie"
)

// ErrUnknownBackend is returned by NewBackend for an unrecognised type.
var ErrUnknownBackend = errors.New("unknown storage type")

// ArchiveMeta describes where a decoded archive came from.
type ArchiveMeta = core.ArchiveMeta

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// StoreArchive persists one decoded archive. Truncated archives are
	// stored as far as they decoded.
	StoreArchive(ctx context.Context, meta ArchiveMeta, a *genie.Archive) error
}

// Uploadable is an optional interface for storage backends that produce
// files suitable for upload to the export server.
type Uploadable interface {
	ExportedFilePath() string
	ExportMetadata() core.UploadMetadata
}

// Verifier is an optional interface for backends that can read an archive
// back after storing it.
type Verifier interface {
	Verify(meta ArchiveMeta, a *genie.Archive) error
}
