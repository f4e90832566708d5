// Package core holds the plain records shared by storage backends and the
// upload client.
package core

import (
	"fmt"
	"time"
)

// ArchiveMeta describes where a decoded archive came from.
type ArchiveMeta struct {
	SourcePath  string
	Fingerprint uint64
	DecodedAt   time.Time
}

// FingerprintHex renders the fingerprint the way it appears in file names
// and storage keys.
func (m ArchiveMeta) FingerprintHex() string {
	return fmt.Sprintf("%016x", m.Fingerprint)
}

// UploadMetadata accompanies an exported archive document on upload.
type UploadMetadata struct {
	FileName    string
	Version     string
	Fingerprint string
	Complete    bool
	Civs        int
	Units       int
}
