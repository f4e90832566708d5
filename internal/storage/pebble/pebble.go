// Package pebblestorage keeps decoded archives in a Pebble key-value store.
// Every record is JSON under archive/<fingerprint>/<section>/<index>, with
// the archive header under archive/<fingerprint>/meta.
package pebblestorage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cockroachdb/pebble/v2"

	"github.com/genietools/genie-dat/internal/config"
	"github.com/genietools/genie-dat/internal/jsoncodec"
	"github.com/genietools/genie-dat/pkg/core"
	"github.com/genietools/genie-dat/pkg/genie"
)

// ErrNotFound is returned for keys that are not stored.
var ErrNotFound = errors.New("not found")

// Header is stored under the meta key of each archive.
type Header struct {
	SourcePath string            `json:"sourcePath"`
	DecodedAt  time.Time         `json:"decodedAt"`
	Summary    genie.Summary     `json:"summary"`
	Truncation *genie.Truncation `json:"truncation,omitempty"`
}

// Backend implements storage.Backend on a Pebble database.
type Backend struct {
	cfg config.PebbleConfig
	db  *pebble.DB
	log *slog.Logger
}

// New creates a pebble backend. The store is opened in Init.
func New(cfg config.PebbleConfig, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{cfg: cfg, log: logger}
}

// Init opens (or creates) the store directory.
func (b *Backend) Init() error {
	db, err := pebble.Open(b.cfg.Dir, &pebble.Options{})
	if err != nil {
		return fmt.Errorf("failed to open pebble store %s: %w", b.cfg.Dir, err)
	}
	b.db = db
	return nil
}

// Close flushes and closes the store.
func (b *Backend) Close() error {
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}

func archivePrefix(fp string) string {
	return "archive/" + fp + "/"
}

// Key returns the key of one section record.
func Key(fp, section string, index int) []byte {
	return fmt.Appendf(nil, "%s%s/%06d", archivePrefix(fp), section, index)
}

func metaKey(fp string) []byte {
	return []byte(archivePrefix(fp) + "meta")
}

// StoreArchive writes every record of the archive in a single synced batch.
// Storing the same fingerprint again overwrites it.
func (b *Backend) StoreArchive(ctx context.Context, meta core.ArchiveMeta, a *genie.Archive) error {
	if b.db == nil {
		return fmt.Errorf("pebble store not open")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	fp := meta.FingerprintHex()
	batch := b.db.NewBatch()
	defer batch.Close()

	put := func(key []byte, v any) error {
		data, err := jsoncodec.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", key, err)
		}
		return batch.Set(key, data, nil)
	}

	err := put(metaKey(fp), Header{
		SourcePath: meta.SourcePath,
		DecodedAt:  meta.DecodedAt,
		Summary:    a.Summary(),
		Truncation: a.Truncation,
	})
	if err != nil {
		return err
	}

	for _, s := range sections(a) {
		for i := 0; i < s.n; i++ {
			if err := put(Key(fp, s.name, i), s.item(i)); err != nil {
				return err
			}
		}
	}

	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("failed to commit archive %s: %w", fp, err)
	}
	b.log.Debug("stored archive", "fingerprint", fp, "keys", batch.Count())
	return nil
}

type section struct {
	name string
	n    int
	item func(i int) any
}

func sections(a *genie.Archive) []section {
	out := []section{
		{"terrain_restrictions", len(a.TerrainRestrictions), func(i int) any { return a.TerrainRestrictions[i] }},
		{"player_colours", len(a.PlayerColours), func(i int) any { return a.PlayerColours[i] }},
		{"sounds", len(a.Sounds), func(i int) any { return a.Sounds[i] }},
		{"graphics", len(a.Graphics), func(i int) any { return a.Graphics[i] }},
		{"effects", len(a.Effects), func(i int) any { return a.Effects[i] }},
		{"unit_headers", len(a.UnitHeaders), func(i int) any { return a.UnitHeaders[i] }},
		{"civs", len(a.Civs), func(i int) any { return a.Civs[i] }},
		{"techs", len(a.Techs), func(i int) any { return a.Techs[i] }},
	}
	if a.TerrainBlock != nil {
		out = append(out, section{"terrain_block", 1, func(int) any { return a.TerrainBlock }})
	}
	if a.RandomMaps != nil {
		out = append(out, section{"random_maps", 1, func(int) any { return a.RandomMaps }})
	}
	return out
}

// Get decodes one stored record into v.
func (b *Backend) Get(fp, section string, index int, v any) error {
	return b.get(Key(fp, section, index), v)
}

// Header returns the stored header of an archive.
func (b *Backend) Header(fp string) (Header, error) {
	var h Header
	err := b.get(metaKey(fp), &h)
	return h, err
}

func (b *Backend) get(key []byte, v any) error {
	data, closer, err := b.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err != nil {
		return err
	}
	defer closer.Close()
	return jsoncodec.Unmarshal(data, v)
}

// Verify reads back the header and every section count of a stored
// archive, then decodes the first civ, and reports the first mismatch
// against a.
func (b *Backend) Verify(meta core.ArchiveMeta, a *genie.Archive) error {
	if b.db == nil {
		return fmt.Errorf("pebble store not open")
	}
	fp := meta.FingerprintHex()

	h, err := b.Header(fp)
	if err != nil {
		return err
	}
	if want := a.Summary(); h.Summary != want {
		return fmt.Errorf("%s: stored summary %+v, want %+v", fp, h.Summary, want)
	}
	for _, s := range sections(a) {
		n, err := b.Count(fp, s.name)
		if err != nil {
			return err
		}
		if n != s.n {
			return fmt.Errorf("%s: %d %s records stored, want %d", fp, n, s.name, s.n)
		}
	}
	if len(a.Civs) > 0 {
		var civ genie.Civ
		if err := b.Get(fp, "civs", 0, &civ); err != nil {
			return err
		}
		if civ.Name != a.Civs[0].Name || len(civ.Units) != len(a.Civs[0].Units) {
			return fmt.Errorf("%s: stored civ 0 does not match", fp)
		}
	}
	return nil
}

// Count returns how many records of a section are stored for an archive.
func (b *Backend) Count(fp, section string) (int, error) {
	prefix := []byte(archivePrefix(fp) + section + "/")
	upper := append([]byte(nil), prefix...)
	upper[len(upper)-1]++

	iter, err := b.db.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: upper})
	if err != nil {
		return 0, err
	}
	n := 0
	for iter.First(); iter.Valid(); iter.Next() {
		n++
	}
	return n, iter.Close()
}
