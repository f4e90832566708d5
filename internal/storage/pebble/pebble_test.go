package pebblestorage

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genietools/genie-dat/internal/config"
	"github.com/genietools/genie-dat/pkg/core"
	"github.com/genietools/genie-dat/pkg/genie"
)

func openTestStore(t *testing.T) *Backend {
	t.Helper()
	b := New(config.PebbleConfig{Dir: t.TempDir()}, nil)
	require.NoError(t, b.Init())
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestKey(t *testing.T) {
	assert.Equal(t, "archive/000000000000002a/civs/000003", string(Key("000000000000002a", "civs", 3)))
}

func TestStoreArchive(t *testing.T) {
	b := openTestStore(t)
	meta := core.ArchiveMeta{SourcePath: "empires2.dat", Fingerprint: 42}
	fp := meta.FingerprintHex()

	a := &genie.Archive{
		Version:  "VER 8.8",
		Graphics: []genie.Graphic{{Name: "FLARE"}, {Name: "ARROW"}, {Name: "SMOKE"}},
		Civs: []genie.Civ{
			{Name: "Gaia", Units: []*genie.Unit{{ID: 4, Name: "ARCHR"}, nil}},
		},
		RandomMaps: &genie.RandomMaps{Count: 2},
	}
	require.NoError(t, b.StoreArchive(context.Background(), meta, a))

	n, err := b.Count(fp, "graphics")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = b.Count(fp, "techs")
	require.NoError(t, err)
	assert.Zero(t, n)

	var g genie.Graphic
	require.NoError(t, b.Get(fp, "graphics", 2, &g))
	assert.Equal(t, "SMOKE", g.Name)

	var civ genie.Civ
	require.NoError(t, b.Get(fp, "civs", 0, &civ))
	require.Len(t, civ.Units, 2)
	assert.Equal(t, "ARCHR", civ.Units[0].Name)
	assert.Nil(t, civ.Units[1])

	var rm genie.RandomMaps
	require.NoError(t, b.Get(fp, "random_maps", 0, &rm))
	assert.Equal(t, uint32(2), rm.Count)

	h, err := b.Header(fp)
	require.NoError(t, err)
	assert.Equal(t, "empires2.dat", h.SourcePath)
	assert.Equal(t, "VER 8.8", h.Summary.Version)
	assert.Equal(t, 1, h.Summary.Units)
	assert.Nil(t, h.Truncation)
}

func TestGet_Missing(t *testing.T) {
	b := openTestStore(t)
	var g genie.Graphic
	assert.ErrorIs(t, b.Get("0000000000000000", "graphics", 0, &g), ErrNotFound)
}

func TestStoreArchive_NotOpen(t *testing.T) {
	b := New(config.PebbleConfig{}, nil)
	assert.Error(t, b.StoreArchive(context.Background(), core.ArchiveMeta{}, &genie.Archive{}))
	assert.NoError(t, b.Close())
}

func TestStoreArchive_Cancelled(t *testing.T) {
	b := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, b.StoreArchive(ctx, core.ArchiveMeta{}, &genie.Archive{}), context.Canceled)
}

func TestStoreArchive_NonFiniteFloatsRoundTrip(t *testing.T) {
	b := openTestStore(t)
	meta := core.ArchiveMeta{Fingerprint: 99}
	a := &genie.Archive{
		Version: "VER 8.8",
		Civs:    []genie.Civ{{Name: "Gaia", Resources: []float32{200, float32(math.Inf(1)), float32(math.NaN())}}},
	}
	require.NoError(t, b.StoreArchive(context.Background(), meta, a))

	var civ genie.Civ
	require.NoError(t, b.Get(meta.FingerprintHex(), "civs", 0, &civ))
	require.Len(t, civ.Resources, 3)
	assert.Equal(t, float32(200), civ.Resources[0])
	assert.True(t, math.IsInf(float64(civ.Resources[1]), 1))
	assert.True(t, math.IsNaN(float64(civ.Resources[2])))
}

func TestVerify(t *testing.T) {
	b := openTestStore(t)
	meta := core.ArchiveMeta{Fingerprint: 5}
	stored := &genie.Archive{
		Version:  "VER 8.8",
		Graphics: []genie.Graphic{{Name: "FLARE"}, {Name: "ARROW"}},
		Civs:     []genie.Civ{{Name: "Gaia", Units: []*genie.Unit{nil, {ID: 4, Name: "ARCHR"}}}},
	}
	require.NoError(t, b.StoreArchive(context.Background(), meta, stored))
	require.NoError(t, b.Verify(meta, stored))

	tests := []struct {
		name string
		meta core.ArchiveMeta
		edit func(a *genie.Archive)
		want string
	}{
		{"unknown fingerprint", core.ArchiveMeta{Fingerprint: 6}, func(*genie.Archive) {}, "not found"},
		{"extra graphic", meta, func(a *genie.Archive) { a.Graphics = append(a.Graphics, genie.Graphic{}) }, "stored summary"},
		{"renamed civ", meta, func(a *genie.Archive) { a.Civs[0].Name = "Britons" }, "civ 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := *stored
			a.Graphics = append([]genie.Graphic(nil), stored.Graphics...)
			a.Civs = append([]genie.Civ(nil), stored.Civs...)
			tt.edit(&a)
			assert.ErrorContains(t, b.Verify(tt.meta, &a), tt.want)
		})
	}
}
