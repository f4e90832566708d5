package postgres

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genietools/genie-dat/internal/config"
	"github.com/genietools/genie-dat/pkg/core"
	"github.com/genietools/genie-dat/pkg/genie"
)

// unreachable points at a port nothing listens on, so Init always takes the
// SQLite fallback path.
var unreachable = config.DBConfig{
	Host:     "127.0.0.1",
	Port:     "1",
	Username: "postgres",
	Password: "postgres",
	Database: "genie",
}

func TestNew(t *testing.T) {
	b := New(Config{DB: unreachable}, zerolog.Nop(), nil)
	require.NotNil(t, b)
	assert.NotNil(t, b.log)
	assert.NotNil(t, b.manager)
	assert.False(t, b.Local())
}

func TestInit_FallsBackToSqlite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fallback.db")
	b := New(Config{DB: unreachable, FallbackPath: path}, zerolog.Nop(), nil)

	require.NoError(t, b.Init())
	assert.True(t, b.Local())

	a := &genie.Archive{Version: "VER 8.8", Techs: []genie.Tech{{Name: "Loom"}}}
	require.NoError(t, b.StoreArchive(context.Background(), core.ArchiveMeta{Fingerprint: 3}, a))

	require.NoError(t, b.Close())
	assert.FileExists(t, path)
}
