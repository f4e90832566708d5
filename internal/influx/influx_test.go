package influx

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genietools/genie-dat/internal/config"
	"github.com/genietools/genie-dat/pkg/core"
	"github.com/genietools/genie-dat/pkg/genie"
)

var testMeta = core.ArchiveMeta{
	SourcePath:  "empires2_x2_p1.dat",
	Fingerprint: 0x1234,
	DecodedAt:   time.Unix(1700000000, 0).UTC(),
}

func TestDecodePoint(t *testing.T) {
	tests := []struct {
		name      string
		summary   genie.Summary
		wantTags  []string
		wantNoTag string
	}{
		{
			name:      "complete",
			summary:   genie.Summary{Version: "VER 8.8", Civs: 2, Units: 40},
			wantTags:  []string{"version=VER\\ 8.8", "complete=true", "fingerprint=0000000000001234"},
			wantNoTag: "truncated_at",
		},
		{
			name:     "truncated",
			summary:  genie.Summary{Version: "VER 7.7", TruncatedAt: "civs"},
			wantTags: []string{"complete=false", "truncated_at=civs"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DecodePoint(testMeta, tt.summary, 1500*time.Microsecond)
			line := influxdb2_write.PointToLineProtocol(p, time.Second)

			assert.Equal(t, MeasurementDecodeStats, p.Name())
			for _, tag := range tt.wantTags {
				assert.Contains(t, line, tag)
			}
			if tt.wantNoTag != "" {
				assert.NotContains(t, line, tt.wantNoTag)
			}
			assert.Contains(t, line, "duration_ms=1.5")
			assert.Contains(t, line, " 1700000000\n")
		})
	}
}

func TestConnect_Disabled(t *testing.T) {
	m := NewManager(config.InfluxConfig{Enabled: false}, zerolog.Nop(), "")
	assert.ErrorIs(t, m.Connect(context.Background()), ErrDisabled)
	assert.False(t, m.IsValid)
}

func TestWritePoint_NoWriter(t *testing.T) {
	m := NewManager(config.InfluxConfig{Bucket: "genie_dat"}, zerolog.Nop(), "")
	err := m.WriteDecodeStats(testMeta, genie.Summary{}, time.Millisecond)
	assert.ErrorIs(t, err, ErrNoSink)
}

func TestServerURL(t *testing.T) {
	cfg := config.InfluxConfig{Protocol: "https", Host: "influx.local", Port: "8086"}
	assert.Equal(t, "https://influx.local:8086", ServerURL(cfg))
}

func TestConnect_UnreachableUsesBackup(t *testing.T) {
	backup := filepath.Join(t.TempDir(), "influx_backup.log.gz")
	m := NewManager(config.InfluxConfig{
		Enabled:  true,
		Protocol: "http",
		Host:     "127.0.0.1",
		Port:     "1",
		Org:      "genie-metrics",
		Bucket:   "genie_dat",
	}, zerolog.Nop(), backup)

	require.NoError(t, m.Connect(context.Background()))
	assert.False(t, m.IsValid)
	require.NotNil(t, m.BackupWriter)

	require.NoError(t, m.WriteDecodeStats(testMeta, genie.Summary{Version: "VER 8.8", Civs: 3}, 2*time.Millisecond))
	require.NoError(t, m.Close())

	f, err := os.Open(backup)
	require.NoError(t, err)
	defer f.Close()
	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(zr)
	require.NoError(t, err)

	assert.Contains(t, string(data), "decode_stats,")
	assert.Contains(t, string(data), "civs=3i")
}

func TestConnect_BucketSetupFailureClosesClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ping" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"code":"internal error","message":"org store offline"}`)
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	m := NewManager(config.InfluxConfig{
		Enabled:  true,
		Protocol: u.Scheme,
		Host:     u.Hostname(),
		Port:     u.Port(),
		Org:      "genie-metrics",
		Bucket:   "genie_dat",
	}, zerolog.Nop(), filepath.Join(t.TempDir(), "unused.lp.gz"))

	err = m.Connect(context.Background())
	assert.ErrorContains(t, err, "genie-metrics")
	assert.Nil(t, m.Client)
	assert.False(t, m.IsValid)
	assert.Nil(t, m.BackupWriter)
	assert.NoError(t, m.Close())
}
