package influx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"

	"github.com/genietools/genie-dat/internal/config"
	"github.com/genietools/genie-dat/pkg/core"
	"github.com/genietools/genie-dat/pkg/genie"
)

// MeasurementDecodeStats is the measurement written once per decoded archive.
const MeasurementDecodeStats = "decode_stats"

const retention = 90 * 24 * time.Hour

var (
	// ErrDisabled is returned by Connect when influx is not enabled.
	ErrDisabled = errors.New("influx.enabled is false")
	ErrNoSink   = errors.New("influx not connected and no backup file open")
)

// Manager writes decode statistics to one InfluxDB bucket. When the server
// does not answer, points are appended as line protocol to a gzipped
// backup file instead.
type Manager struct {
	Client       influxdb2.Client
	Writer       influxdb2_api.WriteAPI
	BackupWriter *gzip.Writer
	BackupPath   string
	IsValid      bool
	Logger       zerolog.Logger

	cfg        config.InfluxConfig
	backupFile *os.File
}

func NewManager(cfg config.InfluxConfig, log zerolog.Logger, backupPath string) *Manager {
	return &Manager{cfg: cfg, Logger: log, BackupPath: backupPath}
}

// ServerURL joins the configured protocol, host and port.
func ServerURL(cfg config.InfluxConfig) string {
	return fmt.Sprintf("%s://%s:%s", cfg.Protocol, cfg.Host, cfg.Port)
}

// Connect pings the server and prepares the bucket. An unreachable server
// is not an error; the manager switches to the backup file.
func (m *Manager) Connect(ctx context.Context) error {
	if !m.cfg.Enabled {
		return ErrDisabled
	}

	opts := influxdb2.DefaultOptions().SetBatchSize(2500).SetFlushInterval(1000)
	m.Client = influxdb2.NewClientWithOptions(ServerURL(m.cfg), m.cfg.Token, opts)

	if up, err := m.Client.Ping(ctx); err != nil || !up {
		m.IsValid = false
		m.Logger.Warn().Err(err).Str("url", ServerURL(m.cfg)).Str("backup", m.BackupPath).
			Msg("InfluxDB unreachable, writing line protocol to backup")
		return m.openBackup()
	}

	if err := m.ensureBucket(ctx); err != nil {
		m.Client.Close()
		m.Client = nil
		return err
	}
	m.Writer = m.Client.WriteAPI(m.cfg.Org, m.cfg.Bucket)
	go m.drainErrors(m.Writer.Errors())

	m.IsValid = true
	m.Logger.Info().Str("bucket", m.cfg.Bucket).Msg("InfluxDB ready")
	return nil
}

func (m *Manager) openBackup() error {
	if m.BackupWriter != nil {
		return nil
	}
	f, err := os.OpenFile(m.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening influx backup: %w", err)
	}
	m.backupFile = f
	m.BackupWriter = gzip.NewWriter(f)
	return nil
}

// ensureBucket creates the org and bucket on first use.
func (m *Manager) ensureBucket(ctx context.Context) error {
	orgs := m.Client.OrganizationsAPI()
	org, err := orgs.FindOrganizationByName(ctx, m.cfg.Org)
	if err != nil {
		m.Logger.Info().Str("org", m.cfg.Org).Msg("Creating InfluxDB organization")
		if org, err = orgs.CreateOrganizationWithName(ctx, m.cfg.Org); err != nil {
			return fmt.Errorf("creating org %q: %w", m.cfg.Org, err)
		}
	}

	buckets := m.Client.BucketsAPI()
	if _, err := buckets.FindBucketByName(ctx, m.cfg.Bucket); err == nil {
		return nil
	}
	m.Logger.Info().Str("bucket", m.cfg.Bucket).Dur("retention", retention).Msg("Creating InfluxDB bucket")
	expire := domain.RetentionRuleTypeExpire
	rule := domain.RetentionRule{Type: &expire, EverySeconds: int64(retention / time.Second)}
	if _, err := buckets.CreateBucketWithName(ctx, org, m.cfg.Bucket, rule); err != nil {
		return fmt.Errorf("creating bucket %q: %w", m.cfg.Bucket, err)
	}
	return nil
}

func (m *Manager) drainErrors(errs <-chan error) {
	for err := range errs {
		m.Logger.Error().Err(err).Str("bucket", m.cfg.Bucket).Msg("InfluxDB write failed")
	}
}

// WritePoint queues point on the server or appends it to the backup.
func (m *Manager) WritePoint(point *influxdb2_write.Point) error {
	switch {
	case m.IsValid && m.Writer != nil:
		m.Writer.WritePoint(point)
		return nil
	case m.BackupWriter != nil:
		line := influxdb2_write.PointToLineProtocol(point, time.Nanosecond)
		if _, err := m.BackupWriter.Write([]byte(line)); err != nil {
			return fmt.Errorf("writing influx backup: %w", err)
		}
		return nil
	default:
		return ErrNoSink
	}
}

func (m *Manager) WriteDecodeStats(meta core.ArchiveMeta, s genie.Summary, took time.Duration) error {
	return m.WritePoint(DecodePoint(meta, s, took))
}

// Close flushes queued points, then closes the client and the backup file.
func (m *Manager) Close() error {
	if m.Writer != nil {
		m.Writer.Flush()
	}
	if m.Client != nil {
		m.Client.Close()
	}

	var err error
	if m.BackupWriter != nil {
		err = errors.Join(err, m.BackupWriter.Close())
		m.BackupWriter = nil
	}
	if m.backupFile != nil {
		err = errors.Join(err, m.backupFile.Close())
		m.backupFile = nil
	}
	return err
}

// DecodePoint builds the decode_stats point for one archive. Truncated
// archives carry the failing section as a tag.
func DecodePoint(meta core.ArchiveMeta, s genie.Summary, took time.Duration) *influxdb2_write.Point {
	complete := s.TruncatedAt == ""
	tags := map[string]string{
		"version":     s.Version,
		"fingerprint": meta.FingerprintHex(),
		"complete":    strconv.FormatBool(complete),
	}
	if !complete {
		tags["truncated_at"] = s.TruncatedAt
	}
	fields := map[string]interface{}{
		"duration_ms": float64(took.Microseconds()) / 1000,
		"debug_pos":   s.DebugPos,
		"sounds":      s.Sounds,
		"graphics":    s.Graphics,
		"terrains":    s.Terrains,
		"effects":     s.Effects,
		"civs":        s.Civs,
		"units":       s.Units,
		"techs":       s.Techs,
	}
	return influxdb2.NewPoint(MeasurementDecodeStats, tags, fields, meta.DecodedAt)
}
