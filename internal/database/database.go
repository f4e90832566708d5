package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/genietools/genie-dat/internal/config"
	"github.com/genietools/genie-dat/internal/model"
)

var (
	ErrNotConnected = errors.New("database not connected")
	ErrNoDumpPath   = errors.New("sqlite dump path not set")
)

// memoryDBs names in-memory databases so each connection gets its own.
var memoryDBs atomic.Uint64

// sqlitePragmas tune the in-memory database for bulk inserts. Durability
// comes from the VACUUM INTO dump, not the journal.
var sqlitePragmas = []string{
	"PRAGMA user_version = 1",
	"PRAGMA journal_mode = MEMORY",
	"PRAGMA synchronous = OFF",
	"PRAGMA cache_size = -32000",
	"PRAGMA temp_store = MEMORY",
	"PRAGMA foreign_keys = ON",
}

// Manager connects to postgres and, when that fails, to an in-memory
// sqlite database that is dumped to SqliteFilePath.
type Manager struct {
	DB              *gorm.DB
	SqlDB           *sql.DB
	IsValid         bool
	ShouldSaveLocal bool // true after a fallback to sqlite
	SqliteFilePath  string
	Logger          zerolog.Logger
}

func NewManager(log zerolog.Logger) *Manager {
	return &Manager{Logger: log}
}

// Connect opens and pings postgres, falling back to sqlite on any error.
// It only fails when the fallback fails too.
func (m *Manager) Connect(cfg config.DBConfig) error {
	db, err := GetPostgresDB(cfg)
	if err == nil {
		err = m.use(db)
	}
	if err == nil {
		err = m.SqlDB.Ping()
	}
	if err != nil {
		m.Logger.Error().Err(err).Str("host", cfg.Host).Msg("Postgres unavailable, falling back to SQLite")
		return m.fallbackToSqlite()
	}

	m.SqlDB.SetMaxOpenConns(10)
	m.Logger.Info().Str("host", cfg.Host).Str("database", cfg.Database).Msg("Connected to Postgres")
	return nil
}

func (m *Manager) fallbackToSqlite() error {
	m.ShouldSaveLocal = true
	db, err := GetSqliteDB("")
	if err == nil {
		err = m.use(db)
	}
	if err != nil {
		return fmt.Errorf("opening fallback SQLite DB: %w", err)
	}
	m.Logger.Info().Msg("Using in-memory SQLite DB, dumped to disk on close")
	return nil
}

// use adopts db and marks the manager valid when its pool is reachable.
func (m *Manager) use(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		m.IsValid = false
		return fmt.Errorf("accessing sql interface: %w", err)
	}
	m.DB, m.SqlDB, m.IsValid = db, sqlDB, true
	return nil
}

// Setup migrates all archive tables.
func (m *Manager) Setup() error {
	if m.DB == nil {
		return ErrNotConnected
	}
	start := time.Now()
	if err := Migrate(m.DB); err != nil {
		m.IsValid = false
		return err
	}
	m.Logger.Info().Str("dialect", m.DB.Dialector.Name()).Dur("took", time.Since(start)).Msg("Schema migrated")
	return nil
}

// DumpMemoryToDisk vacuums the in-memory database to SqliteFilePath.
func (m *Manager) DumpMemoryToDisk() error {
	if m.DB == nil {
		return ErrNotConnected
	}
	start := time.Now()
	if err := DumpMemoryDBToDisk(m.DB, m.SqliteFilePath); err != nil {
		return err
	}
	m.Logger.Debug().Str("path", m.SqliteFilePath).Dur("took", time.Since(start)).Msg("Dumped memory DB to disk")
	return nil
}

func (m *Manager) Close() error {
	if m.SqlDB == nil {
		return nil
	}
	m.IsValid = false
	return m.SqlDB.Close()
}

// Migrate creates or updates the archive tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

// PostgresDSN renders cfg as a key/value connection string.
func PostgresDSN(cfg config.DBConfig) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Database)
}

func gormConfig(batchSize int, prepare bool) *gorm.Config {
	return &gorm.Config{
		PrepareStmt:            prepare,
		SkipDefaultTransaction: true,
		CreateBatchSize:        batchSize,
		Logger:                 logger.Default.LogMode(logger.Silent),
	}
}

// GetPostgresDB opens postgres without checking that it answers.
func GetPostgresDB(cfg config.DBConfig) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  PostgresDSN(cfg),
		PreferSimpleProtocol: true,
	}), gormConfig(10000, false))
}

// GetSqliteDB opens the sqlite file at path, or a fresh private in-memory
// database when path is empty.
func GetSqliteDB(path string) (*gorm.DB, error) {
	dsn := path
	if dsn == "" {
		dsn = fmt.Sprintf("file:genie_mem_%d?mode=memory&cache=shared", memoryDBs.Add(1))
	}

	db, err := gorm.Open(sqlite.Open(dsn), gormConfig(2000, true))
	if err != nil {
		return nil, err
	}
	for _, pragma := range sqlitePragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("setting %q: %w", pragma, err)
		}
	}
	return db, nil
}

// DumpMemoryDBToDisk vacuums db into a temporary file next to path and
// renames it into place, so an interrupted dump never leaves a torn file.
func DumpMemoryDBToDisk(db *gorm.DB, path string) error {
	if path == "" {
		return ErrNoDumpPath
	}

	tmp := path + ".tmp"
	if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stale dump: %w", err)
	}
	if err := db.Exec("VACUUM INTO ?", tmp).Error; err != nil {
		return fmt.Errorf("dumping memory DB to disk: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
