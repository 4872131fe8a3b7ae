package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mainhusharm/main-launch/internal/config"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const memoryDSN = ":memory:"

// Dialector picks the gorm driver for a database URL. sqlite:///relative,
// sqlite:////absolute and bare file paths use SQLite; postgres:// and
// postgresql:// use PostgreSQL.
func Dialector(url string) (gorm.Dialector, string, error) {
	switch {
	case url == "":
		return nil, "", fmt.Errorf("empty database url")
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return postgres.Open(url), "postgres", nil
	case strings.HasPrefix(url, "sqlite:///"):
		return sqlite.Open(strings.TrimPrefix(url, "sqlite:///")), "sqlite", nil
	case strings.Contains(url, "://"):
		return nil, "", fmt.Errorf("unsupported database url scheme in %q", url)
	default:
		return sqlite.Open(url), "sqlite", nil
	}
}

// Open connects to the configured database with basic pool tuning.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dialector, driver, err := Dialector(cfg.URL)
	if err != nil {
		return nil, err
	}

	if driver == "sqlite" {
		if err := ensureSQLiteDir(dialector.(*sqlite.Dialector).DSN); err != nil {
			return nil, err
		}
	}

	gormLogger := logger.Default
	if !cfg.LogMode {
		gormLogger = gormLogger.LogMode(logger.Silent)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if driver == "sqlite" {
		// a pool of in-memory connections would each see a separate database
		if dialector.(*sqlite.Dialector).DSN == memoryDSN {
			sqlDB.SetMaxOpenConns(1)
		}
		_, _ = sqlDB.Exec("PRAGMA journal_mode = WAL;")
		_, _ = sqlDB.Exec("PRAGMA foreign_keys = ON;")
	}

	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	return sqlDB.Close()
}

func ensureSQLiteDir(dsn string) error {
	if dsn == memoryDSN || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	dir := filepath.Dir(dsn)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}
	return nil
}
