package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/stuproj/projectshelf/internal/config"
	"github.com/stuproj/projectshelf/internal/modules/model"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// New opens the configured database. For sqlite the parent directory of the
// database file is created when missing.
func New(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg.Database)
	if err != nil {
		return nil, err
	}

	d, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := d.DB()
	if err != nil {
		return nil, err
	}
	if isSQLite(cfg.Database.Driver) {
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	} else {
		if cfg.Database.MaxOpen > 0 {
			sqlDB.SetMaxOpenConns(cfg.Database.MaxOpen)
		}
		if cfg.Database.MaxIdle > 0 {
			sqlDB.SetMaxIdleConns(cfg.Database.MaxIdle)
		}
	}

	return d, nil
}

func dialectorFor(c config.DBCfg) (gorm.Dialector, error) {
	switch {
	case isSQLite(c.Driver):
		if path := sqlitePath(c.DSN); path != "" {
			if dir := filepath.Dir(path); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return nil, fmt.Errorf("create database dir: %w", err)
				}
			}
		}
		return sqlite.Open(c.DSN), nil
	case c.Driver == "postgres":
		return postgres.Open(c.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", c.Driver)
	}
}

func isSQLite(driver string) bool {
	return driver == "" || driver == "sqlite" || driver == "sqlite3"
}

// sqlitePath strips the "file:" scheme and query string from a sqlite DSN.
// In-memory databases have no path.
func sqlitePath(dsn string) string {
	p := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	if p == "" || p == ":memory:" {
		return ""
	}
	return p
}

// Migrate creates or updates the tables of every persisted model.
func Migrate(d *gorm.DB) error {
	return d.AutoMigrate(
		&model.Project{},
		&model.HistoryLog{},
	)
}

func RegisterOpenTelemetryPlugin(d *gorm.DB) error {
	return d.Use(tracing.NewPlugin())
}
