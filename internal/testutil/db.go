package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stuproj/projectshelf/internal/config"
	"github.com/stuproj/projectshelf/internal/infra/db"
	"gorm.io/gorm"
)

// NewTestDB opens a migrated sqlite database in a per-test temp directory.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := &config.Config{Database: config.DBCfg{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "data", "test.db"),
	}}
	d, err := db.New(cfg)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.Migrate(d); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, err := d.DB()
		if err != nil {
			return
		}
		if err := sqlDB.Close(); err != nil {
			t.Logf("Warning: failed to close test database: %v", err)
		}
	})

	return d
}
