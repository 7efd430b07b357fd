package db

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewTestDB opens a fresh migrated in-memory database for one test.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := Open(DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	if err := Migrate(gdb); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

// NewTestRepo wraps NewTestDB with a quiet logger and a short lock timeout.
func NewTestRepo(t *testing.T) *Repo {
	t.Helper()
	r := NewRepo(NewTestDB(t), zap.NewNop())
	r.LockTimeout = 2 * time.Second
	return r
}
