package gormstore

import (
	"testing"
	"time"

	changeDomain "github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/change"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/pkg/id"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openTestDB creates an in-memory sqlite DB with every table migrated.
// A single connection keeps ":memory:" shared across the pool.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func makeChange(submittedBy string, status changeDomain.Status, created time.Time) *changeDomain.PendingChange {
	return &changeDomain.PendingChange{
		ID:          id.NewID32(),
		SubmittedBy: submittedBy,
		ChangeType:  changeDomain.TypeCreate,
		TargetTable: "notes",
		ChangeData:  map[string]any{"title": "hello"},
		Status:      status,
		CreatedAt:   created,
	}
}
