package gormstore

import (
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/audit"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/change"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/identity"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/target"

	"gorm.io/gorm"
)

// AutoMigrate creates the review tables and every allow-listed target table.
func AutoMigrate(db *gorm.DB) error {
	models := []any{&change.PendingChange{}, &audit.Entry{}, &identity.UserRole{}}
	models = append(models, target.Models()...)
	return db.AutoMigrate(models...)
}
