package gormstore

import (
	"context"

	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/identity"

	"gorm.io/gorm"
)

type RoleRepository struct{ db *gorm.DB }

func NewRoleRepository(db *gorm.DB) *RoleRepository { return &RoleRepository{db: db} }

func (r *RoleRepository) HasRole(ctx context.Context, userID, role string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&identity.UserRole{}).
		Where("user_id = ? AND role = ?", userID, role).
		Count(&n).Error
	return n > 0, err
}

// Grant is idempotent.
func (r *RoleRepository) Grant(ctx context.Context, userID, role string) error {
	return r.db.WithContext(ctx).
		Where(identity.UserRole{UserID: userID, Role: role}).
		FirstOrCreate(&identity.UserRole{UserID: userID, Role: role}).Error
}
