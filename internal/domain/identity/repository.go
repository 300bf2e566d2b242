package identity

import "context"

// Table: user_roles
type UserRole struct {
	UserID string `gorm:"column:user_id;size:64;primaryKey"`
	Role   string `gorm:"column:role;size:32;primaryKey"`
}

func (UserRole) TableName() string { return "user_roles" }

// RoleRepository is the server-side source of truth for capabilities.
type RoleRepository interface {
	HasRole(ctx context.Context, userID, role string) (bool, error)
}
