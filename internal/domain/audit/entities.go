package audit

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ActionApproveChanges = "approve_changes"
	ActionRejectChanges  = "reject_changes"

	TargetPendingChanges = "pending_changes"
)

// Table: audit_logs (append-only)
type Entry struct {
	ID         uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ActorID    string         `gorm:"column:actor_id;size:64;not null;index" json:"actor_id"`
	ActionType string         `gorm:"column:action_type;size:64;not null;index" json:"action_type"`
	TargetType string         `gorm:"column:target_type;size:64;not null" json:"target_type"`
	TargetID   string         `gorm:"column:target_id;type:text" json:"target_id"`
	Details    datatypes.JSON `gorm:"column:details" json:"details"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

func (Entry) TableName() string { return "audit_logs" }
