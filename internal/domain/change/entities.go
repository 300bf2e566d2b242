package change

import (
	"time"

	"gorm.io/datatypes"
)

type Status string

const (
	StatusDraft    Status = "draft"
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Terminal reports whether the status is a review outcome.
func (s Status) Terminal() bool { return s == StatusApproved || s == StatusRejected }

// CanTransition allows only draft -> pending -> approved|rejected.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusDraft:
		return to == StatusPending
	case StatusPending:
		return to.Terminal()
	default:
		return false
	}
}

type Type string

const (
	TypeCreate Type = "create"
	TypeUpdate Type = "update"
	TypeDelete Type = "delete"
)

func (t Type) Valid() bool {
	switch t {
	case TypeCreate, TypeUpdate, TypeDelete:
		return true
	}
	return false
}

// NeedsTargetID is true for update and delete.
func (t Type) NeedsTargetID() bool { return t == TypeUpdate || t == TypeDelete }

// Table: pending_changes
type PendingChange struct {
	ID          string            `gorm:"column:id;type:char(32);primaryKey" json:"id"`
	SubmittedBy string            `gorm:"column:submitted_by;size:64;not null;index:idx_pending_changes_submitter_status" json:"submitted_by"`
	ChangeType  Type              `gorm:"column:change_type;size:16;not null" json:"change_type"`
	TargetTable string            `gorm:"column:target_table;size:64;not null" json:"target_table"`
	TargetID    *string           `gorm:"column:target_id;size:64" json:"target_id"`
	ChangeData  datatypes.JSONMap `gorm:"column:change_data" json:"change_data"`
	Status      Status            `gorm:"column:status;size:16;not null;default:'draft';index:idx_pending_changes_submitter_status;index" json:"status"`
	BatchID     *string           `gorm:"column:batch_id;size:36;index" json:"batch_id"`
	Notes       *string           `gorm:"column:notes;type:text" json:"notes"`
	ReviewedBy  *string           `gorm:"column:reviewed_by;size:64" json:"reviewed_by"`
	ReviewedAt  *time.Time        `gorm:"column:reviewed_at" json:"reviewed_at"`
	ReviewNotes *string           `gorm:"column:review_notes;type:text" json:"review_notes"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (PendingChange) TableName() string { return "pending_changes" }

// Resolution is the terminal write for a pending record.
type Resolution struct {
	Status      Status
	ReviewedBy  string
	ReviewedAt  time.Time
	ReviewNotes *string
}

// DraftPatch carries the mutable draft fields; nil means unchanged.
type DraftPatch struct {
	ChangeType  *Type
	TargetTable *string
	TargetID    *string
	ChangeData  map[string]any
	Notes       *string
}

func (p DraftPatch) Empty() bool {
	return p.ChangeType == nil && p.TargetTable == nil && p.TargetID == nil && p.ChangeData == nil && p.Notes == nil
}

// Filter narrows List; zero values are ignored.
type Filter struct {
	SubmittedBy string
	Status      Status
	Limit       int
}
