package gormstore

import (
	"context"
	"time"

	changeDomain "github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/change"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChangeRepository struct{ db *gorm.DB }

func NewChangeRepository(db *gorm.DB) *ChangeRepository { return &ChangeRepository{db: db} }

func (r *ChangeRepository) Create(ctx context.Context, c *changeDomain.PendingChange) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ChangeRepository) GetByID(ctx context.Context, id string) (*changeDomain.PendingChange, error) {
	var out changeDomain.PendingChange
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *ChangeRepository) List(ctx context.Context, f changeDomain.Filter) ([]*changeDomain.PendingChange, error) {
	var out []*changeDomain.PendingChange
	q := r.db.WithContext(ctx).Model(&changeDomain.PendingChange{})
	if f.SubmittedBy != "" {
		q = q.Where("submitted_by = ?", f.SubmittedBy)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if err := q.Order("created_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ChangeRepository) UpdateDraft(ctx context.Context, id, submittedBy string, p changeDomain.DraftPatch) (int64, error) {
	updates := map[string]any{"updated_at": time.Now().UTC()}
	if p.ChangeType != nil {
		updates["change_type"] = *p.ChangeType
	}
	if p.TargetTable != nil {
		updates["target_table"] = *p.TargetTable
	}
	if p.TargetID != nil {
		if *p.TargetID == "" {
			updates["target_id"] = nil
		} else {
			updates["target_id"] = *p.TargetID
		}
	}
	if p.ChangeData != nil {
		updates["change_data"] = datatypes.JSONMap(p.ChangeData)
	}
	if p.Notes != nil {
		updates["notes"] = *p.Notes
	}
	res := r.db.WithContext(ctx).Model(&changeDomain.PendingChange{}).
		Where("id = ? AND submitted_by = ? AND status = ?", id, submittedBy, changeDomain.StatusDraft).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *ChangeRepository) DeleteDraft(ctx context.Context, id, submittedBy string) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND submitted_by = ? AND status = ?", id, submittedBy, changeDomain.StatusDraft).
		Delete(&changeDomain.PendingChange{}).Error
}

func (r *ChangeRepository) DraftIDs(ctx context.Context, submittedBy string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&changeDomain.PendingChange{}).
		Where("submitted_by = ? AND status = ?", submittedBy, changeDomain.StatusDraft).
		Order("created_at DESC, id DESC").
		Pluck("id", &ids).Error
	return ids, err
}

// SubmitDrafts flips still-draft rows to pending in one conditional statement.
func (r *ChangeRepository) SubmitDrafts(ctx context.Context, submittedBy string, ids []string, batchID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&changeDomain.PendingChange{}).
		Where("id IN ? AND submitted_by = ? AND status = ?", ids, submittedBy, changeDomain.StatusDraft).
		Updates(map[string]any{
			"status":     changeDomain.StatusPending,
			"batch_id":   batchID,
			"updated_at": time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}

func (r *ChangeRepository) FindPendingByIDs(ctx context.Context, ids []string) ([]*changeDomain.PendingChange, error) {
	var out []*changeDomain.PendingChange
	err := r.db.WithContext(ctx).
		Where("id IN ? AND status = ?", ids, changeDomain.StatusPending).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// GetPendingForUpdate locks the row; sqlite ignores the locking clause.
func (r *ChangeRepository) GetPendingForUpdate(ctx context.Context, id string) (*changeDomain.PendingChange, error) {
	var out changeDomain.PendingChange
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND status = ?", id, changeDomain.StatusPending).
		First(&out)
	return &out, res.Error
}

// Resolve writes the terminal status only if the row is still pending.
func (r *ChangeRepository) Resolve(ctx context.Context, id string, rs changeDomain.Resolution) (int64, error) {
	res := r.db.WithContext(ctx).Model(&changeDomain.PendingChange{}).
		Where("id = ? AND status = ?", id, changeDomain.StatusPending).
		Updates(map[string]any{
			"status":       rs.Status,
			"reviewed_by":  rs.ReviewedBy,
			"reviewed_at":  rs.ReviewedAt,
			"review_notes": rs.ReviewNotes,
			"updated_at":   time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}
