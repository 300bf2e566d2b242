package gormstore

import (
	"context"
	"fmt"
	"time"

	targetDomain "github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/target"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/pkg/id"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TargetRepository writes column maps into allow-listed tables.
type TargetRepository struct{ db *gorm.DB }

func NewTargetRepository(db *gorm.DB) *TargetRepository { return &TargetRepository{db: db} }

func (r *TargetRepository) Insert(ctx context.Context, table string, data map[string]any) (string, error) {
	if !targetDomain.Allowed(table) {
		return "", fmt.Errorf("%w: %q", targetDomain.ErrTableNotAllowed, table)
	}
	if err := targetDomain.CheckRowID(data); err != nil {
		return "", err
	}
	row := make(map[string]any, len(data)+3)
	for k, v := range data {
		row[k] = v
	}
	rowID, _ := row["id"].(string)
	if rowID == "" {
		rowID = id.NewID32()
		row["id"] = rowID
	}
	now := time.Now().UTC()
	if _, ok := row["created_at"]; !ok {
		row["created_at"] = now
	}
	row["updated_at"] = now
	if err := r.db.WithContext(ctx).Table(table).Create(row).Error; err != nil {
		return "", err
	}
	return rowID, nil
}

func (r *TargetRepository) Patch(ctx context.Context, table, rowID string, data map[string]any) error {
	if err := r.mustExist(ctx, table, rowID); err != nil {
		return err
	}
	patch := make(map[string]any, len(data)+1)
	for k, v := range data {
		patch[k] = v
	}
	patch["updated_at"] = time.Now().UTC()
	return r.db.WithContext(ctx).Table(table).Where("id = ?", rowID).Updates(patch).Error
}

func (r *TargetRepository) Remove(ctx context.Context, table, rowID string) error {
	if err := r.mustExist(ctx, table, rowID); err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Exec("DELETE FROM ? WHERE id = ?", clause.Table{Name: table}, rowID).Error
}

// mustExist counts instead of trusting RowsAffected, which mysql reports as
// changed rows rather than matched rows.
func (r *TargetRepository) mustExist(ctx context.Context, table, rowID string) error {
	if !targetDomain.Allowed(table) {
		return fmt.Errorf("%w: %q", targetDomain.ErrTableNotAllowed, table)
	}
	var n int64
	if err := r.db.WithContext(ctx).Table(table).Where("id = ?", rowID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s/%s", targetDomain.ErrRowNotFound, table, rowID)
	}
	return nil
}
