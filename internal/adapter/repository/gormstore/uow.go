package gormstore

import (
	"context"

	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/change"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func (u *GormUoW) WithinPendingTx(ctx context.Context, changeID string, fn func(r uow.Repos, c *change.PendingChange) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		// lock the pending row up-front to prevent double application
		c, err := r.Changes.GetPendingForUpdate(ctx, changeID)
		if err != nil {
			return err
		}
		return fn(r, c)
	})
}

func reposFor(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Changes: &ChangeRepository{db: tx},
		Targets: &TargetRepository{db: tx},
	}
}
