package uow

import (
	"context"

	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/change"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/target"
)

// Repos are bound to the same transaction.
type Repos struct {
	Changes change.Repository
	Targets target.Repository
}

type UnitOfWork interface {
	// WithinPendingTx locks the pending change first, then passes it in.
	WithinPendingTx(ctx context.Context, changeID string, fn func(r Repos, c *change.PendingChange) error) error
}
