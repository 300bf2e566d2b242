package uowmock

import (
	"context"
	"errors"

	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/change"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinPendingTxFn func(ctx context.Context, changeID string, fn func(r uow.Repos, c *change.PendingChange) error) error
}

// Convenience fluent setters
func New() *UoW { return &UoW{} }
func (m *UoW) WithWithinPendingTx(fn func(context.Context, string, func(uow.Repos, *change.PendingChange) error) error) *UoW {
	m.WithinPendingTxFn = fn
	return m
}
func (m *UoW) Reset() { *m = UoW{} }

// Passthrough runs every callback directly against repos, locking through
// repos.Changes.GetPendingForUpdate like the real implementation.
func Passthrough(repos uow.Repos) *UoW {
	return &UoW{
		WithinPendingTxFn: func(ctx context.Context, changeID string, fn func(r uow.Repos, c *change.PendingChange) error) error {
			c, err := repos.Changes.GetPendingForUpdate(ctx, changeID)
			if err != nil {
				return err
			}
			return fn(repos, c)
		},
	}
}

// Methods implementing UnitOfWork
func (m *UoW) WithinPendingTx(ctx context.Context, changeID string, fn func(r uow.Repos, c *change.PendingChange) error) error {
	if m.WithinPendingTxFn != nil {
		return m.WithinPendingTxFn(ctx, changeID, fn)
	}
	return errUnimplemented
}
