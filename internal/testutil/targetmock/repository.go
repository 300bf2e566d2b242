package targetmock

import (
	"context"

	domain "github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/target"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Only methods you need are included; unfilled ones succeed.
type Repo struct {
	InsertFn func(ctx context.Context, table string, data map[string]any) (string, error)
	PatchFn  func(ctx context.Context, table, id string, data map[string]any) error
	RemoveFn func(ctx context.Context, table, id string) error
}

func (m *Repo) Insert(ctx context.Context, table string, data map[string]any) (string, error) {
	if m.InsertFn != nil {
		return m.InsertFn(ctx, table, data)
	}
	return "", nil
}

func (m *Repo) Patch(ctx context.Context, table, id string, data map[string]any) error {
	if m.PatchFn != nil {
		return m.PatchFn(ctx, table, id, data)
	}
	return nil
}

func (m *Repo) Remove(ctx context.Context, table, id string) error {
	if m.RemoveFn != nil {
		return m.RemoveFn(ctx, table, id)
	}
	return nil
}
