package changemock

import (
	"context"

	domain "github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/change"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Writes default to no-ops; reads default to context.Canceled.
type Repo struct {
	CreateFn              func(ctx context.Context, c *domain.PendingChange) error
	GetByIDFn             func(ctx context.Context, id string) (*domain.PendingChange, error)
	ListFn                func(ctx context.Context, f domain.Filter) ([]*domain.PendingChange, error)
	UpdateDraftFn         func(ctx context.Context, id, submittedBy string, p domain.DraftPatch) (int64, error)
	DeleteDraftFn         func(ctx context.Context, id, submittedBy string) error
	DraftIDsFn            func(ctx context.Context, submittedBy string) ([]string, error)
	SubmitDraftsFn        func(ctx context.Context, submittedBy string, ids []string, batchID string) (int64, error)
	FindPendingByIDsFn    func(ctx context.Context, ids []string) ([]*domain.PendingChange, error)
	GetPendingForUpdateFn func(ctx context.Context, id string) (*domain.PendingChange, error)
	ResolveFn             func(ctx context.Context, id string, r domain.Resolution) (int64, error)
}

func (m *Repo) Create(ctx context.Context, c *domain.PendingChange) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, c)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id string) (*domain.PendingChange, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) List(ctx context.Context, f domain.Filter) ([]*domain.PendingChange, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, context.Canceled
}

func (m *Repo) UpdateDraft(ctx context.Context, id, submittedBy string, p domain.DraftPatch) (int64, error) {
	if m.UpdateDraftFn != nil {
		return m.UpdateDraftFn(ctx, id, submittedBy, p)
	}
	return 0, nil
}

func (m *Repo) DeleteDraft(ctx context.Context, id, submittedBy string) error {
	if m.DeleteDraftFn != nil {
		return m.DeleteDraftFn(ctx, id, submittedBy)
	}
	return nil
}

func (m *Repo) DraftIDs(ctx context.Context, submittedBy string) ([]string, error) {
	if m.DraftIDsFn != nil {
		return m.DraftIDsFn(ctx, submittedBy)
	}
	return nil, context.Canceled
}

func (m *Repo) SubmitDrafts(ctx context.Context, submittedBy string, ids []string, batchID string) (int64, error) {
	if m.SubmitDraftsFn != nil {
		return m.SubmitDraftsFn(ctx, submittedBy, ids, batchID)
	}
	return 0, nil
}

func (m *Repo) FindPendingByIDs(ctx context.Context, ids []string) ([]*domain.PendingChange, error) {
	if m.FindPendingByIDsFn != nil {
		return m.FindPendingByIDsFn(ctx, ids)
	}
	return nil, context.Canceled
}

func (m *Repo) GetPendingForUpdate(ctx context.Context, id string) (*domain.PendingChange, error) {
	if m.GetPendingForUpdateFn != nil {
		return m.GetPendingForUpdateFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) Resolve(ctx context.Context, id string, r domain.Resolution) (int64, error) {
	if m.ResolveFn != nil {
		return m.ResolveFn(ctx, id, r)
	}
	return 1, nil
}
