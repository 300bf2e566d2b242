package auditmock

import (
	"context"

	domain "github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/audit"
)

var _ domain.Repository = (*Repo)(nil)

// Repo records appended entries unless AppendFn overrides it.
type Repo struct {
	AppendFn     func(ctx context.Context, e *domain.Entry) error
	ListRecentFn func(ctx context.Context, limit int) ([]*domain.Entry, error)

	Appended []*domain.Entry
}

func (m *Repo) Append(ctx context.Context, e *domain.Entry) error {
	if m.AppendFn != nil {
		return m.AppendFn(ctx, e)
	}
	m.Appended = append(m.Appended, e)
	return nil
}

func (m *Repo) ListRecent(ctx context.Context, limit int) ([]*domain.Entry, error) {
	if m.ListRecentFn != nil {
		return m.ListRecentFn(ctx, limit)
	}
	return m.Appended, nil
}
