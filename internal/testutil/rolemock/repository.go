package rolemock

import (
	"context"

	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/identity"
)

var _ identity.RoleRepository = (*Repo)(nil)

type Repo struct {
	HasRoleFn func(ctx context.Context, userID, role string) (bool, error)
}

func (m *Repo) HasRole(ctx context.Context, userID, role string) (bool, error) {
	if m.HasRoleFn != nil {
		return m.HasRoleFn(ctx, userID, role)
	}
	return false, nil
}

// Admins returns a Repo that grants the admin role to the listed users only.
func Admins(userIDs ...string) *Repo {
	set := make(map[string]bool, len(userIDs))
	for _, u := range userIDs {
		set[u] = true
	}
	return &Repo{HasRoleFn: func(_ context.Context, userID, role string) (bool, error) {
		return role == identity.RoleAdmin && set[userID], nil
	}}
}
