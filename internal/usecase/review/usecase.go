package review

import (
	"context"

	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/audit"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/change"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/identity"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/usecase/draft"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/usecase/executor"
)

// RecentLimit caps ListAll.
const RecentLimit = 200

// Executor is satisfied by *executor.Executor.
type Executor interface {
	Execute(ctx context.Context, caller identity.Caller, in executor.Input) (*executor.Result, error)
}

type Usecase struct {
	repo   change.Repository
	exec   Executor
	audits audit.Repository
}

func NewUsecase(r change.Repository, exec Executor, audits audit.Repository) *Usecase {
	return &Usecase{repo: r, exec: exec, audits: audits}
}

func (u *Usecase) ListPending(ctx context.Context, caller identity.Caller) ([]draft.ChangeDTO, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	cs, err := u.repo.List(ctx, change.Filter{Status: change.StatusPending})
	if err != nil {
		return nil, err
	}
	return draft.ToDTOs(cs), nil
}

// ListAll returns the most recent records in every status.
func (u *Usecase) ListAll(ctx context.Context, caller identity.Caller) ([]draft.ChangeDTO, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	cs, err := u.repo.List(ctx, change.Filter{Limit: RecentLimit})
	if err != nil {
		return nil, err
	}
	return draft.ToDTOs(cs), nil
}

// ListAudit returns the most recent executor audit entries, newest first.
func (u *Usecase) ListAudit(ctx context.Context, caller identity.Caller) ([]*audit.Entry, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	out, err := u.audits.ListRecent(ctx, RecentLimit)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*audit.Entry{}
	}
	return out, nil
}

func (u *Usecase) Approve(ctx context.Context, caller identity.Caller, ids []string, notes *string) (*executor.Result, error) {
	return u.decide(ctx, caller, executor.ActionApprove, ids, notes)
}

func (u *Usecase) Reject(ctx context.Context, caller identity.Caller, ids []string, notes *string) (*executor.Result, error) {
	return u.decide(ctx, caller, executor.ActionReject, ids, notes)
}

// Review dispatches on a raw action value; the executor validates it.
func (u *Usecase) Review(ctx context.Context, caller identity.Caller, in executor.Input) (*executor.Result, error) {
	return u.decide(ctx, caller, in.Action, in.ChangeIDs, in.ReviewNotes)
}

// decide gates on the presented token roles; the executor re-checks against the store.
func (u *Usecase) decide(ctx context.Context, caller identity.Caller, action executor.Action, ids []string, notes *string) (*executor.Result, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	return u.exec.Execute(ctx, caller, executor.Input{ChangeIDs: ids, Action: action, ReviewNotes: notes})
}
