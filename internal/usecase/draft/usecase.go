package draft

import (
	"context"
	"errors"

	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/change"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/identity"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/pkg/id"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Usecase struct {
	repo           change.Repository
	immutableShape bool
	log            *zap.Logger
}

// NewUsecase: immutableShape freezes change_type and target_table once a draft exists.
func NewUsecase(r change.Repository, immutableShape bool, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{repo: r, immutableShape: immutableShape, log: log}
}

func (u *Usecase) ListMine(ctx context.Context, caller identity.Caller) ([]ChangeDTO, error) {
	if err := caller.RequireActor(); err != nil {
		return nil, err
	}
	cs, err := u.repo.List(ctx, change.Filter{SubmittedBy: caller.ActorID, Status: change.StatusDraft})
	if err != nil {
		return nil, err
	}
	return ToDTOs(cs), nil
}

// Add stores a new draft owned by the caller. target_table is checked at execution time.
func (u *Usecase) Add(ctx context.Context, caller identity.Caller, in AddInput) (*ChangeDTO, error) {
	if err := caller.RequireActor(); err != nil {
		return nil, err
	}
	ct := change.Type(in.ChangeType)
	if !ct.Valid() {
		return nil, &change.ValidationError{Field: "change_type", Message: "must be one of create, update, delete"}
	}
	if in.TargetTable == "" {
		return nil, &change.ValidationError{Field: "target_table", Message: "is required"}
	}
	data := in.ChangeData
	if data == nil {
		data = map[string]any{}
	}

	c := &change.PendingChange{
		ID:          id.NewID32(),
		SubmittedBy: caller.ActorID,
		ChangeType:  ct,
		TargetTable: in.TargetTable,
		TargetID:    nonEmpty(in.TargetID),
		ChangeData:  datatypes.JSONMap(data),
		Status:      change.StatusDraft,
		Notes:       in.Notes,
	}
	if err := u.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	u.log.Info("draft added", zap.String("id", c.ID), zap.String("actor", caller.ActorID),
		zap.String("change_type", string(ct)), zap.String("target_table", c.TargetTable))
	dto := ToDTO(c)
	return &dto, nil
}

func (u *Usecase) Update(ctx context.Context, caller identity.Caller, changeID string, in UpdateInput) (*ChangeDTO, error) {
	if err := caller.RequireActor(); err != nil {
		return nil, err
	}
	patch := change.DraftPatch{
		TargetTable: in.TargetTable,
		TargetID:    in.TargetID,
		ChangeData:  in.ChangeData,
		Notes:       in.Notes,
	}
	if in.ChangeType != nil {
		ct := change.Type(*in.ChangeType)
		if !ct.Valid() {
			return nil, &change.ValidationError{Field: "change_type", Message: "must be one of create, update, delete"}
		}
		patch.ChangeType = &ct
	}
	if in.TargetTable != nil && *in.TargetTable == "" {
		return nil, &change.ValidationError{Field: "target_table", Message: "must not be empty"}
	}
	if patch.Empty() {
		return nil, &change.ValidationError{Field: "body", Message: "no fields to update"}
	}

	cur, err := u.ownedDraft(ctx, caller, changeID)
	if err != nil {
		return nil, err
	}
	if u.immutableShape {
		if (patch.ChangeType != nil && *patch.ChangeType != cur.ChangeType) ||
			(patch.TargetTable != nil && *patch.TargetTable != cur.TargetTable) {
			return nil, change.ErrImmutableField
		}
	}

	n, err := u.repo.UpdateDraft(ctx, changeID, caller.ActorID, patch)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// submitted or deleted between the read and the write
		return nil, change.ErrNotDraft
	}

	updated, err := u.repo.GetByID(ctx, changeID)
	if err != nil {
		return nil, err
	}
	dto := ToDTO(updated)
	return &dto, nil
}

// Delete removes the caller's draft. Deleting a missing draft is not an error.
func (u *Usecase) Delete(ctx context.Context, caller identity.Caller, changeID string) error {
	if err := caller.RequireActor(); err != nil {
		return err
	}
	return u.repo.DeleteDraft(ctx, changeID, caller.ActorID)
}

// Submit moves the given drafts, or all of the caller's drafts when ids is empty,
// to pending under one fresh batch id.
func (u *Usecase) Submit(ctx context.Context, caller identity.Caller, ids []string) (*SubmitResult, error) {
	if err := caller.RequireActor(); err != nil {
		return nil, err
	}
	ids = dedupe(ids)
	if len(ids) == 0 {
		all, err := u.repo.DraftIDs(ctx, caller.ActorID)
		if err != nil {
			return nil, err
		}
		ids = all
	}
	if len(ids) == 0 {
		return nil, change.ErrNoDraftsToSubmit
	}

	batchID := id.NewBatchID()
	n, err := u.repo.SubmitDrafts(ctx, caller.ActorID, ids, batchID)
	if err != nil {
		return nil, err
	}
	u.log.Info("drafts submitted", zap.String("actor", caller.ActorID), zap.String("batch_id", batchID),
		zap.Int("requested", len(ids)), zap.Int64("submitted", n))
	return &SubmitResult{BatchID: batchID, Submitted: n}, nil
}

// ownedDraft hides other actors' rows behind ErrNotFound.
func (u *Usecase) ownedDraft(ctx context.Context, caller identity.Caller, changeID string) (*change.PendingChange, error) {
	c, err := u.repo.GetByID(ctx, changeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, change.ErrNotFound
		}
		return nil, err
	}
	if c.SubmittedBy != caller.ActorID {
		return nil, change.ErrNotFound
	}
	if c.Status != change.StatusDraft {
		return nil, change.ErrNotDraft
	}
	return c, nil
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
