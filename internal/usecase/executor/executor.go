package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/audit"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/change"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/identity"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/target"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/uow"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrInvalidInput covers malformed requests; nothing is touched when it is returned.
var ErrInvalidInput = errors.New("invalid input")

// Executor applies or rejects pending changes one record at a time.
type Executor struct {
	uow     uow.UnitOfWork
	changes change.Repository
	roles   identity.RoleRepository
	audit   audit.Repository
	log     *zap.Logger
	now     func() time.Time
}

func New(tx uow.UnitOfWork, changes change.Repository, roles identity.RoleRepository, auditRepo audit.Repository, log *zap.Logger) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{uow: tx, changes: changes, roles: roles, audit: auditRepo, log: log, now: time.Now}
}

// Execute re-checks the caller's admin role against the store, then resolves every
// still-pending record in ids. Records resolved concurrently are left out of the results.
// The call is detached from ctx cancellation: every loaded record ends approved or
// rejected and the audit entry is written even if the client goes away.
func (e *Executor) Execute(ctx context.Context, caller identity.Caller, in Input) (*Result, error) {
	ctx = context.WithoutCancel(ctx)
	if err := caller.RequireActor(); err != nil {
		return nil, err
	}
	ok, err := e.roles.HasRole(ctx, caller.ActorID, identity.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("check admin role: %w", err)
	}
	if !ok {
		return nil, identity.ErrForbidden
	}

	ids := dedupe(in.ChangeIDs)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: changeIds must be a non-empty array", ErrInvalidInput)
	}
	if !in.Action.Valid() {
		return nil, fmt.Errorf("%w: action must be approve or reject", ErrInvalidInput)
	}

	pending, err := e.changes.FindPendingByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, change.ErrNotFound
	}

	res := &Result{Results: make([]RecordResult, 0, len(pending))}
	for _, c := range pending {
		rr, skipped := e.process(ctx, caller.ActorID, c.ID, in.Action, in.ReviewNotes)
		if skipped {
			continue
		}
		res.Results = append(res.Results, rr)
		if rr.Success {
			res.SuccessCount++
		} else {
			res.FailureCount++
		}
	}
	res.Success = res.FailureCount == 0
	res.Message = summary(in.Action, res.SuccessCount, res.FailureCount)

	e.record(ctx, caller.ActorID, ids, in, res)
	return res, nil
}

// process runs one record in its own transaction: lock the pending row, apply the
// mutation, flip the status. On failure the record is rejected in a second write.
func (e *Executor) process(ctx context.Context, actor, changeID string, action Action, notes *string) (RecordResult, bool) {
	reviewedAt := e.now().UTC()
	status := change.StatusApproved
	if action == ActionReject {
		status = change.StatusRejected
	}

	err := e.uow.WithinPendingTx(ctx, changeID, func(r uow.Repos, c *change.PendingChange) error {
		if action == ActionApprove {
			if err := apply(ctx, r.Targets, c); err != nil {
				return err
			}
		}
		n, err := r.Changes.Resolve(ctx, c.ID, change.Resolution{
			Status:      status,
			ReviewedBy:  actor,
			ReviewedAt:  reviewedAt,
			ReviewNotes: notes,
		})
		if err != nil {
			return err
		}
		if n == 0 {
			return change.ErrAlreadyResolved
		}
		return nil
	})

	switch {
	case err == nil:
		return RecordResult{ID: changeID, Success: true}, false
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, change.ErrAlreadyResolved):
		e.log.Info("pending change resolved concurrently, skipping", zap.String("id", changeID))
		return RecordResult{}, true
	}

	e.log.Warn("pending change failed", zap.String("id", changeID), zap.String("action", string(action)), zap.Error(err))
	n, ferr := e.changes.Resolve(ctx, changeID, change.Resolution{
		Status:      change.StatusRejected,
		ReviewedBy:  actor,
		ReviewedAt:  reviewedAt,
		ReviewNotes: foldError(notes, err),
	})
	if ferr != nil {
		e.log.Error("mark failed change rejected", zap.String("id", changeID), zap.Error(ferr))
	} else if n == 0 {
		return RecordResult{}, true
	}
	return RecordResult{ID: changeID, Success: false, Error: err.Error()}, false
}

// apply dispatches the change against its target table after checking the
// table allow-list and column schema.
func apply(ctx context.Context, targets target.Repository, c *change.PendingChange) error {
	schema, err := target.Lookup(c.TargetTable)
	if err != nil {
		return err
	}
	data := map[string]any(c.ChangeData)
	targetID := ""
	if c.TargetID != nil {
		targetID = *c.TargetID
	}

	switch c.ChangeType {
	case change.TypeCreate:
		if len(data) == 0 {
			return target.ErrEmptyData
		}
		if err := schema.CheckColumns(data); err != nil {
			return err
		}
		if err := target.CheckRowID(data); err != nil {
			return err
		}
		_, err := targets.Insert(ctx, c.TargetTable, data)
		return err
	case change.TypeUpdate:
		if targetID == "" {
			return change.ErrMissingTargetID
		}
		if len(data) == 0 {
			return target.ErrEmptyData
		}
		if _, ok := data["id"]; ok {
			return fmt.Errorf("%w %q: primary key cannot be updated", target.ErrUnknownColumn, "id")
		}
		if err := schema.CheckColumns(data); err != nil {
			return err
		}
		return targets.Patch(ctx, c.TargetTable, targetID, data)
	case change.TypeDelete:
		if targetID == "" {
			return change.ErrMissingTargetID
		}
		return targets.Remove(ctx, c.TargetTable, targetID)
	default:
		return fmt.Errorf("%w: %q", change.ErrUnknownType, c.ChangeType)
	}
}

// record appends one audit entry per call; failures are logged only.
func (e *Executor) record(ctx context.Context, actor string, ids []string, in Input, res *Result) {
	action := audit.ActionApproveChanges
	if in.Action == ActionReject {
		action = audit.ActionRejectChanges
	}
	details, err := json.Marshal(map[string]any{
		"action":        in.Action,
		"review_notes":  in.ReviewNotes,
		"requested":     len(ids),
		"success_count": res.SuccessCount,
		"failure_count": res.FailureCount,
		"results":       res.Results,
	})
	if err != nil {
		e.log.Error("marshal audit details", zap.Error(err))
		return
	}
	entry := &audit.Entry{
		ActorID:    actor,
		ActionType: action,
		TargetType: audit.TargetPendingChanges,
		TargetID:   strings.Join(ids, ","),
		Details:    datatypes.JSON(details),
	}
	if err := e.audit.Append(ctx, entry); err != nil {
		e.log.Error("append audit entry", zap.String("actor", actor), zap.String("action", action), zap.Error(err))
	}
}

func summary(action Action, ok, failed int) string {
	verb := "核准"
	if action == ActionReject {
		verb = "拒絕"
	}
	if failed == 0 {
		return fmt.Sprintf("%d 項變更已%s", ok, verb)
	}
	return fmt.Sprintf("%d 項變更%s，%d 項失敗", ok, verb, failed)
}

func foldError(notes *string, err error) *string {
	msg := "execution failed: " + err.Error()
	if notes != nil && *notes != "" {
		msg = *notes + "\n" + msg
	}
	return &msg
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		v = strings.TrimSpace(v)
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
