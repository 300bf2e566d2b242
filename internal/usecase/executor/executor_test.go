package executor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/audit"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/change"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/identity"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/target"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/uow"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/testutil/auditmock"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/testutil/changemock"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/testutil/rolemock"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/testutil/targetmock"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/testutil/uowmock"

	"gorm.io/gorm"
)

var admin = identity.Caller{ActorID: "admin-1", Roles: []string{identity.RoleAdmin}}

func strp(s string) *string { return &s }

// fixture keeps pending rows in memory and records every resolution.
type fixture struct {
	rows     map[string]*change.PendingChange
	order    []string
	resolved map[string]change.Resolution
	changes  *changemock.Repo
	targets  *targetmock.Repo
	audits   *auditmock.Repo
	exec     *Executor
}

func newFixture(t *testing.T, rows ...*change.PendingChange) *fixture {
	t.Helper()
	f := &fixture{
		rows:     map[string]*change.PendingChange{},
		resolved: map[string]change.Resolution{},
		targets:  &targetmock.Repo{},
		audits:   &auditmock.Repo{},
	}
	for _, r := range rows {
		r.Status = change.StatusPending
		f.rows[r.ID] = r
		f.order = append(f.order, r.ID)
	}
	f.changes = &changemock.Repo{
		FindPendingByIDsFn: func(_ context.Context, ids []string) ([]*change.PendingChange, error) {
			want := map[string]bool{}
			for _, id := range ids {
				want[id] = true
			}
			var out []*change.PendingChange
			for _, id := range f.order {
				if want[id] && f.rows[id].Status == change.StatusPending {
					out = append(out, f.rows[id])
				}
			}
			return out, nil
		},
		GetPendingForUpdateFn: func(_ context.Context, id string) (*change.PendingChange, error) {
			if r, ok := f.rows[id]; ok && r.Status == change.StatusPending {
				return r, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
		ResolveFn: func(_ context.Context, id string, rs change.Resolution) (int64, error) {
			r, ok := f.rows[id]
			if !ok || r.Status != change.StatusPending {
				return 0, nil
			}
			r.Status = rs.Status
			f.resolved[id] = rs
			return 1, nil
		},
	}
	f.exec = New(uowmock.Passthrough(uow.Repos{Changes: f.changes, Targets: f.targets}),
		f.changes, rolemock.Admins("admin-1"), f.audits, nil)
	f.exec.now = func() time.Time { return time.Date(2025, 9, 6, 10, 0, 0, 0, time.UTC) }
	return f
}

func pendingRow(id string, ct change.Type, table string, targetID *string, data map[string]any) *change.PendingChange {
	return &change.PendingChange{ID: id, SubmittedBy: "helper-1", ChangeType: ct, TargetTable: table, TargetID: targetID, ChangeData: data}
}

func TestExecute_Guards(t *testing.T) {
	tests := []struct {
		name    string
		caller  identity.Caller
		roles   identity.RoleRepository
		in      Input
		wantErr error
	}{
		{
			name:    "no actor",
			caller:  identity.Caller{},
			roles:   rolemock.Admins("admin-1"),
			in:      Input{ChangeIDs: []string{"a"}, Action: ActionApprove},
			wantErr: identity.ErrUnauthenticated,
		},
		{
			name:    "token claims admin but store does not",
			caller:  identity.Caller{ActorID: "helper-1", Roles: []string{identity.RoleAdmin}},
			roles:   rolemock.Admins("admin-1"),
			in:      Input{ChangeIDs: []string{"a"}, Action: ActionApprove},
			wantErr: identity.ErrForbidden,
		},
		{
			name:    "empty ids",
			caller:  admin,
			roles:   rolemock.Admins("admin-1"),
			in:      Input{ChangeIDs: []string{" ", ""}, Action: ActionApprove},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "bad action",
			caller:  admin,
			roles:   rolemock.Admins("admin-1"),
			in:      Input{ChangeIDs: []string{"a"}, Action: "merge"},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "nothing pending",
			caller:  admin,
			roles:   rolemock.Admins("admin-1"),
			in:      Input{ChangeIDs: []string{"ghost"}, Action: ActionReject},
			wantErr: change.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.exec.roles = tt.roles
			_, err := f.exec.Execute(context.Background(), tt.caller, tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("want %v, got %v", tt.wantErr, err)
			}
			if len(f.audits.Appended) != 0 {
				t.Fatalf("guards must not write audit entries")
			}
		})
	}
}

func TestExecute_RoleLookupError(t *testing.T) {
	f := newFixture(t)
	sentinel := errors.New("db down")
	f.exec.roles = &rolemock.Repo{HasRoleFn: func(context.Context, string, string) (bool, error) { return false, sentinel }}
	if _, err := f.exec.Execute(context.Background(), admin, Input{ChangeIDs: []string{"a"}, Action: ActionApprove}); !errors.Is(err, sentinel) {
		t.Fatalf("want wrapped %v, got %v", sentinel, err)
	}
}

func TestExecute_ApproveDispatch(t *testing.T) {
	tests := []struct {
		name     string
		row      *change.PendingChange
		wantOK   bool
		wantErr  error
		wantCall string
	}{
		{
			name:     "create inserts",
			row:      pendingRow("c1", change.TypeCreate, "notes", nil, map[string]any{"title": "t"}),
			wantOK:   true,
			wantCall: "insert notes",
		},
		{
			name:     "update patches",
			row:      pendingRow("c1", change.TypeUpdate, "customers", strp("cust-1"), map[string]any{"name": "n"}),
			wantOK:   true,
			wantCall: "patch customers cust-1",
		},
		{
			name:     "delete removes",
			row:      pendingRow("c1", change.TypeDelete, "subscriptions", strp("sub-1"), nil),
			wantOK:   true,
			wantCall: "remove subscriptions sub-1",
		},
		{
			name:    "table off the allow-list",
			row:     pendingRow("c1", change.TypeCreate, "secrets", nil, map[string]any{"k": "v"}),
			wantErr: target.ErrTableNotAllowed,
		},
		{
			name:    "update without target id",
			row:     pendingRow("c1", change.TypeUpdate, "customers", nil, map[string]any{"name": "n"}),
			wantErr: change.ErrMissingTargetID,
		},
		{
			name:    "delete without target id",
			row:     pendingRow("c1", change.TypeDelete, "customers", strp(""), nil),
			wantErr: change.ErrMissingTargetID,
		},
		{
			name:    "unknown column",
			row:     pendingRow("c1", change.TypeCreate, "notes", nil, map[string]any{"is_admin": true}),
			wantErr: target.ErrUnknownColumn,
		},
		{
			name:    "update touching id",
			row:     pendingRow("c1", change.TypeUpdate, "notes", strp("n-1"), map[string]any{"id": "n-2"}),
			wantErr: target.ErrUnknownColumn,
		},
		{
			name:    "create with numeric id",
			row:     pendingRow("c1", change.TypeCreate, "notes", nil, map[string]any{"id": float64(5), "title": "t"}),
			wantErr: target.ErrInvalidRowID,
		},
		{
			name:     "create with string id",
			row:      pendingRow("c1", change.TypeCreate, "notes", nil, map[string]any{"id": "n-5", "title": "t"}),
			wantOK:   true,
			wantCall: "insert notes",
		},
		{
			name:    "create with no data",
			row:     pendingRow("c1", change.TypeCreate, "notes", nil, nil),
			wantErr: target.ErrEmptyData,
		},
		{
			name:    "unknown change type",
			row:     pendingRow("c1", "merge", "notes", nil, map[string]any{"title": "t"}),
			wantErr: change.ErrUnknownType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.row)
			var call string
			f.targets.InsertFn = func(_ context.Context, table string, _ map[string]any) (string, error) {
				call = "insert " + table
				return "new-id", nil
			}
			f.targets.PatchFn = func(_ context.Context, table, id string, _ map[string]any) error {
				call = "patch " + table + " " + id
				return nil
			}
			f.targets.RemoveFn = func(_ context.Context, table, id string) error {
				call = "remove " + table + " " + id
				return nil
			}

			res, err := f.exec.Execute(context.Background(), admin, Input{ChangeIDs: []string{"c1"}, Action: ActionApprove, ReviewNotes: strp("ok")})
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if len(res.Results) != 1 {
				t.Fatalf("want 1 result, got %+v", res.Results)
			}
			rs := f.resolved["c1"]
			if rs.ReviewedBy != "admin-1" || rs.ReviewedAt.IsZero() {
				t.Fatalf("review fields not stamped: %+v", rs)
			}

			if tt.wantOK {
				if !res.Success || !res.Results[0].Success || call != tt.wantCall {
					t.Fatalf("want success via %q, got %+v call=%q", tt.wantCall, res, call)
				}
				if rs.Status != change.StatusApproved || rs.ReviewNotes == nil || *rs.ReviewNotes != "ok" {
					t.Fatalf("bad resolution %+v", rs)
				}
				return
			}

			if res.Success || res.Results[0].Success || res.Results[0].Error == "" {
				t.Fatalf("want failed record, got %+v", res)
			}
			if call != "" {
				t.Fatalf("store touched on validation failure: %s", call)
			}
			if rs.Status != change.StatusRejected {
				t.Fatalf("failed record must end rejected, got %s", rs.Status)
			}
			if rs.ReviewNotes == nil || !strings.HasPrefix(*rs.ReviewNotes, "ok\nexecution failed: ") {
				t.Fatalf("error not folded into review notes: %v", rs.ReviewNotes)
			}
			if !strings.Contains(*rs.ReviewNotes, tt.wantErr.Error()) {
				t.Fatalf("notes %q should mention %q", *rs.ReviewNotes, tt.wantErr)
			}
		})
	}
}

func TestExecute_PartialBatch(t *testing.T) {
	f := newFixture(t,
		pendingRow("ok-1", change.TypeCreate, "notes", nil, map[string]any{"title": "a"}),
		pendingRow("bad", change.TypeUpdate, "customers", nil, map[string]any{"name": "n"}),
		pendingRow("ok-2", change.TypeCreate, "notes", nil, map[string]any{"title": "b"}),
	)
	f.targets.InsertFn = func(context.Context, string, map[string]any) (string, error) { return "x", nil }

	res, err := f.exec.Execute(context.Background(), admin, Input{ChangeIDs: []string{"ok-1", "bad", "ok-2", "ok-1"}, Action: ActionApprove})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Success || res.SuccessCount != 2 || res.FailureCount != 1 {
		t.Fatalf("bad counts %+v", res)
	}
	if res.Message != "2 項變更核准，1 項失敗" {
		t.Fatalf("bad message %q", res.Message)
	}
	if f.rows["ok-1"].Status != change.StatusApproved || f.rows["ok-2"].Status != change.StatusApproved {
		t.Fatalf("siblings of a failed record must still be approved")
	}
	if f.rows["bad"].Status != change.StatusRejected {
		t.Fatalf("failed record must be rejected")
	}

	if len(f.audits.Appended) != 1 {
		t.Fatalf("want one audit entry, got %d", len(f.audits.Appended))
	}
	e := f.audits.Appended[0]
	if e.ActionType != audit.ActionApproveChanges || e.TargetType != audit.TargetPendingChanges || e.ActorID != "admin-1" {
		t.Fatalf("bad audit entry %+v", e)
	}
	if e.TargetID != "ok-1,bad,ok-2" {
		t.Fatalf("audit target ids should be de-duplicated, got %q", e.TargetID)
	}
}

func TestExecute_TargetStoreFailureRejectsRecord(t *testing.T) {
	f := newFixture(t, pendingRow("c1", change.TypeDelete, "subscriptions", strp("missing"), nil))
	f.targets.RemoveFn = func(context.Context, string, string) error { return target.ErrRowNotFound }

	res, err := f.exec.Execute(context.Background(), admin, Input{ChangeIDs: []string{"c1"}, Action: ActionApprove})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Success || res.FailureCount != 1 || f.rows["c1"].Status != change.StatusRejected {
		t.Fatalf("want rejected record, got %+v status=%s", res, f.rows["c1"].Status)
	}
	if *f.resolved["c1"].ReviewNotes != "execution failed: "+target.ErrRowNotFound.Error() {
		t.Fatalf("bad notes %q", *f.resolved["c1"].ReviewNotes)
	}
}

func TestExecute_Reject(t *testing.T) {
	f := newFixture(t,
		pendingRow("a", change.TypeCreate, "secrets", nil, nil),
		pendingRow("b", change.TypeUpdate, "customers", nil, nil),
	)
	called := false
	f.targets.InsertFn = func(context.Context, string, map[string]any) (string, error) { called = true; return "", nil }
	f.targets.PatchFn = func(context.Context, string, string, map[string]any) error { called = true; return nil }

	res, err := f.exec.Execute(context.Background(), admin, Input{ChangeIDs: []string{"a", "b"}, Action: ActionReject, ReviewNotes: strp("no")})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !res.Success || res.SuccessCount != 2 || res.Message != "2 項變更已拒絕" {
		t.Fatalf("bad result %+v", res)
	}
	if called {
		t.Fatalf("reject must not touch target tables")
	}
	for _, id := range []string{"a", "b"} {
		if rs := f.resolved[id]; rs.Status != change.StatusRejected || *rs.ReviewNotes != "no" {
			t.Fatalf("bad resolution for %s: %+v", id, rs)
		}
	}
	if f.audits.Appended[0].ActionType != audit.ActionRejectChanges {
		t.Fatalf("bad audit action %s", f.audits.Appended[0].ActionType)
	}
}

func TestExecute_SkipsRecordResolvedConcurrently(t *testing.T) {
	f := newFixture(t,
		pendingRow("raced", change.TypeCreate, "notes", nil, map[string]any{"title": "a"}),
		pendingRow("fresh", change.TypeCreate, "notes", nil, map[string]any{"title": "b"}),
	)
	f.targets.InsertFn = func(context.Context, string, map[string]any) (string, error) { return "x", nil }
	// another admin resolves "raced" after the pre-filter read but before its lock
	lock := f.changes.GetPendingForUpdateFn
	f.changes.GetPendingForUpdateFn = func(ctx context.Context, id string) (*change.PendingChange, error) {
		if id == "raced" {
			f.rows[id].Status = change.StatusApproved
		}
		return lock(ctx, id)
	}

	res, err := f.exec.Execute(context.Background(), admin, Input{ChangeIDs: []string{"raced", "fresh"}, Action: ActionApprove})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(res.Results) != 1 || res.Results[0].ID != "fresh" {
		t.Fatalf("raced record should be omitted, got %+v", res.Results)
	}
	if _, ok := f.resolved["raced"]; ok {
		t.Fatalf("raced record must not be written again")
	}
}

func TestExecute_AuditFailureDoesNotFailCall(t *testing.T) {
	f := newFixture(t, pendingRow("a", change.TypeCreate, "notes", nil, map[string]any{"title": "a"}))
	f.audits.AppendFn = func(context.Context, *audit.Entry) error { return errors.New("audit down") }

	res, err := f.exec.Execute(context.Background(), admin, Input{ChangeIDs: []string{"a"}, Action: ActionReject})
	if err != nil || !res.Success {
		t.Fatalf("audit failure must be swallowed: res=%+v err=%v", res, err)
	}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		action     Action
		ok, failed int
		want       string
	}{
		{ActionApprove, 3, 0, "3 項變更已核准"},
		{ActionApprove, 1, 2, "1 項變更核准，2 項失敗"},
		{ActionReject, 2, 0, "2 項變更已拒絕"},
		{ActionReject, 0, 1, "0 項變更拒絕，1 項失敗"},
	}
	for _, tt := range tests {
		if got := summary(tt.action, tt.ok, tt.failed); got != tt.want {
			t.Fatalf("want %q, got %q", tt.want, got)
		}
	}
}
