package change

import "context"

type Repository interface {
	Create(ctx context.Context, c *PendingChange) error
	GetByID(ctx context.Context, id string) (*PendingChange, error)
	List(ctx context.Context, f Filter) ([]*PendingChange, error)

	// Draft-only writes; the status guard lives in the WHERE clause.
	UpdateDraft(ctx context.Context, id, submittedBy string, p DraftPatch) (int64, error)
	DeleteDraft(ctx context.Context, id, submittedBy string) error
	DraftIDs(ctx context.Context, submittedBy string) ([]string, error)
	SubmitDrafts(ctx context.Context, submittedBy string, ids []string, batchID string) (int64, error)

	// Review path.
	FindPendingByIDs(ctx context.Context, ids []string) ([]*PendingChange, error)
	GetPendingForUpdate(ctx context.Context, id string) (*PendingChange, error)
	Resolve(ctx context.Context, id string, r Resolution) (int64, error)
}
