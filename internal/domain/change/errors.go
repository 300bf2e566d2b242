package change

import "errors"

var (
	ErrNotFound         = errors.New("pending change not found")
	ErrNotDraft         = errors.New("pending change is no longer a draft")
	ErrNoDraftsToSubmit = errors.New("no drafts to submit")
	ErrImmutableField   = errors.New("change_type and target_table cannot be modified after creation")
	ErrAlreadyResolved  = errors.New("pending change already resolved")
	ErrMissingTargetID  = errors.New("target_id is required for update and delete")
	ErrUnknownType      = errors.New("unknown change_type")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
