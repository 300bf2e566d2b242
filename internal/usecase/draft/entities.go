package draft

import (
	"time"

	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/change"
)

type AddInput struct {
	ChangeType  string         `json:"change_type"`
	TargetTable string         `json:"target_table"`
	TargetID    *string        `json:"target_id"`
	ChangeData  map[string]any `json:"change_data"`
	Notes       *string        `json:"notes"`
}

// UpdateInput is a partial update; nil fields are left untouched.
// An empty TargetID clears it.
type UpdateInput struct {
	ChangeType  *string        `json:"change_type"`
	TargetTable *string        `json:"target_table"`
	TargetID    *string        `json:"target_id"`
	ChangeData  map[string]any `json:"change_data"`
	Notes       *string        `json:"notes"`
}

type ChangeDTO struct {
	ID          string         `json:"id"`
	SubmittedBy string         `json:"submitted_by"`
	ChangeType  string         `json:"change_type"`
	TargetTable string         `json:"target_table"`
	TargetID    *string        `json:"target_id"`
	ChangeData  map[string]any `json:"change_data"`
	Status      string         `json:"status"`
	BatchID     *string        `json:"batch_id"`
	Notes       *string        `json:"notes"`
	ReviewedBy  *string        `json:"reviewed_by"`
	ReviewedAt  *time.Time     `json:"reviewed_at"`
	ReviewNotes *string        `json:"review_notes"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type SubmitResult struct {
	BatchID   string `json:"batch_id"`
	Submitted int64  `json:"submitted"`
}

// ToDTO is shared with the review usecase.
func ToDTO(c *change.PendingChange) ChangeDTO {
	data := map[string]any(c.ChangeData)
	if data == nil {
		data = map[string]any{}
	}
	return ChangeDTO{
		ID:          c.ID,
		SubmittedBy: c.SubmittedBy,
		ChangeType:  string(c.ChangeType),
		TargetTable: c.TargetTable,
		TargetID:    c.TargetID,
		ChangeData:  data,
		Status:      string(c.Status),
		BatchID:     c.BatchID,
		Notes:       c.Notes,
		ReviewedBy:  c.ReviewedBy,
		ReviewedAt:  c.ReviewedAt,
		ReviewNotes: c.ReviewNotes,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func ToDTOs(cs []*change.PendingChange) []ChangeDTO {
	out := make([]ChangeDTO, 0, len(cs))
	for _, c := range cs {
		out = append(out, ToDTO(c))
	}
	return out
}
