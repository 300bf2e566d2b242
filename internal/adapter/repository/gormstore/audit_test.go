package gormstore

import (
	"context"
	"testing"

	auditDomain "github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/audit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestAudit_AppendAndListRecent(t *testing.T) {
	db := openTestDB(t)
	repo := NewAuditRepository(db)
	ctx := context.Background()

	for _, action := range []string{auditDomain.ActionRejectChanges, auditDomain.ActionApproveChanges} {
		require.NoError(t, repo.Append(ctx, &auditDomain.Entry{
			ActorID:    "admin-1",
			ActionType: action,
			TargetType: auditDomain.TargetPendingChanges,
			TargetID:   "a,b",
			Details:    datatypes.JSON(`{"success_count":1}`),
		}))
	}

	got, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, auditDomain.ActionApproveChanges, got[0].ActionType)
	assert.Equal(t, "a,b", got[0].TargetID)
	assert.JSONEq(t, `{"success_count":1}`, string(got[0].Details))
}
