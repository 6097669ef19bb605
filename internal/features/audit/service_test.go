package audit

import (
	"context"
	"testing"
	"time"

	common_models "go-elms/internal/common/models"
	"go-elms/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	users []common_models.User
}

func (f *fakeUsers) FindByIDs(_ context.Context, ids []string) ([]common_models.User, error) {
	var out []common_models.User
	for _, u := range f.users {
		for _, id := range ids {
			if u.ID == id {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func TestLogChangeAndList(t *testing.T) {
	repo := NewMemoryAuditRepository()
	svc := NewAuditService(repo, &fakeUsers{users: []common_models.User{{ID: "u-2", Name: "Nodira Rahimova"}}})

	ctx := context.WithValue(context.Background(), utils.UserClaimsKey, &utils.UserClaims{UserID: "u-1", Name: "Dilshod Karimov"})
	require.NoError(t, svc.LogChange(ctx, common_models.AuditActionApproval, "letters", "l-1", map[string]common_models.Change{
		"status": {Old: "Draft", New: "Pending Approval"},
	}))
	require.NoError(t, svc.LogChange(context.Background(), common_models.AuditActionTemplate, "letter_templates", "t-1", nil))
	require.NoError(t, svc.LogChange(context.Background(), common_models.AuditActionApproval, "letters", "l-2", nil))
	// written before names were stored on the entry
	require.NoError(t, repo.Create(ctx, common_models.AuditLog{ID: "old", Action: common_models.AuditActionApproval, Module: "letters", RecordID: "l-3", ActorID: "u-2"}))

	res, err := svc.ListLogs(context.Background(), Filter{Module: "letters"}, 1, 10)
	require.NoError(t, err)
	require.Len(t, res.Logs, 3)
	assert.Equal(t, int64(3), res.Total)

	names := map[string]string{}
	for _, l := range res.Logs {
		names[l.RecordID] = l.ActorName
	}
	assert.Equal(t, "Dilshod Karimov", names["l-1"])
	assert.Equal(t, "System", names["l-2"])
	assert.Equal(t, "Nodira Rahimova", names["l-3"])

	res, err = svc.ListLogs(context.Background(), Filter{ActorID: "u-1", Action: common_models.AuditActionApproval}, 1, 10)
	require.NoError(t, err)
	require.Len(t, res.Logs, 1)
	assert.Equal(t, "Pending Approval", res.Logs[0].Changes["status"].New)
}

func TestListLogsTimeWindow(t *testing.T) {
	repo := NewMemoryAuditRepository()
	svc := NewAuditService(repo, nil)
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(context.Background(), common_models.AuditLog{
			ID:        string(rune('a' + i)),
			Action:    common_models.AuditActionCreate,
			Module:    "letters",
			Timestamp: base.Add(time.Duration(i) * 24 * time.Hour),
		}))
	}

	res, err := svc.ListLogs(context.Background(), Filter{From: base.Add(time.Hour), To: base.Add(48 * time.Hour)}, 1, 10)
	require.NoError(t, err)
	require.Len(t, res.Logs, 1)
	assert.Equal(t, "b", res.Logs[0].ID)
}

func TestMemoryRepositoryPagination(t *testing.T) {
	repo := NewMemoryAuditRepository()
	svc := NewAuditService(repo, nil)
	for i := 0; i < 5; i++ {
		require.NoError(t, svc.LogChange(context.Background(), common_models.AuditActionCreate, "letters", "x", nil))
	}

	res, err := svc.ListLogs(context.Background(), Filter{}, 2, 2)
	require.NoError(t, err)
	assert.Len(t, res.Logs, 2)
	assert.Equal(t, int64(5), res.Total)

	res, err = svc.ListLogs(context.Background(), Filter{}, 4, 2)
	require.NoError(t, err)
	assert.Empty(t, res.Logs)
	assert.Equal(t, int64(5), res.Total)
}
