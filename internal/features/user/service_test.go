package user

import (
	"context"
	"testing"

	common_models "go-elms/internal/common/models"
	"go-elms/internal/features/audit"
	"go-elms/internal/features/permission"
	apperrors "go-elms/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	admin  = permission.Actor{ID: "u-admin", Name: "Admin Ahmadov", Role: permission.RoleAdmin}
	writer = permission.Actor{ID: "u-writer", Name: "Dilshod Karimov", Role: permission.RoleLetterWriter}
)

func newTestService(t *testing.T) (UserService, *MemoryUserRepository, *audit.MemoryAuditRepository) {
	t.Helper()
	resolver, err := permission.NewDefaultResolver()
	require.NoError(t, err)
	repo := NewMemoryUserRepository()
	auditRepo := audit.NewMemoryAuditRepository()
	svc := NewUserService(repo, audit.NewAuditService(auditRepo, repo), resolver, zap.NewNop())
	return svc, repo, auditRepo
}

func TestSeedDemoUsersOnce(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SeedDemoUsers(ctx))
	require.NoError(t, svc.SeedDemoUsers(ctx))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	nodira, err := repo.FindByEmail(ctx, "Nodira.R@example.uz")
	require.NoError(t, err)
	assert.Equal(t, "signee", nodira.Role)
	assert.Equal(t, "Direktor", nodira.Title)
	assert.Equal(t, common_models.UserStatusActive, nodira.Status)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(nodira.Password), []byte(DemoPassword)))
}

func TestListUsersRequiresManageUsers(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.SeedDemoUsers(ctx))

	_, _, err := svc.ListUsers(ctx, writer, nil, 1, 10)
	assert.True(t, apperrors.IsPermission(err))

	users, total, err := svc.ListUsers(ctx, admin, map[string]interface{}{"role": "signee"}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, users, 1)
	assert.Equal(t, "Nodira Rahimova", users[0].Name)

	page, total, err := svc.ListUsers(ctx, admin, nil, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page, 1)
}

func TestCreateUser(t *testing.T) {
	svc, repo, auditRepo := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, admin, CreateUserRequest{Name: "", Email: "bad", Password: "x", Role: "signee"})
	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.ElementsMatch(t, []string{"name", "email", "password"}, vErr.Fields)

	_, err = svc.CreateUser(ctx, admin, CreateUserRequest{Name: "Aziz", Email: "aziz@example.uz", Password: "secret", Role: "clerk"})
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.CreateUser(ctx, writer, CreateUserRequest{Name: "Aziz", Email: "aziz@example.uz", Password: "secret", Role: "signee"})
	assert.True(t, apperrors.IsPermission(err))

	u, err := svc.CreateUser(ctx, admin, CreateUserRequest{Name: "Aziz", Email: "Aziz@Example.uz", Password: "secret", Role: "signee"})
	require.NoError(t, err)
	assert.Equal(t, "aziz@example.uz", u.Email)
	assert.NotEqual(t, "secret", u.Password)

	_, err = svc.CreateUser(ctx, admin, CreateUserRequest{Name: "Aziz 2", Email: "aziz@example.uz", Password: "secret", Role: "signee"})
	assert.True(t, apperrors.IsConflict(err))

	stored, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aziz", stored.Name)

	logs, _, err := auditRepo.List(ctx, audit.Filter{Module: "user"}, 0, 0)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestUpdateRole(t *testing.T) {
	svc, repo, auditRepo := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.SeedDemoUsers(ctx))

	dilshod, err := repo.FindByEmail(ctx, "dilshod.k@example.uz")
	require.NoError(t, err)

	_, err = svc.UpdateRole(ctx, writer, dilshod.ID, "signee")
	assert.True(t, apperrors.IsPermission(err))

	_, err = svc.UpdateRole(ctx, admin, dilshod.ID, "superuser")
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.UpdateRole(ctx, admin, "missing", "signee")
	assert.True(t, apperrors.IsNotFound(err))

	updated, err := svc.UpdateRole(ctx, admin, dilshod.ID, "signee")
	require.NoError(t, err)
	assert.Equal(t, "signee", updated.Role)

	logs, _, err := auditRepo.List(ctx, audit.Filter{Action: common_models.AuditActionRole}, 0, 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, dilshod.ID, logs[0].RecordID)
	assert.Equal(t, "letter_writer", logs[0].Changes["role"].Old)

	// same role again is a no-op
	_, err = svc.UpdateRole(ctx, admin, dilshod.ID, "signee")
	require.NoError(t, err)
	logs, _, _ = auditRepo.List(ctx, audit.Filter{Action: common_models.AuditActionRole}, 0, 0)
	assert.Len(t, logs, 1)

	self := permission.Actor{ID: dilshod.ID, Role: permission.RoleAdmin}
	_, err = svc.UpdateRole(ctx, self, dilshod.ID, "letter_writer")
	assert.True(t, apperrors.IsValidation(err))
}

func TestGetUserSelfOrManager(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.SeedDemoUsers(ctx))

	dilshod, err := repo.FindByEmail(ctx, "dilshod.k@example.uz")
	require.NoError(t, err)
	nodira, err := repo.FindByEmail(ctx, "nodira.r@example.uz")
	require.NoError(t, err)

	self := permission.Actor{ID: dilshod.ID, Role: permission.RoleLetterWriter}
	got, err := svc.GetUser(ctx, self, dilshod.ID)
	require.NoError(t, err)
	assert.Equal(t, dilshod.Email, got.Email)

	_, err = svc.GetUser(ctx, self, nodira.ID)
	assert.True(t, apperrors.IsPermission(err))

	_, err = svc.GetUser(ctx, admin, nodira.ID)
	assert.NoError(t, err)
}
