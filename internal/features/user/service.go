package user

import (
	"context"
	"strings"
	"time"

	common_models "go-elms/internal/common/models"
	"go-elms/internal/features/audit"
	"go-elms/internal/features/permission"
	apperrors "go-elms/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// DemoPassword is the password every seeded demo account starts with.
const DemoPassword = "demo"

type CreateUserRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	Title      string `json:"title,omitempty"`
}

type UserService interface {
	ListUsers(ctx context.Context, actor permission.Actor, filter map[string]interface{}, page, limit int64) ([]common_models.User, int64, error)
	GetUser(ctx context.Context, actor permission.Actor, id string) (*common_models.User, error)
	CreateUser(ctx context.Context, actor permission.Actor, req CreateUserRequest) (*common_models.User, error)
	UpdateRole(ctx context.Context, actor permission.Actor, id, role string) (*common_models.User, error)
	SeedDemoUsers(ctx context.Context) error
}

type UserServiceImpl struct {
	UserRepo     UserRepository
	AuditService audit.AuditService
	Permissions  *permission.Resolver
	Logger       *zap.Logger
}

func NewUserService(userRepo UserRepository, auditService audit.AuditService, permissions *permission.Resolver, logger *zap.Logger) UserService {
	return &UserServiceImpl{
		UserRepo:     userRepo,
		AuditService: auditService,
		Permissions:  permissions,
		Logger:       logger,
	}
}

// HashPassword returns the bcrypt hash stored in User.Password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *UserServiceImpl) ListUsers(ctx context.Context, actor permission.Actor, filter map[string]interface{}, page, limit int64) ([]common_models.User, int64, error) {
	if err := s.Permissions.Require(actor, permission.CanManageUsers); err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return s.UserRepo.List(ctx, filter, limit, (page-1)*limit)
}

func (s *UserServiceImpl) GetUser(ctx context.Context, actor permission.Actor, id string) (*common_models.User, error) {
	if actor.ID != id {
		if err := s.Permissions.Require(actor, permission.CanManageUsers); err != nil {
			return nil, err
		}
	}
	return s.UserRepo.FindByID(ctx, id)
}

func (s *UserServiceImpl) CreateUser(ctx context.Context, actor permission.Actor, req CreateUserRequest) (*common_models.User, error) {
	if err := s.Permissions.Require(actor, permission.CanManageUsers); err != nil {
		return nil, err
	}

	var missing []string
	if strings.TrimSpace(req.Name) == "" {
		missing = append(missing, "name")
	}
	if !strings.Contains(req.Email, "@") {
		missing = append(missing, "email")
	}
	if len(req.Password) < 4 {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, apperrors.NewFieldsValidationError(missing, "name, a valid email and a password of at least 4 characters are required")
	}

	role, err := permission.ParseRole(req.Role)
	if err != nil {
		return nil, apperrors.NewValidationError("role", err.Error())
	}
	if role == permission.RoleAdmin {
		if err := s.Permissions.Require(actor, permission.CanAssignRoles); err != nil {
			return nil, err
		}
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.NewInternalError("hash password", err)
	}

	now := time.Now().UTC()
	user := &common_models.User{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(req.Name),
		Email:      req.Email,
		Password:   hash,
		Role:       string(role),
		Department: req.Department,
		Title:      req.Title,
		Status:     common_models.UserStatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.UserRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.audit(ctx, common_models.AuditActionCreate, user.ID, map[string]common_models.Change{
		"email": {New: user.Email},
		"role":  {New: user.Role},
	})
	return user, nil
}

func (s *UserServiceImpl) UpdateRole(ctx context.Context, actor permission.Actor, id, role string) (*common_models.User, error) {
	if err := s.Permissions.Require(actor, permission.CanAssignRoles); err != nil {
		return nil, err
	}
	parsed, err := permission.ParseRole(role)
	if err != nil {
		return nil, apperrors.NewValidationError("role", err.Error())
	}

	existing, err := s.UserRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Role == string(parsed) {
		return existing, nil
	}
	if id == actor.ID {
		return nil, apperrors.NewValidationError("role", "cannot change your own role")
	}

	if err := s.UserRepo.UpdateRole(ctx, id, string(parsed)); err != nil {
		return nil, err
	}

	s.audit(ctx, common_models.AuditActionRole, id, map[string]common_models.Change{
		"role": {Old: existing.Role, New: string(parsed)},
	})
	s.Logger.Info("User role changed",
		zap.String("user_id", id),
		zap.String("from", existing.Role),
		zap.String("to", string(parsed)),
		zap.String("by", actor.ID),
	)
	return s.UserRepo.FindByID(ctx, id)
}

// DemoUsers are the accounts installed into an empty user store.
func DemoUsers() []common_models.User {
	return []common_models.User{
		{Name: "Admin Ahmadov", Email: "admin@example.uz", Role: string(permission.RoleAdmin), Department: "IT Bo'limi", Title: "Tizim Ma'muri"},
		{Name: "Dilshod Karimov", Email: "dilshod.k@example.uz", Role: string(permission.RoleLetterWriter), Department: "Korporativ Aloqalar", Title: "Xat Muharriri"},
		{Name: "Nodira Rahimova", Email: "nodira.r@example.uz", Role: string(permission.RoleSignee), Department: "Boshqaruv", Title: "Direktor"},
	}
}

// SeedDemoUsers installs DemoUsers when no user exists yet.
func (s *UserServiceImpl) SeedDemoUsers(ctx context.Context) error {
	count, err := s.UserRepo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := HashPassword(DemoPassword)
	if err != nil {
		return apperrors.NewInternalError("hash password", err)
	}
	now := time.Now().UTC()
	for _, u := range DemoUsers() {
		u := u
		u.ID = uuid.NewString()
		u.Password = hash
		u.Status = common_models.UserStatusActive
		u.CreatedAt = now
		u.UpdatedAt = now
		if err := s.UserRepo.Create(ctx, &u); err != nil {
			return err
		}
	}
	s.Logger.Info("Seeded demo users", zap.Int("count", len(DemoUsers())))
	return nil
}

func (s *UserServiceImpl) audit(ctx context.Context, action common_models.AuditAction, id string, changes map[string]common_models.Change) {
	if err := s.AuditService.LogChange(ctx, action, "user", id, changes); err != nil {
		s.Logger.Warn("Failed to write audit log", zap.String("user_id", id), zap.Error(err))
	}
}
