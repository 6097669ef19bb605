package auth

import (
	"context"
	"strings"
	"time"

	common_models "go-elms/internal/common/models"
	"go-elms/internal/features/audit"
	"go-elms/internal/features/permission"
	"go-elms/internal/features/user"
	apperrors "go-elms/pkg/errors"
	"go-elms/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// LoginResult is returned to the client after a successful login.
type LoginResult struct {
	Token       string                         `json:"token"`
	User        common_models.User             `json:"user"`
	Permissions map[permission.Permission]bool `json:"permissions"`
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Me(ctx context.Context, actor permission.Actor) (*LoginResult, error)
}

type AuthServiceImpl struct {
	UserRepo     user.UserRepository
	AuditService audit.AuditService
	Permissions  *permission.Resolver
	Logger       *zap.Logger
	now          func() time.Time
}

func NewAuthService(userRepo user.UserRepository, auditService audit.AuditService, permissions *permission.Resolver, logger *zap.Logger) AuthService {
	return &AuthServiceImpl{
		UserRepo:     userRepo,
		AuditService: auditService,
		Permissions:  permissions,
		Logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

var errInvalidCredentials = apperrors.NewUnauthorizedError("invalid credentials")

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, apperrors.NewValidationError("", "email and password are required")
	}

	usr, err := s.UserRepo.FindByEmail(ctx, email)
	if apperrors.IsNotFound(err) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(usr.Password), []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}
	if usr.Status != common_models.UserStatusActive {
		return nil, apperrors.NewUnauthorizedError("account " + usr.Status)
	}

	role, err := permission.ParseRole(usr.Role)
	if err != nil {
		return nil, apperrors.NewInternalError("stored user role", err)
	}
	perms, err := s.Permissions.Permissions(role)
	if err != nil {
		return nil, apperrors.NewInternalError("permission lookup", err)
	}

	token, err := utils.GenerateToken(usr.ID, usr.Name, usr.Email, usr.Role, usr.Title)
	if err != nil {
		return nil, apperrors.NewInternalError("sign token", err)
	}

	at := s.now()
	if err := s.UserRepo.TouchLogin(ctx, usr.ID, at); err != nil {
		s.Logger.Warn("Failed to record last login", zap.String("user_id", usr.ID), zap.Error(err))
	} else {
		usr.LastLogin = &at
	}

	claims := &utils.UserClaims{UserID: usr.ID, Name: usr.Name, Email: usr.Email, Role: usr.Role, Title: usr.Title}
	auditCtx := context.WithValue(ctx, utils.UserClaimsKey, claims)
	if err := s.AuditService.LogChange(auditCtx, common_models.AuditActionLogin, "user", usr.ID, nil); err != nil {
		s.Logger.Warn("Failed to write audit log", zap.String("user_id", usr.ID), zap.Error(err))
	}

	s.Logger.Info("User logged in", zap.String("user_id", usr.ID), zap.String("role", usr.Role))
	return &LoginResult{Token: token, User: *usr, Permissions: perms}, nil
}

// Me returns the caller's profile and permission set without a new token.
func (s *AuthServiceImpl) Me(ctx context.Context, actor permission.Actor) (*LoginResult, error) {
	perms, err := s.Permissions.Permissions(actor.Role)
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("unknown role")
	}

	usr, err := s.UserRepo.FindByID(ctx, actor.ID)
	if apperrors.IsNotFound(err) {
		// dev claims and tokens for removed users still describe the caller
		usr = &common_models.User{
			ID:     actor.ID,
			Name:   actor.Name,
			Email:  actor.Email,
			Role:   string(actor.Role),
			Title:  actor.Title,
			Status: common_models.UserStatusActive,
		}
	} else if err != nil {
		return nil, err
	}
	return &LoginResult{User: *usr, Permissions: perms}, nil
}
