package template

import (
	"context"
	"time"

	common_models "go-elms/internal/common/models"
	"go-elms/internal/features/audit"
	"go-elms/internal/features/permission"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TemplateService interface {
	CreateTemplate(ctx context.Context, actor permission.Actor, template *LetterTemplate) error
	GetTemplate(ctx context.Context, id string) (*LetterTemplate, error)
	ListTemplates(ctx context.Context, category string) ([]LetterTemplate, error)
	UpdateTemplate(ctx context.Context, actor permission.Actor, template *LetterTemplate) error
	DeleteTemplate(ctx context.Context, actor permission.Actor, id string) error
	Preview(ctx context.Context, id string, values map[string]string) (*PreviewResponse, error)
	Fields(ctx context.Context, id string) ([]TemplateField, error)
	SeedDefaults(ctx context.Context) error
}

type TemplateServiceImpl struct {
	Repo         TemplateRepository
	AuditService audit.AuditService
	Permissions  *permission.Resolver
	Logger       *zap.Logger
}

func NewTemplateService(
	repo TemplateRepository,
	auditService audit.AuditService,
	permissions *permission.Resolver,
	logger *zap.Logger,
) TemplateService {
	return &TemplateServiceImpl{
		Repo:         repo,
		AuditService: auditService,
		Permissions:  permissions,
		Logger:       logger,
	}
}

func (s *TemplateServiceImpl) CreateTemplate(ctx context.Context, actor permission.Actor, template *LetterTemplate) error {
	if err := s.Permissions.Require(actor, permission.CanCreateTemplate); err != nil {
		return err
	}
	if err := ValidateDefinition(template); err != nil {
		return err
	}

	now := time.Now()
	if template.ID == "" {
		template.ID = uuid.NewString()
	}
	if template.Locale == "" {
		template.Locale = "en-US"
	}
	template.CreatedBy = actor.ID
	template.CreatedAt = now
	template.UpdatedAt = now

	err := s.Repo.Create(ctx, template)
	if err == nil {
		_ = s.AuditService.LogChange(ctx, common_models.AuditActionTemplate, "letter_templates", template.ID, map[string]common_models.Change{
			"template": {
				New: template,
			},
		})
		s.Logger.Info("Template created", zap.String("template_id", template.ID), zap.String("name", template.Name))
	}
	return err
}

func (s *TemplateServiceImpl) GetTemplate(ctx context.Context, id string) (*LetterTemplate, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *TemplateServiceImpl) ListTemplates(ctx context.Context, category string) ([]LetterTemplate, error) {
	return s.Repo.List(ctx, category)
}

func (s *TemplateServiceImpl) UpdateTemplate(ctx context.Context, actor permission.Actor, template *LetterTemplate) error {
	if err := s.Permissions.Require(actor, permission.CanEditTemplate); err != nil {
		return err
	}
	if err := ValidateDefinition(template); err != nil {
		return err
	}

	oldTemplate, err := s.Repo.GetByID(ctx, template.ID)
	if err != nil {
		return err
	}
	template.CreatedBy = oldTemplate.CreatedBy
	template.CreatedAt = oldTemplate.CreatedAt
	template.UpdatedAt = time.Now()
	if template.Locale == "" {
		template.Locale = oldTemplate.Locale
	}

	err = s.Repo.Update(ctx, template)
	if err == nil {
		_ = s.AuditService.LogChange(ctx, common_models.AuditActionTemplate, "letter_templates", template.ID, map[string]common_models.Change{
			"template": {
				Old: oldTemplate,
				New: template,
			},
		})
	}
	return err
}

func (s *TemplateServiceImpl) DeleteTemplate(ctx context.Context, actor permission.Actor, id string) error {
	if err := s.Permissions.Require(actor, permission.CanDeleteTemplate); err != nil {
		return err
	}
	oldTemplate, _ := s.Repo.GetByID(ctx, id)

	err := s.Repo.Delete(ctx, id)
	if err == nil {
		_ = s.AuditService.LogChange(ctx, common_models.AuditActionTemplate, "letter_templates", id, map[string]common_models.Change{
			"template": {
				Old: oldTemplate,
				New: "DELETED",
			},
		})
	}
	return err
}

func (s *TemplateServiceImpl) Preview(ctx context.Context, id string, values map[string]string) (*PreviewResponse, error) {
	tpl, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateValues(tpl, values); err != nil {
		return nil, err
	}
	missing := MissingRequired(tpl, values)
	if missing == nil {
		missing = []string{}
	}
	return &PreviewResponse{Body: Resolve(tpl.Body, values), Missing: missing}, nil
}

func (s *TemplateServiceImpl) Fields(ctx context.Context, id string) ([]TemplateField, error) {
	tpl, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return tpl.Fields, nil
}

// SeedDefaults installs the built-in templates into an empty repository.
func (s *TemplateServiceImpl) SeedDefaults(ctx context.Context) error {
	count, err := s.Repo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, tpl := range DefaultTemplates(time.Now()) {
		if err := ValidateDefinition(tpl); err != nil {
			return err
		}
		if err := s.Repo.Create(ctx, tpl); err != nil {
			return err
		}
	}
	s.Logger.Info("Seeded default letter templates")
	return nil
}
