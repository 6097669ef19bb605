package workflow

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	common_models "go-elms/internal/common/models"
	"go-elms/internal/config"
	"go-elms/internal/features/audit"
	"go-elms/internal/features/letter"
	"go-elms/internal/features/permission"
	"go-elms/internal/features/template"
	apperrors "go-elms/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type WorkflowService interface {
	CreateLetter(ctx context.Context, actor permission.Actor, input CreateLetterInput) (*letter.Letter, error)
	SubmitLetter(ctx context.Context, actor permission.Actor, id string, expectedVersion int64) (*letter.Letter, error)
	ActOnStep(ctx context.Context, actor permission.Actor, id string, action StepAction) (*letter.Letter, error)
	ActOnCurrentStep(ctx context.Context, actor permission.Actor, id string, outcome Outcome, comment string, expectedVersion int64) (*letter.Letter, error)
	SignLetter(ctx context.Context, actor permission.Actor, id string, req SignRequest) (*letter.Letter, error)
	EditDraft(ctx context.Context, actor permission.Actor, id string, input EditDraftInput) (*letter.Letter, error)
	DeleteDraft(ctx context.Context, actor permission.Actor, id string) error
	ListLetters(ctx context.Context, actor permission.Actor, filter letter.Filter) ([]*letter.Letter, error)
	GetLetter(ctx context.Context, actor permission.Actor, id string) (*letter.Letter, error)
	Chains() []ApprovalChain
}

type WorkflowServiceImpl struct {
	Store        letter.Store
	Templates    template.TemplateService
	Permissions  *permission.Resolver
	Registry     *ChainRegistry
	References   letter.ReferenceGenerator
	AuditService audit.AuditService
	Config       *config.Config
	Logger       *zap.Logger

	now func() time.Time
}

func NewWorkflowService(
	store letter.Store,
	templates template.TemplateService,
	permissions *permission.Resolver,
	chains *ChainRegistry,
	references letter.ReferenceGenerator,
	auditService audit.AuditService,
	cfg *config.Config,
	logger *zap.Logger,
) WorkflowService {
	return &WorkflowServiceImpl{
		Store:        store,
		Templates:    templates,
		Permissions:  permissions,
		Registry:     chains,
		References:   references,
		AuditService: auditService,
		Config:       cfg,
		Logger:       logger,
		now:          defaultClock,
	}
}

// Stored timestamps keep millisecond precision so records compare equal
// after a MongoDB round trip.
func defaultClock() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func (s *WorkflowServiceImpl) Chains() []ApprovalChain {
	return s.Registry.Chains()
}

func (s *WorkflowServiceImpl) event(action letter.HistoryAction, actor permission.Actor, note string, at time.Time) letter.HistoryEvent {
	return letter.HistoryEvent{
		ID:        uuid.NewString(),
		Action:    action,
		Actor:     actor.Name,
		ActorID:   actor.ID,
		Note:      note,
		Timestamp: at,
	}
}

func invalidState(l *letter.Letter, op string) *apperrors.InvalidStateError {
	return apperrors.NewInvalidStateError("letter", l.ID, string(l.Status), op)
}

func (s *WorkflowServiceImpl) audit(ctx context.Context, action common_models.AuditAction, id string, changes map[string]common_models.Change) {
	if err := s.AuditService.LogChange(ctx, action, "letters", id, changes); err != nil {
		s.Logger.Warn("Failed to write audit entry", zap.String("letter_id", id), zap.Error(err))
	}
}

func statusChange(prev letter.Status, next *letter.Letter) map[string]common_models.Change {
	return map[string]common_models.Change{
		"status": {Old: prev, New: next.Status},
	}
}

// canSeeAll reports whether the actor may read letters of other authors.
func (s *WorkflowServiceImpl) canSeeAll(actor permission.Actor) (bool, error) {
	all, err := s.Permissions.Has(actor.Role, permission.CanViewAllLetters)
	if err != nil {
		return false, apperrors.NewInternalError("permission lookup", err)
	}
	return all, nil
}

// requireOwner lets actors without canViewAllLetters touch only their own letters.
func (s *WorkflowServiceImpl) requireOwner(actor permission.Actor, l *letter.Letter, p permission.Permission) error {
	all, err := s.canSeeAll(actor)
	if err != nil {
		return err
	}
	if !all && l.CreatedBy != actor.ID {
		return apperrors.NewPermissionError(string(p), string(actor.Role))
	}
	return nil
}

func buildRecipients(inputs []RecipientInput) ([]letter.Recipient, error) {
	out := make([]letter.Recipient, 0, len(inputs))
	for i, in := range inputs {
		field := fmt.Sprintf("recipients[%d]", i)
		if strings.TrimSpace(in.Name) == "" {
			return nil, apperrors.NewValidationError(field+".name", "recipient name is required")
		}
		method := in.DeliveryMethod
		if method == "" {
			method = letter.DeliveryEmail
		}
		if !method.Valid() {
			return nil, apperrors.NewValidationError(field+".delivery_method", fmt.Sprintf("unknown delivery method %q", method))
		}
		if method == letter.DeliveryEmail && strings.TrimSpace(in.Email) == "" {
			return nil, apperrors.NewValidationError(field+".email", "email delivery needs an address")
		}
		out = append(out, letter.Recipient{
			ID:             uuid.NewString(),
			Name:           strings.TrimSpace(in.Name),
			Email:          strings.TrimSpace(in.Email),
			Organization:   in.Organization,
			Department:     in.Department,
			DeliveryMethod: method,
			Status:         letter.DeliveryPending,
			ResponseDue:    in.ResponseDue,
		})
	}
	return out, nil
}

func (s *WorkflowServiceImpl) CreateLetter(ctx context.Context, actor permission.Actor, input CreateLetterInput) (*letter.Letter, error) {
	if err := s.Permissions.Require(actor, permission.CanCreateLetter); err != nil {
		return nil, err
	}
	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		return nil, apperrors.NewValidationError("subject", "subject is required")
	}
	priority := input.Priority
	if priority == "" {
		priority = letter.PriorityNormal
	}
	if !priority.Valid() {
		return nil, apperrors.NewValidationError("priority", fmt.Sprintf("unknown priority %q", priority))
	}
	recipients, err := buildRecipients(input.Recipients)
	if err != nil {
		return nil, err
	}

	values := input.MergeValues
	if values == nil {
		values = map[string]string{}
	}
	var body, templateName string
	if input.TemplateID != "" {
		tpl, err := s.Templates.GetTemplate(ctx, input.TemplateID)
		if err != nil {
			return nil, err
		}
		if err := template.ValidateValues(tpl, values); err != nil {
			return nil, err
		}
		body = template.Resolve(tpl.Body, values)
		templateName = tpl.Name
	} else {
		if len(values) > 0 {
			return nil, apperrors.NewValidationError("merge_values", "merge values need a template")
		}
		body = input.Body
	}

	now := s.now()
	ref, err := s.References.Next(ctx, now)
	if err != nil {
		return nil, err
	}

	l := &letter.Letter{
		ID:             uuid.NewString(),
		Reference:      ref,
		Subject:        subject,
		Department:     strings.TrimSpace(input.Department),
		Body:           body,
		Tags:           append([]string{}, input.Tags...),
		Priority:       priority,
		IsConfidential: input.IsConfidential,
		TemplateID:     input.TemplateID,
		TemplateName:   templateName,
		MergeValues:    values,
		Status:         letter.StatusDraft,
		CreatedBy:      actor.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
		Workflow:       []letter.WorkflowStep{},
		History:        []letter.HistoryEvent{s.event(letter.ActionCreated, actor, "", now)},
		Recipients:     recipients,
	}
	if err := s.Store.Add(ctx, l); err != nil {
		return nil, err
	}

	s.audit(ctx, common_models.AuditActionCreate, l.ID, map[string]common_models.Change{
		"letter": {New: l.Reference},
	})
	s.Logger.Info("Letter created", zap.String("letter_id", l.ID), zap.String("reference", l.Reference))
	return s.Store.Get(ctx, l.ID)
}

func (s *WorkflowServiceImpl) SubmitLetter(ctx context.Context, actor permission.Actor, id string, expectedVersion int64) (*letter.Letter, error) {
	if err := s.Permissions.Require(actor, permission.CanSubmitLetter); err != nil {
		return nil, err
	}
	current, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwner(actor, current, permission.CanSubmitLetter); err != nil {
		return nil, err
	}
	var tpl *template.LetterTemplate
	if current.TemplateID != "" {
		if tpl, err = s.Templates.GetTemplate(ctx, current.TemplateID); err != nil {
			return nil, err
		}
	}

	var prev letter.Status
	updated, err := s.Store.Update(ctx, id, expectedVersion, func(l *letter.Letter) error {
		prev = l.Status
		if l.Status != letter.StatusDraft {
			return invalidState(l, "submit")
		}
		if err := submissionReady(l, tpl); err != nil {
			return err
		}
		chain, err := s.Registry.Select(ctx, l)
		if err != nil {
			return apperrors.NewInternalError("approval chain selection", err)
		}

		now := s.now()
		l.Workflow = make([]letter.WorkflowStep, 0, len(chain.Steps))
		for _, step := range chain.Steps {
			l.Workflow = append(l.Workflow, letter.WorkflowStep{
				ID:            uuid.NewString(),
				Level:         step.Level,
				ApproverName:  step.ApproverName,
				ApproverEmail: step.ApproverEmail,
				ApproverRole:  step.ApproverRole,
				Status:        letter.StepPending,
			})
		}
		l.ApprovalChain = chain.Name
		l.CurrentStepIndex = 0
		l.SubmittedAt = &now
		l.Status = letter.Project(l)
		ev := s.event(letter.ActionSubmitted, actor, "", now)
		ev.Metadata = map[string]string{"chain": chain.Name}
		l.History = append(l.History, ev)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, common_models.AuditActionApproval, id, statusChange(prev, updated))
	s.Logger.Info("Letter submitted", zap.String("letter_id", id), zap.String("chain", updated.ApprovalChain))
	return updated, nil
}

// submissionReady lists every missing piece at once.
func submissionReady(l *letter.Letter, tpl *template.LetterTemplate) error {
	var missing []string
	if strings.TrimSpace(l.Subject) == "" {
		missing = append(missing, "subject")
	}
	if strings.TrimSpace(l.Department) == "" {
		missing = append(missing, "department")
	}
	if strings.TrimSpace(l.Body) == "" {
		missing = append(missing, "body")
	}
	if len(l.Recipients) == 0 {
		missing = append(missing, "recipients")
	}
	if tpl != nil {
		for _, key := range template.MissingRequired(tpl, l.MergeValues) {
			missing = append(missing, "merge_values."+key)
		}
	}
	if len(missing) > 0 {
		return apperrors.NewFieldsValidationError(missing, "letter is not ready for submission")
	}
	return nil
}

func (s *WorkflowServiceImpl) ActOnStep(ctx context.Context, actor permission.Actor, id string, action StepAction) (*letter.Letter, error) {
	switch action.Outcome {
	case OutcomeApproved:
		if err := s.Permissions.Require(actor, permission.CanApproveLetter); err != nil {
			return nil, err
		}
	case OutcomeRejected:
		if err := s.Permissions.Require(actor, permission.CanRejectLetter); err != nil {
			return nil, err
		}
	default:
		return nil, apperrors.NewValidationError("outcome", fmt.Sprintf("outcome must be %q or %q", OutcomeApproved, OutcomeRejected))
	}

	var prev letter.Status
	updated, err := s.Store.Update(ctx, id, action.ExpectedVersion, func(l *letter.Letter) error {
		prev = l.Status
		if l.Status != letter.StatusPendingApproval {
			return invalidState(l, "act on step of")
		}
		idx := l.StepByLevel(action.Level)
		if idx < 0 {
			return apperrors.NewNotFoundError("workflow step", fmt.Sprintf("%s/level-%d", l.ID, action.Level))
		}
		step := &l.Workflow[idx]
		if step.Status != letter.StepPending || idx < l.CurrentStepIndex {
			err := invalidState(l, "act on step of")
			err.Reason = fmt.Sprintf("level %d is already %s", step.Level, step.Status)
			return err
		}
		if idx > l.CurrentStepIndex {
			return apperrors.NewOutOfOrderStepError(action.Level, l.Workflow[l.CurrentStepIndex].Level)
		}

		now := s.now()
		step.ActedAt = &now
		step.ActedBy = actor.Name
		step.Comments = action.Comment

		var ev letter.HistoryEvent
		if action.Outcome == OutcomeRejected {
			step.Status = letter.StepRejected
			note := action.Comment
			if note == "" {
				note = fmt.Sprintf("Level %d rejection", step.Level)
			}
			ev = s.event(letter.ActionRejected, actor, note, now)
		} else {
			step.Status = letter.StepApproved
			l.CurrentStepIndex++
			note := fmt.Sprintf("Level %d approval", step.Level)
			if l.CurrentStepIndex == len(l.Workflow) {
				l.ApprovedAt = &now
				note = "Final approval"
			}
			ev = s.event(letter.ActionApproved, actor, note, now)
		}
		ev.Metadata = map[string]string{"level": fmt.Sprint(step.Level)}
		if action.Comment != "" {
			ev.Metadata["comment"] = action.Comment
		}
		l.Status = letter.Project(l)
		l.History = append(l.History, ev)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, common_models.AuditActionApproval, id, statusChange(prev, updated))
	s.Logger.Info("Workflow step resolved",
		zap.String("letter_id", id),
		zap.Int("level", action.Level),
		zap.String("outcome", string(action.Outcome)),
		zap.String("status", string(updated.Status)),
	)
	return updated, nil
}

// ActOnCurrentStep resolves whichever level is pending right now.
func (s *WorkflowServiceImpl) ActOnCurrentStep(ctx context.Context, actor permission.Actor, id string, outcome Outcome, comment string, expectedVersion int64) (*letter.Letter, error) {
	l, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	step, ok := l.CurrentStep()
	if !ok || l.Status != letter.StatusPendingApproval {
		return nil, invalidState(l, "act on step of")
	}
	if expectedVersion == 0 {
		expectedVersion = l.Version
	}
	return s.ActOnStep(ctx, actor, id, StepAction{
		Level:           step.Level,
		Outcome:         outcome,
		Comment:         comment,
		ExpectedVersion: expectedVersion,
	})
}

func (s *WorkflowServiceImpl) SignLetter(ctx context.Context, actor permission.Actor, id string, req SignRequest) (*letter.Letter, error) {
	if err := s.Permissions.Require(actor, permission.CanSignLetter); err != nil {
		return nil, err
	}

	var prev letter.Status
	updated, err := s.Store.Update(ctx, id, req.ExpectedVersion, func(l *letter.Letter) error {
		prev = l.Status
		if l.Status != letter.StatusApproved {
			return invalidState(l, "sign")
		}
		checksum, err := letter.Checksum(l)
		if err != nil {
			return apperrors.NewInternalError("signature checksum", err)
		}

		now := s.now()
		link := letter.VerificationLink(s.Config.VerifyBaseURL, l.Reference)
		l.Signature = &letter.Signature{
			ID:               uuid.NewString(),
			SignedBy:         actor.Name,
			SignedByID:       actor.ID,
			SignedByTitle:    actor.Title,
			SignedAt:         now,
			VerificationLink: link,
			QRPayload:        link,
			Checksum:         checksum,
			Note:             req.Note,
		}
		l.SignedAt = &now
		l.Status = letter.Project(l)
		l.History = append(l.History, s.event(letter.ActionSigned, actor, req.Note, now))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, common_models.AuditActionApproval, id, statusChange(prev, updated))
	s.Logger.Info("Letter signed", zap.String("letter_id", id), zap.String("signed_by", actor.ID))
	return updated, nil
}

func (s *WorkflowServiceImpl) EditDraft(ctx context.Context, actor permission.Actor, id string, input EditDraftInput) (*letter.Letter, error) {
	if err := s.Permissions.Require(actor, permission.CanEditDraft); err != nil {
		return nil, err
	}
	current, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwner(actor, current, permission.CanEditDraft); err != nil {
		return nil, err
	}

	var tpl *template.LetterTemplate
	if current.TemplateID != "" {
		if tpl, err = s.Templates.GetTemplate(ctx, current.TemplateID); err != nil {
			return nil, err
		}
	}
	var recipients []letter.Recipient
	if input.Recipients != nil {
		if recipients, err = buildRecipients(*input.Recipients); err != nil {
			return nil, err
		}
	}

	updated, err := s.Store.Update(ctx, id, input.ExpectedVersion, func(l *letter.Letter) error {
		if l.Status != letter.StatusDraft {
			return invalidState(l, "edit")
		}
		var changed []string
		if input.Subject != nil {
			subject := strings.TrimSpace(*input.Subject)
			if subject == "" {
				return apperrors.NewValidationError("subject", "subject is required")
			}
			l.Subject = subject
			changed = append(changed, "subject")
		}
		if input.Department != nil {
			l.Department = strings.TrimSpace(*input.Department)
			changed = append(changed, "department")
		}
		if input.Priority != nil {
			if !input.Priority.Valid() {
				return apperrors.NewValidationError("priority", fmt.Sprintf("unknown priority %q", *input.Priority))
			}
			l.Priority = *input.Priority
			changed = append(changed, "priority")
		}
		if input.IsConfidential != nil {
			l.IsConfidential = *input.IsConfidential
			changed = append(changed, "is_confidential")
		}
		if input.Tags != nil {
			l.Tags = append([]string{}, (*input.Tags)...)
			changed = append(changed, "tags")
		}
		if input.Recipients != nil {
			l.Recipients = recipients
			changed = append(changed, "recipients")
		}
		if input.Body != nil {
			if tpl != nil {
				return apperrors.NewValidationError("body", "body of a templated letter is set through merge values")
			}
			l.Body = *input.Body
			changed = append(changed, "body")
		}
		if input.MergeValues != nil {
			if tpl == nil {
				return apperrors.NewValidationError("merge_values", "merge values need a template")
			}
			if err := template.ValidateValues(tpl, input.MergeValues); err != nil {
				return err
			}
			l.MergeValues = make(map[string]string, len(input.MergeValues))
			for k, v := range input.MergeValues {
				l.MergeValues[k] = v
			}
			l.Body = template.Resolve(tpl.Body, l.MergeValues)
			changed = append(changed, "merge_values")
		}
		if len(changed) == 0 {
			return apperrors.NewValidationError("", "nothing to update")
		}
		sort.Strings(changed)

		ev := s.event(letter.ActionUpdated, actor, "", s.now())
		ev.Metadata = map[string]string{"fields": strings.Join(changed, ",")}
		l.History = append(l.History, ev)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, common_models.AuditActionUpdate, id, map[string]common_models.Change{
		"letter": {Old: current.Version, New: updated.Version},
	})
	return updated, nil
}

func (s *WorkflowServiceImpl) DeleteDraft(ctx context.Context, actor permission.Actor, id string) error {
	if err := s.Permissions.Require(actor, permission.CanDeleteDraft); err != nil {
		return err
	}
	seeAll, err := s.canSeeAll(actor)
	if err != nil {
		return err
	}

	var reference string
	err = s.Store.Delete(ctx, id, func(l *letter.Letter) error {
		if !seeAll && l.CreatedBy != actor.ID {
			return apperrors.NewPermissionError(string(permission.CanDeleteDraft), string(actor.Role))
		}
		if l.Status != letter.StatusDraft {
			return invalidState(l, "delete")
		}
		reference = l.Reference
		return nil
	})
	if err != nil {
		return err
	}

	s.audit(ctx, common_models.AuditActionDelete, id, map[string]common_models.Change{
		"letter": {Old: reference, New: "DELETED"},
	})
	s.Logger.Info("Draft deleted", zap.String("letter_id", id))
	return nil
}

func (s *WorkflowServiceImpl) ListLetters(ctx context.Context, actor permission.Actor, filter letter.Filter) ([]*letter.Letter, error) {
	if err := s.Permissions.RequireAny(actor, permission.CanViewAllLetters, permission.CanViewOwnLetters); err != nil {
		return nil, err
	}
	seeAll, err := s.canSeeAll(actor)
	if err != nil {
		return nil, err
	}
	if !seeAll {
		filter.CreatedBy = actor.ID
	}
	return s.Store.List(ctx, filter)
}

func (s *WorkflowServiceImpl) GetLetter(ctx context.Context, actor permission.Actor, id string) (*letter.Letter, error) {
	if err := s.Permissions.RequireAny(actor, permission.CanViewAllLetters, permission.CanViewOwnLetters); err != nil {
		return nil, err
	}
	l, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	seeAll, err := s.canSeeAll(actor)
	if err != nil {
		return nil, err
	}
	if !seeAll && l.CreatedBy != actor.ID {
		return nil, apperrors.NewNotFoundError("letter", id)
	}
	return l, nil
}
