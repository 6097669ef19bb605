package workflow

import (
	"context"
	"testing"
	"time"

	"go-elms/internal/config"
	"go-elms/internal/features/audit"
	"go-elms/internal/features/letter"
	"go-elms/internal/features/permission"
	"go-elms/internal/features/template"
	apperrors "go-elms/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	admin   = permission.Actor{ID: "u-admin", Name: "Admin Ahmadov", Role: permission.RoleAdmin}
	writer  = permission.Actor{ID: "u-writer", Name: "Dilshod Karimov", Role: permission.RoleLetterWriter}
	other   = permission.Actor{ID: "u-other", Name: "Another Writer", Role: permission.RoleLetterWriter}
	signee  = permission.Actor{ID: "u-signee", Name: "Nodira Rahimova", Role: permission.RoleSignee, Title: "Direktor"}
	nowTime = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
)

type fixture struct {
	svc       *WorkflowServiceImpl
	store     *letter.MemoryStore
	auditRepo *audit.MemoryAuditRepository
	tpl       *template.LetterTemplate
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	resolver, err := permission.NewDefaultResolver()
	require.NoError(t, err)
	auditRepo := audit.NewMemoryAuditRepository()
	auditService := audit.NewAuditService(auditRepo, nil)

	templates := template.NewTemplateService(template.NewMemoryTemplateRepository(), auditService, resolver, zap.NewNop())
	tpl := &template.LetterTemplate{
		Name: "Notice",
		Body: "Dear {{recipient_name}}, {{ message }}",
		Fields: []template.TemplateField{
			{Key: "recipient_name", Label: "Recipient", Required: true},
			{Key: "message", Label: "Message"},
		},
	}
	require.NoError(t, templates.CreateTemplate(ctx, admin, tpl))

	chains, err := NewChainRegistry(DefaultChains(), nil)
	require.NoError(t, err)

	store := letter.NewMemoryStore()
	cfg := &config.Config{VerifyBaseURL: "https://elms.example.uz", ReferencePrefix: "ELMS"}
	svc := NewWorkflowService(store, templates, resolver, chains,
		letter.NewMemoryReferenceGenerator(cfg.ReferencePrefix, store), auditService, cfg, zap.NewNop()).(*WorkflowServiceImpl)
	svc.now = func() time.Time { return nowTime }

	return &fixture{svc: svc, store: store, auditRepo: auditRepo, tpl: tpl}
}

func (f *fixture) draft(t *testing.T, author permission.Actor) *letter.Letter {
	t.Helper()
	l, err := f.svc.CreateLetter(context.Background(), author, CreateLetterInput{
		Subject:     "Quarterly report",
		Department:  "Finance",
		TemplateID:  f.tpl.ID,
		MergeValues: map[string]string{"recipient_name": "Aziz", "message": "see attached"},
		Recipients:  []RecipientInput{{Name: "Aziz", Email: "aziz@example.uz"}},
	})
	require.NoError(t, err)
	return l
}

func actions(l *letter.Letter) []letter.HistoryAction {
	out := make([]letter.HistoryAction, 0, len(l.History))
	for _, h := range l.History {
		out = append(out, h.Action)
	}
	return out
}

func TestCreateLetter(t *testing.T) {
	f := newFixture(t)
	l := f.draft(t, writer)

	assert.Equal(t, letter.StatusDraft, l.Status)
	assert.Equal(t, "ELMS-202503-0001", l.Reference)
	assert.Equal(t, "Dear Aziz, see attached", l.Body)
	assert.Equal(t, "Notice", l.TemplateName)
	assert.Equal(t, letter.PriorityNormal, l.Priority)
	assert.Equal(t, writer.ID, l.CreatedBy)
	assert.Equal(t, []letter.HistoryAction{letter.ActionCreated}, actions(l))
	assert.Empty(t, l.Workflow)
	assert.Equal(t, letter.DeliveryPending, l.Recipients[0].Status)

	second := f.draft(t, writer)
	assert.Equal(t, "ELMS-202503-0002", second.Reference)
}

func TestCreateLetterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		actor permission.Actor
		input CreateLetterInput
		check func(error) bool
	}{
		{"signee cannot create", signee, CreateLetterInput{Subject: "x"}, apperrors.IsPermission},
		{"subject required", writer, CreateLetterInput{Subject: "  "}, apperrors.IsValidation},
		{"unknown template", writer, CreateLetterInput{Subject: "x", TemplateID: "nope"}, apperrors.IsNotFound},
		{"undeclared merge key", writer, CreateLetterInput{Subject: "x", TemplateID: f.tpl.ID, MergeValues: map[string]string{"nope": "1"}}, apperrors.IsValidation},
		{"merge values without template", writer, CreateLetterInput{Subject: "x", MergeValues: map[string]string{"a": "1"}}, apperrors.IsValidation},
		{"bad priority", writer, CreateLetterInput{Subject: "x", Priority: "Urgent"}, apperrors.IsValidation},
		{"email recipient without address", writer, CreateLetterInput{Subject: "x", Recipients: []RecipientInput{{Name: "A"}}}, apperrors.IsValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateLetter(ctx, tt.actor, tt.input)
			require.Error(t, err)
			assert.True(t, tt.check(err), err.Error())
		})
	}

	all, err := f.store.List(ctx, letter.Filter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestFullRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.draft(t, writer)

	l, err := f.svc.SubmitLetter(ctx, writer, l.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, letter.StatusPendingApproval, l.Status)
	assert.Equal(t, DefaultChainName, l.ApprovalChain)
	require.Len(t, l.Workflow, 2)
	assert.Equal(t, "Department Head", l.Workflow[0].ApproverName)
	assert.Equal(t, 0, l.CurrentStepIndex)
	require.NotNil(t, l.SubmittedAt)

	l, err = f.svc.ActOnStep(ctx, signee, l.ID, StepAction{Level: 1, Outcome: OutcomeApproved})
	require.NoError(t, err)
	assert.Equal(t, letter.StatusPendingApproval, l.Status)
	assert.Equal(t, 1, l.CurrentStepIndex)
	assert.Equal(t, "Level 1 approval", l.History[len(l.History)-1].Note)
	assert.Nil(t, l.ApprovedAt)

	l, err = f.svc.ActOnStep(ctx, signee, l.ID, StepAction{Level: 2, Outcome: OutcomeApproved, Comment: "ok"})
	require.NoError(t, err)
	assert.Equal(t, letter.StatusApproved, l.Status)
	assert.Equal(t, 2, l.CurrentStepIndex)
	require.NotNil(t, l.ApprovedAt)
	assert.Equal(t, "Final approval", l.History[len(l.History)-1].Note)
	assert.Equal(t, signee.Name, l.Workflow[1].ActedBy)
	assert.Equal(t, "ok", l.Workflow[1].Comments)

	l, err = f.svc.SignLetter(ctx, signee, l.ID, SignRequest{Note: "signed"})
	require.NoError(t, err)
	assert.Equal(t, letter.StatusSigned, l.Status)
	require.NotNil(t, l.Signature)
	require.NotNil(t, l.SignedAt)
	assert.Equal(t, "Direktor", l.Signature.SignedByTitle)
	assert.Equal(t, "https://elms.example.uz/verify/"+l.Reference, l.Signature.VerificationLink)
	assert.Equal(t, l.Signature.VerificationLink, l.Signature.QRPayload)

	sum, err := letter.Checksum(l)
	require.NoError(t, err)
	assert.Equal(t, sum, l.Signature.Checksum)

	assert.Equal(t, []letter.HistoryAction{
		letter.ActionCreated,
		letter.ActionSubmitted,
		letter.ActionApproved,
		letter.ActionApproved,
		letter.ActionSigned,
	}, actions(l))

	logs, _, err := f.auditRepo.List(ctx, audit.Filter{RecordID: l.ID}, 0, 0)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(logs), 5)
}

func submitted(t *testing.T, f *fixture) *letter.Letter {
	t.Helper()
	l := f.draft(t, writer)
	l, err := f.svc.SubmitLetter(context.Background(), writer, l.ID, 0)
	require.NoError(t, err)
	return l
}

func TestSignRequiresApproval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := submitted(t, f)

	_, err := f.svc.SignLetter(ctx, signee, l.ID, SignRequest{})
	assert.True(t, apperrors.IsInvalidState(err))

	after, err := f.store.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, l, after)
}

func TestOutOfOrderStep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := submitted(t, f)

	_, err := f.svc.ActOnStep(ctx, signee, l.ID, StepAction{Level: 2, Outcome: OutcomeApproved})
	assert.True(t, apperrors.IsOutOfOrderStep(err))

	_, err = f.svc.ActOnStep(ctx, signee, l.ID, StepAction{Level: 7, Outcome: OutcomeApproved})
	assert.True(t, apperrors.IsNotFound(err))

	_, err = f.svc.ActOnStep(ctx, signee, l.ID, StepAction{Level: 1, Outcome: OutcomeApproved})
	require.NoError(t, err)
	_, err = f.svc.ActOnStep(ctx, signee, l.ID, StepAction{Level: 1, Outcome: OutcomeApproved})
	assert.True(t, apperrors.IsInvalidState(err))

	after, err := f.store.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, after.CurrentStepIndex)
	assert.Len(t, after.History, 3)
}

func TestRejectIsTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := submitted(t, f)

	l, err := f.svc.ActOnCurrentStep(ctx, signee, l.ID, OutcomeRejected, "wrong numbers", 0)
	require.NoError(t, err)
	assert.Equal(t, letter.StatusRejected, l.Status)
	assert.Equal(t, letter.StepRejected, l.Workflow[0].Status)
	assert.Equal(t, "wrong numbers", l.History[len(l.History)-1].Note)

	_, err = f.svc.ActOnStep(ctx, signee, l.ID, StepAction{Level: 2, Outcome: OutcomeApproved})
	assert.True(t, apperrors.IsInvalidState(err))
	_, err = f.svc.SignLetter(ctx, signee, l.ID, SignRequest{})
	assert.True(t, apperrors.IsInvalidState(err))
	_, err = f.svc.SubmitLetter(ctx, writer, l.ID, 0)
	assert.True(t, apperrors.IsInvalidState(err))
}

func TestWorkflowPermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := submitted(t, f)

	_, err := f.svc.ActOnStep(ctx, writer, l.ID, StepAction{Level: 1, Outcome: OutcomeApproved})
	assert.True(t, apperrors.IsPermission(err))
	_, err = f.svc.ActOnStep(ctx, signee, l.ID, StepAction{Level: 1, Outcome: "Maybe"})
	assert.True(t, apperrors.IsValidation(err))

	_, err = f.svc.ActOnStep(ctx, admin, l.ID, StepAction{Level: 1, Outcome: OutcomeApproved})
	require.NoError(t, err)
	_, err = f.svc.ActOnStep(ctx, admin, l.ID, StepAction{Level: 2, Outcome: OutcomeApproved})
	require.NoError(t, err)

	_, err = f.svc.SignLetter(ctx, writer, l.ID, SignRequest{})
	assert.True(t, apperrors.IsPermission(err))
}

func TestSubmitRequiresCompleteLetter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	l, err := f.svc.CreateLetter(ctx, writer, CreateLetterInput{Subject: "Memo", TemplateID: f.tpl.ID})
	require.NoError(t, err)

	_, err = f.svc.SubmitLetter(ctx, writer, l.ID, 0)
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{"department", "recipients", "merge_values.recipient_name"}, verr.Fields)

	after, err := f.store.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, letter.StatusDraft, after.Status)
}

func TestStaleVersionConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.draft(t, writer)

	subject := "Updated"
	_, err := f.svc.EditDraft(ctx, writer, l.ID, EditDraftInput{Subject: &subject, ExpectedVersion: l.Version})
	require.NoError(t, err)

	_, err = f.svc.SubmitLetter(ctx, writer, l.ID, l.Version)
	assert.True(t, apperrors.IsConflict(err))
}

func TestEditDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.draft(t, writer)

	l, err := f.svc.EditDraft(ctx, writer, l.ID, EditDraftInput{MergeValues: map[string]string{"recipient_name": "Bobur"}})
	require.NoError(t, err)
	assert.Equal(t, "Dear Bobur, ", l.Body)
	last := l.History[len(l.History)-1]
	assert.Equal(t, letter.ActionUpdated, last.Action)
	assert.Equal(t, "merge_values", last.Metadata["fields"])

	body := "free text"
	_, err = f.svc.EditDraft(ctx, writer, l.ID, EditDraftInput{Body: &body})
	assert.True(t, apperrors.IsValidation(err))

	subject := "Hijack"
	_, err = f.svc.EditDraft(ctx, other, l.ID, EditDraftInput{Subject: &subject})
	assert.True(t, apperrors.IsPermission(err))

	_, err = f.svc.EditDraft(ctx, writer, l.ID, EditDraftInput{})
	assert.True(t, apperrors.IsValidation(err))

	_, err = f.svc.SubmitLetter(ctx, writer, l.ID, 0)
	require.NoError(t, err)
	_, err = f.svc.EditDraft(ctx, writer, l.ID, EditDraftInput{Subject: &subject})
	assert.True(t, apperrors.IsInvalidState(err))
}

func TestDeleteDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mine := f.draft(t, writer)

	assert.True(t, apperrors.IsPermission(f.svc.DeleteDraft(ctx, other, mine.ID)))
	assert.True(t, apperrors.IsPermission(f.svc.DeleteDraft(ctx, signee, mine.ID)))
	require.NoError(t, f.svc.DeleteDraft(ctx, writer, mine.ID))
	assert.True(t, apperrors.IsNotFound(f.svc.DeleteDraft(ctx, writer, mine.ID)))

	sent := submitted(t, f)
	assert.True(t, apperrors.IsInvalidState(f.svc.DeleteDraft(ctx, admin, sent.ID)))
}

func TestVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mine := f.draft(t, writer)
	theirs := f.draft(t, other)

	own, err := f.svc.ListLetters(ctx, writer, letter.Filter{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, mine.ID, own[0].ID)

	all, err := f.svc.ListLetters(ctx, signee, letter.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = f.svc.GetLetter(ctx, writer, theirs.ID)
	assert.True(t, apperrors.IsNotFound(err))

	got, err := f.svc.GetLetter(ctx, admin, theirs.ID)
	require.NoError(t, err)
	assert.Equal(t, theirs.Reference, got.Reference)
}
