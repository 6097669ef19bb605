package delivery

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	common_models "go-elms/internal/common/models"
	"go-elms/internal/config"
	"go-elms/internal/features/audit"
	"go-elms/internal/features/letter"
	"go-elms/internal/features/permission"
	"go-elms/internal/features/render"
	apperrors "go-elms/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	signee = permission.Actor{ID: "u-signee", Name: "Nodira Rahimova", Role: permission.RoleSignee}
	writer = permission.Actor{ID: "u-writer", Name: "Dilshod Karimov", Role: permission.RoleLetterWriter}
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []Message
	fail map[string]bool
}

func (m *fakeMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail[msg.To[0]] {
		return errors.New("mailbox unavailable")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func signedLetter(t *testing.T, id, ref string) *letter.Letter {
	t.Helper()
	at := time.Date(2025, 5, 2, 10, 0, 0, 0, time.UTC)
	l := &letter.Letter{
		ID:          id,
		Reference:   ref,
		Subject:     "Budget approval",
		Department:  "Finance",
		Body:        "<p>Please find the approved budget.</p>",
		MergeValues: map[string]string{},
		CreatedBy:   "u-writer",
		CreatedAt:   at,
		SubmittedAt: &at,
		ApprovedAt:  &at,
		SignedAt:    &at,
		Workflow: []letter.WorkflowStep{
			{ID: "s1", Level: 1, ApproverName: "Department Head", Status: letter.StepApproved},
		},
		CurrentStepIndex: 1,
		History: []letter.HistoryEvent{
			{ID: "h1", Action: letter.ActionCreated},
			{ID: "h2", Action: letter.ActionSubmitted},
			{ID: "h3", Action: letter.ActionApproved},
			{ID: "h4", Action: letter.ActionSigned},
		},
		Recipients: []letter.Recipient{
			{ID: "r1", Name: "Aziz", Email: "aziz@example.uz", DeliveryMethod: letter.DeliveryEmail, Status: letter.DeliveryPending},
			{ID: "r2", Name: "Malika", Email: "malika@example.uz", DeliveryMethod: letter.DeliveryEmail, Status: letter.DeliveryPending},
			{ID: "r3", Name: "Archive", DeliveryMethod: letter.DeliveryPostal, Status: letter.DeliveryPending},
		},
	}
	sum, err := letter.Checksum(l)
	require.NoError(t, err)
	l.Signature = &letter.Signature{
		ID:               "sig",
		SignedBy:         "Nodira Rahimova",
		SignedAt:         at,
		Checksum:         sum,
		VerificationLink: "https://elms.example.uz/verify/" + ref,
	}
	l.Status = letter.Project(l)
	return l
}

type fixture struct {
	svc       DeliveryService
	store     *letter.MemoryStore
	mailer    *fakeMailer
	emails    *MemoryEmailRepository
	auditRepo *audit.MemoryAuditRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	resolver, err := permission.NewDefaultResolver()
	require.NoError(t, err)

	cfg := &config.Config{
		OrgName:             "Example LLC",
		VerifyBaseURL:       "https://elms.example.uz",
		SMTPFrom:            "noreply@example.uz",
		DeliveryConcurrency: 2,
		RenderTimeout:       10 * time.Second,
	}
	store := letter.NewMemoryStore()
	mailer := &fakeMailer{fail: map[string]bool{}}
	emails := NewMemoryEmailRepository()
	auditRepo := audit.NewMemoryAuditRepository()
	renderer := render.NewManager(nil, cfg, zap.NewNop())

	svc := NewDeliveryService(store, renderer, mailer, emails, audit.NewAuditService(auditRepo, nil), resolver, cfg, zap.NewNop())
	return &fixture{svc: svc, store: store, mailer: mailer, emails: emails, auditRepo: auditRepo}
}

func TestSweepDeliversPendingEmailRecipients(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	original := signedLetter(t, "id-1", "ELMS-202505-0001")
	require.NoError(t, f.store.Add(ctx, original))

	res, err := f.svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Letters: 1, Sent: 2}, res)
	require.Equal(t, 2, f.mailer.count())

	msg := f.mailer.sent[0]
	assert.Equal(t, "ELMS-202505-0001: Budget approval", msg.Subject)
	assert.Contains(t, msg.TextBody, "https://elms.example.uz/verify/ELMS-202505-0001")
	assert.Equal(t, "ELMS-202505-0001.pdf", msg.AttachmentName)
	assert.True(t, bytes.HasPrefix(msg.Attachment, []byte("%PDF")))

	l, err := f.store.Get(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, letter.DeliverySent, l.Recipients[0].Status)
	assert.NotNil(t, l.Recipients[0].SentAt)
	assert.Equal(t, letter.DeliverySent, l.Recipients[1].Status)
	assert.Equal(t, letter.DeliveryPending, l.Recipients[2].Status, "postal recipients are handled manually")
	assert.Equal(t, letter.StatusSigned, l.Status)
	assert.Len(t, l.History, len(original.History))

	sum, err := letter.Checksum(l)
	require.NoError(t, err)
	assert.Equal(t, l.Signature.Checksum, sum, "delivery must not break the signature")

	logged, err := f.emails.ListByLetter(ctx, "id-1")
	require.NoError(t, err)
	require.Len(t, logged, 2)
	for _, e := range logged {
		assert.Equal(t, EmailSent, e.Status)
	}

	audits, _, err := f.auditRepo.List(ctx, audit.Filter{Action: common_models.AuditActionDelivery}, 0, 0)
	require.NoError(t, err)
	assert.Len(t, audits, 1)

	// a second sweep finds nothing left to send
	res, err = f.svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
	assert.Equal(t, 2, f.mailer.count())
}

func TestFailedSendStaysPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Add(ctx, signedLetter(t, "id-1", "ELMS-202505-0001")))
	f.mailer.fail["malika@example.uz"] = true

	res, err := f.svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Letters: 1, Sent: 1, Failed: 1}, res)

	l, err := f.store.Get(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, letter.DeliverySent, l.Recipients[0].Status)
	assert.Equal(t, letter.DeliveryPending, l.Recipients[1].Status)

	logged, err := f.emails.ListByLetter(ctx, "id-1")
	require.NoError(t, err)
	var failed int
	for _, e := range logged {
		if e.Status == EmailFailed {
			failed++
			assert.True(t, strings.Contains(e.ErrorMsg, "mailbox unavailable"))
		}
	}
	assert.Equal(t, 1, failed)

	// the next run retries only the failed recipient
	delete(f.mailer.fail, "malika@example.uz")
	res, err = f.svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Letters: 1, Sent: 1}, res)
}

func TestDeliverLetterGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Add(ctx, signedLetter(t, "id-1", "ELMS-202505-0001")))

	_, err := f.svc.DeliverLetter(ctx, writer, "id-1")
	assert.True(t, apperrors.IsPermission(err))

	_, err = f.svc.DeliverLetter(ctx, signee, "missing")
	assert.True(t, apperrors.IsNotFound(err))

	draft := &letter.Letter{
		ID:        "id-2",
		Reference: "ELMS-202505-0002",
		Subject:   "Draft",
		Status:    letter.StatusDraft,
		CreatedBy: "u-writer",
		History:   []letter.HistoryEvent{{ID: "h1", Action: letter.ActionCreated}},
	}
	require.NoError(t, f.store.Add(ctx, draft))
	_, err = f.svc.DeliverLetter(ctx, signee, "id-2")
	assert.True(t, apperrors.IsInvalidState(err))

	res, err := f.svc.DeliverLetter(ctx, signee, "id-1")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Sent)

	emails, err := f.svc.ListEmails(ctx, signee, "id-1")
	require.NoError(t, err)
	assert.Len(t, emails, 2)

	_, err = f.svc.ListEmails(ctx, writer, "id-1")
	assert.True(t, apperrors.IsPermission(err))
}

func TestBuildMIME(t *testing.T) {
	raw, err := buildMIME(Message{
		From:           "noreply@example.uz",
		To:             []string{"aziz@example.uz"},
		Subject:        "ELMS-202505-0001: Budget",
		TextBody:       "hello",
		AttachmentName: "ELMS-202505-0001.pdf",
		AttachmentType: "application/pdf",
		Attachment:     bytes.Repeat([]byte("x"), 200),
	})
	require.NoError(t, err)
	s := string(raw)
	assert.Contains(t, s, "To: aziz@example.uz\r\n")
	assert.Contains(t, s, "Content-Type: multipart/mixed; boundary=")
	assert.Contains(t, s, `filename="ELMS-202505-0001.pdf"`)
	for _, line := range strings.Split(s, "\r\n") {
		assert.LessOrEqual(t, len(line), 998)
	}
}
