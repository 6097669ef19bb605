package delivery

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	common_models "go-elms/internal/common/models"
	"go-elms/internal/config"
	"go-elms/internal/features/audit"
	"go-elms/internal/features/letter"
	"go-elms/internal/features/permission"
	"go-elms/internal/features/render"
	apperrors "go-elms/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DocumentRenderer produces the PDF attached to outgoing letters.
type DocumentRenderer interface {
	RenderLetter(ctx context.Context, l *letter.Letter, format render.Format) (*render.Document, error)
}

type DeliveryService interface {
	// Sweep delivers every signed letter that still has pending email recipients.
	Sweep(ctx context.Context) (Result, error)
	DeliverLetter(ctx context.Context, actor permission.Actor, id string) (Result, error)
	ListEmails(ctx context.Context, actor permission.Actor, letterID string) ([]Email, error)
}

type DeliveryServiceImpl struct {
	Store        letter.Store
	Renderer     DocumentRenderer
	Mailer       Mailer
	Repo         EmailRepository
	AuditService audit.AuditService
	Permissions  *permission.Resolver
	Config       *config.Config
	Logger       *zap.Logger

	// one run at a time so a manual delivery never races the scheduled sweep
	mu  sync.Mutex
	now func() time.Time
}

func NewDeliveryService(
	store letter.Store,
	renderer DocumentRenderer,
	mailer Mailer,
	repo EmailRepository,
	auditService audit.AuditService,
	permissions *permission.Resolver,
	cfg *config.Config,
	logger *zap.Logger,
) DeliveryService {
	return &DeliveryServiceImpl{
		Store:        store,
		Renderer:     renderer,
		Mailer:       mailer,
		Repo:         repo,
		AuditService: auditService,
		Permissions:  permissions,
		Config:       cfg,
		Logger:       logger,
		now:          func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

func (s *DeliveryServiceImpl) Sweep(ctx context.Context) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	letters, err := s.Store.List(ctx, letter.Filter{Status: letter.StatusSigned})
	if err != nil {
		return Result{}, err
	}

	var total Result
	for _, l := range letters {
		if len(l.PendingEmailRecipients()) == 0 {
			continue
		}
		res, err := s.deliver(ctx, l)
		total.add(res)
		if err != nil {
			s.Logger.Warn("Delivery failed", zap.String("letter_id", l.ID), zap.Error(err))
		}
		if ctx.Err() != nil {
			return total, ctx.Err()
		}
	}
	if total.Letters > 0 {
		s.Logger.Info("Delivery sweep finished",
			zap.Int("letters", total.Letters),
			zap.Int("sent", total.Sent),
			zap.Int("failed", total.Failed),
		)
	}
	return total, nil
}

func (s *DeliveryServiceImpl) DeliverLetter(ctx context.Context, actor permission.Actor, id string) (Result, error) {
	if err := s.Permissions.Require(actor, permission.CanSignLetter); err != nil {
		return Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.Store.Get(ctx, id)
	if err != nil {
		return Result{}, err
	}
	if l.Status != letter.StatusSigned {
		e := apperrors.NewInvalidStateError("letter", l.ID, string(l.Status), "deliver")
		e.Reason = "only signed letters are delivered"
		return Result{}, e
	}
	return s.deliver(ctx, l)
}

func (s *DeliveryServiceImpl) ListEmails(ctx context.Context, actor permission.Actor, letterID string) ([]Email, error) {
	if err := s.Permissions.Require(actor, permission.CanViewAllLetters); err != nil {
		return nil, err
	}
	if _, err := s.Store.Get(ctx, letterID); err != nil {
		return nil, err
	}
	return s.Repo.ListByLetter(ctx, letterID)
}

// deliver sends the letter to its pending email recipients and marks the
// successful ones Sent in a single store update.
func (s *DeliveryServiceImpl) deliver(ctx context.Context, l *letter.Letter) (Result, error) {
	pending := l.PendingEmailRecipients()
	if len(pending) == 0 {
		return Result{}, nil
	}

	msg := Message{
		From:     s.Config.SMTPFrom,
		Subject:  fmt.Sprintf("%s: %s", l.Reference, l.Subject),
		TextBody: s.textBody(l),
	}
	doc, err := s.Renderer.RenderLetter(ctx, l, render.FormatPDF)
	if err != nil {
		s.Logger.Warn("Sending without attachment, render failed", zap.String("letter_id", l.ID), zap.Error(err))
	} else {
		msg.AttachmentName = doc.Filename
		msg.AttachmentType = doc.ContentType
		msg.Attachment = doc.Data
	}

	sent := make([]bool, len(pending))
	limit := s.Config.DeliveryConcurrency
	if limit < 1 {
		limit = 1
	}
	var g errgroup.Group
	g.SetLimit(limit)
	for i, r := range pending {
		i, r := i, r
		g.Go(func() error {
			sent[i] = s.send(ctx, l, r, msg)
			return nil
		})
	}
	_ = g.Wait()

	res := Result{Letters: 1}
	sentIDs := make(map[string]bool, len(pending))
	for i, ok := range sent {
		if ok {
			sentIDs[pending[i].ID] = true
			res.Sent++
		} else {
			res.Failed++
		}
	}
	if len(sentIDs) == 0 {
		return res, nil
	}

	at := s.now()
	_, err = s.Store.Update(ctx, l.ID, 0, func(cur *letter.Letter) error {
		for i := range cur.Recipients {
			r := &cur.Recipients[i]
			if sentIDs[r.ID] && r.Status == letter.DeliveryPending {
				r.Status = letter.DeliverySent
				r.SentAt = &at
			}
		}
		cur.UpdatedAt = at
		return nil
	})
	if err != nil {
		return res, err
	}

	changes := map[string]common_models.Change{
		"sent":   {New: res.Sent},
		"failed": {New: res.Failed},
	}
	if err := s.AuditService.LogChange(ctx, common_models.AuditActionDelivery, "letter", l.ID, changes); err != nil {
		s.Logger.Warn("Failed to write audit log", zap.String("letter_id", l.ID), zap.Error(err))
	}
	s.Logger.Info("Letter delivered",
		zap.String("letter_id", l.ID),
		zap.String("reference", l.Reference),
		zap.Int("sent", res.Sent),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}

func (s *DeliveryServiceImpl) send(ctx context.Context, l *letter.Letter, r letter.Recipient, msg Message) bool {
	msg.To = []string{r.Email}
	record := &Email{
		ID:          uuid.NewString(),
		LetterID:    l.ID,
		Reference:   l.Reference,
		RecipientID: r.ID,
		From:        msg.From,
		To:          msg.To,
		Subject:     msg.Subject,
		Attachment:  msg.AttachmentName,
		Status:      EmailQueued,
	}
	if err := s.Repo.Create(ctx, record); err != nil {
		s.Logger.Warn("Failed to log email", zap.String("letter_id", l.ID), zap.Error(err))
		return false
	}

	status, errMsg := EmailSent, ""
	if err := s.Mailer.Send(ctx, msg); err != nil {
		status, errMsg = EmailFailed, err.Error()
		s.Logger.Warn("Email send failed",
			zap.String("letter_id", l.ID),
			zap.String("recipient_id", r.ID),
			zap.Error(err),
		)
	}
	if err := s.Repo.UpdateStatus(ctx, record.ID, status, errMsg); err != nil {
		s.Logger.Warn("Failed to update email log", zap.String("email_id", record.ID), zap.Error(err))
	}
	return status == EmailSent
}

func (s *DeliveryServiceImpl) textBody(l *letter.Letter) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", s.Config.OrgName)
	fmt.Fprintf(&b, "Reference: %s\n", l.Reference)
	fmt.Fprintf(&b, "Subject: %s\n\n", l.Subject)
	b.WriteString("The signed letter is attached.\n")
	link := letter.VerificationLink(s.Config.VerifyBaseURL, l.Reference)
	if l.Signature != nil && l.Signature.VerificationLink != "" {
		link = l.Signature.VerificationLink
	}
	fmt.Fprintf(&b, "Verify its authenticity at %s\n", link)
	return b.String()
}
