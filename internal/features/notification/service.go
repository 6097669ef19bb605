package notification

import (
	"context"
	"fmt"

	common_models "go-elms/internal/common/models"
	"go-elms/internal/features/letter"
	apperrors "go-elms/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserDirectory resolves approver emails to user accounts.
type UserDirectory interface {
	FindByEmail(ctx context.Context, email string) (*common_models.User, error)
}

type NotificationService interface {
	CreateNotification(ctx context.Context, userID, title, message string, notifType NotificationType, link, letterID string) error
	GetUserNotifications(ctx context.Context, userID string, page, limit int64) ([]Notification, int64, error)
	GetUnreadCount(ctx context.Context, userID string) (int64, error)
	MarkAsRead(ctx context.Context, id string, userID string) error
	MarkAllAsRead(ctx context.Context, userID string) error
	HandleLetterEvent(ctx context.Context, ev letter.Event) error
}

type NotificationServiceImpl struct {
	repo   NotificationRepository
	users  UserDirectory
	logger *zap.Logger
}

func NewNotificationService(repo NotificationRepository, users UserDirectory, logger *zap.Logger) NotificationService {
	return &NotificationServiceImpl{
		repo:   repo,
		users:  users,
		logger: logger,
	}
}

func (s *NotificationServiceImpl) CreateNotification(ctx context.Context, userID, title, message string, notifType NotificationType, link, letterID string) error {
	notification := &Notification{
		ID:       uuid.NewString(),
		UserID:   userID,
		Title:    title,
		Message:  message,
		Type:     notifType,
		Link:     link,
		LetterID: letterID,
	}
	return s.repo.Create(ctx, notification)
}

func (s *NotificationServiceImpl) GetUserNotifications(ctx context.Context, userID string, page, limit int64) ([]Notification, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return s.repo.GetByUserID(ctx, userID, page, limit)
}

func (s *NotificationServiceImpl) GetUnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

func (s *NotificationServiceImpl) MarkAsRead(ctx context.Context, id string, userID string) error {
	return s.repo.MarkAsRead(ctx, id, userID)
}

func (s *NotificationServiceImpl) MarkAllAsRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// HandleLetterEvent turns workflow transitions into notifications: approvers
// learn about letters waiting at their level, authors about outcomes.
func (s *NotificationServiceImpl) HandleLetterEvent(ctx context.Context, ev letter.Event) error {
	if ev.Type != letter.EventUpdated || ev.Previous == nil || ev.Letter == nil {
		return nil
	}
	prev, cur := ev.Previous, ev.Letter
	link := "/letters/" + cur.ID

	switch {
	case cur.Status == letter.StatusPendingApproval &&
		(prev.Status == letter.StatusDraft || cur.CurrentStepIndex > prev.CurrentStepIndex):
		return s.notifyApprover(ctx, cur, link)

	case prev.Status == cur.Status:
		return nil

	case cur.Status == letter.StatusApproved:
		return s.CreateNotification(ctx, cur.CreatedBy, "Letter approved",
			fmt.Sprintf("%s \"%s\" passed all approvals and awaits signature.", cur.Reference, cur.Subject),
			NotificationTypeSuccess, link, cur.ID)

	case cur.Status == letter.StatusRejected:
		msg := fmt.Sprintf("%s \"%s\" was rejected.", cur.Reference, cur.Subject)
		for _, step := range cur.Workflow {
			if step.Status == letter.StepRejected && step.Comments != "" {
				msg = fmt.Sprintf("%s \"%s\" was rejected at level %d: %s", cur.Reference, cur.Subject, step.Level, step.Comments)
			}
		}
		return s.CreateNotification(ctx, cur.CreatedBy, "Letter rejected", msg, NotificationTypeError, link, cur.ID)

	case cur.Status == letter.StatusSigned:
		return s.CreateNotification(ctx, cur.CreatedBy, "Letter signed",
			fmt.Sprintf("%s \"%s\" was signed.", cur.Reference, cur.Subject),
			NotificationTypeSuccess, link, cur.ID)
	}
	return nil
}

func (s *NotificationServiceImpl) notifyApprover(ctx context.Context, l *letter.Letter, link string) error {
	step, ok := l.CurrentStep()
	if !ok || step.ApproverEmail == "" || s.users == nil {
		return nil
	}
	user, err := s.users.FindByEmail(ctx, step.ApproverEmail)
	if apperrors.IsNotFound(err) {
		s.logger.Debug("Approver has no account", zap.String("letter_id", l.ID), zap.String("email", step.ApproverEmail))
		return nil
	}
	if err != nil {
		return err
	}
	return s.CreateNotification(ctx, user.ID, "Approval requested",
		fmt.Sprintf("%s \"%s\" awaits your level %d approval.", l.Reference, l.Subject, step.Level),
		NotificationTypeTask, link, l.ID)
}
