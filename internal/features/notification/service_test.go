package notification

import (
	"context"
	"testing"

	common_models "go-elms/internal/common/models"
	"go-elms/internal/features/letter"
	apperrors "go-elms/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDirectory map[string]common_models.User

func (d fakeDirectory) FindByEmail(_ context.Context, email string) (*common_models.User, error) {
	u, ok := d[email]
	if !ok {
		return nil, apperrors.NewNotFoundError("user", email)
	}
	return &u, nil
}

func pendingLetter(step int) *letter.Letter {
	l := &letter.Letter{
		ID:        "l-1",
		Reference: "ELMS-202501-0001",
		Subject:   "Memo",
		CreatedBy: "u-writer",
		Status:    letter.StatusPendingApproval,
		Workflow: []letter.WorkflowStep{
			{Level: 1, ApproverEmail: "head@example.uz", Status: letter.StepPending},
			{Level: 2, ApproverEmail: "nodira.r@example.uz", Status: letter.StepPending},
		},
	}
	for i := 0; i < step; i++ {
		l.Workflow[i].Status = letter.StepApproved
	}
	l.CurrentStepIndex = step
	return l
}

func newTestService() (NotificationService, *MemoryNotificationRepository) {
	repo := NewMemoryNotificationRepository()
	dir := fakeDirectory{"nodira.r@example.uz": {ID: "u-signee", Email: "nodira.r@example.uz"}}
	return NewNotificationService(repo, dir, zap.NewNop()), repo
}

func TestHandleLetterEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("submission without approver account is skipped", func(t *testing.T) {
		svc, repo := newTestService()
		draft := &letter.Letter{ID: "l-1", Status: letter.StatusDraft}
		require.NoError(t, svc.HandleLetterEvent(ctx, letter.Event{Type: letter.EventUpdated, Previous: draft, Letter: pendingLetter(0)}))
		assert.Empty(t, repo.items)
	})

	t.Run("advance notifies next approver", func(t *testing.T) {
		svc, _ := newTestService()
		require.NoError(t, svc.HandleLetterEvent(ctx, letter.Event{Type: letter.EventUpdated, Previous: pendingLetter(0), Letter: pendingLetter(1)}))
		list, total, err := svc.GetUserNotifications(ctx, "u-signee", 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		assert.Equal(t, NotificationTypeTask, list[0].Type)
		assert.Equal(t, "l-1", list[0].LetterID)
	})

	t.Run("rejection notifies author with comment", func(t *testing.T) {
		svc, _ := newTestService()
		rejected := pendingLetter(0)
		rejected.Workflow[0].Status = letter.StepRejected
		rejected.Workflow[0].Comments = "missing figures"
		rejected.Status = letter.StatusRejected
		require.NoError(t, svc.HandleLetterEvent(ctx, letter.Event{Type: letter.EventUpdated, Previous: pendingLetter(0), Letter: rejected}))

		list, _, err := svc.GetUserNotifications(ctx, "u-writer", 1, 10)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Contains(t, list[0].Message, "missing figures")
	})

	t.Run("signing notifies author", func(t *testing.T) {
		svc, _ := newTestService()
		approved := pendingLetter(2)
		approved.Status = letter.StatusApproved
		signed := approved.Clone()
		signed.Status = letter.StatusSigned
		require.NoError(t, svc.HandleLetterEvent(ctx, letter.Event{Type: letter.EventUpdated, Previous: approved, Letter: signed}))

		count, err := svc.GetUnreadCount(ctx, "u-writer")
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
	})

	t.Run("created and edits are ignored", func(t *testing.T) {
		svc, repo := newTestService()
		draft := &letter.Letter{ID: "l-1", Status: letter.StatusDraft}
		require.NoError(t, svc.HandleLetterEvent(ctx, letter.Event{Type: letter.EventCreated, Letter: draft}))
		require.NoError(t, svc.HandleLetterEvent(ctx, letter.Event{Type: letter.EventUpdated, Previous: draft, Letter: draft}))
		assert.Empty(t, repo.items)
	})
}

func TestMarkAsRead(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()
	require.NoError(t, svc.CreateNotification(ctx, "u-1", "a", "b", NotificationTypeInfo, "", ""))
	require.NoError(t, svc.CreateNotification(ctx, "u-1", "c", "d", NotificationTypeInfo, "", ""))
	id := repo.items[0].ID

	assert.True(t, apperrors.IsNotFound(svc.MarkAsRead(ctx, id, "u-2")))
	require.NoError(t, svc.MarkAsRead(ctx, id, "u-1"))
	count, err := svc.GetUnreadCount(ctx, "u-1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	require.NoError(t, svc.MarkAllAsRead(ctx, "u-1"))
	count, err = svc.GetUnreadCount(ctx, "u-1")
	require.NoError(t, err)
	assert.Zero(t, count)
}
