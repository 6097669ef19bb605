package letter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	apperrors "go-elms/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDraft(id, ref string) *Letter {
	return &Letter{
		ID:          id,
		Reference:   ref,
		Subject:     "Policy Update",
		Department:  "Boshqaruv",
		Body:        "Body",
		Tags:        []string{"policy"},
		Priority:    PriorityNormal,
		MergeValues: map[string]string{"subject_line": "Policy Update"},
		Status:      StatusDraft,
		CreatedBy:   "u-writer",
		History:     []HistoryEvent{{ID: id + "-h1", Action: ActionCreated, Actor: "Dilshod Karimov"}},
		Recipients:  []Recipient{{ID: "r1", Name: "Ali", Email: "ali@example.uz", DeliveryMethod: DeliveryEmail, Status: DeliveryPending}},
	}
}

func TestAddGetReturnCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	original := newDraft("l-1", "ELMS-202601-0001")
	require.NoError(t, store.Add(ctx, original))
	assert.Equal(t, int64(1), original.Version)

	original.Subject = "changed by caller"
	got, err := store.Get(ctx, "l-1")
	require.NoError(t, err)
	assert.Equal(t, "Policy Update", got.Subject)

	got.Tags[0] = "mutated"
	got.MergeValues["subject_line"] = "mutated"
	got.Recipients[0].Name = "mutated"
	again, err := store.Get(ctx, "l-1")
	require.NoError(t, err)
	assert.Equal(t, "policy", again.Tags[0])
	assert.Equal(t, "Policy Update", again.MergeValues["subject_line"])
	assert.Equal(t, "Ali", again.Recipients[0].Name)

	byRef, err := store.GetByReference(ctx, "ELMS-202601-0001")
	require.NoError(t, err)
	assert.Equal(t, "l-1", byRef.ID)

	_, err = store.Get(ctx, "missing")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestAddRejectsDuplicates(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Add(ctx, newDraft("l-1", "ELMS-202601-0001")))

	err := store.Add(ctx, newDraft("l-1", "ELMS-202601-0002"))
	assert.True(t, apperrors.IsConflict(err))

	err = store.Add(ctx, newDraft("l-2", "ELMS-202601-0001"))
	assert.True(t, apperrors.IsConflict(err))

	bad := newDraft("l-3", "ELMS-202601-0003")
	bad.Status = StatusApproved
	assert.Error(t, store.Add(ctx, bad))
}

func TestListInsertionOrderAndFilter(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		l := newDraft(fmt.Sprintf("l-%d", i), fmt.Sprintf("ELMS-202601-%04d", i))
		if i == 2 {
			l.CreatedBy = "u-other"
			l.Subject = "Budget request"
		}
		require.NoError(t, store.Add(ctx, l))
	}

	all, err := store.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"l-1", "l-2", "l-3"}, []string{all[0].ID, all[1].ID, all[2].ID})

	own, err := store.List(ctx, Filter{CreatedBy: "u-writer"})
	require.NoError(t, err)
	assert.Len(t, own, 2)

	q, err := store.List(ctx, Filter{Query: "budget"})
	require.NoError(t, err)
	require.Len(t, q, 1)
	assert.Equal(t, "l-2", q[0].ID)

	limited, err := store.List(ctx, Filter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestUpdateCompareAndSwap(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Add(ctx, newDraft("l-1", "ELMS-202601-0001")))

	updated, err := store.Update(ctx, "l-1", 1, func(l *Letter) error {
		l.Subject = "Revised"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)
	assert.Equal(t, "Revised", updated.Subject)

	_, err = store.Update(ctx, "l-1", 1, func(l *Letter) error {
		l.Subject = "Stale write"
		return nil
	})
	assert.True(t, apperrors.IsConflict(err))

	got, _ := store.Get(ctx, "l-1")
	assert.Equal(t, "Revised", got.Subject)

	_, err = store.Update(ctx, "missing", 0, func(*Letter) error { return nil })
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUpdateIsAllOrNothing(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Add(ctx, newDraft("l-1", "ELMS-202601-0001")))

	boom := errors.New("guard failed")
	_, err := store.Update(ctx, "l-1", 0, func(l *Letter) error {
		l.Subject = "half applied"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, _ := store.Get(ctx, "l-1")
	assert.Equal(t, "Policy Update", got.Subject)
	assert.Equal(t, int64(1), got.Version)
}

func TestUpdateEnforcesInvariants(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Add(ctx, newDraft("l-1", "ELMS-202601-0001")))

	tests := []struct {
		name   string
		mutate func(*Letter)
	}{
		{"status set directly", func(l *Letter) { l.Status = StatusApproved }},
		{"reference changed", func(l *Letter) { l.Reference = "ELMS-202601-9999" }},
		{"history rewritten", func(l *Letter) { l.History = nil }},
		{"step index out of range", func(l *Letter) { l.CurrentStepIndex = 3 }},
		{"workflow on a draft", func(l *Letter) {
			l.Workflow = []WorkflowStep{{Level: 1, Status: StepPending}}
		}},
		{"status change without event", func(l *Letter) {
			now := time.Now()
			l.SubmittedAt = &now
			l.Workflow = []WorkflowStep{{Level: 1, Status: StepPending}}
			l.Status = StatusPendingApproval
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Update(ctx, "l-1", 0, func(l *Letter) error {
				tt.mutate(l)
				return nil
			})
			assert.Error(t, err)
			got, _ := store.Get(ctx, "l-1")
			assert.Equal(t, int64(1), got.Version)
		})
	}
}

func TestConcurrentUpdatesSerialize(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Add(ctx, newDraft("l-1", "ELMS-202601-0001")))

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.Update(ctx, "l-1", 0, func(l *Letter) error {
				l.Tags = append(l.Tags, fmt.Sprintf("t%d", i))
				return nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := store.Get(ctx, "l-1")
	require.NoError(t, err)
	assert.Len(t, got.Tags, writers+1)
	assert.Equal(t, int64(writers+1), got.Version)
}

func TestWritesToDifferentLettersDoNotBlock(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Add(ctx, newDraft("l-1", "ELMS-202601-0001")))
	require.NoError(t, store.Add(ctx, newDraft("l-2", "ELMS-202601-0002")))

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = store.Update(ctx, "l-1", 0, func(l *Letter) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	finished := make(chan error, 1)
	go func() {
		_, err := store.Update(ctx, "l-2", 0, func(l *Letter) error {
			l.Subject = "independent"
			return nil
		})
		finished <- err
	}()

	select {
	case err := <-finished:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("update of l-2 blocked behind l-1")
	}

	// readers of the busy letter are not blocked either
	_, err := store.Get(ctx, "l-1")
	assert.NoError(t, err)

	close(release)
	<-done
}

func TestDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Add(ctx, newDraft("l-1", "ELMS-202601-0001")))

	guardErr := apperrors.NewInvalidStateError("letter", "l-1", "Draft", "delete")
	err := store.Delete(ctx, "l-1", func(*Letter) error { return guardErr })
	assert.True(t, apperrors.IsInvalidState(err))

	require.NoError(t, store.Delete(ctx, "l-1", nil))
	_, err = store.Get(ctx, "l-1")
	assert.True(t, apperrors.IsNotFound(err))
	_, err = store.GetByReference(ctx, "ELMS-202601-0001")
	assert.True(t, apperrors.IsNotFound(err))

	assert.True(t, apperrors.IsNotFound(store.Delete(ctx, "l-1", nil)))

	// reference is free again
	require.NoError(t, store.Add(ctx, newDraft("l-9", "ELMS-202601-0001")))
}

func TestSubscribe(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var mu sync.Mutex
	var events []EventType
	unsubscribe := store.Subscribe(func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev.Type)
		ev.Letter.Subject = "listener mutation"
	})

	require.NoError(t, store.Add(ctx, newDraft("l-1", "ELMS-202601-0001")))
	_, err := store.Update(ctx, "l-1", 0, func(l *Letter) error { l.Body = "x"; return nil })
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, "l-1", nil))

	unsubscribe()
	unsubscribe()
	require.NoError(t, store.Add(ctx, newDraft("l-2", "ELMS-202601-0002")))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []EventType{EventCreated, EventUpdated, EventDeleted}, events)

	got, err := store.Get(ctx, "l-2")
	require.NoError(t, err)
	assert.Equal(t, "Policy Update", got.Subject)
}
