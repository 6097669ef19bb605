package letter

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	apperrors "go-elms/pkg/errors"
)

type memoryEntry struct {
	mu      sync.Mutex // serializes writers of this letter
	current atomic.Pointer[Letter]
	deleted bool
}

// MemoryStore keeps letters in process memory. The index is guarded by a
// store-wide RWMutex; each record has its own writer mutex so writes to
// different letters never wait on each other. Readers load an immutable
// snapshot and never block on writers.
type MemoryStore struct {
	broadcaster

	mu          sync.RWMutex
	order       []string
	entries     map[string]*memoryEntry
	byReference map[string]string

	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:     make(map[string]*memoryEntry),
		byReference: make(map[string]string),
		now:         time.Now,
	}
}

func (s *MemoryStore) entry(id string) *memoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[id]
}

func (s *MemoryStore) List(ctx context.Context, filter Filter) ([]*Letter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	entries := make([]*memoryEntry, 0, len(s.order))
	for _, id := range s.order {
		entries = append(entries, s.entries[id])
	}
	s.mu.RUnlock()

	out := make([]*Letter, 0, len(entries))
	for _, e := range entries {
		l := e.current.Load()
		if l == nil || !filter.Matches(l) {
			continue
		}
		out = append(out, l.Clone())
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Letter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e := s.entry(id)
	if e == nil {
		return nil, apperrors.NewNotFoundError("letter", id)
	}
	l := e.current.Load()
	if l == nil {
		return nil, apperrors.NewNotFoundError("letter", id)
	}
	return l.Clone(), nil
}

func (s *MemoryStore) GetByReference(ctx context.Context, reference string) (*Letter, error) {
	s.mu.RLock()
	id, ok := s.byReference[reference]
	s.mu.RUnlock()
	if !ok {
		return nil, apperrors.NewNotFoundError("letter", reference)
	}
	return s.Get(ctx, id)
}

func (s *MemoryStore) Add(ctx context.Context, l *Letter) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	record := l.Clone()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.now()
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = record.CreatedAt
	}
	record.Version = 1
	if err := CheckInvariants(record); err != nil {
		return err
	}

	s.mu.Lock()
	if _, exists := s.entries[record.ID]; exists {
		s.mu.Unlock()
		return apperrors.NewConflictError("letter", "id", record.ID)
	}
	if _, exists := s.byReference[record.Reference]; exists {
		s.mu.Unlock()
		return apperrors.NewConflictError("letter", "reference", record.Reference)
	}
	e := &memoryEntry{}
	e.current.Store(record)
	s.entries[record.ID] = e
	s.byReference[record.Reference] = record.ID
	s.order = append(s.order, record.ID)
	s.mu.Unlock()

	l.Version = record.Version
	l.CreatedAt = record.CreatedAt
	l.UpdatedAt = record.UpdatedAt

	s.publish(Event{Type: EventCreated, Letter: record})
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, expectedVersion int64, mutate func(*Letter) error) (*Letter, error) {
	e := s.entry(id)
	if e == nil {
		return nil, apperrors.NewNotFoundError("letter", id)
	}

	e.mu.Lock()
	if e.deleted {
		e.mu.Unlock()
		return nil, apperrors.NewNotFoundError("letter", id)
	}
	if err := ctx.Err(); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	prev := e.current.Load()
	if expectedVersion != 0 && prev.Version != expectedVersion {
		e.mu.Unlock()
		return nil, apperrors.NewStaleVersionError("letter", id, expectedVersion, prev.Version)
	}

	working := prev.Clone()
	if err := mutate(working); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	if err := checkTransition(prev, working); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	working.UpdatedAt = s.now()
	working.Version = prev.Version + 1
	if err := CheckInvariants(working); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	e.current.Store(working)
	e.mu.Unlock()

	s.publish(Event{Type: EventUpdated, Letter: working, Previous: prev})
	return working.Clone(), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string, guard func(*Letter) error) error {
	e := s.entry(id)
	if e == nil {
		return apperrors.NewNotFoundError("letter", id)
	}

	e.mu.Lock()
	if e.deleted {
		e.mu.Unlock()
		return apperrors.NewNotFoundError("letter", id)
	}
	if err := ctx.Err(); err != nil {
		e.mu.Unlock()
		return err
	}
	prev := e.current.Load()
	if guard != nil {
		if err := guard(prev.Clone()); err != nil {
			e.mu.Unlock()
			return err
		}
	}
	e.deleted = true

	s.mu.Lock()
	delete(s.entries, id)
	delete(s.byReference, prev.Reference)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	e.current.Store(nil)
	e.mu.Unlock()

	s.publish(Event{Type: EventDeleted, Letter: prev})
	return nil
}
