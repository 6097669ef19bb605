package letter

import (
	"context"
	"strings"
	"sync"
)

// Store holds letter records. Implementations return deep copies and run
// Update as an atomic read-modify-write per letter.
type Store interface {
	List(ctx context.Context, filter Filter) ([]*Letter, error)
	Get(ctx context.Context, id string) (*Letter, error)
	GetByReference(ctx context.Context, reference string) (*Letter, error)
	Add(ctx context.Context, l *Letter) error
	// Update applies mutate to a private copy of the record and stores it
	// only if mutate returns nil and, when expectedVersion is non-zero, the
	// stored version still equals it.
	Update(ctx context.Context, id string, expectedVersion int64, mutate func(*Letter) error) (*Letter, error)
	// Delete removes the record if guard (optional) accepts it.
	Delete(ctx context.Context, id string, guard func(*Letter) error) error
	Subscribe(fn Listener) (unsubscribe func())
}

type Filter struct {
	Status    Status
	CreatedBy string
	Query     string // matched against subject, reference and department
	Limit     int
}

func (f Filter) Matches(l *Letter) bool {
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	if f.CreatedBy != "" && l.CreatedBy != f.CreatedBy {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(l.Subject), q) &&
			!strings.Contains(strings.ToLower(l.Reference), q) &&
			!strings.Contains(strings.ToLower(l.Department), q) {
			return false
		}
	}
	return true
}

type EventType string

const (
	EventCreated EventType = "letter.created"
	EventUpdated EventType = "letter.updated"
	EventDeleted EventType = "letter.deleted"
)

// Event carries a copy of the record after the change (before it, for deletes).
type Event struct {
	Type     EventType `json:"type"`
	Letter   *Letter   `json:"letter"`
	Previous *Letter   `json:"-"`
}

type Listener func(Event)

// broadcaster fans events out to subscribers. Listeners run synchronously
// after the write and each receives its own copy.
type broadcaster struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[int]Listener
}

func (b *broadcaster) Subscribe(fn Listener) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listeners == nil {
		b.listeners = make(map[int]Listener)
	}
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
}

func (b *broadcaster) publish(ev Event) {
	b.mu.RLock()
	listeners := make([]Listener, 0, len(b.listeners))
	for _, fn := range b.listeners {
		listeners = append(listeners, fn)
	}
	b.mu.RUnlock()

	for _, fn := range listeners {
		fn(Event{Type: ev.Type, Letter: ev.Letter.Clone(), Previous: ev.Previous.Clone()})
	}
}
