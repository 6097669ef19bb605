package notification

import (
	"context"
	"sync"

	"go-elms/internal/features/letter"
	"go-elms/internal/features/permission"

	"go.uber.org/zap"
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// queued is a live event plus the author of its letter, used for filtering.
type queued struct {
	event     LiveEvent
	createdBy string
}

// Hub broadcasts live letter events to websocket clients. Each client only
// receives events for letters its actor may read. Publish never blocks the
// caller; when the queue is full the event is dropped.
type Hub struct {
	permissions *permission.Resolver
	logger      *zap.Logger

	mu      sync.RWMutex
	clients map[Conn]permission.Actor

	events chan queued
}

func NewHub(permissions *permission.Resolver, logger *zap.Logger) *Hub {
	return &Hub{
		permissions: permissions,
		logger:      logger,
		clients:     make(map[Conn]permission.Actor),
		events:      make(chan queued, 256),
	}
}

func (h *Hub) Register(c Conn, actor permission.Actor) {
	h.mu.Lock()
	h.clients[c] = actor
	h.mu.Unlock()
}

func (h *Hub) Unregister(c Conn) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		_ = c.Close()
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish queues ev for clients allowed to read letters written by createdBy.
func (h *Hub) Publish(ev LiveEvent, createdBy string) {
	select {
	case h.events <- queued{event: ev, createdBy: createdBy}:
	default:
		h.logger.Warn("Live event queue full, dropping event", zap.String("letter_id", ev.LetterID))
	}
}

// OnLetterEvent adapts store events for Publish.
func (h *Hub) OnLetterEvent(ev letter.Event) {
	if ev.Letter == nil {
		return
	}
	h.Publish(LiveEvent{
		Type:      string(ev.Type),
		LetterID:  ev.Letter.ID,
		Reference: ev.Letter.Reference,
		Status:    string(ev.Letter.Status),
	}, ev.Letter.CreatedBy)
}

// Run delivers queued events until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case q := <-h.events:
			h.broadcast(q)
		}
	}
}

// canSee mirrors letter visibility: everything with canViewAllLetters,
// otherwise only own letters with canViewOwnLetters.
func (h *Hub) canSee(actor permission.Actor, createdBy string) bool {
	if all, err := h.permissions.Has(actor.Role, permission.CanViewAllLetters); err == nil && all {
		return true
	}
	own, err := h.permissions.Has(actor.Role, permission.CanViewOwnLetters)
	return err == nil && own && actor.ID != "" && actor.ID == createdBy
}

func (h *Hub) broadcast(q queued) {
	h.mu.RLock()
	clients := make([]Conn, 0, len(h.clients))
	for c, actor := range h.clients {
		if h.canSee(actor, q.createdBy) {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.WriteJSON(q.event); err != nil {
			h.logger.Debug("Dropping websocket client", zap.Error(err))
			h.Unregister(c)
		}
	}
}
