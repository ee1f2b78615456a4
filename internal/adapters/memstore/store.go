// Package memstore provides in-process session slots and notification queues.
// State is lost on restart; use the redis adapter when more than one replica serves traffic.
package memstore

import (
	"context"
	"log/slog"
	"sync"

	"github.com/kjsce/kj-connect/internal/domain/notify"
	"github.com/kjsce/kj-connect/internal/ports"
)

var (
	_ ports.SessionStore      = (*SessionStore)(nil)
	_ ports.NotificationQueue = (*Queue)(nil)
	_ ports.ClientStorage     = (*ClientStorage)(nil)
)

// SessionStore is a mutex-guarded map implementing ports.SessionStore.
type SessionStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewSessionStore returns an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{data: make(map[string][]byte)}
}

// Get returns a copy of the stored value or ports.ErrNotFound.
func (s *SessionStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set stores a copy of value under key.
func (s *SessionStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes key. Missing keys are not an error.
func (s *SessionStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Len reports how many keys are stored.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Queue is an in-memory notification queue.
type Queue struct {
	mu     sync.Mutex
	items  []notify.Notification
	limit  int
	logger *slog.Logger
}

// NewQueue creates a queue that keeps at most limit notifications (0 means unlimited).
// When full, the oldest notification is dropped.
func NewQueue(limit int, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{limit: limit, logger: logger}
}

// Notify appends n to the queue.
func (q *Queue) Notify(ctx context.Context, n notify.Notification) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, n)
	if q.limit > 0 && len(q.items) > q.limit {
		dropped := q.items[0]
		q.items = q.items[1:]
		q.logger.DebugContext(ctx, "notification queue full, dropped oldest", "message", dropped.Message)
	}
}

// Drain returns all queued notifications in arrival order and empties the queue.
func (q *Queue) Drain(_ context.Context) ([]notify.Notification, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out, nil
}

// ClientStorage keeps a SessionStore and Queue per client id. Entries exist only
// while they hold data: reads for unknown clients allocate nothing, and a slot or
// queue is dropped once it is emptied, so cookieless traffic leaves no residue.
type ClientStorage struct {
	mu       sync.Mutex
	stores   map[string]*SessionStore
	queues   map[string]*Queue
	queueMax int
	logger   *slog.Logger
}

// NewClientStorage creates storage whose per-client queues hold at most queueMax notifications.
func NewClientStorage(queueMax int, logger *slog.Logger) *ClientStorage {
	return &ClientStorage{
		stores:   make(map[string]*SessionStore),
		queues:   make(map[string]*Queue),
		queueMax: queueMax,
		logger:   logger,
	}
}

// SessionStore returns a handle on clientID's slot. The slot is allocated on first Set.
//
//nolint:ireturn // satisfies ports.ClientStorage.
func (c *ClientStorage) SessionStore(clientID string) ports.SessionStore {
	return clientSlot{owner: c, id: clientID}
}

// Notifications returns a handle on clientID's queue. The queue is allocated on first Notify.
//
//nolint:ireturn // satisfies ports.ClientStorage.
func (c *ClientStorage) Notifications(clientID string) ports.NotificationQueue {
	return clientQueue{owner: c, id: clientID}
}

// Clients reports how many client ids currently hold a slot or a queue.
func (c *ClientStorage) Clients() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.stores)
	for id := range c.queues {
		if _, ok := c.stores[id]; !ok {
			n++
		}
	}
	return n
}

type clientSlot struct {
	owner *ClientStorage
	id    string
}

func (h clientSlot) Get(ctx context.Context, key string) ([]byte, error) {
	h.owner.mu.Lock()
	s := h.owner.stores[h.id]
	h.owner.mu.Unlock()
	if s == nil {
		return nil, ports.ErrNotFound
	}
	return s.Get(ctx, key)
}

func (h clientSlot) Set(ctx context.Context, key string, value []byte) error {
	h.owner.mu.Lock()
	defer h.owner.mu.Unlock()
	s, ok := h.owner.stores[h.id]
	if !ok {
		s = NewSessionStore()
		h.owner.stores[h.id] = s
	}
	return s.Set(ctx, key, value)
}

func (h clientSlot) Delete(ctx context.Context, key string) error {
	h.owner.mu.Lock()
	defer h.owner.mu.Unlock()
	s, ok := h.owner.stores[h.id]
	if !ok {
		return nil
	}
	if err := s.Delete(ctx, key); err != nil {
		return err
	}
	if s.Len() == 0 {
		delete(h.owner.stores, h.id)
	}
	return nil
}

type clientQueue struct {
	owner *ClientStorage
	id    string
}

func (h clientQueue) Notify(ctx context.Context, n notify.Notification) {
	h.owner.mu.Lock()
	defer h.owner.mu.Unlock()
	q, ok := h.owner.queues[h.id]
	if !ok {
		q = NewQueue(h.owner.queueMax, h.owner.logger)
		h.owner.queues[h.id] = q
	}
	q.Notify(ctx, n)
}

func (h clientQueue) Drain(ctx context.Context) ([]notify.Notification, error) {
	h.owner.mu.Lock()
	q, ok := h.owner.queues[h.id]
	delete(h.owner.queues, h.id)
	h.owner.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return q.Drain(ctx)
}
