package session

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/aretw0/nestcache/internal/logging"
	"github.com/aretw0/nestcache/pkg/cache"
	"github.com/aretw0/nestcache/pkg/domain"
	"github.com/google/uuid"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// ChangeObserver receives the delta produced by a WithLock call.
type ChangeObserver func(sessionID string, delta domain.Delta)

// Manager owns one cache.Store per session and serializes compound
// operations on a session. It uses Reference Counting to garbage collect
// unused locks.
type Manager struct {
	mu    sync.Mutex            // Global lock for the locks map
	locks map[string]*lockEntry // Map of active locks

	registry sync.RWMutex
	stores   map[string]*cache.Store

	storeOpts []cache.Option
	observer  ChangeObserver
	logger    *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithStoreOptions sets the options applied to every store the Manager opens.
func WithStoreOptions(opts ...cache.Option) Option {
	return func(m *Manager) {
		m.storeOpts = append(m.storeOpts, opts...)
	}
}

// WithChangeObserver registers a callback invoked after every WithLock call
// that changed the session's tree.
func WithChangeObserver(observer ChangeObserver) Option {
	return func(m *Manager) {
		m.observer = observer
	}
}

// NewManager creates a new Session Manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		locks:  make(map[string]*lockEntry),
		stores: make(map[string]*cache.Store),
		logger: logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Open returns the store for sessionID, creating it if needed.
// An empty sessionID gets a fresh random ID, which is returned.
func (m *Manager) Open(ctx context.Context, sessionID string) (string, *cache.Store, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	m.registry.Lock()
	defer m.registry.Unlock()

	if store, ok := m.stores[sessionID]; ok {
		m.logger.Debug("Session Resumed", "session_id", sessionID)
		return sessionID, store, nil
	}

	store := cache.New(m.storeOpts...)
	m.stores[sessionID] = store
	m.logger.Info("Session Created", "session_id", sessionID)
	return sessionID, store, nil
}

// Get returns the store of an open session.
// Returns domain.ErrSessionNotFound if the session does not exist.
func (m *Manager) Get(sessionID string) (*cache.Store, error) {
	m.registry.RLock()
	defer m.registry.RUnlock()

	store, ok := m.stores[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}
	return store, nil
}

// Close discards the session and its store.
func (m *Manager) Close(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(context.Context, *cache.Store) error {
		m.registry.Lock()
		delete(m.stores, sessionID)
		m.registry.Unlock()

		m.logger.Info("Session Closed", "session_id", sessionID)
		return nil
	})
}

// List returns the open session IDs in lexical order.
func (m *Manager) List() []string {
	m.registry.RLock()
	defer m.registry.RUnlock()

	ids := make([]string, 0, len(m.stores))
	for id := range m.stores {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// WithLock executes fn while holding the lock for the session, so that
// several reads and writes on the store happen as one unit.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context, *cache.Store) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if err := ctx.Err(); err != nil {
		return err
	}

	store, err := m.Get(sessionID)
	if err != nil {
		return err
	}

	track := m.observer != nil || m.logger.Enabled(ctx, slog.LevelDebug)
	var before map[string]any
	if track {
		before = store.Snapshot()
	}

	if err := fn(ctx, store); err != nil {
		return err
	}

	if track {
		delta := domain.Diff(before, store.Snapshot())
		if delta.IsEmpty() {
			return nil
		}
		m.logger.Debug("Session Changed", "session_id", sessionID, "paths", delta.Paths())
		if m.observer != nil {
			m.observer(sessionID, delta)
		}
	}
	return nil
}
