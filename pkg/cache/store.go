package cache

import (
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/nestcache/internal/logging"
	"github.com/aretw0/nestcache/pkg/domain"
	"github.com/aretw0/nestcache/pkg/keypath"
)

// Store implements ports.Cache in memory.
// Safe for concurrent use.
type Store struct {
	root map[string]any
	mu   sync.RWMutex

	logger *slog.Logger
	hooks  domain.Hooks
}

// Option configures the Store.
type Option func(*Store)

// WithLogger configures a logger for mutations and rejected merges.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.Hooks) Option {
	return func(s *Store) {
		s.hooks = hooks
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	return NewFromRoot(make(map[string]any), opts...)
}

// NewFromRoot creates a store backed by root. The mapping is adopted, not
// copied: writes through the store are visible to anyone else holding root.
func NewFromRoot(root map[string]any, opts ...Option) *Store {
	if root == nil {
		root = make(map[string]any)
	}
	s := &Store{
		root:   root,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the value at key, or nil if any segment of the path is absent.
// Stored false, 0, "" and empty containers are returned as they are.
func (s *Store) Get(key string) (any, error) {
	addr, err := keypath.Parse(key)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return lookup(s.root, addr.Segments()), nil
}

// Put sets key to value, creating intermediate mappings as needed.
func (s *Store) Put(key string, value any) error {
	addr, err := keypath.Parse(key)
	if err != nil {
		s.emit(&domain.ChangeEvent{Type: domain.EventPut, Key: key, Err: err})
		return err
	}

	s.put(addr.Segments(), value)

	s.logger.Debug("cache put", "key", key, "shape", domain.ShapeOf(value))
	s.emit(&domain.ChangeEvent{Type: domain.EventPut, Key: key})
	return nil
}

func (s *Store) put(segs []string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	assign(s.root, segs, value)
}

// Snapshot returns a deep copy of the whole tree. Containers are normalised
// to map[string]any and []any.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.root).(map[string]any)
}

// Scope returns a view of the store bound to scopeID.
func (s *Store) Scope(scopeID string) (*ScopedView, error) {
	return NewScopedView(s, scopeID)
}

func (s *Store) emit(e *domain.ChangeEvent) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	s.hooks.Fire(e)
}
