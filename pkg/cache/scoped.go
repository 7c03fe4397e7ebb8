package cache

import (
	"errors"
	"fmt"

	"github.com/aretw0/nestcache/pkg/keypath"
	"github.com/aretw0/nestcache/pkg/ports"
)

// ScopedView binds a shared Store to one scope identifier. Scoped methods
// prefix keys with the identifier; the unscoped ones reach the whole store.
// It is a convenience wrapper, not an isolation boundary.
type ScopedView struct {
	store   *Store
	scopeID string
}

// NewScopedView creates a view of store bound to scopeID.
// scopeID must itself be a valid key; it may contain dots.
func NewScopedView(store *Store, scopeID string) (*ScopedView, error) {
	if store == nil {
		return nil, errors.New("cache: store is required")
	}
	if _, err := keypath.Parse(scopeID); err != nil {
		return nil, fmt.Errorf("cache: scope %q: %w", scopeID, err)
	}
	return &ScopedView{store: store, scopeID: scopeID}, nil
}

// ScopeID returns the identifier the view is bound to.
func (v *ScopedView) ScopeID() string {
	return v.scopeID
}

// Store returns the shared backing store.
func (v *ScopedView) Store() *Store {
	return v.store
}

func (v *ScopedView) scopedKey(key string) string {
	return keypath.Join(v.scopeID, key)
}

// ScopedGet reads scopeID.key.
func (v *ScopedView) ScopedGet(key string) (any, error) {
	return v.store.Get(v.scopedKey(key))
}

// ScopedPut writes scopeID.key.
func (v *ScopedView) ScopedPut(key string, value any) error {
	return v.store.Put(v.scopedKey(key), value)
}

// ScopedMerge merges into scopeID.key.
func (v *ScopedView) ScopedMerge(key string, incoming any, mergeKey string) error {
	return v.store.Merge(v.scopedKey(key), incoming, mergeKey)
}

// Get reads key from the whole store (session token, timezone, device id).
func (v *ScopedView) Get(key string) (any, error) {
	return v.store.Get(key)
}

// Put writes key in the whole store.
func (v *ScopedView) Put(key string, value any) error {
	return v.store.Put(key, value)
}

// Merge merges into key in the whole store.
func (v *ScopedView) Merge(key string, incoming any, mergeKey string) error {
	return v.store.Merge(key, incoming, mergeKey)
}

// Scoped exposes the scoped methods as a ports.Cache, for collaborators that
// should only ever address their own scope.
func (v *ScopedView) Scoped() ports.Cache {
	return scopedCache{view: v}
}

type scopedCache struct {
	view *ScopedView
}

func (c scopedCache) Get(key string) (any, error) {
	return c.view.ScopedGet(key)
}

func (c scopedCache) Put(key string, value any) error {
	return c.view.ScopedPut(key, value)
}

func (c scopedCache) Merge(key string, incoming any, mergeKey string) error {
	return c.view.ScopedMerge(key, incoming, mergeKey)
}
