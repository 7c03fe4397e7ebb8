package nestcache

import (
	"github.com/aretw0/nestcache/pkg/cache"
)

// Version is the nestcache release.
// Overridden at build time with -ldflags "-X github.com/aretw0/nestcache.Version=...".
var Version = "0.1.0"

// New creates an empty in-memory store.
func New(opts ...cache.Option) *cache.Store {
	return cache.New(opts...)
}

// Scope returns a view of store whose scoped methods address scopeID.key.
func Scope(store *cache.Store, scopeID string) (*cache.ScopedView, error) {
	return cache.NewScopedView(store, scopeID)
}
