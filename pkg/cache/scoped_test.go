package cache_test

import (
	"testing"

	"github.com/aretw0/nestcache/pkg/cache"
	"github.com/aretw0/nestcache/pkg/domain"
	"github.com/aretw0/nestcache/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopedView_Contract(t *testing.T) {
	ports.RunCacheContract(t, func() ports.Cache {
		view, err := cache.New().Scope("leftUserId")
		require.NoError(t, err)
		return view.Scoped()
	})
}

func TestScopedView_Isolation(t *testing.T) {
	store := cache.New()
	left, err := cache.NewScopedView(store, "leftUserId")
	require.NoError(t, err)
	right, err := cache.NewScopedView(store, "rightUserId")
	require.NoError(t, err)

	require.NoError(t, left.ScopedPut("x", 1))

	got, err := right.ScopedGet("x")
	require.NoError(t, err)
	assert.Nil(t, got, "scoped writes stay in their scope")

	got, _ = left.ScopedGet("x")
	assert.Equal(t, 1, got)

	// Unscoped writes are visible to every view.
	require.NoError(t, right.Put("tz", "UTC"))
	got, _ = left.Get("tz")
	assert.Equal(t, "UTC", got)

	// The prefix is a plain path in the shared store.
	got, _ = store.Get("leftUserId.x")
	assert.Equal(t, 1, got)
}

func TestScopedView_Merge(t *testing.T) {
	store := cache.New()
	view, err := store.Scope("leftUserId")
	require.NoError(t, err)

	require.NoError(t, view.ScopedMerge("sessions", []any{map[string]any{"day": "2024-01-01", "score": 80}}, "day"))
	require.NoError(t, view.ScopedMerge("sessions", []any{
		map[string]any{"day": "2024-01-01", "score": 85},
		map[string]any{"day": "2024-01-02", "score": 90},
	}, "day"))

	got, _ := store.Get("leftUserId.sessions")
	assert.Equal(t, []any{
		map[string]any{"day": "2024-01-01", "score": 85},
		map[string]any{"day": "2024-01-02", "score": 90},
	}, got)

	err = view.ScopedMerge("sessions", []any{}, "")
	assert.ErrorIs(t, err, domain.ErrMergeConfiguration)

	// Unscoped merge reaches global values.
	require.NoError(t, view.Put("token", map[string]any{"token": "abc"}))
	require.NoError(t, view.Merge("token", map[string]any{"expirationDate": 0}, ""))
	got, _ = view.Get("token")
	assert.Equal(t, map[string]any{"token": "abc", "expirationDate": 0}, got)
}

func TestScopedView_Accessors(t *testing.T) {
	store := cache.New()
	view, err := cache.NewScopedView(store, "account.left")
	require.NoError(t, err)

	assert.Equal(t, "account.left", view.ScopeID())
	assert.Same(t, store, view.Store())

	require.NoError(t, view.ScopedPut("level", 10))
	got, _ := store.Get("account.left.level")
	assert.Equal(t, 10, got, "a dotted scope spans several levels")
}

func TestScopedView_InvalidScope(t *testing.T) {
	for _, scope := range []string{"", "a..b", "."} {
		_, err := cache.NewScopedView(cache.New(), scope)
		assert.ErrorIs(t, err, domain.ErrInvalidKey, scope)
	}

	_, err := cache.NewScopedView(nil, "left")
	assert.Error(t, err)

	view, err := cache.New().Scope("left")
	require.NoError(t, err)
	_, err = view.ScopedGet("")
	assert.ErrorIs(t, err, domain.ErrInvalidKey)
}
