package session_test

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/aretw0/nestcache/internal/logging"
	"github.com/aretw0/nestcache/pkg/cache"
	"github.com/aretw0/nestcache/pkg/domain"
	"github.com/aretw0/nestcache/pkg/session"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Lifecycle(t *testing.T) {
	ctx := context.Background()
	m := session.NewManager()

	id, store, err := m.Open(ctx, "account-1")
	require.NoError(t, err)
	assert.Equal(t, "account-1", id)
	require.NoError(t, store.Put("tz", "UTC"))

	// Reopening resumes the same store.
	_, again, err := m.Open(ctx, "account-1")
	require.NoError(t, err)
	assert.Same(t, store, again)

	got, err := m.Get("account-1")
	require.NoError(t, err)
	v, err := got.Get("tz")
	require.NoError(t, err)
	assert.Equal(t, "UTC", v)

	assert.Equal(t, []string{"account-1"}, m.List())

	require.NoError(t, m.Close(ctx, "account-1"))
	_, err = m.Get("account-1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.Empty(t, m.List())

	// A new session with the same ID starts empty.
	_, fresh, err := m.Open(ctx, "account-1")
	require.NoError(t, err)
	v, err = fresh.Get("tz")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestManager_OpenGeneratesID(t *testing.T) {
	m := session.NewManager()

	id, store, err := m.Open(context.Background(), "")
	require.NoError(t, err)
	require.NotNil(t, store)

	_, err = uuid.Parse(id)
	assert.NoError(t, err)
	assert.Equal(t, []string{id}, m.List())
}

func TestManager_OpenCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := session.NewManager().Open(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestManager_UnknownSession(t *testing.T) {
	m := session.NewManager()
	ctx := context.Background()

	err := m.WithLock(ctx, "missing", func(context.Context, *cache.Store) error { return nil })
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.ErrorIs(t, m.Close(ctx, "missing"), domain.ErrSessionNotFound)
}

func TestManager_WithLockSerializes(t *testing.T) {
	ctx := context.Background()
	m := session.NewManager()
	_, _, err := m.Open(ctx, "s")
	require.NoError(t, err)

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.WithLock(ctx, "s", func(_ context.Context, store *cache.Store) error {
				v, err := store.Get("counter")
				if err != nil {
					return err
				}
				n, _ := v.(int)
				return store.Put("counter", n+1)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	store, err := m.Get("s")
	require.NoError(t, err)
	v, err := store.Get("counter")
	require.NoError(t, err)
	assert.Equal(t, workers, v)
}

func TestManager_ChangeObserver(t *testing.T) {
	ctx := context.Background()
	var deltas []domain.Delta
	m := session.NewManager(session.WithChangeObserver(func(id string, d domain.Delta) {
		assert.Equal(t, "s", id)
		deltas = append(deltas, d)
	}))
	_, _, err := m.Open(ctx, "s")
	require.NoError(t, err)

	require.NoError(t, m.WithLock(ctx, "s", func(_ context.Context, store *cache.Store) error {
		return store.Merge("left", map[string]any{"heatingLevel": 10}, "")
	}))
	// No change, no notification.
	require.NoError(t, m.WithLock(ctx, "s", func(_ context.Context, store *cache.Store) error {
		_, err := store.Get("left")
		return err
	}))
	require.NoError(t, m.WithLock(ctx, "s", func(_ context.Context, store *cache.Store) error {
		return store.Put("left", nil)
	}))

	require.Len(t, deltas, 2)
	assert.Equal(t, domain.Delta{"left": map[string]any{"heatingLevel": 10}}, deltas[0])
	assert.Equal(t, []string{"left"}, deltas[1].Paths())
}

func TestManager_StoreOptionsAndLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWriter(&buf, slog.LevelDebug)

	var events int
	hooks := domain.Hooks{OnPut: func(*domain.ChangeEvent) { events++ }}
	m := session.NewManager(
		session.WithLogger(logger),
		session.WithStoreOptions(cache.WithHooks(hooks)),
	)

	ctx := context.Background()
	_, _, err := m.Open(ctx, "s")
	require.NoError(t, err)
	require.NoError(t, m.WithLock(ctx, "s", func(_ context.Context, store *cache.Store) error {
		return store.Put("deviceId", "d-1")
	}))

	assert.Equal(t, 1, events)
	out := buf.String()
	assert.Contains(t, out, "Session Created")
	assert.Contains(t, out, "Session Changed")
	assert.Contains(t, out, "deviceId")
}

func TestManager_NilLoggerKeepsDefault(t *testing.T) {
	m := session.NewManager(session.WithLogger(nil))
	ctx := context.Background()

	assert.NotPanics(t, func() {
		_, _, err := m.Open(ctx, "s")
		require.NoError(t, err)
		require.NoError(t, m.WithLock(ctx, "s", func(_ context.Context, store *cache.Store) error {
			return store.Put("tz", "UTC")
		}))
		require.NoError(t, m.Close(ctx, "s"))
	})
}
