package ports

import (
	"testing"

	"github.com/aretw0/nestcache/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunCacheContract runs a suite of tests to verify that a Cache implementation
// adheres to the defined interface contract. newCache must return an empty
// cache on every call.
func RunCacheContract(t *testing.T, newCache func() Cache) {
	t.Run("Put and Get", func(t *testing.T) {
		values := map[string]any{
			"string":        "123",
			"false":         false,
			"zero":          0,
			"zero float":    0.0,
			"empty string":  "",
			"empty array":   []any{},
			"empty object":  map[string]any{},
			"nested object": map[string]any{"id": "123", "tags": []any{"a"}},
		}

		for name, v := range values {
			t.Run(name, func(t *testing.T) {
				c := newCache()
				require.NoError(t, c.Put("test", v))

				got, err := c.Get("test")
				require.NoError(t, err)
				assert.Equal(t, v, got, "stored value must not collapse to nil")
			})
		}
	})

	t.Run("Missing Path Returns Nil", func(t *testing.T) {
		c := newCache()

		got, err := c.Get("a.b.c")
		require.NoError(t, err)
		assert.Nil(t, got)

		require.NoError(t, c.Put("a", "scalar"))
		got, err = c.Get("a.b.c")
		require.NoError(t, err)
		assert.Nil(t, got, "descending into a scalar is a missing path")
	})

	t.Run("Dot Path", func(t *testing.T) {
		c := newCache()
		require.NoError(t, c.Put("test.user.id", "789"))

		got, err := c.Get("test.user.id")
		require.NoError(t, err)
		assert.Equal(t, "789", got)

		parent, err := c.Get("test")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"user": map[string]any{"id": "789"}}, parent)
	})

	t.Run("Put Overwrites Any Shape", func(t *testing.T) {
		c := newCache()
		require.NoError(t, c.Put("test", map[string]any{"user": map[string]any{"id": "1"}}))
		require.NoError(t, c.Put("test", "flat"))

		got, _ := c.Get("test")
		assert.Equal(t, "flat", got)

		require.NoError(t, c.Put("test.user", "nested"))
		got, _ = c.Get("test")
		assert.Equal(t, map[string]any{"user": "nested"}, got, "scalar intermediate is replaced by a mapping")
	})

	t.Run("Put Nil Removes", func(t *testing.T) {
		c := newCache()
		require.NoError(t, c.Put("token", "abc"))
		require.NoError(t, c.Put("token", nil))

		got, err := c.Get("token")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Merge As Insert", func(t *testing.T) {
		for name, v := range map[string]any{
			"scalar": 5,
			"object": map[string]any{"id": "123"},
			"array":  []any{map[string]any{"day": "2024-01-01"}},
		} {
			t.Run(name, func(t *testing.T) {
				c := newCache()
				require.NoError(t, c.Merge("test.value", v, ""))

				got, err := c.Get("test.value")
				require.NoError(t, err)
				assert.Equal(t, v, got)
			})
		}
	})

	t.Run("Merge Object Shallow", func(t *testing.T) {
		c := newCache()
		require.NoError(t, c.Put("test", map[string]any{"side": "right"}))
		require.NoError(t, c.Merge("test", map[string]any{"id": "123", "username": "a@x.com"}, ""))

		got, _ := c.Get("test")
		assert.Equal(t, map[string]any{"id": "123", "username": "a@x.com", "side": "right"}, got)

		require.NoError(t, c.Put("nested", map[string]any{"inner": map[string]any{"a": 1, "b": 2}}))
		require.NoError(t, c.Merge("nested", map[string]any{"inner": map[string]any{"c": 3}}, ""))

		got, _ = c.Get("nested.inner")
		assert.Equal(t, map[string]any{"c": 3}, got, "nested mappings are replaced wholesale")
	})

	t.Run("Merge Array Upsert", func(t *testing.T) {
		c := newCache()
		require.NoError(t, c.Put("test", []any{
			map[string]any{"username": "a@x.com", "otherKey": "123", "id": "456"},
			map[string]any{"username": "b@x.com"},
		}))

		require.NoError(t, c.Merge("test", []any{
			map[string]any{"id": "123", "username": "a@x.com"},
		}, "username"))

		got, _ := c.Get("test")
		assert.Equal(t, []any{
			map[string]any{"username": "a@x.com", "otherKey": "123", "id": "123"},
			map[string]any{"username": "b@x.com"},
		}, got)

		require.NoError(t, c.Merge("test", []any{
			map[string]any{"username": "c@x.com"},
			map[string]any{"username": "d@x.com"},
		}, "username"))

		got, _ = c.Get("test")
		require.Len(t, got, 4)
		assert.Equal(t, map[string]any{"username": "c@x.com"}, got.([]any)[2])
		assert.Equal(t, map[string]any{"username": "d@x.com"}, got.([]any)[3])
	})

	t.Run("Merge Array Without Key", func(t *testing.T) {
		c := newCache()
		require.NoError(t, c.Put("test", []any{map[string]any{"day": "a"}}))

		err := c.Merge("test", []any{map[string]any{"day": "b"}}, "")
		assert.ErrorIs(t, err, domain.ErrMergeConfiguration)

		got, _ := c.Get("test")
		assert.Equal(t, []any{map[string]any{"day": "a"}}, got, "failed merge leaves value untouched")
	})

	t.Run("Merge Shape Mismatch", func(t *testing.T) {
		cases := []struct {
			name     string
			current  any
			incoming any
		}{
			{"scalar into object", map[string]any{"id": "1"}, 5},
			{"object into scalar", 5, map[string]any{"id": "1"}},
			{"object into array", []any{}, map[string]any{"id": "1"}},
			{"array into object", map[string]any{"id": "1"}, []any{}},
			{"two scalars", "a", "b"},
			{"nil into object", map[string]any{"id": "1"}, nil},
			{"scalar into zero", 0, 1},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				c := newCache()
				require.NoError(t, c.Put("test", tc.current))

				err := c.Merge("test", tc.incoming, "id")
				assert.ErrorIs(t, err, domain.ErrMergeType)

				got, _ := c.Get("test")
				assert.Equal(t, tc.current, got)
			})
		}
	})

	t.Run("Invalid Key", func(t *testing.T) {
		c := newCache()

		_, err := c.Get("")
		assert.ErrorIs(t, err, domain.ErrInvalidKey)
		assert.ErrorIs(t, c.Put("a..b", 1), domain.ErrInvalidKey)
		assert.ErrorIs(t, c.Merge(".a", map[string]any{}, ""), domain.ErrInvalidKey)
	})
}
