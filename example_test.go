package nestcache_test

import (
	"errors"
	"fmt"

	"github.com/aretw0/nestcache"
	"github.com/aretw0/nestcache/pkg/domain"
)

func ExampleNew() {
	store := nestcache.New()

	_ = store.Put("a.b.c", 1)
	v, _ := store.Get("a.b.c")
	fmt.Println(v)

	missing, _ := store.Get("a.x.c")
	fmt.Println(missing)

	_, err := store.Get("a..c")
	fmt.Println(errors.Is(err, domain.ErrInvalidKey))
	// Output:
	// 1
	// <nil>
	// true
}

func ExampleScope() {
	store := nestcache.New()
	_ = store.Put("deviceId", "d-1")

	left, _ := nestcache.Scope(store, "u-left")
	_ = left.ScopedPut("targetHeatingLevel", -20)

	level, _ := store.Get("u-left.targetHeatingLevel")
	device, _ := left.Get("deviceId")
	fmt.Println(level, device)
	// Output:
	// -20 d-1
}

func ExampleNew_arrayMerge() {
	store := nestcache.New()
	_ = store.Put("sessions", []any{
		map[string]any{"day": "d1", "score": 1},
	})

	_ = store.Merge("sessions", []any{
		map[string]any{"day": "d1", "score": 5},
		map[string]any{"day": "d2", "score": 3},
	}, "day")

	v, _ := store.Get("sessions")
	fmt.Println(v)

	err := store.Merge("sessions", []any{}, "")
	fmt.Println(errors.Is(err, domain.ErrMergeConfiguration))
	// Output:
	// [map[day:d1 score:5] map[day:d2 score:3]]
	// true
}

func ExampleNew_objectMerge() {
	store := nestcache.New()
	_ = store.Put("a", map[string]any{"x": 1, "y": 2})
	_ = store.Merge("a", map[string]any{"y": 9, "z": 3}, "")

	v, _ := store.Get("a")
	fmt.Println(v)

	err := store.Merge("a", []any{1}, "id")
	fmt.Println(errors.Is(err, domain.ErrMergeType))
	// Output:
	// map[x:1 y:9 z:3]
	// true
}
