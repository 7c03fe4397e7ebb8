package cache

import (
	"reflect"
	"strconv"

	"github.com/aretw0/nestcache/pkg/domain"
)

// lookup walks segs from node. Any missing step yields nil.
func lookup(node any, segs []string) any {
	for _, seg := range segs {
		node = child(node, seg)
		if node == nil {
			return nil
		}
	}
	return node
}

func child(node any, seg string) any {
	switch n := node.(type) {
	case nil:
		return nil
	case map[string]any:
		return n[seg]
	case []any:
		if i, ok := index(seg, len(n)); ok {
			return n[i]
		}
		return nil
	}

	switch domain.ShapeOf(node) {
	case domain.ShapeMapping:
		rv := reflect.ValueOf(node)
		v := rv.MapIndex(reflect.ValueOf(seg).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil
		}
		return v.Interface()
	case domain.ShapeSequence:
		rv := reflect.ValueOf(node)
		if i, ok := index(seg, rv.Len()); ok {
			return rv.Index(i).Interface()
		}
	}
	return nil
}

// index parses seg as a canonical non-negative decimal index below n.
func index(seg string, n int) (int, bool) {
	i, err := strconv.Atoi(seg)
	if err != nil || i < 0 || i >= n || strconv.Itoa(i) != seg {
		return 0, false
	}
	return i, true
}

// assign sets value at segs below parent, creating intermediate mappings.
func assign(parent map[string]any, segs []string, value any) {
	head := segs[0]
	if len(segs) == 1 {
		parent[head] = value
		return
	}
	parent[head] = descend(parent[head], segs[1:], value)
}

// descend writes value at segs below node and returns what the parent slot
// must hold afterwards. A []any is written through when segs[0] is an
// in-range index; other mappings are converted; anything else is replaced.
func descend(node any, segs []string, value any) any {
	switch n := node.(type) {
	case map[string]any:
		if n == nil {
			break
		}
		assign(n, segs, value)
		return n
	case []any:
		if i, ok := index(segs[0], len(n)); ok {
			if len(segs) == 1 {
				n[i] = value
			} else {
				n[i] = descend(n[i], segs[1:], value)
			}
			return n
		}
	}

	m, ok := toMapping(node)
	if !ok || m == nil {
		m = make(map[string]any)
	}
	assign(m, segs, value)
	return m
}

// toMapping returns v as map[string]any. The canonical type is returned as
// is (shared); other string-keyed maps are copied.
func toMapping(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	if domain.ShapeOf(v) != domain.ShapeMapping {
		return nil, false
	}

	rv := reflect.ValueOf(v)
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// toSequence returns v as []any. The canonical type is returned as is
// (shared); other slices and arrays are copied.
func toSequence(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	if domain.ShapeOf(v) != domain.ShapeSequence {
		return nil, false
	}

	rv := reflect.ValueOf(v)
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// clone deep-copies containers, normalising them to map[string]any and []any.
func clone(v any) any {
	switch domain.ShapeOf(v) {
	case domain.ShapeMapping:
		m, _ := toMapping(v)
		out := make(map[string]any, len(m))
		for k, child := range m {
			out[k] = clone(child)
		}
		return out
	case domain.ShapeSequence:
		s, _ := toSequence(v)
		out := make([]any, len(s))
		for i, child := range s {
			out[i] = clone(child)
		}
		return out
	default:
		return v
	}
}
