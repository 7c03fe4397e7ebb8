package domain

import (
	"reflect"
	"sort"
)

// Delta maps dotted paths to their new value.
// For deletions (or values replaced by nil) the path is present with a nil value.
type Delta map[string]any

// Diff calculates the difference between two cache trees.
// Nested mappings on both sides are compared key by key, anything else is
// compared as a whole. If oldTree is nil, every top-level key of newTree is
// part of the delta (initial load). Returns nil when nothing changed.
func Diff(oldTree, newTree map[string]any) Delta {
	delta := make(Delta)
	diffMapping("", oldTree, newTree, delta)

	if len(delta) == 0 {
		return nil
	}
	return delta
}

func diffMapping(prefix string, oldMap, newMap map[string]any, delta Delta) {
	// Added or Modified
	for k, newVal := range newMap {
		path := joinPath(prefix, k)
		oldVal, exists := oldMap[k]
		if !exists {
			delta[path] = newVal
			continue
		}

		oldChild, oldIsMap := oldVal.(map[string]any)
		newChild, newIsMap := newVal.(map[string]any)
		if oldIsMap && newIsMap {
			diffMapping(path, oldChild, newChild, delta)
			continue
		}

		if !reflect.DeepEqual(oldVal, newVal) {
			delta[path] = newVal
		}
	}

	// Deletions
	for k := range oldMap {
		if _, exists := newMap[k]; !exists {
			delta[joinPath(prefix, k)] = nil
		}
	}
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// Paths returns the changed paths in lexical order.
func (d Delta) Paths() []string {
	paths := make([]string, 0, len(d))
	for p := range d {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// IsEmpty checks if the delta contains any change.
func (d Delta) IsEmpty() bool {
	return len(d) == 0
}
