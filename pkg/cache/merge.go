package cache

import (
	"reflect"

	"github.com/aretw0/nestcache/pkg/domain"
	"github.com/aretw0/nestcache/pkg/keypath"
)

// Merge combines incoming with the value stored at key.
//
// With nothing stored, Merge is Put. Two sequences are upserted by the
// mergeKey field: for each incoming element the first stored element with an
// equal mergeKey value gets the incoming fields assigned onto it, and
// unmatched elements are appended in order. Duplicate merge-key values in the
// stored sequence are not an error; only the first one is ever matched.
// Two mappings are merged shallowly, incoming keys winning.
//
// A sequence merge without mergeKey fails with domain.ErrMergeConfiguration;
// every other shape combination fails with domain.ErrMergeType. Both are
// returned as *domain.MergeError and leave the stored value untouched.
func (s *Store) Merge(key string, incoming any, mergeKey string) error {
	addr, err := keypath.Parse(key)
	if err != nil {
		s.emit(&domain.ChangeEvent{Type: domain.EventMerge, Key: key, Err: err})
		return err
	}

	event := s.merge(key, addr.Segments(), incoming, mergeKey)

	if event.Err != nil {
		s.logger.Debug("cache merge rejected", "key", key, "merge_key", mergeKey, "err", event.Err)
	} else {
		s.logger.Debug("cache merge",
			"key", key,
			"strategy", event.Strategy,
			"matched", event.Matched,
			"appended", event.Appended,
		)
	}
	s.emit(event)
	return event.Err
}

func (s *Store) merge(key string, segs []string, incoming any, mergeKey string) *domain.ChangeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mergeLocked(key, segs, incoming, mergeKey)
}

// mergeLocked picks the strategy from both shapes and applies it. Caller holds s.mu.
func (s *Store) mergeLocked(key string, segs []string, incoming any, mergeKey string) *domain.ChangeEvent {
	event := &domain.ChangeEvent{Type: domain.EventMerge, Key: key}

	current := lookup(s.root, segs)
	currentShape := domain.ShapeOf(current)
	incomingShape := domain.ShapeOf(incoming)

	switch {
	case currentShape == domain.ShapeAbsent:
		assign(s.root, segs, incoming)
		event.Strategy = domain.StrategyInsert

	case currentShape == domain.ShapeSequence && incomingShape == domain.ShapeSequence:
		if mergeKey == "" {
			event.Err = &domain.MergeError{Key: key, Current: currentShape, Incoming: incomingShape, Err: domain.ErrMergeConfiguration}
			return event
		}
		merged, matched, appended := upsert(current, incoming, mergeKey)
		// Appending may have reallocated, so the slice is always written back.
		assign(s.root, segs, merged)
		event.Strategy = domain.StrategyArray
		event.Matched = matched
		event.Appended = appended

	case currentShape == domain.ShapeMapping && incomingShape == domain.ShapeMapping:
		assign(s.root, segs, overlay(current, incoming))
		event.Strategy = domain.StrategyObject

	default:
		event.Err = &domain.MergeError{Key: key, Current: currentShape, Incoming: incomingShape, Err: domain.ErrMergeType}
	}
	return event
}

// upsert merges the incoming sequence into current by mergeKey.
// Matched map[string]any elements are mutated in place; other mapping kinds
// are rebuilt and replaced at the same index.
func upsert(current, incoming any, mergeKey string) (merged []any, matched, appended int) {
	merged, _ = toSequence(current)
	elems, _ := toSequence(incoming)

	for _, e := range elems {
		fields, ok := toMapping(e)
		if !ok {
			merged = append(merged, e)
			appended++
			continue
		}
		want, ok := fields[mergeKey]
		if !ok {
			merged = append(merged, e)
			appended++
			continue
		}

		i := findMatch(merged, mergeKey, want)
		if i < 0 {
			merged = append(merged, e)
			appended++
			continue
		}
		merged[i] = assignFields(merged[i], fields)
		matched++
	}
	return merged, matched, appended
}

// findMatch returns the index of the first element whose mergeKey field
// equals want, or -1.
func findMatch(elems []any, mergeKey string, want any) int {
	for i, elem := range elems {
		got, ok := field(elem, mergeKey)
		if ok && sameValue(got, want) {
			return i
		}
	}
	return -1
}

func field(elem any, name string) (any, bool) {
	if m, ok := elem.(map[string]any); ok {
		v, found := m[name]
		return v, found
	}
	if domain.ShapeOf(elem) != domain.ShapeMapping {
		return nil, false
	}
	rv := reflect.ValueOf(elem)
	v := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
	if !v.IsValid() {
		return nil, false
	}
	return v.Interface(), true
}

func assignFields(target any, fields map[string]any) any {
	m, ok := target.(map[string]any)
	if !ok {
		m, _ = toMapping(target)
	}
	if m == nil {
		m = make(map[string]any, len(fields))
	}
	for k, v := range fields {
		m[k] = v
	}
	return m
}

// overlay returns a new mapping with incoming's keys written over current's.
func overlay(current, incoming any) map[string]any {
	base, _ := toMapping(current)
	top, _ := toMapping(incoming)

	out := make(map[string]any, len(base)+len(top))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range top {
		out[k] = v
	}
	return out
}

// sameValue compares merge-key values. Numbers compare by value regardless
// of their Go type, since JSON and YAML decoders disagree on int and float64.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if isNumber(ra) && isNumber(rb) {
		return sameNumber(ra, rb)
	}
	if !ra.Comparable() || !rb.Comparable() {
		return false
	}
	return a == b
}

func isNumber(v reflect.Value) bool {
	return isInt(v) || isUint(v) || isFloat(v)
}

func isInt(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUint(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func isFloat(v reflect.Value) bool {
	return v.Kind() == reflect.Float32 || v.Kind() == reflect.Float64
}

func sameNumber(a, b reflect.Value) bool {
	switch {
	case isInt(a) && isInt(b):
		return a.Int() == b.Int()
	case isUint(a) && isUint(b):
		return a.Uint() == b.Uint()
	}
	return toFloat(a) == toFloat(b)
}

func toFloat(v reflect.Value) float64 {
	switch {
	case isInt(v):
		return float64(v.Int())
	case isUint(v):
		return float64(v.Uint())
	default:
		return v.Float()
	}
}
