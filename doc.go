/*
Package nestcache is a path-addressed, hierarchically nested key/value cache.

Values live in one root mapping and are addressed with dot-delimited paths
("u-left.sessions.0.score"). On top of Get and Put the cache offers a
structural Merge with different semantics per shape:

  - nothing stored yet: the incoming value is inserted as is;
  - two mappings: the incoming keys are shallow-copied over the current ones;
  - two sequences: elements are upserted by a merge key (the first element
    with an equal field is updated in place, others are appended).

Any other combination is rejected with domain.ErrMergeType, and merging
sequences without a merge key with domain.ErrMergeConfiguration.

A ScopedView prefixes keys with an owner identifier, so several logical
users (for example, the two sides of a device) share one store while still
reading the account-wide keys.

# Usage

	store := nestcache.New()
	_ = store.Put("tz", "UTC")

	left, _ := nestcache.Scope(store, "u-left")
	_ = left.ScopedMerge("sessions", []any{map[string]any{"day": "2026-10-16", "score": 80}}, "day")

	score, _ := store.Get("u-left.sessions.0.score") // 80

The packages under pkg/ hold the building blocks: keypath (addresses),
cache (store, merge, scoped views), session (per-session stores), account
(device account binding) and observability (Prometheus counters).
*/
package nestcache
