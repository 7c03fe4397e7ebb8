/*
Package cache implements the in-memory hierarchical store shared by every
accessor of an account.

A Store owns a single root mapping. Keys are dot-delimited paths
("leftUserId.currentSession.day"); intermediate mappings are created on Put
and missing paths read as nil on Get. Merge combines an incoming value with
the stored one:

  - nothing stored: the incoming value is put as-is;
  - two sequences: elements are upserted by a merge-key field, the first
    match (left to right) is updated in place, unmatched elements are appended;
  - two mappings: keys of the incoming mapping overwrite the stored ones (shallow);
  - anything else fails with domain.ErrMergeType.

A ScopedView binds a Store to one scope identifier (one side of the bed) and
prefixes every scoped key with it. Views share the Store by reference; the
unscoped Get and Put remain available for global values.

Store is safe for concurrent use. Each Merge runs as a single critical
section. Values returned by Get are shared with the store.
*/
package cache
