package ports

// Reader resolves dotted keys against a cache tree.
type Reader interface {
	// Get returns the value stored at key, or nil when any segment of the
	// path is absent. It only fails for an invalid key (domain.ErrInvalidKey).
	Get(key string) (any, error)
}

// Writer mutates a cache tree.
type Writer interface {
	// Put sets key to value, creating intermediate mappings as needed and
	// overwriting any prior value. Put(key, nil) is the removal operation.
	Put(key string, value any) error

	// Merge combines incoming with the value stored at key.
	// Sequences are upserted by the mergeKey field, mappings are overwritten
	// shallowly, and an absent value degrades to Put.
	// Returns domain.ErrMergeConfiguration or domain.ErrMergeType on misuse.
	Merge(key string, incoming any, mergeKey string) error
}

// Cache is the fixed interface collaborators use to read and write cached data.
type Cache interface {
	Reader
	Writer
}
