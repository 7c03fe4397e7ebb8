package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidKey is returned when a key is empty or contains an empty segment.
var ErrInvalidKey = errors.New("invalid key")

// ErrMergeConfiguration is returned when two sequences are merged without a merge key.
var ErrMergeConfiguration = errors.New("cannot merge arrays without a merge key")

// ErrMergeType is returned when the stored and incoming values cannot be merged.
var ErrMergeType = errors.New("cannot merge non-arrays or non-objects")

// ErrSessionNotFound is returned when a session ID is not registered.
var ErrSessionNotFound = errors.New("session not found")

// ErrNotAuthenticated is returned when side views are requested before an
// account has been bound to a store.
var ErrNotAuthenticated = errors.New("not authenticated")

// MergeError describes a rejected merge. It wraps ErrMergeConfiguration or
// ErrMergeType so callers can match with errors.Is.
type MergeError struct {
	Key      string
	Current  Shape
	Incoming Shape
	Err      error
}

func (e *MergeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("merge %q (%s into %s): %v", e.Key, e.Incoming, e.Current, e.Err)
}

func (e *MergeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
