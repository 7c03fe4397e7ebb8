/*
Package domain contains the core value model shared by the cache packages.

It is kept pure and free of I/O. Everything here describes cached data and
the outcome of operations on it, never how that data is stored.

# Key Entities

  - Shape: closed classification of a cached value (absent, scalar, sequence, mapping).
  - MergeError: a rejected merge, wrapping ErrMergeConfiguration or ErrMergeType.
  - Delta: the flattened difference between two cache trees.
  - ChangeEvent / Hooks: observability callbacks fired after put and merge.
*/
package domain
