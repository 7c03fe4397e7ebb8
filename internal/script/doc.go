// Package script runs YAML lists of cache operations (get, put, merge, and
// the account bind/ingest steps) against a store. It backs the apply command.
package script
