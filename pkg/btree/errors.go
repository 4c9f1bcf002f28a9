// Package btree implements an in-memory B+ tree keyed by signed integers,
// with arena-allocated nodes, a linked leaf chain for range scans, and
// configurable uniqueness.
package btree

import "errors"

var (
	// ErrDuplicateKey indicates an insert of an existing key in unique mode
	ErrDuplicateKey = errors.New("btree: duplicate key")

	// ErrKeyNotFound indicates a delete target that is not in the tree
	ErrKeyNotFound = errors.New("btree: key not found")

	// ErrValueRequired indicates a delete by key alone on a non-unique tree
	ErrValueRequired = errors.New("btree: delete on non-unique tree requires a value")

	// ErrIntegrity indicates a node invariant violation detected in debug mode
	ErrIntegrity = errors.New("btree: integrity violation")
)
