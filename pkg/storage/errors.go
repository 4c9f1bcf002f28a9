// Package storage implements the columnar page substrate: fixed-size pages
// of equal-width signed integer cells, organized per column into base and
// tail areas addressed by record ID.
package storage

import "errors"

var (
	// ErrNoCapacity indicates an append to a full page
	ErrNoCapacity = errors.New("storage: page has no capacity")

	// ErrOutOfBounds indicates a read or write at an undefined cell, column,
	// or record ID
	ErrOutOfBounds = errors.New("storage: out of bounds")

	// ErrColumnCount indicates a record with the wrong number of column values
	ErrColumnCount = errors.New("storage: wrong number of column values")
)
