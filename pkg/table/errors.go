// Package table implements the versioned record protocol: base records hold
// initial row values, updates append tail versions linked through the
// indirection column, and reads reconstruct any historical version.
package table

import "errors"

var (
	// ErrRecordNotFound indicates a key with no live record
	ErrRecordNotFound = errors.New("table: record not found")

	// ErrColumnCount indicates a column vector of the wrong length
	ErrColumnCount = errors.New("table: wrong number of columns")

	// ErrInvalidColumn indicates a column number outside the table
	ErrInvalidColumn = errors.New("table: invalid column")

	// ErrInvalidKey indicates a primary key position outside the columns
	ErrInvalidKey = errors.New("table: primary key outside columns")
)
