// Package query is the thin dispatcher over the versioned record protocol.
// Operations return their result with an ok flag; every lower-level failure
// is converted into a falsy result and logged.
package query

import (
	"time"

	"github.com/nainya/columnstore/internal/logger"
	"github.com/nainya/columnstore/pkg/table"
)

// Query performs insert, select, update, delete, and sum operations against
// one table.
type Query struct {
	table *table.Table
	log   *logger.Logger
}

// New creates a query dispatcher for the table.
func New(t *table.Table) *Query {
	return &Query{
		table: t,
		log:   logger.GetGlobalLogger().QueryLogger(t.Name()),
	}
}

// Table returns the underlying table.
func (q *Query) Table() *table.Table {
	return q.table
}

// Insert adds a record with the given column values.
func (q *Query) Insert(cols ...int64) bool {
	start := time.Now()
	err := q.table.Insert(cols)
	q.log.LogQueryOperation("insert", time.Since(start), 1, err)
	return err == nil
}

// Select returns the latest version of the records matching searchKey on
// the given column, projected to the columns marked with 1s.
func (q *Query) Select(searchKey int64, searchCol int, projection []int) ([]table.Record, bool) {
	return q.SelectVersion(searchKey, searchCol, projection, 0)
}

// SelectVersion returns the matching records at a relative version
// (0 = latest, -1 = one older, ...).
func (q *Query) SelectVersion(searchKey int64, searchCol int, projection []int, version int) ([]table.Record, bool) {
	start := time.Now()
	records, err := q.table.SelectVersion(searchKey, searchCol, projection, version)
	q.log.LogQueryOperation("select", time.Since(start), len(records), err)
	if err != nil {
		return nil, false
	}
	return records, true
}

// Update rewrites the provided columns (nil means untouched) of the record
// with the given primary key.
func (q *Query) Update(pk int64, cols ...*int64) bool {
	start := time.Now()
	err := q.table.Update(pk, cols)
	q.log.LogQueryOperation("update", time.Since(start), 1, err)
	return err == nil
}

// Delete removes the record with the given primary key.
func (q *Query) Delete(pk int64) bool {
	start := time.Now()
	err := q.table.Delete(pk)
	q.log.LogQueryOperation("delete", time.Since(start), 1, err)
	return err == nil
}

// Sum accumulates one column over the latest versions of the records whose
// primary key lies in [lo, hi].
func (q *Query) Sum(lo, hi int64, col int) (int64, bool) {
	return q.SumVersion(lo, hi, col, 0)
}

// SumVersion accumulates one column at a relative version.
func (q *Query) SumVersion(lo, hi int64, col int, version int) (int64, bool) {
	start := time.Now()
	sum, err := q.table.SumVersion(lo, hi, col, version)
	q.log.LogQueryOperation("sum", time.Since(start), 0, err)
	if err != nil {
		return 0, false
	}
	return sum, true
}

// Increment adds one to a single column of the record with the given
// primary key.
func (q *Query) Increment(pk int64, col int) bool {
	start := time.Now()
	err := q.table.Increment(pk, col)
	q.log.LogQueryOperation("increment", time.Since(start), 1, err)
	return err == nil
}
