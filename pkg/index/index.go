// ABOUTME: Per-column index slots with lazy maintenance pools
// ABOUTME: Buffered insertions flush on the next lookup against the column

package index

import (
	"sort"

	"github.com/nainya/columnstore/pkg/storage"
)

// slot is one occupied index position.
type slot struct {
	backend Backend
	ordered bool
}

// Usage counts lookups against a column, mirroring the point/range split.
type Usage struct {
	Point int64
	Range int64
}

// Stats describes one column's index state for observability.
type Stats struct {
	Indexed bool
	Ordered bool
	Entries int
	Pending int
	Usage   Usage
}

// Index holds one optional index per data column plus a pending-insert pool
// buffering (key, rid) pairs between maintenance flushes. It references the
// table's page directory for bootstrap scans and linear fallbacks but does
// not own it.
type Index struct {
	dir        *storage.PageDirectory
	numColumns int
	primaryKey int
	cfg        Config

	slots   []*slot
	pending [][]Entry
	usage   []Usage
}

// New creates the index set for a table and indexes the primary key column
// with the unordered backend.
func New(dir *storage.PageDirectory, numDataColumns, primaryKey int, cfg Config) (*Index, error) {
	idx := &Index{
		dir:        dir,
		numColumns: numDataColumns,
		primaryKey: primaryKey,
		cfg:        cfg,
		slots:      make([]*slot, numDataColumns),
		pending:    make([][]Entry, numDataColumns),
		usage:      make([]Usage, numDataColumns),
	}
	if err := idx.CreateIndex(primaryKey, false); err != nil {
		return nil, err
	}
	return idx, nil
}

// CreateIndex builds an index on a column by scanning it, sorting the
// entries when the backend is ordered, and bulk-inserting them.
func (idx *Index) CreateIndex(col int, ordered bool) error {
	if col < 0 || col >= idx.numColumns {
		return storage.ErrOutOfBounds
	}
	if idx.slots[col] != nil {
		return ErrIndexExists
	}

	kind := idx.cfg.Unordered
	if ordered {
		kind = idx.cfg.Ordered
	}
	backend, err := idx.cfg.newBackend(kind)
	if err != nil {
		return err
	}

	var entries []Entry
	err = idx.dir.ScanColumnLatest(col, func(rid, v int64) bool {
		entries = append(entries, Entry{Key: v, RID: rid})
		return true
	})
	if err != nil {
		return err
	}
	if ordered {
		sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	}
	for _, e := range entries {
		if err := backend.Insert(e.Key, e.RID); err != nil {
			return err
		}
	}

	idx.slots[col] = &slot{backend: backend, ordered: ordered}
	idx.pending[col] = nil
	return nil
}

// DropIndex clears a column's slot and its pool.
func (idx *Index) DropIndex(col int) error {
	if col < 0 || col >= idx.numColumns {
		return storage.ErrOutOfBounds
	}
	if idx.slots[col] == nil {
		return ErrNoIndex
	}
	idx.slots[col] = nil
	idx.pending[col] = nil
	return nil
}

// Locate returns the base RIDs of records holding value in the column, in
// ascending RID order. Unindexed columns fall back to a linear scan.
func (idx *Index) Locate(col int, value int64) ([]int64, error) {
	if col < 0 || col >= idx.numColumns {
		return nil, storage.ErrOutOfBounds
	}
	idx.usage[col].Point++

	s := idx.slots[col]
	if s == nil {
		return idx.linearScan(col, value, value)
	}
	if err := idx.applyMaintenance(col); err != nil {
		return nil, err
	}
	rids := s.backend.Get(value)
	sort.Slice(rids, func(i, j int) bool { return rids[i] < rids[j] })
	return rids, nil
}

// LocateRange returns the base RIDs of records whose column value lies in
// [lo, hi], in ascending RID order. Only ordered backends serve ranges;
// unordered or missing slots fall back to a linear scan.
func (idx *Index) LocateRange(lo, hi int64, col int) ([]int64, error) {
	if col < 0 || col >= idx.numColumns {
		return nil, storage.ErrOutOfBounds
	}
	idx.usage[col].Range++

	s := idx.slots[col]
	if s == nil || !s.ordered {
		if s != nil {
			if err := idx.applyMaintenance(col); err != nil {
				return nil, err
			}
		}
		return idx.linearScan(col, lo, hi)
	}
	if err := idx.applyMaintenance(col); err != nil {
		return nil, err
	}
	rids := s.backend.(OrderedBackend).GetRange(lo, hi)
	sort.Slice(rids, func(i, j int) bool { return rids[i] < rids[j] })
	return rids, nil
}

// linearScan filters the column's latest visible values directly from the
// page directory.
func (idx *Index) linearScan(col int, lo, hi int64) ([]int64, error) {
	var rids []int64
	err := idx.dir.ScanColumnLatest(col, func(rid, v int64) bool {
		if v >= lo && v <= hi {
			rids = append(rids, rid)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return rids, nil
}

// MaintainInsert buffers a freshly inserted row's (value, rid) pairs into
// the pool of every indexed column. The pairs reach the backends on the
// next lookup against each column.
func (idx *Index) MaintainInsert(cols []int64, rid int64) {
	for col, s := range idx.slots {
		if s != nil {
			idx.pending[col] = append(idx.pending[col], Entry{Key: cols[col], RID: rid})
		}
	}
}

// MaintainUpdate reindexes the columns an update touched. oldRow holds the
// row's latest values before the update; newCols marks the columns the
// update provides.
func (idx *Index) MaintainUpdate(pk int64, oldRow []int64, newCols []*int64) error {
	rids, err := idx.Locate(idx.primaryKey, pk)
	if err != nil {
		return err
	}
	if len(rids) == 0 {
		return ErrNoIndex
	}
	rid := rids[0]

	for col, s := range idx.slots {
		if s == nil || newCols[col] == nil || *newCols[col] == oldRow[col] {
			continue
		}
		if err := idx.applyMaintenance(col); err != nil {
			return err
		}
		if err := s.backend.Remove(oldRow[col], rid); err != nil {
			return err
		}
		if err := s.backend.Insert(*newCols[col], rid); err != nil {
			return err
		}
	}
	return nil
}

// MaintainDelete removes a deleted row's entries from every indexed column.
// row holds the row's latest data column values.
func (idx *Index) MaintainDelete(pk int64, row []int64) error {
	rids, err := idx.Locate(idx.primaryKey, pk)
	if err != nil {
		return err
	}
	if len(rids) == 0 {
		return ErrNoIndex
	}
	rid := rids[0]

	for col, s := range idx.slots {
		if s == nil {
			continue
		}
		if err := idx.applyMaintenance(col); err != nil {
			return err
		}
		if err := s.backend.Remove(row[col], rid); err != nil {
			return err
		}
	}
	return nil
}

// applyMaintenance flushes a column's pending pool into its backend. The
// pool is sorted by key first for ordered backends, which reduces splits
// during the bulk insert.
func (idx *Index) applyMaintenance(col int) error {
	pool := idx.pending[col]
	if len(pool) == 0 {
		return nil
	}
	idx.pending[col] = nil

	s := idx.slots[col]
	if s.ordered {
		sort.Slice(pool, func(i, j int) bool { return pool[i].Key < pool[j].Key })
	}
	for _, e := range pool {
		if err := s.backend.Insert(e.Key, e.RID); err != nil {
			return err
		}
	}
	return nil
}

// IsIndexed reports whether a column has an index.
func (idx *Index) IsIndexed(col int) bool {
	return col >= 0 && col < idx.numColumns && idx.slots[col] != nil
}

// ColumnStats returns observability counters for every column.
func (idx *Index) ColumnStats() []Stats {
	out := make([]Stats, idx.numColumns)
	for col := range out {
		out[col].Usage = idx.usage[col]
		out[col].Pending = len(idx.pending[col])
		if s := idx.slots[col]; s != nil {
			out[col].Indexed = true
			out[col].Ordered = s.ordered
			out[col].Entries = s.backend.Len()
		}
	}
	return out
}
