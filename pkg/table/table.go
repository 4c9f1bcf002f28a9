// ABOUTME: Table operations over the page directory and index set
// ABOUTME: Insert, tombstone delete, tail-version update, and versioned reads

package table

import (
	"github.com/nainya/columnstore/pkg/index"
	"github.com/nainya/columnstore/pkg/storage"
)

// Config holds the table's behavior switches and the configs of its
// collaborators.
type Config struct {
	// Cumulative makes tail records snapshot every previously updated
	// column, so reads of the latest version never walk the chain. Delta
	// tails carry only the columns an update provides.
	Cumulative bool

	Storage storage.Config
	Index   index.Config
}

// DefaultConfig returns delta tails over the default page geometry.
func DefaultConfig() Config {
	return Config{
		Storage: storage.DefaultConfig(),
		Index:   index.DefaultConfig(),
	}
}

// Table owns one page directory and one index set. All columns are
// fixed-width signed integers; the primary key is one of the data columns.
type Table struct {
	name       string
	numColumns int
	primaryKey int
	cfg        Config

	dir *storage.PageDirectory
	idx *index.Index

	// clock is the monotone timestamp source. Values are opaque; only
	// their order matters.
	clock int64
}

// New creates an empty table with numColumns integer data columns.
func New(name string, numColumns, primaryKey int, cfg Config) (*Table, error) {
	if primaryKey < 0 || primaryKey >= numColumns {
		return nil, ErrInvalidKey
	}
	dir, err := storage.NewPageDirectory(numColumns, cfg.Storage)
	if err != nil {
		return nil, err
	}
	idx, err := index.New(dir, numColumns, primaryKey, cfg.Index)
	if err != nil {
		return nil, err
	}
	return &Table{
		name:       name,
		numColumns: numColumns,
		primaryKey: primaryKey,
		cfg:        cfg,
		dir:        dir,
		idx:        idx,
	}, nil
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// NumColumns returns the number of data columns.
func (t *Table) NumColumns() int { return t.numColumns }

// PrimaryKey returns the primary key column number.
func (t *Table) PrimaryKey() int { return t.primaryKey }

// Directory returns the table's page directory.
func (t *Table) Directory() *storage.PageDirectory { return t.dir }

// Index returns the table's index set.
func (t *Table) Index() *index.Index { return t.idx }

func (t *Table) now() int64 {
	t.clock++
	return t.clock
}

// Insert appends a new base record with the given data columns.
func (t *Table) Insert(cols []int64) error {
	if len(cols) != t.numColumns {
		return ErrColumnCount
	}

	rid := t.dir.NumRecords()
	row := make([]int64, storage.MetaColumns+t.numColumns)
	row[storage.IndirectionColumn] = storage.NullRID
	row[storage.RIDColumn] = rid
	row[storage.TimestampColumn] = t.now()
	row[storage.SchemaEncodingColumn] = 0
	copy(row[storage.MetaColumns:], cols)

	if _, err := t.dir.AddRecord(row, storage.BaseArea); err != nil {
		return err
	}
	t.idx.MaintainInsert(cols, rid)
	return nil
}

// locate resolves a primary key to its single live base RID.
func (t *Table) locate(pk int64) (int64, error) {
	rids, err := t.idx.Locate(t.primaryKey, pk)
	if err != nil {
		return 0, err
	}
	for _, rid := range rids {
		own, err := t.dir.Get(storage.BaseArea, rid, storage.RIDColumn)
		if err != nil {
			return 0, err
		}
		if own != storage.NullRID {
			return rid, nil
		}
	}
	return 0, ErrRecordNotFound
}

// readRow materializes every data column of a base record at the given
// relative version: base values first, then the resolved tail version's
// columns wherever its schema bit is set.
func (t *Table) readRow(rid int64, version int) ([]int64, error) {
	row := make([]int64, t.numColumns)
	for k := 0; k < t.numColumns; k++ {
		v, err := t.dir.Get(storage.BaseArea, rid, storage.MetaColumns+k)
		if err != nil {
			return nil, err
		}
		row[k] = v
	}

	area, vrid, err := t.dir.ResolveVersion(rid, version)
	if err != nil {
		return nil, err
	}
	if area == storage.TailArea {
		schema, err := t.dir.Get(storage.TailArea, vrid, storage.SchemaEncodingColumn)
		if err != nil {
			return nil, err
		}
		for k := 0; k < t.numColumns; k++ {
			if !getBit(schema, k) {
				continue
			}
			v, err := t.dir.Get(storage.TailArea, vrid, storage.MetaColumns+k)
			if err != nil {
				return nil, err
			}
			row[k] = v
		}
	}
	return row, nil
}

// Delete tombstones the record with the given primary key and removes its
// index entries.
func (t *Table) Delete(pk int64) error {
	rid, err := t.locate(pk)
	if err != nil {
		return err
	}
	row, err := t.readRow(rid, 0)
	if err != nil {
		return err
	}
	if err := t.idx.MaintainDelete(pk, row); err != nil {
		return err
	}
	return t.dir.Set(storage.BaseArea, rid, storage.RIDColumn, storage.NullRID)
}

// Update appends a tail version carrying the provided columns (nil means
// untouched), rewires the base record's indirection to it, and reindexes
// the changed columns. Cumulative mode copies every previously updated
// column into the new tail so the latest version reads without chain walks.
func (t *Table) Update(pk int64, cols []*int64) error {
	if len(cols) != t.numColumns {
		return ErrColumnCount
	}
	rid, err := t.locate(pk)
	if err != nil {
		return err
	}

	baseIndirection, err := t.dir.Get(storage.BaseArea, rid, storage.IndirectionColumn)
	if err != nil {
		return err
	}
	baseSchema, err := t.dir.Get(storage.BaseArea, rid, storage.SchemaEncodingColumn)
	if err != nil {
		return err
	}
	oldRow, err := t.readRow(rid, 0)
	if err != nil {
		return err
	}

	tailRID := t.dir.NumTailRecords()
	ts := t.now()
	tail := make([]int64, storage.MetaColumns+t.numColumns)
	tail[storage.RIDColumn] = tailRID
	tail[storage.TimestampColumn] = ts
	tail[storage.IndirectionColumn] = baseIndirection

	var tailSchema int64
	newBaseSchema := baseSchema
	for k := 0; k < t.numColumns; k++ {
		switch {
		case cols[k] != nil:
			tail[storage.MetaColumns+k] = *cols[k]
			tailSchema = setBit(tailSchema, k)
			newBaseSchema = setBit(newBaseSchema, k)
		case t.cfg.Cumulative && getBit(baseSchema, k):
			tail[storage.MetaColumns+k] = oldRow[k]
			tailSchema = setBit(tailSchema, k)
		default:
			// Placeholder; the schema bit keeps it invisible.
			tail[storage.MetaColumns+k] = storage.NullRID
		}
	}
	tail[storage.SchemaEncodingColumn] = tailSchema

	if _, err := t.dir.AddRecord(tail, storage.TailArea); err != nil {
		return err
	}
	if err := t.dir.Set(storage.BaseArea, rid, storage.IndirectionColumn, tailRID); err != nil {
		return err
	}
	if err := t.dir.Set(storage.BaseArea, rid, storage.TimestampColumn, ts); err != nil {
		return err
	}
	if err := t.dir.Set(storage.BaseArea, rid, storage.SchemaEncodingColumn, newBaseSchema); err != nil {
		return err
	}

	return t.idx.MaintainUpdate(pk, oldRow, cols)
}

// SelectVersion returns the records matching searchKey on searchCol at the
// given relative version (0 = latest, -1 = one older, ...), in RID order.
// Projection marks the data columns to return with 1s.
func (t *Table) SelectVersion(searchKey int64, searchCol int, projection []int, version int) ([]Record, error) {
	if searchCol < 0 || searchCol >= t.numColumns {
		return nil, ErrInvalidColumn
	}
	if len(projection) != t.numColumns {
		return nil, ErrColumnCount
	}

	rids, err := t.idx.Locate(searchCol, searchKey)
	if err != nil {
		return nil, err
	}

	var records []Record
	for _, rid := range rids {
		own, err := t.dir.Get(storage.BaseArea, rid, storage.RIDColumn)
		if err != nil {
			return nil, err
		}
		if own == storage.NullRID {
			continue
		}

		row, err := t.readRow(rid, version)
		if err != nil {
			return nil, err
		}
		key, err := t.dir.Get(storage.BaseArea, rid, storage.MetaColumns+t.primaryKey)
		if err != nil {
			return nil, err
		}

		cols := make([]int64, 0, t.numColumns)
		for k, want := range projection {
			if want != 0 {
				cols = append(cols, row[k])
			}
		}
		records = append(records, Record{RID: rid, Key: key, Columns: cols})
	}
	return records, nil
}

// Select returns the latest version of the matching records.
func (t *Table) Select(searchKey int64, searchCol int, projection []int) ([]Record, error) {
	return t.SelectVersion(searchKey, searchCol, projection, 0)
}

// SumVersion accumulates one column over the records whose primary key lies
// in [lo, hi], at the given relative version.
func (t *Table) SumVersion(lo, hi int64, col int, version int) (int64, error) {
	if col < 0 || col >= t.numColumns {
		return 0, ErrInvalidColumn
	}

	rids, err := t.idx.LocateRange(lo, hi, t.primaryKey)
	if err != nil {
		return 0, err
	}

	var sum int64
	found := false
	for _, rid := range rids {
		own, err := t.dir.Get(storage.BaseArea, rid, storage.RIDColumn)
		if err != nil {
			return 0, err
		}
		if own == storage.NullRID {
			continue
		}
		row, err := t.readRow(rid, version)
		if err != nil {
			return 0, err
		}
		sum += row[col]
		found = true
	}
	if !found {
		return 0, ErrRecordNotFound
	}
	return sum, nil
}

// Sum accumulates one column over the latest versions in the key range.
func (t *Table) Sum(lo, hi int64, col int) (int64, error) {
	return t.SumVersion(lo, hi, col, 0)
}

// Increment adds one to a single column of the record with the given
// primary key, expressed as a read followed by an update.
func (t *Table) Increment(pk int64, col int) error {
	if col < 0 || col >= t.numColumns {
		return ErrInvalidColumn
	}

	projection := make([]int, t.numColumns)
	for k := range projection {
		projection[k] = 1
	}
	records, err := t.SelectVersion(pk, t.primaryKey, projection, 0)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return ErrRecordNotFound
	}

	cols := make([]*int64, t.numColumns)
	v := records[0].Columns[col] + 1
	cols[col] = &v
	return t.Update(pk, cols)
}
