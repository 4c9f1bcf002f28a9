// ABOUTME: Fixed-size page of equal-width integer cells
// ABOUTME: Append-only writes with positional reads and meta overwrites

package storage

// Page is a fixed-size byte block holding cells in positional order.
// Cell i occupies bytes [i*width, (i+1)*width). Cells are defined for
// positions below NumCells only.
type Page struct {
	data     []byte
	width    int
	numCells int
}

// NewPage allocates an empty page with the given geometry. The config must
// have been validated by the caller.
func NewPage(cfg Config) *Page {
	return &Page{
		data:  make([]byte, cfg.PageSize),
		width: cfg.CellWidth,
	}
}

// Capacity returns the total number of cells the page can hold.
func (p *Page) Capacity() int {
	return len(p.data) / p.width
}

// NumCells returns the number of defined cells.
func (p *Page) NumCells() int {
	return p.numCells
}

// HasCapacity reports whether another cell can be appended.
func (p *Page) HasCapacity() bool {
	return p.numCells < p.Capacity()
}

// Write appends v at the next free position.
func (p *Page) Write(v int64) error {
	if !p.HasCapacity() {
		return ErrNoCapacity
	}
	putCell(p.data[p.numCells*p.width:], p.width, v)
	p.numCells++
	return nil
}

// WriteAt overwrites an already defined cell in place.
func (p *Page) WriteAt(v int64, pos int) error {
	if pos < 0 || pos >= p.numCells {
		return ErrOutOfBounds
	}
	putCell(p.data[pos*p.width:], p.width, v)
	return nil
}

// Read decodes the cell at pos.
func (p *Page) Read(pos int) (int64, error) {
	if pos < 0 || pos >= p.numCells {
		return 0, ErrOutOfBounds
	}
	return getCell(p.data[pos*p.width:], p.width), nil
}
