package archive

import (
	"github.com/arloliu/fragscan/fragment"
)

// Read is one logical read of the archive.
type Read struct {
	RowID  uint64
	Bases  []byte // valid until the next call to Next
	Layout fragment.Layout
}

// Category returns the alignment category of the read.
func (r Read) Category() fragment.Category {
	return r.Layout.Category()
}

// FragmentBases returns the bases of the placed fragment p of the read.
func (r Read) FragmentBases(p fragment.Placed) []byte {
	return r.Bases[p.Start:p.End()]
}

// ReadIterator walks the reads of a collection in row order.
// It owns its cursor and is not safe for concurrent use.
type ReadIterator struct {
	cur  *Cursor
	blob *Blob
	row  uint64
	done bool
}

// NewReadIterator creates an iterator starting at row 1.
func NewReadIterator(c *Collection) (*ReadIterator, error) {
	cur, err := c.OpenCursor(ColumnRead)
	if err != nil {
		return nil, err
	}

	return &ReadIterator{cur: cur, row: 1}, nil
}

// Next returns the next read. It reports false when the archive is exhausted.
func (it *ReadIterator) Next() (Read, bool, error) {
	if it.done {
		return Read{}, false, nil
	}
	if it.row > it.cur.coll.RowCount() {
		it.Close()
		return Read{}, false, nil
	}

	if _, end := it.blob.RowRange(); it.blob == nil || it.row >= end {
		next, ok, err := it.cur.NextBlob(it.blob)
		if err != nil {
			return Read{}, false, err
		}
		it.blob.Release()
		it.blob = nil
		if !ok {
			it.Close()
			return Read{}, false, nil
		}
		it.blob = next
	}

	bases, err := it.blob.RowBases(it.row)
	if err != nil {
		return Read{}, false, err
	}
	layout, err := it.cur.Layout(it.row)
	if err != nil {
		return Read{}, false, err
	}

	read := Read{RowID: it.row, Bases: bases, Layout: layout}
	it.row++

	return read, true, nil
}

// Close releases the current blob. Next reports exhaustion afterwards.
func (it *ReadIterator) Close() {
	it.done = true
	it.blob.Release()
	it.blob = nil
}
