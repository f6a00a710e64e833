package archive

import (
	"fmt"
	"sync/atomic"

	"github.com/arloliu/fragscan/errs"
	"github.com/arloliu/fragscan/internal/pool"
	"github.com/arloliu/fragscan/section"
)

// RowInfo describes the page run that owns a byte offset of a blob.
type RowInfo struct {
	// RowInBlob is the 0-based index of the run's first row within the blob.
	RowInBlob uint32
	// Start is the offset of the run's stored bases within the blob.
	Start uint32
	// Len is the length of one row of the run.
	Len uint32
	// Repeat is the number of identical rows sharing the stored bases.
	Repeat uint32
	// Increment is the row advance of the run, equal to Len.
	Increment uint32
}

// Blob is the decoded bases of one stored blob together with its row range and page map.
// A Blob has a single owner that must call Release exactly once; use Clone for an
// independent copy.
type Blob struct {
	firstRow uint64
	rowCount uint32
	runs     []section.PageRun
	buf      *pool.ByteBuffer
	released atomic.Bool
}

func newBlob(firstRow uint64, rowCount uint32, runs []section.PageRun, buf *pool.ByteBuffer) *Blob {
	return &Blob{firstRow: firstRow, rowCount: rowCount, runs: runs, buf: buf}
}

func (b *Blob) live() bool {
	return b != nil && b.buf != nil && !b.released.Load()
}

// Data returns the blob's bases. The slice is valid until Release.
func (b *Blob) Data() ([]byte, error) {
	if !b.live() {
		return nil, errs.ErrBlobReleased
	}

	return b.buf.Bytes(), nil
}

// Size returns the number of stored bases.
func (b *Blob) Size() (int, error) {
	if !b.live() {
		return 0, errs.ErrBlobReleased
	}

	return b.buf.Len(), nil
}

// FirstRow returns the first row covered by the blob.
func (b *Blob) FirstRow() uint64 {
	if b == nil {
		return 0
	}

	return b.firstRow
}

// RowCount returns the number of rows covered by the blob.
func (b *Blob) RowCount() uint32 {
	if b == nil {
		return 0
	}

	return b.rowCount
}

// RowRange returns the half-open row range [first, end) covered by the blob.
func (b *Blob) RowRange() (first, end uint64) {
	return b.FirstRow(), b.FirstRow() + uint64(b.RowCount())
}

// String returns the inclusive row range as "first-last".
func (b *Blob) String() string {
	first, end := b.RowRange()
	return fmt.Sprintf("%d-%d", first, end-1)
}

// PageMap returns the blob's page runs. The slice must not be modified.
func (b *Blob) PageMap() []section.PageRun {
	if b == nil {
		return nil
	}

	return b.runs
}

// RowInfo walks the page map to the run that holds offset.
// An offset outside the stored bases is reported as an internal error.
func (b *Blob) RowInfo(offset int) (RowInfo, error) {
	size, err := b.Size()
	if err != nil {
		return RowInfo{}, err
	}
	if offset < 0 || offset >= size {
		return RowInfo{}, errs.Internal("row info", "offset %d outside blob %s of %d bases", offset, b, size)
	}

	var rowInBlob, start uint32
	for _, run := range b.runs {
		end := start + run.RowLen
		if uint32(offset) < end { //nolint: gosec
			return RowInfo{
				RowInBlob: rowInBlob,
				Start:     start,
				Len:       run.RowLen,
				Repeat:    run.Repeat,
				Increment: run.RowLen,
			}, nil
		}
		start = end
		rowInBlob += run.Repeat
	}

	return RowInfo{}, errs.Internal("row info", "page map of blob %s ends at %d, offset %d", b, start, offset)
}

// RowBases returns the stored bases of row, which must be covered by the blob.
func (b *Blob) RowBases(row uint64) ([]byte, error) {
	data, err := b.Data()
	if err != nil {
		return nil, err
	}
	if row < b.firstRow || row >= b.firstRow+uint64(b.rowCount) {
		return nil, fmt.Errorf("%w: row %d not in blob %s", errs.ErrRowOutOfRange, row, b)
	}

	idx := row - b.firstRow
	var rowInBlob uint64
	var start uint32
	for _, run := range b.runs {
		if idx < rowInBlob+uint64(run.Repeat) {
			return data[start : start+run.RowLen], nil
		}
		rowInBlob += uint64(run.Repeat)
		start += run.RowLen
	}

	return nil, errs.Internal("row bases", "page map of blob %s covers %d rows, want row %d", b, rowInBlob, row)
}

// Clone returns an independent copy with its own pooled buffer.
func (b *Blob) Clone() (*Blob, error) {
	data, err := b.Data()
	if err != nil {
		return nil, err
	}

	buf := pool.GetBlobBuffer()
	buf.Set(data)

	return newBlob(b.firstRow, b.rowCount, b.runs, buf), nil
}

// Release returns the blob's buffer to the pool. Only the first call has an effect and
// nil blobs are ignored.
func (b *Blob) Release() {
	if b == nil || !b.released.CompareAndSwap(false, true) {
		return
	}

	buf := b.buf
	b.buf = nil
	pool.PutBlobBuffer(buf)
}
