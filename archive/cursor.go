package archive

import (
	"fmt"

	"github.com/arloliu/fragscan/errs"
	"github.com/arloliu/fragscan/fragment"
	"github.com/arloliu/fragscan/internal/encoding"
	"github.com/arloliu/fragscan/internal/hash"
	"github.com/arloliu/fragscan/internal/pool"
	"github.com/arloliu/fragscan/section"
)

type cachedLayouts struct {
	blob    int
	layouts []fragment.Layout
}

// Cursor reads blobs and fragment layouts of one column.
// It caches decoded layouts and is not safe for concurrent use.
type Cursor struct {
	coll  *Collection
	cache []cachedLayouts // most recent last
	body  []byte
}

func newCursor(c *Collection) *Cursor {
	return &Cursor{
		coll:  c,
		cache: make([]cachedLayouts, 0, c.cfg.layoutCacheSize),
	}
}

// Collection returns the collection the cursor reads from.
func (cur *Cursor) Collection() *Collection {
	return cur.coll
}

// FetchBlob returns the blob covering row. The caller owns the blob and must Release it.
func (cur *Cursor) FetchBlob(row uint64) (*Blob, error) {
	i, err := cur.coll.blobIndex(row)
	if err != nil {
		return nil, err
	}

	return cur.fetch(i)
}

// NextBlob returns the blob following prev, or the first blob when prev is nil.
// It reports false once prev is the last blob. prev is not released.
func (cur *Cursor) NextBlob(prev *Blob) (*Blob, bool, error) {
	row := uint64(1)
	if prev != nil {
		_, row = prev.RowRange()
	}
	if row > cur.coll.RowCount() {
		return nil, false, nil
	}

	blob, err := cur.FetchBlob(row)
	if err != nil {
		return nil, false, err
	}

	return blob, true, nil
}

func (cur *Cursor) fetch(i int) (*Blob, error) {
	entry := cur.coll.index[i]
	engine := cur.coll.engine

	body, err := cur.readBody(entry, 0, int(entry.LayoutOffset), "fetch blob")
	if err != nil {
		return nil, err
	}
	if len(body) < section.BlobHeaderSize {
		return nil, errs.Internal("fetch blob", "blob %d body of %d bytes has no header", i, len(body))
	}

	var header section.BlobHeader
	if err := header.Parse(body[:section.BlobHeaderSize], engine); err != nil {
		return nil, errs.Internal("fetch blob", "%v", err)
	}
	if header.FirstRow != entry.FirstRow || header.RowCount != entry.RowCount || header.DataSize != entry.DataSize {
		return nil, errs.Internal("fetch blob", "blob %d header disagrees with index", i)
	}

	runsEnd := section.BlobHeaderSize + int(header.RunCount)*section.PageRunSize
	if runsEnd+int(header.PayloadSize) != len(body) {
		return nil, errs.Internal("fetch blob", "blob %d sections do not fill its body", i)
	}

	runs, err := section.ParsePageRuns(body[section.BlobHeaderSize:runsEnd], int(header.RunCount), engine)
	if err != nil {
		return nil, errs.Internal("fetch blob", "%v", err)
	}
	if err := checkRuns(runs, header); err != nil {
		return nil, err
	}

	buf := pool.GetBlobBuffer()
	data, err := cur.coll.codec.Decompress(buf.B[:0], body[runsEnd:], int(header.DataSize))
	if err != nil {
		pool.PutBlobBuffer(buf)
		return nil, errs.Storage("fetch blob", fmt.Errorf("%w: %w", errs.ErrCorrupted, err))
	}
	buf.B = data

	if cur.coll.cfg.verifyChecksums && hash.Checksum(data) != header.Checksum {
		pool.PutBlobBuffer(buf)
		return nil, errs.Storage("fetch blob", fmt.Errorf("%w: blob %d bases", errs.ErrChecksumMismatch, i))
	}

	return newBlob(header.FirstRow, header.RowCount, runs, buf), nil
}

func checkRuns(runs []section.PageRun, header section.BlobHeader) error {
	var rows, size uint64
	for _, run := range runs {
		rows += uint64(run.Repeat)
		size += uint64(run.RowLen)
	}

	if rows != uint64(header.RowCount) || size != uint64(header.DataSize) {
		return errs.Internal("fetch blob", "page map covers %d rows and %d bases, header has %d and %d",
			rows, size, header.RowCount, header.DataSize)
	}

	return nil
}

// Layout returns the fragment layout of row.
func (cur *Cursor) Layout(row uint64) (fragment.Layout, error) {
	i, err := cur.coll.blobIndex(row)
	if err != nil {
		return nil, err
	}

	layouts, err := cur.blobLayouts(i)
	if err != nil {
		return nil, err
	}

	return layouts[row-cur.coll.index[i].FirstRow], nil
}

func (cur *Cursor) blobLayouts(i int) ([]fragment.Layout, error) {
	for _, cached := range cur.cache {
		if cached.blob == i {
			return cached.layouts, nil
		}
	}

	layouts, err := cur.loadLayouts(i)
	if err != nil {
		return nil, err
	}

	if len(cur.cache) == cap(cur.cache) {
		copy(cur.cache, cur.cache[1:])
		cur.cache = cur.cache[:len(cur.cache)-1]
	}
	cur.cache = append(cur.cache, cachedLayouts{blob: i, layouts: layouts})

	return layouts, nil
}

func (cur *Cursor) loadLayouts(i int) ([]fragment.Layout, error) {
	entry := cur.coll.index[i]

	body, err := cur.readBody(entry, int(entry.LayoutOffset), int(entry.BodySize), "fetch layout")
	if err != nil {
		return nil, err
	}
	if len(body) < section.LayoutHeaderSize {
		return nil, errs.Internal("fetch layout", "blob %d has no layout header", i)
	}

	var header section.LayoutHeader
	if err := header.Parse(body[:section.LayoutHeaderSize], cur.coll.engine); err != nil {
		return nil, errs.Internal("fetch layout", "%v", err)
	}
	if header.RowCount != entry.RowCount {
		return nil, errs.Internal("fetch layout", "blob %d layout has %d rows, index has %d", i, header.RowCount, entry.RowCount)
	}

	data, err := cur.coll.codec.Decompress(nil, body[section.LayoutHeaderSize:], int(header.DataSize))
	if err != nil {
		return nil, errs.Storage("fetch layout", fmt.Errorf("%w: %w", errs.ErrCorrupted, err))
	}
	if cur.coll.cfg.verifyChecksums && hash.Checksum(data) != header.Checksum {
		return nil, errs.Storage("fetch layout", fmt.Errorf("%w: blob %d layouts", errs.ErrChecksumMismatch, i))
	}

	layouts, err := encoding.DecodeLayouts(data, int(header.RowCount))
	if err != nil {
		return nil, errs.Internal("fetch layout", "%v", err)
	}

	return layouts, nil
}

// readBody reads bytes [from, to) of a blob body into the cursor's scratch buffer.
func (cur *Cursor) readBody(entry section.BlobIndexEntry, from, to int, op string) ([]byte, error) {
	n := to - from
	if cap(cur.body) < n {
		cur.body = make([]byte, n)
	}
	body := cur.body[:n]

	if err := cur.coll.readAt(body, int64(entry.Offset)+int64(from), op); err != nil { //nolint: gosec
		return nil, err
	}

	return body, nil
}

// Bases returns a copy of the bases of row.
func (cur *Cursor) Bases(row uint64) ([]byte, error) {
	blob, err := cur.FetchBlob(row)
	if err != nil {
		return nil, err
	}
	defer blob.Release()

	bases, err := blob.RowBases(row)
	if err != nil {
		return nil, err
	}

	return append([]byte(nil), bases...), nil
}
