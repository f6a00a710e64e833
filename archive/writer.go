package archive

import (
	"bytes"
	"fmt"
	"io"

	"github.com/arloliu/fragscan/compress"
	"github.com/arloliu/fragscan/endian"
	"github.com/arloliu/fragscan/errs"
	"github.com/arloliu/fragscan/fragment"
	"github.com/arloliu/fragscan/internal/encoding"
	"github.com/arloliu/fragscan/internal/hash"
	"github.com/arloliu/fragscan/internal/options"
	"github.com/arloliu/fragscan/internal/pool"
	"github.com/arloliu/fragscan/section"
)

// Row is one record added to an archive.
type Row struct {
	Bases []byte
	// Fragments partitions Bases. Empty means one unaligned biological fragment
	// covering the whole row.
	Fragments []fragment.Fragment
}

// Writer streams rows into an archive. The archive header is written last, so the
// destination must support seeking back to the start.
type Writer struct {
	dst    io.WriteSeeker
	cfg    *writerConfig
	engine endian.EndianEngine
	codec  compress.Codec
	header *section.ArchiveHeader

	offset uint64
	index  []section.BlobIndexEntry
	meta   Metadata

	// current blob
	bases     *pool.ByteBuffer
	layouts   *pool.ByteBuffer
	runs      []section.PageRun
	firstRow  uint64
	blobRows  int
	lastRowAt    int // offset of the last stored row in bases
	lastLayoutAt int // offset of the last row's layout in layouts
	fragsBuf  []fragment.Fragment

	finished bool
}

// NewWriter creates a Writer on dst, which must be positioned at offset 0.
func NewWriter(dst io.WriteSeeker, opts ...WriterOption) (*Writer, error) {
	cfg := defaultWriterConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.runName == "" {
		return nil, fmt.Errorf("%w: run name is required", errs.ErrInvalidConfig)
	}

	codec, err := compress.GetCodec(cfg.compression)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidConfig, err)
	}

	header := section.NewArchiveHeader(cfg.compression, cfg.kind)
	if cfg.bigEndian {
		header.Flag.WithBigEndian()
	}

	w := &Writer{
		dst:     dst,
		cfg:     cfg,
		engine:  header.Engine(),
		codec:   codec,
		header:  header,
		offset:  section.BlobOffsetStart,
		bases:   pool.GetWriteBuffer(),
		layouts: pool.GetWriteBuffer(),
		meta: Metadata{
			Run:      cfg.runName,
			Platform: cfg.platform,
			Kind:     cfg.kind,
		},
		firstRow: 1,
	}

	// placeholder, rewritten by Finish
	if _, err := dst.Write(make([]byte, section.ArchiveHeaderSize)); err != nil {
		w.releaseBuffers()
		return nil, errs.Storage("write header", err)
	}

	return w, nil
}

// RowCount returns the number of rows added so far.
func (w *Writer) RowCount() uint64 {
	return w.meta.RowCount
}

// Add appends one row.
func (w *Writer) Add(row Row) error {
	if w.finished {
		return errs.ErrWriterFinished
	}

	frags := row.Fragments
	if len(frags) == 0 && len(row.Bases) > 0 {
		w.fragsBuf = append(w.fragsBuf[:0], fragment.Fragment{Len: uint32(len(row.Bases))}) //nolint: gosec
		frags = w.fragsBuf
	}
	if err := validateFragments(row.Bases, frags); err != nil {
		return err
	}

	if w.blobRows > 0 && (w.blobRows >= w.cfg.rowsPerBlob || w.bases.Len()+len(row.Bases) > w.cfg.targetBlobSize) {
		if err := w.flushBlob(); err != nil {
			return err
		}
	}

	rowLen := uint32(len(row.Bases)) //nolint: gosec
	layoutAt := w.layouts.Len()
	w.layouts.B = encoding.AppendLayout(w.layouts.B, frags)

	if w.canCollapse(row.Bases, layoutAt) {
		w.runs[len(w.runs)-1].Repeat++
	} else {
		w.lastRowAt = w.bases.Len()
		w.bases.Grow(len(row.Bases))
		_, _ = w.bases.Write(row.Bases)
		w.runs = append(w.runs, section.PageRun{RowLen: rowLen, Repeat: 1})
	}
	w.lastLayoutAt = layoutAt
	w.blobRows++

	w.meta.RowCount++
	w.meta.BaseCount += uint64(rowLen)
	w.meta.FragmentCount += uint64(len(frags))

	return nil
}

// canCollapse reports whether the row whose layout starts at layoutAt repeats the
// previous row. Rows of one run share both their bases and their layout.
func (w *Writer) canCollapse(bases []byte, layoutAt int) bool {
	if !w.cfg.collapseRuns || len(w.runs) == 0 || len(bases) == 0 {
		return false
	}

	last := w.runs[len(w.runs)-1]
	if int(last.RowLen) != len(bases) {
		return false
	}
	if !bytes.Equal(w.layouts.B[w.lastLayoutAt:layoutAt], w.layouts.B[layoutAt:]) {
		return false
	}

	return bytes.Equal(w.bases.B[w.lastRowAt:], bases)
}

func validateFragments(bases []byte, frags []fragment.Fragment) error {
	var total uint64
	for i, f := range frags {
		if f.Len == 0 {
			return fmt.Errorf("%w: fragment %d has zero length", errs.ErrInvalidLayout, i)
		}
		total += uint64(f.Len)
	}

	if total != uint64(len(bases)) {
		return fmt.Errorf("%w: fragments cover %d bases, row has %d", errs.ErrInvalidLayout, total, len(bases))
	}

	return nil
}

func (w *Writer) flushBlob() error {
	if w.blobRows == 0 {
		return nil
	}

	payload, err := w.codec.Compress(w.bases.Bytes())
	if err != nil {
		return fmt.Errorf("compress blob at row %d: %w", w.firstRow, err)
	}
	layoutPayload, err := w.codec.Compress(w.layouts.Bytes())
	if err != nil {
		return fmt.Errorf("compress layouts at row %d: %w", w.firstRow, err)
	}

	blobHeader := section.BlobHeader{
		FirstRow:    w.firstRow,
		RowCount:    uint32(w.blobRows),     //nolint: gosec
		RunCount:    uint32(len(w.runs)),    //nolint: gosec
		DataSize:    uint32(w.bases.Len()),  //nolint: gosec
		PayloadSize: uint32(len(payload)),   //nolint: gosec
		Checksum:    hash.Checksum(w.bases.Bytes()),
	}
	layoutHeader := section.LayoutHeader{
		RowCount: uint32(w.blobRows),      //nolint: gosec
		DataSize: uint32(w.layouts.Len()), //nolint: gosec
		Checksum: hash.Checksum(w.layouts.Bytes()),
	}

	body := pool.GetWriteBuffer()
	defer pool.PutWriteBuffer(body)

	body.B = append(body.B, blobHeader.Bytes(w.engine)...)
	body.B = section.AppendPageRuns(body.B, w.runs, w.engine)
	body.B = append(body.B, payload...)
	layoutOffset := body.Len()
	body.B = append(body.B, layoutHeader.Bytes(w.engine)...)
	body.B = append(body.B, layoutPayload...)

	if _, err := w.dst.Write(body.Bytes()); err != nil {
		return errs.Storage("write blob", err)
	}

	w.index = append(w.index, section.BlobIndexEntry{
		FirstRow:     w.firstRow,
		RowCount:     blobHeader.RowCount,
		DataSize:     blobHeader.DataSize,
		Offset:       w.offset,
		BodySize:     uint32(body.Len()),  //nolint: gosec
		LayoutOffset: uint32(layoutOffset), //nolint: gosec
	})

	w.offset += uint64(body.Len())
	w.firstRow += uint64(w.blobRows)
	w.blobRows = 0
	w.runs = w.runs[:0]
	w.bases.Reset()
	w.layouts.Reset()

	return nil
}

// Finish flushes the last blob and writes the index, the metadata and the header.
// The Writer cannot be used afterwards.
func (w *Writer) Finish() error {
	if w.finished {
		return errs.ErrWriterFinished
	}
	defer w.releaseBuffers()
	w.finished = true

	if w.meta.RowCount == 0 {
		return errs.ErrNoRowsAdded
	}

	if err := w.flushBlob(); err != nil {
		return err
	}

	w.header.RowCount = w.meta.RowCount
	w.header.BlobCount = uint32(len(w.index)) //nolint: gosec
	w.header.IndexOffset = w.offset
	w.meta.BlobCount = w.header.BlobCount

	tail := make([]byte, 0, len(w.index)*section.BlobIndexEntrySize)
	for _, entry := range w.index {
		tail = append(tail, entry.Bytes(w.engine)...)
	}

	meta, err := encodeMetadata(w.meta)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	tail = append(tail, meta...)
	w.header.MetadataSize = uint32(len(meta)) //nolint: gosec
	w.header.Flag.SetHasMetadata(true)

	if _, err := w.dst.Write(tail); err != nil {
		return errs.Storage("write index", err)
	}

	if _, err := w.dst.Seek(0, io.SeekStart); err != nil {
		return errs.Storage("write header", err)
	}
	if _, err := w.dst.Write(w.header.Bytes()); err != nil {
		return errs.Storage("write header", err)
	}
	if _, err := w.dst.Seek(0, io.SeekEnd); err != nil {
		return errs.Storage("write header", err)
	}

	return nil
}

func (w *Writer) releaseBuffers() {
	pool.PutWriteBuffer(w.bases)
	pool.PutWriteBuffer(w.layouts)
	w.bases, w.layouts = nil, nil
}
