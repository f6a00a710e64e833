package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/arloliu/fragscan/compress"
	"github.com/arloliu/fragscan/endian"
	"github.com/arloliu/fragscan/errs"
	"github.com/arloliu/fragscan/format"
	"github.com/arloliu/fragscan/internal/options"
	"github.com/arloliu/fragscan/section"
)

// ColumnRead is the raw bases column, the only column a cursor can be opened on.
const ColumnRead = "READ"

// Collection is an open archive. It is safe for concurrent use; every Cursor opened
// on it reads through the same io.ReaderAt.
type Collection struct {
	r         io.ReaderAt
	size      int64
	cfg       *openConfig
	header    section.ArchiveHeader
	engine    endian.EndianEngine
	codec     compress.Codec
	index     []section.BlobIndexEntry
	meta      Metadata
	accession string
}

// Open reads the header, blob index and metadata of the archive in r.
// Bytes that are not an archive yield ErrUnsupported; read failures are storage errors.
func Open(r io.ReaderAt, size int64, opts ...OpenOption) (*Collection, error) {
	cfg := defaultOpenConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	c := &Collection{r: r, size: size, cfg: cfg}
	if err := c.load(); err != nil {
		if cfg.closer != nil {
			_ = cfg.closer.Close()
		}

		return nil, err
	}

	c.accession = cfg.accession
	if c.accession == "" {
		c.accession = c.meta.Run
	}

	return c, nil
}

// OpenFile opens the archive at path. Close releases the file.
func OpenFile(path string, opts ...OpenOption) (*Collection, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", errs.ErrNotFound, path)
		}

		return nil, errs.Storage("open collection", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, errs.Storage("open collection", err)
	}

	return Open(f, info.Size(), append(opts, WithCloser(f))...)
}

func (c *Collection) load() error {
	if c.size < section.ArchiveHeaderSize {
		return fmt.Errorf("%w: %d bytes is too small for an archive", errs.ErrUnsupported, c.size)
	}

	buf := make([]byte, section.ArchiveHeaderSize)
	if err := c.readAt(buf, 0, "open collection"); err != nil {
		return err
	}
	if err := c.header.Parse(buf); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrUnsupported, err)
	}

	c.engine = c.header.Engine()

	codec, err := compress.GetCodec(c.header.Flag.CompressionType())
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrUnsupported, err)
	}
	c.codec = codec

	tailSize := int64(c.header.BlobCount)*section.BlobIndexEntrySize + int64(c.header.MetadataSize)
	if c.header.IndexOffset < section.BlobOffsetStart || int64(c.header.IndexOffset)+tailSize > c.size { //nolint: gosec
		return errs.Internal("open collection", "index at %d with %d bytes exceeds archive size %d",
			c.header.IndexOffset, tailSize, c.size)
	}

	tail := make([]byte, tailSize)
	if err := c.readAt(tail, int64(c.header.IndexOffset), "read index"); err != nil { //nolint: gosec
		return err
	}

	indexSize := int(c.header.BlobCount) * section.BlobIndexEntrySize
	c.index, err = section.ParseBlobIndex(tail[:indexSize], int(c.header.BlobCount), c.engine)
	if err != nil {
		return errs.Internal("read index", "%v", err)
	}
	if err := c.checkIndex(); err != nil {
		return err
	}

	if c.header.Flag.HasMetadata() {
		c.meta, err = decodeMetadata(tail[indexSize:])
		if err != nil {
			return errs.Internal("read metadata", "%v", err)
		}
	}
	c.meta.Kind = c.header.Flag.ArchiveKind()
	c.meta.RowCount = c.header.RowCount
	c.meta.BlobCount = c.header.BlobCount

	return nil
}

// checkIndex verifies the blob row ranges are contiguous from row 1 and cover RowCount rows.
func (c *Collection) checkIndex() error {
	next := uint64(1)
	for i, entry := range c.index {
		if entry.FirstRow != next || entry.RowCount == 0 {
			return errs.Internal("read index", "blob %d starts at row %d with %d rows, expected row %d",
				i, entry.FirstRow, entry.RowCount, next)
		}
		if entry.LayoutOffset > entry.BodySize || entry.Offset+uint64(entry.BodySize) > c.header.IndexOffset {
			return errs.Internal("read index", "blob %d body exceeds its bounds", i)
		}
		next = entry.EndRow()
	}

	if next-1 != c.header.RowCount {
		return errs.Internal("read index", "index covers %d rows, header has %d", next-1, c.header.RowCount)
	}

	return nil
}

func (c *Collection) readAt(buf []byte, off int64, op string) error {
	n, err := c.r.ReadAt(buf, off)
	if n == len(buf) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}

	return errs.Storage(op, err)
}

// Accession returns the name the collection was opened as.
func (c *Collection) Accession() string {
	return c.accession
}

// Run returns the run name used in fragment identifiers.
func (c *Collection) Run() string {
	if c.meta.Run != "" {
		return c.meta.Run
	}

	return c.accession
}

// Metadata returns the archive metadata.
func (c *Collection) Metadata() Metadata {
	return c.meta
}

// Kind returns the archive kind.
func (c *Collection) Kind() format.ArchiveKind {
	return c.header.Flag.ArchiveKind()
}

// Compression returns the payload codec of the archive.
func (c *Collection) Compression() format.CompressionType {
	return c.header.Flag.CompressionType()
}

// RowCount returns the number of rows.
func (c *Collection) RowCount() uint64 {
	return c.header.RowCount
}

// BlobCount returns the number of blobs.
func (c *Collection) BlobCount() int {
	return len(c.index)
}

// OpenCursor opens a cursor on column. Only ColumnRead exists.
func (c *Collection) OpenCursor(column string) (*Cursor, error) {
	if column != ColumnRead {
		return nil, fmt.Errorf("%w: %q", errs.ErrColumnNotFound, column)
	}

	return newCursor(c), nil
}

// Close releases the resource attached with WithCloser, if any.
func (c *Collection) Close() error {
	if c.cfg.closer == nil {
		return nil
	}

	closer := c.cfg.closer
	c.cfg.closer = nil

	return closer.Close()
}

// blobIndex returns the index position of the blob covering row.
func (c *Collection) blobIndex(row uint64) (int, error) {
	if row < 1 || row > c.header.RowCount {
		return 0, fmt.Errorf("%w: row %d, archive has %d rows", errs.ErrRowOutOfRange, row, c.header.RowCount)
	}

	i := sort.Search(len(c.index), func(i int) bool {
		return c.index[i].EndRow() > row
	})
	if i == len(c.index) || !c.index[i].Contains(row) {
		return 0, errs.Internal("find blob", "no blob covers row %d", row)
	}

	return i, nil
}
