package section

import (
	"github.com/arloliu/fragscan/endian"
	"github.com/arloliu/fragscan/errs"
)

// BlobIndexEntry locates one blob body. Entries are sorted by FirstRow and their row
// ranges are contiguous, so a row lookup is a binary search over the index.
type BlobIndexEntry struct {
	// FirstRow is the first row covered by the blob.
	FirstRow uint64 // 8 bytes, offset 0-7
	// RowCount is the number of rows covered by the blob.
	RowCount uint32 // 4 bytes, offset 8-11
	// DataSize is the uncompressed size of the blob's bases.
	DataSize uint32 // 4 bytes, offset 12-15
	// Offset is the absolute file offset of the blob body.
	Offset uint64 // 8 bytes, offset 16-23
	// BodySize is the size of the blob body including the layout section.
	BodySize uint32 // 4 bytes, offset 24-27
	// LayoutOffset is the offset of the LayoutHeader relative to the body start.
	LayoutOffset uint32 // 4 bytes, offset 28-31
}

// EndRow returns the first row after the blob.
func (e BlobIndexEntry) EndRow() uint64 {
	return e.FirstRow + uint64(e.RowCount)
}

// Contains reports whether row falls in the blob's row range.
func (e BlobIndexEntry) Contains(row uint64) bool {
	return row >= e.FirstRow && row < e.EndRow()
}

// WriteToSlice writes the entry into b, which must hold at least BlobIndexEntrySize bytes.
func (e BlobIndexEntry) WriteToSlice(b []byte, engine endian.EndianEngine) error {
	if len(b) < BlobIndexEntrySize {
		return errs.ErrInvalidEntrySize
	}

	engine.PutUint64(b[0:8], e.FirstRow)
	engine.PutUint32(b[8:12], e.RowCount)
	engine.PutUint32(b[12:16], e.DataSize)
	engine.PutUint64(b[16:24], e.Offset)
	engine.PutUint32(b[24:28], e.BodySize)
	engine.PutUint32(b[28:32], e.LayoutOffset)

	return nil
}

// Bytes serializes the entry.
func (e BlobIndexEntry) Bytes(engine endian.EndianEngine) []byte {
	b := make([]byte, BlobIndexEntrySize)
	_ = e.WriteToSlice(b, engine)

	return b
}

// ParseBlobIndexEntry decodes one entry.
func ParseBlobIndexEntry(data []byte, engine endian.EndianEngine) (BlobIndexEntry, error) {
	if len(data) < BlobIndexEntrySize {
		return BlobIndexEntry{}, errs.ErrInvalidEntrySize
	}

	return BlobIndexEntry{
		FirstRow:     engine.Uint64(data[0:8]),
		RowCount:     engine.Uint32(data[8:12]),
		DataSize:     engine.Uint32(data[12:16]),
		Offset:       engine.Uint64(data[16:24]),
		BodySize:     engine.Uint32(data[24:28]),
		LayoutOffset: engine.Uint32(data[28:32]),
	}, nil
}

// ParseBlobIndex decodes count consecutive entries.
func ParseBlobIndex(data []byte, count int, engine endian.EndianEngine) ([]BlobIndexEntry, error) {
	if len(data) < count*BlobIndexEntrySize {
		return nil, errs.ErrInvalidEntrySize
	}

	entries := make([]BlobIndexEntry, count)
	for i := range entries {
		entry, err := ParseBlobIndexEntry(data[i*BlobIndexEntrySize:], engine)
		if err != nil {
			return nil, err
		}
		entries[i] = entry
	}

	return entries, nil
}
