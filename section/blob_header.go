package section

import (
	"github.com/arloliu/fragscan/endian"
	"github.com/arloliu/fragscan/errs"
)

// BlobHeader opens a blob body.
type BlobHeader struct {
	// FirstRow is the first row covered by the blob.
	FirstRow uint64 // 8 bytes, offset 0-7
	// RowCount is the number of rows covered by the blob.
	RowCount uint32 // 4 bytes, offset 8-11
	// RunCount is the number of PageRun entries following the header.
	RunCount uint32 // 4 bytes, offset 12-15
	// DataSize is the uncompressed size of the bases payload.
	DataSize uint32 // 4 bytes, offset 16-19
	// PayloadSize is the compressed size of the bases payload.
	PayloadSize uint32 // 4 bytes, offset 20-23
	// Checksum is the xxHash64 of the uncompressed bases.
	Checksum uint64 // 8 bytes, offset 24-31
}

// Parse decodes the header from exactly BlobHeaderSize bytes.
func (h *BlobHeader) Parse(data []byte, engine endian.EndianEngine) error {
	if len(data) != BlobHeaderSize {
		return errs.ErrInvalidHeaderSize
	}

	h.FirstRow = engine.Uint64(data[0:8])
	h.RowCount = engine.Uint32(data[8:12])
	h.RunCount = engine.Uint32(data[12:16])
	h.DataSize = engine.Uint32(data[16:20])
	h.PayloadSize = engine.Uint32(data[20:24])
	h.Checksum = engine.Uint64(data[24:32])

	return nil
}

// Bytes serializes the header.
func (h *BlobHeader) Bytes(engine endian.EndianEngine) []byte {
	b := make([]byte, 0, BlobHeaderSize)
	b = engine.AppendUint64(b, h.FirstRow)
	b = engine.AppendUint32(b, h.RowCount)
	b = engine.AppendUint32(b, h.RunCount)
	b = engine.AppendUint32(b, h.DataSize)
	b = engine.AppendUint32(b, h.PayloadSize)
	b = engine.AppendUint64(b, h.Checksum)

	return b
}

// PageRun is one entry of a blob's page map: Repeat consecutive rows of RowLen bases
// each. When Repeat is greater than one the rows are identical and their bases are stored
// once.
type PageRun struct {
	RowLen uint32 // 4 bytes, offset 0-3
	Repeat uint32 // 4 bytes, offset 4-7
}

// AppendPageRuns serializes runs onto b.
func AppendPageRuns(b []byte, runs []PageRun, engine endian.EndianEngine) []byte {
	for _, run := range runs {
		b = engine.AppendUint32(b, run.RowLen)
		b = engine.AppendUint32(b, run.Repeat)
	}

	return b
}

// ParsePageRuns decodes count runs. A run with zero repeat is rejected.
func ParsePageRuns(data []byte, count int, engine endian.EndianEngine) ([]PageRun, error) {
	if len(data) < count*PageRunSize {
		return nil, errs.ErrInvalidEntrySize
	}

	runs := make([]PageRun, count)
	for i := range runs {
		off := i * PageRunSize
		runs[i] = PageRun{
			RowLen: engine.Uint32(data[off : off+4]),
			Repeat: engine.Uint32(data[off+4 : off+8]),
		}
		if runs[i].Repeat == 0 {
			return nil, errs.ErrInvalidLayout
		}
	}

	return runs, nil
}
