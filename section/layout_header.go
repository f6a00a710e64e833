package section

import (
	"github.com/arloliu/fragscan/endian"
	"github.com/arloliu/fragscan/errs"
)

// LayoutHeader opens the fragment layout section that follows a blob's bases.
// The compressed layouts fill the rest of the blob body.
type LayoutHeader struct {
	// RowCount is the number of encoded row layouts, equal to the blob's row count.
	RowCount uint32 // 4 bytes, offset 0-3
	// DataSize is the uncompressed size of the layouts.
	DataSize uint32 // 4 bytes, offset 4-7
	// Checksum is the xxHash64 of the uncompressed layouts.
	Checksum uint64 // 8 bytes, offset 8-15
}

// Parse decodes the header from exactly LayoutHeaderSize bytes.
func (h *LayoutHeader) Parse(data []byte, engine endian.EndianEngine) error {
	if len(data) != LayoutHeaderSize {
		return errs.ErrInvalidHeaderSize
	}

	h.RowCount = engine.Uint32(data[0:4])
	h.DataSize = engine.Uint32(data[4:8])
	h.Checksum = engine.Uint64(data[8:16])

	return nil
}

// Bytes serializes the header.
func (h *LayoutHeader) Bytes(engine endian.EndianEngine) []byte {
	b := make([]byte, 0, LayoutHeaderSize)
	b = engine.AppendUint32(b, h.RowCount)
	b = engine.AppendUint32(b, h.DataSize)
	b = engine.AppendUint64(b, h.Checksum)

	return b
}
