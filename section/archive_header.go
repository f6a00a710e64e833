package section

import (
	"github.com/arloliu/fragscan/endian"
	"github.com/arloliu/fragscan/errs"
	"github.com/arloliu/fragscan/format"
)

// ArchiveHeader is the fixed 32-byte header at offset 0 of an archive.
type ArchiveHeader struct {
	// Flag holds the magic number, byte order, codec and kind. Always little-endian.
	Flag ArchiveFlag // 4 bytes, offset 0-3

	// RowCount is the total number of rows. Rows are numbered 1..RowCount.
	RowCount uint64 // 8 bytes, offset 4-11
	// BlobCount is the number of blob bodies and blob index entries.
	BlobCount uint32 // 4 bytes, offset 12-15
	// IndexOffset is the absolute offset of the blob index.
	IndexOffset uint64 // 8 bytes, offset 16-23
	// MetadataSize is the size of the CBOR metadata block following the index.
	MetadataSize uint32 // 4 bytes, offset 24-27

	Reserved [4]byte // offset 28-31, must be zero
}

// NewArchiveHeader creates a header for a little-endian archive.
func NewArchiveHeader(compression format.CompressionType, kind format.ArchiveKind) *ArchiveHeader {
	return &ArchiveHeader{Flag: NewArchiveFlag(compression, kind)}
}

// Engine returns the byte order engine selected by the flag.
func (h *ArchiveHeader) Engine() endian.EndianEngine {
	return endian.FromFlag(h.Flag.IsBigEndian())
}

// MetadataOffset returns the absolute offset of the metadata block.
func (h *ArchiveHeader) MetadataOffset() uint64 {
	return h.IndexOffset + uint64(h.BlobCount)*BlobIndexEntrySize
}

// Parse decodes the header from exactly ArchiveHeaderSize bytes.
func (h *ArchiveHeader) Parse(data []byte) error {
	if len(data) != ArchiveHeaderSize {
		return errs.ErrInvalidHeaderSize
	}

	h.Flag.Options = uint16(data[0]) | uint16(data[1])<<8
	h.Flag.Compression = data[2]
	h.Flag.Kind = data[3]

	if h.Flag.GetMagicNumber() != MagicArchiveV1Opt {
		return errs.ErrInvalidMagicNumber
	}
	if !h.Flag.IsValid() {
		return errs.ErrInvalidHeaderFlags
	}

	engine := h.Engine()
	h.RowCount = engine.Uint64(data[4:12])
	h.BlobCount = engine.Uint32(data[12:16])
	h.IndexOffset = engine.Uint64(data[16:24])
	h.MetadataSize = engine.Uint32(data[24:28])
	copy(h.Reserved[:], data[28:32])

	return nil
}

// Bytes serializes the header.
func (h *ArchiveHeader) Bytes() []byte {
	b := make([]byte, ArchiveHeaderSize)

	b[0] = byte(h.Flag.Options)
	b[1] = byte(h.Flag.Options >> 8)
	b[2] = h.Flag.Compression
	b[3] = h.Flag.Kind

	engine := h.Engine()
	engine.PutUint64(b[4:12], h.RowCount)
	engine.PutUint32(b[12:16], h.BlobCount)
	engine.PutUint64(b[16:24], h.IndexOffset)
	engine.PutUint32(b[24:28], h.MetadataSize)
	copy(b[28:32], h.Reserved[:])

	return b
}
