package section

import (
	"github.com/arloliu/fragscan/format"
)

// ArchiveFlag is the packed flag field at the start of the archive header.
type ArchiveFlag struct {
	// Options is a packed field.
	// Bit 0 is the metadata flag, 1 means a CBOR metadata block follows the blob index.
	// Bit 1 is the endianness flag, 0 means little-endian, 1 means big-endian.
	// Bits 2-3 are reserved and must be zero.
	// Bits 4-15 are the magic number, 0xFA10 for archive format v1.
	Options uint16

	// Compression is the codec of every blob and layout payload.
	Compression uint8

	// Kind is the archive kind, reads or reference.
	Kind uint8
}

// NewArchiveFlag creates a little-endian v1 flag.
func NewArchiveFlag(compression format.CompressionType, kind format.ArchiveKind) ArchiveFlag {
	return ArchiveFlag{
		Options:     MagicArchiveV1Opt,
		Compression: uint8(compression),
		Kind:        uint8(kind),
	}
}

// HasMetadata reports whether the archive carries a metadata block.
func (f ArchiveFlag) HasMetadata() bool {
	return f.Options&MetadataMask != 0
}

// SetHasMetadata sets or clears the metadata bit.
func (f *ArchiveFlag) SetHasMetadata(enabled bool) {
	if enabled {
		f.Options |= MetadataMask
	} else {
		f.Options &^= MetadataMask
	}
}

// IsBigEndian reports whether sections are big-endian.
func (f ArchiveFlag) IsBigEndian() bool {
	return f.Options&EndiannessMask != 0
}

// WithBigEndian switches the archive to big-endian sections.
func (f *ArchiveFlag) WithBigEndian() {
	f.Options |= EndiannessMask
}

// WithLittleEndian switches the archive to little-endian sections.
func (f *ArchiveFlag) WithLittleEndian() {
	f.Options &^= EndiannessMask
}

// GetMagicNumber returns the magic number bits.
func (f ArchiveFlag) GetMagicNumber() uint16 {
	return f.Options & MagicNumberMask
}

// CompressionType returns the payload codec.
func (f ArchiveFlag) CompressionType() format.CompressionType {
	return format.CompressionType(f.Compression)
}

// ArchiveKind returns the archive kind.
func (f ArchiveFlag) ArchiveKind() format.ArchiveKind {
	return format.ArchiveKind(f.Kind)
}

// IsValid checks the magic number, the reserved bits and both enumerations.
func (f ArchiveFlag) IsValid() bool {
	if f.GetMagicNumber() != MagicArchiveV1Opt || f.Options&ReservedBitsMask != 0 {
		return false
	}

	switch f.CompressionType() {
	case format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4:
	default:
		return false
	}

	switch f.ArchiveKind() {
	case format.KindReads, format.KindReference:
		return true
	default:
		return false
	}
}
