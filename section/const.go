package section

const (
	// Bit masks of ArchiveFlag.Options
	MetadataMask     = 0x0001 // Mask for metadata payload bit (bit 0)
	EndiannessMask   = 0x0002 // Mask for endianness bit (bit 1)
	ReservedBitsMask = 0x000C // Mask for reserved bits (bits 2-3)
	MagicNumberMask  = 0xFFF0 // Mask for magic number (bits 4-15)

	// MagicArchiveV1Opt is the version 1 magic number of the archive format.
	MagicArchiveV1Opt = 0xFA10
)

// section sizes in bytes
const (
	ArchiveHeaderSize  = 32
	BlobIndexEntrySize = 32
	BlobHeaderSize     = 32
	PageRunSize        = 8
	LayoutHeaderSize   = 16

	// BlobOffsetStart is where the first blob body begins.
	BlobOffsetStart = ArchiveHeaderSize
)
