package section

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/fragscan/endian"
	"github.com/arloliu/fragscan/errs"
	"github.com/arloliu/fragscan/format"
)

func TestNewArchiveHeader(t *testing.T) {
	h := NewArchiveHeader(format.CompressionZstd, format.KindReads)

	require.True(t, h.Flag.IsValid())
	require.False(t, h.Flag.IsBigEndian())
	require.False(t, h.Flag.HasMetadata())
	require.Equal(t, format.CompressionZstd, h.Flag.CompressionType())
	require.Equal(t, format.KindReads, h.Flag.ArchiveKind())
	require.Equal(t, endian.GetLittleEndianEngine(), h.Engine())
}

func TestArchiveHeaderRoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		bigEndian bool
	}{
		{name: "little endian"},
		{name: "big endian", bigEndian: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewArchiveHeader(format.CompressionS2, format.KindReference)
			if tt.bigEndian {
				h.Flag.WithBigEndian()
			}
			h.Flag.SetHasMetadata(true)
			h.RowCount = 150
			h.BlobCount = 38
			h.IndexOffset = 123456
			h.MetadataSize = 77

			b := h.Bytes()
			require.Len(t, b, ArchiveHeaderSize)

			var parsed ArchiveHeader
			require.NoError(t, parsed.Parse(b))
			require.Equal(t, *h, parsed)
			require.Equal(t, tt.bigEndian, parsed.Flag.IsBigEndian())
			require.Equal(t, uint64(123456+38*BlobIndexEntrySize), parsed.MetadataOffset())
		})
	}
}

func TestArchiveHeaderParseErrors(t *testing.T) {
	var h ArchiveHeader
	require.ErrorIs(t, h.Parse(make([]byte, 31)), errs.ErrInvalidHeaderSize)
	require.ErrorIs(t, h.Parse(make([]byte, ArchiveHeaderSize)), errs.ErrInvalidMagicNumber)

	valid := NewArchiveHeader(format.CompressionNone, format.KindReads).Bytes()

	badCodec := append([]byte(nil), valid...)
	badCodec[2] = 0x7f
	require.ErrorIs(t, h.Parse(badCodec), errs.ErrInvalidHeaderFlags)

	badKind := append([]byte(nil), valid...)
	badKind[3] = 0
	require.ErrorIs(t, h.Parse(badKind), errs.ErrInvalidHeaderFlags)

	reserved := append([]byte(nil), valid...)
	reserved[0] |= 0x04
	require.ErrorIs(t, h.Parse(reserved), errs.ErrInvalidHeaderFlags)
}

func TestArchiveFlagBits(t *testing.T) {
	f := NewArchiveFlag(format.CompressionLZ4, format.KindReads)

	f.SetHasMetadata(true)
	require.True(t, f.HasMetadata())
	f.SetHasMetadata(false)
	require.False(t, f.HasMetadata())

	f.WithBigEndian()
	require.True(t, f.IsBigEndian())
	f.WithLittleEndian()
	require.False(t, f.IsBigEndian())

	require.Equal(t, uint16(MagicArchiveV1Opt), f.GetMagicNumber())
}
