package section

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/fragscan/endian"
	"github.com/arloliu/fragscan/errs"
)

func TestBlobIndexEntry(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	entries := []BlobIndexEntry{
		{FirstRow: 1, RowCount: 4, DataSize: 1080, Offset: 32, BodySize: 600, LayoutOffset: 520},
		{FirstRow: 5, RowCount: 4, DataSize: 913, Offset: 632, BodySize: 520, LayoutOffset: 470},
	}

	var buf []byte
	for _, e := range entries {
		buf = append(buf, e.Bytes(engine)...)
	}
	require.Len(t, buf, 2*BlobIndexEntrySize)

	parsed, err := ParseBlobIndex(buf, 2, engine)
	require.NoError(t, err)
	require.Equal(t, entries, parsed)

	require.True(t, parsed[0].Contains(1))
	require.True(t, parsed[0].Contains(4))
	require.False(t, parsed[0].Contains(5))
	require.Equal(t, parsed[1].FirstRow, parsed[0].EndRow())

	_, err = ParseBlobIndex(buf, 3, engine)
	require.ErrorIs(t, err, errs.ErrInvalidEntrySize)

	require.ErrorIs(t, entries[0].WriteToSlice(make([]byte, 8), engine), errs.ErrInvalidEntrySize)
}

func TestBlobHeaderRoundTrip(t *testing.T) {
	for _, engine := range []endian.EndianEngine{endian.GetLittleEndianEngine(), endian.GetBigEndianEngine()} {
		h := BlobHeader{
			FirstRow:    5,
			RowCount:    4,
			RunCount:    3,
			DataSize:    913,
			PayloadSize: 400,
			Checksum:    0xdeadbeefcafebabe,
		}

		b := h.Bytes(engine)
		require.Len(t, b, BlobHeaderSize)

		var parsed BlobHeader
		require.NoError(t, parsed.Parse(b, engine))
		require.Equal(t, h, parsed)
	}

	var h BlobHeader
	require.ErrorIs(t, h.Parse(make([]byte, 10), endian.GetLittleEndianEngine()), errs.ErrInvalidHeaderSize)
}

func TestPageRuns(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	runs := []PageRun{{RowLen: 100, Repeat: 1}, {RowLen: 50, Repeat: 9}, {RowLen: 30, Repeat: 1}}

	b := AppendPageRuns(nil, runs, engine)
	require.Len(t, b, 3*PageRunSize)

	parsed, err := ParsePageRuns(b, 3, engine)
	require.NoError(t, err)
	require.Equal(t, runs, parsed)

	_, err = ParsePageRuns(b, 4, engine)
	require.ErrorIs(t, err, errs.ErrInvalidEntrySize)

	zero := AppendPageRuns(nil, []PageRun{{RowLen: 10, Repeat: 0}}, engine)
	_, err = ParsePageRuns(zero, 1, engine)
	require.ErrorIs(t, err, errs.ErrInvalidLayout)
}

func TestLayoutHeaderRoundTrip(t *testing.T) {
	engine := endian.GetBigEndianEngine()
	h := LayoutHeader{RowCount: 4, DataSize: 28, Checksum: 42}

	b := h.Bytes(engine)
	require.Len(t, b, LayoutHeaderSize)

	var parsed LayoutHeader
	require.NoError(t, parsed.Parse(b, engine))
	require.Equal(t, h, parsed)

	require.ErrorIs(t, parsed.Parse(b[:8], engine), errs.ErrInvalidHeaderSize)
}
