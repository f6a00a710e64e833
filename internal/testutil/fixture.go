// Package testutil builds deterministic archives for tests.
//
// The run fixture (accession SRR000001) has 150 rows written four rows per blob. Every
// row is laid out as [biological, technical 40 bases, biological]. Bases are drawn from
// {C, G, T} only, so an 'A' appears only where planted:
//
//   - "AC" at offset 10 of fragment 0 of row 1
//   - "ATTAGC" at offset 5 of fragment 0 of rows 23, 36 and 141
//   - "ATT" ending fragment 0 of row 50 followed by "AGC" opening its technical fragment
//
// Rows divisible by 12 are fully aligned; rows equal to 6 modulo 12 have their second
// biological fragment aligned.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/fragscan/archive"
	"github.com/arloliu/fragscan/format"
	"github.com/arloliu/fragscan/fragment"
)

const (
	// Accession is the accession and run name of the run fixture.
	Accession = "SRR000001"
	// RunRows is the number of rows in the run fixture.
	RunRows = 150
	// RowsPerBlob is the blob size of the run fixture.
	RowsPerBlob = 4
	// TechnicalLen is the length of the technical fragment of every row.
	TechnicalLen = 40
	// Extension is the file extension used for fixture archives.
	Extension = ".fsar"

	// ReferenceAccession names the reference fixture.
	ReferenceAccession = "NC_FIXTURE"
)

// QueryRows are the rows holding a planted "ATTAGC".
var QueryRows = []uint64{23, 36, 141}

// BoundaryRow holds an "ATTAGC" split across its first two fragments.
const BoundaryRow = 50

var headRowLens = []int{288, 270, 262, 260, 230, 228, 227, 228}

// RowLen returns the length in bases of row.
func RowLen(row int) int {
	if row >= 1 && row <= len(headRowLens) {
		return headRowLens[row-1]
	}

	return 200 + (row*37)%100
}

// Fragments returns the layout of row.
func Fragments(row int) []fragment.Fragment {
	total := RowLen(row)
	first := (total - TechnicalLen) / 2
	second := total - TechnicalLen - first

	frags := []fragment.Fragment{
		{Len: uint32(first)},
		{Len: TechnicalLen, Technical: true},
		{Len: uint32(second)},
	}

	switch row % 12 {
	case 0:
		frags[0].Aligned = true
		frags[2].Aligned = true
	case 6:
		frags[2].Aligned = true
	}

	return frags
}

type lcg struct{ state uint32 }

func (g *lcg) base() byte {
	g.state = g.state*1664525 + 1013904223
	return "CGT"[(g.state>>24)%3]
}

// Rows returns the rows of the run fixture.
func Rows() []archive.Row {
	gen := &lcg{state: 20240601}
	rows := make([]archive.Row, RunRows)

	for i := range rows {
		row := i + 1
		bases := make([]byte, RowLen(row))
		for j := range bases {
			bases[j] = gen.base()
		}

		frags := Fragments(row)
		switch {
		case row == 1:
			copy(bases[10:], "AC")
		case row == 23, row == 36, row == 141:
			copy(bases[5:], "ATTAGC")
		case row == BoundaryRow:
			end := int(frags[0].Len)
			copy(bases[end-3:], "ATTAGC")
		}

		rows[i] = archive.Row{Bases: bases, Fragments: frags}
	}

	return rows
}

// ReferenceRows returns a reference fixture whose single blob has the page map
// [(100, 1), (50, 9), (30, 1)].
func ReferenceRows() []archive.Row {
	gen := &lcg{state: 7}
	fill := func(n int) []byte {
		b := make([]byte, n)
		for i := range b {
			b[i] = gen.base()
		}

		return b
	}

	repeat := fill(50)
	copy(repeat, "ATTAGC")

	rows := []archive.Row{{Bases: fill(100)}}
	for range 9 {
		rows = append(rows, archive.Row{Bases: append([]byte(nil), repeat...)})
	}
	rows = append(rows, archive.Row{Bases: fill(30)})

	return rows
}

// WriteArchive writes rows to path.
func WriteArchive(tb testing.TB, path string, rows []archive.Row, opts ...archive.WriterOption) {
	tb.Helper()

	f, err := os.Create(path)
	require.NoError(tb, err)
	defer f.Close()

	w, err := archive.NewWriter(f, opts...)
	require.NoError(tb, err)
	for _, row := range rows {
		require.NoError(tb, w.Add(row))
	}
	require.NoError(tb, w.Finish())
}

// WriteRun writes the run fixture into dir and returns its path.
func WriteRun(tb testing.TB, dir string, compression format.CompressionType) string {
	tb.Helper()

	path := filepath.Join(dir, Accession+Extension)
	WriteArchive(tb, path, Rows(),
		archive.WithRunName(Accession),
		archive.WithPlatform("ILLUMINA"),
		archive.WithCompression(compression),
		archive.WithRowsPerBlob(RowsPerBlob),
	)

	return path
}

// WriteReference writes the reference fixture into dir and returns its path.
func WriteReference(tb testing.TB, dir string) string {
	tb.Helper()

	path := filepath.Join(dir, ReferenceAccession+Extension)
	WriteArchive(tb, path, ReferenceRows(),
		archive.WithRunName(ReferenceAccession),
		archive.WithKind(format.KindReference),
		archive.WithRowsPerBlob(64),
	)

	return path
}

// OpenRun writes the run fixture to a temporary directory and opens it.
func OpenRun(tb testing.TB) *archive.Collection {
	tb.Helper()

	coll, err := archive.OpenFile(WriteRun(tb, tb.TempDir(), format.CompressionZstd))
	require.NoError(tb, err)
	tb.Cleanup(func() { _ = coll.Close() })

	return coll
}

// OpenReference writes the reference fixture to a temporary directory and opens it.
func OpenReference(tb testing.TB) *archive.Collection {
	tb.Helper()

	coll, err := archive.OpenFile(WriteReference(tb, tb.TempDir()))
	require.NoError(tb, err)
	tb.Cleanup(func() { _ = coll.Close() })

	return coll
}
