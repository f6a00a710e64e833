package fragscan

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/fragscan/errs"
	"github.com/arloliu/fragscan/format"
	"github.com/arloliu/fragscan/fragment"
	"github.com/arloliu/fragscan/internal/testutil"
	"github.com/arloliu/fragscan/search"
)

func TestOpenAndIterate(t *testing.T) {
	path := testutil.WriteRun(t, t.TempDir(), format.CompressionZstd)

	coll, err := Open(path)
	require.NoError(t, err)
	defer coll.Close()

	it, err := NewMatchIterator(coll, "AC", search.WithAlgorithm(format.AlgorithmNaiveScan))
	require.NoError(t, err)
	defer it.Close()

	buf, ok, err := it.NextBuffer()
	require.NoError(t, err)
	require.True(t, ok)
	defer buf.Close()

	m, ok, err := buf.NextMatch()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "SRR000001.FR0.1", m.FragmentID)
}

func TestSearch(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteRun(t, dir, format.CompressionLZ4)
	testutil.WriteReference(t, dir)

	matches, report, err := Search(context.Background(), []string{dir}, "ATTAGC",
		testutil.Accession, "SRR999999", testutil.ReferenceAccession)
	require.NoError(t, err)
	require.Len(t, matches, 12)
	require.Equal(t, "SRR000001.FR0.23", matches[0].FragmentID)
	require.Equal(t, "NC_FIXTURE.FR0.10", matches[11].FragmentID)

	require.Len(t, report.Failed(), 1)
	require.ErrorIs(t, report.Err(), errs.ErrNotFound)

	_, _, err = Search(context.Background(), []string{dir}, "", testutil.Accession)
	require.ErrorIs(t, err, errs.ErrInvalidQuery)
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.fsar"))
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestFragmentID(t *testing.T) {
	id, err := FragmentID("SRR000001", 1, 0)
	require.NoError(t, err)
	require.Equal(t, "SRR000001.FR0.1", id)

	parsed, err := ParseFragmentID(id)
	require.NoError(t, err)
	require.Equal(t, fragment.ID{Run: "SRR000001", Kind: fragment.KindReadFragment, RowID: 1, FragNum: 0}, parsed)

	_, err = FragmentID("SRR000001", 0, 0)
	require.ErrorIs(t, err, errs.ErrInvalidFragmentID)
}
