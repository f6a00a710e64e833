package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/fragscan/errs"
	"github.com/arloliu/fragscan/format"
	"github.com/arloliu/fragscan/internal/testutil"
	"github.com/arloliu/fragscan/output"
	"github.com/arloliu/fragscan/repository"
	"github.com/arloliu/fragscan/search"
)

func fixtureRepo(t *testing.T) *repository.Local {
	t.Helper()

	dir := t.TempDir()
	testutil.WriteRun(t, dir, format.CompressionZstd)
	testutil.WriteReference(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "BROKEN.fsar"), []byte("this file is not a fragscan archive"), 0o600))

	return repository.NewLocal(dir)
}

var (
	runIDs = []string{"SRR000001.FR0.23", "SRR000001.FR0.36", "SRR000001.FR0.141"}
	refIDs = []string{
		"NC_FIXTURE.FR0.2", "NC_FIXTURE.FR0.3", "NC_FIXTURE.FR0.4", "NC_FIXTURE.FR0.5", "NC_FIXTURE.FR0.6",
		"NC_FIXTURE.FR0.7", "NC_FIXTURE.FR0.8", "NC_FIXTURE.FR0.9", "NC_FIXTURE.FR0.10",
	}
)

func TestRunOrdered(t *testing.T) {
	modes := []search.Mode{search.ModeBlob, search.ModeFragment}
	algorithms := []format.Algorithm{format.AlgorithmNaiveScan, format.AlgorithmSkipSearch}

	for _, mode := range modes {
		for _, algorithm := range algorithms {
			t.Run(fmt.Sprintf("%s/%s", mode, algorithm), func(t *testing.T) {
				d, err := New(fixtureRepo(t), WithThreads(1), WithWorkers(4))
				require.NoError(t, err)

				var sink output.Collector
				report, err := d.Run(context.Background(), Request{
					Query:      "ATTAGC",
					Accessions: []string{testutil.Accession, testutil.ReferenceAccession},
					Algorithm:  algorithm,
					Mode:       mode,
					Ordered:    true,
				}, &sink)
				require.NoError(t, err)
				require.NoError(t, report.Err())

				require.Equal(t, append(append([]string(nil), runIDs...), refIDs...), sink.IDs())
				require.Equal(t, uint64(12), report.Matches())
				require.Equal(t, uint64(3), report.Results[0].Matches)
				require.Equal(t, uint64(9), report.Results[1].Matches)
			})
		}
	}
}

func TestRunBlobBufferCount(t *testing.T) {
	d, err := New(fixtureRepo(t))
	require.NoError(t, err)

	report, err := d.Run(context.Background(), Request{Query: "AC", Accessions: []string{testutil.Accession}}, &output.Collector{})
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	require.Equal(t, uint64(38), report.Results[0].Buffers)
	require.Equal(t, uint64(1), report.Results[0].Matches)
}

func TestRunUnordered(t *testing.T) {
	d, err := New(fixtureRepo(t), WithThreads(3), WithWorkers(8))
	require.NoError(t, err)

	var sink output.Collector
	report, err := d.Run(context.Background(), Request{
		Query:      "ATTAGC",
		Accessions: []string{testutil.ReferenceAccession, testutil.Accession},
	}, &sink)
	require.NoError(t, err)
	require.Empty(t, report.Failed())

	require.ElementsMatch(t, append(append([]string(nil), runIDs...), refIDs...), sink.IDs())
}

func TestRunIsolatesFailures(t *testing.T) {
	d, err := New(fixtureRepo(t), WithThreads(2))
	require.NoError(t, err)

	var sink output.Collector
	report, err := d.Run(context.Background(), Request{
		Query:      "ATTAGC",
		Accessions: []string{"BROKEN", testutil.Accession, "SRR999999", testutil.Accession},
		Ordered:    true,
	}, &sink)
	require.NoError(t, err)

	require.Len(t, report.Results, 3, "duplicate accessions are searched once")
	require.Equal(t, "BROKEN", report.Results[0].Accession)
	require.ErrorIs(t, report.Results[0].Err, errs.ErrUnsupported)
	require.NoError(t, report.Results[1].Err)
	require.ErrorIs(t, report.Results[2].Err, errs.ErrNotFound)
	require.Equal(t, errs.KindNotFound, report.Results[2].Kind())

	require.Len(t, report.Failed(), 2)
	require.ErrorIs(t, report.Err(), errs.ErrNotFound)
	require.ErrorContains(t, report.Err(), "SRR999999")
	require.Equal(t, runIDs, sink.IDs())
}

func TestRunUnalignedOnly(t *testing.T) {
	d, err := New(fixtureRepo(t))
	require.NoError(t, err)

	var sink output.Collector
	_, err = d.Run(context.Background(), Request{
		Query:         "ATTAGC",
		Accessions:    []string{testutil.Accession},
		UnalignedOnly: true,
		Ordered:       true,
	}, &sink)
	require.NoError(t, err)
	require.Equal(t, []string{"SRR000001.FR0.23", "SRR000001.FR0.141"}, sink.IDs())
}

type failingSink struct{ err error }

func (s failingSink) Write(search.Match) error { return s.err }

func TestRunSinkFailureAborts(t *testing.T) {
	d, err := New(fixtureRepo(t), WithThreads(2))
	require.NoError(t, err)

	boom := errors.New("disk full")
	report, err := d.Run(context.Background(), Request{
		Query:      "C",
		Accessions: []string{testutil.Accession, testutil.ReferenceAccession},
	}, failingSink{err: boom})
	require.ErrorIs(t, err, boom)
	require.NotNil(t, report)
}

func TestRunRequestErrors(t *testing.T) {
	d, err := New(fixtureRepo(t))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = d.Run(ctx, Request{Query: "", Accessions: []string{testutil.Accession}}, &output.Collector{})
	require.ErrorIs(t, err, errs.ErrInvalidQuery)

	_, err = d.Run(ctx, Request{Query: "AC", Algorithm: format.Algorithm(9), Accessions: []string{testutil.Accession}}, &output.Collector{})
	require.ErrorIs(t, err, errs.ErrInvalidAlgorithm)

	_, err = d.Run(ctx, Request{Query: "AC", Accessions: []string{""}}, &output.Collector{})
	require.ErrorIs(t, err, errs.ErrInvalidAccession)

	_, err = d.Run(ctx, Request{Query: "AC", Accessions: []string{testutil.Accession}}, nil)
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
}

func TestRunCancelled(t *testing.T) {
	d, err := New(fixtureRepo(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := d.Run(ctx, Request{Query: "AC", Accessions: []string{testutil.Accession}}, &output.Collector{})
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, report.Results[0].Err, context.Canceled)
}

func TestNewValidation(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, errs.ErrInvalidConfig)

	_, err = New(repository.NewLocal(), WithThreads(0))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)

	_, err = New(repository.NewLocal(), WithWorkers(-1))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
}

func TestReorder(t *testing.T) {
	var got []string
	r := newReorder(func(m search.Match) error {
		got = append(got, m.FragmentID)
		return nil
	})

	require.NoError(t, r.complete(2, []search.Match{{FragmentID: "c"}}))
	require.NoError(t, r.complete(1, nil))
	require.Empty(t, got)

	require.NoError(t, r.complete(0, []search.Match{{FragmentID: "a"}, {FragmentID: "b"}}))
	require.Equal(t, []string{"a", "b", "c"}, got)

	require.NoError(t, r.complete(3, []search.Match{{FragmentID: "d"}}))
	require.Equal(t, []string{"a", "b", "c", "d"}, got)
}
