// Package fragscan finds the sequencing fragments that contain a nucleotide query.
//
// Archives store reads (or reference chunks) as rows of bases grouped into compressed
// blobs. Every row is split into fragments, biological or technical, and a match is
// always reported against one biological fragment, identified as
// "<run>.FR<n>.<row>" (for example "SRR000001.FR0.1").
//
// # Core Features
//
//   - Two scan algorithms with identical results: a naive scan and a bad-character
//     skip search (the default)
//   - Blob mode: whole blobs are scanned and hits are resolved to fragments through
//     the blob page map; fragment mode: fragments are scanned one by one
//   - Unaligned-only searches over unaligned and partially aligned reads
//   - Repeated reference rows stored once and reported once per row
//   - Concurrent scanning of the buffers of one accession and parallel accessions
//   - Archives on local disk or in S3, compressed with Zstd, S2 or LZ4
//
// # Basic Usage
//
// Searching one archive:
//
//	coll, _ := fragscan.Open("SRR000001.fsar")
//	defer coll.Close()
//
//	it, _ := fragscan.NewMatchIterator(coll, "ATTAGC")
//	defer it.Close()
//	for {
//	    buf, ok, err := it.NextBuffer()
//	    if err != nil || !ok {
//	        break
//	    }
//	    for {
//	        m, ok, err := buf.NextMatch()
//	        if err != nil || !ok {
//	            break
//	        }
//	        fmt.Println(m.FragmentID)
//	    }
//	    buf.Close()
//	}
//
// Searching many accessions in parallel:
//
//	matches, report, err := fragscan.Search(ctx, []string{"/data/runs"}, "ATTAGC",
//	    "SRR000001", "SRR000002")
//
// # Package Structure
//
// This package provides convenience wrappers around the search, driver and
// repository packages. For buffers, custom sinks, remote repositories and archive
// writing, use those packages and the archive package directly.
package fragscan

import (
	"context"

	"github.com/arloliu/fragscan/archive"
	"github.com/arloliu/fragscan/driver"
	"github.com/arloliu/fragscan/fragment"
	"github.com/arloliu/fragscan/output"
	"github.com/arloliu/fragscan/repository"
	"github.com/arloliu/fragscan/search"
)

// Open opens the archive at path.
//
// The accession defaults to the run name recorded in the archive; pass
// archive.WithAccession to override it.
func Open(path string, opts ...archive.OpenOption) (*archive.Collection, error) {
	return archive.OpenFile(path, opts...)
}

// NewMatchIterator creates a match iterator over coll.
//
// Parameters:
//   - coll: An open collection; the caller keeps ownership
//   - query: The bases to search for, matched byte for byte
//   - opts: Optional settings (see search.Option)
//
// Returns:
//   - search.MatchIterator: The iterator, in blob mode unless configured otherwise
//   - error: ErrInvalidQuery, ErrInvalidAlgorithm or a cursor error
//
// Available options:
//   - search.WithAlgorithm(format.AlgorithmNaiveScan|AlgorithmSkipSearch)
//   - search.WithMode(search.ModeBlob|ModeFragment)
//   - search.WithUnalignedOnly(true)
//   - search.WithLogger(logger)
func NewMatchIterator(coll *archive.Collection, query string, opts ...search.Option) (search.MatchIterator, error) {
	return search.NewMatchIterator(coll, query, opts...)
}

// Search looks for query in every accession found under roots and returns the
// matches, accession by accession in archive order.
//
// Accessions that cannot be opened or scanned are reported in the Report and do not
// fail the call. The error is non-nil only for invalid input or a cancelled context.
//
// Example:
//
//	matches, report, err := fragscan.Search(ctx, []string{"."}, "ATTAGC", "SRR000001")
//	if err != nil {
//	    return err
//	}
//	if err := report.Err(); err != nil {
//	    log.Printf("partial results: %v", err)
//	}
func Search(ctx context.Context, roots []string, query string, accessions ...string) ([]search.Match, *driver.Report, error) {
	d, err := driver.New(repository.NewLocal(roots...))
	if err != nil {
		return nil, nil, err
	}

	var sink output.Collector
	report, err := d.Run(ctx, driver.Request{Query: query, Accessions: accessions, Ordered: true}, &sink)
	if err != nil {
		return nil, report, err
	}

	return sink.Matches(), report, nil
}

// FragmentID builds the identifier of a fragment, such as "SRR000001.FR0.1".
func FragmentID(run string, rowID int64, fragNum int) (string, error) {
	return fragment.Build(run, fragment.KindReadFragment, rowID, fragNum)
}

// ParseFragmentID parses any object identifier built by the fragment package.
func ParseFragmentID(s string) (fragment.ID, error) {
	return fragment.Parse(s)
}
