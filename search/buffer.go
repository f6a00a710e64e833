package search

import (
	"log/slog"
	"sync"

	"github.com/arloliu/fragscan/archive"
	"github.com/arloliu/fragscan/errs"
)

// Buffer scans one unit, a blob or a fragment, and reports each matching fragment at
// most once. A Buffer is used by one goroutine at a time.
type Buffer interface {
	// NextMatch returns the next match. It reports false once the unit is exhausted.
	NextMatch() (Match, bool, error)
	// ID identifies the unit: "first-last" rows of a blob, or a fragment identifier.
	ID() string
	// Seq is the position of the unit in its iterator's sequence, starting at 0.
	Seq() uint64
	// Close releases the unit. It is safe to call more than once.
	Close()
}

// BlobBuffer scans the bases of one blob.
type BlobBuffer struct {
	accession string
	seq       uint64
	id        string
	blob      *archive.Blob
	block     Block
	resolver  *Resolver
	mu        *sync.Mutex
	logger    *slog.Logger

	start   int
	pending []Match
	done    bool
}

var _ Buffer = (*BlobBuffer)(nil)

func newBlobBuffer(accession string, seq uint64, blob *archive.Blob, block Block, resolver *Resolver,
	mu *sync.Mutex, logger *slog.Logger,
) *BlobBuffer {
	return &BlobBuffer{
		accession: accession,
		seq:       seq,
		id:        blob.String(),
		blob:      blob,
		block:     block,
		resolver:  resolver,
		mu:        mu,
		logger:    logger,
	}
}

func (b *BlobBuffer) ID() string  { return b.id }
func (b *BlobBuffer) Seq() uint64 { return b.seq }

// NextMatch resumes the scan where the previous call stopped.
//
// A hit is attributed to the fragment owning its first base. It is reported when it
// ends inside that fragment, or when the query still occurs within
// [hitStart, fragmentEnd). Either way the scan resumes at the fragment end, so each
// fragment is reported at most once. Rows repeated through a page run share their
// bases and their layout; a hit inside such a run is reported for every row of the run.
func (b *BlobBuffer) NextMatch() (Match, bool, error) {
	if len(b.pending) > 0 {
		m := b.pending[0]
		b.pending = b.pending[1:]

		return m, true, nil
	}
	if b.done {
		return Match{}, false, nil
	}

	data, err := b.blob.Data()
	if err != nil {
		return Match{}, false, err
	}

	for b.start < len(data) {
		s, e, found := b.block.FirstMatch(data[b.start:])
		if !found {
			break
		}
		hitStart, hitEnd := b.start+s, b.start+e

		if err := b.collect(data, hitStart, hitEnd); err != nil {
			return Match{}, false, err
		}

		if len(b.pending) > 0 {
			m := b.pending[0]
			b.pending = b.pending[1:]

			return m, true, nil
		}
	}

	b.finish()

	return Match{}, false, nil
}

// collect resolves one raw hit, queues the matches it yields and advances the scan.
func (b *BlobBuffer) collect(data []byte, hitStart, hitEnd int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	fi, err := b.resolver.Resolve(b.blob, hitStart)
	if err != nil {
		return err
	}

	fragEnd := fi.End()
	if fragEnd <= hitStart {
		return errs.Internal("scan blob", "fragment %s of blob %s ends at %d before hit at %d", fi.ID, b.id, fragEnd, hitStart)
	}
	b.start = fragEnd

	if pos, ok := b.confirm(data, fi, hitStart, hitEnd); ok {
		b.pending = append(b.pending, b.newMatch(data, fi, pos))
	}

	offsetInRow := hitStart - fi.RowStart
	for i := uint32(1); i < fi.Repeat; i++ {
		row, err := b.resolver.ResolveRow(fi.RowID+uint64(i), fi.RowStart, int(fi.Increment), offsetInRow)
		if err != nil {
			return err
		}
		if row.Start != fi.Start || row.End() != fragEnd {
			return errs.Internal("scan blob", "row %d of blob %s repeats row %d with a different layout", row.RowID, b.id, fi.RowID)
		}
		if pos, ok := b.confirm(data, row, hitStart, hitEnd); ok {
			b.pending = append(b.pending, b.newMatch(data, row, pos))
		}
	}

	return nil
}

// confirm applies the fragment containment rule and returns the blob offset of the
// occurrence to report.
func (b *BlobBuffer) confirm(data []byte, fi FragmentInfo, hitStart, hitEnd int) (int, bool) {
	if !fi.Biological {
		return 0, false
	}
	if hitEnd <= fi.End() {
		return hitStart, true
	}

	s, _, found := b.block.FirstMatch(data[hitStart:fi.End()])
	if !found {
		b.logger.Debug("hit crosses fragment boundary",
			slog.String("accession", b.accession),
			slog.String("fragment", fi.ID),
			slog.Int("offset", hitStart),
		)

		return 0, false
	}

	return hitStart + s, true
}

func (b *BlobBuffer) newMatch(data []byte, fi FragmentInfo, pos int) Match {
	return Match{
		Accession:  b.accession,
		FragmentID: fi.ID,
		RowID:      fi.RowID,
		FragNum:    fi.FragNum,
		Position:   pos - fi.Start,
		Bases:      append([]byte(nil), data[fi.Start:fi.End()]...),
	}
}

func (b *BlobBuffer) finish() {
	b.done = true
	b.pending = nil
	b.blob.Release()
}

// Close stops the scan and releases the blob.
func (b *BlobBuffer) Close() {
	b.finish()
}

// FragmentBuffer scans the bases of one fragment. The first occurrence wins.
type FragmentBuffer struct {
	accession string
	seq       uint64
	id        string
	rowID     uint64
	fragNum   int
	bases     []byte
	block     Block
	done      bool
}

var _ Buffer = (*FragmentBuffer)(nil)

func (b *FragmentBuffer) ID() string  { return b.id }
func (b *FragmentBuffer) Seq() uint64 { return b.seq }

// NextMatch reports the fragment if it contains the query, then reports exhaustion.
func (b *FragmentBuffer) NextMatch() (Match, bool, error) {
	if b.done {
		return Match{}, false, nil
	}
	b.done = true

	s, _, found := b.block.FirstMatch(b.bases)
	if !found {
		b.bases = nil
		return Match{}, false, nil
	}

	m := Match{
		Accession:  b.accession,
		FragmentID: b.id,
		RowID:      b.rowID,
		FragNum:    b.fragNum,
		Position:   s,
		Bases:      b.bases,
	}
	b.bases = nil

	return m, true, nil
}

// Close drops the fragment's bases.
func (b *FragmentBuffer) Close() {
	b.done = true
	b.bases = nil
}
