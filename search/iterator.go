package search

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/arloliu/fragscan/archive"
	"github.com/arloliu/fragscan/fragment"
	"github.com/arloliu/fragscan/internal/options"
)

// MatchIterator yields the search buffers of one accession in unit order.
type MatchIterator interface {
	// NextBuffer returns the next unit's buffer. It reports false once the accession is
	// exhausted. NextBuffer is safe to call while earlier buffers are being scanned.
	NextBuffer() (Buffer, bool, error)
	// Accession returns the accession reported in matches.
	Accession() string
	// Close releases the iterator and, when it opened the collection, the collection.
	Close() error
}

// Opener resolves an accession to an open collection.
type Opener interface {
	Open(ctx context.Context, accession string) (*archive.Collection, error)
}

// NewMatchIterator creates an iterator over coll for query. The caller keeps ownership
// of coll. Configuration errors, such as an empty query or an unknown algorithm, are
// returned here and never surface later.
func NewMatchIterator(coll *archive.Collection, query string, opts ...Option) (MatchIterator, error) {
	cfg := defaultConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.accession == "" {
		cfg.accession = coll.Accession()
	}

	factory, err := NewBlockFactory([]byte(query), cfg.algorithm)
	if err != nil {
		return nil, err
	}

	logger := cfg.logger.With(slog.String("accession", cfg.accession))

	if cfg.mode == ModeFragment || cfg.unalignedOnly {
		reads, err := archive.NewReadIterator(coll)
		if err != nil {
			return nil, err
		}
		logger.Debug("fragment iterator created",
			slog.String("algorithm", factory.Algorithm().String()),
			slog.Bool("unaligned_only", cfg.unalignedOnly),
		)

		return &FragmentMatchIterator{
			coll:          coll,
			accession:     cfg.accession,
			reads:         reads,
			factory:       factory,
			unalignedOnly: cfg.unalignedOnly,
			logger:        logger,
		}, nil
	}

	cur, err := coll.OpenCursor(archive.ColumnRead)
	if err != nil {
		return nil, err
	}
	logger.Debug("blob iterator created", slog.String("algorithm", factory.Algorithm().String()))

	return &BlobMatchIterator{
		coll:      coll,
		accession: cfg.accession,
		cur:       cur,
		factory:   factory,
		resolver:  NewResolver(cur, coll.Run()),
		logger:    logger,
	}, nil
}

// OpenMatchIterator opens accession through opener and creates an iterator that owns
// the collection.
func OpenMatchIterator(ctx context.Context, opener Opener, accession, query string, opts ...Option) (MatchIterator, error) {
	// validate before touching storage
	if _, err := NewBlockFactory([]byte(query), 0); err != nil {
		return nil, err
	}

	coll, err := opener.Open(ctx, accession)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", accession, err)
	}

	it, err := NewMatchIterator(coll, query, append([]Option{WithAccession(accession)}, opts...)...)
	if err != nil {
		_ = coll.Close()
		return nil, err
	}

	return &owningIterator{MatchIterator: it, coll: coll}, nil
}

type owningIterator struct {
	MatchIterator
	coll *archive.Collection
}

func (it *owningIterator) Close() error {
	_ = it.MatchIterator.Close()
	return it.coll.Close()
}

// BlobMatchIterator yields one BlobBuffer per blob, in row order. Its lock serializes
// blob fetches with the resolver calls of every buffer it produced.
type BlobMatchIterator struct {
	coll      *archive.Collection
	accession string
	cur       *archive.Cursor
	factory   *BlockFactory
	resolver  *Resolver
	logger    *slog.Logger

	mu   sync.Mutex
	prev *archive.Blob
	seq  uint64
	done bool
}

var _ MatchIterator = (*BlobMatchIterator)(nil)

func (it *BlobMatchIterator) Accession() string { return it.accession }

// NextBuffer fetches the blob following the previous one. The previous blob is owned
// by its buffer; only its row range is read here.
func (it *BlobMatchIterator) NextBuffer() (Buffer, bool, error) {
	it.mu.Lock()
	defer it.mu.Unlock()

	if it.done {
		return nil, false, nil
	}

	blob, ok, err := it.cur.NextBlob(it.prev)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		it.done = true
		it.logger.Debug("blob iterator exhausted", slog.Uint64("buffers", it.seq))

		return nil, false, nil
	}

	it.prev = blob
	buf := newBlobBuffer(it.accession, it.seq, blob, it.factory.New(), it.resolver, &it.mu, it.logger)
	it.seq++

	return buf, true, nil
}

// FetchBlob returns the blob covering row through the iterator's cursor. The caller
// owns the blob.
func (it *BlobMatchIterator) FetchBlob(row uint64) (*archive.Blob, error) {
	it.mu.Lock()
	defer it.mu.Unlock()

	return it.cur.FetchBlob(row)
}

// Close marks the iterator exhausted. Buffers already handed out stay valid.
func (it *BlobMatchIterator) Close() error {
	it.mu.Lock()
	defer it.mu.Unlock()

	it.done = true
	it.prev = nil

	return nil
}

// FragmentMatchIterator yields one FragmentBuffer per biological fragment, read by read.
type FragmentMatchIterator struct {
	coll          *archive.Collection
	accession     string
	reads         *archive.ReadIterator
	factory       *BlockFactory
	unalignedOnly bool
	logger        *slog.Logger

	mu      sync.Mutex
	read    archive.Read
	bases   []byte // copy of read.Bases
	fragIdx int
	seq     uint64
	done    bool
}

var _ MatchIterator = (*FragmentMatchIterator)(nil)

func (it *FragmentMatchIterator) Accession() string { return it.accession }

// NextBuffer advances to the next eligible fragment.
func (it *FragmentMatchIterator) NextBuffer() (Buffer, bool, error) {
	it.mu.Lock()
	defer it.mu.Unlock()

	for !it.done {
		for it.fragIdx < len(it.read.Layout) {
			p := it.read.Layout[it.fragIdx]
			it.fragIdx++

			if !p.IsBiological() || (it.unalignedOnly && p.Aligned) {
				continue
			}

			id := fragment.ID{
				Run:     it.coll.Run(),
				Kind:    fragment.KindReadFragment,
				RowID:   int64(it.read.RowID), //nolint: gosec
				FragNum: p.Number,
			}
			buf := &FragmentBuffer{
				accession: it.accession,
				seq:       it.seq,
				id:        id.String(),
				rowID:     it.read.RowID,
				fragNum:   p.Number,
				bases:     append([]byte(nil), it.bases[p.Start:p.End()]...),
				block:     it.factory.New(),
			}
			it.seq++

			return buf, true, nil
		}

		if err := it.advance(); err != nil {
			return nil, false, err
		}
	}

	return nil, false, nil
}

// advance moves to the next read that passes the alignment filter.
func (it *FragmentMatchIterator) advance() error {
	for {
		read, ok, err := it.reads.Next()
		if err != nil {
			return err
		}
		if !ok {
			it.done = true
			it.read = archive.Read{}
			it.logger.Debug("fragment iterator exhausted", slog.Uint64("buffers", it.seq))

			return nil
		}
		if it.unalignedOnly && read.Category() == fragment.CategoryFullyAligned {
			continue
		}

		it.read = read
		it.bases = append(it.bases[:0], read.Bases...)
		it.fragIdx = 0

		return nil
	}
}

// Close releases the read iterator.
func (it *FragmentMatchIterator) Close() error {
	it.mu.Lock()
	defer it.mu.Unlock()

	it.done = true
	it.reads.Close()

	return nil
}
