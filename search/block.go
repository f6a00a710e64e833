package search

import (
	"fmt"

	"github.com/arloliu/fragscan/errs"
	"github.com/arloliu/fragscan/format"
)

// Block finds exact occurrences of one query. Callers enumerate several matches in a
// buffer by calling FirstMatch again on the part after the previous hit.
type Block interface {
	// FirstMatch returns the half-open range of the leftmost occurrence of the query in buf.
	FirstMatch(buf []byte) (start, end int, found bool)
}

// BlockFactory validates a query once and builds a fresh Block for each buffer.
// It is immutable and safe for concurrent use.
type BlockFactory struct {
	query     []byte
	algorithm format.Algorithm
	skip      *[256]int
}

// NewBlockFactory validates query and algorithm.
//
// Parameters:
//   - query: raw bases to look for; it is matched byte for byte without normalization
//   - algorithm: scan algorithm; AlgorithmDefault resolves to AlgorithmSkipSearch
//
// Returns ErrInvalidQuery for an empty query and ErrInvalidAlgorithm for an unknown algorithm.
func NewBlockFactory(query []byte, algorithm format.Algorithm) (*BlockFactory, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("%w: empty query", errs.ErrInvalidQuery)
	}
	if !algorithm.Valid() {
		return nil, fmt.Errorf("%w: %d", errs.ErrInvalidAlgorithm, algorithm)
	}

	f := &BlockFactory{
		query:     append([]byte(nil), query...),
		algorithm: algorithm.Resolve(),
	}
	if f.algorithm == format.AlgorithmSkipSearch {
		f.skip = badCharacterTable(f.query)
	}

	return f, nil
}

// Query returns the query. The slice must not be modified.
func (f *BlockFactory) Query() []byte {
	return f.query
}

// Algorithm returns the resolved algorithm.
func (f *BlockFactory) Algorithm() format.Algorithm {
	return f.algorithm
}

// New returns a Block for one buffer.
func (f *BlockFactory) New() Block {
	if f.algorithm == format.AlgorithmNaiveScan {
		return &naiveBlock{query: f.query}
	}

	return &skipBlock{query: f.query, skip: f.skip}
}

// NewBlock builds a single Block for query.
func NewBlock(query []byte, algorithm format.Algorithm) (Block, error) {
	f, err := NewBlockFactory(query, algorithm)
	if err != nil {
		return nil, err
	}

	return f.New(), nil
}

// naiveBlock compares the query at every start position.
type naiveBlock struct {
	query []byte
}

func (b *naiveBlock) FirstMatch(buf []byte) (int, int, bool) {
	m := len(b.query)
	for i := 0; i+m <= len(buf); i++ {
		j := 0
		for j < m && buf[i+j] == b.query[j] {
			j++
		}
		if j == m {
			return i, i + m, true
		}
	}

	return 0, 0, false
}

// skipBlock is a Boyer-Moore-Horspool scan: on a mismatch the window moves by the
// bad-character shift of the byte under the window's last position.
type skipBlock struct {
	query []byte
	skip  *[256]int
}

func badCharacterTable(query []byte) *[256]int {
	var table [256]int
	m := len(query)
	for i := range table {
		table[i] = m
	}
	for i := 0; i < m-1; i++ {
		table[query[i]] = m - 1 - i
	}

	return &table
}

func (b *skipBlock) FirstMatch(buf []byte) (int, int, bool) {
	m := len(b.query)
	last := m - 1

	for pos := 0; pos+m <= len(buf); pos += b.skip[buf[pos+last]] {
		j := last
		for j >= 0 && buf[pos+j] == b.query[j] {
			j--
		}
		if j < 0 {
			return pos, pos + m, true
		}
	}

	return 0, 0, false
}
