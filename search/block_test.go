package search

import (
	"bytes"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/fragscan/errs"
	"github.com/arloliu/fragscan/format"
)

func randomBases(r *rand.Rand, n int, alphabet string) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[r.IntN(len(alphabet))]
	}

	return b
}

func TestBlockFirstMatch(t *testing.T) {
	tests := []struct {
		name  string
		buf   string
		query string
		start int
		found bool
	}{
		{name: "at start", buf: "ACGTACGT", query: "ACG", start: 0, found: true},
		{name: "in middle", buf: "TTTTACGTT", query: "ACG", start: 4, found: true},
		{name: "at end", buf: "TTTTTACG", query: "ACG", start: 5, found: true},
		{name: "leftmost of several", buf: "GGACGACG", query: "ACG", start: 2, found: true},
		{name: "overlapping", buf: "AAAAA", query: "AAA", start: 0, found: true},
		{name: "single base", buf: "CCCA", query: "A", start: 3, found: true},
		{name: "whole buffer", buf: "ATTAGC", query: "ATTAGC", start: 0, found: true},
		{name: "absent", buf: "CCCCCCCC", query: "ACG", found: false},
		{name: "query longer than buffer", buf: "ACG", query: "ACGT", found: false},
		{name: "empty buffer", buf: "", query: "A", found: false},
		{name: "case sensitive", buf: "acgt", query: "ACGT", found: false},
		{name: "ambiguity codes", buf: "ACGNNRYT", query: "NNR", start: 3, found: true},
	}

	for _, algorithm := range []format.Algorithm{format.AlgorithmNaiveScan, format.AlgorithmSkipSearch, format.AlgorithmDefault} {
		for _, tt := range tests {
			t.Run(algorithm.String()+"/"+tt.name, func(t *testing.T) {
				block, err := NewBlock([]byte(tt.query), algorithm)
				require.NoError(t, err)

				start, end, found := block.FirstMatch([]byte(tt.buf))
				require.Equal(t, tt.found, found)
				if tt.found {
					require.Equal(t, tt.start, start)
					require.Equal(t, tt.start+len(tt.query), end)
				}
			})
		}
	}
}

func TestBlockEquivalence(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))

	for i := range 2000 {
		alphabet := "ACGT"
		if i%3 == 0 {
			alphabet = "AC"
		}
		buf := randomBases(r, r.IntN(400), alphabet)
		query := randomBases(r, 1+r.IntN(8), alphabet)
		if len(buf) > 20 && i%2 == 0 {
			// plant the query to exercise the found path
			at := r.IntN(len(buf) - len(query))
			copy(buf[at:], query)
		}

		naive, err := NewBlock(query, format.AlgorithmNaiveScan)
		require.NoError(t, err)
		skip, err := NewBlock(query, format.AlgorithmSkipSearch)
		require.NoError(t, err)

		ns, ne, nf := naive.FirstMatch(buf)
		ss, se, sf := skip.FirstMatch(buf)
		require.Equal(t, nf, sf, "query %s buffer %s", query, buf)
		require.Equal(t, ns, ss, "query %s buffer %s", query, buf)
		require.Equal(t, ne, se, "query %s buffer %s", query, buf)

		if nf {
			require.Equal(t, bytes.Index(buf, query), ns)
		} else {
			require.Equal(t, -1, bytes.Index(buf, query))
		}
	}
}

func TestBlockRepeatedInvocation(t *testing.T) {
	buf := []byte("ACGxxACGxxxxACG")
	for _, algorithm := range []format.Algorithm{format.AlgorithmNaiveScan, format.AlgorithmSkipSearch} {
		block, err := NewBlock([]byte("ACG"), algorithm)
		require.NoError(t, err)

		var starts []int
		pos := 0
		for {
			s, e, found := block.FirstMatch(buf[pos:])
			if !found {
				break
			}
			starts = append(starts, pos+s)
			pos += e
		}
		require.Equal(t, []int{0, 5, 12}, starts, algorithm.String())
	}
}

func TestBlockFactory(t *testing.T) {
	_, err := NewBlockFactory(nil, format.AlgorithmNaiveScan)
	require.ErrorIs(t, err, errs.ErrInvalidQuery)
	require.Equal(t, errs.KindConfig, errs.KindOf(err))

	_, err = NewBlockFactory([]byte("A"), format.Algorithm(7))
	require.ErrorIs(t, err, errs.ErrInvalidAlgorithm)

	query := []byte("ACGT")
	f, err := NewBlockFactory(query, format.AlgorithmDefault)
	require.NoError(t, err)
	require.Equal(t, format.AlgorithmSkipSearch, f.Algorithm())

	// the factory keeps its own copy of the query
	query[0] = 'T'
	require.Equal(t, []byte("ACGT"), f.Query())

	a, b := f.New(), f.New()
	require.NotSame(t, a, b)
}

func BenchmarkBlock(b *testing.B) {
	r := rand.New(rand.NewPCG(3, 4))
	buf := randomBases(r, 1<<20, "CGT")
	query := []byte("ATTAGCATTAGC")

	for _, algorithm := range []format.Algorithm{format.AlgorithmNaiveScan, format.AlgorithmSkipSearch} {
		b.Run(algorithm.String(), func(b *testing.B) {
			block, err := NewBlock(query, algorithm)
			if err != nil {
				b.Fatal(err)
			}
			b.SetBytes(int64(len(buf)))
			b.ResetTimer()
			for b.Loop() {
				block.FirstMatch(buf)
			}
		})
	}
}
