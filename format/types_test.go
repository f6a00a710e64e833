package format

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/fragscan/errs"
)

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		name string
		want Algorithm
	}{
		{name: "", want: AlgorithmDefault},
		{name: "default", want: AlgorithmDefault},
		{name: "Naive", want: AlgorithmNaiveScan},
		{name: "naivescan", want: AlgorithmNaiveScan},
		{name: "dumb", want: AlgorithmNaiveScan},
		{name: " skip ", want: AlgorithmSkipSearch},
		{name: "SkipSearch", want: AlgorithmSkipSearch},
		{name: "boyer-moore", want: AlgorithmSkipSearch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAlgorithm(tt.name)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.True(t, got.Valid())
		})
	}

	_, err := ParseAlgorithm("regex")
	require.ErrorIs(t, err, errs.ErrInvalidAlgorithm)
}

func TestAlgorithmResolve(t *testing.T) {
	require.Equal(t, AlgorithmSkipSearch, AlgorithmDefault.Resolve())
	require.Equal(t, AlgorithmNaiveScan, AlgorithmNaiveScan.Resolve())
	require.Equal(t, AlgorithmSkipSearch, AlgorithmSkipSearch.Resolve())
	require.False(t, Algorithm(9).Valid())
	require.Equal(t, "Unknown", Algorithm(9).String())
}

func TestParseCompression(t *testing.T) {
	for name, want := range map[string]CompressionType{
		"":     CompressionNone,
		"none": CompressionNone,
		"ZSTD": CompressionZstd,
		"s2":   CompressionS2,
		"lz4":  CompressionLZ4,
	} {
		got, err := ParseCompression(name)
		require.NoError(t, err, name)
		require.Equal(t, want, got, name)
	}

	_, err := ParseCompression("gzip")
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
}

func TestKindString(t *testing.T) {
	require.Equal(t, "Reads", KindReads.String())
	require.Equal(t, "Reference", KindReference.String())
	require.Equal(t, "Unknown", ArchiveKind(0).String())
}

func TestParseArchiveKind(t *testing.T) {
	kind, err := ParseArchiveKind("Reference")
	require.NoError(t, err)
	require.Equal(t, KindReference, kind)

	kind, err = ParseArchiveKind("")
	require.NoError(t, err)
	require.Equal(t, KindReads, kind)

	_, err = ParseArchiveKind("contigs")
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
}
