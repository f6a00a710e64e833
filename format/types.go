package format

import (
	"fmt"
	"strings"

	"github.com/arloliu/fragscan/errs"
)

type (
	CompressionType uint8
	Algorithm       uint8
	ArchiveKind     uint8
)

const (
	CompressionNone CompressionType = 0x1 // CompressionNone stores payloads as-is.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 block compression.
)

const (
	AlgorithmDefault    Algorithm = 0x0 // AlgorithmDefault resolves to AlgorithmSkipSearch.
	AlgorithmNaiveScan  Algorithm = 0x1 // AlgorithmNaiveScan compares the query at every start position.
	AlgorithmSkipSearch Algorithm = 0x2 // AlgorithmSkipSearch uses a bad-character skip table.
)

const (
	KindReads     ArchiveKind = 0x1 // KindReads holds sequencing reads, one spot per row.
	KindReference ArchiveKind = 0x2 // KindReference holds reference sequence chunks, one chunk per row.
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// ParseCompression parses a case-insensitive compression name.
func ParseCompression(name string) (CompressionType, error) {
	switch strings.ToLower(name) {
	case "none", "":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "s2":
		return CompressionS2, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("%w: unknown compression %q", errs.ErrInvalidConfig, name)
	}
}

func (a Algorithm) String() string {
	switch a {
	case AlgorithmDefault:
		return "Default"
	case AlgorithmNaiveScan:
		return "NaiveScan"
	case AlgorithmSkipSearch:
		return "SkipSearch"
	default:
		return "Unknown"
	}
}

// Resolve maps AlgorithmDefault to the concrete algorithm used for scans.
func (a Algorithm) Resolve() Algorithm {
	if a == AlgorithmDefault {
		return AlgorithmSkipSearch
	}

	return a
}

// Valid reports whether a names a known algorithm.
func (a Algorithm) Valid() bool {
	return a <= AlgorithmSkipSearch
}

// ParseAlgorithm parses an algorithm name.
//
// Accepted names are case-insensitive: "default", "naive", "naivescan", "dumb",
// "skip", "skipsearch", "boyermoore". An unknown name returns ErrInvalidAlgorithm
// so the caller can report it and retry with corrected input.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "default":
		return AlgorithmDefault, nil
	case "naive", "naivescan", "dumb":
		return AlgorithmNaiveScan, nil
	case "skip", "skipsearch", "boyermoore", "boyer-moore":
		return AlgorithmSkipSearch, nil
	default:
		return AlgorithmDefault, fmt.Errorf("%w: %q", errs.ErrInvalidAlgorithm, name)
	}
}

func (k ArchiveKind) String() string {
	switch k {
	case KindReads:
		return "Reads"
	case KindReference:
		return "Reference"
	default:
		return "Unknown"
	}
}

// ParseArchiveKind parses "reads" or "reference", case-insensitively.
func ParseArchiveKind(name string) (ArchiveKind, error) {
	switch strings.ToLower(name) {
	case "reads", "read", "":
		return KindReads, nil
	case "reference", "ref":
		return KindReference, nil
	default:
		return 0, fmt.Errorf("%w: unknown archive kind %q", errs.ErrInvalidConfig, name)
	}
}
