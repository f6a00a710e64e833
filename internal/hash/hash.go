package hash

import "github.com/cespare/xxhash/v2"

// Checksum computes the xxHash64 of an uncompressed payload.
// Blob and layout headers store it so corrupted archives are detected on fetch.
func Checksum(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Name computes the xxHash64 of a string. Accession de-duplication keys on it.
func Name(s string) uint64 {
	return xxhash.Sum64String(s)
}
