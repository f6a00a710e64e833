package compress

// ZstdCompressor uses Zstandard frames. It gives the best ratio on nucleotide payloads
// and is the recommended codec for archives that are scanned repeatedly from cold storage.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a Zstd codec.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
