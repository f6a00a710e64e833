package compress

// NoOpCompressor stores payloads uncompressed.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates the pass-through codec.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Compress returns data itself without copying.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress copies data into dst. The payload length must equal size.
func (c NoOpCompressor) Decompress(dst []byte, data []byte, size int) ([]byte, error) {
	if len(data) != size {
		return nil, sizeMismatch("none", len(data), size)
	}

	return append(dst[:0], data...), nil
}
