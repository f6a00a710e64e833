package compress

import (
	"fmt"

	"github.com/klauspost/compress/s2"
)

// S2Compressor uses S2 block encoding.
type S2Compressor struct{}

var _ Codec = (*S2Compressor)(nil)

// NewS2Compressor creates an S2 codec.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

// Compress encodes data as a single S2 block. Empty input yields an empty payload.
func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Encode(nil, data), nil
}

// Decompress decodes an S2 block into dst.
func (c S2Compressor) Decompress(dst []byte, data []byte, size int) ([]byte, error) {
	if len(data) == 0 {
		if size != 0 {
			return nil, sizeMismatch("s2", 0, size)
		}

		return dst[:0], nil
	}

	decodedLen, err := s2.DecodedLen(data)
	if err != nil {
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}
	if decodedLen != size {
		return nil, sizeMismatch("s2", decodedLen, size)
	}

	out, err := s2.Decode(sized(dst, size), data)
	if err != nil {
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}

	return out, nil
}
