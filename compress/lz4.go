package compress

import (
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4CompressorPool keeps lz4.Compressor hash tables warm between blobs.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Compressor uses LZ4 block compression.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates an LZ4 codec.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress encodes data as one LZ4 block. Empty input yields an empty payload.
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}

	// CompressBlock reports 0 for incompressible input.
	if n == 0 {
		return nil, fmt.Errorf("lz4 compression failed: incompressible payload of %d bytes", len(data))
	}

	return dst[:n], nil
}

// Decompress decodes an LZ4 block into dst. Unlike a size-unknown decoder it needs no
// retry loop: the archive header records the exact decoded size.
func (c LZ4Compressor) Decompress(dst []byte, data []byte, size int) ([]byte, error) {
	if len(data) == 0 {
		if size != 0 {
			return nil, sizeMismatch("lz4", 0, size)
		}

		return dst[:0], nil
	}

	out := sized(dst, size)
	n, err := lz4.UncompressBlock(data, out)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompression failed: %w", err)
	}
	if n != size {
		return nil, sizeMismatch("lz4", n, size)
	}

	return out[:n], nil
}
