package compress

import (
	"fmt"

	"github.com/arloliu/fragscan/format"
)

// Compressor compresses a complete blob payload.
type Compressor interface {
	// Compress returns the compressed form of data. The input is not modified.
	// The returned slice may alias data for the no-op codec.
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a payload whose uncompressed size is known in advance.
type Decompressor interface {
	// Decompress decodes data into dst[:0], growing it when needed, and returns the
	// decoded slice. It returns an error when the decoded length differs from size.
	Decompress(dst []byte, data []byte, size int) ([]byte, error)
}

// Codec combines both directions.
type Codec interface {
	Compressor
	Decompressor
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec returns the built-in codec for compressionType.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", compressionType)
}

// sized returns dst resized to exactly size bytes, reallocating when its capacity is short.
func sized(dst []byte, size int) []byte {
	if cap(dst) >= size {
		return dst[:size]
	}

	return make([]byte, size)
}

func sizeMismatch(codec string, got, want int) error {
	return fmt.Errorf("%s: decoded %d bytes, expected %d", codec, got, want)
}
