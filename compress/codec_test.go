package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/fragscan/format"
)

func sampleBases(n int) []byte {
	alphabet := []byte("ACGT")
	out := make([]byte, n)
	state := uint32(7)
	for i := range out {
		state = state*1103515245 + 12345
		out[i] = alphabet[(state>>16)%4]
	}

	return out
}

func TestGetCodec(t *testing.T) {
	for _, ct := range []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	} {
		codec, err := GetCodec(ct)
		require.NoError(t, err, ct.String())
		require.NotNil(t, codec)
	}

	_, err := GetCodec(format.CompressionType(0x7f))
	require.Error(t, err)
}

func TestCodecRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "single base", data: []byte("A")},
		{name: "short read", data: []byte("ACGTTGCAACGGTTAC")},
		{name: "repetitive", data: bytes.Repeat([]byte("ACGT"), 4096)},
		{name: "pseudo random", data: sampleBases(64 * 1024)},
	}

	codecs := map[string]Codec{
		"none": NewNoOpCompressor(),
		"zstd": NewZstdCompressor(),
		"s2":   NewS2Compressor(),
		"lz4":  NewLZ4Compressor(),
	}

	for codecName, codec := range codecs {
		for _, tt := range tests {
			t.Run(codecName+"/"+tt.name, func(t *testing.T) {
				original := append([]byte(nil), tt.data...)

				payload, err := codec.Compress(tt.data)
				require.NoError(t, err)
				require.Equal(t, original, tt.data, "input must not be modified")

				decoded, err := codec.Decompress(nil, payload, len(tt.data))
				require.NoError(t, err)
				require.Len(t, decoded, len(tt.data))
				if len(tt.data) > 0 {
					require.Equal(t, tt.data, decoded)
				}

				// decoding into a reused buffer gives the same bytes
				buf := make([]byte, 0, 8)
				decoded, err = codec.Decompress(buf, payload, len(tt.data))
				require.NoError(t, err)
				require.Len(t, decoded, len(tt.data))
			})
		}
	}
}

func TestCodecSizeMismatch(t *testing.T) {
	data := sampleBases(1024)

	for _, codec := range []Codec{
		NewNoOpCompressor(),
		NewZstdCompressor(),
		NewS2Compressor(),
		NewLZ4Compressor(),
	} {
		payload, err := codec.Compress(data)
		require.NoError(t, err)

		_, err = codec.Decompress(nil, payload, len(data)+1)
		require.Error(t, err)
	}
}

func TestCodecCorruptPayload(t *testing.T) {
	garbage := []byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x01}

	_, err := NewZstdCompressor().Decompress(nil, garbage, 100)
	require.Error(t, err)

	_, err = NewS2Compressor().Decompress(nil, garbage, 100)
	require.Error(t, err)
}
