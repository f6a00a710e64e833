// Package compress provides the payload codecs used by fragscan archives.
//
// Every blob of an archive stores two payloads: the raw bases of the rows it covers
// and the per-row fragment layouts. Both are compressed as a single unit with the
// codec recorded in the archive header, and both headers carry the uncompressed size,
// so decompression always knows its target size up front.
//
// # Supported Algorithms
//
//   - None (format.CompressionNone): payload stored as-is. Fastest scans, largest files.
//   - Zstd (format.CompressionZstd): best ratio on nucleotide text (~3.5-4x on 4-letter
//     alphabets), moderate decode speed. Pure Go by default; the cgo implementation from
//     github.com/valyala/gozstd is used when built with the gozstd tag and cgo enabled.
//   - S2 (format.CompressionS2): Snappy-compatible, balanced speed and ratio.
//   - LZ4 (format.CompressionLZ4): fastest decode of the compressing codecs.
//
// # Usage
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	payload, err := codec.Compress(bases)
//	...
//	bases, err = codec.Decompress(buf[:0], payload, dataSize)
//
// Decompress appends into dst so callers can decode straight into pooled buffers.
// A decoded size that differs from the expected size is reported as an error.
//
// # Thread Safety
//
// All codecs are stateless values and safe for concurrent use. Zstd and LZ4 keep
// their heavy encoder and decoder state in sync.Pools.
package compress
