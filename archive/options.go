package archive

import (
	"fmt"
	"io"

	"github.com/arloliu/fragscan/errs"
	"github.com/arloliu/fragscan/format"
	"github.com/arloliu/fragscan/internal/options"
)

const (
	// DefaultRowsPerBlob is the maximum number of rows per blob.
	DefaultRowsPerBlob = 4096
	// DefaultTargetBlobSize is the uncompressed bases size at which a blob is cut early.
	DefaultTargetBlobSize = 1024 * 1024
	// DefaultLayoutCacheSize is the number of decoded blob layouts a cursor keeps.
	DefaultLayoutCacheSize = 8
)

type writerConfig struct {
	runName        string
	platform       string
	kind           format.ArchiveKind
	compression    format.CompressionType
	rowsPerBlob    int
	targetBlobSize int
	bigEndian      bool
	collapseRuns   bool
}

func defaultWriterConfig() *writerConfig {
	return &writerConfig{
		kind:           format.KindReads,
		compression:    format.CompressionZstd,
		rowsPerBlob:    DefaultRowsPerBlob,
		targetBlobSize: DefaultTargetBlobSize,
		collapseRuns:   true,
	}
}

// WriterOption configures a Writer.
type WriterOption = options.Option[*writerConfig]

// WithRunName sets the run name used in fragment identifiers. It is required.
func WithRunName(name string) WriterOption {
	return options.New(func(c *writerConfig) error {
		if name == "" {
			return fmt.Errorf("%w: empty run name", errs.ErrInvalidConfig)
		}
		c.runName = name

		return nil
	})
}

// WithPlatform records the sequencing platform in the archive metadata.
func WithPlatform(platform string) WriterOption {
	return options.NoError(func(c *writerConfig) {
		c.platform = platform
	})
}

// WithKind sets the archive kind. The default is format.KindReads.
func WithKind(kind format.ArchiveKind) WriterOption {
	return options.New(func(c *writerConfig) error {
		if kind != format.KindReads && kind != format.KindReference {
			return fmt.Errorf("%w: archive kind %d", errs.ErrInvalidConfig, kind)
		}
		c.kind = kind

		return nil
	})
}

// WithCompression sets the payload codec. The default is format.CompressionZstd.
func WithCompression(compression format.CompressionType) WriterOption {
	return options.NoError(func(c *writerConfig) {
		c.compression = compression
	})
}

// WithRowsPerBlob caps the number of rows per blob.
func WithRowsPerBlob(n int) WriterOption {
	return options.New(func(c *writerConfig) error {
		if n <= 0 {
			return fmt.Errorf("%w: rows per blob must be positive, got %d", errs.ErrInvalidConfig, n)
		}
		c.rowsPerBlob = n

		return nil
	})
}

// WithTargetBlobSize cuts a blob once its uncompressed bases reach size bytes.
func WithTargetBlobSize(size int) WriterOption {
	return options.New(func(c *writerConfig) error {
		if size <= 0 {
			return fmt.Errorf("%w: target blob size must be positive, got %d", errs.ErrInvalidConfig, size)
		}
		c.targetBlobSize = size

		return nil
	})
}

// WithBigEndian writes big-endian sections.
func WithBigEndian() WriterOption {
	return options.NoError(func(c *writerConfig) {
		c.bigEndian = true
	})
}

// WithRunCollapse enables or disables collapsing identical consecutive rows. Enabled by default.
func WithRunCollapse(enabled bool) WriterOption {
	return options.NoError(func(c *writerConfig) {
		c.collapseRuns = enabled
	})
}

type openConfig struct {
	accession       string
	verifyChecksums bool
	layoutCacheSize int
	closer          io.Closer
}

func defaultOpenConfig() *openConfig {
	return &openConfig{
		verifyChecksums: true,
		layoutCacheSize: DefaultLayoutCacheSize,
	}
}

// OpenOption configures Open.
type OpenOption = options.Option[*openConfig]

// WithAccession names the collection. It defaults to the run name from the metadata.
func WithAccession(accession string) OpenOption {
	return options.NoError(func(c *openConfig) {
		c.accession = accession
	})
}

// WithChecksumVerification toggles payload checksum checks on fetch. Enabled by default.
func WithChecksumVerification(enabled bool) OpenOption {
	return options.NoError(func(c *openConfig) {
		c.verifyChecksums = enabled
	})
}

// WithLayoutCacheSize sets how many decoded blob layouts a cursor keeps.
func WithLayoutCacheSize(n int) OpenOption {
	return options.New(func(c *openConfig) error {
		if n <= 0 {
			return fmt.Errorf("%w: layout cache size must be positive, got %d", errs.ErrInvalidConfig, n)
		}
		c.layoutCacheSize = n

		return nil
	})
}

// WithCloser attaches a resource released by Collection.Close, such as the file or
// remote object backing the io.ReaderAt.
func WithCloser(closer io.Closer) OpenOption {
	return options.NoError(func(c *openConfig) {
		c.closer = closer
	})
}
