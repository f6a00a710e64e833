package search

import (
	"fmt"
	"log/slog"

	"github.com/arloliu/fragscan/errs"
	"github.com/arloliu/fragscan/format"
	"github.com/arloliu/fragscan/internal/options"
)

// Mode selects the unit a MatchIterator walks.
type Mode uint8

const (
	// ModeBlob scans whole blobs and resolves hits to fragments.
	ModeBlob Mode = iota
	// ModeFragment scans biological fragments one at a time.
	ModeFragment
)

func (m Mode) String() string {
	switch m {
	case ModeBlob:
		return "blob"
	case ModeFragment:
		return "fragment"
	default:
		return "unknown"
	}
}

// ParseMode parses "blob" or "fragment".
func ParseMode(name string) (Mode, error) {
	switch name {
	case "", "blob":
		return ModeBlob, nil
	case "fragment":
		return ModeFragment, nil
	default:
		return ModeBlob, fmt.Errorf("%w: unknown search mode %q", errs.ErrInvalidConfig, name)
	}
}

type config struct {
	algorithm     format.Algorithm
	mode          Mode
	unalignedOnly bool
	accession     string
	logger        *slog.Logger
}

func defaultConfig() *config {
	return &config{
		algorithm: format.AlgorithmDefault,
		mode:      ModeBlob,
	}
}

// Option configures a MatchIterator.
type Option = options.Option[*config]

// WithAlgorithm selects the scan algorithm.
func WithAlgorithm(algorithm format.Algorithm) Option {
	return options.New(func(c *config) error {
		if !algorithm.Valid() {
			return fmt.Errorf("%w: %d", errs.ErrInvalidAlgorithm, algorithm)
		}
		c.algorithm = algorithm

		return nil
	})
}

// WithAlgorithmName selects the scan algorithm by name, see format.ParseAlgorithm.
func WithAlgorithmName(name string) Option {
	return options.New(func(c *config) error {
		algorithm, err := format.ParseAlgorithm(name)
		if err != nil {
			return err
		}
		c.algorithm = algorithm

		return nil
	})
}

// WithMode selects blob or fragment iteration.
func WithMode(mode Mode) Option {
	return options.New(func(c *config) error {
		if mode != ModeBlob && mode != ModeFragment {
			return fmt.Errorf("%w: search mode %d", errs.ErrInvalidConfig, mode)
		}
		c.mode = mode

		return nil
	})
}

// WithUnalignedOnly limits the search to unaligned fragments of unaligned and partially
// aligned reads. It implies ModeFragment.
func WithUnalignedOnly(enabled bool) Option {
	return options.NoError(func(c *config) {
		c.unalignedOnly = enabled
	})
}

// WithAccession overrides the accession reported in matches, which defaults to the
// collection's accession.
func WithAccession(accession string) Option {
	return options.NoError(func(c *config) {
		c.accession = accession
	})
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(c *config) {
		c.logger = logger
	})
}
