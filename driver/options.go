package driver

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/arloliu/fragscan/errs"
	"github.com/arloliu/fragscan/internal/options"
)

type config struct {
	threads int
	workers int
	logger  *slog.Logger
}

func defaultConfig() *config {
	return &config{
		threads: 1,
		workers: runtime.GOMAXPROCS(0),
	}
}

// Option configures a Driver.
type Option = options.Option[*config]

// WithThreads sets how many accessions are searched at once.
func WithThreads(n int) Option {
	return options.New(func(c *config) error {
		if n <= 0 {
			return fmt.Errorf("%w: threads must be positive, got %d", errs.ErrInvalidConfig, n)
		}
		c.threads = n

		return nil
	})
}

// WithWorkers sets how many buffers of one accession are scanned at once.
// The default is GOMAXPROCS.
func WithWorkers(n int) Option {
	return options.New(func(c *config) error {
		if n <= 0 {
			return fmt.Errorf("%w: workers must be positive, got %d", errs.ErrInvalidConfig, n)
		}
		c.workers = n

		return nil
	})
}

// WithLogger sets the logger used by the driver and the iterators it creates.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(c *config) {
		c.logger = logger
	})
}
