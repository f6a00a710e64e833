package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type scanConfig struct {
	threads  int
	ordered  bool
	lastCall string
}

func withThreads(n int) Option[*scanConfig] {
	return New(func(c *scanConfig) error {
		if n <= 0 {
			return errors.New("threads must be positive")
		}
		c.threads = n
		c.lastCall = "threads"

		return nil
	})
}

func withOrdered() Option[*scanConfig] {
	return NoError(func(c *scanConfig) {
		c.ordered = true
		c.lastCall = "ordered"
	})
}

func TestApply(t *testing.T) {
	cfg := &scanConfig{}
	err := Apply(cfg, withThreads(4), withOrdered())
	require.NoError(t, err)
	require.Equal(t, 4, cfg.threads)
	require.True(t, cfg.ordered)
	require.Equal(t, "ordered", cfg.lastCall)
}

func TestApply_StopsAtFirstError(t *testing.T) {
	cfg := &scanConfig{}
	err := Apply(cfg, withThreads(0), withOrdered())
	require.Error(t, err)
	require.False(t, cfg.ordered, "options after a failing one must not run")
}

func TestApply_SkipsNil(t *testing.T) {
	cfg := &scanConfig{}
	var nilOpt Option[*scanConfig]
	require.NoError(t, Apply(cfg, nilOpt, withThreads(2)))
	require.Equal(t, 2, cfg.threads)
}

func TestApply_Empty(t *testing.T) {
	cfg := &scanConfig{threads: 7}
	require.NoError(t, Apply(cfg))
	require.Equal(t, 7, cfg.threads)
}
