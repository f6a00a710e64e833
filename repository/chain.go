package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/arloliu/fragscan/archive"
	"github.com/arloliu/fragscan/errs"
)

// Chain resolves accessions locally first and then, when allowed, remotely.
type Chain struct {
	Local         *Local
	Remote        Repository // nil when no remote repository is configured
	RemoteEnabled bool
	Logger        *slog.Logger
}

var _ Repository = (*Chain)(nil)

// Open opens accession from the first repository that has it.
func (c *Chain) Open(ctx context.Context, accession string) (*archive.Collection, error) {
	if err := ValidateAccession(accession); err != nil {
		return nil, err
	}

	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}

	local := c.Local
	if local == nil {
		local = NewLocal()
	}

	coll, err := local.Open(ctx, accession)
	if err == nil || !errors.Is(err, errs.ErrNotFound) {
		return coll, err
	}

	// a path that does not exist is never looked up remotely
	if c.Remote == nil || isPathForm(accession, local.extension()) {
		return nil, err
	}
	if !c.RemoteEnabled {
		return nil, fmt.Errorf("%w: %s is not available locally", errs.ErrRemoteAccessDisabled, accession)
	}

	logger.Debug("accession not found locally, trying remote repository", slog.String("accession", accession))

	return c.Remote.Open(ctx, accession)
}
