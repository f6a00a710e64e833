package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/arloliu/fragscan/archive"
	"github.com/arloliu/fragscan/errs"
)

// Local resolves accessions to archive files under a list of directory roots.
type Local struct {
	// Roots are searched in order. An empty list searches the working directory.
	Roots []string
	// Extension is appended to bare accessions. Empty means DefaultExtension.
	Extension string
	// Options are passed to archive.OpenFile.
	Options []archive.OpenOption
}

var _ Repository = (*Local)(nil)

// NewLocal creates a Local repository over roots.
func NewLocal(roots ...string) *Local {
	return &Local{Roots: roots, Extension: DefaultExtension}
}

func (l *Local) extension() string {
	if l.Extension == "" {
		return DefaultExtension
	}

	return l.Extension
}

// Locate returns the path the accession resolves to without opening it.
func (l *Local) Locate(accession string) (string, error) {
	if err := ValidateAccession(accession); err != nil {
		return "", err
	}

	if isPathForm(accession, l.extension()) {
		if err := checkFile(accession); err != nil {
			return "", err
		}

		return accession, nil
	}

	roots := l.Roots
	if len(roots) == 0 {
		roots = []string{"."}
	}

	for _, root := range roots {
		path := filepath.Join(root, accession+l.extension())
		err := checkFile(path)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, errs.ErrNotFound) {
			return "", err
		}
	}

	return "", fmt.Errorf("%w: %s in %s", errs.ErrNotFound, accession, strings.Join(roots, ", "))
}

// Open opens the archive of accession.
func (l *Local) Open(ctx context.Context, accession string) (*archive.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := l.Locate(accession)
	if err != nil {
		return nil, err
	}

	opts := append([]archive.OpenOption{archive.WithAccession(accessionOf(accession, l.extension()))}, l.Options...)

	return archive.OpenFile(path, opts...)
}

func checkFile(path string) error {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", errs.ErrNotFound, path)
	case err != nil:
		return errs.Storage("stat archive", err)
	case info.IsDir():
		return fmt.Errorf("%w: %s is a directory", errs.ErrUnsupported, path)
	}

	return nil
}

// accessionOf strips directories and the extension from a path-form accession.
func accessionOf(accession, extension string) string {
	if !isPathForm(accession, extension) {
		return accession
	}

	return strings.TrimSuffix(filepath.Base(accession), extension)
}
