package repository

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/arloliu/fragscan/archive"
	"github.com/arloliu/fragscan/errs"
)

// DefaultExtension is the file extension of archives.
const DefaultExtension = ".fsar"

// Repository resolves an accession to an open collection. The caller closes it.
type Repository interface {
	Open(ctx context.Context, accession string) (*archive.Collection, error)
}

// ValidateAccession rejects empty accessions, whitespace or control characters, and
// parent-directory elements.
func ValidateAccession(accession string) error {
	if accession == "" {
		return fmt.Errorf("%w: empty accession", errs.ErrInvalidAccession)
	}

	for _, r := range accession {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("%w: %q contains whitespace or control characters", errs.ErrInvalidAccession, accession)
		}
	}

	for _, elem := range strings.FieldsFunc(accession, isSeparator) {
		if elem == ".." {
			return fmt.Errorf("%w: %q escapes its directory", errs.ErrInvalidAccession, accession)
		}
	}

	return nil
}

// isPathForm reports whether accession names a file rather than a bare accession.
func isPathForm(accession, extension string) bool {
	return strings.ContainsFunc(accession, isSeparator) ||
		(extension != "" && strings.HasSuffix(accession, extension))
}

func isSeparator(r rune) bool {
	return r == '/' || r == '\\'
}
