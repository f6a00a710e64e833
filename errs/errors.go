// Package errs defines the error values shared by all fragscan packages.
//
// Errors fall into four kinds, see KindOf:
//   - Configuration errors (bad query, algorithm name, accession text, config file)
//   - Not-found errors (unknown accession, missing column, row outside the archive)
//   - Storage errors (I/O failures while opening, fetching or decoding), wrapped in StorageError
//   - Internal errors (page map and offsets disagree, row math underflow), wrapped in InternalError
//
// Exhaustion of an iterator or a search buffer is never reported as an error.
package errs

import (
	"errors"
	"fmt"
)

// Configuration errors.
var (
	ErrInvalidQuery      = errors.New("invalid query")
	ErrInvalidAlgorithm  = errors.New("invalid search algorithm")
	ErrInvalidAccession  = errors.New("invalid accession")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrInvalidFragmentID = errors.New("invalid fragment identifier")
)

// Lookup errors.
var (
	ErrNotFound             = errors.New("accession not found")
	ErrUnsupported          = errors.New("unsupported archive")
	ErrRemoteAccessDisabled = errors.New("remote repository access is disabled")
	ErrColumnNotFound       = errors.New("column not found")
	ErrRowOutOfRange        = errors.New("row out of range")
)

// Format and lifetime errors.
var (
	ErrInvalidHeaderSize  = errors.New("invalid header size")
	ErrInvalidMagicNumber = errors.New("invalid magic number")
	ErrInvalidHeaderFlags = errors.New("invalid header flags")
	ErrInvalidEntrySize   = errors.New("invalid index entry size")
	ErrChecksumMismatch   = errors.New("checksum mismatch")
	ErrInvalidLayout      = errors.New("invalid fragment layout")
	ErrBlobReleased       = errors.New("blob is released or uninitialized")
	ErrWriterFinished     = errors.New("writer already finished")
	ErrNoRowsAdded        = errors.New("no rows added")
	ErrCorrupted          = errors.New("archive corrupted")
)

// Kind classifies an error for reporting and isolation decisions.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindConfig
	KindNotFound
	KindStorage
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindNotFound:
		return "not-found"
	case KindStorage:
		return "storage"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// StorageError reports a failed storage operation together with its cause.
type StorageError struct {
	Op  string // failing operation, e.g. "fetch blob"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Storage wraps err as a StorageError. A nil err returns nil.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}

	var se *StorageError
	if errors.As(err, &se) && se.Op == op {
		return err
	}

	return &StorageError{Op: op, Err: err}
}

// InternalError reports a contract breach between a blob and its page map or layout.
// It always unwraps to ErrCorrupted.
type InternalError struct {
	Op     string
	Detail string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal: %s: %s", e.Op, e.Detail)
}

func (e *InternalError) Unwrap() error {
	return ErrCorrupted
}

// Internal builds an InternalError with a formatted detail message.
func Internal(op string, format string, args ...any) error {
	return &InternalError{Op: op, Detail: fmt.Sprintf(format, args...)}
}

// KindOf classifies err. Internal errors take precedence over storage errors
// because a corrupted payload is often discovered during a fetch.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var ie *InternalError
	switch {
	case errors.As(err, &ie), errors.Is(err, ErrCorrupted):
		return KindInternal
	case errors.Is(err, ErrInvalidQuery), errors.Is(err, ErrInvalidAlgorithm),
		errors.Is(err, ErrInvalidAccession), errors.Is(err, ErrInvalidConfig),
		errors.Is(err, ErrInvalidFragmentID):
		return KindConfig
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrColumnNotFound),
		errors.Is(err, ErrRowOutOfRange), errors.Is(err, ErrRemoteAccessDisabled),
		errors.Is(err, ErrUnsupported):
		return KindNotFound
	}

	var se *StorageError
	if errors.As(err, &se) {
		return KindStorage
	}

	return KindUnknown
}
