package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/arloliu/fragscan/archive"
	"github.com/arloliu/fragscan/errs"
)

// S3API is the subset of *s3.Client used by S3.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3Config locates archives in a bucket.
type S3Config struct {
	// Bucket is required.
	Bucket string
	// Prefix is prepended to every key; a trailing slash is added when missing.
	Prefix string
	// Extension is appended to the accession. Empty means DefaultExtension.
	Extension string
}

// S3 resolves accessions to archives stored in an S3-compatible bucket.
type S3 struct {
	client    S3API
	bucket    string
	prefix    string
	extension string
	opts      []archive.OpenOption
}

var _ Repository = (*S3)(nil)

// NewS3 creates an S3 repository. The client must be configured with credentials,
// region and endpoint, typically through config.LoadDefaultConfig.
func NewS3(client S3API, cfg S3Config, opts ...archive.OpenOption) (*S3, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: s3 client is required", errs.ErrInvalidConfig)
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: s3 bucket is required", errs.ErrInvalidConfig)
	}

	prefix := cfg.Prefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	ext := cfg.Extension
	if ext == "" {
		ext = DefaultExtension
	}

	return &S3{client: client, bucket: cfg.Bucket, prefix: prefix, extension: ext, opts: opts}, nil
}

// Key returns the object key of accession.
func (s *S3) Key(accession string) string {
	return s.prefix + accession + s.extension
}

// Open opens the archive of accession. Reads issued by the collection use ctx.
func (s *S3) Open(ctx context.Context, accession string) (*archive.Collection, error) {
	if err := ValidateAccession(accession); err != nil {
		return nil, err
	}
	if isPathForm(accession, s.extension) {
		return nil, fmt.Errorf("%w: %q is a path, not an accession", errs.ErrInvalidAccession, accession)
	}

	key := s.Key(accession)
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: s3://%s/%s", errs.ErrNotFound, s.bucket, key)
		}

		return nil, errs.Storage("head object", err)
	}

	size := aws.ToInt64(out.ContentLength)
	r := &s3ReaderAt{ctx: ctx, client: s.client, bucket: s.bucket, key: key}

	opts := append([]archive.OpenOption{archive.WithAccession(accession)}, s.opts...)

	return archive.Open(r, size, opts...)
}

// s3ReaderAt reads byte ranges of one object. It is safe for concurrent use.
type s3ReaderAt struct {
	ctx    context.Context //nolint: containedctx
	client S3API
	bucket string
	key    string
}

func (r *s3ReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.New("s3: negative offset")
	}
	if len(p) == 0 {
		return 0, nil
	}

	out, err := r.client.GetObject(r.ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", off, off+int64(len(p))-1)),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "InvalidRange" {
			return 0, io.EOF
		}

		return 0, fmt.Errorf("s3: range read %s: %w", r.key, err)
	}
	defer func() { _ = out.Body.Close() }()

	n, err := io.ReadFull(out.Body, p)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = io.EOF
	}

	return n, err
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "404":
			return true
		}
	}

	return false
}
