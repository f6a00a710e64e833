package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/fragscan/errs"
	"github.com/arloliu/fragscan/format"
	"github.com/arloliu/fragscan/internal/testutil"
)

// mockS3 serves objects from memory and counts range requests.
type mockS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	gets    int
	headErr error
}

func newMockS3() *mockS3 {
	return &mockS3{objects: map[string][]byte{}}
}

func (m *mockS3) put(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
}

func (m *mockS3) HeadObject(_ context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.headErr != nil {
		return nil, m.headErr
	}

	data, ok := m.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NotFound{}
	}

	return &s3.HeadObjectOutput{ContentLength: aws.Int64(int64(len(data)))}, nil
}

func (m *mockS3) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gets++
	data, ok := m.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}

	var start, end int64
	if _, err := fmt.Sscanf(aws.ToString(params.Range), "bytes=%d-%d", &start, &end); err != nil {
		return nil, err
	}
	if start >= int64(len(data)) {
		return nil, &smithy.GenericAPIError{Code: "InvalidRange"}
	}
	end = min(end+1, int64(len(data)))

	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data[start:end]))}, nil
}

func TestValidateAccession(t *testing.T) {
	tests := []struct {
		accession string
		valid     bool
	}{
		{"SRR000001", true},
		{"data/SRR000001.fsar", true},
		{"", false},
		{"SRR 000001", false},
		{"SRR\n01", false},
		{"../SRR000001", false},
		{"data/../../x", false},
	}

	for _, tt := range tests {
		t.Run(tt.accession, func(t *testing.T) {
			err := ValidateAccession(tt.accession)
			if tt.valid {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, errs.ErrInvalidAccession)
			require.Equal(t, errs.KindConfig, errs.KindOf(err))
		})
	}
}

func TestLocal(t *testing.T) {
	ctx := context.Background()
	empty := t.TempDir()
	dir := t.TempDir()
	path := testutil.WriteRun(t, dir, format.CompressionNone)

	repo := NewLocal(empty, dir)

	coll, err := repo.Open(ctx, testutil.Accession)
	require.NoError(t, err)
	require.Equal(t, testutil.Accession, coll.Accession())
	require.Equal(t, uint64(testutil.RunRows), coll.RowCount())
	require.NoError(t, coll.Close())

	// a path is accepted as-is and named after its file
	coll, err = NewLocal().Open(ctx, path)
	require.NoError(t, err)
	require.Equal(t, testutil.Accession, coll.Accession())
	require.NoError(t, coll.Close())

	_, err = repo.Open(ctx, "SRR999999")
	require.ErrorIs(t, err, errs.ErrNotFound)

	_, err = repo.Open(ctx, filepath.Join(dir, "missing.fsar"))
	require.ErrorIs(t, err, errs.ErrNotFound)

	_, err = repo.Open(ctx, "")
	require.ErrorIs(t, err, errs.ErrInvalidAccession)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = repo.Open(cancelled, testutil.Accession)
	require.ErrorIs(t, err, context.Canceled)
}

func TestLocalUnsupported(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "JUNK.fsar"), []byte("not an archive at all, just text"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "DIR.fsar"), 0o700))

	repo := NewLocal(dir)

	_, err := repo.Open(context.Background(), "JUNK")
	require.ErrorIs(t, err, errs.ErrUnsupported)

	_, err = repo.Open(context.Background(), "DIR")
	require.ErrorIs(t, err, errs.ErrUnsupported)
}

func TestS3(t *testing.T) {
	ctx := context.Background()
	data, err := os.ReadFile(testutil.WriteRun(t, t.TempDir(), format.CompressionS2))
	require.NoError(t, err)

	client := newMockS3()
	client.put("runs/SRR000001.fsar", data)

	repo, err := NewS3(client, S3Config{Bucket: "archives", Prefix: "runs"})
	require.NoError(t, err)
	require.Equal(t, "runs/SRR000001.fsar", repo.Key(testutil.Accession))

	coll, err := repo.Open(ctx, testutil.Accession)
	require.NoError(t, err)
	defer coll.Close()

	require.Equal(t, testutil.Accession, coll.Accession())
	require.Equal(t, 38, coll.BlobCount())

	cur, err := coll.OpenCursor("READ")
	require.NoError(t, err)

	blob, err := cur.FetchBlob(1)
	require.NoError(t, err)
	size, err := blob.Size()
	require.NoError(t, err)
	require.Equal(t, 1080, size)
	blob.Release()

	client.mu.Lock()
	gets := client.gets
	client.mu.Unlock()
	require.Positive(t, gets)

	_, err = repo.Open(ctx, "SRR999999")
	require.ErrorIs(t, err, errs.ErrNotFound)

	_, err = repo.Open(ctx, "runs/SRR000001.fsar")
	require.ErrorIs(t, err, errs.ErrInvalidAccession)

	client.headErr = errors.New("connection reset")
	_, err = repo.Open(ctx, testutil.Accession)
	require.Equal(t, errs.KindStorage, errs.KindOf(err))
}

func TestNewS3Validation(t *testing.T) {
	_, err := NewS3(nil, S3Config{Bucket: "b"})
	require.ErrorIs(t, err, errs.ErrInvalidConfig)

	_, err = NewS3(newMockS3(), S3Config{})
	require.ErrorIs(t, err, errs.ErrInvalidConfig)

	for prefix, want := range map[string]string{"": "", "a": "a/", "a/": "a/", "a/b": "a/b/"} {
		repo, err := NewS3(newMockS3(), S3Config{Bucket: "b", Prefix: prefix, Extension: ".x"})
		require.NoError(t, err)
		require.Equal(t, want+"ACC.x", repo.Key("ACC"))
	}
}

func TestIsNotFound(t *testing.T) {
	require.True(t, isNotFound(&types.NoSuchKey{}))
	require.True(t, isNotFound(&types.NoSuchBucket{}))
	require.True(t, isNotFound(fmt.Errorf("head: %w", &types.NotFound{})))
	require.True(t, isNotFound(&smithy.GenericAPIError{Code: "404"}))
	require.False(t, isNotFound(&smithy.GenericAPIError{Code: "AccessDenied"}))
	require.False(t, isNotFound(errors.New("boom")))
}

func TestChain(t *testing.T) {
	ctx := context.Background()
	localDir := t.TempDir()
	testutil.WriteReference(t, localDir)

	data, err := os.ReadFile(testutil.WriteRun(t, t.TempDir(), format.CompressionZstd))
	require.NoError(t, err)
	client := newMockS3()
	client.put("SRR000001.fsar", data)
	remote, err := NewS3(client, S3Config{Bucket: "archives"})
	require.NoError(t, err)

	tests := []struct {
		name      string
		chain     *Chain
		accession string
		wantErr   error
	}{
		{name: "local hit", chain: &Chain{Local: NewLocal(localDir)}, accession: testutil.ReferenceAccession},
		{name: "local hit ignores remote switch", chain: &Chain{Local: NewLocal(localDir), Remote: remote}, accession: testutil.ReferenceAccession},
		{name: "remote hit", chain: &Chain{Local: NewLocal(localDir), Remote: remote, RemoteEnabled: true}, accession: testutil.Accession},
		{name: "remote disabled", chain: &Chain{Local: NewLocal(localDir), Remote: remote}, accession: testutil.Accession, wantErr: errs.ErrRemoteAccessDisabled},
		{name: "no remote", chain: &Chain{Local: NewLocal(localDir)}, accession: testutil.Accession, wantErr: errs.ErrNotFound},
		{name: "unknown everywhere", chain: &Chain{Local: NewLocal(localDir), Remote: remote, RemoteEnabled: true}, accession: "SRR999999", wantErr: errs.ErrNotFound},
		{name: "missing path stays local", chain: &Chain{Local: NewLocal(localDir), Remote: remote, RemoteEnabled: true}, accession: "x/SRR000001.fsar", wantErr: errs.ErrNotFound},
		{name: "invalid accession", chain: &Chain{Remote: remote, RemoteEnabled: true}, accession: "a b", wantErr: errs.ErrInvalidAccession},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coll, err := tt.chain.Open(ctx, tt.accession)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.accession, coll.Accession())
			require.NoError(t, coll.Close())
		})
	}
}
