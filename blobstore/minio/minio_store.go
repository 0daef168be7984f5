package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/hupe1980/fieldsort/blobstore"
	"github.com/minio/minio-go/v7"
)

// snapshotContentType marks stored field snapshots.
const snapshotContentType = "application/vnd.fieldsort.snapshot"

// Option configures a Store.
type Option func(*Store)

// WithPartSize sets the multipart upload part size. Zero lets the client
// pick one from the object size.
func WithPartSize(n uint64) Option {
	return func(s *Store) {
		s.put.PartSize = n
	}
}

// WithUploadThreads sets the number of parallel part uploads.
func WithUploadThreads(n uint) Option {
	return func(s *Store) {
		s.put.NumThreads = n
	}
}

// WithContentMD5 sends a Content-MD5 header so the server verifies every
// snapshot it receives.
func WithContentMD5(enabled bool) Option {
	return func(s *Store) {
		s.put.SendContentMd5 = enabled
	}
}

// Store implements blobstore.Store for MinIO and S3-compatible storage.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
	put    minio.PutObjectOptions
}

var _ blobstore.Store = (*Store)(nil)

// NewStore creates a MinIO blob store. Blob names are stored under
// rootPrefix (e.g. "catalogs/products/"); a missing trailing slash is added.
func NewStore(client *minio.Client, bucket, rootPrefix string, opts ...Option) *Store {
	s := &Store{
		client: client,
		bucket: bucket,
		prefix: normalizePrefix(rootPrefix),
		put: minio.PutObjectOptions{
			ContentType:    snapshotContentType,
			SendContentMd5: true,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func normalizePrefix(p string) string {
	p = strings.TrimLeft(p, "/")
	if p != "" && !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}

func (s *Store) key(name string) string {
	return s.prefix + name
}

func isNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}

// Open stats the snapshot and returns a handle that reads it with ranged GETs.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)

	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("minio: open %s: %w", name, blobstore.ErrNotFound)
		}
		return nil, fmt.Errorf("minio: open %s: %w", name, err)
	}

	return &minioBlob{
		client: s.client,
		bucket: s.bucket,
		key:    key,
		size:   info.Size,
	}, nil
}

// Put uploads data as a single object, replacing any previous snapshot.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.key(name), bytes.NewReader(data), int64(len(data)), s.put)
	if err != nil {
		return fmt.Errorf("minio: put %s: %w", name, err)
	}
	return nil
}

// Delete removes a snapshot. Missing snapshots are ignored.
func (s *Store) Delete(ctx context.Context, name string) error {
	err := s.client.RemoveObject(ctx, s.bucket, s.key(name), minio.RemoveObjectOptions{})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("minio: delete %s: %w", name, err)
	}
	return nil
}

// List returns the sorted snapshot names starting with prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.key(prefix),
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("minio: list %q: %w", prefix, obj.Err)
		}
		if name := strings.TrimPrefix(obj.Key, s.prefix); name != "" {
			names = append(names, name)
		}
	}

	slices.Sort(names)
	return names, nil
}

type minioBlob struct {
	client *minio.Client
	bucket string
	key    string
	size   int64
}

func (b *minioBlob) Size() int64 {
	return b.size
}

func (b *minioBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if off < 0 || off >= b.size {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}

	end := min(off+int64(len(p)), b.size) - 1

	var opts minio.GetObjectOptions
	if err := opts.SetRange(off, end); err != nil {
		return 0, err
	}

	obj, err := b.client.GetObject(ctx, b.bucket, b.key, opts)
	if err != nil {
		return 0, err
	}
	defer obj.Close()

	n, err := io.ReadFull(obj, p[:end-off+1])
	switch {
	case errors.Is(err, io.ErrUnexpectedEOF):
		return n, io.EOF
	case err != nil:
		if isNotFound(err) {
			return n, fmt.Errorf("minio: read %s: %w", b.key, blobstore.ErrNotFound)
		}
		return n, err
	case n < len(p):
		return n, io.EOF
	}
	return n, nil
}

func (b *minioBlob) Close() error {
	return nil
}
