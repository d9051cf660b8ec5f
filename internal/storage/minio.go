package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MinioStorage implements Storage using a MinIO (or any S3-compatible) bucket.
// Each id is one object key at the bucket root.
//
// Create-only Put and the single-winner Remove are enforced per process only.
// Replicas sharing a bucket, or the sweep command running beside a server, can
// both see a Remove of the same id return nil.
type MinioStorage struct {
	client *minio.Client
	bucket string

	// reserved holds ids with a Put in flight.
	reserved sync.Map
	// removing holds ids with a Remove in flight so that concurrent removers
	// of the same id within this process see exactly one success.
	removing sync.Map
}

// MinioOptions carries the connection settings for NewMinioStorage.
type MinioOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Logger    *zap.Logger
}

// NewMinioStorage creates a MinIO client, ensures the bucket exists, and
// returns a ready-to-use MinioStorage.
func NewMinioStorage(ctx context.Context, opts MinioOptions) (*MinioStorage, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", opts.Bucket, err)
		}
		if opts.Logger != nil {
			opts.Logger.Info("created bucket", zap.String("bucket", opts.Bucket))
		}
	}

	return &MinioStorage{client: client, bucket: opts.Bucket}, nil
}

// Put streams r to the bucket under id. size may be -1 when unknown, in which
// case the client buffers parts. S3 only exposes an object once the upload
// completes, so an aborted stream leaves nothing behind.
func (s *MinioStorage) Put(ctx context.Context, id string, r io.Reader, size int64, contentType string) (Object, error) {
	if err := ValidateID(id); err != nil {
		return Object{}, err
	}
	if r == nil {
		return Object{}, fmt.Errorf("reader is required")
	}

	if _, loaded := s.reserved.LoadOrStore(id, struct{}{}); loaded {
		return Object{}, ErrAlreadyExists
	}
	defer s.reserved.Delete(id)

	if _, err := s.Stat(ctx, id); err == nil {
		return Object{}, ErrAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return Object{}, err
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	src := &sourceReader{r: r}
	info, err := s.client.PutObject(ctx, s.bucket, id, src, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		if src.err != nil {
			return Object{}, fmt.Errorf("put object %q: %w", id, src.err)
		}
		return Object{}, fmt.Errorf("put object %q: %w", id, err)
	}

	return Object{
		ID:          id,
		Size:        info.Size,
		ModTime:     info.LastModified,
		ContentType: contentType,
	}, nil
}

// Get opens the object stored under id. The returned *minio.Object supports
// seeking, so it can back ranged responses.
func (s *MinioStorage) Get(ctx context.Context, id string) (io.ReadSeekCloser, Object, error) {
	if err := ValidateID(id); err != nil {
		return nil, Object{}, err
	}

	obj, err := s.client.GetObject(ctx, s.bucket, id, minio.GetObjectOptions{})
	if err != nil {
		return nil, Object{}, fmt.Errorf("get object %q: %w", id, err)
	}
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		if isNoSuchKey(err) {
			return nil, Object{}, ErrNotFound
		}
		return nil, Object{}, fmt.Errorf("stat object %q: %w", id, err)
	}
	return obj, objectFromMinio(info), nil
}

// Stat returns metadata for id.
func (s *MinioStorage) Stat(ctx context.Context, id string) (Object, error) {
	if err := ValidateID(id); err != nil {
		return Object{}, err
	}

	info, err := s.client.StatObject(ctx, s.bucket, id, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return Object{}, ErrNotFound
		}
		return Object{}, fmt.Errorf("stat object %q: %w", id, err)
	}
	return objectFromMinio(info), nil
}

// Remove deletes the object at id. S3 deletes are idempotent, so existence is
// checked first and concurrent removers in this process are serialized per id.
func (s *MinioStorage) Remove(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}

	if _, loaded := s.removing.LoadOrStore(id, struct{}{}); loaded {
		return ErrNotFound
	}
	defer s.removing.Delete(id)

	if _, err := s.Stat(ctx, id); err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, id, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %q: %w", id, err)
	}
	return nil
}

// List enumerates the objects at the bucket root sorted by id.
func (s *MinioStorage) List(ctx context.Context) ([]Object, error) {
	var objects []Object
	for info := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{}) {
		if info.Err != nil {
			return nil, fmt.Errorf("list objects: %w", info.Err)
		}
		if ValidateID(info.Key) != nil {
			continue
		}
		objects = append(objects, objectFromMinio(info))
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].ID < objects[j].ID })
	return objects, nil
}

// Close is a no-op; the MinIO client holds no long-lived connections of its own.
func (s *MinioStorage) Close() error {
	return nil
}

func objectFromMinio(info minio.ObjectInfo) Object {
	return Object{
		ID:          info.Key,
		Size:        info.Size,
		ModTime:     info.LastModified,
		ContentType: info.ContentType,
	}
}

func isNoSuchKey(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}
