package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"testing/iotest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// newTestMinio connects to the server named by TEST_MINIO_ENDPOINT, e.g. a
// local `minio server` with the default minioadmin credentials.
func newTestMinio(t *testing.T) *MinioStorage {
	t.Helper()
	endpoint := os.Getenv("TEST_MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("TEST_MINIO_ENDPOINT not set")
	}
	access := os.Getenv("TEST_MINIO_ACCESS_KEY")
	if access == "" {
		access = "minioadmin"
	}
	secret := os.Getenv("TEST_MINIO_SECRET_KEY")
	if secret == "" {
		secret = "minioadmin"
	}

	s, err := NewMinioStorage(context.Background(), MinioOptions{
		Endpoint:  endpoint,
		AccessKey: access,
		SecretKey: secret,
		Bucket:    "filedrop-test-" + uuid.NewString()[:8],
		Logger:    zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	return s
}

func TestMinioStorage_Lifecycle(t *testing.T) {
	s := newTestMinio(t)
	ctx := context.Background()

	obj, err := s.Put(ctx, "a-01.txt", strings.NewReader("hello"), 5, "text/plain")
	require.NoError(t, err)
	assert.Equal(t, int64(5), obj.Size)

	_, err = s.Put(ctx, "a-01.txt", strings.NewReader("again"), 5, "")
	assert.ErrorIs(t, err, ErrAlreadyExists)

	rc, got, err := s.Get(ctx, "a-01.txt")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, "text/plain", got.ContentType)

	objects, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, objects, 1)

	require.NoError(t, s.Remove(ctx, "a-01.txt"))
	assert.ErrorIs(t, s.Remove(ctx, "a-01.txt"), ErrNotFound)
	_, _, err = s.Get(ctx, "a-01.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMinioStorage_AbortedPutLeavesNothing(t *testing.T) {
	s := newTestMinio(t)
	ctx := context.Background()

	body := io.MultiReader(strings.NewReader("partial"), iotest.ErrReader(io.ErrUnexpectedEOF))
	_, err := s.Put(ctx, "b-02.bin", body, -1, "")
	var srcErr *SourceError
	require.True(t, errors.As(err, &srcErr), "got %v", err)

	_, err = s.Stat(ctx, "b-02.bin")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMinioStorage_ConcurrentRemove(t *testing.T) {
	s := newTestMinio(t)
	ctx := context.Background()
	_, err := s.Put(ctx, "c-03.txt", strings.NewReader("x"), 1, "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- s.Remove(ctx, "c-03.txt")
		}()
	}
	wg.Wait()
	close(results)

	var ok, notFound int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrNotFound):
			notFound++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, notFound)
}

func TestMinioStorage_RejectsUnsafeIDs(t *testing.T) {
	s := &MinioStorage{}
	_, err := s.Stat(context.Background(), "../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidName)
	assert.ErrorIs(t, s.Remove(context.Background(), "a/b"), ErrInvalidName)
}
