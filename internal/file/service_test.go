package file

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"testing/iotest"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/filedrop/service/internal/audit"
	"github.com/filedrop/service/internal/metrics"
	"github.com/filedrop/service/internal/naming"
	"github.com/filedrop/service/internal/storage"
)

type recordingRecorder struct {
	mu     sync.Mutex
	events []audit.Event
	err    error
}

func (r *recordingRecorder) Record(_ context.Context, e audit.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *recordingRecorder) kinds() []audit.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]audit.Kind, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

type testEnv struct {
	svc      *Service
	store    *storage.DiskStorage
	fs       afero.Fs
	recorder *recordingRecorder
}

func newTestEnv(t *testing.T, maxSize int64, names *naming.Generator) *testEnv {
	t.Helper()
	fs := afero.NewMemMapFs()
	store, err := storage.NewDiskStorage(fs, "/srv/file")
	require.NoError(t, err)
	if names == nil {
		names = naming.NewGenerator()
	}
	rec := &recordingRecorder{}
	svc := NewService(store, names, Options{
		MaxUploadSize: maxSize,
		Recorder:      rec,
		Metrics:       metrics.New(),
		Logger:        zaptest.NewLogger(t),
	})
	return &testEnv{svc: svc, store: store, fs: fs, recorder: rec}
}

func (e *testEnv) assertEmpty(t *testing.T) {
	t.Helper()
	objects, err := e.store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, objects)

	partials, err := afero.ReadDir(e.fs, "/srv/file/.partial")
	require.NoError(t, err)
	assert.Empty(t, partials)
}

func TestService_UploadRoundTrip(t *testing.T) {
	env := newTestEnv(t, 10<<20, nil)
	ctx := context.Background()
	content := []byte("the quick brown fox jumps over the lazy dog")

	stored, err := env.svc.Upload(ctx, UploadInput{
		OriginalName: "notes.TXT",
		Body:         bytes.NewReader(content),
		DeclaredSize: int64(len(content)),
	})
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(stored.ID, ".TXT"), stored.ID)
	assert.Equal(t, ".TXT", stored.Extension)
	assert.Equal(t, "notes.TXT", stored.OriginalName)
	assert.Equal(t, int64(len(content)), stored.SizeBytes)
	assert.WithinDuration(t, time.Now(), stored.CreatedAt, time.Minute)

	rc, obj, err := env.svc.Open(ctx, stored.ID)
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, stored.ID, obj.ID)

	assert.Equal(t, []audit.Kind{audit.KindUploaded}, env.recorder.kinds())
}

func TestService_UploadIDsAreUnique(t *testing.T) {
	env := newTestEnv(t, 0, nil)
	ctx := context.Background()

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		stored, err := env.svc.Upload(ctx, UploadInput{
			OriginalName: "a.bin",
			Body:         strings.NewReader("x"),
			DeclaredSize: -1,
		})
		require.NoError(t, err)
		_, dup := seen[stored.ID]
		require.False(t, dup, "duplicate id %s", stored.ID)
		seen[stored.ID] = struct{}{}
	}

	objects, err := env.store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, objects, 100)
}

func TestService_UploadRegeneratesOnCollision(t *testing.T) {
	first := bytes.Repeat([]byte{0xaa}, naming.RandomBytes)
	second := bytes.Repeat([]byte{0xbb}, naming.RandomBytes)
	random := bytes.NewReader(append(append(append([]byte{}, first...), first...), second...))
	fixed := time.UnixMilli(1_700_000_000_000)
	names := naming.NewGeneratorWith(random, func() time.Time { return fixed })

	env := newTestEnv(t, 0, names)
	ctx := context.Background()

	a, err := env.svc.Upload(ctx, UploadInput{OriginalName: "a.txt", Body: strings.NewReader("one"), DeclaredSize: -1})
	require.NoError(t, err)
	b, err := env.svc.Upload(ctx, UploadInput{OriginalName: "b.txt", Body: strings.NewReader("two"), DeclaredSize: -1})
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Contains(t, a.ID, "aaaaaaaaaaaaaaaa")
	assert.Contains(t, b.ID, "bbbbbbbbbbbbbbbb")

	rc, _, err := env.svc.Open(ctx, a.ID)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))
}

func TestService_UploadTooLarge(t *testing.T) {
	const limit = 4096

	tests := []struct {
		name     string
		size     int
		declared int64
	}{
		{name: "declared size over limit", size: limit + 1, declared: limit + 1},
		{name: "undeclared stream over limit", size: limit * 3, declared: -1},
		{name: "one byte over limit", size: limit + 1, declared: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, limit, nil)
			_, err := env.svc.Upload(context.Background(), UploadInput{
				OriginalName: "big.bin",
				Body:         bytes.NewReader(make([]byte, tt.size)),
				DeclaredSize: tt.declared,
			})
			require.ErrorIs(t, err, ErrTooLarge)
			env.assertEmpty(t)
			assert.Empty(t, env.recorder.kinds())
		})
	}
}

func TestService_UploadAtLimit(t *testing.T) {
	const limit = 4096
	env := newTestEnv(t, limit, nil)

	stored, err := env.svc.Upload(context.Background(), UploadInput{
		OriginalName: "exact.bin",
		Body:         bytes.NewReader(make([]byte, limit)),
		DeclaredSize: -1,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(limit), stored.SizeBytes)
}

func TestService_UploadAborted(t *testing.T) {
	env := newTestEnv(t, 10<<20, nil)

	body := io.MultiReader(
		bytes.NewReader(make([]byte, 8192)),
		iotest.ErrReader(io.ErrUnexpectedEOF),
	)
	_, err := env.svc.Upload(context.Background(), UploadInput{
		OriginalName: "movie.mkv",
		Body:         body,
		DeclaredSize: -1,
	})
	require.ErrorIs(t, err, ErrUpstreamAborted)
	env.assertEmpty(t)
}

func TestService_UploadCancelled(t *testing.T) {
	env := newTestEnv(t, 10<<20, nil)
	ctx, cancel := context.WithCancel(context.Background())

	body := io.MultiReader(
		bytes.NewReader(make([]byte, sniffLen)),
		readerFunc(func(p []byte) (int, error) {
			cancel()
			return copy(p, "more"), nil
		}),
		bytes.NewReader(make([]byte, 1<<16)),
	)
	_, err := env.svc.Upload(ctx, UploadInput{OriginalName: "x.bin", Body: body, DeclaredSize: -1})
	require.ErrorIs(t, err, ErrUpstreamAborted)
	env.assertEmpty(t)
}

func TestService_UploadInvalidName(t *testing.T) {
	env := newTestEnv(t, 0, nil)

	for _, name := range []string{"../../etc/passwd", `..\boot.ini`, "/abs/file.txt", "", "bad.ex t"} {
		_, err := env.svc.Upload(context.Background(), UploadInput{
			OriginalName: name,
			Body:         strings.NewReader("data"),
			DeclaredSize: -1,
		})
		assert.ErrorIs(t, err, storage.ErrInvalidName, name)
	}
	env.assertEmpty(t)
}

func TestService_UploadDetectsContentType(t *testing.T) {
	env := newTestEnv(t, 0, nil)
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

	stored, err := env.svc.Upload(context.Background(), UploadInput{
		OriginalName: "pixel.dat",
		Body:         bytes.NewReader(png),
		DeclaredSize: -1,
	})
	require.NoError(t, err)
	assert.Equal(t, "image/png", stored.ContentType)

	stored, err = env.svc.Upload(context.Background(), UploadInput{
		OriginalName: "page.css",
		Body:         strings.NewReader("body { color: red; }"),
		DeclaredSize: -1,
	})
	require.NoError(t, err)
	assert.Contains(t, stored.ContentType, "text/css")
}

func TestService_DeleteFinality(t *testing.T) {
	env := newTestEnv(t, 0, nil)
	ctx := context.Background()

	stored, err := env.svc.Upload(ctx, UploadInput{OriginalName: "x.txt", Body: strings.NewReader("bye"), DeclaredSize: -1})
	require.NoError(t, err)

	require.NoError(t, env.svc.Delete(ctx, stored.ID))

	_, _, err = env.svc.Open(ctx, stored.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = env.svc.Stat(ctx, stored.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, env.svc.Delete(ctx, stored.ID), storage.ErrNotFound)

	assert.Equal(t, []audit.Kind{audit.KindUploaded, audit.KindDeleted}, env.recorder.kinds())
}

func TestService_RejectsTraversalOnRead(t *testing.T) {
	env := newTestEnv(t, 0, nil)
	ctx := context.Background()

	for _, id := range []string{"../etc/passwd", "/etc/passwd", "..", "a/b"} {
		_, _, err := env.svc.Open(ctx, id)
		assert.ErrorIs(t, err, storage.ErrInvalidName, id)
		assert.ErrorIs(t, env.svc.Delete(ctx, id), storage.ErrInvalidName, id)
	}
}

func TestService_AuditFailureDoesNotFailUpload(t *testing.T) {
	env := newTestEnv(t, 0, nil)
	env.recorder.err = errors.New("database down")

	_, err := env.svc.Upload(context.Background(), UploadInput{OriginalName: "x.txt", Body: strings.NewReader("x"), DeclaredSize: -1})
	assert.NoError(t, err)
}

type failingStore struct {
	storage.Storage
}

func (failingStore) Stat(context.Context, string) (storage.Object, error) {
	return storage.Object{}, storage.ErrNotFound
}

func (failingStore) Put(context.Context, string, io.Reader, int64, string) (storage.Object, error) {
	return storage.Object{}, errors.New("no space left on device")
}

func TestService_UploadStorageError(t *testing.T) {
	svc := NewService(failingStore{}, naming.NewGenerator(), Options{Logger: zaptest.NewLogger(t)})

	_, err := svc.Upload(context.Background(), UploadInput{OriginalName: "x.txt", Body: strings.NewReader("x"), DeclaredSize: -1})
	require.ErrorIs(t, err, ErrStorage)
	assert.NotErrorIs(t, err, ErrUpstreamAborted)
}

func TestNewUploadResponse(t *testing.T) {
	created := time.Date(2026, 10, 16, 9, 30, 0, 123_000_000, time.UTC)
	resp := NewUploadResponse(&StoredFile{
		ID:           "abc-0011223344556677.png",
		OriginalName: "cat.png",
		SizeBytes:    99,
		Extension:    ".png",
		CreatedAt:    created,
	}, "http://files.example.com/")

	assert.Equal(t, "abc-0011223344556677.png", resp.FileDetails.FileName)
	assert.Equal(t, "cat.png", resp.FileDetails.OriginalName)
	assert.Equal(t, int64(99), resp.FileDetails.Size)
	assert.Equal(t, ".png", resp.FileDetails.Extension)
	assert.Equal(t, "2026-10-16T09:30:00.123Z", resp.FileDetails.UploadTime)
	assert.Equal(t, "http://files.example.com/file/abc-0011223344556677.png", resp.FileURL)
	assert.Equal(t, "http://files.example.com/download/abc-0011223344556677.png", resp.DownloadURL)
	assert.Equal(t, "http://files.example.com/delete/abc-0011223344556677.png", resp.DeleteURL)
	assert.Equal(t, "File uploaded successfully", resp.Message)
}

type readerFunc func(p []byte) (int, error)

func (f readerFunc) Read(p []byte) (int, error) { return f(p) }
