package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/filedrop/service/internal/storage"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		want Type
	}{
		{"a.png", TypeImage},
		{"a.JPG", TypeImage},
		{"a.jpeg", TypeImage},
		{"a.gif", TypeImage},
		{"a.mp4", TypeVideo},
		{"a.avi", TypeVideo},
		{"a.mkv", TypeVideo},
		{"a.doc", TypeDocument},
		{"a.docx", TypeDocument},
		{"a.TXT", TypeDocument},
		{"a.pdf", TypePDF},
		{"a.xyz", TypeOther},
		{"noext", TypeOther},
		{"archive.tar.gz", TypeOther},
		{"photo.png.exe", TypeOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.name))
		})
	}
}

func TestFormatMegabytes(t *testing.T) {
	assert.Equal(t, "0.00 MB", FormatMegabytes(0))
	assert.Equal(t, "1.00 MB", FormatMegabytes(1<<20))
	assert.Equal(t, "1.50 MB", FormatMegabytes(3<<19))
	assert.Equal(t, "0.01 MB", FormatMegabytes(10_000))
}

func seededStore(t *testing.T, files map[string]string) storage.Storage {
	t.Helper()
	store, err := storage.NewDiskStorage(afero.NewMemMapFs(), "/srv/file")
	require.NoError(t, err)
	for id, content := range files {
		_, err := store.Put(context.Background(), id, strings.NewReader(content), int64(len(content)), "")
		require.NoError(t, err)
	}
	return store
}

func TestService_ListAllAndUsageAgree(t *testing.T) {
	store := seededStore(t, map[string]string{
		"b-01.pdf":  "%PDF-1.7",
		"a-02.png":  "png bytes",
		"c-03.mkv":  "video",
		"d-04.xyz":  "?",
		"e-05.docx": "doc",
	})
	svc := NewService(store)
	ctx := context.Background()

	entries, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Name: "a-02.png", Type: TypeImage},
		{Name: "b-01.pdf", Type: TypePDF},
		{Name: "c-03.mkv", Type: TypeVideo},
		{Name: "d-04.xyz", Type: TypeOther},
		{Name: "e-05.docx", Type: TypeDocument},
	}, entries)

	usage, err := svc.UsageSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(entries), usage.TotalFiles)
	assert.Equal(t, int64(len("%PDF-1.7")+len("png bytes")+len("video")+len("?")+len("doc")), usage.TotalSizeBytes)
}

func TestService_DoesNotMutate(t *testing.T) {
	store := seededStore(t, map[string]string{"a.txt": "x"})
	svc := NewService(store)

	for i := 0; i < 3; i++ {
		_, err := svc.ListAll(context.Background())
		require.NoError(t, err)
		_, err = svc.UsageSummary(context.Background())
		require.NoError(t, err)
	}

	obj, err := store.Stat(context.Background(), "a.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(1), obj.Size)
}

type brokenStore struct {
	storage.Storage
}

func (brokenStore) List(context.Context) ([]storage.Object, error) {
	return nil, errors.New("io error")
}

func TestHandler(t *testing.T) {
	store := seededStore(t, map[string]string{
		"a.png": strings.Repeat("x", 1<<20),
		"b.txt": strings.Repeat("y", 1<<19),
	})
	h := NewHandler(NewService(store), zaptest.NewLogger(t))

	rec := httptest.NewRecorder()
	h.Library(rec, httptest.NewRequest(http.MethodGet, "/library", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"name":"a.png","type":"image"},{"name":"b.txt","type":"document"}]`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.FileInfo(rec, httptest.NewRequest(http.MethodGet, "/file-info", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"totalFiles":2,"totalSize":"1.50 MB"}`, rec.Body.String())
}

func TestHandler_EmptyLibrary(t *testing.T) {
	h := NewHandler(NewService(seededStore(t, nil)), zaptest.NewLogger(t))

	rec := httptest.NewRecorder()
	h.Library(rec, httptest.NewRequest(http.MethodGet, "/library", nil))
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandler_ListFailure(t *testing.T) {
	h := NewHandler(NewService(brokenStore{}), zaptest.NewLogger(t))

	rec := httptest.NewRecorder()
	h.Library(rec, httptest.NewRequest(http.MethodGet, "/library", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = httptest.NewRecorder()
	h.FileInfo(rec, httptest.NewRequest(http.MethodGet, "/file-info", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
