// Package file handles the upload, serve, download and delete lifecycle of
// stored files.
package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/filedrop/service/internal/audit"
	"github.com/filedrop/service/internal/metrics"
	"github.com/filedrop/service/internal/naming"
	"github.com/filedrop/service/internal/storage"
)

// ErrTooLarge is returned when an upload exceeds the configured maximum size.
var ErrTooLarge = errors.New("file exceeds maximum upload size")

// ErrUpstreamAborted is returned when the client stream fails mid-upload.
var ErrUpstreamAborted = errors.New("upload aborted")

// ErrStorage wraps backend failures while writing, reading or removing content.
var ErrStorage = errors.New("storage error")

const (
	// maxNameAttempts bounds the collision-retry loop.
	maxNameAttempts = 5
	// sniffLen is how much of the stream content detection looks at.
	sniffLen = 3072
)

// StoredFile describes a successfully committed upload.
type StoredFile struct {
	ID           string
	OriginalName string
	SizeBytes    int64
	Extension    string
	ContentType  string
	CreatedAt    time.Time
}

// UploadInput is one incoming file. DeclaredSize is -1 when unknown.
type UploadInput struct {
	OriginalName string
	Body         io.Reader
	DeclaredSize int64
}

// Options configures a Service. Zero values select sensible defaults.
type Options struct {
	// MaxUploadSize caps the stored size in bytes. 0 disables the limit.
	MaxUploadSize int64
	Recorder      audit.Recorder
	Metrics       *metrics.Metrics
	Logger        *zap.Logger
}

// Service contains the business logic for the file lifecycle.
type Service struct {
	store    storage.Storage
	names    *naming.Generator
	maxSize  int64
	recorder audit.Recorder
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a new file Service.
func NewService(store storage.Storage, names *naming.Generator, opts Options) *Service {
	s := &Service{
		store:    store,
		names:    names,
		maxSize:  opts.MaxUploadSize,
		recorder: opts.Recorder,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		now:      time.Now,
	}
	if s.recorder == nil {
		s.recorder = audit.NopRecorder{}
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// MaxUploadSize returns the configured limit in bytes, 0 meaning unbounded.
func (s *Service) MaxUploadSize() int64 {
	return s.maxSize
}

// Upload validates in, allocates a fresh id and streams the content into the
// store. On any failure the store is left without a trace of the upload.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*StoredFile, error) {
	if in.Body == nil {
		return nil, fmt.Errorf("upload body is required")
	}
	if s.maxSize > 0 && in.DeclaredSize > s.maxSize {
		s.metrics.ObserveUpload(metrics.ResultTooLarge, 0)
		return nil, ErrTooLarge
	}

	ext, err := naming.Extension(in.OriginalName)
	if err != nil {
		s.metrics.ObserveUpload(metrics.ResultInvalid, 0)
		return nil, err
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(in.Body, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, s.uploadFailure(&storage.SourceError{Err: err})
	}
	head = head[:n]
	contentType := detectContentType(head, ext)

	var body io.Reader = io.MultiReader(bytes.NewReader(head), in.Body)
	if s.maxSize > 0 {
		body = &limitReader{r: body, remaining: s.maxSize}
	}

	declared := in.DeclaredSize
	if declared < 0 {
		declared = -1
	}

	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		id, err := s.names.Generate(in.OriginalName)
		if err != nil {
			if errors.Is(err, storage.ErrInvalidName) {
				s.metrics.ObserveUpload(metrics.ResultInvalid, 0)
				return nil, err
			}
			return nil, s.uploadFailure(err)
		}

		if _, err := s.store.Stat(ctx, id); err == nil {
			s.logger.Warn("generated id already taken, regenerating", zap.String("id", id))
			continue
		} else if !errors.Is(err, storage.ErrNotFound) {
			return nil, s.uploadFailure(err)
		}

		obj, err := s.store.Put(ctx, id, body, declared, contentType)
		if errors.Is(err, storage.ErrAlreadyExists) {
			s.logger.Warn("id claimed concurrently, regenerating", zap.String("id", id))
			continue
		}
		if err != nil {
			return nil, s.uploadFailure(err)
		}

		createdAt := obj.ModTime
		if createdAt.IsZero() {
			createdAt = s.now()
		}
		stored := &StoredFile{
			ID:           id,
			OriginalName: in.OriginalName,
			SizeBytes:    obj.Size,
			Extension:    ext,
			ContentType:  contentType,
			CreatedAt:    createdAt.UTC(),
		}

		s.metrics.ObserveUpload(metrics.ResultOK, obj.Size)
		s.logger.Info("file uploaded",
			zap.String("id", id),
			zap.String("original_name", in.OriginalName),
			zap.String("size", humanize.IBytes(uint64(obj.Size))),
			zap.String("content_type", contentType))

		e := audit.NewEvent(audit.KindUploaded, id, obj.Size)
		e.OriginalName = in.OriginalName
		s.record(ctx, e)
		return stored, nil
	}

	return nil, s.uploadFailure(fmt.Errorf("no unused id after %d attempts", maxNameAttempts))
}

// Open returns the content and metadata of id.
func (s *Service) Open(ctx context.Context, id string) (io.ReadSeekCloser, storage.Object, error) {
	rc, obj, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, storage.Object{}, classify(err)
	}
	if obj.ContentType == "" {
		obj.ContentType = mime.TypeByExtension(extensionOf(id))
	}
	return rc, obj, nil
}

// Stat returns metadata for id.
func (s *Service) Stat(ctx context.Context, id string) (storage.Object, error) {
	obj, err := s.store.Stat(ctx, id)
	if err != nil {
		return storage.Object{}, classify(err)
	}
	return obj, nil
}

// Delete removes id. A second delete of the same id yields storage.ErrNotFound.
func (s *Service) Delete(ctx context.Context, id string) error {
	obj, statErr := s.store.Stat(ctx, id)

	if err := s.store.Remove(ctx, id); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			s.metrics.ObserveDelete(metrics.ResultNotFound)
		case errors.Is(err, storage.ErrInvalidName):
			s.metrics.ObserveDelete(metrics.ResultInvalid)
		default:
			s.metrics.ObserveDelete(metrics.ResultStorageFail)
		}
		return classify(err)
	}

	s.metrics.ObserveDelete(metrics.ResultOK)
	s.logger.Info("file deleted", zap.String("id", id))

	var size int64
	if statErr == nil {
		size = obj.Size
	}
	s.record(ctx, audit.NewEvent(audit.KindDeleted, id, size))
	return nil
}

// uploadFailure maps a failed upload onto the error taxonomy and counts it.
func (s *Service) uploadFailure(err error) error {
	var maxBytesErr *http.MaxBytesError
	var srcErr *storage.SourceError
	switch {
	case errors.Is(err, ErrTooLarge), errors.As(err, &maxBytesErr):
		s.metrics.ObserveUpload(metrics.ResultTooLarge, 0)
		return ErrTooLarge
	case errors.Is(err, storage.ErrInvalidName):
		s.metrics.ObserveUpload(metrics.ResultInvalid, 0)
		return err
	case errors.As(err, &srcErr), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.metrics.ObserveUpload(metrics.ResultAborted, 0)
		s.logger.Info("upload aborted", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrUpstreamAborted, err)
	default:
		s.metrics.ObserveUpload(metrics.ResultStorageFail, 0)
		s.logger.Error("upload failed", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
}

func (s *Service) record(ctx context.Context, e audit.Event) {
	if err := s.recorder.Record(context.WithoutCancel(ctx), e); err != nil {
		s.logger.Warn("record audit event",
			zap.String("kind", string(e.Kind)),
			zap.String("id", e.FileID),
			zap.Error(err))
	}
}

// classify keeps the store's sentinels and tags everything else as ErrStorage.
func classify(err error) error {
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidName) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}

// detectContentType sniffs head and falls back to the extension when the
// content alone is not conclusive.
func detectContentType(head []byte, ext string) string {
	detected := mimetype.Detect(head)
	if detected.Is("application/octet-stream") || detected.Is("text/plain") {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return byExt
		}
	}
	return detected.String()
}

func extensionOf(id string) string {
	ext, err := naming.Extension(id)
	if err != nil {
		return ""
	}
	return ext
}

// limitReader fails with ErrTooLarge as soon as more than remaining bytes
// have been read.
type limitReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, ErrTooLarge
	}
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n + int(l.remaining), ErrTooLarge
	}
	return n, err
}
