// Package storage defines the blob store that owns every uploaded file.
// Swap implementations by changing the concrete type injected at startup:
// DiskStorage keeps one flat directory, MinioStorage works with any
// S3-compatible provider.
package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotFound is returned when no content exists for an id.
var ErrNotFound = errors.New("file not found")

// ErrInvalidName is returned when an id or file name is unsafe to use as a path.
var ErrInvalidName = errors.New("invalid file name")

// ErrAlreadyExists is returned when Put targets an id that is already taken.
var ErrAlreadyExists = errors.New("file already exists")

// maxIDLength keeps ids below common filesystem name limits.
const maxIDLength = 200

// Object is the metadata of one stored file. All of it is derived from the
// backend at read time; nothing is persisted alongside the content.
type Object struct {
	ID          string    `json:"id"`
	Size        int64     `json:"size"`
	ModTime     time.Time `json:"modTime"`
	ContentType string    `json:"contentType,omitempty"`
}

// Storage is the interface for persisting and retrieving uploaded content.
type Storage interface {
	// Put streams r under id. It never overwrites: an existing id yields
	// ErrAlreadyExists. On failure no partial content remains visible.
	Put(ctx context.Context, id string, r io.Reader, size int64, contentType string) (Object, error)
	// Get opens the content stored under id.
	Get(ctx context.Context, id string) (io.ReadSeekCloser, Object, error)
	// Stat returns metadata for id without opening its content.
	Stat(ctx context.Context, id string) (Object, error)
	// Remove deletes id, returning ErrNotFound if it did not exist.
	Remove(ctx context.Context, id string) error
	// List enumerates current entries. Entries removed concurrently are skipped.
	List(ctx context.Context) ([]Object, error)
	// Close releases backend resources.
	Close() error
}

// SourceError marks a failure reading the caller's stream, as opposed to a
// failure writing to the backend.
type SourceError struct {
	Err error
}

func (e *SourceError) Error() string { return "read source: " + e.Err.Error() }

func (e *SourceError) Unwrap() error { return e.Err }

// sourceReader tags every non-EOF read error with SourceError and keeps the
// first one, for backends whose clients do not wrap reader errors.
type sourceReader struct {
	r   io.Reader
	err *SourceError
}

func (s *sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && err != io.EOF {
		if s.err == nil {
			s.err = &SourceError{Err: err}
		}
		return n, s.err
	}
	return n, err
}

// ValidateID reports whether id is a single, safe path element.
func ValidateID(id string) error {
	if id == "" || len(id) > maxIDLength {
		return ErrInvalidName
	}
	if id == "." || id == ".." || strings.HasPrefix(id, ".") {
		return ErrInvalidName
	}
	if strings.ContainsAny(id, `/\:`) || strings.ContainsRune(id, 0) || strings.Contains(id, "..") {
		return ErrInvalidName
	}
	if filepath.IsAbs(id) || filepath.Base(id) != id {
		return ErrInvalidName
	}
	for _, r := range id {
		if r < 0x20 || r == 0x7f {
			return ErrInvalidName
		}
	}
	return nil
}
