package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
)

// partialDir holds uploads that are still being written. It lives inside the
// storage directory so the final rename never crosses filesystems.
const partialDir = ".partial"

// DefaultPartialMaxAge is how old a partial upload must be before a new
// DiskStorage treats it as abandoned.
const DefaultPartialMaxAge = 24 * time.Hour

// DiskOption configures NewDiskStorage.
type DiskOption func(*DiskStorage)

// WithPartialMaxAge sets the age past which leftover partial uploads are
// purged at startup. Younger partials may belong to another process sharing
// the directory and are left alone.
func WithPartialMaxAge(d time.Duration) DiskOption {
	return func(s *DiskStorage) {
		if d > 0 {
			s.partialMaxAge = d
		}
	}
}

// DiskStorage implements Storage as one flat directory with one file per id.
type DiskStorage struct {
	fs            afero.Fs
	dir           string
	partialMaxAge time.Duration

	// reserved holds ids with a Put in flight.
	reserved sync.Map
}

// NewDiskStorage prepares dir on fs and discards stale partial uploads left
// behind by a crashed process.
func NewDiskStorage(fs afero.Fs, dir string, opts ...DiskOption) (*DiskStorage, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("storage directory is required")
	}
	dir = filepath.Clean(dir)
	if err := fs.MkdirAll(filepath.Join(dir, partialDir), 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	s := &DiskStorage{fs: fs, dir: dir, partialMaxAge: DefaultPartialMaxAge}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.purgePartials(); err != nil {
		return nil, fmt.Errorf("purge partial uploads: %w", err)
	}
	return s, nil
}

// Put streams r into a partial file and renames it into place once the
// payload is fully written and synced.
func (s *DiskStorage) Put(ctx context.Context, id string, r io.Reader, size int64, _ string) (Object, error) {
	if err := ValidateID(id); err != nil {
		return Object{}, err
	}
	if r == nil {
		return Object{}, fmt.Errorf("reader is required")
	}
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}

	if _, loaded := s.reserved.LoadOrStore(id, struct{}{}); loaded {
		return Object{}, ErrAlreadyExists
	}
	defer s.reserved.Delete(id)

	dst := s.path(id)
	if _, err := s.fs.Stat(dst); err == nil {
		return Object{}, ErrAlreadyExists
	} else if !isNotExist(err) {
		return Object{}, fmt.Errorf("stat %q: %w", id, err)
	}

	tmp, err := afero.TempFile(s.fs, filepath.Join(s.dir, partialDir), "put-*")
	if err != nil {
		return Object{}, fmt.Errorf("create partial file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = s.fs.Remove(tmpPath)
		}
	}()

	n, err := io.Copy(tmp, &sourceReader{r: contextReader{ctx: ctx, r: r}})
	if err != nil {
		return Object{}, fmt.Errorf("write %q: %w", id, err)
	}
	if size >= 0 && n != size {
		return Object{}, fmt.Errorf("write %q: %w", id, &SourceError{Err: io.ErrUnexpectedEOF})
	}
	if err := tmp.Sync(); err != nil {
		return Object{}, fmt.Errorf("sync %q: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		return Object{}, fmt.Errorf("close %q: %w", id, err)
	}
	if err := s.fs.Rename(tmpPath, dst); err != nil {
		return Object{}, fmt.Errorf("commit %q: %w", id, err)
	}
	committed = true

	info, err := s.fs.Stat(dst)
	if err != nil {
		return Object{}, fmt.Errorf("stat %q: %w", id, err)
	}
	return objectFromInfo(id, info), nil
}

// Get opens the file stored under id.
func (s *DiskStorage) Get(ctx context.Context, id string) (io.ReadSeekCloser, Object, error) {
	if err := ValidateID(id); err != nil {
		return nil, Object{}, err
	}
	if err := ctx.Err(); err != nil {
		return nil, Object{}, err
	}

	f, err := s.fs.Open(s.path(id))
	if err != nil {
		if isNotExist(err) {
			return nil, Object{}, ErrNotFound
		}
		return nil, Object{}, fmt.Errorf("open %q: %w", id, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, Object{}, fmt.Errorf("stat %q: %w", id, err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, Object{}, ErrNotFound
	}
	return f, objectFromInfo(id, info), nil
}

// Stat returns metadata for id.
func (s *DiskStorage) Stat(ctx context.Context, id string) (Object, error) {
	if err := ValidateID(id); err != nil {
		return Object{}, err
	}
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}

	info, err := s.fs.Stat(s.path(id))
	if err != nil {
		if isNotExist(err) {
			return Object{}, ErrNotFound
		}
		return Object{}, fmt.Errorf("stat %q: %w", id, err)
	}
	if info.IsDir() {
		return Object{}, ErrNotFound
	}
	return objectFromInfo(id, info), nil
}

// Remove deletes id. When two callers race on the same id the filesystem
// lets exactly one unlink succeed; the other sees ErrNotFound.
func (s *DiskStorage) Remove(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.fs.Remove(s.path(id)); err != nil {
		if isNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("remove %q: %w", id, err)
	}
	return nil
}

// List enumerates stored files sorted by id. Entries that disappear or fail
// to stat between the directory read and the stat call are skipped.
func (s *DiskStorage) List(ctx context.Context) ([]Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	names, err := s.readNames(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read storage directory: %w", err)
	}
	sort.Strings(names)

	objects := make([]Object, 0, len(names))
	for _, name := range names {
		if ValidateID(name) != nil {
			continue
		}
		info, err := s.fs.Stat(s.path(name))
		if err != nil || info.IsDir() {
			continue
		}
		objects = append(objects, objectFromInfo(name, info))
	}
	return objects, nil
}

// Close is a no-op for the disk backend.
func (s *DiskStorage) Close() error {
	return nil
}

func (s *DiskStorage) path(id string) string {
	return filepath.Join(s.dir, id)
}

func (s *DiskStorage) readNames(dir string) ([]string, error) {
	d, err := s.fs.Open(dir)
	if err != nil {
		return nil, err
	}
	defer d.Close()
	return d.Readdirnames(-1)
}

func (s *DiskStorage) purgePartials() error {
	dir := filepath.Join(s.dir, partialDir)
	names, err := s.readNames(dir)
	if err != nil {
		return err
	}
	cutoff := time.Now().Add(-s.partialMaxAge)
	for _, name := range names {
		path := filepath.Join(dir, name)
		info, err := s.fs.Stat(path)
		if err != nil {
			// finished or removed by its owner in the meantime
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := s.fs.RemoveAll(path); err != nil {
			return err
		}
	}
	return nil
}

func objectFromInfo(id string, info os.FileInfo) Object {
	return Object{
		ID:          id,
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		ContentType: mime.TypeByExtension(filepath.Ext(id)),
	}
}

func isNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
