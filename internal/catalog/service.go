// Package catalog provides the read-only library listing and usage summary.
package catalog

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/filedrop/service/internal/storage"
)

// Type is the coarse category of a stored file, derived from its extension.
type Type string

const (
	TypeImage    Type = "image"
	TypeVideo    Type = "video"
	TypeDocument Type = "document"
	TypePDF      Type = "pdf"
	TypeOther    Type = "other"
)

var typesByExtension = map[string]Type{
	"jpg":  TypeImage,
	"jpeg": TypeImage,
	"png":  TypeImage,
	"gif":  TypeImage,
	"mp4":  TypeVideo,
	"avi":  TypeVideo,
	"mkv":  TypeVideo,
	"doc":  TypeDocument,
	"docx": TypeDocument,
	"txt":  TypeDocument,
	"pdf":  TypePDF,
}

// Classify maps name to its Type. Matching is case-insensitive.
func Classify(name string) Type {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	if t, ok := typesByExtension[ext]; ok {
		return t
	}
	return TypeOther
}

// Entry is one file in the library listing.
type Entry struct {
	Name string `json:"name" example:"lq3k2x-a1b2c3d4e5f60718.png"`
	Type Type   `json:"type" example:"image" enums:"image,video,document,pdf,other"`
}

// Usage aggregates the store's contents.
type Usage struct {
	TotalFiles     int
	TotalSizeBytes int64
}

// Service builds catalog views from a single listing of the store.
type Service struct {
	store storage.Storage
}

// NewService creates a new catalog Service.
func NewService(store storage.Storage) *Service {
	return &Service{store: store}
}

// ListAll returns every stored file with its type, sorted by name.
func (s *Service) ListAll(ctx context.Context) ([]Entry, error) {
	objects, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stored files: %w", err)
	}
	entries := make([]Entry, 0, len(objects))
	for _, o := range objects {
		entries = append(entries, Entry{Name: o.ID, Type: Classify(o.ID)})
	}
	return entries, nil
}

// UsageSummary counts and sizes the stored files in one listing pass.
func (s *Service) UsageSummary(ctx context.Context) (Usage, error) {
	objects, err := s.store.List(ctx)
	if err != nil {
		return Usage{}, fmt.Errorf("list stored files: %w", err)
	}
	u := Usage{TotalFiles: len(objects)}
	for _, o := range objects {
		u.TotalSizeBytes += o.Size
	}
	return u, nil
}

// FormatMegabytes renders n bytes as mebibytes with two decimals, e.g. "1.50 MB".
func FormatMegabytes(n int64) string {
	return fmt.Sprintf("%.2f MB", float64(n)/(1<<20))
}
