// Package audit keeps an append-only log of file lifecycle events. The log is
// informational only: lookups always go to the blob store, never to it.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Kind names a lifecycle transition.
type Kind string

const (
	KindUploaded Kind = "uploaded"
	KindDeleted  Kind = "deleted"
	KindEvicted  Kind = "evicted"
)

// Event is one lifecycle transition of a stored file.
type Event struct {
	ID           string    `json:"id"`
	Kind         Kind      `json:"kind"`
	FileID       string    `json:"fileId"`
	OriginalName string    `json:"originalName,omitempty"`
	SizeBytes    int64     `json:"sizeBytes"`
	OccurredAt   time.Time `json:"occurredAt"`
}

// NewEvent returns an event stamped with a fresh id and the current time.
func NewEvent(kind Kind, fileID string, sizeBytes int64) Event {
	return Event{
		ID:         uuid.NewString(),
		Kind:       kind,
		FileID:     fileID,
		SizeBytes:  sizeBytes,
		OccurredAt: time.Now().UTC(),
	}
}

// Recorder persists lifecycle events.
type Recorder interface {
	Record(ctx context.Context, e Event) error
}

// Reader lists recorded events, newest first.
type Reader interface {
	Recent(ctx context.Context, limit int) ([]Event, error)
}

// NopRecorder discards every event. It is used when no database is configured.
type NopRecorder struct{}

// Record implements Recorder.
func (NopRecorder) Record(context.Context, Event) error { return nil }
