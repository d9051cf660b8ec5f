package audit

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	before := time.Now().UTC()
	e := NewEvent(KindUploaded, "abc.txt", 42)

	_, err := uuid.Parse(e.ID)
	require.NoError(t, err)
	assert.Equal(t, KindUploaded, e.Kind)
	assert.Equal(t, "abc.txt", e.FileID)
	assert.Equal(t, int64(42), e.SizeBytes)
	assert.False(t, e.OccurredAt.Before(before))
}

func TestNopRecorder(t *testing.T) {
	var r Recorder = NopRecorder{}
	assert.NoError(t, r.Record(context.Background(), NewEvent(KindDeleted, "x", 0)))
}

// TestRepository_RecordRecent runs against a real PostgreSQL instance with
// the file_events table migrated. It is skipped unless TEST_DATABASE_URL is set.
func TestRepository_RecordRecent(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	defer pool.Close()

	repo := NewRepository(pool)
	e := NewEvent(KindEvicted, "old-"+uuid.NewString()+".bin", 7)
	e.OriginalName = "old.bin"
	require.NoError(t, repo.Record(ctx, e))

	events, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.NotEmpty(t, events)

	found := false
	for _, got := range events {
		if got.ID == e.ID {
			found = true
			assert.Equal(t, KindEvicted, got.Kind)
			assert.Equal(t, "old.bin", got.OriginalName)
		}
	}
	assert.True(t, found)
}
