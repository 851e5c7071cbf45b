package sqlite

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiujiechenfeng/langgraph-source/store"
)

func newTestStore(t *testing.T) *SqliteCheckpointStore {
	t.Helper()
	s, err := NewSqliteCheckpointStore(SqliteOptions{
		Path: filepath.Join(t.TempDir(), "checkpoints.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSqliteCheckpointStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	cp := &store.Checkpoint{
		ID:        "cp-1",
		ThreadID:  "thread-1",
		NodeName:  "agent",
		Step:      2,
		Version:   1,
		State:     json.RawMessage(`{"count":1}`),
		Metadata:  map[string]any{"source": "chat"},
		Timestamp: now,
	}
	require.NoError(t, s.Put(ctx, cp))

	loaded, err := s.Get(ctx, "thread-1")
	require.NoError(t, err)
	assert.Equal(t, "cp-1", loaded.ID)
	assert.Equal(t, "agent", loaded.NodeName)
	assert.Equal(t, 2, loaded.Step)
	assert.Equal(t, 1, loaded.Version)
	assert.JSONEq(t, `{"count":1}`, string(loaded.State))
	assert.Equal(t, "chat", loaded.Metadata["source"])
	assert.True(t, now.Equal(loaded.Timestamp))

	// Upsert replaces the thread's row.
	cp.ID = "cp-2"
	cp.Version = 2
	cp.State = json.RawMessage(`{"count":2}`)
	require.NoError(t, s.Put(ctx, cp))

	loaded, err = s.Get(ctx, "thread-1")
	require.NoError(t, err)
	assert.Equal(t, "cp-2", loaded.ID)
	assert.Equal(t, 2, loaded.Version)
	assert.JSONEq(t, `{"count":2}`, string(loaded.State))

	threads, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"thread-1"}, threads)

	require.NoError(t, s.Delete(ctx, "thread-1"))
	require.NoError(t, s.Delete(ctx, "thread-1"))

	_, err = s.Get(ctx, "thread-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSqliteCheckpointStore_CustomTable(t *testing.T) {
	s, err := NewSqliteCheckpointStore(SqliteOptions{
		Path:      filepath.Join(t.TempDir(), "custom.db"),
		TableName: "chat_checkpoints",
	})
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	for _, id := range []string{"b", "a"} {
		require.NoError(t, s.Put(ctx, &store.Checkpoint{ThreadID: id, State: json.RawMessage(`{}`), Timestamp: time.Now()}))
	}

	threads, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, threads)

	// InitSchema is idempotent.
	assert.NoError(t, s.InitSchema(ctx))
}
