package memory

import (
	"bytes"
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/jiujiechenfeng/langgraph-source/store"
)

// MemoryCheckpointStore keeps checkpoints in process memory.
// Checkpoints are lost when the process exits.
type MemoryCheckpointStore struct {
	mu          sync.RWMutex
	checkpoints map[string]*store.Checkpoint
	locks       store.KeyedMutex
}

var (
	_ store.CheckpointStore = (*MemoryCheckpointStore)(nil)
	_ store.Locker          = (*MemoryCheckpointStore)(nil)
)

// NewMemoryCheckpointStore creates an empty in-memory store
func NewMemoryCheckpointStore() *MemoryCheckpointStore {
	return &MemoryCheckpointStore{
		checkpoints: make(map[string]*store.Checkpoint),
	}
}

// Get returns a copy of the checkpoint of a thread
func (m *MemoryCheckpointStore) Get(_ context.Context, threadID string) (*store.Checkpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cp, ok := m.checkpoints[threadID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return clone(cp), nil
}

// Put stores a copy of the checkpoint, replacing the previous one of its thread
func (m *MemoryCheckpointStore) Put(_ context.Context, checkpoint *store.Checkpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.checkpoints[checkpoint.ThreadID] = clone(checkpoint)
	return nil
}

// Delete removes the checkpoint of a thread
func (m *MemoryCheckpointStore) Delete(_ context.Context, threadID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.checkpoints, threadID)
	return nil
}

// List returns the ids of all stored threads in sorted order
func (m *MemoryCheckpointStore) List(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Sorted(maps.Keys(m.checkpoints)), nil
}

// Lock serializes runs of one thread within this process
func (m *MemoryCheckpointStore) Lock(ctx context.Context, threadID string) (func(), error) {
	return m.locks.Lock(ctx, threadID)
}

func clone(cp *store.Checkpoint) *store.Checkpoint {
	out := *cp
	out.State = bytes.Clone(cp.State)
	out.Metadata = maps.Clone(cp.Metadata)
	return &out
}
