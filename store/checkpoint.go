package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned when no checkpoint exists for a thread.
var ErrNotFound = errors.New("checkpoint not found")

// Checkpoint is the latest persisted state of one conversation thread.
// State holds the JSON produced by the graph schema.
type Checkpoint struct {
	ID        string          `json:"id"`
	ThreadID  string          `json:"thread_id"`
	NodeName  string          `json:"node_name"`
	Step      int             `json:"step"`
	Version   int             `json:"version"`
	State     json.RawMessage `json:"state"`
	Metadata  map[string]any  `json:"metadata"`
	Timestamp time.Time       `json:"timestamp"`
}

// CheckpointStore defines the interface for checkpoint persistence.
// A thread has at most one live checkpoint; Put replaces it.
type CheckpointStore interface {
	// Get retrieves the checkpoint of a thread, or ErrNotFound.
	Get(ctx context.Context, threadID string) (*Checkpoint, error)

	// Put stores a checkpoint, replacing any older one for the same thread.
	Put(ctx context.Context, checkpoint *Checkpoint) error

	// Delete removes the checkpoint of a thread. Deleting a missing thread is not an error.
	Delete(ctx context.Context, threadID string) error

	// List returns the ids of all threads with a checkpoint.
	List(ctx context.Context) ([]string, error)
}

// Locker serializes runs of the same thread.
// Lock blocks until the thread is free or ctx is done.
type Locker interface {
	Lock(ctx context.Context, threadID string) (func(), error)
}

// KeyedMutex is an in-process Locker with one mutex per key.
// The zero value is ready to use.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	ch   chan struct{}
	refs int
}

var _ Locker = (*KeyedMutex)(nil)

// Lock acquires the lock for key.
func (k *KeyedMutex) Lock(ctx context.Context, key string) (func(), error) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyedLock)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{ch: make(chan struct{}, 1)}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	select {
	case l.ch <- struct{}{}:
	case <-ctx.Done():
		k.release(key, l)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.ch
			k.release(key, l)
		})
	}, nil
}

func (k *KeyedMutex) release(key string, l *keyedLock) {
	k.mu.Lock()
	defer k.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(k.locks, key)
	}
}
