package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jiujiechenfeng/langgraph-source/store"
)

const fileExt = ".json"

// FileCheckpointStore stores one JSON file per thread in a directory.
type FileCheckpointStore struct {
	dir string
}

var _ store.CheckpointStore = (*FileCheckpointStore)(nil)

// NewFileCheckpointStore creates a store rooted at dir, creating the directory if needed.
func NewFileCheckpointStore(dir string) (*FileCheckpointStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("checkpoint directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoint directory: %w", err)
	}
	return &FileCheckpointStore{dir: dir}, nil
}

// Dir returns the directory holding the checkpoint files.
func (f *FileCheckpointStore) Dir() string {
	return f.dir
}

func (f *FileCheckpointStore) path(threadID string) string {
	return filepath.Join(f.dir, url.PathEscape(threadID)+fileExt)
}

// Put writes the checkpoint to a temporary file and renames it over the thread's file.
func (f *FileCheckpointStore) Put(ctx context.Context, checkpoint *store.Checkpoint) error {
	if checkpoint.ThreadID == "" {
		return fmt.Errorf("thread id cannot be empty")
	}

	data, err := json.MarshalIndent(checkpoint, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	tmp, err := os.CreateTemp(f.dir, ".checkpoint-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write checkpoint file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close checkpoint file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to set checkpoint file mode: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path(checkpoint.ThreadID)); err != nil {
		return fmt.Errorf("failed to replace checkpoint file: %w", err)
	}
	return nil
}

// Get reads the checkpoint of a thread.
func (f *FileCheckpointStore) Get(ctx context.Context, threadID string) (*store.Checkpoint, error) {
	data, err := os.ReadFile(f.path(threadID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read checkpoint file: %w", err)
	}

	var cp store.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint: %w", err)
	}
	return &cp, nil
}

// Delete removes the checkpoint file of a thread.
func (f *FileCheckpointStore) Delete(ctx context.Context, threadID string) error {
	err := os.Remove(f.path(threadID))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete checkpoint file: %w", err)
	}
	return nil
}

// List returns the ids of all threads with a checkpoint file.
func (f *FileCheckpointStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}

	threads := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != fileExt {
			continue
		}
		id, err := url.PathUnescape(strings.TrimSuffix(name, fileExt))
		if err != nil {
			continue
		}
		threads = append(threads, id)
	}
	sort.Strings(threads)
	return threads, nil
}
