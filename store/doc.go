// Package store defines checkpoint persistence for graph runs.
//
// A Checkpoint is the latest state of one conversation thread, serialized as JSON
// by the graph schema. A CheckpointStore keeps at most one checkpoint per thread:
// Put replaces, Get returns ErrNotFound for unknown threads, Delete is idempotent.
//
// Backends live in subpackages and are interchangeable:
//
//   - store/memory: process memory, for tests and single-process chat
//   - store/file: one JSON file per thread
//   - store/redis: Redis, with a distributed per-thread lock
//   - store/sqlite: SQLite via mattn/go-sqlite3
//   - store/postgres: PostgreSQL via pgx
//
// A backend that also implements Locker serializes runs of the same thread;
// otherwise the executor falls back to an in-process KeyedMutex.
package store
