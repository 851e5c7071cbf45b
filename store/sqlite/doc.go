// Package sqlite provides a SQLite-backed checkpoint store.
//
// One row per thread holds the latest checkpoint; Put upserts on thread_id.
//
//	s, err := sqlite.NewSqliteCheckpointStore(sqlite.SqliteOptions{
//		Path: "./checkpoints.db",
//	})
//	if err != nil {
//		return err
//	}
//	defer s.Close()
package sqlite
