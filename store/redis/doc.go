// Package redis provides a Redis-backed checkpoint store.
//
// Each thread's latest checkpoint is kept under "<prefix>checkpoint:<thread>" and the
// set "<prefix>threads" indexes the known threads. Checkpoints never expire unless a
// TTL is configured.
//
// The store also implements store.Locker with a SET NX PX lock under
// "<prefix>lock:<thread>", so runs of the same thread are serialized across processes.
//
//	s := redis.NewRedisCheckpointStore(redis.RedisOptions{
//		Addr:   "localhost:6379",
//		Prefix: "langgraph:",
//	})
//	runnable, err := g.Compile(graph.WithCheckpointer(s))
package redis
