package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jiujiechenfeng/langgraph-source/store"
)

const (
	defaultPrefix       = "langgraph:"
	defaultLockTTL      = 30 * time.Second
	defaultPollInterval = 50 * time.Millisecond
)

// unlockScript deletes the lock only if it still holds our token.
var unlockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

// renewScript extends the lock only if it still holds our token.
var renewScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
else
	return 0
end
`)

// RedisCheckpointStore implements store.CheckpointStore and store.Locker using Redis
type RedisCheckpointStore struct {
	client       *redis.Client
	prefix       string
	ttl          time.Duration
	lockTTL      time.Duration
	pollInterval time.Duration
}

var (
	_ store.CheckpointStore = (*RedisCheckpointStore)(nil)
	_ store.Locker          = (*RedisCheckpointStore)(nil)
)

// RedisOptions configuration for Redis connection
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // Key prefix, default "langgraph:"
	TTL      time.Duration // Expiration for checkpoints, default 0 (no expiration)
	LockTTL  time.Duration // Expiration of a thread lock, default 30s; renewed every LockTTL/3 while held
}

// NewRedisCheckpointStore creates a new Redis checkpoint store
func NewRedisCheckpointStore(opts RedisOptions) *RedisCheckpointStore {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return NewRedisCheckpointStoreWithClient(client, opts)
}

// NewRedisCheckpointStoreWithClient creates a store on an existing client.
// Connection fields of opts are ignored.
func NewRedisCheckpointStoreWithClient(client *redis.Client, opts RedisOptions) *RedisCheckpointStore {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = defaultPrefix
	}
	lockTTL := opts.LockTTL
	if lockTTL <= 0 {
		lockTTL = defaultLockTTL
	}

	return &RedisCheckpointStore{
		client:       client,
		prefix:       prefix,
		ttl:          opts.TTL,
		lockTTL:      lockTTL,
		pollInterval: defaultPollInterval,
	}
}

// Client returns the underlying redis client
func (s *RedisCheckpointStore) Client() *redis.Client {
	return s.client
}

func (s *RedisCheckpointStore) checkpointKey(threadID string) string {
	return fmt.Sprintf("%scheckpoint:%s", s.prefix, threadID)
}

func (s *RedisCheckpointStore) threadsKey() string {
	return s.prefix + "threads"
}

func (s *RedisCheckpointStore) lockKey(threadID string) string {
	return s.prefix + "lock:" + threadID
}

// Put stores the checkpoint of a thread, replacing the previous one
func (s *RedisCheckpointStore) Put(ctx context.Context, checkpoint *store.Checkpoint) error {
	data, err := json.Marshal(checkpoint)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.checkpointKey(checkpoint.ThreadID), data, s.ttl)
	pipe.SAdd(ctx, s.threadsKey(), checkpoint.ThreadID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save checkpoint to redis: %w", err)
	}
	return nil
}

// Get retrieves the checkpoint of a thread
func (s *RedisCheckpointStore) Get(ctx context.Context, threadID string) (*store.Checkpoint, error) {
	data, err := s.client.Get(ctx, s.checkpointKey(threadID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load checkpoint from redis: %w", err)
	}

	var checkpoint store.Checkpoint
	if err := json.Unmarshal(data, &checkpoint); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint: %w", err)
	}
	return &checkpoint, nil
}

// Delete removes the checkpoint of a thread
func (s *RedisCheckpointStore) Delete(ctx context.Context, threadID string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.checkpointKey(threadID))
	pipe.SRem(ctx, s.threadsKey(), threadID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}

// List returns the threads that still have a checkpoint.
// Index entries whose checkpoint expired are dropped.
func (s *RedisCheckpointStore) List(ctx context.Context) ([]string, error) {
	threads, err := s.client.SMembers(ctx, s.threadsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}
	if len(threads) == 0 {
		return []string{}, nil
	}

	pipe := s.client.Pipeline()
	exists := make([]*redis.IntCmd, len(threads))
	for i, id := range threads {
		exists[i] = pipe.Exists(ctx, s.checkpointKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to check checkpoints: %w", err)
	}

	var live, stale []string
	for i, id := range threads {
		if exists[i].Val() > 0 {
			live = append(live, id)
		} else {
			stale = append(stale, id)
		}
	}
	if len(stale) > 0 {
		members := make([]any, len(stale))
		for i, id := range stale {
			members[i] = id
		}
		if err := s.client.SRem(ctx, s.threadsKey(), members...).Err(); err != nil {
			return nil, fmt.Errorf("failed to prune thread index: %w", err)
		}
	}

	if live == nil {
		live = []string{}
	}
	sort.Strings(live)
	return live, nil
}

// Lock acquires a distributed lock for the thread using SET NX PX, polling until
// it succeeds or ctx is done. While held, the lock is extended every LockTTL/3,
// so it only expires after LockTTL if its holder dies without releasing it.
func (s *RedisCheckpointStore) Lock(ctx context.Context, threadID string) (func(), error) {
	key := s.lockKey(threadID)
	token := uuid.NewString()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		ok, err := s.client.SetNX(ctx, key, token, s.lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("redis error acquiring lock: %w", err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	stop := make(chan struct{})
	stopped := make(chan struct{})
	go s.keepAlive(key, token, stop, stopped)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-stopped

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = unlockScript.Run(ctx, s.client, []string{key}, token).Err()
		})
	}, nil
}

// keepAlive extends the lock until stop is closed or the lock is no longer ours.
func (s *RedisCheckpointStore) keepAlive(key, token string, stop <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)

	interval := max(s.lockTTL/3, time.Millisecond)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), interval)
		renewed, err := renewScript.Run(ctx, s.client, []string{key}, token, s.lockTTL.Milliseconds()).Int()
		cancel()
		if err == nil && renewed == 0 {
			return
		}
	}
}

// Close closes the underlying client
func (s *RedisCheckpointStore) Close() error {
	return s.client.Close()
}
