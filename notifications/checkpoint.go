package notifications

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"agencysite/utils"

	"github.com/go-redis/redis/v8"
)

// CheckpointStore remembers, per admin, the moment new activity was last
// acknowledged. Get falls back to the start of the current day when nothing
// has been stored yet. Writes are last-write-wins.
type CheckpointStore interface {
	Get(ctx context.Context, key string) (time.Time, error)
	Advance(ctx context.Context, key string, at time.Time) error
}

type MemoryCheckpointStore struct {
	mu     sync.RWMutex
	values map[string]time.Time
	now    func() time.Time
}

func NewMemoryCheckpointStore(now func() time.Time) *MemoryCheckpointStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryCheckpointStore{values: make(map[string]time.Time), now: now}
}

func (s *MemoryCheckpointStore) Get(_ context.Context, key string) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if at, ok := s.values[key]; ok {
		return at, nil
	}
	return utils.StartOfDay(s.now()), nil
}

func (s *MemoryCheckpointStore) Advance(_ context.Context, key string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = at
	return nil
}

const checkpointKeyPrefix = "notifications:checkpoint:"

type RedisCheckpointStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisCheckpointStore(client *redis.Client, now func() time.Time) *RedisCheckpointStore {
	if now == nil {
		now = time.Now
	}
	return &RedisCheckpointStore{client: client, now: now}
}

func (s *RedisCheckpointStore) Get(ctx context.Context, key string) (time.Time, error) {
	raw, err := s.client.Get(ctx, checkpointKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return utils.StartOfDay(s.now()), nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read checkpoint: %w", err)
	}
	at, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse checkpoint %q: %w", raw, err)
	}
	return at, nil
}

func (s *RedisCheckpointStore) Advance(ctx context.Context, key string, at time.Time) error {
	if err := s.client.Set(ctx, checkpointKeyPrefix+key, at.Format(time.RFC3339Nano), 0).Err(); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	return nil
}
