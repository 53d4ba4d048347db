package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces session slots in the shared store.
const KeyPrefix = "colocetudiant_session:"

// Store persists opaque session blobs by slot id.
type Store interface {
	Get(ctx context.Context, sid string) ([]byte, bool, error)
	Set(ctx context.Context, sid string, blob []byte, ttl time.Duration) error
	Delete(ctx context.Context, sid string) error
}

// RedisStore keeps slots as plain string keys with a TTL.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore { return &RedisStore{rdb: rdb} }

func (s *RedisStore) Get(ctx context.Context, sid string) ([]byte, bool, error) {
	b, err := s.rdb.Get(ctx, KeyPrefix+sid).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *RedisStore) Set(ctx context.Context, sid string, blob []byte, ttl time.Duration) error {
	return s.rdb.Set(ctx, KeyPrefix+sid, blob, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, sid string) error {
	return s.rdb.Del(ctx, KeyPrefix+sid).Err()
}

type memEntry struct {
	blob []byte
	exp  time.Time
}

// MemoryStore is a process-local Store for tests and Redis-less setups.
type MemoryStore struct {
	mu    sync.Mutex
	slots map[string]memEntry
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: map[string]memEntry{}, now: time.Now}
}

func (s *MemoryStore) Get(_ context.Context, sid string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.slots[KeyPrefix+sid]
	if !ok {
		return nil, false, nil
	}
	if !e.exp.IsZero() && !s.now().Before(e.exp) {
		delete(s.slots, KeyPrefix+sid)
		return nil, false, nil
	}
	return append([]byte(nil), e.blob...), true, nil
}

func (s *MemoryStore) Set(_ context.Context, sid string, blob []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := memEntry{blob: append([]byte(nil), blob...)}
	if ttl > 0 {
		e.exp = s.now().Add(ttl)
	}
	s.slots[KeyPrefix+sid] = e
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, KeyPrefix+sid)
	return nil
}
