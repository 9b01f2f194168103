package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pkgerrors "github.com/alexriley/storefront-sync/pkg/errors"
)

// ErrNotFound is returned when no record exists for a user.
var ErrNotFound = errors.New("session record not found")

// Store reads and writes per-user session records.
type Store interface {
	Load(ctx context.Context, userID string) (Record, error)
	Save(ctx context.Context, userID string, record Record) error
	Clear(ctx context.Context, userID string) error
}

// keyValue is the slice of the redis client the store needs.
type keyValue interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	SessionRecordKey(userID string) string
}

// RedisStore keeps session records in redis with no expiry. A record lives
// until the user signs out or clears their session.
type RedisStore struct {
	kv keyValue
}

// NewRedisStore wires a redis-backed session store.
func NewRedisStore(kv keyValue) (*RedisStore, error) {
	if kv == nil {
		return nil, errors.New("redis client is required")
	}
	return &RedisStore{kv: kv}, nil
}

func (s *RedisStore) Load(ctx context.Context, userID string) (Record, error) {
	raw, err := s.kv.Get(ctx, s.kv.SessionRecordKey(userID))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return Record{}, ErrNotFound
		}
		return Record{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session record")
	}

	var record Record
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return Record{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode session record")
	}
	return record, nil
}

func (s *RedisStore) Save(ctx context.Context, userID string, record Record) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode session record")
	}
	if err := s.kv.Set(ctx, s.kv.SessionRecordKey(userID), payload, 0); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save session record")
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, userID string) error {
	if err := s.kv.Del(ctx, s.kv.SessionRecordKey(userID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear session record")
	}
	return nil
}

// MemoryStore is an in-process store used in development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Load(_ context.Context, userID string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[userID]
	if !ok {
		return Record{}, ErrNotFound
	}
	return record, nil
}

func (s *MemoryStore) Save(_ context.Context, userID string, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[userID] = record
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, userID)
	return nil
}
