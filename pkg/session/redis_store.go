package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on Redis with per-session JSON values and
// a TTL matching the in-memory store's idle eviction. Use it when the
// honeypot runs behind a load balancer or must survive restarts.
type RedisStore struct {
	client  *redis.Client
	ttl     time.Duration
	prefix  string
	writers *writerLocks
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, addr string, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &RedisStore{
		client:  client,
		ttl:     ttl,
		prefix:  "honeypot:session:",
		writers: newWriterLocks(),
	}, nil
}

func (s *RedisStore) key(sessionID string) string {
	return s.prefix + sessionID
}

// Get retrieves a session by ID.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (*State, error) {
	data, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return &state, nil
}

// Create initializes and stores a fresh session.
func (s *RedisStore) Create(ctx context.Context, sessionID string, meta Metadata) (*State, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID is required")
	}
	state := NewState(sessionID, meta)
	if err := s.Save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// GetOrCreate returns the existing session or creates it.
func (s *RedisStore) GetOrCreate(ctx context.Context, sessionID string, meta Metadata) (*State, error) {
	state, err := s.Get(ctx, sessionID)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return s.Create(ctx, sessionID, meta)
}

// Save persists the session state and refreshes its TTL.
func (s *RedisStore) Save(ctx context.Context, state *State) error {
	if state == nil {
		return fmt.Errorf("session state is nil")
	}
	if state.SessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	state.LastUpdated = time.Now().UTC()

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", state.SessionID, err)
	}
	if err := s.client.Set(ctx, s.key(state.SessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Update applies fn to the session under its per-session write lock and
// persists the result. The lock serializes the GET/SET read-modify-write
// within this process; deployments sharing Redis across instances must
// pin a session to one instance for the same guarantee.
func (s *RedisStore) Update(ctx context.Context, sessionID string, fn func(*State) error) (*State, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID is required")
	}

	unlock := s.writers.acquire(sessionID)
	defer unlock()

	state, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(state); err != nil {
		return nil, err
	}
	if err := s.Save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Delete removes a session.
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	s.writers.forget(sessionID)
	return nil
}

// Close releases the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ensure RedisStore implements Store
var _ Store = (*RedisStore)(nil)
