package oauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ErrStateNotFound is returned when a state is unknown, expired or already used.
var ErrStateNotFound = errors.New("oauth state not found")

// StateStore remembers issued handshake states so that each callback can be
// matched to a login started by this server exactly once.
type StateStore interface {
	Save(ctx context.Context, state string) error
	Consume(ctx context.Context, state string) error
	Close() error
}

// NewState returns a fresh random state value.
func NewState() string {
	return uuid.New().String()
}

const stateKeyPrefix = "oauth_state:"

// RedisStateStore keeps states in Redis with a TTL.
type RedisStateStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStateStore connects to redisURL and verifies the connection.
func NewRedisStateStore(redisURL string, ttl time.Duration) (*RedisStateStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStateStore{client: client, ttl: ttl}, nil
}

// Save stores state until the TTL elapses.
func (s *RedisStateStore) Save(ctx context.Context, state string) error {
	if err := s.client.Set(ctx, stateKeyPrefix+state, "1", s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Consume deletes state, failing with ErrStateNotFound when it was not present.
func (s *RedisStateStore) Consume(ctx context.Context, state string) error {
	n, err := s.client.Del(ctx, stateKeyPrefix+state).Result()
	if err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	if n == 0 {
		return ErrStateNotFound
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStateStore) Close() error {
	return s.client.Close()
}

// LRUStateStore keeps states in process memory. It only works for a single instance.
type LRUStateStore struct {
	cache *expirable.LRU[string, struct{}]
}

// NewLRUStateStore creates an in-process store holding at most size states.
func NewLRUStateStore(size int, ttl time.Duration) *LRUStateStore {
	return &LRUStateStore{
		cache: expirable.NewLRU[string, struct{}](size, nil, ttl),
	}
}

// Save stores state until the TTL elapses.
func (s *LRUStateStore) Save(_ context.Context, state string) error {
	s.cache.Add(state, struct{}{})
	return nil
}

// Consume removes state, failing with ErrStateNotFound when it was not present.
func (s *LRUStateStore) Consume(_ context.Context, state string) error {
	if _, ok := s.cache.Get(state); !ok {
		return ErrStateNotFound
	}
	if !s.cache.Remove(state) {
		return ErrStateNotFound
	}
	return nil
}

// Close is a no-op.
func (s *LRUStateStore) Close() error {
	return nil
}
