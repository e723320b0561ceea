package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrTokenNotFound is returned when a token does not resolve to a user.
var ErrTokenNotFound = errors.New("token not found")

// TokenStore keeps one token per user.
type TokenStore interface {
	// Claim stores candidate as the user's token unless one already exists,
	// and returns whichever token is now current.
	Claim(ctx context.Context, username, candidate string) (string, error)
	// Lookup resolves a token to its username.
	Lookup(ctx context.Context, token string) (string, error)
}

const (
	tokenKeyPrefix = "auth:token:"
	userKeyPrefix  = "auth:user:"
)

// RedisTokenStore shares tokens between instances. A ttl of zero keeps
// tokens until they are removed externally.
type RedisTokenStore struct {
	cache *redis.Client
	ttl   time.Duration
}

func NewRedisTokenStore(cache *redis.Client, ttl time.Duration) *RedisTokenStore {
	return &RedisTokenStore{cache: cache, ttl: ttl}
}

// Claim writes the token key before the user key, so any token readable
// through the user key already resolves.
func (s *RedisTokenStore) Claim(ctx context.Context, username, candidate string) (string, error) {
	userKey := userKeyPrefix + username
	tokenKey := tokenKeyPrefix + candidate
	if err := s.cache.Set(ctx, tokenKey, username, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	ok, err := s.cache.SetNX(ctx, userKey, candidate, s.ttl).Result()
	if err != nil {
		s.cache.Del(ctx, tokenKey)
		return "", fmt.Errorf("claim token: %w", err)
	}
	if ok {
		return candidate, nil
	}

	existing, err := s.cache.Get(ctx, userKey).Result()
	switch {
	case err == nil:
		s.cache.Del(ctx, tokenKey)
		return existing, nil
	case !errors.Is(err, redis.Nil):
		s.cache.Del(ctx, tokenKey)
		return "", fmt.Errorf("read token: %w", err)
	}
	// expired between SetNX and Get
	if err := s.cache.Set(ctx, userKey, candidate, s.ttl).Err(); err != nil {
		s.cache.Del(ctx, tokenKey)
		return "", fmt.Errorf("claim token: %w", err)
	}
	return candidate, nil
}

func (s *RedisTokenStore) Lookup(ctx context.Context, token string) (string, error) {
	username, err := s.cache.Get(ctx, tokenKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lookup token: %w", err)
	}
	return username, nil
}

// MemoryTokenStore is the single-process store used in development and tests.
type MemoryTokenStore struct {
	mu      sync.RWMutex
	byUser  map[string]string
	byToken map[string]string
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{byUser: map[string]string{}, byToken: map[string]string{}}
}

func (s *MemoryTokenStore) Claim(_ context.Context, username, candidate string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.byUser[username]; ok {
		return existing, nil
	}
	s.byUser[username] = candidate
	s.byToken[candidate] = username
	return candidate, nil
}

func (s *MemoryTokenStore) Lookup(_ context.Context, token string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	username, ok := s.byToken[token]
	if !ok {
		return "", ErrTokenNotFound
	}
	return username, nil
}
