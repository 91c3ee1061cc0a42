package session

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"riderlink/internal/app/services/auth"
)

const revocationKeyPrefix = "session:revoked:"

// RedisRevocationStore keeps revoked token ids in Redis with a TTL matching
// the token's remaining lifetime, so entries expire on their own.
type RedisRevocationStore struct {
	Client *redis.Client
	Clock  func() time.Time
}

func (s *RedisRevocationStore) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	if tokenID == "" {
		return nil
	}
	ttl := until.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.Client.Set(ctx, revocationKeyPrefix+tokenID, "1", ttl).Err()
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	_, err := s.Client.Get(ctx, revocationKeyPrefix+tokenID).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *RedisRevocationStore) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

// MemoryRevocationStore backs the same contract without Redis, for tests and
// single-process demo mode.
type MemoryRevocationStore struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
	Clock   func() time.Time
}

func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{revoked: make(map[string]time.Time)}
}

func (s *MemoryRevocationStore) Revoke(_ context.Context, tokenID string, until time.Time) error {
	if tokenID == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[tokenID] = until
	return nil
}

func (s *MemoryRevocationStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.RLock()
	until, ok := s.revoked[tokenID]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if s.now().After(until) {
		s.mu.Lock()
		delete(s.revoked, tokenID)
		s.mu.Unlock()
		return false, nil
	}
	return true, nil
}

func (s *MemoryRevocationStore) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

var (
	_ auth.RevocationStore = (*RedisRevocationStore)(nil)
	_ auth.RevocationStore = (*MemoryRevocationStore)(nil)
)
