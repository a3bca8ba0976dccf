package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrInvalidRefreshToken = errors.New("invalid refresh token")

// RefreshStore holds one hashed refresh token per user. Saving replaces the
// previous token, so every exchange rotates and the old token stops working.
type RefreshStore interface {
	Save(ctx context.Context, userID, token string, ttl time.Duration) error
	Verify(ctx context.Context, userID, token string) error
	Revoke(ctx context.Context, userID string) error
}

const refreshPrefix = "refresh_token:"

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

type RedisRefreshStore struct {
	client *redis.Client
}

func NewRedisRefreshStore(client *redis.Client) *RedisRefreshStore {
	return &RedisRefreshStore{client: client}
}

func (s *RedisRefreshStore) Save(ctx context.Context, userID, token string, ttl time.Duration) error {
	return s.client.Set(ctx, refreshPrefix+userID, hashToken(token), ttl).Err()
}

func (s *RedisRefreshStore) Verify(ctx context.Context, userID, token string) error {
	stored, err := s.client.Get(ctx, refreshPrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return ErrInvalidRefreshToken
	}
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(hashToken(token))) != 1 {
		return ErrInvalidRefreshToken
	}
	return nil
}

func (s *RedisRefreshStore) Revoke(ctx context.Context, userID string) error {
	return s.client.Del(ctx, refreshPrefix+userID).Err()
}

// MemoryRefreshStore is the test double for RefreshStore.
type MemoryRefreshStore struct {
	mu     sync.Mutex
	hashes map[string]string
	expiry map[string]time.Time
}

func NewMemoryRefreshStore() *MemoryRefreshStore {
	return &MemoryRefreshStore{
		hashes: make(map[string]string),
		expiry: make(map[string]time.Time),
	}
}

func (s *MemoryRefreshStore) Save(ctx context.Context, userID, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hashes[userID] = hashToken(token)
	s.expiry[userID] = time.Now().Add(ttl)
	return nil
}

func (s *MemoryRefreshStore) Verify(ctx context.Context, userID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.hashes[userID]
	if !ok || time.Now().After(s.expiry[userID]) {
		return ErrInvalidRefreshToken
	}
	if stored != hashToken(token) {
		return ErrInvalidRefreshToken
	}
	return nil
}

func (s *MemoryRefreshStore) Revoke(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hashes, userID)
	delete(s.expiry, userID)
	return nil
}
