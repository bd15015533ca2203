package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/SmartSplit/smart-split-backend/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockHeld signals that the key is currently held by another caller.
// Callers treat it as retryable contention, distinct from transport failures.
var ErrLockHeld = errors.New("lock already held")

// LockProvider grants short-lived exclusive locks keyed by string. The TTL
// bounds how long a crashed holder can block others; release is best-effort
// and must be safe to call after the TTL has expired.
type LockProvider interface {
	// Acquire returns a release function on success, ErrLockHeld when the key
	// is taken, or another error for transport failures. Acquire never blocks
	// waiting for a held key.
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// unlockScript deletes the lock key only when it still carries our token, so
// a release that arrives after TTL expiry never removes someone else's lock.
const unlockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// RedisLockService implements LockProvider on Redis using SET NX with expiry.
// Suitable for multi-instance deployments sharing one Redis.
type RedisLockService struct {
	redis     *redis.Client
	keyPrefix string
}

func NewRedisLockService(redisClient *redis.Client) *RedisLockService {
	return &RedisLockService{
		redis:     redisClient,
		keyPrefix: "lock:",
	}
}

func (s *RedisLockService) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	rKey := s.keyPrefix + key
	token := uuid.NewString()

	ok, err := s.redis.SetNX(ctx, rKey, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}

	release := func() {
		// Fresh context: the request context may already be cancelled by the
		// time the deferred release runs.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.redis.Eval(releaseCtx, unlockScript, []string{rKey}, token).Err(); err != nil {
			logger.GetLogger().Warnw("Failed to release lock, TTL will expire it",
				"key", rKey, "error", err)
		}
	}
	return release, nil
}

// MemoryLockService implements LockProvider with an in-process map. Used in
// tests and single-instance deployments.
type MemoryLockService struct {
	mu    sync.Mutex
	locks map[string]time.Time // key -> expiry
}

func NewMemoryLockService() *MemoryLockService {
	return &MemoryLockService{locks: make(map[string]time.Time)}
}

func (s *MemoryLockService) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if expiry, held := s.locks[key]; held && time.Now().Before(expiry) {
		return nil, ErrLockHeld
	}
	expiry := time.Now().Add(ttl)
	s.locks[key] = expiry

	release := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		// Only delete our own grant; an expired-and-reacquired key belongs to
		// someone else.
		if current, held := s.locks[key]; held && current.Equal(expiry) {
			delete(s.locks, key)
		}
	}
	return release, nil
}
