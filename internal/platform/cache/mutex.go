package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock key only when it still holds the
// caller's token, so a holder that outlived its TTL cannot release a
// lock someone else has since acquired.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Mutex is a best-effort distributed lock backed by Redis SET NX with
// an ownership token. It guards batch jobs against overlapping runs;
// it is not a fencing lock.
type Mutex struct {
	client *redis.Client
	key    string
	ttl    time.Duration

	mu    sync.Mutex
	token string
}

// NewMutex constructs a mutex for the given key.
func NewMutex(client *redis.Client, key string, ttl time.Duration) *Mutex {
	return &Mutex{client: client, key: key, ttl: ttl}
}

// TryLock attempts to acquire the lock. It returns false without
// blocking when another holder owns the key.
func (m *Mutex) TryLock(ctx context.Context) (bool, error) {
	token := uuid.NewString()
	ok, err := m.client.SetNX(ctx, m.key, token, m.ttl).Result()
	if err != nil || !ok {
		return ok, err
	}
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return true, nil
}

// Unlock releases the lock if this mutex still owns it. Releasing an
// expired or never-acquired lock is a no-op.
func (m *Mutex) Unlock(ctx context.Context) error {
	m.mu.Lock()
	token := m.token
	m.token = ""
	m.mu.Unlock()
	if token == "" {
		return nil
	}
	return releaseScript.Run(ctx, m.client, []string{m.key}, token).Err()
}
