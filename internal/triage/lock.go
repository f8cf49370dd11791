package triage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker guarantees at-most-one in-flight triage run per ticket. Acquire
// returns ErrTriageInProgress when another run already holds the scope;
// the returned release func must be called when the run finishes.
type Locker interface {
	Acquire(ctx context.Context, ticketID string) (release func(), err error)
}

// KeyedMutex is an in-process Locker keyed by ticket ID. It rejects
// rather than queues a second attempt, matching the distributed variant.
type KeyedMutex struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewKeyedMutex creates an empty lock table.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{held: make(map[string]struct{})}
}

// Acquire takes the per-ticket scope or fails with ErrTriageInProgress.
func (k *KeyedMutex) Acquire(_ context.Context, ticketID string) (func(), error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, taken := k.held[ticketID]; taken {
		return nil, ErrTriageInProgress
	}
	k.held[ticketID] = struct{}{}
	return func() {
		k.mu.Lock()
		delete(k.held, ticketID)
		k.mu.Unlock()
	}, nil
}

// RedisLocker is a Locker backed by Redis SET NX, making the per-ticket
// scope hold across service replicas. The TTL bounds how long an
// abandoned run can block re-triage.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLocker builds a locker with the given lock expiry.
func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{client: client, ttl: ttl}
}

func triageLockKey(ticketID string) string {
	return "triage:lock:" + ticketID
}

// Acquire takes the distributed per-ticket scope or fails with
// ErrTriageInProgress. Release only deletes the key if this run still
// owns it, so an expired lock taken over by another run is never removed.
func (r *RedisLocker) Acquire(ctx context.Context, ticketID string) (func(), error) {
	token := uuid.NewString()
	key := triageLockKey(ticketID)

	ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTriageInProgress
	}

	release := func() {
		// Compare-and-delete so only the owning run releases.
		const script = `
            if redis.call("GET", KEYS[1]) == ARGV[1] then
                return redis.call("DEL", KEYS[1])
            end
            return 0`
		_ = r.client.Eval(context.Background(), script, []string{key}, token).Err()
	}
	return release, nil
}
