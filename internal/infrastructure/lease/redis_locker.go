package lease

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/TesslaRay/claudio-aleph-2025/internal/domain/intake"
)

// releaseScript deletes the lock key only when it still holds our token, so
// an expired lease cannot release a lock acquired by someone else.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker serializes turn handling per case across service instances
// using a SET NX lease.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewRedisLocker builds a locker over an existing redis client. ttl bounds
// how long a crashed holder can block a case.
func NewRedisLocker(client *redis.Client, ttl time.Duration, log zerolog.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &RedisLocker{
		client: client,
		ttl:    ttl,
		log:    log.With().Str("component", "case-locker").Logger(),
	}
}

// Acquire takes the per-case lease. It fails immediately when another turn
// holds it; callers surface that as a busy condition rather than queueing.
func (l *RedisLocker) Acquire(ctx context.Context, caseID string) (func(), error) {
	key := "claudio:case-lock:" + caseID
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire case lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("case %s: %w", caseID, intake.ErrCaseBusy)
	}

	release := func() {
		// Release must outlive a cancelled request context.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil && err != redis.Nil {
			l.log.Warn().Err(err).Str("case_id", caseID).Msg("could not release case lock")
		}
	}
	return release, nil
}
