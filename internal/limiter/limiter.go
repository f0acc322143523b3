package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "authgate:login:"

// Counting and arming the window TTL must be one atomic step: a bare
// INCR followed by EXPIRE can leave a counter with no TTL if the second
// command fails, locking the account out until someone deletes the key.
var allowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count`)

// LoginLimiter is a fixed-window counter over redis that throttles failed
// password attempts per username. It is advisory: callers fail open when
// redis is unavailable, since authentication stays correct without it.
type LoginLimiter struct {
	client *redis.Client
	max    int
	window time.Duration
}

func New(client *redis.Client, max int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		client: client,
		max:    max,
		window: window,
	}
}

// Allow records an attempt for key and reports whether it is within budget.
func (l *LoginLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.client == nil || l.max <= 0 {
		return true, nil
	}

	redisKey := keyPrefix + key

	count, err := allowScript.Run(ctx, l.client, []string{redisKey}, l.window.Milliseconds()).Int64()
	if err != nil {
		return true, fmt.Errorf("count attempt %s: %w", redisKey, err)
	}

	return count <= int64(l.max), nil
}

// Reset clears the window for key, called after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, key string) error {
	if l.client == nil {
		return nil
	}
	return l.client.Del(ctx, keyPrefix+key).Err()
}
