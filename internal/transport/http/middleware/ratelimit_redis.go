package middleware

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vedran77/campusconnect/pkg/logger"
)

const rateLimitScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) then
  return 0
end
return 1
`

// RedisLimiter shares fixed-window counters across instances. Requests are
// allowed whenever Redis cannot be reached.
type RedisLimiter struct {
	client *redis.Client
	script *redis.Script
	log    logger.Logger
}

func NewRedisLimiter(client *redis.Client, log logger.Logger) *RedisLimiter {
	if client == nil {
		return nil
	}
	return &RedisLimiter{
		client: client,
		script: redis.NewScript(rateLimitScript),
		log:    log,
	}
}

func (l *RedisLimiter) Allow(key string, limit int, window time.Duration) bool {
	if l == nil || l.client == nil {
		return true
	}
	if key == "" || limit <= 0 || window <= 0 {
		return true
	}
	ttl := window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}
	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()
	allowed, err := l.script.Run(ctx, l.client, []string{key}, ttl, limit).Int64()
	if err != nil {
		l.log.Warn(ctx, "rate limiter unavailable, allowing request", logger.String("key", key), logger.Err(err))
		return true
	}
	return allowed == 1
}
