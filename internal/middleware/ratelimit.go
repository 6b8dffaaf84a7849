package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/parcelbox/parcel-service/internal/audit"
	apperrors "github.com/parcelbox/parcel-service/internal/errors"
	"github.com/parcelbox/parcel-service/internal/httputil"
	redisclient "github.com/parcelbox/parcel-service/internal/redis"
)

const rateLimitWindow = 60 * time.Second

// rateLimitScript is a sliding window over a sorted set of request
// timestamps. Members are generated by the caller since script PRNG state is
// not guaranteed to differ between calls. Returns {allowed, remaining, resetAt}.
var rateLimitScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]

local windowStart = now - window

redis.call('ZREMRANGEBYSCORE', key, '-inf', windowStart)

local count = redis.call('ZCARD', key)

if count >= limit then
    local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
    local resetAt = 0
    if #oldest >= 2 then
        resetAt = tonumber(oldest[2]) + window
    else
        resetAt = now + window
    end
    return {0, 0, resetAt}
end

redis.call('ZADD', key, now, member)
redis.call('EXPIRE', key, window + 10)

local remaining = limit - count - 1
local resetAt = now + window

return {1, remaining, resetAt}
`)

type RedisRateLimiter struct {
	client redis.Scripter
	now    func() time.Time
}

func NewRedisRateLimiter(client redis.Scripter) *RedisRateLimiter {
	return &RedisRateLimiter{client: client, now: time.Now}
}

// Check records one request for the session. Script failures allow the
// request so a cache hiccup does not block parcel creation.
func (rl *RedisRateLimiter) Check(ctx context.Context, sessionID string, limit int) (allowed bool, remaining int, resetAt int64) {
	now := rl.now().Unix()
	key := redisclient.RateLimitKey(sessionID)
	member := strconv.FormatInt(now, 10) + "-" + uuid.NewString()

	result, err := rateLimitScript.Run(ctx, rl.client, []string{key}, now, int64(rateLimitWindow.Seconds()), limit, member).Int64Slice()
	if err != nil {
		log.Warn().Err(err).Msg("redis rate limit check failed, allowing request")
		return true, limit - 1, now + int64(rateLimitWindow.Seconds())
	}

	if len(result) != 3 {
		log.Warn().Int("len", len(result)).Msg("unexpected redis rate limit result")
		return true, limit - 1, now + int64(rateLimitWindow.Seconds())
	}

	return result[0] == 1, int(result[1]), result[2]
}

type RateLimitMiddleware struct {
	limiter *RedisRateLimiter
	limit   int
}

// NewRateLimitMiddleware limits each session to limit requests per minute.
// A limit of zero or less disables the check.
func NewRateLimitMiddleware(client redis.Scripter, limit int) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: NewRedisRateLimiter(client),
		limit:   limit,
	}
}

func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := GetSessionID(r.Context())
		if !ok || m.limit <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		allowed, remaining, resetAt := m.limiter.Check(r.Context(), sessionID, m.limit)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(m.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt, 10))

		if !allowed {
			audit.LogFromRequest(r, audit.Event{
				Type:      audit.EventRateLimitExceed,
				SessionID: sessionID,
			})
			w.Header().Set("Retry-After", strconv.Itoa(int(rateLimitWindow.Seconds())))
			httputil.WriteError(w, apperrors.RateLimitExceeded())
			return
		}

		next.ServeHTTP(w, r)
	})
}
