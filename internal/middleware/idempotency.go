package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go-payouts/internal/shared/apperror"
	"go-payouts/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	IdempotencyHeader   = "Idempotency-Key"
	IdempotencyCacheKey = "idempotency_cache_key"
	IdempotencyLockKey  = "idempotency_lock_key"

	idempotencyLockTTL = 30 * time.Second
)

// Idempotency replays the cached result of a POST carrying a known
// Idempotency-Key and rejects a concurrent duplicate with 409. The handler
// owns the cache write and the lock release, see StoreIdempotent.
func Idempotency(rdb *redis.Client) gin.HandlerFunc {
	logger := zap.L().Named("middleware.idempotency")

	return func(c *gin.Context) {
		idempKey := c.GetHeader(IdempotencyHeader)
		if rdb == nil || idempKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		cacheKey := fmt.Sprintf("idemp:%s:%s", c.Request.URL.Path, idempKey)
		lockKey := cacheKey + ":lock"

		val, err := rdb.Get(ctx, cacheKey).Result()
		if err == nil {
			var cached any
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				c.Header("Idempotent-Replayed", "true")
				response.Success(c, http.StatusOK, cached, nil)
				c.Abort()
				return
			}
		} else if err != redis.Nil {
			logger.Warn("idempotency cache unavailable", zap.Error(err))
			c.Next()
			return
		}

		isNew, err := rdb.SetNX(ctx, lockKey, "locked", idempotencyLockTTL).Result()
		if err != nil {
			logger.Warn("idempotency lock unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !isNew {
			response.Error(c, http.StatusConflict, apperror.CodeConflict, "A request with this idempotency key is still being processed", nil)
			c.Abort()
			return
		}

		c.Set(IdempotencyCacheKey, cacheKey)
		c.Set(IdempotencyLockKey, lockKey)

		c.Next()
	}
}

// StoreIdempotent caches payload under the request's idempotency key and
// releases its lock. It is a no-op for requests without a key.
func StoreIdempotent(c *gin.Context, rdb *redis.Client, payload any, ttl time.Duration) {
	if rdb == nil {
		return
	}
	ctx := c.Request.Context()

	if ck := c.GetString(IdempotencyCacheKey); ck != "" && payload != nil {
		if data, err := json.Marshal(payload); err == nil {
			_ = rdb.Set(ctx, ck, data, ttl).Err()
		}
	}
	if lk := c.GetString(IdempotencyLockKey); lk != "" {
		_ = rdb.Del(ctx, lk).Err()
	}
}
