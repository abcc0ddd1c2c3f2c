package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimit caps requests per client IP using a redis counter: INCR the
// key, expire it after one second, reject once the count exceeds qps.
// Redis being unreachable fails open so a cache hiccup never blocks the
// whole endpoint.
func RateLimit(rdb *redis.Client, qps int, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "rate:solve:" + c.ClientIP()
		ctx := c.Request.Context()

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			log.Warn("rate limit check failed", zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			rdb.Expire(ctx, key, time.Second)
		}

		if count > int64(qps) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, slow down."})
			c.Abort()
			return
		}
		c.Next()
	}
}
