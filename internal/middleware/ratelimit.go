package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/studyaid/core/internal/pkg/response"
)

// RateLimit returns a middleware allowing at most max requests per client IP
// within each fixed window. Redis errors let the request through.
func RateLimit(rdb *redis.Client, max int, window time.Duration) gin.HandlerFunc {
	if window <= 0 {
		window = time.Minute
	}
	retryAfter := strconv.Itoa(int((window + time.Second - 1) / time.Second))

	return func(c *gin.Context) {
		ip := c.ClientIP()
		if rdb == nil || max <= 0 || ip == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		windowKey := time.Now().UnixNano() / int64(window)
		key := fmt.Sprintf("studyaid:rate_limit:%s:%d", ip, windowKey)

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			c.Next()
			return
		}

		if count == 1 {
			rdb.PExpire(ctx, key, window+time.Second)
		}

		if count > int64(max) {
			c.Header("Retry-After", retryAfter)
			response.TooManyRequests(c, "Too many requests, slow down a little")
			return
		}

		c.Next()
	}
}
