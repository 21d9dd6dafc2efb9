package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/studyaid/core/internal/pkg/response"
)

const (
	idempotenceHeader = "x-idempotence"
	idempotenceTTL    = 60 * time.Second
)

// Idempotence rejects a repeated non-GET request with the same key within 60
// seconds. The key is the x-idempotence header, or a hash of method, url, body,
// user agent and client ip.
func Idempotence(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || c.Request.Method == http.MethodGet {
			c.Next()
			return
		}

		key, err := resolveIdempotenceKey(c)
		if err != nil || key == "" {
			c.Next()
			return
		}

		redisKey := fmt.Sprintf("studyaid:idempotence:%s", key)
		ctx := c.Request.Context()

		val, err := rdb.Get(ctx, redisKey).Result()
		if err == nil {
			msg := "The same request can only be sent once within 60 seconds"
			if val == "0" {
				msg = "The same request is still being processed"
			}
			response.Conflict(c, msg)
			return
		}

		if !errors.Is(err, redis.Nil) {
			c.Next()
			return
		}

		if setErr := rdb.Set(ctx, redisKey, "0", idempotenceTTL).Err(); setErr != nil {
			c.Next()
			return
		}

		c.Next()

		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			rdb.Set(ctx, redisKey, "1", redis.KeepTTL)
		} else {
			rdb.Del(ctx, redisKey)
		}
	}
}

// resolveIdempotenceKey returns the idempotence key for the current request.
func resolveIdempotenceKey(c *gin.Context) (string, error) {
	if hdr := c.GetHeader(idempotenceHeader); hdr != "" {
		return hdr, nil
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", err
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

	ua := c.Request.UserAgent()
	ip := c.ClientIP()
	if len(body) == 0 && ua == "" && ip == "" {
		return "", nil
	}

	raw := c.Request.Method + "|" + c.Request.URL.String() + "|" + string(body) + "|" + ua + "|" + ip
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:]), nil
}
