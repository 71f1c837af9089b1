package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"paycompliance/internal/contextutil"
	"paycompliance/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	ReplayHeader      = "Idempotent-Replay"

	idempotencyLockTTL = 30 * time.Second
)

// CachedResponse is what is stored under an idempotency key.
type CachedResponse struct {
	StatusCode int             `json:"status_code"`
	Body       json.RawMessage `json:"body"`
}

type bodyCaptureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyCaptureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyKeys builds the cache and lock keys for a request.
func IdempotencyKeys(path, userID, key string) (cacheKey, lockKey string) {
	cacheKey = fmt.Sprintf("idemp:%s:%s:%s", path, userID, key)
	return cacheKey, cacheKey + ":lock"
}

// Idempotency replays the stored response for a repeated POST carrying the
// same Idempotency-Key. A concurrent duplicate gets 409 while the first one
// is still running. Only 2xx responses are stored. With a nil client, or
// when Redis is unreachable, requests pass through.
func Idempotency(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		idempKey := c.GetHeader(IdempotencyHeader)
		if rdb == nil || idempKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		log := contextutil.GetLogger(ctx, logger)
		cacheKey, lockKey := IdempotencyKeys(c.FullPath(), CurrentUserID(c), idempKey)

		val, err := rdb.Get(ctx, cacheKey).Result()
		switch {
		case err == nil:
			var cached CachedResponse
			if jsonErr := json.Unmarshal([]byte(val), &cached); jsonErr == nil {
				c.Header(ReplayHeader, "true")
				c.Data(cached.StatusCode, "application/json; charset=utf-8", cached.Body)
				c.Abort()
				return
			}
			log.Warn("discarding unreadable idempotency entry", zap.String("key", cacheKey))
		case !errors.Is(err, redis.Nil):
			log.Warn("idempotency lookup failed, continuing without it", zap.Error(err))
			c.Next()
			return
		}

		acquired, err := rdb.SetNX(ctx, lockKey, "locked", idempotencyLockTTL).Result()
		if err != nil {
			log.Warn("idempotency lock failed, continuing without it", zap.Error(err))
			c.Next()
			return
		}
		if !acquired {
			c.AbortWithStatusJSON(http.StatusConflict, response.CodedError(http.StatusConflict,
				"REQUEST_IN_PROGRESS", "A request with this idempotency key is still being processed", nil))
			return
		}

		writer := bodyCaptureWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer

		c.Next()

		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			var body json.RawMessage
			if writer.body.Len() > 0 {
				body = writer.body.Bytes()
			}
			payload, err := json.Marshal(CachedResponse{StatusCode: status, Body: body})
			if err != nil {
				log.Warn("response is not JSON, not storing it", zap.Error(err))
			} else if err := rdb.Set(ctx, cacheKey, string(payload), ttl).Err(); err != nil {
				log.Warn("failed to store idempotent response", zap.Error(err))
			}
		}
		if err := rdb.Del(ctx, lockKey).Err(); err != nil {
			log.Warn("failed to release idempotency lock", zap.Error(err))
		}
	}
}
