package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lfdantoni/dashboard-ai/internal/logger"
)

// Throttle rate limits requests per client IP using a fixed window kept in
// redis, so the limits hold across replicas.
type Throttle struct {
	client *goredis.Client
}

func NewThrottle(client *goredis.Client) *Throttle {
	return &Throttle{client: client}
}

// Limit allows at most limit requests per window for each client IP on the
// named route. Redis failures fail open: throttling is protection, not a
// correctness requirement, and must never take the route down with it.
func (t *Throttle) Limit(name string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := fmt.Sprintf("throttle:%s:%s", name, c.ClientIP())

		count, err := t.client.Incr(ctx, key).Result()
		if err != nil {
			logger.Warn("throttle counter unavailable",
				zap.String("route", name),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if count == 1 {
			if err := t.client.Expire(ctx, key, window).Err(); err != nil {
				// a counter without a TTL would throttle this client
				// forever; drop it and fail open
				logger.Warn("throttle window not set",
					zap.String("route", name),
					zap.Error(err),
				)
				t.client.Del(ctx, key)
				c.Next()
				return
			}
		}

		if count > int64(limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests",
			})
			return
		}

		c.Next()
	}
}
