package middleware

import (
	"fmt"
	"net/http"
	"time"

	"storefront_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	APIMaxRequests = 100 // par minute et par IP
	APICooldown    = 1 * time.Minute
)

// APIRateLimit limite le nombre de requêtes par IP sur une fenêtre fixe d'une minute.
// Si Redis ne répond pas, la requête passe.
func APIRateLimit(rdb redis.Cmdable, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := "api_requests:" + c.ClientIP()

		requests, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			log.Warn("⚠️ Rate limit indisponible", zap.Error(err))
			c.Next()
			return
		}
		// la fenêtre démarre à la première requête
		if requests == 1 {
			rdb.Expire(ctx, key, APICooldown)
		}

		if requests > APIMaxRequests {
			ttl := rdb.TTL(ctx, key).Val()
			if ttl <= 0 {
				ttl = APICooldown
			}
			c.Header("Retry-After", fmt.Sprintf("%d", int(ttl.Seconds())))
			utils.RespondFailure(c, http.StatusTooManyRequests, "Too many requests. Try again in a minute", nil)
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", APIMaxRequests))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", APIMaxRequests-requests))
		c.Next()
	}
}
