package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vnfurniture/internal/apperror"
	"vnfurniture/internal/cache"
	"vnfurniture/internal/logger"
)

const (
	SignupMaxAttempts = 10
	SignupWindow      = 30 * time.Minute

	CartMaxAdds = 20
	CartWindow  = time.Minute

	UploadMaxRequests = 30
	UploadWindow      = time.Minute
)

// RateLimit allows limit requests per window for each key. The key is the
// signed-in user id when there is one, the client IP otherwise. A cache
// outage lets requests through.
func RateLimit(counter cache.Cache, prefix string, limit int64, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		who := c.ClientIP()
		if u := Auth(c).User(); u != nil {
			who = u.ID.String()
		}
		key := prefix + ":" + who

		n, err := counter.Incr(c, key, window)
		if err != nil {
			logger.Error(c, "rate limit counter failed", err, zap.String("key", key))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
		if n <= limit {
			c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", limit-n))
			c.Next()
			return
		}

		ttl, _ := counter.TTL(c, key)
		if ttl <= 0 {
			ttl = window
		}
		c.Header("Retry-After", fmt.Sprintf("%d", int(ttl.Seconds())))
		logger.Warn(c, "🚫 rate limited", zap.String("key", key))

		msg := fmt.Sprintf("Too many requests. Try again in %d minutes", int((ttl+time.Minute-1)/time.Minute))
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apperror.New(http.StatusTooManyRequests, msg, nil))
			return
		}
		Notifier(c).Error(msg)
		Redirect(c, Back(c, "/"))
	}
}
