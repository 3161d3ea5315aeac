package ratelimit

import (
	"fmt"
	"net/http"
	"strings"

	"showtix/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

// Middleware enforces per-IP limits, classifying requests by route
func Middleware(rateLimiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rateLimiter == nil || !rateLimiter.config.Enabled {
			c.Next()
			return
		}

		clientIP := c.ClientIP()
		limitType := classifyRoute(c.Request.URL.Path)

		result, err := rateLimiter.IsAllowed(c.Request.Context(), clientIP, limitType)
		if err != nil {
			// fail open when Redis is unreachable
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", result.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", result.ResetTime))

		if !result.Allowed {
			response.RespondJSON(c, "error", http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil, nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

func classifyRoute(path string) RateLimitType {
	switch {
	case strings.HasSuffix(path, "/health") || strings.HasSuffix(path, "/ping"):
		return RateLimitTypeHealth
	case strings.Contains(path, "/admin"):
		return RateLimitTypeAdmin
	case strings.HasSuffix(path, "/book"):
		return RateLimitTypeBooking
	case strings.Contains(path, "/shows") || strings.Contains(path, "/bookings"):
		return RateLimitTypePublic
	default:
		return RateLimitTypeDefault
	}
}
