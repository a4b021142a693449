package middleware

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ozclean/submission-gateway/internal/security"
)

// Upper bound on how much body the gate inspects; the rest still
// reaches the handler untouched.
const maxInspectedBody = 64 * 1024

// Runs the security gate for the route's action. Denied requests get a
// generic body only; the reason is logged and recorded server-side.
func SecurityGate(gate *security.Gate, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := peekBody(c)

		info := security.RequestInfo{
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			RawQuery:  c.Request.URL.RawQuery,
			Body:      body,
			Origin:    c.GetHeader("Origin"),
			Referer:   c.GetHeader("Referer"),
			UserAgent: c.Request.UserAgent(),
			ClientIP:  c.ClientIP(),
		}

		decision, err := gate.Evaluate(c.Request.Context(), info, action)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "Security check failed",
			})
			c.Abort()
			return
		}

		if decision.RateLimit != nil {
			c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", gate.Limit(action)))
			c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", decision.RateLimit.Remaining))
			c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", time.Now().Add(decision.RateLimit.ResetIn).Unix()))
		}

		if !decision.Allowed {
			if decision.Status == http.StatusTooManyRequests {
				retryAfter := 0
				if decision.RateLimit != nil {
					retryAfter = int(decision.RateLimit.ResetIn.Seconds())
				}
				c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
				c.JSON(http.StatusTooManyRequests, gin.H{
					"success": false,
					"error":   "Too many requests",
				})
			} else {
				c.JSON(decision.Status, gin.H{
					"success": false,
					"error":   "Access denied",
				})
			}
			c.Abort()
			return
		}

		c.Set("action", action)
		c.Next()
	}
}

// Reads up to maxInspectedBody bytes and restores the body for the
// handler.
func peekBody(c *gin.Context) string {
	if c.Request.Body == nil {
		return ""
	}

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxInspectedBody))
	if err != nil {
		return ""
	}

	rest, _ := io.ReadAll(c.Request.Body)
	c.Request.Body.Close()
	c.Request.Body = io.NopCloser(bytes.NewReader(append(data, rest...)))

	return string(data)
}
