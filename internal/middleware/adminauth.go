package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ozclean/submission-gateway/internal/service"
)

// Guards the admin surface. Accepts either a Bearer JWT from a human
// admin or an X-API-Key from an automation integration.
func AdminAuth(authService *service.AuthService, apiKeyService *service.APIKeyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKeyHeader := strings.TrimSpace(c.GetHeader("X-API-Key")); apiKeyHeader != "" {
			apiKey, err := apiKeyService.Validate(c.Request.Context(), apiKeyHeader)
			if err != nil || apiKey == nil {
				c.JSON(http.StatusUnauthorized, gin.H{
					"error": "Invalid API key",
				})
				c.Abort()
				return
			}

			c.Set("api_key", apiKey)
			c.Set("api_key_id", apiKey.ID)

			// The request context ends with the request; last-used is
			// tracked on its own context.
			go apiKeyService.UpdateLastUsed(context.Background(), apiKey.ID)

			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization required",
			})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format. Use: Bearer <token>",
			})
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set("user_id", claims["user_id"])
		c.Set("email", claims["email"])
		c.Set("role", claims["role"])

		c.Next()
	}
}
