package middleware

import (
	"strings"

	"github.com/chachabrian/foodshare-backend/pkg/utils"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware requires a valid operator token in the Authorization header
// or, for WebSocket upgrades, the token query parameter.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		// Browsers cannot set headers on a WebSocket handshake
		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			c.JSON(401, gin.H{"error": "Authorization header or token query parameter required"})
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(secret, tokenString)
		if err != nil || claims.Role != utils.RoleOperator {
			c.JSON(401, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set("operator", claims.Subject)
		c.Next()
	}
}
