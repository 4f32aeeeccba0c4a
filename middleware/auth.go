package middleware

import (
	"strings"

	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/services"
	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/utils"

	"github.com/gin-gonic/gin"
)

// ContextUserID is the gin context key the auth middleware stores the
// authenticated user id under.
const ContextUserID = "user_id"

// ContextToken holds the raw bearer token, needed by the logout handler.
const ContextToken = "token"

// AuthMiddleware validates the Bearer token and rejects blacklisted ones.
// blacklist may be nil when Redis is not configured.
func AuthMiddleware(tokens *services.TokenService, blacklist *services.TokenBlacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.Unauthorized(c, "missing or invalid token")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		if blacklist.Contains(c.Request.Context(), tokenString) {
			utils.Unauthorized(c, "token has been invalidated")
			c.Abort()
			return
		}

		claims, err := tokens.Verify(tokenString)
		if err != nil {
			utils.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextToken, tokenString)
		c.Next()
	}
}
