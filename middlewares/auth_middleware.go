package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"greenledger/backend/utils"
)

// Auth admits requests carrying a valid admin bearer token.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		t := strings.TrimPrefix(h, "Bearer ")
		claims, err := utils.ParseJWT(secret, t)
		if err != nil || claims.Role != utils.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set("role", claims.Role)
		c.Next()
	}
}
