package server

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AccessTokenRequired gates the API behind a shared secret. The check is
// per request; there is no session state in the process.
func AccessTokenRequired(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader("X-Access-Token")
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid access token"})
			return
		}
		c.Next()
	}
}
