package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const identityKey = "identity"

// TokenVerifier resolves a bearer token to a username
type TokenVerifier interface {
	Username(token string) (string, error)
}

// Authenticate resolves the Authorization bearer token, if any, and stores
// the caller's username on the context. A present but invalid token is always
// rejected; a missing token is rejected only when required is set.
func Authenticate(verifier TokenVerifier, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			if required {
				unauthorized(c, "Authentication required")
				return
			}
			c.Next()
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			unauthorized(c, "Authorization header must use the Bearer scheme")
			return
		}

		username, err := verifier.Username(token)
		if err != nil {
			log.Debug().Err(err).Msg("Rejected bearer token")
			unauthorized(c, "Invalid token")
			return
		}

		c.Set(identityKey, username)
		c.Next()
	}
}

// Identity returns the authenticated caller, if any
func Identity(c *gin.Context) (string, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return "", false
	}
	username, ok := v.(string)
	return username, ok && username != ""
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   http.StatusText(http.StatusUnauthorized),
		"message": message,
	})
}
