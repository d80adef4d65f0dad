// Package auth resolves API tokens to a principal for the remote authority
// endpoints. Authentication itself is an external concern; this package
// only checks a presented bearer token against the verifier and either
// injects the principal into the request context or rejects the request.
package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextKeyPrincipal is the gin context key holding the authenticated
// principal identifier.
const ContextKeyPrincipal = "principal"

// TokenVerifier resolves a bearer token to a principal identifier, or
// returns an error for unknown tokens.
type TokenVerifier interface {
	Principal(token string) (string, error)
}

// Middleware rejects requests without a resolvable bearer token. The 401
// body matches the original API: {"error": "Unauthorized"}.
func Middleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		principal, err := verifier.Principal(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Set(ContextKeyPrincipal, principal)
		c.Next()
	}
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(c *gin.Context) (string, bool) {
	principal, ok := c.Get(ContextKeyPrincipal)
	if !ok {
		return "", false
	}
	id, ok := principal.(string)
	return id, ok && id != ""
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
