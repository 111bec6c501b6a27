package middleware

import (
	"strings"

	"go-jobsearch-backend/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Identity extracts the subject claim from a bearer token so search pages
// can be cached per user. This is NOT authentication: the gateway in front
// of this service verifies tokens, so the claim is read without signature
// verification, and absent or unreadable tokens just fall back to the
// anonymous identity. Requests are never rejected here.
func Identity() gin.HandlerFunc {
	parser := jwt.NewParser()

	return func(c *gin.Context) {
		identity := domain.AnonymousIdentity

		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			var claims jwt.MapClaims = map[string]any{}
			if _, _, err := parser.ParseUnverified(tokenString, claims); err == nil {
				if sub, ok := claims["sub"].(string); ok && sub != "" {
					identity = sub
				}
			}
		}

		c.Set(string(domain.KeyIdentity), identity)
		c.Next()
	}
}
