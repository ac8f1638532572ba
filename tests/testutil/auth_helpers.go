package testutil

import (
	"net/http"
	"strings"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cafe-pos-api/middleware"
)

// MockValidatedClaims creates a mock ValidatedClaims for testing
func MockValidatedClaims(subject, role string, scopes []string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  "https://test.auth0.com/",
			Subject: subject,
		},
		CustomClaims: &middleware.CustomClaims{
			Scope: strings.Join(scopes, " "),
			Role:  role,
		},
	}
}

// Identity is what a bearer token authenticates as
type Identity struct {
	Subject string
	Role    string
}

// TokenAuth stands in for the JWT middleware: each known bearer token maps
// to an identity and anything else is rejected with 401
func TokenAuth(tokens map[string]Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")

		identity, ok := tokens[token]
		if header == "" || !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_TOKEN",
					"message": "Failed to validate JWT.",
				},
			})
			return
		}

		c.Set("user_id", identity.Subject)
		c.Set("access_token", token)
		c.Set("validated_claims", MockValidatedClaims(identity.Subject, identity.Role, nil))
		c.Next()
	}
}
