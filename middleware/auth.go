package middleware

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cafe-pos-api/config"
)

// Context keys set by EnsureValidToken
const (
	userIDKey      = "user_id"
	accessTokenKey = "access_token"
	claimsKey      = "validated_claims"
)

const (
	jwksCacheTTL   = 5 * time.Minute
	tokenClockSkew = time.Minute
)

// CustomClaims are the non-standard claims the POS reads from a token
type CustomClaims struct {
	Scope string `json:"scope"`
	// Role is the optional role granted by an Auth0 action
	Role string `json:"https://cafe-pos/role"`
}

// Validate satisfies validator.CustomClaims; unknown roles are ignored later
func (c CustomClaims) Validate(context.Context) error {
	return nil
}

// AuthError is returned by the context accessors
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// abortWithError writes the standard error envelope and stops the chain
func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// newTokenValidator builds an RS256 validator for the tenant's JWKS
func newTokenValidator(cfg *config.Config) (*validator.Validator, error) {
	issuerURL, err := url.Parse("https://" + cfg.Auth0Domain + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid issuer url: %w", err)
	}

	provider := jwks.NewCachingProvider(issuerURL, jwksCacheTTL)

	return validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{cfg.Auth0Audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &CustomClaims{}
		}),
		validator.WithAllowedClockSkew(tokenClockSkew),
	)
}

// tokenErrorHandler answers every rejected token the same way so callers
// cannot tell a missing header from a bad signature
func tokenErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	if !errors.Is(err, jwtmiddleware.ErrJWTMissing) {
		log.Printf("Rejected token: %v", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if _, writeErr := w.Write([]byte(`{"success":false,"error":{"code":"INVALID_TOKEN","message":"Failed to validate JWT."}}`)); writeErr != nil {
		log.Printf("Failed to write error response: %v", writeErr)
	}
}

// EnsureValidToken rejects requests without a valid bearer token and stores
// the subject, raw token and claims for later handlers
func EnsureValidToken(cfg *config.Config) gin.HandlerFunc {
	tokenValidator, err := newTokenValidator(cfg)
	if err != nil {
		log.Fatalf("Failed to set up the jwt validator: %v", err)
	}

	checker := jwtmiddleware.New(
		tokenValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(tokenErrorHandler),
	)

	return func(c *gin.Context) {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)

			c.Set(userIDKey, claims.RegisteredClaims.Subject)
			c.Set(claimsKey, claims)
			if accessToken, err := jwtmiddleware.AuthHeaderTokenExtractor(r); err == nil {
				c.Set(accessTokenKey, accessToken)
			}

			c.Request = r
			c.Next()
		})

		checker.CheckJWT(next).ServeHTTP(c.Writer, c.Request)
		if c.Writer.Status() == http.StatusUnauthorized {
			c.Abort()
		}
	}
}

// contextValue reads a typed value set by the auth middleware
func contextValue[T any](c *gin.Context, key, what string) (T, error) {
	var zero T
	raw, exists := c.Get(key)
	if !exists {
		return zero, &AuthError{Code: "MISSING_" + what, Message: fmt.Sprintf("%s not found in context", what)}
	}
	value, ok := raw.(T)
	if !ok {
		return zero, &AuthError{Code: "INVALID_" + what, Message: fmt.Sprintf("%s has an unexpected type", what)}
	}
	return value, nil
}

// GetUserID returns the token subject
func GetUserID(c *gin.Context) (string, error) {
	return contextValue[string](c, userIDKey, "USER_ID")
}

// GetAccessToken returns the raw bearer token
func GetAccessToken(c *gin.Context) (string, error) {
	token, err := contextValue[string](c, accessTokenKey, "TOKEN")
	if err == nil && token == "" {
		return "", &AuthError{Code: "INVALID_TOKEN", Message: "TOKEN is empty"}
	}
	return token, err
}

// GetClaims returns the validated JWT claims
func GetClaims(c *gin.Context) (*validator.ValidatedClaims, error) {
	return contextValue[*validator.ValidatedClaims](c, claimsKey, "CLAIMS")
}

// GetCustomClaims returns the custom claims of the token, if any
func GetCustomClaims(c *gin.Context) (*CustomClaims, bool) {
	claims, err := GetClaims(c)
	if err != nil || claims == nil {
		return nil, false
	}
	custom, ok := claims.CustomClaims.(*CustomClaims)
	return custom, ok && custom != nil
}
