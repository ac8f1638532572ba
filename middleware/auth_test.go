package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cafe-pos-api/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	return c, w
}

func authErrorCode(t *testing.T, err error) string {
	t.Helper()
	var authErr *AuthError
	require.True(t, errors.As(err, &authErr), "expected *AuthError, got %T", err)
	return authErr.Code
}

func TestGetUserID(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		set      bool
		want     string
		wantCode string
	}{
		{name: "subject present", value: "auth0|123456", set: true, want: "auth0|123456"},
		{name: "subject missing", wantCode: "MISSING_USER_ID"},
		{name: "subject not a string", value: 12345, set: true, wantCode: "INVALID_USER_ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := testContext()
			if tt.set {
				c.Set(userIDKey, tt.value)
			}

			got, err := GetUserID(c)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, authErrorCode(t, err))
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetAccessToken(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(*gin.Context)
		want     string
		wantCode string
	}{
		{name: "token present", setup: func(c *gin.Context) { c.Set(accessTokenKey, "abc.def.ghi") }, want: "abc.def.ghi"},
		{name: "token missing", setup: func(*gin.Context) {}, wantCode: "MISSING_TOKEN"},
		{name: "token empty", setup: func(c *gin.Context) { c.Set(accessTokenKey, "") }, wantCode: "INVALID_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := testContext()
			tt.setup(c)

			got, err := GetAccessToken(c)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, authErrorCode(t, err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetClaims(t *testing.T) {
	c, _ := testContext()

	_, err := GetClaims(c)
	assert.Equal(t, "MISSING_CLAIMS", authErrorCode(t, err))

	c.Set(claimsKey, "not claims")
	_, err = GetClaims(c)
	assert.Equal(t, "INVALID_CLAIMS", authErrorCode(t, err))

	c.Set(claimsKey, &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{Issuer: "https://test.auth0.com/", Subject: "auth0|123456"},
	})
	claims, err := GetClaims(c)
	require.NoError(t, err)
	assert.Equal(t, "auth0|123456", claims.RegisteredClaims.Subject)
}

func TestGetCustomClaims(t *testing.T) {
	c, _ := testContext()

	_, ok := GetCustomClaims(c)
	assert.False(t, ok)

	c.Set(claimsKey, &validator.ValidatedClaims{})
	_, ok = GetCustomClaims(c)
	assert.False(t, ok, "tokens without custom claims have no role")

	c.Set(claimsKey, &validator.ValidatedClaims{
		CustomClaims: &CustomClaims{Scope: "openid profile", Role: "cashier"},
	})
	claims, ok := GetCustomClaims(c)
	require.True(t, ok)
	assert.Equal(t, "cashier", claims.Role)
}

func TestTokenErrorHandler(t *testing.T) {
	for _, cause := range []error{jwtmiddleware.ErrJWTMissing, errors.New("signature mismatch")} {
		t.Run(cause.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			tokenErrorHandler(w, httptest.NewRequest(http.MethodGet, "/", nil), cause)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var body struct {
				Success bool `json:"success"`
				Error   struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, "INVALID_TOKEN", body.Error.Code)
		})
	}
}

func TestNewTokenValidator_RejectsGarbage(t *testing.T) {
	v, err := newTokenValidator(&config.Config{Auth0Domain: "test.auth0.com", Auth0Audience: "https://api.test.com"})
	require.NoError(t, err)

	_, err = v.ValidateToken(httptest.NewRequest(http.MethodGet, "/", nil).Context(), "not-a-jwt")
	assert.Error(t, err)
}

func TestEnsureValidToken_AbortsChain(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reached := false

	router := gin.New()
	router.GET("/secure",
		EnsureValidToken(&config.Config{Auth0Domain: "test.auth0.com", Auth0Audience: "https://api.test.com"}),
		func(c *gin.Context) { reached = true },
	)

	for _, header := range []string{"", "Bearer not-a-jwt", "Basic dXNlcjpwYXNz"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/secure", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
	}
	assert.False(t, reached)
}

func TestAbortWithError(t *testing.T) {
	c, w := testContext()

	abortWithError(c, http.StatusForbidden, "FORBIDDEN", "nope")

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"success":false,"error":{"code":"FORBIDDEN","message":"nope"}}`, w.Body.String())
}
