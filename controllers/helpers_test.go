package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cafe-pos-api/config"
	"github.com/kendall-kelly/cafe-pos-api/middleware"
	"github.com/kendall-kelly/cafe-pos-api/models"
	"github.com/kendall-kelly/cafe-pos-api/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// every connection to :memory: opens a fresh database
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get test database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	return router
}

// setupMockAuth0Server creates a mock HTTP server that simulates Auth0's /userinfo endpoint
func setupMockAuth0Server(userInfoMap map[string]*services.Auth0UserInfo) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/userinfo" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		// Extract token from Authorization header
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || len(authHeader) < 7 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		token := authHeader[7:] // Remove "Bearer " prefix

		// Look up user info by token
		userInfo, exists := userInfoMap[token]
		if !exists {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(userInfo)
	}))
}

// mockAuthMiddleware simulates the Auth0 JWT middleware for testing
// It sets up the context exactly as the real EnsureValidToken middleware does
func mockAuthMiddleware(auth0ID, role, accessToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", auth0ID)
		c.Set("access_token", accessToken)
		c.Set("validated_claims", &validator.ValidatedClaims{
			RegisteredClaims: validator.RegisteredClaims{Subject: auth0ID},
			CustomClaims:     &middleware.CustomClaims{Role: role},
		})
		c.Next()
	}
}

// asUser authenticates every request as auth0ID and loads the stored user
func asUser(db *gorm.DB, auth0ID string) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		mockAuthMiddleware(auth0ID, "", "token"),
		middleware.LoadCurrentUser(db, ""),
	}
}

func createUser(t *testing.T, db *gorm.DB, auth0ID, role string) models.User {
	user := models.User{
		Auth0ID: auth0ID,
		Name:    "User " + auth0ID,
		Email:   auth0ID[len("auth0|"):] + "@example.com",
		Role:    role,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createProduct(t *testing.T, db *gorm.DB, name string, price int64, stock int) models.Product {
	product := models.Product{
		Name:      name,
		Category:  "coffee",
		Price:     decimal.NewFromInt(price),
		Stock:     stock,
		Available: true,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

// testServices wires the service layer the way the router does
type testServices struct {
	cfg           *config.Config
	resolver      *services.IDResolver
	settings      *services.SettingsService
	notifications *services.NotificationService
	orders        *services.OrderService
	invoices      *services.InvoiceService
	sales         *services.SaleService
}

func newTestServices(db *gorm.DB) *testServices {
	cfg := &config.Config{IDMaxDigits: 9, IDFetchLimit: 100}
	resolver := services.NewIDResolver(db, cfg)
	settings := services.NewSettingsService(db)
	notifications := services.NewNotificationService(db, resolver)
	orders := services.NewOrderService(db, settings, notifications, resolver)
	return &testServices{
		cfg:           cfg,
		resolver:      resolver,
		settings:      settings,
		notifications: notifications,
		orders:        orders,
		invoices:      services.NewInvoiceService(orders, settings),
		sales:         services.NewSaleService(db, resolver),
	}
}

func doJSON(router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		encoded, _ := json.Marshal(b)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), "body: %s", w.Body.String())
	return response
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	response := decodeResponse(t, w)
	errorData, ok := response["error"].(map[string]interface{})
	require.True(t, ok, "body: %s", w.Body.String())
	return errorData["code"].(string)
}
