package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cafe-pos-api/config"
	"github.com/kendall-kelly/cafe-pos-api/models"
	"github.com/kendall-kelly/cafe-pos-api/routes"
	"github.com/kendall-kelly/cafe-pos-api/services"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Well-known identities wired into every App
const (
	OwnerToken    = "owner-token"
	CashierToken  = "cashier-token"
	CustomerToken = "customer-token"

	OwnerSubject    = "auth0|owner"
	CashierSubject  = "auth0|cashier"
	CustomerSubject = "auth0|customer"
)

// StaticUserInfo answers /userinfo lookups from a fixed table
type StaticUserInfo map[string]*services.Auth0UserInfo

// GetUserInfo implements services.UserInfoProvider
func (s StaticUserInfo) GetUserInfo(_ context.Context, accessToken string) (*services.Auth0UserInfo, error) {
	info, ok := s[accessToken]
	if !ok {
		return nil, fmt.Errorf("unknown access token")
	}
	return info, nil
}

// App is a fully wired API backed by an in-memory database
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	Config *config.Config
	Images services.ImageService
}

// AppOption customises NewApp
type AppOption func(*routes.Dependencies)

// WithImages replaces the default local image storage
func WithImages(images services.ImageService) AppOption {
	return func(deps *routes.Dependencies) {
		deps.Images = images
	}
}

// NewApp builds the production router with token auth stubbed out. The
// owner token is provisioned as admin on first use; the cashier is stored
// up front; the customer token has no profile until POST /users.
func NewApp(t *testing.T, opts ...AppOption) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := TestConfig(t.TempDir(), OwnerSubject)
	db := OpenDatabase(t, cfg)

	cashier := models.User{Auth0ID: CashierSubject, Name: "Casey Cashier", Email: "cashier@example.com", Role: models.RoleCashier}
	if err := db.Create(&cashier).Error; err != nil {
		t.Fatalf("Failed to create cashier: %v", err)
	}

	deps := routes.Dependencies{
		Config: cfg,
		DB:     db,
		Images: services.NewLocalImageService(cfg.UploadDir),
		UserInfo: StaticUserInfo{
			CustomerToken: {Sub: CustomerSubject, Email: "customer@example.com", Name: "Quinn Customer"},
			OwnerToken:    {Sub: OwnerSubject, Email: "owner@example.com", Name: "Olive Owner"},
		},
		Auth: TokenAuth(map[string]Identity{
			OwnerToken:    {Subject: OwnerSubject},
			CashierToken:  {Subject: CashierSubject, Role: models.RoleCashier},
			CustomerToken: {Subject: CustomerSubject, Role: models.RoleCustomer},
		}),
	}
	for _, opt := range opts {
		opt(&deps)
	}

	return &App{
		Router: routes.NewRouter(deps),
		DB:     db,
		Config: cfg,
		Images: deps.Images,
	}
}

// Do sends a JSON request; body may be nil, a raw string or any value to marshal
func (a *App) Do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		encoded, _ := json.Marshal(b)
		reader = bytes.NewBuffer(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

// Envelope is the API's response wrapper
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// DecodeEnvelope parses a response body, failing the test on bad JSON
func DecodeEnvelope(t *testing.T, body []byte) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("Response is not valid JSON: %v (%s)", err, body)
	}
	return env
}

// DecodeData unmarshals the envelope's data into out
func DecodeData(t *testing.T, body []byte, out interface{}) {
	t.Helper()
	env := DecodeEnvelope(t, body)
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("Failed to decode data: %v (%s)", err, env.Data)
	}
}

// ErrorCode returns the error code of a failed response, or ""
func ErrorCode(t *testing.T, body []byte) string {
	t.Helper()
	env := DecodeEnvelope(t, body)
	if env.Error == nil {
		return ""
	}
	return env.Error.Code
}

// CreateProduct stores a product directly
func (a *App) CreateProduct(t *testing.T, name string, price int64, stock int) models.Product {
	t.Helper()
	product := models.Product{
		Name:      name,
		Category:  "coffee",
		Price:     decimal.NewFromInt(price),
		Stock:     stock,
		Available: true,
	}
	if err := a.DB.Create(&product).Error; err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}
	return product
}
