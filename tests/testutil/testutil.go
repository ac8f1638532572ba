package testutil

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/kendall-kelly/cafe-pos-api/config"
	"github.com/kendall-kelly/cafe-pos-api/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// RequireTestEnvironment ensures that tests are running in the test environment.
// This prevents accidental execution of tests against production or development databases.
// It will fail the test immediately if GO_ENV is not set to "test".
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	env := os.Getenv("GO_ENV")
	if env != "test" {
		t.Fatalf("SAFETY CHECK FAILED: Tests must run with GO_ENV=test to prevent data loss. Current GO_ENV=%q. Set GO_ENV=test before running tests.", env)
	}
}

// RequireTestEnvironmentOrSkip is similar to RequireTestEnvironment but skips the test
// instead of failing it.
func RequireTestEnvironmentOrSkip(t *testing.T) {
	t.Helper()

	env := os.Getenv("GO_ENV")
	if env != "test" {
		t.Skipf("Skipping test: GO_ENV must be 'test' (current: %q)", env)
	}
}

// PrintEnvironmentInfo prints the current test environment configuration.
func PrintEnvironmentInfo() {
	fmt.Printf("Test Environment Info:\n")
	fmt.Printf("  GO_ENV: %s\n", os.Getenv("GO_ENV"))
	fmt.Printf("  DATABASE_DRIVER: %s\n", os.Getenv("DATABASE_DRIVER"))
	fmt.Printf("  DATABASE_URL: %s\n", maskDatabaseURL(os.Getenv("DATABASE_URL")))
}

// maskDatabaseURL hides everything after the scheme and host prefix
func maskDatabaseURL(url string) string {
	if url == "" {
		return "(not set)"
	}
	if len(url) <= 20 {
		return url
	}
	if strings.Contains(url, "test") {
		return url[:20] + "... [contains 'test']"
	}
	return url[:20] + "... [WARNING: may not be test DB]"
}

// TestConfig returns a configuration for an in-memory deployment. Subjects
// equal to adminSubject are provisioned as admins on first request.
func TestConfig(uploadDir, adminSubject string) *config.Config {
	return &config.Config{
		DatabaseDriver:      config.DriverSQLite,
		DatabaseURL:         ":memory:",
		Port:                "8080",
		GoEnv:               "test",
		Auth0Domain:         "test.auth0.com",
		Auth0Audience:       "https://api.test.com",
		ImageStorage:        config.StorageLocal,
		UploadDir:           uploadDir,
		CORSAllowedOrigins:  []string{"*"},
		DefaultAdminSubject: adminSubject,
		IDMaxDigits:         9,
		IDFetchLimit:        100,
	}
}

// OpenDatabase opens and migrates the database described by cfg
func OpenDatabase(t *testing.T, cfg *config.Config) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// every connection to :memory: opens a fresh database
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get test database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := models.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() { sqlDB.Close() })
	return db
}
