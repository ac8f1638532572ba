package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
)

// Supported image storage backends
const (
	StorageS3    = "s3"
	StorageLocal = "local"
)

// Config holds all application configuration
type Config struct {
	DatabaseDriver     string
	DatabaseURL        string
	Port               string
	GoEnv              string
	Auth0Domain        string
	Auth0Audience      string
	AWSRegion          string
	AWSS3Bucket        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	ImageStorage       string
	UploadDir          string
	CORSAllowedOrigins []string
	// DefaultAdminSubject is the token subject provisioned as admin on first use
	DefaultAdminSubject string
	IDMaxDigits         int
	IDFetchLimit        int
	LogLevel            string
}

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	// Determine which environment file to load
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Try to load environment-specific file first
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		// If environment-specific file doesn't exist, try .env
		if err := godotenv.Load(); err != nil {
			log.Printf("No .env file found, using system environment variables")
		}
	} else {
		log.Printf("Loaded configuration from %s", envFile)
	}

	config := &Config{
		DatabaseDriver:      strings.ToLower(getEnv("DATABASE_DRIVER", DriverPostgres)),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		Port:                getEnv("PORT", "8080"),
		GoEnv:               getEnv("GO_ENV", "development"),
		Auth0Domain:         getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience:       getEnv("AUTH0_AUDIENCE", ""),
		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSS3Bucket:         getEnv("AWS_S3_BUCKET", ""),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		ImageStorage:        strings.ToLower(getEnv("IMAGE_STORAGE", StorageLocal)),
		UploadDir:           getEnv("UPLOAD_DIR", "./uploads"),
		CORSAllowedOrigins:  splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		DefaultAdminSubject: getEnv("DEFAULT_ADMIN_SUBJECT", ""),
		IDMaxDigits:         getEnvInt("ID_MAX_DIGITS", 9),
		IDFetchLimit:        getEnvInt("ID_FETCH_LIMIT", 100),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
	case DriverMySQL:
		if c.DatabaseURL != "" {
			if _, err := mysql.ParseDSN(c.DatabaseURL); err != nil {
				return fmt.Errorf("DATABASE_URL is not a valid MySQL DSN: %w", err)
			}
		}
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}

	if c.DatabaseURL == "" && c.DatabaseDriver != DriverSQLite {
		return fmt.Errorf("DATABASE_URL is required")
	}

	switch c.ImageStorage {
	case StorageLocal:
	case StorageS3:
		if c.AWSS3Bucket == "" {
			return fmt.Errorf("AWS_S3_BUCKET is required when IMAGE_STORAGE=s3")
		}
	default:
		return fmt.Errorf("unsupported IMAGE_STORAGE %q", c.ImageStorage)
	}

	if c.IDMaxDigits <= 0 || c.IDMaxDigits > 18 {
		return fmt.Errorf("ID_MAX_DIGITS must be between 1 and 18")
	}
	if c.IDFetchLimit <= 0 {
		return fmt.Errorf("ID_FETCH_LIMIT must be positive")
	}
	if c.LogLevel != "" {
		if _, ok := gormLogLevels[strings.ToLower(c.LogLevel)]; !ok {
			return fmt.Errorf("unsupported LOG_LEVEL %q", c.LogLevel)
		}
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid integer for %s (%q), using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
