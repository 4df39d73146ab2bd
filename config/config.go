package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	StorageS3    = "s3"
	StorageLocal = "local"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL        string `env:"DATABASE_URL"`
	Port               string `env:"PORT" envDefault:"8080"`
	GoEnv              string `env:"GO_ENV" envDefault:"development"`
	Auth0Domain        string `env:"AUTH0_DOMAIN"`
	Auth0Audience      string `env:"AUTH0_AUDIENCE"`
	AWSRegion          string `env:"AWS_REGION" envDefault:"us-east-1"`
	AWSS3Bucket        string `env:"AWS_S3_BUCKET"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	LogLevel           string `env:"LOG_LEVEL" envDefault:"info"`

	// Artwork storage
	StorageBackend string        `env:"STORAGE_BACKEND" envDefault:"s3"` // "s3" or "local"
	UploadDir      string        `env:"UPLOAD_DIR" envDefault:"./uploads"`
	UploadTimeout  time.Duration `env:"UPLOAD_TIMEOUT" envDefault:"60s"`
	PresignTTL     time.Duration `env:"PRESIGN_TTL" envDefault:"1h"`

	// Lets admins approve artwork for customers who ordered by phone
	AllowAdminApproval bool `env:"ALLOW_ADMIN_APPROVAL" envDefault:"false"`

	// Pricing
	TaxRate               decimal.Decimal `env:"TAX_RATE" envDefault:"0.08"`
	ShippingFlatRate      decimal.Decimal `env:"SHIPPING_FLAT_RATE" envDefault:"9.95"`
	FreeShippingThreshold decimal.Decimal `env:"FREE_SHIPPING_THRESHOLD" envDefault:"150"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

var current *Config

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	// Determine which environment file to load
	goEnv := os.Getenv("GO_ENV")
	if goEnv == "" {
		goEnv = "development"
	}

	// Try to load environment-specific file first
	envFile := fmt.Sprintf(".env.%s", goEnv)
	if err := godotenv.Load(envFile); err != nil {
		// In production environment variables are set directly
		if err := godotenv.Load(); err != nil {
			log.Printf("No .env file found, using system environment variables")
		}
	} else {
		log.Printf("Loaded configuration from %s", envFile)
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Parse reads the configuration from the environment without loading .env files
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(cfg.StorageBackend))
	return cfg, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	switch c.StorageBackend {
	case StorageS3:
		if c.AWSS3Bucket == "" {
			return fmt.Errorf("AWS_S3_BUCKET is required when STORAGE_BACKEND=s3")
		}
	case StorageLocal:
		if c.UploadDir == "" {
			return fmt.Errorf("UPLOAD_DIR is required when STORAGE_BACKEND=local")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q", StorageS3, StorageLocal, c.StorageBackend)
	}
	if c.TaxRate.IsNegative() || c.ShippingFlatRate.IsNegative() || c.FreeShippingThreshold.IsNegative() {
		return fmt.Errorf("TAX_RATE, SHIPPING_FLAT_RATE and FREE_SHIPPING_THRESHOLD must not be negative")
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

// SetConfig installs the configuration used by handlers
func SetConfig(cfg *Config) {
	current = cfg
}

// GetConfig returns the installed configuration, or defaults parsed from the environment
func GetConfig() *Config {
	if current == nil {
		cfg, err := Parse()
		if err != nil {
			log.Printf("Failed to parse configuration, using zero values: %v", err)
			cfg = &Config{}
		}
		current = cfg
	}
	return current
}
