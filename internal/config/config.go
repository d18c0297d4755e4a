// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const defaultMaxUploadBytes = 32 << 20

// Config holds all runtime configuration for the service.
type Config struct {
	Port        string
	AppEnv      string
	DatabaseURL string // optional; enables the upload index

	// Object storage: "minio" locally, "s3" for AWS S3 or Cloudflare R2, "memory" for development.
	StorageDriver     string
	StorageEndpoint   string
	StorageAccessKey  string
	StorageSecretKey  string
	StorageBucket     string
	StorageRegion     string
	StorageUseSSL     bool
	StoragePathStyle  bool
	StoragePublicBase string // browser-accessible base URL, e.g. "http://localhost:9000/assets"
	StorageSigningKey string // memory driver only

	MaxUploadBytes     int64
	CORSAllowedOrigins []string

	// DotEnvLoaded reports whether a .env file was found.
	DotEnvLoaded bool
}

// Load reads configuration from a .env file (if present) and environment variables.
// Every missing required value is reported in the returned error.
func Load() (*Config, error) {
	dotenv := godotenv.Load() == nil

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		AppEnv:      getEnv("APP_ENV", "development"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		StorageDriver:     getEnv("STORAGE_DRIVER", "minio"),
		StorageEndpoint:   os.Getenv("STORAGE_ENDPOINT"),
		StorageAccessKey:  os.Getenv("STORAGE_ACCESS_KEY"),
		StorageSecretKey:  os.Getenv("STORAGE_SECRET_KEY"),
		StorageBucket:     os.Getenv("STORAGE_BUCKET"),
		StorageRegion:     getEnv("STORAGE_REGION", "us-east-1"),
		StorageUseSSL:     getEnv("STORAGE_USE_SSL", "false") == "true",
		StoragePathStyle:  getEnv("STORAGE_PATH_STYLE", "true") == "true",
		StoragePublicBase: os.Getenv("STORAGE_PUBLIC_BASE"),
		StorageSigningKey: os.Getenv("STORAGE_SIGNING_KEY"),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		DotEnvLoaded:       dotenv,
	}

	var errs []error
	maxUpload, err := strconv.ParseInt(getEnv("MAX_UPLOAD_BYTES", strconv.Itoa(defaultMaxUploadBytes)), 10, 64)
	if err != nil || maxUpload <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be a positive integer"))
	}
	cfg.MaxUploadBytes = maxUpload

	errs = append(errs, cfg.validate()...)
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return cfg, nil
}

func (c *Config) validate() []error {
	var errs []error
	require := func(key, value string) {
		if value == "" {
			errs = append(errs, fmt.Errorf("%s is required for storage driver %q", key, c.StorageDriver))
		}
	}

	switch c.StorageDriver {
	case "minio", "s3":
		require("STORAGE_ENDPOINT", c.StorageEndpoint)
		require("STORAGE_ACCESS_KEY", c.StorageAccessKey)
		require("STORAGE_SECRET_KEY", c.StorageSecretKey)
		require("STORAGE_BUCKET", c.StorageBucket)
		require("STORAGE_PUBLIC_BASE", c.StoragePublicBase)
	case "memory":
		require("STORAGE_SIGNING_KEY", c.StorageSigningKey)
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER %q is not one of minio, s3, memory", c.StorageDriver))
	}
	return errs
}

// IsProduction returns true when the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
