// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	BodyLimitBytes int    `mapstructure:"BODY_LIMIT_BYTES"`

	DBDriver          string        `mapstructure:"DB_DRIVER"`
	DBHost            string        `mapstructure:"DB_HOST"`
	DBPort            string        `mapstructure:"DB_PORT"`
	DBUser            string        `mapstructure:"DB_USER"`
	DBPassword        string        `mapstructure:"DB_PASSWORD"`
	DBName            string        `mapstructure:"DB_NAME"`
	DBSSLMode         string        `mapstructure:"DB_SSLMODE"`
	DBPath            string        `mapstructure:"DB_PATH"`
	DBSchemaMode      string        `mapstructure:"DB_SCHEMA_MODE"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME"`
	DBQueryTimeout    time.Duration `mapstructure:"DB_QUERY_TIMEOUT"`

	JWTSecret        string        `mapstructure:"JWT_SECRET"`
	JWTIssuer        string        `mapstructure:"JWT_ISSUER"`
	JWTAudience      string        `mapstructure:"JWT_AUDIENCE"`
	TokenTTL         time.Duration `mapstructure:"TOKEN_TTL"`
	RememberTokenTTL time.Duration `mapstructure:"REMEMBER_TOKEN_TTL"`

	StorageDriver      string `mapstructure:"STORAGE_DRIVER"`
	UploadDir          string `mapstructure:"UPLOAD_DIR"`
	UploadURLPrefix    string `mapstructure:"UPLOAD_URL_PREFIX"`
	PostImageMaxBytes  int64  `mapstructure:"POST_IMAGE_MAX_BYTES"`
	ProfilePicMaxBytes int64  `mapstructure:"PROFILE_PIC_MAX_BYTES"`
	S3Bucket           string `mapstructure:"S3_BUCKET"`
	S3Region           string `mapstructure:"S3_REGION"`
	S3Endpoint         string `mapstructure:"S3_ENDPOINT"`
	S3AccessKeyID      string `mapstructure:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey  string `mapstructure:"S3_SECRET_ACCESS_KEY"`
	S3PublicURL        string `mapstructure:"S3_PUBLIC_URL"`

	MetricsEnabled     bool    `mapstructure:"METRICS_ENABLED"`
	TracingEnabled     bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter    string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint       string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampleRatio float64 `mapstructure:"TRACING_SAMPLE_RATIO"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base config file is optional.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		slog.Info("Loaded profile configuration", slog.String("file", "config."+env+".yml"))
	}

	SetDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

var defaults = map[string]any{
	"PORT":             "8375",
	"APP_ENV":          "development",
	"ALLOWED_ORIGINS":  "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173",
	"BODY_LIMIT_BYTES": 10 << 20,

	"DB_DRIVER":            "postgres",
	"DB_HOST":              "localhost",
	"DB_PORT":              "5432",
	"DB_USER":              "user",
	"DB_PASSWORD":          "password",
	"DB_NAME":              "pulse",
	"DB_SSLMODE":           "disable",
	"DB_PATH":              "pulse.db",
	"DB_SCHEMA_MODE":       "hybrid",
	"DB_MAX_OPEN_CONNS":    25,
	"DB_MAX_IDLE_CONNS":    5,
	"DB_CONN_MAX_LIFETIME": 5 * time.Minute,
	"DB_QUERY_TIMEOUT":     5 * time.Second,

	"JWT_SECRET":         defaultJWTSecret,
	"JWT_ISSUER":         "pulse-api",
	"JWT_AUDIENCE":       "pulse-client",
	"TOKEN_TTL":          time.Hour,
	"REMEMBER_TOKEN_TTL": 30 * 24 * time.Hour,

	"STORAGE_DRIVER":        "local",
	"UPLOAD_DIR":            "uploads",
	"UPLOAD_URL_PREFIX":     "/uploads",
	"POST_IMAGE_MAX_BYTES":  5 << 20,
	"PROFILE_PIC_MAX_BYTES": 2 << 20,
	"S3_BUCKET":             "",
	"S3_REGION":             "us-east-1",
	"S3_ENDPOINT":           "",
	"S3_ACCESS_KEY_ID":      "",
	"S3_SECRET_ACCESS_KEY":  "",
	"S3_PUBLIC_URL":         "",

	"METRICS_ENABLED":      true,
	"TRACING_ENABLED":      false,
	"TRACING_EXPORTER":     "stdout",
	"OTLP_ENDPOINT":        "localhost:4318",
	"TRACING_SAMPLE_RATIO": 1.0,
}

// SetDefaults registers the development default of every key. Registering
// a default also lets AutomaticEnv bind the key during Unmarshal.
func SetDefaults() {
	for key, value := range defaults {
		viper.SetDefault(key, value)
	}
}

func (c *Config) normalize() {
	for _, field := range []*string{&c.Env, &c.DBDriver, &c.DBSSLMode, &c.DBSchemaMode, &c.StorageDriver} {
		*field = strings.ToLower(strings.TrimSpace(*field))
	}
	c.UploadURLPrefix = "/" + strings.Trim(c.UploadURLPrefix, "/")
}

// IsProduction reports whether the config targets a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate returns the first missing or unsafe setting.
func (c *Config) Validate() error {
	for _, check := range []func() error{
		c.validateRequired,
		c.validateDrivers,
		c.validateProduction,
	} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateRequired() error {
	switch {
	case c.Port == "":
		return errors.New("PORT is required")
	case c.JWTSecret == "":
		return errors.New("JWT_SECRET is required")
	case c.TokenTTL <= 0 || c.RememberTokenTTL <= 0:
		return errors.New("TOKEN_TTL and REMEMBER_TOKEN_TTL must be positive")
	case c.DBQueryTimeout <= 0:
		return errors.New("DB_QUERY_TIMEOUT must be positive")
	case c.PostImageMaxBytes <= 0 || c.ProfilePicMaxBytes <= 0:
		return errors.New("upload size limits must be positive")
	}
	return nil
}

func (c *Config) validateDrivers() error {
	if c.DBDriver != "postgres" && c.DBDriver != "sqlite" {
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.StorageDriver {
	case "local":
		if c.UploadDir == "" {
			return errors.New("UPLOAD_DIR is required for local storage")
		}
	case "s3":
		if c.S3Bucket == "" || c.S3Region == "" {
			return errors.New("S3_BUCKET and S3_REGION are required for s3 storage")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.StorageDriver)
	}
	return nil
}

// validateProduction rejects development credentials outside development.
// Elsewhere a short secret only warns.
func (c *Config) validateProduction() error {
	if !c.IsProduction() {
		if len(c.JWTSecret) < 32 {
			slog.Warn("JWT_SECRET is shorter than 32 characters")
		}
		return nil
	}
	switch {
	case c.JWTSecret == defaultJWTSecret:
		return errors.New("JWT_SECRET must be changed from the default value in production")
	case len(c.JWTSecret) < 32:
		return errors.New("JWT_SECRET must be at least 32 characters in production")
	}
	if c.DBDriver == "postgres" {
		if c.DBPassword == "" || c.DBPassword == "password" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "" || c.DBSSLMode == "disable" {
			return errors.New("DB_SSLMODE must enable SSL in production")
		}
	}
	if c.AllowedOrigins == "*" {
		slog.Warn("ALLOWED_ORIGINS is '*' in production")
	}
	return nil
}
