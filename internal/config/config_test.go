package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:               "8080",
		Env:                "development",
		DBDriver:           "postgres",
		DBPassword:         "secure-password",
		DBSSLMode:          "require",
		DBQueryTimeout:     5 * time.Second,
		JWTSecret:          "secure-secret-at-least-32-chars-long",
		TokenTTL:           time.Hour,
		RememberTokenTTL:   720 * time.Hour,
		StorageDriver:      "local",
		UploadDir:          "uploads",
		PostImageMaxBytes:  5 << 20,
		ProfilePicMaxBytes: 2 << 20,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"valid development", func(_ *Config) {}, false},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"zero token ttl", func(c *Config) { c.TokenTTL = 0 }, true},
		{"zero query timeout", func(c *Config) { c.DBQueryTimeout = 0 }, true},
		{"zero upload limit", func(c *Config) { c.ProfilePicMaxBytes = 0 }, true},
		{"unknown db driver", func(c *Config) { c.DBDriver = "mysql" }, true},
		{"sqlite driver", func(c *Config) { c.DBDriver = "sqlite" }, false},
		{"unknown storage driver", func(c *Config) { c.StorageDriver = "ftp" }, true},
		{"s3 without bucket", func(c *Config) { c.StorageDriver = "s3"; c.S3Region = "us-east-1" }, true},
		{"s3 with bucket", func(c *Config) {
			c.StorageDriver = "s3"
			c.S3Bucket = "pulse"
			c.S3Region = "us-east-1"
		}, false},
		{"production default secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = defaultJWTSecret
		}, true},
		{"production short secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "short"
		}, true},
		{"production weak db password", func(c *Config) {
			c.Env = "production"
			c.DBPassword = "password"
		}, true},
		{"production ssl disabled", func(c *Config) {
			c.Env = "prod"
			c.DBSSLMode = "disable"
		}, true},
		{"production sqlite skips db password", func(c *Config) {
			c.Env = "production"
			c.DBDriver = "sqlite"
			c.DBPassword = ""
			c.DBSSLMode = "disable"
		}, false},
		{"production valid", func(c *Config) { c.Env = "production" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_DefaultsAndEnvOverrides(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("DB_QUERY_TIMEOUT", "2s")
	t.Setenv("STORAGE_DRIVER", "Local")
	t.Setenv("UPLOAD_URL_PREFIX", "media/")

	c, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8375", c.Port)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "local", c.StorageDriver)
	assert.Equal(t, "/media", c.UploadURLPrefix)
	assert.Equal(t, 2*time.Second, c.DBQueryTimeout)
	assert.Equal(t, time.Hour, c.TokenTTL)
	assert.Equal(t, 30*24*time.Hour, c.RememberTokenTTL)
	assert.Equal(t, int64(5*1024*1024), c.PostImageMaxBytes)
	assert.Equal(t, int64(2*1024*1024), c.ProfilePicMaxBytes)
	assert.Equal(t, "pulse-api", c.JWTIssuer)
	assert.False(t, c.IsProduction())
}
