package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:         "development",
		JWTSecret:   "secure-secret-at-least-32-chars-long",
		DBPassword:  "secure-password",
		DBSSLMode:   "require",
		Port:        "8080",
		StoreDriver: StoreDriverPostgres,
	}
}

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with empty SSL mode", "prod", "", true},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Env = tt.env
			c.DBSSLMode = tt.sslMode

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateStoreDriver(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"postgres", func(c *Config) {}, false},
		{"mongo with uri", func(c *Config) {
			c.StoreDriver = StoreDriverMongo
			c.MongoURI = "mongodb://localhost:27017"
			c.MongoDatabase = "reelsocial"
		}, false},
		{"mongo without uri", func(c *Config) {
			c.StoreDriver = StoreDriverMongo
			c.MongoDatabase = "reelsocial"
		}, true},
		{"mongo without database", func(c *Config) {
			c.StoreDriver = StoreDriverMongo
			c.MongoURI = "mongodb://localhost:27017"
		}, true},
		{"unknown driver", func(c *Config) { c.StoreDriver = "cassandra" }, true},
		{"negative list cap", func(c *Config) { c.ListMaxDisplay = -1 }, true},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"default secret in production", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "your-secret-key-change-in-production"
		}, true},
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

func TestLoadConfig_Normalization(t *testing.T) {
	defer os.Unsetenv("APP_ENV")
	defer os.Unsetenv("DB_SSLMODE")
	defer os.Unsetenv("STORE_DRIVER")
	defer os.Unsetenv("TMDB_BASE_URL")
	defer viper.Reset()

	os.Setenv("APP_ENV", "development")
	os.Setenv("DB_SSLMODE", "  DISABLE  ")
	os.Setenv("STORE_DRIVER", " Postgres ")
	os.Setenv("TMDB_BASE_URL", "https://api.example.test/3/")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, StoreDriverPostgres, c.StoreDriver)
	assert.Equal(t, "https://api.example.test/3", c.TMDBBaseURL)
	assert.Equal(t, "en-US", c.TMDBLanguage)
	assert.Equal(t, 10*time.Second, c.TMDBTimeout())
	assert.False(t, c.IsProduction())
}
