// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers accepted in STORE_DRIVER.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	JWTSecret      string `mapstructure:"JWT_SECRET"`
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	FeatureFlags   string `mapstructure:"FEATURE_FLAGS"`

	StoreDriver              string `mapstructure:"STORE_DRIVER"`
	DBHost                   string `mapstructure:"DB_HOST"`
	DBPort                   string `mapstructure:"DB_PORT"`
	DBUser                   string `mapstructure:"DB_USER"`
	DBPassword               string `mapstructure:"DB_PASSWORD"`
	DBName                   string `mapstructure:"DB_NAME"`
	DBSSLMode                string `mapstructure:"DB_SSLMODE"`
	DBMaxOpenConns           int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns           int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetimeMinutes int    `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`
	MongoURI                 string `mapstructure:"MONGO_URI"`
	MongoDatabase            string `mapstructure:"MONGO_DATABASE"`

	// DBSchemaMode selects how the schema is applied: hybrid, sql or auto.
	DBSchemaMode                  string `mapstructure:"DB_SCHEMA_MODE"`
	DBAutoMigrateAllowDestructive bool   `mapstructure:"DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE"`

	RedisURL string `mapstructure:"REDIS_URL"`

	TMDBAPIKey         string `mapstructure:"TMDB_API_KEY"`
	TMDBBaseURL        string `mapstructure:"TMDB_BASE_URL"`
	TMDBImageBaseURL   string `mapstructure:"TMDB_IMAGE_BASE_URL"`
	TMDBLanguage       string `mapstructure:"TMDB_LANGUAGE"`
	TMDBTimeoutSeconds int    `mapstructure:"TMDB_TIMEOUT_SECONDS"`

	TracingEnabled      bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter     string  `mapstructure:"TRACING_EXPORTER"`
	TracingOTLPEndpoint string  `mapstructure:"TRACING_OTLP_ENDPOINT"`
	TracingSampleRatio  float64 `mapstructure:"TRACING_SAMPLE_RATIO"`

	// ListMaxDisplay caps displayNumber on post listings; 0 disables the cap.
	ListMaxDisplay int `mapstructure:"LIST_MAX_DISPLAY"`
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

	if env != "development" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	viper.SetDefault("PORT", "8375")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("JWT_SECRET", "your-secret-key-change-in-production")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173")
	viper.SetDefault("FEATURE_FLAGS", "")
	viper.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "reelsocial")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 5)
	viper.SetDefault("DB_SCHEMA_MODE", "hybrid")
	viper.SetDefault("DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE", false)
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DATABASE", "reelsocial")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("TMDB_API_KEY", "")
	viper.SetDefault("TMDB_BASE_URL", "https://api.themoviedb.org/3")
	viper.SetDefault("TMDB_IMAGE_BASE_URL", "https://image.tmdb.org/t/p")
	viper.SetDefault("TMDB_LANGUAGE", "en-US")
	viper.SetDefault("TMDB_TIMEOUT_SECONDS", 10)
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("TRACING_OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLE_RATIO", 1.0)
	viper.SetDefault("LIST_MAX_DISPLAY", 0)

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

func (c *Config) normalize() {
	c.DBSSLMode = strings.ToLower(strings.TrimSpace(c.DBSSLMode))
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	c.DBSchemaMode = strings.ToLower(strings.TrimSpace(c.DBSchemaMode))
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.TMDBBaseURL = strings.TrimRight(strings.TrimSpace(c.TMDBBaseURL), "/")
	c.TMDBImageBaseURL = strings.TrimRight(strings.TrimSpace(c.TMDBImageBaseURL), "/")
}

// IsProduction reports whether the config targets a production environment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// TMDBTimeout returns the catalog request timeout.
func (c *Config) TMDBTimeout() time.Duration {
	return time.Duration(c.TMDBTimeoutSeconds) * time.Second
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	switch c.StoreDriver {
	case StoreDriverPostgres, "":
	case StoreDriverMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is required when STORE_DRIVER is mongo")
		}
		if c.MongoDatabase == "" {
			return errors.New("MONGO_DATABASE is required when STORE_DRIVER is mongo")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q (want postgres or mongo)", c.StoreDriver)
	}

	if c.DBMaxOpenConns < 0 || c.DBMaxIdleConns < 0 {
		return errors.New("DB connection pool sizes must not be negative")
	}
	if c.TMDBTimeoutSeconds < 0 {
		return errors.New("TMDB_TIMEOUT_SECONDS must not be negative")
	}
	if c.ListMaxDisplay < 0 {
		return errors.New("LIST_MAX_DISPLAY must not be negative")
	}

	if c.IsProduction() {
		if c.JWTSecret == "your-secret-key-change-in-production" {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.StoreDriver != StoreDriverMongo {
			if c.DBPassword == "password" || c.DBPassword == "" {
				return errors.New("a strong DB_PASSWORD is required in production")
			}
			if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
				return errors.New("DB_SSLMODE must enable TLS in production")
			}
		}
		if c.TMDBAPIKey == "" {
			log.Println("WARNING: TMDB_API_KEY is empty in production. Movie endpoints will fail.")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else if len(c.JWTSecret) < 32 {
		log.Println("WARNING: JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
	}

	return nil
}
