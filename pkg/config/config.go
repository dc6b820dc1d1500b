package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Catalog sources
const (
	CatalogSourceJSON     = "json"
	CatalogSourcePostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	Environment string
	LogLevel    string
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Typesense   TypesenseConfig
	Catalog     CatalogConfig
	Location    LocationConfig
	Cache       CacheConfig
	Features    FeatureConfig
	Metrics     MetricsConfig
	OTEL        OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// AllowedOrigins is a comma-separated CORS origin list; empty allows any origin
	AllowedOrigins string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// TypesenseConfig holds Typesense configuration
type TypesenseConfig struct {
	URL     string
	APIKey  string
	Enabled bool
}

// CatalogConfig controls where reference data is loaded from at startup.
type CatalogConfig struct {
	Source  string
	DataDir string
}

// LocationConfig holds the coordinate used when a location token cannot be resolved.
type LocationConfig struct {
	FallbackLabel     string
	FallbackLatitude  float64
	FallbackLongitude float64
}

// CacheConfig holds HTTP response and preference cache settings
type CacheConfig struct {
	Enabled           bool
	CatalogTTLSeconds int
	ProfileTTLSeconds int
}

// FeatureConfig toggles optional subsystems
type FeatureConfig struct {
	SearchAnalytics bool
	FacilityLookup  bool
}

// MetricsConfig holds Prometheus exposition settings
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:    time.Duration(getEnvAsInt("SERVER_READ_TIMEOUT_SECONDS", 15)) * time.Second,
			WriteTimeout:   time.Duration(getEnvAsInt("SERVER_WRITE_TIMEOUT_SECONDS", 15)) * time.Second,
			IdleTimeout:    time.Duration(getEnvAsInt("SERVER_IDLE_TIMEOUT_SECONDS", 60)) * time.Second,
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", ""),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "billharmony"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Typesense: TypesenseConfig{
			URL:     getEnv("TYPESENSE_URL", "http://localhost:8108"),
			APIKey:  getEnv("TYPESENSE_API_KEY", "xyz"),
			Enabled: getEnvAsBool("TYPESENSE_ENABLED", false),
		},
		Catalog: CatalogConfig{
			Source:  getEnv("CATALOG_SOURCE", CatalogSourceJSON),
			DataDir: getEnv("CATALOG_DATA_DIR", "data"),
		},
		Location: LocationConfig{
			FallbackLabel:     getEnv("LOCATION_FALLBACK_LABEL", "Beverly Hills, CA"),
			FallbackLatitude:  getEnvAsFloat("LOCATION_FALLBACK_LAT", 34.0736),
			FallbackLongitude: getEnvAsFloat("LOCATION_FALLBACK_LNG", -118.4004),
		},
		Cache: CacheConfig{
			Enabled:           getEnvAsBool("CACHE_ENABLED", true),
			CatalogTTLSeconds: getEnvAsInt("CACHE_CATALOG_TTL_SECONDS", 1800),
			ProfileTTLSeconds: getEnvAsInt("CACHE_PROFILE_TTL_SECONDS", 600),
		},
		Features: FeatureConfig{
			SearchAnalytics: getEnvAsBool("FEATURE_SEARCH_ANALYTICS", true),
			FacilityLookup:  getEnvAsBool("FEATURE_FACILITY_LOOKUP", true),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvAsBool("METRICS_ENABLED", true),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "billharmony-api"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configuration values the server cannot start with
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid SERVER_PORT %d", c.Server.Port)
	}
	switch c.Catalog.Source {
	case CatalogSourceJSON, CatalogSourcePostgres:
	default:
		return fmt.Errorf("invalid CATALOG_SOURCE %q (must be %s or %s)", c.Catalog.Source, CatalogSourceJSON, CatalogSourcePostgres)
	}
	if c.Location.FallbackLatitude < -90 || c.Location.FallbackLatitude > 90 {
		return fmt.Errorf("invalid LOCATION_FALLBACK_LAT %f", c.Location.FallbackLatitude)
	}
	if c.Location.FallbackLongitude < -180 || c.Location.FallbackLongitude > 180 {
		return fmt.Errorf("invalid LOCATION_FALLBACK_LNG %f", c.Location.FallbackLongitude)
	}
	return nil
}

// Addr returns the listen address for the HTTP server
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
