package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int
	DBRunMigrations   bool

	// SeedDemoOrgID, when set outside production, seeds a year of demo billing
	// data for that organization at startup.
	SeedDemoOrgID string

	Cache     CacheConfig
	RateLimit RateLimitConfig

	DefaultCurrency string
}

// CacheConfig selects the aggregation result cache backend.
type CacheConfig struct {
	Driver        string
	TTLSeconds    int
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// RateLimitConfig bounds analytics queries per organization. The limiter
// shares the cache's Redis connection settings.
type RateLimitConfig struct {
	Enabled  bool
	OrgRate  float64
	OrgBurst int
}

const (
	CacheDriverMemory = "memory"
	CacheDriverRedis  = "redis"
	CacheDriverNone   = "none"
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")

	cfg := Config{
		AppName:           getenv("APP_SERVICE", "billinginsights"),
		AppVersion:        getenv("APP_VERSION", "0.1.0"),
		Environment:       environment,
		HTTPAddr:          getenv("HTTP_ADDR", ":8080"),
		OTLPEndpoint:      getenv("OTLP_ENDPOINT", "localhost:4317"),
		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "postgres"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 1800),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 300),
		DBRunMigrations:   getenvBool("DATABASE_RUN_MIGRATIONS", environment != "production"),
		SeedDemoOrgID:     strings.TrimSpace(getenv("SEED_DEMO_ORG_ID", "")),
		Cache: CacheConfig{
			Driver:        normalizeCacheDriver(getenv("CACHE_DRIVER", CacheDriverMemory)),
			TTLSeconds:    getenvInt("ANALYTICS_CACHE_TTL_SECONDS", 60),
			RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: strings.TrimSpace(getenv("REDIS_PASSWORD", "")),
			RedisDB:       getenvInt("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			Enabled:  getenvBool("RATE_LIMIT_ENABLED", false),
			OrgRate:  getenvFloat("RATE_LIMIT_ORG_RATE", 5),
			OrgBurst: getenvInt("RATE_LIMIT_ORG_BURST", 20),
		},
		DefaultCurrency: strings.ToUpper(strings.TrimSpace(getenv("DEFAULT_CURRENCY", "USD"))),
	}

	return cfg
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func normalizeCacheDriver(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case CacheDriverRedis:
		return CacheDriverRedis
	case CacheDriverNone, "off", "disabled":
		return CacheDriverNone
	default:
		return CacheDriverMemory
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}
