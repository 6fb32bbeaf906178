package config

import (
	"errors"  // Validation errors
	"fmt"     // Error formatting
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // For list parsing
	"time"    // For durations

	"github.com/joho/godotenv" // For loading .env files
)

// Supported database drivers
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds the application configuration
type Config struct {
	AppPort     string        // Application port
	DBDriver    string        // Database driver: mysql, postgres or sqlite
	DBUser      string        // Database user
	DBPassword  string        // Database password
	DBHost      string        // Database host
	DBPort      string        // Database port
	DBName      string        // Database name
	DBSSLMode   string        // Postgres sslmode
	DBPath      string        // SQLite file path
	JWTSecret   string        // JWT secret key
	JWTExpiry   time.Duration // Session token lifetime
	RedisAddr   string        // Redis server address, empty disables caching
	RedisPass   string        // Redis password
	RedisDB     int           // Redis database number
	CacheTTL    time.Duration // TTL of cached todo pages
	CORSOrigins []string      // Allowed CORS origins
	LogLevel    string        // logrus level name
	IsProd      bool          // Is production environment
	AutoMigrate bool          // Run schema migration on server boot
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	return &Config{
		AppPort:     getEnv("APP_PORT", "8080"),
		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", DriverMySQL)),
		DBUser:      os.Getenv("DB_USER"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      os.Getenv("DB_PORT"),
		DBName:      getEnv("DB_NAME", "todo_system"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),
		DBPath:      getEnv("DB_PATH", "todo_system.db"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTExpiry:   parseDuration(os.Getenv("JWT_EXPIRY"), 24*time.Hour),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		RedisPass:   os.Getenv("REDIS_PASS"),
		RedisDB:     redisDB,
		CacheTTL:    parseDuration(os.Getenv("CACHE_TTL"), 60*time.Second),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		IsProd:      os.Getenv("IS_PROD") == "true",
		AutoMigrate: os.Getenv("AUTO_MIGRATE") == "true",
	}
}

// Validate reports settings the server cannot start without
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.DBDriver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.JWTExpiry <= 0 {
		return errors.New("JWT_EXPIRY must be positive")
	}
	return nil
}

// CacheEnabled reports whether a Redis address was configured
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
