package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config captures all runtime configuration derived from environment variables.
type Config struct {
	Port              string
	DBURL             string
	LogLevel          string
	IdentityURL       string
	IdentityAPIKey    string
	IdentityJWTSecret string
	IdentityTimeout   int
	ReadTimeoutSecs   int
	WriteTimeoutSecs  int
	IdleTimeoutSecs   int
	DBMaxConns        int
	DBMinConns        int
	DBMaxIdleSecs     int
	DBMaxLifeSecs     int
	DBConnTimeoutSecs int
	DBStatementCache  int
}

// RemoteIdentity reports whether actor resolution goes through the remote
// identity provider rather than local JWT verification.
func (c Config) RemoteIdentity() bool {
	return c.IdentityURL != ""
}

// Load reads configuration from environment variables, applying defaults and
// validation. A .env file in the working directory is folded in when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		DBURL:             os.Getenv("DB_URL"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		IdentityURL:       os.Getenv("IDENTITY_URL"),
		IdentityAPIKey:    os.Getenv("IDENTITY_API_KEY"),
		IdentityJWTSecret: os.Getenv("IDENTITY_JWT_SECRET"),
		IdentityTimeout:   getEnvInt("IDENTITY_TIMEOUT_SECS", 5),
		ReadTimeoutSecs:   getEnvInt("SERVER_READ_TIMEOUT", 15),
		WriteTimeoutSecs:  getEnvInt("SERVER_WRITE_TIMEOUT", 15),
		IdleTimeoutSecs:   getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		DBMaxConns:        getEnvInt("DB_MAX_CONNS", 20),
		DBMinConns:        getEnvInt("DB_MIN_CONNS", 2),
		DBMaxIdleSecs:     getEnvInt("DB_MAX_CONN_IDLE_SECS", 300),
		DBMaxLifeSecs:     getEnvInt("DB_MAX_CONN_LIFETIME_SECS", 3600),
		DBConnTimeoutSecs: getEnvInt("DB_CONN_TIMEOUT_SECS", 10),
		DBStatementCache:  getEnvInt("DB_STATEMENT_CACHE_CAPACITY", 256),
	}

	if cfg.DBURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required")
	}
	if cfg.IdentityURL == "" && cfg.IdentityJWTSecret == "" {
		return Config{}, fmt.Errorf("one of IDENTITY_URL or IDENTITY_JWT_SECRET is required")
	}
	if cfg.IdentityURL != "" && cfg.IdentityJWTSecret != "" {
		return Config{}, fmt.Errorf("IDENTITY_URL and IDENTITY_JWT_SECRET are mutually exclusive")
	}
	if cfg.IdentityURL != "" && cfg.IdentityAPIKey == "" {
		return Config{}, fmt.Errorf("IDENTITY_API_KEY is required when IDENTITY_URL is set")
	}
	if cfg.IdentityTimeout <= 0 {
		return Config{}, fmt.Errorf("IDENTITY_TIMEOUT_SECS must be positive")
	}
	if cfg.DBMaxConns <= 0 {
		return Config{}, fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if cfg.DBMinConns < 0 {
		return Config{}, fmt.Errorf("DB_MIN_CONNS must be non-negative")
	}
	if cfg.DBMinConns > cfg.DBMaxConns {
		return Config{}, fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}
	if cfg.DBStatementCache < 0 {
		return Config{}, fmt.Errorf("DB_STATEMENT_CACHE_CAPACITY must be non-negative")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}
