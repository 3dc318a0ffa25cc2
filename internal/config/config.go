// Package config reads the server configuration from the environment.
// main loads a .env file (godotenv) before calling Load, so values can come
// from either source.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// DevSecret is the signing secret used when SECRET_KEY is unset.
const DevSecret = "secret-dev"

// Config is the process configuration, fixed at startup.
type Config struct {
	Port           string
	DBDriver       string // "sqlite3" or "postgres"
	DatabaseURL    string
	SecretKey      string
	BcryptCost     int
	LogLevel       string
	LogFormat      string // "json" or "console"
	ClientOrigin   string
	RequestTimeout time.Duration
}

// Load reads the configuration from the process environment.
func Load() (Config, error) { return FromEnv(os.Getenv) }

// FromEnv reads the configuration through getenv.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(k, def string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Port:         get("PORT", "3001"),
		DBDriver:     get("DB_DRIVER", "sqlite3"),
		SecretKey:    get("SECRET_KEY", DevSecret),
		LogLevel:     get("LOG_LEVEL", "info"),
		LogFormat:    get("LOG_FORMAT", "json"),
		ClientOrigin: get("CLIENT_ORIGIN", "http://localhost:3000"),
	}

	switch cfg.DBDriver {
	case "sqlite3":
		cfg.DatabaseURL = get("DATABASE_URL", "./data/jobly.db")
	case "postgres":
		cfg.DatabaseURL = getenv("DATABASE_URL")
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL is required for driver %q", cfg.DBDriver)
		}
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	cost, err := strconv.Atoi(get("BCRYPT_WORK_FACTOR", "12"))
	if err != nil {
		return Config{}, fmt.Errorf("BCRYPT_WORK_FACTOR: %w", err)
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return Config{}, fmt.Errorf("BCRYPT_WORK_FACTOR must be %d-%d, got %d", bcrypt.MinCost, bcrypt.MaxCost, cost)
	}
	cfg.BcryptCost = cost

	timeout, err := time.ParseDuration(get("REQUEST_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("REQUEST_TIMEOUT: %w", err)
	}
	cfg.RequestTimeout = timeout

	return cfg, nil
}

// UsingDevSecret reports whether tokens are signed with the built-in secret.
func (c Config) UsingDevSecret() bool { return c.SecretKey == DevSecret }
