package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"procurement/internal/model"
)

// Store backends for purchase-request persistence
const (
	StoreDatabase = "database"
	StoreRedis    = "redis"
)

const devJWTSecret = "default_super_secret_key"

type Config struct {
	Port             string
	GinMode          string
	LogLevel         string
	DBDriver         string
	DBHost           string
	DBPort           string
	DBUser           string
	DBPassword       string
	DBName           string
	DBSSLMode        string
	SQLitePath       string
	StoreBackend     string
	RedisURL         string
	KafkaBrokers     []string
	KafkaTopic       string
	JWTSecret        string
	JWTTTL           time.Duration
	CORSOrigins      []string
	SeedDemoUsers    bool
	SeedDemoRequests bool
	DefaultCurrency  model.Currency
}

// Load reads the configuration from the environment, applying development defaults.
func Load() (Config, error) {
	cfg := Config{
		Port:            env("PORT", "8080"),
		GinMode:         env("GIN_MODE", "debug"),
		LogLevel:        env("LOG_LEVEL", "info"),
		DBDriver:        env("DB_DRIVER", "postgres"),
		DBHost:          env("DB_HOST", "localhost"),
		DBPort:          env("DB_PORT", "5432"),
		DBUser:          env("DB_USER", "postgres"),
		DBPassword:      env("DB_PASSWORD", "postgres"),
		DBName:          env("DB_NAME", "postgres"),
		DBSSLMode:       env("DB_SSLMODE", "disable"),
		SQLitePath:      env("SQLITE_PATH", "procurement.db"),
		StoreBackend:    env("STORE_BACKEND", StoreDatabase),
		RedisURL:        env("REDIS_URL", "redis://localhost:6379/0"),
		KafkaBrokers:    list(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:      env("KAFKA_TOPIC", "purchase-requests.events"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		CORSOrigins:     list(env("CORS_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")),
		DefaultCurrency: model.Currency(env("DEFAULT_CURRENCY", string(model.CurrencyBRL))),
	}

	ttl, err := time.ParseDuration(env("JWT_TTL", "24h"))
	if err != nil {
		return Config{}, errors.New("invalid JWT_TTL: " + err.Error())
	}
	cfg.JWTTTL = ttl

	seed, err := strconv.ParseBool(env("SEED_DEMO_USERS", "true"))
	if err != nil {
		return Config{}, errors.New("invalid SEED_DEMO_USERS: " + err.Error())
	}
	cfg.SeedDemoUsers = seed

	seedRequests, err := strconv.ParseBool(env("SEED_DEMO_REQUESTS", "true"))
	if err != nil {
		return Config{}, errors.New("invalid SEED_DEMO_REQUESTS: " + err.Error())
	}
	cfg.SeedDemoRequests = seedRequests

	if cfg.JWTSecret == "" {
		if cfg.Release() {
			return Config{}, errors.New("JWT_SECRET environment variable is required in release mode")
		}
		cfg.JWTSecret = devJWTSecret // Development fallback only
	}
	if cfg.StoreBackend != StoreDatabase && cfg.StoreBackend != StoreRedis {
		return Config{}, errors.New("invalid STORE_BACKEND: must be database or redis")
	}
	if !cfg.DefaultCurrency.Valid() {
		return Config{}, errors.New("invalid DEFAULT_CURRENCY: must be BRL or USD")
	}

	return cfg, nil
}

func (c Config) Release() bool {
	return c.GinMode == "release"
}

// DSN returns the connection string for the configured driver.
func (c Config) DSN() string {
	if c.DBDriver == "sqlite" {
		return c.SQLitePath
	}
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName + "?sslmode=" + c.DBSSLMode
}

func env(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func list(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
