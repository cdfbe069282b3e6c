package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/leonelm2/PotreroMobile/db"
	"github.com/leonelm2/PotreroMobile/storage"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds every setting read from the environment.
type Config struct {
	ServerPort     int
	StorageDriver  string
	DatabaseURL    string
	DatabasePool   db.PoolOptions
	RunMigrations  bool
	JWTSecretKey   string
	JWTTTL         time.Duration
	AllowedOrigins []string
	LogLevel       slog.Level
	SwaggerEnabled bool

	Admin AdminConfig
	R2    storage.CloudflareR2UploaderConfig
}

// AdminConfig describes the bootstrap administrator. It is ignored unless
// every field is set.
type AdminConfig struct {
	Username string
	Email    string
	Password string
}

func (a AdminConfig) Enabled() bool {
	return a.Username != "" && a.Email != "" && a.Password != ""
}

// Load reads the configuration from the environment, after loading a .env
// file when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", DriverPostgres)),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSecretKey:  os.Getenv("JWT_SECRET_KEY"),
		Admin: AdminConfig{
			Username: os.Getenv("ADMIN_USERNAME"),
			Email:    os.Getenv("ADMIN_EMAIL"),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
		R2: storage.CloudflareR2UploaderConfig{
			AccountID:       os.Getenv("R2_ACCOUNT_ID"),
			AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
			BucketName:      os.Getenv("R2_BUCKET_NAME"),
			PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
		},
	}

	port, err := strconv.Atoi(getEnv("SERVER_PORT", "5000"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}
	cfg.ServerPort = port

	switch cfg.StorageDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
		}
	case DriverMemory:
	default:
		return nil, fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverMemory, cfg.StorageDriver)
	}

	if cfg.DatabasePool, err = loadPoolOptions(); err != nil {
		return nil, err
	}

	if cfg.RunMigrations, err = strconv.ParseBool(getEnv("RUN_MIGRATIONS", "true")); err != nil {
		return nil, fmt.Errorf("invalid RUN_MIGRATIONS environment variable: %w", err)
	}
	if cfg.SwaggerEnabled, err = strconv.ParseBool(getEnv("SWAGGER_ENABLED", "true")); err != nil {
		return nil, fmt.Errorf("invalid SWAGGER_ENABLED environment variable: %w", err)
	}

	if cfg.JWTSecretKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}
	if cfg.JWTTTL, err = time.ParseDuration(getEnv("JWT_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL environment variable: %w", err)
	}
	if cfg.JWTTTL <= 0 {
		return nil, fmt.Errorf("JWT_TTL must be positive, got %s", cfg.JWTTTL)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL environment variable: %w", err)
	}

	cfg.AllowedOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", "*"))

	return cfg, nil
}

func loadPoolOptions() (db.PoolOptions, error) {
	var opts db.PoolOptions
	var err error
	if opts.MaxOpenConns, err = strconv.Atoi(getEnv("DB_MAX_OPEN_CONNS", "25")); err != nil || opts.MaxOpenConns <= 0 {
		return opts, fmt.Errorf("DB_MAX_OPEN_CONNS must be a positive integer, got %q", os.Getenv("DB_MAX_OPEN_CONNS"))
	}
	if opts.MaxIdleConns, err = strconv.Atoi(getEnv("DB_MAX_IDLE_CONNS", strconv.Itoa(opts.MaxOpenConns))); err != nil || opts.MaxIdleConns <= 0 {
		return opts, fmt.Errorf("DB_MAX_IDLE_CONNS must be a positive integer, got %q", os.Getenv("DB_MAX_IDLE_CONNS"))
	}
	if opts.ConnMaxLifetime, err = time.ParseDuration(getEnv("DB_CONN_MAX_LIFETIME", "5m")); err != nil || opts.ConnMaxLifetime <= 0 {
		return opts, fmt.Errorf("DB_CONN_MAX_LIFETIME must be a positive duration, got %q", os.Getenv("DB_CONN_MAX_LIFETIME"))
	}
	if opts.PingTimeout, err = time.ParseDuration(getEnv("DB_CONNECT_TIMEOUT", "5s")); err != nil || opts.PingTimeout <= 0 {
		return opts, fmt.Errorf("DB_CONNECT_TIMEOUT must be a positive duration, got %q", os.Getenv("DB_CONNECT_TIMEOUT"))
	}
	return opts, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
