package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"rps_link/internal/domain"
	"rps_link/internal/logger"

	"github.com/joho/godotenv"
)

// Store backends selectable through STORE.
const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

type Config struct {
	AppPort    string
	AppVersion string

	Store       string
	DatabaseURL string
	SQLitePath  string

	JWTSecret string
	JWTTTL    time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Rate limits
	APIRateLimit   int
	APIRateWindow  time.Duration
	GameRateLimit  int
	GameRateWindow time.Duration

	AllowedOrigin string
	DefaultMode   domain.GameMode

	LogLevel string
	LogJSON  bool
}

// Load reads .env (if any) and the process environment. Missing required
// values are fatal.
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := FromEnv(os.Getenv)
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	return cfg
}

// FromEnv builds a Config from a lookup function so it can be tested without
// touching the process environment.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		AppPort:       orDefault(getenv("APP_PORT"), "8080"),
		AppVersion:    orDefault(getenv("APP_VERSION"), "dev"),
		Store:         strings.ToLower(orDefault(getenv("STORE"), StorePostgres)),
		DatabaseURL:   getenv("DATABASE_URL"),
		SQLitePath:    orDefault(getenv("SQLITE_PATH"), "rps.db"),
		JWTSecret:     getenv("JWT_SECRET"),
		JWTTTL:        time.Duration(positiveInt(getenv("JWT_TTL_HOURS"), 24*30)) * time.Hour,
		RedisAddr:     getenv("REDIS_ADDR"),
		RedisPassword: getenv("REDIS_PASSWORD"),
		RedisDB:       nonNegativeInt(getenv("REDIS_DB"), 0),
		AllowedOrigin: orDefault(getenv("ALLOWED_ORIGIN"), "*"),
		LogLevel:      orDefault(getenv("LOG_LEVEL"), "info"),
		LogJSON:       getenv("LOG_JSON") == "true",
	}

	cfg.APIRateLimit = positiveInt(getenv("API_RATE_LIMIT"), 120)
	cfg.APIRateWindow = time.Duration(positiveInt(getenv("API_RATE_WINDOW_SECONDS"), 60)) * time.Second

	cfg.GameRateLimit = positiveInt(getenv("GAME_RATE_LIMIT"), 30) // game writes per window
	cfg.GameRateWindow = time.Duration(positiveInt(getenv("GAME_RATE_WINDOW"), 60)) * time.Second

	cfg.DefaultMode = domain.GameMode(strings.ToLower(orDefault(getenv("DEFAULT_MODE"), string(domain.GameModeFeed))))
	if !cfg.DefaultMode.Valid() {
		return nil, fmt.Errorf("DEFAULT_MODE must be %q or %q, got %q", domain.GameModeSingle, domain.GameModeFeed, cfg.DefaultMode)
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	switch cfg.Store {
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is not set")
		}
	case StoreSQLite, StoreMemory:
	default:
		return nil, fmt.Errorf("unknown STORE %q", cfg.Store)
	}

	return cfg, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func positiveInt(v string, def int) int {
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return n
	}
	return def
}

func nonNegativeInt(v string, def int) int {
	if n, err := strconv.Atoi(v); err == nil && n >= 0 {
		return n
	}
	return def
}
