package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Event    EventConfig
	LogLevel string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
	GinMode            string
}

// DatabaseConfig holds PostgreSQL connection and pool settings.
type DatabaseConfig struct {
	URL            string // DATABASE (or DATABASE_URL), used as-is
	MaxConns       int32
	ConnectTimeout time.Duration
	IdleTimeout    time.Duration
	AutoMigrate    bool // run EnsureSchema at startup
}

// RedisConfig holds Redis connection settings. Only used when Cache.Backend is "redis".
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CacheConfig controls the read-through cache in front of the store.
type CacheConfig struct {
	Backend string // "memory" or "redis"
	TTL     time.Duration
	Prefix  string
}

// EventConfig describes the party shown on every invitation.
type EventConfig struct {
	Name     string `json:"name"`
	Date     string `json:"date"`
	Location string `json:"location"`
	MapURL   string `json:"map_url"`
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()      // .env
	_ = godotenv.Load("env") // env (no leading dot)

	dbURL := getEnv("DATABASE", "")
	if dbURL == "" {
		dbURL = getEnv("DATABASE_URL", "postgres://localhost:5432/invites?sslmode=disable")
	}

	location := getEnv("EVENT_LOCATION", "Блок 25, Малинова Долина, София")

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			GinMode:            getEnv("GIN_MODE", "release"),
		},
		Database: DatabaseConfig{
			URL:            dbURL,
			MaxConns:       int32(getEnvInt("DB_MAX_CONNS", 5)),
			ConnectTimeout: getEnvDuration("DB_CONNECT_TIMEOUT", 5*time.Second),
			IdleTimeout:    getEnvDuration("DB_IDLE_TIMEOUT", 30*time.Second),
			AutoMigrate:    getEnvBool("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Cache: CacheConfig{
			Backend: strings.ToLower(getEnv("CACHE_BACKEND", "memory")),
			TTL:     getEnvDuration("CACHE_TTL", 60*time.Second),
			Prefix:  getEnv("CACHE_PREFIX", "invite"),
		},
		Event: EventConfig{
			Name:     getEnv("EVENT_NAME", "Боян"),
			Date:     getEnv("EVENT_DATE", "30 Април · 19:30"),
			Location: location,
			MapURL:   getEnv("EVENT_MAP_URL", "https://maps.google.com/?q="+strings.ReplaceAll(strings.ReplaceAll(location, ",", ""), " ", "+")),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
	return cfg, nil
}

// MaskedDSN returns the first 20 characters of the connection string, for diagnostics.
func (c DatabaseConfig) MaskedDSN() string {
	if c.URL == "" {
		return "Not set"
	}
	r := []rune(c.URL)
	if len(r) <= 20 {
		return string(r) + "..."
	}
	return string(r[:20]) + "..."
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("30s") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
