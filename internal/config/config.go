// Package config reads the service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DocCacheCfg configures the optional document cache in front of the
// feature store.
type DocCacheCfg struct {
	Backend string // "lru", "redis" or "none"
	Size    int
	TTL     time.Duration
}

type Config struct {
	Addr       string
	LogLevel   string
	LogConsole bool

	DatabaseURL    string
	SpatialBackend string // "postgres" or "memory"
	CatalogPath    string

	DefaultLimit     int
	MaxLimit         int
	UseDefaultExtent bool

	QueryTimeout    time.Duration
	ShutdownTimeout time.Duration

	DocCache  DocCacheCfg
	RedisAddr string
}

func FromEnv() Config {
	return Config{
		Addr:       getenv("ADDR", ":5000"),
		LogLevel:   getenv("LOG_LEVEL", "info"),
		LogConsole: getbool("LOG_CONSOLE", false),

		DatabaseURL:    getenv("DATABASE_URL", "postgres://localhost:5432/baseregisters"),
		SpatialBackend: getenv("SPATIAL_BACKEND", "postgres"),
		CatalogPath:    getenv("CATALOG_PATH", ""),

		DefaultLimit:     getint("DEFAULT_LIMIT", 10),
		MaxLimit:         getint("MAX_LIMIT", 100),
		UseDefaultExtent: getbool("USE_DEFAULT_EXTENT", true),

		QueryTimeout:    getduration("QUERY_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getduration("SHUTDOWN_TIMEOUT", 10*time.Second),

		DocCache: DocCacheCfg{
			Backend: strings.ToLower(getenv("DOC_CACHE_BACKEND", "lru")),
			Size:    getint("DOC_CACHE_SIZE", 4096),
			TTL:     getduration("DOC_CACHE_TTL", time.Hour),
		},
		RedisAddr: getenv("REDIS_ADDR", "localhost:6379"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
