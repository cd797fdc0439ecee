package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr       string
	LogLevel   string
	LogConsole bool

	// DefaultGridSize is used when a request omits gridsize.
	DefaultGridSize int
	// MaxPoints bounds request size; 0 disables the bound.
	MaxPoints int

	CacheDriver    string // none | lru | redis
	CacheLRUSize   int
	CacheTTL       time.Duration
	CacheOpTimeout time.Duration
	RedisAddr      string
}

func FromEnv() Config {
	return Config{
		Addr:            getenv("ADDR", ":8091"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		LogConsole:      getbool("LOG_CONSOLE", false),
		DefaultGridSize: getint("GRIDSIZE_DEFAULT", 5),
		MaxPoints:       getint("MAX_POINTS", 500000),
		CacheDriver:     strings.ToLower(getenv("CACHE_DRIVER", "lru")),
		CacheLRUSize:    getint("CACHE_LRU_SIZE", 256),
		CacheTTL:        getduration("CACHE_TTL", 10*time.Minute),
		CacheOpTimeout:  getduration("CACHE_OP_TIMEOUT", 250*time.Millisecond),
		RedisAddr:       getenv("REDIS_ADDR", "localhost:6379"),
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
