package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Common
	Env      string
	LogLevel string
	// API
	Port        string
	DatabaseURL string
	// Provider
	Provider         string
	RatesAPIBase     string
	RatesSecretName  string
	RatesStrictParse bool
	FetchTimeout     time.Duration
	FetchMaxAttempts int
	FetchInitialWait time.Duration
	// Cache
	MarketTTL    time.Duration
	OffHoursTTL  time.Duration
	CacheBackend string
	// Redis (shared snapshot cache)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// Refresher
	RefreshCities []string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func durMS(key string, defMS int) time.Duration {
	return time.Duration(atoiDef(getEnv(key, strconv.Itoa(defMS)), defMS)) * time.Millisecond
}

func boolDef(s string, def bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load reads environment variables and applies defaults.
func Load() Config {
	return Config{
		Env:              getEnv("ENV", "local"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		Provider:         getEnv("PROVIDER", "ibja"),
		RatesAPIBase:     getEnv("RATES_API_BASE", "https://api.indiagoldratesapi.com"),
		RatesSecretName:  getEnv("RATES_SECRET_NAME", "GOLD_RATES_API_KEY"),
		RatesStrictParse: boolDef(getEnv("RATES_STRICT_PARSE", "false"), false),
		FetchTimeout:     durMS("RATES_FETCH_TIMEOUT_MS", 10000),
		FetchMaxAttempts: atoiDef(getEnv("RATES_FETCH_ATTEMPTS", "3"), 3),
		FetchInitialWait: durMS("RATES_FETCH_BACKOFF_MS", 1000),
		MarketTTL:        durMS("CACHE_TTL_MARKET_MS", 5*60*1000),
		OffHoursTTL:      durMS("CACHE_TTL_OFF_HOURS_MS", 30*60*1000),
		CacheBackend:     getEnv("CACHE_BACKEND", "none"), // or "redis"
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          atoiDef(getEnv("REDIS_DB", "0"), 0),
		RefreshCities:    splitList(getEnv("REFRESH_CITIES", "Mumbai")),
	}
}
