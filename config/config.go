package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything read from the environment (.env is loaded by main)
type Config struct {
	AppEnv   string // DEV | PRD
	APIPort  string
	CertFile string
	KeyFile  string
	CORS     string

	// document store
	DBDriver string // mongo | memory
	DBHost   string
	DBPort   string
	DBUser   string
	DBPass   string
	DBName   string

	// redis, one server with separate databases for sessions and caches
	CacheHost string
	CachePort string
	CachePass string
	JWTDB     int
	CacheDB   int

	// token verification
	AccessSecret  string
	CookieName    string
	CookieHashKey string

	// analytics (influxDB)
	UseAnalytics    bool
	AnalyticsURL    string
	AnalyticsToken  string
	AnalyticsOrg    string
	AnalyticsBucket string

	// ratings & profiles
	RatingFallback  bool
	ProfileCacheTTL time.Duration
	ProfileWorkers  int
}

// Load reads the configuration; missing values fall back to development defaults
func Load() Config {
	return Config{
		AppEnv:   getenv("APP_ENV", "DEV"),
		APIPort:  getenv("API_PORT", "3000"),
		CertFile: getenv("APP_CERTFILE", ""),
		KeyFile:  getenv("APP_KEYFILE", ""),
		CORS:     getenv("CORS_ORIGIN", "http://localhost:8081"),

		DBDriver: getenv("DB_DRIVER", "mongo"),
		DBHost:   getenv("DB_HOST", "localhost"),
		DBPort:   getenv("DB_PORT", "27017"),
		DBUser:   getenv("DB_USER", ""),
		DBPass:   getenv("DB_PASS", ""),
		DBName:   getenv("DB_NAME", "sleepTips"),

		CacheHost: getenv("CACHE_HOST", "localhost"),
		CachePort: getenv("CACHE_PORT", "6379"),
		CachePass: getenv("CACHE_PASS", ""),
		JWTDB:     getenvInt("JWT_DB", 0),
		CacheDB:   getenvInt("CACHE_DB", 1),

		AccessSecret:  getenv("ACCESS_SECRET", "sleep-tips-dev-secret"),
		CookieName:    getenv("JWTCK_NAME", "sleeptips"),
		CookieHashKey: getenv("JWTCK_HASHKEY", "sleep-tips-dev-cookie-hash-key!!"),

		UseAnalytics:    getenvBool("USE_ANALYTICS", false),
		AnalyticsURL:    getenv("ANALYTICS_URL", "http://localhost:8086"),
		AnalyticsToken:  getenv("ANALYTICS_TOKEN", ""),
		AnalyticsOrg:    getenv("ANALYTICS_ORG", "sleep-tips"),
		AnalyticsBucket: getenv("ANALYTICS_BUCKET", "tips"),

		RatingFallback:  getenvBool("RATING_AGGREGATE_FALLBACK", false),
		ProfileCacheTTL: time.Duration(getenvInt("PROFILE_CACHE_TTL_SECONDS", 600)) * time.Second,
		ProfileWorkers:  getenvInt("PROFILE_LOOKUP_WORKERS", 8),
	}
}

// Debug reports whether verbose logging should be enabled
func (c Config) Debug() bool {
	return c.AppEnv == "DEV"
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// flags follow the YES/NO convention of the .env files
func getenvBool(key string, fallback bool) bool {
	switch strings.ToUpper(os.Getenv(key)) {
	case "YES", "TRUE", "1":
		return true
	case "NO", "FALSE", "0":
		return false
	}
	return fallback
}
