package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/truthlens/factwave/src/data"
)

// Config carries everything the service needs at startup. Values resolve
// settings-table first, then environment, then default.
type Config struct {
	Port      string
	MySQLDSN  string
	RedisURL  string
	CacheMode string // "redis" or "memory"
	JWTSecret string

	GoogleAPIKey      string
	GoogleBaseURL     string
	FactiverseAPIKey  string
	FactiverseBaseURL string
	BigKindsAPIKey    string
	BigKindsBaseURL   string

	DefaultLanguage  string
	CacheTTLSeconds  int
	MaxRetries       int
	BatchConcurrency int
	ProviderQPS      float64
	HTTPTimeout      int // seconds
	DedupeSources    bool
	ClampTimeDecay   bool
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

// setting resolves a value from the settings table, then the environment,
// then the default.
func setting(name, envKey, def string) string {
	if v := data.GetSetting(name); v != "" {
		return v
	}
	return getenv(envKey, def)
}

func settingInt(name, envKey string, def int) int {
	v := setting(name, envKey, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("config: invalid %s=%q, using %d", name, v, def)
		return def
	}
	return n
}

func settingFloat(name, envKey string, def float64) float64 {
	v := setting(name, envKey, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("config: invalid %s=%q, using %g", name, v, def)
		return def
	}
	return f
}

func settingBool(name, envKey string, def bool) bool {
	v := setting(name, envKey, "")
	if v == "" {
		return def
	}
	return v == "1" || strings.EqualFold(v, "true")
}

// Load builds the runtime config. The settings table must already be loaded
// into the data cache.
func Load(db *gorm.DB) Config {
	if db != nil {
		if err := data.RefreshSettings(db); err != nil {
			log.Printf("config: refresh settings: %v", err)
		}
	}

	jwtSecret := setting("jwt_secret", "JWT_SECRET", "")
	if jwtSecret == "" {
		log.Printf("config: JWT_SECRET not set, API auth disabled")
	}

	return Config{
		Port:      getenv("PORT", "8080"),
		MySQLDSN:  getenv("MYSQL_DSN", "factwave:factwave@tcp(localhost:3306)/factwave"),
		RedisURL:  getenv("REDIS_URL", "redis://localhost:6379/0"),
		CacheMode: setting("cache_mode", "FACTWAVE_CACHE", "redis"),
		JWTSecret: jwtSecret,

		GoogleAPIKey:      setting("google_api_key", "GOOGLE_FACTCHECK_API_KEY", ""),
		GoogleBaseURL:     setting("google_base_url", "GOOGLE_FACTCHECK_BASE_URL", ""),
		FactiverseAPIKey:  setting("factiverse_api_key", "FACTIVERSE_API_KEY", ""),
		FactiverseBaseURL: setting("factiverse_base_url", "FACTIVERSE_BASE_URL", ""),
		BigKindsAPIKey:    setting("bigkinds_api_key", "BIGKINDS_API_KEY", ""),
		BigKindsBaseURL:   setting("bigkinds_base_url", "BIGKINDS_BASE_URL", ""),

		DefaultLanguage:  setting("default_language", "FACTWAVE_LANGUAGE", "ko"),
		CacheTTLSeconds:  settingInt("cache_ttl_seconds", "FACTWAVE_CACHE_TTL", 86400),
		MaxRetries:       settingInt("max_retries", "FACTWAVE_MAX_RETRIES", 3),
		BatchConcurrency: settingInt("batch_concurrency", "FACTWAVE_BATCH_CONCURRENCY", 4),
		ProviderQPS:      settingFloat("provider_qps", "FACTWAVE_PROVIDER_QPS", 5),
		HTTPTimeout:      settingInt("http_timeout_seconds", "FACTWAVE_HTTP_TIMEOUT", 15),
		DedupeSources:    settingBool("dedupe_sources", "FACTWAVE_DEDUPE_SOURCES", false),
		ClampTimeDecay:   settingBool("clamp_time_decay", "FACTWAVE_CLAMP_TIME_DECAY", false),
	}
}
