package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort        = "3000"
	defaultEnvironment = "development"
	defaultGeminiModel = "gemini-3-pro-preview"
	defaultOrigins     = "http://localhost:5173"

	defaultThrottleWindow = time.Minute
	defaultThrottleLimit  = 10
)

type Config struct {
	AppPort     string
	Environment string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	GeminiAPIKey string
	GeminiModel  string

	DatabaseDSN string

	RedisAddr     string
	RedisPassword string

	AllowedOrigins []string

	ThrottleWindow time.Duration
	ThrottleLimit  int
}

// Load reads configuration from the environment. A .env file in the working
// directory is honored when present.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppPort:     getEnv("APP_PORT", defaultPort),
		Environment: getEnv("APP_ENV", defaultEnvironment),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", defaultGeminiModel),

		DatabaseDSN: os.Getenv("DATABASE_DSN"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", defaultOrigins)),

		ThrottleWindow: getDuration("THROTTLE_TTL", defaultThrottleWindow),
		ThrottleLimit:  getInt("THROTTLE_LIMIT", defaultThrottleLimit),
	}
}

// IsProduction reports whether the service runs with production settings.
// Cookie attributes and log encoding depend on this.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	// accepts either a Go duration ("60s") or plain seconds ("60")
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
