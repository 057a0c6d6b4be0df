package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
)

// Config holds process-wide settings read from the environment
type Config struct {
	HTTPPort      string
	MongoURI      string
	MongoDB       string
	RedisAddr     string
	StoreDriver   string
	DatabaseURL   string
	JWTSecret     string
	TokenTTL      time.Duration
	PublicBaseURL string
	LogLevel      string
	CORSOrigins   string
}

// Load reads an optional .env file, then the environment
func Load() *Config {
	// .env is optional; real deployments set variables directly
	_ = godotenv.Load()

	return &Config{
		HTTPPort:      getEnv("PORT", "8080"),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:       getEnv("MONGO_DB", "keno"),
		RedisAddr:     redisAddr(getEnv("REDIS_URI", "localhost:6379")),
		StoreDriver:   strings.ToLower(getEnv("STORE_DRIVER", StoreMongo)),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		JWTSecret:     getEnv("JWT_SECRET", "super-secret-key-change-in-production"),
		TokenTTL:      getDuration("TOKEN_TTL", 24*time.Hour),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		CORSOrigins:   getEnv("CORS_ALLOWED_ORIGINS", "*"),
	}
}

// redisAddr strips the redis:// scheme go-redis Options.Addr does not accept
func redisAddr(uri string) string {
	return strings.TrimPrefix(uri, "redis://")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
