package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI      string
	MongoDB       string
	RedisAddr     string
	HTTPPort      string
	TriviaBaseURL string
	LogLevel      string
	LogFormat     string
}

// Load reads configuration from environment variables with defaults. A .env
// file is loaded if present but is optional.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:       getEnv("MONGO_DB", "triviarena"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		HTTPPort:      getEnv("PORT", "8080"),
		TriviaBaseURL: getEnv("TRIVIA_BASE_URL", "https://opentdb.com"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
