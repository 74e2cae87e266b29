package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config carries everything the service reads from the environment.
// Optional integrations (Mongo, Redis, RabbitMQ, the chat backend) are
// enabled by setting their URL and skipped otherwise.
type Config struct {
	ServerAddr       string
	MongoURI         string
	DBName           string
	RedisURL         string
	RabbitMQURL      string
	ChatBackendURL   string
	QuoteProviderURL string
}

// Load reads the .env file (when present) and assembles the configuration
// from environment variables, applying defaults for the address and
// database name.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file loaded, using environment as-is")
	}

	cfg := &Config{
		ServerAddr:       os.Getenv("SERVER_ADDR"),
		MongoURI:         os.Getenv("MONGODB_URI"),
		DBName:           os.Getenv("DB_NAME"),
		RedisURL:         os.Getenv("REDIS_URL"),
		RabbitMQURL:      os.Getenv("RABBITMQ_URL"),
		ChatBackendURL:   os.Getenv("CHAT_BACKEND_URL"),
		QuoteProviderURL: os.Getenv("QUOTE_PROVIDER_URL"),
	}

	if cfg.ServerAddr == "" {
		cfg.ServerAddr = ":5000"
	}
	if cfg.DBName == "" {
		cfg.DBName = "habits"
	}

	return cfg
}
