package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMongo    = "mongo"
	StorageMemory   = "memory"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Mongo    MongoConfig
	Storage  StorageConfig
	Events   EventsConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
}

type DatabaseConfig struct {
	Connection string
}

type MongoConfig struct {
	URI             string
	Database        string
	UseTransactions bool
}

type StorageConfig struct {
	// Backend is one of postgres, mongo or memory.
	Backend string
}

type EventsConfig struct {
	ReviewTopic  string // durable consumer name for review system events
	RecountTopic string // in-process counter repair queue
}

type TracingConfig struct {
	Enabled  bool
	Endpoint string // OTLP HTTP host:port
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Mongo: MongoConfig{
			URI:             getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database:        getEnv("MONGO_DATABASE", "medstudy"),
			UseTransactions: getEnvAsBool("MONGO_USE_TRANSACTIONS", false),
		},
		Storage: StorageConfig{
			Backend: getEnv("STORAGE_BACKEND", StoragePostgres),
		},
		Events: EventsConfig{
			ReviewTopic:  getEnv("REVIEW_TOPIC", "error-notebook-review"),
			RecountTopic: getEnv("RECOUNT_TOPIC", "notebook.recount"),
		},
		Tracing: TracingConfig{
			Enabled:  getEnvAsBool("OTEL_ENABLED", false),
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
