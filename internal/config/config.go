package config

import (
	"log"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Session  SessionConfig
}

type AppConfig struct {
	Port               string `validate:"required,number"`
	BaseURL            string `validate:"required,url"`
	ClientURL          string `validate:"required,url"`
	Environment        string `validate:"required,oneof=development staging production"`
	LogFilePath        string `validate:"required"`
	CorsAllowedOrigins string `validate:"required"`
	RedisURL           string
	EventTopic         string `validate:"required"`
}

type DatabaseConfig struct {
	Connection string `validate:"required"`
}

type APIKeys struct {
	GoogleGemini       string
	GoogleSearchAPIKey string
	GoogleSearchEngine string
}

type AIConfig struct {
	LLMProvider   string `validate:"required,oneof=ollama gemini"`
	LLMModel      string `validate:"required"`
	OllamaBaseURL string
}

type SessionConfig struct {
	Backend    string `validate:"required,oneof=memory redis"`
	TTLMinutes int    `validate:"min=1"`
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	cfg := &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			EventTopic:         getEnv("WORKFLOW_EVENT_TOPIC_NAME", "WORKFLOW_EVENTS"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini:       getEnv("GOOGLE_GEMINI_API_KEY", ""),
			GoogleSearchAPIKey: getEnv("GOOGLE_SEARCH_API_KEY", ""),
			GoogleSearchEngine: getEnv("GOOGLE_SEARCH_ENGINE_ID", ""),
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:      getEnv("LLM_MODEL", "llama3"),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		},
		Session: SessionConfig{
			Backend:    getEnv("SESSION_STORE", "memory"),
			TTLMinutes: getEnvAsInt("SESSION_TTL_MINUTES", 60),
		},
	}

	if err := Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	return cfg
}

// Validate checks the loaded configuration against its struct tags.
func Validate(cfg *Config) error {
	return validator.New().Struct(cfg)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
