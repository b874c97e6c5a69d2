package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App    AppConfig
	Keys   APIKeys
	Ai     AIConfig
	Triage TriageConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string
	EventTopic         string
}

type APIKeys struct {
	GoogleGemini string
	OpenAI       string
}

type AIConfig struct {
	LLMProvider         string // "gemini" or "openai"
	GeminiBaseURL       string
	GeminiModel         string
	GeminiFallbackModel string
	OpenAIBaseURL       string
	OpenAIModel         string
	OpenAIFallbackModel string
	Temperature         float64
	MaxOutputTokens     int
	Timeout             time.Duration
}

type TriageConfig struct {
	MaxImages     int
	MaxImageBytes int64
	SelfTestTTL   time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "4000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			JwtSecret:          getEnv("JWT_SECRET", ""),
			EventTopic:         getEnv("TRIAGE_EVENT_TOPIC", "TRIAGE_COMPLETED"),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_API_KEY", ""),
			OpenAI:       getEnv("OPENAI_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:         getEnv("LLM_PROVIDER", "gemini"),
			GeminiBaseURL:       getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			GeminiModel:         getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			GeminiFallbackModel: getEnv("GEMINI_FALLBACK_MODEL", "gemini-1.5-flash"),
			OpenAIBaseURL:       getEnv("OPENAI_BASE_URL", ""),
			OpenAIModel:         getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			OpenAIFallbackModel: getEnv("OPENAI_FALLBACK_MODEL", "gpt-4o"),
			Temperature:         getEnvAsFloat("GEMINI_TEMPERATURE", 0.4),
			MaxOutputTokens:     getEnvAsInt("GEMINI_MAX_OUTPUT_TOKENS", 1024),
			Timeout:             time.Duration(getEnvAsInt("GEMINI_TIMEOUT_SECONDS", 60)) * time.Second,
		},
		Triage: TriageConfig{
			MaxImages:     getEnvAsInt("TRIAGE_MAX_IMAGES", 3),
			MaxImageBytes: int64(getEnvAsInt("TRIAGE_MAX_IMAGE_MB", 8)) * 1024 * 1024,
			SelfTestTTL:   time.Duration(getEnvAsInt("SELF_TEST_CACHE_SECONDS", 30)) * time.Second,
		},
	}
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

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
