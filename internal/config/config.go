package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Rag      RagConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	StoragePath        string
	JwtSecret          string
	UploadTopic        string // in-process topic for freshly uploaded documents
}

type DatabaseConfig struct {
	Connection   string
	MaxIdleConns int
	MaxOpenConns int
}

type APIKeys struct {
	OpenAI string
}

type AIConfig struct {
	EmbeddingProvider  string // "ollama" or "openai"
	EmbeddingModel     string
	EmbeddingDimension int
	EmbeddingRPS       float64
	OllamaBaseURL      string
	OpenAIBaseURL      string
	LLMProvider        string // "openai" or "ollama"
	LLMModel           string
	MaxTokens          int
	TranscribeModel    string
}

type RagConfig struct {
	VectorStore      string // "pgvector", "qdrant" or "memory"
	QdrantURL        string
	QdrantCollection string
	CacheBackend     string // "memory" or "redis"
	OrphanGrace      time.Duration
	OrphanSweepEvery time.Duration
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			StoragePath:        getEnv("STORAGE_PATH", "storage"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
			UploadTopic:        getEnv("DOCUMENT_UPLOADED_TOPIC", "DOCUMENT_UPLOADED"),
		},
		Database: DatabaseConfig{
			Connection:   getEnv("DB_CONNECTION_STRING", ""),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
		},
		Keys: APIKeys{
			OpenAI: getEnv("OPENAI_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider:  getEnv("EMBEDDING_PROVIDER", "ollama"),
			EmbeddingModel:     getEnv("EMBEDDING_MODEL", "all-minilm"),
			EmbeddingDimension: getEnvAsInt("EMBEDDING_DIMENSION", 384),
			EmbeddingRPS:       getEnvAsFloat("EMBEDDING_RPS", 20),
			OllamaBaseURL:      getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			LLMProvider:        getEnv("LLM_PROVIDER", "openai"),
			LLMModel:           getEnv("LLM_MODEL", "gpt-4o-mini"),
			MaxTokens:          getEnvAsInt("MAX_TOKENS", 1000),
			TranscribeModel:    getEnv("TRANSCRIBE_MODEL", "whisper-1"),
		},
		Rag: RagConfig{
			VectorStore:      getEnv("VECTOR_STORE", "pgvector"),
			QdrantURL:        getEnv("QDRANT_URL", "http://localhost:6333"),
			QdrantCollection: getEnv("QDRANT_COLLECTION", "document_chunks"),
			CacheBackend:     getEnv("CACHE_BACKEND", "memory"),
			OrphanGrace:      time.Duration(getEnvAsInt("ORPHAN_GRACE_MINUTES", 10)) * time.Minute,
			OrphanSweepEvery: time.Duration(getEnvAsInt("ORPHAN_SWEEP_INTERVAL_MINUTES", 5)) * time.Minute,
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

// getEnvAsMinutes falls back unless the value is a positive whole number of minutes.
func getEnvAsMinutes(key string, fallback int) time.Duration {
	minutes := getEnvAsInt(key, fallback)
	if minutes <= 0 {
		minutes = fallback
	}
	return time.Duration(minutes) * time.Minute
}
