package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Ollama    OllamaConfig
	GigaChat  GigaChatConfig
	Generator GeneratorConfig
	Retrieval RetrievalConfig
	Session   SessionConfig
	Seed      SeedConfig
	Logger    LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type OllamaConfig struct {
	BaseURL        string
	EmbeddingModel string
	ChatModel      string
	Timeout        time.Duration
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	Model              string
	InsecureSkipVerify bool
}

// GeneratorConfig selects the downstream text-generation backend.
type GeneratorConfig struct {
	Provider string // "ollama" or "gigachat"
}

type RetrievalConfig struct {
	TopK            int
	ConfidenceFloor float64
}

type SessionConfig struct {
	Timeout         time.Duration
	SweepInterval   time.Duration
	MaxHistoryTurns int
}

type SeedConfig struct {
	DataDir   string
	ChunkMode string // "file" (whole file) or "section" (split on blank lines)
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
	// No .env file is fine: environment variables are used directly
	// (useful for Docker/K8s)

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	ollamaTimeout, _ := strconv.Atoi(getEnv("OLLAMA_TIMEOUT", "180"))
	topK, _ := strconv.Atoi(getEnv("RETRIEVAL_TOP_K", "1"))
	confidenceFloor, _ := strconv.ParseFloat(getEnv("RETRIEVAL_CONFIDENCE_FLOOR", "0.1"), 64)
	sessionTimeout, _ := strconv.Atoi(getEnv("SESSION_TIMEOUT_MINUTES", "60"))
	sweepInterval, _ := strconv.Atoi(getEnv("SESSION_SWEEP_MINUTES", "10"))
	maxHistoryTurns, _ := strconv.Atoi(getEnv("SESSION_MAX_HISTORY_TURNS", "6"))
	insecureSkipVerify := getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "true") == "true"

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "campusbot"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Ollama: OllamaConfig{
			BaseURL:        getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			EmbeddingModel: getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			ChatModel:      getEnv("OLLAMA_CHAT_MODEL", "llama3:8b"),
			Timeout:        time.Duration(ollamaTimeout) * time.Second,
		},
		GigaChat: GigaChatConfig{
			APIKey:             getEnv("GIGACHAT_API_KEY", ""),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			Model:              getEnv("GIGACHAT_MODEL", "GigaChat"),
			InsecureSkipVerify: insecureSkipVerify,
		},
		Generator: GeneratorConfig{
			Provider: getEnv("GENERATOR_PROVIDER", "ollama"),
		},
		Retrieval: RetrievalConfig{
			TopK:            topK,
			ConfidenceFloor: confidenceFloor,
		},
		Session: SessionConfig{
			Timeout:         time.Duration(sessionTimeout) * time.Minute,
			SweepInterval:   time.Duration(sweepInterval) * time.Minute,
			MaxHistoryTurns: maxHistoryTurns,
		},
		Seed: SeedConfig{
			DataDir:   getEnv("SEED_DATA_DIR", "data"),
			ChunkMode: getEnv("SEED_CHUNK_MODE", "file"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
