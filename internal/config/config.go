package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Ai        AIConfig
	Retrieval RetrievalConfig
	Session   SessionConfig
	Explorer  ExplorerConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	TraceLogFilePath   string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	ShutdownTimeout    time.Duration
	ServiceName        string
	OtelEnabled        bool
	OtelEndpoint       string
}

type DatabaseConfig struct {
	Connection      string
	LogLevel        string
	SlowThreshold   time.Duration
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type AIConfig struct {
	EmbeddingProvider   string // "openai" or "ollama"
	EmbeddingModel      string
	EmbeddingDimensions int
	LLMProvider         string // "openai" or "ollama"
	LLMModel            string
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	OllamaBaseURL       string
}

// RetrievalConfig holds the tuning constants of the adaptive search.
type RetrievalConfig struct {
	Limit            int
	ShortQueryWords  int
	MediumQueryWords int
	ShortThreshold   float64
	MediumThreshold  float64
	LongThreshold    float64
	FloorThreshold   float64
	Temperature      float64
	MaxTokens        int
	Model            string
}

type SessionConfig struct {
	StaleAfter    time.Duration
	SweepInterval time.Duration
}

type ExplorerConfig struct {
	Timeout         time.Duration
	CacheTTL        time.Duration
	CacheSize       int
	RestrictDomains bool
	AllowedDomains  []string
	HistoryLimit    int
	MaxProbePaths   int
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			TraceLogFilePath:   getEnv("TRACE_LOG_FILE_PATH", "rag_trace.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			ShutdownTimeout:    getEnvAsDuration("APP_SHUTDOWN_TIMEOUT", 30*time.Second),
			ServiceName:        getEnv("OTEL_SERVICE_NAME", "rag-api-explorer-be"),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Database: DatabaseConfig{
			Connection:      getEnv("DB_CONNECTION_STRING", ""),
			LogLevel:        getEnv("DB_LOG_LEVEL", "warn"),
			SlowThreshold:   getEnvAsDuration("DB_SLOW_THRESHOLD", time.Second),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		Ai: AIConfig{
			EmbeddingProvider:   getEnv("EMBEDDING_PROVIDER", "openai"),
			EmbeddingModel:      getEnv("EMBEDDING_MODEL", "text-embedding-ada-002"),
			EmbeddingDimensions: getEnvAsInt("EMBEDDING_DIMENSIONS", 1536),
			LLMProvider:         getEnv("LLM_PROVIDER", "openai"),
			LLMModel:            getEnv("LLM_MODEL", "gpt-3.5-turbo"),
			OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:       getEnv("OPENAI_BASE_URL", ""),
			OllamaBaseURL:       getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		},
		Retrieval: RetrievalConfig{
			Limit:            getEnvAsInt("RETRIEVAL_LIMIT", 3),
			ShortQueryWords:  getEnvAsInt("RETRIEVAL_SHORT_QUERY_WORDS", 3),
			MediumQueryWords: getEnvAsInt("RETRIEVAL_MEDIUM_QUERY_WORDS", 6),
			ShortThreshold:   getEnvAsFloat("RETRIEVAL_SHORT_THRESHOLD", 0.75),
			MediumThreshold:  getEnvAsFloat("RETRIEVAL_MEDIUM_THRESHOLD", 0.80),
			LongThreshold:    getEnvAsFloat("RETRIEVAL_LONG_THRESHOLD", 0.85),
			FloorThreshold:   getEnvAsFloat("RETRIEVAL_FLOOR_THRESHOLD", 0.70),
			Temperature:      getEnvAsFloat("RETRIEVAL_TEMPERATURE", 0.3),
			MaxTokens:        getEnvAsInt("RETRIEVAL_MAX_TOKENS", 0),
			Model:            getEnv("RETRIEVAL_MODEL", ""),
		},
		Session: SessionConfig{
			StaleAfter:    getEnvAsDuration("SESSION_STALE_AFTER", 2*time.Hour),
			SweepInterval: getEnvAsDuration("SESSION_SWEEP_INTERVAL", time.Hour),
		},
		Explorer: ExplorerConfig{
			Timeout:         getEnvAsDuration("EXPLORER_TIMEOUT", 10*time.Second),
			CacheTTL:        getEnvAsDuration("EXPLORER_CACHE_TTL", 5*time.Minute),
			CacheSize:       getEnvAsInt("EXPLORER_CACHE_SIZE", 128),
			RestrictDomains: getEnvAsBool("EXPLORER_RESTRICT_DOMAINS", true),
			AllowedDomains:  getEnvAsSlice("EXPLORER_ALLOWED_DOMAINS", nil),
			HistoryLimit:    getEnvAsInt("EXPLORER_HISTORY_LIMIT", 100),
			MaxProbePaths:   getEnvAsInt("EXPLORER_MAX_PROBE_PATHS", 12),
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

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsSlice splits a comma separated value, dropping blanks.
func getEnvAsSlice(key string, fallback []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(strValue, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
