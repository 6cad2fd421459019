package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	GigaChat    GigaChatConfig
	Embedding   EmbeddingConfig
	VectorCache VectorCacheConfig
	Chat        ChatConfig
	Logger      LoggerConfig
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

type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	HistoryTTL time.Duration
}

type JWTConfig struct {
	SecretKey  string
	Expiration time.Duration
	RefreshExp time.Duration
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	Model              string
	InsecureSkipVerify bool
}

type EmbeddingConfig struct {
	BaseURL   string
	APIKey    string
	Model     string
	Dimension int
	Timeout   time.Duration
}

// VectorCacheConfig carries two similarity thresholds. The retrieval
// threshold admits candidates into the search result set; the stricter
// relevance threshold decides what is allowed into the prompt. They are
// tuned independently, do not collapse them into one knob.
type VectorCacheConfig struct {
	Collection             string
	TopK                   int
	MinRetrievalSimilarity float64
	MinRelevanceSimilarity float64
}

type ChatConfig struct {
	HistoryWindow   int
	MaxContextChars int
	Timeout         time.Duration
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
	// No .env file is fine; environment variables alone are enough for Docker/K8s.

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	jwtExp, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	refreshExp, _ := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	historyTTL, _ := strconv.Atoi(getEnv("CHAT_HISTORY_TTL_HOURS", "24"))
	embedDim, _ := strconv.Atoi(getEnv("EMBEDDING_DIMENSION", "768"))
	embedTimeout, _ := strconv.Atoi(getEnv("EMBEDDING_TIMEOUT_SECONDS", "15"))
	topK, _ := strconv.Atoi(getEnv("VECTOR_TOP_K", "10"))
	historyWindow, _ := strconv.Atoi(getEnv("CHAT_HISTORY_WINDOW", "5"))
	maxContextChars, _ := strconv.Atoi(getEnv("CHAT_MAX_CONTEXT_CHARS", "6000"))
	chatTimeout, _ := strconv.Atoi(getEnv("CHAT_TIMEOUT_SECONDS", "30"))
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
			DBName:   getEnv("DB_NAME", "exam_allocation"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:       getEnv("REDIS_ADDR", "localhost:6379"),
			Password:   getEnv("REDIS_PASSWORD", ""),
			DB:         redisDB,
			HistoryTTL: time.Duration(historyTTL) * time.Hour,
		},
		JWT: JWTConfig{
			SecretKey:  getEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production"),
			Expiration: time.Duration(jwtExp) * time.Hour,
			RefreshExp: time.Duration(refreshExp) * time.Hour,
		},
		GigaChat: GigaChatConfig{
			APIKey:             getEnv("GIGACHAT_API_KEY", ""),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			Model:              getEnv("GIGACHAT_MODEL", "GigaChat"),
			InsecureSkipVerify: insecureSkipVerify,
		},
		Embedding: EmbeddingConfig{
			BaseURL:   getEnv("EMBEDDING_BASE_URL", "https://gigachat.devices.sberbank.ru/api/v1"),
			APIKey:    getEnv("EMBEDDING_API_KEY", ""),
			Model:     getEnv("EMBEDDING_MODEL", "Embeddings"),
			Dimension: embedDim,
			Timeout:   time.Duration(embedTimeout) * time.Second,
		},
		VectorCache: VectorCacheConfig{
			Collection:             getEnv("VECTOR_COLLECTION", "exam-knowledge"),
			TopK:                   topK,
			MinRetrievalSimilarity: getEnvFloat("MIN_RETRIEVAL_SIMILARITY", 0.25),
			MinRelevanceSimilarity: getEnvFloat("MIN_RELEVANCE_SIMILARITY", 0.30),
		},
		Chat: ChatConfig{
			HistoryWindow:   historyWindow,
			MaxContextChars: maxContextChars,
			Timeout:         time.Duration(chatTimeout) * time.Second,
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

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
