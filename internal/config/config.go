package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	GeminiAPIKey        string
	DatabaseURL         string
	Neo4jURI            string
	Neo4jUser           string
	Neo4jPassword       string
	WorkerCount         int
	BatchSize           int
	GenerationModel     string
	EmbeddingModel      string
	EmbeddingBaseURL    string
	EmbeddingDimensions int
	DefaultOrigin       string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	return &Config{
		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		DatabaseURL:         getEnv("DATABASE_URL", "postgres://localhost:5432/chirpter?sslmode=disable"),
		Neo4jURI:            getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:           getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:       getEnv("NEO4J_PASSWORD", "password"),
		WorkerCount:         getEnvInt("WORKER_COUNT", 8),
		BatchSize:           getEnvInt("BATCH_SIZE", 32),
		GenerationModel:     getEnv("GENERATION_MODEL", "gemini-2.5-flash"),
		EmbeddingModel:      getEnv("EMBEDDING_MODEL", "text-embedding-004"),
		EmbeddingBaseURL:    getEnv("EMBEDDING_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai"),
		EmbeddingDimensions: getEnvInt("EMBEDDING_DIMENSIONS", 768),
		DefaultOrigin:       getEnv("DEFAULT_ORIGIN", "en"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
