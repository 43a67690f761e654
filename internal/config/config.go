package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Vector store backends.
const (
	StoreSQLite = "sqlite"
	StoreQdrant = "qdrant"
)

// Config holds all configuration for the application.
type Config struct {
	APIPort   string
	LogLevel  slog.Level
	LogFormat string

	VectorStore    string
	DBPath         string
	QdrantURL      string
	CollectionName string
	VectorSize     int

	EmbeddingBaseURL   string
	EmbeddingModelName string
	LLMBaseURL         string
	LLMModelName       string
	LLMAPIKey          string

	ChunkSize    int
	ChunkOverlap int
	SearchK      int

	OCRURL        string
	PDFToTextPath string
	InboxDir      string
	StaticDir     string
	MaxUploadMB   int

	OTLPEndpoint string
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or a parent, it is loaded first.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		APIPort:            getEnv("API_PORT", "8000"),
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "text")),
		VectorStore:        strings.ToLower(getEnv("VECTOR_STORE", StoreSQLite)),
		DBPath:             getEnv("DB_PATH", "./data/legalrag.db"),
		QdrantURL:          getEnv("QDRANT_URL", "http://localhost:6333"),
		CollectionName:     getEnv("COLLECTION_NAME", "legal_docs"),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:11434"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "all-minilm"),
		LLMBaseURL:         getEnv("LLM_BASE_URL", "http://localhost:11434"),
		LLMModelName:       getEnv("LLM_MODEL", "phi3"),
		LLMAPIKey:          getEnv("LLM_API_KEY", "ollama"),
		OCRURL:             getEnv("OCR_URL", ""),
		PDFToTextPath:      getEnv("PDFTOTEXT_PATH", "pdftotext"),
		InboxDir:           getEnv("INBOX_DIR", ""),
		StaticDir:          getEnv("STATIC_DIR", "./static"),
		OTLPEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	if cfg.VectorStore != StoreSQLite && cfg.VectorStore != StoreQdrant {
		return nil, fmt.Errorf("VECTOR_STORE must be %s or %s, got %q", StoreSQLite, StoreQdrant, cfg.VectorStore)
	}

	// VECTOR_SIZE must match the output width of the embedding model.
	// Changing it requires recreating the collection.
	vectorSizeStr := getEnv("VECTOR_SIZE", "")
	if vectorSizeStr == "" {
		return nil, fmt.Errorf("VECTOR_SIZE is required")
	}
	if cfg.VectorSize, err = positiveInt("VECTOR_SIZE", vectorSizeStr); err != nil {
		return nil, err
	}

	if cfg.ChunkSize, err = positiveInt("CHUNK_SIZE", getEnv("CHUNK_SIZE", "500")); err != nil {
		return nil, err
	}
	if cfg.ChunkOverlap, err = strconv.Atoi(getEnv("CHUNK_OVERLAP", "50")); err != nil {
		return nil, fmt.Errorf("CHUNK_OVERLAP must be a valid integer: %w", err)
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP must be between 0 and CHUNK_SIZE-1, got %d", cfg.ChunkOverlap)
	}

	if cfg.SearchK, err = positiveInt("SEARCH_K", getEnv("SEARCH_K", "3")); err != nil {
		return nil, err
	}
	if cfg.MaxUploadMB, err = positiveInt("MAX_UPLOAD_MB", getEnv("MAX_UPLOAD_MB", "32")); err != nil {
		return nil, err
	}

	if cfg.UsesDatabase() {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	return cfg, nil
}

// UsesDatabase reports whether DBPath is opened: it holds the chunks of the
// sqlite store and the inbox ledger.
func (c *Config) UsesDatabase() bool {
	return c.VectorStore == StoreSQLite || c.InboxDir != ""
}

// loadDotEnv loads .env from the working directory, then the nearest parent that has one.
func loadDotEnv() {
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err != nil {
		return
	}
	dir := wd
	for i := 0; i < 5; i++ { // Limit search depth
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error: %w", err)
	}
	return level, nil
}

func positiveInt(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}
	return n, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
