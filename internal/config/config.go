package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	APIPort  string
	LogLevel string

	GoogleAPIKey string

	DocsDir  string
	IndexDir string

	OllamaURL        string
	OllamaEmbedModel string
	EmbedBatchSize   int

	ChunkSize    int
	ChunkOverlap int
	RAGTopK      int

	GeminiTextModels   []string
	GeminiVisionModels []string
	GenTemperature     float64
	GenMaxTokens       int

	ImageFallbackQuery string
}

func Load() Config {
	return Config{
		APIPort:  mustEnv("API_PORT", "8000"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		GoogleAPIKey: mustEnv("GOOGLE_API_KEY", ""),

		DocsDir:  mustEnv("DOCS_DIR", "./medical_docs"),
		IndexDir: mustEnv("INDEX_DIR", "./vector_store"),

		OllamaURL:        mustEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaEmbedModel: mustEnv("OLLAMA_EMBED_MODEL", "nomic-embed-text"),
		EmbedBatchSize:   mustEnvInt("EMBED_BATCH_SIZE", 32),

		ChunkSize:    mustEnvInt("CHUNK_SIZE", 700),
		ChunkOverlap: mustEnvInt("CHUNK_OVERLAP", 70),
		RAGTopK:      mustEnvInt("RAG_TOP_K", 4),

		GeminiTextModels:   mustEnvList("GEMINI_TEXT_MODELS", "gemini-2.5-flash,gemini-flash-latest,gemini-2.0-flash"),
		GeminiVisionModels: mustEnvList("GEMINI_VISION_MODELS", "gemini-2.5-flash,gemini-2.0-flash,gemini-pro-vision"),
		GenTemperature:     mustEnvFloat("GEN_TEMPERATURE", 0.7),
		GenMaxTokens:       mustEnvInt("GEN_MAX_TOKENS", 512),

		ImageFallbackQuery: mustEnv("IMAGE_FALLBACK_QUERY", "medical information"),
	}
}

// Validate checks the settings the serving process cannot run without.
// Ingestion never talks to Gemini, so it does not call this.
func (c Config) Validate() error {
	if strings.TrimSpace(c.GoogleAPIKey) == "" {
		return errors.New("GOOGLE_API_KEY environment variable is not set")
	}
	if len(c.GeminiTextModels) == 0 {
		return errors.New("GEMINI_TEXT_MODELS must name at least one candidate")
	}
	return nil
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
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

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvList(key, fallback string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
