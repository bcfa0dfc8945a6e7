package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/medassist/rag-chatbot/internal/config"
	"github.com/medassist/rag-chatbot/internal/core/ports"
	"github.com/medassist/rag-chatbot/internal/core/usecase"
	"github.com/medassist/rag-chatbot/internal/infrastructure/chunking"
	"github.com/medassist/rag-chatbot/internal/infrastructure/embedding/ollama"
	"github.com/medassist/rag-chatbot/internal/infrastructure/llm/gemini"
	"github.com/medassist/rag-chatbot/internal/infrastructure/loader"
	"github.com/medassist/rag-chatbot/internal/infrastructure/vector/chromem"
	"github.com/medassist/rag-chatbot/internal/observability/metrics"
)

// ServingApp wires the components the HTTP API needs: an opened index, an
// embedder for queries and a resolved Gemini client.
type ServingApp struct {
	Config  config.Config
	AskUC   ports.QuestionAnswerer
	Vision  bool
	Metrics *metrics.HTTPServerMetrics
}

func NewServing(ctx context.Context, cfg config.Config, logger *slog.Logger) (*ServingApp, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	embedder := ollama.New(cfg.OllamaURL, cfg.OllamaEmbedModel)

	index, err := chromem.Open(cfg.IndexDir, cfg.OllamaEmbedModel, chromem.NewEmbeddingFunc(embedder), logger)
	if err != nil {
		return nil, fmt.Errorf("open vector index: %w", err)
	}

	generator, err := gemini.New(ctx, gemini.Options{
		APIKey:           cfg.GoogleAPIKey,
		TextCandidates:   cfg.GeminiTextModels,
		VisionCandidates: cfg.GeminiVisionModels,
		Temperature:      float32(cfg.GenTemperature),
		MaxOutputTokens:  int32(cfg.GenMaxTokens),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("init gemini: %w", err)
	}

	askUC := usecase.NewAskUseCase(embedder, index, generator, cfg.RAGTopK, cfg.ImageFallbackQuery, logger)

	return &ServingApp{
		Config:  cfg,
		AskUC:   askUC,
		Vision:  generator.VisionAvailable(),
		Metrics: metrics.NewHTTPServerMetrics("medrag-api"),
	}, nil
}

// IngestionApp wires the batch pipeline. It never touches Gemini, so it
// works without an API key.
type IngestionApp struct {
	Config   config.Config
	IngestUC ports.DocumentIngestor
}

func NewIngestion(cfg config.Config, logger *slog.Logger) *IngestionApp {
	embedder := ollama.New(cfg.OllamaURL, cfg.OllamaEmbedModel)
	builder := chromem.NewBuilder(cfg.IndexDir, cfg.OllamaEmbedModel, chromem.NewEmbeddingFunc(embedder), logger)
	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	docs := loader.New(logger)

	return &IngestionApp{
		Config:   cfg,
		IngestUC: usecase.NewIngestUseCase(docs, chunker, embedder, builder, cfg.EmbedBatchSize, logger),
	}
}
