package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/medassist/rag-chatbot/internal/core/domain"
	"github.com/medassist/rag-chatbot/internal/core/ports"
)

// IngestUseCase turns a directory of documents into a fresh vector index.
// It is a batch operation: the previous index is replaced wholesale, there
// is no incremental update.
type IngestUseCase struct {
	loader    ports.DocumentLoader
	chunker   ports.Chunker
	embedder  ports.Embedder
	index     ports.VectorIndex
	batchSize int
	logger    *slog.Logger
}

func NewIngestUseCase(
	loader ports.DocumentLoader,
	chunker ports.Chunker,
	embedder ports.Embedder,
	index ports.VectorIndex,
	batchSize int,
	logger *slog.Logger,
) *IngestUseCase {
	if batchSize <= 0 {
		batchSize = 32
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestUseCase{
		loader:    loader,
		chunker:   chunker,
		embedder:  embedder,
		index:     index,
		batchSize: batchSize,
		logger:    logger,
	}
}

func (uc *IngestUseCase) Run(ctx context.Context, dir string) (domain.IngestStats, error) {
	docs, err := uc.loader.Load(ctx, dir)
	if err != nil {
		return domain.IngestStats{}, fmt.Errorf("load documents: %w", err)
	}
	if len(docs) == 0 {
		return domain.IngestStats{}, domain.WrapError(domain.ErrNoDocuments, "ingest",
			fmt.Errorf("no readable documents in %s", dir))
	}

	var chunks []domain.Chunk
	for _, doc := range docs {
		pieces := uc.chunker.Split(doc.Text)
		for i, piece := range pieces {
			chunks = append(chunks, domain.Chunk{
				Text:    piece,
				Source:  doc.Source,
				Ordinal: i,
			})
		}
		uc.logger.Info("document chunked", "source", doc.Source, "chunks", len(pieces))
	}
	if len(chunks) == 0 {
		return domain.IngestStats{}, domain.WrapError(domain.ErrNoDocuments, "ingest",
			errors.New("documents produced no chunks"))
	}

	vectors, err := uc.embedChunks(ctx, chunks)
	if err != nil {
		return domain.IngestStats{}, err
	}

	if err := uc.index.Rebuild(ctx, chunks, vectors); err != nil {
		return domain.IngestStats{}, fmt.Errorf("rebuild index: %w", err)
	}

	stats := domain.IngestStats{Documents: len(docs), Chunks: len(chunks)}
	uc.logger.Info("ingestion complete", "documents", stats.Documents, "chunks", stats.Chunks)
	return stats, nil
}

// embedChunks batches embedding requests so a large corpus does not turn
// into one oversized call.
func (uc *IngestUseCase) embedChunks(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	vectors := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += uc.batchSize {
		end := start + uc.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, 0, end-start)
		for _, ch := range chunks[start:end] {
			texts = append(texts, ch.Text)
		}

		batch, err := uc.embedder.Embed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed chunks %d-%d: %w", start, end, err)
		}
		if len(batch) != len(texts) {
			return nil, fmt.Errorf("embed chunks %d-%d: got %d vectors for %d texts", start, end, len(batch), len(texts))
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}
