package ports

import (
	"context"

	"github.com/medassist/rag-chatbot/internal/core/domain"
)

// DocumentLoader reads a directory of source files into raw documents.
// A missing directory is created and reported as an empty result, not an
// error; per-file extraction failures are logged and skipped.
type DocumentLoader interface {
	Load(ctx context.Context, dir string) ([]domain.Document, error)
}

// Chunker splits extracted text into overlapping segments.
type Chunker interface {
	Split(text string) []string
}

// Embedder builds vectors for chunks and query text. The same embedder
// instance must back both ingestion and query, or distances between the
// stored and query vectors are meaningless.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex persists chunk vectors and serves nearest-neighbour lookups.
// Rebuild replaces any previously persisted index wholesale; there is no
// incremental add.
type VectorIndex interface {
	Rebuild(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error
	Search(ctx context.Context, queryVector []float32, limit int) ([]domain.RetrievedChunk, error)
}

// AnswerGenerator creates the final user-facing answer from the question
// and the retrieved context.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question, contextText string) (string, error)
	GenerateVisionAnswer(ctx context.Context, question, contextText string, image []byte, mimeType string) (string, error)
	VisionAvailable() bool
}
