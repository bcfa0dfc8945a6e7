package chromem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	chromemgo "github.com/philippgille/chromem-go"

	"github.com/medassist/rag-chatbot/internal/core/domain"
	"github.com/medassist/rag-chatbot/internal/core/ports"
)

const (
	collectionName = "documents"
	manifestFile   = "manifest.json"
	dbSubdir       = "chroma"

	metaSource = "source"
)

// manifest records what the persisted index was built with. Retrieval is
// only meaningful when the serving process embeds queries with the same
// model, so Open warns on a mismatch.
type manifest struct {
	EmbeddingModel string    `json:"embedding_model"`
	Dimension      int       `json:"dimension"`
	Chunks         int       `json:"chunks"`
	CreatedAt      time.Time `json:"created_at"`
}

// Store persists chunk vectors in an embedded chromem-go database under a
// single directory. Ingestion always rebuilds from scratch; the serving
// process opens the result read-only.
type Store struct {
	path       string
	embedModel string
	embedFn    chromemgo.EmbeddingFunc
	logger     *slog.Logger

	collection *chromemgo.Collection
	dimension  int
}

// NewEmbeddingFunc adapts the embedding port to chromem-go's callback.
func NewEmbeddingFunc(embedder ports.Embedder) chromemgo.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		vector, err := embedder.EmbedQuery(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed text: %w", err)
		}
		return vector, nil
	}
}

// NewBuilder returns a Store ready to Rebuild. Nothing is touched on disk
// until Rebuild runs.
func NewBuilder(path, embedModel string, embedFn chromemgo.EmbeddingFunc, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		path:       path,
		embedModel: embedModel,
		embedFn:    embedFn,
		logger:     logger,
	}
}

// Open loads a previously persisted index. It fails with
// domain.ErrIndexNotFound when the directory is absent and with
// domain.ErrCorruptIndex when the directory exists but cannot be loaded.
func Open(path, embedModel string, embedFn chromemgo.EmbeddingFunc, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, domain.WrapError(domain.ErrIndexNotFound, "open index",
			fmt.Errorf("%s does not exist, run the ingest command first", path))
	}

	m, err := readManifest(filepath.Join(path, manifestFile))
	if err != nil {
		return nil, domain.WrapError(domain.ErrCorruptIndex, "open index", err)
	}
	if m.EmbeddingModel != embedModel {
		logger.Warn("index was built with a different embedding model, retrieval quality is undefined",
			"index_model", m.EmbeddingModel, "configured_model", embedModel)
	}

	db, err := chromemgo.NewPersistentDB(filepath.Join(path, dbSubdir), false)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCorruptIndex, "open index", err)
	}
	collection := db.GetCollection(collectionName, embedFn)
	if collection == nil {
		return nil, domain.WrapError(domain.ErrCorruptIndex, "open index",
			fmt.Errorf("collection %q missing from %s", collectionName, path))
	}

	logger.Info("vector index loaded", "path", path, "chunks", collection.Count(), "dimension", m.Dimension)
	return &Store{
		path:       path,
		embedModel: embedModel,
		embedFn:    embedFn,
		logger:     logger,
		collection: collection,
		dimension:  m.Dimension,
	}, nil
}

// Rebuild wipes any previous index at the store's path and persists one
// record per chunk. Record IDs are derived from source and ordinal so a
// repeat run over unchanged input produces identical content.
func (s *Store) Rebuild(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks/vectors mismatch: %d/%d", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return domain.WrapError(domain.ErrNoDocuments, "rebuild index", errors.New("no records to index"))
	}

	if err := os.RemoveAll(s.path); err != nil {
		return fmt.Errorf("clear previous index: %w", err)
	}

	db, err := chromemgo.NewPersistentDB(filepath.Join(s.path, dbSubdir), false)
	if err != nil {
		return fmt.Errorf("create index database: %w", err)
	}
	collection, err := db.CreateCollection(collectionName, nil, s.embedFn)
	if err != nil {
		return fmt.Errorf("create index collection: %w", err)
	}

	records := make([]chromemgo.Document, 0, len(chunks))
	for i, chunk := range chunks {
		records = append(records, chromemgo.Document{
			ID:        fmt.Sprintf("%s#%04d", chunk.Source, chunk.Ordinal),
			Metadata:  map[string]string{metaSource: chunk.Source},
			Embedding: vectors[i],
			Content:   chunk.Text,
		})
	}
	if err := collection.AddDocuments(ctx, records, runtime.NumCPU()); err != nil {
		return fmt.Errorf("add records: %w", err)
	}

	dimension := len(vectors[0])
	if err := writeManifest(filepath.Join(s.path, manifestFile), manifest{
		EmbeddingModel: s.embedModel,
		Dimension:      dimension,
		Chunks:         len(chunks),
		CreatedAt:      time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("write index manifest: %w", err)
	}

	s.collection = collection
	s.dimension = dimension
	s.logger.Info("vector index rebuilt", "path", s.path, "chunks", len(chunks), "dimension", dimension)
	return nil
}

// Search returns up to limit records ordered by descending cosine
// similarity. An empty index yields an empty result, not an error.
func (s *Store) Search(ctx context.Context, queryVector []float32, limit int) ([]domain.RetrievedChunk, error) {
	if s.collection == nil {
		return nil, domain.WrapError(domain.ErrIndexNotFound, "search index", errors.New("index not built or opened"))
	}
	if limit <= 0 {
		limit = 4
	}
	if s.dimension > 0 && len(queryVector) != s.dimension {
		return nil, domain.WrapError(domain.ErrCorruptIndex, "search index",
			fmt.Errorf("query dimension %d does not match index dimension %d", len(queryVector), s.dimension))
	}

	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}

	results, err := s.collection.QueryEmbedding(ctx, queryVector, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	out := make([]domain.RetrievedChunk, 0, len(results))
	for _, r := range results {
		out = append(out, domain.RetrievedChunk{
			Text:   r.Content,
			Source: r.Metadata[metaSource],
			Score:  float64(r.Similarity),
		})
	}
	return out, nil
}

func readManifest(path string) (manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	var m manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	if m.Dimension <= 0 {
		return manifest{}, fmt.Errorf("manifest has invalid dimension %d", m.Dimension)
	}
	return m, nil
}

func writeManifest(path string, m manifest) error {
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
