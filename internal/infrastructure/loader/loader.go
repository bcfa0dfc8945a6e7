package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/medassist/rag-chatbot/internal/core/domain"
)

type extractFunc func(path string) (string, error)

// Loader reads every regular file with a recognized extension from a
// directory. Extraction failures are per-file tolerant: the file is
// logged and skipped, never aborting the batch.
type Loader struct {
	logger     *slog.Logger
	extractors map[string]extractFunc
}

func New(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger: logger,
		extractors: map[string]extractFunc{
			".txt":  extractPlainText,
			".md":   extractPlainText,
			".pdf":  extractPDF,
			".xlsx": extractWorkbook,
		},
	}
}

func (l *Loader) Load(ctx context.Context, dir string) ([]domain.Document, error) {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
			return nil, fmt.Errorf("create docs directory: %w", mkErr)
		}
		l.logger.Warn("docs directory did not exist, created it; add documents and run again", "dir", dir)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat docs directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("docs path is not a directory: %s", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read docs directory: %w", err)
	}

	var docs []domain.Document
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() {
			continue
		}

		extract, ok := l.extractors[strings.ToLower(filepath.Ext(entry.Name()))]
		if !ok {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		text, err := extract(path)
		if err != nil {
			l.logger.Warn("skipping unreadable document", "file", entry.Name(), "error", err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			l.logger.Warn("skipping document with no extractable text", "file", entry.Name())
			continue
		}

		docs = append(docs, domain.Document{Text: text, Source: path})
		l.logger.Info("loaded document", "file", entry.Name(), "chars", len(text))
	}
	return docs, nil
}
