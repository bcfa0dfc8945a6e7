package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/medassist/rag-chatbot/internal/bootstrap"
	"github.com/medassist/rag-chatbot/internal/config"
	"github.com/medassist/rag-chatbot/internal/core/domain"
	"github.com/medassist/rag-chatbot/internal/observability/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.NewJSONLogger("medrag-ingest", cfg.LogLevel)
	slog.SetDefault(logger)

	docsDir := flag.String("docs", cfg.DocsDir, "directory of documents to index")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := bootstrap.NewIngestion(cfg, logger)

	stats, err := app.IngestUC.Run(ctx, *docsDir)
	if err != nil {
		if errors.Is(err, domain.ErrNoDocuments) {
			log.Fatalf("nothing to index: add .txt, .md, .pdf or .xlsx files to %s and rerun", *docsDir)
		}
		log.Fatalf("ingestion error: %v", err)
	}

	logger.Info("index written",
		"path", cfg.IndexDir,
		"documents", stats.Documents,
		"chunks", stats.Chunks,
	)
}
