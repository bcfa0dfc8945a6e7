package ports

import (
	"context"

	"github.com/medassist/rag-chatbot/internal/core/domain"
)

// QuestionAnswerer is the inbound contract for the ask flow. Either the
// question or the base64 image payload may be empty, but not both.
type QuestionAnswerer interface {
	Ask(ctx context.Context, question, imageBase64 string) (*domain.Answer, error)
}

// DocumentIngestor is the inbound contract for the offline ingestion batch.
type DocumentIngestor interface {
	Run(ctx context.Context, dir string) (domain.IngestStats, error)
}
