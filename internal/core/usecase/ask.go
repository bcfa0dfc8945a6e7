package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/medassist/rag-chatbot/internal/core/domain"
	"github.com/medassist/rag-chatbot/internal/core/ports"
)

// InsufficientContextAnswer is returned verbatim when a text-only question
// finds nothing in the index.
const InsufficientContextAnswer = "I don't have enough information to answer that question."

const visionFallbackQuestion = "What do you see in this medical image?"

// AskUseCase answers a question from the indexed corpus, optionally
// grounding a vision model on an attached image.
type AskUseCase struct {
	embedder      ports.Embedder
	index         ports.VectorIndex
	generator     ports.AnswerGenerator
	topK          int
	fallbackQuery string
	logger        *slog.Logger
}

func NewAskUseCase(
	embedder ports.Embedder,
	index ports.VectorIndex,
	generator ports.AnswerGenerator,
	topK int,
	fallbackQuery string,
	logger *slog.Logger,
) *AskUseCase {
	if topK <= 0 {
		topK = 4
	}
	if fallbackQuery == "" {
		fallbackQuery = "medical information"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AskUseCase{
		embedder:      embedder,
		index:         index,
		generator:     generator,
		topK:          topK,
		fallbackQuery: fallbackQuery,
		logger:        logger,
	}
}

func (uc *AskUseCase) Ask(ctx context.Context, question, imageBase64 string) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	hasImage := strings.TrimSpace(imageBase64) != ""

	if question == "" && !hasImage {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ask",
			errors.New("query and image are both empty"))
	}

	// Image-only requests still retrieve: a generic query pulls broadly
	// relevant corpus text into the vision prompt.
	retrievalQuery := question
	if retrievalQuery == "" {
		retrievalQuery = uc.fallbackQuery
	}

	chunks, err := uc.retrieve(ctx, retrievalQuery)
	if err != nil {
		return nil, err
	}
	contextText := joinContext(chunks)

	if hasImage {
		return uc.answerWithImage(ctx, question, contextText, imageBase64)
	}

	if contextText == "" {
		uc.logger.Info("no relevant context found", "question_length", len(question))
		return &domain.Answer{Text: InsufficientContextAnswer, Sources: []string{}}, nil
	}

	answerText, err := uc.generator.GenerateAnswer(ctx, question, contextText)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &domain.Answer{
		Text:    strings.TrimSpace(answerText),
		Sources: dedupSources(chunks),
	}, nil
}

func (uc *AskUseCase) answerWithImage(ctx context.Context, question, contextText, imageBase64 string) (*domain.Answer, error) {
	if !uc.generator.VisionAvailable() {
		return nil, domain.WrapError(domain.ErrVisionUnavailable, "ask",
			errors.New("no vision model configured"))
	}

	// Decode failures are internal errors, not client errors: the request
	// was well-formed JSON and the only validation contract is both-empty.
	image, mimeType, err := decodeImagePayload(imageBase64)
	if err != nil {
		return nil, fmt.Errorf("decode image payload: %w", err)
	}

	if question == "" {
		question = visionFallbackQuestion
	}

	answerText, err := uc.generator.GenerateVisionAnswer(ctx, question, contextText, image, mimeType)
	if err != nil {
		return nil, fmt.Errorf("generate vision answer: %w", err)
	}

	// Image answers come from what the model saw, not from the corpus, so
	// no document sources are attributed.
	return &domain.Answer{
		Text:    strings.TrimSpace(answerText),
		Sources: []string{},
	}, nil
}

func (uc *AskUseCase) retrieve(ctx context.Context, query string) ([]domain.RetrievedChunk, error) {
	queryVector, err := uc.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	chunks, err := uc.index.Search(ctx, queryVector, uc.topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	return chunks, nil
}

func joinContext(chunks []domain.RetrievedChunk) string {
	parts := make([]string, 0, len(chunks))
	for _, ch := range chunks {
		if strings.TrimSpace(ch.Text) == "" {
			continue
		}
		parts = append(parts, ch.Text)
	}
	return strings.Join(parts, "\n\n")
}

// dedupSources keeps first-seen order and reports file names, not paths.
func dedupSources(chunks []domain.RetrievedChunk) []string {
	seen := make(map[string]struct{}, len(chunks))
	sources := make([]string, 0, len(chunks))
	for _, ch := range chunks {
		if ch.Source == "" {
			continue
		}
		name := filepath.Base(ch.Source)
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		sources = append(sources, name)
	}
	return sources
}

// decodeImagePayload accepts both bare base64 and data-URI payloads and
// verifies the bytes look like an image before they reach the model.
// Whitespace inside the payload is dropped first; browsers and shell
// pipelines routinely insert line breaks into long base64 strings.
func decodeImagePayload(payload string) ([]byte, string, error) {
	payload = strings.TrimSpace(payload)
	if idx := strings.Index(payload, ","); idx >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[idx+1:]
	}
	payload = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, payload)

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode image base64: %w", err)
	}
	if len(data) == 0 {
		return nil, "", errors.New("image payload is empty")
	}

	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, "", fmt.Errorf("payload is %s, not an image", mimeType)
	}
	return data, mimeType, nil
}
