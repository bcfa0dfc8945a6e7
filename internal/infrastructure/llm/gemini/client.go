package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/medassist/rag-chatbot/internal/core/domain"
)

// Options configures the generation client. Candidate lists are tried in
// order until one model answers; the first hit becomes the model for the
// lifetime of the process.
type Options struct {
	APIKey           string
	TextCandidates   []string
	VisionCandidates []string
	Temperature      float32
	MaxOutputTokens  int32
}

type Client struct {
	api         *genai.Client
	textModel   string
	visionModel string
	temperature float32
	maxTokens   int32
	logger      *slog.Logger
}

// New connects to the Gemini API and resolves working text and vision
// models. Failing to resolve a text model is fatal for the caller; an empty
// vision candidate list only disables the image path.
func New(ctx context.Context, opts Options, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	api, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	c := &Client{
		api:         api,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxOutputTokens,
		logger:      logger,
	}

	textModel, err := resolveModel(ctx, opts.TextCandidates, c.probe, logger)
	if err != nil {
		return nil, fmt.Errorf("resolve text model: %w", err)
	}
	c.textModel = textModel

	// Vision candidates are taken on trust, matching the text path's probe
	// would burn quota on a model that may never be used.
	visionModel, err := resolveModel(ctx, opts.VisionCandidates, nil, logger)
	if err != nil {
		logger.Warn("no vision model available, image requests will be rejected", "error", err)
	}
	c.visionModel = visionModel

	logger.Info("gemini models resolved", "text_model", c.textModel, "vision_model", c.visionModel)
	return c, nil
}

// probe sends a minimal request to verify the model responds at all.
func (c *Client) probe(ctx context.Context, model string) error {
	_, err := c.api.Models.GenerateContent(ctx, model, genai.Text("Hello"), nil)
	return err
}

func (c *Client) GenerateAnswer(ctx context.Context, question, contextText string) (string, error) {
	prompt := buildAnswerPrompt(contextText, question)
	resp, err := c.api.Models.GenerateContent(ctx, c.textModel, genai.Text(prompt), c.generationConfig())
	if err != nil {
		return "", fmt.Errorf("generate answer with %s: %w", c.textModel, err)
	}
	return extractText(resp)
}

func (c *Client) GenerateVisionAnswer(ctx context.Context, question, contextText string, image []byte, mimeType string) (string, error) {
	if c.visionModel == "" {
		return "", domain.WrapError(domain.ErrVisionUnavailable, "generate vision answer",
			errors.New("no vision model resolved"))
	}

	prompt := buildVisionPrompt(contextText, question)
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromBytes(image, mimeType),
		}, genai.RoleUser),
	}

	resp, err := c.api.Models.GenerateContent(ctx, c.visionModel, contents, c.generationConfig())
	if err != nil {
		return "", fmt.Errorf("generate vision answer with %s: %w", c.visionModel, err)
	}
	return extractText(resp)
}

func (c *Client) VisionAvailable() bool {
	return c.visionModel != ""
}

func (c *Client) generationConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(c.temperature),
		MaxOutputTokens: c.maxTokens,
	}
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("model returned empty response")
	}
	return text, nil
}
