package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

type probeFunc func(ctx context.Context, model string) error

// resolveModel walks the candidate list and returns the first model that
// passes the probe. A nil probe accepts the first non-empty candidate.
func resolveModel(ctx context.Context, candidates []string, probe probeFunc, logger *slog.Logger) (string, error) {
	for _, candidate := range candidates {
		model := strings.TrimSpace(candidate)
		if model == "" {
			continue
		}
		if probe == nil {
			return model, nil
		}
		if err := probe(ctx, model); err != nil {
			logger.Warn("model candidate failed", "model", model, "error", err)
			continue
		}
		return model, nil
	}
	return "", fmt.Errorf("no usable model among %d candidates: %w", len(candidates), errNoModel)
}

var errNoModel = errors.New("all candidates failed")
