package gemini

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResolveModelPicksFirstWorking(t *testing.T) {
	probed := []string{}
	probe := func(_ context.Context, model string) error {
		probed = append(probed, model)
		if model == "gemini-2.5-flash" {
			return errors.New("quota exceeded")
		}
		return nil
	}

	model, err := resolveModel(context.Background(),
		[]string{"gemini-2.5-flash", "gemini-flash-latest", "gemini-2.0-flash"}, probe, testLogger())
	if err != nil {
		t.Fatalf("resolveModel: %v", err)
	}
	if model != "gemini-flash-latest" {
		t.Errorf("expected gemini-flash-latest, got %q", model)
	}
	if len(probed) != 2 {
		t.Errorf("expected probing to stop after first success, probed %v", probed)
	}
}

func TestResolveModelAllFail(t *testing.T) {
	probe := func(context.Context, string) error { return errors.New("unavailable") }

	_, err := resolveModel(context.Background(), []string{"a", "b"}, probe, testLogger())
	if err == nil {
		t.Fatal("expected error when every candidate fails")
	}
}

func TestResolveModelNilProbeTakesFirst(t *testing.T) {
	model, err := resolveModel(context.Background(),
		[]string{"", "  ", "gemini-2.5-flash", "gemini-2.0-flash"}, nil, testLogger())
	if err != nil {
		t.Fatalf("resolveModel: %v", err)
	}
	if model != "gemini-2.5-flash" {
		t.Errorf("expected first non-empty candidate, got %q", model)
	}
}

func TestResolveModelEmptyCandidates(t *testing.T) {
	if _, err := resolveModel(context.Background(), nil, nil, testLogger()); err == nil {
		t.Fatal("expected error for empty candidate list")
	}
}

func TestBuildAnswerPromptEmbedsInputs(t *testing.T) {
	prompt := buildAnswerPrompt("aspirin is an NSAID", "what is aspirin?")

	for _, want := range []string{"aspirin is an NSAID", "what is aspirin?", "CONTEXT:", "USER QUESTION:"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildVisionPromptEmbedsInputs(t *testing.T) {
	prompt := buildVisionPrompt("dermatology notes", "what is this rash?")

	for _, want := range []string{"dermatology notes", "what is this rash?", "CONTEXT FROM KNOWLEDGE BASE:", "analyze the image"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
