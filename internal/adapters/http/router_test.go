package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/medassist/rag-chatbot/internal/core/domain"
	"github.com/medassist/rag-chatbot/internal/observability/metrics"
)

type fakeAnswerer struct {
	answer      *domain.Answer
	err         error
	gotQuery    string
	gotImage    string
	timesCalled int
}

func (f *fakeAnswerer) Ask(_ context.Context, question, imageBase64 string) (*domain.Answer, error) {
	f.timesCalled++
	f.gotQuery = question
	f.gotImage = imageBase64
	if f.err != nil {
		return nil, f.err
	}
	return f.answer, nil
}

func newTestRouter(answerer *fakeAnswerer, vision bool) http.Handler {
	return NewRouter(answerer, vision, metrics.NewHTTPServerMetrics("test"), "test").Handler()
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return body
}

func TestRootMetadata(t *testing.T) {
	handler := newTestRouter(&fakeAnswerer{}, true)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["message"] != "Multimodal Medical RAG Chatbot is running." {
		t.Errorf("unexpected message %v", body["message"])
	}
	if body["status"] != "active" || body["version"] != "3.0.0" {
		t.Errorf("unexpected status/version: %v / %v", body["status"], body["version"])
	}
	features, _ := body["features"].([]any)
	if len(features) != 3 || features[1] != "vision" {
		t.Errorf("expected vision among features, got %v", body["features"])
	}
	endpoints, _ := body["endpoints"].(map[string]any)
	if endpoints["ask"] != "/ask" || endpoints["transcribe"] != "/transcribe" {
		t.Errorf("unexpected endpoints %v", body["endpoints"])
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("expected request id header on response")
	}
}

func TestRootOmitsVisionFeatureWhenDisabled(t *testing.T) {
	handler := newTestRouter(&fakeAnswerer{}, false)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	body := decodeBody(t, rec)
	for _, f := range body["features"].([]any) {
		if f == "vision" {
			t.Fatalf("vision listed while disabled: %v", body["features"])
		}
	}
}

func TestRootUnknownPath(t *testing.T) {
	handler := newTestRouter(&fakeAnswerer{}, true)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAskReturnsAnswer(t *testing.T) {
	answerer := &fakeAnswerer{answer: &domain.Answer{
		Text:    "Aspirin reduces fever.",
		Sources: []string{"aspirin.txt"},
	}}
	handler := newTestRouter(answerer, true)

	payload := `{"query":"what does aspirin do?"}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(payload)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["answer"] != "Aspirin reduces fever." {
		t.Errorf("unexpected answer %v", body["answer"])
	}
	sources, _ := body["sources"].([]any)
	if len(sources) != 1 || sources[0] != "aspirin.txt" {
		t.Errorf("unexpected sources %v", body["sources"])
	}
	if answerer.gotQuery != "what does aspirin do?" {
		t.Errorf("query not forwarded, got %q", answerer.gotQuery)
	}
}

func TestAskForwardsImagePayload(t *testing.T) {
	answerer := &fakeAnswerer{answer: &domain.Answer{Text: "An X-ray.", Sources: []string{}}}
	handler := newTestRouter(answerer, true)

	payload := `{"query":"","image_base64":"aGVsbG8="}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(payload)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if answerer.gotImage != "aGVsbG8=" {
		t.Errorf("image payload not forwarded, got %q", answerer.gotImage)
	}
}

func TestAskSourcesNeverNull(t *testing.T) {
	answerer := &fakeAnswerer{answer: &domain.Answer{Text: "hi", Sources: nil}}
	handler := newTestRouter(answerer, true)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"query":"q"}`)))

	if !bytes.Contains(rec.Body.Bytes(), []byte(`"sources":[]`)) {
		t.Fatalf("expected empty sources array, got %s", rec.Body.String())
	}
}

func TestAskInvalidJSON(t *testing.T) {
	answerer := &fakeAnswerer{}
	handler := newTestRouter(answerer, true)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader("{not json")))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if answerer.timesCalled != 0 {
		t.Error("use case must not run for malformed json")
	}
}

func TestAskErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid input", domain.WrapError(domain.ErrInvalidInput, "ask", errors.New("empty")), http.StatusBadRequest},
		{"vision unavailable", domain.WrapError(domain.ErrVisionUnavailable, "ask", errors.New("no model")), http.StatusServiceUnavailable},
		{"image decode failure", fmt.Errorf("decode image payload: %w", errors.New("illegal base64 data")), http.StatusInternalServerError},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := newTestRouter(&fakeAnswerer{err: tc.err}, true)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"query":"q"}`)))

			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			body := decodeBody(t, rec)
			if body["error"] == "" {
				t.Error("expected error message in body")
			}
		})
	}
}

func TestAskMethodNotAllowed(t *testing.T) {
	handler := newTestRouter(&fakeAnswerer{}, true)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ask", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestTranscribePlaceholder(t *testing.T) {
	handler := newTestRouter(&fakeAnswerer{}, true)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/transcribe", strings.NewReader(`{"audio_base64":"abcd"}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["text"] != "Server-side transcription not implemented. Using browser speech recognition." {
		t.Errorf("unexpected transcription text %v", body["text"])
	}
}

func TestHealthz(t *testing.T) {
	handler := newTestRouter(&fakeAnswerer{}, true)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	handler := newTestRouter(&fakeAnswerer{}, true)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := newTestRouter(&fakeAnswerer{}, true)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/ask", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected allow-origin header on preflight response")
	}
}

func TestRequestIDPreserved(t *testing.T) {
	handler := newTestRouter(&fakeAnswerer{}, true)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-Id"); got != "abc-123" {
		t.Fatalf("expected request id echoed back, got %q", got)
	}
}
