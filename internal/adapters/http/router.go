package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/medassist/rag-chatbot/internal/core/ports"
	"github.com/medassist/rag-chatbot/internal/observability/metrics"
)

const apiVersion = "3.0.0"

type Router struct {
	answerer ports.QuestionAnswerer
	vision   bool
	metrics  *metrics.HTTPServerMetrics
	service  string
}

func NewRouter(answerer ports.QuestionAnswerer, visionEnabled bool, m *metrics.HTTPServerMetrics, service string) *Router {
	return &Router{
		answerer: answerer,
		vision:   visionEnabled,
		metrics:  m,
		service:  service,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", rt.root)
	mux.HandleFunc("/ask", rt.ask)
	mux.HandleFunc("/transcribe", rt.transcribe)
	mux.HandleFunc("/healthz", rt.healthz)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.service, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = recoverMiddleware(handler)
	handler = requestIDMiddleware(handler)
	handler = corsMiddleware(handler)
	return handler
}

func (rt *Router) root(w http.ResponseWriter, r *http.Request) {
	// The mux routes every unregistered path here.
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	features := []string{"text", "voice"}
	if rt.vision {
		features = []string{"text", "vision", "voice"}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Multimodal Medical RAG Chatbot is running.",
		"status":   "active",
		"version":  apiVersion,
		"features": features,
		"endpoints": map[string]string{
			"ask":        "/ask",
			"transcribe": "/transcribe",
			"health":     "/healthz",
			"metrics":    "/metrics",
		},
	})
}

type askRequest struct {
	Query       string `json:"query"`
	ImageBase64 string `json:"image_base64"`
}

func (rt *Router) ask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	start := time.Now()
	answer, err := rt.answerer.Ask(r.Context(), req.Query, req.ImageBase64)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	if answer.Sources == nil {
		answer.Sources = []string{}
	}
	if rt.metrics != nil {
		rt.metrics.RecordRAGObservation(rt.service, "/ask", len(answer.Sources), time.Since(start))
		rt.metrics.RecordRAGModeRequest(rt.service, "/ask", requestMode(req, answer.Sources))
	}

	writeJSON(w, http.StatusOK, answer)
}

type transcribeRequest struct {
	AudioBase64 string `json:"audio_base64"`
}

// transcribe is a placeholder: speech recognition runs in the browser and
// the client only needs a stable contract to probe against.
func (rt *Router) transcribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req transcribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"text": "Server-side transcription not implemented. Using browser speech recognition.",
	})
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func requestMode(req askRequest, sources []string) string {
	switch {
	case strings.TrimSpace(req.ImageBase64) != "":
		return "vision"
	case len(sources) == 0:
		return "no_context"
	default:
		return "text"
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
