// Package relay is the stateless chat backend. It composes the assistant
// prompt from the client's context and forwards it to the Gemini API.
package relay

import (
	"adaptive/internal/chat"
	"adaptive/internal/config"
	"adaptive/internal/gemini"
	"adaptive/internal/logging"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Messages shown to clients. Upstream detail stays in the server log.
const (
	MsgNotConfigured = "API key not configured. Please check environment variables."
	MsgUpstreamError = "Failed to get response from AI assistant"
	MsgBadRequest    = "Invalid request body"
	MsgEmptyMessage  = "Message is required"
	MsgTooLarge      = "Request body too large"
)

// MaxChatBodyBytes bounds a POST /api/chat body.
const MaxChatBodyBytes = 1 << 20

// GeneratorFactory builds the upstream client for a configuration.
type GeneratorFactory func(ctx context.Context, cfg config.GeminiConfig) (gemini.Generator, error)

// backend is one immutable generation setup, swapped atomically on reload.
type backend struct {
	cfg config.GeminiConfig
	gen gemini.Generator
	err error
}

// Server serves /api/chat, /api/test-gemini and /healthz.
type Server struct {
	cfg        *config.Config
	newGen     GeneratorFactory
	backend    atomic.Pointer[backend]
	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithGeneratorFactory replaces gemini.New.
func WithGeneratorFactory(f GeneratorFactory) Option {
	return func(s *Server) { s.newGen = f }
}

// NewServer creates a relay for cfg.
func NewServer(ctx context.Context, cfg *config.Config, opts ...Option) *Server {
	s := &Server{cfg: cfg, newGen: gemini.New}
	for _, opt := range opts {
		opt(s)
	}
	s.Apply(ctx, cfg.Gemini)

	s.httpServer = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
	}
	return s
}

// Apply swaps in new Gemini settings. Requests already running keep the old ones.
func (s *Server) Apply(ctx context.Context, gcfg config.GeminiConfig) {
	b := &backend{cfg: gcfg}
	if gcfg.HasCredential() {
		b.gen, b.err = s.newGen(ctx, gcfg)
		if b.err != nil {
			logging.RelayError("Failed to create %s upstream client: %v", gcfg.Transport, b.err)
		}
	} else {
		logging.Get(logging.CategoryRelay).Warn("Gemini API key not found in environment variables")
	}
	s.backend.Store(b)
	logging.Relay("Upstream settings applied: transport=%s model=%s credential=%t",
		gcfg.Transport, gcfg.Model, gcfg.HasCredential())
}

// Settings returns the Gemini settings in effect.
func (s *Server) Settings() config.GeminiConfig {
	return s.backend.Load().cfg
}

// Handler returns the routed handler with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /api/test-gemini", s.handleTestGemini)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return withRequestLog(mux)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Relay("Relay listening on %s", ln.Addr())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.GetShutdownTimeout())
		defer cancel()
		logging.Relay("Relay shutting down")
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	}
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chat.Request
	r.Body = http.MaxBytesReader(w, r.Body, MaxChatBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logging.RelayDebug("Rejecting chat request over %d bytes", tooLarge.Limit)
			writeJSON(w, http.StatusRequestEntityTooLarge, chat.Response{Error: MsgTooLarge})
			return
		}
		logging.RelayDebug("Rejecting chat request: %v", err)
		writeJSON(w, http.StatusBadRequest, chat.Response{Error: MsgBadRequest})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, chat.Response{Error: MsgEmptyMessage})
		return
	}

	b := s.backend.Load()
	if !b.cfg.HasCredential() {
		logging.RelayError("Gemini API key not found in environment variables")
		writeJSON(w, http.StatusInternalServerError, chat.Response{Error: MsgNotConfigured})
		return
	}
	if b.err != nil {
		logging.RelayError("Chat unavailable: %v", b.err)
		writeJSON(w, http.StatusInternalServerError, chat.Response{Error: MsgUpstreamError})
		return
	}

	text, err := b.gen.Generate(r.Context(), gemini.Request{
		Model:    b.cfg.Model,
		Prompt:   BuildPrompt(req.Message, req.Context),
		Settings: gemini.SettingsFrom(b.cfg),
	})
	if err != nil {
		logging.RelayError("Gemini API Error (%s): %v", gemini.Kind(err), err)
		writeJSON(w, http.StatusInternalServerError, chat.Response{Error: MsgUpstreamError})
		return
	}

	writeJSON(w, http.StatusOK, chat.Response{Success: true, Message: text})
}

// probeResponse adds the names of related environment variables when the
// credential is missing. Values are never reported.
type probeResponse struct {
	gemini.ProbeResult
	AvailableEnvVars []string `json:"availableEnvVars,omitempty"`
}

func (s *Server) handleTestGemini(w http.ResponseWriter, r *http.Request) {
	b := s.backend.Load()
	resp := probeResponse{ProbeResult: gemini.Probe(r.Context(), b.gen, b.cfg.APIKey, b.cfg.ProbeModel)}
	if !b.cfg.HasCredential() {
		resp.AvailableEnvVars = relatedEnvVars()
	} else if b.err != nil && !resp.Success {
		resp.Error = b.err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func relatedEnvVars() []string {
	var names []string
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.Contains(name, "GEMINI") || strings.Contains(name, "GOOGLE") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.RelayDebug("Failed to write response: %v", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		logging.Get(logging.CategoryRelay).WithContext(map[string]interface{}{
			"request_id": id,
			"status":     rec.status,
		}).Info("%s %s in %v", r.Method, r.URL.Path, time.Since(start))
	})
}
