// Package relay is the stateless chat-completion proxy. It holds the
// provider API key server-side and forwards client requests to the provider,
// relaying the completion or the provider's error status.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// DefaultModel is used when a request names no model.
const DefaultModel = "gpt-4o-mini"

// ProxyPath is the completion endpoint.
const ProxyPath = "/openai-proxy"

// APIKeyEnv names the environment variable holding the provider key.
const APIKeyEnv = "OPENAI_API_KEY"

// maxRequestBytes caps request bodies.
const maxRequestBytes = 1 << 20

// maxResponseBytes caps provider response bodies.
const maxResponseBytes = 8 << 20

// Options configures a Server.
type Options struct {
	APIKey  string // empty makes every completion request a 500
	BaseURL string // provider base URL; empty uses the OpenAI default
	Addr    string
	Timeout time.Duration // per request; 0 means 60s
	Logger  *zap.Logger
}

// Server serves the relay endpoints.
type Server struct {
	apiKey   string
	upstream openai.ClientConfig
	logger   *zap.Logger
	metrics  *metrics
	router   chi.Router
	addr     string
	timeout  time.Duration
}

// New builds a Server and its router.
func New(opts Options) *Server {
	s := &Server{
		apiKey:   opts.APIKey,
		upstream: openai.DefaultConfig(opts.APIKey),
		logger:   opts.Logger,
		metrics:  newMetrics(),
		addr:     opts.Addr,
		timeout:  opts.Timeout,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.timeout <= 0 {
		s.timeout = 60 * time.Second
	}
	if opts.BaseURL != "" {
		s.upstream.BaseURL = opts.BaseURL
	}
	s.router = s.buildRouter()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	// Any origin may call the relay; it carries no user credentials.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:     []string{"*"},
		AllowedMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:     []string{"Authorization", "X-Client-Info", "Apikey", "Content-Type", "X-Request-ID"},
		OptionsPassthrough: true,
		MaxAge:             300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	r.Options(ProxyPath, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Post(ProxyPath, s.handleCompletion)

	return r
}

// handleCompletion forwards the body as-is apart from the model default, so
// options the provider understands (temperature 0 included) reach it intact.
func (s *Server) handleCompletion(w http.ResponseWriter, r *http.Request) {
	if s.apiKey == "" {
		s.metrics.requests.WithLabelValues("missing_key").Inc()
		writeError(w, http.StatusInternalServerError, "Missing "+APIKeyEnv+" in relay environment variables.")
		return
	}

	var body map[string]json.RawMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&body); err != nil {
		s.metrics.requests.WithLabelValues("bad_request").Inc()
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if body == nil {
		s.metrics.requests.WithLabelValues("bad_request").Inc()
		writeError(w, http.StatusBadRequest, "invalid request body: expected a JSON object")
		return
	}

	model := requestedModel(body)
	body["model"], _ = json.Marshal(model)
	payload, err := json.Marshal(body)
	if err != nil {
		s.metrics.requests.WithLabelValues("bad_request").Inc()
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	start := time.Now()
	status, respBody, err := s.forward(r.Context(), payload)
	s.metrics.upstream.WithLabelValues(model).Observe(time.Since(start).Seconds())

	if err == nil && status >= 200 && status < 300 {
		s.metrics.requests.WithLabelValues("ok").Inc()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(respBody)
		return
	}

	var msg string
	if err != nil {
		status, msg = transportError(err)
	} else {
		msg = providerMessage(status, respBody)
	}
	s.metrics.requests.WithLabelValues("upstream_error").Inc()
	s.logger.Warn("provider request failed",
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("model", model),
		zap.Int("status", status),
		zap.String("message", msg))
	writeError(w, status, msg)
}

// forward POSTs payload to the provider's chat completion endpoint.
func (s *Server) forward(ctx context.Context, payload []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.upstream.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	if s.upstream.OrgID != "" {
		req.Header.Set("OpenAI-Organization", s.upstream.OrgID)
	}

	resp, err := s.upstream.HTTPClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, data, nil
}

// requestedModel returns the body's model, or DefaultModel when it is absent,
// empty or not a string.
func requestedModel(body map[string]json.RawMessage) string {
	var model string
	if raw, ok := body["model"]; ok && json.Unmarshal(raw, &model) == nil && model != "" {
		return model
	}
	return DefaultModel
}

// providerMessage extracts error.message from a provider error body.
func providerMessage(status int, body []byte) string {
	var resp openai.ErrorResponse
	if json.Unmarshal(body, &resp) == nil && resp.Error != nil && resp.Error.Message != "" {
		return resp.Error.Message
	}
	return http.StatusText(status)
}

// transportError maps a failed round trip onto the status and message to relay.
func transportError(err error) (int, string) {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, "provider request timed out"
	}
	return http.StatusBadGateway, err.Error()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": map[string]string{"message": msg}})
}

// logRequests logs each request with zap and counts it by route.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		s.logger.Debug("request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)))
	})
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.timeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("relay listening", zap.String("addr", s.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("relay shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

type metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	upstream *prometheus.HistogramVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "clarity_relay",
				Name:      "requests_total",
				Help:      "Completion requests by outcome",
			},
			[]string{"outcome"},
		),
		upstream: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "clarity_relay",
				Name:      "upstream_duration_seconds",
				Help:      "Provider round-trip time in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"model"},
		),
	}
	m.registry.MustRegister(m.requests, m.upstream)
	return m
}
