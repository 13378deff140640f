// Package proxy is the client for the chat-completion proxy endpoint. The
// proxy holds the provider key; this client only sends messages and parses
// the completion or the error payload.
package proxy

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/clarity/internal/errors"
)

// Message is one chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options are per-call completion parameters. Zero values are omitted except
// Temperature, which is a pointer so that 0 can be sent.
type Options struct {
	Model       string   `json:"model,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// Float returns a pointer to f, for Options.Temperature.
func Float(f float64) *float64 { return &f }

// ChatRequest is the body posted to the proxy.
type ChatRequest struct {
	Messages []Message `json:"messages"`
	Options
}

// Choice is one completion alternative.
type Choice struct {
	Index        int      `json:"index"`
	Message      *Message `json:"message"`
	FinishReason string   `json:"finish_reason,omitempty"`
}

// ChatResponse is the subset of the completion payload the client reads.
type ChatResponse struct {
	ID      string   `json:"id,omitempty"`
	Model   string   `json:"model,omitempty"`
	Choices []Choice `json:"choices"`
}

// Content returns the first choice's message content.
func (r *ChatResponse) Content() string {
	if r == nil || len(r.Choices) == 0 || r.Choices[0].Message == nil {
		return ""
	}
	return r.Choices[0].Message.Content
}

// Invoker sends a chat request to the proxy.
type Invoker interface {
	Invoke(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// RequestIDHeader carries a ULID per request for log correlation.
const RequestIDHeader = "X-Request-ID"

// maxResponseBytes caps how much of a proxy response is read.
const maxResponseBytes = 4 << 20

// ErrInvalidFormat is the message for a 2xx response without choices.
const ErrInvalidFormat = "Invalid response format from proxy function"

// ClientOptions configures a Client.
type ClientOptions struct {
	URL        string
	Headers    map[string]string
	Timeout    time.Duration // per request; 0 means no client-side timeout
	Model      string        // default model when a request has none
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client posts chat requests to a single proxy URL.
type Client struct {
	url     string
	headers map[string]string
	model   string
	http    *http.Client
	logger  *zap.Logger
}

var _ Invoker = (*Client)(nil)

// NewClient returns a Client for opts.URL.
func NewClient(opts ClientOptions) *Client {
	c := &Client{
		url:     opts.URL,
		headers: opts.Headers,
		model:   opts.Model,
		http:    opts.HTTPClient,
		logger:  opts.Logger,
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: opts.Timeout}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// Invoke posts req and returns the parsed completion.
//
// Transport failures are CONNECTION_FAILED. A non-2xx status or an error
// field in the body is PROVIDER_ERROR. A 2xx body without choices[0].message
// is MALFORMED_RESPONSE.
func (c *Client) Invoke(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if c.url == "" {
		return nil, errors.NewConnectionFailed(fmt.Errorf("no proxy URL configured"))
	}
	if req.Model == "" {
		req.Model = c.model
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid proxy URL: %v", err))
	}
	requestID := newRequestID()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(RequestIDHeader, requestID)
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}

	log := c.logger.With(zap.String("request_id", requestID))
	start := time.Now()

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.NewCancelled("proxy call")
		}
		log.Debug("proxy transport error", zap.Error(err))
		return nil, errors.NewConnectionFailed(fmt.Errorf("failed to fetch: %w", err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.NewConnectionFailed(fmt.Errorf("failed to read proxy response: %w", err))
	}

	log.Debug("proxy responded",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if msg, ok := errorMessage(data); ok {
		return nil, errors.NewProviderError(resp.StatusCode, msg)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.NewProviderError(resp.StatusCode, statusMessage(resp.StatusCode, data))
	}

	var out ChatResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.NewMalformedResponse(ErrInvalidFormat)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message == nil {
		return nil, errors.NewMalformedResponse(ErrInvalidFormat)
	}
	return &out, nil
}

// errorMessage extracts {"error":{"message":...}} or {"error":"..."}.
func errorMessage(data []byte) (string, bool) {
	var env struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal(data, &env) != nil || len(env.Error) == 0 || string(env.Error) == "null" {
		return "", false
	}

	var s string
	if json.Unmarshal(env.Error, &s) == nil {
		return s, true
	}
	var obj struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(env.Error, &obj) == nil && obj.Message != "" {
		return obj.Message, true
	}
	return string(env.Error), true
}

// statusMessage describes a non-2xx response without an error payload.
func statusMessage(status int, data []byte) string {
	msg := http.StatusText(status)
	if msg == "" {
		msg = fmt.Sprintf("status %d", status)
	}
	if text := strings.TrimSpace(string(data)); text != "" && len(text) <= 200 {
		msg += ": " + text
	}
	return msg
}

func newRequestID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(rand.Reader, 0)).String()
}
