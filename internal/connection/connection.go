// Package connection tracks whether the AI proxy is reachable and gates
// calls to it behind a fresh connection test.
package connection

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/clarity/internal/errors"
	"github.com/hpungsan/clarity/internal/proxy"
)

// DefaultStalenessWindow is how long a successful test stays fresh.
const DefaultStalenessWindow = 5 * time.Minute

// ProbePrompt is the minimal connection-test message.
const ProbePrompt = `Say "Connection test successful" in exactly those words.`

// Friendly messages for common failures.
const (
	MsgNotDeployed  = "The AI proxy function was not found. Please ensure it has been deployed correctly in your Supabase project."
	MsgNetworkError = "A network error occurred. Please check your internet connection and ensure the Supabase service is available."
)

// State is a snapshot of the connection.
type State struct {
	IsConnected  bool       `json:"isConnected"`
	LastTestTime *time.Time `json:"lastTestTime,omitempty"`
	Error        string     `json:"error,omitempty"`
	HasAPIKey    bool       `json:"hasApiKey"` // always true; the key lives behind the proxy
}

// TestResult is the outcome of TestConnection.
type TestResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Options configures a Manager.
type Options struct {
	Invoker         proxy.Invoker
	StalenessWindow time.Duration // 0 uses DefaultStalenessWindow
	Logger          *zap.Logger
	Now             func() time.Time
}

// Manager owns the connection state. Subscribers are called synchronously,
// in subscription order, after every state change and outside the lock.
type Manager struct {
	invoker   proxy.Invoker
	staleness time.Duration
	logger    *zap.Logger
	now       func() time.Time

	mu        sync.Mutex
	connected bool
	lastTest  time.Time
	lastError string

	subsMu  sync.Mutex
	subs    []subscriber
	nextSub int
}

type subscriber struct {
	id int
	fn func(State)
}

// New constructs a Manager. The initial state is disconnected.
func New(opts Options) *Manager {
	m := &Manager{
		invoker:   opts.Invoker,
		staleness: opts.StalenessWindow,
		logger:    opts.Logger,
		now:       opts.Now,
	}
	if m.staleness <= 0 {
		m.staleness = DefaultStalenessWindow
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// State returns the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

func (m *Manager) stateLocked() State {
	s := State{IsConnected: m.connected, Error: m.lastError, HasAPIKey: true}
	if !m.lastTest.IsZero() {
		t := m.lastTest
		s.LastTestTime = &t
	}
	return s
}

// Subscribe registers fn for state changes and returns an unsubscribe func.
// fn is not called with the current state.
func (m *Manager) Subscribe(fn func(State)) func() {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()

	id := m.nextSub
	m.nextSub++
	m.subs = append(m.subs, subscriber{id: id, fn: fn})

	return func() {
		m.subsMu.Lock()
		defer m.subsMu.Unlock()
		for i, s := range m.subs {
			if s.id == id {
				m.subs = append(m.subs[:i], m.subs[i+1:]...)
				return
			}
		}
	}
}

func (m *Manager) notify(s State) {
	m.subsMu.Lock()
	subs := append([]subscriber(nil), m.subs...)
	m.subsMu.Unlock()

	for _, sub := range subs {
		sub.fn(s)
	}
}

func (m *Manager) markConnected() State {
	m.mu.Lock()
	m.connected = true
	m.lastTest = m.now()
	m.lastError = ""
	s := m.stateLocked()
	m.mu.Unlock()
	return s
}

func (m *Manager) markFailed(msg string) State {
	m.mu.Lock()
	m.connected = false
	m.lastError = msg
	s := m.stateLocked()
	m.mu.Unlock()
	return s
}

// TestConnection sends a tiny probe through the proxy. It never returns an
// error; failures are reported in the result and the state.
func (m *Manager) TestConnection(ctx context.Context) TestResult {
	m.logger.Debug("testing proxy connection")

	resp, err := m.invoke(ctx, proxy.ChatRequest{
		Messages: []proxy.Message{{Role: "user", Content: ProbePrompt}},
		Options:  proxy.Options{MaxTokens: 10, Temperature: proxy.Float(0)},
	})
	if err == nil && resp.Content() == "" {
		err = errors.NewMalformedResponse(proxy.ErrInvalidFormat)
	}
	if err != nil {
		friendly := FriendlyError(err)
		m.logger.Warn("proxy connection test failed", zap.Error(err))
		m.notify(m.markFailed(friendly))
		return TestResult{Success: false, Error: friendly}
	}

	m.logger.Debug("proxy connection test succeeded")
	m.notify(m.markConnected())
	return TestResult{Success: true, Message: resp.Content()}
}

// Call sends messages through the proxy and returns the first completion.
// It re-tests first when disconnected or the last test is older than the
// staleness window; a failed re-test is CONNECTION_FAILED.
func (m *Manager) Call(ctx context.Context, messages []proxy.Message, opts proxy.Options) (string, error) {
	if m.needsTest() {
		m.logger.Debug("testing connection before call")
		if res := m.TestConnection(ctx); !res.Success {
			cerr := errors.NewConnectionFailed(fmt.Errorf("connection test failed: %s", res.Error))
			cerr.Message = "Connection failed: " + res.Error
			return "", cerr
		}
	}

	resp, err := m.invoke(ctx, proxy.ChatRequest{Messages: messages, Options: opts})
	if err != nil {
		m.logger.Warn("proxy call failed", zap.Error(err))
		m.notify(m.markFailed(messageOf(err)))
		return "", err
	}

	m.notify(m.markConnected())
	return resp.Content(), nil
}

func (m *Manager) needsTest() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.connected || m.now().Sub(m.lastTest) > m.staleness
}

func (m *Manager) invoke(ctx context.Context, req proxy.ChatRequest) (*proxy.ChatResponse, error) {
	if m.invoker == nil {
		return nil, errors.NewConnectionFailed(fmt.Errorf("no proxy configured"))
	}
	return m.invoker.Invoke(ctx, req)
}

// FriendlyError maps proxy failures onto user-facing messages.
func FriendlyError(err error) string {
	msg := messageOf(err)
	switch {
	case strings.Contains(msg, "Not Found"):
		return MsgNotDeployed
	case strings.Contains(strings.ToLower(msg), "failed to fetch"):
		return MsgNetworkError
	default:
		return msg
	}
}

func messageOf(err error) string {
	var cErr *errors.ClarityError
	if errors.As(err, &cErr) {
		return cErr.Message
	}
	return err.Error()
}
