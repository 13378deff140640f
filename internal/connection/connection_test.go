package connection

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/clarity/internal/errors"
	"github.com/hpungsan/clarity/internal/proxy"
)

type fakeProxy struct {
	requests []proxy.ChatRequest
	reply    string
	err      error
}

func (f *fakeProxy) Invoke(_ context.Context, req proxy.ChatRequest) (*proxy.ChatResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &proxy.ChatResponse{Choices: []proxy.Choice{{Message: &proxy.Message{Role: "assistant", Content: f.reply}}}}, nil
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func TestTestConnection_Server500NotifiesOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{"message": "upstream exploded"}})
	}))
	defer srv.Close()

	m := New(Options{Invoker: proxy.NewClient(proxy.ClientOptions{URL: srv.URL})})

	var notified []State
	m.Subscribe(func(s State) { notified = append(notified, s) })

	res := m.TestConnection(context.Background())
	require.False(t, res.Success)
	require.Equal(t, "upstream exploded", res.Error)

	state := m.State()
	require.False(t, state.IsConnected)
	require.NotEmpty(t, state.Error)
	require.Len(t, notified, 1)
	require.Equal(t, state, notified[0])
}

func TestTestConnection_ProbeShape(t *testing.T) {
	fp := &fakeProxy{reply: "Connection test successful"}
	c := &clock{now: time.UnixMilli(1_000_000)}
	m := New(Options{Invoker: fp, Now: c.Now})

	res := m.TestConnection(context.Background())
	require.True(t, res.Success)
	require.Equal(t, "Connection test successful", res.Message)

	req := fp.requests[0]
	require.Equal(t, []proxy.Message{{Role: "user", Content: ProbePrompt}}, req.Messages)
	require.Equal(t, 10, req.MaxTokens)
	require.Equal(t, 0.0, *req.Temperature)

	state := m.State()
	require.True(t, state.IsConnected)
	require.Empty(t, state.Error)
	require.Equal(t, c.now, *state.LastTestTime)
}

func TestTestConnection_EmptyContentFails(t *testing.T) {
	m := New(Options{Invoker: &fakeProxy{reply: ""}})
	res := m.TestConnection(context.Background())
	require.False(t, res.Success)
	require.Equal(t, proxy.ErrInvalidFormat, res.Error)
}

func TestFriendlyError(t *testing.T) {
	require.Equal(t, MsgNotDeployed, FriendlyError(errors.NewProviderError(404, "Not Found")))
	require.Equal(t, MsgNetworkError, FriendlyError(errors.NewConnectionFailed(stringError("failed to fetch: dial tcp"))))
	require.Equal(t, "quota exceeded", FriendlyError(errors.NewProviderError(429, "quota exceeded")))
}

type stringError string

func (s stringError) Error() string { return string(s) }

func TestCall_RetestsWhenStale(t *testing.T) {
	fp := &fakeProxy{reply: "hello"}
	c := &clock{now: time.UnixMilli(10_000_000)}
	m := New(Options{Invoker: fp, Now: c.Now})

	out, err := m.Call(context.Background(), []proxy.Message{{Role: "user", Content: "hi"}}, proxy.Options{MaxTokens: 50})
	require.NoError(t, err)
	require.Equal(t, "hello", out)
	require.Len(t, fp.requests, 2, "disconnected manager tests first")

	c.now = c.now.Add(4 * time.Minute)
	_, err = m.Call(context.Background(), nil, proxy.Options{})
	require.NoError(t, err)
	require.Len(t, fp.requests, 3, "fresh connection skips the test")

	c.now = c.now.Add(5*time.Minute + time.Millisecond)
	_, err = m.Call(context.Background(), nil, proxy.Options{})
	require.NoError(t, err)
	require.Len(t, fp.requests, 5, "stale connection re-tests")
}

func TestCall_FailedRetestIsConnectionFailed(t *testing.T) {
	fp := &fakeProxy{err: errors.NewProviderError(404, "Not Found")}
	m := New(Options{Invoker: fp})

	_, err := m.Call(context.Background(), nil, proxy.Options{})
	require.True(t, errors.Is(err, errors.ErrConnectionFailed))
	require.Len(t, fp.requests, 1)

	var cerr *errors.ClarityError
	require.True(t, errors.As(err, &cerr))
	require.Equal(t, "Connection failed: "+MsgNotDeployed, cerr.Message)
	require.Equal(t, "connection test failed: "+MsgNotDeployed, cerr.Unwrap().Error())
}

func TestCall_FailureUpdatesStateAndRethrows(t *testing.T) {
	fp := &fakeProxy{reply: "ok"}
	m := New(Options{Invoker: fp})
	require.True(t, m.TestConnection(context.Background()).Success)

	var count atomic.Int32
	m.Subscribe(func(State) { count.Add(1) })

	fp.err = errors.NewProviderError(500, "rate limited")
	_, err := m.Call(context.Background(), nil, proxy.Options{})
	require.True(t, errors.Is(err, errors.ErrProviderError))

	state := m.State()
	require.False(t, state.IsConnected)
	require.Equal(t, "rate limited", state.Error)
	require.EqualValues(t, 1, count.Load())
}

func TestSubscribe_OrderAndUnsubscribe(t *testing.T) {
	m := New(Options{Invoker: &fakeProxy{reply: "ok"}})

	var order []string
	m.Subscribe(func(State) { order = append(order, "a") })
	unsubB := m.Subscribe(func(State) { order = append(order, "b") })
	m.Subscribe(func(State) { order = append(order, "c") })

	m.TestConnection(context.Background())
	require.Equal(t, []string{"a", "b", "c"}, order)

	unsubB()
	order = nil
	m.TestConnection(context.Background())
	require.Equal(t, []string{"a", "c"}, order)
}

func TestNoInvoker(t *testing.T) {
	m := New(Options{})
	res := m.TestConnection(context.Background())
	require.False(t, res.Success)
	require.False(t, m.State().IsConnected)
}
