package generate

import (
	"context"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/clarity/internal/category"
	"github.com/hpungsan/clarity/internal/connection"
	"github.com/hpungsan/clarity/internal/content"
	"github.com/hpungsan/clarity/internal/errors"
	"github.com/hpungsan/clarity/internal/proxy"
)

type fakeConn struct {
	connected bool
	reply     string
	err       error
	calls     [][]proxy.Message
}

func (f *fakeConn) State() connection.State { return connection.State{IsConnected: f.connected} }

func (f *fakeConn) TestConnection(context.Context) connection.TestResult {
	if f.err != nil {
		return connection.TestResult{Success: false, Error: f.err.Error()}
	}
	return connection.TestResult{Success: true, Message: "ok"}
}

func (f *fakeConn) Call(_ context.Context, messages []proxy.Message, _ proxy.Options) (string, error) {
	f.calls = append(f.calls, messages)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type staticBrand struct{ b *category.BrandFoundation }

func (s staticBrand) BrandFoundation(context.Context) (*category.BrandFoundation, error) {
	return s.b, nil
}

func seeded() *content.Generator {
	return content.NewGenerator(content.WithRand(rand.New(rand.NewPCG(1, 2))))
}

func TestGenerateContentIdeas_FallsBackOnNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	conn := connection.New(connection.Options{Invoker: proxy.NewClient(proxy.ClientOptions{URL: url})})
	h := New(Options{Connection: conn, Local: seeded()})

	// force the AI path even though the proxy is down
	h.conn = &forcedConnected{Manager: conn}

	res := h.GenerateContentIdeas(context.Background(), Profile{"specialization": "trauma-informed care"}, nil)
	require.Equal(t, SourceLocal, res.Source)
	require.NotEmpty(t, res.Text)
	require.Equal(t, 5, strings.Count(res.Text, "**CLIENT-ATTRACTION IDEA #"))
	require.Contains(t, res.Text, "**CLIENT-ATTRACTION IDEA #1: Your Trauma Responses Are Normal**")
	require.Contains(t, res.Text, "**CLIENT-ATTRACTION IDEA #4: Your Trauma Responses Are Normal**")
	require.False(t, conn.State().IsConnected)
}

// forcedConnected reports connected regardless of the real state.
type forcedConnected struct{ *connection.Manager }

func (f *forcedConnected) State() connection.State {
	s := f.Manager.State()
	s.IsConnected = true
	return s
}

func TestGenerateContentIdeas_LocalOrder(t *testing.T) {
	h := New(Options{Local: seeded()})
	res := h.GenerateContentIdeas(context.Background(), nil, []string{"Managing worry"})

	require.Equal(t, SourceLocal, res.Source)
	titles := []string{
		"#1: Your Anxiety Makes Perfect Sense",
		"#2: Your Anxiety Makes Perfect Sense",
		"#3: You're Not Lazy, You're Depressed",
		"#4: Your Trauma Responses Are Normal",
		"#5: Your ADHD Brain Is Not Broken",
	}
	last := -1
	for _, title := range titles {
		idx := strings.Index(res.Text, title)
		require.Greater(t, idx, last, "missing or out of order: %s", title)
		last = idx
	}
	require.Equal(t, 5, strings.Count(res.Text, content.Hashtags))
}

func TestGenerateContentIdeas_AI(t *testing.T) {
	conn := &fakeConn{connected: true, reply: "AI ideas"}
	brand := &category.BrandFoundation{PracticeName: "Calm Minds", IdealClientPersona: "new moms"}
	h := New(Options{Connection: conn, Brand: staticBrand{brand}, Local: seeded()})

	res := h.GenerateContentIdeas(context.Background(), Profile{"name": "Dr. Lee"}, []string{"Rest", "Boundaries"})
	require.Equal(t, Result{Text: "AI ideas", Source: SourceAI}, res)

	require.Len(t, conn.calls, 1)
	msgs := conn.calls[0]
	require.Equal(t, "system", msgs[0].Role)
	require.Equal(t, ideasSystemPrompt, msgs[0].Content)

	prompt := msgs[1].Content
	require.Contains(t, prompt, "Practice: Calm Minds")
	require.Contains(t, prompt, "TARGET CLIENTS:\nnew moms")
	require.Contains(t, prompt, "CONTENT PILLARS:\nRest, Boundaries")
	require.Contains(t, prompt, `"name": "Dr. Lee"`)
	require.Contains(t, prompt, `"practiceName": "Calm Minds"`)
}

func TestGeneratePostContent_AIErrorFallsBack(t *testing.T) {
	conn := &fakeConn{connected: true, err: errors.NewProviderError(500, "down")}
	h := New(Options{Connection: conn, Local: seeded()})

	res := h.GeneratePostContent(context.Background(), PostRequest{
		Format: "Carousel", Platform: "instagram", Tone: "warm", Topic: "Depression myths",
	})
	require.Equal(t, SourceLocal, res.Source)
	require.True(t, strings.HasPrefix(res.Text, "📱 CAROUSEL POST FOR INSTAGRAM\n\nTitle: "))
	require.Contains(t, res.Text, "Slide 5: ")
	require.Len(t, conn.calls, 1)
}

func TestGeneratePostContent_NotConnectedSkipsAI(t *testing.T) {
	conn := &fakeConn{connected: false, reply: "unused"}
	h := New(Options{Connection: conn, Local: seeded()})

	res := h.GeneratePostContent(context.Background(), PostRequest{Format: "Reel", Platform: "tiktok", Tone: "calm", Topic: "ADHD"})
	require.Equal(t, SourceLocal, res.Source)
	require.True(t, strings.HasPrefix(res.Text, "🎥 REEL SCRIPT FOR TIKTOK\n\nHook: "))
	require.Contains(t, res.Text, "\n4. Remember: ")
	require.Empty(t, conn.calls)
}

func TestGeneratePostContent_PlainPost(t *testing.T) {
	h := New(Options{Local: seeded()})
	res := h.GeneratePostContent(context.Background(), PostRequest{Format: "Single Post", Platform: "linkedin", Tone: "professional", Topic: "self-care"})
	require.True(t, strings.HasPrefix(res.Text, "📱 LINKEDIN POST (professional tone)\n\n"))
	require.Contains(t, res.Text, content.Hashtags)
}

func TestGeneratePostContent_LocalOnlyIgnoresConnection(t *testing.T) {
	conn := &fakeConn{connected: true, reply: "AI"}
	h := New(Options{Connection: conn, Local: seeded(), LocalOnly: true})
	res := h.GeneratePostContent(context.Background(), PostRequest{Format: "post", Platform: "x", Tone: "t", Topic: "t"})
	require.Equal(t, SourceLocal, res.Source)
	require.Empty(t, conn.calls)
}

func TestMappings(t *testing.T) {
	require.Equal(t, content.Anxiety, TopicNiche("Coping with WORRY"))
	require.Equal(t, content.Trauma, TopicNiche("PTSD and sleep"))
	require.Equal(t, content.Depression, TopicNiche("low mood"))
	require.Equal(t, content.ADHD, TopicNiche("attention spans"))
	require.Equal(t, content.Anxiety, TopicNiche("boundaries"))

	require.Equal(t, content.Carousel, FormatShape("Instagram Carousel"))
	require.Equal(t, content.ReelScript, FormatShape("Short video"))
	require.Equal(t, content.FullPost, FormatShape("Thread"))

	require.Equal(t, "You Deserve Understanding", NicheTitle("grief"))

	brand := &category.BrandFoundation{BrandStatement: "Helping teens with ADHD"}
	require.Equal(t, content.ADHD, DetectNiche(nil, brand, nil))
}

func TestTestAIAvailability(t *testing.T) {
	require.Equal(t, Availability{Available: false, Reason: "No API key configured"}, New(Options{}).TestAIAvailability(context.Background()))

	ok := New(Options{Connection: &fakeConn{}})
	require.Equal(t, Availability{Available: true, Reason: "Connected"}, ok.TestAIAvailability(context.Background()))

	bad := New(Options{Connection: &fakeConn{err: errors.NewConnectionFailed(nil)}})
	got := bad.TestAIAvailability(context.Background())
	require.False(t, got.Available)
	require.NotEmpty(t, got.Reason)
}

func TestInstantContent(t *testing.T) {
	h := New(Options{Local: seeded()})
	piece := h.InstantContent("", content.HookOnly)
	require.Equal(t, content.Anxiety, piece.Niche)
	require.NotEmpty(t, piece.Text)
}

func TestResultHTML(t *testing.T) {
	html, err := Result{Text: "**CLIENT-ATTRACTION IDEA #1: Title**\n\n---"}.HTML()
	require.NoError(t, err)
	require.Contains(t, html, "<strong>CLIENT-ATTRACTION IDEA #1: Title</strong>")
	require.Contains(t, html, "<hr>")
}
