// Package generate produces post text, preferring the AI proxy when it is
// connected and falling back to the local content generator otherwise.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"

	"github.com/hpungsan/clarity/internal/category"
	"github.com/hpungsan/clarity/internal/connection"
	"github.com/hpungsan/clarity/internal/content"
	"github.com/hpungsan/clarity/internal/proxy"
)

// Source says which tier produced a result.
type Source string

const (
	SourceAI    Source = "ai"
	SourceLocal Source = "local"
)

// Result is generated text plus where it came from.
type Result struct {
	Text   string `json:"text"`
	Source Source `json:"source"`
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// HTML renders Text as markdown. Raw HTML in the text is omitted.
func (r Result) HTML() (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(r.Text), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Profile is free-form therapist profile data merged into AI prompts.
// The "specialization" entry steers local niche detection.
type Profile map[string]any

// PostRequest describes a single post.
type PostRequest struct {
	Format   string `json:"format"`
	Platform string `json:"platform"`
	Tone     string `json:"tone"`
	Topic    string `json:"topic"`
}

// Availability reports whether AI generation can be used.
type Availability struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason"`
}

// Connection is the subset of connection.Manager the orchestrator needs.
type Connection interface {
	State() connection.State
	TestConnection(ctx context.Context) connection.TestResult
	Call(ctx context.Context, messages []proxy.Message, opts proxy.Options) (string, error)
}

// BrandSource supplies the stored brand foundation, or nil.
type BrandSource interface {
	BrandFoundation(ctx context.Context) (*category.BrandFoundation, error)
}

// Options configures a Hybrid.
type Options struct {
	Connection Connection // nil means local only
	Local      *content.Generator
	Brand      BrandSource
	Logger     *zap.Logger
	CallOpts   proxy.Options // forwarded on every AI call
	LocalOnly  bool
}

// Hybrid is the two-tier generator.
type Hybrid struct {
	conn     Connection
	local    *content.Generator
	brand    BrandSource
	logger   *zap.Logger
	callOpts proxy.Options
	preferAI bool
}

// New constructs a Hybrid.
func New(opts Options) *Hybrid {
	h := &Hybrid{
		conn:     opts.Connection,
		local:    opts.Local,
		brand:    opts.Brand,
		logger:   opts.Logger,
		callOpts: opts.CallOpts,
		preferAI: !opts.LocalOnly,
	}
	if h.local == nil {
		h.local = content.NewGenerator()
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	return h
}

func (h *Hybrid) useAI() bool {
	return h.preferAI && h.conn != nil && h.conn.State().IsConnected
}

func (h *Hybrid) brandFoundation(ctx context.Context) *category.BrandFoundation {
	if h.brand == nil {
		return nil
	}
	b, err := h.brand.BrandFoundation(ctx)
	if err != nil {
		h.logger.Warn("failed to load brand foundation", zap.Error(err))
		return nil
	}
	return b
}

// GenerateContentIdeas returns five client-attraction ideas. It never fails:
// AI errors fall back to local content.
func (h *Hybrid) GenerateContentIdeas(ctx context.Context, profile Profile, pillars []string) Result {
	brand := h.brandFoundation(ctx)

	if h.useAI() {
		text, err := h.aiContentIdeas(ctx, profile, brand, pillars)
		if err == nil {
			return Result{Text: text, Source: SourceAI}
		}
		h.logger.Warn("AI generation failed, falling back to local content", zap.Error(err))
	}
	return Result{Text: h.localContentIdeas(profile, brand, pillars), Source: SourceLocal}
}

// GeneratePostContent returns one formatted post. It never fails.
func (h *Hybrid) GeneratePostContent(ctx context.Context, req PostRequest) Result {
	if h.useAI() {
		text, err := h.aiPostContent(ctx, req)
		if err == nil {
			return Result{Text: text, Source: SourceAI}
		}
		h.logger.Warn("AI generation failed, falling back to local content", zap.Error(err))
	}
	return Result{Text: h.localPostContent(req), Source: SourceLocal}
}

// InstantContent returns local content without touching the network.
func (h *Hybrid) InstantContent(niche content.Niche, shape content.Shape) content.Piece {
	if niche == "" {
		niche = content.DefaultNiche
	}
	return h.local.Generate(niche, shape)
}

// Variety returns n local pieces cycling through post, hook and carousel.
func (h *Hybrid) Variety(niche content.Niche, n int) []content.VarietyItem {
	if niche == "" {
		niche = content.DefaultNiche
	}
	return h.local.Variety(niche, n)
}

// TestAIAvailability runs a connection test.
func (h *Hybrid) TestAIAvailability(ctx context.Context) Availability {
	if h.conn == nil {
		return Availability{Available: false, Reason: "No API key configured"}
	}
	res := h.conn.TestConnection(ctx)
	if !res.Success {
		return Availability{Available: false, Reason: res.Error}
	}
	return Availability{Available: true, Reason: "Connected"}
}

const ideasSystemPrompt = "You create viral content that attracts therapy clients by making them feel seen and understood. Focus on validation, normalization, and gentle hope."

const postSystemPrompt = "You create content that attracts therapy clients by making them feel understood and supported."

func (h *Hybrid) aiContentIdeas(ctx context.Context, profile Profile, brand *category.BrandFoundation, pillars []string) (string, error) {
	enhanced, err := enhanceProfile(profile, brand)
	if err != nil {
		return "", err
	}
	profileJSON, err := json.MarshalIndent(enhanced, "", "  ")
	if err != nil {
		return "", err
	}

	target, _ := enhanced["idealClientPersona"].(string)
	if target == "" {
		target = "Adults struggling with anxiety, depression, and life transitions"
	}
	pillarText := strings.Join(pillars, ", ")
	if pillarText == "" {
		pillarText = "Mental Health Education, Symptom Normalization, Self-Compassion"
	}

	prompt := brand.BrandedPrompt(fmt.Sprintf(`
Generate 5 CLIENT-ATTRACTING content ideas that will make potential therapy clients feel seen and understood.

THERAPIST PROFILE:
%s

TARGET CLIENTS:
%s

CONTENT PILLARS:
%s

Create content that makes people think "this person gets it" and feel less alone in their struggles.
`, profileJSON, target, pillarText))

	return h.conn.Call(ctx, []proxy.Message{
		{Role: "system", Content: ideasSystemPrompt},
		{Role: "user", Content: prompt},
	}, h.callOpts)
}

// enhanceProfile overlays the brand's non-empty fields on profile.
func enhanceProfile(profile Profile, brand *category.BrandFoundation) (map[string]any, error) {
	out := make(map[string]any, len(profile))
	for k, v := range profile {
		out[k] = v
	}
	if brand == nil {
		return out, nil
	}
	raw, err := json.Marshal(brand)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		out[k] = v
	}
	return out, nil
}

func (h *Hybrid) aiPostContent(ctx context.Context, req PostRequest) (string, error) {
	brand := h.brandFoundation(ctx)
	statement, persona := "", ""
	if brand != nil {
		statement, persona = brand.BrandStatement, brand.IdealClientPersona
	}
	if statement == "" {
		statement = "Compassionate therapy practice"
	}
	if persona == "" {
		persona = "People struggling with mental health challenges"
	}

	prompt := fmt.Sprintf(`Create a %s post for %s about "%s" with a %s tone.

REQUIREMENTS:
- Make potential therapy clients feel seen and understood
- Use validation and normalization language
- Include gentle call-to-action
- Avoid clinical jargon
- Feel like talking to a supportive friend

BRAND CONTEXT: %s
TARGET CLIENTS: %s`, req.Format, req.Platform, req.Topic, req.Tone, statement, persona)

	return h.conn.Call(ctx, []proxy.Message{
		{Role: "system", Content: postSystemPrompt},
		{Role: "user", Content: prompt},
	}, h.callOpts)
}
