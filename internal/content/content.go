// Package content is the local, offline post generator. It assembles posts
// from curated phrase pools per niche and avoids repeating recent picks.
package content

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Niche is a therapy specialty with its own phrase pools.
type Niche string

const (
	Anxiety    Niche = "anxiety"
	Trauma     Niche = "trauma"
	Depression Niche = "depression"
	ADHD       Niche = "adhd"
)

// DefaultNiche is used for unknown niches.
const DefaultNiche = Anxiety

// Niches lists every niche with content.
func Niches() []Niche {
	return []Niche{Anxiety, Trauma, Depression, ADHD}
}

// ParseNiche normalises s. ok is false when no pools exist for it.
func ParseNiche(s string) (Niche, bool) {
	n := Niche(strings.ToLower(strings.TrimSpace(s)))
	_, ok := pools[n]
	return n, ok
}

// Shape is the layout of a generated piece.
type Shape string

const (
	FullPost   Shape = "full_post"
	Carousel   Shape = "carousel"
	ReelScript Shape = "reel_script"
	HookOnly   Shape = "hook_only"
)

// ParseShape maps s onto a Shape, defaulting to FullPost.
func ParseShape(s string) Shape {
	switch sh := Shape(strings.ToLower(strings.TrimSpace(s))); sh {
	case Carousel, ReelScript, HookOnly:
		return sh
	default:
		return FullPost
	}
}

// historySize is how many recent picks per pool are excluded.
const historySize = 5

// Hashtags closes every full post.
const Hashtags = "#mentalhealth #therapy #mentalhealthawareness #selfcare #healing #mentalhealthmatters #anxiety #depression #trauma #support"

type nichePools struct {
	Hooks       []string
	Validations []string
	Education   []string
	Hope        []string
}

// CarouselContent is a five-slide carousel.
type CarouselContent struct {
	Title  string   `json:"title"`
	Slides []string `json:"slides"`
}

// ReelContent is a short video script.
type ReelContent struct {
	Hook   string   `json:"hook"`
	Script []string `json:"script"`
}

// Piece is one generated item. Exactly one of Text, Carousel or Reel is set,
// depending on Shape.
type Piece struct {
	Shape    Shape            `json:"shape"`
	Niche    Niche            `json:"niche"`
	Text     string           `json:"text,omitempty"`
	Carousel *CarouselContent `json:"carousel,omitempty"`
	Reel     *ReelContent     `json:"reel,omitempty"`
}

// Option configures a Generator.
type Option func(*Generator)

// WithRand sets the random source, for deterministic tests.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) { g.rng = r }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// WithClock sets the time source used for variety ids.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// Generator picks phrases without repeating the last few picks of each pool.
// It is safe for concurrent use.
type Generator struct {
	mu      sync.Mutex
	rng     *rand.Rand
	history map[string][]string
	logger  *zap.Logger
	now     func() time.Time
}

// NewGenerator returns a Generator seeded from the runtime unless WithRand is
// given.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		history: make(map[string][]string),
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return g
}

func (g *Generator) poolsFor(niche Niche) (Niche, nichePools) {
	if p, ok := pools[niche]; ok {
		return niche, p
	}
	g.logger.Warn("no local content for niche, using default",
		zap.String("niche", string(niche)),
		zap.String("default", string(DefaultNiche)))
	return DefaultNiche, pools[DefaultNiche]
}

// Generate builds a piece of the given shape for niche. Unknown niches fall
// back to DefaultNiche.
func (g *Generator) Generate(niche Niche, shape Shape) Piece {
	niche, p := g.poolsFor(niche)

	g.mu.Lock()
	defer g.mu.Unlock()

	key := string(niche)
	hook := g.pick(p.Hooks, key+"_hooks")
	piece := Piece{Shape: shape, Niche: niche}

	switch shape {
	case HookOnly:
		piece.Text = hook
	case ReelScript:
		validation := g.pick(p.Validations, key+"_validations")
		education := g.pick(p.Education, key+"_education")
		cta := g.pick(gentleCTAs, "ctas")
		piece.Reel = &ReelContent{
			Hook:   hook,
			Script: []string{hook, validation, education, "Remember: " + cta},
		}
	case Carousel:
		validation := g.pick(p.Validations, key+"_validations")
		education := g.pick(p.Education, key+"_education")
		hope := g.pick(p.Hope, key+"_hope")
		cta := g.pick(gentleCTAs, "ctas")
		piece.Carousel = &CarouselContent{
			Title: hook,
			Slides: []string{
				"Slide 1: " + hook,
				"Slide 2: " + validation,
				"Slide 3: " + education,
				"Slide 4: " + hope,
				"Slide 5: " + cta,
			},
		}
	default:
		piece.Shape = FullPost
		validation := g.pick(p.Validations, key+"_validations")
		education := g.pick(p.Education, key+"_education")
		hope := g.pick(p.Hope, key+"_hope")
		cta := g.pick(gentleCTAs, "ctas")
		piece.Text = strings.Join([]string{hook, validation, education, hope, cta, Hashtags}, "\n\n")
	}

	return piece
}

// pick returns a random item of pool not among the last historySize picks
// for key. When every item is recent the history is cleared. Caller holds mu.
func (g *Generator) pick(pool []string, key string) string {
	recent := g.history[key]

	available := make([]string, 0, len(pool))
	for _, item := range pool {
		if !slices.Contains(recent, item) {
			available = append(available, item)
		}
	}
	if len(available) == 0 {
		available = pool
		recent = nil
	}

	selected := available[g.rng.IntN(len(available))]

	recent = append([]string{selected}, recent...)
	if len(recent) > historySize {
		recent = recent[:historySize]
	}
	g.history[key] = recent

	return selected
}

// engagementTerms fill the blank in engagement starters.
var engagementTerms = map[Niche]string{
	Anxiety:    "anxious",
	Depression: "depressed",
	Trauma:     "triggered",
	ADHD:       "overwhelmed by your ADHD",
}

// EngagementStarter returns a question prompt with its blank filled for niche.
func (g *Generator) EngagementStarter(niche Niche) string {
	g.mu.Lock()
	starter := g.pick(engagementStarters, "engagement")
	g.mu.Unlock()

	term, ok := engagementTerms[niche]
	if !ok {
		term = "struggling"
	}
	return strings.Replace(starter, "___", term, 1)
}

// VarietyItem is one entry of a variety batch.
type VarietyItem struct {
	ID    string `json:"id"`
	Type  Shape  `json:"type"`
	Piece Piece  `json:"content"`
}

// varietyShapes cycle through a variety batch.
var varietyShapes = []Shape{FullPost, HookOnly, Carousel}

// Variety returns n pieces for niche, cycling through full posts, hooks and
// carousels.
func (g *Generator) Variety(niche Niche, n int) []VarietyItem {
	items := make([]VarietyItem, 0, max(n, 0))
	stamp := g.now().UnixMilli()
	for i := 0; i < n; i++ {
		shape := varietyShapes[i%len(varietyShapes)]
		items = append(items, VarietyItem{
			ID:    fmt.Sprintf("local_%s_%s_%d_%d", niche, shape, stamp, i),
			Type:  shape,
			Piece: g.Generate(niche, shape),
		})
	}
	return items
}

// String renders the piece as plain text.
func (p Piece) String() string {
	switch {
	case p.Carousel != nil:
		return p.Carousel.Title + "\n\n" + strings.Join(p.Carousel.Slides, "\n")
	case p.Reel != nil:
		return strings.Join(p.Reel.Script, "\n")
	default:
		return p.Text
	}
}
