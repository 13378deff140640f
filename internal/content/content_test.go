package content

import (
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newSeeded(seed uint64) *Generator {
	return NewGenerator(WithRand(rand.New(rand.NewPCG(seed, seed))))
}

func TestPools_Complete(t *testing.T) {
	for _, n := range Niches() {
		p, ok := pools[n]
		require.True(t, ok, "niche %s", n)
		for name, pool := range map[string][]string{
			"hooks": p.Hooks, "validations": p.Validations, "education": p.Education, "hope": p.Hope,
		} {
			require.Len(t, pool, 10, "%s %s", n, name)
		}
	}
	require.Len(t, gentleCTAs, 20)
	require.Len(t, engagementStarters, 10)
}

func TestPick_NoRepeatWithinHistory(t *testing.T) {
	g := newSeeded(1)
	pool := pools[Anxiety].Hooks

	for trial := 0; trial < 50; trial++ {
		var window []string
		for i := 0; i < 200; i++ {
			got := g.pick(pool, "hooks")
			require.NotContains(t, window, got, "repeated within history window")
			window = append(window, got)
			if len(window) > historySize {
				window = window[1:]
			}
		}
	}
}

func TestPick_ResetsWhenExhausted(t *testing.T) {
	g := newSeeded(7)
	pool := []string{"a", "b", "c"}

	seen := map[string]bool{}
	for i := 0; i < len(pool); i++ {
		seen[g.pick(pool, "small")] = true
	}
	require.Len(t, seen, len(pool), "first pass should use every item once")

	// the next pick finds nothing available and starts over
	next := g.pick(pool, "small")
	require.Contains(t, pool, next)
	require.Equal(t, []string{next}, g.history["small"])
}

func TestGenerate_FullPost(t *testing.T) {
	g := newSeeded(3)
	piece := g.Generate(Trauma, FullPost)

	require.Equal(t, FullPost, piece.Shape)
	require.Equal(t, Trauma, piece.Niche)

	parts := strings.Split(piece.Text, "\n\n")
	require.Len(t, parts, 6)
	require.Contains(t, pools[Trauma].Hooks, parts[0])
	require.Contains(t, pools[Trauma].Validations, parts[1])
	require.Contains(t, pools[Trauma].Education, parts[2])
	require.Contains(t, pools[Trauma].Hope, parts[3])
	require.Contains(t, gentleCTAs, parts[4])
	require.Equal(t, Hashtags, parts[5])
}

func TestGenerate_Carousel(t *testing.T) {
	piece := newSeeded(4).Generate(ADHD, Carousel)
	require.NotNil(t, piece.Carousel)
	require.Len(t, piece.Carousel.Slides, 5)
	require.Equal(t, "Slide 1: "+piece.Carousel.Title, piece.Carousel.Slides[0])
	require.True(t, strings.HasPrefix(piece.Carousel.Slides[4], "Slide 5: "))
	require.Contains(t, pools[ADHD].Hooks, piece.Carousel.Title)
}

func TestGenerate_ReelScript(t *testing.T) {
	piece := newSeeded(5).Generate(Depression, ReelScript)
	require.NotNil(t, piece.Reel)
	require.Len(t, piece.Reel.Script, 4)
	require.Equal(t, piece.Reel.Hook, piece.Reel.Script[0])
	require.True(t, strings.HasPrefix(piece.Reel.Script[3], "Remember: "))
	require.Equal(t, strings.Join(piece.Reel.Script, "\n"), piece.String())
}

func TestGenerate_HookOnlyAndUnknownNiche(t *testing.T) {
	g := newSeeded(6)
	piece := g.Generate(Niche("grief"), HookOnly)
	require.Equal(t, Anxiety, piece.Niche)
	require.Contains(t, pools[Anxiety].Hooks, piece.Text)
}

func TestGenerate_DeterministicWithSeed(t *testing.T) {
	a := newSeeded(42).Generate(Anxiety, FullPost)
	b := newSeeded(42).Generate(Anxiety, FullPost)
	require.Equal(t, a, b)
}

func TestEngagementStarter(t *testing.T) {
	g := newSeeded(8)
	for i := 0; i < 30; i++ {
		s := g.EngagementStarter(Trauma)
		require.NotContains(t, s, "___")
	}

	found := false
	for i := 0; i < 100 && !found; i++ {
		found = strings.Contains(g.EngagementStarter(Niche("grief")), "struggling")
	}
	require.True(t, found, "unknown niche should use the default term")
}

func TestVariety(t *testing.T) {
	stamp := time.UnixMilli(1700000000000)
	g := NewGenerator(WithRand(rand.New(rand.NewPCG(9, 9))), WithClock(func() time.Time { return stamp }))

	items := g.Variety(Anxiety, 5)
	require.Len(t, items, 5)

	want := []Shape{FullPost, HookOnly, Carousel, FullPost, HookOnly}
	for i, item := range items {
		require.Equal(t, want[i], item.Type)
		require.Equal(t, want[i], item.Piece.Shape)
	}
	require.Equal(t, "local_anxiety_carousel_1700000000000_2", items[2].ID)
	require.Empty(t, g.Variety(Anxiety, 0))
}

func TestParseHelpers(t *testing.T) {
	n, ok := ParseNiche(" ADHD ")
	require.True(t, ok)
	require.Equal(t, ADHD, n)

	_, ok = ParseNiche("grief")
	require.False(t, ok)

	require.Equal(t, Carousel, ParseShape("Carousel"))
	require.Equal(t, FullPost, ParseShape("essay"))
}
