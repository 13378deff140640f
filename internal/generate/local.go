package generate

import (
	"fmt"
	"strings"

	"github.com/hpungsan/clarity/internal/category"
	"github.com/hpungsan/clarity/internal/content"
)

// ideaCount is how many ideas a local batch holds.
const ideaCount = 5

func (h *Hybrid) localContentIdeas(profile Profile, brand *category.BrandFoundation, pillars []string) string {
	primary := DetectNiche(profile, brand, pillars)
	h.logger.Debug("generating local content ideas")

	niches := []content.Niche{primary, content.Anxiety, content.Depression, content.Trauma, content.ADHD}[:ideaCount]

	ideas := make([]string, 0, len(niches))
	for i, niche := range niches {
		post := h.local.Generate(niche, content.FullPost)
		ideas = append(ideas, fmt.Sprintf(`**CLIENT-ATTRACTION IDEA #%d: %s**

🎯 Platform: Instagram/LinkedIn
💙 Content:
%s

🎪 Why It Connects: This speaks directly to people struggling with %s, making them feel understood and less alone.

---`, i+1, NicheTitle(niche), post.String(), niche))
	}
	return strings.Join(ideas, "\n\n")
}

func (h *Hybrid) localPostContent(req PostRequest) string {
	niche := TopicNiche(req.Topic)
	piece := h.local.Generate(niche, FormatShape(req.Format))
	format := strings.ToLower(req.Format)

	switch {
	case strings.Contains(format, "carousel") && piece.Carousel != nil:
		return formatCarousel(piece.Carousel, req.Platform)
	case strings.Contains(format, "reel") && piece.Reel != nil:
		return formatReel(piece.Reel, req.Platform)
	default:
		return formatPost(piece.String(), req.Platform, req.Tone)
	}
}

// nicheKeywords are checked in order; the first niche with a matching
// keyword wins.
var nicheKeywords = []struct {
	niche    content.Niche
	keywords []string
}{
	{content.Anxiety, []string{"anxiety", "worry"}},
	{content.Trauma, []string{"trauma", "ptsd"}},
	{content.Depression, []string{"depression", "mood"}},
	{content.ADHD, []string{"adhd", "attention"}},
}

func matchNiche(text string) content.Niche {
	text = strings.ToLower(text)
	for _, nk := range nicheKeywords {
		for _, kw := range nk.keywords {
			if strings.Contains(text, kw) {
				return nk.niche
			}
		}
	}
	return content.DefaultNiche
}

// DetectNiche picks the primary niche from the profile specialization, the
// brand persona and statement, and the content pillars.
func DetectNiche(profile Profile, brand *category.BrandFoundation, pillars []string) content.Niche {
	var parts []string
	if s, ok := profile["specialization"].(string); ok && s != "" {
		parts = append(parts, s)
	}
	if brand != nil {
		for _, s := range []string{brand.IdealClientPersona, brand.BrandStatement} {
			if s != "" {
				parts = append(parts, s)
			}
		}
	}
	if p := strings.Join(pillars, " "); p != "" {
		parts = append(parts, p)
	}
	return matchNiche(strings.Join(parts, " "))
}

// TopicNiche maps a post topic onto a niche.
func TopicNiche(topic string) content.Niche {
	return matchNiche(topic)
}

// FormatShape maps a post format onto a content shape.
func FormatShape(format string) content.Shape {
	f := strings.ToLower(format)
	switch {
	case strings.Contains(f, "carousel"):
		return content.Carousel
	case strings.Contains(f, "reel"), strings.Contains(f, "video"):
		return content.ReelScript
	default:
		return content.FullPost
	}
}

var nicheTitles = map[content.Niche]string{
	content.Anxiety:    "Your Anxiety Makes Perfect Sense",
	content.Depression: "You're Not Lazy, You're Depressed",
	content.Trauma:     "Your Trauma Responses Are Normal",
	content.ADHD:       "Your ADHD Brain Is Not Broken",
}

// NicheTitle is the headline used for a niche's idea.
func NicheTitle(niche content.Niche) string {
	if t, ok := nicheTitles[niche]; ok {
		return t
	}
	return "You Deserve Understanding"
}

func formatCarousel(c *content.CarouselContent, platform string) string {
	return fmt.Sprintf(`📱 CAROUSEL POST FOR %s

Title: %s

%s

Perfect for sharing step-by-step insights that help people feel understood and supported.`,
		strings.ToUpper(platform), c.Title, strings.Join(c.Slides, "\n"))
}

func formatReel(r *content.ReelContent, platform string) string {
	lines := make([]string, len(r.Script))
	for i, line := range r.Script {
		lines[i] = fmt.Sprintf("%d. %s", i+1, line)
	}
	return fmt.Sprintf(`🎥 REEL SCRIPT FOR %s

Hook: %s

Script:
%s

Perfect for creating relatable, scroll-stopping video content that makes people feel seen.`,
		strings.ToUpper(platform), r.Hook, strings.Join(lines, "\n"))
}

func formatPost(text, platform, tone string) string {
	return fmt.Sprintf(`📱 %s POST (%s tone)

%s

This post speaks directly to people who need to feel understood and supported in their mental health journey.`,
		strings.ToUpper(platform), tone, text)
}
