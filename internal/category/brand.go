package category

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// BrandFoundation is the practice identity record built by the brand wizard.
type BrandFoundation struct {
	PracticeName       string   `json:"practiceName,omitempty"`
	PracticeType       string   `json:"practiceType,omitempty"`
	YearsExperience    string   `json:"yearsExperience,omitempty"`
	IdealClientPersona string   `json:"idealClientPersona,omitempty"`
	ClientAge          string   `json:"clientAge,omitempty"`
	ClientGender       string   `json:"clientGender,omitempty"`
	ClientChallenges   string   `json:"clientChallenges,omitempty"`
	ClientGoals        string   `json:"clientGoals,omitempty"`
	ClientPainPoints   string   `json:"clientPainPoints,omitempty"`
	DesiredOutcome     string   `json:"desiredOutcome,omitempty"`
	UniqueApproach     string   `json:"uniqueApproach,omitempty"`
	BrandStatement     string   `json:"brandStatement,omitempty"`
	PrimaryColor       string   `json:"primaryColor,omitempty"`
	SecondaryColor     string   `json:"secondaryColor,omitempty"`
	AccentColor        string   `json:"accentColor,omitempty"`
	ColorMood          string   `json:"colorMood,omitempty"`
	BrandTone          string   `json:"brandTone,omitempty"`
	BrandValues        string   `json:"brandValues,omitempty"`
	VisualStyle        string   `json:"visualStyle,omitempty"`
	ContentGoals       string   `json:"contentGoals,omitempty"`
	ContentPillars     string   `json:"contentPillars,omitempty"` // comma separated
	PrimaryPlatforms   []string `json:"primaryPlatforms,omitempty"`
	PostingFrequency   string   `json:"postingFrequency,omitempty"`
	TargetAudience     string   `json:"targetAudience,omitempty"`
}

// ParseBrandFoundation decodes a stored brand record.
func ParseBrandFoundation(raw json.RawMessage) (*BrandFoundation, error) {
	var b BrandFoundation
	if err := decodeObject(raw, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Pillars splits ContentPillars on commas, dropping blanks.
func (b *BrandFoundation) Pillars() []string {
	if b == nil {
		return nil
	}
	var out []string
	for _, p := range strings.Split(b.ContentPillars, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// IsComplete reports whether the fields needed for branded content are filled.
func (b *BrandFoundation) IsComplete() bool {
	if b == nil {
		return false
	}
	for _, v := range []string{b.PracticeName, b.BrandStatement, b.PrimaryColor, b.BrandTone, b.ContentPillars} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// CompletionPercentage is the rounded share of the 13 wizard fields that are filled.
func (b *BrandFoundation) CompletionPercentage() int {
	if b == nil {
		return 0
	}

	fields := []string{
		b.PracticeName, b.PracticeType, b.IdealClientPersona, b.ClientPainPoints,
		b.DesiredOutcome, b.UniqueApproach, b.BrandStatement, b.PrimaryColor,
		b.SecondaryColor, b.BrandTone, b.BrandValues, b.ContentPillars,
	}
	total := len(fields) + 1 // + PrimaryPlatforms

	completed := 0
	for _, v := range fields {
		if strings.TrimSpace(v) != "" {
			completed++
		}
	}
	if len(b.PrimaryPlatforms) > 0 {
		completed++
	}

	return int(math.Round(float64(completed) / float64(total) * 100))
}

// BrandedPrompt prefixes base with the brand context block. A nil brand
// returns base unchanged.
func (b *BrandFoundation) BrandedPrompt(base string) string {
	if b == nil {
		return base
	}

	return fmt.Sprintf(`
BRAND CONTEXT:
Practice: %s
Brand Statement: %s
Target Client: %s
Brand Tone: %s
Core Values: %s
Visual Style: %s
Brand Colors: Primary %s, Secondary %s
Content Pillars: %s

PERSONALIZED REQUEST:
%s

Please ensure the content aligns with the brand identity above and speaks directly to the target client persona.
`,
		or(b.PracticeName, "Mental Health Practice"),
		or(b.BrandStatement, "Supporting mental health and wellness"),
		or(b.IdealClientPersona, "individuals seeking mental health support"),
		or(b.BrandTone, "professional and warm"),
		or(b.BrandValues, "empathy, authenticity, growth"),
		or(b.VisualStyle, "professional"),
		or(b.PrimaryColor, "#4A90E2"),
		or(b.SecondaryColor, "#7BB3F0"),
		or(b.ContentPillars, "Mental Health Tips, Self-Care, Therapy Insights"),
		base,
	)
}

func or(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
