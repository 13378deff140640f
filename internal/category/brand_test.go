package category

import (
	"strings"
	"testing"
)

func TestParseBrandFoundation(t *testing.T) {
	b, err := ParseBrandFoundation([]byte(`{"practiceName":"Calm Minds","primaryPlatforms":["instagram"],"unknown":"ignored"}`))
	if err != nil {
		t.Fatalf("ParseBrandFoundation() error = %v", err)
	}
	if b.PracticeName != "Calm Minds" {
		t.Errorf("PracticeName = %q", b.PracticeName)
	}
	if len(b.PrimaryPlatforms) != 1 {
		t.Errorf("PrimaryPlatforms = %v", b.PrimaryPlatforms)
	}

	if _, err := ParseBrandFoundation([]byte(`[]`)); err == nil {
		t.Error("ParseBrandFoundation([]) expected error")
	}
}

func TestPillars(t *testing.T) {
	b := &BrandFoundation{ContentPillars: " Anxiety Tips, ,Self-Care ,Therapy Myths"}
	got := b.Pillars()
	want := []string{"Anxiety Tips", "Self-Care", "Therapy Myths"}
	if len(got) != len(want) {
		t.Fatalf("Pillars() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Pillars()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	var nilBrand *BrandFoundation
	if nilBrand.Pillars() != nil {
		t.Error("nil brand Pillars() should be nil")
	}
}

func TestIsComplete(t *testing.T) {
	b := &BrandFoundation{
		PracticeName:   "Calm Minds",
		BrandStatement: "Helping anxious professionals",
		PrimaryColor:   "#4A90E2",
		BrandTone:      "warm",
		ContentPillars: "tips",
	}
	if !b.IsComplete() {
		t.Error("IsComplete() = false, want true")
	}

	b.BrandTone = "   "
	if b.IsComplete() {
		t.Error("IsComplete() with blank tone = true, want false")
	}

	var nilBrand *BrandFoundation
	if nilBrand.IsComplete() {
		t.Error("nil brand IsComplete() = true")
	}
}

func TestCompletionPercentage(t *testing.T) {
	tests := []struct {
		name  string
		brand *BrandFoundation
		want  int
	}{
		{"nil", nil, 0},
		{"empty", &BrandFoundation{}, 0},
		{"one of thirteen", &BrandFoundation{PracticeName: "x"}, 8},
		{"platforms count", &BrandFoundation{PracticeName: "x", PrimaryPlatforms: []string{"ig"}}, 15},
		{"all", &BrandFoundation{
			PracticeName: "a", PracticeType: "b", IdealClientPersona: "c", ClientPainPoints: "d",
			DesiredOutcome: "e", UniqueApproach: "f", BrandStatement: "g", PrimaryColor: "h",
			SecondaryColor: "i", BrandTone: "j", BrandValues: "k", ContentPillars: "l",
			PrimaryPlatforms: []string{"m"},
		}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.brand.CompletionPercentage(); got != tt.want {
				t.Errorf("CompletionPercentage() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBrandedPrompt(t *testing.T) {
	var nilBrand *BrandFoundation
	if got := nilBrand.BrandedPrompt("base"); got != "base" {
		t.Errorf("nil BrandedPrompt() = %q, want base", got)
	}

	b := &BrandFoundation{PracticeName: "Calm Minds", BrandTone: "gentle"}
	got := b.BrandedPrompt("Write a post about sleep.")

	for _, want := range []string{
		"BRAND CONTEXT:",
		"Practice: Calm Minds",
		"Brand Tone: gentle",
		"Brand Statement: Supporting mental health and wellness",
		"Brand Colors: Primary #4A90E2, Secondary #7BB3F0",
		"PERSONALIZED REQUEST:\nWrite a post about sleep.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("BrandedPrompt() missing %q\n%s", want, got)
		}
	}
}
