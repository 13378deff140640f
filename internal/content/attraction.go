package content

import "strings"

// maxAttractionScore caps AttractionScore.
const maxAttractionScore = 100

type weightedPhrases struct {
	weight  int
	phrases []string
}

// attractionSignals are matched case-insensitively as substrings. Each
// phrase counts once no matter how often it occurs.
var attractionSignals = []weightedPhrases{
	{10, []string{
		"you're not",
		"this is for you",
		"if you",
		"your brain",
		"it's not your fault",
		"you deserve",
		"you're not alone",
		"this is normal",
	}},
	// validation
	{5, []string{"valid", "normal", "okay", "enough", "worthy", "deserving"}},
	// relatability
	{8, []string{"feel like", "ever said", "brain feels", "when you"}},
}

// ViralChecklist is the self-review list shown with an attraction report.
var ViralChecklist = []string{
	"Does this make someone feel seen and understood?",
	"Would someone save this to show their partner/friend?",
	"Does this normalize a common struggle?",
	"Would someone comment 'this is me'?",
	"Does this reduce shame or self-blame?",
	"Is this emotionally accurate?",
	"Would this help someone feel less alone?",
}

// EngagementDrivers are the questions that predict comments and saves.
var EngagementDrivers = []string{
	"Does it validate a common experience?",
	"Does it explain something they've felt but couldn't name?",
	"Does it challenge a harmful myth about mental health?",
	"Does it offer hope without toxic positivity?",
	"Does it use inclusive, non-clinical language?",
	"Does it speak to a specific person, not 'everyone'?",
	"Does it feel like a friend talking, not a textbook?",
}

// Recommendation texts returned by Recommendations.
const (
	RecSpeakToOne  = "Use 'you' language to speak directly to one person"
	RecNormalize   = "Add normalization or validation language"
	RecDropShould  = "Remove 'should' or 'just' - they can feel judgmental"
	RecAskQuestion = "Consider adding a relatable question"
)

// AttractionReport is the result of checking a draft for client attraction.
type AttractionReport struct {
	Score           int      `json:"attractionScore"`
	Checklist       []string `json:"checklist"`
	Drivers         []string `json:"drivers"`
	Recommendations []string `json:"recommendations"`
}

// Assess scores text and pairs it with the review lists.
func Assess(text string) AttractionReport {
	return AttractionReport{
		Score:           AttractionScore(text),
		Checklist:       ViralChecklist,
		Drivers:         EngagementDrivers,
		Recommendations: Recommendations(text),
	}
}

// AttractionScore rates how strongly text speaks to a prospective client,
// from 0 to 100.
func AttractionScore(text string) int {
	lower := strings.ToLower(text)
	score := 0
	for _, group := range attractionSignals {
		for _, p := range group.phrases {
			if strings.Contains(lower, p) {
				score += group.weight
			}
		}
	}
	return min(score, maxAttractionScore)
}

// Recommendations lists edits that would make text more inviting. It is
// empty, never nil, when there is nothing to suggest.
func Recommendations(text string) []string {
	lower := strings.ToLower(text)
	recs := []string{}
	if !strings.Contains(lower, "you") {
		recs = append(recs, RecSpeakToOne)
	}
	if !strings.Contains(lower, "not your fault") && !strings.Contains(lower, "normal") {
		recs = append(recs, RecNormalize)
	}
	if strings.Contains(lower, "should") || strings.Contains(lower, "just") {
		recs = append(recs, RecDropShould)
	}
	if !strings.Contains(lower, "?") {
		recs = append(recs, RecAskQuestion)
	}
	return recs
}
