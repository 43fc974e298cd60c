package types

type WordSegment struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Transcription is the verbose_json transcription payload.
type Transcription struct {
	Task     string        `json:"task"`
	Text     string        `json:"text"`
	Language string        `json:"language,omitempty"`
	Duration *float64      `json:"duration,omitempty"`
	Words    []WordSegment `json:"words,omitempty"`
}

// TotalDuration returns the reported duration, falling back to the last word end.
func (t Transcription) TotalDuration() float64 {
	if t.Duration != nil {
		return *t.Duration
	}
	if n := len(t.Words); n > 0 {
		return t.Words[n-1].End
	}
	return 0
}

// ModerationCategories keeps the wire names of the moderation API, slashes and hyphens included.
type ModerationCategories struct {
	Sexual                bool `json:"sexual"`
	Hate                  bool `json:"hate"`
	Harassment            bool `json:"harassment"`
	SelfHarm              bool `json:"self-harm"`
	Violence              bool `json:"violence"`
	Illicit               bool `json:"illicit"`
	HarassmentThreatening bool `json:"harassment/threatening"`
	HateThreatening       bool `json:"hate/threatening"`
	IllicitViolent        bool `json:"illicit/violent"`
	ViolenceGraphic       bool `json:"violence/graphic"`
	SexualMinors          bool `json:"sexual/minors"`
	SelfHarmIntent        bool `json:"self-harm/intent"`
	SelfHarmInstructions  bool `json:"self-harm/instructions"`
}

// CategoryNames lists the moderation wire names in API order.
var CategoryNames = []string{
	"sexual", "hate", "harassment", "self-harm", "violence", "illicit",
	"harassment/threatening", "hate/threatening", "illicit/violent",
	"violence/graphic", "sexual/minors", "self-harm/intent", "self-harm/instructions",
}

// Flag reports the flag for a wire category name. Unknown names are false.
func (c ModerationCategories) Flag(name string) bool {
	switch name {
	case "sexual":
		return c.Sexual
	case "hate":
		return c.Hate
	case "harassment":
		return c.Harassment
	case "self-harm":
		return c.SelfHarm
	case "violence":
		return c.Violence
	case "illicit":
		return c.Illicit
	case "harassment/threatening":
		return c.HarassmentThreatening
	case "hate/threatening":
		return c.HateThreatening
	case "illicit/violent":
		return c.IllicitViolent
	case "violence/graphic":
		return c.ViolenceGraphic
	case "sexual/minors":
		return c.SexualMinors
	case "self-harm/intent":
		return c.SelfHarmIntent
	case "self-harm/instructions":
		return c.SelfHarmInstructions
	default:
		return false
	}
}

type CategoryScores struct {
	Sexual                float64 `json:"sexual"`
	Hate                  float64 `json:"hate"`
	Harassment            float64 `json:"harassment"`
	SelfHarm              float64 `json:"self-harm"`
	Violence              float64 `json:"violence"`
	Illicit               float64 `json:"illicit"`
	HarassmentThreatening float64 `json:"harassment/threatening"`
	HateThreatening       float64 `json:"hate/threatening"`
	IllicitViolent        float64 `json:"illicit/violent"`
	ViolenceGraphic       float64 `json:"violence/graphic"`
	SexualMinors          float64 `json:"sexual/minors"`
	SelfHarmIntent        float64 `json:"self-harm/intent"`
	SelfHarmInstructions  float64 `json:"self-harm/instructions"`
}

type ModerationResult struct {
	Flagged        bool                 `json:"flagged"`
	Categories     ModerationCategories `json:"categories"`
	CategoryScores CategoryScores       `json:"category_scores"`
}

type ModerationResponse struct {
	ID      string             `json:"id,omitempty"`
	Model   string             `json:"model,omitempty"`
	Results []ModerationResult `json:"results"`
}

type FindingKind string

const (
	KindOffensiveWord FindingKind = "Offensive Word"
	KindPause         FindingKind = "Pause"
	KindSentiment     FindingKind = "Sentiment"
)

type Finding struct {
	Kind             FindingKind `json:"kind"`
	Timestamp        string      `json:"timestamp"`
	TimestampSeconds float64     `json:"timestamp_sec"`
	Description      string      `json:"description"`
	Emoji            string      `json:"emoji"`
}

// Report is the per-run artifact written next to the summary.
type Report struct {
	RunID    string    `json:"run_id"`
	Input    string    `json:"input"`
	Language string    `json:"language,omitempty"`
	Duration float64   `json:"duration_sec"`
	Text     string    `json:"text"`
	Flagged  bool      `json:"flagged"`
	Status   string    `json:"status"`
	Findings []Finding `json:"findings"`
}
