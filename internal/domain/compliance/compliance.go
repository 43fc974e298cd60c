// Package compliance renders the plain-text compliance summary. It is an
// offline alternative to the findings list and never calls a classifier.
package compliance

import (
	"fmt"
	"strings"

	"github.com/forPelevin/vidlyze/internal/domain/pauses"
	"github.com/forPelevin/vidlyze/internal/domain/sentiment"
	"github.com/forPelevin/vidlyze/internal/domain/timestamp"
	"github.com/forPelevin/vidlyze/internal/types"
)

// DefaultDenylist is unrelated to the moderation watch-word dictionary.
var DefaultDenylist = []string{"anchor", "implant", "stud"}

type Options struct {
	PauseThreshold float64
	Denylist       []string
}

type Violation struct {
	Word    string
	Seconds float64
}

// HarmfulHit has no word-level timing; Seconds is always 0.
type HarmfulHit struct {
	Category string
	Seconds  float64
}

type Summary struct {
	Pauses     []pauses.Pause
	Violations []Violation
	Harmful    []HarmfulHit
	Sentiment  string
}

// Analyze walks every moderation result, not only the first.
func Analyze(tr types.Transcription, results []types.ModerationResult, opts Options) Summary {
	threshold := opts.PauseThreshold
	if threshold <= 0 {
		threshold = pauses.SummaryThreshold
	}
	deny := opts.Denylist
	if deny == nil {
		deny = DefaultDenylist
	}

	flaggedCount := 0
	for _, r := range results {
		if r.Flagged {
			flaggedCount++
		}
	}

	return Summary{
		Pauses:     pauses.DetectStrict(tr.Words, threshold),
		Violations: violations(tr.Words, deny),
		Harmful:    harmful(results),
		Sentiment:  sentiment.FromDensity(flaggedCount, durationOrZero(tr)),
	}
}

// Report is Analyze followed by Render.
func Report(tr types.Transcription, results []types.ModerationResult, opts Options) string {
	return Analyze(tr, results, opts).Render()
}

func (s Summary) Render() string {
	var b strings.Builder
	b.WriteString("Content Analysis Summary:\n\n")

	b.WriteString("1. Detected Unusual Pauses:\n")
	if len(s.Pauses) == 0 {
		b.WriteString("- None\n")
	}
	for _, p := range s.Pauses {
		fmt.Fprintf(&b, "- Pause of %s seconds at %s\n", timestamp.Seconds(p.Duration), timestamp.Format(p.Seconds))
	}

	b.WriteString("\n2. Compliance Violations:\n")
	if len(s.Violations) == 0 {
		b.WriteString("- None\n")
	}
	for _, v := range s.Violations {
		fmt.Fprintf(&b, "- Violation: '%s' at %s\n", v.Word, timestamp.Format(v.Seconds))
	}

	b.WriteString("\n3. Harmful Content:\n")
	if len(s.Harmful) == 0 {
		b.WriteString("- None\n")
	}
	for _, h := range s.Harmful {
		fmt.Fprintf(&b, "- %s at %s\n", h.Category, timestamp.Format(h.Seconds))
	}

	b.WriteString("\n4. Overall Sentiment:\n")
	fmt.Fprintf(&b, "- %s\n", s.Sentiment)
	return b.String()
}

func violations(words []types.WordSegment, deny []string) []Violation {
	set := make(map[string]struct{}, len(deny))
	for _, w := range deny {
		set[strings.ToLower(w)] = struct{}{}
	}
	var out []Violation
	for _, w := range words {
		if _, ok := set[strings.ToLower(w.Word)]; ok {
			out = append(out, Violation{Word: w.Word, Seconds: w.Start})
		}
	}
	return out
}

func harmful(results []types.ModerationResult) []HarmfulHit {
	var out []HarmfulHit
	for _, r := range results {
		if !r.Flagged {
			continue
		}
		c := r.Categories
		if c.Hate {
			out = append(out, HarmfulHit{Category: "Hate Speech"})
		}
		if c.Violence {
			out = append(out, HarmfulHit{Category: "Violence"})
		}
		if c.Sexual {
			out = append(out, HarmfulHit{Category: "Sexual Content"})
		}
		if c.SelfHarm {
			out = append(out, HarmfulHit{Category: "Self-Harm"})
		}
	}
	return out
}

// durationOrZero leaves the one-second fallback to sentiment.FromDensity.
func durationOrZero(tr types.Transcription) float64 {
	if tr.Duration == nil {
		return 0
	}
	return *tr.Duration
}
