// Package findings merges offensive-word hits, pauses and a sentiment label
// into the ordered list shown to reviewers.
package findings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/forPelevin/vidlyze/internal/domain/offensive"
	"github.com/forPelevin/vidlyze/internal/domain/pauses"
	"github.com/forPelevin/vidlyze/internal/domain/sentiment"
	"github.com/forPelevin/vidlyze/internal/domain/timestamp"
	"github.com/forPelevin/vidlyze/internal/types"
)

var (
	ErrNoModeration = errors.New("moderation returned no results")
	ErrClassify     = errors.New("sentiment classification failed")
)

const (
	PauseEmoji = "⏸️"
	// SentimentTimestamp is shown instead of a time for the sentiment row.
	SentimentTimestamp = "-"
)

type Classifier interface {
	Classify(ctx context.Context, text string) (string, error)
}

type Options struct {
	Dictionary     offensive.Dictionary
	PauseThreshold float64
}

type Outcome struct {
	// Clean is set when moderation did not flag the transcript; Findings is nil then.
	Clean     bool
	Findings  []types.Finding
	Unmatched []string
}

// Build consumes the first moderation result only. Offensive words come first,
// then pauses, then exactly one sentiment finding. The classifier is called
// after the local passes and only for flagged transcripts.
func Build(
	ctx context.Context,
	tr types.Transcription,
	results []types.ModerationResult,
	opts Options,
	cls Classifier,
) (Outcome, error) {
	if len(results) == 0 {
		return Outcome{}, ErrNoModeration
	}
	first := results[0]
	if !first.Flagged {
		return Outcome{Clean: true}, nil
	}

	threshold := opts.PauseThreshold
	if threshold <= 0 {
		threshold = pauses.DefaultThreshold
	}
	dict := opts.Dictionary
	if dict == nil {
		dict = offensive.DefaultDictionary()
	}

	matched := offensive.Match(tr.Text, first.Categories, tr.Words, dict)
	ps := pauses.Detect(tr.Words, threshold)

	label, err := cls.Classify(ctx, tr.Text)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", ErrClassify, err)
	}
	label = strings.TrimSpace(label)

	out := make([]types.Finding, 0, len(matched.Findings)+len(ps)+1)
	out = append(out, matched.Findings...)
	for _, p := range ps {
		out = append(out, types.Finding{
			Kind:             types.KindPause,
			Timestamp:        p.Timestamp,
			TimestampSeconds: p.Seconds,
			Description:      fmt.Sprintf("Unusual pause of %s seconds", timestamp.Seconds(p.Duration)),
			Emoji:            PauseEmoji,
		})
	}
	out = append(out, types.Finding{
		Kind:             types.KindSentiment,
		Timestamp:        SentimentTimestamp,
		TimestampSeconds: 0,
		Description:      label,
		Emoji:            sentiment.Emoji(label),
	})

	return Outcome{Findings: out, Unmatched: matched.Unmatched}, nil
}
