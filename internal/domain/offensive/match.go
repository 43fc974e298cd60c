// Package offensive cross-references flagged moderation categories with a
// watch-word dictionary and the transcript's word timings.
package offensive

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"

	"github.com/forPelevin/vidlyze/internal/domain/timestamp"
	"github.com/forPelevin/vidlyze/internal/types"
)

const Emoji = "🛑"

type MatchResult struct {
	Findings []types.Finding
	// Unmatched holds watch-words present in the text with no word segment of
	// identical spelling, e.g. "fuck." in the segments vs "fuck" in the text.
	Unmatched []string
}

// Match gates watch-words by flagged category, keeps those that appear as a
// whitespace-delimited token of text and anchors each at its first word segment.
// Tokens are not stripped of punctuation.
func Match(text string, cats types.ModerationCategories, words []types.WordSegment, dict Dictionary) MatchResult {
	fold := cases.Fold()

	present := make(map[string]struct{})
	for _, tok := range strings.FieldsFunc(text, isSpace) {
		present[fold.String(tok)] = struct{}{}
	}

	var (
		res     MatchResult
		seen    = make(map[string]struct{})
		anchors []anchored
	)
	for _, e := range dict {
		if !cats.Flag(e.Category) {
			continue
		}
		for _, w := range e.Words {
			key := fold.String(w)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			if _, ok := present[key]; !ok {
				continue
			}
			idx := firstSegment(words, key, fold)
			if idx < 0 {
				res.Unmatched = append(res.Unmatched, w)
				continue
			}
			anchors = append(anchors, anchored{word: w, seg: idx})
		}
	}

	sort.SliceStable(anchors, func(i, j int) bool { return anchors[i].seg < anchors[j].seg })
	for _, a := range anchors {
		start := words[a.seg].Start
		res.Findings = append(res.Findings, types.Finding{
			Kind:             types.KindOffensiveWord,
			Timestamp:        timestamp.Format(start),
			TimestampSeconds: start,
			Description:      a.word,
			Emoji:            Emoji,
		})
	}
	return res
}

type anchored struct {
	word string
	seg  int
}

func firstSegment(words []types.WordSegment, key string, fold cases.Caser) int {
	for i, w := range words {
		if fold.String(w.Word) == key {
			return i
		}
	}
	return -1
}

func isSpace(r rune) bool { return unicode.IsSpace(r) }
