// Package pauses finds unusual silences between consecutive words.
package pauses

import (
	"github.com/forPelevin/vidlyze/internal/domain/timestamp"
	"github.com/forPelevin/vidlyze/internal/types"
)

const (
	// DefaultThreshold gates pause findings.
	DefaultThreshold = 2.0
	// SummaryThreshold gates the compliance summary section.
	SummaryThreshold = 1.0
)

type Pause struct {
	Timestamp string
	Duration  float64
	Seconds   float64
}

// Detect emits a pause wherever the gap to the previous word is at least threshold.
func Detect(words []types.WordSegment, threshold float64) []Pause {
	return scan(words, func(gap float64) bool { return gap >= threshold })
}

// DetectStrict is Detect with a strict comparison, as the summary report counts pauses.
func DetectStrict(words []types.WordSegment, threshold float64) []Pause {
	return scan(words, func(gap float64) bool { return gap > threshold })
}

func scan(words []types.WordSegment, hit func(gap float64) bool) []Pause {
	if len(words) < 2 {
		return nil
	}
	var out []Pause
	for i := 1; i < len(words); i++ {
		prev, cur := words[i-1], words[i]
		gap := cur.Start - prev.End
		if !hit(gap) {
			continue
		}
		out = append(out, Pause{
			Timestamp: timestamp.Format(prev.End),
			Duration:  gap,
			Seconds:   prev.End,
		})
	}
	return out
}
