// Package sentiment maps classifier labels to emoji and provides the offline
// density heuristic used by the compliance summary.
package sentiment

import "strings"

const (
	Positive = "Positive"
	Negative = "Negative"
	Neutral  = "Neutral"
)

// Emoji matches the lowercased label against the three known labels.
func Emoji(label string) string {
	switch strings.ToLower(label) {
	case "positive":
		return "😊"
	case "negative":
		return "😞"
	default:
		return "😐"
	}
}

// FromDensity labels a transcript by flagged results per second.
// A non-positive duration is treated as one second.
func FromDensity(flagged int, duration float64) string {
	if duration <= 0 {
		duration = 1.0
	}
	return fromDensity(float64(flagged) / duration)
}

func fromDensity(density float64) string {
	switch {
	case density > 0.10:
		return Negative
	case density > 0.05:
		return Neutral
	default:
		return Positive
	}
}
