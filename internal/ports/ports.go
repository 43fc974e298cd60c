package ports

import (
	"context"
	"time"

	"github.com/forPelevin/vidlyze/internal/types"
)

type VideoTool interface {
	ExtractAudio(ctx context.Context, inVideo, outAudio string) error
	ProbeDuration(ctx context.Context, inVideo string) (time.Duration, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (types.Transcription, error)
}

type Moderator interface {
	Moderate(ctx context.Context, text string) (types.ModerationResponse, error)
}

// SentimentClassifier returns a free-text label; callers must not assume it is
// one of Positive, Negative or Neutral.
type SentimentClassifier interface {
	Classify(ctx context.Context, text string) (string, error)
}
