package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/forPelevin/vidlyze/internal/domain/compliance"
	"github.com/forPelevin/vidlyze/internal/domain/findings"
	"github.com/forPelevin/vidlyze/internal/metrics"
	"github.com/forPelevin/vidlyze/internal/ports"
	"github.com/forPelevin/vidlyze/internal/types"
)

const (
	// MaxUploadBytes is the transcription endpoint's file limit.
	MaxUploadBytes = 25 << 20

	StatusIssuesDetected = "Issues Detected"
	StatusClean          = "No offensive content detected."
)

type Deps struct {
	Video      ports.VideoTool
	ASR        ports.Transcriber
	Moderation ports.Moderator
	Sentiment  ports.SentimentClassifier

	Log     *logrus.Logger
	Metrics *metrics.Metrics
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase {
	if d.Log == nil {
		d.Log = logrus.New()
		d.Log.SetOutput(io.Discard)
	}
	return Usecase{d: d}
}

type Input struct {
	InputVideo string
	CacheDir   string
	// MaxUploadBytes overrides the default upload limit when > 0.
	MaxUploadBytes int64

	Findings findings.Options
	Summary  compliance.Options
}

type Result struct {
	Transcription types.Transcription
	Moderation    types.ModerationResponse
	Outcome       findings.Outcome
	Summary       string
}

// Status is the headline shown above the findings list.
func (r Result) Status() string {
	if r.Outcome.Clean {
		return StatusClean
	}
	return StatusIssuesDetected
}

// Run executes the stages in order: audio extraction, transcription,
// moderation, then findings with the sentiment call. A failing stage aborts
// the run with a *StageError.
func (u Usecase) Run(ctx context.Context, in Input) (Result, error) {
	log := u.d.Log.WithField("input", filepath.Base(in.InputVideo))

	audio := filepath.Join(in.CacheDir, "audio.m4a")
	defer os.Remove(audio)
	started := time.Now()
	if err := u.d.Video.ExtractAudio(ctx, in.InputVideo, audio); err != nil {
		return Result{}, u.fail(StageAudio, err)
	}
	log.WithField("took", since(started)).Info("audio extracted")

	limit := in.MaxUploadBytes
	if limit <= 0 {
		limit = MaxUploadBytes
	}
	if err := checkSize(audio, limit); err != nil {
		return Result{}, u.fail(StageTranscription, err)
	}

	started = time.Now()
	tr, err := u.d.ASR.Transcribe(ctx, audio)
	if err != nil {
		return Result{}, u.fail(StageTranscription, err)
	}
	if tr.Duration == nil {
		tr.Duration = u.probeDuration(ctx, log, in.InputVideo)
	}
	log.WithFields(logrus.Fields{
		"words":    len(tr.Words),
		"language": tr.Language,
		"took":     since(started),
	}).Info("transcribed")

	started = time.Now()
	mod, err := u.d.Moderation.Moderate(ctx, tr.Text)
	if err != nil {
		return Result{}, u.fail(StageModeration, err)
	}
	if len(mod.Results) == 0 {
		return Result{}, u.fail(StageModeration, findings.ErrNoModeration)
	}
	if len(mod.Results) > 1 {
		log.WithField("results", len(mod.Results)).Warn("moderation returned several results; findings use the first")
	}
	log.WithFields(logrus.Fields{
		"flagged": mod.Results[0].Flagged,
		"took":    since(started),
	}).Info("moderated")

	out, err := findings.Build(ctx, tr, mod.Results, in.Findings, u.d.Sentiment)
	if err != nil {
		if errors.Is(err, findings.ErrClassify) {
			return Result{}, u.fail(StageSentiment, err)
		}
		return Result{}, u.fail(StageModeration, err)
	}
	for _, w := range out.Unmatched {
		log.WithField("word", w).Warn("watch-word found in text but not in word timings; dropped")
	}
	u.countFindings(out.Findings)

	res := Result{
		Transcription: tr,
		Moderation:    mod,
		Outcome:       out,
		Summary:       compliance.Report(tr, mod.Results, in.Summary),
	}
	log.WithFields(logrus.Fields{
		"status":   res.Status(),
		"findings": len(out.Findings),
	}).Info("analysis complete")
	return res, nil
}

// probeDuration fills in a missing transcript duration from the container.
// A failed probe is not fatal; the density rule then falls back to one second.
func (u Usecase) probeDuration(ctx context.Context, log *logrus.Entry, inVideo string) *float64 {
	d, err := u.d.Video.ProbeDuration(ctx, inVideo)
	if err != nil {
		log.WithError(err).Warn("transcript has no duration and probing the video failed")
		return nil
	}
	if d <= 0 {
		return nil
	}
	sec := d.Seconds()
	return &sec
}

func (u Usecase) fail(stage Stage, err error) error {
	u.d.Metrics.StageFailed(string(stage))
	se := &StageError{Stage: stage, Err: err}
	u.d.Log.WithField("stage", string(stage)).WithError(err).Error("analysis failed")
	return se
}

func (u Usecase) countFindings(fs []types.Finding) {
	counts := make(map[types.FindingKind]int, 3)
	for _, f := range fs {
		counts[f.Kind]++
	}
	for k, n := range counts {
		u.d.Metrics.AddFindings(string(k), n)
	}
}

func checkSize(path string, limit int64) error {
	st, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat audio: %w", err)
	}
	if st.Size() > limit {
		return fmt.Errorf("%w: %d bytes > %d", ErrAudioTooLarge, st.Size(), limit)
	}
	return nil
}

func since(t time.Time) string {
	return time.Since(t).Round(time.Millisecond).String()
}
