package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/forPelevin/vidlyze/internal/domain/compliance"
	"github.com/forPelevin/vidlyze/internal/domain/findings"
	"github.com/forPelevin/vidlyze/internal/domain/offensive"
	"github.com/forPelevin/vidlyze/internal/metrics"
	"github.com/forPelevin/vidlyze/internal/ports"
	"github.com/forPelevin/vidlyze/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/vidlyze/internal/ports/adapters/openai"
	"github.com/forPelevin/vidlyze/internal/types"
	"github.com/forPelevin/vidlyze/internal/usecase"
)

type Config struct {
	InputVideo string
	OutDir     string
	Log        *logrus.Logger

	// CacheDir is the base directory for per-run scratch files (extracted audio),
	// removed when the run ends. If empty, defaults to ".cache".
	CacheDir string

	FFmpegPath  string
	FFprobePath string

	Dictionary            offensive.Dictionary
	PauseThreshold        float64
	SummaryPauseThreshold float64
	MaxUploadBytes        int64

	OpenAIAPIKey       string
	OpenAIBaseURL      string
	OpenAIAllowedHosts []string
	TranscribeModel    string
	ModerationModel    string
	ChatModel          string
	RequestTimeout     time.Duration
}

func (c Config) Validate() error {
	if c.InputVideo == "" {
		return errors.New("input is empty")
	}
	if _, err := os.Stat(c.InputVideo); err != nil {
		return fmt.Errorf("stat input: %w", err)
	}
	if c.OpenAIAPIKey == "" {
		return errors.New("OPENAI_API_KEY is required")
	}
	if c.PauseThreshold < 0 || c.SummaryPauseThreshold < 0 {
		return errors.New("pause thresholds must be >= 0")
	}
	if c.RequestTimeout < 0 {
		return errors.New("request timeout must be >= 0")
	}
	if c.Dictionary != nil {
		if err := c.Dictionary.Validate(); err != nil {
			return fmt.Errorf("dictionary: %w", err)
		}
	}
	return openai.ValidateBaseURL(c.OpenAIBaseURL, c.OpenAIAllowedHosts)
}

// Outcome points at what a run wrote.
type Outcome struct {
	RunDir     string
	ReportPath string
	Summary    string
	Report     types.Report
}

func Run(ctx context.Context, cfg Config) (Outcome, error) {
	log := cfg.Log
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}

	m := metrics.New()
	v := ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath)
	api := openai.New(openai.Config{
		APIKey:          cfg.OpenAIAPIKey,
		BaseURL:         cfg.OpenAIBaseURL,
		TranscribeModel: cfg.TranscribeModel,
		ModerationModel: cfg.ModerationModel,
		ChatModel:       cfg.ChatModel,
		RequestTimeout:  cfg.RequestTimeout,
		Logger:          log,
		Metrics:         m,
	})

	return run(ctx, cfg, usecase.Deps{
		Video:      v,
		ASR:        api,
		Moderation: api,
		Sentiment:  api,
		Log:        log,
		Metrics:    m,
	}, m, time.Now().UTC())
}

func run(ctx context.Context, cfg Config, deps usecase.Deps, m *metrics.Metrics, now time.Time) (Outcome, error) {
	log := deps.Log
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
		deps.Log = log
	}
	runID := uuid.NewString()
	rlog := log.WithField("run_id", runID)

	baseCache := cfg.CacheDir
	if baseCache == "" {
		baseCache = ".cache"
	}
	// One workspace per run so concurrent runs on the same input never share scratch files.
	cacheDir := filepath.Join(baseCache, "runs", runID)
	if err := os.MkdirAll(cacheDir, 0o700); err != nil {
		return Outcome{}, err
	}
	defer func() {
		if err := os.RemoveAll(cacheDir); err != nil {
			rlog.WithError(err).Warn("remove run workspace")
		}
	}()
	rlog.WithField("cache", cacheDir).Debug("workspace ready")

	outRoot := cfg.OutDir
	if outRoot == "" {
		outRoot = "out"
	}
	runOutDir := buildRunOutDir(outRoot, cfg.InputVideo, now)
	if err := os.MkdirAll(runOutDir, 0o755); err != nil {
		return Outcome{}, err
	}

	dict := cfg.Dictionary
	if dict == nil {
		dict = offensive.DefaultDictionary()
	}

	uc := usecase.New(deps)
	res, runErr := uc.Run(ctx, usecase.Input{
		InputVideo:     cfg.InputVideo,
		CacheDir:       cacheDir,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Findings: findings.Options{
			Dictionary:     dict.Clone(),
			PauseThreshold: cfg.PauseThreshold,
		},
		Summary: compliance.Options{
			PauseThreshold: cfg.SummaryPauseThreshold,
		},
	})

	metricsPath := filepath.Join(runOutDir, "metrics.prom")
	if err := m.WriteTextfile(metricsPath); err != nil {
		rlog.WithError(err).Warn("write metrics textfile")
	}
	if runErr != nil {
		return Outcome{RunDir: runOutDir}, runErr
	}

	report := types.Report{
		RunID:    runID,
		Input:    cfg.InputVideo,
		Language: res.Transcription.Language,
		Duration: res.Transcription.TotalDuration(),
		Text:     res.Transcription.Text,
		Flagged:  !res.Outcome.Clean,
		Status:   res.Status(),
		Findings: res.Outcome.Findings,
	}
	if report.Findings == nil {
		report.Findings = []types.Finding{}
	}

	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return Outcome{}, fmt.Errorf("marshal report: %w", err)
	}
	reportPath := filepath.Join(runOutDir, "report.json")
	if err := os.WriteFile(reportPath, b, 0o644); err != nil {
		return Outcome{}, err
	}
	if err := os.WriteFile(filepath.Join(runOutDir, "summary.txt"), []byte(res.Summary), 0o644); err != nil {
		return Outcome{}, err
	}
	rlog.WithFields(logrus.Fields{
		"findings": len(report.Findings),
		"report":   reportPath,
	}).Info("report written")

	return Outcome{
		RunDir:     runOutDir,
		ReportPath: reportPath,
		Summary:    res.Summary,
		Report:     report,
	}, nil
}

func buildRunOutDir(outRoot, input string, now time.Time) string {
	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	name = normalizePathSegment(name)
	if name == "" {
		name = "input"
	}
	ts := now.UTC().Format("20060102-150405Z")
	runSeed := fmt.Sprintf("%s|%d", input, now.UTC().UnixNano())
	suffix := hash(runSeed)[:6]
	return filepath.Join(outRoot, fmt.Sprintf("%s-%s-%s", name, ts, suffix))
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// ensure adapters implement ports
var _ ports.VideoTool = (*ffmpeg.Adapter)(nil)
var _ ports.Transcriber = (*openai.Adapter)(nil)
var _ ports.Moderator = (*openai.Adapter)(nil)
var _ ports.SentimentClassifier = (*openai.Adapter)(nil)
