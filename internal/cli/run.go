package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/forPelevin/vidlyze/internal/domain/offensive"
	"github.com/forPelevin/vidlyze/internal/pipeline"
	"github.com/forPelevin/vidlyze/internal/types"
)

func run(cmd *cobra.Command, input string) error {
	outDir, _ := cmd.Flags().GetString("out")
	printSummary, _ := cmd.Flags().GetBool("summary")
	dictPath, _ := cmd.Flags().GetString("dictionary")
	pauseThreshold, _ := cmd.Flags().GetFloat64("pause-threshold")
	summaryThreshold, _ := cmd.Flags().GetFloat64("summary-pause-threshold")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	logLevel, _ := cmd.Flags().GetString("log-level")
	logFormat, _ := cmd.Flags().GetString("log-format")

	log, err := newLogger(cmd.ErrOrStderr(), logLevel, logFormat)
	if err != nil {
		return err
	}

	absIn, err := filepath.Abs(input)
	if err != nil {
		return err
	}

	var dict offensive.Dictionary
	if dictPath != "" {
		dict, err = offensive.LoadDictionary(dictPath)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cfg := pipeline.Config{
		InputVideo: absIn,
		OutDir:     outDir,
		Log:        log,

		FFmpegPath:  "ffmpeg",
		FFprobePath: "ffprobe",

		Dictionary:            dict,
		PauseThreshold:        pauseThreshold,
		SummaryPauseThreshold: summaryThreshold,

		OpenAIAPIKey:       strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIBaseURL:      os.Getenv("OPENAI_BASE_URL"),
		OpenAIAllowedHosts: splitHosts(os.Getenv("OPENAI_ALLOWED_HOSTS")),
		TranscribeModel:    getenvDefault("OPENAI_TRANSCRIBE_MODEL", "whisper-1"),
		ModerationModel:    getenvDefault("OPENAI_MODERATION_MODEL", "omni-moderation-latest"),
		ChatModel:          getenvDefault("OPENAI_CHAT_MODEL", "gpt-3.5-turbo"),
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	out, err := pipeline.Run(ctx, cfg)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if printSummary {
		_, err = io.WriteString(w, out.Summary)
		return err
	}
	printReport(w, out.Report)
	fmt.Fprintf(w, "\nartifacts: %s\n", out.RunDir)
	return nil
}

func printReport(w io.Writer, r types.Report) {
	fmt.Fprintln(w, r.Status)
	for _, f := range r.Findings {
		fmt.Fprintf(w, "%s %-5s %s: %s\n", f.Emoji, f.Timestamp, f.Kind, f.Description)
	}
}

func newLogger(w io.Writer, level, format string) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(w)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	log.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("config: unknown log format %q", format)
	}
	return log, nil
}

func splitHosts(s string) []string {
	var out []string
	for _, h := range strings.Split(s, ",") {
		if h = strings.TrimSpace(h); h != "" {
			out = append(out, h)
		}
	}
	return out
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
