package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/forPelevin/vidlyze/internal/domain/pauses"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "vidlyze <video>",
		Short:        "Flag offensive words, unusual pauses and sentiment in a local video",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0])
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	// Visible flags
	root.Flags().String("out", "out", "Output directory")
	root.Flags().Bool("summary", false, "Print the compliance summary instead of the findings list")
	root.Flags().String("dictionary", "", "JSON file with per-category watch-words")

	// Hidden tuning flags (internal)
	root.Flags().Float64("pause-threshold", pauses.DefaultThreshold, "Minimum gap in seconds reported as a pause finding")
	root.Flags().Float64("summary-pause-threshold", pauses.SummaryThreshold, "Gap in seconds the compliance summary must exceed")
	root.Flags().Duration("timeout", 30*time.Minute, "Overall run timeout")
	root.Flags().String("log-level", "info", "Log level (debug, info, warn, error)")
	root.Flags().String("log-format", "text", "Log format (text, json)")
	for _, name := range []string{"pause-threshold", "summary-pause-threshold", "timeout", "log-level", "log-format"} {
		_ = root.Flags().MarkHidden(name)
	}

	return root
}
