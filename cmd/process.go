// Package cmd implements the minutes CLI subcommands.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/minutes-cli/config"
	"github.com/otherjamesbrown/minutes-cli/pkg/directory"
	"github.com/otherjamesbrown/minutes-cli/pkg/export"
	"github.com/otherjamesbrown/minutes-cli/pkg/extract"
	"github.com/otherjamesbrown/minutes-cli/pkg/followup"
	"github.com/otherjamesbrown/minutes-cli/pkg/logging"
	"github.com/otherjamesbrown/minutes-cli/pkg/meeting"
	"github.com/otherjamesbrown/minutes-cli/pkg/oracle"
	"github.com/otherjamesbrown/minutes-cli/pkg/pipeline"
)

// Process command flags.
var (
	processPeople     string
	processDate       string
	processThreshold  float64
	processOutput     string
	processPolicy     string
	processNoFollowUp bool
)

// NewProcessCommand creates the 'process' subcommand.
func NewProcessCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process <transcript>",
		Short: "Process a meeting transcript end to end",
		Long: `Process a meeting transcript: extract action items, decisions, and
risks, resolve owners against the people directory, resolve deadline
phrases to calendar dates, validate the result set, and draft simulated
follow-up emails.

The people directory is a JSON or YAML file mapping names to email and
role. Deadline phrases are resolved deterministically where a grammar
rule applies ("tomorrow", "by Friday", "in 2 weeks", "end of week");
everything else goes to the model in one batch.

Examples:
  # Process with an explicit people directory
  minutes process transcript.txt --people team.yaml

  # Resolve dates against a specific meeting day
  minutes process transcript.txt --people team.yaml --date 2026-01-05

  # Stricter review flagging and a custom output directory
  minutes process transcript.txt --people team.yaml --threshold 0.9 --output ./results`,
		Args: cobra.ExactArgs(1),
		RunE: runProcess,
	}

	cmd.Flags().StringVar(&processPeople, "people", "", "people directory file (JSON or YAML)")
	cmd.Flags().StringVar(&processDate, "date", "", "reference date for deadline resolution (YYYY-MM-DD, default today)")
	cmd.Flags().Float64Var(&processThreshold, "threshold", 0, "confidence threshold for review flagging (default 0.7)")
	cmd.Flags().StringVar(&processOutput, "output", "", "output directory for results JSON")
	cmd.Flags().StringVar(&processPolicy, "ambiguity-policy", "", "first-name tie-break policy: reject or first-match")
	cmd.Flags().BoolVar(&processNoFollowUp, "no-followup", false, "skip follow-up drafting and send simulation")

	return cmd
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyProcessFlags(cfg)

	if cfg.Oracle.APIKey == "" {
		return fmt.Errorf("OPENROUTER_API_KEY is not set")
	}
	if cfg.Directory.Path == "" {
		return fmt.Errorf("no people directory: set --people or directory.path in config")
	}

	level := logging.LevelInfo
	if cfg.Debug {
		level = logging.LevelDebug
	}
	log := logging.NewLogger(&logging.Config{Level: level, Component: "minutes"})

	transcript, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading transcript: %w", err)
	}

	referenceDate := time.Now()
	if processDate != "" {
		referenceDate, err = time.Parse("2006-01-02", processDate)
		if err != nil {
			return fmt.Errorf("parsing --date: %w", err)
		}
	}

	// A missing or malformed directory aborts before any stage runs.
	dir, err := directory.Load(cfg.Directory.Path, directory.AmbiguityPolicy(cfg.Directory.AmbiguityPolicy))
	if err != nil {
		return fmt.Errorf("loading people directory: %w", err)
	}

	provider := oracle.NewOpenRouterProvider(oracle.Config{
		BaseURL: cfg.Oracle.BaseURL,
		Model:   cfg.Oracle.Model,
		APIKey:  cfg.Oracle.APIKey,
		Timeout: cfg.Oracle.Timeout,
	})
	defer provider.Close()

	ctx := cmd.Context()
	st := meeting.NewState(string(transcript), dir, referenceDate)

	if err := extract.NewExtractor(provider, log).Extract(ctx, st); err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	runner := pipeline.NewRunner(pipeline.Config{
		ConfidenceThreshold: cfg.Pipeline.ConfidenceThreshold,
		OverloadLimit:       cfg.Pipeline.OverloadLimit,
	}, oracle.NewClient(provider, log), log)

	report, err := runner.Run(ctx, st)
	if err != nil {
		return err
	}

	if !processNoFollowUp {
		followup.NewGenerator(provider, log).Generate(ctx, st)
		followup.NewSimulator(log).SendAll(st)
	}

	path, err := export.Write(cfg.OutputDir, st, report)
	if err != nil {
		return err
	}

	printSummary(cmd, st, report, path)
	return nil
}

func applyProcessFlags(cfg *config.Config) {
	if processPeople != "" {
		cfg.Directory.Path = processPeople
	}
	if processThreshold != 0 {
		cfg.Pipeline.ConfidenceThreshold = processThreshold
	}
	if processOutput != "" {
		cfg.OutputDir = processOutput
	}
	if processPolicy != "" {
		cfg.Directory.AmbiguityPolicy = processPolicy
	}
}

func printSummary(cmd *cobra.Command, st *meeting.State, report *pipeline.Report, path string) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s\n", st.RunID)
	fmt.Fprintf(out, "  Action items: %d (%d need review)\n", report.TotalItems, len(report.NeedsReview))
	fmt.Fprintf(out, "  Decisions:    %d\n", len(st.Decisions))
	fmt.Fprintf(out, "  Risks:        %d\n", len(st.Risks))
	if len(report.Duplicates) > 0 {
		fmt.Fprintf(out, "  Duplicates:   %d groups\n", len(report.Duplicates))
	}
	if len(report.Overloads) > 0 {
		fmt.Fprintf(out, "  Overloads:    %d owner/deadline groups\n", len(report.Overloads))
	}
	if len(st.Triggers) > 0 {
		fmt.Fprintf(out, "  Follow-ups:   %d simulated sends\n", len(st.Triggers))
	}

	for _, item := range st.ActionItems {
		marker := " "
		if item.NeedsReview {
			marker = "!"
		}
		fmt.Fprintf(out, "  %s %s: %s", marker, item.ID, item.Description)
		if item.OwnerEmail != "" {
			fmt.Fprintf(out, " [%s]", item.OwnerName)
		}
		if item.DeadlineDate != nil {
			fmt.Fprintf(out, " (due %s)", item.DeadlineDate)
		}
		fmt.Fprintln(out)
		for _, note := range item.ValidationNotes {
			fmt.Fprintf(out, "      - %s\n", note)
		}
	}

	fmt.Fprintf(out, "Results written to %s\n", path)
}
