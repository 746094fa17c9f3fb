// Package main provides the minutes CLI entry point.
// minutes processes meeting transcripts into resolved, validated action
// items with simulated follow-up emails.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/minutes-cli/cmd"
	"github.com/otherjamesbrown/minutes-cli/config"
	"github.com/otherjamesbrown/minutes-cli/pkg/buildinfo"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "minutes",
	Short: "Meeting transcript processor",
	Long: `minutes turns raw meeting transcripts into resolved, validated action
items.

It extracts action items, decisions, and risks from a transcript, matches
owners against a people directory, converts deadline phrases ("by Friday",
"in 2 weeks") into calendar dates, validates the result set, and drafts
simulated follow-up emails. Anything it cannot resolve is flagged for
human review with an inspectable reason.

COMMON WORKFLOWS:
  Process a meeting:  minutes process transcript.txt --people team.yaml
  Inspect directory:  minutes directory show --people team.yaml
  Check a name:       minutes directory check "Alice" --people team.yaml

The OpenRouter API key is read from OPENROUTER_API_KEY.`,
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := buildinfo.Get()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "minutes version %s\n", info.Version)
		fmt.Fprintf(out, "  commit:     %s\n", info.Commit)
		fmt.Fprintf(out, "  built:      %s\n", info.BuildTime)
		fmt.Fprintf(out, "  go version: %s\n", info.GoVersion)
		return nil
	},
}

// configCmd manages CLI configuration.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long:  `View and modify the minutes CLI configuration settings.`,
}

// configShowCmd displays current configuration.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}

		configPath, _ := config.ConfigPath()
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Current configuration:")
		fmt.Fprintf(out, "  Config file:          %s\n", configPath)
		fmt.Fprintf(out, "  Model:                %s\n", cfg.Oracle.Model)
		fmt.Fprintf(out, "  Base URL:             %s\n", cfg.Oracle.BaseURL)
		fmt.Fprintf(out, "  Timeout:              %s\n", cfg.Oracle.Timeout)
		fmt.Fprintf(out, "  Confidence threshold: %.2f\n", cfg.Pipeline.ConfidenceThreshold)
		fmt.Fprintf(out, "  Overload limit:       %d\n", cfg.Pipeline.OverloadLimit)
		fmt.Fprintf(out, "  People directory:     %s\n", valueOrDefault(cfg.Directory.Path, "(not set)"))
		fmt.Fprintf(out, "  Ambiguity policy:     %s\n", cfg.Directory.AmbiguityPolicy)
		fmt.Fprintf(out, "  Output directory:     %s\n", cfg.OutputDir)
		fmt.Fprintf(out, "  API key:              %s\n", keyStatus(cfg.Oracle.APIKey))
		return nil
	},
}

// configInitCmd initializes configuration.
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration file",
	Long:  `Create a new configuration file with default values if one doesn't exist.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := config.ConfigPath()
		if err != nil {
			return fmt.Errorf("getting config path: %w", err)
		}

		if _, err := os.Stat(configPath); err == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file already exists: %s\n", configPath)
			fmt.Fprintln(cmd.OutOrStdout(), "Use 'minutes config show' to view current settings.")
			return nil
		}

		if err := config.Save(config.DefaultConfig()); err != nil {
			return fmt.Errorf("saving configuration: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created configuration file: %s\n", configPath)
		return nil
	},
}

// configSetCmd sets a configuration value.
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the config file.

Available keys:
  model                 - Oracle model identifier
  base_url              - Oracle API base URL
  timeout               - Oracle request timeout (e.g., 30s, 2m)
  confidence_threshold  - Review-flagging threshold (0..1)
  people                - Default people directory file
  ambiguity_policy      - First-name tie-break policy (reject, first-match)
  output_dir            - Output directory for results

Examples:
  minutes config set model openai/gpt-4o
  minutes config set people ~/team.yaml
  minutes config set confidence_threshold 0.85`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		cfg, err := config.Load()
		if err != nil {
			cfg = config.DefaultConfig()
		}

		switch key {
		case "model":
			cfg.Oracle.Model = value
		case "base_url":
			cfg.Oracle.BaseURL = value
		case "timeout":
			duration, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid timeout value: %w", err)
			}
			cfg.Oracle.Timeout = duration
		case "confidence_threshold":
			var threshold float64
			if _, err := fmt.Sscanf(value, "%f", &threshold); err != nil {
				return fmt.Errorf("invalid threshold value: %w", err)
			}
			cfg.Pipeline.ConfidenceThreshold = threshold
		case "people":
			cfg.Directory.Path = value
		case "ambiguity_policy":
			cfg.Directory.AmbiguityPolicy = value
		case "output_dir":
			cfg.OutputDir = value
		default:
			return fmt.Errorf("unknown configuration key: %s", key)
		}

		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("saving configuration: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
		return nil
	},
}

// valueOrDefault returns the value if non-empty, otherwise the default.
func valueOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}

func keyStatus(key string) string {
	if key == "" {
		return "(not set)"
	}
	return "(set via OPENROUTER_API_KEY)"
}

func init() {
	rootCmd.AddCommand(cmd.NewProcessCommand())
	rootCmd.AddCommand(cmd.NewDirectoryCommand())

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)

	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
