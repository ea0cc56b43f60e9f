package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quartzboard/quartz/internal/engine"
	"github.com/quartzboard/quartz/internal/filter"
	"github.com/quartzboard/quartz/internal/listing"
	"github.com/quartzboard/quartz/internal/printer"
	"github.com/quartzboard/quartz/internal/timespec"
	"github.com/quartzboard/quartz/pkg/board"
)

var (
	automationsBoardID      string
	automationsOutputFormat string

	runsSince   string
	runsUntil   string
	runsOutcome string
	runsEvent   string
)

var automationsCmd = &cobra.Command{
	Use:   "automations",
	Short: "Inspect and toggle a board's automations",
}

var automationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a board's automations",
	Long: `List a board's automations in creation order.

Output Formats:
  default - Human-readable table with trigger, run count, and last run
  jsonl   - Line-delimited JSON, one automation per line

Examples:
  # List automations
  quartz automations list --board sprint-42

  # As JSONL for piping to jq
  quartz automations list --board sprint-42 --output=jsonl | jq 'select(.active)'`,
	RunE: runAutomationsList,
}

var automationsEnableCmd = &cobra.Command{
	Use:   "enable AUTOMATION_ID",
	Short: "Enable an automation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toggleAutomation(cmd, args[0], true)
	},
}

var automationsDisableCmd = &cobra.Command{
	Use:   "disable AUTOMATION_ID",
	Short: "Disable an automation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toggleAutomation(cmd, args[0], false)
	},
}

var automationsRunsCmd = &cobra.Command{
	Use:   "runs AUTOMATION_ID",
	Short: "Show an automation's run history, newest first",
	Long: `Show an automation's run history, newest first.

Time Filters:
  --since  - Show runs after this time (duration, day, or RFC3339)
  --until  - Show runs before this time

Content Filters:
  --outcome - Filter by outcome: success, partial_failure, cycle_detected
  --event   - Filter by triggering event type (e.g. status_changed)

Examples:
  # Failures in the last day
  quartz automations runs abc123 --since=24h --outcome=partial_failure

  # Runs as JSONL for piping to jq
  quartz automations runs abc123 --output=jsonl | jq .outcome`,
	Args: cobra.ExactArgs(1),
	RunE: runAutomationRuns,
}

func init() {
	automationsListCmd.Flags().StringVarP(&automationsBoardID, "board", "b", "", "Board ID (required)")
	automationsListCmd.MarkFlagRequired("board")
	automationsListCmd.Flags().StringVarP(&automationsOutputFormat, "output", "o", "default", "Output format: default or jsonl")

	automationsRunsCmd.Flags().StringVarP(&automationsOutputFormat, "output", "o", "default", "Output format: default or jsonl")
	automationsRunsCmd.Flags().StringVar(&runsSince, "since", "", "Show runs after time (duration, day, or RFC3339)")
	automationsRunsCmd.Flags().StringVar(&runsUntil, "until", "", "Show runs before time (duration, day, or RFC3339)")
	automationsRunsCmd.Flags().StringVar(&runsOutcome, "outcome", "", "Filter by run outcome")
	automationsRunsCmd.Flags().StringVar(&runsEvent, "event", "", "Filter by triggering event type")

	automationsCmd.AddCommand(automationsListCmd)
	automationsCmd.AddCommand(automationsEnableCmd)
	automationsCmd.AddCommand(automationsDisableCmd)
	automationsCmd.AddCommand(automationsRunsCmd)
	rootCmd.AddCommand(automationsCmd)
}

func runAutomationsList(cmd *cobra.Command, args []string) error {
	_, client, err := connectStore()
	if err != nil {
		return err
	}
	defer client.Close()

	automations, err := client.ListAutomations(cmd.Context(), automationsBoardID)
	if err != nil {
		return fmt.Errorf("failed to list automations: %w", err)
	}

	switch listing.OutputFormat(automationsOutputFormat) {
	case listing.OutputFormatDefault:
		listing.FormatAutomationsTable(os.Stdout, automations, automationsBoardID)
		return nil
	case listing.OutputFormatJSONL:
		return listing.FormatJSONL(os.Stdout, automations)
	default:
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", automationsOutputFormat),
			[]string{"Valid formats: default, jsonl"},
		)
	}
}

func toggleAutomation(cmd *cobra.Command, automationID string, active bool) error {
	_, client, err := connectStore()
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.ToggleAutomation(cmd.Context(), automationID, active); err != nil {
		if errors.Is(err, board.ErrNotFound) {
			return printer.Error(
				"automation not found",
				fmt.Sprintf("No automation with ID '%s'.", automationID),
				[]string{"List automations:\n  quartz automations list --board <board-id>"},
			)
		}
		return fmt.Errorf("failed to toggle automation: %w", err)
	}

	state := "disabled"
	if active {
		state = "enabled"
	}
	printer.Success("Automation %s %s\n", automationID, state)
	return nil
}

func runAutomationRuns(cmd *cobra.Command, args []string) error {
	automationID := args[0]

	sinceMs, untilMs, err := timespec.ParseRange(runsSince, runsUntil)
	if err != nil {
		return printer.Error("invalid time filter", err.Error(), nil)
	}
	criteria := &filter.Criteria{
		SinceTimestampMs: sinceMs,
		UntilTimestampMs: untilMs,
		Outcome:          engine.RunOutcome(runsOutcome),
		EventType:        board.EventType(runsEvent),
	}

	_, client, err := connectStore()
	if err != nil {
		return err
	}
	defer client.Close()

	runs, err := engine.ListRuns(cmd.Context(), client, automationID)
	if err != nil {
		if errors.Is(err, board.ErrNotFound) {
			return printer.Error(
				"automation not found",
				fmt.Sprintf("No automation with ID '%s'.", automationID),
				[]string{"List automations:\n  quartz automations list --board <board-id>"},
			)
		}
		return fmt.Errorf("failed to list runs: %w", err)
	}
	runs = criteria.Apply(runs)

	switch listing.OutputFormat(automationsOutputFormat) {
	case listing.OutputFormatDefault:
		listing.FormatRunsTable(os.Stdout, runs, automationID)
		return nil
	case listing.OutputFormatJSONL:
		return listing.FormatJSONL(os.Stdout, runs)
	default:
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", automationsOutputFormat),
			[]string{"Valid formats: default, jsonl"},
		)
	}
}
