package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quartzboard/quartz/internal/listing"
	"github.com/quartzboard/quartz/internal/printer"
	"github.com/quartzboard/quartz/pkg/board"
)

var (
	itemsGroupID      string
	itemsOutputFormat string
)

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "Inspect a group's items",
}

var itemsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a group's items in position order",
	Long: `List a group's items in position order.

Output Formats:
  default - Human-readable table with priority, due date, and archive state
  jsonl   - Line-delimited JSON, one item per line

Examples:
  # List a group's items
  quartz items list --group backlog

  # Overdue check via jq
  quartz items list --group backlog --output=jsonl | jq 'select(.due_date_ms > 0)'`,
	RunE: runItemsList,
}

func init() {
	itemsListCmd.Flags().StringVarP(&itemsGroupID, "group", "g", "", "Group ID (required)")
	itemsListCmd.MarkFlagRequired("group")
	itemsListCmd.Flags().StringVarP(&itemsOutputFormat, "output", "o", "default", "Output format: default or jsonl")

	itemsCmd.AddCommand(itemsListCmd)
	rootCmd.AddCommand(itemsCmd)
}

func runItemsList(cmd *cobra.Command, args []string) error {
	_, client, err := connectStore()
	if err != nil {
		return err
	}
	defer client.Close()

	items, err := client.ListItems(cmd.Context(), itemsGroupID)
	if err != nil {
		if errors.Is(err, board.ErrNotFound) {
			return printer.Error(
				"group not found",
				fmt.Sprintf("No group with ID '%s'.", itemsGroupID),
				nil,
			)
		}
		return fmt.Errorf("failed to list items: %w", err)
	}

	switch listing.OutputFormat(itemsOutputFormat) {
	case listing.OutputFormatDefault:
		listing.FormatItemsTable(os.Stdout, items, itemsGroupID)
		return nil
	case listing.OutputFormatJSONL:
		return listing.FormatJSONL(os.Stdout, items)
	default:
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", itemsOutputFormat),
			[]string{"Valid formats: default, jsonl"},
		)
	}
}
