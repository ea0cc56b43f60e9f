package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quartzboard/quartz/internal/listing"
	"github.com/quartzboard/quartz/internal/printer"
	"github.com/quartzboard/quartz/pkg/board"
)

var (
	columnsBoardID      string
	columnsOutputFormat string
	columnsShowHidden   bool
)

var columnsCmd = &cobra.Command{
	Use:   "columns",
	Short: "Inspect a board's columns",
}

var columnsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a board's columns in position order",
	Long: `List a board's columns in position order.

Hidden columns are omitted unless --all is given.

Output Formats:
  default - Human-readable table
  jsonl   - Line-delimited JSON, one column per line

Examples:
  # List visible columns
  quartz columns list --board sprint-42

  # Include hidden columns, as JSONL for piping to jq
  quartz columns list --board sprint-42 --all --output=jsonl | jq .type`,
	RunE: runColumnsList,
}

var columnsTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the supported column types",
	RunE:  runColumnsTypes,
}

func init() {
	columnsListCmd.Flags().StringVarP(&columnsBoardID, "board", "b", "", "Board ID (required)")
	columnsListCmd.MarkFlagRequired("board")
	columnsListCmd.Flags().StringVarP(&columnsOutputFormat, "output", "o", "default", "Output format: default or jsonl")
	columnsListCmd.Flags().BoolVar(&columnsShowHidden, "all", false, "Include hidden columns")

	columnsCmd.AddCommand(columnsListCmd)
	columnsCmd.AddCommand(columnsTypesCmd)
	rootCmd.AddCommand(columnsCmd)
}

func runColumnsList(cmd *cobra.Command, args []string) error {
	_, client, err := connectStore()
	if err != nil {
		return err
	}
	defer client.Close()

	columns, err := client.ListColumns(cmd.Context(), columnsBoardID)
	if err != nil {
		return fmt.Errorf("failed to list columns: %w", err)
	}

	if !columnsShowHidden {
		visible := columns[:0]
		for _, c := range columns {
			if !c.Hidden {
				visible = append(visible, c)
			}
		}
		columns = visible
	}

	switch listing.OutputFormat(columnsOutputFormat) {
	case listing.OutputFormatDefault:
		listing.FormatColumnsTable(os.Stdout, columns, columnsBoardID)
		return nil
	case listing.OutputFormatJSONL:
		return listing.FormatJSONL(os.Stdout, columns)
	default:
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", columnsOutputFormat),
			[]string{"Valid formats: default, jsonl"},
		)
	}
}

func runColumnsTypes(cmd *cobra.Command, args []string) error {
	fmt.Printf("%-12s %-16s %-7s %s\n", "TYPE", "LABEL", "WIDTH", "SETTINGS")
	fmt.Printf("%-12s %-16s %-7s %s\n", "------------", "----------------", "-------", "--------")
	for _, def := range board.AllColumnTypes() {
		settings := "-"
		if def.RequiresSettings {
			settings = "required"
		}
		fmt.Printf("%-12s %-16s %-7d %s\n", string(def.Type), def.Label, def.DefaultWidth, settings)
	}
	return nil
}
