// Package listing renders board entities (columns, automations, run history,
// items) for the CLI, as compact tables or line-delimited JSON.
package listing

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/quartzboard/quartz/internal/engine"
	"github.com/quartzboard/quartz/pkg/board"
)

// OutputFormat specifies how to format list output.
type OutputFormat string

const (
	// OutputFormatDefault uses a table format with truncated fields
	OutputFormatDefault OutputFormat = "default"

	// OutputFormatJSONL outputs complete records as line-delimited JSON
	OutputFormatJSONL OutputFormat = "jsonl"
)

// FormatColumnsTable writes a board's columns as a formatted table.
func FormatColumnsTable(w io.Writer, columns []*board.Column, boardID string) int {
	if len(columns) == 0 {
		fmt.Fprintf(w, "No columns found for board '%s'\n", boardID)
		return 0
	}

	fmt.Fprintf(w, "Columns for board '%s':\n\n", boardID)
	fmt.Fprintf(w, "%-10s %-22s %-12s %-4s %-7s %s\n",
		"ID", "TITLE", "TYPE", "POS", "HIDDEN", "AGE")
	fmt.Fprintf(w, "%-10s %-22s %-12s %-4s %-7s %s\n",
		"----------", "----------------------", "------------", "----", "-------", "--------")

	for _, c := range columns {
		hidden := "-"
		if c.Hidden {
			hidden = "yes"
		}
		fmt.Fprintf(w, "%-10s %-22s %-12s %-4d %-7s %s\n",
			shortID(c.ID),
			truncate(c.Title, 22),
			string(c.Type),
			c.Position,
			hidden,
			relativeTime(c.CreatedAtMs),
		)
	}

	fmt.Fprintf(w, "\n%d %s found\n", len(columns), plural(len(columns), "column", "columns"))
	return len(columns)
}

// FormatAutomationsTable writes a board's automations as a formatted table.
func FormatAutomationsTable(w io.Writer, automations []*board.Automation, boardID string) int {
	if len(automations) == 0 {
		fmt.Fprintf(w, "No automations found for board '%s'\n", boardID)
		return 0
	}

	fmt.Fprintf(w, "Automations for board '%s':\n\n", boardID)
	fmt.Fprintf(w, "%-10s %-26s %-8s %-20s %-8s %-5s %s\n",
		"ID", "NAME", "ACTIVE", "TRIGGER", "ACTIONS", "RUNS", "LAST RUN")
	fmt.Fprintf(w, "%-10s %-26s %-8s %-20s %-8s %-5s %s\n",
		"----------", "--------------------------", "--------", "--------------------", "--------", "-----", "--------")

	for _, a := range automations {
		active := "-"
		if a.Active {
			active = "yes"
		}
		fmt.Fprintf(w, "%-10s %-26s %-8s %-20s %-8d %-5d %s\n",
			shortID(a.ID),
			truncate(a.Name, 26),
			active,
			string(a.Trigger.Type),
			len(a.Actions),
			a.RunCount,
			relativeTime(a.LastRunMs),
		)
	}

	fmt.Fprintf(w, "\n%d %s found\n", len(automations), plural(len(automations), "automation", "automations"))
	return len(automations)
}

// FormatRunsTable writes an automation's run history as a formatted table,
// newest first.
func FormatRunsTable(w io.Writer, runs []*engine.RunRecord, automationID string) int {
	if len(runs) == 0 {
		fmt.Fprintf(w, "No runs recorded for automation '%s'\n", automationID)
		return 0
	}

	fmt.Fprintf(w, "Runs for automation '%s':\n\n", automationID)
	fmt.Fprintf(w, "%-8s %-22s %-10s %-16s %s\n",
		"AGE", "EVENT", "ITEM", "OUTCOME", "ERROR")
	fmt.Fprintf(w, "%-8s %-22s %-10s %-16s %s\n",
		"--------", "----------------------", "----------", "----------------", "----------------------------------------")

	for _, r := range runs {
		errMsg := "-"
		if r.Error != "" {
			errMsg = truncate(r.Error, 40)
		}
		fmt.Fprintf(w, "%-8s %-22s %-10s %-16s %s\n",
			relativeTime(r.AtMs),
			string(r.EventType),
			shortID(r.ItemID),
			string(r.Outcome),
			errMsg,
		)
	}

	fmt.Fprintf(w, "\n%d %s found\n", len(runs), plural(len(runs), "run", "runs"))
	return len(runs)
}

// FormatItemsTable writes a group's items as a formatted table.
func FormatItemsTable(w io.Writer, items []*board.Item, groupID string) int {
	if len(items) == 0 {
		fmt.Fprintf(w, "No items found for group '%s'\n", groupID)
		return 0
	}

	fmt.Fprintf(w, "Items for group '%s':\n\n", groupID)
	fmt.Fprintf(w, "%-10s %-30s %-8s %-10s %-8s %s\n",
		"ID", "NAME", "PRIO", "DUE", "ARCHIVED", "AGE")
	fmt.Fprintf(w, "%-10s %-30s %-8s %-10s %-8s %s\n",
		"----------", "------------------------------", "--------", "----------", "--------", "--------")

	for _, i := range items {
		prio := string(i.Priority)
		if prio == "" {
			prio = "-"
		}
		due := "-"
		if i.DueDateMs != 0 {
			due = time.UnixMilli(i.DueDateMs).UTC().Format("2006-01-02")
		}
		archived := "-"
		if i.Archived {
			archived = "yes"
		}
		fmt.Fprintf(w, "%-10s %-30s %-8s %-10s %-8s %s\n",
			shortID(i.ID),
			truncate(i.Name, 30),
			prio,
			due,
			archived,
			relativeTime(i.CreatedAtMs),
		)
	}

	fmt.Fprintf(w, "\n%d %s found\n", len(items), plural(len(items), "item", "items"))
	return len(items)
}

// FormatJSONL writes records as line-delimited JSON, one record per line.
func FormatJSONL[T any](w io.Writer, records []T) error {
	for _, record := range records {
		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to marshal record to JSON: %w", err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", string(data)); err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
	}
	return nil
}

// shortID truncates an ID to its first 8 characters for compact display.
func shortID(id string) string {
	if id == "" {
		return "-"
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// truncate shortens a string for table display.
func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max-3] + "..."
	}
	return s
}

func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return singular
	}
	return pluralForm
}

// relativeTime formats a Unix millisecond timestamp as a relative age like
// "2m ago". Zero renders as "-".
func relativeTime(timestampMs int64) string {
	if timestampMs == 0 {
		return "-"
	}

	t := time.UnixMilli(timestampMs)
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return fmt.Sprintf("%ds ago", int(diff.Seconds()))
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
}
