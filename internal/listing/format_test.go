package listing

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quartzboard/quartz/internal/engine"
	"github.com/quartzboard/quartz/pkg/board"
)

func TestFormatColumnsTable(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		var buf bytes.Buffer
		count := FormatColumnsTable(&buf, nil, "board-1")
		assert.Zero(t, count)
		assert.Contains(t, buf.String(), "No columns found for board 'board-1'")
	})

	t.Run("renders rows", func(t *testing.T) {
		columns := []*board.Column{
			{ID: "aaaaaaaa-1111", Title: "Status", Type: board.ColumnTypeStatus, Position: 0, CreatedAtMs: time.Now().UnixMilli()},
			{ID: "bbbbbbbb-2222", Title: "A very long column title indeed", Type: board.ColumnTypeText, Position: 1, Hidden: true},
		}

		var buf bytes.Buffer
		count := FormatColumnsTable(&buf, columns, "board-1")
		assert.Equal(t, 2, count)

		out := buf.String()
		assert.Contains(t, out, "aaaaaaaa")
		assert.Contains(t, out, "Status")
		assert.Contains(t, out, "A very long column ...")
		assert.Contains(t, out, "2 columns found")
	})
}

func TestFormatAutomationsTable(t *testing.T) {
	automations := []*board.Automation{
		{
			ID:       "cccccccc-3333",
			Name:     "Archive done items",
			Active:   true,
			Trigger:  board.Trigger{Type: board.TriggerStatusChange},
			Actions:  []board.Action{{Type: board.ActionArchiveItem}},
			RunCount: 4,
		},
	}

	var buf bytes.Buffer
	count := FormatAutomationsTable(&buf, automations, "board-1")
	assert.Equal(t, 1, count)

	out := buf.String()
	assert.Contains(t, out, "Archive done items")
	assert.Contains(t, out, "status_change")
	assert.Contains(t, out, "1 automation found")
}

func TestFormatRunsTable(t *testing.T) {
	runs := []*engine.RunRecord{
		{
			AutomationID: "a-1",
			EventType:    board.EventStatusChanged,
			ItemID:       "dddddddd-4444",
			Outcome:      engine.RunPartialFailure,
			FailedIndex:  1,
			Error:        "action 1 (move_to_group) failed: group nonexistent: not found",
			AtMs:         time.Now().UnixMilli(),
		},
	}

	var buf bytes.Buffer
	count := FormatRunsTable(&buf, runs, "a-1")
	assert.Equal(t, 1, count)

	out := buf.String()
	assert.Contains(t, out, "partial_failure")
	assert.Contains(t, out, "status_changed")
	assert.Contains(t, out, "1 run found")
}

func TestFormatItemsTable(t *testing.T) {
	items := []*board.Item{
		{
			ID:        "eeeeeeee-5555",
			Name:      "Fix login bug",
			Priority:  board.PriorityHigh,
			DueDateMs: time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC).UnixMilli(),
			Archived:  true,
		},
		{ID: "ffffffff-6666", Name: "Write docs"},
	}

	var buf bytes.Buffer
	count := FormatItemsTable(&buf, items, "group-1")
	assert.Equal(t, 2, count)

	out := buf.String()
	assert.Contains(t, out, "Fix login bug")
	assert.Contains(t, out, "high")
	assert.Contains(t, out, "2026-09-15")
	assert.Contains(t, out, "2 items found")
}

func TestFormatJSONL(t *testing.T) {
	columns := []*board.Column{
		{ID: "c-1", BoardID: "board-1", Title: "Status", Type: board.ColumnTypeStatus},
		{ID: "c-2", BoardID: "board-1", Title: "Notes", Type: board.ColumnTypeText},
	}

	var buf bytes.Buffer
	require.NoError(t, FormatJSONL(&buf, columns))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var decoded board.Column
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &decoded))
	assert.Equal(t, "c-1", decoded.ID)
	assert.Equal(t, board.ColumnTypeStatus, decoded.Type)
}

func TestRelativeTime(t *testing.T) {
	assert.Equal(t, "-", relativeTime(0))
	assert.Contains(t, relativeTime(time.Now().Add(-30*time.Second).UnixMilli()), "s ago")
	assert.Contains(t, relativeTime(time.Now().Add(-5*time.Minute).UnixMilli()), "m ago")
	assert.Contains(t, relativeTime(time.Now().Add(-3*time.Hour).UnixMilli()), "h ago")
	assert.Contains(t, relativeTime(time.Now().Add(-48*time.Hour).UnixMilli()), "d ago")
}
