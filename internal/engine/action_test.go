package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quartzboard/quartz/internal/notify"
	"github.com/quartzboard/quartz/pkg/board"
)

// captureNotifier records notifications instead of publishing them.
type captureNotifier struct {
	sent []*notify.Notification
}

func (c *captureNotifier) Notify(_ context.Context, n *notify.Notification) error {
	c.sent = append(c.sent, n)
	return nil
}

func newTestExecutor(store *board.Client, notifier notify.Notifier) *Executor {
	return &Executor{
		store:         store,
		notifier:      notifier,
		actionTimeout: 5 * time.Second,
	}
}

func TestExecutorValueActions(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	item := seedItem(t, store)
	statusCol, err := store.DefineColumn(ctx, "board-1", "Status", board.ColumnTypeStatus, statusLabels())
	require.NoError(t, err)
	dateCol, err := store.DefineColumn(ctx, "board-1", "Review", board.ColumnTypeDate, nil)
	require.NoError(t, err)

	executor := newTestExecutor(store, notify.LogNotifier{})
	done := board.StatusValue("done")
	review := board.DateValue(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC))

	automation := &board.Automation{
		ID:      "a-1",
		BoardID: "board-1",
		Actions: []board.Action{
			{Type: board.ActionChangeStatus, ColumnID: statusCol.ID, Value: &done},
			{Type: board.ActionSetDate, ColumnID: dateCol.ID, Value: &review},
		},
	}

	results, truncated := executor.Execute(ctx, automation, item.ID, 1)
	require.Len(t, results, 2)
	assert.False(t, truncated)
	for _, result := range results {
		assert.NoError(t, result.Err)
	}

	status, err := store.GetValue(ctx, item.ID, statusCol.ID)
	require.NoError(t, err)
	assert.Equal(t, "done", status.StatusID)

	date, err := store.GetValue(ctx, item.ID, dateCol.ID)
	require.NoError(t, err)
	assert.Equal(t, review.DateMs, date.DateMs)
}

func TestExecutorStopsAtFirstFailure(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	item := seedItem(t, store)
	statusCol, err := store.DefineColumn(ctx, "board-1", "Status", board.ColumnTypeStatus, statusLabels())
	require.NoError(t, err)

	bogus := board.StatusValue("not-a-label")
	done := board.StatusValue("done")

	automation := &board.Automation{
		ID:      "a-1",
		BoardID: "board-1",
		Actions: []board.Action{
			{Type: board.ActionChangeStatus, ColumnID: statusCol.ID, Value: &bogus},
			{Type: board.ActionChangeStatus, ColumnID: statusCol.ID, Value: &done},
		},
	}

	executor := newTestExecutor(store, notify.LogNotifier{})
	results, truncated := executor.Execute(ctx, automation, item.ID, 1)

	require.Len(t, results, 1, "second action must not start")
	assert.False(t, truncated)
	assert.ErrorIs(t, results[0].Err, board.ErrValueOutOfRange)

	value, err := store.GetValue(ctx, item.ID, statusCol.ID)
	require.NoError(t, err)
	assert.True(t, value.IsUnset(), "failed action leaves no partial write")
}

func TestExecutorAddLabel(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	item := seedItem(t, store)
	labelsCol, err := store.DefineColumn(ctx, "board-1", "Tags", board.ColumnTypeLabels, nil)
	require.NoError(t, err)

	executor := newTestExecutor(store, notify.LogNotifier{})
	automation := &board.Automation{
		ID:      "a-1",
		BoardID: "board-1",
		Actions: []board.Action{
			{Type: board.ActionAddLabel, ColumnID: labelsCol.ID, LabelID: "urgent"},
		},
	}

	results, _ := executor.Execute(ctx, automation, item.ID, 1)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)

	value, err := store.GetValue(ctx, item.ID, labelsCol.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"urgent"}, value.Labels)

	// Second run set-unions, it does not duplicate.
	results, _ = executor.Execute(ctx, automation, item.ID, 1)
	require.NoError(t, results[0].Err)

	value, err = store.GetValue(ctx, item.ID, labelsCol.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"urgent"}, value.Labels)
}

func TestExecutorItemActions(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	item := seedItem(t, store)
	doneGroup, err := store.CreateGroup(ctx, "board-1", "Done", "")
	require.NoError(t, err)

	t.Run("create_item", func(t *testing.T) {
		executor := newTestExecutor(store, notify.LogNotifier{})
		automation := &board.Automation{
			ID:      "a-1",
			BoardID: "board-1",
			Actions: []board.Action{
				{Type: board.ActionCreateItem, GroupID: doneGroup.ID, Name: "Follow-up"},
			},
		}
		results, _ := executor.Execute(ctx, automation, item.ID, 1)
		require.NoError(t, results[0].Err)

		items, err := store.ListItems(ctx, doneGroup.ID)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Follow-up", items[0].Name)
	})

	t.Run("move_to_group then archive", func(t *testing.T) {
		executor := newTestExecutor(store, notify.LogNotifier{})
		automation := &board.Automation{
			ID:      "a-2",
			BoardID: "board-1",
			Actions: []board.Action{
				{Type: board.ActionMoveToGroup, GroupID: doneGroup.ID},
				{Type: board.ActionArchiveItem},
			},
		}
		results, _ := executor.Execute(ctx, automation, item.ID, 1)
		require.Len(t, results, 2)
		require.NoError(t, results[0].Err)
		require.NoError(t, results[1].Err)

		fetched, err := store.GetItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, doneGroup.ID, fetched.GroupID)
		assert.True(t, fetched.Archived)
	})

	t.Run("delete_item", func(t *testing.T) {
		doomed := seedItem(t, store)
		executor := newTestExecutor(store, notify.LogNotifier{})
		automation := &board.Automation{
			ID:      "a-3",
			BoardID: "board-1",
			Actions: []board.Action{{Type: board.ActionDeleteItem}},
		}
		results, _ := executor.Execute(ctx, automation, doomed.ID, 1)
		require.NoError(t, results[0].Err)

		_, err := store.GetItem(ctx, doomed.ID)
		assert.ErrorIs(t, err, board.ErrNotFound)
	})
}

func TestExecutorSendNotification(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	item := seedItem(t, store)
	capture := &captureNotifier{}
	executor := newTestExecutor(store, capture)

	automation := &board.Automation{
		ID:      "a-1",
		BoardID: "board-1",
		Actions: []board.Action{
			{Type: board.ActionSendNotification, UserID: "user-1", Message: "Item is done"},
		},
	}

	results, _ := executor.Execute(ctx, automation, item.ID, 1)
	require.NoError(t, results[0].Err)

	require.Len(t, capture.sent, 1)
	assert.Equal(t, "Item is done", capture.sent[0].Message)
	assert.Equal(t, "user-1", capture.sent[0].UserID)
	assert.Equal(t, item.ID, capture.sent[0].ItemID)
	assert.Equal(t, "a-1", capture.sent[0].AutomationID)
}

func TestExecutorPauseTruncatesSequence(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	item := seedItem(t, store)
	capture := &captureNotifier{}

	paused := false
	executor := newTestExecutor(store, capture)
	executor.paused = func() bool { return paused }

	automation := &board.Automation{
		ID:      "a-1",
		BoardID: "board-1",
		Actions: []board.Action{
			{Type: board.ActionSendNotification, Message: "first"},
			{Type: board.ActionSendNotification, Message: "second"},
		},
	}

	// The gate closes after the first action is already running: the current
	// action finishes, the next one never starts.
	paused = true
	results, truncated := executor.Execute(ctx, automation, item.ID, 1)

	require.Len(t, results, 1)
	assert.True(t, truncated)
	require.Len(t, capture.sent, 1)
	assert.Equal(t, "first", capture.sent[0].Message)
}
