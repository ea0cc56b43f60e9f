package board

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGroup(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	t.Run("creates group with appended position", func(t *testing.T) {
		first, err := client.CreateGroup(ctx, "board-1", "Backlog", "#0073ea")
		require.NoError(t, err)
		second, err := client.CreateGroup(ctx, "board-1", "In Progress", "#fdab3d")
		require.NoError(t, err)

		assert.Equal(t, 0, first.Position)
		assert.Equal(t, 1, second.Position)

		groups, err := client.ListGroups(ctx, "board-1")
		require.NoError(t, err)
		require.Len(t, groups, 2)
		assert.Equal(t, "Backlog", groups[0].Title)
		assert.Equal(t, "In Progress", groups[1].Title)
	})

	t.Run("rejects empty title", func(t *testing.T) {
		_, err := client.CreateGroup(ctx, "board-1", "", "")
		assert.Error(t, err)
	})
}

func TestCreateItem(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	group, err := client.CreateGroup(ctx, "board-1", "Backlog", "")
	require.NoError(t, err)

	t.Run("fills ID and timestamps", func(t *testing.T) {
		item := &Item{BoardID: "board-1", GroupID: group.ID, Name: "Task one"}
		require.NoError(t, client.CreateItem(ctx, item))

		assert.NotEmpty(t, item.ID)
		assert.NotZero(t, item.CreatedAtMs)

		fetched, err := client.GetItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, "Task one", fetched.Name)
		assert.False(t, fetched.Archived)
	})

	t.Run("rejects unknown group", func(t *testing.T) {
		item := &Item{BoardID: "board-1", GroupID: "nonexistent", Name: "Orphan"}
		err := client.CreateItem(ctx, item)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("appends positions within the group", func(t *testing.T) {
		other, err := client.CreateGroup(ctx, "board-1", "Done", "")
		require.NoError(t, err)

		a := &Item{BoardID: "board-1", GroupID: other.ID, Name: "A"}
		b := &Item{BoardID: "board-1", GroupID: other.ID, Name: "B"}
		require.NoError(t, client.CreateItem(ctx, a))
		require.NoError(t, client.CreateItem(ctx, b))

		assert.Equal(t, 0, a.Position)
		assert.Equal(t, 1, b.Position)
	})

	t.Run("subitems nest one level only", func(t *testing.T) {
		parent := &Item{BoardID: "board-1", GroupID: group.ID, Name: "Parent"}
		require.NoError(t, client.CreateItem(ctx, parent))

		sub := &Item{BoardID: "board-1", GroupID: group.ID, Name: "Sub", ParentID: parent.ID}
		require.NoError(t, client.CreateItem(ctx, sub))

		subs, err := client.ListSubitems(ctx, parent.ID)
		require.NoError(t, err)
		require.Len(t, subs, 1)
		assert.Equal(t, sub.ID, subs[0].ID)

		subsub := &Item{BoardID: "board-1", GroupID: group.ID, Name: "Too deep", ParentID: sub.ID}
		err = client.CreateItem(ctx, subsub)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already a subitem")
	})
}

func TestUpdateItem(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	_, item := setupTestBoard(t, client)

	t.Run("rewrites own fields", func(t *testing.T) {
		item.Name = "Fix login bug (urgent)"
		item.Priority = PriorityUrgent
		item.DueDateMs = time.Now().Add(48 * time.Hour).UnixMilli()
		require.NoError(t, client.UpdateItem(ctx, item))

		fetched, err := client.GetItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, "Fix login bug (urgent)", fetched.Name)
		assert.Equal(t, PriorityUrgent, fetched.Priority)
	})

	t.Run("rejects group change", func(t *testing.T) {
		moved := *item
		moved.GroupID = "some-other-group"
		err := client.UpdateItem(ctx, &moved)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "MoveItemToGroup")
	})
}

func TestMoveItemToGroup(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	from, item := setupTestBoard(t, client)
	to, err := client.CreateGroup(ctx, "board-1", "Done", "")
	require.NoError(t, err)

	// Seed the destination so the moved item lands at the end.
	seed := &Item{BoardID: "board-1", GroupID: to.ID, Name: "Existing"}
	require.NoError(t, client.CreateItem(ctx, seed))

	sub, err := client.SubscribeBoardEvents(ctx)
	require.NoError(t, err)
	defer sub.Close()
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, client.MoveItemToGroup(ctx, item.ID, to.ID))

	fetched, err := client.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, to.ID, fetched.GroupID)
	assert.Equal(t, 1, fetched.Position)

	fromItems, err := client.ListItems(ctx, from.ID)
	require.NoError(t, err)
	assert.Empty(t, fromItems)

	select {
	case event := <-sub.Events():
		assert.Equal(t, EventItemMoved, event.Type)
		assert.Equal(t, from.ID, event.FromGroupID)
		assert.Equal(t, to.ID, event.ToGroupID)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for item_moved event")
	}

	t.Run("move to same group is a no-op", func(t *testing.T) {
		require.NoError(t, client.MoveItemToGroup(ctx, item.ID, to.ID))
	})

	t.Run("rejects unknown destination", func(t *testing.T) {
		err := client.MoveItemToGroup(ctx, item.ID, "nonexistent")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestArchiveItem(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	_, item := setupTestBoard(t, client)

	require.NoError(t, client.ArchiveItem(ctx, item.ID))
	fetched, err := client.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, fetched.Archived)

	require.NoError(t, client.UnarchiveItem(ctx, item.ID))
	fetched, err = client.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, fetched.Archived)
}

func TestDeleteItem(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	group, err := client.CreateGroup(ctx, "board-1", "Backlog", "")
	require.NoError(t, err)
	textCol, err := client.DefineColumn(ctx, "board-1", "Notes", ColumnTypeText, nil)
	require.NoError(t, err)

	t.Run("removes item and value records", func(t *testing.T) {
		item := &Item{BoardID: "board-1", GroupID: group.ID, Name: "Doomed"}
		require.NoError(t, client.CreateItem(ctx, item))
		_, err := client.SetValue(ctx, item.ID, textCol.ID, TextValue("scratch"))
		require.NoError(t, err)

		require.NoError(t, client.DeleteItem(ctx, item.ID, false))

		_, err = client.GetItem(ctx, item.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		items, err := client.ListItems(ctx, group.ID)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("fails with live subitems unless cascading", func(t *testing.T) {
		parent := &Item{BoardID: "board-1", GroupID: group.ID, Name: "Parent"}
		require.NoError(t, client.CreateItem(ctx, parent))
		sub := &Item{BoardID: "board-1", GroupID: group.ID, Name: "Sub", ParentID: parent.ID}
		require.NoError(t, client.CreateItem(ctx, sub))

		err := client.DeleteItem(ctx, parent.ID, false)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "subitems")

		require.NoError(t, client.DeleteItem(ctx, parent.ID, true))
		_, err = client.GetItem(ctx, parent.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = client.GetItem(ctx, sub.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("deleting a subitem unindexes it from the parent", func(t *testing.T) {
		parent := &Item{BoardID: "board-1", GroupID: group.ID, Name: "Parent 2"}
		require.NoError(t, client.CreateItem(ctx, parent))
		sub := &Item{BoardID: "board-1", GroupID: group.ID, Name: "Sub 2", ParentID: parent.ID}
		require.NoError(t, client.CreateItem(ctx, sub))

		require.NoError(t, client.DeleteItem(ctx, sub.ID, false))

		subs, err := client.ListSubitems(ctx, parent.ID)
		require.NoError(t, err)
		assert.Empty(t, subs)
	})
}

func TestDuplicateItem(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	group, item := setupTestBoard(t, client)
	textCol, err := client.DefineColumn(ctx, "board-1", "Notes", ColumnTypeText, nil)
	require.NoError(t, err)

	item.Priority = PriorityHigh
	item.Description = "Token expires too early"
	require.NoError(t, client.UpdateItem(ctx, item))
	_, err = client.SetValue(ctx, item.ID, textCol.ID, TextValue("see issue #42"))
	require.NoError(t, err)

	copyItem, err := client.DuplicateItem(ctx, item.ID)
	require.NoError(t, err)

	assert.NotEqual(t, item.ID, copyItem.ID)
	assert.Equal(t, "Fix login bug (Copy)", copyItem.Name)
	assert.Equal(t, PriorityHigh, copyItem.Priority)
	assert.Equal(t, "Token expires too early", copyItem.Description)
	assert.Equal(t, group.ID, copyItem.GroupID)

	value, err := client.GetValue(ctx, copyItem.ID, textCol.ID)
	require.NoError(t, err)
	assert.Equal(t, "see issue #42", value.Text)
}

func TestAssignPerson(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	_, item := setupTestBoard(t, client)
	peopleCol, err := client.DefineColumn(ctx, "board-1", "Owner", ColumnTypePeople, nil)
	require.NoError(t, err)
	textCol, err := client.DefineColumn(ctx, "board-1", "Notes", ColumnTypeText, nil)
	require.NoError(t, err)

	sub, err := client.SubscribeBoardEvents(ctx)
	require.NoError(t, err)
	defer sub.Close()
	time.Sleep(50 * time.Millisecond)

	t.Run("adds user and publishes assignment_added", func(t *testing.T) {
		require.NoError(t, client.AssignPerson(ctx, item.ID, peopleCol.ID, "user-7"))

		value, err := client.GetValue(ctx, item.ID, peopleCol.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"user-7"}, value.People)

		select {
		case event := <-sub.Events():
			assert.Equal(t, EventAssignmentAdded, event.Type)
			assert.Equal(t, "user-7", event.UserID)
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for assignment_added event")
		}
	})

	t.Run("re-assign is a silent no-op", func(t *testing.T) {
		require.NoError(t, client.AssignPerson(ctx, item.ID, peopleCol.ID, "user-7"))

		value, err := client.GetValue(ctx, item.ID, peopleCol.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"user-7"}, value.People)

		select {
		case event := <-sub.Events():
			t.Fatalf("unexpected event %s for idempotent re-assign", event.Type)
		case <-time.After(200 * time.Millisecond):
		}
	})

	t.Run("rejects non-people column", func(t *testing.T) {
		err := client.AssignPerson(ctx, item.ID, textCol.ID, "user-7")
		assert.ErrorIs(t, err, ErrValueTypeMismatch)
	})
}

func TestAddLabel(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	_, item := setupTestBoard(t, client)
	labelsCol, err := client.DefineColumn(ctx, "board-1", "Tags", ColumnTypeLabels, nil)
	require.NoError(t, err)
	textCol, err := client.DefineColumn(ctx, "board-1", "Notes", ColumnTypeText, nil)
	require.NoError(t, err)

	sub, err := client.SubscribeBoardEvents(ctx)
	require.NoError(t, err)
	defer sub.Close()
	time.Sleep(50 * time.Millisecond)

	t.Run("adds label and publishes column_changed", func(t *testing.T) {
		require.NoError(t, client.AddLabel(ctx, item.ID, labelsCol.ID, "urgent"))

		value, err := client.GetValue(ctx, item.ID, labelsCol.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"urgent"}, value.Labels)

		select {
		case event := <-sub.Events():
			assert.Equal(t, EventColumnChanged, event.Type)
			require.NotNil(t, event.NewValue)
			assert.Equal(t, []string{"urgent"}, event.NewValue.Labels)
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for column_changed event")
		}
	})

	t.Run("re-add is a silent no-op", func(t *testing.T) {
		require.NoError(t, client.AddLabel(ctx, item.ID, labelsCol.ID, "urgent"))

		value, err := client.GetValue(ctx, item.ID, labelsCol.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"urgent"}, value.Labels)

		select {
		case event := <-sub.Events():
			t.Fatalf("unexpected event %s for idempotent re-add", event.Type)
		case <-time.After(200 * time.Millisecond):
		}
	})

	t.Run("rejects non-labels column", func(t *testing.T) {
		err := client.AddLabel(ctx, item.ID, textCol.ID, "urgent")
		assert.ErrorIs(t, err, ErrValueTypeMismatch)
	})
}

// Two writers racing label adds on the same (item, column) pair must both
// land: the item lock covers the read and the write, so neither union can
// be built from a stale snapshot.
func TestAddLabelConcurrentWritersBothLand(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	group, _ := setupTestBoard(t, client)
	labelsCol, err := client.DefineColumn(ctx, "board-1", "Tags", ColumnTypeLabels, nil)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		item := &Item{BoardID: "board-1", GroupID: group.ID, Name: "Race target"}
		require.NoError(t, client.CreateItem(ctx, item))

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for j, labelID := range []string{"alpha", "beta"} {
			wg.Add(1)
			go func(slot int, label string) {
				defer wg.Done()
				errs[slot] = client.AddLabel(ctx, item.ID, labelsCol.ID, label)
			}(j, labelID)
		}
		wg.Wait()
		require.NoError(t, errs[0])
		require.NoError(t, errs[1])

		value, err := client.GetValue(ctx, item.ID, labelsCol.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"alpha", "beta"}, value.Labels)
	}
}
