package board

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Item and group operations. Item mutations that automations can observe
// (create, move, assignment) publish board events; the chain depth of the
// originating automation, if any, is carried via WithChainDepth.

// CreateGroup creates a board subdivision. Position is appended at the end
// of the board's group order.
func (c *Client) CreateGroup(ctx context.Context, boardID, title, color string) (*Group, error) {
	position, err := c.rdb.ZCard(ctx, BoardGroupsKey(c.instanceName, boardID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to count board groups: %w", err)
	}

	group := &Group{
		ID:       uuid.New().String(),
		BoardID:  boardID,
		Title:    title,
		Position: int(position),
		Color:    color,
	}
	if err := group.Validate(); err != nil {
		return nil, fmt.Errorf("invalid group: %w", err)
	}

	key := GroupKey(c.instanceName, group.ID)
	if err := c.rdb.HSet(ctx, key, GroupToHash(group)).Err(); err != nil {
		return nil, fmt.Errorf("failed to write group to Redis: %w", err)
	}

	z := redis.Z{Score: float64(group.Position), Member: group.ID}
	if err := c.rdb.ZAdd(ctx, BoardGroupsKey(c.instanceName, boardID), z).Err(); err != nil {
		return nil, fmt.Errorf("failed to index group: %w", err)
	}

	return group, nil
}

// GetGroup retrieves a group by ID. Returns ErrNotFound if it doesn't exist.
func (c *Client) GetGroup(ctx context.Context, groupID string) (*Group, error) {
	key := GroupKey(c.instanceName, groupID)

	hashData, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read group from Redis: %w", err)
	}
	if len(hashData) == 0 {
		return nil, fmt.Errorf("group %s: %w", groupID, ErrNotFound)
	}

	return HashToGroup(hashData)
}

// ListGroups returns a board's groups in display order.
func (c *Client) ListGroups(ctx context.Context, boardID string) ([]*Group, error) {
	ids, err := c.rdb.ZRange(ctx, BoardGroupsKey(c.instanceName, boardID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list board groups: %w", err)
	}

	groups := make([]*Group, 0, len(ids))
	for _, id := range ids {
		group, err := c.GetGroup(ctx, id)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// CreateItem creates an item in a group and publishes an ItemCreated event.
// The item's ID and timestamps are filled in if absent; position is appended
// at the end of the group.
func (c *Client) CreateItem(ctx context.Context, item *Item, opts ...WriteOption) error {
	meta := applyWriteOptions(opts)

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.CreatedAtMs == 0 {
		item.CreatedAtMs = time.Now().UnixMilli()
	}

	if _, err := c.GetGroup(ctx, item.GroupID); err != nil {
		return err
	}
	if item.ParentID != "" {
		parent, err := c.GetItem(ctx, item.ParentID)
		if err != nil {
			return err
		}
		// Subitems nest one level only.
		if parent.ParentID != "" {
			return fmt.Errorf("item %s is already a subitem and cannot have subitems", parent.ID)
		}
	}

	position, err := c.rdb.ZCard(ctx, GroupItemsKey(c.instanceName, item.GroupID)).Result()
	if err != nil {
		return fmt.Errorf("failed to count group items: %w", err)
	}
	item.Position = int(position)

	if err := item.Validate(); err != nil {
		return fmt.Errorf("invalid item: %w", err)
	}

	key := ItemKey(c.instanceName, item.ID)
	if err := c.rdb.HSet(ctx, key, ItemToHash(item)).Err(); err != nil {
		return fmt.Errorf("failed to write item to Redis: %w", err)
	}

	z := redis.Z{Score: float64(item.Position), Member: item.ID}
	if err := c.rdb.ZAdd(ctx, GroupItemsKey(c.instanceName, item.GroupID), z).Err(); err != nil {
		return fmt.Errorf("failed to index item: %w", err)
	}

	if item.ParentID != "" {
		if err := c.rdb.SAdd(ctx, ItemSubitemsKey(c.instanceName, item.ParentID), item.ID).Err(); err != nil {
			return fmt.Errorf("failed to index subitem: %w", err)
		}
	}

	return c.PublishEvent(ctx, &Event{
		Type:       EventItemCreated,
		BoardID:    item.BoardID,
		ItemID:     item.ID,
		ChainDepth: meta.chainDepth,
		AtMs:       time.Now().UnixMilli(),
	})
}

// GetItem retrieves an item by ID. Returns ErrNotFound if it doesn't exist.
func (c *Client) GetItem(ctx context.Context, itemID string) (*Item, error) {
	key := ItemKey(c.instanceName, itemID)

	hashData, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read item from Redis: %w", err)
	}
	if len(hashData) == 0 {
		return nil, fmt.Errorf("item %s: %w", itemID, ErrNotFound)
	}

	return HashToItem(hashData)
}

// ListItems returns a group's items in display order.
func (c *Client) ListItems(ctx context.Context, groupID string) ([]*Item, error) {
	ids, err := c.rdb.ZRange(ctx, GroupItemsKey(c.instanceName, groupID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list group items: %w", err)
	}

	items := make([]*Item, 0, len(ids))
	for _, id := range ids {
		item, err := c.GetItem(ctx, id)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// ListSubitems returns an item's direct subitems.
func (c *Client) ListSubitems(ctx context.Context, itemID string) ([]*Item, error) {
	ids, err := c.rdb.SMembers(ctx, ItemSubitemsKey(c.instanceName, itemID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list subitems: %w", err)
	}

	items := make([]*Item, 0, len(ids))
	for _, id := range ids {
		item, err := c.GetItem(ctx, id)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// UpdateItem rewrites an item's own fields (name, description, priority, due
// date). Group membership changes go through MoveItemToGroup, archival
// through ArchiveItem.
func (c *Client) UpdateItem(ctx context.Context, item *Item) error {
	existing, err := c.GetItem(ctx, item.ID)
	if err != nil {
		return err
	}
	if item.GroupID != existing.GroupID {
		return fmt.Errorf("use MoveItemToGroup to change an item's group")
	}
	if err := item.Validate(); err != nil {
		return fmt.Errorf("invalid item: %w", err)
	}

	lock := c.itemLock(item.ID)
	lock.Lock()
	defer lock.Unlock()

	key := ItemKey(c.instanceName, item.ID)
	if err := c.rdb.HSet(ctx, key, ItemToHash(item)).Err(); err != nil {
		return fmt.Errorf("failed to update item in Redis: %w", err)
	}
	return nil
}

// MoveItemToGroup reassigns an item to another group, recomputing its
// position at the end of the destination, and publishes an ItemMoved event.
func (c *Client) MoveItemToGroup(ctx context.Context, itemID, toGroupID string, opts ...WriteOption) error {
	meta := applyWriteOptions(opts)

	item, err := c.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	if _, err := c.GetGroup(ctx, toGroupID); err != nil {
		return err
	}
	if item.GroupID == toGroupID {
		return nil
	}

	lock := c.itemLock(itemID)
	lock.Lock()
	defer lock.Unlock()

	fromGroupID := item.GroupID

	if err := c.rdb.ZRem(ctx, GroupItemsKey(c.instanceName, fromGroupID), itemID).Err(); err != nil {
		return fmt.Errorf("failed to remove item from group index: %w", err)
	}

	position, err := c.rdb.ZCard(ctx, GroupItemsKey(c.instanceName, toGroupID)).Result()
	if err != nil {
		return fmt.Errorf("failed to count destination group items: %w", err)
	}

	item.GroupID = toGroupID
	item.Position = int(position)

	key := ItemKey(c.instanceName, itemID)
	if err := c.rdb.HSet(ctx, key, ItemToHash(item)).Err(); err != nil {
		return fmt.Errorf("failed to update item in Redis: %w", err)
	}

	z := redis.Z{Score: float64(item.Position), Member: itemID}
	if err := c.rdb.ZAdd(ctx, GroupItemsKey(c.instanceName, toGroupID), z).Err(); err != nil {
		return fmt.Errorf("failed to index item in destination group: %w", err)
	}

	return c.PublishEvent(ctx, &Event{
		Type:        EventItemMoved,
		BoardID:     item.BoardID,
		ItemID:      itemID,
		FromGroupID: fromGroupID,
		ToGroupID:   toGroupID,
		ChainDepth:  meta.chainDepth,
		AtMs:        time.Now().UnixMilli(),
	})
}

// ArchiveItem sets the item's soft archive flag. Reversible via
// UnarchiveItem.
func (c *Client) ArchiveItem(ctx context.Context, itemID string) error {
	return c.setArchived(ctx, itemID, true)
}

// UnarchiveItem clears the item's archive flag.
func (c *Client) UnarchiveItem(ctx context.Context, itemID string) error {
	return c.setArchived(ctx, itemID, false)
}

func (c *Client) setArchived(ctx context.Context, itemID string, archived bool) error {
	item, err := c.GetItem(ctx, itemID)
	if err != nil {
		return err
	}

	lock := c.itemLock(itemID)
	lock.Lock()
	defer lock.Unlock()

	item.Archived = archived
	key := ItemKey(c.instanceName, itemID)
	if err := c.rdb.HSet(ctx, key, ItemToHash(item)).Err(); err != nil {
		return fmt.Errorf("failed to update item in Redis: %w", err)
	}
	return nil
}

// DeleteItem permanently removes an item and its value records. When the
// item still has subitems, the delete fails unless cascade is set, in which
// case subitems are deleted too (they nest one level, so the cascade does
// not recurse further).
func (c *Client) DeleteItem(ctx context.Context, itemID string, cascade bool) error {
	item, err := c.GetItem(ctx, itemID)
	if err != nil {
		return err
	}

	subitemIDs, err := c.rdb.SMembers(ctx, ItemSubitemsKey(c.instanceName, itemID)).Result()
	if err != nil {
		return fmt.Errorf("failed to list subitems: %w", err)
	}
	if len(subitemIDs) > 0 && !cascade {
		return fmt.Errorf("item %s has %d subitems", itemID, len(subitemIDs))
	}
	for _, subID := range subitemIDs {
		if err := c.deleteItemRecord(ctx, subID); err != nil {
			return err
		}
	}

	if err := c.deleteItemRecord(ctx, itemID); err != nil {
		return err
	}
	if item.ParentID != "" {
		if err := c.rdb.SRem(ctx, ItemSubitemsKey(c.instanceName, item.ParentID), itemID).Err(); err != nil {
			return fmt.Errorf("failed to unindex subitem: %w", err)
		}
	}
	return nil
}

// deleteItemRecord removes one item's hash, group index entry, value records,
// and subitem set.
func (c *Client) deleteItemRecord(ctx context.Context, itemID string) error {
	item, err := c.GetItem(ctx, itemID)
	if err != nil {
		return err
	}

	lock := c.itemLock(itemID)
	lock.Lock()
	defer lock.Unlock()

	columnIDs, err := c.rdb.SMembers(ctx, ItemValuesKey(c.instanceName, itemID)).Result()
	if err != nil {
		return fmt.Errorf("failed to list item values: %w", err)
	}
	for _, columnID := range columnIDs {
		if err := c.rdb.Del(ctx, ValueKey(c.instanceName, itemID, columnID)).Err(); err != nil {
			return fmt.Errorf("failed to delete value record: %w", err)
		}
	}

	keys := []string{
		ItemValuesKey(c.instanceName, itemID),
		ItemSubitemsKey(c.instanceName, itemID),
		ItemKey(c.instanceName, itemID),
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete item from Redis: %w", err)
	}

	if err := c.rdb.ZRem(ctx, GroupItemsKey(c.instanceName, item.GroupID), itemID).Err(); err != nil {
		return fmt.Errorf("failed to unindex item: %w", err)
	}
	return nil
}

// DuplicateItem creates a copy of an item in the same group, copying name
// (with a " (Copy)" suffix), description, priority, due date, and all column
// values. Publishes an ItemCreated event for the copy.
func (c *Client) DuplicateItem(ctx context.Context, itemID string, opts ...WriteOption) (*Item, error) {
	source, err := c.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	copyItem := &Item{
		ID:          uuid.New().String(),
		BoardID:     source.BoardID,
		GroupID:     source.GroupID,
		Name:        source.Name + " (Copy)",
		Description: source.Description,
		Priority:    source.Priority,
		DueDateMs:   source.DueDateMs,
		CreatedAtMs: time.Now().UnixMilli(),
	}
	if err := c.CreateItem(ctx, copyItem, opts...); err != nil {
		return nil, err
	}

	// Copy value records directly: they were validated when first written,
	// so the copy bypasses SetValue and publishes no per-column events.
	columnIDs, err := c.rdb.SMembers(ctx, ItemValuesKey(c.instanceName, itemID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list item values: %w", err)
	}
	for _, columnID := range columnIDs {
		value, err := c.readValue(ctx, itemID, columnID)
		if err != nil {
			return nil, err
		}
		cv := &ColumnValue{
			ItemID:      copyItem.ID,
			ColumnID:    columnID,
			Value:       value,
			UpdatedAtMs: time.Now().UnixMilli(),
		}
		hash, err := ColumnValueToHash(cv)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize value: %w", err)
		}
		if err := c.rdb.HSet(ctx, ValueKey(c.instanceName, copyItem.ID, columnID), hash).Err(); err != nil {
			return nil, fmt.Errorf("failed to copy value record: %w", err)
		}
		if err := c.rdb.SAdd(ctx, ItemValuesKey(c.instanceName, copyItem.ID), columnID).Err(); err != nil {
			return nil, fmt.Errorf("failed to index copied value: %w", err)
		}
	}

	return copyItem, nil
}

// AssignPerson adds a user to a people column's value set. Idempotent:
// adding an already-present user is a no-op and publishes no event. An
// actual add publishes an AssignmentAdded event.
func (c *Client) AssignPerson(ctx context.Context, itemID, columnID, userID string, opts ...WriteOption) error {
	meta := applyWriteOptions(opts)

	column, err := c.GetColumn(ctx, columnID)
	if err != nil {
		return err
	}
	if column.Type != ColumnTypePeople {
		return fmt.Errorf("column %q is %s, not people: %w", column.Title, column.Type, ErrValueTypeMismatch)
	}
	item, err := c.GetItem(ctx, itemID)
	if err != nil {
		return err
	}

	lock := c.itemLock(itemID)
	lock.Lock()
	defer lock.Unlock()

	current, err := c.readValue(ctx, itemID, columnID)
	if err != nil {
		return err
	}
	people := current.People
	for _, existing := range people {
		if existing == userID {
			return nil
		}
	}

	updated := Value{Kind: KindPeople, People: append(append([]string(nil), people...), userID)}
	cv := &ColumnValue{
		ItemID:      itemID,
		ColumnID:    columnID,
		Value:       updated,
		UpdatedAtMs: time.Now().UnixMilli(),
	}
	hash, err := ColumnValueToHash(cv)
	if err != nil {
		return fmt.Errorf("failed to serialize value: %w", err)
	}
	if err := c.rdb.HSet(ctx, ValueKey(c.instanceName, itemID, columnID), hash).Err(); err != nil {
		return fmt.Errorf("failed to write value to Redis: %w", err)
	}
	if err := c.rdb.SAdd(ctx, ItemValuesKey(c.instanceName, itemID), columnID).Err(); err != nil {
		return fmt.Errorf("failed to index value: %w", err)
	}

	return c.PublishEvent(ctx, &Event{
		Type:       EventAssignmentAdded,
		BoardID:    item.BoardID,
		ItemID:     itemID,
		ColumnID:   columnID,
		UserID:     userID,
		ChainDepth: meta.chainDepth,
		AtMs:       time.Now().UnixMilli(),
	})
}

// AddLabel set-unions one label onto a labels column's value. Idempotent:
// adding an already-present label is a no-op and publishes no event. The
// item lock is held across the read and the write so a concurrent writer
// cannot interleave and drop the added label.
func (c *Client) AddLabel(ctx context.Context, itemID, columnID, labelID string, opts ...WriteOption) error {
	meta := applyWriteOptions(opts)

	column, err := c.GetColumn(ctx, columnID)
	if err != nil {
		return err
	}
	if column.Type != ColumnTypeLabels {
		return fmt.Errorf("column %q is %s, not labels: %w", column.Title, column.Type, ErrValueTypeMismatch)
	}
	item, err := c.GetItem(ctx, itemID)
	if err != nil {
		return err
	}

	lock := c.itemLock(itemID)
	lock.Lock()
	defer lock.Unlock()

	current, err := c.readValue(ctx, itemID, columnID)
	if err != nil {
		return err
	}
	for _, existing := range current.Labels {
		if existing == labelID {
			return nil
		}
	}

	updated := Value{Kind: KindLabels, Labels: append(append([]string(nil), current.Labels...), labelID)}
	cv := &ColumnValue{
		ItemID:      itemID,
		ColumnID:    columnID,
		Value:       updated,
		UpdatedAtMs: time.Now().UnixMilli(),
	}
	hash, err := ColumnValueToHash(cv)
	if err != nil {
		return fmt.Errorf("failed to serialize value: %w", err)
	}
	if err := c.rdb.HSet(ctx, ValueKey(c.instanceName, itemID, columnID), hash).Err(); err != nil {
		return fmt.Errorf("failed to write value to Redis: %w", err)
	}
	if err := c.rdb.SAdd(ctx, ItemValuesKey(c.instanceName, itemID), columnID).Err(); err != nil {
		return fmt.Errorf("failed to index value: %w", err)
	}

	old := current
	return c.PublishEvent(ctx, &Event{
		Type:       EventColumnChanged,
		BoardID:    item.BoardID,
		ItemID:     itemID,
		ColumnID:   columnID,
		OldValue:   &old,
		NewValue:   &updated,
		ChainDepth: meta.chainDepth,
		AtMs:       cv.UpdatedAtMs,
	})
}
