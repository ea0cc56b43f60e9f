package board

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Client provides instance-scoped Redis operations for the board store.
// All keys and channels are automatically namespaced with the instance name.
// The client is thread-safe and can be used concurrently from multiple
// goroutines.
//
// SetValue is the single write path for column values: every component
// (user edits, automation actions) funnels value mutations through it, which
// is what keeps the polymorphic validation centralized. Writes to the same
// item are serialized by a per-item lock; reads run concurrently with each
// other but not with a write on the same item.
type Client struct {
	rdb          *redis.Client
	instanceName string

	mu        sync.Mutex
	itemLocks map[string]*sync.RWMutex
}

// WriteOption configures a store mutation.
type WriteOption func(*writeMeta)

type writeMeta struct {
	chainDepth int
}

// WithChainDepth tags the events published by a mutation with an automation
// chain depth. User-originated mutations omit this (depth 0); the engine
// passes the triggering event's depth + 1 so that automation-triggered
// automations stay bounded.
func WithChainDepth(depth int) WriteOption {
	return func(m *writeMeta) {
		m.chainDepth = depth
	}
}

func applyWriteOptions(opts []WriteOption) writeMeta {
	var m writeMeta
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// NewClient creates a new board store client for the specified instance.
//
// Parameters:
//   - redisOpts: Redis connection options (address, password, DB, etc.)
//   - instanceName: Quartz instance identifier (must not be empty)
//
// Returns an error if instanceName is empty.
func NewClient(redisOpts *redis.Options, instanceName string) (*Client, error) {
	if instanceName == "" {
		return nil, fmt.Errorf("instance name cannot be empty")
	}

	return &Client{
		rdb:          redis.NewClient(redisOpts),
		instanceName: instanceName,
		itemLocks:    make(map[string]*sync.RWMutex),
	}, nil
}

// Close closes the Redis connection. Implements io.Closer.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping verifies Redis connectivity. Useful for health checks.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// InstanceName returns the instance this client is scoped to.
func (c *Client) InstanceName() string {
	return c.instanceName
}

// RedisClient exposes the underlying Redis client for SCAN-based listing.
func (c *Client) RedisClient() *redis.Client {
	return c.rdb
}

// itemLock returns the lock guarding mutations of a single item, creating it
// on first use. Locks are scoped per item, not globally.
func (c *Client) itemLock(itemID string) *sync.RWMutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	lock, ok := c.itemLocks[itemID]
	if !ok {
		lock = &sync.RWMutex{}
		c.itemLocks[itemID] = lock
	}
	return lock
}

// DefineColumn creates a column on a board. Fails with ErrInvalidSettings if
// the column type requires settings and they are absent or malformed. The
// column is appended at the end of the board's display order.
func (c *Client) DefineColumn(ctx context.Context, boardID, title string, columnType ColumnType, settings *ColumnSettings) (*Column, error) {
	if err := settings.ValidateFor(columnType); err != nil {
		return nil, err
	}

	position, err := c.rdb.ZCard(ctx, BoardColumnsKey(c.instanceName, boardID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to count board columns: %w", err)
	}

	column := &Column{
		ID:          uuid.New().String(),
		BoardID:     boardID,
		Title:       title,
		Type:        columnType,
		Position:    int(position),
		Settings:    settings,
		CreatedAtMs: time.Now().UnixMilli(),
	}
	if err := column.Validate(); err != nil {
		return nil, fmt.Errorf("invalid column: %w", err)
	}

	if err := c.writeColumn(ctx, column); err != nil {
		return nil, err
	}

	z := redis.Z{Score: float64(column.Position), Member: column.ID}
	if err := c.rdb.ZAdd(ctx, BoardColumnsKey(c.instanceName, boardID), z).Err(); err != nil {
		return nil, fmt.Errorf("failed to index column: %w", err)
	}

	return column, nil
}

func (c *Client) writeColumn(ctx context.Context, column *Column) error {
	hash, err := ColumnToHash(column)
	if err != nil {
		return fmt.Errorf("failed to serialize column: %w", err)
	}

	key := ColumnKey(c.instanceName, column.ID)
	if err := c.rdb.HSet(ctx, key, hash).Err(); err != nil {
		return fmt.Errorf("failed to write column to Redis: %w", err)
	}
	return nil
}

// GetColumn retrieves a column by ID. Returns ErrNotFound if it doesn't exist.
func (c *Client) GetColumn(ctx context.Context, columnID string) (*Column, error) {
	key := ColumnKey(c.instanceName, columnID)

	hashData, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read column from Redis: %w", err)
	}
	if len(hashData) == 0 {
		return nil, fmt.Errorf("column %s: %w", columnID, ErrNotFound)
	}

	column, err := HashToColumn(hashData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize column: %w", err)
	}
	return column, nil
}

// UpdateColumnSettings replaces a column's settings blob, revalidating it
// against the column's type.
func (c *Client) UpdateColumnSettings(ctx context.Context, columnID string, settings *ColumnSettings) error {
	column, err := c.GetColumn(ctx, columnID)
	if err != nil {
		return err
	}
	if err := settings.ValidateFor(column.Type); err != nil {
		return err
	}
	column.Settings = settings
	return c.writeColumn(ctx, column)
}

// RenameColumn changes a column's title.
func (c *Client) RenameColumn(ctx context.Context, columnID, title string) error {
	column, err := c.GetColumn(ctx, columnID)
	if err != nil {
		return err
	}
	if title == "" {
		return fmt.Errorf("column title cannot be empty")
	}
	column.Title = title
	return c.writeColumn(ctx, column)
}

// ListColumns returns a board's columns in display order, including hidden
// ones (callers filter on Hidden as needed).
func (c *Client) ListColumns(ctx context.Context, boardID string) ([]*Column, error) {
	ids, err := c.rdb.ZRange(ctx, BoardColumnsKey(c.instanceName, boardID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list board columns: %w", err)
	}

	columns := make([]*Column, 0, len(ids))
	for _, id := range ids {
		column, err := c.GetColumn(ctx, id)
		if err != nil {
			return nil, err
		}
		columns = append(columns, column)
	}
	return columns, nil
}

// ReorderColumns rewrites a board's column display order. newOrderedIDs must
// contain exactly the board's current column IDs. Pure metadata operation.
func (c *Client) ReorderColumns(ctx context.Context, boardID string, newOrderedIDs []string) error {
	key := BoardColumnsKey(c.instanceName, boardID)
	current, err := c.rdb.ZRange(ctx, key, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to read board columns: %w", err)
	}

	if len(current) != len(newOrderedIDs) {
		return fmt.Errorf("reorder must include all %d columns, got %d", len(current), len(newOrderedIDs))
	}
	existing := make(map[string]bool, len(current))
	for _, id := range current {
		existing[id] = true
	}
	for _, id := range newOrderedIDs {
		if !existing[id] {
			return fmt.Errorf("column %s is not on board %s: %w", id, boardID, ErrNotFound)
		}
	}

	for position, id := range newOrderedIDs {
		z := redis.Z{Score: float64(position), Member: id}
		if err := c.rdb.ZAdd(ctx, key, z).Err(); err != nil {
			return fmt.Errorf("failed to reorder column %s: %w", id, err)
		}

		column, err := c.GetColumn(ctx, id)
		if err != nil {
			return err
		}
		column.Position = position
		if err := c.writeColumn(ctx, column); err != nil {
			return err
		}
	}
	return nil
}

// SetColumnVisibility hides or shows a column. Hiding is the soft-removal
// path: value records stay intact while items still reference the column.
func (c *Client) SetColumnVisibility(ctx context.Context, columnID string, visible bool) error {
	column, err := c.GetColumn(ctx, columnID)
	if err != nil {
		return err
	}
	column.Hidden = !visible
	return c.writeColumn(ctx, column)
}

// SetValue validates and writes a value for an (item, column) pair, replacing
// any prior value, and publishes a StatusChanged or ColumnChanged event.
// This is the single mutation point for column values.
//
// Fails with ErrValueTypeMismatch or ErrValueOutOfRange when the value
// violates the owning column's type contract, ErrNotFound for an unknown
// item or column. No event is published when the write leaves the value
// unchanged.
func (c *Client) SetValue(ctx context.Context, itemID, columnID string, value Value, opts ...WriteOption) (*ColumnValue, error) {
	meta := applyWriteOptions(opts)

	column, err := c.GetColumn(ctx, columnID)
	if err != nil {
		return nil, err
	}
	item, err := c.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if err := column.ValidateValue(value); err != nil {
		return nil, err
	}

	lock := c.itemLock(itemID)
	lock.Lock()
	defer lock.Unlock()

	oldValue, err := c.readValue(ctx, itemID, columnID)
	if err != nil {
		return nil, err
	}

	cv := &ColumnValue{
		ItemID:      itemID,
		ColumnID:    columnID,
		Value:       value,
		UpdatedAtMs: time.Now().UnixMilli(),
	}
	hash, err := ColumnValueToHash(cv)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize value: %w", err)
	}

	key := ValueKey(c.instanceName, itemID, columnID)
	if err := c.rdb.HSet(ctx, key, hash).Err(); err != nil {
		return nil, fmt.Errorf("failed to write value to Redis: %w", err)
	}
	if err := c.rdb.SAdd(ctx, ItemValuesKey(c.instanceName, itemID), columnID).Err(); err != nil {
		return nil, fmt.Errorf("failed to index value: %w", err)
	}

	if !oldValue.Equal(value) {
		eventType := EventColumnChanged
		if column.Type == ColumnTypeStatus {
			eventType = EventStatusChanged
		}
		old := oldValue
		event := &Event{
			Type:       eventType,
			BoardID:    item.BoardID,
			ItemID:     itemID,
			ColumnID:   columnID,
			OldValue:   &old,
			NewValue:   &value,
			ChainDepth: meta.chainDepth,
			AtMs:       cv.UpdatedAtMs,
		}
		if err := c.PublishEvent(ctx, event); err != nil {
			return nil, err
		}
	}

	return cv, nil
}

// GetValue retrieves the value for an (item, column) pair. Absence is a
// first-class state: a missing value returns Unset with a nil error. Only an
// unknown column or item is an error.
func (c *Client) GetValue(ctx context.Context, itemID, columnID string) (Value, error) {
	if _, err := c.GetColumn(ctx, columnID); err != nil {
		return Unset(), err
	}
	if _, err := c.GetItem(ctx, itemID); err != nil {
		return Unset(), err
	}

	lock := c.itemLock(itemID)
	lock.RLock()
	defer lock.RUnlock()

	return c.readValue(ctx, itemID, columnID)
}

// readValue fetches a value without existence checks or locking. Callers
// hold the item lock.
func (c *Client) readValue(ctx context.Context, itemID, columnID string) (Value, error) {
	key := ValueKey(c.instanceName, itemID, columnID)

	hashData, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return Unset(), fmt.Errorf("failed to read value from Redis: %w", err)
	}
	if len(hashData) == 0 {
		return Unset(), nil
	}

	cv, err := HashToColumnValue(hashData)
	if err != nil {
		return Unset(), fmt.Errorf("failed to deserialize value: %w", err)
	}
	return cv.Value, nil
}
