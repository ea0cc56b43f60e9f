package board

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Automation CRUD. Validation here is authoritative: the builder UI mirrors
// it client-side, but a definition is only saveable if it passes Validate at
// the store.

// CreateAutomation validates and stores an automation. Fails with
// ErrInvalidAutomation when the trigger is missing or the action list is
// empty. Automations start enabled; run metadata starts at zero regardless
// of what the caller set.
func (c *Client) CreateAutomation(ctx context.Context, a *Automation) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAtMs == 0 {
		a.CreatedAtMs = time.Now().UnixMilli()
	}
	a.Active = true
	a.RunCount = 0
	a.LastRunMs = 0

	if err := a.Validate(); err != nil {
		return fmt.Errorf("invalid automation: %w", err)
	}

	if err := c.writeAutomation(ctx, a); err != nil {
		return err
	}

	z := redis.Z{Score: float64(a.CreatedAtMs), Member: a.ID}
	if err := c.rdb.ZAdd(ctx, BoardAutomationsKey(c.instanceName, a.BoardID), z).Err(); err != nil {
		return fmt.Errorf("failed to index automation: %w", err)
	}
	return nil
}

func (c *Client) writeAutomation(ctx context.Context, a *Automation) error {
	hash, err := AutomationToHash(a)
	if err != nil {
		return fmt.Errorf("failed to serialize automation: %w", err)
	}

	key := AutomationKey(c.instanceName, a.ID)
	if err := c.rdb.HSet(ctx, key, hash).Err(); err != nil {
		return fmt.Errorf("failed to write automation to Redis: %w", err)
	}
	return nil
}

// GetAutomation retrieves an automation by ID. Returns ErrNotFound if it
// doesn't exist.
func (c *Client) GetAutomation(ctx context.Context, automationID string) (*Automation, error) {
	key := AutomationKey(c.instanceName, automationID)

	hashData, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read automation from Redis: %w", err)
	}
	if len(hashData) == 0 {
		return nil, fmt.Errorf("automation %s: %w", automationID, ErrNotFound)
	}

	automation, err := HashToAutomation(hashData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize automation: %w", err)
	}
	return automation, nil
}

// UpdateAutomation replaces an automation's definition (name, trigger,
// conditions, actions, active flag). Run metadata is preserved from the
// stored record - it is mutated only by the engine, never by callers.
func (c *Client) UpdateAutomation(ctx context.Context, a *Automation) error {
	existing, err := c.GetAutomation(ctx, a.ID)
	if err != nil {
		return err
	}

	a.BoardID = existing.BoardID
	a.CreatedAtMs = existing.CreatedAtMs
	a.RunCount = existing.RunCount
	a.LastRunMs = existing.LastRunMs

	if err := a.Validate(); err != nil {
		return fmt.Errorf("invalid automation: %w", err)
	}
	return c.writeAutomation(ctx, a)
}

// ToggleAutomation flips an automation between enabled and disabled. A
// disabled automation's pipeline is never invoked, regardless of matching
// events.
func (c *Client) ToggleAutomation(ctx context.Context, automationID string, active bool) error {
	a, err := c.GetAutomation(ctx, automationID)
	if err != nil {
		return err
	}
	a.Active = active
	return c.writeAutomation(ctx, a)
}

// DeleteAutomation removes an automation, its board index entry, and its run
// history.
func (c *Client) DeleteAutomation(ctx context.Context, automationID string) error {
	a, err := c.GetAutomation(ctx, automationID)
	if err != nil {
		return err
	}

	keys := []string{
		AutomationKey(c.instanceName, automationID),
		AutomationRunsKey(c.instanceName, automationID),
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete automation from Redis: %w", err)
	}
	if err := c.rdb.ZRem(ctx, BoardAutomationsKey(c.instanceName, a.BoardID), automationID).Err(); err != nil {
		return fmt.Errorf("failed to unindex automation: %w", err)
	}
	return nil
}

// ListAutomations returns a board's automations in creation order.
func (c *Client) ListAutomations(ctx context.Context, boardID string) ([]*Automation, error) {
	ids, err := c.rdb.ZRange(ctx, BoardAutomationsKey(c.instanceName, boardID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list board automations: %w", err)
	}

	automations := make([]*Automation, 0, len(ids))
	for _, id := range ids {
		automation, err := c.GetAutomation(ctx, id)
		if err != nil {
			return nil, err
		}
		automations = append(automations, automation)
	}
	return automations, nil
}

// RecordRun bumps an automation's run bookkeeping: RunCount increments and
// LastRunMs is set, on every pipeline completion including partial failures.
// Engine-only; the UI never calls this.
func (c *Client) RecordRun(ctx context.Context, automationID string, atMs int64) error {
	key := AutomationKey(c.instanceName, automationID)

	exists, err := c.rdb.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to check automation existence: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("automation %s: %w", automationID, ErrNotFound)
	}

	if err := c.rdb.HIncrBy(ctx, key, "run_count", 1).Err(); err != nil {
		return fmt.Errorf("failed to increment run count: %w", err)
	}
	if err := c.rdb.HSet(ctx, key, "last_run_ms", atMs).Err(); err != nil {
		return fmt.Errorf("failed to set last run: %w", err)
	}
	return nil
}
