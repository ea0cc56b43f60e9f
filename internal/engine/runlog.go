package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/quartzboard/quartz/pkg/board"
)

// RunOutcome classifies one end-to-end pipeline execution.
type RunOutcome string

const (
	// RunSuccess - every action completed.
	RunSuccess RunOutcome = "success"

	// RunPartialFailure - an action failed; earlier actions' effects stand.
	RunPartialFailure RunOutcome = "partial_failure"

	// RunCycleDetected - the automation chain hit the depth bound and was
	// not dispatched. The pipeline never ran, so RunCount is not bumped.
	RunCycleDetected RunOutcome = "cycle_detected"
)

// RunRecord is one entry of an automation's run history. Execution-time
// errors land here (and optionally in the notifier), never synchronously at
// the user who caused the triggering event.
type RunRecord struct {
	AutomationID string           `json:"automation_id"`
	BoardID      string           `json:"board_id"`
	EventType    board.EventType  `json:"event_type"`
	ItemID       string           `json:"item_id,omitempty"`
	Outcome      RunOutcome       `json:"outcome"`
	FailedIndex  int              `json:"failed_index"` // -1 when no action failed
	Error        string           `json:"error,omitempty"`
	AtMs         int64            `json:"at_ms"`
}

// appendRun pushes a run record onto the automation's history list (newest
// first) and trims the list to the configured limit.
func appendRun(ctx context.Context, store *board.Client, rec *RunRecord, limit int) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal run record: %w", err)
	}

	key := board.AutomationRunsKey(store.InstanceName(), rec.AutomationID)
	rdb := store.RedisClient()

	if err := rdb.LPush(ctx, key, payload).Err(); err != nil {
		return fmt.Errorf("failed to append run record: %w", err)
	}
	if limit > 0 {
		if err := rdb.LTrim(ctx, key, 0, int64(limit-1)).Err(); err != nil {
			return fmt.Errorf("failed to trim run history: %w", err)
		}
	}
	return nil
}

// ListRuns returns an automation's run history, newest first. Read-only
// operational surface for the board-settings UI and CLI.
func ListRuns(ctx context.Context, store *board.Client, automationID string) ([]*RunRecord, error) {
	if _, err := store.GetAutomation(ctx, automationID); err != nil {
		return nil, err
	}

	key := board.AutomationRunsKey(store.InstanceName(), automationID)
	raw, err := store.RedisClient().LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read run history: %w", err)
	}

	records := make([]*RunRecord, 0, len(raw))
	for _, entry := range raw {
		var rec RunRecord
		if err := json.Unmarshal([]byte(entry), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run record: %w", err)
		}
		records = append(records, &rec)
	}
	return records, nil
}
