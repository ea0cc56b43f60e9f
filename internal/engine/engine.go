// Package engine implements the automation engine: it watches board change
// events and runs every enabled automation's trigger → condition → action
// pipeline against them, recording run statistics and history.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/quartzboard/quartz/internal/notify"
	"github.com/quartzboard/quartz/pkg/board"
)

// Defaults applied by New when Config leaves them zero.
const (
	DefaultMaxChainDepth   = 5
	DefaultActionTimeout   = 10 * time.Second
	DefaultRunHistoryLimit = 100
)

// Config carries the engine's per-board settings.
type Config struct {
	// BoardID scopes the engine. One engine instance serves one board;
	// events for other boards are ignored.
	BoardID string

	// MaxChainDepth bounds automation-triggered-by-automation chains.
	// Events at or past this depth are not dispatched and the chain fails
	// with a cycle_detected run record.
	MaxChainDepth int

	// ActionTimeout bounds each action, including calls into external
	// collaborators. An action that never completes is a failure, not a
	// pending run.
	ActionTimeout time.Duration

	// CascadeDeleteSubitems lets delete_item actions remove subitems along
	// with their parent. Off by default: the delete fails fast instead.
	CascadeDeleteSubitems bool

	// RunHistoryLimit caps each automation's run history list.
	RunHistoryLimit int

	// HealthAddr is the listen address for the health/metrics server.
	// Empty disables the server.
	HealthAddr string
}

// Engine orchestrates Trigger Detector → Condition Evaluator → Action
// Executor for every enabled automation on a board. Events are processed to
// completion one at a time: an action can synthesize new events, and those
// must observe the finished state of the run that produced them.
type Engine struct {
	store    *board.Client
	notifier notify.Notifier
	cfg      Config
	metrics  *metrics
	health   *HealthServer
	paused   atomic.Bool
}

// New creates an engine for one board. A nil notifier falls back to logging.
func New(store *board.Client, notifier notify.Notifier, cfg Config) *Engine {
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	if cfg.MaxChainDepth <= 0 {
		cfg.MaxChainDepth = DefaultMaxChainDepth
	}
	if cfg.ActionTimeout <= 0 {
		cfg.ActionTimeout = DefaultActionTimeout
	}
	if cfg.RunHistoryLimit <= 0 {
		cfg.RunHistoryLimit = DefaultRunHistoryLimit
	}

	e := &Engine{
		store:    store,
		notifier: notifier,
		cfg:      cfg,
		metrics:  newMetrics(),
	}
	if cfg.HealthAddr != "" {
		e.health = NewHealthServer(store, e.metrics.registry, cfg.HealthAddr)
	}
	return e
}

// Pause stops dispatching events into the pipeline. An in-flight action
// sequence finishes its current action but does not start the next one.
func (e *Engine) Pause() {
	e.paused.Store(true)
}

// Resume re-opens the dispatch gate.
func (e *Engine) Resume() {
	e.paused.Store(false)
}

// Paused reports whether the dispatch gate is closed.
func (e *Engine) Paused() bool {
	return e.paused.Load()
}

// Run starts the engine and blocks until the context is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	if e.health != nil {
		if err := e.health.Start(); err != nil {
			return fmt.Errorf("failed to start health server: %w", err)
		}
		defer e.health.Shutdown(context.Background())
	}

	log.Printf("[Engine] Starting for board '%s'", e.cfg.BoardID)

	subscription, err := e.store.SubscribeBoardEvents(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to board events: %w", err)
	}
	defer subscription.Close()

	log.Printf("[Engine] Subscribed to board_events")

	for {
		select {
		case <-ctx.Done():
			log.Printf("[Engine] Shutting down...")
			return nil

		case event, ok := <-subscription.Events():
			if !ok {
				log.Printf("[Engine] Subscription closed")
				return nil
			}

			if err := e.ProcessEvent(ctx, event); err != nil {
				log.Printf("[Engine] Error processing %s event: %v", event.Type, err)
				// Continue processing - don't crash on a single event failure
			}

		case err, ok := <-subscription.Errors():
			if !ok {
				log.Printf("[Engine] Error channel closed")
				return nil
			}
			log.Printf("[Engine] Subscription error: %v", err)
		}
	}
}

// ProcessEvent runs the full pipeline for one board event: every enabled
// automation is checked in trigger → condition → action order, short-
// circuiting at the first no-match/false stage.
func (e *Engine) ProcessEvent(ctx context.Context, event *board.Event) error {
	if event.BoardID != e.cfg.BoardID {
		return nil
	}
	if e.paused.Load() {
		e.logEvent("event_skipped_paused", map[string]interface{}{
			"event_type": event.Type,
			"item_id":    event.ItemID,
		})
		return nil
	}

	e.metrics.observeEvent(string(event.Type))

	automations, err := e.store.ListAutomations(ctx, e.cfg.BoardID)
	if err != nil {
		return fmt.Errorf("failed to list automations: %w", err)
	}

	now := time.Now()

	// Chain depth bound: an event this deep was produced by a chain of
	// automations triggering each other. Fail the chain instead of looping.
	if event.ChainDepth >= e.cfg.MaxChainDepth {
		for _, automation := range automations {
			if !automation.Active || !TriggerMatches(automation.Trigger, event, now) {
				continue
			}
			cause := fmt.Errorf("chain depth %d reached bound %d: %w",
				event.ChainDepth, e.cfg.MaxChainDepth, board.ErrCycleDetected)
			rec := &RunRecord{
				AutomationID: automation.ID,
				BoardID:      automation.BoardID,
				EventType:    event.Type,
				ItemID:       event.ItemID,
				Outcome:      RunCycleDetected,
				FailedIndex:  -1,
				Error:        cause.Error(),
				AtMs:         now.UnixMilli(),
			}
			if err := appendRun(ctx, e.store, rec, e.cfg.RunHistoryLimit); err != nil {
				log.Printf("[Engine] Failed to record cycle for automation %s: %v", automation.ID, err)
			}
			e.metrics.observeRun(RunCycleDetected)
			e.logEvent("cycle_detected", map[string]interface{}{
				"automation_id": automation.ID,
				"event_type":    event.Type,
				"chain_depth":   event.ChainDepth,
			})
		}
		return nil
	}

	for _, automation := range automations {
		if err := e.runAutomation(ctx, automation, event, now); err != nil {
			log.Printf("[Engine] Error running automation %s: %v", automation.ID, err)
			// Continue with the next automation
		}
		if e.paused.Load() {
			// Pause landed while this event was being processed; later
			// automations count as "not yet dispatched".
			return nil
		}
	}
	return nil
}

// runAutomation runs one automation's pipeline for one event. Only pipeline
// completions (success or partial failure) touch run bookkeeping; a disabled
// automation, a trigger mismatch, or a false condition leaves RunCount and
// LastRun untouched.
func (e *Engine) runAutomation(ctx context.Context, automation *board.Automation, event *board.Event, now time.Time) error {
	if !automation.Active {
		return nil
	}
	if !TriggerMatches(automation.Trigger, event, now) {
		return nil
	}

	var item *board.Item
	if event.ItemID != "" {
		var err error
		item, err = e.store.GetItem(ctx, event.ItemID)
		if err != nil {
			return fmt.Errorf("failed to load item %s: %w", event.ItemID, err)
		}
	}

	if len(automation.Conditions) > 0 {
		if item == nil {
			return fmt.Errorf("automation %s has conditions but event %s carries no item", automation.ID, event.Type)
		}
		matched, err := EvaluateConditions(ctx, e.store, item, automation.Conditions, now)
		if err != nil {
			// Condition evaluation errors are execution-time failures: the
			// pipeline completed (failed), so the run is recorded and counted.
			return e.finishRun(ctx, automation, event, &RunRecord{
				Outcome:     RunPartialFailure,
				FailedIndex: -1,
				Error:       err.Error(),
			})
		}
		if !matched {
			return nil
		}
	}

	executor := &Executor{
		store:           e.store,
		notifier:        e.notifier,
		actionTimeout:   e.cfg.ActionTimeout,
		cascadeSubitems: e.cfg.CascadeDeleteSubitems,
		paused:          e.paused.Load,
	}

	results, truncated := executor.Execute(ctx, automation, event.ItemID, event.ChainDepth+1)

	rec := &RunRecord{Outcome: RunSuccess, FailedIndex: -1}
	for _, result := range results {
		e.metrics.observeAction(string(result.Type), result.Err)
		e.logEvent("action_executed", map[string]interface{}{
			"automation_id": automation.ID,
			"action_index":  result.Index,
			"action_type":   result.Type,
			"item_id":       event.ItemID,
			"ok":            result.Err == nil,
		})
		if result.Err != nil {
			actionErr := &board.ActionError{Index: result.Index, ActionType: result.Type, Cause: result.Err}
			rec.Outcome = RunPartialFailure
			rec.FailedIndex = result.Index
			rec.Error = actionErr.Error()
		}
	}
	if truncated && rec.Outcome == RunSuccess {
		rec.Outcome = RunPartialFailure
		rec.Error = fmt.Sprintf("engine paused after %d of %d actions", len(results), len(automation.Actions))
	}

	return e.finishRun(ctx, automation, event, rec)
}

// finishRun records a completed pipeline: run history entry, RunCount and
// LastRun bookkeeping, metrics.
func (e *Engine) finishRun(ctx context.Context, automation *board.Automation, event *board.Event, rec *RunRecord) error {
	atMs := time.Now().UnixMilli()
	rec.AutomationID = automation.ID
	rec.BoardID = automation.BoardID
	rec.EventType = event.Type
	rec.ItemID = event.ItemID
	rec.AtMs = atMs

	if err := appendRun(ctx, e.store, rec, e.cfg.RunHistoryLimit); err != nil {
		return err
	}
	if err := e.store.RecordRun(ctx, automation.ID, atMs); err != nil {
		return err
	}

	e.metrics.observeRun(rec.Outcome)
	e.logEvent("automation_run", map[string]interface{}{
		"automation_id": automation.ID,
		"event_type":    event.Type,
		"item_id":       event.ItemID,
		"outcome":       rec.Outcome,
		"failed_index":  rec.FailedIndex,
	})
	return nil
}

// logEvent logs a structured event in JSON format.
func (e *Engine) logEvent(eventType string, data map[string]interface{}) {
	data["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	data["level"] = "info"
	data["component"] = "engine"
	data["event_type"] = eventType
	data["board_id"] = e.cfg.BoardID

	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Printf("[Engine] Failed to marshal log event: %v", err)
		return
	}

	log.Println(string(jsonData))
}
