package board

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// EventType tags a board change event.
type EventType string

const (
	// EventItemCreated fires when an item is created (directly or by an
	// automation's create_item/duplicate_item action).
	EventItemCreated EventType = "item_created"

	// EventStatusChanged fires when a status column value changes.
	EventStatusChanged EventType = "status_changed"

	// EventColumnChanged fires when any non-status column value changes.
	EventColumnChanged EventType = "column_changed"

	// EventItemMoved fires when an item is moved between groups.
	EventItemMoved EventType = "item_moved"

	// EventAssignmentAdded fires when a user is added to a people column.
	// Idempotent re-adds do not fire.
	EventAssignmentAdded EventType = "assignment_added"

	// EventFileUploaded fires when a file lands in a file column.
	EventFileUploaded EventType = "file_uploaded"

	// EventDateArrived is synthesized by an external scheduler tick when a
	// date column's date is reached.
	EventDateArrived EventType = "date_arrived"

	// EventDueDateApproaching is synthesized by an external scheduler tick
	// ahead of an item's due date.
	EventDueDateApproaching EventType = "due_date_approaching"
)

// Validate checks if the EventType is a valid enum value.
func (et EventType) Validate() error {
	switch et {
	case EventItemCreated, EventStatusChanged, EventColumnChanged,
		EventItemMoved, EventAssignmentAdded, EventFileUploaded,
		EventDateArrived, EventDueDateApproaching:
		return nil
	default:
		return fmt.Errorf("unknown event type: %q", et)
	}
}

// Event is a board change notification published on the board events channel.
// Type selects which fields are meaningful.
//
// ChainDepth counts automation hops: 0 for user-originated mutations, parent
// depth + 1 for mutations performed by an automation action. The engine
// refuses to dispatch events past the configured bound, which is what keeps
// automation-triggers-automation chains finite. Depth rides in the event
// payload so the bound survives engine restarts.
type Event struct {
	Type        EventType `json:"type"`
	BoardID     string    `json:"board_id"`
	ItemID      string    `json:"item_id,omitempty"`
	ColumnID    string    `json:"column_id,omitempty"`
	FromGroupID string    `json:"from_group_id,omitempty"` // item_moved
	ToGroupID   string    `json:"to_group_id,omitempty"`   // item_moved
	OldValue    *Value    `json:"old_value,omitempty"`     // status_changed, column_changed
	NewValue    *Value    `json:"new_value,omitempty"`     // status_changed, column_changed
	UserID      string    `json:"user_id,omitempty"`       // assignment_added
	FileID      string    `json:"file_id,omitempty"`       // file_uploaded
	DateMs      int64     `json:"date_ms,omitempty"`       // date_arrived
	LeadTimeMs  int64     `json:"lead_time_ms,omitempty"`  // due_date_approaching
	ChainDepth  int       `json:"chain_depth"`
	AtMs        int64     `json:"at_ms"`
}

// Validate checks if the Event has valid field values.
func (e *Event) Validate() error {
	if err := e.Type.Validate(); err != nil {
		return err
	}
	if e.BoardID == "" {
		return fmt.Errorf("event board ID cannot be empty")
	}
	if e.ChainDepth < 0 {
		return fmt.Errorf("event chain depth cannot be negative")
	}
	return nil
}

// Subscription represents an active Pub/Sub subscription to board events.
// Caller must call Close() when done to clean up resources.
type Subscription struct {
	events <-chan *Event
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of board events. The channel is closed when the
// subscription is closed or the context is cancelled.
func (s *Subscription) Events() <-chan *Event {
	return s.events
}

// Errors returns the channel of subscription errors. Errors are non-fatal;
// the subscription continues and the offending message is skipped.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription and cleans up resources. Implements io.Closer.
// Safe to call multiple times.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// SubscribeBoardEvents subscribes to board change events for this instance.
// Returns a Subscription that delivers full event objects. Caller must call
// subscription.Close() when done. Context cancellation also stops the
// subscription.
//
// Events are delivered on a buffered channel (size 16) to prevent blocking.
// Redis Pub/Sub is at-most-once; a subscriber that is too slow may drop
// events.
func (c *Client) SubscribeBoardEvents(ctx context.Context) (*Subscription, error) {
	channel := BoardEventsChannel(c.instanceName)
	pubsub := c.rdb.Subscribe(ctx, channel)

	eventsChan := make(chan *Event, 16)
	errorsChan := make(chan error, 16)

	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()

		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal board event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- &event:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
	}, nil
}

// PublishEvent validates an event and publishes it on the board events
// channel. Store mutations publish their own events; this is exposed for the
// external scheduler tick (date_arrived, due_date_approaching) and for the
// file-storage layer (file_uploaded).
func (c *Client) PublishEvent(ctx context.Context, event *Event) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	channel := BoardEventsChannel(c.instanceName)
	if err := c.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish board event: %w", err)
	}

	return nil
}
