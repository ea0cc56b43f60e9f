// Package notify carries notifications emitted by send_notification actions
// to the notification subsystem. The engine's only contract is that delivery
// was attempted and the outcome recorded; delivery semantics belong to the
// subsystem consuming the channel.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/quartzboard/quartz/pkg/board"
)

// Notification is one message produced by an automation run.
type Notification struct {
	AutomationID string `json:"automation_id"`
	BoardID      string `json:"board_id"`
	ItemID       string `json:"item_id,omitempty"`
	UserID       string `json:"user_id,omitempty"` // empty = board-wide
	Message      string `json:"message"`
	AtMs         int64  `json:"at_ms"`
}

// Notifier attempts delivery of a notification.
type Notifier interface {
	Notify(ctx context.Context, n *Notification) error
}

// RedisNotifier publishes notifications on the instance's notifications
// Pub/Sub channel, where the notification subsystem picks them up.
type RedisNotifier struct {
	client *board.Client
}

// NewRedisNotifier creates a notifier publishing through the given store
// client's Redis connection.
func NewRedisNotifier(client *board.Client) *RedisNotifier {
	return &RedisNotifier{client: client}
}

// Notify publishes the notification as JSON. Implements Notifier.
func (r *RedisNotifier) Notify(ctx context.Context, n *Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	channel := board.NotificationsChannel(r.client.InstanceName())
	if err := r.client.RedisClient().Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}

// LogNotifier writes notifications to the process log. Used when no
// notification subsystem is attached.
type LogNotifier struct{}

// Notify logs the notification. Implements Notifier.
func (LogNotifier) Notify(_ context.Context, n *Notification) error {
	log.Printf("[Notify] board=%s item=%s user=%s: %s", n.BoardID, n.ItemID, n.UserID, n.Message)
	return nil
}
