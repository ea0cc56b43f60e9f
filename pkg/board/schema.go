package board

import "fmt"

// Redis key pattern helpers
//
// All Redis keys and Pub/Sub channels are namespaced by instance name to
// enable multiple Quartz instances to safely coexist on a single Redis server.
//
// Key pattern: quartz:{instance_name}:{entity}:{uuid}
// Channel pattern: quartz:{instance_name}:{event_type}_events

// ColumnKey returns the Redis key for a column.
// Pattern: quartz:{instance_name}:column:{column_id}
func ColumnKey(instanceName, columnID string) string {
	return fmt.Sprintf("quartz:%s:column:%s", instanceName, columnID)
}

// BoardColumnsKey returns the Redis key for a board's column order ZSET
// (scored by position).
// Pattern: quartz:{instance_name}:board:{board_id}:columns
func BoardColumnsKey(instanceName, boardID string) string {
	return fmt.Sprintf("quartz:%s:board:%s:columns", instanceName, boardID)
}

// ItemKey returns the Redis key for an item.
// Pattern: quartz:{instance_name}:item:{item_id}
func ItemKey(instanceName, itemID string) string {
	return fmt.Sprintf("quartz:%s:item:%s", instanceName, itemID)
}

// GroupKey returns the Redis key for a group.
// Pattern: quartz:{instance_name}:group:{group_id}
func GroupKey(instanceName, groupID string) string {
	return fmt.Sprintf("quartz:%s:group:%s", instanceName, groupID)
}

// BoardGroupsKey returns the Redis key for a board's group order ZSET.
// Pattern: quartz:{instance_name}:board:{board_id}:groups
func BoardGroupsKey(instanceName, boardID string) string {
	return fmt.Sprintf("quartz:%s:board:%s:groups", instanceName, boardID)
}

// GroupItemsKey returns the Redis key for a group's item order ZSET
// (scored by position).
// Pattern: quartz:{instance_name}:group:{group_id}:items
func GroupItemsKey(instanceName, groupID string) string {
	return fmt.Sprintf("quartz:%s:group:%s:items", instanceName, groupID)
}

// ItemSubitemsKey returns the Redis key for an item's subitem SET.
// Pattern: quartz:{instance_name}:item:{item_id}:subitems
func ItemSubitemsKey(instanceName, itemID string) string {
	return fmt.Sprintf("quartz:%s:item:%s:subitems", instanceName, itemID)
}

// ValueKey returns the Redis key for a column value.
// Pattern: quartz:{instance_name}:value:{item_id}:{column_id}
func ValueKey(instanceName, itemID, columnID string) string {
	return fmt.Sprintf("quartz:%s:value:%s:%s", instanceName, itemID, columnID)
}

// ItemValuesKey returns the Redis key for the SET of column IDs an item has
// values for. Enables value cleanup when an item is removed.
// Pattern: quartz:{instance_name}:item:{item_id}:values
func ItemValuesKey(instanceName, itemID string) string {
	return fmt.Sprintf("quartz:%s:item:%s:values", instanceName, itemID)
}

// AutomationKey returns the Redis key for an automation.
// Pattern: quartz:{instance_name}:automation:{automation_id}
func AutomationKey(instanceName, automationID string) string {
	return fmt.Sprintf("quartz:%s:automation:%s", instanceName, automationID)
}

// BoardAutomationsKey returns the Redis key for a board's automation ZSET
// (scored by creation time).
// Pattern: quartz:{instance_name}:board:{board_id}:automations
func BoardAutomationsKey(instanceName, boardID string) string {
	return fmt.Sprintf("quartz:%s:board:%s:automations", instanceName, boardID)
}

// AutomationRunsKey returns the Redis key for an automation's run history
// LIST (newest first, capped).
// Pattern: quartz:{instance_name}:automation:{automation_id}:runs
func AutomationRunsKey(instanceName, automationID string) string {
	return fmt.Sprintf("quartz:%s:automation:%s:runs", instanceName, automationID)
}

// BoardEventsChannel returns the Pub/Sub channel name for board change events.
// Every mutation through the store publishes here; the automation engine
// subscribes here.
// Pattern: quartz:{instance_name}:board_events
func BoardEventsChannel(instanceName string) string {
	return fmt.Sprintf("quartz:%s:board_events", instanceName)
}

// NotificationsChannel returns the Pub/Sub channel name for notifications
// emitted by send_notification actions.
// Pattern: quartz:{instance_name}:notifications
func NotificationsChannel(instanceName string) string {
	return fmt.Sprintf("quartz:%s:notifications", instanceName)
}
