package board

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Serialization helpers for converting between Go structs and Redis hashes
//
// Redis stores data as string-to-string maps (hashes). Complex fields
// (settings blobs, values, condition/action lists) are JSON-encoded into
// single hash fields. This keeps simple fields individually queryable while
// leaving room for the polymorphic parts.

// ColumnToHash converts a Column struct to a Redis hash format.
func ColumnToHash(c *Column) (map[string]interface{}, error) {
	hash := map[string]interface{}{
		"id":            c.ID,
		"board_id":      c.BoardID,
		"title":         c.Title,
		"type":          string(c.Type),
		"position":      c.Position,
		"hidden":        strconv.FormatBool(c.Hidden),
		"created_at_ms": c.CreatedAtMs,
	}

	if c.Settings != nil {
		settingsJSON, err := json.Marshal(c.Settings)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal column settings: %w", err)
		}
		hash["settings"] = string(settingsJSON)
	}

	return hash, nil
}

// HashToColumn converts a Redis hash to a Column struct.
func HashToColumn(hash map[string]string) (*Column, error) {
	position, err := strconv.Atoi(hash["position"])
	if err != nil {
		return nil, fmt.Errorf("invalid position field: %w", err)
	}

	var settings *ColumnSettings
	if settingsJSON := hash["settings"]; settingsJSON != "" {
		settings = &ColumnSettings{}
		if err := json.Unmarshal([]byte(settingsJSON), settings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal column settings: %w", err)
		}
	}

	hidden, _ := strconv.ParseBool(hash["hidden"])
	createdAtMs, _ := strconv.ParseInt(hash["created_at_ms"], 10, 64)

	return &Column{
		ID:          hash["id"],
		BoardID:     hash["board_id"],
		Title:       hash["title"],
		Type:        ColumnType(hash["type"]),
		Position:    position,
		Settings:    settings,
		Hidden:      hidden,
		CreatedAtMs: createdAtMs,
	}, nil
}

// ItemToHash converts an Item struct to a Redis hash format.
func ItemToHash(i *Item) map[string]interface{} {
	return map[string]interface{}{
		"id":            i.ID,
		"board_id":      i.BoardID,
		"group_id":      i.GroupID,
		"name":          i.Name,
		"description":   i.Description,
		"position":      i.Position,
		"priority":      string(i.Priority),
		"due_date_ms":   i.DueDateMs,
		"archived":      strconv.FormatBool(i.Archived),
		"parent_id":     i.ParentID,
		"created_at_ms": i.CreatedAtMs,
	}
}

// HashToItem converts a Redis hash to an Item struct.
func HashToItem(hash map[string]string) (*Item, error) {
	position, err := strconv.Atoi(hash["position"])
	if err != nil {
		return nil, fmt.Errorf("invalid position field: %w", err)
	}

	dueDateMs, _ := strconv.ParseInt(hash["due_date_ms"], 10, 64)
	archived, _ := strconv.ParseBool(hash["archived"])
	createdAtMs, _ := strconv.ParseInt(hash["created_at_ms"], 10, 64)

	return &Item{
		ID:          hash["id"],
		BoardID:     hash["board_id"],
		GroupID:     hash["group_id"],
		Name:        hash["name"],
		Description: hash["description"],
		Position:    position,
		Priority:    Priority(hash["priority"]),
		DueDateMs:   dueDateMs,
		Archived:    archived,
		ParentID:    hash["parent_id"],
		CreatedAtMs: createdAtMs,
	}, nil
}

// GroupToHash converts a Group struct to a Redis hash format.
func GroupToHash(g *Group) map[string]interface{} {
	return map[string]interface{}{
		"id":       g.ID,
		"board_id": g.BoardID,
		"title":    g.Title,
		"position": g.Position,
		"color":    g.Color,
	}
}

// HashToGroup converts a Redis hash to a Group struct.
func HashToGroup(hash map[string]string) (*Group, error) {
	position, err := strconv.Atoi(hash["position"])
	if err != nil {
		return nil, fmt.Errorf("invalid position field: %w", err)
	}

	return &Group{
		ID:       hash["id"],
		BoardID:  hash["board_id"],
		Title:    hash["title"],
		Position: position,
		Color:    hash["color"],
	}, nil
}

// ColumnValueToHash converts a ColumnValue struct to a Redis hash format.
// The polymorphic value is JSON-encoded into a single field.
func ColumnValueToHash(cv *ColumnValue) (map[string]interface{}, error) {
	valueJSON, err := json.Marshal(cv.Value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value: %w", err)
	}

	return map[string]interface{}{
		"item_id":       cv.ItemID,
		"column_id":     cv.ColumnID,
		"value":         string(valueJSON),
		"updated_at_ms": cv.UpdatedAtMs,
	}, nil
}

// HashToColumnValue converts a Redis hash to a ColumnValue struct.
func HashToColumnValue(hash map[string]string) (*ColumnValue, error) {
	var value Value
	if valueJSON := hash["value"]; valueJSON != "" {
		if err := json.Unmarshal([]byte(valueJSON), &value); err != nil {
			return nil, fmt.Errorf("failed to unmarshal value: %w", err)
		}
	} else {
		value = Unset()
	}

	updatedAtMs, _ := strconv.ParseInt(hash["updated_at_ms"], 10, 64)

	return &ColumnValue{
		ItemID:      hash["item_id"],
		ColumnID:    hash["column_id"],
		Value:       value,
		UpdatedAtMs: updatedAtMs,
	}, nil
}

// AutomationToHash converts an Automation struct to a Redis hash format.
// Trigger, conditions, and actions are JSON-encoded.
func AutomationToHash(a *Automation) (map[string]interface{}, error) {
	triggerJSON, err := json.Marshal(a.Trigger)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal trigger: %w", err)
	}

	conditionsJSON, err := json.Marshal(a.Conditions)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal conditions: %w", err)
	}

	actionsJSON, err := json.Marshal(a.Actions)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal actions: %w", err)
	}

	return map[string]interface{}{
		"id":            a.ID,
		"board_id":      a.BoardID,
		"name":          a.Name,
		"active":        strconv.FormatBool(a.Active),
		"trigger":       string(triggerJSON),
		"conditions":    string(conditionsJSON),
		"actions":       string(actionsJSON),
		"created_at_ms": a.CreatedAtMs,
		"last_run_ms":   a.LastRunMs,
		"run_count":     a.RunCount,
	}, nil
}

// HashToAutomation converts a Redis hash to an Automation struct.
func HashToAutomation(hash map[string]string) (*Automation, error) {
	var trigger Trigger
	if triggerJSON := hash["trigger"]; triggerJSON != "" {
		if err := json.Unmarshal([]byte(triggerJSON), &trigger); err != nil {
			return nil, fmt.Errorf("failed to unmarshal trigger: %w", err)
		}
	}

	var conditions []Condition
	if conditionsJSON := hash["conditions"]; conditionsJSON != "" {
		if err := json.Unmarshal([]byte(conditionsJSON), &conditions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal conditions: %w", err)
		}
	}

	var actions []Action
	if actionsJSON := hash["actions"]; actionsJSON != "" {
		if err := json.Unmarshal([]byte(actionsJSON), &actions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal actions: %w", err)
		}
	}

	active, _ := strconv.ParseBool(hash["active"])
	createdAtMs, _ := strconv.ParseInt(hash["created_at_ms"], 10, 64)
	lastRunMs, _ := strconv.ParseInt(hash["last_run_ms"], 10, 64)
	runCount, _ := strconv.Atoi(hash["run_count"])

	return &Automation{
		ID:          hash["id"],
		BoardID:     hash["board_id"],
		Name:        hash["name"],
		Active:      active,
		Trigger:     trigger,
		Conditions:  conditions,
		Actions:     actions,
		CreatedAtMs: createdAtMs,
		LastRunMs:   lastRunMs,
		RunCount:    runCount,
	}, nil
}
