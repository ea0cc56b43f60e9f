package board

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Priority is the built-in item priority enum.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Validate checks if the Priority is a valid enum value. Empty is allowed
// (priority not set).
func (p Priority) Validate() error {
	switch p {
	case "", PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return nil
	default:
		return fmt.Errorf("unknown priority: %q", p)
	}
}

// StatusLabel is one entry of a status column's configured label list.
type StatusLabel struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// SelectOption is one entry of a dropdown column's configured option list.
type SelectOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Color string `json:"color,omitempty"`
}

// ColumnSettings holds the type-specific configuration of a column. Only the
// fields valid for the column's type are set; ValidateFor enforces this.
type ColumnSettings struct {
	StatusLabels []StatusLabel  `json:"status_labels,omitempty"` // status
	Options      []SelectOption `json:"options,omitempty"`       // dropdown
	Formula      string         `json:"formula,omitempty"`       // formula
	LeadTimeMs   int64          `json:"lead_time_ms,omitempty"`  // date: due-date-approaching lead
	Unit         string         `json:"unit,omitempty"`          // number
}

// ValidateFor checks the settings against a column type's requirements.
// Types with RequiresSettings must have a non-nil, well-formed settings blob.
func (s *ColumnSettings) ValidateFor(ct ColumnType) error {
	def, ok := Lookup(ct)
	if !ok {
		return fmt.Errorf("unknown column type: %q", ct)
	}

	if def.RequiresSettings && s == nil {
		return fmt.Errorf("column type %s requires settings: %w", ct, ErrInvalidSettings)
	}
	if s == nil {
		return nil
	}

	switch ct {
	case ColumnTypeStatus:
		if len(s.StatusLabels) == 0 {
			return fmt.Errorf("status column requires at least one label: %w", ErrInvalidSettings)
		}
		seen := make(map[string]bool, len(s.StatusLabels))
		for i, l := range s.StatusLabels {
			if l.ID == "" || l.Label == "" {
				return fmt.Errorf("status label %d missing id or label: %w", i, ErrInvalidSettings)
			}
			if seen[l.ID] {
				return fmt.Errorf("duplicate status label id %q: %w", l.ID, ErrInvalidSettings)
			}
			seen[l.ID] = true
		}
	case ColumnTypeDropdown:
		if len(s.Options) == 0 {
			return fmt.Errorf("dropdown column requires at least one option: %w", ErrInvalidSettings)
		}
		seen := make(map[string]bool, len(s.Options))
		for i, o := range s.Options {
			if o.ID == "" || o.Label == "" {
				return fmt.Errorf("dropdown option %d missing id or label: %w", i, ErrInvalidSettings)
			}
			if seen[o.ID] {
				return fmt.Errorf("duplicate dropdown option id %q: %w", o.ID, ErrInvalidSettings)
			}
			seen[o.ID] = true
		}
	case ColumnTypeFormula:
		if s.Formula == "" {
			return fmt.Errorf("formula column requires an expression: %w", ErrInvalidSettings)
		}
	}

	return nil
}

func (s *ColumnSettings) hasStatusLabel(id string) bool {
	for _, l := range s.StatusLabels {
		if l.ID == id {
			return true
		}
	}
	return false
}

func (s *ColumnSettings) hasOption(id string) bool {
	for _, o := range s.Options {
		if o.ID == id {
			return true
		}
	}
	return false
}

// Column is a typed field definition applied uniformly across all items in a
// board. Columns are soft-removed (Hidden) rather than physically deleted
// while items still reference them, to avoid dangling value records.
type Column struct {
	ID          string          `json:"id"`
	BoardID     string          `json:"board_id"`
	Title       string          `json:"title"`
	Type        ColumnType      `json:"type"`
	Position    int             `json:"position"` // display order only
	Settings    *ColumnSettings `json:"settings,omitempty"`
	Hidden      bool            `json:"hidden"`
	CreatedAtMs int64           `json:"created_at_ms"`
}

// Validate checks if the Column has valid field values.
func (c *Column) Validate() error {
	if !isValidUUID(c.ID) {
		return fmt.Errorf("invalid column ID: not a valid UUID")
	}
	if c.BoardID == "" {
		return fmt.Errorf("column board ID cannot be empty")
	}
	if c.Title == "" {
		return fmt.Errorf("column title cannot be empty")
	}
	if err := c.Type.Validate(); err != nil {
		return fmt.Errorf("invalid column type: %w", err)
	}
	if err := c.Settings.ValidateFor(c.Type); err != nil {
		return err
	}
	return nil
}

// ColumnValue is the per-item value stored for one column. Created lazily on
// first write, overwritten on every update, removed with its item or column.
type ColumnValue struct {
	ItemID      string `json:"item_id"`
	ColumnID    string `json:"column_id"`
	Value       Value  `json:"value"`
	UpdatedAtMs int64  `json:"updated_at_ms"`
}

// Group is a board subdivision owning items.
type Group struct {
	ID       string `json:"id"`
	BoardID  string `json:"board_id"`
	Title    string `json:"title"`
	Position int    `json:"position"`
	Color    string `json:"color,omitempty"`
}

// Validate checks if the Group has valid field values.
func (g *Group) Validate() error {
	if !isValidUUID(g.ID) {
		return fmt.Errorf("invalid group ID: not a valid UUID")
	}
	if g.BoardID == "" {
		return fmt.Errorf("group board ID cannot be empty")
	}
	if g.Title == "" {
		return fmt.Errorf("group title cannot be empty")
	}
	return nil
}

// Item belongs to exactly one group. Subitems form a one-level tree via
// ParentID; dependencies between items live in dependency column values.
type Item struct {
	ID          string   `json:"id"`
	BoardID     string   `json:"board_id"`
	GroupID     string   `json:"group_id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Position    int      `json:"position"`
	Priority    Priority `json:"priority,omitempty"`
	DueDateMs   int64    `json:"due_date_ms,omitempty"` // 0 = no due date
	Archived    bool     `json:"archived"`
	ParentID    string   `json:"parent_id,omitempty"` // set for subitems
	CreatedAtMs int64    `json:"created_at_ms"`
}

// Validate checks if the Item has valid field values.
func (i *Item) Validate() error {
	if !isValidUUID(i.ID) {
		return fmt.Errorf("invalid item ID: not a valid UUID")
	}
	if i.BoardID == "" {
		return fmt.Errorf("item board ID cannot be empty")
	}
	if i.GroupID == "" {
		return fmt.Errorf("item group ID cannot be empty")
	}
	if i.Name == "" {
		return fmt.Errorf("item name cannot be empty")
	}
	if err := i.Priority.Validate(); err != nil {
		return fmt.Errorf("invalid item priority: %w", err)
	}
	if i.ParentID != "" && !isValidUUID(i.ParentID) {
		return fmt.Errorf("invalid parent ID: not a valid UUID")
	}
	return nil
}

// IsOverdue reports whether the item's due date has passed relative to now.
func (i *Item) IsOverdue(now time.Time) bool {
	return i.DueDateMs != 0 && i.DueDateMs < now.UnixMilli()
}

// TriggerType is the closed set of event shapes an automation can listen for.
type TriggerType string

const (
	TriggerItemCreated        TriggerType = "item_created"
	TriggerStatusChange       TriggerType = "status_change"
	TriggerColumnChange       TriggerType = "column_change"
	TriggerItemMoved          TriggerType = "item_moved"
	TriggerPersonAssigned     TriggerType = "person_assigned"
	TriggerDateArrives        TriggerType = "date_arrives"
	TriggerDueDateApproaching TriggerType = "due_date_approaching"
	TriggerFileUploaded       TriggerType = "file_uploaded"
)

// Validate checks if the TriggerType is a valid enum value.
func (tt TriggerType) Validate() error {
	switch tt {
	case TriggerItemCreated, TriggerStatusChange, TriggerColumnChange,
		TriggerItemMoved, TriggerPersonAssigned, TriggerDateArrives,
		TriggerDueDateApproaching, TriggerFileUploaded:
		return nil
	default:
		return fmt.Errorf("unknown trigger type: %q", tt)
	}
}

// Trigger is an automation's event subscription. ColumnID narrows the trigger
// to a specific column when set; empty means any column of the matching shape.
type Trigger struct {
	Type       TriggerType `json:"type"`
	ColumnID   string      `json:"column_id,omitempty"`
	LeadTimeMs int64       `json:"lead_time_ms,omitempty"` // due_date_approaching only
}

// Validate checks if the Trigger has valid field values.
func (t *Trigger) Validate() error {
	if t.Type == "" {
		return fmt.Errorf("automation trigger is required: %w", ErrInvalidAutomation)
	}
	if err := t.Type.Validate(); err != nil {
		return fmt.Errorf("invalid trigger: %w", err)
	}
	return nil
}

// ConditionType is the closed set of leaf predicates over an item's values.
type ConditionType string

const (
	ConditionStatusIs   ConditionType = "status_is"
	ConditionPriorityIs ConditionType = "priority_is"
	ConditionAssigneeIs ConditionType = "assignee_is"
	ConditionHasLabel   ConditionType = "has_label"
	ConditionIsOverdue  ConditionType = "is_overdue"
	ConditionDateIs     ConditionType = "date_is"
)

// Validate checks if the ConditionType is a valid enum value.
func (ct ConditionType) Validate() error {
	switch ct {
	case ConditionStatusIs, ConditionPriorityIs, ConditionAssigneeIs,
		ConditionHasLabel, ConditionIsOverdue, ConditionDateIs:
		return nil
	default:
		return fmt.Errorf("unknown condition type: %q", ct)
	}
}

// Operator chains a condition to the cumulative result of the conditions
// before it. The first condition of a list has no operator.
type Operator string

const (
	OperatorAnd Operator = "and"
	OperatorOr  Operator = "or"
)

// Condition is one leaf predicate in an automation's condition list.
// ColumnID names the column the predicate reads (status_is, assignee_is,
// has_label, date_is); Value is the compared label/user/priority/date.
type Condition struct {
	Type     ConditionType `json:"type"`
	Operator Operator      `json:"operator,omitempty"` // empty on the first condition
	ColumnID string        `json:"column_id,omitempty"`
	Value    string        `json:"value,omitempty"`
}

// Validate checks if the Condition has valid field values. first indicates
// the condition is the head of the list, which must not carry an operator.
func (c *Condition) Validate(first bool) error {
	if err := c.Type.Validate(); err != nil {
		return err
	}
	switch c.Operator {
	case "":
		if !first {
			return fmt.Errorf("condition %q missing operator", c.Type)
		}
	case OperatorAnd, OperatorOr:
		if first {
			return fmt.Errorf("first condition must not have an operator")
		}
	default:
		return fmt.Errorf("unknown condition operator: %q", c.Operator)
	}
	return nil
}

// ActionType is the closed set of steps an automation can perform.
type ActionType string

const (
	ActionChangeStatus     ActionType = "change_status"
	ActionSetDate          ActionType = "set_date"
	ActionChangeColumn     ActionType = "change_column"
	ActionAssignPerson     ActionType = "assign_person"
	ActionAddLabel         ActionType = "add_label"
	ActionCreateItem       ActionType = "create_item"
	ActionDuplicateItem    ActionType = "duplicate_item"
	ActionMoveToGroup      ActionType = "move_to_group"
	ActionArchiveItem      ActionType = "archive_item"
	ActionDeleteItem       ActionType = "delete_item"
	ActionSendNotification ActionType = "send_notification"
)

// Validate checks if the ActionType is a valid enum value.
func (at ActionType) Validate() error {
	switch at {
	case ActionChangeStatus, ActionSetDate, ActionChangeColumn,
		ActionAssignPerson, ActionAddLabel, ActionCreateItem,
		ActionDuplicateItem, ActionMoveToGroup, ActionArchiveItem,
		ActionDeleteItem, ActionSendNotification:
		return nil
	default:
		return fmt.Errorf("unknown action type: %q", at)
	}
}

// Action is one step of an automation's action sequence. Only the fields
// valid for the action type are set.
type Action struct {
	Type     ActionType `json:"type"`
	ColumnID string     `json:"column_id,omitempty"` // value mutations, assign_person, add_label
	Value    *Value     `json:"value,omitempty"`     // change_status, set_date, change_column
	UserID   string     `json:"user_id,omitempty"`   // assign_person, send_notification recipient
	LabelID  string     `json:"label_id,omitempty"`  // add_label
	GroupID  string     `json:"group_id,omitempty"`  // create_item, move_to_group
	Name     string     `json:"name,omitempty"`      // create_item
	Message  string     `json:"message,omitempty"`   // send_notification
}

// Validate checks if the Action carries the config its type requires.
func (a *Action) Validate() error {
	if err := a.Type.Validate(); err != nil {
		return err
	}
	switch a.Type {
	case ActionChangeStatus, ActionSetDate, ActionChangeColumn:
		if a.ColumnID == "" || a.Value == nil {
			return fmt.Errorf("%s action requires column_id and value", a.Type)
		}
	case ActionAssignPerson:
		if a.ColumnID == "" || a.UserID == "" {
			return fmt.Errorf("assign_person action requires column_id and user_id")
		}
	case ActionAddLabel:
		if a.ColumnID == "" || a.LabelID == "" {
			return fmt.Errorf("add_label action requires column_id and label_id")
		}
	case ActionCreateItem:
		if a.GroupID == "" || a.Name == "" {
			return fmt.Errorf("create_item action requires group_id and name")
		}
	case ActionMoveToGroup:
		if a.GroupID == "" {
			return fmt.Errorf("move_to_group action requires group_id")
		}
	case ActionSendNotification:
		if a.Message == "" {
			return fmt.Errorf("send_notification action requires a message")
		}
	}
	return nil
}

// Automation is a trigger/condition/action rule belonging to one board.
// Run metadata (LastRunMs, RunCount) is mutated only by the engine.
type Automation struct {
	ID          string      `json:"id"`
	BoardID     string      `json:"board_id"`
	Name        string      `json:"name"`
	Active      bool        `json:"active"`
	Trigger     Trigger     `json:"trigger"`
	Conditions  []Condition `json:"conditions,omitempty"`
	Actions     []Action    `json:"actions"`
	CreatedAtMs int64       `json:"created_at_ms"`
	LastRunMs   int64       `json:"last_run_ms,omitempty"`
	RunCount    int         `json:"run_count"`
}

// Validate checks if the Automation is saveable: trigger set, actions
// non-empty, every condition and action well-formed. This is the
// authoritative check - client-side validation is a mirror, not a substitute.
func (a *Automation) Validate() error {
	if !isValidUUID(a.ID) {
		return fmt.Errorf("invalid automation ID: not a valid UUID")
	}
	if a.BoardID == "" {
		return fmt.Errorf("automation board ID cannot be empty")
	}
	if a.Name == "" {
		return fmt.Errorf("automation name cannot be empty")
	}
	if err := a.Trigger.Validate(); err != nil {
		return err
	}
	if len(a.Actions) == 0 {
		return fmt.Errorf("automation must have at least one action: %w", ErrInvalidAutomation)
	}
	for i, cond := range a.Conditions {
		if err := cond.Validate(i == 0); err != nil {
			return fmt.Errorf("condition %d: %w", i, err)
		}
	}
	for i, act := range a.Actions {
		if err := act.Validate(); err != nil {
			return fmt.Errorf("action %d: %w", i, err)
		}
	}
	return nil
}

// isValidUUID checks if a string is a valid UUID format.
func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
