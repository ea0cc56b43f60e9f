package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/quartzboard/quartz/pkg/board"
)

// EvaluateConditions evaluates an automation's condition list against an
// item's current values.
//
// The list is a strictly left-to-right fold, NOT operator-precedence
// grouping: each condition combines with the cumulative result of everything
// before it via its own operator. [A, B(or), C(and)] therefore evaluates as
// (A OR B) AND C, not A OR (B AND C). This matches how saved automations
// have always behaved; changing it to conventional precedence would silently
// alter their meaning.
//
// An empty condition list evaluates to true: no conditions added means the
// automation runs for every trigger match.
func EvaluateConditions(ctx context.Context, store *board.Client, item *board.Item, conditions []board.Condition, now time.Time) (bool, error) {
	result := true
	for i, cond := range conditions {
		leaf, err := evalLeaf(ctx, store, item, cond, now)
		if err != nil {
			return false, fmt.Errorf("condition %d (%s): %w", i, cond.Type, err)
		}

		if i > 0 && cond.Operator == board.OperatorOr {
			result = result || leaf
		} else {
			result = result && leaf
		}
	}
	return result, nil
}

// evalLeaf dispatches on the condition type. Unset values compare as
// non-matching, never as errors.
func evalLeaf(ctx context.Context, store *board.Client, item *board.Item, cond board.Condition, now time.Time) (bool, error) {
	switch cond.Type {
	case board.ConditionStatusIs:
		value, err := store.GetValue(ctx, item.ID, cond.ColumnID)
		if err != nil {
			return false, err
		}
		return value.Kind == board.KindStatus && value.StatusID == cond.Value, nil

	case board.ConditionPriorityIs:
		return item.Priority == board.Priority(cond.Value), nil

	case board.ConditionAssigneeIs:
		value, err := store.GetValue(ctx, item.ID, cond.ColumnID)
		if err != nil {
			return false, err
		}
		return contains(value.People, cond.Value), nil

	case board.ConditionHasLabel:
		value, err := store.GetValue(ctx, item.ID, cond.ColumnID)
		if err != nil {
			return false, err
		}
		return contains(value.Labels, cond.Value), nil

	case board.ConditionIsOverdue:
		return item.IsOverdue(now), nil

	case board.ConditionDateIs:
		value, err := store.GetValue(ctx, item.ID, cond.ColumnID)
		if err != nil {
			return false, err
		}
		if value.Kind != board.KindDate || value.DateMs == 0 {
			return false, nil
		}
		// Day granularity: the configured value names a calendar day.
		day := time.UnixMilli(value.DateMs).UTC().Format("2006-01-02")
		return day == cond.Value, nil

	default:
		return false, fmt.Errorf("unknown condition type: %q", cond.Type)
	}
}

func contains(set []string, member string) bool {
	for _, s := range set {
		if s == member {
			return true
		}
	}
	return false
}
