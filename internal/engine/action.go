package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/quartzboard/quartz/internal/notify"
	"github.com/quartzboard/quartz/pkg/board"
)

// Executor applies an automation's actions in declared order. Actions are
// not transactionally isolated: each action runs against the state left by
// the previous one, and a failure does not roll earlier actions back.
type Executor struct {
	store           *board.Client
	notifier        notify.Notifier
	actionTimeout   time.Duration
	cascadeSubitems bool
	paused          func() bool
}

// ActionResult records one action's outcome within a run.
type ActionResult struct {
	Index int
	Type  board.ActionType
	Err   error
}

// Execute runs the automation's actions sequentially against itemID (the
// item the triggering event concerned). depth is the chain depth for any
// events the actions publish.
//
// Execution stops at the first failing action; the returned results cover
// every action that was started. When the pause gate closes mid-sequence,
// the current action finishes but the next one does not start, and truncated
// reports how many actions never ran.
func (x *Executor) Execute(ctx context.Context, automation *board.Automation, itemID string, depth int) (results []ActionResult, truncated bool) {
	for i, action := range automation.Actions {
		if i > 0 && x.paused != nil && x.paused() {
			return results, true
		}

		actionCtx, cancel := context.WithTimeout(ctx, x.actionTimeout)
		err := x.apply(actionCtx, automation, action, itemID, depth)
		cancel()

		results = append(results, ActionResult{Index: i, Type: action.Type, Err: err})
		if err != nil {
			return results, false
		}
	}
	return results, false
}

// apply dispatches a single action. Value mutations funnel through the
// store's SetValue so the column's type contract is enforced here too.
func (x *Executor) apply(ctx context.Context, automation *board.Automation, action board.Action, itemID string, depth int) error {
	switch action.Type {
	case board.ActionChangeStatus, board.ActionSetDate, board.ActionChangeColumn:
		_, err := x.store.SetValue(ctx, itemID, action.ColumnID, *action.Value, board.WithChainDepth(depth))
		return err

	case board.ActionAssignPerson:
		return x.store.AssignPerson(ctx, itemID, action.ColumnID, action.UserID, board.WithChainDepth(depth))

	case board.ActionAddLabel:
		return x.store.AddLabel(ctx, itemID, action.ColumnID, action.LabelID, board.WithChainDepth(depth))

	case board.ActionCreateItem:
		item := &board.Item{
			BoardID: automation.BoardID,
			GroupID: action.GroupID,
			Name:    action.Name,
		}
		return x.store.CreateItem(ctx, item, board.WithChainDepth(depth))

	case board.ActionDuplicateItem:
		_, err := x.store.DuplicateItem(ctx, itemID, board.WithChainDepth(depth))
		return err

	case board.ActionMoveToGroup:
		return x.store.MoveItemToGroup(ctx, itemID, action.GroupID, board.WithChainDepth(depth))

	case board.ActionArchiveItem:
		return x.store.ArchiveItem(ctx, itemID)

	case board.ActionDeleteItem:
		return x.store.DeleteItem(ctx, itemID, x.cascadeSubitems)

	case board.ActionSendNotification:
		return x.notifier.Notify(ctx, &notify.Notification{
			AutomationID: automation.ID,
			BoardID:      automation.BoardID,
			ItemID:       itemID,
			UserID:       action.UserID,
			Message:      action.Message,
			AtMs:         time.Now().UnixMilli(),
		})

	default:
		return fmt.Errorf("unknown action type: %q", action.Type)
	}
}
