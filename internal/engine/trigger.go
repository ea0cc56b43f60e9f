package engine

import (
	"time"

	"github.com/quartzboard/quartz/pkg/board"
)

// TriggerMatches reports whether an automation's trigger fires for a board
// event. Pure and time-agnostic: "now" is an explicit input, used only by the
// time-driven triggers (date_arrives, due_date_approaching) whose events an
// external scheduler tick synthesizes.
//
// A trigger matches when its type corresponds to the event's tag AND, if the
// trigger names a specific column, that column matches the event's column.
func TriggerMatches(t board.Trigger, ev *board.Event, now time.Time) bool {
	if !columnMatches(t, ev) {
		return false
	}

	switch t.Type {
	case board.TriggerItemCreated:
		return ev.Type == board.EventItemCreated

	case board.TriggerStatusChange:
		return ev.Type == board.EventStatusChanged

	case board.TriggerColumnChange:
		return ev.Type == board.EventColumnChanged

	case board.TriggerItemMoved:
		return ev.Type == board.EventItemMoved

	case board.TriggerPersonAssigned:
		return ev.Type == board.EventAssignmentAdded

	case board.TriggerFileUploaded:
		return ev.Type == board.EventFileUploaded

	case board.TriggerDateArrives:
		// The scheduler may tick early; the trigger only fires once the
		// event's date has actually been reached.
		return ev.Type == board.EventDateArrived && ev.DateMs <= now.UnixMilli()

	case board.TriggerDueDateApproaching:
		if ev.Type != board.EventDueDateApproaching {
			return false
		}
		// A trigger configured with a lead time only fires for events at
		// least that close to the due date.
		if t.LeadTimeMs > 0 && ev.LeadTimeMs > t.LeadTimeMs {
			return false
		}
		return true

	default:
		return false
	}
}

func columnMatches(t board.Trigger, ev *board.Event) bool {
	return t.ColumnID == "" || t.ColumnID == ev.ColumnID
}
