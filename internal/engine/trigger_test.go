package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/quartzboard/quartz/pkg/board"
)

func TestTriggerMatches(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	t.Run("event-shaped triggers match by type", func(t *testing.T) {
		tests := []struct {
			trigger board.TriggerType
			event   board.EventType
		}{
			{board.TriggerItemCreated, board.EventItemCreated},
			{board.TriggerStatusChange, board.EventStatusChanged},
			{board.TriggerColumnChange, board.EventColumnChanged},
			{board.TriggerItemMoved, board.EventItemMoved},
			{board.TriggerPersonAssigned, board.EventAssignmentAdded},
			{board.TriggerFileUploaded, board.EventFileUploaded},
		}
		for _, tt := range tests {
			matched := TriggerMatches(board.Trigger{Type: tt.trigger}, &board.Event{Type: tt.event}, now)
			assert.True(t, matched, "%s should match %s", tt.trigger, tt.event)

			mismatched := TriggerMatches(board.Trigger{Type: tt.trigger}, &board.Event{Type: board.EventDateArrived, DateMs: now.UnixMilli()}, now)
			assert.False(t, mismatched, "%s should not match date_arrived", tt.trigger)
		}
	})

	t.Run("column filter narrows the trigger", func(t *testing.T) {
		trigger := board.Trigger{Type: board.TriggerStatusChange, ColumnID: "col-status"}

		assert.True(t, TriggerMatches(trigger, &board.Event{Type: board.EventStatusChanged, ColumnID: "col-status"}, now))
		assert.False(t, TriggerMatches(trigger, &board.Event{Type: board.EventStatusChanged, ColumnID: "col-other"}, now))
	})

	t.Run("empty column matches any column", func(t *testing.T) {
		trigger := board.Trigger{Type: board.TriggerColumnChange}
		assert.True(t, TriggerMatches(trigger, &board.Event{Type: board.EventColumnChanged, ColumnID: "anything"}, now))
	})

	t.Run("date_arrives only fires once the date is reached", func(t *testing.T) {
		trigger := board.Trigger{Type: board.TriggerDateArrives}

		past := &board.Event{Type: board.EventDateArrived, DateMs: now.Add(-time.Minute).UnixMilli()}
		assert.True(t, TriggerMatches(trigger, past, now))

		exact := &board.Event{Type: board.EventDateArrived, DateMs: now.UnixMilli()}
		assert.True(t, TriggerMatches(trigger, exact, now))

		future := &board.Event{Type: board.EventDateArrived, DateMs: now.Add(time.Minute).UnixMilli()}
		assert.False(t, TriggerMatches(trigger, future, now), "early scheduler tick must not fire")
	})

	t.Run("due_date_approaching honors lead time", func(t *testing.T) {
		oneDay := (24 * time.Hour).Milliseconds()
		trigger := board.Trigger{Type: board.TriggerDueDateApproaching, LeadTimeMs: oneDay}

		within := &board.Event{Type: board.EventDueDateApproaching, LeadTimeMs: oneDay / 2}
		assert.True(t, TriggerMatches(trigger, within, now))

		tooEarly := &board.Event{Type: board.EventDueDateApproaching, LeadTimeMs: 3 * oneDay}
		assert.False(t, TriggerMatches(trigger, tooEarly, now))

		noLead := board.Trigger{Type: board.TriggerDueDateApproaching}
		assert.True(t, TriggerMatches(noLead, tooEarly, now), "trigger without lead time fires on any tick")
	})
}
