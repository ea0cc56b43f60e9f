package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quartzboard/quartz/internal/engine"
	"github.com/quartzboard/quartz/pkg/board"
)

func sampleRuns() []*engine.RunRecord {
	return []*engine.RunRecord{
		{AutomationID: "a-1", EventType: board.EventStatusChanged, Outcome: engine.RunSuccess, AtMs: 3000},
		{AutomationID: "a-1", EventType: board.EventItemCreated, Outcome: engine.RunPartialFailure, AtMs: 2000},
		{AutomationID: "a-1", EventType: board.EventStatusChanged, Outcome: engine.RunCycleDetected, AtMs: 1000},
	}
}

func TestCriteriaMatches(t *testing.T) {
	t.Run("empty criteria match everything", func(t *testing.T) {
		c := &Criteria{}
		assert.False(t, c.HasFilters())
		for _, rec := range sampleRuns() {
			assert.True(t, c.Matches(rec))
		}
	})

	t.Run("time window", func(t *testing.T) {
		c := &Criteria{SinceTimestampMs: 1500, UntilTimestampMs: 2500}
		got := c.Apply(sampleRuns())
		assert.Len(t, got, 1)
		assert.Equal(t, int64(2000), got[0].AtMs)
	})

	t.Run("outcome filter", func(t *testing.T) {
		c := &Criteria{Outcome: engine.RunPartialFailure}
		got := c.Apply(sampleRuns())
		assert.Len(t, got, 1)
		assert.Equal(t, engine.RunPartialFailure, got[0].Outcome)
	})

	t.Run("event type filter", func(t *testing.T) {
		c := &Criteria{EventType: board.EventStatusChanged}
		got := c.Apply(sampleRuns())
		assert.Len(t, got, 2)
	})

	t.Run("criteria are ANDed", func(t *testing.T) {
		c := &Criteria{EventType: board.EventStatusChanged, Outcome: engine.RunSuccess}
		got := c.Apply(sampleRuns())
		assert.Len(t, got, 1)
		assert.Equal(t, int64(3000), got[0].AtMs)
	})
}
