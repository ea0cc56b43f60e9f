// Package filter narrows automation run history for the CLI's inspection
// commands.
package filter

import (
	"github.com/quartzboard/quartz/internal/engine"
	"github.com/quartzboard/quartz/pkg/board"
)

// Criteria defines filtering criteria for run records.
// All filters are ANDed together - a run must match ALL criteria to pass.
type Criteria struct {
	SinceTimestampMs int64             // Unix timestamp in milliseconds, 0 = no filter
	UntilTimestampMs int64             // Unix timestamp in milliseconds, 0 = no filter
	Outcome          engine.RunOutcome // exact match, empty = no filter
	EventType        board.EventType   // exact match, empty = no filter
}

// Matches returns true if the run record matches all filter criteria.
// Empty/zero criteria values are treated as "match all" for that criterion.
func (c *Criteria) Matches(rec *engine.RunRecord) bool {
	if c.SinceTimestampMs > 0 && rec.AtMs < c.SinceTimestampMs {
		return false
	}
	if c.UntilTimestampMs > 0 && rec.AtMs > c.UntilTimestampMs {
		return false
	}

	if c.Outcome != "" && rec.Outcome != c.Outcome {
		return false
	}

	if c.EventType != "" && rec.EventType != c.EventType {
		return false
	}

	return true
}

// HasFilters returns true if any filters are active.
func (c *Criteria) HasFilters() bool {
	return c.SinceTimestampMs > 0 ||
		c.UntilTimestampMs > 0 ||
		c.Outcome != "" ||
		c.EventType != ""
}

// Apply returns the run records matching the criteria, preserving order.
func (c *Criteria) Apply(records []*engine.RunRecord) []*engine.RunRecord {
	if !c.HasFilters() {
		return records
	}

	matched := make([]*engine.RunRecord, 0, len(records))
	for _, rec := range records {
		if c.Matches(rec) {
			matched = append(matched, rec)
		}
	}
	return matched
}
