// Package timespec parses the time specifications accepted by CLI flags
// like --since and --until.
package timespec

import (
	"fmt"
	"time"
)

// dayFormat accepts calendar days without a time component, matching the
// day granularity boards use for date columns.
const dayFormat = "2006-01-02"

// Parse turns one time specification into a Unix millisecond timestamp.
// Three forms are accepted:
//   - a Go duration ("1h", "30m", "1h30m"), read as that long ago
//   - a calendar day ("2026-09-01"), read as midnight UTC
//   - an RFC3339 timestamp ("2026-09-01T13:00:00Z")
func Parse(spec string) (int64, error) {
	if spec == "" {
		return 0, fmt.Errorf("empty time specification")
	}

	if d, err := time.ParseDuration(spec); err == nil {
		return time.Now().Add(-d).UnixMilli(), nil
	}
	if t, err := time.Parse(dayFormat, spec); err == nil {
		return t.UnixMilli(), nil
	}
	if t, err := time.Parse(time.RFC3339, spec); err == nil {
		return t.UnixMilli(), nil
	}

	return 0, fmt.Errorf("cannot parse %q as a duration, day, or RFC3339 timestamp", spec)
}

// ParseRange resolves the --since/--until pair into a window over Unix
// millisecond timestamps. An empty spec leaves that end unbounded (reported
// as zero). A window where since does not precede until is rejected here
// rather than silently matching nothing.
func ParseRange(since, until string) (int64, int64, error) {
	var sinceMs, untilMs int64

	if since != "" {
		ms, err := Parse(since)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid --since: %w", err)
		}
		sinceMs = ms
	}
	if until != "" {
		ms, err := Parse(until)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid --until: %w", err)
		}
		untilMs = ms
	}

	if sinceMs > 0 && untilMs > 0 && sinceMs >= untilMs {
		return 0, 0, fmt.Errorf("--since must be before --until")
	}
	return sinceMs, untilMs, nil
}
