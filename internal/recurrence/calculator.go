package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/taskfleet/eventd/internal/models"
)

// CalculateNextDueDate computes the next due date for a repeating task.
//
// The base date is currentDueAt when parseable, otherwise now. A base
// strictly in the past is clamped to now before the interval is added, so
// next occurrences never schedule into the past. Returns nil when no next
// date applies: non-recurring tasks, unparseable due dates, and custom
// recurrence without a positive interval.
func CalculateNextDueDate(currentDueAt string, typ models.RecurrenceType, interval int, now time.Time) (*time.Time, error) {
	if typ == models.RecurrenceNone {
		return nil, nil
	}

	base := now
	if currentDueAt != "" {
		parsed, err := parseDueAt(currentDueAt)
		if err != nil {
			return nil, fmt.Errorf("invalid due_at %q: %w", currentDueAt, err)
		}
		base = parsed
	}

	if base.Before(now) {
		base = now
	}

	switch typ {
	case models.RecurrenceDaily:
		next := base.AddDate(0, 0, 1)
		return &next, nil
	case models.RecurrenceWeekly:
		next := base.AddDate(0, 0, 7)
		return &next, nil
	case models.RecurrenceCustom:
		if interval <= 0 {
			return nil, nil
		}
		next := base.AddDate(0, 0, interval)
		return &next, nil
	default:
		return nil, nil
	}
}

// parseDueAt accepts RFC 3339 timestamps, with or without the "Z" UTC
// suffix or a numeric offset, and bare date-time values.
func parseDueAt(s string) (time.Time, error) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	trimmed := strings.TrimSuffix(s, "Z")
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format")
}
