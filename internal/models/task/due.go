package task

import (
	"time"

	"github.com/dustin/go-humanize"
)

// Overdue reports whether an unfinished task's deadline day has passed.
func (t Task) Overdue(now time.Time) bool {
	if t.Deadline.IsZero() || !t.Live() {
		return false
	}
	return t.Deadline.Before(DateOf(now))
}

// DueLabel describes the deadline relative to now for display.
func (t Task) DueLabel(now time.Time) string {
	if t.Deadline.IsZero() {
		return "No deadline"
	}
	rel := humanize.RelTime(t.Deadline.In(now.Location()), now, "ago", "from now")
	switch {
	case t.Completed:
		return "Completed (was due " + rel + ")"
	case t.Deadline.Before(DateOf(now)):
		return "Overdue (" + rel + ")"
	case t.Deadline == DateOf(now):
		return "Due Today"
	default:
		return "Due " + rel
	}
}
